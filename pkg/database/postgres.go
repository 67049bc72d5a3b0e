package database

import (
	"fmt"
	"log"
	"time"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/DimasAnjayMabar/agusplastik-backend/internal/logging"
)

type Options struct {
	DSN       string
	LogLevel  logger.LogLevel
	Colorful  bool
	MaxIdle   int
	MaxOpen   int
	MaxLife   time.Duration
	Component string
}

func DefaultOptions(dsn string) Options {
	return Options{
		DSN:       dsn,
		LogLevel:  logger.Warn,
		MaxIdle:   10,
		MaxOpen:   100,
		MaxLife:   time.Hour,
		Component: "gorm",
	}
}

// ConnectDB opens the pool. The handle is created once in main and passed down explicitly.
func ConnectDB(opts Options) (*gorm.DB, error) {
	newLogger := logger.New(
		log.New(logging.Writer{Logger: zlog.Logger, Level: zerolog.DebugLevel, Component: opts.Component}, "", 0),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  opts.LogLevel,
			IgnoreRecordNotFoundError: true,
			Colorful:                  opts.Colorful,
		},
	)

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  opts.DSN,
		PreferSimpleProtocol: true, // Disables implicit prepared statements for Supabase Transaction Mode
	}), &gorm.Config{
		Logger:      newLogger,
		PrepareStmt: false, // Disables GORM-level prepared statements
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	// Connection Pooling Setup (Penting untuk Production)
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	sqlDB.SetMaxIdleConns(opts.MaxIdle)
	sqlDB.SetMaxOpenConns(opts.MaxOpen)
	sqlDB.SetConnMaxLifetime(opts.MaxLife)

	zlog.Info().Msg("Database connection established")
	return db, nil
}
