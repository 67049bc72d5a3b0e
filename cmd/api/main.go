package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm/logger"

	"github.com/DimasAnjayMabar/agusplastik-backend/internal/config"
	"github.com/DimasAnjayMabar/agusplastik-backend/internal/logging"
	"github.com/DimasAnjayMabar/agusplastik-backend/internal/middleware"
	"github.com/DimasAnjayMabar/agusplastik-backend/internal/repository"
	"github.com/DimasAnjayMabar/agusplastik-backend/internal/router"
	"github.com/DimasAnjayMabar/agusplastik-backend/internal/service"
	"github.com/DimasAnjayMabar/agusplastik-backend/internal/ws"
	"github.com/DimasAnjayMabar/agusplastik-backend/pkg/database"
	"github.com/DimasAnjayMabar/agusplastik-backend/pkg/jwt"
)

func main() {
	// 1. Load Env
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logging.Setup("info", "development")
		log.Fatal().Err(err).Msg("load config")
	}
	logging.Setup(cfg.LogLvl, cfg.Env)
	if envErr != nil {
		log.Warn().Msg(".env file not found, using process environment")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Setup Database
	dbOpts := database.DefaultOptions(cfg.DSN())
	if !cfg.IsProduction() {
		dbOpts.LogLevel = logger.Info
	}
	db, err := database.ConnectDB(dbOpts)
	if err != nil {
		log.Fatal().Err(err).Msg("connect database")
	}
	if cfg.DBAutoMigrate {
		if err := repository.Migrate(ctx, db); err != nil {
			log.Fatal().Err(err).Msg("migrate database")
		}
	}

	// 3. Setup WebSocket Hub
	hub := ws.NewHub()
	go hub.Run(ctx)

	// 4. Dependency Injection (Wiring Layers)
	store := repository.NewStore(db)
	opts := []service.Option{service.WithPublisher(hub)}
	sessions := service.SessionConfig{
		TTL:         cfg.SessionTTL,
		RenewWindow: cfg.SessionRenewWindow,
		ReuseWindow: cfg.SessionReuseWindow,
	}

	users := service.NewUserService(store, opts...)
	services := router.Services{
		Auth:      service.NewAuthService(store, jwt.NewSigner(cfg.TokenSecret), sessions, opts...),
		Users:     users,
		Shops:     service.NewShopService(store, users, opts...),
		Catalog:   service.NewCatalogService(store, opts...),
		Inventory: service.NewInventoryService(store, opts...),
		Sales:     service.NewSalesService(store, opts...),
		Customers: service.NewCustomerService(store, opts...),
		Dashboard: service.NewDashboardService(store, cfg.LowStockThreshold, opts...),
	}

	// 5. Login throttling, shared through redis when configured
	var rdb *redis.Client
	if cfg.RedisURL != "" {
		if rdb, err = database.NewRedis(ctx, cfg.RedisURL); err != nil {
			log.Fatal().Err(err).Msg("connect redis")
		}
		defer rdb.Close()
	}
	limiter, err := middleware.NewLoginLimiter(cfg.LoginRateLimit, rdb)
	if err != nil {
		log.Fatal().Err(err).Str("rate", cfg.LoginRateLimit).Msg("login rate limit")
	}

	// 6. Setup Fiber
	app := router.NewApp(cfg.IsProduction())
	router.Setup(app, services, router.Deps{
		Hub:        hub,
		LoginLimit: middleware.LoginRateLimit(limiter),
	})

	// 7. Graceful Shutdown
	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Error().Err(err).Msg("server stopped")
			stop()
		}
	}()
	log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server started")

	<-ctx.Done()
	log.Info().Msg("Shutting down server...")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
	log.Info().Msg("Server exited")
}
