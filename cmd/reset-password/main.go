package main

import (
	"context"
	"flag"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/DimasAnjayMabar/agusplastik-backend/internal/config"
	"github.com/DimasAnjayMabar/agusplastik-backend/internal/logging"
	"github.com/DimasAnjayMabar/agusplastik-backend/internal/repository"
	"github.com/DimasAnjayMabar/agusplastik-backend/pkg/database"
)

// reset-password sets a new password for an account and revokes its sessions.
//
//	go run ./cmd/reset-password -username owner -password 'new-secret'
func main() {
	username := flag.String("username", "", "account username")
	password := flag.String("password", "", "new password (min 6 characters)")
	flag.Parse()

	// 1. Load Env
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		logging.Setup("info", "development")
		log.Fatal().Err(err).Msg("load config")
	}
	logging.Setup(cfg.LogLvl, cfg.Env)

	if *username == "" || len(*password) < 6 {
		flag.Usage()
		os.Exit(2)
	}

	// 2. Setup Database
	db, err := database.ConnectDB(database.DefaultOptions(cfg.DSN()))
	if err != nil {
		log.Fatal().Err(err).Msg("connect database")
	}
	store := repository.NewStore(db)
	ctx := context.Background()

	// 3. Find account
	user, err := store.Users().FindByUsername(ctx, *username)
	if err != nil {
		log.Fatal().Err(err).Str("username", *username).Msg("account not found")
	}

	// 4. Hash and store, then drop every session of the account
	if err := user.SetPassword(*password); err != nil {
		log.Fatal().Err(err).Msg("hash password")
	}
	err = store.Atomic(ctx, func(tx repository.Store) error {
		if err := tx.Users().UpdatePassword(ctx, user.ID, user.Password); err != nil {
			return err
		}
		return tx.Tokens().DeleteForUser(ctx, user.ID)
	})
	if err != nil {
		log.Fatal().Err(err).Msg("update password")
	}

	log.Info().Str("username", user.Username).Str("role", string(user.Role)).Msg("password reset, sessions revoked")
}
