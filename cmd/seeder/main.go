package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/gokatarajesh/trivia-api/internal/app"
	"github.com/gokatarajesh/trivia-api/internal/config"
	"github.com/gokatarajesh/trivia-api/internal/seed"
)

func main() {
	file := flag.String("file", "configs/seed.yaml", "YAML question bank to load")
	flag.Parse()

	log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()

	if os.Getenv("APP_ENV") != "production" {
		_ = godotenv.Load("configs/.env")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	cfg, err := config.Load(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if cfg.Store.Driver == config.DriverMemory {
		log.Fatal().Msg("the memory store is not persistent; set STORE_DRIVER to postgres or sqlite")
	}

	bank, err := seed.Load(*file)
	if err != nil {
		log.Fatal().Err(err).Str("file", *file).Msg("failed to load seed file")
	}

	store, _, closeFn, err := app.OpenStore(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open store")
	}
	defer func() {
		if closeFn != nil {
			_ = closeFn()
		}
	}()

	res, err := seed.Apply(ctx, store, bank, log.Logger)
	if err != nil {
		log.Error().Err(err).Int("created", res.Created).Msg("seeding failed")
		os.Exit(1)
	}
}
