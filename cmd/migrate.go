package cmd

import (
	"context"

	"food-network-backend/internal/repository"

	"github.com/rs/zerolog/log"
)

func runMigrate(ctx context.Context, configPath string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	db, err := connectDB(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := repository.Migrate(ctx, db); err != nil {
		return err
	}
	log.Info().Msg("Schema applied")
	return nil
}
