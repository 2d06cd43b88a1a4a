package cmd

import (
	"context"

	"food-network-backend/internal/repository"
	"food-network-backend/internal/seed"
)

func runSeed(ctx context.Context, configPath string) error {
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

	a, err := newApp(ctx, cfg, db)
	if err != nil {
		return err
	}
	defer a.hub.Close()

	_, err = seed.NewSeeder(a.users, a.userRepo, a.meals, a.network, a.posts).Run(ctx)
	return err
}
