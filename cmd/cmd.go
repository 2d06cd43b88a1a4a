package cmd

import (
	"context"
	"fmt"
	"os"

	"food-network-backend/internal/config"
	"food-network-backend/internal/push"
	"food-network-backend/internal/repository"
	"food-network-backend/internal/services"
	"food-network-backend/internal/storage"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// Execute runs the CLI. Without a subcommand the API server is started.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "food-network",
		Short:         "Food logging and social network API",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), configPath)
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", "config.yaml", "path to the YAML config file")

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Start the HTTP and WebSocket server",
			RunE: func(cmd *cobra.Command, args []string) error {
				return runServe(cmd.Context(), configPath)
			},
		},
		&cobra.Command{
			Use:   "migrate",
			Short: "Apply the database schema",
			RunE: func(cmd *cobra.Command, args []string) error {
				return runMigrate(cmd.Context(), configPath)
			},
		},
		&cobra.Command{
			Use:   "seed",
			Short: "Populate the database with sample users, meals and posts",
			RunE: func(cmd *cobra.Command, args []string) error {
				return runSeed(cmd.Context(), configPath)
			},
		},
	)
	return root
}

// loadConfig reads and validates configuration, then configures the global logger
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	setupLogger(cfg.Log.Level)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// connectDB opens the pool and checks that the database answers
func connectDB(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}

	db, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.Ping(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info().Msg("Database connection established")
	return db, nil
}

// app holds the wired services shared by serve and seed
type app struct {
	users   *services.UserService
	foods   *services.FoodService
	meals   *services.MealService
	network *services.NetworkService
	posts   *services.PostService
	hub     *services.WSHub

	userRepo *repository.UserRepository
}

func newApp(ctx context.Context, cfg *config.Config, db *pgxpool.Pool) (*app, error) {
	userRepo := repository.NewUserRepository(db)
	foodRepo := repository.NewFoodRepository(db)
	mealRepo := repository.NewMealRepository(db)
	networkRepo := repository.NewNetworkRepository(db)
	postRepo := repository.NewPostRepository(db)

	blobs, err := storage.NewS3Store(ctx, storage.S3Config{
		Region:        cfg.AWS.Region,
		Bucket:        cfg.AWS.S3Bucket,
		AccessKey:     cfg.AWS.AccessKey,
		SecretKey:     cfg.AWS.SecretKey,
		Endpoint:      cfg.AWS.Endpoint,
		PublicBaseURL: cfg.AWS.PublicBaseURL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create blob store: %w", err)
	}

	var pusher services.Pusher
	if cfg.APNs.CertFile != "" {
		notifier, err := push.NewAPNsNotifier(cfg.APNs.CertFile, cfg.APNs.CertPassword, cfg.APNs.Topic, cfg.APNs.Production)
		if err != nil {
			return nil, err
		}
		pusher = notifier
		log.Info().Str("topic", cfg.APNs.Topic).Bool("production", cfg.APNs.Production).Msg("Push notifications enabled")
	}

	hub := services.NewWSHub()
	notifications := services.NewFollowNotifications(hub, pusher, userRepo)

	return &app{
		users:    services.NewUserService(userRepo, blobs, cfg.JWT.Secret, cfg.JWT.TTL),
		foods:    services.NewFoodService(foodRepo),
		meals:    services.NewMealService(mealRepo, foodRepo, userRepo),
		network:  services.NewNetworkService(networkRepo, notifications),
		posts:    services.NewPostService(postRepo, mealRepo, foodRepo),
		hub:      hub,
		userRepo: userRepo,
	}, nil
}

// setupLogger configures zerolog logger
func setupLogger(level string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
