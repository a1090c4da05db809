package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"finance-dashboard/internal/config"
	applog "finance-dashboard/internal/log"
	"finance-dashboard/internal/seed"
	"finance-dashboard/internal/store"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "load .env: %v\n", err)
		os.Exit(1)
	}
	cfg := config.Load()

	logCfg := applog.DefaultConfig()
	logCfg.Level = applog.ParseLevel(cfg.LogLevel)
	logger := applog.New(logCfg)
	applog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("Invalid configuration", applog.FieldError, err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	res, err := run(ctx, cfg, logger)
	if err != nil {
		logger.Error("Seeding failed", applog.FieldOperation, applog.OpSeed, applog.FieldError, err)
		os.Exit(1)
	}

	fmt.Println("Successfully populated database with sample data!")
	fmt.Println(res)
}

func run(ctx context.Context, cfg *config.Config, logger *applog.Logger) (seed.Result, error) {
	db, err := store.Open(ctx, store.OptionsFromConfig(cfg, logger))
	if err != nil {
		return seed.Result{}, fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	return seed.New(db, seed.WithLogger(logger)).Run(ctx)
}
