package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"finance-dashboard/internal/cache"
	"finance-dashboard/internal/config"
	"finance-dashboard/internal/events"
	apphttp "finance-dashboard/internal/http"
	applog "finance-dashboard/internal/log"
	"finance-dashboard/internal/store"
)

func main() {
	migrateCmd := flag.Bool("migrate", false, "Apply database migrations and exit")
	flag.Parse()

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

	if *migrateCmd {
		// Open waits for the database and applies pending migrations.
		db, err := store.Open(ctx, store.OptionsFromConfig(cfg, logger))
		if err != nil {
			logger.Error("Migration failed", applog.FieldOperation, applog.OpMigrate, applog.FieldError, err)
			os.Exit(1)
		}
		db.Close()
		logger.Info("Migration completed successfully", applog.FieldOperation, applog.OpMigrate)
		return
	}

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("Server stopped with error", applog.FieldError, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *applog.Logger) error {
	db, err := store.Open(ctx, store.OptionsFromConfig(cfg, logger))
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	g, ctx := errgroup.WithContext(ctx)

	var c cache.Cache
	if cfg.RedisURL != "" {
		rc, err := cache.NewRedisCache(ctx, cfg.RedisURL, logger)
		if err != nil {
			logger.Warn("Failed to initialize Redis, continuing with in-memory cache", applog.FieldError, err)
		} else {
			defer rc.Close()
			c = rc
		}
	}
	if c == nil {
		mc := cache.NewMemoryCache(cache.DefaultMemorySize)
		g.Go(func() error { return mc.RunCleanup(ctx, time.Minute) })
		c = mc
	}

	var pub events.Publisher = events.NopPublisher{}
	if cfg.AMQPURL != "" {
		p, err := events.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange, logger)
		if err != nil {
			logger.Warn("Failed to connect to AMQP, events disabled", applog.FieldError, err)
		} else {
			pub = p
		}
	}
	defer pub.Close()

	gin.SetMode(gin.ReleaseMode)
	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Deps{
		Repo:      db,
		Cache:     c,
		CacheTTL:  cfg.CacheTTL,
		Publisher: pub,
		Logger:    logger,
	})

	g.Go(func() error {
		logger.Info("Server starting", applog.FieldOperation, applog.OpStartup, "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		logger.Info("Shutting down server", applog.FieldOperation, applog.OpShutdown)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
