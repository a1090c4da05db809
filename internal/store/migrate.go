package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	migratepgx "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"

	"finance-dashboard/internal/config"
	applog "finance-dashboard/internal/log"
)

//go:embed migrations/postgres/*.sql migrations/sqlite/*.sql
var migrationsFS embed.FS

// RunMigrations applies every pending migration for the configured driver.
// It uses its own connection so the caller's pool is left untouched.
func RunMigrations(ctx context.Context, opts Options) error {
	logger := opts.Logger
	if logger == nil {
		logger = applog.Discard()
	}
	logger = logger.WithComponent(applog.ComponentStore)

	var (
		migrateDB *sql.DB
		dir       string
		newDriver func(*sql.DB) (database.Driver, error)
	)
	switch opts.Driver {
	case config.DriverPostgres:
		cfg, err := pgx.ParseConfig(normalizeDatabaseURL(opts.DatabaseURL))
		if err != nil {
			return fmt.Errorf("failed to parse database URL: %w", err)
		}
		migrateDB = stdlib.OpenDB(*cfg)
		dir = "migrations/postgres"
		newDriver = func(db *sql.DB) (database.Driver, error) {
			return migratepgx.WithInstance(db, &migratepgx.Config{})
		}
	case config.DriverSQLite:
		db, err := sql.Open("sqlite", sqliteDSN(opts.SQLitePath))
		if err != nil {
			return fmt.Errorf("open migration database: %w", err)
		}
		migrateDB = db
		dir = "migrations/sqlite"
		newDriver = func(db *sql.DB) (database.Driver, error) {
			return migratesqlite.WithInstance(db, &migratesqlite.Config{})
		}
	default:
		return fmt.Errorf("unsupported database driver %q", opts.Driver)
	}

	if err := migrateDB.PingContext(ctx); err != nil {
		migrateDB.Close()
		return fmt.Errorf("ping migration database: %w", err)
	}

	driver, err := newDriver(migrateDB)
	if err != nil {
		migrateDB.Close()
		return fmt.Errorf("create %s driver: %w", opts.Driver, err)
	}

	src, err := iofs.New(migrationsFS, dir)
	if err != nil {
		driver.Close()
		return fmt.Errorf("create iofs source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, opts.Driver, driver)
	if err != nil {
		driver.Close()
		return fmt.Errorf("create migrate instance: %w", err)
	}
	defer m.Close()

	logger.InfoContext(ctx, "Applying database migrations", "driver", opts.Driver, applog.FieldOperation, applog.OpMigrate)
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("run migrations: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("read migration version: %w", err)
	}
	logger.InfoContext(ctx, "Database schema is up to date", "version", version, "dirty", dirty)
	return nil
}
