package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/stdlib"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"finance-dashboard/internal/config"
	applog "finance-dashboard/internal/log"
)

// Options selects and tunes the database behind a Store.
type Options struct {
	Driver         string
	DatabaseURL    string
	SQLitePath     string
	ConnectRetries int
	RetryDelay     time.Duration
	Logger         *applog.Logger
}

// OptionsFromConfig maps application configuration onto store options.
func OptionsFromConfig(cfg *config.Config, logger *applog.Logger) Options {
	return Options{
		Driver:         cfg.DatabaseDriver,
		DatabaseURL:    cfg.DatabaseURL,
		SQLitePath:     cfg.SQLiteDBPath,
		ConnectRetries: cfg.DBConnectRetries,
		RetryDelay:     cfg.DBRetryDelay,
		Logger:         logger,
	}
}

// Store is the relational storage for categories and transactions. The same
// SQL runs on PostgreSQL and SQLite; placeholders are rebound per driver.
type Store struct {
	db     *sql.DB
	driver string
	log    *applog.Logger
	now    func() time.Time
}

// Open connects to the configured database, waiting for it to become
// reachable, and applies pending migrations.
func Open(ctx context.Context, opts Options) (*Store, error) {
	logger := opts.Logger
	if logger == nil {
		logger = applog.Discard()
	}
	logger = logger.WithComponent(applog.ComponentStore)

	var (
		db  *sql.DB
		err error
	)
	switch opts.Driver {
	case config.DriverPostgres:
		db, err = openPostgres(ctx, opts, logger)
	case config.DriverSQLite:
		db, err = openSQLite(opts.SQLitePath)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", opts.Driver)
	}
	if err != nil {
		return nil, err
	}

	if err := RunMigrations(ctx, opts); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{
		db:     db,
		driver: opts.Driver,
		log:    logger,
		now:    time.Now,
	}, nil
}

func openPostgres(ctx context.Context, opts Options, logger *applog.Logger) (*sql.DB, error) {
	cfg, err := pgx.ParseConfig(normalizeDatabaseURL(opts.DatabaseURL))
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	maxRetries := opts.ConnectRetries
	if maxRetries < 1 {
		maxRetries = 1
	}

	for i := 0; i < maxRetries; i++ {
		db := stdlib.OpenDB(*cfg)
		err := db.PingContext(ctx)
		if err == nil {
			logger.InfoContext(ctx, "Database connection established", "driver", config.DriverPostgres)
			return db, nil
		}
		db.Close()
		if i == maxRetries-1 {
			return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", maxRetries, err)
		}
		// Log the actual error for the first few attempts and every 10th after.
		if i%10 == 0 || i < 5 {
			logger.WarnContext(ctx, "Database not ready, retrying",
				"attempt", i+1, "max_attempts", maxRetries, "delay", opts.RetryDelay, applog.FieldError, err)
		} else {
			logger.WarnContext(ctx, "Database not ready, retrying", "attempt", i+1, "max_attempts", maxRetries)
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("waiting for database: %w", ctx.Err())
		case <-time.After(opts.RetryDelay):
		}
	}
	return nil, errors.New("unreachable")
}

func openSQLite(path string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", sqliteDSN(path))
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// SQLite allows a single writer; one connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}

func sqliteDSN(path string) string {
	return path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_time_format=sqlite"
}

// normalizeDatabaseURL rewrites postgresql:// to postgres:// and adds
// sslmode=disable when no sslmode is present.
func normalizeDatabaseURL(databaseURL string) string {
	if databaseURL == "" {
		return databaseURL
	}
	if strings.HasPrefix(databaseURL, "postgresql:") {
		databaseURL = "postgres" + strings.TrimPrefix(databaseURL, "postgresql")
	}
	if !strings.Contains(databaseURL, "sslmode=") {
		separator := "?"
		if strings.Contains(databaseURL, "?") {
			separator = "&"
		}
		databaseURL = databaseURL + separator + "sslmode=disable"
	}
	return databaseURL
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Ping verifies the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Driver reports which database the store talks to.
func (s *Store) Driver() string {
	return s.driver
}

// rebind turns ? placeholders into $1..$n for PostgreSQL.
func (s *Store) rebind(query string) string {
	if s.driver != config.DriverPostgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// timestamp normalises times to the precision both backends keep.
func (s *Store) timestamp(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
	}
	return false
}
