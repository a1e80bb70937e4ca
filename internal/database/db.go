package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-xray-sdk-go/xray"
	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/iliyamo/booking-ledger/internal/config"
)

// Supported driver names.  They double as goose dialect names.
const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"
)

// Options tune Open beyond the connection settings.
type Options struct {
	// Tracing wraps the connection in AWS X-Ray SQL subsegments.  It is
	// ignored for SQLite.
	Tracing bool
}

// Open connects to the configured database, applies per-driver pool
// settings and verifies the connection with a ping.
func Open(ctx context.Context, cfg config.DBConfig, opts Options) (*sqlx.DB, error) {
	dsn, err := dataSource(cfg)
	if err != nil {
		return nil, err
	}

	var raw *sql.DB
	if opts.Tracing && cfg.Driver != DriverSQLite {
		raw, err = xray.SQLContext(cfg.Driver, dsn)
	} else {
		raw, err = sql.Open(cfg.Driver, dsn)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.Driver, err)
	}
	db := sqlx.NewDb(raw, cfg.Driver)

	if cfg.Driver == DriverSQLite {
		// SQLite allows one writer; a single connection also serializes
		// the per-resource critical sections of the booking engine.
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(25)
		db.SetConnMaxLifetime(30 * time.Minute)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", cfg.Driver, err)
	}

	if cfg.Driver == DriverSQLite {
		if err := applyPragmas(ctx, db); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	slog.Debug("database connected", "driver", cfg.Driver, "tracing", opts.Tracing)
	return db, nil
}

// OpenSQLite is a shortcut for the CLI and tests.
func OpenSQLite(ctx context.Context, path string) (*sqlx.DB, error) {
	return Open(ctx, config.DBConfig{Driver: DriverSQLite, DSN: path}, Options{})
}

func dataSource(cfg config.DBConfig) (string, error) {
	switch cfg.Driver {
	case DriverMySQL:
		if cfg.DSN != "" {
			return cfg.DSN, nil
		}
		auth := cfg.User
		if cfg.Pass != "" {
			auth = fmt.Sprintf("%s:%s", cfg.User, cfg.Pass)
		}
		// parseTime=true -> DATETIME -> time.Time | loc=UTC keeps times consistent
		return fmt.Sprintf("%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=UTC",
			auth, cfg.Host, cfg.Port, cfg.Name), nil
	case DriverPostgres, DriverSQLite:
		if cfg.DSN == "" {
			return "", fmt.Errorf("driver %s requires a DSN", cfg.Driver)
		}
		return cfg.DSN, nil
	}
	return "", fmt.Errorf("unsupported database driver %q", cfg.Driver)
}

func applyPragmas(ctx context.Context, db *sqlx.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			return fmt.Errorf("failed to execute %q: %w", p, err)
		}
	}
	return nil
}
