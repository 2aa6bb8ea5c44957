// Package storage owns the local relational store: pooled connections,
// schema migrations, the closed statement catalog, and the query executor
// everything else goes through.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/esgtools/esgkeeper/internal/storage/migrations"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

const (
	maxOpenConns    = 15
	maxIdleConns    = 5
	connMaxLifetime = 5 * time.Minute
)

// driverFor maps a DSN to a database/sql driver name. A postgres:// or
// postgresql:// DSN selects pgx; anything else is an SQLite file path.
func driverFor(dsn string) string {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return "pgx"
	}
	return "sqlite"
}

// Open opens the local store for the given DSN, applies pool bounds, and
// verifies liveness before returning.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	driver := driverFor(dsn)

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", driver, err)
	}

	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)
	db.SetConnMaxLifetime(connMaxLifetime)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s store: %w", driver, err)
	}

	return db, nil
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations sets up goose with the embedded migrations and runs them
// against the provided database connection. The dialect follows the DSN.
func RunMigrations(ctx context.Context, db *sql.DB, dsn string) error {
	goose.SetBaseFS(migrations.Migrations)

	dialect := "sqlite3"
	if driverFor(dsn) == "pgx" {
		dialect = "pgx"
	}
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}

	return gooseUpContext(ctx, db, ".")
}
