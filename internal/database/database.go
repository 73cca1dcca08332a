// Package database opens the process-wide SQLite handle. It is created once
// in main and passed explicitly to every component that needs it.
package database

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"ms-rsvp/internal/config"
	"ms-rsvp/internal/database/migrations"
	"ms-rsvp/internal/logger"
)

const memoryPath = ":memory:"

// Open connects to SQLite in WAL mode and, when AutoMigrate is set, applies
// the schema migrations.
func Open(ctx context.Context, cfg config.DatabaseConfig, log *logger.Logger) (*bun.DB, error) {
	if log == nil {
		log = logger.Discard()
	}

	inMemory := cfg.Path == memoryPath || strings.Contains(cfg.Path, "mode=memory")
	if !inMemory {
		dir := filepath.Dir(cfg.Path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory %s: %w", dir, err)
		}
	}

	sqldb := sql.OpenDB(&pragmaConnector{
		dsn:     cfg.Path,
		pragmas: connectionPragmas(cfg),
	})

	// Each in-memory connection is its own database.
	if inMemory || cfg.MaxOpenConns <= 0 {
		sqldb.SetMaxOpenConns(1)
	} else {
		sqldb.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	sqldb.SetConnMaxLifetime(0)

	if err := sqldb.PingContext(ctx); err != nil {
		sqldb.Close()
		return nil, fmt.Errorf("failed to connect to sqlite: %w", err)
	}
	log.Info("DATABASE", fmt.Sprintf("SQLite connection successful (%s)", cfg.Path))

	bunDB := bun.NewDB(sqldb, sqlitedialect.New())

	if cfg.AutoMigrate {
		if err := migrations.NewRunner(bunDB, log).RunMigrations(); err != nil {
			bunDB.Close()
			return nil, err
		}
	}

	return bunDB, nil
}

// OpenInMemory returns a migrated in-memory database, used by tests and
// local tooling.
func OpenInMemory(ctx context.Context) (*bun.DB, error) {
	return Open(ctx, config.DatabaseConfig{Path: memoryPath, AutoMigrate: true}, nil)
}

func connectionPragmas(cfg config.DatabaseConfig) []string {
	return []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA foreign_keys = ON",
		fmt.Sprintf("PRAGMA busy_timeout = %d", cfg.BusyTimeout.Milliseconds()),
	}
}

// pragmaConnector opens sqliteshim connections and applies the pragmas to
// each one before the pool hands it out. busy_timeout and foreign_keys are
// per-connection settings.
type pragmaConnector struct {
	dsn     string
	pragmas []string
}

func (c *pragmaConnector) Connect(ctx context.Context) (driver.Conn, error) {
	conn, err := c.Driver().Open(c.dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}

	execer, ok := conn.(driver.ExecerContext)
	if !ok {
		conn.Close()
		return nil, fmt.Errorf("sqlite driver %s does not support ExecContext", sqliteshim.DriverName())
	}
	for _, pragma := range c.pragmas {
		if _, err := execer.ExecContext(ctx, pragma, nil); err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to apply %q: %w", pragma, err)
		}
	}
	return conn, nil
}

func (c *pragmaConnector) Driver() driver.Driver {
	return sqliteshim.Driver()
}
