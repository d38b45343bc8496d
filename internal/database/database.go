package database

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"equipment-maintenance-api/internal/config"
)

// Timestamps are stored as RFC 3339 text so both backends share one schema.
const createTableQuery = `
	CREATE TABLE IF NOT EXISTS equipment (
		id TEXT PRIMARY KEY,
		type TEXT NOT NULL,
		last_maintenance TEXT NOT NULL,
		next_maintenance TEXT NOT NULL,
		status TEXT NOT NULL
	)`

// InitDB opens the configured storage backend, verifies the connection and
// creates the equipment table if it does not exist yet.
func InitDB(cfg *config.Config) (*sql.DB, error) {
	var (
		db  *sql.DB
		err error
	)

	switch cfg.Storage.Driver {
	case config.DriverSQLite:
		db, err = sql.Open("sqlite", cfg.Storage.Path)
	case config.DriverPostgres:
		db, err = sql.Open("postgres", cfg.GetPostgresDSN())
	default:
		return nil, fmt.Errorf("unknown storage driver: %s", cfg.Storage.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	if cfg.Storage.Driver == config.DriverPostgres {
		db.SetMaxOpenConns(cfg.Storage.MaxOpenConns)
		db.SetMaxIdleConns(cfg.Storage.MaxIdleConns)
		db.SetConnMaxLifetime(cfg.Storage.ConnMaxLifetime)
		db.SetConnMaxIdleTime(cfg.Storage.ConnMaxIdleTime)
	} else {
		// The sqlite file accepts a single writer at a time.
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := EnsureSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// EnsureSchema creates the equipment table if it is absent.
func EnsureSchema(db *sql.DB) error {
	if _, err := db.Exec(createTableQuery); err != nil {
		return fmt.Errorf("failed to create equipment table: %w", err)
	}
	return nil
}
