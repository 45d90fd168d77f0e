package infra_db_migrate

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

var schema = map[string][]string{
	"postgres": {
		`CREATE TABLE IF NOT EXISTS rooms (
			id UUID PRIMARY KEY,
			code TEXT NOT NULL UNIQUE,
			name TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS records (
			room_code TEXT NOT NULL,
			record_id TEXT NOT NULL,
			label TEXT NOT NULL,
			payload TEXT NOT NULL,
			updated_at BIGINT NOT NULL,
			PRIMARY KEY (room_code, record_id)
		)`,
	},
	"sqlite3": {
		`CREATE TABLE IF NOT EXISTS rooms (
			id TEXT PRIMARY KEY,
			code TEXT NOT NULL UNIQUE,
			name TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS records (
			room_code TEXT NOT NULL,
			record_id TEXT NOT NULL,
			label TEXT NOT NULL,
			payload TEXT NOT NULL,
			updated_at INTEGER NOT NULL,
			PRIMARY KEY (room_code, record_id)
		)`,
	},
}

// Apply creates the rooms and records tables for the connection's driver.
func Apply(ctx context.Context, db *sqlx.DB) error {
	stmts, ok := schema[db.DriverName()]
	if !ok {
		return fmt.Errorf("no schema for driver %q", db.DriverName())
	}

	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
