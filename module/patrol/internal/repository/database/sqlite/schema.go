package sqlite

import (
	"context"
	"database/sql"
	"fmt"
)

// EnsureSchema creates the agent's local tables when missing.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS scan_records (
			id TEXT PRIMARY KEY,
			checkpoint_id TEXT NOT NULL DEFAULT '',
			checkpoint_name TEXT NOT NULL,
			officer TEXT NOT NULL,
			timestamp_ms INTEGER NOT NULL,
			status TEXT NOT NULL,
			latitude REAL NOT NULL,
			longitude REAL NOT NULL,
			accuracy_m REAL NOT NULL DEFAULT 0,
			distance_m REAL NOT NULL DEFAULT 0,
			note TEXT NOT NULL DEFAULT '',
			evidence_ref TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE INDEX IF NOT EXISTS idx_scan_records_timestamp ON scan_records (timestamp_ms DESC)`,
		`CREATE TABLE IF NOT EXISTS checkpoints (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			latitude REAL NOT NULL,
			longitude REAL NOT NULL,
			radius_m REAL NOT NULL,
			schedule TEXT NOT NULL DEFAULT '{}'
		)`,
		`CREATE TABLE IF NOT EXISTS officers (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL
		)`,
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
