package storage

import (
	"database/sql"
	"fmt"
)

// InitDB initializes the database schema.
// PRE: db is a valid database connection
// POST: All tables are created, WAL mode enabled
func InitDB(db *sql.DB) error {
	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	// Enable foreign key enforcement
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	// Create tables
	schema := `
	CREATE TABLE IF NOT EXISTS account (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL DEFAULT '',
		role TEXT NOT NULL,
		created_at TEXT NOT NULL,
		failed_logins INTEGER NOT NULL DEFAULT 0,
		locked_until TEXT
	);

	CREATE TABLE IF NOT EXISTS event (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		venue TEXT NOT NULL,
		race_date TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		practice_start TEXT NOT NULL,
		practice_end TEXT NOT NULL,
		allowed_weekdays TEXT NOT NULL,
		max_dates_per_team INTEGER NOT NULL DEFAULT 0,
		registration_open INTEGER NOT NULL DEFAULT 1
	);

	CREATE TABLE IF NOT EXISTS scoped_kv (
		session_id TEXT NOT NULL,
		scope TEXT NOT NULL,
		k TEXT NOT NULL,
		v TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		PRIMARY KEY (session_id, scope, k)
	);

	CREATE INDEX IF NOT EXISTS idx_scoped_kv_updated ON scoped_kv(updated_at);

	CREATE TABLE IF NOT EXISTS submission (
		id TEXT PRIMARY KEY,
		session_id TEXT NOT NULL,
		event_id TEXT NOT NULL,
		manager_name TEXT NOT NULL,
		manager_email TEXT NOT NULL,
		payload TEXT NOT NULL,
		submitted_at TEXT NOT NULL,
		FOREIGN KEY (event_id) REFERENCES event(id)
	);

	CREATE INDEX IF NOT EXISTS idx_submission_event ON submission(event_id);
	`

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}
