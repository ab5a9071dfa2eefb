package storage

import (
	"database/sql"
	"fmt"
)

var migrations = []string{
	// Migration 1: Initial schema
	`CREATE TABLE IF NOT EXISTS alerts (
		id                  TEXT PRIMARY KEY,
		owner_id            INTEGER NOT NULL,
		origin              TEXT NOT NULL,
		origin_city         TEXT NOT NULL DEFAULT '',
		destination         TEXT NOT NULL DEFAULT '',
		max_price           REAL NOT NULL CHECK(max_price > 0),
		date_start          DATETIME NOT NULL,
		date_end            DATETIME,
		trip_type           TEXT NOT NULL CHECK(trip_type IN ('one_way', 'round_trip')),
		status              TEXT NOT NULL DEFAULT 'active' CHECK(status IN ('active', 'paused', 'cancelled')),
		created_at          DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		last_checked_at     DATETIME,
		last_notified_price REAL,
		last_notified_at    DATETIME
	);

	CREATE INDEX IF NOT EXISTS idx_alerts_owner ON alerts(owner_id);
	CREATE INDEX IF NOT EXISTS idx_alerts_status ON alerts(status);

	CREATE TABLE IF NOT EXISTS schema_migrations (
		version    INTEGER PRIMARY KEY,
		applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);`,
}

// runMigrations applies pending schema migrations.
func runMigrations(db *sql.DB) error {
	// Ensure migration tracking table exists
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (
		version    INTEGER PRIMARY KEY,
		applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`)
	if err != nil {
		return fmt.Errorf("create migration table: %w", err)
	}

	var currentVersion int
	row := db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("check migration version: %w", err)
	}

	for i := currentVersion; i < len(migrations); i++ {
		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", i+1, err)
		}

		if _, err := tx.Exec(migrations[i]); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("run migration %d: %w", i+1, err)
		}

		if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", i+1); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record migration %d: %w", i+1, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", i+1, err)
		}
	}

	return nil
}
