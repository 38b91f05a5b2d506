package db

import (
	"database/sql"
	"fmt"
	"strings"
)

// Migrate runs all schema migrations. Statements are idempotent; the whole
// set re-runs on every open.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			// Tolerate "duplicate column name" errors from ALTER TABLE
			// since the migration system re-runs all statements.
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS communicator_profiles (
		user_id           TEXT PRIMARY KEY,
		created_at        TEXT NOT NULL,
		updated_at        TEXT NOT NULL,
		first_seen_day    TEXT NOT NULL,
		day_key           TEXT NOT NULL,
		days_observed     INTEGER NOT NULL DEFAULT 0,
		increments_today  INTEGER NOT NULL DEFAULT 0,
		anxious           REAL NOT NULL DEFAULT 0,
		avoidant          REAL NOT NULL DEFAULT 0,
		disorganized      REAL NOT NULL DEFAULT 0,
		secure            REAL NOT NULL DEFAULT 0,
		prior_anxious     REAL,
		prior_avoidant    REAL,
		prior_disorganized REAL,
		prior_secure      REAL,
		prior_weight      REAL,
		prior_seeded_at   TEXT
	)`,

	`CREATE TABLE IF NOT EXISTS profile_events (
		id        TEXT PRIMARY KEY,
		user_id   TEXT NOT NULL REFERENCES communicator_profiles(user_id) ON DELETE CASCADE,
		type      TEXT NOT NULL CHECK(type IN ('evidence','prior_seeded','reset')),
		style     TEXT,
		weight    REAL NOT NULL DEFAULT 0,
		signal_id TEXT,
		day_key   TEXT NOT NULL,
		at        TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_profile_events_user_at
		ON profile_events(user_id, at DESC)`,

	`CREATE INDEX IF NOT EXISTS idx_profile_events_user_day
		ON profile_events(user_id, day_key)`,
}
