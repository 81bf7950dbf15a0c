// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Supported DATABASE_TYPE values
const (
	TypePostgres = "postgres"
	TypeSQLite   = "sqlite"
)

// Execer is satisfied by *sql.DB, *sqlx.DB and transactions.
type Execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

// Open connects to the configured database and verifies the connection.
// SQLite is limited to one open connection so in-memory databases are
// shared and writers never contend.
func Open(dbType, url string) (*sqlx.DB, error) {
	var driver string
	switch dbType {
	case TypePostgres:
		driver = "postgres"
	case TypeSQLite, "":
		driver = "sqlite"
	default:
		return nil, fmt.Errorf("unsupported database type %q", dbType)
	}

	conn, err := sqlx.Open(driver, url)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if driver == "sqlite" {
		conn.SetMaxOpenConns(1)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return conn, nil
}

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(db Execer) error {
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}

	return nil
}

// Statements use the subset of SQL shared by PostgreSQL and SQLite:
// TEXT dates, CURRENT_TIMESTAMP defaults and ON CONFLICT clauses.
var schema = []string{
	// DineSafe feed, one row per infraction
	`CREATE TABLE IF NOT EXISTS dinesafe (
		establishment_id TEXT NOT NULL,
		establishment_name TEXT NOT NULL,
		establishment_address TEXT,
		inspection_id TEXT NOT NULL,
		inspection_date TEXT NOT NULL,
		establishment_status TEXT,
		severity TEXT,
		infraction_details TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS idx_dinesafe_establishment ON dinesafe(establishment_id)`,
	`CREATE INDEX IF NOT EXISTS idx_dinesafe_inspection_date ON dinesafe(inspection_date)`,
	`CREATE INDEX IF NOT EXISTS idx_dinesafe_name ON dinesafe(establishment_name)`,

	// Saved restaurants
	`CREATE TABLE IF NOT EXISTS saved_restaurants (
		user_id TEXT NOT NULL,
		establishment_id TEXT NOT NULL,
		establishment_name TEXT NOT NULL,
		establishment_address TEXT,
		last_inspection_date TEXT,
		last_score INTEGER,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (user_id, establishment_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_saved_establishment ON saved_restaurants(establishment_id)`,

	// Push tokens, one per user per platform
	`CREATE TABLE IF NOT EXISTS push_tokens (
		user_id TEXT NOT NULL,
		token TEXT NOT NULL,
		platform TEXT NOT NULL CHECK (platform IN ('ios', 'android')),
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (user_id, platform)
	)`,

	// Notification claims
	`CREATE TABLE IF NOT EXISTS notification_logs (
		user_id TEXT NOT NULL,
		establishment_id TEXT NOT NULL,
		inspection_date TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (user_id, establishment_id, inspection_date)
	)`,

	// Waitlist
	`CREATE TABLE IF NOT EXISTS waitlist (
		email TEXT PRIMARY KEY,
		referral_code TEXT NOT NULL UNIQUE,
		queue_position INTEGER NOT NULL,
		referred_by TEXT,
		referral_count INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,

	// Counters
	`CREATE TABLE IF NOT EXISTS counters (
		name TEXT PRIMARY KEY,
		value INTEGER NOT NULL
	)`,
	`INSERT INTO counters (name, value) VALUES ('queue_position', 247) ON CONFLICT (name) DO NOTHING`,

	// Headline experiment
	`CREATE TABLE IF NOT EXISTS headline_tests (
		session_id TEXT PRIMARY KEY,
		headline_id TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		converted_at TIMESTAMP,
		conversion_type TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS idx_headline_tests_headline ON headline_tests(headline_id)`,

	// Error alert rate limiting, created_at in unix seconds
	`CREATE TABLE IF NOT EXISTS alert_events (
		error_key TEXT NOT NULL,
		created_at BIGINT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_alert_events_key ON alert_events(error_key, created_at)`,
}
