// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db opens the database and creates its schema.

# Connections

Open picks the driver from DATABASE_TYPE:

	conn, err := db.Open(cfg.DatabaseType, cfg.DatabaseURL)

"postgres" uses lib/pq, "sqlite" (the default) uses the pure-Go
modernc.org/sqlite driver. Tests use "file::memory:".

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.

# Tables

  - dinesafe: Inspection feed rows (filled by the import job)
  - saved_restaurants: Restaurants a user follows
  - push_tokens: One device token per user per platform
  - notification_logs: Claimed (user, establishment, inspection date) alerts
  - waitlist: Signups with referral codes and queue positions
  - counters: Named sequences (queue_position starts at 247)
  - headline_tests: Headline experiment impressions and conversions
  - alert_events: Error alert timestamps for the shared rate limiter
*/
package db
