// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"fmt"
	"time"
)

// AllowAlertEvent is the shared-store sliding window used by the error
// alert limiter. It drops the key's events older than window, and if
// fewer than limit remain records one at now and returns true.
func (s *Store) AllowAlertEvent(ctx context.Context, key string, now time.Time, window time.Duration, limit int) (bool, error) {
	cutoff := now.Add(-window).Unix()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin alert tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, s.q(`
		DELETE FROM alert_events WHERE error_key = ? AND created_at <= ?
	`), key, cutoff); err != nil {
		return false, fmt.Errorf("prune alert events: %w", err)
	}

	var count int
	if err := tx.GetContext(ctx, &count, s.q(`
		SELECT COUNT(*) FROM alert_events WHERE error_key = ?
	`), key); err != nil {
		return false, fmt.Errorf("count alert events: %w", err)
	}
	if count >= limit {
		return false, tx.Commit()
	}

	if _, err := tx.ExecContext(ctx, s.q(`
		INSERT INTO alert_events (error_key, created_at) VALUES (?, ?)
	`), key, now.Unix()); err != nil {
		return false, fmt.Errorf("record alert event: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit alert tx: %w", err)
	}
	return true, nil
}
