// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// HeadlineStat aggregates one headline variant
type HeadlineStat struct {
	HeadlineID  string `db:"headline_id" json:"headline_id"`
	Impressions int    `db:"impressions" json:"impressions"`
	Conversions int    `db:"conversions" json:"conversions"`
}

// HeadlineForSession returns the headline already assigned to a session
func (s *Store) HeadlineForSession(ctx context.Context, sessionID string) (string, error) {
	var id string
	err := s.db.GetContext(ctx, &id, s.q(`
		SELECT headline_id FROM headline_tests WHERE session_id = ?
	`), sessionID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("headline lookup: %w", err)
	}
	return id, nil
}

// RecordImpression assigns headlineID to the session unless it already
// has one, and returns whichever assignment is stored.
func (s *Store) RecordImpression(ctx context.Context, sessionID, headlineID string) (string, error) {
	_, err := s.db.ExecContext(ctx, s.q(`
		INSERT INTO headline_tests (session_id, headline_id)
		VALUES (?, ?)
		ON CONFLICT (session_id) DO NOTHING
	`), sessionID, headlineID)
	if err != nil {
		return "", fmt.Errorf("record impression: %w", err)
	}
	return s.HeadlineForSession(ctx, sessionID)
}

// ReassignHeadline moves a session to a new headline as a fresh
// impression, clearing any conversion recorded against the old one.
func (s *Store) ReassignHeadline(ctx context.Context, sessionID, headlineID string) error {
	res, err := s.db.ExecContext(ctx, s.q(`
		UPDATE headline_tests
		SET headline_id = ?, created_at = CURRENT_TIMESTAMP,
			converted_at = NULL, conversion_type = NULL
		WHERE session_id = ?
	`), headlineID, sessionID)
	if err != nil {
		return fmt.Errorf("reassign headline: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reassign headline: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// RecordConversion marks the session's first conversion. Later
// conversions are ignored. ErrNotFound when the session never saw a
// headline.
func (s *Store) RecordConversion(ctx context.Context, sessionID, conversionType string) error {
	res, err := s.db.ExecContext(ctx, s.q(`
		UPDATE headline_tests
		SET converted_at = CURRENT_TIMESTAMP, conversion_type = ?
		WHERE session_id = ? AND converted_at IS NULL
	`), conversionType, sessionID)
	if err != nil {
		return fmt.Errorf("record conversion: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("record conversion: %w", err)
	}
	if n > 0 {
		return nil
	}

	if _, err := s.HeadlineForSession(ctx, sessionID); err != nil {
		return err
	}
	return nil
}

// HeadlineStats returns impressions and conversions per headline
func (s *Store) HeadlineStats(ctx context.Context) ([]HeadlineStat, error) {
	stats := []HeadlineStat{}
	err := s.db.SelectContext(ctx, &stats, `
		SELECT headline_id,
			COUNT(*) AS impressions,
			COUNT(converted_at) AS conversions
		FROM headline_tests
		GROUP BY headline_id
		ORDER BY headline_id
	`)
	if err != nil {
		return nil, fmt.Errorf("headline stats: %w", err)
	}
	return stats, nil
}
