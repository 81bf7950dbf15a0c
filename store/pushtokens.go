// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/suppersafe/server/models"
)

// UpsertPushToken stores the device token for a user's platform,
// replacing any previous token on that platform.
func (s *Store) UpsertPushToken(ctx context.Context, t models.PushToken) error {
	_, err := s.db.ExecContext(ctx, s.q(`
		INSERT INTO push_tokens (user_id, token, platform)
		VALUES (?, ?, ?)
		ON CONFLICT (user_id, platform) DO UPDATE SET
			token = excluded.token,
			updated_at = CURRENT_TIMESTAMP
	`), t.UserID, t.Token, t.Platform)
	if err != nil {
		return fmt.Errorf("upsert push token: %w", err)
	}
	return nil
}

// DeletePushToken removes a user's token for one platform
func (s *Store) DeletePushToken(ctx context.Context, userID, platform string) error {
	res, err := s.db.ExecContext(ctx, s.q(`
		DELETE FROM push_tokens WHERE user_id = ? AND platform = ?
	`), userID, platform)
	if err != nil {
		return fmt.Errorf("delete push token: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete push token: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// PushTokensForUsers returns all tokens registered by the given users
func (s *Store) PushTokensForUsers(ctx context.Context, userIDs []string) ([]models.PushToken, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}

	query, args, err := sqlx.In(`
		SELECT user_id, token, platform
		FROM push_tokens
		WHERE user_id IN (?)
		ORDER BY user_id, platform
	`, userIDs)
	if err != nil {
		return nil, fmt.Errorf("push tokens: %w", err)
	}

	var tokens []models.PushToken
	if err := s.db.SelectContext(ctx, &tokens, s.q(query), args...); err != nil {
		return nil, fmt.Errorf("push tokens: %w", err)
	}
	return tokens, nil
}

// ClaimNotifications records that each user is being alerted about an
// establishment's inspection. claimed[i] is false when logs[i] was
// already claimed. All claims are written in one transaction, so an error
// leaves none of them behind.
func (s *Store) ClaimNotifications(ctx context.Context, logs []models.NotificationLog) ([]bool, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin claim tx: %w", err)
	}
	defer tx.Rollback()

	stmt := s.q(`
		INSERT INTO notification_logs (user_id, establishment_id, inspection_date)
		VALUES (?, ?, ?)
		ON CONFLICT (user_id, establishment_id, inspection_date) DO NOTHING
	`)

	claimed := make([]bool, len(logs))
	for i, l := range logs {
		res, err := tx.ExecContext(ctx, stmt, l.UserID, l.EstablishmentID, l.InspectionDate)
		if err != nil {
			return nil, fmt.Errorf("claim notification: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return nil, fmt.Errorf("claim notification: %w", err)
		}
		claimed[i] = n == 1
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit claims: %w", err)
	}
	return claimed, nil
}
