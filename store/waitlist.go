// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/suppersafe/server/models"
)

// FallbackQueuePosition is used when the counter row is missing
const FallbackQueuePosition = 248

// WaitlistByEmail looks up a signup by (lower-cased) email
func (s *Store) WaitlistByEmail(ctx context.Context, email string) (models.WaitlistEntry, error) {
	var e models.WaitlistEntry
	err := s.db.GetContext(ctx, &e, s.q(`
		SELECT email, referral_code, queue_position, referred_by, referral_count
		FROM waitlist
		WHERE email = ?
	`), strings.ToLower(email))
	if errors.Is(err, sql.ErrNoRows) {
		return models.WaitlistEntry{}, ErrNotFound
	}
	if err != nil {
		return models.WaitlistEntry{}, fmt.Errorf("waitlist lookup: %w", err)
	}
	return e, nil
}

// CreateWaitlistEntry allocates the next queue position, inserts the
// signup and credits the referrer, all in one transaction. A clash on
// email or referral code returns ErrConflict and leaves nothing behind.
func (s *Store) CreateWaitlistEntry(ctx context.Context, email, referralCode string, referredBy *string) (models.WaitlistEntry, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return models.WaitlistEntry{}, fmt.Errorf("begin waitlist tx: %w", err)
	}
	defer tx.Rollback()

	var position int
	err = tx.GetContext(ctx, &position, s.q(`
		UPDATE counters SET value = value + 1 WHERE name = ? RETURNING value
	`), "queue_position")
	if errors.Is(err, sql.ErrNoRows) {
		position = FallbackQueuePosition
	} else if err != nil {
		return models.WaitlistEntry{}, fmt.Errorf("allocate queue position: %w", err)
	}

	entry := models.WaitlistEntry{
		Email:         strings.ToLower(email),
		ReferralCode:  referralCode,
		QueuePosition: position,
		ReferredBy:    referredBy,
	}

	_, err = tx.ExecContext(ctx, s.q(`
		INSERT INTO waitlist (email, referral_code, queue_position, referred_by)
		VALUES (?, ?, ?, ?)
	`), entry.Email, entry.ReferralCode, entry.QueuePosition, entry.ReferredBy)
	if isUniqueViolation(err) {
		return models.WaitlistEntry{}, ErrConflict
	}
	if err != nil {
		return models.WaitlistEntry{}, fmt.Errorf("insert waitlist entry: %w", err)
	}

	if referredBy != nil && *referredBy != "" && *referredBy != referralCode {
		_, err = tx.ExecContext(ctx, s.q(`
			UPDATE waitlist SET referral_count = referral_count + 1 WHERE referral_code = ?
		`), *referredBy)
		if err != nil {
			return models.WaitlistEntry{}, fmt.Errorf("credit referrer: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return models.WaitlistEntry{}, fmt.Errorf("commit waitlist tx: %w", err)
	}
	return entry, nil
}
