// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/suppersafe/server/models"
)

const savedColumns = `
	user_id,
	establishment_id,
	establishment_name,
	COALESCE(establishment_address, '') AS establishment_address,
	last_inspection_date,
	last_score`

// ListSaved returns a user's saved restaurants, most recent first
func (s *Store) ListSaved(ctx context.Context, userID string) ([]models.SavedRestaurant, error) {
	saved := []models.SavedRestaurant{}
	err := s.db.SelectContext(ctx, &saved, s.q(`
		SELECT `+savedColumns+`
		FROM saved_restaurants
		WHERE user_id = ?
		ORDER BY created_at DESC, establishment_id
	`), userID)
	if err != nil {
		return nil, fmt.Errorf("list saved: %w", err)
	}
	return saved, nil
}

// SaveRestaurant inserts or refreshes a saved restaurant
func (s *Store) SaveRestaurant(ctx context.Context, r models.SavedRestaurant) error {
	_, err := s.db.ExecContext(ctx, s.q(`
		INSERT INTO saved_restaurants (user_id, establishment_id, establishment_name, establishment_address, last_inspection_date, last_score)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, establishment_id) DO UPDATE SET
			establishment_name = excluded.establishment_name,
			establishment_address = excluded.establishment_address,
			last_inspection_date = excluded.last_inspection_date,
			last_score = excluded.last_score
	`), r.UserID, r.EstablishmentID, r.EstablishmentName, r.EstablishmentAddress, r.LastInspectionDate, r.LastScore)
	if err != nil {
		return fmt.Errorf("save restaurant: %w", err)
	}
	return nil
}

// DeleteSaved removes a saved restaurant, ErrNotFound if it was not saved
func (s *Store) DeleteSaved(ctx context.Context, userID, establishmentID string) error {
	res, err := s.db.ExecContext(ctx, s.q(`
		DELETE FROM saved_restaurants WHERE user_id = ? AND establishment_id = ?
	`), userID, establishmentID)
	if err != nil {
		return fmt.Errorf("delete saved: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete saved: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// SavedByEstablishments returns every user's saved row for the given
// establishments.
func (s *Store) SavedByEstablishments(ctx context.Context, establishmentIDs []string) ([]models.SavedRestaurant, error) {
	if len(establishmentIDs) == 0 {
		return nil, nil
	}

	query, args, err := sqlx.In(`
		SELECT `+savedColumns+`
		FROM saved_restaurants
		WHERE establishment_id IN (?)
		ORDER BY user_id, establishment_id
	`, establishmentIDs)
	if err != nil {
		return nil, fmt.Errorf("saved by establishment: %w", err)
	}

	var saved []models.SavedRestaurant
	if err := s.db.SelectContext(ctx, &saved, s.q(query), args...); err != nil {
		return nil, fmt.Errorf("saved by establishment: %w", err)
	}
	return saved, nil
}
