// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"fmt"

	"github.com/suppersafe/server/models"
)

const inspectionColumns = `
	establishment_id,
	establishment_name,
	COALESCE(establishment_address, '') AS establishment_address,
	inspection_id,
	inspection_date,
	COALESCE(establishment_status, '') AS establishment_status,
	COALESCE(severity, '') AS severity,
	COALESCE(infraction_details, '') AS infraction_details`

// SearchEstablishments matches name substrings case-insensitively. It
// scans up to scan rows ordered by name and returns at most limit
// distinct establishments.
func (s *Store) SearchEstablishments(ctx context.Context, query string, scan, limit int) ([]models.EstablishmentSummary, error) {
	var rows []models.EstablishmentSummary
	err := s.db.SelectContext(ctx, &rows, s.q(`
		SELECT establishment_id, establishment_name, COALESCE(establishment_address, '') AS establishment_address
		FROM dinesafe
		WHERE LOWER(establishment_name) LIKE ? ESCAPE '\'
		ORDER BY establishment_name
		LIMIT ?
	`), likePattern(query), scan)
	if err != nil {
		return nil, fmt.Errorf("search establishments: %w", err)
	}

	seen := make(map[string]bool)
	results := make([]models.EstablishmentSummary, 0, limit)
	for _, row := range rows {
		if seen[row.ID] {
			continue
		}
		seen[row.ID] = true
		results = append(results, row)
		if len(results) == limit {
			break
		}
	}
	return results, nil
}

// EstablishmentRows returns every feed row for one establishment, newest
// inspection first.
func (s *Store) EstablishmentRows(ctx context.Context, establishmentID string) ([]models.InspectionRecord, error) {
	var rows []models.InspectionRecord
	err := s.db.SelectContext(ctx, &rows, s.q(`
		SELECT `+inspectionColumns+`
		FROM dinesafe
		WHERE establishment_id = ?
		ORDER BY inspection_date DESC
	`), establishmentID)
	if err != nil {
		return nil, fmt.Errorf("establishment rows: %w", err)
	}
	return rows, nil
}

// InspectionsBetween returns rows with since <= inspection_date <= until,
// newest first. Dates are YYYY-MM-DD.
func (s *Store) InspectionsBetween(ctx context.Context, since, until string) ([]models.InspectionRecord, error) {
	var rows []models.InspectionRecord
	err := s.db.SelectContext(ctx, &rows, s.q(`
		SELECT `+inspectionColumns+`
		FROM dinesafe
		WHERE inspection_date >= ? AND inspection_date <= ?
		ORDER BY inspection_date DESC
	`), since, until)
	if err != nil {
		return nil, fmt.Errorf("recent inspections: %w", err)
	}
	return rows, nil
}

// ViolationEstablishmentCount counts establishments with a crucial or
// significant infraction inspected on or after since.
func (s *Store) ViolationEstablishmentCount(ctx context.Context, since string) (int, error) {
	var count int
	err := s.db.GetContext(ctx, &count, s.q(`
		SELECT COUNT(DISTINCT establishment_id)
		FROM dinesafe
		WHERE inspection_date >= ?
		  AND (UPPER(severity) LIKE 'C%' OR UPPER(severity) LIKE 'S%')
	`), since)
	if err != nil {
		return 0, fmt.Errorf("violation count: %w", err)
	}
	return count, nil
}

// LatestByOutcome returns the most recent rows that passed (passed=true)
// or did not, for the inspection ticker.
func (s *Store) LatestByOutcome(ctx context.Context, passed bool, limit int) ([]models.InspectionRecord, error) {
	op := "<>"
	if passed {
		op = "="
	}

	var rows []models.InspectionRecord
	err := s.db.SelectContext(ctx, &rows, s.q(`
		SELECT establishment_name, inspection_date, COALESCE(establishment_status, '') AS establishment_status
		FROM dinesafe
		WHERE establishment_status `+op+` ?
		ORDER BY inspection_date DESC
		LIMIT ?
	`), models.StatusPass, limit)
	if err != nil {
		return nil, fmt.Errorf("latest inspections: %w", err)
	}
	return rows, nil
}
