// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package report

import (
	"math/rand/v2"
	"sort"
	"strings"

	"github.com/suppersafe/server/findings"
	"github.com/suppersafe/server/models"
	"github.com/suppersafe/server/scoring"
)

// Group folds feed rows into inspections, newest first. Rows with a blank
// or not-applicable severity still create the inspection but add no
// infraction.
func Group(rows []models.InspectionRecord) []models.Inspection {
	index := make(map[string]int)
	var inspections []models.Inspection

	for _, row := range rows {
		i, ok := index[row.InspectionID]
		if !ok {
			i = len(inspections)
			index[row.InspectionID] = i
			inspections = append(inspections, models.Inspection{
				ID:          row.InspectionID,
				Date:        row.InspectionDate,
				Status:      row.EstablishmentStatus,
				Infractions: []models.Infraction{},
			})
		}

		sev := strings.TrimSpace(row.Severity)
		if sev == "" || strings.HasPrefix(strings.ToUpper(sev), "N") {
			continue
		}
		inspections[i].Infractions = append(inspections[i].Infractions, models.Infraction{
			Severity: sev,
			Details:  row.InfractionDetails,
		})
	}

	// Dates are YYYY-MM-DD so string order is date order
	sort.SliceStable(inspections, func(a, b int) bool {
		return inspections[a].Date > inspections[b].Date
	})
	return inspections
}

// Count tallies the latest inspection's infractions by severity letter.
// Codes other than C, S or M are not counted.
func Count(infractions []models.Infraction) (crucial, significant, minor int) {
	for _, inf := range infractions {
		sev := strings.ToUpper(inf.Severity)
		switch {
		case strings.HasPrefix(sev, "C"):
			crucial++
		case strings.HasPrefix(sev, "S"):
			significant++
		case strings.HasPrefix(sev, "M"):
			minor++
		}
	}
	return crucial, significant, minor
}

// Build assembles the report card for one establishment. ok is false when
// there are no rows. A nil rng uses the global source for the percentile.
func Build(establishmentID string, rows []models.InspectionRecord, rng *rand.Rand) (r models.Report, ok bool) {
	if len(rows) == 0 {
		return models.Report{}, false
	}

	inspections := Group(rows)
	latest := inspections[0]

	status := latest.Status
	if status == "" {
		status = "Unknown"
	}

	crucial, significant, minor := Count(latest.Infractions)
	score := scoring.Score(crucial, significant, minor, status)
	details := scoring.GetDetails(score)

	raw := make([]models.Infraction, 0, len(latest.Infractions))
	for _, inf := range latest.Infractions {
		if inf.Details != "" {
			raw = append(raw, inf)
		}
	}

	return models.Report{
		EstablishmentID: establishmentID,
		Name:            rows[0].EstablishmentName,
		Address:         rows[0].EstablishmentAddress,
		Status:          status,
		LatestDate:      latest.Date,
		Crucial:         crucial,
		Significant:     significant,
		Minor:           minor,
		Total:           crucial + significant + minor,
		SafetyScore:     score,
		Label:           details.Label,
		Color:           details.Color,
		Class:           details.Class,
		Percentile:      scoring.Percentile(score, rng),
		Findings:        findings.TranslateAll(raw),
		RawFindings:     raw,
		Inspections:     inspections,
	}, true
}
