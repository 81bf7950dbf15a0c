// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package scoring

import (
	"math/rand/v2"

	"github.com/suppersafe/server/models"
)

// Point deductions per violation and per establishment status
const (
	CrucialPenalty     = 25
	SignificantPenalty = 10
	MinorPenalty       = 3

	ConditionalPassPenalty = 10
	ClosedPenalty          = 30
)

// Tier class names, shared with the share-message categories
const (
	TierExcellent = "excellent"
	TierGood      = "good"
	TierFair      = "fair"
	TierPoor      = "poor"
	TierCritical  = "critical"
)

// Details is the display treatment for a score
type Details struct {
	Label string `json:"label"`
	Color string `json:"color"`
	Class string `json:"class"`
}

// Score computes the 0-100 safety score for one inspection
func Score(crucial, significant, minor int, status string) int {
	score := 100
	score -= crucial * CrucialPenalty
	score -= significant * SignificantPenalty
	score -= minor * MinorPenalty

	switch status {
	case models.StatusConditionalPass:
		score -= ConditionalPassPenalty
	case models.StatusClosed:
		score -= ClosedPenalty
	}

	return max(0, min(100, score))
}

// GetDetails maps a score onto its label bucket.
// Buckets are inclusive at the lower bound.
func GetDetails(score int) Details {
	switch {
	case score >= 90:
		return Details{Label: "Excellent", Color: "#059669", Class: TierExcellent}
	case score >= 80:
		return Details{Label: "Good", Color: "#10B981", Class: TierGood}
	case score >= 70:
		return Details{Label: "Fair", Color: "#D97706", Class: TierFair}
	case score >= 60:
		return Details{Label: "Needs Work", Color: "#F97316", Class: TierPoor}
	default:
		return Details{Label: "Critical", Color: "#DC2626", Class: TierCritical}
	}
}

// band is an inclusive percentile range
type band struct {
	minScore int
	low      int
	high     int
}

// Ordered high to low; the first band whose minScore is met wins
var percentileBands = []band{
	{95, 95, 99},
	{90, 85, 94},
	{85, 70, 79},
	{80, 55, 69},
	{70, 35, 49},
	{60, 20, 34},
	{0, 5, 19},
}

// PercentileRange returns the inclusive range Percentile draws from
func PercentileRange(score int) (low, high int) {
	for _, b := range percentileBands {
		if score >= b.minScore {
			return b.low, b.high
		}
	}
	last := percentileBands[len(percentileBands)-1]
	return last.low, last.high
}

// Percentile returns a display percentile for the score.
// The value is drawn at random from the score's band, so repeated calls
// with the same score differ. A nil rng uses the global source.
func Percentile(score int, rng *rand.Rand) int {
	low, high := PercentileRange(score)
	span := high - low + 1
	if rng == nil {
		return low + rand.IntN(span)
	}
	return low + rng.IntN(span)
}
