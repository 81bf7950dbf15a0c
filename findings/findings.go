// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package findings

import (
	"strings"
	"unicode"

	"github.com/suppersafe/server/models"
)

// rule matches when every keyword in all is present and, if any or
// words is non-empty, at least one of them hits. Entries in words only
// match whole words, so "rat" does not fire on "temperature".
type rule struct {
	all   []string
	any   []string
	words []string
	text  string
	icon  string
}

func (r rule) matches(t string) bool {
	for _, kw := range r.all {
		if !strings.Contains(t, kw) {
			return false
		}
	}
	if len(r.any) == 0 && len(r.words) == 0 {
		return true
	}
	return containsAny(t, r.any) || hasWord(t, r.words)
}

type tier struct {
	severity string
	rules    []rule
	fallback rule
}

// Rules are evaluated in order; more specific keywords come first.
var (
	crucialTier = tier{
		severity: models.SeverityCrucial,
		rules: []rule{
			{any: []string{"rodent", "mouse"}, words: []string{"rat", "rats"}, text: "Rodent activity detected", icon: "bug"},
			{any: []string{"cockroach", "roach"}, text: "Cockroaches found on premises", icon: "bug"},
			{any: []string{"pest", "vermin"}, text: "Active pest infestation", icon: "bug"},
			{any: []string{"sewage", "sewerage"}, text: "Sewage/drainage issue", icon: "droplets"},
			{all: []string{"temperature", "danger"}, text: "Food held at dangerous temperatures", icon: "thermometer"},
			{any: []string{"contamina"}, text: "Food contamination risk", icon: "shieldAlert"},
		},
		fallback: rule{text: "Critical health violation", icon: "alertCircle"},
	}

	significantTier = tier{
		severity: models.SeveritySignificant,
		rules: []rule{
			{all: []string{"handwash", "soap"}, text: "No soap at handwashing station", icon: "droplet"},
			{all: []string{"handwash", "paper"}, text: "No paper towels for hand drying", icon: "scroll"},
			{all: []string{"handwash"}, text: "Handwashing facility issue", icon: "hand"},
			{all: []string{"temperature", "cold"}, text: "Cold food not kept cold enough", icon: "snowflake"},
			{all: []string{"temperature", "hot"}, text: "Hot food not kept hot enough", icon: "flame"},
			{any: []string{"sanitiz", "sanitis"}, text: "Equipment not properly sanitized", icon: "sparkles"},
			{any: []string{"cross-contam", "cross contam"}, text: "Cross-contamination risk", icon: "alertTriangle"},
		},
		fallback: rule{text: "Significant health violation", icon: "alertTriangle"},
	}

	minorTier = tier{
		severity: models.SeverityMinor,
		rules: []rule{
			{all: []string{"thermometer"}, text: "Missing thermometer in fridge/freezer", icon: "thermometer"},
			{all: []string{"clean", "floor"}, text: "Floors need cleaning", icon: "paintbrush"},
			{all: []string{"clean", "wall"}, text: "Walls need cleaning", icon: "square"},
			{any: []string{"food handler", "certification"}, text: "Staff certification paperwork issue", icon: "clipboard"},
			{all: []string{"light", "cover"}, text: "Light fixture needs cover", icon: "lightbulb"},
			{all: []string{"label"}, text: "Food labeling issue", icon: "tag"},
		},
		fallback: rule{text: "Health code violation", icon: "fileText"},
	}
)

// TierFor buckets a severity code by its leading letter.
// Anything that is not crucial or significant is treated as minor.
func TierFor(severity string) string {
	sev := strings.ToUpper(strings.TrimSpace(severity))
	switch {
	case strings.HasPrefix(sev, "C"):
		return models.SeverityCrucial
	case strings.HasPrefix(sev, "S"):
		return models.SeveritySignificant
	default:
		return models.SeverityMinor
	}
}

// Translate converts a raw infraction description into a short phrase.
// The severity tier is resolved first (crucial, then significant, then
// minor) and the first matching keyword rule of that tier wins.
func Translate(text, severity string) models.Finding {
	t := strings.ToLower(text)

	var tr tier
	switch TierFor(severity) {
	case models.SeverityCrucial:
		tr = crucialTier
	case models.SeveritySignificant:
		tr = significantTier
	default:
		tr = minorTier
	}

	for _, r := range tr.rules {
		if r.matches(t) {
			return models.Finding{Text: r.text, Severity: tr.severity, Icon: r.icon}
		}
	}
	return models.Finding{Text: tr.fallback.text, Severity: tr.severity, Icon: tr.fallback.icon}
}

// TranslateAll translates every infraction in order
func TranslateAll(infractions []models.Infraction) []models.Finding {
	out := make([]models.Finding, 0, len(infractions))
	for _, inf := range infractions {
		out = append(out, Translate(inf.Details, inf.Severity))
	}
	return out
}

var (
	pestWords     = []string{"pest", "rodent", "vermin", "cockroach", "mouse", "insect"}
	pestWholeWord = []string{"rat", "rats"}
)

// HasPests reports whether any raw infraction mentions pests
func HasPests(infractions []models.Infraction) bool {
	for _, inf := range infractions {
		lower := strings.ToLower(inf.Details)
		if containsAny(lower, pestWords) || hasWord(lower, pestWholeWord) {
			return true
		}
	}
	return false
}

var (
	shockWords     = []string{"pest", "rodent", "vermin", "contamination", "sewage", "mold", "feces", "insect", "cockroach"}
	secondaryWords = []string{"temperature", "handwash", "sanitiz", "raw meat"}
)

// TopShareFinding picks the most attention-grabbing summary of the
// infractions, or "" when nothing stands out.
func TopShareFinding(infractions []models.Infraction) string {
	for _, inf := range infractions {
		lower := strings.ToLower(inf.Details)
		if !containsAny(lower, shockWords) {
			continue
		}
		switch {
		case strings.Contains(lower, "pest") || strings.Contains(lower, "vermin"):
			return "pest evidence"
		case strings.Contains(lower, "rodent"):
			return "rodent evidence"
		case strings.Contains(lower, "cockroach"):
			return "cockroaches found"
		default:
			return "contamination issues"
		}
	}

	for _, inf := range infractions {
		lower := strings.ToLower(inf.Details)
		if !containsAny(lower, secondaryWords) {
			continue
		}
		switch {
		case strings.Contains(lower, "temperature"):
			return "food temperature issues"
		case strings.Contains(lower, "handwash"):
			return "handwashing issues"
		default:
			return "sanitization issues"
		}
	}

	return ""
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

// hasWord reports whether any of words appears as a whole word in s
func hasWord(s string, words []string) bool {
	if len(words) == 0 {
		return false
	}
	tokens := strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r)
	})
	for _, tok := range tokens {
		for _, w := range words {
			if tok == w {
				return true
			}
		}
	}
	return false
}
