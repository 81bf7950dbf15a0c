// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package findings

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"github.com/suppersafe/server/models"
)

func TestTranslate(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		severity string
		want     models.Finding
	}{
		{
			name:     "crucial rodent",
			text:     "Operator failed to ensure food premise free of RODENT droppings",
			severity: "C - Crucial",
			want:     models.Finding{Text: "Rodent activity detected", Severity: "crucial", Icon: "bug"},
		},
		{
			name:     "crucial cockroach",
			text:     "Cockroach activity observed",
			severity: "C - Crucial",
			want:     models.Finding{Text: "Cockroaches found on premises", Severity: "crucial", Icon: "bug"},
		},
		{
			name:     "crucial dangerous temperature",
			text:     "Potentially hazardous food held in temperature danger zone",
			severity: "C - Crucial",
			want:     models.Finding{Text: "Food held at dangerous temperatures", Severity: "crucial", Icon: "thermometer"},
		},
		{
			name:     "rat only as a whole word",
			text:     "RATS observed in storage room",
			severity: "C - Crucial",
			want:     models.Finding{Text: "Rodent activity detected", Severity: "crucial", Icon: "bug"},
		},
		{
			name:     "operator does not read as rat",
			text:     "Operator failed to ensure contamination controls",
			severity: "C - Crucial",
			want:     models.Finding{Text: "Food contamination risk", Severity: "crucial", Icon: "shieldAlert"},
		},
		{
			name:     "crucial fallback",
			text:     "Something unusual",
			severity: "C - Crucial",
			want:     models.Finding{Text: "Critical health violation", Severity: "crucial", Icon: "alertCircle"},
		},
		{
			name:     "significant handwash soap before generic handwash",
			text:     "Handwash station lacks soap",
			severity: "S - Significant",
			want:     models.Finding{Text: "No soap at handwashing station", Severity: "significant", Icon: "droplet"},
		},
		{
			name:     "significant handwash paper",
			text:     "Handwash basin without paper towels",
			severity: "S - Significant",
			want:     models.Finding{Text: "No paper towels for hand drying", Severity: "significant", Icon: "scroll"},
		},
		{
			name:     "significant generic handwash",
			text:     "Handwash basin obstructed",
			severity: "S - Significant",
			want:     models.Finding{Text: "Handwashing facility issue", Severity: "significant", Icon: "hand"},
		},
		{
			name:     "significant cold holding",
			text:     "Cold holding temperature above 4C",
			severity: "S - Significant",
			want:     models.Finding{Text: "Cold food not kept cold enough", Severity: "significant", Icon: "snowflake"},
		},
		{
			name:     "significant sanitizer british spelling",
			text:     "Utensils not sanitised",
			severity: "S - Significant",
			want:     models.Finding{Text: "Equipment not properly sanitized", Severity: "significant", Icon: "sparkles"},
		},
		{
			name:     "minor floors",
			text:     "Floor not maintained clean",
			severity: "M - Minor",
			want:     models.Finding{Text: "Floors need cleaning", Severity: "minor", Icon: "paintbrush"},
		},
		{
			name:     "minor label",
			text:     "Prepackaged food without label",
			severity: "M - Minor",
			want:     models.Finding{Text: "Food labeling issue", Severity: "minor", Icon: "tag"},
		},
		{
			name:     "not applicable severity falls to minor tier",
			text:     "Thermometer missing in cooler",
			severity: "NA - Not Applicable",
			want:     models.Finding{Text: "Missing thermometer in fridge/freezer", Severity: "minor", Icon: "thermometer"},
		},
		{
			name:     "empty input",
			text:     "",
			severity: "",
			want:     models.Finding{Text: "Health code violation", Severity: "minor", Icon: "fileText"},
		},
		{
			name:     "rodent keyword under minor severity is not crucial",
			text:     "Rodent proofing incomplete",
			severity: "M - Minor",
			want:     models.Finding{Text: "Health code violation", Severity: "minor", Icon: "fileText"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Translate(tt.text, tt.severity)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Translate() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestTranslate_Deterministic(t *testing.T) {
	first := Translate("Handwash station lacks soap", "S")
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Translate("Handwash station lacks soap", "S"))
	}
}

func TestTranslate_AlwaysNonEmpty(t *testing.T) {
	severities := []string{"C", "S", "M", "N", "", "x"}
	texts := []string{"", "random", "RODENT", "handwash", "label"}
	valid := map[string]bool{"crucial": true, "significant": true, "minor": true}

	for _, sev := range severities {
		for _, text := range texts {
			f := Translate(text, sev)
			assert.NotEmpty(t, f.Text)
			assert.NotEmpty(t, f.Icon)
			assert.True(t, valid[f.Severity], "unexpected tier %q", f.Severity)
		}
	}
}

func TestTierFor(t *testing.T) {
	assert.Equal(t, models.SeverityCrucial, TierFor("c - crucial"))
	assert.Equal(t, models.SeveritySignificant, TierFor(" S - Significant"))
	assert.Equal(t, models.SeverityMinor, TierFor("M - Minor"))
	assert.Equal(t, models.SeverityMinor, TierFor("NA - Not Applicable"))
}

func TestHasPests(t *testing.T) {
	assert.False(t, HasPests(nil))
	assert.False(t, HasPests([]models.Infraction{{Severity: "M", Details: "Floor dirty"}}))
	assert.True(t, HasPests([]models.Infraction{
		{Severity: "M", Details: "Floor dirty"},
		{Severity: "C", Details: "Evidence of MOUSE droppings"},
	}))
	assert.True(t, HasPests([]models.Infraction{{Severity: "C", Details: "Rat burrows near entrance"}}))
	assert.False(t, HasPests([]models.Infraction{{Severity: "S", Details: "Cold holding temperature too high"}}))
	assert.False(t, HasPests([]models.Infraction{{Severity: "M", Details: "Operator failed to keep preparation area clean"}}))
	assert.True(t, HasPests([]models.Infraction{{Severity: "S", Details: "insect screens missing"}}))
}

func TestTopShareFinding(t *testing.T) {
	tests := []struct {
		name string
		in   []models.Infraction
		want string
	}{
		{"none", nil, ""},
		{"pest beats temperature", []models.Infraction{
			{Details: "Cold holding temperature too high"},
			{Details: "Pest control log missing"},
		}, "pest evidence"},
		{"rodent", []models.Infraction{{Details: "Rodent droppings"}}, "rodent evidence"},
		{"cockroach", []models.Infraction{{Details: "Cockroach observed"}}, "cockroaches found"},
		{"sewage", []models.Infraction{{Details: "Sewage backup"}}, "contamination issues"},
		{"temperature", []models.Infraction{{Details: "Hot holding temperature"}}, "food temperature issues"},
		{"handwash", []models.Infraction{{Details: "Handwash sink blocked"}}, "handwashing issues"},
		{"raw meat", []models.Infraction{{Details: "Raw meat stored above produce"}}, "sanitization issues"},
		{"nothing notable", []models.Infraction{{Details: "Light bulb without cover"}}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TopShareFinding(tt.in))
		})
	}
}
