// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package scoring

import (
	"math/rand/v2"
	"testing"

	"github.com/suppersafe/server/models"
)

func TestScore(t *testing.T) {
	tests := []struct {
		name        string
		crucial     int
		significant int
		minor       int
		status      string
		want        int
	}{
		{"clean pass", 0, 0, 0, models.StatusPass, 100},
		{"one crucial", 1, 0, 0, models.StatusPass, 75},
		{"closed with violations", 2, 1, 0, models.StatusClosed, 10},
		{"clamped at zero", 5, 0, 0, models.StatusPass, 0},
		{"conditional pass penalty", 0, 0, 0, models.StatusConditionalPass, 90},
		{"closed penalty only", 0, 0, 0, models.StatusClosed, 70},
		{"minors add up", 0, 0, 4, models.StatusPass, 88},
		{"mixed", 1, 2, 3, models.StatusConditionalPass, 36},
		{"unknown status has no penalty", 0, 1, 0, "Unknown", 90},
		{"negative counts clamp to 100", -3, 0, 0, models.StatusPass, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Score(tt.crucial, tt.significant, tt.minor, tt.status)
			if got != tt.want {
				t.Errorf("Score(%d, %d, %d, %q) = %d, want %d",
					tt.crucial, tt.significant, tt.minor, tt.status, got, tt.want)
			}
		})
	}
}

func TestScore_AlwaysInRange(t *testing.T) {
	statuses := []string{models.StatusPass, models.StatusConditionalPass, models.StatusClosed, "other"}
	for c := 0; c <= 5; c++ {
		for s := 0; s <= 10; s++ {
			for m := 0; m <= 35; m += 5 {
				for _, status := range statuses {
					got := Score(c, s, m, status)
					if got < 0 || got > 100 {
						t.Fatalf("Score(%d, %d, %d, %q) = %d out of range", c, s, m, status, got)
					}
				}
			}
		}
	}
}

func TestGetDetails_Boundaries(t *testing.T) {
	tests := []struct {
		score int
		label string
		class string
	}{
		{100, "Excellent", TierExcellent},
		{90, "Excellent", TierExcellent},
		{89, "Good", TierGood},
		{80, "Good", TierGood},
		{79, "Fair", TierFair},
		{70, "Fair", TierFair},
		{69, "Needs Work", TierPoor},
		{60, "Needs Work", TierPoor},
		{59, "Critical", TierCritical},
		{0, "Critical", TierCritical},
	}

	for _, tt := range tests {
		got := GetDetails(tt.score)
		if got.Label != tt.label || got.Class != tt.class {
			t.Errorf("GetDetails(%d) = %+v, want label %q class %q", tt.score, got, tt.label, tt.class)
		}
		if got.Color == "" {
			t.Errorf("GetDetails(%d) returned empty color", tt.score)
		}
	}
}

func TestGetDetails_TotalOverRange(t *testing.T) {
	labels := map[string]bool{"Excellent": true, "Good": true, "Fair": true, "Needs Work": true, "Critical": true}
	prev := ""
	changes := 0
	for score := 100; score >= 0; score-- {
		label := GetDetails(score).Label
		if !labels[label] {
			t.Fatalf("score %d mapped to unexpected label %q", score, label)
		}
		if label != prev {
			changes++
			prev = label
		}
	}
	// Five contiguous buckets means exactly five label runs
	if changes != 5 {
		t.Errorf("expected 5 contiguous buckets, got %d", changes)
	}
}

func TestPercentile_WithinBand(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))

	for score := 0; score <= 100; score++ {
		low, high := PercentileRange(score)
		for i := 0; i < 50; i++ {
			p := Percentile(score, rng)
			if p < low || p > high {
				t.Fatalf("Percentile(%d) = %d, want within [%d, %d]", score, p, low, high)
			}
		}
	}
}

func TestPercentile_KnownBands(t *testing.T) {
	tests := []struct {
		score     int
		low, high int
	}{
		{97, 95, 99},
		{95, 95, 99},
		{92, 85, 94},
		{86, 70, 79},
		{81, 55, 69},
		{75, 35, 49},
		{60, 20, 34},
		{10, 5, 19},
	}

	for _, tt := range tests {
		low, high := PercentileRange(tt.score)
		if low != tt.low || high != tt.high {
			t.Errorf("PercentileRange(%d) = [%d, %d], want [%d, %d]", tt.score, low, high, tt.low, tt.high)
		}
	}
}

func TestPercentile_CoversWholeBand(t *testing.T) {
	rng := rand.New(rand.NewPCG(42, 7))
	seen := make(map[int]bool)
	for i := 0; i < 2000; i++ {
		seen[Percentile(97, rng)] = true
	}
	for p := 95; p <= 99; p++ {
		if !seen[p] {
			t.Errorf("percentile %d never drawn for score 97", p)
		}
	}
}

func TestPercentile_NilRNG(t *testing.T) {
	p := Percentile(50, nil)
	if p < 5 || p > 19 {
		t.Errorf("Percentile(50, nil) = %d, want within [5, 19]", p)
	}
}
