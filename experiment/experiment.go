// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package experiment

import (
	"math/rand/v2"
	"sync"
)

// Headline is one landing-page headline variant
type Headline struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// Headlines are the variants under test, in display order
var Headlines = []Headline{
	{ID: "v2_dirty", Text: "You'd never eat somewhere dirty. Right?"},
	{ID: "v2_friends", Text: "Your friends check restaurants. You don't."},
	{ID: "v2_kitchens", Text: "Kitchens fail inspections. Nobody tells you."},
	{ID: "v2_busy", Text: "Too busy to check? That's what they're counting on."},
	{ID: "v2_corners", Text: "Restaurants cut corners. You pay the price."},
	{ID: "v2_3xweek", Text: "You eat out 3x a week. How many passed inspection?"},
	{ID: "v2_favorite", Text: "Your favorite restaurant failed inspection."},
}

// Picker assigns headlines uniformly at random.
// It is safe for concurrent use.
type Picker struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewPicker returns a picker drawing from rng, or from the global source
// when rng is nil.
func NewPicker(rng *rand.Rand) *Picker {
	return &Picker{rng: rng}
}

// Pick returns a random headline
func (p *Picker) Pick() Headline {
	return Headlines[p.intN(len(Headlines))]
}

func (p *Picker) intN(n int) int {
	if p.rng == nil {
		return rand.IntN(n)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rng.IntN(n)
}

// Lookup finds a headline by id
func Lookup(id string) (Headline, bool) {
	for _, h := range Headlines {
		if h.ID == id {
			return h, true
		}
	}
	return Headline{}, false
}
