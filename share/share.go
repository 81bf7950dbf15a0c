// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package share

import (
	_ "embed"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"text/template"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/suppersafe/server/findings"
	"github.com/suppersafe/server/models"
	"github.com/suppersafe/server/scoring"
)

//go:embed templates.yaml
var defaultCatalogue []byte

// Categories beyond the score tiers
const (
	CategoryDefault         = "default"
	CategoryPests           = "pests"
	CategoryConditionalPass = "conditionalPass"
)

// Input is everything a share message can mention about a restaurant.
type Input struct {
	Name        string
	Score       int
	Percentile  int
	Crucial     int
	Significant int
	Minor       int
	Status      string
	LatestDate  string // YYYY-MM-DD, may be empty
	Findings    []models.Infraction
}

// FromReport copies the share-relevant parts of a report.
func FromReport(r models.Report) Input {
	return Input{
		Name:        r.Name,
		Score:       r.SafetyScore,
		Percentile:  r.Percentile,
		Crucial:     r.Crucial,
		Significant: r.Significant,
		Minor:       r.Minor,
		Status:      r.Status,
		LatestDate:  r.LatestDate,
		Findings:    r.RawFindings,
	}
}

// fields is the data each template body renders against
type fields struct {
	Name          string
	Score         int
	Percentile    int
	Crucial       int
	Significant   int
	Minor         int
	Total         int
	Status        string
	DateFormatted string
	Label         string
	TopFinding    string
}

type variant struct {
	weight float64
	tmpl   *template.Template
}

type rawVariant struct {
	Weight float64 `yaml:"weight"`
	Body   string  `yaml:"body"`
}

// Generator renders share messages from a template catalogue.
// It is safe for concurrent use.
type Generator struct {
	catalogue map[string]map[string][]variant

	mu  sync.Mutex
	rng *rand.Rand
}

var funcs = template.FuncMap{
	"plural": func(n int, word string) string {
		if n == 1 {
			return word
		}
		return word + "s"
	},
	"lower": strings.ToLower,
	"sub":   func(a, b int) int { return a - b },
}

// New loads the embedded catalogue. A nil rng uses the global source.
func New(rng *rand.Rand) (*Generator, error) {
	return Load(defaultCatalogue, rng)
}

// Load parses and validates a YAML catalogue of
// platform -> category -> [{weight, body}].
func Load(data []byte, rng *rand.Rand) (*Generator, error) {
	var raw map[string]map[string][]rawVariant
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse share catalogue: %w", err)
	}
	if len(raw) == 0 {
		return nil, errors.New("share catalogue is empty")
	}

	cat := make(map[string]map[string][]variant, len(raw))
	for platform, categories := range raw {
		cat[platform] = make(map[string][]variant, len(categories))
		for category, entries := range categories {
			if len(entries) == 0 {
				return nil, fmt.Errorf("%s/%s has no templates", platform, category)
			}
			for i, e := range entries {
				name := fmt.Sprintf("%s/%s/%d", platform, category, i)
				if e.Weight <= 0 {
					return nil, fmt.Errorf("%s: weight must be positive", name)
				}
				t, err := template.New(name).Funcs(funcs).Option("missingkey=error").Parse(e.Body)
				if err != nil {
					return nil, fmt.Errorf("%s: %w", name, err)
				}
				// Render once so field typos fail at load, not at share time
				if err := t.Execute(&strings.Builder{}, fields{}); err != nil {
					return nil, fmt.Errorf("%s: %w", name, err)
				}
				cat[platform][category] = append(cat[platform][category], variant{weight: e.Weight, tmpl: t})
			}
		}
	}

	return &Generator{catalogue: cat, rng: rng}, nil
}

// Category picks the template category for a platform and restaurant.
// Pests beat conditional pass, which beats the score tier.
func Category(platform string, in Input) string {
	switch {
	case platform == models.ShareCopy:
		return CategoryDefault
	case findings.HasPests(in.Findings):
		return CategoryPests
	case in.Status == models.StatusConditionalPass:
		return CategoryConditionalPass
	default:
		return scoring.GetDetails(in.Score).Class
	}
}

// Fallback is the message used when no template applies
func Fallback(in Input) string {
	return fmt.Sprintf("%s - %d/100 on health inspection. Check any Toronto restaurant: suppersafe.com", in.Name, in.Score)
}

// Message renders a share message. It never fails; anything that cannot
// be templated gets the generic fallback.
func (g *Generator) Message(platform string, in Input) string {
	variants := g.catalogue[platform][Category(platform, in)]
	if len(variants) == 0 {
		return Fallback(in)
	}

	weights := make([]float64, len(variants))
	total := 0.0
	for i, v := range variants {
		weights[i] = v.weight
		total += v.weight
	}
	v := variants[pickIndex(weights, g.unit()*total)]

	var b strings.Builder
	if err := v.tmpl.Execute(&b, newFields(in)); err != nil {
		return Fallback(in)
	}
	return b.String()
}

func (g *Generator) unit() float64 {
	if g.rng == nil {
		return rand.Float64()
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rng.Float64()
}

// pickIndex walks the weights subtracting each from draw until it is
// used up. draw is expected in [0, sum(weights)).
func pickIndex(weights []float64, draw float64) int {
	for i, w := range weights {
		draw -= w
		if draw <= 0 {
			return i
		}
	}
	return 0
}

func newFields(in Input) fields {
	status := in.Status
	if status == "" {
		status = "Unknown"
	}
	return fields{
		Name:          in.Name,
		Score:         in.Score,
		Percentile:    in.Percentile,
		Crucial:       in.Crucial,
		Significant:   in.Significant,
		Minor:         in.Minor,
		Total:         in.Crucial + in.Significant + in.Minor,
		Status:        status,
		DateFormatted: FormatDate(in.LatestDate),
		Label:         scoring.GetDetails(in.Score).Label,
		TopFinding:    findings.TopShareFinding(in.Findings),
	}
}

// FormatDate renders YYYY-MM-DD as "Jan 2, 2006"
func FormatDate(date string) string {
	if date == "" {
		return "Unknown"
	}
	t, err := time.Parse(time.DateOnly, date)
	if err != nil {
		return "Unknown"
	}
	return t.Format("Jan 2, 2006")
}
