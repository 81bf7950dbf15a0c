// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/sync/errgroup"

	"github.com/suppersafe/server/middleware"
	"github.com/suppersafe/server/models"
	"github.com/suppersafe/server/report"
	"github.com/suppersafe/server/share"
	"github.com/suppersafe/server/store"
)

// Search and ticker limits
const (
	minQueryLen  = 2
	searchScan   = 50
	searchLimit  = 6
	tickerPasses = 30
	tickerFails  = 15
	tickerMax    = 20
	statsWindow  = 30 // days
	statsUnknown = "Many"
)

type InspectionHandler struct {
	store *store.Store
	share *share.Generator
	rng   *rand.Rand
	now   func() time.Time

	// latest feeds the ticker; store.LatestByOutcome outside tests
	latest func(ctx context.Context, passed bool, limit int) ([]models.InspectionRecord, error)
}

// NewInspectionHandler builds the read-side handler. A nil rng uses the
// global source for percentiles.
func NewInspectionHandler(st *store.Store, gen *share.Generator, rng *rand.Rand) *InspectionHandler {
	return &InspectionHandler{store: st, share: gen, rng: rng, now: time.Now, latest: st.LatestByOutcome}
}

// Search handles GET /establishments?q=
func (h *InspectionHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if len([]rune(q)) < minQueryLen {
		middleware.JSONResponse(w, http.StatusOK, models.SearchResponse{Results: []models.EstablishmentSummary{}})
		return
	}

	results, err := h.store.SearchEstablishments(r.Context(), q, searchScan, searchLimit)
	if err != nil {
		slog.Error("failed to search establishments", "error", err, "query", q)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Search failed")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.SearchResponse{Results: results})
}

// buildReport loads and assembles one establishment's report card. It
// writes the error response itself and returns false on failure.
func (h *InspectionHandler) buildReport(w http.ResponseWriter, r *http.Request) (models.Report, bool) {
	id := r.PathValue("id")
	if id == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "establishment id is required")
		return models.Report{}, false
	}

	rows, err := h.store.EstablishmentRows(r.Context(), id)
	if err != nil {
		slog.Error("failed to load establishment", "error", err, "establishment_id", id)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to load inspections")
		return models.Report{}, false
	}

	rep, ok := report.Build(id, rows, h.rng)
	if !ok {
		middleware.ErrorResponse(w, http.StatusNotFound, "Establishment not found")
		return models.Report{}, false
	}
	return rep, true
}

// Report handles GET /establishments/{id}/report
func (h *InspectionHandler) Report(w http.ResponseWriter, r *http.Request) {
	rep, ok := h.buildReport(w, r)
	if !ok {
		return
	}
	middleware.JSONResponse(w, http.StatusOK, rep)
}

// Share handles POST /establishments/{id}/share
func (h *InspectionHandler) Share(w http.ResponseWriter, r *http.Request) {
	var req models.ShareRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.Platform == "" {
		req.Platform = models.ShareCopy
	}

	rep, ok := h.buildReport(w, r)
	if !ok {
		return
	}

	msg := h.share.Message(req.Platform, share.FromReport(rep))
	slog.Info("share message generated", "establishment_id", rep.EstablishmentID, "platform", req.Platform)

	middleware.JSONResponse(w, http.StatusOK, models.ShareResponse{
		Platform: req.Platform,
		Message:  msg,
	})
}

// ViolationStats handles GET /stats/violations. A store failure still
// answers 200 with a null count so the landing page can show "Many".
func (h *InspectionHandler) ViolationStats(w http.ResponseWriter, r *http.Request) {
	since := h.now().UTC().AddDate(0, 0, -statsWindow).Format(time.DateOnly)

	count, err := h.store.ViolationEstablishmentCount(r.Context(), since)
	if err != nil {
		slog.Warn("failed to get violation count", "error", err)
		middleware.JSONResponse(w, http.StatusOK, models.ViolationStatsResponse{
			Display: statsUnknown,
			Since:   since,
		})
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.ViolationStatsResponse{
		Count:   &count,
		Display: humanize.Comma(int64(count)),
		Since:   since,
	})
}

// Ticker handles GET /ticker. Passes and fails load concurrently; if one
// half fails the ticker shows the other, and only a double failure is 500.
func (h *InspectionHandler) Ticker(w http.ResponseWriter, r *http.Request) {
	var (
		passes, fails     []models.InspectionRecord
		passErr, failsErr error
	)

	var g errgroup.Group
	g.Go(func() error {
		passes, passErr = h.latest(r.Context(), true, tickerPasses)
		return nil
	})
	g.Go(func() error {
		fails, failsErr = h.latest(r.Context(), false, tickerFails)
		return nil
	})
	g.Wait()

	if passErr != nil && failsErr != nil {
		slog.Error("failed to load ticker", "passes_error", passErr, "fails_error", failsErr)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to load ticker")
		return
	}
	if passErr != nil {
		slog.Warn("ticker passes unavailable", "error", passErr)
		passes = nil
	}
	if failsErr != nil {
		slog.Warn("ticker fails unavailable", "error", failsErr)
		fails = nil
	}

	now := h.now().UTC()
	mixed := interleave(passes, fails, tickerMax)
	items := make([]models.TickerItem, 0, len(mixed))
	for _, row := range mixed {
		status := "Fail"
		if row.EstablishmentStatus == models.StatusPass {
			status = "Pass"
		}
		items = append(items, models.TickerItem{
			Name:           row.EstablishmentName,
			Status:         status,
			InspectionDate: row.InspectionDate,
			Age:            age(row.InspectionDate, now),
		})
	}

	middleware.JSONResponse(w, http.StatusOK, models.TickerResponse{Items: items})
}

// interleave de-duplicates by name (first sighting wins, passes before
// fails) and mixes three passes to one fail, up to max items.
func interleave(passes, fails []models.InspectionRecord, max int) []models.InspectionRecord {
	seen := make(map[string]bool)
	dedupe := func(rows []models.InspectionRecord) []models.InspectionRecord {
		var out []models.InspectionRecord
		for _, row := range rows {
			if seen[row.EstablishmentName] {
				continue
			}
			seen[row.EstablishmentName] = true
			out = append(out, row)
		}
		return out
	}
	passes = dedupe(passes)
	fails = dedupe(fails)

	mixed := make([]models.InspectionRecord, 0, max)
	p, f := 0, 0
	for len(mixed) < max && (p < len(passes) || f < len(fails)) {
		for i := 0; i < 3 && p < len(passes) && len(mixed) < max; i++ {
			mixed = append(mixed, passes[p])
			p++
		}
		if f < len(fails) && len(mixed) < max {
			mixed = append(mixed, fails[f])
			f++
		}
	}
	return mixed
}

// age renders an inspection date relative to now, e.g. "3 days ago"
func age(date string, now time.Time) string {
	t, err := time.ParseInLocation(time.DateOnly, date, now.Location())
	if err != nil {
		return ""
	}
	if now.Sub(t) < 24*time.Hour {
		return "today"
	}
	return humanize.RelTime(t, now, "ago", "from now")
}
