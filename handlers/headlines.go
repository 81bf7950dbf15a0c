// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/suppersafe/server/experiment"
	"github.com/suppersafe/server/metrics"
	"github.com/suppersafe/server/middleware"
	"github.com/suppersafe/server/models"
	"github.com/suppersafe/server/store"
)

type HeadlineHandler struct {
	store  *store.Store
	picker *experiment.Picker
}

func NewHeadlineHandler(st *store.Store, picker *experiment.Picker) *HeadlineHandler {
	return &HeadlineHandler{store: st, picker: picker}
}

// Get handles GET /headline. A session keeps the first headline it was
// shown; a request without X-Session-ID starts a new session. A session
// stuck on a retired headline is re-drawn and counted as a new impression.
func (h *HeadlineHandler) Get(w http.ResponseWriter, r *http.Request) {
	sessionID := strings.TrimSpace(r.Header.Get(middleware.SessionIDHeader))
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	id, err := h.store.HeadlineForSession(r.Context(), sessionID)
	if errors.Is(err, store.ErrNotFound) {
		picked := h.picker.Pick()
		id, err = h.store.RecordImpression(r.Context(), sessionID, picked.ID)
		if err == nil {
			metrics.HeadlineEvents.WithLabelValues(id, "impression").Inc()
		}
	}
	if err != nil {
		slog.Error("failed to assign headline", "error", err, "session_id", sessionID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	headline, ok := experiment.Lookup(id)
	if !ok {
		headline = h.picker.Pick()
		if err := h.store.ReassignHeadline(r.Context(), sessionID, headline.ID); err != nil {
			slog.Error("failed to reassign headline", "error", err, "session_id", sessionID, "retired", id)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		metrics.HeadlineEvents.WithLabelValues(headline.ID, "impression").Inc()
	}

	middleware.JSONResponse(w, http.StatusOK, models.HeadlineResponse{
		SessionID:  sessionID,
		HeadlineID: headline.ID,
		Text:       headline.Text,
	})
}

// Conversion handles POST /headline/conversion
func (h *HeadlineHandler) Conversion(w http.ResponseWriter, r *http.Request) {
	sessionID := strings.TrimSpace(r.Header.Get(middleware.SessionIDHeader))
	if sessionID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "X-Session-ID header required")
		return
	}

	var req models.ConversionRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.ConversionType == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "conversion_type is required")
		return
	}

	err := h.store.RecordConversion(r.Context(), sessionID, req.ConversionType)
	if errors.Is(err, store.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Unknown session")
		return
	}
	if err != nil {
		slog.Error("failed to record conversion", "error", err, "session_id", sessionID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	if id, err := h.store.HeadlineForSession(r.Context(), sessionID); err == nil {
		metrics.HeadlineEvents.WithLabelValues(id, "conversion").Inc()
	}
	w.WriteHeader(http.StatusNoContent)
}
