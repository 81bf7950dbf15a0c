// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/suppersafe/server/auth"
	"github.com/suppersafe/server/metrics"
	"github.com/suppersafe/server/middleware"
	"github.com/suppersafe/server/models"
	"github.com/suppersafe/server/store"
	"github.com/suppersafe/server/turnstile"
)

// maxCodeAttempts bounds referral code regeneration after collisions
const maxCodeAttempts = 5

type WaitlistHandler struct {
	store    *store.Store
	verifier turnstile.Verifier
}

func NewWaitlistHandler(st *store.Store, verifier turnstile.Verifier) *WaitlistHandler {
	return &WaitlistHandler{store: st, verifier: verifier}
}

// Signup handles POST /functions/waitlist-signup
func (h *WaitlistHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req models.WaitlistSignupRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if !auth.ValidEmail(email) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid email format")
		return
	}

	// The bot check only runs when the client sent a token
	if req.TurnstileToken != "" {
		ok, err := h.verifier.Verify(r.Context(), req.TurnstileToken, middleware.GetClientIP(r))
		if err != nil {
			slog.Error("turnstile verification failed", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Something went wrong")
			return
		}
		if !ok {
			middleware.ErrorResponse(w, http.StatusForbidden, "Security check failed")
			return
		}
	}

	existing, err := h.store.WaitlistByEmail(r.Context(), email)
	if err == nil {
		h.respondExisting(w, existing)
		return
	}
	if !errors.Is(err, store.ErrNotFound) {
		slog.Error("failed to look up waitlist entry", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to join waitlist")
		return
	}

	var referredBy *string
	if ref := strings.ToUpper(strings.TrimSpace(req.ReferredBy)); ref != "" {
		referredBy = &ref
	}

	entry, existed, err := h.create(r.Context(), email, referredBy)
	if err != nil {
		slog.Error("failed to create waitlist entry", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to join waitlist")
		return
	}
	if existed {
		h.respondExisting(w, entry)
		return
	}

	metrics.WaitlistSignups.WithLabelValues("new").Inc()
	slog.Info("waitlist signup", "queue_position", entry.QueuePosition, "referred", referredBy != nil)

	middleware.JSONResponse(w, http.StatusOK, models.WaitlistSignupResponse{
		Success:       true,
		Existing:      false,
		ReferralCode:  entry.ReferralCode,
		QueuePosition: entry.QueuePosition,
	})
}

// create inserts the entry, drawing a new referral code after each
// conflict. A conflict caused by the email itself (a concurrent signup)
// returns that entry with existed=true.
func (h *WaitlistHandler) create(ctx context.Context, email string, referredBy *string) (models.WaitlistEntry, bool, error) {
	var lastErr error
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code, err := auth.GenerateReferralCode()
		if err != nil {
			return models.WaitlistEntry{}, false, err
		}

		entry, err := h.store.CreateWaitlistEntry(ctx, email, code, referredBy)
		if err == nil {
			return entry, false, nil
		}
		if !errors.Is(err, store.ErrConflict) {
			return models.WaitlistEntry{}, false, err
		}
		lastErr = err

		existing, lookupErr := h.store.WaitlistByEmail(ctx, email)
		if lookupErr == nil {
			return existing, true, nil
		}
		if !errors.Is(lookupErr, store.ErrNotFound) {
			return models.WaitlistEntry{}, false, lookupErr
		}
		slog.Warn("referral code collision, retrying", "attempt", attempt+1)
	}
	return models.WaitlistEntry{}, false, lastErr
}

func (h *WaitlistHandler) respondExisting(w http.ResponseWriter, e models.WaitlistEntry) {
	metrics.WaitlistSignups.WithLabelValues("existing").Inc()
	middleware.JSONResponse(w, http.StatusOK, models.WaitlistSignupResponse{
		Success:       true,
		Existing:      true,
		ReferralCode:  e.ReferralCode,
		QueuePosition: e.QueuePosition,
	})
}

// Lookup handles POST /functions/waitlist-lookup
func (h *WaitlistHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	var req models.WaitlistLookupRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if !auth.ValidEmail(email) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid email")
		return
	}

	entry, err := h.store.WaitlistByEmail(r.Context(), email)
	if errors.Is(err, store.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Email not found on waitlist")
		return
	}
	if err != nil {
		slog.Error("failed to look up waitlist entry", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Something went wrong")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.WaitlistLookupResponse{
		ReferralCode:  entry.ReferralCode,
		QueuePosition: entry.QueuePosition,
	})
}
