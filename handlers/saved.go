// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/suppersafe/server/middleware"
	"github.com/suppersafe/server/models"
	"github.com/suppersafe/server/store"
)

// SavedHandler manages a user's saved restaurants and push tokens. The
// user is identified by X-User-ID.
type SavedHandler struct {
	store *store.Store
}

func NewSavedHandler(st *store.Store) *SavedHandler {
	return &SavedHandler{store: st}
}

// List handles GET /saved
func (h *SavedHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.RequireUser(w, r)
	if !ok {
		return
	}

	saved, err := h.store.ListSaved(r.Context(), userID)
	if err != nil {
		slog.Error("failed to list saved restaurants", "error", err, "user_id", userID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.SavedListResponse{Saved: saved})
}

// Save handles POST /saved
func (h *SavedHandler) Save(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.RequireUser(w, r)
	if !ok {
		return
	}

	var req models.SaveRestaurantRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if strings.TrimSpace(req.EstablishmentID) == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "establishment_id is required")
		return
	}
	if strings.TrimSpace(req.EstablishmentName) == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "establishment_name is required")
		return
	}

	saved := models.SavedRestaurant{
		UserID:               userID,
		EstablishmentID:      req.EstablishmentID,
		EstablishmentName:    req.EstablishmentName,
		EstablishmentAddress: req.EstablishmentAddress,
		LastInspectionDate:   req.LastInspectionDate,
		LastScore:            req.LastScore,
	}
	if err := h.store.SaveRestaurant(r.Context(), saved); err != nil {
		slog.Error("failed to save restaurant", "error", err, "user_id", userID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to save restaurant")
		return
	}

	slog.Info("restaurant saved", "user_id", userID, "establishment_id", req.EstablishmentID)
	middleware.JSONResponse(w, http.StatusCreated, saved)
}

// Delete handles DELETE /saved/{establishment_id}
func (h *SavedHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.RequireUser(w, r)
	if !ok {
		return
	}

	id := r.PathValue("establishment_id")
	err := h.store.DeleteSaved(r.Context(), userID, id)
	if errors.Is(err, store.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Restaurant not saved")
		return
	}
	if err != nil {
		slog.Error("failed to delete saved restaurant", "error", err, "user_id", userID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// RegisterPushToken handles POST /push-tokens
func (h *SavedHandler) RegisterPushToken(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.RequireUser(w, r)
	if !ok {
		return
	}

	var req models.RegisterPushTokenRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if strings.TrimSpace(req.Token) == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "token is required")
		return
	}
	if !validPlatform(req.Platform) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "platform must be ios or android")
		return
	}

	token := models.PushToken{UserID: userID, Token: req.Token, Platform: req.Platform}
	if err := h.store.UpsertPushToken(r.Context(), token); err != nil {
		slog.Error("failed to register push token", "error", err, "user_id", userID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to register push token")
		return
	}

	slog.Info("push token registered", "user_id", userID, "platform", req.Platform)
	middleware.JSONResponse(w, http.StatusOK, token)
}

// DeletePushToken handles DELETE /push-tokens/{platform}
func (h *SavedHandler) DeletePushToken(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.RequireUser(w, r)
	if !ok {
		return
	}

	platform := r.PathValue("platform")
	if !validPlatform(platform) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "platform must be ios or android")
		return
	}

	err := h.store.DeletePushToken(r.Context(), userID, platform)
	if errors.Is(err, store.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "No token registered for platform")
		return
	}
	if err != nil {
		slog.Error("failed to delete push token", "error", err, "user_id", userID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func validPlatform(p string) bool {
	return p == models.PlatformIOS || p == models.PlatformAndroid
}
