// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/suppersafe/server/auth"
	"github.com/suppersafe/server/cliparse"
	"github.com/suppersafe/server/mailer"
	"github.com/suppersafe/server/metrics"
	"github.com/suppersafe/server/middleware"
	"github.com/suppersafe/server/models"
	"github.com/suppersafe/server/notify"
	"github.com/suppersafe/server/ratelimit"
)

// AlertHandler serves the scheduled inspection alert run and the client
// error relay.
type AlertHandler struct {
	cfg     cliparse.Config
	notify  *notify.Service
	limiter ratelimit.Limiter
	mail    mailer.Sender
	now     func() time.Time
}

func NewAlertHandler(cfg cliparse.Config, svc *notify.Service, limiter ratelimit.Limiter, mail mailer.Sender) *AlertHandler {
	return &AlertHandler{
		cfg:     cfg,
		notify:  svc,
		limiter: limiter,
		mail:    mail,
		now:     time.Now,
	}
}

// SendInspectionAlerts handles POST /functions/send-inspection-alerts.
// The caller must present the cron secret or the service role key.
func (h *AlertHandler) SendInspectionAlerts(w http.ResponseWriter, r *http.Request) {
	if !auth.ValidBearer(r.Header.Get("Authorization"), h.cfg.CronSecret, h.cfg.ServiceRoleKey) {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	summary, err := h.notify.Run(r.Context(), h.now().UTC())
	if err != nil {
		slog.Error("inspection alert run failed", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Alert run failed")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, summary)
}

// ErrorAlert handles POST /functions/error-alert
func (h *AlertHandler) ErrorAlert(w http.ResponseWriter, r *http.Request) {
	var req models.ErrorAlertRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.Error == nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Missing error details")
		return
	}

	allowed, err := h.limiter.Allow(r.Context(), mailer.AlertKey(req.Error))
	if err != nil {
		slog.Error("rate limiter failed", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if !allowed {
		metrics.AlertEmails.WithLabelValues("rate_limited").Inc()
		middleware.JSONResponse(w, http.StatusTooManyRequests, models.MessageResponse{
			Message: "Rate limited - too many similar errors",
		})
		return
	}

	html, err := mailer.RenderAlert(req, h.now())
	if err != nil {
		slog.Error("failed to render alert", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	err = h.mail.Send(r.Context(), mailer.Email{
		From:    h.cfg.AlertFrom,
		To:      []string{h.cfg.AlertEmail},
		Subject: mailer.AlertSubject(req.Error),
		HTML:    html,
	})
	if errors.Is(err, mailer.ErrNotConfigured) {
		slog.Error("email service not configured")
		metrics.AlertEmails.WithLabelValues("not_configured").Inc()
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Email service not configured")
		return
	}
	if err != nil {
		slog.Error("failed to send alert email", "error", err)
		metrics.AlertEmails.WithLabelValues("failed").Inc()
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to send email")
		return
	}

	metrics.AlertEmails.WithLabelValues("sent").Inc()
	middleware.JSONResponse(w, http.StatusOK, models.MessageResponse{Message: "Alert sent successfully"})
}
