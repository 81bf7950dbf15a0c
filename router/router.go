// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"fmt"
	"net/http"

	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/suppersafe/server/cliparse"
	"github.com/suppersafe/server/experiment"
	"github.com/suppersafe/server/handlers"
	"github.com/suppersafe/server/mailer"
	"github.com/suppersafe/server/middleware"
	"github.com/suppersafe/server/notify"
	"github.com/suppersafe/server/push"
	"github.com/suppersafe/server/ratelimit"
	"github.com/suppersafe/server/share"
	"github.com/suppersafe/server/store"
	"github.com/suppersafe/server/turnstile"
)

// Services are the outbound collaborators. Nil fields are built from the
// config.
type Services struct {
	Verifier turnstile.Verifier
	Mailer   mailer.Sender
	Pusher   push.Pusher
	Limiter  ratelimit.Limiter
}

// NewLimiter returns the error alert limiter selected by cfg.AlertLimiter
func NewLimiter(cfg cliparse.Config, st *store.Store) ratelimit.Limiter {
	if cfg.AlertLimiter == cliparse.LimiterDB {
		return ratelimit.NewDB(st, ratelimit.DefaultLimit, ratelimit.DefaultWindow)
	}
	return ratelimit.NewMemory(ratelimit.DefaultLimit, ratelimit.DefaultWindow)
}

func (s *Services) fill(cfg cliparse.Config, st *store.Store) {
	if s.Verifier == nil {
		s.Verifier = turnstile.New(cfg.TurnstileURL, cfg.TurnstileSecret)
	}
	if s.Mailer == nil {
		s.Mailer = mailer.NewResend(cfg.ResendURL, cfg.ResendAPIKey)
	}
	if s.Pusher == nil {
		s.Pusher = push.NewExpo(cfg.ExpoPushURL)
	}
	if s.Limiter == nil {
		s.Limiter = NewLimiter(cfg, st)
	}
}

func NewRouter(db *sqlx.DB, cfg cliparse.Config, svc Services) (*http.ServeMux, error) {
	mux := http.NewServeMux()

	st := store.New(db)
	svc.fill(cfg, st)

	shareGen, err := share.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load share templates: %w", err)
	}

	// Initialize handlers
	inspectionHandler := handlers.NewInspectionHandler(st, shareGen, nil)
	waitlistHandler := handlers.NewWaitlistHandler(st, svc.Verifier)
	savedHandler := handlers.NewSavedHandler(st)
	alertHandler := handlers.NewAlertHandler(cfg, notify.NewService(st, svc.Pusher), svc.Limiter, svc.Mailer)
	headlineHandler := handlers.NewHeadlineHandler(st, experiment.NewPicker(nil))

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	mux.Handle("GET /metrics", promhttp.Handler())

	// Inspection data (public)
	mux.HandleFunc("GET /establishments", middleware.WithLogging(inspectionHandler.Search))
	mux.HandleFunc("GET /establishments/{id}/report", middleware.WithLogging(inspectionHandler.Report))
	mux.HandleFunc("POST /establishments/{id}/share", middleware.WithLogging(inspectionHandler.Share))
	mux.HandleFunc("GET /stats/violations", middleware.WithLogging(inspectionHandler.ViolationStats))
	mux.HandleFunc("GET /ticker", middleware.WithLogging(inspectionHandler.Ticker))

	// Waitlist
	mux.HandleFunc("POST /functions/waitlist-signup", middleware.WithLogging(waitlistHandler.Signup))
	mux.HandleFunc("POST /functions/waitlist-lookup", middleware.WithLogging(waitlistHandler.Lookup))

	// Scheduled job and error relay
	mux.HandleFunc("POST /functions/send-inspection-alerts", middleware.WithLogging(alertHandler.SendInspectionAlerts))
	mux.HandleFunc("POST /functions/error-alert", middleware.WithLogging(alertHandler.ErrorAlert))

	// Per-user data (X-User-ID)
	mux.HandleFunc("GET /saved", middleware.WithLogging(savedHandler.List))
	mux.HandleFunc("POST /saved", middleware.WithLogging(savedHandler.Save))
	mux.HandleFunc("DELETE /saved/{establishment_id}", middleware.WithLogging(savedHandler.Delete))
	mux.HandleFunc("POST /push-tokens", middleware.WithLogging(savedHandler.RegisterPushToken))
	mux.HandleFunc("DELETE /push-tokens/{platform}", middleware.WithLogging(savedHandler.DeletePushToken))

	// Headline experiment (X-Session-ID)
	mux.HandleFunc("GET /headline", middleware.WithLogging(headlineHandler.Get))
	mux.HandleFunc("POST /headline/conversion", middleware.WithLogging(headlineHandler.Conversion))

	// Root endpoint
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("SupperSafe API v1"))
	})

	return mux, nil
}
