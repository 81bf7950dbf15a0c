// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the SupperSafe API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux, err := router.NewRouter(db, cfg, router.Services{})

Services carries the outbound collaborators (Turnstile, Resend, Expo and
the error alert limiter). Nil fields are built from the config, so tests
pass fakes and production passes an empty value or a shared limiter.

# Endpoints

Operational:

	GET /health
	GET /metrics - Prometheus exposition

Inspections (public):

	GET  /establishments?q=          - Name search
	GET  /establishments/{id}/report - Report card
	POST /establishments/{id}/share  - Share copy
	GET  /stats/violations           - Landing page stat
	GET  /ticker                     - Recent passes and fails

Waitlist:

	POST /functions/waitlist-signup
	POST /functions/waitlist-lookup

Jobs:

	POST /functions/send-inspection-alerts - Bearer cron secret or service key
	POST /functions/error-alert            - Client error relay

Per user (X-User-ID):

	GET    /saved
	POST   /saved
	DELETE /saved/{establishment_id}
	POST   /push-tokens
	DELETE /push-tokens/{platform}

Headline experiment (X-Session-ID):

	GET  /headline
	POST /headline/conversion
*/
package router
