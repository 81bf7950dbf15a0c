// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the SupperSafe API.

# Handler Types

Each handler is a struct built from its dependencies:

  - InspectionHandler: search, report cards, share copy, the landing-page
    violation stat and the inspection ticker
  - WaitlistHandler: waitlist signup (with optional Turnstile bot check)
    and lookup
  - SavedHandler: saved restaurants and push-token registration
  - AlertHandler: the scheduled inspection alert run and the client
    error relay
  - HeadlineHandler: headline experiment assignment and conversions

	inspections := handlers.NewInspectionHandler(st, shareGen, nil)

# Inspections

	GET  /establishments?q=           → Search (q shorter than 2 → [])
	GET  /establishments/{id}/report  → Report
	POST /establishments/{id}/share   → Share
	GET  /stats/violations            → ViolationStats
	GET  /ticker                      → Ticker

ViolationStats never fails: when the store is unreachable it answers
{"count": null, "display": "Many"}.

# Waitlist

	POST /functions/waitlist-signup → Signup
	POST /functions/waitlist-lookup → Lookup

Emails are lower-cased. A repeat signup returns the existing entry with
existing=true. New entries get the next queue position and a SUPPER-XXXX
referral code; the referrer's count is credited in the same transaction.

# Caller Identity

Saved restaurants and push tokens belong to the user named by the
X-User-ID header, which the auth layer in front of the API sets:

	GET    /saved
	POST   /saved
	DELETE /saved/{establishment_id}
	POST   /push-tokens
	DELETE /push-tokens/{platform}

# Alerts

	POST /functions/send-inspection-alerts → SendInspectionAlerts
	POST /functions/error-alert            → ErrorAlert

SendInspectionAlerts requires "Authorization: Bearer <secret>" with the
cron secret or the service role key. ErrorAlert is rate limited per error
(message plus stack prefix) and answers 429 when the budget is spent.

# Error Handling

All handlers use middleware.ErrorResponse for consistent JSON errors:

	{"error": "Not Found", "message": "Establishment not found"}

Store errors are logged with slog and reported as 500 without detail.
*/
package handlers
