// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the SupperSafe API server.

SupperSafe turns Toronto DineSafe inspection records into plain-language
safety reports, alerts users when restaurants they saved are re-inspected,
and runs the marketing site's waitlist and headline experiment.

# Starting the Server

Configuration comes from CLI flags, then the environment, then a local
.env file:

	DATABASE_TYPE=postgres DATABASE_URL=postgres://... go run .

Or with flags:

	go run . -p 3318 -t sqlite -d "file:suppersafe.db"

# Configuration

Database:

  - DATABASE_TYPE (-t): sqlite (default) or postgres
  - DATABASE_URL (-d): connection string; required for postgres

Secrets:

  - CRON_SECRET (--cron-secret), SERVICE_ROLE_KEY (--service-key): bearer
    secrets accepted by the alert job endpoint
  - TURNSTILE_SECRET_KEY (--turnstile-secret): bot check for waitlist signup
  - RESEND_API_KEY (--resend-key): error alert email delivery

Optional settings:

  - PORT (-p): Server port (default: 3318)
  - ALERT_EMAIL, ALERT_FROM: error alert recipient and sender
  - ALERT_LIMITER: memory (default) or db
  - ALERT_INTERVAL: run the inspection alert job in-process on this interval

# Architecture

  - handlers: HTTP request handlers (inspections, waitlist, saved, alerts, headlines)
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, JSON helpers
  - store: SQL persistence for SQLite and PostgreSQL
  - scoring, findings, report, share: inspection report building
  - notify, push: saved-restaurant alert fan-out
  - mailer, ratelimit, turnstile: outbound services for the public endpoints
  - experiment: headline A/B variants
  - cmd/ssctl: operator CLI

See package documentation for each component.
*/
package main
