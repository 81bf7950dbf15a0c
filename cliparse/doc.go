// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

Commands that own their flag set (ssctl) call Bind before parsing and
Resolve afterwards.

# CLI Flags

	-p                 Server port (default: 3318)
	-d                 Database URL
	-t                 Database type, sqlite (default) or postgres
	-cron-secret       Bearer secret for the alert job
	-service-key       Service role key, also accepted by the alert job
	-turnstile-secret  Turnstile secret key
	-resend-key        Resend API key
	-alert-email       Error alert recipient
	-alert-limiter     memory (default) or db
	-alert-interval    In-process alert schedule, e.g. 1h (0 disables)

# Environment Variables

Flags fall back to environment variables:

	PORT                 → -p
	DATABASE_URL         → -d
	DATABASE_TYPE        → -t
	CRON_SECRET          → -cron-secret
	SERVICE_ROLE_KEY     → -service-key
	TURNSTILE_SECRET_KEY → -turnstile-secret
	TURNSTILE_URL        → -turnstile-url
	RESEND_API_KEY       → -resend-key
	RESEND_URL           → -resend-url
	ALERT_EMAIL          → -alert-email
	ALERT_FROM           → -alert-from
	EXPO_PUSH_URL        → -expo-url
	ALERT_LIMITER        → -alert-limiter
	ALERT_INTERVAL       → -alert-interval

CLI flags take precedence over environment variables. main loads a .env
file first when one exists.

# Validation

ParseFlags returns an error when:

  - PORT or ALERT_INTERVAL cannot be parsed
  - DATABASE_TYPE is not sqlite or postgres
  - postgres is selected without DATABASE_URL
  - ALERT_LIMITER is not memory or db

Missing third-party secrets are not errors; the features that need them
answer with a 500 until they are configured.
*/
package cliparse
