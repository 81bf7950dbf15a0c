// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides token generation and credential checks.

# Referral Codes

Waitlist referral codes are SUPPER- followed by four characters drawn with
crypto/rand from an alphabet that leaves out 0, O, 1 and I:

	code, err := auth.GenerateReferralCode() // e.g. SUPPER-K7QX

Codes are short enough to collide; the waitlist handler retries with a new
code when the insert reports a conflict.

# Bearer Secrets

The scheduled alert endpoint accepts either the cron secret or the service
role key:

	if !auth.ValidBearer(r.Header.Get("Authorization"), cfg.CronSecret, cfg.ServiceRoleKey) {
		// 401
	}

Comparison is constant time and empty secrets are never accepted.

# Email Validation

	auth.ValidEmail("someone@example.com") // true
*/
package auth
