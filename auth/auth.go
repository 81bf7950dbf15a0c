// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"regexp"
	"strings"
)

// Referral codes are SUPPER- plus four characters from an alphabet
// without 0/O or 1/I.
const (
	ReferralPrefix   = "SUPPER-"
	referralAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	referralLen      = 4
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// GenerateReferralCode returns a fresh SUPPER-XXXX code.
// Codes are not guaranteed unique; callers retry on conflict.
func GenerateReferralCode() (string, error) {
	b := make([]byte, referralLen)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate referral code: %w", err)
	}

	var sb strings.Builder
	sb.WriteString(ReferralPrefix)
	for _, v := range b {
		// 256 is a multiple of 32, so the modulo is unbiased
		sb.WriteByte(referralAlphabet[int(v)%len(referralAlphabet)])
	}
	return sb.String(), nil
}

// ValidEmail reports whether s looks like an address: something@host.tld
// with no whitespace.
func ValidEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// ValidBearer checks an Authorization header against the accepted
// secrets. Empty secrets never match.
func ValidBearer(header string, secrets ...string) bool {
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		return false
	}

	valid := false
	for _, s := range secrets {
		if s == "" {
			continue
		}
		if subtle.ConstantTimeCompare([]byte(token), []byte(s)) == 1 {
			valid = true
		}
	}
	return valid
}
