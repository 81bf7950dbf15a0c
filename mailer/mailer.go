// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrNotConfigured means the API key or recipient is missing
var ErrNotConfigured = errors.New("email service not configured")

// Email is one outgoing message
type Email struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

// Sender delivers an email
type Sender interface {
	Send(ctx context.Context, e Email) error
}

// Resend sends mail through the Resend HTTP API
type Resend struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

func NewResend(endpoint, apiKey string) *Resend {
	return &Resend{
		endpoint: endpoint,
		apiKey:   apiKey,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Send posts the email. Any non-2xx answer is an error carrying the
// provider's response body.
func (r *Resend) Send(ctx context.Context, e Email) error {
	if r.apiKey == "" || len(e.To) == 0 || e.To[0] == "" {
		return ErrNotConfigured
	}

	body, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to marshal email: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+r.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("resend request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		text, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("resend returned status %d: %s", resp.StatusCode, string(text))
	}

	return nil
}
