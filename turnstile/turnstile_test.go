// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package turnstile

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerify(t *testing.T) {
	var gotSecret, gotResponse, gotIP, gotContentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotContentType = r.Header.Get("Content-Type")
		gotSecret = r.PostForm.Get("secret")
		gotResponse = r.PostForm.Get("response")
		gotIP = r.PostForm.Get("remoteip")

		if gotResponse == "good-token" {
			w.Write([]byte(`{"success":true}`))
			return
		}
		w.Write([]byte(`{"success":false,"error-codes":["invalid-input-response"]}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "shh")

	ok, err := c.Verify(context.Background(), "good-token", "203.0.113.9")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "shh", gotSecret)
	assert.Equal(t, "good-token", gotResponse)
	assert.Equal(t, "203.0.113.9", gotIP)
	assert.Equal(t, "application/x-www-form-urlencoded", gotContentType)

	ok, err = c.Verify(context.Background(), "bad-token", "")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, gotIP)
}

func TestVerify_NotConfigured(t *testing.T) {
	c := New("http://unused.invalid", "")
	_, err := c.Verify(context.Background(), "token", "")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestVerify_Failures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "down", http.StatusBadGateway)
		}},
		{"garbage body", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("not json"))
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			ok, err := New(srv.URL, "shh").Verify(context.Background(), "token", "")
			assert.Error(t, err)
			assert.False(t, ok)
		})
	}
}

func TestVerify_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := New(url, "shh").Verify(context.Background(), "token", "")
	assert.Error(t, err)
}
