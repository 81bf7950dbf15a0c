// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"sync"
	"testing"

	"github.com/suppersafe/server/mailer"
	"github.com/suppersafe/server/push"
	"github.com/suppersafe/server/store"
	"github.com/suppersafe/server/testutil"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	return store.New(testutil.SetupTestDB(t))
}

// fakeVerifier answers every bot check with ok/err and counts calls
type fakeVerifier struct {
	mu    sync.Mutex
	ok    bool
	err   error
	calls int
}

func (f *fakeVerifier) Verify(_ context.Context, _, _ string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.ok, f.err
}

// fakeSender records emails instead of sending them
type fakeSender struct {
	mu   sync.Mutex
	sent []mailer.Email
	err  error
}

func (f *fakeSender) Send(_ context.Context, e mailer.Email) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, e)
	return nil
}

type fakePusher struct {
	mu   sync.Mutex
	sent []push.Message
}

func (f *fakePusher) Send(_ context.Context, messages []push.Message) (any, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, messages...)
	return map[string]any{"data": []any{}}, nil
}
