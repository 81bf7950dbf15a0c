// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Error alert defaults: ten emails per key per rolling hour
const (
	DefaultLimit  = 10
	DefaultWindow = time.Hour
)

// Limiter decides whether another event for key may proceed. An allowed
// call counts against the key's budget.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// Memory is a per-process sliding window limiter
type Memory struct {
	limit  int
	window time.Duration
	now    func() time.Time

	mu     sync.Mutex
	events map[string][]time.Time
}

func NewMemory(limit int, window time.Duration) *Memory {
	return &Memory{
		limit:  limit,
		window: window,
		now:    time.Now,
		events: make(map[string][]time.Time),
	}
}

// Allow drops timestamps older than the window before counting.
func (m *Memory) Allow(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	recent := m.events[key][:0]
	for _, t := range m.events[key] {
		if now.Sub(t) < m.window {
			recent = append(recent, t)
		}
	}

	if len(recent) >= m.limit {
		m.events[key] = recent
		return false, nil
	}

	m.events[key] = append(recent, now)
	return true, nil
}

// Sweep forgets keys with no events inside the window
func (m *Memory) Sweep() {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	for key, times := range m.events {
		if len(times) == 0 || now.Sub(times[len(times)-1]) >= m.window {
			delete(m.events, key)
		}
	}
}

// Keys returns how many keys are being tracked
func (m *Memory) Keys() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.events)
}

// EventStore persists limiter events so every instance shares one budget
type EventStore interface {
	AllowAlertEvent(ctx context.Context, key string, now time.Time, window time.Duration, limit int) (bool, error)
}

// DB is a sliding window limiter backed by a shared store
type DB struct {
	store  EventStore
	limit  int
	window time.Duration
	now    func() time.Time
}

func NewDB(store EventStore, limit int, window time.Duration) *DB {
	return &DB{store: store, limit: limit, window: window, now: time.Now}
}

func (d *DB) Allow(ctx context.Context, key string) (bool, error) {
	return d.store.AllowAlertEvent(ctx, key, d.now(), d.window, d.limit)
}
