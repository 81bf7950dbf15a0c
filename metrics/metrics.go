// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	RequestCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "suppersafe_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"path", "method", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "suppersafe_http_request_duration_seconds",
			Help:    "Histogram of response durations",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path", "method"},
	)

	// AlertRuns counts inspection alert fan-out runs by outcome
	AlertRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "suppersafe_alert_runs_total",
			Help: "Inspection alert runs by result",
		},
		[]string{"result"},
	)

	PushMessages = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "suppersafe_push_messages_total",
			Help: "Push messages handed to the push provider",
		},
		[]string{"status"},
	)

	// AlertEmails counts error alert relay outcomes
	AlertEmails = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "suppersafe_error_alert_emails_total",
			Help: "Error alert emails by result",
		},
		[]string{"result"},
	)

	WaitlistSignups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "suppersafe_waitlist_signups_total",
			Help: "Waitlist signups, new or existing",
		},
		[]string{"kind"},
	)

	HeadlineEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "suppersafe_headline_events_total",
			Help: "Headline experiment impressions and conversions",
		},
		[]string{"headline", "event"},
	)
)

var once sync.Once

// Init registers every collector with the default registry. Safe to call
// more than once.
func Init() {
	once.Do(func() {
		prometheus.MustRegister(
			RequestCount,
			RequestDuration,
			AlertRuns,
			PushMessages,
			AlertEmails,
			WaitlistSignups,
			HeadlineEvents,
		)
	})
}
