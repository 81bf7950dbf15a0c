// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suppersafe/server/cliparse"
	"github.com/suppersafe/server/mailer"
	"github.com/suppersafe/server/metrics"
	"github.com/suppersafe/server/middleware"
	"github.com/suppersafe/server/models"
	"github.com/suppersafe/server/push"
	"github.com/suppersafe/server/ratelimit"
	"github.com/suppersafe/server/store"
	"github.com/suppersafe/server/testutil"
)

type okVerifier struct{}

func (okVerifier) Verify(context.Context, string, string) (bool, error) { return true, nil }

type recordingPusher struct {
	mu   sync.Mutex
	sent []push.Message
}

func (p *recordingPusher) Send(_ context.Context, m []push.Message) (any, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sent = append(p.sent, m...)
	return nil, nil
}

type recordingMailer struct {
	mu   sync.Mutex
	sent []mailer.Email
}

func (m *recordingMailer) Send(_ context.Context, e mailer.Email) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, e)
	return nil
}

func testServices() Services {
	return Services{
		Verifier: okVerifier{},
		Mailer:   &recordingMailer{},
		Pusher:   &recordingPusher{},
		Limiter:  ratelimit.NewMemory(ratelimit.DefaultLimit, ratelimit.DefaultWindow),
	}
}

func newTestRouter(t *testing.T, svc Services) (*http.ServeMux, *sqlx.DB) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	mux, err := NewRouter(db, testutil.GetTestConfig(), svc)
	require.NoError(t, err)
	return mux, db
}

func TestHealthEndpoint(t *testing.T) {
	mux, _ := newTestRouter(t, testServices())

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()

	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	if w.Body.String() != "OK" {
		t.Errorf("Expected body 'OK', got '%s'", w.Body.String())
	}
}

func TestRootEndpoint(t *testing.T) {
	mux, _ := newTestRouter(t, testServices())

	req := httptest.NewRequest("GET", "/", nil)
	w := httptest.NewRecorder()

	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	expected := "SupperSafe API v1"
	if w.Body.String() != expected {
		t.Errorf("Expected body '%s', got '%s'", expected, w.Body.String())
	}

	w = httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest("GET", "/no-such-page", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for unknown path, got %d", w.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	metrics.Init()
	mux, _ := newTestRouter(t, testServices())

	// Generate at least one labelled sample
	mux.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/ticker", nil))

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	assert.Contains(t, w.Body.String(), "suppersafe_http_requests_total")
}

func TestRouteExistence(t *testing.T) {
	mux, _ := newTestRouter(t, testServices())

	// Test that routes respond (handler is invoked)
	// 400, 401 and 404 from the handler are all valid here
	testCases := []struct {
		method string
		path   string
	}{
		{"GET", "/health"},
		{"GET", "/"},
		{"GET", "/metrics"},

		{"GET", "/establishments?q=pizza"},
		{"GET", "/establishments/123/report"},
		{"POST", "/establishments/123/share"},
		{"GET", "/stats/violations"},
		{"GET", "/ticker"},

		{"POST", "/functions/waitlist-signup"},
		{"POST", "/functions/waitlist-lookup"},
		{"POST", "/functions/send-inspection-alerts"},
		{"POST", "/functions/error-alert"},

		{"GET", "/saved"},
		{"POST", "/saved"},
		{"DELETE", "/saved/123"},
		{"POST", "/push-tokens"},
		{"DELETE", "/push-tokens/ios"},

		{"GET", "/headline"},
		{"POST", "/headline/conversion"},
	}

	for _, tc := range testCases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, nil)
			w := httptest.NewRecorder()

			mux.ServeHTTP(w, req)

			if w.Code == http.StatusMethodNotAllowed {
				t.Errorf("Route %s %s returned 405, expected route handler to exist", tc.method, tc.path)
			}
			// The mux's own 404 is plain text; handler 404s are JSON
			if w.Code == http.StatusNotFound && !strings.Contains(w.Header().Get("Content-Type"), "application/json") {
				t.Errorf("Route %s %s not registered", tc.method, tc.path)
			}
		})
	}
}

func TestMethodNotAllowed(t *testing.T) {
	mux, _ := newTestRouter(t, testServices())

	testCases := []struct {
		method string
		path   string
	}{
		{"POST", "/health"},
		{"DELETE", "/ticker"},
		{"GET", "/functions/waitlist-signup"},
		{"PUT", "/saved/123"},
	}

	for _, tc := range testCases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, nil)
			w := httptest.NewRecorder()

			mux.ServeHTTP(w, req)

			if w.Code != http.StatusMethodNotAllowed {
				t.Errorf("Expected 405 for %s %s, got %d", tc.method, tc.path, w.Code)
			}
		})
	}
}

func TestCORSPreflight(t *testing.T) {
	mux, _ := newTestRouter(t, testServices())
	handler := middleware.CORS(mux)

	req := httptest.NewRequest("OPTIONS", "/functions/waitlist-signup", nil)
	req.Header.Set("Origin", "https://suppersafe.com")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "https://suppersafe.com", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestNewLimiter(t *testing.T) {
	st := store.New(testutil.SetupTestDB(t))

	cfg := testutil.GetTestConfig()
	_, ok := NewLimiter(cfg, st).(*ratelimit.Memory)
	assert.True(t, ok)

	cfg.AlertLimiter = cliparse.LimiterDB
	_, ok = NewLimiter(cfg, st).(*ratelimit.DB)
	assert.True(t, ok)
}

// TestUserJourney walks a diner from the landing page to a push alert:
// headline, waitlist, search, report, save, push token, scheduled alert.
func TestUserJourney(t *testing.T) {
	svc := testServices()
	pusher := svc.Pusher.(*recordingPusher)
	mux, db := newTestRouter(t, svc)

	testutil.InsertInspections(t, db,
		testutil.Inspection("10", "Cafe Luna", "old", "2024-05-01", models.StatusPass, "", ""),
		testutil.Inspection("10", "Cafe Luna", "new", testutil.Today(), models.StatusConditionalPass, "S - Significant", "Fail to protect food from contamination"),
	)

	do := func(method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, testutil.MakeRequest(method, path, body, headers))
		return w
	}

	// Step 1: Landing page headline
	w := do("GET", "/headline", nil, nil)
	testutil.AssertStatus(t, w, http.StatusOK)
	var headline models.HeadlineResponse
	testutil.AssertJSON(t, w, &headline)
	require.NotEmpty(t, headline.SessionID)

	// Step 2: Join the waitlist, which counts as a conversion
	w = do("POST", "/functions/waitlist-signup", models.WaitlistSignupRequest{Email: "diner@example.com", TurnstileToken: "tok"}, nil)
	testutil.AssertStatus(t, w, http.StatusOK)
	var joined models.WaitlistSignupResponse
	testutil.AssertJSON(t, w, &joined)
	assert.Equal(t, 248, joined.QueuePosition)

	w = do("POST", "/headline/conversion", models.ConversionRequest{ConversionType: "waitlist"},
		map[string]string{middleware.SessionIDHeader: headline.SessionID})
	testutil.AssertStatus(t, w, http.StatusNoContent)

	w = do("POST", "/functions/waitlist-lookup", models.WaitlistLookupRequest{Email: "DINER@example.com"}, nil)
	testutil.AssertStatus(t, w, http.StatusOK)

	// Step 3: Search and open the report
	w = do("GET", "/establishments?q=luna", nil, nil)
	testutil.AssertStatus(t, w, http.StatusOK)
	var found models.SearchResponse
	testutil.AssertJSON(t, w, &found)
	require.Len(t, found.Results, 1)

	w = do("GET", "/establishments/"+found.Results[0].ID+"/report", nil, nil)
	testutil.AssertStatus(t, w, http.StatusOK)
	var rep models.Report
	testutil.AssertJSON(t, w, &rep)
	assert.Equal(t, 80, rep.SafetyScore) // 100 - 10 - 10
	require.Len(t, rep.Findings, 1)
	assert.Equal(t, "Significant health violation", rep.Findings[0].Text)

	// Step 4: Save it and register a device
	user := map[string]string{middleware.UserIDHeader: "user-1"}
	w = do("POST", "/saved", models.SaveRestaurantRequest{EstablishmentID: "10", EstablishmentName: "Cafe Luna"}, user)
	testutil.AssertStatus(t, w, http.StatusCreated)
	w = do("POST", "/push-tokens", models.RegisterPushTokenRequest{Token: "ExponentPushToken[x]", Platform: models.PlatformIOS}, user)
	testutil.AssertStatus(t, w, http.StatusOK)

	// Step 5: The scheduler runs the alert job twice
	cron := map[string]string{"Authorization": "Bearer test-cron-secret"}
	w = do("POST", "/functions/send-inspection-alerts", nil, cron)
	testutil.AssertStatus(t, w, http.StatusOK)
	w = do("POST", "/functions/send-inspection-alerts", nil, cron)
	testutil.AssertStatus(t, w, http.StatusOK)

	require.Len(t, pusher.sent, 1)
	assert.Equal(t, "ExponentPushToken[x]", pusher.sent[0].To)
	assert.Equal(t, "Cafe Luna received a conditional pass. Tap to see why.", pusher.sent[0].Body)
}
