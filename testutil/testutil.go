// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/suppersafe/server/cliparse"
	"github.com/suppersafe/server/db"
	"github.com/suppersafe/server/models"
)

// TestDBURL is an in-memory SQLite database private to one connection
const TestDBURL = "file::memory:"

// SetupTestDB creates a fresh in-memory database with the full schema.
// It is closed when the test ends.
func SetupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	conn, err := db.Open(db.TypeSQLite, TestDBURL)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := db.CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:           3318,
		DatabaseURL:    TestDBURL,
		DatabaseType:   db.TypeSQLite,
		CronSecret:     "test-cron-secret",
		ServiceRoleKey: "test-service-role-key",
		AlertEmail:     "alerts@example.com",
		AlertFrom:      cliparse.DefaultAlertFrom,
		AlertLimiter:   cliparse.LimiterMemory,
	}
}

// Today returns the current UTC date as YYYY-MM-DD
func Today() string {
	return time.Now().UTC().Format(time.DateOnly)
}

// DaysAgo returns the UTC date n days before today as YYYY-MM-DD
func DaysAgo(n int) string {
	return time.Now().UTC().AddDate(0, 0, -n).Format(time.DateOnly)
}

// InsertInspections loads feed rows into the dinesafe table
func InsertInspections(t *testing.T, conn *sqlx.DB, rows ...models.InspectionRecord) {
	t.Helper()

	if len(rows) == 0 {
		return
	}
	_, err := conn.NamedExec(`
		INSERT INTO dinesafe (establishment_id, establishment_name, establishment_address, inspection_id,
			inspection_date, establishment_status, severity, infraction_details)
		VALUES (:establishment_id, :establishment_name, :establishment_address, :inspection_id,
			:inspection_date, :establishment_status, :severity, :infraction_details)
	`, rows)
	if err != nil {
		t.Fatalf("Failed to insert inspections: %v", err)
	}
}

// Inspection builds one feed row for establishment id
func Inspection(id, name, inspectionID, date, status, severity, details string) models.InspectionRecord {
	return models.InspectionRecord{
		EstablishmentID:      id,
		EstablishmentName:    name,
		EstablishmentAddress: "100 Queen St W",
		InspectionID:         inspectionID,
		InspectionDate:       date,
		EstablishmentStatus:  status,
		Severity:             severity,
		InfractionDetails:    details,
	}
}

// SaveTestRestaurant marks an establishment as saved by a user
func SaveTestRestaurant(t *testing.T, conn *sqlx.DB, userID, establishmentID, name string) {
	t.Helper()

	_, err := conn.Exec(conn.Rebind(`
		INSERT INTO saved_restaurants (user_id, establishment_id, establishment_name)
		VALUES (?, ?, ?)
	`), userID, establishmentID, name)
	if err != nil {
		t.Fatalf("Failed to save test restaurant: %v", err)
	}
}

// AddTestPushToken registers a device token for a user
func AddTestPushToken(t *testing.T, conn *sqlx.DB, userID, token, platform string) {
	t.Helper()

	_, err := conn.Exec(conn.Rebind(`
		INSERT INTO push_tokens (user_id, token, platform) VALUES (?, ?, ?)
	`), userID, token, platform)
	if err != nil {
		t.Fatalf("Failed to add test push token: %v", err)
	}
}

// CountRows returns the number of rows in table
func CountRows(t *testing.T, conn *sqlx.DB, table string) int {
	t.Helper()

	var n int
	if err := conn.Get(&n, "SELECT COUNT(*) FROM "+table); err != nil {
		t.Fatalf("Failed to count %s: %v", table, err)
	}
	return n
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
