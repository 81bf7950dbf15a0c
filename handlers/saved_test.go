// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suppersafe/server/middleware"
	"github.com/suppersafe/server/models"
	"github.com/suppersafe/server/testutil"
)

func asUser(userID string) map[string]string {
	return map[string]string{middleware.UserIDHeader: userID}
}

func TestSaved_RequiresUser(t *testing.T) {
	h := NewSavedHandler(newTestStore(t))

	handlers := map[string]http.HandlerFunc{
		"list":        h.List,
		"save":        h.Save,
		"delete":      h.Delete,
		"token":       h.RegisterPushToken,
		"deleteToken": h.DeletePushToken,
	}
	for name, fn := range handlers {
		t.Run(name, func(t *testing.T) {
			w := httptest.NewRecorder()
			fn(w, testutil.MakeRequest("POST", "/", map[string]string{}, nil))
			testutil.AssertStatus(t, w, http.StatusUnauthorized)
		})
	}
}

func TestSaved_Lifecycle(t *testing.T) {
	h := NewSavedHandler(newTestStore(t))
	date := "2025-01-15"
	score := 87

	// Empty list is an empty array, not null
	w := httptest.NewRecorder()
	h.List(w, testutil.MakeRequest("GET", "/saved", nil, asUser("alice")))
	testutil.AssertStatus(t, w, http.StatusOK)
	assert.JSONEq(t, `{"saved":[]}`, w.Body.String())

	w = httptest.NewRecorder()
	h.Save(w, testutil.MakeRequest("POST", "/saved", models.SaveRestaurantRequest{
		EstablishmentID:      "10",
		EstablishmentName:    "Cafe Luna",
		EstablishmentAddress: "1 King St",
		LastInspectionDate:   &date,
		LastScore:            &score,
	}, asUser("alice")))
	testutil.AssertStatus(t, w, http.StatusCreated)

	// Saving again refreshes instead of duplicating
	w = httptest.NewRecorder()
	h.Save(w, testutil.MakeRequest("POST", "/saved", models.SaveRestaurantRequest{
		EstablishmentID:   "10",
		EstablishmentName: "Cafe Luna (new owners)",
	}, asUser("alice")))
	testutil.AssertStatus(t, w, http.StatusCreated)

	w = httptest.NewRecorder()
	h.List(w, testutil.MakeRequest("GET", "/saved", nil, asUser("alice")))
	var list models.SavedListResponse
	testutil.AssertJSON(t, w, &list)
	require.Len(t, list.Saved, 1)
	assert.Equal(t, "Cafe Luna (new owners)", list.Saved[0].EstablishmentName)
	assert.Nil(t, list.Saved[0].LastScore)

	// Other users see nothing
	w = httptest.NewRecorder()
	h.List(w, testutil.MakeRequest("GET", "/saved", nil, asUser("bob")))
	assert.JSONEq(t, `{"saved":[]}`, w.Body.String())

	req := testutil.MakeRequest("DELETE", "/saved/10", nil, asUser("alice"))
	req.SetPathValue("establishment_id", "10")
	w = httptest.NewRecorder()
	h.Delete(w, req)
	testutil.AssertStatus(t, w, http.StatusNoContent)

	req = testutil.MakeRequest("DELETE", "/saved/10", nil, asUser("alice"))
	req.SetPathValue("establishment_id", "10")
	w = httptest.NewRecorder()
	h.Delete(w, req)
	testutil.AssertStatus(t, w, http.StatusNotFound)
}

func TestSave_Validation(t *testing.T) {
	h := NewSavedHandler(newTestStore(t))

	tests := []struct {
		name string
		req  models.SaveRestaurantRequest
	}{
		{"missing id", models.SaveRestaurantRequest{EstablishmentName: "X"}},
		{"missing name", models.SaveRestaurantRequest{EstablishmentID: "1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			h.Save(w, testutil.MakeRequest("POST", "/saved", tt.req, asUser("alice")))
			testutil.AssertStatus(t, w, http.StatusBadRequest)
		})
	}
}

func TestPushTokens(t *testing.T) {
	st := newTestStore(t)
	h := NewSavedHandler(st)

	register := func(token, platform string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		h.RegisterPushToken(w, testutil.MakeRequest("POST", "/push-tokens",
			models.RegisterPushTokenRequest{Token: token, Platform: platform}, asUser("alice")))
		return w
	}

	testutil.AssertStatus(t, register("ExponentPushToken[a]", "windows"), http.StatusBadRequest)
	testutil.AssertStatus(t, register("", models.PlatformIOS), http.StatusBadRequest)

	testutil.AssertStatus(t, register("ExponentPushToken[a]", models.PlatformIOS), http.StatusOK)
	testutil.AssertStatus(t, register("ExponentPushToken[b]", models.PlatformIOS), http.StatusOK)
	testutil.AssertStatus(t, register("ExponentPushToken[c]", models.PlatformAndroid), http.StatusOK)
	assert.Equal(t, 2, testutil.CountRows(t, st.DB(), "push_tokens"))

	deleteToken := func(platform string) *httptest.ResponseRecorder {
		req := testutil.MakeRequest("DELETE", "/push-tokens/"+platform, nil, asUser("alice"))
		req.SetPathValue("platform", platform)
		w := httptest.NewRecorder()
		h.DeletePushToken(w, req)
		return w
	}

	testutil.AssertStatus(t, deleteToken(models.PlatformIOS), http.StatusNoContent)
	testutil.AssertStatus(t, deleteToken(models.PlatformIOS), http.StatusNotFound)
	testutil.AssertStatus(t, deleteToken("blackberry"), http.StatusBadRequest)
	assert.Equal(t, 1, testutil.CountRows(t, st.DB(), "push_tokens"))
}
