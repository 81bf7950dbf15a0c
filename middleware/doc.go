// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging

Wrap handlers with request logging:

	mux.HandleFunc("GET /health", middleware.WithLogging(handler))

Logs request start (method, path, remote) and completion (status,
duration_ms), and records the request counter and duration histogram
labelled by route pattern.

# CORS Middleware

	server := http.Server{
		Handler: middleware.CORS(mux),
	}

Echoes the request Origin (or "*") and answers OPTIONS preflight with 200.
Allows the authorization, content-type, x-user-id and x-session-id
headers.

# JSON Helpers

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.ErrorResponse(w, http.StatusBadRequest, "message")

	var req models.SaveRestaurantRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

# Caller Identity

The API trusts the X-User-ID header set by the auth layer in front of it:

	userID, ok := middleware.RequireUser(w, r)
	if !ok {
		return // 401 already written
	}

GetClientIP returns the original client IP (X-Forwarded-For, X-Real-IP,
then RemoteAddr) and is passed to the bot check on waitlist signup.
*/
package middleware
