// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware holds the request plumbing shared by the state API routes.

# Request IDs and Logging

WithLogging wraps a single route. It reuses the caller's X-Request-ID or
mints a uuid, stores it on the request for the handler, and echoes it on
the response so the renderer can match log lines to its own calls:

	mux.HandleFunc("POST /join", middleware.WithLogging(joinHandler.SubmitJoin))

Two lines are logged per request: "request started" with the client
address from GetClientIP, and "request completed" with duration_ms.

# Cross-Origin Access

The renderer usually runs on another origin, so the whole mux goes
behind CORS in main:

	Handler: middleware.CORS(mux)

The request origin is echoed with credentials allowed, and preflights
are answered directly. X-Request-ID is both accepted and exposed.

# Bodies

State API bodies are JSON. Endpoints that need a body use ParseJSONBody.
The share endpoints take an optional {"link": ...}, so they use
ParseOptionalJSONBody, where an empty POST /share/copy means "use the
dashboard's referral link":

	var req models.ShareRequest
	if err := middleware.ParseOptionalJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

Replies go through JSONResponse. Failures go through ErrorResponse, which
fills models.ErrorResponse with the status text and a message.
*/
package middleware
