// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the local serveqrew-sync API.

# Route Registration

NewRouter creates a configured http.ServeMux from the running engine:

	mux := router.NewRouter(router.Deps{
		Resolver:    resolver,
		Location:    location,
		View:        views,
		Dashboard:   dashboard,
		Leaderboard: leaderboard,
		Join:        join,
		Sharer:      sharer,
	})

# Endpoints

Health and metrics:

	GET /health
	GET /metrics - Prometheus exposition

Session (view selection follows the resolved code):

	GET  /session          - Current code, source, view and location
	POST /session/location - Navigate and re-resolve

Live data (served from the pollers, never fetched on request):

	GET /dashboard   - Dashboard poller state
	GET /leaderboard - Ranked top referrers

Waitlist join:

	GET  /join - Join flow state
	POST /join - Submit a join request

Link sharing:

	GET  /share      - Copied indicator
	POST /share      - Native share, falling back to copy
	POST /share/copy - Copy the referral link

Every route except /health, /metrics and / is wrapped in
middleware.WithLogging. CORS is applied by the caller around the mux.
*/
package router
