// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the local serveqrew-sync API.

# Handler Types

Each handler is a struct over the engine components it reads or drives:

  - SessionHandler: Current session, view and page location
  - DataHandler: Dashboard and leaderboard poller state
  - JoinHandler: Waitlist join flow
  - ShareHandler: Referral link copy and share

Handlers are created via constructor functions:

	sessionHandler := handlers.NewSessionHandler(resolver, location, views)
	dataHandler := handlers.NewDataHandler(dashboard, leaderboard)

# Session

	GET  /session          → GetSession
	POST /session/location → SetLocation (navigates, then re-resolves)

A token in the new location is adopted, persisted and stripped from the
stored URL. If the store rejects the write the session is left unchanged
and the handler returns 500.

# Live Data

	GET /dashboard   → GetDashboard
	GET /leaderboard → GetLeaderboard

Both return the most recent poller state. Nothing is fetched on request.
Leaderboard entries carry 1-based ranks in server order.

# Join Flow

	GET  /join → GetJoin
	POST /join → SubmitJoin

A rejected submission is still a 200 with status "failed" and the
server message. A second submission while one is in flight gets 409.

# Sharing

	GET  /share      → GetShare
	POST /share      → Share
	POST /share/copy → Copy

The link defaults to the dashboard's referral link. Without one both
actions do nothing.
*/
package handlers
