// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the serveqrew-sync engine.

serveqrew-sync keeps a ServeQrew referral session in sync with the
ServeQrew API. It resolves the referral code from the page URL or the
session store, polls the personal dashboard and the public leaderboard,
runs the waitlist join flow, and copies or shares the referral link. The
resulting state is served on a small local HTTP API.

# Starting the Server

With defaults (SQLite store in ./serveqrew.db, production API):

	go run .

With an access token in the page URL and an in-memory store:

	go run . -t memory -u "https://serveqrew.org/?access_token=ABC123"

Settings are read from .env, then the environment, then CLI flags.

# Configuration

  - PORT (-p): Server port (default: 3318)
  - SERVEQREW_API_URL (-api): API base URL
  - SERVEQREW_PAGE_URL (-u): Page URL the session is resolved from
  - STORE_TYPE (-t): memory, sqlite, postgres or redis
  - DATABASE_URL (-d): SQLite or PostgreSQL connection string
  - REDIS_ADDR (-redis): Redis address for the redis store
  - REQUIRE_CODE (-require-code): Ignore codes not in URL form
  - HTTP_TIMEOUT (-timeout): Per-request timeout
  - CLIPBOARD (-clipboard): system or memory
  - LOG_LEVEL, LOG_FORMAT: slog level and text or json output
  - JOIN_NAME, JOIN_EMAIL, JOIN_BRAND: Submit a join at startup

# Architecture

  - session: Referral code resolution and persistence
  - poller: Generic keyed poller with dashboard and leaderboard instances
  - joinflow: Waitlist submission state machine
  - share: Copy and native share with the copied indicator
  - view: Waitlist or dashboard selection driving the pollers
  - api: ServeQrew HTTP client
  - store, db: Session store backends
  - handlers, router, middleware: Local HTTP API
  - metrics: Prometheus counters
  - clock: Real and fake clocks for timers
  - auth: Code validation, fingerprints and URL redaction
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main
