// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

Variables from a .env file can be loaded first:

	_ = cliparse.LoadDotEnv()

# CLI Flags

	-p             Local state API port (default: 3318)
	-api           ServeQrew API base URL
	-u             Page URL the session is resolved from
	-t             Store type: memory, sqlite, postgres, redis (default: sqlite)
	-d             Database URL (default: file:serveqrew.db)
	-redis         Redis address
	-require-code  Ignore the stored code unless the page URL carries one
	-timeout       Per-request timeout (default: 10s)
	-clipboard     system or memory
	-log-level     debug, info, warn, error
	-log-format    text or json
	-join-name, -join-email, -join-brand
	               Join the waitlist at startup

# Environment Variables

Flags fall back to environment variables:

	PORT                → -p
	SERVEQREW_API_URL   → -api
	SERVEQREW_PAGE_URL  → -u
	STORE_TYPE          → -t
	DATABASE_URL        → -d
	REDIS_ADDR          → -redis
	REDIS_PASSWORD, REDIS_DB
	REQUIRE_CODE        → -require-code
	HTTP_TIMEOUT        → -timeout
	CLIPBOARD           → -clipboard
	LOG_LEVEL, LOG_FORMAT
	JOIN_NAME, JOIN_EMAIL, JOIN_BRAND

CLI flags take precedence over environment variables.

# Validation

ParseFlags returns an error for an unknown store, clipboard or log setting,
a redis store without an address, or a join name without an email.
*/
package cliparse
