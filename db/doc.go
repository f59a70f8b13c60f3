// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db opens the backing database and creates its schema.

# Connecting

Open selects the driver by database type and pings the connection:

	conn, err := db.Open(db.TypeSQLite, "file:serveqrew.db")
	conn, err := db.Open(db.TypePostgres, "postgres://...")

SQLite uses modernc.org/sqlite (pure Go, driver name "sqlite") and is limited
to one open connection. PostgreSQL uses github.com/lib/pq.

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS.

# Tables

  - kv: namespaced key/value pairs (key, value, updated_at)

The table holds a single row in practice: the active referral code under
the key owned by the session package.
*/
package db
