// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package store provides key/value persistence for session state.

# Backends

  - Memory: process-local map, for tests and throwaway sessions
  - SQL: the kv table in SQLite or PostgreSQL (see package db)
  - Redis: a Redis server via github.com/redis/go-redis/v9

All implement KV:

	value, ok, err := kv.Get(ctx, key)
	err := kv.Set(ctx, key, value)

Absence is not an error: Get returns ok=false.

The only key written in practice is the referral code, and only the session
package writes it.
*/
package store
