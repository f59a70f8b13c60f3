// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/serveqrew-sync/db"
)

// exerciseKV runs the shared KV contract against kv
func exerciseKV(t *testing.T, kv KV) {
	t.Helper()
	ctx := context.Background()

	_, ok, err := kv.Get(ctx, "test:missing")
	require.NoError(t, err)
	assert.False(t, ok, "unset key reports ok=false")

	require.NoError(t, kv.Set(ctx, "test:code", "ABC123"))
	value, ok, err := kv.Get(ctx, "test:code")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "ABC123", value)

	// Overwrite keeps a single value
	require.NoError(t, kv.Set(ctx, "test:code", "XYZ789"))
	value, ok, err = kv.Get(ctx, "test:code")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "XYZ789", value)
}

func TestMemory(t *testing.T) {
	exerciseKV(t, NewMemory())
}

func TestSQL_SQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kv.db")
	conn, err := db.Open(db.TypeSQLite, "file:"+path)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, db.CreateSchema(conn))

	kv, err := NewSQL(conn, db.TypeSQLite)
	require.NoError(t, err)
	exerciseKV(t, kv)

	var rows int
	require.NoError(t, conn.QueryRow(`SELECT COUNT(*) FROM kv WHERE key = 'test:code'`).Scan(&rows))
	assert.Equal(t, 1, rows, "upsert must not duplicate rows")
}

func TestSQL_SQLiteSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kv.db")
	ctx := context.Background()

	conn, err := db.Open(db.TypeSQLite, "file:"+path)
	require.NoError(t, err)
	require.NoError(t, db.CreateSchema(conn))
	kv, err := NewSQL(conn, db.TypeSQLite)
	require.NoError(t, err)
	require.NoError(t, kv.Set(ctx, "serveqrew:referralCode", "ABC123"))
	require.NoError(t, conn.Close())

	conn, err = db.Open(db.TypeSQLite, "file:"+path)
	require.NoError(t, err)
	defer conn.Close()
	kv, err = NewSQL(conn, db.TypeSQLite)
	require.NoError(t, err)

	value, ok, err := kv.Get(ctx, "serveqrew:referralCode")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "ABC123", value)
}

func TestSQL_Postgres(t *testing.T) {
	url := os.Getenv("TEST_POSTGRES_URL")
	if url == "" {
		t.Skip("TEST_POSTGRES_URL not set")
	}
	conn, err := db.Open(db.TypePostgres, url)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, db.CreateSchema(conn))
	_, err = conn.Exec(`DELETE FROM kv WHERE key LIKE 'test:%'`)
	require.NoError(t, err)

	kv, err := NewSQL(conn, db.TypePostgres)
	require.NoError(t, err)
	exerciseKV(t, kv)
}

func TestNewSQL_UnsupportedType(t *testing.T) {
	_, err := NewSQL(nil, "mysql")
	require.Error(t, err)
}

func TestRedis(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	ctx := context.Background()
	rdb, err := DialRedis(ctx, addr, "", 0)
	require.NoError(t, err)
	defer rdb.Close()
	require.NoError(t, rdb.Del(ctx, "test:missing", "test:code").Err())

	exerciseKV(t, NewRedis(rdb))
}
