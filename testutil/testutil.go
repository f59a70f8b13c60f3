// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"

	"github.com/danielhkuo/serveqrew-sync/db"
	"github.com/danielhkuo/serveqrew-sync/models"
	"github.com/danielhkuo/serveqrew-sync/store"
)

// ErrStoreDown is returned by FailingKV
var ErrStoreDown = errors.New("store unavailable")

// FailingKV is a KV whose reads or writes fail on demand
type FailingKV struct {
	*store.Memory
	mu       sync.Mutex
	failGet  bool
	failSet  bool
	setCalls int
}

func NewFailingKV(failGet, failSet bool) *FailingKV {
	return &FailingKV{Memory: store.NewMemory(), failGet: failGet, failSet: failSet}
}

func (f *FailingKV) Get(ctx context.Context, key string) (string, bool, error) {
	f.mu.Lock()
	fail := f.failGet
	f.mu.Unlock()
	if fail {
		return "", false, ErrStoreDown
	}
	return f.Memory.Get(ctx, key)
}

func (f *FailingKV) Set(ctx context.Context, key, value string) error {
	f.mu.Lock()
	f.setCalls++
	fail := f.failSet
	f.mu.Unlock()
	if fail {
		return ErrStoreDown
	}
	return f.Memory.Set(ctx, key, value)
}

// SetCalls returns how many times Set was called
func (f *FailingKV) SetCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.setCalls
}

// SetupTestKV creates a fresh SQLite-backed KV in a temp directory
func SetupTestKV(t *testing.T) store.KV {
	t.Helper()

	conn, err := db.Open(db.TypeSQLite, "file:"+filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := db.CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	kv, err := store.NewSQL(conn, db.TypeSQLite)
	if err != nil {
		t.Fatalf("Failed to create kv: %v", err)
	}
	return kv
}

// Backend is a fake ServeQrew API: dashboard, leaderboard, join-waitlist
type Backend struct {
	Server *httptest.Server

	mu              sync.Mutex
	dashboards      map[string]models.DashboardSnapshot
	dashboardStatus int
	leaderboard     models.LeaderboardSnapshot
	joinStatus      int
	joinBody        interface{}
	requests        []string
	joins           []models.JoinRequest
}

// NewBackend starts a fake API server, closed when the test ends
func NewBackend(t *testing.T) *Backend {
	t.Helper()

	b := &Backend{
		dashboards:      make(map[string]models.DashboardSnapshot),
		dashboardStatus: http.StatusOK,
		joinStatus:      http.StatusOK,
		joinBody:        models.JoinResponse{Message: "Welcome"},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /dashboard", b.handleDashboard)
	mux.HandleFunc("GET /leaderboard", b.handleLeaderboard)
	mux.HandleFunc("POST /join-waitlist", b.handleJoin)

	b.Server = httptest.NewServer(mux)
	t.Cleanup(b.Server.Close)
	return b
}

// URL returns the base URL of the fake API
func (b *Backend) URL() string {
	return b.Server.URL
}

func (b *Backend) SetDashboard(code string, snap models.DashboardSnapshot) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.dashboards[code] = snap
}

// SetDashboardStatus forces every dashboard response to status
func (b *Backend) SetDashboardStatus(status int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.dashboardStatus = status
}

func (b *Backend) SetLeaderboard(l models.LeaderboardSnapshot) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.leaderboard = l
}

// SetJoinResult sets the status and JSON body returned by join-waitlist
func (b *Backend) SetJoinResult(status int, body interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.joinStatus = status
	b.joinBody = body
}

// Requests returns every request path with its query, in arrival order
func (b *Backend) Requests() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.requests...)
}

// Joins returns every decoded join submission
func (b *Backend) Joins() []models.JoinRequest {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]models.JoinRequest(nil), b.joins...)
}

func (b *Backend) record(r *http.Request) {
	b.requests = append(b.requests, r.URL.RequestURI())
}

func (b *Backend) handleDashboard(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	b.record(r)
	status := b.dashboardStatus
	snap, ok := b.dashboards[r.URL.Query().Get("code")]
	b.mu.Unlock()

	if status != http.StatusOK {
		writeJSON(w, status, models.ErrorResponse{Error: http.StatusText(status), Message: "dashboard unavailable"})
		return
	}
	if !ok {
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "Not Found", Message: "unknown referral code"})
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (b *Backend) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	b.record(r)
	l := b.leaderboard
	b.mu.Unlock()

	writeJSON(w, http.StatusOK, l)
}

func (b *Backend) handleJoin(w http.ResponseWriter, r *http.Request) {
	var req models.JoinRequest
	decodeErr := json.NewDecoder(r.Body).Decode(&req)

	b.mu.Lock()
	b.record(r)
	if decodeErr == nil {
		b.joins = append(b.joins, req)
	}
	status, body := b.joinStatus, b.joinBody
	b.mu.Unlock()

	if decodeErr != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Bad Request", Message: "Invalid JSON"})
		return
	}
	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if raw, ok := v.(string); ok {
		// Raw strings let tests send malformed bodies
		w.Write([]byte(raw))
		return
	}
	json.NewEncoder(w).Encode(v)
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
