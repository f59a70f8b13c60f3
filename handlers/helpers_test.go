// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"testing"
	"time"

	"github.com/danielhkuo/serveqrew-sync/api"
	"github.com/danielhkuo/serveqrew-sync/clock"
	"github.com/danielhkuo/serveqrew-sync/joinflow"
	"github.com/danielhkuo/serveqrew-sync/poller"
	"github.com/danielhkuo/serveqrew-sync/session"
	"github.com/danielhkuo/serveqrew-sync/share"
	"github.com/danielhkuo/serveqrew-sync/store"
	"github.com/danielhkuo/serveqrew-sync/testutil"
	"github.com/danielhkuo/serveqrew-sync/view"
)

type testEnv struct {
	backend   *testutil.Backend
	clock     *clock.Fake
	location  *session.MemoryLocation
	resolver  *session.Resolver
	dashboard *poller.Dashboard
	board     *poller.Leaderboard
	router    *view.Router
	join      *joinflow.Controller
	clipboard *share.Memory
	sharer    *share.Sharer
}

// setupTestEnv wires the engine against a fake backend with a fake clock.
// The session is resolved from rawURL and the view router is started.
func setupTestEnv(t *testing.T, kv store.KV, rawURL string) *testEnv {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	env := &testEnv{
		backend:   testutil.NewBackend(t),
		clock:     clock.NewFake(time.Now()),
		clipboard: &share.Memory{},
	}
	client := api.New(env.backend.URL())

	loc, err := session.NewLocation(rawURL)
	if err != nil {
		t.Fatalf("Failed to parse location: %v", err)
	}
	env.location = loc
	env.resolver = session.NewResolver(kv, loc)

	quiet := poller.WithErrorReporter(func(string, error) {})
	env.dashboard = poller.NewDashboard(ctx, client, poller.WithClock(env.clock), quiet)
	env.board = poller.NewLeaderboard(ctx, client, poller.WithClock(env.clock), quiet)
	env.router = view.New(env.resolver, env.dashboard, env.board)
	env.join = joinflow.New(ctx, client, env.resolver, joinflow.WithClock(env.clock))
	env.sharer = share.New(env.clipboard, share.WithClock(env.clock))

	if _, err := env.resolver.Resolve(ctx); err != nil {
		t.Fatalf("Failed to resolve session: %v", err)
	}
	env.router.Start()
	t.Cleanup(env.router.Close)
	t.Cleanup(env.join.Close)
	return env
}

// waitFor polls cond until it holds or a second passes
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met within 1s")
		}
		time.Sleep(time.Millisecond)
	}
}
