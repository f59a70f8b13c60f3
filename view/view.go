// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package view chooses between the waitlist and dashboard surfaces and keeps
// the pollers in step with the session.
package view

import (
	"log/slog"
	"sync"

	"github.com/danielhkuo/serveqrew-sync/auth"
	"github.com/danielhkuo/serveqrew-sync/models"
	"github.com/danielhkuo/serveqrew-sync/poller"
)

// Session is what the router needs from the session resolver
type Session interface {
	Code() (string, bool)
	Subscribe(fn func(models.Session)) (unsubscribe func())
}

// Router switches to the dashboard view whenever the session holds a code.
// The dashboard poller is restarted only when the code actually changes.
type Router struct {
	session     Session
	dashboard   *poller.Dashboard
	leaderboard *poller.Leaderboard

	// syncMu serializes poller restarts
	syncMu sync.Mutex

	mu          sync.Mutex
	started     bool
	code        string
	unsubscribe func()
}

func New(sess Session, dashboard *poller.Dashboard, leaderboard *poller.Leaderboard) *Router {
	return &Router{session: sess, dashboard: dashboard, leaderboard: leaderboard}
}

// Start begins leaderboard polling, applies the current session and follows
// every later change. Resolve the session before calling Start.
func (r *Router) Start() {
	r.leaderboard.Start(struct{}{})
	unsubscribe := r.session.Subscribe(func(models.Session) { r.sync() })

	r.mu.Lock()
	r.unsubscribe = unsubscribe
	r.mu.Unlock()

	r.sync()
}

// sync re-reads the session code and restarts the dashboard poller if it changed
func (r *Router) sync() {
	r.syncMu.Lock()
	defer r.syncMu.Unlock()

	code, _ := r.session.Code()

	r.mu.Lock()
	first := !r.started
	if !first && code == r.code {
		r.mu.Unlock()
		return
	}
	prev := r.code
	r.started = true
	r.code = code
	r.mu.Unlock()

	switch {
	case code != "":
		r.dashboard.Start(code)
	case prev != "":
		// Session lost its code; leave the dashboard in "no session"
		r.dashboard.Start("")
	}
	slog.Info("view selected", "view", viewFor(code), "code_fp", auth.Fingerprint(code))
}

// View returns models.ViewDashboard or models.ViewWaitlist
func (r *Router) View() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return viewFor(r.code)
}

func viewFor(code string) string {
	if code != "" {
		return models.ViewDashboard
	}
	return models.ViewWaitlist
}

// Close stops following the session and stops both pollers
func (r *Router) Close() {
	r.mu.Lock()
	unsubscribe := r.unsubscribe
	r.unsubscribe = nil
	r.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
	r.dashboard.Stop()
	r.leaderboard.Stop()
}
