// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package poller

import (
	"context"
	"time"

	"github.com/danielhkuo/serveqrew-sync/api"
	"github.com/danielhkuo/serveqrew-sync/models"
)

// Poll cadences
const (
	DashboardInterval   = 5 * time.Second
	LeaderboardInterval = 30 * time.Second
)

// Poller names, used as metric labels
const (
	NameDashboard   = "dashboard"
	NameLeaderboard = "leaderboard"
)

type DashboardSource interface {
	Dashboard(ctx context.Context, code string) (models.DashboardSnapshot, error)
}

type LeaderboardSource interface {
	Leaderboard(ctx context.Context) (models.LeaderboardSnapshot, error)
}

// Dashboard polls the dashboard of one referral code
type Dashboard = Poller[string, models.DashboardSnapshot]

// Leaderboard polls the global leaderboard; its key carries no information
type Leaderboard = Poller[struct{}, models.LeaderboardSnapshot]

// NewDashboard creates the dashboard poller. Starting it with an empty code
// leaves it inactive ("no session") and issues no request.
func NewDashboard(ctx context.Context, src DashboardSource, opts ...Option) *Dashboard {
	fetch := func(ctx context.Context, code string) (models.DashboardSnapshot, error) {
		if code == "" {
			return models.DashboardSnapshot{}, api.ErrNoSession
		}
		return src.Dashboard(ctx, code)
	}
	p := New(ctx, NameDashboard, DashboardInterval, fetch, opts...)
	p.skip = func(code string) bool { return code == "" }
	return p
}

// NewLeaderboard creates the leaderboard poller. Start it with struct{}{}.
func NewLeaderboard(ctx context.Context, src LeaderboardSource, opts ...Option) *Leaderboard {
	fetch := func(ctx context.Context, _ struct{}) (models.LeaderboardSnapshot, error) {
		return src.Leaderboard(ctx)
	}
	return New(ctx, NameLeaderboard, LeaderboardInterval, fetch, opts...)
}
