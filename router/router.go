// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/danielhkuo/serveqrew-sync/handlers"
	"github.com/danielhkuo/serveqrew-sync/joinflow"
	"github.com/danielhkuo/serveqrew-sync/middleware"
	"github.com/danielhkuo/serveqrew-sync/poller"
	"github.com/danielhkuo/serveqrew-sync/share"
)

// Deps holds the engine components the routes read from and act on.
type Deps struct {
	Resolver    handlers.SessionResolver
	Location    handlers.Navigator
	View        handlers.ViewSelector
	Dashboard   *poller.Dashboard
	Leaderboard *poller.Leaderboard
	Join        *joinflow.Controller
	Sharer      *share.Sharer
}

func NewRouter(d Deps) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	sessionHandler := handlers.NewSessionHandler(d.Resolver, d.Location, d.View)
	dataHandler := handlers.NewDataHandler(d.Dashboard, d.Leaderboard)
	joinHandler := handlers.NewJoinHandler(d.Join)
	shareHandler := handlers.NewShareHandler(d.Sharer, d.Dashboard)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Session and view selection
	mux.HandleFunc("GET /session", middleware.WithLogging(sessionHandler.GetSession))
	mux.HandleFunc("POST /session/location", middleware.WithLogging(sessionHandler.SetLocation))

	// Live data
	mux.HandleFunc("GET /dashboard", middleware.WithLogging(dataHandler.GetDashboard))
	mux.HandleFunc("GET /leaderboard", middleware.WithLogging(dataHandler.GetLeaderboard))

	// Waitlist join
	mux.HandleFunc("GET /join", middleware.WithLogging(joinHandler.GetJoin))
	mux.HandleFunc("POST /join", middleware.WithLogging(joinHandler.SubmitJoin))

	// Link sharing
	mux.HandleFunc("GET /share", middleware.WithLogging(shareHandler.GetShare))
	mux.HandleFunc("POST /share", middleware.WithLogging(shareHandler.Share))
	mux.HandleFunc("POST /share/copy", middleware.WithLogging(shareHandler.Copy))

	mux.Handle("GET /metrics", promhttp.Handler())

	// Root endpoint
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("serveqrew-sync API v1"))
	})

	return mux
}
