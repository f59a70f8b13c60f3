package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/danielhkuo/serveqrew-sync/api"
	"github.com/danielhkuo/serveqrew-sync/auth"
	"github.com/danielhkuo/serveqrew-sync/cliparse"
	"github.com/danielhkuo/serveqrew-sync/db"
	"github.com/danielhkuo/serveqrew-sync/joinflow"
	"github.com/danielhkuo/serveqrew-sync/middleware"
	"github.com/danielhkuo/serveqrew-sync/models"
	"github.com/danielhkuo/serveqrew-sync/poller"
	"github.com/danielhkuo/serveqrew-sync/router"
	"github.com/danielhkuo/serveqrew-sync/session"
	"github.com/danielhkuo/serveqrew-sync/share"
	"github.com/danielhkuo/serveqrew-sync/store"
	"github.com/danielhkuo/serveqrew-sync/view"
)

func main() {
	var err error

	if err := cliparse.LoadDotEnv(); err != nil {
		slog.Error("Error loading .env", "error", err)
		os.Exit(1)
	}

	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}
	setupLogging(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Open the session store
	kv, closeKV, err := openStore(ctx, cfg)
	if err != nil {
		slog.Error("store setup failed", "store", cfg.StoreType, "error", err)
		os.Exit(1)
	}
	defer closeKV.Close()
	slog.Info("Session store ready", "store", cfg.StoreType)

	location, err := session.NewLocation(cfg.PageURL)
	if err != nil {
		slog.Error("invalid page URL", "error", err)
		os.Exit(1)
	}

	var resolverOpts []session.Option
	if cfg.RequireCode {
		resolverOpts = append(resolverOpts, session.WithRequireCode())
	}
	resolver := session.NewResolver(kv, location, resolverOpts...)

	client := api.New(cfg.APIBaseURL, api.WithTimeout(cfg.HTTPTimeout))
	dashboard := poller.NewDashboard(ctx, client)
	leaderboard := poller.NewLeaderboard(ctx, client)
	views := view.New(resolver, dashboard, leaderboard)
	join := joinflow.New(ctx, client, resolver)

	clipboard, err := share.NewClipboard(cfg.Clipboard)
	if err != nil {
		slog.Error("clipboard setup failed", "error", err)
		os.Exit(1)
	}
	sharer := share.New(clipboard)

	logUpdates(dashboard, leaderboard, join)

	sess, err := resolver.Resolve(ctx)
	if err != nil {
		// The engine still runs without a session; the waitlist view is shown
		slog.Error("session resolution failed", "error", err)
	}
	slog.Info("Session resolved",
		"source", sess.Source,
		"code", auth.Fingerprint(sess.ReferralCode),
		"location", auth.RedactURL(location.URL()),
	)
	views.Start()

	if cfg.WantsJoin() {
		go func() {
			st, err := join.Submit(ctx, models.JoinRequest{
				FullName:  cfg.JoinName,
				Email:     cfg.JoinEmail,
				BrandName: cfg.JoinBrand,
			})
			if err != nil {
				slog.Error("startup join rejected", "error", err)
				return
			}
			slog.Info("startup join finished", "status", st.Kind.String(), "message", st.Message)
		}()
	}

	// Create router
	mux := router.NewRouter(router.Deps{
		Resolver:    resolver,
		Location:    location,
		View:        views,
		Dashboard:   dashboard,
		Leaderboard: leaderboard,
		Join:        join,
		Sharer:      sharer,
	})

	// Create server
	server := http.Server{
		Handler: middleware.CORS(mux),
		Addr:    ":" + strconv.Itoa(cfg.Port),
	}

	// signal.Notify requires the channel to be buffered
	ctrlc := make(chan os.Signal, 1)
	signal.Notify(ctrlc, os.Interrupt, syscall.SIGTERM)
	go func() {
		// Wait for Ctrl-C signal
		<-ctrlc
		cancel()
		join.Close()
		views.Close()
		server.Close()
	}()

	// Start server
	slog.Info("Listening", "port", cfg.Port, "api", cfg.APIBaseURL)
	err = server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		slog.Error("Server closed", "error", err)
	} else {
		slog.Info("Server closed", "error", err)
	}
}

func setupLogging(cfg cliparse.Config) {
	level, _ := cfg.Level()
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

// openStore returns the configured KV and a closer for its connection
func openStore(ctx context.Context, cfg cliparse.Config) (store.KV, io.Closer, error) {
	switch cfg.StoreType {
	case cliparse.StoreMemory:
		return store.NewMemory(), closerFunc(func() error { return nil }), nil

	case cliparse.StoreRedis:
		rdb, err := store.DialRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, nil, err
		}
		return store.NewRedis(rdb), rdb, nil

	default:
		conn, err := db.Open(cfg.StoreType, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		if err := db.CreateSchema(conn); err != nil {
			conn.Close()
			return nil, nil, err
		}
		kv, err := store.NewSQL(conn, cfg.StoreType)
		if err != nil {
			conn.Close()
			return nil, nil, err
		}
		return kv, conn, nil
	}
}

// logUpdates reports engine state transitions at debug level
func logUpdates(dashboard *poller.Dashboard, leaderboard *poller.Leaderboard, join *joinflow.Controller) {
	dashboard.Subscribe(func(st poller.State[models.DashboardSnapshot]) {
		if st.Snapshot != nil {
			slog.Debug("dashboard updated",
				"referrals", st.Snapshot.Referrals,
				"rank", st.Snapshot.Rank,
				"loading", st.Loading,
			)
		}
	})
	leaderboard.Subscribe(func(st poller.State[models.LeaderboardSnapshot]) {
		if st.Snapshot != nil {
			slog.Debug("leaderboard updated", "entries", len(st.Snapshot.TopReferrers))
		}
	})
	join.Subscribe(func(st joinflow.State) {
		slog.Debug("join state changed", "status", st.Kind.String())
	})
}
