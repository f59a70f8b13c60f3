// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package metrics holds the Prometheus collectors of the sync engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Poll outcomes
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeSkipped = "skipped"
)

var (
	// PollResults counts applied poll responses by poller and outcome
	PollResults = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "serveqrew_poll_results_total",
			Help: "Poll results by poller and outcome",
		},
		[]string{"poller", "outcome"},
	)

	// PollStale counts responses discarded because their generation was superseded
	PollStale = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "serveqrew_poll_stale_total",
			Help: "Poll responses discarded as stale",
		},
		[]string{"poller"},
	)

	// JoinResults counts waitlist submissions by outcome
	JoinResults = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "serveqrew_join_results_total",
			Help: "Waitlist join attempts by outcome",
		},
		[]string{"outcome"},
	)

	// SessionResolutions counts resolved sessions by source
	SessionResolutions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "serveqrew_session_resolutions_total",
			Help: "Session resolutions by source",
		},
		[]string{"source"},
	)
)
