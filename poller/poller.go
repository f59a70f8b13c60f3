// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package poller

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/danielhkuo/serveqrew-sync/api"
	"github.com/danielhkuo/serveqrew-sync/clock"
	"github.com/danielhkuo/serveqrew-sync/metrics"
)

// Fetcher retrieves the current snapshot for key
type Fetcher[K comparable, T any] func(ctx context.Context, key K) (T, error)

// State is a copy of a poller's observable state
type State[T any] struct {
	Snapshot   *T        `json:"snapshot"`
	Loading    bool      `json:"loading"`
	Active     bool      `json:"active"`
	Generation uint64    `json:"generation"`
	UpdatedAt  time.Time `json:"updatedAt,omitempty"`
	LastError  string    `json:"lastError,omitempty"`
}

// ErrorReporter receives every failed fetch of the current generation
type ErrorReporter func(poller string, err error)

type Option func(*options)

type options struct {
	clock  clock.Clock
	report ErrorReporter
}

func WithClock(c clock.Clock) Option {
	return func(o *options) { o.clock = c }
}

func WithErrorReporter(fn ErrorReporter) Option {
	return func(o *options) { o.report = fn }
}

// LogErrors is the default ErrorReporter
func LogErrors(poller string, err error) {
	slog.Warn("poll failed, keeping last snapshot",
		"poller", poller,
		"kind", api.Kind(err),
		"error", err,
	)
}

// Poller keeps the latest snapshot of a remote resource fresh.
//
// Every Start begins a new generation. A response is applied only if the
// generation it was issued in is still current; anything else is dropped.
type Poller[K comparable, T any] struct {
	name     string
	interval time.Duration
	fetch    Fetcher[K, T]
	clock    clock.Clock
	report   ErrorReporter
	ctx      context.Context

	// skip reports keys that mean "nothing to poll"
	skip func(K) bool

	mu        sync.Mutex
	gen       uint64
	key       K
	started   bool // a key has been set at least once
	active    bool
	inFlight  bool // a request of the current generation is pending
	firstDone bool // first fetch of the current generation completed
	loading   bool
	snapshot  *T
	updatedAt time.Time
	lastErr   string
	timer     clock.Timer

	// notifyMu keeps subscriber deliveries in state order
	notifyMu sync.Mutex
	subs     map[int]func(State[T])
	nextSub  int
}

// New creates an idle poller. Requests use ctx; cancelling it stops polling
// and aborts in-flight requests.
func New[K comparable, T any](ctx context.Context, name string, interval time.Duration, fetch Fetcher[K, T], opts ...Option) *Poller[K, T] {
	o := options{clock: clock.Real(), report: LogErrors}
	for _, opt := range opts {
		opt(&o)
	}
	return &Poller[K, T]{
		name:     name,
		interval: interval,
		fetch:    fetch,
		clock:    o.clock,
		report:   o.report,
		ctx:      ctx,
		subs:     make(map[int]func(State[T])),
	}
}

// Name returns the poller name used in logs and metrics
func (p *Poller[K, T]) Name() string {
	return p.name
}

// Start tears down the current activation, begins a new generation for key,
// fetches immediately and then every interval.
func (p *Poller[K, T]) Start(key K) {
	p.mu.Lock()
	p.teardownLocked()

	if !p.started || p.key != key {
		// The old snapshot belongs to another key
		p.snapshot = nil
		p.updatedAt = time.Time{}
	}
	p.started = true
	p.key = key
	p.lastErr = ""
	p.firstDone = false

	if p.skip != nil && p.skip(key) {
		p.snapshot = nil
		p.loading = false
		p.unlockAndNotify()
		return
	}

	p.active = true
	p.loading = true
	gen := p.gen
	p.issueLocked(gen, key)
	p.armLocked(gen)
	slog.Debug("poller started", "poller", p.name, "generation", gen)
	p.unlockAndNotify()
}

// Stop cancels the timer and advances the generation so that in-flight
// responses are ignored when they arrive. Requests are not aborted.
func (p *Poller[K, T]) Stop() {
	p.mu.Lock()
	if !p.active {
		p.mu.Unlock()
		return
	}
	p.teardownLocked()
	slog.Debug("poller stopped", "poller", p.name, "generation", p.gen)
	p.unlockAndNotify()
}

// teardownLocked ends the current generation. Caller holds p.mu.
func (p *Poller[K, T]) teardownLocked() {
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
	p.gen++
	p.active = false
	p.inFlight = false
	p.loading = false
}

// issueLocked starts a fetch for gen. Caller holds p.mu.
func (p *Poller[K, T]) issueLocked(gen uint64, key K) {
	p.inFlight = true
	ctx := api.WithScope(p.ctx, fmt.Sprintf("%s/%p/%d", p.name, p, gen))
	go func() {
		result, err := p.fetch(ctx, key)
		p.apply(gen, result, err)
	}()
}

// armLocked schedules the next tick for gen. Caller holds p.mu.
func (p *Poller[K, T]) armLocked(gen uint64) {
	p.timer = p.clock.AfterFunc(p.interval, func() { p.tick(gen) })
}

func (p *Poller[K, T]) tick(gen uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if gen != p.gen || !p.active || p.ctx.Err() != nil {
		return
	}
	if p.inFlight {
		metrics.PollResults.WithLabelValues(p.name, metrics.OutcomeSkipped).Inc()
		slog.Debug("previous poll still in flight, skipping tick", "poller", p.name, "generation", gen)
	} else {
		p.issueLocked(gen, p.key)
	}
	p.armLocked(gen)
}

func (p *Poller[K, T]) apply(gen uint64, result T, err error) {
	p.mu.Lock()
	if gen != p.gen {
		p.mu.Unlock()
		metrics.PollStale.WithLabelValues(p.name).Inc()
		slog.Debug("discarding stale poll response", "poller", p.name, "generation", gen)
		return
	}

	p.inFlight = false
	p.firstDone = true
	p.loading = false

	if err != nil {
		p.lastErr = err.Error()
		report := p.report
		p.unlockAndNotify()
		metrics.PollResults.WithLabelValues(p.name, metrics.OutcomeFailure).Inc()
		report(p.name, err)
		return
	}

	p.snapshot = &result
	p.updatedAt = p.clock.Now()
	p.lastErr = ""
	p.unlockAndNotify()
	metrics.PollResults.WithLabelValues(p.name, metrics.OutcomeSuccess).Inc()
}

// State returns a copy of the current state
func (p *Poller[K, T]) State() State[T] {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stateLocked()
}

func (p *Poller[K, T]) stateLocked() State[T] {
	return State[T]{
		Snapshot:   p.snapshot,
		Loading:    p.loading,
		Active:     p.active,
		Generation: p.gen,
		UpdatedAt:  p.updatedAt,
		LastError:  p.lastErr,
	}
}

// Key returns the key of the current activation
func (p *Poller[K, T]) Key() (K, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.key, p.active
}

// Subscribe registers fn to receive every state change, in order.
// fn runs while deliveries are serialized and must not call methods of p.
func (p *Poller[K, T]) Subscribe(fn func(State[T])) (unsubscribe func()) {
	p.notifyMu.Lock()
	defer p.notifyMu.Unlock()
	id := p.nextSub
	p.nextSub++
	p.subs[id] = fn
	return func() {
		p.notifyMu.Lock()
		defer p.notifyMu.Unlock()
		delete(p.subs, id)
	}
}

// unlockAndNotify releases p.mu and delivers the state it observed.
// notifyMu is taken before p.mu is released so deliveries follow state order.
func (p *Poller[K, T]) unlockAndNotify() {
	st := p.stateLocked()
	p.notifyMu.Lock()
	p.mu.Unlock()
	defer p.notifyMu.Unlock()
	for _, fn := range p.subs {
		fn(st)
	}
}
