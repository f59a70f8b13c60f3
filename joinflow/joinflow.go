// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package joinflow

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/danielhkuo/serveqrew-sync/api"
	"github.com/danielhkuo/serveqrew-sync/auth"
	"github.com/danielhkuo/serveqrew-sync/clock"
	"github.com/danielhkuo/serveqrew-sync/metrics"
	"github.com/danielhkuo/serveqrew-sync/models"
)

// AdoptDelay is how long the success message stays visible before the new
// code is adopted
const AdoptDelay = 1500 * time.Millisecond

// User-facing failure messages
const (
	MsgNetworkError = "Network error. Please try again."
	MsgGeneric      = "Something went wrong"
)

var (
	ErrSubmitInFlight = errors.New("a submission is already in progress")
	ErrClosed         = errors.New("join controller closed")
)

// Kind enumerates the join flow states
type Kind int

const (
	Idle Kind = iota
	Submitting
	Succeeded
	Failed
)

func (k Kind) String() string {
	switch k {
	case Idle:
		return "idle"
	case Submitting:
		return "submitting"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// State is the current join flow state. ReferralCode is only set in
// Succeeded, and may be empty there. Message is the confirmation in
// Succeeded and the reason in Failed.
type State struct {
	Kind         Kind
	ReferralCode string
	Message      string
}

// Joiner submits a waitlist entry
type Joiner interface {
	JoinWaitlist(ctx context.Context, req models.JoinRequest) (models.JoinResponse, error)
}

// Adopter makes a new referral code the active session
type Adopter interface {
	Adopt(ctx context.Context, code string) error
}

type Option func(*Controller)

func WithClock(c clock.Clock) Option {
	return func(ctl *Controller) { ctl.clock = c }
}

// WithDelay overrides AdoptDelay
func WithDelay(d time.Duration) Option {
	return func(ctl *Controller) { ctl.delay = d }
}

// Controller drives a waitlist submission from Idle to Succeeded or Failed.
// It never retries on its own.
type Controller struct {
	ctx     context.Context
	joiner  Joiner
	adopter Adopter
	clock   clock.Clock
	delay   time.Duration

	mu      sync.Mutex
	state   State
	attempt uint64
	pending clock.Timer
	closed  bool

	notifyMu sync.Mutex
	subs     map[int]func(State)
	nextSub  int
}

// New creates an Idle controller. ctx bounds the delayed adoption.
func New(ctx context.Context, joiner Joiner, adopter Adopter, opts ...Option) *Controller {
	c := &Controller{
		ctx:     ctx,
		joiner:  joiner,
		adopter: adopter,
		clock:   clock.Real(),
		delay:   AdoptDelay,
		subs:    make(map[int]func(State)),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Submit sends req to the join endpoint and returns the resulting state.
// Invalid input is rejected before any state change.
func (c *Controller) Submit(ctx context.Context, req models.JoinRequest) (State, error) {
	req = req.Normalize()
	if err := req.Validate(); err != nil {
		return c.State(), err
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return State{}, ErrClosed
	}
	if c.state.Kind == Submitting {
		st := c.state
		c.mu.Unlock()
		return st, ErrSubmitInFlight
	}
	c.cancelPendingLocked()
	c.attempt++
	attempt := c.attempt
	c.state = State{Kind: Submitting}
	c.unlockAndNotify()

	resp, err := c.joiner.JoinWaitlist(ctx, req)
	next := outcome(resp, err)

	c.mu.Lock()
	if c.closed || attempt != c.attempt {
		// Close happened while the request was out
		st := c.state
		c.mu.Unlock()
		return st, nil
	}
	c.state = next
	if next.Kind == Succeeded && next.ReferralCode != "" {
		code := next.ReferralCode
		c.pending = c.clock.AfterFunc(c.delay, func() { c.adoptLater(attempt, code) })
	}
	c.unlockAndNotify()

	if err != nil {
		metrics.JoinResults.WithLabelValues(metrics.OutcomeFailure).Inc()
		slog.Warn("join failed", "kind", api.Kind(err), "error", err)
	} else {
		metrics.JoinResults.WithLabelValues(metrics.OutcomeSuccess).Inc()
		slog.Info("joined waitlist", "code_fp", auth.Fingerprint(next.ReferralCode))
	}
	return next, nil
}

// outcome maps a join response to the state it leads to
func outcome(resp models.JoinResponse, err error) State {
	if err == nil {
		return State{Kind: Succeeded, ReferralCode: resp.ReferralCode, Message: resp.Message}
	}

	var te *api.TransportError
	var ae *api.APIError
	switch {
	case errors.As(err, &te):
		return State{Kind: Failed, Message: MsgNetworkError}
	case errors.As(err, &ae) && ae.Message != "":
		return State{Kind: Failed, Message: ae.Message}
	default:
		return State{Kind: Failed, Message: MsgGeneric}
	}
}

func (c *Controller) adoptLater(attempt uint64, code string) {
	c.mu.Lock()
	if c.closed || attempt != c.attempt {
		c.mu.Unlock()
		return
	}
	c.pending = nil
	c.mu.Unlock()

	if err := c.adopter.Adopt(c.ctx, code); err != nil {
		slog.Error("failed to adopt referral code", "code_fp", auth.Fingerprint(code), "error", err)
	}
}

// AdoptionPending reports whether a successful join is waiting for its delay
func (c *Controller) AdoptionPending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending != nil
}

// State returns the current state
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Reset returns to Idle and cancels a pending adoption. It fails with
// ErrSubmitInFlight while a submission is outstanding, so a following Submit
// can never send a second join request alongside the first.
func (c *Controller) Reset() error {
	c.mu.Lock()
	if c.state.Kind == Submitting {
		c.mu.Unlock()
		return ErrSubmitInFlight
	}
	c.cancelPendingLocked()
	c.attempt++
	c.state = State{Kind: Idle}
	c.unlockAndNotify()
	return nil
}

// Close cancels a pending adoption. Further submissions fail with ErrClosed.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancelPendingLocked()
	c.closed = true
}

func (c *Controller) cancelPendingLocked() {
	if c.pending != nil {
		c.pending.Stop()
		c.pending = nil
	}
}

// Subscribe registers fn for every state change. fn must not call methods of c.
func (c *Controller) Subscribe(fn func(State)) (unsubscribe func()) {
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	return func() {
		c.notifyMu.Lock()
		defer c.notifyMu.Unlock()
		delete(c.subs, id)
	}
}

func (c *Controller) unlockAndNotify() {
	st := c.state
	c.notifyMu.Lock()
	c.mu.Unlock()
	defer c.notifyMu.Unlock()
	for _, fn := range c.subs {
		fn(st)
	}
}
