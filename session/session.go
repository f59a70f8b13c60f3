// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/danielhkuo/serveqrew-sync/auth"
	"github.com/danielhkuo/serveqrew-sync/metrics"
	"github.com/danielhkuo/serveqrew-sync/models"
	"github.com/danielhkuo/serveqrew-sync/store"
)

// ReferralKey is the store key holding the active referral code.
// Only Resolver writes it.
const ReferralKey = "serveqrew:referralCode"

// CodeSource is the read-only view of the session handed to pollers
type CodeSource interface {
	Code() (string, bool)
}

type Option func(*Resolver)

// WithRequireCode makes URL parameters mandatory: without access_token or
// code in the page URL the resolver yields no session, even if a code is
// stored.
func WithRequireCode() Option {
	return func(r *Resolver) { r.requireCode = true }
}

// Resolver owns the Session of one browser context
type Resolver struct {
	kv          store.KV
	loc         Location
	requireCode bool

	// writeMu serializes store writes so the store and session never diverge
	writeMu sync.Mutex

	mu      sync.Mutex
	session models.Session
	subs    map[int]func(models.Session)
	nextSub int
}

func NewResolver(kv store.KV, loc Location, opts ...Option) *Resolver {
	r := &Resolver{
		kv:      kv,
		loc:     loc,
		session: models.Session{Source: models.SourceNone},
		subs:    make(map[int]func(models.Session)),
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Resolve evaluates session sources in priority order and returns the
// resulting session: access token in the URL, magic-link code in the URL,
// stored code, none. A consumed access token is stripped from the visible
// URL. Call on page load and whenever the page URL changes.
func (r *Resolver) Resolve(ctx context.Context) (models.Session, error) {
	sess, err := r.resolve(ctx)
	if err != nil {
		return r.Session(), err
	}
	metrics.SessionResolutions.WithLabelValues(sess.Source).Inc()
	slog.Info("session resolved",
		"source", sess.Source,
		"code_fp", auth.Fingerprint(sess.ReferralCode),
	)
	return sess, nil
}

func (r *Resolver) resolve(ctx context.Context) (models.Session, error) {
	if u := r.loc.URL(); u != nil {
		clean, token, present := auth.StripQueryParam(u, auth.ParamAccessToken)
		if present {
			// Strip even an unusable token; the link must not be re-shared
			r.loc.Replace(clean)
			if err := auth.ValidateCode(token); err != nil {
				slog.Warn("ignoring access token", "error", err)
			} else {
				return r.adopt(ctx, token, models.SourceURLToken)
			}
		}

		if code := clean.Query().Get(auth.ParamCode); code != "" {
			if err := auth.ValidateCode(code); err != nil {
				slog.Warn("ignoring magic link code", "error", err)
			} else {
				return r.adopt(ctx, code, models.SourceURLMagicLink)
			}
		}
	}

	if r.requireCode {
		return r.replace(models.Session{Source: models.SourceNone}), nil
	}

	code, ok, err := r.kv.Get(ctx, ReferralKey)
	if err != nil {
		return models.Session{}, fmt.Errorf("failed to read stored referral code: %w", err)
	}
	if ok && auth.ValidateCode(code) == nil {
		return r.replace(models.Session{ReferralCode: code, Source: models.SourceStored}), nil
	}
	return r.replace(models.Session{Source: models.SourceNone}), nil
}

// Adopt makes code the active referral code. The store is written before the
// in-memory session changes; if the write fails the session is untouched.
// Adopting the current code again changes nothing.
func (r *Resolver) Adopt(ctx context.Context, code string) error {
	if err := auth.ValidateCode(code); err != nil {
		return fmt.Errorf("cannot adopt referral code: %w", err)
	}
	sess, err := r.adopt(ctx, code, models.SourceStored)
	if err != nil {
		return err
	}
	slog.Info("referral code adopted", "code_fp", auth.Fingerprint(sess.ReferralCode))
	return nil
}

func (r *Resolver) adopt(ctx context.Context, code, source string) (models.Session, error) {
	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	if current, _ := r.Code(); current != code {
		if err := r.kv.Set(ctx, ReferralKey, code); err != nil {
			return models.Session{}, fmt.Errorf("failed to persist referral code: %w", err)
		}
	}
	return r.replace(models.Session{ReferralCode: code, Source: source}), nil
}

// replace installs sess and notifies subscribers if the code changed
func (r *Resolver) replace(sess models.Session) models.Session {
	r.mu.Lock()
	changed := r.session.ReferralCode != sess.ReferralCode
	r.session = sess
	var subs []func(models.Session)
	if changed {
		subs = make([]func(models.Session), 0, len(r.subs))
		for _, fn := range r.subs {
			subs = append(subs, fn)
		}
	}
	r.mu.Unlock()

	for _, fn := range subs {
		fn(sess)
	}
	return sess
}

// Session returns the current session
func (r *Resolver) Session() models.Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.session
}

// Code returns the active referral code, if any
func (r *Resolver) Code() (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.session.ReferralCode, r.session.ReferralCode != ""
}

// Subscribe registers fn to run after every change of referral code.
// fn must not call Adopt or Resolve synchronously.
func (r *Resolver) Subscribe(fn func(models.Session)) (unsubscribe func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.nextSub
	r.nextSub++
	r.subs[id] = fn
	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		delete(r.subs, id)
	}
}
