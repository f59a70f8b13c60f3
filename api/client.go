// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/danielhkuo/serveqrew-sync/models"
)

// DefaultBaseURL is the production ServeQrew API
const DefaultBaseURL = "https://serveqrew.org"

// maxBodyBytes bounds every response body read
const maxBodyBytes = 1 << 20

// ErrNoSession is returned by Dashboard when no referral code is available.
// No request is issued.
var ErrNoSession = errors.New("no referral code")

// Client is a typed client for the ServeQrew waitlist API
type Client struct {
	baseURL    string
	httpClient *http.Client
	group      singleflight.Group
}

// Option configures the client
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the per-request timeout
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// New creates a Client for baseURL (DefaultBaseURL when empty)
func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Dashboard calls GET /dashboard?code={code}
func (c *Client) Dashboard(ctx context.Context, code string) (models.DashboardSnapshot, error) {
	if code == "" {
		return models.DashboardSnapshot{}, ErrNoSession
	}

	var snap models.DashboardSnapshot
	if err := c.get(ctx, "/dashboard?code="+url.QueryEscape(code), &snap); err != nil {
		return models.DashboardSnapshot{}, err
	}
	if snap.Referrals < 0 || snap.Rank < 0 {
		return models.DashboardSnapshot{}, &DecodeError{Op: "dashboard", Err: fmt.Errorf("negative counts (referrals=%d rank=%d)", snap.Referrals, snap.Rank)}
	}
	if snap.ReferralList == nil {
		snap.ReferralList = []models.ReferralEntry{}
	}
	return snap, nil
}

// Leaderboard calls GET /leaderboard
func (c *Client) Leaderboard(ctx context.Context) (models.LeaderboardSnapshot, error) {
	var l models.LeaderboardSnapshot
	if err := c.get(ctx, "/leaderboard", &l); err != nil {
		return models.LeaderboardSnapshot{}, err
	}
	for _, r := range l.TopReferrers {
		if r.Referrals < 0 {
			return models.LeaderboardSnapshot{}, &DecodeError{Op: "leaderboard", Err: fmt.Errorf("negative referrals for %q", r.Name)}
		}
	}
	if l.TopReferrers == nil {
		l.TopReferrers = []models.TopReferrer{}
	}
	return l, nil
}

// JoinWaitlist calls POST /join-waitlist. Never retried.
func (c *Client) JoinWaitlist(ctx context.Context, req models.JoinRequest) (models.JoinResponse, error) {
	var out models.JoinResponse
	err := c.do(ctx, http.MethodPost, "/join-waitlist", "join-waitlist", req, &out)
	return out, err
}

type scopeKey struct{}

// WithScope limits GET collapsing to calls made with the same scope.
// A poller passes one scope per generation, so a restarted poller never
// joins a request issued by a superseded generation.
func WithScope(ctx context.Context, scope string) context.Context {
	return context.WithValue(ctx, scopeKey{}, scope)
}

// get collapses identical concurrent GETs of one scope into one request
func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	key := path
	if scope, ok := ctx.Value(scopeKey{}).(string); ok {
		key = scope + " " + path
	}
	body, err, _ := c.group.Do(key, func() (interface{}, error) {
		var raw json.RawMessage
		if err := c.do(ctx, http.MethodGet, path, opName(path), nil, &raw); err != nil {
			return nil, err
		}
		return raw, nil
	})
	if err != nil {
		return err
	}
	raw := body.(json.RawMessage)
	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return &DecodeError{Op: opName(path), Err: errors.New("null body")}
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &DecodeError{Op: opName(path), Err: err}
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path, op string, body interface{}, out interface{}) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode %s request: %w", op, err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build %s request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Op: op, Status: resp.StatusCode}
		var payload struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(data, &payload) == nil {
			apiErr.Message = payload.Message
		}
		return apiErr
	}

	if err := json.Unmarshal(data, out); err != nil {
		return &DecodeError{Op: op, Err: err}
	}
	return nil
}

func opName(path string) string {
	name := strings.TrimPrefix(path, "/")
	if i := strings.IndexByte(name, '?'); i >= 0 {
		name = name[:i]
	}
	return name
}
