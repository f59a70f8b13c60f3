// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package share

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/danielhkuo/serveqrew-sync/clock"
)

// CopiedFor is how long the copied flag stays set after a successful copy
const CopiedFor = 2 * time.Second

// Native share payload
const (
	Title = "Join ServeQrew"
	Text  = "Join me on ServeQrew and let's grow together!"
)

// ErrCancelled is returned by a NativeSharer when the user dismisses the dialog
var ErrCancelled = errors.New("share cancelled")

// Payload is what a native share dialog receives
type Payload struct {
	Title string `json:"title"`
	Text  string `json:"text"`
	URL   string `json:"url"`
}

// Clipboard writes text to a clipboard
type Clipboard interface {
	WriteText(ctx context.Context, text string) error
}

// NativeSharer opens a platform share dialog
type NativeSharer interface {
	Share(ctx context.Context, p Payload) error
}

type Option func(*Sharer)

func WithClock(c clock.Clock) Option {
	return func(s *Sharer) { s.clock = c }
}

// WithNativeSharer enables Share through a native dialog
func WithNativeSharer(n NativeSharer) Option {
	return func(s *Sharer) { s.native = n }
}

// Sharer copies or shares a referral link and tracks the transient copied flag
type Sharer struct {
	clipboard Clipboard
	native    NativeSharer
	clock     clock.Clock

	mu     sync.Mutex
	copied bool
	reset  clock.Timer
	seq    uint64
}

func New(cb Clipboard, opts ...Option) *Sharer {
	s := &Sharer{clipboard: cb, clock: clock.Real()}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Copy writes link to the clipboard and sets the copied flag for CopiedFor.
// A second copy restarts the window. An empty link is a no-op.
func (s *Sharer) Copy(ctx context.Context, link string) error {
	if link == "" {
		return nil
	}
	if err := s.clipboard.WriteText(ctx, link); err != nil {
		return fmt.Errorf("failed to copy link: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.reset != nil {
		s.reset.Stop()
	}
	s.seq++
	seq := s.seq
	s.copied = true
	s.reset = s.clock.AfterFunc(CopiedFor, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if seq == s.seq {
			s.copied = false
			s.reset = nil
		}
	})
	return nil
}

// Share opens the native share dialog if there is one and falls back to Copy
// when there is none or the dialog fails or is cancelled.
func (s *Sharer) Share(ctx context.Context, link string) error {
	if link == "" {
		return nil
	}
	if s.native != nil {
		err := s.native.Share(ctx, Payload{Title: Title, Text: Text, URL: link})
		if err == nil {
			return nil
		}
		if !errors.Is(err, ErrCancelled) {
			slog.Debug("native share failed, copying instead", "error", err)
		}
	}
	return s.Copy(ctx, link)
}

// Copied reports whether the link was copied within the last CopiedFor
func (s *Sharer) Copied() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copied
}
