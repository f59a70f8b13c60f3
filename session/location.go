// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package session

import (
	"fmt"
	"net/url"
	"sync"
)

// Location is the visible page URL of the browser context.
// Replace swaps the current history entry without navigating.
type Location interface {
	URL() *url.URL
	Replace(u *url.URL)
}

// MemoryLocation is a Location held in memory. The external renderer reads
// it back to mirror the cleaned URL in its address bar.
type MemoryLocation struct {
	mu sync.Mutex
	u  *url.URL
}

// NewLocation parses raw as the initial page URL. An empty raw means no URL.
func NewLocation(raw string) (*MemoryLocation, error) {
	l := &MemoryLocation{}
	if raw == "" {
		return l, nil
	}
	if err := l.Navigate(raw); err != nil {
		return nil, err
	}
	return l, nil
}

func (l *MemoryLocation) URL() *url.URL {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.u == nil {
		return nil
	}
	u := *l.u
	return &u
}

func (l *MemoryLocation) Replace(u *url.URL) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if u == nil {
		l.u = nil
		return
	}
	c := *u
	l.u = &c
}

// Navigate loads a new page URL
func (l *MemoryLocation) Navigate(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid page url: %w", err)
	}
	l.Replace(u)
	return nil
}

// String returns the visible URL
func (l *MemoryLocation) String() string {
	u := l.URL()
	if u == nil {
		return ""
	}
	return u.String()
}
