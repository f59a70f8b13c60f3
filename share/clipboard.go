// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package share

import (
	"context"
	"errors"
	"sync"

	"github.com/atotto/clipboard"
)

// Clipboard backends
const (
	ClipboardSystem = "system"
	ClipboardMemory = "memory"
)

// ErrNoClipboard is returned when the system has no clipboard utility
var ErrNoClipboard = errors.New("no system clipboard available")

// System writes to the OS clipboard
type System struct{}

func (System) WriteText(ctx context.Context, text string) error {
	if clipboard.Unsupported {
		return ErrNoClipboard
	}
	return clipboard.WriteAll(text)
}

// Memory keeps the last copied text in memory
type Memory struct {
	mu   sync.Mutex
	text string
}

func (m *Memory) WriteText(ctx context.Context, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.text = text
	return nil
}

// Text returns the last copied text
func (m *Memory) Text() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.text
}

// NewClipboard returns the backend named kind. The system clipboard falls
// back to memory when the platform has none.
func NewClipboard(kind string) (Clipboard, error) {
	switch kind {
	case ClipboardSystem, "":
		if clipboard.Unsupported {
			return &Memory{}, nil
		}
		return System{}, nil
	case ClipboardMemory:
		return &Memory{}, nil
	default:
		return nil, errors.New("unsupported clipboard: " + kind)
	}
}
