// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package clock abstracts timers so that delayed and repeating work can be
driven deterministically in tests.

# Usage

Components take a Clock and schedule single-shot callbacks:

	t := clk.AfterFunc(1500*time.Millisecond, adopt)
	defer t.Stop()

Repeating work (polling) re-arms from inside the callback.

# Testing

Fake runs callbacks synchronously inside Advance, in deadline order:

	clk := clock.NewFake(time.Now())
	clk.Advance(5 * time.Second) // runs every callback due in the window
*/
package clock
