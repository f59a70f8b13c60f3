// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package joinflow implements the waitlist join state machine.
//
// A submission moves the controller from Idle (or Failed, or Succeeded) to
// Submitting and then to Succeeded or Failed. On success with a referral
// code the code is handed to the session after AdoptDelay, so the
// confirmation is visible before the dashboard replaces the join surface.
package joinflow
