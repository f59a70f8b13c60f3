// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package api

import (
	"errors"
	"fmt"
)

// TransportError means no response reached the client
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: transport: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// APIError is returned when the API responds with a non-2xx status.
// Message is the server-supplied reason, possibly empty.
type APIError struct {
	Op      string
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: status %d", e.Op, e.Status)
	}
	return fmt.Sprintf("%s: status %d: %s", e.Op, e.Status, e.Message)
}

// DecodeError means a 2xx response carried an unexpected payload
type DecodeError struct {
	Op  string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: malformed response: %v", e.Op, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Kind classifies err for logs and metrics:
// "transport", "server", "malformed" or "other"
func Kind(err error) string {
	var te *TransportError
	var ae *APIError
	var de *DecodeError
	switch {
	case errors.As(err, &te):
		return "transport"
	case errors.As(err, &ae):
		return "server"
	case errors.As(err, &de):
		return "malformed"
	default:
		return "other"
	}
}
