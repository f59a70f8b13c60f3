// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/url"
	"strings"
)

// Query parameters that may carry a referral code
const (
	ParamAccessToken = "access_token"
	ParamCode        = "code"
)

// MaxCodeLen bounds referral codes accepted from a URL
const MaxCodeLen = 128

var (
	ErrEmptyCode   = errors.New("referral code is empty")
	ErrCodeTooLong = errors.New("referral code too long")
	ErrInvalidCode = errors.New("invalid referral code format")
)

// ValidateCode checks that a referral code is non-empty, bounded, and made of
// URL-safe characters only. Codes are otherwise opaque.
func ValidateCode(code string) error {
	if strings.TrimSpace(code) == "" {
		return ErrEmptyCode
	}
	if len(code) > MaxCodeLen {
		return ErrCodeTooLong
	}
	for i := 0; i < len(code); i++ {
		c := code[i]
		switch {
		case c >= '0' && c <= '9', c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case c == '-', c == '_', c == '.', c == '~':
		default:
			return ErrInvalidCode
		}
	}
	return nil
}

// Fingerprint creates a one-way short hash of a referral code for logs.
// Codes grant dashboard access, so they never appear in log lines verbatim.
func Fingerprint(code string) string {
	if code == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(code))
	// First 8 hex chars are enough to correlate log lines
	return hex.EncodeToString(sum[:4])
}

// StripQueryParam removes name from the query of u.
// Returns a copy of u without the parameter, the removed value, and whether
// the parameter was present at all (even with an empty value).
func StripQueryParam(u *url.URL, name string) (*url.URL, string, bool) {
	if u == nil {
		return nil, "", false
	}
	q := u.Query()
	if _, ok := q[name]; !ok {
		return u, "", false
	}
	value := q.Get(name)
	q.Del(name)

	clean := *u
	clean.RawQuery = q.Encode()
	return &clean, value, true
}

// RedactURL returns u as a string with credential-bearing parameters masked
func RedactURL(u *url.URL) string {
	if u == nil {
		return ""
	}
	q := u.Query()
	changed := false
	for _, name := range []string{ParamAccessToken, ParamCode} {
		if v := q.Get(name); v != "" {
			q.Set(name, "fp-"+Fingerprint(v))
			changed = true
		}
	}
	if !changed {
		return u.String()
	}
	redacted := *u
	redacted.RawQuery = q.Encode()
	return redacted.String()
}
