// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateCode(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		wantErr error
	}{
		{"alphanumeric", "ABC123", nil},
		{"url safe punctuation", "a-b_c.d~e", nil},
		{"empty", "", ErrEmptyCode},
		{"whitespace only", "   ", ErrEmptyCode},
		{"too long", strings.Repeat("a", MaxCodeLen+1), ErrCodeTooLong},
		{"max length", strings.Repeat("a", MaxCodeLen), nil},
		{"space inside", "ABC 123", ErrInvalidCode},
		{"slash", "ABC/123", ErrInvalidCode},
		{"unicode", "äbc", ErrInvalidCode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCode(tt.code)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestFingerprint(t *testing.T) {
	fp := Fingerprint("ABC123")
	assert.Len(t, fp, 8)
	assert.Equal(t, fp, Fingerprint("ABC123"), "deterministic")
	assert.NotEqual(t, fp, Fingerprint("ABC124"))
	assert.NotContains(t, fp, "ABC")
	assert.Empty(t, Fingerprint(""))
}

func TestStripQueryParam(t *testing.T) {
	u, err := url.Parse("https://serveqrew.org/dashboard?access_token=ABC123&utm=x")
	require.NoError(t, err)

	clean, value, ok := StripQueryParam(u, ParamAccessToken)
	require.True(t, ok)
	assert.Equal(t, "ABC123", value)
	assert.Equal(t, "https://serveqrew.org/dashboard?utm=x", clean.String())
	// Original untouched
	assert.Contains(t, u.String(), "access_token")
}

func TestStripQueryParam_Absent(t *testing.T) {
	u, err := url.Parse("https://serveqrew.org/?code=XYZ")
	require.NoError(t, err)

	clean, value, ok := StripQueryParam(u, ParamAccessToken)
	assert.False(t, ok)
	assert.Empty(t, value)
	assert.Equal(t, u.String(), clean.String())
}

func TestStripQueryParam_EmptyValue(t *testing.T) {
	u, err := url.Parse("https://serveqrew.org/?access_token=")
	require.NoError(t, err)

	clean, value, ok := StripQueryParam(u, ParamAccessToken)
	assert.True(t, ok, "present even when empty")
	assert.Empty(t, value)
	assert.Equal(t, "https://serveqrew.org/", clean.String())
}

func TestRedactURL(t *testing.T) {
	u, err := url.Parse("https://serveqrew.org/?code=XYZ789&ref=home")
	require.NoError(t, err)

	redacted := RedactURL(u)
	assert.NotContains(t, redacted, "XYZ789")
	assert.Contains(t, redacted, "code=fp-"+Fingerprint("XYZ789"))
	assert.Contains(t, redacted, "ref=home")

	plain, err := url.Parse("https://serveqrew.org/")
	require.NoError(t, err)
	assert.Equal(t, "https://serveqrew.org/", RedactURL(plain))
	assert.Empty(t, RedactURL(nil))
}
