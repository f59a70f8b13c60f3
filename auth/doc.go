// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth handles the only credential the client knows about: the opaque
referral code.

# Validation

Codes arriving in a page URL are checked before they are adopted:

	if err := auth.ValidateCode(code); err != nil {
		// ignore this source
	}

Valid codes are 1-128 URL-safe characters (A-Z, a-z, 0-9, "-", "_", ".", "~").

# URL Parameters

Two query parameters may seed a session:

	access_token → auth.ParamAccessToken (stripped after use)
	code         → auth.ParamCode (magic link)

StripQueryParam returns a cleaned copy of the URL plus the removed value:

	clean, token, ok := auth.StripQueryParam(pageURL, auth.ParamAccessToken)

# Logging

Codes grant dashboard access and never appear in logs verbatim:

	slog.Info("session adopted", "code_fp", auth.Fingerprint(code))
	slog.Info("page url", "url", auth.RedactURL(u))

Fingerprint is the first 4 bytes of SHA-256, hex encoded.
*/
package auth
