// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package session resolves and persists the referral identity of the current
browser context.

# Resolution

Resolve evaluates sources in strict priority order, stopping at the first
match:

 1. access_token query parameter → "url_token"; the parameter is removed
    from the visible URL (Location.Replace) and the code is stored
 2. code query parameter (magic link) → "url_magic_link"; the code is stored
 3. code in the store under ReferralKey → "stored"
 4. nothing → "none"

With WithRequireCode, step 3 is skipped: a view that needs a magic link and
lacks one yields no session, and the view router falls back to the waitlist.

# Adoption

Adopt is the single write path for the stored code:

	if err := resolver.Adopt(ctx, "XYZ789"); err != nil {
		// store write failed, session unchanged
	}

The store is written before the in-memory session so a code is always
persisted before any dashboard is shown. Adopting the active code again does
not write or notify.

# Readers

Pollers receive CodeSource, never the store:

	code, ok := resolver.Code()

Subscribe is notified after every change of referral code.
*/
package session
