// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines domain, request, and response types shared by the
sync engine and its state API.

# Domain Types

  - Session: active referral code and where it came from
  - DashboardSnapshot: one decoded dashboard response for a referral code
  - ReferralEntry: one recruited user, in server order
  - LeaderboardSnapshot: top referrers, ranked by position
  - RankedReferrer: a top referrer with its 1-indexed rank

# Request Types

  - JoinRequest: full_name, email, brand_name (optional)
  - LocationRequest: url
  - ShareRequest: link (optional)

JoinRequest is sanitized by the form collaborator before submission:

	req = req.Normalize()
	if err := req.Validate(); err != nil {
		// reject before any network call
	}

# Response Types

  - JoinResponse: message, referralCode (optional)
  - SessionResponse: referralCode, source, view, location
  - JoinStateResponse: status, message, referralCode
  - ShareResponse: copied
  - ErrorResponse: error, message

# Constants

Session sources:

	SourceURLToken     = "url_token"
	SourceURLMagicLink = "url_magic_link"
	SourceStored       = "stored"
	SourceNone         = "none"

Views:

	ViewWaitlist  = "waitlist"
	ViewDashboard = "dashboard"
*/
package models
