// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import (
	"errors"
	"strings"
	"time"
)

// Session source constants
const (
	SourceURLToken     = "url_token"
	SourceURLMagicLink = "url_magic_link"
	SourceStored       = "stored"
	SourceNone         = "none"
)

// View constants
const (
	ViewWaitlist  = "waitlist"
	ViewDashboard = "dashboard"
)

var (
	ErrFullNameRequired = errors.New("full_name is required")
	ErrEmailRequired    = errors.New("email is required")
)

// Domain types

// Session is the referral identity of the current browser context.
// An empty ReferralCode means no session.
type Session struct {
	ReferralCode string `json:"referralCode,omitempty"`
	Source       string `json:"source"`
}

// HasCode reports whether the session holds a referral code
func (s Session) HasCode() bool {
	return s.ReferralCode != ""
}

type ReferralEntry struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type DashboardSnapshot struct {
	Name         string          `json:"name"`
	Email        string          `json:"email"`
	ReferralLink string          `json:"referralLink"`
	Referrals    int             `json:"referrals"`
	Rank         int             `json:"rank"` // 0 = unranked
	ReferralList []ReferralEntry `json:"referralList"`
}

type TopReferrer struct {
	Name      string `json:"name"`
	Referrals int    `json:"referrals"`
}

type LeaderboardSnapshot struct {
	TopReferrers []TopReferrer `json:"topReferrers"`
}

type RankedReferrer struct {
	Rank      int    `json:"rank"` // 1-indexed, server order
	Name      string `json:"name"`
	Referrals int    `json:"referrals"`
}

// Ranked returns the top referrers with their 1-indexed rank
func (l LeaderboardSnapshot) Ranked() []RankedReferrer {
	ranked := make([]RankedReferrer, 0, len(l.TopReferrers))
	for i, r := range l.TopReferrers {
		ranked = append(ranked, RankedReferrer{Rank: i + 1, Name: r.Name, Referrals: r.Referrals})
	}
	return ranked
}

// Request types

type JoinRequest struct {
	FullName  string `json:"full_name"`
	Email     string `json:"email"`
	BrandName string `json:"brand_name,omitempty"`
}

// Normalize trims every field
func (r JoinRequest) Normalize() JoinRequest {
	return JoinRequest{
		FullName:  strings.TrimSpace(r.FullName),
		Email:     strings.TrimSpace(r.Email),
		BrandName: strings.TrimSpace(r.BrandName),
	}
}

// Validate rejects a request with empty required fields.
// Call on a normalized request.
func (r JoinRequest) Validate() error {
	if r.FullName == "" {
		return ErrFullNameRequired
	}
	if r.Email == "" {
		return ErrEmailRequired
	}
	return nil
}

type LocationRequest struct {
	URL string `json:"url"`
}

type ShareRequest struct {
	Link string `json:"link,omitempty"` // defaults to the dashboard referral link
}

// Response types

type JoinResponse struct {
	Message      string `json:"message"`
	ReferralCode string `json:"referralCode,omitempty"`
}

type SessionResponse struct {
	ReferralCode string `json:"referralCode,omitempty"`
	Source       string `json:"source"`
	View         string `json:"view"`
	Location     string `json:"location"`
}

type JoinStateResponse struct {
	Status       string `json:"status"`
	Message      string `json:"message,omitempty"`
	ReferralCode string `json:"referralCode,omitempty"`
}

type ShareResponse struct {
	Copied bool `json:"copied"`
}

type LeaderboardResponse struct {
	Loading      bool             `json:"loading"`
	UpdatedAt    time.Time        `json:"updatedAt,omitempty"`
	TopReferrers []RankedReferrer `json:"topReferrers"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
