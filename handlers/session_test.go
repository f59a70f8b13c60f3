// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/danielhkuo/serveqrew-sync/models"
	"github.com/danielhkuo/serveqrew-sync/store"
	"github.com/danielhkuo/serveqrew-sync/testutil"
)

func TestGetSession(t *testing.T) {
	tests := []struct {
		name         string
		url          string
		expectedCode string
		expectedSrc  string
		expectedView string
	}{
		{"no session", "https://serveqrew.org/", "", models.SourceNone, models.ViewWaitlist},
		{"access token", "https://serveqrew.org/?access_token=ABC123", "ABC123", models.SourceURLToken, models.ViewDashboard},
		{"magic link", "https://serveqrew.org/dashboard?code=MAG456", "MAG456", models.SourceURLMagicLink, models.ViewDashboard},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := setupTestEnv(t, store.NewMemory(), tt.url)
			handler := NewSessionHandler(env.resolver, env.location, env.router)

			w := httptest.NewRecorder()
			handler.GetSession(w, testutil.MakeRequest("GET", "/session", nil, nil))

			testutil.AssertStatus(t, w, http.StatusOK)

			var resp models.SessionResponse
			testutil.AssertJSON(t, w, &resp)

			if resp.ReferralCode != tt.expectedCode {
				t.Errorf("Expected code %q, got %q", tt.expectedCode, resp.ReferralCode)
			}
			if resp.Source != tt.expectedSrc {
				t.Errorf("Expected source %q, got %q", tt.expectedSrc, resp.Source)
			}
			if resp.View != tt.expectedView {
				t.Errorf("Expected view %q, got %q", tt.expectedView, resp.View)
			}
			if strings.Contains(resp.Location, "access_token") {
				t.Errorf("Location still carries the access token: %s", resp.Location)
			}
		})
	}
}

func TestSetLocation(t *testing.T) {
	env := setupTestEnv(t, store.NewMemory(), "https://serveqrew.org/")
	handler := NewSessionHandler(env.resolver, env.location, env.router)

	body := models.LocationRequest{URL: "https://serveqrew.org/?access_token=NEW789&ref=mail"}
	w := httptest.NewRecorder()
	handler.SetLocation(w, testutil.MakeRequest("POST", "/session/location", body, nil))

	testutil.AssertStatus(t, w, http.StatusOK)

	var resp models.SessionResponse
	testutil.AssertJSON(t, w, &resp)

	if resp.ReferralCode != "NEW789" || resp.Source != models.SourceURLToken {
		t.Errorf("Expected url_token session NEW789, got %+v", resp)
	}
	if resp.View != models.ViewDashboard {
		t.Errorf("Expected dashboard view, got %s", resp.View)
	}
	if resp.Location != "https://serveqrew.org/?ref=mail" {
		t.Errorf("Expected cleaned location, got %s", resp.Location)
	}
	if key, active := env.dashboard.Key(); !active || key != "NEW789" {
		t.Errorf("Expected dashboard poller on NEW789, got %q active=%v", key, active)
	}
}

func TestSetLocation_Invalid(t *testing.T) {
	env := setupTestEnv(t, store.NewMemory(), "https://serveqrew.org/")
	handler := NewSessionHandler(env.resolver, env.location, env.router)

	tests := []struct {
		name string
		body string
	}{
		{"invalid JSON", `{invalid`},
		{"missing url", `{}`},
		{"unparseable url", `{"url":"://bad"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/session/location", strings.NewReader(tt.body))
			w := httptest.NewRecorder()
			handler.SetLocation(w, req)

			testutil.AssertStatus(t, w, http.StatusBadRequest)
		})
	}

	if env.location.String() != "https://serveqrew.org/" {
		t.Errorf("Location should be unchanged, got %s", env.location.String())
	}
}

func TestSetLocation_StoreFailure(t *testing.T) {
	// The token can't be adopted if the store rejects the write
	env := setupTestEnv(t, testutil.NewFailingKV(false, true), "https://serveqrew.org/")
	handler := NewSessionHandler(env.resolver, env.location, env.router)

	body := models.LocationRequest{URL: "https://serveqrew.org/?access_token=ABC123"}
	w := httptest.NewRecorder()
	handler.SetLocation(w, testutil.MakeRequest("POST", "/session/location", body, nil))

	testutil.AssertStatus(t, w, http.StatusInternalServerError)
	if env.resolver.Session().HasCode() {
		t.Error("Session should not change when the store write fails")
	}
	if env.router.View() != models.ViewWaitlist {
		t.Errorf("Expected waitlist view, got %s", env.router.View())
	}
}
