// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/serveqrew-sync/models"
	"github.com/danielhkuo/serveqrew-sync/testutil"
)

func TestDashboard_Success(t *testing.T) {
	backend := testutil.NewBackend(t)
	backend.SetDashboard("ABC123", models.DashboardSnapshot{
		Name:         "Jane Doe",
		Email:        "jane@x.com",
		ReferralLink: "https://serveqrew.org/r/ABC123",
		Referrals:    2,
		Rank:         7,
		ReferralList: []models.ReferralEntry{
			{Name: "Zed", Email: "zed@x.com"},
			{Name: "Amy", Email: "amy@x.com"},
		},
	})

	c := New(backend.URL())
	snap, err := c.Dashboard(context.Background(), "ABC123")
	require.NoError(t, err)

	assert.Equal(t, "Jane Doe", snap.Name)
	assert.Equal(t, 2, snap.Referrals)
	assert.Equal(t, 7, snap.Rank)
	require.Len(t, snap.ReferralList, 2)
	assert.Equal(t, "Zed", snap.ReferralList[0].Name, "server order preserved")
	assert.Equal(t, []string{"/dashboard?code=ABC123"}, backend.Requests())
}

func TestDashboard_MissingListAndEmailTolerated(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"name":"Jane","referralLink":"https://l","referrals":0,"rank":0}`))
	}))
	defer srv.Close()

	snap, err := New(srv.URL).Dashboard(context.Background(), "ABC123")
	require.NoError(t, err)
	assert.Empty(t, snap.Email)
	assert.NotNil(t, snap.ReferralList)
	assert.Empty(t, snap.ReferralList)
	assert.Zero(t, snap.Rank, "0 = unranked")
}

func TestDashboard_NoCodeIssuesNoRequest(t *testing.T) {
	backend := testutil.NewBackend(t)

	_, err := New(backend.URL()).Dashboard(context.Background(), "")
	require.ErrorIs(t, err, ErrNoSession)
	assert.Empty(t, backend.Requests())
}

func TestDashboard_EscapesCode(t *testing.T) {
	backend := testutil.NewBackend(t)
	_, _ = New(backend.URL()).Dashboard(context.Background(), "a&b=c")
	assert.Equal(t, []string{"/dashboard?code=a%26b%3Dc"}, backend.Requests())
}

func TestDashboard_ErrorTaxonomy(t *testing.T) {
	testCases := []struct {
		name     string
		status   int
		body     string
		wantKind string
		wantMsg  string
	}{
		{"server message", http.StatusNotFound, `{"message":"unknown code"}`, "server", "unknown code"},
		{"server without message", http.StatusInternalServerError, `oops`, "server", ""},
		{"malformed json", http.StatusOK, `{"name":`, "malformed", ""},
		{"wrong types", http.StatusOK, `{"referrals":"many"}`, "malformed", ""},
		{"negative referrals", http.StatusOK, `{"referrals":-1}`, "malformed", ""},
		{"null body", http.StatusOK, `null`, "malformed", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			_, err := New(srv.URL).Dashboard(context.Background(), "ABC123")
			require.Error(t, err)
			assert.Equal(t, tc.wantKind, Kind(err))

			var apiErr *APIError
			if errors.As(err, &apiErr) {
				assert.Equal(t, tc.status, apiErr.Status)
				assert.Equal(t, tc.wantMsg, apiErr.Message)
			}
		})
	}
}

func TestDashboard_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := New(url).Dashboard(context.Background(), "ABC123")
	require.Error(t, err)
	assert.Equal(t, "transport", Kind(err))
}

func TestDashboard_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	_, err := New(srv.URL, WithTimeout(50*time.Millisecond)).Dashboard(context.Background(), "ABC123")
	require.Error(t, err)
	assert.Equal(t, "transport", Kind(err))
}

func TestGet_CollapsesConcurrentIdenticalRequests(t *testing.T) {
	var hits atomic.Int32
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		<-release
		w.Write([]byte(`{"topReferrers":[{"name":"Ada","referrals":3}]}`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	var wg sync.WaitGroup
	results := make([]models.LeaderboardSnapshot, 5)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			l, err := c.Leaderboard(context.Background())
			assert.NoError(t, err)
			results[i] = l
		}(i)
	}

	require.Eventually(t, func() bool { return hits.Load() >= 1 }, time.Second, time.Millisecond)
	// Give the other callers time to join the in-flight call
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), hits.Load())
	for _, l := range results {
		require.Len(t, l.TopReferrers, 1)
		assert.Equal(t, "Ada", l.TopReferrers[0].Name)
	}
}

func TestGet_DifferentScopesAreNotCollapsed(t *testing.T) {
	var hits atomic.Int32
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		<-release
		w.Write([]byte(`{"topReferrers":[]}`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	var wg sync.WaitGroup
	for _, scope := range []string{"leaderboard/1", "leaderboard/2"} {
		wg.Add(1)
		go func(scope string) {
			defer wg.Done()
			_, err := c.Leaderboard(WithScope(context.Background(), scope))
			assert.NoError(t, err)
		}(scope)
	}

	require.Eventually(t, func() bool { return hits.Load() == 2 }, time.Second, time.Millisecond)
	close(release)
	wg.Wait()
}

func TestLeaderboard(t *testing.T) {
	backend := testutil.NewBackend(t)
	backend.SetLeaderboard(models.LeaderboardSnapshot{TopReferrers: []models.TopReferrer{
		{Name: "Ada", Referrals: 12},
		{Name: "Bo", Referrals: 9},
	}})

	l, err := New(backend.URL()).Leaderboard(context.Background())
	require.NoError(t, err)
	require.Len(t, l.TopReferrers, 2)
	assert.Equal(t, "Bo", l.Ranked()[1].Name)
	assert.Equal(t, 2, l.Ranked()[1].Rank)
}

func TestLeaderboard_MissingListIsEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	l, err := New(srv.URL).Leaderboard(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, l.TopReferrers)
	assert.Empty(t, l.TopReferrers)
}

func TestJoinWaitlist(t *testing.T) {
	backend := testutil.NewBackend(t)
	backend.SetJoinResult(http.StatusOK, models.JoinResponse{Message: "Welcome", ReferralCode: "XYZ789"})

	resp, err := New(backend.URL()).JoinWaitlist(context.Background(), models.JoinRequest{
		FullName: "Jane Doe",
		Email:    "jane@x.com",
	})
	require.NoError(t, err)
	assert.Equal(t, models.JoinResponse{Message: "Welcome", ReferralCode: "XYZ789"}, resp)

	joins := backend.Joins()
	require.Len(t, joins, 1)
	assert.Equal(t, "Jane Doe", joins[0].FullName)
	assert.Empty(t, joins[0].BrandName)
}

func TestJoinWaitlist_ServerMessage(t *testing.T) {
	backend := testutil.NewBackend(t)
	backend.SetJoinResult(http.StatusConflict, models.ErrorResponse{Error: "Conflict", Message: "Email already registered"})

	_, err := New(backend.URL()).JoinWaitlist(context.Background(), models.JoinRequest{FullName: "J", Email: "j@x.com"})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.Status)
	assert.Equal(t, "Email already registered", apiErr.Message)
}

func TestRequestHeaders(t *testing.T) {
	var got http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		w.Write([]byte(`{"message":"ok"}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL).JoinWaitlist(context.Background(), models.JoinRequest{FullName: "J", Email: "j@x.com"})
	require.NoError(t, err)

	assert.Equal(t, "application/json", got.Get("Content-Type"))
	assert.Equal(t, "application/json", got.Get("Accept"))
	_, err = uuid.Parse(got.Get("X-Request-ID"))
	assert.NoError(t, err)
}

func TestNew_DefaultsAndTrimsBaseURL(t *testing.T) {
	assert.Equal(t, DefaultBaseURL, New("").baseURL)
	assert.Equal(t, "http://localhost:8080", New("http://localhost:8080/").baseURL)
}
