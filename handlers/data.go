// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/danielhkuo/serveqrew-sync/middleware"
	"github.com/danielhkuo/serveqrew-sync/models"
	"github.com/danielhkuo/serveqrew-sync/poller"
)

// DataHandler serves the latest poller snapshots
type DataHandler struct {
	dashboard   *poller.Dashboard
	leaderboard *poller.Leaderboard
}

func NewDataHandler(dashboard *poller.Dashboard, leaderboard *poller.Leaderboard) *DataHandler {
	return &DataHandler{dashboard: dashboard, leaderboard: leaderboard}
}

// GetDashboard handles GET /dashboard
// An inactive poller without a snapshot means there is no session.
func (h *DataHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	middleware.JSONResponse(w, http.StatusOK, h.dashboard.State())
}

// GetLeaderboard handles GET /leaderboard
func (h *DataHandler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	st := h.leaderboard.State()

	resp := models.LeaderboardResponse{
		Loading:      st.Loading,
		UpdatedAt:    st.UpdatedAt,
		TopReferrers: []models.RankedReferrer{},
	}
	if st.Snapshot != nil {
		resp.TopReferrers = st.Snapshot.Ranked()
	}
	middleware.JSONResponse(w, http.StatusOK, resp)
}

// referralLink returns the link of the current dashboard snapshot, if any
func referralLink(dashboard *poller.Dashboard) string {
	if s := dashboard.State().Snapshot; s != nil {
		return s.ReferralLink
	}
	return ""
}
