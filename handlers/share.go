// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/serveqrew-sync/middleware"
	"github.com/danielhkuo/serveqrew-sync/models"
	"github.com/danielhkuo/serveqrew-sync/poller"
	"github.com/danielhkuo/serveqrew-sync/share"
)

type ShareHandler struct {
	sharer    *share.Sharer
	dashboard *poller.Dashboard
}

func NewShareHandler(sharer *share.Sharer, dashboard *poller.Dashboard) *ShareHandler {
	return &ShareHandler{sharer: sharer, dashboard: dashboard}
}

// GetShare handles GET /share
func (h *ShareHandler) GetShare(w http.ResponseWriter, r *http.Request) {
	middleware.JSONResponse(w, http.StatusOK, models.ShareResponse{Copied: h.sharer.Copied()})
}

// Copy handles POST /share/copy
func (h *ShareHandler) Copy(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, h.sharer.Copy)
}

// Share handles POST /share
func (h *ShareHandler) Share(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, h.sharer.Share)
}

// run applies action to the requested link, defaulting to the dashboard's
// referral link. Without any link the action is a no-op.
func (h *ShareHandler) run(w http.ResponseWriter, r *http.Request, action func(context.Context, string) error) {
	var req models.ShareRequest
	if err := middleware.ParseOptionalJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	link := req.Link
	if link == "" {
		link = referralLink(h.dashboard)
	}

	if err := action(r.Context(), link); err != nil {
		slog.Error("failed to share link", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to copy link")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, models.ShareResponse{Copied: h.sharer.Copied()})
}
