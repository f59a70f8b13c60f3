// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/serveqrew-sync/auth"
	"github.com/danielhkuo/serveqrew-sync/middleware"
	"github.com/danielhkuo/serveqrew-sync/models"
)

// SessionResolver is the part of session.Resolver the handlers use
type SessionResolver interface {
	Resolve(ctx context.Context) (models.Session, error)
	Session() models.Session
}

// Navigator is the page location the renderer reports
type Navigator interface {
	Navigate(raw string) error
	String() string
}

// ViewSelector reports the current view
type ViewSelector interface {
	View() string
}

type SessionHandler struct {
	resolver SessionResolver
	location Navigator
	view     ViewSelector
}

func NewSessionHandler(resolver SessionResolver, location Navigator, view ViewSelector) *SessionHandler {
	return &SessionHandler{resolver: resolver, location: location, view: view}
}

// GetSession handles GET /session
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	middleware.JSONResponse(w, http.StatusOK, h.response(h.resolver.Session()))
}

// SetLocation handles POST /session/location
func (h *SessionHandler) SetLocation(w http.ResponseWriter, r *http.Request) {
	var req models.LocationRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.URL == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "url is required")
		return
	}

	if err := h.location.Navigate(req.URL); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid URL")
		return
	}

	sess, err := h.resolver.Resolve(r.Context())
	if err != nil {
		slog.Error("failed to resolve session", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to resolve session")
		return
	}

	slog.Info("location changed", "source", sess.Source, "code_fp", auth.Fingerprint(sess.ReferralCode))
	middleware.JSONResponse(w, http.StatusOK, h.response(sess))
}

func (h *SessionHandler) response(sess models.Session) models.SessionResponse {
	return models.SessionResponse{
		ReferralCode: sess.ReferralCode,
		Source:       sess.Source,
		View:         h.view.View(),
		Location:     h.location.String(),
	}
}
