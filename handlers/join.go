// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/serveqrew-sync/joinflow"
	"github.com/danielhkuo/serveqrew-sync/middleware"
	"github.com/danielhkuo/serveqrew-sync/models"
)

type JoinHandler struct {
	join *joinflow.Controller
}

func NewJoinHandler(join *joinflow.Controller) *JoinHandler {
	return &JoinHandler{join: join}
}

// GetJoin handles GET /join
func (h *JoinHandler) GetJoin(w http.ResponseWriter, r *http.Request) {
	middleware.JSONResponse(w, http.StatusOK, joinResponse(h.join.State()))
}

// SubmitJoin handles POST /join
// A Failed state is a valid outcome and is returned with 200.
func (h *JoinHandler) SubmitJoin(w http.ResponseWriter, r *http.Request) {
	var req models.JoinRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	st, err := h.join.Submit(r.Context(), req)
	switch {
	case errors.Is(err, models.ErrFullNameRequired), errors.Is(err, models.ErrEmailRequired):
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, joinflow.ErrSubmitInFlight):
		middleware.ErrorResponse(w, http.StatusConflict, "A submission is already in progress")
		return
	case errors.Is(err, joinflow.ErrClosed):
		middleware.ErrorResponse(w, http.StatusServiceUnavailable, "Shutting down")
		return
	case err != nil:
		slog.Error("join submission failed", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to submit")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, joinResponse(st))
}

func joinResponse(st joinflow.State) models.JoinStateResponse {
	return models.JoinStateResponse{
		Status:       st.Kind.String(),
		Message:      st.Message,
		ReferralCode: st.ReferralCode,
	}
}
