package api

import (
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/DelphiTri/website/internal/common"
	"github.com/DelphiTri/website/internal/constants"
	"github.com/DelphiTri/website/internal/models/dtos"
)

// GetUserEdit handles GET /admin/user/{id}/edit
func (h *Handlers) GetUserEdit() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		userID, err := pathID(r, "id")
		if err != nil {
			respondBadRequest(w, start, err)
			return
		}

		view, err := h.deps.Services.AdminUsers.EditView(r.Context(), userID)
		if err != nil {
			respondLedgerError(w, r, start, err)
			return
		}
		common.RespondSuccess(w, start, "User loaded", view)
	}
}

// UpdateUser handles POST /admin/user/{id}/edit
func (h *Handlers) UpdateUser() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		userID, err := pathID(r, "id")
		if err != nil {
			respondBadRequest(w, start, err)
			return
		}

		var req dtos.UpdateUserRequest
		if err := h.decode(r, &req); err != nil {
			respondBadRequest(w, start, err)
			return
		}

		if err := h.deps.Services.AdminUsers.UpdateProfile(r.Context(), userID, req); err != nil {
			respondLedgerError(w, r, start, err)
			return
		}
		common.RespondRedirect(w, start, constants.MsgProfileUpdated, dtos.RedirectData{
			Redirect: userEditPath(userID),
			ID:       userID,
		})
	}
}

// ToggleFlair handles POST /admin/user/{id}/toggle/flair
func (h *Handlers) ToggleFlair() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		userID, err := pathID(r, "id")
		if err != nil {
			respondBadRequest(w, start, err)
			return
		}

		var req dtos.ToggleRequest
		if err := h.decode(r, &req); err != nil {
			respondBadRequest(w, start, err)
			return
		}

		if err := h.deps.Services.AdminUsers.ToggleFeature(r.Context(), userID, req.Name, *req.Value); err != nil {
			respondLedgerError(w, r, start, err)
			return
		}
		common.RespondSuccess(w, start, constants.MsgFeatureToggled, req)
	}
}

// ToggleRole handles POST /admin/user/{id}/toggle/role
func (h *Handlers) ToggleRole() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		userID, err := pathID(r, "id")
		if err != nil {
			respondBadRequest(w, start, err)
			return
		}

		var req dtos.ToggleRequest
		if err := h.decode(r, &req); err != nil {
			respondBadRequest(w, start, err)
			return
		}

		if err := h.deps.Services.AdminUsers.ToggleRole(r.Context(), userID, req.Name, *req.Value); err != nil {
			respondLedgerError(w, r, start, err)
			return
		}
		common.RespondSuccess(w, start, constants.MsgRoleToggled, req)
	}
}

// RemoveAuthProfile handles POST /admin/user/{id}/auth/{provider}/delete
func (h *Handlers) RemoveAuthProfile() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		userID, err := pathID(r, "id")
		if err != nil {
			respondBadRequest(w, start, err)
			return
		}
		provider, err := url.PathUnescape(chi.URLParam(r, "provider"))
		if err != nil || provider == "" {
			common.RespondError(w, start, nil, "invalid provider", http.StatusBadRequest)
			return
		}

		if err := h.deps.Services.AdminUsers.RemoveAuthProfile(r.Context(), userID, provider); err != nil {
			respondLedgerError(w, r, start, err)
			return
		}
		common.RespondRedirect(w, start, constants.MsgAuthProfileRemoved, dtos.RedirectData{
			Redirect: userEditPath(userID),
			ID:       userID,
		})
	}
}
