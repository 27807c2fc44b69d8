package api

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/DelphiTri/website/internal/auth"
	"github.com/DelphiTri/website/internal/common"
	"github.com/DelphiTri/website/internal/constants"
	"github.com/DelphiTri/website/internal/models/dtos"
)

func banEditPath(userID, banID int64) string {
	return fmt.Sprintf("/admin/user/%d/ban/%d/edit", userID, banID)
}

// GetBanDraft handles GET /admin/user/{id}/ban
func (h *Handlers) GetBanDraft() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		userID, err := pathID(r, "id")
		if err != nil {
			respondBadRequest(w, start, err)
			return
		}

		view, err := h.deps.Services.AdminUsers.BanDraft(r.Context(), userID)
		if err != nil {
			respondLedgerError(w, r, start, err)
			return
		}
		common.RespondSuccess(w, start, "Ban draft", view)
	}
}

// InsertBan handles POST /admin/user/{id}/ban. The caller is recorded as issuer.
func (h *Handlers) InsertBan() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		claims := auth.GetUserClaims(r.Context())
		if claims == nil {
			common.RespondError(w, start, nil, "Unauthorized", http.StatusUnauthorized)
			return
		}
		userID, err := pathID(r, "id")
		if err != nil {
			respondBadRequest(w, start, err)
			return
		}

		var req dtos.SaveBanRequest
		if err := h.decode(r, &req); err != nil {
			respondBadRequest(w, start, err)
			return
		}

		banID, err := h.deps.Services.AdminUsers.InsertBan(r.Context(), claims.UserID(), userID, req)
		if err != nil {
			respondLedgerError(w, r, start, err)
			return
		}
		common.RespondRedirect(w, start, constants.MsgBanCreated, dtos.RedirectData{
			Redirect: banEditPath(userID, banID),
			ID:       banID,
		})
	}
}

// GetBanEdit handles GET /admin/user/{id}/ban/{banId}/edit
func (h *Handlers) GetBanEdit() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		userID, err := pathID(r, "id")
		if err != nil {
			respondBadRequest(w, start, err)
			return
		}
		banID, err := pathID(r, "banId")
		if err != nil {
			respondBadRequest(w, start, err)
			return
		}

		view, err := h.deps.Services.AdminUsers.BanView(r.Context(), userID, banID)
		if err != nil {
			respondLedgerError(w, r, start, err)
			return
		}
		common.RespondSuccess(w, start, "Ban loaded", view)
	}
}

// UpdateBan handles POST /admin/user/{id}/ban/{banId}/update
func (h *Handlers) UpdateBan() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		userID, err := pathID(r, "id")
		if err != nil {
			respondBadRequest(w, start, err)
			return
		}
		banID, err := pathID(r, "banId")
		if err != nil {
			respondBadRequest(w, start, err)
			return
		}

		var req dtos.SaveBanRequest
		if err := h.decode(r, &req); err != nil {
			respondBadRequest(w, start, err)
			return
		}

		if err := h.deps.Services.AdminUsers.UpdateBan(r.Context(), userID, banID, req); err != nil {
			respondLedgerError(w, r, start, err)
			return
		}
		common.RespondRedirect(w, start, constants.MsgBanUpdated, dtos.RedirectData{
			Redirect: banEditPath(userID, banID),
			ID:       banID,
		})
	}
}

// RemoveBans handles POST /admin/user/{id}/ban/remove. The follow-up view is
// taken from the "follow" query parameter or body field when it is a local path.
func (h *Handlers) RemoveBans() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		userID, err := pathID(r, "id")
		if err != nil {
			respondBadRequest(w, start, err)
			return
		}

		follow := r.URL.Query().Get("follow")
		if follow == "" && r.ContentLength > 0 {
			var req dtos.RemoveBansRequest
			if err := h.decode(r, &req); err != nil {
				respondBadRequest(w, start, err)
				return
			}
			follow = req.Follow
		}

		removed, err := h.deps.Services.AdminUsers.RemoveBans(r.Context(), userID)
		if err != nil {
			respondLedgerError(w, r, start, err)
			return
		}

		redirect := userEditPath(userID)
		if isLocalPath(follow) {
			redirect = follow
		}
		common.RespondRedirect(w, start, constants.MsgBansRemoved, dtos.RedirectData{
			Redirect: redirect,
			ID:       userID,
			Affected: &removed,
		})
	}
}

// isLocalPath accepts "/x" but not "//host" or "/\host", which browsers treat as off-site
func isLocalPath(p string) bool {
	return strings.HasPrefix(p, "/") && !strings.HasPrefix(p, "//") && !strings.HasPrefix(p, "/\\")
}
