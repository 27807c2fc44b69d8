package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/DelphiTri/website/internal/common"
	"github.com/DelphiTri/website/internal/constants"
	"github.com/DelphiTri/website/internal/models/dtos"
)

// GetSubscriptionAdd handles GET /admin/user/{id}/subscription/add
func (h *Handlers) GetSubscriptionAdd() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		userID, err := pathID(r, "id")
		if err != nil {
			respondBadRequest(w, start, err)
			return
		}

		view, err := h.deps.Services.AdminUsers.SubscriptionDraft(r.Context(), userID)
		if err != nil {
			respondLedgerError(w, r, start, err)
			return
		}
		common.RespondSuccess(w, start, "Subscription draft", view)
	}
}

// GetSubscriptionEdit handles GET /admin/user/{id}/subscription/{subscriptionId}/edit
func (h *Handlers) GetSubscriptionEdit() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		userID, err := pathID(r, "id")
		if err != nil {
			respondBadRequest(w, start, err)
			return
		}
		subID, err := pathID(r, "subscriptionId")
		if err != nil {
			respondBadRequest(w, start, err)
			return
		}

		view, err := h.deps.Services.AdminUsers.SubscriptionView(r.Context(), userID, subID)
		if err != nil {
			respondLedgerError(w, r, start, err)
			return
		}
		common.RespondSuccess(w, start, "Subscription loaded", view)
	}
}

// SaveSubscription handles POST /admin/user/{id}/subscription/save and
// POST /admin/user/{id}/subscription/{subscriptionId}/save
func (h *Handlers) SaveSubscription() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		userID, err := pathID(r, "id")
		if err != nil {
			respondBadRequest(w, start, err)
			return
		}

		var subID int64
		if chi.URLParam(r, "subscriptionId") != "" {
			if subID, err = pathID(r, "subscriptionId"); err != nil {
				respondBadRequest(w, start, err)
				return
			}
		}

		var req dtos.SaveSubscriptionRequest
		if err := h.decode(r, &req); err != nil {
			respondBadRequest(w, start, err)
			return
		}

		savedID, created, err := h.deps.Services.AdminUsers.SaveSubscription(r.Context(), userID, subID, req)
		if err != nil {
			respondLedgerError(w, r, start, err)
			return
		}

		message := constants.MsgSubscriptionUpdated
		if created {
			message = constants.MsgSubscriptionCreated
		}
		common.RespondRedirect(w, start, message, dtos.RedirectData{
			Redirect: fmt.Sprintf("/admin/user/%d/subscription/%d/edit", userID, savedID),
			ID:       savedID,
		})
	}
}
