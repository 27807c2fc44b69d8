package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/DelphiTri/website/internal/api"
	"github.com/DelphiTri/website/internal/constants"
	"github.com/DelphiTri/website/internal/middleware"
)

// Route is one row of the admin route table
type Route struct {
	Method  string
	Pattern string
	Tier    constants.Tier
	Handler http.HandlerFunc
}

// AdminRoutes lists every admin endpoint with the tier it requires
func AdminRoutes(h *api.Handlers) []Route {
	return []Route{
		{http.MethodGet, "/user/{id}/edit", constants.TierModerator, h.GetUserEdit()},
		{http.MethodPost, "/user/{id}/edit", constants.TierModerator, h.UpdateUser()},
		{http.MethodPost, "/user/{id}/toggle/flair", constants.TierModerator, h.ToggleFlair()},
		{http.MethodPost, "/user/{id}/toggle/role", constants.TierAdmin, h.ToggleRole()},
		{http.MethodGet, "/user/{id}/subscription/add", constants.TierModerator, h.GetSubscriptionAdd()},
		{http.MethodGet, "/user/{id}/subscription/{subscriptionId}/edit", constants.TierModerator, h.GetSubscriptionEdit()},
		{http.MethodPost, "/user/{id}/subscription/save", constants.TierModerator, h.SaveSubscription()},
		{http.MethodPost, "/user/{id}/subscription/{subscriptionId}/save", constants.TierModerator, h.SaveSubscription()},
		{http.MethodPost, "/user/{id}/auth/{provider}/delete", constants.TierModerator, h.RemoveAuthProfile()},
		{http.MethodGet, "/user/{id}/ban", constants.TierModerator, h.GetBanDraft()},
		{http.MethodPost, "/user/{id}/ban", constants.TierModerator, h.InsertBan()},
		{http.MethodGet, "/user/{id}/ban/{banId}/edit", constants.TierModerator, h.GetBanEdit()},
		{http.MethodPost, "/user/{id}/ban/{banId}/update", constants.TierModerator, h.UpdateBan()},
		{http.MethodPost, "/user/{id}/ban/remove", constants.TierModerator, h.RemoveBans()},
	}
}

// RegisterAdminRoutes mounts the route table under /admin. Every route is
// authenticated, rate limited on writes and gated by its tier.
func RegisterAdminRoutes(r chi.Router, deps *api.Dependencies, handlers *api.Handlers) {
	limiter := middleware.NewRateLimiter(deps.Config.RateLimit)

	r.Route("/admin", func(admin chi.Router) {
		admin.Use(middleware.AuthMiddleware(deps.Services.Signer, deps.Services.Session))
		admin.Use(limiter.Middleware)

		for _, route := range AdminRoutes(handlers) {
			admin.With(middleware.RequireTier(route.Tier)).Method(route.Method, route.Pattern, route.Handler)
		}
	})
}
