package middleware

import (
	"net/http"
	"time"

	"github.com/DelphiTri/website/internal/auth"
	"github.com/DelphiTri/website/internal/common"
	"github.com/DelphiTri/website/internal/constants"
)

// RequireTier is the single gate in front of every admin handler. Higher
// tiers include the lower ones.
func RequireTier(tier constants.Tier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if tier == constants.TierPublic {
				next.ServeHTTP(w, r)
				return
			}

			claims := auth.GetUserClaims(r.Context())
			if claims == nil {
				common.RespondError(w, time.Now(), nil, "Unauthorized", http.StatusUnauthorized)
				return
			}
			if claims.Tier() < tier {
				common.RespondError(w, time.Now(), nil, "Forbidden. Need "+tier.String()+" tier", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
