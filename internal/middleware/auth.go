package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/DelphiTri/website/internal/auth"
	"github.com/DelphiTri/website/internal/common"
	"github.com/DelphiTri/website/internal/logging"
	"github.com/DelphiTri/website/internal/services"
)

// AuthMiddleware verifies the bearer token and loads the caller's
// authorization snapshot into the request context. Banned callers are refused.
func AuthMiddleware(signer *common.TokenSigner, sessions *common.SessionService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				common.RespondError(w, start, nil, "Unauthorized. Missing bearer token", http.StatusUnauthorized)
				return
			}

			userID, err := signer.Verify(strings.TrimPrefix(authHeader, "Bearer "))
			if err != nil {
				common.RespondError(w, start, nil, "Unauthorized. Invalid token", http.StatusUnauthorized)
				return
			}

			snap, err := sessions.Snapshot(r.Context(), userID)
			if err != nil {
				if services.KindOf(err) == services.KindNotFound {
					common.RespondError(w, start, nil, "Unauthorized. Unknown user", http.StatusUnauthorized)
					return
				}
				logging.Error("Failed to load authorization snapshot",
					"request_id", auth.GetRequestID(r.Context()),
					"user_id", userID,
					"error", err,
				)
				common.RespondError(w, start, nil, "Failed to authorize request", http.StatusInternalServerError)
				return
			}

			if ban := snap.ActiveBan(time.Now()); ban != nil {
				common.RespondError(w, start, nil, "Forbidden. Account suspended", http.StatusForbidden)
				return
			}

			claims := &auth.JWTClaims{
				UserIDValue:   snap.UserID,
				UsernameValue: snap.Username,
				RoleValues:    snap.Roles,
				TierValue:     snap.Tier,
			}
			logging.Debug("Request authenticated",
				"request_id", auth.GetRequestID(r.Context()),
				"user_id", snap.UserID,
				"tier", snap.Tier.String(),
			)

			ctx := auth.SetUserClaims(r.Context(), claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
