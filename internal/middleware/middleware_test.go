package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/DelphiTri/website/internal/auth"
	"github.com/DelphiTri/website/internal/common"
	"github.com/DelphiTri/website/internal/config"
	"github.com/DelphiTri/website/internal/constants"
	"github.com/DelphiTri/website/internal/metrics"
	"github.com/DelphiTri/website/internal/services"
)

type stubSource map[int64]*common.AuthSnapshot

func (s stubSource) LoadSnapshot(_ context.Context, userID int64) (*common.AuthSnapshot, error) {
	if userID == 500 {
		return nil, errors.New("db down")
	}
	snap, ok := s[userID]
	if !ok {
		return nil, &services.LedgerError{Kind: services.KindNotFound, Message: "User not found"}
	}
	return snap, nil
}

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetUserClaims(r.Context())
	if claims != nil {
		w.Header().Set("X-User", claims.Username())
	}
	w.WriteHeader(http.StatusNoContent)
})

func TestAuthMiddleware(t *testing.T) {
	signer := common.NewTokenSigner([]byte("secret"))
	past := time.Now().Add(-time.Minute)
	source := stubSource{
		1: {UserID: 1, Username: "mod", Roles: []string{"MODERATOR"}, Tier: constants.TierModerator},
		2: {UserID: 2, Username: "banned", Tier: constants.TierUser, Bans: []common.BanWindow{{Reason: "spam", Start: time.Now().Add(-time.Hour)}}},
		3: {UserID: 3, Username: "served", Tier: constants.TierUser, Bans: []common.BanWindow{{Reason: "spam", Start: time.Now().Add(-time.Hour), End: &past}}},
		4: {UserID: 4, Username: "upcoming", Tier: constants.TierUser, Bans: []common.BanWindow{{Reason: "spam", Start: time.Now().Add(time.Hour)}}},
	}
	sessions := common.NewSessionService(common.NewCacheService(time.Hour, time.Hour), source, time.Hour, nil, zap.NewNop().Sugar())
	handler := AuthMiddleware(signer, sessions)(okHandler)

	token := func(id int64) string {
		tok, err := signer.Issue(id, time.Hour)
		require.NoError(t, err)
		return "Bearer " + tok
	}

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"garbage token", "Bearer nope", http.StatusUnauthorized},
		{"unknown user", token(99), http.StatusUnauthorized},
		{"storage failure", token(500), http.StatusInternalServerError},
		{"banned", token(2), http.StatusForbidden},
		{"ban already served", token(3), http.StatusNoContent},
		{"ban not started", token(4), http.StatusNoContent},
		{"moderator", token(1), http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin/user/1/edit", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

type countingStub struct {
	stubSource
	calls int
}

func (c *countingStub) LoadSnapshot(ctx context.Context, userID int64) (*common.AuthSnapshot, error) {
	c.calls++
	return c.stubSource.LoadSnapshot(ctx, userID)
}

func TestAuthMiddleware_BanLapsesWhileCached(t *testing.T) {
	signer := common.NewTokenSigner([]byte("secret"))
	end := time.Now().Add(50 * time.Millisecond)
	source := &countingStub{stubSource: stubSource{
		7: {UserID: 7, Username: "brief", Tier: constants.TierUser, Bans: []common.BanWindow{{Reason: "cool off", Start: time.Now().Add(-time.Hour), End: &end}}},
	}}
	sessions := common.NewSessionService(common.NewCacheService(time.Hour, time.Hour), source, time.Hour, nil, zap.NewNop().Sugar())
	handler := AuthMiddleware(signer, sessions)(okHandler)

	tok, err := signer.Issue(7, time.Hour)
	require.NoError(t, err)
	serve := func() int {
		req := httptest.NewRequest(http.MethodGet, "/admin/user/1/edit", nil)
		req.Header.Set("Authorization", "Bearer "+tok)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusForbidden, serve())
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, http.StatusNoContent, serve())
	assert.Equal(t, 1, source.calls, "the cached snapshot is reused")
}

func TestRequireTier(t *testing.T) {
	withTier := func(tier constants.Tier) *http.Request {
		req := httptest.NewRequest(http.MethodPost, "/admin/user/1/toggle/role", nil)
		claims := &auth.JWTClaims{UserIDValue: 1, UsernameValue: "x", TierValue: tier}
		return req.WithContext(auth.SetUserClaims(req.Context(), claims))
	}

	tests := []struct {
		name   string
		gate   constants.Tier
		req    *http.Request
		status int
	}{
		{"public without claims", constants.TierPublic, httptest.NewRequest(http.MethodGet, "/", nil), http.StatusNoContent},
		{"no claims", constants.TierModerator, httptest.NewRequest(http.MethodGet, "/", nil), http.StatusUnauthorized},
		{"user below moderator", constants.TierModerator, withTier(constants.TierUser), http.StatusForbidden},
		{"moderator below admin", constants.TierAdmin, withTier(constants.TierModerator), http.StatusForbidden},
		{"admin passes moderator gate", constants.TierModerator, withTier(constants.TierAdmin), http.StatusNoContent},
		{"exact tier", constants.TierAdmin, withTier(constants.TierAdmin), http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			RequireTier(tt.gate)(okHandler).ServeHTTP(rec, tt.req)
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(config.RateLimitConfig{RequestsPerSecond: 0.001, Burst: 2})
	handler := rl.Middleware(okHandler)

	post := func(addr string) int {
		req := httptest.NewRequest(http.MethodPost, "/admin/user/1/ban", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusNoContent, post("10.0.0.1:1234"))
	assert.Equal(t, http.StatusNoContent, post("10.0.0.1:1234"))
	assert.Equal(t, http.StatusTooManyRequests, post("10.0.0.1:1234"))
	assert.Equal(t, http.StatusNoContent, post("10.0.0.2:1234"))
	assert.Equal(t, http.StatusNoContent, post("127.0.0.1:1"))
	assert.Equal(t, http.StatusNoContent, post("127.0.0.1:1"))
	assert.Equal(t, http.StatusNoContent, post("127.0.0.1:1"))

	// reads are never limited
	req := httptest.NewRequest(http.MethodGet, "/admin/user/1/edit", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRequestIDAndMetrics(t *testing.T) {
	reg := metrics.NewMetricsRegistry(prometheus.NewRegistry())
	var seen string
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = auth.GetRequestID(r.Context())
		w.WriteHeader(http.StatusTeapot)
	})
	handler := RequestIDMiddleware(MetricsMiddleware(reg)(inner))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
	require.NotEmpty(t, seen)
	assert.Equal(t, seen, rec.Header().Get("X-Request-ID"))
	assert.Equal(t, float64(1), testutil.ToFloat64(reg.HTTPRequestsTotal.WithLabelValues("unknown", "GET", "418")))

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("X-Request-ID", "given")
	handler.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, "given", seen)
}

func TestNormalizeEndpoint(t *testing.T) {
	assert.Equal(t, "/admin/user/{id}/ban/{id}/edit", NormalizeEndpoint("/admin/user/12/ban/7/edit"))
	assert.Equal(t, "/healthCheck", NormalizeEndpoint("/healthCheck"))
	assert.Equal(t, "/x/{id}", NormalizeEndpoint("/x/123e4567-e89b-12d3-a456-426614174000"))
}
