package middleware

import (
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/DelphiTri/website/internal/common"
	"github.com/DelphiTri/website/internal/config"
)

// RateLimiter keeps one token bucket per client IP
type RateLimiter struct {
	mu        sync.Mutex
	limiters  map[string]*rate.Limiter
	rps       rate.Limit
	burst     int
	whitelist map[string]bool
}

func NewRateLimiter(cfg config.RateLimitConfig) *RateLimiter {
	return &RateLimiter{
		limiters: make(map[string]*rate.Limiter),
		rps:      rate.Limit(cfg.RequestsPerSecond),
		burst:    cfg.Burst,
		whitelist: map[string]bool{
			"127.0.0.1": true, // local tooling
		},
	}
}

func (rl *RateLimiter) getLimiter(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if limiter, exists := rl.limiters[ip]; exists {
		return limiter
	}
	limiter := rate.NewLimiter(rl.rps, rl.burst)
	rl.limiters[ip] = limiter
	return limiter
}

// Middleware applies the limit. Safe methods pass through untouched.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet || r.Method == http.MethodHead || r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}

		ip, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			ip = r.RemoteAddr
		}
		if rl.whitelist[ip] {
			next.ServeHTTP(w, r)
			return
		}

		if !rl.getLimiter(ip).Allow() {
			common.RespondError(w, time.Now(), nil, "Too many requests", http.StatusTooManyRequests)
			return
		}

		next.ServeHTTP(w, r)
	})
}
