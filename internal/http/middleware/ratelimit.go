package middleware

import (
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/httprate"
	"go.uber.org/zap"

	"github.com/adicipta/procure-api/internal/auth"
	"github.com/adicipta/procure-api/internal/config"
)

// RateLimiter throttles requests per user (when authenticated) or per
// client IP, with IP and path whitelists.
type RateLimiter struct {
	cfg            *config.RateLimitConfig
	logger         *zap.Logger
	limiter        func(http.Handler) http.Handler
	whitelistIPs   map[string]struct{}
	whitelistPaths []string
}

// NewRateLimiter builds the limiter from configuration
func NewRateLimiter(cfg *config.RateLimitConfig, logger *zap.Logger) *RateLimiter {
	rl := &RateLimiter{
		cfg:            cfg,
		logger:         logger,
		whitelistIPs:   make(map[string]struct{}, len(cfg.WhitelistIPs)),
		whitelistPaths: cfg.WhitelistPaths,
	}
	for _, ip := range cfg.WhitelistIPs {
		rl.whitelistIPs[ip] = struct{}{}
	}

	rl.limiter = httprate.Limit(
		cfg.RequestsPerMinute,
		time.Minute,
		httprate.WithKeyFuncs(keyByUserOrIP),
		httprate.WithLimitHandler(rl.limitExceeded),
	)
	return rl
}

// Limit applies the rate limit unless the request is whitelisted
func (rl *RateLimiter) Limit(next http.Handler) http.Handler {
	if !rl.cfg.Enabled {
		return next
	}
	limited := rl.limiter(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if rl.isWhitelisted(r) {
			next.ServeHTTP(w, r)
			return
		}
		limited.ServeHTTP(w, r)
	})
}

func (rl *RateLimiter) isWhitelisted(r *http.Request) bool {
	if _, ok := rl.whitelistIPs[requestIP(r)]; ok {
		return true
	}
	for _, path := range rl.whitelistPaths {
		if strings.HasSuffix(path, "/*") {
			if strings.HasPrefix(r.URL.Path, strings.TrimSuffix(path, "*")) {
				return true
			}
			continue
		}
		if r.URL.Path == path {
			return true
		}
	}
	return false
}

func (rl *RateLimiter) limitExceeded(w http.ResponseWriter, r *http.Request) {
	rl.logger.Warn("rate limit exceeded",
		zap.String("ip", requestIP(r)),
		zap.String("path", r.URL.Path),
	)
	w.Header().Set("Retry-After", "60")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)
	w.Write([]byte(`{"error":"rate limit exceeded","message":"too many requests, slow down"}`))
}

func keyByUserOrIP(r *http.Request) (string, error) {
	if user, ok := auth.FromContext(r.Context()); ok {
		return "user:" + user.UserID, nil
	}
	return "ip:" + requestIP(r), nil
}

func requestIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		parts := strings.Split(fwd, ",")
		return strings.TrimSpace(parts[0])
	}
	if real := r.Header.Get("X-Real-IP"); real != "" {
		return real
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
