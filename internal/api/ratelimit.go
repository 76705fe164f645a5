package api

import (
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/orbjournal/orb-server/internal/ratelimit"
)

// RateLimiter limits request rates per client key.
type RateLimiter = ratelimit.KeyedRateLimiter

// NewRateLimiter creates a new rate limiter.
// ratePerInterval is the number of requests allowed per interval,
// burst the maximum burst size.
func NewRateLimiter(ratePerInterval int, interval time.Duration, burst int) *RateLimiter {
	rps := float64(ratePerInterval) / interval.Seconds()
	return ratelimit.New(rps, burst)
}

// checkAuthRateLimit enforces the per-IP limit on credential endpoints.
// Returns a 429 error when the limit is exceeded.
func (s *Server) checkAuthRateLimit(ip, operation string) error {
	if ip == "" {
		ip = "unknown"
	}
	if !s.authRateLimiter.Allow(ip) {
		s.logger.Warn("Rate limit exceeded",
			"ip", ip,
			"operation", operation,
		)
		return huma.Error429TooManyRequests("Too many requests. Please try again later.")
	}
	return nil
}

// extractIP picks the client IP from proxy headers. X-Forwarded-For may carry
// a chain of addresses; the first entry is the originating client.
func extractIP(xForwardedFor, xRealIP string) string {
	if xForwardedFor != "" {
		for i := 0; i < len(xForwardedFor); i++ {
			if xForwardedFor[i] == ',' {
				return xForwardedFor[:i]
			}
		}
		return xForwardedFor
	}
	return xRealIP
}
