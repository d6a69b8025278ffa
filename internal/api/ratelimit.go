package api

import (
	"net"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	domainerrors "github.com/chaptermatic/chaptermatic-server/internal/errors"
	"github.com/chaptermatic/chaptermatic-server/internal/ratelimit"
)

const rateLimitMessage = "Too many requests. Please try again later."

// RateLimiter wraps KeyedRateLimiter for API use.
type RateLimiter = ratelimit.KeyedRateLimiter

// NewRateLimiter creates a new rate limiter.
// ratePerInterval requests are allowed per interval, with up to burst at once.
func NewRateLimiter(ratePerInterval int, interval time.Duration, burst int) *RateLimiter {
	// 30 per minute = 0.5 rps
	rps := float64(ratePerInterval) / interval.Seconds()
	return ratelimit.New(rps, burst)
}

// rateLimitOperation rejects requests over the per-IP limit with 429.
func (s *Server) rateLimitOperation(limiter *RateLimiter) func(huma.Context, func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		key := clientIP(ctx.RemoteAddr())

		if !limiter.Allow(key) {
			s.logger.Warn("Rate limit exceeded",
				"ip", key,
				"path", ctx.URL().Path,
			)
			_ = huma.WriteErr(s.api, ctx, http.StatusTooManyRequests, rateLimitMessage,
				domainerrors.RateLimited(rateLimitMessage))
			return
		}

		next(ctx)
	}
}

// clientIP strips the port from a request's RemoteAddr. Proxy headers are
// only honoured through the RealIP middleware, which rewrites RemoteAddr
// before this runs.
func clientIP(remoteAddr string) string {
	if host, _, err := net.SplitHostPort(remoteAddr); err == nil {
		return host
	}
	return remoteAddr
}
