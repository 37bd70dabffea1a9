package api

import (
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/secretshows/secretshows-server/internal/ratelimit"
)

// authLimit allows perMinute login and signup attempts per client with a
// quarter of that available as an immediate burst.
func authLimit(perMinute int) ratelimit.Limit {
	return ratelimit.Limit{
		Attempts: perMinute,
		Interval: time.Minute,
		Burst:    max(perMinute/4, 1),
	}
}

// authRateLimit is a huma operation middleware that limits login and signup
// attempts per client IP. Refused attempts get 429 with a Retry-After header.
func (s *Server) authRateLimit(ctx huma.Context, next func(huma.Context)) {
	key := getClientIP(ctx.Header("X-Forwarded-For"), ctx.Header("X-Real-IP"), ctx.RemoteAddr())

	ok, retryAfter := s.authRateLimiter.Check(key)
	if !ok {
		s.logger.Warn("Rate limit exceeded",
			"ip", key,
			"path", ctx.URL().Path,
			"retry_after", retryAfter,
		)
		if retryAfter > 0 {
			ctx.SetHeader("Retry-After", strconv.Itoa(int(math.Ceil(retryAfter.Seconds()))))
		}
		_ = huma.WriteErr(s.api, ctx, http.StatusTooManyRequests, "Too many attempts. Please try again later.")
		return
	}

	next(ctx)
}

// getClientIP picks the client IP from the forwarding headers before falling back to the remote address.
func getClientIP(forwardedFor, realIP, remoteAddr string) string {
	// First address in the chain is the client.
	if forwardedFor != "" {
		first, _, _ := strings.Cut(forwardedFor, ",")
		return strings.TrimSpace(first)
	}

	if realIP != "" {
		return realIP
	}

	// Strip the port.
	if i := strings.LastIndexByte(remoteAddr, ':'); i >= 0 {
		return remoteAddr[:i]
	}
	return remoteAddr
}
