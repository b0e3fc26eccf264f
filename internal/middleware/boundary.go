package middleware

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/storefront-gate/internal/audit"
	"github.com/serroba/storefront-gate/internal/auth"
	"github.com/serroba/storefront-gate/internal/boundary"
	"github.com/serroba/storefront-gate/internal/messaging"
	"github.com/serroba/storefront-gate/internal/ratelimit"
	"go.uber.org/zap"
)

// BoundaryConfig wires the chokepoint's collaborators and policies.
type BoundaryConfig struct {
	Table    boundary.Table
	Limiter  ratelimit.Limiter
	Gate     *auth.Gate
	FailMode ratelimit.FailMode
	Logger   *zap.Logger
	// PublishRateLimited is optional; nil disables audit events for 429s.
	PublishRateLimited messaging.Publish[audit.RateLimitExceededEvent]
}

type rateLimitBody struct {
	Error string `json:"error"`
}

type gateBody struct {
	Error            string `json:"error"`
	RequiresPassword bool   `json:"requiresPassword"`
}

// Boundary returns the middleware evaluated for every inbound request
// before application routes. Rate limiting always runs before the auth
// gate so abusive retries against gated endpoints are throttled rather
// than merely rejected.
func Boundary(_ huma.API, cfg BoundaryConfig) func(ctx huma.Context, next func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		u := ctx.URL()
		route := cfg.Table.Match(ctx.Method(), u.Path, u.Query())

		if route.Limited && !allowRequest(ctx, cfg, route, u.Path) {
			return
		}

		if route.Gated && !passGate(ctx, cfg) {
			return
		}

		next(ctx)
	}
}

// allowRequest applies the bucket limit. Returns false when the request
// was answered (429 or fail-closed denial).
func allowRequest(ctx huma.Context, cfg BoundaryConfig, route boundary.Route, path string) bool {
	ip := ClientIP(ctx)

	decision, err := cfg.Limiter.Allow(ctx.Context(), route.Bucket, ip)
	if err != nil {
		if cfg.FailMode == ratelimit.FailClosed {
			cfg.Logger.Error("rate limit store unavailable, denying request",
				zap.String("path", path),
				zap.String("bucket", string(route.Bucket)),
				zap.Error(err),
			)
			writeJSON(ctx, http.StatusServiceUnavailable, rateLimitBody{Error: "service unavailable"})

			return false
		}

		// Availability over strict enforcement: a broken store must not
		// take the storefront down with it.
		cfg.Logger.Warn("rate limit store unavailable, allowing request",
			zap.String("path", path),
			zap.String("bucket", string(route.Bucket)),
			zap.Error(err),
		)

		return true
	}

	now := time.Now()
	ctx.SetHeader("X-RateLimit-Limit", strconv.FormatInt(decision.Limit, 10))
	ctx.SetHeader("X-RateLimit-Remaining", strconv.FormatInt(decision.Remaining, 10))
	ctx.SetHeader("X-RateLimit-Reset", strconv.FormatInt(decision.ResetAt.UnixMilli(), 10))

	if decision.Allowed {
		return true
	}

	retryAfter := decision.RetryAfter(now)
	ctx.SetHeader("Retry-After", strconv.FormatInt(int64(retryAfter/time.Second), 10))

	cfg.Logger.Warn("rate limit exceeded",
		zap.String("path", path),
		zap.String("bucket", string(route.Bucket)),
		zap.String("client_ip", ip),
		zap.Int64("limit", decision.Limit),
	)

	if cfg.PublishRateLimited != nil {
		event := &audit.RateLimitExceededEvent{
			Bucket:     string(route.Bucket),
			ClientIP:   ip,
			Path:       path,
			Limit:      decision.Limit,
			OccurredAt: now,
		}
		if err := cfg.PublishRateLimited(event); err != nil {
			cfg.Logger.Error("failed to publish rate limit event", zap.Error(err))
		}
	}

	writeJSON(ctx, http.StatusTooManyRequests, rateLimitBody{Error: "rate limit exceeded"})

	return false
}

// passGate checks the session cookie for gated routes. Returns false when
// the request was answered with 401.
func passGate(ctx huma.Context, cfg BoundaryConfig) bool {
	if cfg.Gate.Authenticated(readCookie(ctx, auth.CookieName)) {
		return true
	}

	writeJSON(ctx, http.StatusUnauthorized, gateBody{
		Error:            "password required",
		RequiresPassword: true,
	})

	return false
}

func readCookie(ctx huma.Context, name string) string {
	header := ctx.Header("Cookie")
	if header == "" {
		return ""
	}

	req := http.Request{Header: http.Header{"Cookie": []string{header}}}

	cookie, err := req.Cookie(name)
	if err != nil {
		return ""
	}

	return cookie.Value
}

func writeJSON(ctx huma.Context, status int, body any) {
	ctx.SetHeader("Content-Type", "application/json")
	ctx.SetStatus(status)
	_ = json.NewEncoder(ctx.BodyWriter()).Encode(body)
}
