package middleware

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/shortlink/internal/ratelimit"
	"go.uber.org/zap"
)

// PolicyRateLimiter returns a huma middleware that rate limits each client.
//
// Operation metadata under ratelimit.MetadataKey can disable limiting, supply
// the operation's own limits, or override the scope passed to the policy.
func PolicyRateLimiter(
	api huma.API,
	limiter *ratelimit.PolicyLimiter,
	resolver ratelimit.ScopeResolver,
	logger *zap.Logger,
) func(ctx huma.Context, next func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		cfg := ratelimit.GetEndpointConfig(ctx)
		if cfg != nil && cfg.Disabled {
			next(ctx)

			return
		}

		key := clientKey(ctx)
		path := operationPath(ctx)

		var (
			allowed  bool
			exceeded *ratelimit.LimitExceeded
			err      error
		)

		if cfg != nil && len(cfg.Limits) > 0 {
			allowed, exceeded, err = limiter.AllowEndpoint(ctx.Context(), key, path, cfg.Limits)
		} else {
			allowed, exceeded, err = limiter.Allow(ctx.Context(), key, resolver.Resolve(ctx))
		}

		if err != nil {
			logger.Error("rate limit check failed", zap.String("path", path), zap.Error(err))
			_ = huma.WriteErr(api, ctx, http.StatusInternalServerError, "internal server error", err)

			return
		}

		if !allowed {
			rejectRateLimited(api, ctx, exceeded, path, logger)

			return
		}

		next(ctx)
	}
}

func rejectRateLimited(
	api huma.API,
	ctx huma.Context,
	exceeded *ratelimit.LimitExceeded,
	path string,
	logger *zap.Logger,
) {
	msg := "rate limit exceeded"

	if exceeded != nil {
		if exceeded.Scope != "" {
			msg = fmt.Sprintf("rate limit exceeded: %s scope, %d/%d requests in %s",
				exceeded.Scope, exceeded.Count, exceeded.Config.Max, exceeded.Config.Window)
		} else {
			msg = fmt.Sprintf("rate limit exceeded: %d/%d requests in %s",
				exceeded.Count, exceeded.Config.Max, exceeded.Config.Window)
		}

		logger.Warn("rate limit exceeded",
			zap.String("path", path),
			zap.String("method", ctx.Method()),
			zap.String("scope", string(exceeded.Scope)),
			zap.Int64("count", exceeded.Count),
			zap.Int64("max", exceeded.Config.Max),
			zap.Duration("window", exceeded.Config.Window),
			zap.String("client_ip", clientIP(ctx)),
		)
	}

	ctx.SetHeader("Retry-After", retryAfter(exceeded))
	_ = huma.WriteErr(api, ctx, http.StatusTooManyRequests, msg)
}

// retryAfter is the window length in whole seconds, the longest a client can
// need to wait.
func retryAfter(exceeded *ratelimit.LimitExceeded) string {
	if exceeded == nil {
		return "60"
	}

	return fmt.Sprintf("%d", max(1, int64(exceeded.Config.Window.Seconds())))
}

func operationPath(ctx huma.Context) string {
	if op := ctx.Operation(); op != nil {
		return op.Path
	}

	return ctx.URL().Path
}

// clientKey identifies a client by IP and User-Agent. Hashing keeps raw
// addresses out of the rate limit store.
func clientKey(ctx huma.Context) string {
	hash := sha256.Sum256([]byte(clientIP(ctx) + "|" + ctx.Header("User-Agent")))

	return hex.EncodeToString(hash[:])
}

// clientIP prefers proxy headers over the connection address.
func clientIP(ctx huma.Context) string {
	if xff := ctx.Header("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")

		return strings.TrimSpace(first)
	}

	if xri := ctx.Header("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	addr := ctx.RemoteAddr()
	if addr == "" {
		addr = ctx.Host()
	}

	ip, _, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}

	return ip
}
