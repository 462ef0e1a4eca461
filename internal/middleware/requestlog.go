package middleware

import (
	"time"

	"github.com/danielgtaylor/huma/v2"
	"go.uber.org/zap"
)

// RequestLogger logs one line per request once the handler has returned.
// Server errors are logged at error level, everything else at info.
func RequestLogger(logger *zap.Logger) func(ctx huma.Context, next func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		start := time.Now()

		next(ctx)

		status := ctx.Status()
		if status == 0 {
			status = 200
		}

		fields := []zap.Field{
			zap.String("method", ctx.Method()),
			zap.String("path", ctx.URL().Path),
			zap.String("operation", operationPath(ctx)),
			zap.Int("status", status),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", clientIP(ctx)),
		}

		if status >= 500 {
			logger.Error("request", fields...)

			return
		}

		logger.Info("request", fields...)
	}
}
