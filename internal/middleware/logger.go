// AngelaMos | 2026
// logger.go

package middleware

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/carterperez-dev/nexus/internal/core"
)

// Logger emits one line per request and stores a request-scoped logger in
// the context for handlers and services.
func Logger(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

			reqLogger := base.With("request_id", GetRequestID(r.Context()))
			if traceID := core.TraceIDFromContext(r.Context()); traceID != "" {
				reqLogger = reqLogger.With("trace_id", traceID)
			}

			ctx := context.WithValue(r.Context(), loggerKey, reqLogger)
			next.ServeHTTP(ww, r.WithContext(ctx))

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}

			level := slog.LevelInfo
			switch {
			case status >= 500:
				level = slog.LevelError
			case status >= 400:
				level = slog.LevelWarn
			}

			reqLogger.Log(r.Context(), level, "http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", status,
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"remote_ip", ClientIP(r),
				"user_agent", r.UserAgent(),
			)
		})
	}
}

// LoggerFromContext falls back to slog.Default outside a request.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey).(*slog.Logger); ok {
		return l
	}
	return slog.Default()
}

// ClientIP is the caller address. chi's RealIP has already replaced
// RemoteAddr with the proxy-reported address.
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
