package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/zarrenspry/vcd-inventory/pkg/errors"
)

type contextKey string

const (
	contextKeyRequestID contextKey = "requestID"

	headerRequestID = "X-Request-Id"
)

// RequestID returns the request ID stored in ctx, or "".
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(contextKeyRequestID).(string)
	return id
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// withMiddleware wraps an API handler with recovery, request IDs, access
// logging, metrics, rate limiting and response headers.
func (s *Server) withMiddleware(route string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		requestID := r.Header.Get(headerRequestID)
		if _, err := uuid.Parse(requestID); err != nil {
			requestID = uuid.New().String()
		}
		r = r.WithContext(context.WithValue(r.Context(), contextKeyRequestID, requestID))
		w.Header().Set(headerRequestID, requestID)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		defer func() {
			if p := recover(); p != nil {
				slog.Error("handler panic",
					"panic", fmt.Sprint(p),
					"stack", string(debug.Stack()),
					"requestId", requestID)
				WriteError(rec, r, http.StatusInternalServerError, errors.ErrCodeInternal,
					"internal server error", true, nil)
			}

			elapsed := time.Since(start)
			httpRequestsTotal.WithLabelValues(route, r.Method, strconv.Itoa(rec.status)).Inc()
			httpRequestDuration.WithLabelValues(route).Observe(elapsed.Seconds())
			slog.Debug("request handled",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", rec.status),
				slog.Duration("duration", elapsed),
				slog.String("requestId", requestID),
				slog.String("remote_addr", r.RemoteAddr))
		}()

		if !s.limiter.Allow() {
			rateLimitRejects.Inc()
			rec.Header().Set("Retry-After", "1")
			WriteError(rec, r, http.StatusTooManyRequests, errors.ErrCodeRateLimitExceeded,
				"rate limit exceeded", true, map[string]any{
					"limit": float64(s.config.RateLimit),
					"burst": s.config.RateLimitBurst,
				})
			return
		}

		rec.Header().Set(headerAPIVersion, negotiateAPIVersion(r))
		if s.config.CacheMaxAge > 0 {
			rec.Header().Set("Cache-Control", fmt.Sprintf("private, max-age=%d", s.config.CacheMaxAge))
		}

		next(rec, r)
	}
}
