package server

import (
	"context"
	"net/http"
	"time"

	"github.com/zarrenspry/vcd-inventory/pkg/serializer"
)

const readinessCheckTimeout = 2 * time.Second

// ReadinessCheck reports whether the server can answer API requests.
type ReadinessCheck func(ctx context.Context) error

// handleHealth handles GET /health. It reports liveness only.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	serializer.RespondJSON(w, http.StatusOK, HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Uptime:    s.uptime(),
	})
}

// handleReady handles GET /ready: 503 until Serve marks the server ready,
// then 503 whenever the readiness check fails.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if !s.IsReady() {
		serializer.RespondJSON(w, http.StatusServiceUnavailable, HealthResponse{
			Status:    "not_ready",
			Timestamp: time.Now().UTC(),
			Reason:    "service is initializing",
		})
		return
	}

	if s.readiness != nil {
		ctx, cancel := context.WithTimeout(r.Context(), readinessCheckTimeout)
		defer cancel()
		if err := s.readiness(ctx); err != nil {
			serializer.RespondJSON(w, http.StatusServiceUnavailable, HealthResponse{
				Status:    "not_ready",
				Timestamp: time.Now().UTC(),
				Uptime:    s.uptime(),
				Reason:    err.Error(),
			})
			return
		}
	}

	serializer.RespondJSON(w, http.StatusOK, HealthResponse{
		Status:    "ready",
		Timestamp: time.Now().UTC(),
		Uptime:    s.uptime(),
	})
}

func (s *Server) uptime() string {
	s.mu.RLock()
	started := s.started
	s.mu.RUnlock()
	if started.IsZero() {
		return ""
	}
	return time.Since(started).Round(time.Second).String()
}
