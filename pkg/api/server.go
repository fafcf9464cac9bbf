// Package api exposes the inventory over HTTP.
package api

import (
	"context"
	"log/slog"

	"github.com/zarrenspry/vcd-inventory/pkg/server"
)

const name = "vcdinv"

var (
	// overridden during build with ldflags to reflect actual version info
	// e.g., -X "github.com/zarrenspry/vcd-inventory/pkg/api.version=1.0.0"
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Serve starts the API server and blocks until ctx is cancelled or the
// process is signalled. opts are applied after the defaults.
func Serve(ctx context.Context, h *Handler, opts ...server.Option) error {
	slog.Info("starting",
		"name", name,
		"version", version,
		"commit", commit,
		"date", date,
	)

	base := []server.Option{
		server.WithName(name),
		server.WithVersion(version),
		server.WithHandler(h.Routes()),
		server.WithReadinessCheck(h.Check),
	}
	s := server.New(append(base, opts...)...)

	if err := s.Run(ctx); err != nil {
		slog.Error("server exited with error", "error", err)
		return err
	}

	return nil
}
