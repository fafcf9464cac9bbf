// Package source defines where host records come from.
package source

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/zarrenspry/vcd-inventory/pkg/host"
	"github.com/zarrenspry/vcd-inventory/pkg/serializer"
)

// Source produces the host records of one inventory run.
// Implementations must support context-based cancellation.
type Source interface {
	Fetch(ctx context.Context) ([]host.Record, error)
}

// Func adapts a function to the Source interface.
type Func func(ctx context.Context) ([]host.Record, error)

// Fetch calls f.
func (f Func) Fetch(ctx context.Context) ([]host.Record, error) {
	return f(ctx)
}

// Static returns a fixed set of records.
type Static []host.Record

// Fetch returns a copy of s.
func (s Static) Fetch(ctx context.Context) ([]host.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return append([]host.Record(nil), s...), nil
}

// File reads host records from a JSON or YAML file holding a list of records.
// The format is derived from the file extension.
type File struct {
	Path string
}

// Fetch loads the records from f.Path.
func (f File) Fetch(ctx context.Context) ([]host.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	records, err := serializer.FromFile[[]host.Record](f.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to load host records from %q: %w", f.Path, err)
	}
	slog.Debug("loaded host records from file",
		slog.String("path", f.Path),
		slog.Int("records", len(*records)))
	return *records, nil
}
