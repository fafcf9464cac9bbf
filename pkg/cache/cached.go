package cache

import (
	"context"
	"log/slog"
	"time"

	"github.com/zarrenspry/vcd-inventory/pkg/host"
	"github.com/zarrenspry/vcd-inventory/pkg/source"
)

// Cached is a read-through source: it serves records from Store while the
// entry for Fingerprint is fresh and stores every live fetch.
type Cached struct {
	Source      source.Source
	Store       Store
	Fingerprint string

	// Refresh skips the lookup and always fetches, overwriting the entry.
	Refresh bool

	// Now defaults to time.Now.
	Now func() time.Time
}

// Fetch implements source.Source.
func (c *Cached) Fetch(ctx context.Context) ([]host.Record, error) {
	store := c.Store
	if store == nil {
		store = Nop{}
	}

	if !c.Refresh {
		if records, ok := store.Get(ctx, c.Fingerprint); ok {
			slog.Debug("serving host records from cache",
				slog.String("fingerprint", c.Fingerprint),
				slog.Int("records", len(records)))
			return records, nil
		}
	}

	records, err := c.Source.Fetch(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now
	if c.Now != nil {
		now = c.Now
	}
	if err := store.Put(ctx, c.Fingerprint, records, now()); err != nil {
		slog.Warn("failed to update cache", "error", err, "fingerprint", c.Fingerprint)
	}
	return records, nil
}
