package cache

import (
	"context"
	"time"

	"github.com/zarrenspry/vcd-inventory/pkg/host"
)

// DefaultTTL is how long an entry stays valid when no TTL is configured.
const DefaultTTL = time.Hour

// Store persists host record sets by fingerprint.
type Store interface {
	// Get returns the records stored for fp when the entry exists and has not
	// expired. Any read failure is reported as a miss.
	Get(ctx context.Context, fp string) ([]host.Record, bool)

	// Put replaces the entry for fp with records stored at the given time.
	Put(ctx context.Context, fp string, records []host.Record, at time.Time) error

	// Purge removes every entry.
	Purge(ctx context.Context) error

	Close() error
}

// Nop is a Store that never holds anything.
type Nop struct{}

func (Nop) Get(context.Context, string) ([]host.Record, bool) { return nil, false }
func (Nop) Put(context.Context, string, []host.Record, time.Time) error { return nil }
func (Nop) Purge(context.Context) error { return nil }
func (Nop) Close() error { return nil }
