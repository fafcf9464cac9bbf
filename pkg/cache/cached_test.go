package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zarrenspry/vcd-inventory/pkg/host"
	"github.com/zarrenspry/vcd-inventory/pkg/source"
)

type countingSource struct {
	calls   int
	records []host.Record
	err     error
}

func (c *countingSource) Fetch(context.Context) ([]host.Record, error) {
	c.calls++
	return c.records, c.err
}

type failingStore struct{ Nop }

func (failingStore) Put(context.Context, string, []host.Record, time.Time) error {
	return errors.New("disk full")
}

func TestCached_ReadThrough(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{t: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
	store := openMemory(t, time.Hour, clock)
	src := &countingSource{records: testRecords()}

	c := &Cached{Source: src, Store: store, Fingerprint: "fp", Now: clock.Now}

	got, err := c.Fetch(ctx)
	require.NoError(t, err)
	assert.Equal(t, testRecords(), got)
	assert.Equal(t, 1, src.calls)

	got, err = c.Fetch(ctx)
	require.NoError(t, err)
	assert.Equal(t, testRecords(), got)
	assert.Equal(t, 1, src.calls, "second fetch served from cache")

	clock.Advance(2 * time.Hour)
	_, err = c.Fetch(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, src.calls, "expired entry refetched")
}

func TestCached_Refresh(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{t: time.Now()}
	store := openMemory(t, time.Hour, clock)
	require.NoError(t, store.Put(ctx, "fp", testRecords()[:1], clock.Now()))

	src := &countingSource{records: testRecords()}
	c := &Cached{Source: src, Store: store, Fingerprint: "fp", Refresh: true, Now: clock.Now}

	got, err := c.Fetch(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Equal(t, 1, src.calls)

	cached, ok := store.Get(ctx, "fp")
	require.True(t, ok)
	assert.Len(t, cached, 2, "refresh overwrites entry")
}

func TestCached_UpstreamError(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{t: time.Now()}
	store := openMemory(t, time.Hour, clock)
	upstream := errors.New("connection refused")

	c := &Cached{Source: &countingSource{err: upstream}, Store: store, Fingerprint: "fp", Now: clock.Now}
	_, err := c.Fetch(ctx)
	assert.ErrorIs(t, err, upstream)

	_, ok := store.Get(ctx, "fp")
	assert.False(t, ok, "failed fetch is not cached")
}

func TestCached_PutFailureIsNotFatal(t *testing.T) {
	c := &Cached{Source: source.Static(testRecords()), Store: failingStore{}, Fingerprint: "fp"}
	got, err := c.Fetch(context.Background())
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestCached_NilStore(t *testing.T) {
	src := &countingSource{records: testRecords()}
	c := &Cached{Source: src, Fingerprint: "fp"}

	for range 2 {
		_, err := c.Fetch(context.Background())
		require.NoError(t, err)
	}
	assert.Equal(t, 2, src.calls)
}
