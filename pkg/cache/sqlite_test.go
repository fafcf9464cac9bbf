package cache

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"k8s.io/utils/ptr"

	"github.com/zarrenspry/vcd-inventory/pkg/host"
	"github.com/zarrenspry/vcd-inventory/pkg/metadata"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func testRecords() []host.Record {
	return []host.Record{
		{
			ID:      "urn:vcloud:vm:1",
			Name:    "web_1",
			Address: "10.0.0.5",
			Metadata: map[string]metadata.Value{
				"env":  metadata.Scalar("Development"),
				"type": metadata.List("web", "frontend"),
			},
			PowerState: "Powered on",
			OSType:     "ubuntu64Guest",
			Hardware: host.Hardware{
				CPUHotAddEnabled: ptr.To(true),
				HardwareVersion:  ptr.To("vmx-19"),
			},
		},
		{ID: "urn:vcloud:vm:2", Name: "db_1", PowerState: "Powered off", OSType: "rhel8_64Guest"},
	}
}

func openMemory(t *testing.T, ttl time.Duration, clock *fakeClock) *SQLiteStore {
	t.Helper()
	s, err := Open(MemoryPath, ttl, WithClock(clock.Now))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLiteStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{t: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
	s := openMemory(t, time.Hour, clock)

	_, ok := s.Get(ctx, "fp")
	assert.False(t, ok, "empty store")

	require.NoError(t, s.Put(ctx, "fp", testRecords(), clock.Now()))

	clock.Advance(59 * time.Minute)
	got, ok := s.Get(ctx, "fp")
	require.True(t, ok)
	assert.Equal(t, testRecords(), got)

	clock.Advance(time.Minute)
	_, ok = s.Get(ctx, "fp")
	assert.False(t, ok, "entry at exactly ttl is expired")
}

func TestSQLiteStore_PutOverwrites(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{t: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
	s := openMemory(t, time.Hour, clock)

	require.NoError(t, s.Put(ctx, "fp", testRecords(), clock.Now().Add(-2*time.Hour)))
	_, ok := s.Get(ctx, "fp")
	assert.False(t, ok)

	fresh := testRecords()[:1]
	require.NoError(t, s.Put(ctx, "fp", fresh, clock.Now()))
	got, ok := s.Get(ctx, "fp")
	require.True(t, ok)
	assert.Equal(t, fresh, got)
}

func TestSQLiteStore_Isolation(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{t: time.Now()}
	s := openMemory(t, time.Hour, clock)

	records := testRecords()
	require.NoError(t, s.Put(ctx, "a", records[:1], clock.Now()))
	require.NoError(t, s.Put(ctx, "b", records[1:], clock.Now()))

	a, ok := s.Get(ctx, "a")
	require.True(t, ok)
	assert.Equal(t, "web_1", a[0].Name)

	b, ok := s.Get(ctx, "b")
	require.True(t, ok)
	assert.Equal(t, "db_1", b[0].Name)
}

func TestSQLiteStore_EmptyRecordSet(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{t: time.Now()}
	s := openMemory(t, time.Hour, clock)

	require.NoError(t, s.Put(ctx, "fp", nil, clock.Now()))
	got, ok := s.Get(ctx, "fp")
	require.True(t, ok)
	assert.Empty(t, got)
}

func TestSQLiteStore_NonPositiveTTL(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{t: time.Now()}
	s := openMemory(t, 0, clock)

	require.NoError(t, s.Put(ctx, "fp", testRecords(), clock.Now()))
	_, ok := s.Get(ctx, "fp")
	assert.False(t, ok)
}

func TestSQLiteStore_CorruptEntryIsMiss(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{t: time.Now()}
	s := openMemory(t, time.Hour, clock)

	require.NoError(t, s.db.Create(&Entry{Fingerprint: "fp", Records: []byte("{not json"), StoredAt: clock.Now()}).Error)
	_, ok := s.Get(ctx, "fp")
	assert.False(t, ok)
}

func TestSQLiteStore_ClosedIsMiss(t *testing.T) {
	ctx := context.Background()
	s, err := Open(MemoryPath, time.Hour)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	_, ok := s.Get(ctx, "fp")
	assert.False(t, ok)
	assert.Error(t, s.Put(ctx, "fp", testRecords(), time.Now()))
}

func TestSQLiteStore_Purge(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{t: time.Now()}
	s := openMemory(t, time.Hour, clock)

	require.NoError(t, s.Put(ctx, "a", testRecords(), clock.Now()))
	require.NoError(t, s.Put(ctx, "b", testRecords(), clock.Now()))
	require.NoError(t, s.Purge(ctx))

	for _, fp := range []string{"a", "b"} {
		_, ok := s.Get(ctx, fp)
		assert.False(t, ok, fp)
	}
}

func TestSQLiteStore_PersistsAcrossOpen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "cache.db")

	s, err := Open(path, time.Hour)
	require.NoError(t, err)
	require.NoError(t, s.Put(ctx, "fp", testRecords(), time.Now()))
	require.NoError(t, s.Close())

	_, err = os.Stat(path)
	require.NoError(t, err)

	s, err = Open(path, time.Hour)
	require.NoError(t, err)
	defer s.Close()

	got, ok := s.Get(ctx, "fp")
	require.True(t, ok)
	assert.Equal(t, testRecords(), got)
}

func TestNop(t *testing.T) {
	ctx := context.Background()
	var s Store = Nop{}

	require.NoError(t, s.Put(ctx, "fp", testRecords(), time.Now()))
	_, ok := s.Get(ctx, "fp")
	assert.False(t, ok)
	assert.NoError(t, s.Purge(ctx))
	assert.NoError(t, s.Close())
}
