package cache

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/zarrenspry/vcd-inventory/pkg/host"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// Entry is one cached record set.
type Entry struct {
	Fingerprint string `gorm:"primaryKey"`
	Records     []byte
	StoredAt    time.Time `gorm:"index"`
}

// TableName pins the table name.
func (Entry) TableName() string { return "inventory_cache" }

// SQLiteOption configures a SQLiteStore.
type SQLiteOption func(*SQLiteStore)

// WithClock replaces the time source used to evaluate expiry.
func WithClock(now func() time.Time) SQLiteOption {
	return func(s *SQLiteStore) {
		if now != nil {
			s.now = now
		}
	}
}

// SQLiteStore is a Store backed by a SQLite database file.
type SQLiteStore struct {
	db  *gorm.DB
	ttl time.Duration
	now func() time.Time
}

// Open opens (creating when needed) the database at path. A ttl of zero or
// less makes every entry expired.
func Open(path string, ttl time.Duration, opts ...SQLiteOption) (*SQLiteStore, error) {
	if path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, fmt.Errorf("create cache dir: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		NowFunc: func() time.Time { return time.Now().UTC() },
		Logger:  logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if path == MemoryPath {
		// every pooled connection would otherwise get its own empty database
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
	}
	if err := db.AutoMigrate(&Entry{}); err != nil {
		return nil, fmt.Errorf("auto-migrate: %w", err)
	}

	s := &SQLiteStore{db: db, ttl: ttl, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Get implements Store.
func (s *SQLiteStore) Get(ctx context.Context, fp string) ([]host.Record, bool) {
	var e Entry
	err := s.db.WithContext(ctx).Where("fingerprint = ?", fp).First(&e).Error
	switch {
	case stderrors.Is(err, gorm.ErrRecordNotFound):
		lookupsTotal.WithLabelValues("miss").Inc()
		return nil, false
	case err != nil:
		lookupsTotal.WithLabelValues("error").Inc()
		slog.Warn("cache read failed, treating as miss", "error", err, "fingerprint", fp)
		return nil, false
	}

	if age := s.now().Sub(e.StoredAt); s.ttl <= 0 || age >= s.ttl {
		lookupsTotal.WithLabelValues("expired").Inc()
		slog.Debug("cache entry expired", slog.String("fingerprint", fp), slog.Duration("age", age))
		return nil, false
	}

	var records []host.Record
	if err := json.Unmarshal(e.Records, &records); err != nil {
		lookupsTotal.WithLabelValues("error").Inc()
		slog.Warn("cache entry corrupt, treating as miss", "error", err, "fingerprint", fp)
		return nil, false
	}
	lookupsTotal.WithLabelValues("hit").Inc()
	return records, true
}

// Put implements Store. An existing entry for fp is overwritten.
func (s *SQLiteStore) Put(ctx context.Context, fp string, records []host.Record, at time.Time) error {
	if records == nil {
		records = []host.Record{}
	}
	b, err := json.Marshal(records)
	if err != nil {
		writesTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("encode cache entry: %w", err)
	}

	e := Entry{Fingerprint: fp, Records: b, StoredAt: at.UTC()}
	if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(&e).Error; err != nil {
		writesTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("write cache entry: %w", err)
	}
	writesTotal.WithLabelValues("ok").Inc()
	return nil
}

// Purge implements Store.
func (s *SQLiteStore) Purge(ctx context.Context) error {
	res := s.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&Entry{})
	if res.Error != nil {
		return fmt.Errorf("purge cache: %w", res.Error)
	}
	slog.Debug("purged cache", slog.Int64("entries", res.RowsAffected))
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
