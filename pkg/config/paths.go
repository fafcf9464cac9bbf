package config

import (
	"os"
	"path/filepath"
)

// CacheDir returns the directory holding the cache database.
//
// Resolution order:
//  1. $XDG_CACHE_HOME/vcdinv (if set)
//  2. os.UserCacheDir()/vcdinv
//  3. the system temp directory
func CacheDir() string {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, "vcdinv")
	}
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "vcdinv")
	}
	return filepath.Join(os.TempDir(), "vcdinv")
}

// DefaultCachePath returns the default cache database path.
func DefaultCachePath() string {
	return filepath.Join(CacheDir(), "cache.db")
}
