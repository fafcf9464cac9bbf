// Package cache keeps raw host records between inventory runs.
//
// Entries are keyed by a fingerprint of the connection target and expire
// after a TTL. Any failure to read the store is reported as a miss so a run
// always falls back to a live fetch.
package cache
