// Package cache provides the block cache used in front of remote blob
// stores: byte-granular, LRU-evicted, keyed by blob name and block index.
package cache

import "context"

// Key identifies one cached block. Recording blobs are immutable, so a
// (path, block) pair never changes meaning for the life of a store.
type Key struct {
	// Path is the blob name within its store.
	Path string
	// Offset is the logical block index within the blob, not a byte
	// offset.
	Offset uint64
}

// BlockCache is a byte-oriented cache for immutable blocks. Returned
// slices must be treated as read-only.
type BlockCache interface {
	// Get returns a cached block, ok=false if missing.
	Get(ctx context.Context, key Key) (b []byte, ok bool)
	// Set caches a block. The cache retains b; callers must treat it as
	// immutable afterwards.
	Set(ctx context.Context, key Key, b []byte)
	// Invalidate removes entries matching the predicate.
	Invalidate(predicate func(key Key) bool)
	// Stats returns the hit and miss counters.
	Stats() (hits, misses int64)
}
