package cache

import "context"

// CacheKey addresses a fixed-size block of a blob.
type CacheKey struct {
	Path  string
	Block uint64
}

// BlockCache holds immutable blob blocks. Callers must not modify slices
// passed to Set or returned by Get.
type BlockCache interface {
	Get(ctx context.Context, key CacheKey) (b []byte, ok bool)
	Set(ctx context.Context, key CacheKey, b []byte)
	// Invalidate drops every entry for which predicate returns true.
	Invalidate(predicate func(key CacheKey) bool)
	Close() error
	Stats() (hits, misses int64)
}
