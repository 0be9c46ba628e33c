package blobstore

import (
	"context"
	"errors"
	"io"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/chunkvec/internal/cache"
)

// DefaultCacheBlockSize is the block size used when NewCachingStore gets a
// non-positive one.
const DefaultCacheBlockSize = 64 << 10

// CachingStore wraps a BlobStore and adds block-level read caching. It is
// meant for remote stores where snapshots are read repeatedly.
type CachingStore struct {
	inner     BlobStore
	cache     cache.BlockCache
	blockSize int64
}

var _ BlobStore = (*CachingStore)(nil)

// NewCachingStore creates a new CachingStore.
func NewCachingStore(inner BlobStore, c cache.BlockCache, blockSize int64) *CachingStore {
	if blockSize <= 0 {
		blockSize = DefaultCacheBlockSize
	}
	return &CachingStore{
		inner:     inner,
		cache:     c,
		blockSize: blockSize,
	}
}

// Open opens name in the inner store and serves reads through the cache.
func (s *CachingStore) Open(ctx context.Context, name string) (Blob, error) {
	b, err := s.inner.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	return &cachingBlob{
		inner:     b,
		cache:     s.cache,
		name:      name,
		blockSize: s.blockSize,
	}, nil
}

// Create drops cached blocks of name and writes through to the inner store.
func (s *CachingStore) Create(ctx context.Context, name string) (WritableBlob, error) {
	s.invalidate(name)
	return s.inner.Create(ctx, name)
}

// Put drops cached blocks of name and writes through to the inner store.
func (s *CachingStore) Put(ctx context.Context, name string, data []byte) error {
	s.invalidate(name)
	return s.inner.Put(ctx, name, data)
}

// Delete drops cached blocks of name and deletes it from the inner store.
func (s *CachingStore) Delete(ctx context.Context, name string) error {
	s.invalidate(name)
	return s.inner.Delete(ctx, name)
}

// List delegates to the inner store.
func (s *CachingStore) List(ctx context.Context, prefix string) ([]string, error) {
	return s.inner.List(ctx, prefix)
}

func (s *CachingStore) invalidate(name string) {
	s.cache.Invalidate(func(key cache.CacheKey) bool {
		return key.Path == name
	})
}

// cachingBlob wraps a Blob and uses the block cache for reads.
type cachingBlob struct {
	inner     Blob
	cache     cache.BlockCache
	name      string
	blockSize int64
}

func (b *cachingBlob) Close() error {
	return b.inner.Close()
}

func (b *cachingBlob) Size() int64 {
	return b.inner.Size()
}

func (b *cachingBlob) key(blk int64) cache.CacheKey {
	return cache.CacheKey{Path: b.name, Block: uint64(blk)}
}

func (b *cachingBlob) ReadAt(ctx context.Context, p []byte, off int64) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	size := b.Size()
	if off < 0 || off >= size {
		return 0, io.EOF
	}

	want := min(int64(len(p)), size-off)
	startBlock := off / b.blockSize
	endBlock := (off + want - 1) / b.blockSize

	if err := b.fillCache(ctx, startBlock, endBlock); err != nil {
		return 0, err
	}

	total := 0
	for blk := startBlock; blk <= endBlock; blk++ {
		blkStart := blk * b.blockSize
		lo := max(blkStart, off)
		hi := min(blkStart+b.blockSize, off+want)

		data, err := b.fetchBlock(ctx, blk)
		if err != nil {
			return total, err
		}
		src := lo - blkStart
		if src >= int64(len(data)) {
			break
		}
		total += copy(p[lo-off:hi-off], data[src:])
	}

	if total < len(p) {
		return total, io.EOF
	}
	return total, nil
}

type blockRun struct {
	start, count int64
}

// fillCache loads the missing blocks of [startBlock, endBlock], fetching each
// contiguous run of misses with one backend read.
func (b *cachingBlob) fillCache(ctx context.Context, startBlock, endBlock int64) error {
	var runs []blockRun
	for blk := startBlock; blk <= endBlock; blk++ {
		if _, ok := b.cache.Get(ctx, b.key(blk)); ok {
			continue
		}
		if n := len(runs); n > 0 && runs[n-1].start+runs[n-1].count == blk {
			runs[n-1].count++
			continue
		}
		runs = append(runs, blockRun{start: blk, count: 1})
	}
	if len(runs) == 0 {
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(16)

	size := b.Size()
	for _, run := range runs {
		g.Go(func() error {
			byteStart := run.start * b.blockSize
			byteSize := min(run.count*b.blockSize, size-byteStart)
			if byteSize <= 0 {
				return nil
			}

			buf := make([]byte, byteSize)
			n, err := b.inner.ReadAt(gctx, buf, byteStart)
			if err != nil && !errors.Is(err, io.EOF) {
				return err
			}
			buf = buf[:n]

			for i := int64(0); i < run.count; i++ {
				lo := i * b.blockSize
				if lo >= int64(len(buf)) {
					break
				}
				hi := min(lo+b.blockSize, int64(len(buf)))
				// Copy so one cached block does not pin the whole run.
				block := make([]byte, hi-lo)
				copy(block, buf[lo:hi])
				b.cache.Set(gctx, b.key(run.start+i), block)
			}
			return nil
		})
	}
	return g.Wait()
}

// fetchBlock returns a block from the cache, falling back to the inner blob
// when the cache declined to keep it.
func (b *cachingBlob) fetchBlock(ctx context.Context, blk int64) ([]byte, error) {
	if data, ok := b.cache.Get(ctx, b.key(blk)); ok {
		return data, nil
	}

	buf := make([]byte, b.blockSize)
	n, err := b.inner.ReadAt(ctx, buf, blk*b.blockSize)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	data := buf[:n]
	if n > 0 {
		b.cache.Set(ctx, b.key(blk), data)
	}
	return data, nil
}

func (b *cachingBlob) ReadRange(ctx context.Context, off, length int64) (io.ReadCloser, error) {
	return newSectionReader(ctx, b, off, length)
}
