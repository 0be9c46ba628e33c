package s3

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/chunkvec"
	"github.com/hupe1980/chunkvec/blobstore"
	"github.com/hupe1980/chunkvec/snapshot"
)

// TestIntegration_S3Store runs against a real bucket named by S3_BUCKET using
// the default AWS credential chain.
func TestIntegration_S3Store(t *testing.T) {
	bucket := os.Getenv("S3_BUCKET")
	if bucket == "" {
		t.Skip("Skipping S3 integration test: S3_BUCKET not set")
	}

	ctx := context.Background()
	prefix := fmt.Sprintf("test-chunkvec-%d/", time.Now().UnixNano())
	store, err := New(ctx, bucket, WithPrefix(prefix), WithUploadConfig(UploadConfig{
		PartSize:       5 << 20,
		Concurrency:    2,
		EnableChecksum: true,
	}))
	require.NoError(t, err)

	t.Cleanup(func() {
		names, _ := store.List(ctx, "")
		for _, name := range names {
			_ = store.Delete(ctx, name)
		}
	})

	t.Run("CommitAndLoad", func(t *testing.T) {
		v := chunkvec.New[uint64](chunkvec.WithPageSize(4096))
		for i := range 100_000 {
			v.PushBack(uint64(i) * 7)
		}

		name, err := snapshot.Commit(ctx, store, "vec", v, snapshot.WithCompression(snapshot.CompressionZSTD))
		require.NoError(t, err)

		names, err := store.List(ctx, "vec/")
		require.NoError(t, err)
		assert.Contains(t, names, name)
		assert.Contains(t, names, "vec/"+snapshot.CurrentName)

		got, current, err := snapshot.LoadCurrent[uint64](ctx, store, "vec")
		require.NoError(t, err)
		assert.Equal(t, name, current)
		assert.True(t, chunkvec.Equal(v, got))
	})

	t.Run("RangedReads", func(t *testing.T) {
		data := []byte("0123456789abcdef")
		require.NoError(t, store.Put(ctx, "range.bin", data))

		blob, err := store.Open(ctx, "range.bin")
		require.NoError(t, err)
		defer blob.Close()

		buf := make([]byte, 4)
		n, err := blob.ReadAt(ctx, buf, 10)
		require.NoError(t, err)
		assert.Equal(t, 4, n)
		assert.Equal(t, "abcd", string(buf))

		got, err := blobstore.ReadAll(ctx, blob)
		require.NoError(t, err)
		assert.Equal(t, data, got)
	})

	t.Run("PutIfNotExists", func(t *testing.T) {
		require.NoError(t, store.PutIfNotExists(ctx, "lock", []byte("a")))
		assert.ErrorIs(t, store.PutIfNotExists(ctx, "lock", []byte("b")), ErrConflict)
	})

	t.Run("NotFound", func(t *testing.T) {
		_, err := store.Open(ctx, "nonexistent")
		assert.ErrorIs(t, err, blobstore.ErrNotFound)
	})
}
