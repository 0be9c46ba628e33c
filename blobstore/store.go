package blobstore

import (
	"context"
	"fmt"
	"io"
	"os"
)

// ErrNotFound is returned when a blob does not exist.
//
// Implementations should return an error that satisfies `errors.Is(err, ErrNotFound)`.
// The default maps to `os.ErrNotExist`.
var ErrNotFound = os.ErrNotExist

// BlobStore is an abstraction for storing immutable snapshot blobs.
type BlobStore interface {
	// Open opens a blob for reading.
	Open(ctx context.Context, name string) (Blob, error)
	// Create opens a blob for streaming writes. The blob becomes visible on Close.
	Create(ctx context.Context, name string) (WritableBlob, error)
	// Put writes a blob atomically.
	Put(ctx context.Context, name string, data []byte) error
	// Delete removes a blob. Deleting a missing blob is not an error.
	Delete(ctx context.Context, name string) error
	// List returns the names of all blobs starting with prefix.
	List(ctx context.Context, prefix string) ([]string, error)
}

// Blob is a read-only handle to a data blob.
type Blob interface {
	ReadAt(ctx context.Context, p []byte, off int64) (int, error)
	io.Closer
	// Size returns the size of the blob in bytes.
	Size() int64
	// ReadRange returns a reader over [off, off+length), clamped to the blob size.
	ReadRange(ctx context.Context, off, length int64) (io.ReadCloser, error)
}

// WritableBlob is a blob being written.
type WritableBlob interface {
	io.WriteCloser
	// Sync flushes buffered data to durable storage where supported.
	Sync() error
}

// Aborter is implemented by WritableBlobs that can discard a partial write.
// After Abort the blob is closed and nothing becomes visible.
type Aborter interface {
	Abort() error
}

// Mappable is an optional interface for Blobs that support memory mapping.
type Mappable interface {
	// Bytes returns the underlying byte slice.
	// The slice is valid until the Blob is closed.
	Bytes() ([]byte, error)
}

// ReadAll reads the whole blob. Mappable blobs are copied without an
// intermediate reader.
func ReadAll(ctx context.Context, b Blob) ([]byte, error) {
	if m, ok := b.(Mappable); ok {
		data, err := m.Bytes()
		if err != nil {
			return nil, err
		}
		out := make([]byte, len(data))
		copy(out, data)
		return out, nil
	}

	size := b.Size()
	if size < 0 {
		return nil, fmt.Errorf("blobstore: invalid blob size %d", size)
	}

	rc, err := b.ReadRange(ctx, 0, size)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	buf := make([]byte, size)
	if _, err := io.ReadFull(rc, buf); err != nil {
		return nil, fmt.Errorf("blobstore: read %d bytes: %w", size, err)
	}
	return buf, nil
}

// ReadFile opens name and reads it completely.
func ReadFile(ctx context.Context, s BlobStore, name string) ([]byte, error) {
	b, err := s.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	defer b.Close()
	return ReadAll(ctx, b)
}

// sectionReader adapts a context-aware ReadAt to io.Reader.
type sectionReader struct {
	ctx    context.Context
	readAt func(ctx context.Context, p []byte, off int64) (int, error)
	off    int64
	limit  int64
}

// newSectionReader implements ReadRange on top of ReadAt. An offset past the
// end of the blob yields io.EOF.
func newSectionReader(ctx context.Context, b Blob, off, length int64) (io.ReadCloser, error) {
	size := b.Size()
	if off < 0 || off > size {
		return nil, io.EOF
	}
	limit := min(off+length, size)
	return io.NopCloser(&sectionReader{ctx: ctx, readAt: b.ReadAt, off: off, limit: limit}), nil
}

func (r *sectionReader) Read(p []byte) (n int, err error) {
	if r.off >= r.limit {
		return 0, io.EOF
	}
	if remaining := r.limit - r.off; int64(len(p)) > remaining {
		p = p[:remaining]
	}
	n, err = r.readAt(r.ctx, p, r.off)
	r.off += int64(n)
	if err == io.EOF && n > 0 {
		err = nil
	}
	return n, err
}
