// Package blobstore provides the storage abstraction used for vector snapshots.
//
// BlobStore is the interface for reading and writing immutable blobs.
// Implementations must be safe for concurrent use.
//
// # Built-in Implementations
//
//   - MemoryStore: in-process maps, for tests
//   - LocalStore: local filesystem, mmap reads and atomic rename writes
//   - CachingStore: block cache in front of any other store
//   - s3.Store: Amazon S3 with range reads and multipart uploads
//   - minio.Store: MinIO and other S3-compatible servers
//
// # Custom Implementations
//
//	type BlobStore interface {
//	    Open(ctx, name) (Blob, error)
//	    Create(ctx, name) (WritableBlob, error)
//	    Put(ctx, name, data) error
//	    Delete(ctx, name) error
//	    List(ctx, prefix) ([]string, error)
//	}
//
// Blobs that expose their bytes directly can implement Mappable; ReadAll
// uses it to skip the range reader. Writable blobs that can drop a partial
// write implement Aborter.
package blobstore
