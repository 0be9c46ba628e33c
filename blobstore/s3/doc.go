// Package s3 provides an S3 implementation of the blobstore.BlobStore interface.
//
// # Usage
//
//	store, err := s3.New(ctx, "my-bucket",
//	    s3.WithPrefix("vectors/"),
//	    s3.WithRegion("us-east-1"),
//	)
//
//	err = snapshot.Save(ctx, store, "items.cvec", v)
//
// # Features
//
//   - Range reads for partial fetches
//   - Multipart uploads with CRC32C checksums
//   - Conditional writes through PutIfNotExists
//   - Automatic pagination for listing
//   - DDBCommitStore for atomic CURRENT pointers backed by DynamoDB
package s3
