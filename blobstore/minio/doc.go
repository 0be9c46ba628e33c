// Package minio stores chunkvec snapshots in MinIO or any other
// S3-compatible server (Ceph, Garage, SeaweedFS) through minio-go.
//
// Keys are the blob names joined below a root prefix. Reads are ranged GETs,
// Create streams through a pipe into PutObject, and EnsureBucket creates the
// bucket on first use:
//
//	client, err := minio.New("localhost:9000", &minio.Options{
//	    Creds: credentials.NewStaticV4("minioadmin", "minioadmin", ""),
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	store := minioblob.NewStore(client, "snapshots", "items/")
//	if err := store.EnsureBucket(ctx, minio.MakeBucketOptions{}); err != nil {
//	    log.Fatal(err)
//	}
//	name, err := snapshot.Commit(ctx, store, "v1", v)
//
// MinIO has no conditional pointer update, so concurrent committers to the
// same prefix race on CURRENT. Use a single writer per prefix.
package minio
