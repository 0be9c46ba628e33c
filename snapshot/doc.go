// Package snapshot persists chunkvec vectors to a blobstore.BlobStore.
//
// # Format
//
// A snapshot is a little-endian byte stream:
//
//	"CVEC" | version u16 | compression u8 | codec name (u8 length + bytes)
//	page size u32 | element count u64 | page count u32
//	one compressed block per page
//	CRC32C u32 over everything before it
//
// Each block carries an 8-byte header (uncompressed size, compressed size; a
// compressed size of 0 marks a stored block). Pages are marshalled by a
// codec.Codec, so any element type the codec handles can be persisted.
//
// # Usage
//
//	store := blobstore.NewLocalStore("/var/lib/items")
//	name, err := snapshot.Commit(ctx, store, "items", v,
//	    snapshot.WithCompression(snapshot.CompressionZSTD))
//
//	v, name, err := snapshot.LoadCurrent[Item](ctx, store, "items")
//	if errors.Is(err, snapshot.ErrNoCurrent) { ... }
//
// Commit writes items/000000000042.cvec and then replaces items/CURRENT with
// its name. Readers only ever see fully written snapshots.
package snapshot
