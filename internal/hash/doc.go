// Package hash provides the CRC32-Castagnoli checksum used by snapshot
// trailers.
//
// For one-shot checksums:
//
//	checksum := hash.CRC32C(data)
//
// For streaming checksums, wrap the destination so every byte written is
// also hashed:
//
//	w := hash.NewWriter(dst)
//	w.Write(header)
//	w.Write(block)
//	trailer := w.Sum32()
//
// Go's crc32 package uses hardware instructions (SSE4.2, ARM CRC) when
// available.
package hash
