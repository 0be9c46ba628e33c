// Package compress encodes byte blocks with an 8-byte size header.
//
// Block layout (little endian):
//
//	[UncompressedSize uint32][CompressedSize uint32][Data...]
//
// CompressedSize == 0 means Data is stored as is. Blocks that do not shrink
// below 90% of their input are stored, so decoding never pays for a
// compression that did not help.
package compress
