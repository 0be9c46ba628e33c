package hash

import (
	"hash"
	"hash/crc32"
	"io"
)

// crc32cTable is pre-computed for CRC32-Castagnoli polynomial.
var crc32cTable = crc32.MakeTable(crc32.Castagnoli)

// CRC32C computes the CRC32-Castagnoli checksum of data.
func CRC32C(data []byte) uint32 {
	return crc32.Checksum(data, crc32cTable)
}

// NewCRC32C returns a new CRC32-Castagnoli hash.Hash32.
func NewCRC32C() hash.Hash32 {
	return crc32.New(crc32cTable)
}

// Writer hashes everything written through it.
type Writer struct {
	w io.Writer
	h hash.Hash32
	n int64
}

// NewWriter returns a Writer forwarding to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w, h: NewCRC32C()}
}

// Write implements io.Writer. Only bytes accepted by the destination are
// hashed.
func (w *Writer) Write(p []byte) (int, error) {
	n, err := w.w.Write(p)
	w.h.Write(p[:n])
	w.n += int64(n)
	return n, err
}

// Sum32 returns the checksum of everything written so far.
func (w *Writer) Sum32() uint32 { return w.h.Sum32() }

// Written returns the number of bytes written so far.
func (w *Writer) Written() int64 { return w.n }

// Reader hashes everything read through it.
type Reader struct {
	r io.Reader
	h hash.Hash32
}

// NewReader returns a Reader reading from r.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: r, h: NewCRC32C()}
}

// Read implements io.Reader.
func (r *Reader) Read(p []byte) (int, error) {
	n, err := r.r.Read(p)
	r.h.Write(p[:n])
	return n, err
}

// Sum32 returns the checksum of everything read so far.
func (r *Reader) Sum32() uint32 { return r.h.Sum32() }
