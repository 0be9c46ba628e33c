package snapshot

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math/bits"

	"github.com/hupe1980/chunkvec/internal/compress"
	"github.com/hupe1980/chunkvec/internal/conv"
)

const (
	// Magic starts every snapshot.
	Magic = "CVEC"

	// Version is the format version written by Encode.
	Version uint16 = 1

	// Extension is the file extension used by Commit.
	Extension = ".cvec"

	// MaxPageSize is the largest page size a snapshot may declare.
	MaxPageSize = 1 << 20

	maxCodecName = 255
	trailerSize  = 4
)

var (
	// ErrCorrupt is returned for malformed snapshot bytes.
	ErrCorrupt = errors.New("snapshot: corrupt")
	// ErrChecksum is returned when the CRC32C trailer does not match.
	ErrChecksum = errors.New("snapshot: checksum mismatch")
	// ErrUnsupportedVersion is returned for snapshots written by a newer format.
	ErrUnsupportedVersion = errors.New("snapshot: unsupported version")
	// ErrCodecMismatch is returned when the stored codec is unknown or differs
	// from the requested one.
	ErrCodecMismatch = errors.New("snapshot: codec mismatch")
	// ErrNoCurrent is returned by LoadCurrent when nothing was committed.
	ErrNoCurrent = errors.New("snapshot: no current snapshot")
)

// Compression selects the block compression of a snapshot.
type Compression = compress.Type

// Block compression types.
const (
	CompressionNone = compress.None
	CompressionLZ4  = compress.LZ4
	CompressionZSTD = compress.ZSTD
)

// Header describes a snapshot.
type Header struct {
	Version     uint16
	Compression Compression
	Codec       string
	PageSize    int
	Len         int
	Pages       int
}

// pagesFor returns how many pages hold n elements.
func pagesFor(n, pageSize int) int {
	return (n + pageSize - 1) / pageSize
}

// pageLen returns the number of elements stored in page i.
func (h Header) pageLen(i int) int {
	return min(h.PageSize, h.Len-i*h.PageSize)
}

func (h Header) validate() error {
	if h.PageSize <= 0 || bits.OnesCount(uint(h.PageSize)) != 1 {
		return fmt.Errorf("%w: page size %d is not a power of two", ErrCorrupt, h.PageSize)
	}
	if h.PageSize > MaxPageSize {
		return fmt.Errorf("%w: page size %d exceeds %d", ErrCorrupt, h.PageSize, MaxPageSize)
	}
	if want := pagesFor(h.Len, h.PageSize); h.Pages != want {
		return fmt.Errorf("%w: %d pages for %d elements of page size %d, want %d", ErrCorrupt, h.Pages, h.Len, h.PageSize, want)
	}
	return nil
}

func writeHeader(w io.Writer, h Header) error {
	if len(h.Codec) == 0 || len(h.Codec) > maxCodecName {
		return fmt.Errorf("snapshot: codec name %q must have 1..%d bytes", h.Codec, maxCodecName)
	}
	if h.PageSize > MaxPageSize {
		return fmt.Errorf("snapshot: page size %d exceeds %d", h.PageSize, MaxPageSize)
	}
	pageSize, err := conv.FromInt[uint32](h.PageSize)
	if err != nil {
		return fmt.Errorf("snapshot: page size: %w", err)
	}
	count, err := conv.FromInt[uint64](h.Len)
	if err != nil {
		return fmt.Errorf("snapshot: length: %w", err)
	}
	pages, err := conv.FromInt[uint32](h.Pages)
	if err != nil {
		return fmt.Errorf("snapshot: page count: %w", err)
	}

	buf := make([]byte, 0, len(Magic)+2+1+1+len(h.Codec)+4+8+4)
	buf = append(buf, Magic...)
	buf = binary.LittleEndian.AppendUint16(buf, h.Version)
	buf = append(buf, byte(h.Compression))
	buf = append(buf, byte(len(h.Codec)))
	buf = append(buf, h.Codec...)
	buf = binary.LittleEndian.AppendUint32(buf, pageSize)
	buf = binary.LittleEndian.AppendUint64(buf, count)
	buf = binary.LittleEndian.AppendUint32(buf, pages)

	_, err = w.Write(buf)
	return err
}

func readHeader(r io.Reader) (Header, error) {
	var fixed [len(Magic) + 2 + 1 + 1]byte
	if _, err := io.ReadFull(r, fixed[:]); err != nil {
		return Header{}, truncated("header", err)
	}
	if string(fixed[:len(Magic)]) != Magic {
		return Header{}, fmt.Errorf("%w: bad magic %q", ErrCorrupt, fixed[:len(Magic)])
	}

	h := Header{
		Version:     binary.LittleEndian.Uint16(fixed[4:]),
		Compression: Compression(fixed[6]),
	}
	if h.Version == 0 || h.Version > Version {
		return Header{}, fmt.Errorf("%w: %d (supported up to %d)", ErrUnsupportedVersion, h.Version, Version)
	}
	if !h.Compression.Valid() {
		return Header{}, fmt.Errorf("%w: unknown compression %d", ErrCorrupt, fixed[6])
	}

	name := make([]byte, fixed[7])
	if _, err := io.ReadFull(r, name); err != nil {
		return Header{}, truncated("codec name", err)
	}
	h.Codec = string(name)

	var sizes [4 + 8 + 4]byte
	if _, err := io.ReadFull(r, sizes[:]); err != nil {
		return Header{}, truncated("header", err)
	}

	var err error
	if h.PageSize, err = conv.ToInt(binary.LittleEndian.Uint32(sizes[0:])); err != nil {
		return Header{}, fmt.Errorf("%w: page size: %v", ErrCorrupt, err)
	}
	if h.Len, err = conv.ToInt(binary.LittleEndian.Uint64(sizes[4:])); err != nil {
		return Header{}, fmt.Errorf("%w: length: %v", ErrCorrupt, err)
	}
	if h.Pages, err = conv.ToInt(binary.LittleEndian.Uint32(sizes[12:])); err != nil {
		return Header{}, fmt.Errorf("%w: page count: %v", ErrCorrupt, err)
	}

	if err := h.validate(); err != nil {
		return Header{}, err
	}
	return h, nil
}

// readRawBlock reads one compressed block including its header.
func readRawBlock(r io.Reader) ([]byte, error) {
	var hdr [compress.HeaderSize]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, truncated("block header", err)
	}
	n := binary.LittleEndian.Uint32(hdr[4:])
	if n == 0 {
		n = binary.LittleEndian.Uint32(hdr[0:])
	}
	size, err := conv.ToInt(n)
	if err != nil {
		return nil, fmt.Errorf("%w: block size: %v", ErrCorrupt, err)
	}

	block := make([]byte, compress.HeaderSize+size)
	copy(block, hdr[:])
	if _, err := io.ReadFull(r, block[compress.HeaderSize:]); err != nil {
		return nil, truncated("block", err)
	}
	return block, nil
}

func truncated(what string, err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, compress.ErrCorruptBlock) {
		return fmt.Errorf("%w: %s: %v", ErrCorrupt, what, err)
	}
	return err
}
