package compress

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Type defines the compression algorithm used.
type Type uint8

const (
	// None stores blocks uncompressed.
	None Type = 0
	// LZ4 is fast block compression, good for hot data.
	LZ4 Type = 1
	// ZSTD has a better ratio, good for cold data.
	ZSTD Type = 2
)

// HeaderSize is the size of the block header.
const HeaderSize = 8

var (
	// ErrCorruptBlock is returned for truncated or inconsistent blocks.
	ErrCorruptBlock = errors.New("compress: corrupt block")
	// ErrBlockTooLarge is returned for inputs that do not fit the header.
	ErrBlockTooLarge = errors.New("compress: block too large")
)

func (t Type) String() string {
	switch t {
	case None:
		return "none"
	case LZ4:
		return "lz4"
	case ZSTD:
		return "zstd"
	default:
		return fmt.Sprintf("compress.Type(%d)", uint8(t))
	}
}

// Valid reports whether t is a known algorithm.
func (t Type) Valid() bool { return t <= ZSTD }

// ZSTD encoder/decoder pools for efficiency
var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() *zstd.Encoder {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder)
	}
	enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	return enc
}

func putZstdEncoder(enc *zstd.Encoder) {
	zstdEncoderPool.Put(enc)
}

func getZstdDecoder() *zstd.Decoder {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder)
	}
	dec, _ := zstd.NewReader(nil)
	return dec
}

func putZstdDecoder(dec *zstd.Decoder) {
	zstdDecoderPool.Put(dec)
}

// Encode returns data as a block with header. The result never aliases data.
func Encode(data []byte, t Type) ([]byte, error) {
	if len(data) > math.MaxUint32 {
		return nil, ErrBlockTooLarge
	}

	var compressed []byte
	var err error

	switch t {
	case None:
	case LZ4:
		compressed, err = encodeLZ4(data)
	case ZSTD:
		compressed = encodeZSTD(data)
	default:
		return nil, fmt.Errorf("compress: unknown type %d", uint8(t))
	}
	if err != nil {
		return nil, err
	}

	if len(compressed) == 0 || float64(len(compressed)) > float64(len(data))*0.9 {
		out := make([]byte, HeaderSize+len(data))
		binary.LittleEndian.PutUint32(out[0:], uint32(len(data))) //nolint:gosec // checked above
		binary.LittleEndian.PutUint32(out[4:], 0)                 // 0 = uncompressed
		copy(out[HeaderSize:], data)
		return out, nil
	}

	out := make([]byte, HeaderSize+len(compressed))
	binary.LittleEndian.PutUint32(out[0:], uint32(len(data)))       //nolint:gosec // checked above
	binary.LittleEndian.PutUint32(out[4:], uint32(len(compressed))) //nolint:gosec // smaller than data
	copy(out[HeaderSize:], compressed)
	return out, nil
}

func encodeLZ4(data []byte) ([]byte, error) {
	compressed := make([]byte, lz4.CompressBlockBound(len(data)))

	n, err := lz4.CompressBlock(data, compressed, nil)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil // Incompressible
	}
	return compressed[:n], nil
}

func encodeZSTD(data []byte) []byte {
	enc := getZstdEncoder()
	defer putZstdEncoder(enc)

	return enc.EncodeAll(data, nil)
}

// Decode decodes one block and returns the payload and the number of bytes
// of block consumed.
func Decode(block []byte, t Type) ([]byte, int, error) {
	if len(block) < HeaderSize {
		return nil, 0, fmt.Errorf("%w: %d bytes, header needs %d", ErrCorruptBlock, len(block), HeaderSize)
	}
	uncompressed := binary.LittleEndian.Uint32(block[0:])
	compressed := binary.LittleEndian.Uint32(block[4:])

	if compressed == 0 {
		end := HeaderSize + int(uncompressed)
		if len(block) < end {
			return nil, 0, fmt.Errorf("%w: stored block truncated", ErrCorruptBlock)
		}
		out := make([]byte, uncompressed)
		copy(out, block[HeaderSize:end])
		return out, end, nil
	}

	end := HeaderSize + int(compressed)
	if len(block) < end {
		return nil, 0, fmt.Errorf("%w: compressed block truncated", ErrCorruptBlock)
	}
	out, err := decodePayload(block[HeaderSize:end], int(uncompressed), t)
	if err != nil {
		return nil, 0, err
	}
	return out, end, nil
}

// ReadBlock reads one block from r.
func ReadBlock(r io.Reader, t Type) ([]byte, error) {
	var hdr [HeaderSize]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, err
	}
	uncompressed := binary.LittleEndian.Uint32(hdr[0:])
	compressed := binary.LittleEndian.Uint32(hdr[4:])

	if compressed == 0 {
		out := make([]byte, uncompressed)
		if _, err := io.ReadFull(r, out); err != nil {
			return nil, truncated(err)
		}
		return out, nil
	}

	payload := make([]byte, compressed)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, truncated(err)
	}
	return decodePayload(payload, int(uncompressed), t)
}

func truncated(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: %v", ErrCorruptBlock, err)
	}
	return err
}

func decodePayload(payload []byte, size int, t Type) ([]byte, error) {
	out := make([]byte, size)

	switch t {
	case LZ4:
		n, err := lz4.UncompressBlock(payload, out)
		if err != nil {
			return nil, fmt.Errorf("%w: lz4: %v", ErrCorruptBlock, err)
		}
		if n != size {
			return nil, fmt.Errorf("%w: decompressed size mismatch", ErrCorruptBlock)
		}
		return out, nil

	case ZSTD:
		dec := getZstdDecoder()
		defer putZstdDecoder(dec)

		decoded, err := dec.DecodeAll(payload, out[:0])
		if err != nil {
			return nil, fmt.Errorf("%w: zstd: %v", ErrCorruptBlock, err)
		}
		if len(decoded) != size {
			return nil, fmt.Errorf("%w: decompressed size mismatch", ErrCorruptBlock)
		}
		return decoded, nil

	default:
		return nil, fmt.Errorf("%w: compressed payload for type %s", ErrCorruptBlock, t)
	}
}
