package snapshot

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/chunkvec"
	"github.com/hupe1980/chunkvec/codec"
	"github.com/hupe1980/chunkvec/internal/compress"
	"github.com/hupe1980/chunkvec/internal/hash"
	"github.com/hupe1980/chunkvec/resource"
)

// Encode writes v to w and returns the number of bytes written.
//
// Pages are marshalled and compressed in parallel and written in order. v must
// not be mutated until Encode returns.
func Encode[T any](ctx context.Context, w io.Writer, v *chunkvec.Vector[T], optFns ...Option) (int64, error) {
	o := applyOptions(optFns)
	if !o.compression.Valid() {
		return 0, fmt.Errorf("snapshot: unknown compression %d", uint8(o.compression))
	}

	h := Header{
		Version:     Version,
		Compression: o.compression,
		Codec:       o.codec.Name(),
		PageSize:    v.PageSize(),
		Len:         v.Len(),
	}
	h.Pages = pagesFor(h.Len, h.PageSize)

	rw := resource.NewRateLimitedWriter(ctx, w, o.rc)
	hw := hash.NewWriter(rw)

	if err := writeHeader(hw, h); err != nil {
		return hw.Written(), err
	}

	// Encode a window of pages in parallel, then write it in order, so at most
	// one window of encoded blocks is held in memory.
	window := max(1, o.concurrency) * 2
	blocks := make([][]byte, window)
	for start := 0; start < h.Pages; start += window {
		if err := ctx.Err(); err != nil {
			return hw.Written(), err
		}
		end := min(start+window, h.Pages)

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(o.concurrency)
		for i := start; i < end; i++ {
			g.Go(func() error {
				if err := o.rc.AcquireBackground(gctx); err != nil {
					return err
				}
				defer o.rc.ReleaseBackground()

				block, err := encodePage(o.codec, v.Page(i), o.compression)
				if err != nil {
					return fmt.Errorf("snapshot: page %d: %w", i, err)
				}
				blocks[i-start] = block
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return hw.Written(), err
		}

		for i := range end - start {
			if _, err := hw.Write(blocks[i]); err != nil {
				return hw.Written(), err
			}
			blocks[i] = nil
		}
	}

	var trailer [trailerSize]byte
	binary.LittleEndian.PutUint32(trailer[:], hw.Sum32())
	if _, err := rw.Write(trailer[:]); err != nil {
		return hw.Written(), err
	}
	return hw.Written() + trailerSize, nil
}

func encodePage[T any](c codec.Codec, page []T, t Compression) ([]byte, error) {
	data, err := c.Marshal(page)
	if err != nil {
		return nil, err
	}
	return compress.Encode(data, t)
}

func decodePage[T any](c codec.Codec, block []byte, t Compression, want int) ([]T, error) {
	data, _, err := compress.Decode(block, t)
	if err != nil {
		return nil, truncated("block", err)
	}
	return unmarshalPage[T](c, data, want)
}

func unmarshalPage[T any](c codec.Codec, data []byte, want int) ([]T, error) {
	var page []T
	if err := c.Unmarshal(data, &page); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorrupt, c.Name(), err)
	}
	if len(page) != want {
		return nil, fmt.Errorf("%w: page holds %d elements, want %d", ErrCorrupt, len(page), want)
	}
	return page, nil
}

// Decode reads a snapshot written by Encode. The vector gets the stored page
// size and the options given by WithVectorOptions.
func Decode[T any](ctx context.Context, r io.Reader, optFns ...Option) (*chunkvec.Vector[T], error) {
	o := applyOptions(optFns)

	rr := resource.NewRateLimitedReader(ctx, r, o.rc)
	hr := hash.NewReader(rr)

	h, err := readHeader(hr)
	if err != nil {
		return nil, err
	}
	c, err := resolveCodec(o, h.Codec)
	if err != nil {
		return nil, err
	}

	// Pages are allocated as blocks decode, never from the header alone.
	vopts := append(append([]chunkvec.Option{}, o.vectorOpts...), chunkvec.WithPageSize(h.PageSize))
	v := chunkvec.New[T](vopts...)

	if o.concurrency <= 1 {
		err = decodeSequential(ctx, hr, h, c, v)
	} else {
		err = decodeParallel(ctx, hr, h, c, v, o)
	}
	if err != nil {
		return nil, err
	}

	sum := hr.Sum32()
	var trailer [trailerSize]byte
	if _, err := io.ReadFull(rr, trailer[:]); err != nil {
		return nil, truncated("trailer", err)
	}
	if got := binary.LittleEndian.Uint32(trailer[:]); got != sum {
		return nil, fmt.Errorf("%w: stored %08x, computed %08x", ErrChecksum, got, sum)
	}
	return v, nil
}

func resolveCodec(o options, name string) (codec.Codec, error) {
	if o.codecSet {
		if o.codec.Name() != name {
			return nil, fmt.Errorf("%w: snapshot uses %q, want %q", ErrCodecMismatch, name, o.codec.Name())
		}
		return o.codec, nil
	}
	c, ok := codec.ByName(name)
	if !ok {
		return nil, fmt.Errorf("%w: unknown codec %q", ErrCodecMismatch, name)
	}
	return c, nil
}

func decodeSequential[T any](ctx context.Context, r io.Reader, h Header, c codec.Codec, v *chunkvec.Vector[T]) error {
	for i := range h.Pages {
		if err := ctx.Err(); err != nil {
			return err
		}
		data, err := compress.ReadBlock(r, h.Compression)
		if err != nil {
			return truncated("block", err)
		}
		page, err := unmarshalPage[T](c, data, h.pageLen(i))
		if err != nil {
			return fmt.Errorf("page %d: %w", i, err)
		}
		if err := appendPage(v, page); err != nil {
			return err
		}
	}
	return nil
}

// appendPage reserves room for page and appends it, so allocation failures
// come back as errors instead of panics.
func appendPage[T any](v *chunkvec.Vector[T], page []T) error {
	if err := v.Reserve(v.Len() + len(page)); err != nil {
		return err
	}
	v.Append(page...)
	return nil
}

func decodeParallel[T any](ctx context.Context, r io.Reader, h Header, c codec.Codec, v *chunkvec.Vector[T], o options) error {
	window := o.concurrency * 2
	pages := make([][]T, window)
	for start := 0; start < h.Pages; start += window {
		if err := ctx.Err(); err != nil {
			return err
		}
		end := min(start+window, h.Pages)

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(o.concurrency)
		var readErr error
		for i := start; i < end; i++ {
			// Blocks are read sequentially; only decoding runs in parallel.
			block, err := readRawBlock(r)
			if err != nil {
				readErr = err
				break
			}
			g.Go(func() error {
				if err := o.rc.AcquireBackground(gctx); err != nil {
					return err
				}
				defer o.rc.ReleaseBackground()

				page, err := decodePage[T](c, block, h.Compression, h.pageLen(i))
				if err != nil {
					return fmt.Errorf("page %d: %w", i, err)
				}
				pages[i-start] = page
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}
		if readErr != nil {
			return readErr
		}

		for i := range end - start {
			if err := appendPage(v, pages[i]); err != nil {
				return err
			}
			pages[i] = nil
		}
	}
	return nil
}

// ReadHeader reads only the header of a snapshot.
func ReadHeader(r io.Reader) (Header, error) {
	return readHeader(r)
}
