package snapshot

import (
	"runtime"

	"github.com/hupe1980/chunkvec"
	"github.com/hupe1980/chunkvec/codec"
	"github.com/hupe1980/chunkvec/resource"
)

type options struct {
	codec       codec.Codec
	codecSet    bool
	compression Compression
	concurrency int
	rc          *resource.Controller
	logger      *chunkvec.Logger
	vectorOpts  []chunkvec.Option
}

func defaultOptions() options {
	return options{
		codec:       codec.Default,
		compression: CompressionLZ4,
		concurrency: runtime.GOMAXPROCS(0),
		logger:      chunkvec.NoopLogger(),
	}
}

func applyOptions(optFns []Option) options {
	o := defaultOptions()
	for _, fn := range optFns {
		fn(&o)
	}
	if o.rc != nil {
		o.concurrency = min(o.concurrency, o.rc.MaxWorkers())
	}
	return o
}

// Option configures snapshot reads and writes.
type Option func(*options)

// WithCodec sets the page codec. Encode records its name; Decode rejects
// snapshots written with a different codec. Without it, Decode uses the codec
// named in the snapshot.
func WithCodec(c codec.Codec) Option {
	return func(o *options) {
		if c == nil {
			c = codec.Default
		}
		o.codec = c
		o.codecSet = true
	}
}

// WithCompression sets the block compression used by Encode.
func WithCompression(c Compression) Option {
	return func(o *options) {
		o.compression = c
	}
}

// WithConcurrency bounds how many pages are encoded or decoded at once.
// n <= 0 selects GOMAXPROCS.
func WithConcurrency(n int) Option {
	return func(o *options) {
		if n <= 0 {
			n = runtime.GOMAXPROCS(0)
		}
		o.concurrency = n
	}
}

// WithResourceController applies rc's IO rate limit to snapshot bytes and
// takes one of its background worker slots per page being encoded or decoded.
func WithResourceController(rc *resource.Controller) Option {
	return func(o *options) {
		o.rc = rc
	}
}

// WithLogger logs Save, Load and Commit results.
func WithLogger(l *chunkvec.Logger) Option {
	return func(o *options) {
		if l == nil {
			l = chunkvec.NoopLogger()
		}
		o.logger = l
	}
}

// WithVectorOptions configures vectors built by Decode. The page size is
// always taken from the snapshot.
func WithVectorOptions(opts ...chunkvec.Option) Option {
	return func(o *options) {
		o.vectorOpts = append(o.vectorOpts, opts...)
	}
}
