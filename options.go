package chunkvec

import (
	"github.com/hupe1980/chunkvec/resource"
)

type options struct {
	pageSize  int
	reporter  Reporter
	logger    *Logger
	metrics   MetricsCollector
	budget    *resource.Controller
	allocator any
}

func defaultOptions() options {
	return options{
		reporter: PanicReporter{},
		logger:   NoopLogger(),
		metrics:  NoopMetricsCollector{},
	}
}

// Option configures a Vector.
type Option func(*options)

// WithPageSize sets the number of elements per page. Values are rounded up to
// a power of two; n <= 0 selects the default of 1024.
func WithPageSize(n int) Option {
	return func(o *options) {
		o.pageSize = n
	}
}

// WithReporter sets where failed checks go.
//
// If nil is passed, PanicReporter is used.
func WithReporter(r Reporter) Option {
	return func(o *options) {
		if r == nil {
			r = PanicReporter{}
		}
		o.reporter = r
	}
}

// WithLogger sets the logger for page and invalidation events (debug level).
//
// If nil is passed, logging is disabled.
func WithLogger(l *Logger) Option {
	return func(o *options) {
		if l == nil {
			l = NoopLogger()
		}
		o.logger = l
	}
}

// WithMetricsCollector configures a metrics collector.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &chunkvec.BasicMetricsCollector{}
//	v := chunkvec.New[int](chunkvec.WithMetricsCollector(metrics))
//	// ... later
//	stats := metrics.GetStats()
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metrics = mc
	}
}

// WithMemoryBudget charges page memory against rc. Allocations beyond the
// budget fail with resource.ErrMemoryLimitExceeded.
func WithMemoryBudget(rc *resource.Controller) Option {
	return func(o *options) {
		o.budget = rc
	}
}

// WithAllocator sets the page allocator. a must implement PageAllocator[T]
// for the vector's element type T; New panics otherwise.
func WithAllocator(a any) Option {
	return func(o *options) {
		o.allocator = a
	}
}
