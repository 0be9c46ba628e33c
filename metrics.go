package chunkvec

import "sync/atomic"

// InvalidationKind tells full from partial invalidation.
type InvalidationKind uint8

const (
	// InvalidationPartial invalidates positions >= a threshold.
	InvalidationPartial InvalidationKind = iota
	// InvalidationFull invalidates every outstanding iterator.
	InvalidationFull
)

// MetricsCollector receives container events.
// Implementations shared between vectors must be safe for concurrent use.
//
// Example Prometheus integration:
//
//	type PrometheusCollector struct {
//	    invalidations *prometheus.CounterVec
//	}
//
//	func (p *PrometheusCollector) RecordInvalidation(kind chunkvec.InvalidationKind, threshold int) {
//	    p.invalidations.WithLabelValues(kind.String()).Inc()
//	}
type MetricsCollector interface {
	// RecordInvalidation is called after each generation bump.
	// threshold is -1 for full invalidation.
	RecordInvalidation(kind InvalidationKind, threshold int)

	// RecordCheckFailure is called before a failed check is reported.
	RecordCheckFailure(kind ErrorKind)

	// RecordPages is called when pages were allocated or released.
	RecordPages(allocated, released int)
}

// String returns the kind name.
func (k InvalidationKind) String() string {
	if k == InvalidationFull {
		return "full"
	}
	return "partial"
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordInvalidation(InvalidationKind, int) {}
func (NoopMetricsCollector) RecordCheckFailure(ErrorKind)             {}
func (NoopMetricsCollector) RecordPages(int, int)                     {}

// BasicMetricsCollector provides simple in-memory metrics collection.
type BasicMetricsCollector struct {
	PartialInvalidations atomic.Int64
	FullInvalidations    atomic.Int64
	OutOfRange           atomic.Int64
	Invalidated          atomic.Int64
	CrossContainer       atomic.Int64
	InvalidRange         atomic.Int64
	PagesAllocated       atomic.Int64
	PagesReleased        atomic.Int64
}

// RecordInvalidation implements MetricsCollector.
func (b *BasicMetricsCollector) RecordInvalidation(kind InvalidationKind, _ int) {
	if kind == InvalidationFull {
		b.FullInvalidations.Add(1)
		return
	}
	b.PartialInvalidations.Add(1)
}

// RecordCheckFailure implements MetricsCollector.
func (b *BasicMetricsCollector) RecordCheckFailure(kind ErrorKind) {
	switch kind {
	case KindOutOfRange:
		b.OutOfRange.Add(1)
	case KindInvalidated:
		b.Invalidated.Add(1)
	case KindCrossContainer:
		b.CrossContainer.Add(1)
	case KindInvalidRange:
		b.InvalidRange.Add(1)
	}
}

// RecordPages implements MetricsCollector.
func (b *BasicMetricsCollector) RecordPages(allocated, released int) {
	b.PagesAllocated.Add(int64(allocated))
	b.PagesReleased.Add(int64(released))
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		PartialInvalidations: b.PartialInvalidations.Load(),
		FullInvalidations:    b.FullInvalidations.Load(),
		OutOfRange:           b.OutOfRange.Load(),
		Invalidated:          b.Invalidated.Load(),
		CrossContainer:       b.CrossContainer.Load(),
		InvalidRange:         b.InvalidRange.Load(),
		PagesAllocated:       b.PagesAllocated.Load(),
		PagesReleased:        b.PagesReleased.Load(),
	}
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	PartialInvalidations int64
	FullInvalidations    int64
	OutOfRange           int64
	Invalidated          int64
	CrossContainer       int64
	InvalidRange         int64
	PagesAllocated       int64
	PagesReleased        int64
}

// CheckFailures returns the sum of all failed checks.
func (s BasicMetricsStats) CheckFailures() int64 {
	return s.OutOfRange + s.Invalidated + s.CrossContainer + s.InvalidRange
}
