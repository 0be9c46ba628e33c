package chunkvec

import (
	"context"
	"sync"
)

// Reporter receives failed checks. Report may panic to abort the caller,
// which is what PanicReporter does. If Report returns, the checked operation
// performs no mutation and returns a zero value or End().
type Reporter interface {
	Report(err *CheckError)
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(err *CheckError)

// Report implements Reporter.
func (f ReporterFunc) Report(err *CheckError) { f(err) }

// PanicReporter panics with the *CheckError. It is the default.
type PanicReporter struct{}

// Report implements Reporter.
func (PanicReporter) Report(err *CheckError) { panic(err) }

// RecordingReporter collects failed checks instead of aborting.
// It is safe for concurrent use.
type RecordingReporter struct {
	mu   sync.Mutex
	errs []*CheckError
}

// Report implements Reporter.
func (r *RecordingReporter) Report(err *CheckError) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errs = append(r.errs, err)
}

// Errors returns the collected checks, oldest first.
func (r *RecordingReporter) Errors() []*CheckError {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*CheckError, len(r.errs))
	copy(out, r.errs)
	return out
}

// Last returns the most recent check or nil.
func (r *RecordingReporter) Last() *CheckError {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.errs) == 0 {
		return nil
	}
	return r.errs[len(r.errs)-1]
}

// Len returns the number of collected checks.
func (r *RecordingReporter) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.errs)
}

// Reset drops collected checks.
func (r *RecordingReporter) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errs = nil
}

type logReporter struct {
	logger *Logger
	next   Reporter
}

// NewLogReporter logs every failed check at error level, then hands it to
// next (PanicReporter when nil).
func NewLogReporter(logger *Logger, next Reporter) Reporter {
	if logger == nil {
		logger = NoopLogger()
	}
	if next == nil {
		next = PanicReporter{}
	}
	return &logReporter{logger: logger, next: next}
}

func (r *logReporter) Report(err *CheckError) {
	r.logger.LogCheckFailure(context.Background(), err)
	r.next.Report(err)
}

// Catch runs fn and returns the *CheckError it panicked with, or nil.
// Other panics propagate.
func Catch(fn func()) (err *CheckError) {
	defer func() {
		if r := recover(); r != nil {
			ce, ok := r.(*CheckError)
			if !ok {
				panic(r)
			}
			err = ce
		}
	}()
	fn()
	return nil
}
