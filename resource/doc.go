// Package resource provides shared limits for page memory, background
// workers and snapshot IO.
//
// A single Controller may be shared by many vectors (one per goroutine). It is
// the only piece of the module that is safe for concurrent use by design:
//
//   - Memory: page allocations are charged against a hard budget. Acquire is
//     non-blocking and fails fast with ErrMemoryLimitExceeded.
//   - Workers: bounds how many snapshot pages are compressed in parallel.
//   - IO: token bucket applied to snapshot writers and readers.
//
//	rc := resource.NewController(resource.Config{
//	    MemoryLimitBytes:   64 << 20,
//	    IOLimitBytesPerSec: 32 << 20,
//	})
//	v := chunkvec.New[int](chunkvec.WithMemoryBudget(rc))
//
// ConfigFromEnv reads the same limits from CHUNKVEC_* environment variables.
//
// All methods treat a nil *Controller as "unlimited".
package resource
