// Package chunkvec provides a paged dynamic array with checked iterators.
//
// A Vector stores its elements in fixed-size pages instead of one contiguous
// buffer. Pages are never moved once allocated, so growing the vector keeps
// pointers and iterators into existing elements usable.
//
// # Quick Start
//
//	v := chunkvec.New[int](chunkvec.WithPageSize(256))
//	v.Append(1, 2, 3)
//	for it := v.Begin(); !it.Equal(v.End()); it = it.Next() {
//	    fmt.Println(it.Value())
//	}
//
//	for i, x := range v.All() {
//	    fmt.Println(i, x)
//	}
//
// # Iterator Checks
//
// Every Iterator remembers the vector generation it was created at. Each
// structural mutation bumps the generation and records which positions it
// disturbed:
//
//	PushBack, Append, Reserve, ShrinkToFit, Set, Resize (grow)  none
//	PopBack                                     positions >= old Len-1
//	Erase, EraseUnsorted, Insert                positions >= the iterator
//	EraseRange                                  positions >= first
//	EraseSet, EraseIf                           positions >= lowest removed
//	Resize (shrink to n)                        positions >= n
//	Clear, Free, Assign (destination)           all
//	MoveFrom, Swap                              all, on both vectors
//
// Dereferencing, stepping and erasing check the iterator against that
// history. Failures are classified as ErrOutOfRange, ErrInvalidatedIterator,
// ErrCrossContainer or ErrInvalidRange and handed to the configured Reporter.
// The default reporter panics with a *CheckError:
//
//	err := chunkvec.Catch(func() { stale.Value() })
//	if errors.Is(err, chunkvec.ErrInvalidatedIterator) { ... }
//
// Use RecordingReporter to collect failures instead. When a reporter returns,
// the checked operation does nothing and yields a zero value or End().
//
// Iterators are plain values. Copying one keeps its snapshot; call Clone to
// re-adopt it at the current generation. There is no registry of live
// iterators, so dropping one needs no cleanup.
//
// # Release Builds
//
// Building with the chunkvec_release tag sets DebugChecks to false. All
// bookkeeping and checks compile away, iterators become raw positions and
// Generation stays 0.
//
//	go build -tags chunkvec_release ./...
//
// # Memory
//
// Pages come from a PageAllocator. WithMemoryBudget charges every page
// against a resource.Controller and fails allocations past the limit:
//
//	rc := resource.NewController(resource.Config{MemoryLimitBytes: 64 << 20})
//	v := chunkvec.New[Item](chunkvec.WithMemoryBudget(rc))
//	if err := v.TryPushBack(item); errors.Is(err, resource.ErrMemoryLimitExceeded) { ... }
//
// # Snapshots
//
// Package snapshot writes a vector's pages to a blobstore.BlobStore (local
// disk, memory, S3 or MinIO) as compressed blocks with a CRC32C trailer, and
// restores them. snapshot.Commit numbers snapshots and publishes them through
// a CURRENT pointer.
//
// Vectors are not safe for concurrent use.
package chunkvec
