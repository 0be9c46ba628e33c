// Package container implements the paged storage behind chunkvec.Vector.
//
// Pages[T] keeps elements in fixed-capacity pages. A page is allocated once,
// at its full capacity, and is never resized or copied by growth: appending
// only ever adds a new page header to the page table. Pointers returned by At
// therefore stay stable until the element itself is removed or moved by a
// compaction (RemoveRange, Compact, InsertAt).
//
// Page sizes are rounded up to a power of two so that a linear index maps to
// (page, offset) with a shift and a mask.
//
// Pages carries no validity bookkeeping. It only guarantees the shape of each
// mutation (which positions moved), which the caller reports to its tracker.
package container
