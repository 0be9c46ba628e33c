package chunkvec

import (
	"context"
	"fmt"
	"iter"
	"strings"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/chunkvec/internal/container"
	"github.com/hupe1980/chunkvec/internal/validity"
)

// PageAllocator supplies and reclaims page storage for a Vector.
// AllocPage must return a zeroed slice with len == cap == size.
type PageAllocator[T any] interface {
	AllocPage(size int) ([]T, error)
	FreePage(page []T)
}

// Vector is a dynamic array stored in fixed-size pages.
//
// Pages are never moved once allocated, so growth keeps pointers and
// iterators below the old length valid. A Vector is not safe for concurrent
// use.
type Vector[T any] struct {
	pages   *container.Pages[T]
	tracker *validity.Tracker
	opts    options
}

// New creates an empty Vector.
func New[T any](optFns ...Option) *Vector[T] {
	o := defaultOptions()
	for _, fn := range optFns {
		fn(&o)
	}
	return newWithOptions[T](o)
}

func newWithOptions[T any](o options) *Vector[T] {
	var alloc container.PageAllocator[T] = container.HeapAllocator[T]{}
	if o.allocator != nil {
		a, ok := o.allocator.(PageAllocator[T])
		if !ok {
			var zero T
			panic(fmt.Sprintf("chunkvec: allocator %T does not allocate pages of %T", o.allocator, zero))
		}
		alloc = a
	}
	if o.budget != nil {
		alloc = container.NewBudgetedAllocator[T](o.budget, alloc)
	}

	return &Vector[T]{
		pages:   container.NewPages[T](o.pageSize, alloc),
		tracker: validity.New(),
		opts:    o,
	}
}

// From creates a Vector holding a copy of values.
func From[T any](values []T, optFns ...Option) *Vector[T] {
	v := New[T](optFns...)
	v.Append(values...)
	return v
}

// Clone returns a copy with the same configuration and fresh generation.
func (v *Vector[T]) Clone() *Vector[T] {
	c := newWithOptions[T](v.opts)
	c.copyFrom("Clone", v)
	return c
}

// Len returns the number of elements.
func (v *Vector[T]) Len() int { return v.pages.Len() }

// Empty reports whether the vector has no elements.
func (v *Vector[T]) Empty() bool { return v.pages.Len() == 0 }

// Cap returns how many elements fit without allocating a page.
func (v *Vector[T]) Cap() int { return v.pages.Cap() }

// PageSize returns the number of elements per page.
func (v *Vector[T]) PageSize() int { return v.pages.PageSize() }

// PageCount returns the number of allocated pages.
func (v *Vector[T]) PageCount() int { return v.pages.PageCount() }

// Page returns the live elements of page i. The slice aliases the vector's
// storage and must not be retained across mutations.
func (v *Vector[T]) Page(i int) []T { return v.pages.Page(i) }

// Generation returns the number of invalidating mutations so far.
// It is always 0 when checks are compiled out.
func (v *Vector[T]) Generation() uint64 { return v.tracker.Generation() }

// At returns element i.
func (v *Vector[T]) At(i int) T {
	if DebugChecks && (i < 0 || i >= v.Len()) {
		v.fail(KindOutOfRange, "At", i)
		var zero T
		return zero
	}
	return *v.pages.At(i)
}

// Ref returns a pointer to element i. The pointer stays valid across growth
// but not across removal of element i or anything before it.
func (v *Vector[T]) Ref(i int) *T {
	if DebugChecks && (i < 0 || i >= v.Len()) {
		v.fail(KindOutOfRange, "Ref", i)
		return nil
	}
	return v.pages.At(i)
}

// Set overwrites element i. Iterators stay valid and observe the new value.
func (v *Vector[T]) Set(i int, value T) {
	if DebugChecks && (i < 0 || i >= v.Len()) {
		v.fail(KindOutOfRange, "Set", i)
		return
	}
	*v.pages.At(i) = value
}

// Front returns the first element.
func (v *Vector[T]) Front() T { return v.At(0) }

// Back returns the last element.
func (v *Vector[T]) Back() T { return v.At(v.Len() - 1) }

// Slice returns a copy of the elements.
func (v *Vector[T]) Slice() []T {
	out := make([]T, 0, v.Len())
	for i := 0; i < v.pages.PageCount(); i++ {
		out = append(out, v.pages.Page(i)...)
	}
	return out
}

// String formats the elements like a slice.
func (v *Vector[T]) String() string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i := 0; i < v.Len(); i++ {
		if i > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprint(&sb, *v.pages.At(i))
	}
	sb.WriteByte(']')
	return sb.String()
}

// Begin returns an iterator at the first element.
func (v *Vector[T]) Begin() Iterator[T] { return v.iteratorAt(0) }

// End returns the past-the-end iterator.
func (v *Vector[T]) End() Iterator[T] { return v.iteratorAt(v.Len()) }

// CBegin returns a read-only iterator at the first element.
func (v *Vector[T]) CBegin() ConstIterator[T] { return ConstIterator[T]{it: v.Begin()} }

// CEnd returns the read-only past-the-end iterator.
func (v *Vector[T]) CEnd() ConstIterator[T] { return ConstIterator[T]{it: v.End()} }

// IteratorAt returns an iterator at position i, 0 <= i <= Len.
func (v *Vector[T]) IteratorAt(i int) Iterator[T] {
	if DebugChecks && (i < 0 || i > v.Len()) {
		v.fail(KindOutOfRange, "IteratorAt", i)
		return v.End()
	}
	return v.iteratorAt(i)
}

func (v *Vector[T]) iteratorAt(i int) Iterator[T] {
	return Iterator[T]{owner: v, pos: i, gen: v.tracker.Generation()}
}

// All yields index/value pairs in order. A mutation inside the loop body that
// invalidates the next position is reported as KindInvalidated and ends the
// loop.
func (v *Vector[T]) All() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		gen := v.tracker.Generation()
		for i := 0; i < v.Len(); i++ {
			if DebugChecks && !v.tracker.IsValid(gen, i) {
				v.report(v.staleError("All", i, gen))
				return
			}
			if !yield(i, *v.pages.At(i)) {
				return
			}
		}
	}
}

// Values yields the elements in order, with the same checks as All.
func (v *Vector[T]) Values() iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, value := range v.All() {
			if !yield(value) {
				return
			}
		}
	}
}

// Backward yields index/value pairs from the last element to the first.
func (v *Vector[T]) Backward() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		gen := v.tracker.Generation()
		for i := v.Len() - 1; i >= 0; i-- {
			if i >= v.Len() || (DebugChecks && !v.tracker.IsValid(gen, i)) {
				if DebugChecks {
					v.report(v.staleError("Backward", i, gen))
				}
				return
			}
			if !yield(i, *v.pages.At(i)) {
				return
			}
		}
	}
}

// PushBack appends value. It never invalidates iterators, even when a new
// page is allocated. It panics with an *AllocationError if the allocator
// fails; use TryPushBack to get the error instead.
func (v *Vector[T]) PushBack(value T) {
	if err := v.TryPushBack(value); err != nil {
		panic(err)
	}
}

// TryPushBack appends value and returns allocation failures.
func (v *Vector[T]) TryPushBack(value T) error {
	before := v.pages.Stats()
	if err := v.pages.Append(value); err != nil {
		return &AllocationError{Op: "PushBack", cause: err}
	}
	v.notePages("PushBack", before)
	return nil
}

// Append pushes every value in order.
func (v *Vector[T]) Append(values ...T) {
	if len(values) == 0 {
		return
	}
	before := v.pages.Stats()
	if err := v.pages.Reserve(v.Len() + len(values)); err != nil {
		panic(&AllocationError{Op: "Append", cause: err})
	}
	for _, value := range values {
		// Capacity is reserved, so Append cannot fail here.
		_ = v.pages.Append(value)
	}
	v.notePages("Append", before)
}

// Reserve allocates pages so that n elements fit. Iterators stay valid.
func (v *Vector[T]) Reserve(n int) error {
	before := v.pages.Stats()
	if err := v.pages.Reserve(n); err != nil {
		return &AllocationError{Op: "Reserve", cause: err}
	}
	v.notePages("Reserve", before)
	return nil
}

// ShrinkToFit releases pages past the last element. Iterators stay valid.
func (v *Vector[T]) ShrinkToFit() {
	before := v.pages.Stats()
	v.pages.ShrinkToFit()
	v.notePages("ShrinkToFit", before)
}

// PopBack removes and returns the last element. Iterators at the old last
// position are invalidated.
func (v *Vector[T]) PopBack() T {
	n := v.Len()
	if n == 0 {
		if DebugChecks {
			v.fail(KindOutOfRange, "PopBack", -1)
		}
		var zero T
		return zero
	}
	value := *v.pages.At(n - 1)
	v.pages.Truncate(n-1, false)
	v.invalidateFrom("PopBack", n-1)
	return value
}

// Erase removes the element at it and returns an iterator at the same
// position, now holding the successor. Iterators at or past it are
// invalidated.
func (v *Vector[T]) Erase(it Iterator[T]) Iterator[T] {
	if DebugChecks && !v.checkDereferenceable("Erase", it) {
		return v.End()
	}
	v.pages.RemoveRange(it.pos, 1)
	v.invalidateFrom("Erase", it.pos)
	return v.iteratorAt(it.pos)
}

// EraseRange removes [first, last) and returns an iterator at first's
// position. Iterators at or past first are invalidated. An empty range is not
// a mutation.
func (v *Vector[T]) EraseRange(first, last Iterator[T]) Iterator[T] {
	if DebugChecks {
		if !v.checkOwned("EraseRange", first) || !v.checkOwned("EraseRange", last) {
			return v.End()
		}
		if first.pos > last.pos {
			v.fail(KindInvalidRange, "EraseRange", first.pos)
			return v.End()
		}
		if first.pos < 0 || last.pos > v.Len() {
			v.fail(KindOutOfRange, "EraseRange", last.pos)
			return v.End()
		}
	}
	if first.pos == last.pos {
		return v.iteratorAt(first.pos)
	}
	v.pages.RemoveRange(first.pos, last.pos-first.pos)
	v.invalidateFrom("EraseRange", first.pos)
	return v.iteratorAt(first.pos)
}

// EraseUnsorted removes the element at it by moving the last element into
// its slot. The returned iterator refers to the moved value, or is End when
// it was the last element. Iterators at or past it are invalidated.
func (v *Vector[T]) EraseUnsorted(it Iterator[T]) Iterator[T] {
	if DebugChecks && !v.checkDereferenceable("EraseUnsorted", it) {
		return v.End()
	}
	last := v.Len() - 1
	if it.pos != last {
		*v.pages.At(it.pos) = *v.pages.At(last)
	}
	v.pages.Truncate(last, false)
	v.invalidateFrom("EraseUnsorted", it.pos)
	return v.iteratorAt(it.pos)
}

// Insert places value before it and returns an iterator at the inserted
// element. Iterators at or past it are invalidated.
func (v *Vector[T]) Insert(it Iterator[T], value T) Iterator[T] {
	if DebugChecks {
		if !v.checkOwned("Insert", it) {
			return v.End()
		}
		if it.pos < 0 || it.pos > v.Len() {
			v.fail(KindOutOfRange, "Insert", it.pos)
			return v.End()
		}
	}
	before := v.pages.Stats()
	if err := v.pages.InsertAt(it.pos, value); err != nil {
		panic(&AllocationError{Op: "Insert", cause: err})
	}
	v.notePages("Insert", before)
	v.invalidateFrom("Insert", it.pos)
	return v.iteratorAt(it.pos)
}

// EraseSet removes every position contained in set and returns how many were
// removed. Iterators at or past the lowest removed position are invalidated.
// A position >= Len is reported as KindOutOfRange and nothing is removed.
func (v *Vector[T]) EraseSet(set *roaring.Bitmap) int {
	if set == nil || set.IsEmpty() {
		return 0
	}
	if maxPos := int(set.Maximum()); maxPos >= v.Len() {
		if DebugChecks {
			v.fail(KindOutOfRange, "EraseSet", maxPos)
		}
		return 0
	}

	positions := set.Iterator()
	next := int(positions.Next())
	first, removed := v.pages.Compact(func(i int) bool {
		if i != next {
			return true
		}
		if positions.HasNext() {
			next = int(positions.Next())
		} else {
			next = -1
		}
		return false
	})
	if removed > 0 {
		v.invalidateFrom("EraseSet", first)
	}
	return removed
}

// EraseIf removes every element for which pred returns true and returns how
// many were removed. Iterators at or past the first removed position are
// invalidated.
func (v *Vector[T]) EraseIf(pred func(T) bool) int {
	first, removed := v.pages.Compact(func(i int) bool {
		return !pred(*v.pages.At(i))
	})
	if removed > 0 {
		v.invalidateFrom("EraseIf", first)
	}
	return removed
}

// Resize sets the length to n, appending zero values when growing.
// Shrinking invalidates iterators at or past n; growing invalidates nothing.
func (v *Vector[T]) Resize(n int) {
	var zero T
	v.resize("Resize", n, zero)
}

// ResizeWith is Resize with an explicit fill value for new elements.
func (v *Vector[T]) ResizeWith(n int, fill T) {
	v.resize("ResizeWith", n, fill)
}

func (v *Vector[T]) resize(op string, n int, fill T) {
	if n < 0 {
		if DebugChecks {
			v.fail(KindOutOfRange, op, n)
		}
		return
	}
	cur := v.Len()
	switch {
	case n < cur:
		v.pages.Truncate(n, false)
		v.invalidateFrom(op, n)
	case n > cur:
		before := v.pages.Stats()
		if err := v.pages.Grow(n-cur, fill); err != nil {
			panic(&AllocationError{Op: op, cause: err})
		}
		v.notePages(op, before)
	}
}

// Clear removes every element, releases all pages and invalidates every
// iterator.
func (v *Vector[T]) Clear() {
	before := v.pages.Stats()
	v.pages.Clear()
	v.notePages("Clear", before)
	v.invalidateAll("Clear")
}

// Free releases storage and invalidates every iterator. It is the explicit
// end of the vector's life; the vector remains usable as an empty vector.
func (v *Vector[T]) Free() {
	before := v.pages.Stats()
	v.pages.Clear()
	v.notePages("Free", before)
	v.invalidateAll("Free")
}

// Assign replaces the contents with a copy of src. Every iterator of v is
// invalidated; iterators of src are untouched.
func (v *Vector[T]) Assign(src *Vector[T]) {
	if src == v {
		return
	}
	v.copyFrom("Assign", src)
	v.invalidateAll("Assign")
}

func (v *Vector[T]) copyFrom(op string, src *Vector[T]) {
	before := v.pages.Stats()
	v.pages.Clear()
	if err := v.pages.Reserve(src.Len()); err != nil {
		panic(&AllocationError{Op: op, cause: err})
	}
	for i := 0; i < src.pages.PageCount(); i++ {
		for _, value := range src.pages.Page(i) {
			_ = v.pages.Append(value)
		}
	}
	v.notePages(op, before)
}

// MoveFrom takes src's pages. src is left empty. Every iterator of both
// vectors is invalidated. Page size and allocator travel with the pages.
func (v *Vector[T]) MoveFrom(src *Vector[T]) {
	if src == v {
		return
	}
	before := v.pages.Stats()
	v.pages.Clear()
	v.notePages("MoveFrom", before)
	v.pages.Swap(src.pages)
	v.invalidateAll("MoveFrom")
	src.invalidateAll("MoveFrom")
}

// Swap exchanges contents with other. Every iterator of both vectors is
// invalidated.
func (v *Vector[T]) Swap(other *Vector[T]) {
	if other == v {
		return
	}
	v.pages.Swap(other.pages)
	v.invalidateAll("Swap")
	other.invalidateAll("Swap")
}

func (v *Vector[T]) invalidateFrom(op string, threshold int) {
	if !DebugChecks {
		return
	}
	v.tracker.BumpPartial(threshold)
	v.opts.metrics.RecordInvalidation(InvalidationPartial, threshold)
	if ctx := context.Background(); v.opts.logger.debugEnabled(ctx) {
		v.opts.logger.LogInvalidation(ctx, op, v.tracker.Generation(), threshold)
	}
}

func (v *Vector[T]) invalidateAll(op string) {
	if !DebugChecks {
		return
	}
	v.tracker.BumpFull()
	v.opts.metrics.RecordInvalidation(InvalidationFull, -1)
	if ctx := context.Background(); v.opts.logger.debugEnabled(ctx) {
		v.opts.logger.LogInvalidation(ctx, op, v.tracker.Generation(), -1)
	}
}

func (v *Vector[T]) notePages(op string, before container.Stats) {
	after := v.pages.Stats()
	allocated := int(after.PagesAllocated - before.PagesAllocated)
	released := int(after.PagesReleased - before.PagesReleased)
	if allocated == 0 && released == 0 {
		return
	}
	v.opts.metrics.RecordPages(allocated, released)
	if ctx := context.Background(); v.opts.logger.debugEnabled(ctx) {
		v.opts.logger.LogPages(ctx, op, allocated, released, after.ActivePages)
	}
}

// checkOwned verifies that it belongs to v and survived every mutation
// since its adoption.
func (v *Vector[T]) checkOwned(op string, it Iterator[T]) bool {
	if it.owner != v {
		v.fail(KindCrossContainer, op, it.pos)
		return false
	}
	if !v.tracker.IsValid(it.gen, it.pos) {
		v.report(v.staleError(op, it.pos, it.gen))
		return false
	}
	return true
}

func (v *Vector[T]) checkDereferenceable(op string, it Iterator[T]) bool {
	if !v.checkOwned(op, it) {
		return false
	}
	if it.pos < 0 || it.pos >= v.Len() {
		v.fail(KindOutOfRange, op, it.pos)
		return false
	}
	return true
}

func (v *Vector[T]) checkError(kind ErrorKind, op string, pos int) *CheckError {
	return &CheckError{
		Kind:       kind,
		Op:         op,
		Position:   pos,
		Size:       v.Len(),
		Generation: v.tracker.Generation(),
	}
}

// staleError describes a snapshot taken at gen that no longer covers pos.
func (v *Vector[T]) staleError(op string, pos int, gen uint64) *CheckError {
	err := v.checkError(KindInvalidated, op, pos)
	err.Threshold = v.tracker.MinThreshold(gen)
	return err
}

func (v *Vector[T]) fail(kind ErrorKind, op string, pos int) {
	v.report(v.checkError(kind, op, pos))
}

func (v *Vector[T]) report(err *CheckError) {
	v.opts.metrics.RecordCheckFailure(err.Kind)
	v.opts.reporter.Report(err)
}

// Equal reports whether a and b hold the same elements in the same order.
func Equal[T comparable](a, b *Vector[T]) bool {
	if a.Len() != b.Len() {
		return false
	}
	for i := 0; i < a.Len(); i++ {
		if *a.pages.At(i) != *b.pages.At(i) {
			return false
		}
	}
	return true
}
