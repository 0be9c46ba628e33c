package chunkvec

// Iterator is a position in a Vector together with the generation it was
// created at. The zero Iterator belongs to no vector and every checked
// operation on it fails.
//
// Iterators are values. Copying one with := keeps the original snapshot, so
// the copy is invalidated exactly when the original is. Use Clone to take a
// fresh snapshot at the same position.
type Iterator[T any] struct {
	owner *Vector[T]
	pos   int
	gen   uint64
}

// Pos returns the position. It performs no check.
func (it Iterator[T]) Pos() int { return it.pos }

// Owner returns the vector the iterator belongs to, or nil.
func (it Iterator[T]) Owner() *Vector[T] { return it.owner }

// Valid reports whether the iterator can be dereferenced: it has an owner,
// survived every mutation since it was created and points at an element.
// It never reports.
func (it Iterator[T]) Valid() bool {
	return it.check() == nil
}

// Check returns the error a dereference would report, without reporting it.
func (it Iterator[T]) Check() error {
	if err := it.check(); err != nil {
		return err
	}
	return nil
}

// Get returns the element or the check error, without reporting it.
func (it Iterator[T]) Get() (T, error) {
	if err := it.check(); err != nil {
		var zero T
		return zero, err
	}
	return *it.owner.pages.At(it.pos), nil
}

// check mirrors the dereference checks. Without checks compiled in only the
// bounds are verified, so Valid stays meaningful.
func (it Iterator[T]) check() *CheckError {
	if it.owner == nil {
		return &CheckError{Kind: KindInvalidated, Op: "Deref", Position: it.pos}
	}
	v := it.owner
	if it.pos == v.Len() {
		return v.checkError(KindOutOfRange, "Deref", it.pos)
	}
	if DebugChecks && !v.tracker.IsValid(it.gen, it.pos) {
		return v.staleError("Deref", it.pos, it.gen)
	}
	if it.pos < 0 || it.pos >= v.Len() {
		return v.checkError(KindOutOfRange, "Deref", it.pos)
	}
	return nil
}

func (it Iterator[T]) deref(op string) (*T, bool) {
	if !DebugChecks {
		return it.owner.pages.At(it.pos), true
	}
	if err := it.check(); err != nil {
		err.Op = op
		if it.owner == nil {
			PanicReporter{}.Report(err)
			return nil, false
		}
		it.owner.report(err)
		return nil, false
	}
	return it.owner.pages.At(it.pos), true
}

// Value returns the element the iterator points at.
func (it Iterator[T]) Value() T {
	p, ok := it.deref("Value")
	if !ok {
		var zero T
		return zero
	}
	return *p
}

// Ptr returns a pointer to the element. The pointer has no generation and is
// not checked again; it stays usable under the same rules as Vector.Ref.
func (it Iterator[T]) Ptr() *T {
	p, _ := it.deref("Ptr")
	return p
}

// Set overwrites the element. It is not a mutation for validity purposes.
func (it Iterator[T]) Set(value T) {
	if p, ok := it.deref("Set"); ok {
		*p = value
	}
}

// move validates the iterator and target position shared by Next, Prev and
// Advance.
func (it Iterator[T]) move(op string, target int) (Iterator[T], bool) {
	if !DebugChecks {
		it.pos = target
		return it, true
	}
	if it.owner == nil {
		PanicReporter{}.Report(&CheckError{Kind: KindInvalidated, Op: op, Position: it.pos})
		return it, false
	}
	v := it.owner
	if !v.tracker.IsValid(it.gen, it.pos) {
		v.report(v.staleError(op, it.pos, it.gen))
		return it, false
	}
	if target < 0 || target > v.Len() {
		v.fail(KindOutOfRange, op, target)
		return it, false
	}
	it.pos = target
	return it, true
}

// Next returns the iterator one position forward. Advancing past End is
// reported as KindOutOfRange.
func (it Iterator[T]) Next() Iterator[T] {
	next, _ := it.move("Next", it.pos+1)
	return next
}

// Prev returns the iterator one position back. Moving before Begin is
// reported as KindOutOfRange.
func (it Iterator[T]) Prev() Iterator[T] {
	prev, _ := it.move("Prev", it.pos-1)
	return prev
}

// Advance returns the iterator moved by n positions. The result must lie in
// [0, Len].
func (it Iterator[T]) Advance(n int) Iterator[T] {
	moved, _ := it.move("Advance", it.pos+n)
	return moved
}

// Clone returns an iterator at the same position adopted at the owner's
// current generation. The clone of a stale iterator is valid again as long as
// its position is still in range.
func (it Iterator[T]) Clone() Iterator[T] {
	if it.owner == nil {
		return it
	}
	it.gen = it.owner.tracker.Generation()
	return it
}

// Rebind returns an iterator owned by v at the receiver's position, adopted
// at v's current generation. A position past v.Len() is reported as
// KindOutOfRange through v's reporter and yields v.End().
//
// This is not the same as assignment: it1 = it2 copies it2's owner, position
// and snapshot, while it1.Rebind(v) keeps it1's position.
func (it Iterator[T]) Rebind(v *Vector[T]) Iterator[T] {
	if v == nil {
		return Iterator[T]{pos: it.pos}
	}
	return v.IteratorAt(it.pos)
}

// Const returns a read-only iterator at the same position, adopted at the
// owner's current generation like Clone.
func (it Iterator[T]) Const() ConstIterator[T] {
	return ConstIterator[T]{it: it.Clone()}
}

func (it Iterator[T]) sameOwner(op string, other Iterator[T]) bool {
	if !DebugChecks {
		return true
	}
	if it.owner == nil || it.owner != other.owner {
		err := &CheckError{Kind: KindCrossContainer, Op: op, Position: other.pos}
		if it.owner == nil {
			PanicReporter{}.Report(err)
			return false
		}
		err.Size = it.owner.Len()
		err.Generation = it.owner.tracker.Generation()
		it.owner.report(err)
		return false
	}
	return true
}

// Equal reports whether both iterators are at the same position. Comparing
// iterators of different vectors is reported as KindCrossContainer.
// Generations are not compared.
func (it Iterator[T]) Equal(other Iterator[T]) bool {
	if !it.sameOwner("Equal", other) {
		return false
	}
	return it.pos == other.pos
}

// Less reports whether it is before other.
func (it Iterator[T]) Less(other Iterator[T]) bool {
	if !it.sameOwner("Less", other) {
		return false
	}
	return it.pos < other.pos
}

// Distance returns last.Pos() - it.Pos().
func (it Iterator[T]) Distance(last Iterator[T]) int {
	if !it.sameOwner("Distance", last) {
		return 0
	}
	return last.pos - it.pos
}

// ConstIterator is an Iterator that cannot modify elements.
type ConstIterator[T any] struct {
	it Iterator[T]
}

// Pos returns the position.
func (c ConstIterator[T]) Pos() int { return c.it.pos }

// Valid reports whether the iterator can be dereferenced.
func (c ConstIterator[T]) Valid() bool { return c.it.Valid() }

// Check returns the error a dereference would report.
func (c ConstIterator[T]) Check() error { return c.it.Check() }

// Get returns the element or the check error, without reporting it.
func (c ConstIterator[T]) Get() (T, error) { return c.it.Get() }

// Value returns the element.
func (c ConstIterator[T]) Value() T { return c.it.Value() }

// Next returns the iterator one position forward.
func (c ConstIterator[T]) Next() ConstIterator[T] { return ConstIterator[T]{it: c.it.Next()} }

// Prev returns the iterator one position back.
func (c ConstIterator[T]) Prev() ConstIterator[T] { return ConstIterator[T]{it: c.it.Prev()} }

// Advance returns the iterator moved by n positions.
func (c ConstIterator[T]) Advance(n int) ConstIterator[T] {
	return ConstIterator[T]{it: c.it.Advance(n)}
}

// Clone returns the iterator adopted at the owner's current generation.
func (c ConstIterator[T]) Clone() ConstIterator[T] { return ConstIterator[T]{it: c.it.Clone()} }

// Equal reports whether both iterators are at the same position.
func (c ConstIterator[T]) Equal(other ConstIterator[T]) bool { return c.it.Equal(other.it) }

// Less reports whether c is before other.
func (c ConstIterator[T]) Less(other ConstIterator[T]) bool { return c.it.Less(other.it) }

// Distance returns last.Pos() - c.Pos().
func (c ConstIterator[T]) Distance(last ConstIterator[T]) int { return c.it.Distance(last.it) }
