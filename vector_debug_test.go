//go:build !chunkvec_release

package chunkvec_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/chunkvec"
)

// requireFails runs fn and requires it to panic with a check of the given kind.
func requireFails(t *testing.T, kind chunkvec.ErrorKind, fn func()) *chunkvec.CheckError {
	t.Helper()
	err := chunkvec.Catch(fn)
	require.NotNil(t, err, "expected %s", kind)
	require.Equal(t, kind, err.Kind, err.Error())
	return err
}

func TestDebugChecksEnabled(t *testing.T) {
	assert.True(t, chunkvec.DebugChecks)
}

func TestIterator_ValidAccess(t *testing.T) {
	v := seq(10)

	it := v.Begin()
	assert.Equal(t, 0, it.Value())
	assert.Same(t, v.Ref(0), it.Ptr())

	it = it.Next()
	assert.Equal(t, 1, it.Value())
	assert.Equal(t, 9, v.Begin().Advance(9).Value())
}

func TestIterator_PushBackKeepsIterators(t *testing.T) {
	v := chunkvec.New[int](chunkvec.WithPageSize(4))
	v.PushBack(1)
	v.PushBack(2)
	it := v.Begin()
	last := v.IteratorAt(1)

	for i := 0; i < v.PageSize()+10; i++ {
		v.PushBack(i + 10)
	}

	assert.Equal(t, 1, it.Value())
	assert.Equal(t, 2, last.Value())
	assert.Equal(t, uint64(0), v.Generation())
}

func TestIterator_PageBoundary(t *testing.T) {
	v := seq(4, chunkvec.WithPageSize(4))
	it := v.IteratorAt(3)
	ptr := v.Ref(3)

	v.PushBack(4)

	assert.Equal(t, 2, v.PageCount())
	assert.Equal(t, 3, it.Value())
	assert.Same(t, ptr, it.Ptr())
	assert.Equal(t, 4, v.IteratorAt(4).Value())
}

func TestIterator_AcrossPages(t *testing.T) {
	v := seq(12, chunkvec.WithPageSize(4))

	it := v.Begin()
	for want := 0; want < 12; want++ {
		assert.Equal(t, want, it.Value())
		it = it.Next()
	}
	assert.True(t, it.Equal(v.End()))

	count := 0
	for it := v.Begin(); !it.Equal(v.End()); it = it.Next() {
		assert.Equal(t, count, it.Value())
		count++
	}
	assert.Equal(t, 12, count)
}

func TestIterator_OutOfRange(t *testing.T) {
	v := seq(2)
	it := v.Begin().Next().Next()

	err := requireFails(t, chunkvec.KindOutOfRange, func() { it.Value() })
	assert.ErrorIs(t, err, chunkvec.ErrOutOfRange)
	assert.Equal(t, 2, err.Position)
	assert.Equal(t, 2, err.Size)

	requireFails(t, chunkvec.KindOutOfRange, func() { it.Next() })
	requireFails(t, chunkvec.KindOutOfRange, func() { v.Begin().Prev() })
	requireFails(t, chunkvec.KindOutOfRange, func() { v.Begin().Advance(3) })
	requireFails(t, chunkvec.KindOutOfRange, func() { v.At(2) })
	requireFails(t, chunkvec.KindOutOfRange, func() { v.Set(-1, 0) })
	requireFails(t, chunkvec.KindOutOfRange, func() { v.IteratorAt(3) })
}

func TestIterator_EndIsOutOfRangeEvenWhenStale(t *testing.T) {
	v := seq(5)
	end := v.End()
	v.PopBack()
	v.PushBack(4)

	// Position 5 == Len again; the end check wins over the stale generation.
	requireFails(t, chunkvec.KindOutOfRange, func() { end.Value() })
}

func TestIterator_ClearInvalidatesAll(t *testing.T) {
	v := seq(2)
	it := v.Begin()
	second := v.Begin().Next()
	assert.Equal(t, 0, it.Value())

	v.Clear()

	assert.True(t, v.Empty())
	assert.True(t, v.Begin().Equal(v.End()))
	v.Append(7, 8)
	err := requireFails(t, chunkvec.KindInvalidated, func() { it.Value() })
	assert.Equal(t, 0, err.Threshold)
	requireFails(t, chunkvec.KindInvalidated, func() { second.Value() })
	assert.Equal(t, 7, v.Begin().Value())
}

func TestIterator_CrossContainer(t *testing.T) {
	v1 := chunkvec.From([]int{1, 2, 3})
	v2 := chunkvec.From([]int{4, 5, 6})

	err := requireFails(t, chunkvec.KindCrossContainer, func() { v1.Erase(v2.Begin()) })
	assert.True(t, errors.Is(err, chunkvec.ErrCrossContainer))
	assert.Equal(t, []int{1, 2, 3}, v1.Slice())
	assert.Equal(t, []int{4, 5, 6}, v2.Slice())

	requireFails(t, chunkvec.KindCrossContainer, func() { v1.Begin().Equal(v2.Begin()) })
	requireFails(t, chunkvec.KindCrossContainer, func() { v1.Begin().Distance(v2.End()) })
	requireFails(t, chunkvec.KindCrossContainer, func() { v1.EraseRange(v1.Begin(), v2.End()) })
	requireFails(t, chunkvec.KindCrossContainer, func() { v1.Insert(v2.Begin(), 0) })
}

func TestIterator_InvalidRange(t *testing.T) {
	v := chunkvec.From([]int{1, 2, 3, 4, 5})
	first := v.IteratorAt(3)
	last := v.IteratorAt(1)

	err := requireFails(t, chunkvec.KindInvalidRange, func() { v.EraseRange(first, last) })
	assert.ErrorIs(t, err, chunkvec.ErrInvalidRange)
	assert.Equal(t, []int{1, 2, 3, 4, 5}, v.Slice())
	assert.Equal(t, uint64(0), v.Generation())
}

func TestErase_Partial(t *testing.T) {
	v := seq(10)
	before := v.Begin()
	at := v.IteratorAt(3)
	after := v.IteratorAt(7)

	next := v.Erase(at)

	assert.Equal(t, 4, next.Value())
	assert.Equal(t, 0, before.Value())
	requireFails(t, chunkvec.KindInvalidated, func() { after.Value() })
	requireFails(t, chunkvec.KindInvalidated, func() { at.Value() })
	assert.Equal(t, []int{0, 1, 2, 4, 5, 6, 7, 8, 9}, v.Slice())
}

func TestErase_OnlyElement(t *testing.T) {
	v := seq(1)
	it := v.Begin()
	v.Erase(it)
	assert.True(t, v.Empty())
	requireFails(t, chunkvec.KindOutOfRange, func() { it.Value() })

	v.PushBack(1)
	v.PushBack(2)
	it0 := v.Begin()
	it1 := v.Begin().Next()
	v.Erase(it0)

	requireFails(t, chunkvec.KindInvalidated, func() { it0.Value() })
	requireFails(t, chunkvec.KindOutOfRange, func() { it1.Value() })
	assert.Equal(t, 2, v.Begin().Value())
}

func TestErase_Stale(t *testing.T) {
	v := seq(5)
	it := v.IteratorAt(4)
	v.PopBack()
	v.PushBack(4)

	requireFails(t, chunkvec.KindInvalidated, func() { v.Erase(it) })
	requireFails(t, chunkvec.KindOutOfRange, func() { v.Erase(v.End()) })
	assert.Equal(t, []int{0, 1, 2, 3, 4}, v.Slice())
}

func TestEraseRange_Partial(t *testing.T) {
	v := seq(10)
	before := v.Begin()
	start := v.IteratorAt(2)
	inRange := v.IteratorAt(4)
	end := v.IteratorAt(6)
	after := v.IteratorAt(8)

	next := v.EraseRange(start, end)

	assert.Equal(t, 6, next.Value())
	assert.Equal(t, 0, before.Value())
	requireFails(t, chunkvec.KindInvalidated, func() { inRange.Value() })
	requireFails(t, chunkvec.KindInvalidated, func() { after.Value() })
	// end now sits at the new length.
	requireFails(t, chunkvec.KindOutOfRange, func() { end.Value() })
	assert.Equal(t, []int{0, 1, 6, 7, 8, 9}, v.Slice())
}

func TestEraseRange_ReturnsFirstSurvivor(t *testing.T) {
	v := seq(10)
	next := v.EraseRange(v.IteratorAt(3), v.IteratorAt(7))
	assert.Equal(t, 7, next.Value())
	assert.Equal(t, []int{0, 1, 2, 7, 8, 9}, v.Slice())
}

func TestEraseRange_EmptyIsNoop(t *testing.T) {
	v := seq(5)
	it := v.IteratorAt(4)

	next := v.EraseRange(v.IteratorAt(2), v.IteratorAt(2))

	assert.Equal(t, 2, next.Value())
	assert.Equal(t, uint64(0), v.Generation())
	assert.Equal(t, 4, it.Value())
}

func TestEraseUnsorted(t *testing.T) {
	v := seq(10)
	below := v.IteratorAt(2)
	above := v.IteratorAt(5)

	next := v.EraseUnsorted(v.IteratorAt(3))

	assert.Equal(t, 9, next.Value())
	assert.Equal(t, 9, v.Len())
	assert.Equal(t, 9, v.At(3))
	assert.Equal(t, 2, below.Value())
	requireFails(t, chunkvec.KindInvalidated, func() { above.Value() })

	last := v.EraseUnsorted(v.IteratorAt(8))
	assert.True(t, last.Equal(v.End()))
}

func TestPopBack_Partial(t *testing.T) {
	v := seq(10)
	it7 := v.IteratorAt(7)
	it8 := v.IteratorAt(8)
	it9 := v.IteratorAt(9)

	assert.Equal(t, 9, v.PopBack())

	assert.Equal(t, 7, it7.Value())
	assert.Equal(t, 8, it8.Value())
	requireFails(t, chunkvec.KindOutOfRange, func() { it9.Value() })
	assert.Equal(t, 9, v.Len())

	v.PushBack(9)
	requireFails(t, chunkvec.KindInvalidated, func() { it9.Value() })
}

func TestPopBack_Empty(t *testing.T) {
	v := chunkvec.New[int]()
	requireFails(t, chunkvec.KindOutOfRange, func() { v.PopBack() })
}

func TestResize_Partial(t *testing.T) {
	v := seq(10)
	valid := v.IteratorAt(3)
	boundary := v.IteratorAt(6)
	invalid := v.IteratorAt(8)

	v.Resize(7)

	assert.Equal(t, 3, valid.Value())
	assert.Equal(t, 6, boundary.Value())
	requireFails(t, chunkvec.KindInvalidated, func() { invalid.Value() })
	assert.Equal(t, 7, v.Len())

	gen := v.Generation()
	v.ResizeWith(15, 99)
	assert.Equal(t, gen, v.Generation())
	assert.Equal(t, 99, v.At(10))
	assert.Equal(t, 6, boundary.Value())

	requireFails(t, chunkvec.KindOutOfRange, func() { v.Resize(-1) })
	assert.Equal(t, 15, v.Len())
}

func TestInsert_Partial(t *testing.T) {
	v := seq(5)
	below := v.IteratorAt(1)
	at := v.IteratorAt(2)

	ins := v.Insert(at, 42)

	assert.Equal(t, 42, ins.Value())
	assert.Equal(t, 1, below.Value())
	requireFails(t, chunkvec.KindInvalidated, func() { at.Value() })
	assert.Equal(t, []int{0, 1, 42, 2, 3, 4}, v.Slice())

	v.Insert(v.End(), 5)
	assert.Equal(t, 5, v.Back())
}

func TestSetKeepsIterators(t *testing.T) {
	v := seq(10)
	it1 := v.Begin()
	it2 := v.IteratorAt(5)
	it3 := v.IteratorAt(9)

	v.Set(0, 100)
	v.Set(5, 200)

	assert.Equal(t, 100, it1.Value())
	assert.Equal(t, 200, it2.Value())
	assert.Equal(t, 9, it3.Value())

	it3.Set(300)
	assert.Equal(t, 300, v.At(9))
	assert.Equal(t, uint64(0), v.Generation())
}

func TestMoveFrom_InvalidatesBoth(t *testing.T) {
	v1 := chunkvec.From([]int{1, 2, 3})
	v2 := chunkvec.From([]int{4, 5, 6})
	it1 := v1.Begin()
	it2 := v2.Begin()

	v2.MoveFrom(v1)

	assert.True(t, v1.Empty())
	assert.True(t, v1.Begin().Equal(v1.End()))
	assert.Equal(t, []int{1, 2, 3}, v2.Slice())
	requireFails(t, chunkvec.KindInvalidated, func() { v1.PushBack(9); it1.Value() })
	requireFails(t, chunkvec.KindInvalidated, func() { it2.Value() })
}

func TestAssign_InvalidatesDestinationOnly(t *testing.T) {
	v1 := seq(5)
	v2 := chunkvec.From([]int{10, 11, 12, 13, 14})
	it1 := v1.Begin()
	it2 := v2.Begin()

	v2.Assign(v1)

	assert.Equal(t, 0, it1.Value())
	requireFails(t, chunkvec.KindInvalidated, func() { it2.Value() })
	assert.Equal(t, v1.Slice(), v2.Slice())

	gen := v2.Generation()
	v2.Assign(v2)
	assert.Equal(t, gen, v2.Generation())
}

func TestSwap_InvalidatesBoth(t *testing.T) {
	v1 := chunkvec.From([]int{1, 2})
	v2 := chunkvec.From([]int{3, 4, 5})
	it1 := v1.Begin()
	it2 := v2.Begin()

	v1.Swap(v2)

	assert.Equal(t, []int{3, 4, 5}, v1.Slice())
	assert.Equal(t, []int{1, 2}, v2.Slice())
	requireFails(t, chunkvec.KindInvalidated, func() { it1.Value() })
	requireFails(t, chunkvec.KindInvalidated, func() { it2.Value() })
}

func TestFree(t *testing.T) {
	v := seq(8, chunkvec.WithPageSize(4))
	it := v.Begin()

	v.Free()

	assert.Equal(t, 0, v.PageCount())
	v.PushBack(1)
	requireFails(t, chunkvec.KindInvalidated, func() { it.Value() })
}

func TestMultiplePartialInvalidations(t *testing.T) {
	v := seq(10)
	it0 := v.Begin()
	it2 := v.IteratorAt(2)
	it5 := v.IteratorAt(5)
	it8 := v.IteratorAt(8)

	v.Erase(v.IteratorAt(6))
	assert.Equal(t, 0, it0.Value())
	assert.Equal(t, 2, it2.Value())
	assert.Equal(t, 5, it5.Value())
	requireFails(t, chunkvec.KindInvalidated, func() { it8.Value() })

	v.Erase(v.IteratorAt(3))
	assert.Equal(t, 0, it0.Value())
	assert.Equal(t, 2, it2.Value())
	err := requireFails(t, chunkvec.KindInvalidated, func() { it5.Value() })
	assert.Equal(t, 3, err.Threshold)
	assert.Equal(t, 8, v.Len())
}

func TestPartialInvalidation_EndIterator(t *testing.T) {
	v := seq(5)
	begin := v.Begin()
	end := v.End()
	mid := v.IteratorAt(3)

	v.Erase(v.IteratorAt(2))

	assert.Equal(t, 0, begin.Value())
	requireFails(t, chunkvec.KindInvalidated, func() { mid.Value() })
	requireFails(t, chunkvec.KindInvalidated, func() { end.Prev() })
	assert.Equal(t, 4, v.Len())
}

func TestAdoption(t *testing.T) {
	t.Run("copy shares snapshot", func(t *testing.T) {
		v := seq(3)
		it1 := v.Begin().Next()
		it2 := it1
		assert.Equal(t, 1, it2.Value())

		v.Clear()
		requireFails(t, chunkvec.KindInvalidated, func() { v.Append(0, 1); it1.Value() })
		requireFails(t, chunkvec.KindInvalidated, func() { it2.Value() })
	})

	t.Run("const conversion", func(t *testing.T) {
		v := seq(3)
		it := v.Begin().Next()
		cit := it.Const()
		assert.Equal(t, 1, cit.Value())
		assert.Equal(t, v.CBegin().Value(), v.Begin().Value())

		v.Clear()
		v.Append(0, 1)
		requireFails(t, chunkvec.KindInvalidated, func() { it.Value() })
		requireFails(t, chunkvec.KindInvalidated, func() { cit.Value() })

		// Converting takes a fresh snapshot.
		assert.True(t, it.Const().Valid())
		assert.Equal(t, 1, it.Const().Value())
	})

	t.Run("const conversion of stale iterator", func(t *testing.T) {
		v := seq(5)
		it := v.IteratorAt(3)
		v.Erase(v.Begin())

		assert.False(t, it.Valid())
		cit := it.Const()
		assert.True(t, cit.Valid())
		assert.Equal(t, 4, cit.Value())

		v.PopBack()
		v.PushBack(9)
		requireFails(t, chunkvec.KindInvalidated, func() { cit.Value() })
	})

	t.Run("clone readopts", func(t *testing.T) {
		v := seq(5)
		it := v.IteratorAt(3)
		v.Erase(v.Begin())

		assert.False(t, it.Valid())
		fresh := it.Clone()
		assert.True(t, fresh.Valid())
		assert.Equal(t, 4, fresh.Value())
	})

	t.Run("reassignment follows new owner", func(t *testing.T) {
		v1 := seq(5)
		v2 := chunkvec.From([]int{10, 11, 12, 13, 14})
		it1 := v1.Begin()
		it2 := v2.Begin()

		it1 = it2
		assert.Equal(t, 10, it1.Value())

		v1.Clear()
		assert.Equal(t, 10, it1.Value())

		v2.Clear()
		v2.PushBack(1)
		requireFails(t, chunkvec.KindInvalidated, func() { it1.Value() })
	})

	t.Run("rebind", func(t *testing.T) {
		v1 := seq(5)
		v2 := chunkvec.From([]int{10, 11, 12})
		src := v1.IteratorAt(2)
		it := src.Rebind(v2)
		assert.Same(t, v2, it.Owner())
		assert.Equal(t, 2, it.Pos())
		assert.Equal(t, 12, it.Value())

		// Assignment takes the other iterator's position instead.
		assigned := v2.Begin()
		assert.Equal(t, 10, assigned.Value())
		assigned = src
		assert.Same(t, v1, assigned.Owner())
		assert.Equal(t, 2, assigned.Value())

		// A position that does not fit is reported through v2.
		rec := &chunkvec.RecordingReporter{}
		short := chunkvec.From([]int{1}, chunkvec.WithReporter(rec))
		moved := v1.IteratorAt(4).Rebind(short)
		require.Equal(t, 1, rec.Len())
		assert.Equal(t, chunkvec.KindOutOfRange, rec.Last().Kind)
		assert.True(t, moved.Equal(short.End()))
	})

	t.Run("zero iterator", func(t *testing.T) {
		var it chunkvec.Iterator[int]
		assert.False(t, it.Valid())
		requireFails(t, chunkvec.KindInvalidated, func() { it.Value() })
	})
}

func TestIterator_CheckWithoutReporting(t *testing.T) {
	v := seq(4)
	it := v.IteratorAt(3)

	got, err := it.Get()
	require.NoError(t, err)
	assert.Equal(t, 3, got)
	require.NoError(t, it.Check())

	v.PopBack()

	assert.False(t, it.Valid())
	_, err = it.Get()
	assert.ErrorIs(t, err, chunkvec.ErrOutOfRange)

	v.PushBack(3)
	assert.ErrorIs(t, it.Check(), chunkvec.ErrInvalidatedIterator)
	assert.ErrorIs(t, v.End().Check(), chunkvec.ErrOutOfRange)
}

func TestRecordingReporter(t *testing.T) {
	rec := &chunkvec.RecordingReporter{}
	v := chunkvec.From([]int{1, 2, 3}, chunkvec.WithReporter(rec))
	other := chunkvec.From([]int{1})
	stale := v.Begin()
	v.Erase(v.Begin())

	assert.Equal(t, 0, stale.Value())
	assert.Nil(t, v.End().Ptr())
	assert.True(t, v.Erase(other.Begin()).Equal(v.End()))
	v.EraseRange(v.IteratorAt(1), v.IteratorAt(0))

	errs := rec.Errors()
	require.Len(t, errs, 4)
	assert.Equal(t, chunkvec.KindInvalidated, errs[0].Kind)
	assert.Equal(t, "Value", errs[0].Op)
	assert.Equal(t, chunkvec.KindOutOfRange, errs[1].Kind)
	assert.Equal(t, chunkvec.KindCrossContainer, errs[2].Kind)
	assert.Equal(t, chunkvec.KindInvalidRange, errs[3].Kind)
	assert.Equal(t, []int{2, 3}, v.Slice())
}

func TestRangeDetectsMutation(t *testing.T) {
	rec := &chunkvec.RecordingReporter{}
	v := seq(6, chunkvec.WithReporter(rec))

	var seen []int
	for i, x := range v.All() {
		seen = append(seen, x)
		if i == 2 {
			v.Erase(v.IteratorAt(1))
		}
	}

	assert.Equal(t, []int{0, 1, 2}, seen)
	require.Equal(t, 1, rec.Len())
	assert.Equal(t, chunkvec.KindInvalidated, rec.Last().Kind)

	rec.Reset()
	seen = seen[:0]
	for x := range v.Values() {
		seen = append(seen, x)
		if x == 0 {
			v.Set(1, 100)
			v.PushBack(6)
		}
	}
	assert.Equal(t, []int{0, 100, 3, 4, 5, 6}, seen)
	assert.Equal(t, 0, rec.Len())
}

func TestMetricsCollector(t *testing.T) {
	m := &chunkvec.BasicMetricsCollector{}
	v := seq(8, chunkvec.WithPageSize(4), chunkvec.WithMetricsCollector(m), chunkvec.WithReporter(&chunkvec.RecordingReporter{}))

	v.Erase(v.Begin())
	v.Clear()
	v.At(3)

	s := m.GetStats()
	assert.Equal(t, int64(1), s.PartialInvalidations)
	assert.Equal(t, int64(1), s.FullInvalidations)
	assert.Equal(t, int64(1), s.OutOfRange)
	assert.Equal(t, int64(1), s.CheckFailures())
	assert.Equal(t, int64(2), s.PagesAllocated)
	assert.Equal(t, int64(2), s.PagesReleased)
}
