package container

import (
	"fmt"
	"math/bits"
)

// DefaultPageSize is the number of elements per page when none is configured.
const DefaultPageSize = 1024

// Stats reports page churn.
type Stats struct {
	PagesAllocated uint64 // Historical: pages ever allocated
	PagesReleased  uint64 // Historical: pages ever handed back
	ActivePages    int    // Current: pages held
}

// Pages is a paged array of T. It is not safe for concurrent use.
type Pages[T any] struct {
	pages    [][]T
	length   int
	pageSize int
	pageBits uint
	pageMask int
	alloc    PageAllocator[T]
	stats    Stats
}

// NewPages creates empty storage. pageSize <= 0 selects DefaultPageSize;
// other values are rounded up to the next power of two.
func NewPages[T any](pageSize int, alloc PageAllocator[T]) *Pages[T] {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	pageBits := uint(bits.Len(uint(pageSize - 1))) //nolint:gosec // pageSize > 0
	pageSize = 1 << pageBits

	if alloc == nil {
		alloc = HeapAllocator[T]{}
	}

	return &Pages[T]{
		pageSize: pageSize,
		pageBits: pageBits,
		pageMask: pageSize - 1,
		alloc:    alloc,
	}
}

// Len returns the number of elements.
func (p *Pages[T]) Len() int { return p.length }

// PageSize returns the capacity of a single page.
func (p *Pages[T]) PageSize() int { return p.pageSize }

// PageCount returns the number of allocated pages.
func (p *Pages[T]) PageCount() int { return len(p.pages) }

// Cap returns the number of elements the allocated pages can hold.
func (p *Pages[T]) Cap() int { return len(p.pages) << p.pageBits }

// Allocator returns the page allocator.
func (p *Pages[T]) Allocator() PageAllocator[T] { return p.alloc }

// Stats returns page counters.
func (p *Pages[T]) Stats() Stats {
	s := p.stats
	s.ActivePages = len(p.pages)
	return s
}

// At returns a pointer to element i. The caller guarantees 0 <= i < Len.
// The pointer stays valid across growth.
func (p *Pages[T]) At(i int) *T {
	return &p.pages[i>>p.pageBits][i&p.pageMask]
}

// Get returns element i and whether i was in range.
func (p *Pages[T]) Get(i int) (T, bool) {
	if i < 0 || i >= p.length {
		var zero T
		return zero, false
	}
	return *p.At(i), true
}

// Page returns the live elements of page i. The slice aliases storage.
func (p *Pages[T]) Page(i int) []T {
	if i < 0 || i >= len(p.pages) {
		return nil
	}
	live := p.length - i<<p.pageBits
	if live <= 0 {
		return p.pages[i][:0]
	}
	return p.pages[i][:min(live, p.pageSize)]
}

// Reserve allocates pages until n elements fit.
func (p *Pages[T]) Reserve(n int) error {
	for p.Cap() < n {
		if err := p.allocPage(); err != nil {
			return err
		}
	}
	return nil
}

func (p *Pages[T]) allocPage() error {
	page, err := p.alloc.AllocPage(p.pageSize)
	if err != nil {
		return err
	}
	if len(page) != p.pageSize {
		p.alloc.FreePage(page)
		return fmt.Errorf("container: allocator returned page of %d elements, want %d", len(page), p.pageSize)
	}
	p.pages = append(p.pages, page)
	p.stats.PagesAllocated++
	return nil
}

// Append adds v at the end, allocating a new page first when the tail page
// is full. Existing pages are never relocated.
func (p *Pages[T]) Append(v T) error {
	if p.length == p.Cap() {
		if err := p.allocPage(); err != nil {
			return err
		}
	}
	*p.At(p.length) = v
	p.length++
	return nil
}

// Grow appends n copies of fill. On allocation failure nothing is appended.
func (p *Pages[T]) Grow(n int, fill T) error {
	if n <= 0 {
		return nil
	}
	if err := p.Reserve(p.length + n); err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		*p.At(p.length) = fill
		p.length++
	}
	return nil
}

// Truncate drops elements at positions >= newLen. Dropped slots are zeroed so
// the GC can reclaim what they referenced. With releasePages set, pages no
// longer holding live elements are handed back to the allocator.
func (p *Pages[T]) Truncate(newLen int, releasePages bool) {
	if newLen < 0 {
		newLen = 0
	}
	if newLen < p.length {
		p.zero(newLen, p.length-newLen)
		p.length = newLen
	}
	if releasePages {
		p.releaseFrom((p.length + p.pageMask) >> p.pageBits)
	}
}

// ShrinkToFit releases pages past the last live element.
func (p *Pages[T]) ShrinkToFit() {
	p.Truncate(p.length, true)
}

// RemoveRange removes count elements starting at begin by shifting the tail
// down. Elements at positions >= begin move; elements below do not.
func (p *Pages[T]) RemoveRange(begin, count int) {
	if count <= 0 || begin < 0 || begin >= p.length {
		return
	}
	if begin+count > p.length {
		count = p.length - begin
	}
	p.moveDown(begin, begin+count, p.length-begin-count)
	p.Truncate(p.length-count, false)
}

// InsertAt inserts v at position i, shifting elements at positions >= i up.
func (p *Pages[T]) InsertAt(i int, v T) error {
	if i < 0 || i > p.length {
		return fmt.Errorf("container: insert position %d out of range [0, %d]", i, p.length)
	}
	var zero T
	if err := p.Append(zero); err != nil {
		return err
	}
	for j := p.length - 1; j > i; j-- {
		*p.At(j) = *p.At(j - 1)
	}
	*p.At(i) = v
	return nil
}

// Compact keeps the elements for which keep returns true, preserving order.
// It returns the lowest removed position (-1 if none) and the number removed.
func (p *Pages[T]) Compact(keep func(i int) bool) (first, removed int) {
	first = -1
	w := 0
	for r := 0; r < p.length; r++ {
		if keep(r) {
			if w != r {
				*p.At(w) = *p.At(r)
			}
			w++
			continue
		}
		if first < 0 {
			first = r
		}
	}
	removed = p.length - w
	p.Truncate(w, false)
	return first, removed
}

// Clear drops all elements and releases every page.
func (p *Pages[T]) Clear() {
	p.zero(0, p.length)
	p.length = 0
	p.releaseFrom(0)
}

// Swap exchanges contents, page tables and allocators with o.
// Page sizes travel with the pages.
func (p *Pages[T]) Swap(o *Pages[T]) {
	*p, *o = *o, *p
}

// moveDown copies n elements from src to dst (dst < src) in page-sized runs.
func (p *Pages[T]) moveDown(dst, src, n int) {
	for n > 0 {
		dp, do := dst>>p.pageBits, dst&p.pageMask
		sp, so := src>>p.pageBits, src&p.pageMask
		run := min(n, p.pageSize-do, p.pageSize-so)
		copy(p.pages[dp][do:do+run], p.pages[sp][so:so+run])
		dst += run
		src += run
		n -= run
	}
}

func (p *Pages[T]) zero(from, n int) {
	for n > 0 {
		pg, off := from>>p.pageBits, from&p.pageMask
		run := min(n, p.pageSize-off)
		clear(p.pages[pg][off : off+run])
		from += run
		n -= run
	}
}

func (p *Pages[T]) releaseFrom(keep int) {
	if keep >= len(p.pages) {
		return
	}
	for i := keep; i < len(p.pages); i++ {
		p.alloc.FreePage(p.pages[i])
		p.pages[i] = nil
		p.stats.PagesReleased++
	}
	p.pages = p.pages[:keep]
}
