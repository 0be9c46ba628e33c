package container

import (
	"unsafe"

	"github.com/hupe1980/chunkvec/resource"
)

// PageAllocator supplies and reclaims page storage.
// AllocPage must return a slice with len == cap == size, zeroed.
type PageAllocator[T any] interface {
	AllocPage(size int) ([]T, error)
	FreePage(page []T)
}

// HeapAllocator allocates pages on the Go heap.
type HeapAllocator[T any] struct{}

// AllocPage implements PageAllocator.
func (HeapAllocator[T]) AllocPage(size int) ([]T, error) {
	return make([]T, size), nil
}

// FreePage implements PageAllocator. The GC reclaims the page.
func (HeapAllocator[T]) FreePage([]T) {}

// BudgetedAllocator charges every page against a resource.Controller memory
// budget before delegating to an inner allocator.
type BudgetedAllocator[T any] struct {
	rc    *resource.Controller
	inner PageAllocator[T]
}

// NewBudgetedAllocator wraps inner (HeapAllocator when nil).
func NewBudgetedAllocator[T any](rc *resource.Controller, inner PageAllocator[T]) *BudgetedAllocator[T] {
	if inner == nil {
		inner = HeapAllocator[T]{}
	}
	return &BudgetedAllocator[T]{rc: rc, inner: inner}
}

// PageBytes returns the budget charged for a page of size elements.
func PageBytes[T any](size int) int64 {
	var zero T
	return int64(size) * int64(unsafe.Sizeof(zero))
}

// AllocPage implements PageAllocator.
func (a *BudgetedAllocator[T]) AllocPage(size int) ([]T, error) {
	bytes := PageBytes[T](size)
	if err := a.rc.AcquireMemory(bytes); err != nil {
		return nil, err
	}
	page, err := a.inner.AllocPage(size)
	if err != nil {
		a.rc.ReleaseMemory(bytes)
		return nil, err
	}
	return page, nil
}

// FreePage implements PageAllocator.
func (a *BudgetedAllocator[T]) FreePage(page []T) {
	a.rc.ReleaseMemory(PageBytes[T](cap(page)))
	a.inner.FreePage(page)
}
