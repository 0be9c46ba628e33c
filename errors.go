package chunkvec

import (
	"errors"
	"fmt"
)

// Sentinel errors carried by every CheckError. Match them with errors.Is.
var (
	// ErrOutOfRange is reported when dereferencing at or past end, stepping
	// outside [begin, end], or indexing outside [0, Len).
	ErrOutOfRange = errors.New("iterator out of range")
	// ErrInvalidatedIterator is reported when a mutation since the iterator's
	// adoption may have disturbed its position.
	ErrInvalidatedIterator = errors.New("iterator invalidated")
	// ErrCrossContainer is reported when comparing iterators of different
	// vectors or erasing with an iterator of another vector.
	ErrCrossContainer = errors.New("cross-container iterator")
	// ErrInvalidRange is reported when a range has first > last.
	ErrInvalidRange = errors.New("invalid range: first > last")
)

// ErrorKind classifies a failed check.
type ErrorKind uint8

const (
	// KindOutOfRange maps to ErrOutOfRange.
	KindOutOfRange ErrorKind = iota
	// KindInvalidated maps to ErrInvalidatedIterator.
	KindInvalidated
	// KindCrossContainer maps to ErrCrossContainer.
	KindCrossContainer
	// KindInvalidRange maps to ErrInvalidRange.
	KindInvalidRange
)

// String returns the kind name.
func (k ErrorKind) String() string {
	switch k {
	case KindOutOfRange:
		return "out_of_range"
	case KindInvalidated:
		return "invalidated"
	case KindCrossContainer:
		return "cross_container"
	case KindInvalidRange:
		return "invalid_range"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Sentinel returns the sentinel error for the kind.
func (k ErrorKind) Sentinel() error {
	switch k {
	case KindOutOfRange:
		return ErrOutOfRange
	case KindInvalidated:
		return ErrInvalidatedIterator
	case KindCrossContainer:
		return ErrCrossContainer
	case KindInvalidRange:
		return ErrInvalidRange
	default:
		return nil
	}
}

// CheckError describes a failed iterator or index check.
//
// The underlying sentinel can be matched with errors.Is.
type CheckError struct {
	Kind       ErrorKind
	Op         string // operation that ran the check, e.g. "Erase"
	Position   int    // iterator position or index involved
	Size       int    // vector length at the time of the check
	Generation uint64 // vector generation at the time of the check
	// Threshold is set for KindInvalidated: the lowest position invalidated
	// since the iterator's snapshot, 0 after a full invalidation.
	Threshold int
}

func (e *CheckError) Error() string {
	return fmt.Sprintf("chunkvec: %s: %v (position %d, size %d)", e.Op, e.Kind.Sentinel(), e.Position, e.Size)
}

func (e *CheckError) Unwrap() error { return e.Kind.Sentinel() }

// AllocationError wraps a page allocator failure.
type AllocationError struct {
	Op    string
	cause error
}

func (e *AllocationError) Error() string {
	return fmt.Sprintf("chunkvec: %s: allocate page: %v", e.Op, e.cause)
}

func (e *AllocationError) Unwrap() error { return e.cause }
