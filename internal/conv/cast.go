package conv

import (
	"errors"
	"fmt"
	"math"
)

// ErrOverflow is wrapped by every failed conversion.
var ErrOverflow = errors.New("integer overflow")

// Unsigned is the set of fixed-width unsigned integers used in headers.
type Unsigned interface {
	~uint8 | ~uint16 | ~uint32 | ~uint64
}

// FromInt converts a non-negative int to U.
func FromInt[U Unsigned](v int) (U, error) {
	if v < 0 {
		return 0, fmt.Errorf("%w: %d is negative", ErrOverflow, v)
	}
	if uint64(v) > uint64(^U(0)) {
		return 0, fmt.Errorf("%w: %d exceeds %d", ErrOverflow, v, uint64(^U(0)))
	}
	return U(v), nil
}

// ToInt converts v to int.
func ToInt[U Unsigned](v U) (int, error) {
	if uint64(v) > math.MaxInt {
		return 0, fmt.Errorf("%w: %d exceeds %d", ErrOverflow, uint64(v), math.MaxInt)
	}
	return int(v), nil
}
