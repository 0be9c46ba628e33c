// Package conv provides checked integer conversions for snapshot headers.
//
// Every failed conversion wraps ErrOverflow. Use direct casts where the
// range is already guaranteed by construction.
package conv
