package helpers

import (
	"golang.org/x/exp/constraints"
	"golang.org/x/exp/slices"
)

// CopyOf returns a shallow copy of a slice. A nil slice stays nil.
func CopyOf[V any](s []V) []V {
	if s == nil {
		return nil
	}
	return append(make([]V, 0, len(s)), s...)
}

// Sorted returns a sorted copy of a slice, leaving the original unchanged. It is mostly used
// with maps.Keys to iterate over headers and properties in a stable order.
func Sorted[V constraints.Ordered](s []V) []V {
	ret := CopyOf(s)
	slices.Sort(ret)
	return ret
}
