package ir

import (
	"cmp"
	"slices"
)

// Set is an insertion-ordered set. The zero value is ready to use.
type Set[T comparable] struct {
	items []T
	index map[T]struct{}
}

// NewSet returns a set holding values in order, without duplicates.
func NewSet[T comparable](values ...T) Set[T] {
	var s Set[T]
	for _, v := range values {
		s.Add(v)
	}
	return s
}

// Add inserts v and reports whether it was absent.
func (s *Set[T]) Add(v T) bool {
	if s.index == nil {
		s.index = make(map[T]struct{})
	}
	if _, ok := s.index[v]; ok {
		return false
	}
	s.index[v] = struct{}{}
	s.items = append(s.items, v)
	return true
}

// AddAll inserts every value of other.
func (s *Set[T]) AddAll(other Set[T]) {
	for _, v := range other.items {
		s.Add(v)
	}
}

// Has reports whether v is in the set.
func (s Set[T]) Has(v T) bool {
	_, ok := s.index[v]
	return ok
}

// Len returns the number of elements.
func (s Set[T]) Len() int { return len(s.items) }

// Values returns the elements in insertion order.
func (s Set[T]) Values() []T {
	return slices.Clone(s.items)
}

// Sorted returns the elements of an ordered set in ascending order.
func Sorted[T cmp.Ordered](s Set[T]) []T {
	out := s.Values()
	slices.Sort(out)
	return out
}
