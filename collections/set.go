package collections

import (
	"iter"
	"reflect"
)

// Set is an unordered set.
type Set[T comparable] struct {
	m map[T]struct{}
}

// NewSet returns a set holding items.
func NewSet[T comparable](items ...T) *Set[T] {
	s := &Set[T]{}
	for _, v := range items {
		s.Add(v)
	}

	return s
}

// Add inserts v and reports whether it was absent.
func (s *Set[T]) Add(v T) bool {
	if s.m == nil {
		s.m = make(map[T]struct{})
	}
	if _, ok := s.m[v]; ok {
		return false
	}
	s.m[v] = struct{}{}

	return true
}

// Remove deletes v.
func (s *Set[T]) Remove(v T) {
	delete(s.m, v)
}

// Contains reports whether v is in the set.
func (s *Set[T]) Contains(v T) bool {
	_, ok := s.m[v]
	return ok
}

// Len returns the number of elements.
func (s *Set[T]) Len() int {
	return len(s.m)
}

// All yields every element.
func (s *Set[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		for v := range s.m {
			if !yield(v) {
				return
			}
		}
	}
}

func (s *Set[T]) ElemType() reflect.Type {
	return reflect.TypeFor[T]()
}

func (s *Set[T]) RangeAny(fn func(v any) bool) {
	for v := range s.m {
		if !fn(v) {
			return
		}
	}
}

func (s *Set[T]) AppendAny(v any) {
	s.Add(convert[T](v))
}

// ImmutableSet is a set fixed at construction.
type ImmutableSet[T comparable] struct {
	s Set[T]
}

// NewImmutableSet returns a set holding items.
func NewImmutableSet[T comparable](items ...T) *ImmutableSet[T] {
	im := &ImmutableSet[T]{}
	for _, v := range items {
		im.s.Add(v)
	}

	return im
}

// Contains reports whether v is in the set.
func (im *ImmutableSet[T]) Contains(v T) bool {
	return im.s.Contains(v)
}

// Len returns the number of elements.
func (im *ImmutableSet[T]) Len() int {
	return im.s.Len()
}

// All yields every element.
func (im *ImmutableSet[T]) All() iter.Seq[T] {
	return im.s.All()
}

// ImmutableContents marks the set as immutable.
func (im *ImmutableSet[T]) ImmutableContents() {}

func (im *ImmutableSet[T]) ElemType() reflect.Type {
	return reflect.TypeFor[T]()
}

func (im *ImmutableSet[T]) RangeAny(fn func(v any) bool) {
	im.s.RangeAny(fn)
}

// AppendAny adds an element while the set is being decoded or copied.
func (im *ImmutableSet[T]) AppendAny(v any) {
	im.s.AppendAny(v)
}
