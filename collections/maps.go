package collections

import (
	"cmp"
	"iter"
	"reflect"
	"slices"
	"sync"
)

// ConcurrentMap is a map safe for concurrent use.
type ConcurrentMap[K comparable, V any] struct {
	mu sync.RWMutex
	m  map[K]V
}

// NewConcurrentMap returns an empty ConcurrentMap.
func NewConcurrentMap[K comparable, V any]() *ConcurrentMap[K, V] {
	return &ConcurrentMap[K, V]{}
}

// Load returns the value stored under k.
func (c *ConcurrentMap[K, V]) Load(k K) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.m[k]

	return v, ok
}

// Store sets the value under k.
func (c *ConcurrentMap[K, V]) Store(k K, v V) {
	c.mu.Lock()
	if c.m == nil {
		c.m = make(map[K]V)
	}
	c.m[k] = v
	c.mu.Unlock()
}

// LoadOrStore returns the existing value under k, or stores and returns v.
func (c *ConcurrentMap[K, V]) LoadOrStore(k K, v V) (actual V, loaded bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.m[k]; ok {
		return existing, true
	}
	if c.m == nil {
		c.m = make(map[K]V)
	}
	c.m[k] = v

	return v, false
}

// Delete removes k.
func (c *ConcurrentMap[K, V]) Delete(k K) {
	c.mu.Lock()
	delete(c.m, k)
	c.mu.Unlock()
}

// Len returns the number of entries.
func (c *ConcurrentMap[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.m)
}

// Snapshot returns a copy of the entries.
func (c *ConcurrentMap[K, V]) Snapshot() map[K]V {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make(map[K]V, len(c.m))
	for k, v := range c.m {
		out[k] = v
	}

	return out
}

func (c *ConcurrentMap[K, V]) KeyType() reflect.Type {
	return reflect.TypeFor[K]()
}

func (c *ConcurrentMap[K, V]) ValueType() reflect.Type {
	return reflect.TypeFor[V]()
}

func (c *ConcurrentMap[K, V]) RangeAny(fn func(k, v any) bool) {
	for k, v := range c.Snapshot() {
		if !fn(k, v) {
			return
		}
	}
}

func (c *ConcurrentMap[K, V]) SetAny(k, v any) {
	c.Store(convert[K](k), convert[V](v))
}

// ReadOnlyMap is a map that cannot be modified through its API.
type ReadOnlyMap[K comparable, V any] struct {
	m map[K]V
}

// NewReadOnlyMap returns a read-only copy of m.
func NewReadOnlyMap[K comparable, V any](m map[K]V) *ReadOnlyMap[K, V] {
	r := &ReadOnlyMap[K, V]{m: make(map[K]V, len(m))}
	for k, v := range m {
		r.m[k] = v
	}

	return r
}

// Get returns the value stored under k.
func (r *ReadOnlyMap[K, V]) Get(k K) (V, bool) {
	v, ok := r.m[k]
	return v, ok
}

// Len returns the number of entries.
func (r *ReadOnlyMap[K, V]) Len() int {
	return len(r.m)
}

// All yields every entry.
func (r *ReadOnlyMap[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for k, v := range r.m {
			if !yield(k, v) {
				return
			}
		}
	}
}

func (r *ReadOnlyMap[K, V]) KeyType() reflect.Type {
	return reflect.TypeFor[K]()
}

func (r *ReadOnlyMap[K, V]) ValueType() reflect.Type {
	return reflect.TypeFor[V]()
}

func (r *ReadOnlyMap[K, V]) RangeAny(fn func(k, v any) bool) {
	for k, v := range r.m {
		if !fn(k, v) {
			return
		}
	}
}

// SetAny stores an entry while the map is being decoded or copied.
func (r *ReadOnlyMap[K, V]) SetAny(k, v any) {
	if r.m == nil {
		r.m = make(map[K]V)
	}
	r.m[convert[K](k)] = convert[V](v)
}

// SortedMap is a map whose entries are iterated in ascending key order.
type SortedMap[K cmp.Ordered, V any] struct {
	keys []K
	m    map[K]V
}

// NewSortedMap returns an empty SortedMap.
func NewSortedMap[K cmp.Ordered, V any]() *SortedMap[K, V] {
	return &SortedMap[K, V]{}
}

// Set stores v under k.
func (s *SortedMap[K, V]) Set(k K, v V) {
	if s.m == nil {
		s.m = make(map[K]V)
	}
	if _, ok := s.m[k]; !ok {
		i, _ := slices.BinarySearch(s.keys, k)
		s.keys = slices.Insert(s.keys, i, k)
	}
	s.m[k] = v
}

// Get returns the value stored under k.
func (s *SortedMap[K, V]) Get(k K) (V, bool) {
	v, ok := s.m[k]
	return v, ok
}

// Delete removes k.
func (s *SortedMap[K, V]) Delete(k K) {
	if _, ok := s.m[k]; !ok {
		return
	}
	delete(s.m, k)
	i, _ := slices.BinarySearch(s.keys, k)
	s.keys = slices.Delete(s.keys, i, i+1)
}

// Len returns the number of entries.
func (s *SortedMap[K, V]) Len() int {
	return len(s.keys)
}

// Keys returns the keys in ascending order.
func (s *SortedMap[K, V]) Keys() []K {
	return slices.Clone(s.keys)
}

// All yields the entries in ascending key order.
func (s *SortedMap[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for _, k := range s.keys {
			if !yield(k, s.m[k]) {
				return
			}
		}
	}
}

func (s *SortedMap[K, V]) KeyType() reflect.Type {
	return reflect.TypeFor[K]()
}

func (s *SortedMap[K, V]) ValueType() reflect.Type {
	return reflect.TypeFor[V]()
}

func (s *SortedMap[K, V]) RangeAny(fn func(k, v any) bool) {
	for k, v := range s.All() {
		if !fn(k, v) {
			return
		}
	}
}

func (s *SortedMap[K, V]) SetAny(k, v any) {
	s.Set(convert[K](k), convert[V](v))
}
