package collections

import (
	"iter"
	"reflect"

	"github.com/spaolacci/murmur3"
	"golang.org/x/text/cases"
)

const comparerSeed = 47

// Comparer defines key equality for a ComparerMap.
// Implementations must be stateless values so they can be encoded with the map.
type Comparer interface {
	// Equal reports whether a and b are the same key.
	Equal(a, b string) bool
	// Hash returns a hash consistent with Equal.
	Hash(s string) uint64
}

// Ordinal compares keys byte by byte. It is the default comparer.
type Ordinal struct{}

// Equal reports whether a and b are byte-for-byte identical.
func (Ordinal) Equal(a, b string) bool {
	return a == b
}

// Hash returns the seeded murmur3 hash of s.
func (Ordinal) Hash(s string) uint64 {
	return murmur3.Sum64WithSeed([]byte(s), comparerSeed)
}

// OrdinalIgnoreCase compares keys after Unicode case folding.
type OrdinalIgnoreCase struct{}

// Equal reports whether a and b are identical after case folding.
func (OrdinalIgnoreCase) Equal(a, b string) bool {
	return a == b || fold(a) == fold(b)
}

// Hash returns the seeded murmur3 hash of the case-folded s, so keys that differ
// only in case hash alike.
func (OrdinalIgnoreCase) Hash(s string) uint64 {
	return murmur3.Sum64WithSeed([]byte(fold(s)), comparerSeed)
}

// A Caser keeps state between calls, so each fold gets its own.
func fold(s string) string {
	return cases.Fold().String(s)
}

type comparerEntry[V any] struct {
	key   string
	value V
}

// ComparerMap is a string-keyed map whose key equality is defined by a Comparer.
// Iteration follows insertion order.
type ComparerMap[V any] struct {
	comparer Comparer
	buckets  map[uint64][]int
	entries  []comparerEntry[V]
}

// NewComparerMap returns an empty map using c. A nil c selects Ordinal.
func NewComparerMap[V any](c Comparer) *ComparerMap[V] {
	m := &ComparerMap[V]{}
	m.SetComparer(c)

	return m
}

// Comparer returns the key comparer.
func (m *ComparerMap[V]) Comparer() Comparer {
	if m.comparer == nil {
		return Ordinal{}
	}

	return m.comparer
}

// SetComparer replaces the comparer and rehashes existing entries.
// Entries that become equal under the new comparer keep the last value.
func (m *ComparerMap[V]) SetComparer(c Comparer) {
	if c == nil {
		c = Ordinal{}
	}
	old := m.entries
	m.comparer = c
	m.buckets = nil
	m.entries = nil
	for _, e := range old {
		m.Set(e.key, e.value)
	}
}

func (m *ComparerMap[V]) find(k string) (hash uint64, idx int) {
	c := m.Comparer()
	hash = c.Hash(k)
	for _, i := range m.buckets[hash] {
		if c.Equal(m.entries[i].key, k) {
			return hash, i
		}
	}

	return hash, -1
}

// Set stores v under k.
func (m *ComparerMap[V]) Set(k string, v V) {
	hash, idx := m.find(k)
	if idx >= 0 {
		m.entries[idx].value = v
		return
	}
	if m.buckets == nil {
		m.buckets = make(map[uint64][]int)
	}
	m.entries = append(m.entries, comparerEntry[V]{key: k, value: v})
	m.buckets[hash] = append(m.buckets[hash], len(m.entries)-1)
}

// Get returns the value stored under a key equal to k.
func (m *ComparerMap[V]) Get(k string) (V, bool) {
	if _, idx := m.find(k); idx >= 0 {
		return m.entries[idx].value, true
	}
	var zero V

	return zero, false
}

// Len returns the number of entries.
func (m *ComparerMap[V]) Len() int {
	return len(m.entries)
}

// All yields the entries in insertion order, with keys as originally stored.
func (m *ComparerMap[V]) All() iter.Seq2[string, V] {
	return func(yield func(string, V) bool) {
		for _, e := range m.entries {
			if !yield(e.key, e.value) {
				return
			}
		}
	}
}

func (m *ComparerMap[V]) KeyType() reflect.Type {
	return reflect.TypeFor[string]()
}

func (m *ComparerMap[V]) ValueType() reflect.Type {
	return reflect.TypeFor[V]()
}

func (m *ComparerMap[V]) RangeAny(fn func(k, v any) bool) {
	for k, v := range m.All() {
		if !fn(k, v) {
			return
		}
	}
}

func (m *ComparerMap[V]) SetAny(k, v any) {
	m.Set(convert[string](k), convert[V](v))
}
