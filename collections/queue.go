package collections

import (
	"iter"
	"reflect"
	"sync"
)

// Queue is a FIFO queue.
type Queue[T any] struct {
	items []T
	head  int
}

// NewQueue returns a queue holding items in order.
func NewQueue[T any](items ...T) *Queue[T] {
	q := &Queue[T]{}
	for _, v := range items {
		q.Push(v)
	}

	return q
}

// Push appends v at the back.
func (q *Queue[T]) Push(v T) {
	q.items = append(q.items, v)
}

// Pop removes and returns the front element.
func (q *Queue[T]) Pop() (T, bool) {
	var zero T
	if q.head == len(q.items) {
		return zero, false
	}
	v := q.items[q.head]
	q.items[q.head] = zero
	q.head++
	if q.head == len(q.items) {
		q.items = q.items[:0]
		q.head = 0
	}

	return v, true
}

// Peek returns the front element without removing it.
func (q *Queue[T]) Peek() (T, bool) {
	if q.head == len(q.items) {
		var zero T
		return zero, false
	}

	return q.items[q.head], true
}

// Len returns the number of queued elements.
func (q *Queue[T]) Len() int {
	return len(q.items) - q.head
}

// All yields the elements from front to back.
func (q *Queue[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, v := range q.items[q.head:] {
			if !yield(v) {
				return
			}
		}
	}
}

func (q *Queue[T]) ElemType() reflect.Type {
	return reflect.TypeFor[T]()
}

func (q *Queue[T]) RangeAny(fn func(v any) bool) {
	for v := range q.All() {
		if !fn(v) {
			return
		}
	}
}

func (q *Queue[T]) AppendAny(v any) {
	q.Push(convert[T](v))
}

// ConcurrentQueue is a FIFO queue safe for concurrent use.
type ConcurrentQueue[T any] struct {
	mu sync.Mutex
	q  Queue[T]
}

// NewConcurrentQueue returns a queue holding items in order.
func NewConcurrentQueue[T any](items ...T) *ConcurrentQueue[T] {
	q := &ConcurrentQueue[T]{}
	for _, v := range items {
		q.q.Push(v)
	}

	return q
}

// Push appends v at the back.
func (c *ConcurrentQueue[T]) Push(v T) {
	c.mu.Lock()
	c.q.Push(v)
	c.mu.Unlock()
}

// Pop removes and returns the front element.
func (c *ConcurrentQueue[T]) Pop() (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.q.Pop()
}

// Len returns the number of queued elements.
func (c *ConcurrentQueue[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.q.Len()
}

// Snapshot returns the queued elements from front to back.
func (c *ConcurrentQueue[T]) Snapshot() []T {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]T, 0, c.q.Len())
	for v := range c.q.All() {
		out = append(out, v)
	}

	return out
}

func (c *ConcurrentQueue[T]) ElemType() reflect.Type {
	return reflect.TypeFor[T]()
}

func (c *ConcurrentQueue[T]) RangeAny(fn func(v any) bool) {
	for _, v := range c.Snapshot() {
		if !fn(v) {
			return
		}
	}
}

func (c *ConcurrentQueue[T]) AppendAny(v any) {
	c.Push(convert[T](v))
}
