// Package collision keeps the wire-name table of registered types.
package collision

import (
	"fmt"
	"reflect"

	"github.com/arloliu/graft/errs"
	"github.com/arloliu/graft/internal/hash"
)

// Tracker maps wire type names to runtime types.
// Lookups go through the xxHash64 of the name; once two names share a hash the
// tracker falls back to exact name matching.
type Tracker struct {
	byHash       map[uint64]reflect.Type
	byName       map[string]reflect.Type
	hashToName   map[uint64]string
	hasCollision bool
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{
		byHash:     make(map[uint64]reflect.Type),
		byName:     make(map[string]reflect.Type),
		hashToName: make(map[uint64]string),
	}
}

// Track binds name to typ.
// Binding a name a second time to the same type is a no-op; binding it to a different
// type returns ErrTypeNameConflict.
func (t *Tracker) Track(name string, typ reflect.Type) error {
	if existing, ok := t.byName[name]; ok {
		if existing != typ {
			return fmt.Errorf("%w: %q is bound to %v, cannot bind %v", errs.ErrTypeNameConflict, name, existing, typ)
		}

		return nil
	}

	key := hash.TypeKey(name)
	if other, ok := t.hashToName[key]; ok && other != name {
		t.hasCollision = true
	}
	t.byName[name] = typ
	t.byHash[key] = typ
	t.hashToName[key] = name

	return nil
}

// Lookup returns the type bound to name.
func (t *Tracker) Lookup(name string) (reflect.Type, bool) {
	if t.hasCollision {
		typ, ok := t.byName[name]
		return typ, ok
	}

	key := hash.TypeKey(name)
	if t.hashToName[key] != name {
		return nil, false
	}

	return t.byHash[key], true
}

// HasCollision reports whether two tracked names share a hash.
func (t *Tracker) HasCollision() bool {
	return t.hasCollision
}

// Count returns the number of tracked names.
func (t *Tracker) Count() int {
	return len(t.byName)
}

// Clone returns an independent copy of the tracker.
func (t *Tracker) Clone() *Tracker {
	c := &Tracker{
		byHash:       make(map[uint64]reflect.Type, len(t.byHash)),
		byName:       make(map[string]reflect.Type, len(t.byName)),
		hashToName:   make(map[uint64]string, len(t.hashToName)),
		hasCollision: t.hasCollision,
	}
	for k, v := range t.byHash {
		c.byHash[k] = v
	}
	for k, v := range t.byName {
		c.byName[k] = v
	}
	for k, v := range t.hashToName {
		c.hashToName[k] = v
	}

	return c
}
