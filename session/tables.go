package session

import (
	"reflect"

	"github.com/arloliu/graft/typedesc"
)

// ReferenceTable assigns and resolves reference IDs.
type ReferenceTable struct {
	current uint32
	written map[Identity]uint32
	read    map[uint32]reflect.Value
}

// MarkValueField consumes the next reference ID for a field header and returns it.
func (t *ReferenceTable) MarkValueField() uint32 {
	t.current++
	return t.current
}

// CurrentReferenceID returns the ID consumed by the most recent field header.
func (t *ReferenceTable) CurrentReferenceID() uint32 {
	return t.current
}

// SetCurrentReferenceID moves the ID counter to id and returns its previous value.
// Readers use it to decode a skipped field again with the IDs it consumed the first time.
func (t *ReferenceTable) SetCurrentReferenceID(id uint32) uint32 {
	prev := t.current
	t.current = id

	return prev
}

// GetOrCreateReferenceID returns the ID bound to id. When id has not been seen it is bound
// to the ID the next field header will consume, and isNew is true.
func (t *ReferenceTable) GetOrCreateReferenceID(id Identity) (refID uint32, isNew bool) {
	if existing, ok := t.written[id]; ok {
		return existing, false
	}
	if t.written == nil {
		t.written = make(map[Identity]uint32)
	}
	refID = t.current + 1
	t.written[id] = refID

	return refID, true
}

// RegisterReference binds a decoded value to a reference ID.
func (t *ReferenceTable) RegisterReference(refID uint32, v reflect.Value) {
	if t.read == nil {
		t.read = make(map[uint32]reflect.Value)
	}
	t.read[refID] = v
}

// TryGetReference returns the value bound to refID.
func (t *ReferenceTable) TryGetReference(refID uint32) (reflect.Value, bool) {
	v, ok := t.read[refID]
	return v, ok
}

// Len returns the number of identities and values held by the table.
func (t *ReferenceTable) Len() int {
	return len(t.written) + len(t.read)
}

// Reset clears the table and restarts numbering, keeping allocated maps.
func (t *ReferenceTable) Reset() {
	t.current = 0
	clear(t.written)
	clear(t.read)
}

// TypeEntry is a type seen in an Encoded header.
// Type is nil when the descriptor could not be resolved in this program.
type TypeEntry struct {
	Type       reflect.Type
	Descriptor *typedesc.Descriptor
}

// TypeTable assigns and resolves session type IDs.
type TypeTable struct {
	ids     map[reflect.Type]uint32
	entries []TypeEntry
}

// GetOrCreateTypeID returns the ID of t, assigning the next one on first encounter.
func (t *TypeTable) GetOrCreateTypeID(rt reflect.Type) (id uint32, isNew bool) {
	if existing, ok := t.ids[rt]; ok {
		return existing, false
	}
	if t.ids == nil {
		t.ids = make(map[reflect.Type]uint32)
	}
	t.entries = append(t.entries, TypeEntry{Type: rt})
	id = uint32(len(t.entries)) //nolint:gosec
	t.ids[rt] = id

	return id, true
}

// Lookup returns the ID already assigned to rt.
func (t *TypeTable) Lookup(rt reflect.Type) (uint32, bool) {
	id, ok := t.ids[rt]
	return id, ok
}

// RegisterType records a type read from an Encoded header and returns its ID.
func (t *TypeTable) RegisterType(entry TypeEntry) uint32 {
	t.entries = append(t.entries, entry)
	return uint32(len(t.entries)) //nolint:gosec
}

// TryGetType returns the entry for a type ID.
func (t *TypeTable) TryGetType(id uint32) (TypeEntry, bool) {
	if id == 0 || int(id) > len(t.entries) {
		return TypeEntry{}, false
	}

	return t.entries[id-1], true
}

// Len returns the number of types in the table.
func (t *TypeTable) Len() int {
	return len(t.entries)
}

// Reset clears the table.
func (t *TypeTable) Reset() {
	clear(t.ids)
	clear(t.entries)
	t.entries = t.entries[:0]
}

// CopyTable maps source identities to their clones during a deep copy.
type CopyTable struct {
	copies map[Identity]reflect.Value
}

// TryGetCopy returns the clone already made for a source identity.
func (t *CopyTable) TryGetCopy(id Identity) (reflect.Value, bool) {
	v, ok := t.copies[id]
	return v, ok
}

// RecordCopy binds a clone to its source identity.
func (t *CopyTable) RecordCopy(id Identity, clone reflect.Value) {
	if t.copies == nil {
		t.copies = make(map[Identity]reflect.Value)
	}
	t.copies[id] = clone
}

// Len returns the number of recorded copies.
func (t *CopyTable) Len() int {
	return len(t.copies)
}

// Reset clears the table.
func (t *CopyTable) Reset() {
	clear(t.copies)
}
