package buffers

import "reflect"

// SkippedField is the reference table entry of a field that was skipped unread,
// typically a field unknown to this version of a type. The payload stays in the
// reader's input and is decoded only if a later Reference points at it.
type SkippedField struct {
	// Header is the header of the skipped field.
	Header FieldHeader
	// RefID is the reference ID the header consumed.
	RefID uint32

	src *Reader
	pos int
}

// SkippedFieldType is the type of the values SkipField binds in the reference table.
var SkippedFieldType = reflect.TypeFor[*SkippedField]()

// Replay returns a reader positioned at the payload of f with the reference counter
// moved back to f.RefID, so nested fields get the IDs they consumed when skipped.
// The caller must call restore when done to put the counter back.
func (f *SkippedField) Replay() (r *Reader, restore func()) {
	src := f.src
	r = &Reader{
		sess:     src.sess,
		resolver: src.resolver,
		engine:   src.engine,
		segments: src.segments,
		length:   src.length,
		pos:      f.pos,
		replay:   true,
	}
	off := f.pos
	for r.seg < len(r.segments) && off >= len(r.segments[r.seg]) {
		off -= len(r.segments[r.seg])
		r.seg++
	}
	r.off = off

	refs := src.sess.References
	prev := refs.SetCurrentReferenceID(f.RefID)

	return r, func() { refs.SetCurrentReferenceID(prev) }
}
