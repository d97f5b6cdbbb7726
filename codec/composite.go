package codec

import (
	"cmp"
	"fmt"
	"reflect"
	"slices"

	"github.com/arloliu/graft/buffers"
	"github.com/arloliu/graft/errs"
	"github.com/arloliu/graft/format"
)

func (reg *Registry) writeChild(w *buffers.Writer, delta uint32, typ reflect.Type, v reflect.Value) error {
	c, err := reg.codecFor(typ)
	if err != nil {
		return err
	}

	return c.WriteField(w, delta, typ, v)
}

func (reg *Registry) readChild(r *buffers.Reader, h buffers.FieldHeader, typ reflect.Type) (reflect.Value, error) {
	c, err := reg.codecFor(typ)
	if err != nil {
		return reflect.Value{}, err
	}

	return c.ReadValue(r, h)
}

func writeCount(w *buffers.Writer, delta uint32, n int) {
	w.WriteFieldHeaderExpected(delta, format.WireVarInt)
	w.WriteVarUint64(uint64(n)) //nolint:gosec
}

// readCount reads an element count. Every element takes at least one byte, so a
// count above the remaining input is rejected before anything is allocated.
func readCount(r *buffers.Reader, h buffers.FieldHeader) (int, error) {
	if h.WireType != format.WireVarInt {
		return 0, fmt.Errorf("count field with wire type %s: %w", h.WireType, errs.ErrMalformedInput)
	}
	n, err := r.ReadVarUint64()
	if err != nil {
		return 0, err
	}
	if n > uint64(r.Remaining()) { //nolint:gosec
		return 0, fmt.Errorf("count %d exceeds %d remaining bytes: %w", n, r.Remaining(), errs.ErrMalformedInput)
	}

	return int(n), nil //nolint:gosec
}

// pointerCodec encodes *E. When E has a body codec the pointer and its pointee share
// one header, so the pointer is registered before the pointee's children are read.
// A pointee that binds identities itself, another pointer or an interface, is wrapped
// in a one-field object so the pointer and the pointee each get a reference ID.
// Otherwise the pointee's codec writes the field and the pointer only adds identity.
type pointerCodec struct {
	reg *Registry
	typ reflect.Type
}

func (p pointerCodec) childTypes() []reflect.Type {
	return []reflect.Type{p.typ.Elem()}
}

// pointeeBody returns the body the pointee is written with, or nil when the pointee's
// codec writes a whole field.
func (p pointerCodec) pointeeBody(ec FieldCodec) body {
	if bc, ok := ec.(bodyCodec); ok {
		return bc
	}
	switch p.typ.Elem().Kind() {
	case reflect.Pointer, reflect.Interface:
		return indirectBody{codec: ec, elem: p.typ.Elem()}
	default:
		return nil
	}
}

func (p pointerCodec) WriteField(w *buffers.Writer, delta uint32, expected reflect.Type, v reflect.Value) error {
	if writeTracked(w, delta, v) {
		return nil
	}
	ec, err := p.reg.codecFor(p.typ.Elem())
	if err != nil {
		return err
	}
	if b := p.pointeeBody(ec); b != nil {
		if err := w.WriteFieldHeader(delta, expected, p.typ, b.wireType()); err != nil {
			return err
		}

		return writeBodyGuarded(w, b, v.Elem())
	}
	if expected != p.typ {
		return fmt.Errorf("%v in a %v field: custom pointee codec cannot carry the pointer type: %w",
			p.typ, expected, errs.ErrUnsupportedType)
	}

	return ec.WriteField(w, delta, p.typ.Elem(), v.Elem())
}

func (p pointerCodec) ReadValue(r *buffers.Reader, h buffers.FieldHeader) (reflect.Value, error) {
	if h.IsReference() {
		return readReference(r, p.typ)
	}
	ec, err := p.reg.codecFor(p.typ.Elem())
	if err != nil {
		return reflect.Value{}, err
	}

	refs := r.Session().References
	refID := refs.CurrentReferenceID()
	ptr := reflect.New(p.typ.Elem())

	if b := p.pointeeBody(ec); b != nil {
		if err := checkHeaderType(h, p.typ); err != nil {
			return reflect.Value{}, err
		}
		refs.RegisterReference(refID, ptr)
		if err := readBodyGuarded(r, b, h, ptr.Elem(), nil); err != nil {
			return reflect.Value{}, err
		}

		return ptr, nil
	}

	ev, err := ec.ReadValue(r, h)
	if err != nil {
		return reflect.Value{}, err
	}
	ptr.Elem().Set(ev)
	refs.RegisterReference(refID, ptr)

	return ptr, nil
}

// indirectBody holds a pointee as field 0 of a tag-delimited object.
type indirectBody struct {
	codec FieldCodec
	elem  reflect.Type
}

func (b indirectBody) wireType() format.WireType { return format.WireTagDelimited }

func (b indirectBody) writeBody(w *buffers.Writer, v reflect.Value) error {
	if err := b.codec.WriteField(w, 0, b.elem, v); err != nil {
		return err
	}
	w.WriteEndObject()

	return nil
}

func (b indirectBody) readBody(r *buffers.Reader, h buffers.FieldHeader, dst reflect.Value, _ func(reflect.Value)) error {
	if err := expectWire(h, format.WireTagDelimited, b.elem); err != nil {
		return err
	}

	seen := false

	return forEachField(r, func(id uint32, h buffers.FieldHeader) error {
		if id != 0 || seen {
			return r.SkipField(h)
		}
		v, err := b.codec.ReadValue(r, h)
		if err != nil {
			return err
		}
		dst.Set(v)
		seen = true

		return nil
	})
}

// listBody encodes slices and arrays: the length as field 0, then each element as field 1.
type listBody struct {
	reg *Registry
	typ reflect.Type
}

func (b listBody) wireType() format.WireType { return format.WireTagDelimited }

func (b listBody) childTypes() []reflect.Type {
	return []reflect.Type{b.typ.Elem()}
}

func (b listBody) writeBody(w *buffers.Writer, v reflect.Value) error {
	elem := b.typ.Elem()
	c, err := b.reg.codecFor(elem)
	if err != nil {
		return err
	}

	n := v.Len()
	writeCount(w, 0, n)
	delta := uint32(1)
	for i := range n {
		if err := c.WriteField(w, delta, elem, v.Index(i)); err != nil {
			return err
		}
		delta = 0
	}
	w.WriteEndObject()

	return nil
}

func (b listBody) readBody(r *buffers.Reader, h buffers.FieldHeader, dst reflect.Value, created func(reflect.Value)) error {
	if err := expectWire(h, format.WireTagDelimited, b.typ); err != nil {
		return err
	}
	elem := b.typ.Elem()
	c, err := b.reg.codecFor(elem)
	if err != nil {
		return err
	}

	isArray := b.typ.Kind() == reflect.Array
	n, i := -1, 0
	err = forEachField(r, func(id uint32, h buffers.FieldHeader) error {
		switch {
		case id == 0 && n < 0:
			count, err := readCount(r, h)
			if err != nil {
				return err
			}
			if isArray && count != b.typ.Len() {
				return fmt.Errorf("%d elements for %v: %w", count, b.typ, errs.ErrMalformedInput)
			}
			n = count
			if !isArray {
				dst.Set(reflect.MakeSlice(b.typ, n, n))
				if created != nil {
					created(dst)
				}
			}

			return nil
		case id == 1:
			if i >= n {
				return fmt.Errorf("element %d of %v beyond length %d: %w", i, b.typ, n, errs.ErrMalformedInput)
			}
			ev, err := c.ReadValue(r, h)
			if err != nil {
				return err
			}
			dst.Index(i).Set(ev)
			i++

			return nil
		default:
			return r.SkipField(h)
		}
	})
	if err != nil {
		return err
	}
	if i != n {
		return fmt.Errorf("%v holds %d of %d elements: %w", b.typ, i, max(n, 0), errs.ErrMalformedInput)
	}

	return nil
}

// sortedKeys returns the keys of a map, ordered when the key kind has a natural order
// so that equal maps encode to equal bytes.
func sortedKeys(v reflect.Value) []reflect.Value {
	keys := v.MapKeys()
	switch v.Type().Key().Kind() {
	case reflect.String:
		slices.SortFunc(keys, func(a, b reflect.Value) int { return cmp.Compare(a.String(), b.String()) })
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		slices.SortFunc(keys, func(a, b reflect.Value) int { return cmp.Compare(a.Int(), b.Int()) })
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		slices.SortFunc(keys, func(a, b reflect.Value) int { return cmp.Compare(a.Uint(), b.Uint()) })
	case reflect.Float32, reflect.Float64:
		slices.SortFunc(keys, func(a, b reflect.Value) int { return cmp.Compare(a.Float(), b.Float()) })
	default:
	}

	return keys
}

// writeEntry writes one key/value pair as a tag-delimited field with the key at
// field 0 and the value at field 1.
func (reg *Registry) writeEntry(w *buffers.Writer, delta uint32, kt, vt reflect.Type, k, v reflect.Value) error {
	w.WriteFieldHeaderExpected(delta, format.WireTagDelimited)
	if err := reg.writeChild(w, 0, kt, k); err != nil {
		return err
	}
	if err := reg.writeChild(w, 1, vt, v); err != nil {
		return err
	}
	w.WriteEndObject()

	return nil
}

func (reg *Registry) readEntry(r *buffers.Reader, h buffers.FieldHeader, kt, vt reflect.Type) (k, v reflect.Value, err error) {
	if h.WireType != format.WireTagDelimited {
		return k, v, fmt.Errorf("entry with wire type %s: %w", h.WireType, errs.ErrMalformedInput)
	}
	sess := r.Session()
	if err := sess.Enter(); err != nil {
		return k, v, err
	}
	defer sess.Leave()

	err = forEachField(r, func(id uint32, h buffers.FieldHeader) error {
		var err error
		switch id {
		case 0:
			k, err = reg.readChild(r, h, kt)
		case 1:
			v, err = reg.readChild(r, h, vt)
		default:
			err = r.SkipField(h)
		}

		return err
	})
	if err != nil {
		return k, v, err
	}
	if !k.IsValid() {
		return k, v, fmt.Errorf("entry without key: %w", errs.ErrMalformedInput)
	}
	if !v.IsValid() {
		v = reflect.Zero(vt)
	}

	return k, v, nil
}

// mapBody encodes maps as a count at field 1 followed by entries at field 2.
type mapBody struct {
	reg *Registry
	typ reflect.Type
}

func (b mapBody) wireType() format.WireType { return format.WireTagDelimited }

func (b mapBody) childTypes() []reflect.Type {
	return []reflect.Type{b.typ.Key(), b.typ.Elem()}
}

func (b mapBody) writeBody(w *buffers.Writer, v reflect.Value) error {
	kt, vt := b.typ.Key(), b.typ.Elem()
	writeCount(w, 1, v.Len())
	delta := uint32(1)
	for _, k := range sortedKeys(v) {
		if err := b.reg.writeEntry(w, delta, kt, vt, k, v.MapIndex(k)); err != nil {
			return err
		}
		delta = 0
	}
	w.WriteEndObject()

	return nil
}

func (b mapBody) readBody(r *buffers.Reader, h buffers.FieldHeader, dst reflect.Value, created func(reflect.Value)) error {
	if err := expectWire(h, format.WireTagDelimited, b.typ); err != nil {
		return err
	}
	ensure := mapAllocator(b.typ, dst, created)

	err := forEachField(r, func(id uint32, h buffers.FieldHeader) error {
		switch id {
		case 1:
			n, err := readCount(r, h)
			if err != nil {
				return err
			}
			ensure(n)

			return nil
		case 2:
			k, v, err := b.reg.readEntry(r, h, b.typ.Key(), b.typ.Elem())
			if err != nil {
				return err
			}
			ensure(0)
			dst.SetMapIndex(k, v)

			return nil
		default:
			return r.SkipField(h)
		}
	})
	if err != nil {
		return err
	}
	ensure(0)

	return nil
}

// mapAllocator returns a function that creates the destination map on first use.
func mapAllocator(typ reflect.Type, dst reflect.Value, created func(reflect.Value)) func(n int) {
	return func(n int) {
		if !dst.IsNil() {
			return
		}
		dst.Set(reflect.MakeMapWithSize(typ, n))
		if created != nil {
			created(dst)
		}
	}
}

// setBody encodes maps with empty-struct values as a count at field 1 followed by the
// keys at field 2.
type setBody struct {
	reg *Registry
	typ reflect.Type
}

func (b setBody) wireType() format.WireType { return format.WireTagDelimited }

func (b setBody) childTypes() []reflect.Type {
	return []reflect.Type{b.typ.Key()}
}

func (b setBody) writeBody(w *buffers.Writer, v reflect.Value) error {
	kt := b.typ.Key()
	c, err := b.reg.codecFor(kt)
	if err != nil {
		return err
	}

	writeCount(w, 1, v.Len())
	delta := uint32(1)
	for _, k := range sortedKeys(v) {
		if err := c.WriteField(w, delta, kt, k); err != nil {
			return err
		}
		delta = 0
	}
	w.WriteEndObject()

	return nil
}

func (b setBody) readBody(r *buffers.Reader, h buffers.FieldHeader, dst reflect.Value, created func(reflect.Value)) error {
	if err := expectWire(h, format.WireTagDelimited, b.typ); err != nil {
		return err
	}
	ensure := mapAllocator(b.typ, dst, created)
	present := reflect.Zero(b.typ.Elem())

	err := forEachField(r, func(id uint32, h buffers.FieldHeader) error {
		switch id {
		case 1:
			n, err := readCount(r, h)
			if err != nil {
				return err
			}
			ensure(n)

			return nil
		case 2:
			k, err := b.reg.readChild(r, h, b.typ.Key())
			if err != nil {
				return err
			}
			ensure(0)
			dst.SetMapIndex(k, present)

			return nil
		default:
			return r.SkipField(h)
		}
	})
	if err != nil {
		return err
	}
	ensure(0)

	return nil
}
