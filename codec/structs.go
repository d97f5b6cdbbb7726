package codec

import (
	"fmt"
	"reflect"
	"slices"
	"strconv"

	"github.com/arloliu/graft/buffers"
	"github.com/arloliu/graft/errs"
	"github.com/arloliu/graft/format"
	"github.com/arloliu/graft/session"
)

// structMode selects which fields of a struct are written.
type structMode uint8

const (
	// sparseFields omits fields holding their zero value.
	sparseFields structMode = iota
	// allFields writes every field, as tuples do.
	allFields
	// optionalFields writes Valid and, when set, Value.
	optionalFields
	// choiceFields writes Case and the selected item.
	choiceFields
)

type structField struct {
	id    uint32
	index int
	typ   reflect.Type
}

// structBody encodes the exported fields of a struct as a tag-delimited object.
// Field IDs come from `graft:"N"` tags or, for untagged fields, follow the
// previous field's ID. Fields tagged `graft:"-"` are skipped.
type structBody struct {
	reg    *Registry
	typ    reflect.Type
	fields []structField
	mode   structMode
}

func newStructBody(reg *Registry, t reflect.Type) (structBody, error) {
	b := structBody{reg: reg, typ: t}
	switch {
	case t.Implements(optionType):
		valid, _ := t.FieldByName("Valid")
		value, _ := t.FieldByName("Value")
		b.mode = optionalFields
		b.fields = []structField{
			{id: 0, index: valid.Index[0], typ: valid.Type},
			{id: 1, index: value.Index[0], typ: value.Type},
		}

		return b, nil
	case t.Implements(tupleType):
		b.mode = allFields
	case t.Implements(choiceType):
		b.mode = choiceFields
	default:
		b.mode = sparseFields
	}

	fields, err := structFields(t)
	if err != nil {
		return structBody{}, err
	}
	b.fields = fields

	return b, nil
}

func structFields(t reflect.Type) ([]structField, error) {
	var (
		fields   []structField
		next     uint32
		exported int
	)
	for i := range t.NumField() {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		exported++

		tag := sf.Tag.Get("graft")
		if tag == "-" {
			continue
		}
		id := next
		if tag != "" {
			n, err := strconv.ParseUint(tag, 10, 32)
			if err != nil {
				return nil, fmt.Errorf("field %s of %v has tag %q: %w", sf.Name, t, tag, errs.ErrUnsupportedType)
			}
			id = uint32(n)
		}
		next = id + 1
		fields = append(fields, structField{id: id, index: i, typ: sf.Type})
	}
	if t.NumField() > 0 && exported == 0 {
		return nil, fmt.Errorf("%v has no exported fields: %w", t, errs.ErrUnsupportedType)
	}

	slices.SortStableFunc(fields, func(a, b structField) int { return int(a.id) - int(b.id) })
	for i := 1; i < len(fields); i++ {
		if fields[i].id == fields[i-1].id {
			return nil, fmt.Errorf("%v uses field id %d twice: %w", t, fields[i].id, errs.ErrUnsupportedType)
		}
	}

	return fields, nil
}

func (b structBody) wireType() format.WireType { return format.WireTagDelimited }

func (b structBody) childTypes() []reflect.Type {
	out := make([]reflect.Type, len(b.fields))
	for i, f := range b.fields {
		out[i] = f.typ
	}

	return out
}

func (b structBody) keep(v reflect.Value, f structField) bool {
	switch b.mode {
	case allFields:
		return true
	case optionalFields:
		return f.id == 0 || v.Field(b.fields[0].index).Bool()
	case choiceFields:
		return f.id == 0 || int64(f.id) == v.Field(b.fields[0].index).Int()
	default:
		return !v.Field(f.index).IsZero()
	}
}

func (b structBody) writeBody(w *buffers.Writer, v reflect.Value) error {
	var ids fieldIDs
	for _, f := range b.fields {
		if !b.keep(v, f) {
			continue
		}
		if err := b.reg.writeChild(w, ids.delta(f.id), f.typ, v.Field(f.index)); err != nil {
			return err
		}
	}
	w.WriteEndObject()

	return nil
}

func (b structBody) lookup(id uint32) (structField, bool) {
	i, ok := slices.BinarySearchFunc(b.fields, id, func(f structField, id uint32) int {
		return int(f.id) - int(id)
	})
	if !ok {
		return structField{}, false
	}

	return b.fields[i], true
}

func (b structBody) readBody(r *buffers.Reader, h buffers.FieldHeader, dst reflect.Value, _ func(reflect.Value)) error {
	if err := expectWire(h, format.WireTagDelimited, b.typ); err != nil {
		return err
	}

	return forEachField(r, func(id uint32, h buffers.FieldHeader) error {
		f, ok := b.lookup(id)
		if !ok {
			return r.SkipField(h)
		}
		v, err := b.reg.readChild(r, h, f.typ)
		if err != nil {
			return fmt.Errorf("%v field %d: %w", b.typ, id, err)
		}
		dst.Field(f.index).Set(v)

		return nil
	})
}

// structCopier copies a struct and then deep copies its exported fields.
// Unexported fields are shared with the source.
type structCopier struct {
	reg       *Registry
	typ       reflect.Type
	fields    []int
	immutable bool
}

func newStructCopier(reg *Registry, t reflect.Type) (ValueCopier, error) {
	c := structCopier{reg: reg, typ: t, immutable: true}
	for i := range t.NumField() {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		fc, err := reg.copierFor(sf.Type)
		if err != nil {
			return nil, fmt.Errorf("field %s of %v: %w", sf.Name, t, err)
		}
		c.fields = append(c.fields, i)
		c.immutable = c.immutable && fc.IsImmutable()
	}
	if t.NumField() > 0 && len(c.fields) == 0 {
		return nil, fmt.Errorf("%v has no exported fields: %w", t, errs.ErrUnsupportedType)
	}

	return c, nil
}

func (c structCopier) childTypes() []reflect.Type {
	out := make([]reflect.Type, len(c.fields))
	for i, idx := range c.fields {
		out[i] = c.typ.Field(idx).Type
	}

	return out
}

func (c structCopier) IsImmutable() bool { return c.immutable }

func (c structCopier) DeepCopy(v reflect.Value, s *session.Session) (reflect.Value, error) {
	if c.immutable {
		return v, nil
	}
	if err := s.Enter(); err != nil {
		return reflect.Value{}, err
	}
	defer s.Leave()

	out := reflect.New(c.typ).Elem()
	out.Set(v)
	for _, i := range c.fields {
		fc, err := c.reg.copierFor(c.typ.Field(i).Type)
		if err != nil {
			return reflect.Value{}, err
		}
		fv, err := fc.DeepCopy(v.Field(i), s)
		if err != nil {
			return reflect.Value{}, err
		}
		out.Field(i).Set(fv)
	}

	return out, nil
}
