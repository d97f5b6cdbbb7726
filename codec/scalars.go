package codec

import (
	"fmt"
	"math"
	"reflect"

	"github.com/arloliu/graft/buffers"
	"github.com/arloliu/graft/endian"
	"github.com/arloliu/graft/errs"
	"github.com/arloliu/graft/format"
)

type boolBody struct{}

func (boolBody) wireType() format.WireType { return format.WireVarInt }

func (boolBody) writeBody(w *buffers.Writer, v reflect.Value) error {
	if v.Bool() {
		return w.WriteByte(1)
	}

	return w.WriteByte(0)
}

func (boolBody) readBody(r *buffers.Reader, h buffers.FieldHeader, dst reflect.Value, _ func(reflect.Value)) error {
	if err := expectWire(h, format.WireVarInt, dst.Type()); err != nil {
		return err
	}
	u, err := r.ReadVarUint64()
	if err != nil {
		return err
	}
	dst.SetBool(u != 0)

	return nil
}

// intBody encodes signed integer kinds as zig-zag varints. Readers also accept the
// fixed-width forms. When checked is false, values wider than the target kind are
// truncated instead of rejected.
type intBody struct {
	checked bool
}

func (intBody) wireType() format.WireType { return format.WireVarInt }

func (intBody) writeBody(w *buffers.Writer, v reflect.Value) error {
	w.WriteVarInt64(v.Int())
	return nil
}

func (b intBody) readBody(r *buffers.Reader, h buffers.FieldHeader, dst reflect.Value, _ func(reflect.Value)) error {
	var x int64
	switch h.WireType {
	case format.WireVarInt:
		v, err := r.ReadVarInt64()
		if err != nil {
			return err
		}
		x = v
	case format.WireFixed32:
		v, err := r.ReadUint32()
		if err != nil {
			return err
		}
		x = int64(int32(v)) //nolint:gosec
	case format.WireFixed64:
		v, err := r.ReadUint64()
		if err != nil {
			return err
		}
		x = int64(v) //nolint:gosec
	default:
		return wireMismatch(h, dst.Type())
	}
	if b.checked && dst.OverflowInt(x) {
		return fmt.Errorf("value %d overflows %v: %w", x, dst.Type(), errs.ErrMalformedInput)
	}
	dst.SetInt(x)

	return nil
}

// uintBody encodes unsigned integer kinds as varints.
type uintBody struct {
	checked bool
}

func (uintBody) wireType() format.WireType { return format.WireVarInt }

func (uintBody) writeBody(w *buffers.Writer, v reflect.Value) error {
	w.WriteVarUint64(v.Uint())
	return nil
}

func (b uintBody) readBody(r *buffers.Reader, h buffers.FieldHeader, dst reflect.Value, _ func(reflect.Value)) error {
	var x uint64
	switch h.WireType {
	case format.WireVarInt:
		v, err := r.ReadVarUint64()
		if err != nil {
			return err
		}
		x = v
	case format.WireFixed32:
		v, err := r.ReadUint32()
		if err != nil {
			return err
		}
		x = uint64(v)
	case format.WireFixed64:
		v, err := r.ReadUint64()
		if err != nil {
			return err
		}
		x = v
	default:
		return wireMismatch(h, dst.Type())
	}
	if b.checked && dst.OverflowUint(x) {
		return fmt.Errorf("value %d overflows %v: %w", x, dst.Type(), errs.ErrMalformedInput)
	}
	dst.SetUint(x)

	return nil
}

type float32Body struct{}

func (float32Body) wireType() format.WireType { return format.WireFixed32 }

func (float32Body) writeBody(w *buffers.Writer, v reflect.Value) error {
	w.WriteUint32(math.Float32bits(float32(v.Float())))
	return nil
}

func (float32Body) readBody(r *buffers.Reader, h buffers.FieldHeader, dst reflect.Value, _ func(reflect.Value)) error {
	if err := expectWire(h, format.WireFixed32, dst.Type()); err != nil {
		return err
	}
	bits, err := r.ReadUint32()
	if err != nil {
		return err
	}
	dst.SetFloat(float64(math.Float32frombits(bits)))

	return nil
}

// float64Body writes Fixed64 and also reads Fixed32 payloads.
type float64Body struct{}

func (float64Body) wireType() format.WireType { return format.WireFixed64 }

func (float64Body) writeBody(w *buffers.Writer, v reflect.Value) error {
	w.WriteUint64(math.Float64bits(v.Float()))
	return nil
}

func (float64Body) readBody(r *buffers.Reader, h buffers.FieldHeader, dst reflect.Value, _ func(reflect.Value)) error {
	switch h.WireType {
	case format.WireFixed64:
		bits, err := r.ReadUint64()
		if err != nil {
			return err
		}
		dst.SetFloat(math.Float64frombits(bits))
	case format.WireFixed32:
		bits, err := r.ReadUint32()
		if err != nil {
			return err
		}
		dst.SetFloat(float64(math.Float32frombits(bits)))
	default:
		return wireMismatch(h, dst.Type())
	}

	return nil
}

// halfBody writes the raw IEEE 754 binary16 pattern as a varint.
type halfBody struct{}

func (halfBody) wireType() format.WireType { return format.WireVarInt }

func (halfBody) writeBody(w *buffers.Writer, v reflect.Value) error {
	w.WriteVarUint64(v.Uint())
	return nil
}

func (halfBody) readBody(r *buffers.Reader, h buffers.FieldHeader, dst reflect.Value, _ func(reflect.Value)) error {
	if err := expectWire(h, format.WireVarInt, dst.Type()); err != nil {
		return err
	}
	u, err := r.ReadVarUint32()
	if err != nil {
		return err
	}
	if u > math.MaxUint16 {
		return fmt.Errorf("half-precision bits %#x: %w", u, errs.ErrMalformedInput)
	}
	dst.SetUint(uint64(u))

	return nil
}

// complexBody writes the real and imaginary parts as fixed-width floats.
type complexBody struct {
	partSize int
}

func (complexBody) wireType() format.WireType { return format.WireLengthPrefixed }

func (b complexBody) writeBody(w *buffers.Writer, v reflect.Value) error {
	c := v.Complex()
	w.WriteVarUint32(uint32(2 * b.partSize)) //nolint:gosec
	if b.partSize == 4 {
		w.WriteUint32(math.Float32bits(float32(real(c))))
		w.WriteUint32(math.Float32bits(float32(imag(c))))

		return nil
	}
	w.WriteUint64(math.Float64bits(real(c)))
	w.WriteUint64(math.Float64bits(imag(c)))

	return nil
}

func (b complexBody) readBody(r *buffers.Reader, h buffers.FieldHeader, dst reflect.Value, _ func(reflect.Value)) error {
	if err := expectWire(h, format.WireLengthPrefixed, dst.Type()); err != nil {
		return err
	}
	p, err := r.ReadLengthPrefixed()
	if err != nil {
		return err
	}
	if len(p) != 2*b.partSize {
		return fmt.Errorf("complex payload of %d bytes for %v: %w", len(p), dst.Type(), errs.ErrMalformedInput)
	}

	engine := endian.Wire()
	if b.partSize == 4 {
		re := math.Float32frombits(engine.Uint32(p[:4]))
		im := math.Float32frombits(engine.Uint32(p[4:]))
		dst.SetComplex(complex(float64(re), float64(im)))

		return nil
	}
	re := math.Float64frombits(engine.Uint64(p[:8]))
	im := math.Float64frombits(engine.Uint64(p[8:]))
	dst.SetComplex(complex(re, im))

	return nil
}

type stringBody struct{}

func (stringBody) wireType() format.WireType { return format.WireLengthPrefixed }

func (stringBody) writeBody(w *buffers.Writer, v reflect.Value) error {
	s := v.String()
	w.WriteVarUint64(uint64(len(s)))
	w.WriteString(s)

	return nil
}

func (stringBody) readBody(r *buffers.Reader, h buffers.FieldHeader, dst reflect.Value, _ func(reflect.Value)) error {
	if err := expectWire(h, format.WireLengthPrefixed, dst.Type()); err != nil {
		return err
	}
	p, err := r.ReadLengthPrefixed()
	if err != nil {
		return err
	}
	dst.SetString(string(p))

	return nil
}

// bytesBody encodes byte slices. Nil is handled by the field as a null reference,
// so an empty non-nil slice stays distinct from nil.
type bytesBody struct{}

func (bytesBody) wireType() format.WireType { return format.WireLengthPrefixed }

func (bytesBody) writeBody(w *buffers.Writer, v reflect.Value) error {
	w.WriteLengthPrefixed(v.Bytes())
	return nil
}

func (bytesBody) readBody(r *buffers.Reader, h buffers.FieldHeader, dst reflect.Value, created func(reflect.Value)) error {
	if err := expectWire(h, format.WireLengthPrefixed, dst.Type()); err != nil {
		return err
	}
	p, err := r.ReadLengthPrefixed()
	if err != nil {
		return err
	}
	dst.SetBytes(p)
	if created != nil {
		created(dst)
	}

	return nil
}

// markerBody encodes valueless types as an empty length-prefixed payload.
type markerBody struct{}

func (markerBody) wireType() format.WireType { return format.WireLengthPrefixed }

func (markerBody) writeBody(w *buffers.Writer, _ reflect.Value) error {
	w.WriteVarUint32(0)
	return nil
}

func (markerBody) readBody(r *buffers.Reader, h buffers.FieldHeader, dst reflect.Value, _ func(reflect.Value)) error {
	if h.WireType == format.WireTagDelimited {
		return r.SkipToEndObject()
	}
	if err := expectWire(h, format.WireLengthPrefixed, dst.Type()); err != nil {
		return err
	}
	n, err := r.ReadLength()
	if err != nil {
		return err
	}

	return r.Skip(n)
}
