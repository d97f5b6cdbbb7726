package codec

import (
	"fmt"
	"net"
	"net/netip"
	"net/url"
	"reflect"
	"time"

	"github.com/google/uuid"

	"github.com/arloliu/graft/buffers"
	"github.com/arloliu/graft/encoding"
	"github.com/arloliu/graft/errs"
	"github.com/arloliu/graft/format"
	"github.com/arloliu/graft/typedesc"
	"github.com/arloliu/graft/wellknown"
)

// valueBody encodes a concrete type through a pair of typed functions.
type valueBody[T any] struct {
	wire  format.WireType
	write func(w *buffers.Writer, v T) error
	read  func(r *buffers.Reader, h buffers.FieldHeader) (T, error)
}

func (b valueBody[T]) wireType() format.WireType { return b.wire }

func (b valueBody[T]) writeBody(w *buffers.Writer, v reflect.Value) error {
	return b.write(w, fromValue[T](v))
}

func (b valueBody[T]) readBody(r *buffers.Reader, h buffers.FieldHeader, dst reflect.Value, created func(reflect.Value)) error {
	if err := expectWire(h, b.wire, dst.Type()); err != nil {
		return err
	}
	v, err := b.read(r, h)
	if err != nil {
		return err
	}
	dst.Set(reflect.ValueOf(v))
	if created != nil {
		created(dst)
	}

	return nil
}

func readPayload(r *buffers.Reader, typ string, decode func(p []byte) error) error {
	p, err := r.ReadLengthPrefixed()
	if err != nil {
		return err
	}
	if err := decode(p); err != nil {
		return fmt.Errorf("decode %s: %w: %w", typ, errs.ErrMalformedInput, err)
	}

	return nil
}

var int128Body = valueBody[wellknown.Int128]{
	wire: format.WireVarInt,
	write: func(w *buffers.Writer, v wellknown.Int128) error {
		w.WriteVarUint128(encoding.ZigZag128(v.Hi, v.Lo))
		return nil
	},
	read: func(r *buffers.Reader, _ buffers.FieldHeader) (wellknown.Int128, error) {
		hi, lo, err := r.ReadVarUint128()
		if err != nil {
			return wellknown.Int128{}, err
		}
		shi, slo := encoding.UnZigZag128(hi, lo)

		return wellknown.Int128{Hi: shi, Lo: slo}, nil
	},
}

var uint128Body = valueBody[wellknown.Uint128]{
	wire: format.WireVarInt,
	write: func(w *buffers.Writer, v wellknown.Uint128) error {
		w.WriteVarUint128(v.Hi, v.Lo)
		return nil
	},
	read: func(r *buffers.Reader, _ buffers.FieldHeader) (wellknown.Uint128, error) {
		hi, lo, err := r.ReadVarUint128()
		return wellknown.Uint128{Hi: hi, Lo: lo}, err
	},
}

type gobValue interface {
	GobEncode() ([]byte, error)
	GobDecode([]byte) error
}

// gobBody encodes the math/big types through their canonical gob form.
func gobBody[T gobValue](alloc func() T) valueBody[T] {
	return valueBody[T]{
		wire: format.WireLengthPrefixed,
		write: func(w *buffers.Writer, v T) error {
			p, err := v.GobEncode()
			if err != nil {
				return err
			}
			w.WriteLengthPrefixed(p)

			return nil
		},
		read: func(r *buffers.Reader, _ buffers.FieldHeader) (T, error) {
			v := alloc()
			err := readPayload(r, fmt.Sprintf("%T", v), v.GobDecode)

			return v, err
		},
	}
}

var timeBody = valueBody[time.Time]{
	wire: format.WireLengthPrefixed,
	write: func(w *buffers.Writer, v time.Time) error {
		p, err := v.MarshalBinary()
		if err != nil {
			return fmt.Errorf("encode time: %w", err)
		}
		w.WriteLengthPrefixed(p)

		return nil
	},
	read: func(r *buffers.Reader, _ buffers.FieldHeader) (time.Time, error) {
		var t time.Time
		err := readPayload(r, "time.Time", t.UnmarshalBinary)

		return t, err
	},
}

var dateBody = valueBody[wellknown.Date]{
	wire: format.WireVarInt,
	write: func(w *buffers.Writer, v wellknown.Date) error {
		w.WriteVarInt64(v.DayNumber())
		return nil
	},
	read: func(r *buffers.Reader, _ buffers.FieldHeader) (wellknown.Date, error) {
		n, err := r.ReadVarInt64()
		return wellknown.DateFromDayNumber(n), err
	},
}

var uuidBody = valueBody[uuid.UUID]{
	wire: format.WireLengthPrefixed,
	write: func(w *buffers.Writer, v uuid.UUID) error {
		w.WriteLengthPrefixed(v[:])
		return nil
	},
	read: func(r *buffers.Reader, _ buffers.FieldHeader) (uuid.UUID, error) {
		var id uuid.UUID
		err := readPayload(r, "uuid.UUID", func(p []byte) error {
			parsed, err := uuid.FromBytes(p)
			id = parsed

			return err
		})

		return id, err
	},
}

var netipBody = valueBody[netip.Addr]{
	wire: format.WireLengthPrefixed,
	write: func(w *buffers.Writer, v netip.Addr) error {
		p, err := v.MarshalBinary()
		if err != nil {
			return err
		}
		w.WriteLengthPrefixed(p)

		return nil
	},
	read: func(r *buffers.Reader, _ buffers.FieldHeader) (netip.Addr, error) {
		var a netip.Addr
		err := readPayload(r, "netip.Addr", a.UnmarshalBinary)

		return a, err
	},
}

var netIPBody = valueBody[net.IP]{
	wire: format.WireLengthPrefixed,
	write: func(w *buffers.Writer, v net.IP) error {
		w.WriteLengthPrefixed(v)
		return nil
	},
	read: func(r *buffers.Reader, _ buffers.FieldHeader) (net.IP, error) {
		p, err := r.ReadLengthPrefixed()
		if err != nil {
			return nil, err
		}
		if len(p) != 0 && len(p) != net.IPv4len && len(p) != net.IPv6len {
			return nil, fmt.Errorf("ip of %d bytes: %w", len(p), errs.ErrMalformedInput)
		}

		return net.IP(p), nil
	},
}

var urlBody = valueBody[*url.URL]{
	wire: format.WireLengthPrefixed,
	write: func(w *buffers.Writer, v *url.URL) error {
		w.WriteLengthPrefixed([]byte(v.String()))
		return nil
	},
	read: func(r *buffers.Reader, _ buffers.FieldHeader) (*url.URL, error) {
		var u *url.URL
		err := readPayload(r, "url.URL", func(p []byte) error {
			parsed, err := url.Parse(string(p))
			u = parsed

			return err
		})

		return u, err
	},
}

var descriptorBody = valueBody[*typedesc.Descriptor]{
	wire: format.WireLengthPrefixed,
	write: func(w *buffers.Writer, v *typedesc.Descriptor) error {
		w.WriteLengthPrefixed(v.AppendBinary(nil))
		return nil
	},
	read: func(r *buffers.Reader, _ buffers.FieldHeader) (*typedesc.Descriptor, error) {
		d := new(typedesc.Descriptor)
		err := readPayload(r, "type descriptor", d.UnmarshalBinary)

		return d, err
	},
}

// typeBody encodes reflect.Type values as descriptors resolved through the
// writer's and reader's type resolvers.
var typeBody = valueBody[reflect.Type]{
	wire: format.WireLengthPrefixed,
	write: func(w *buffers.Writer, v reflect.Type) error {
		res := w.Resolver()
		if res == nil {
			return fmt.Errorf("encode type %v without a type resolver: %w", v, errs.ErrUnsupportedType)
		}
		d, err := res.DescribeType(v)
		if err != nil {
			return err
		}
		w.WriteLengthPrefixed(d.AppendBinary(nil))

		return nil
	},
	read: func(r *buffers.Reader, _ buffers.FieldHeader) (reflect.Type, error) {
		d := new(typedesc.Descriptor)
		if err := readPayload(r, "type descriptor", d.UnmarshalBinary); err != nil {
			return nil, err
		}
		if res := r.Resolver(); res != nil {
			if t, ok := res.ResolveType(d); ok {
				return t, nil
			}
		}

		return nil, fmt.Errorf("unknown type %s: %w", d, errs.ErrUnsupportedType)
	},
}

// versionBody writes the four components as fields 0 to 3.
type versionBody struct{}

func (versionBody) wireType() format.WireType { return format.WireTagDelimited }

func (versionBody) writeBody(w *buffers.Writer, v reflect.Value) error {
	ver := fromValue[wellknown.Version](v)
	for i, c := range []int32{ver.Major, ver.Minor, ver.Build, ver.Revision} {
		w.WriteFieldHeaderExpected(uint32(min(i, 1)), format.WireVarInt) //nolint:gosec
		w.WriteVarInt32(c)
	}
	w.WriteEndObject()

	return nil
}

func (versionBody) readBody(r *buffers.Reader, h buffers.FieldHeader, dst reflect.Value, _ func(reflect.Value)) error {
	if err := expectWire(h, format.WireTagDelimited, dst.Type()); err != nil {
		return err
	}
	ver := wellknown.Version{Build: -1, Revision: -1}
	comps := []*int32{&ver.Major, &ver.Minor, &ver.Build, &ver.Revision}
	err := forEachField(r, func(id uint32, h buffers.FieldHeader) error {
		if id >= uint32(len(comps)) || h.WireType != format.WireVarInt {
			return r.SkipField(h)
		}
		c, err := r.ReadVarInt32()
		*comps[id] = c

		return err
	})
	if err != nil {
		return err
	}
	dst.Set(reflect.ValueOf(ver))

	return nil
}

// fixed32Body encodes 32-bit unsigned kinds as raw little-endian words.
type fixed32Body struct{}

func (fixed32Body) wireType() format.WireType { return format.WireFixed32 }

func (fixed32Body) writeBody(w *buffers.Writer, v reflect.Value) error {
	w.WriteUint32(uint32(v.Uint())) //nolint:gosec
	return nil
}

func (fixed32Body) readBody(r *buffers.Reader, h buffers.FieldHeader, dst reflect.Value, _ func(reflect.Value)) error {
	if err := expectWire(h, format.WireFixed32, dst.Type()); err != nil {
		return err
	}
	u, err := r.ReadUint32()
	if err != nil {
		return err
	}
	dst.SetUint(uint64(u))

	return nil
}

