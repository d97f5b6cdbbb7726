package codec

import (
	"math/big"
	"net"
	"net/netip"
	"net/url"
	"reflect"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/x448/float16"

	"github.com/arloliu/graft/session"
	"github.com/arloliu/graft/typedesc"
	"github.com/arloliu/graft/wellknown"
)

var rtypeType = reflect.TypeOf(reflect.TypeOf(0))

// wellKnownOrder lists the built-in types by wire ID, starting at 1.
// IDs are part of the wire format; append only.
var wellKnownOrder = []reflect.Type{
	reflect.TypeFor[bool](),
	reflect.TypeFor[int8](),
	reflect.TypeFor[int16](),
	reflect.TypeFor[int32](),
	reflect.TypeFor[int64](),
	reflect.TypeFor[uint8](),
	reflect.TypeFor[uint16](),
	reflect.TypeFor[uint32](),
	reflect.TypeFor[uint64](),
	reflect.TypeFor[int](),
	reflect.TypeFor[uint](),
	reflect.TypeFor[float32](),
	reflect.TypeFor[float64](),
	reflect.TypeFor[string](),
	reflect.TypeFor[[]byte](),
	reflect.TypeFor[float16.Float16](),
	reflect.TypeFor[wellknown.Int128](),
	reflect.TypeFor[wellknown.Uint128](),
	reflect.TypeFor[time.Time](),
	reflect.TypeFor[time.Duration](),
	reflect.TypeFor[wellknown.Date](),
	reflect.TypeFor[wellknown.TimeOfDay](),
	reflect.TypeFor[uuid.UUID](),
	reflect.TypeFor[wellknown.Version](),
	reflect.TypeFor[wellknown.BitVector32](),
	reflect.TypeFor[netip.Addr](),
	reflect.TypeFor[net.IP](),
	reflect.TypeFor[*url.URL](),
	reflect.TypeFor[*big.Int](),
	reflect.TypeFor[*big.Float](),
	reflect.TypeFor[*big.Rat](),
	rtypeType,
	reflect.TypeFor[*typedesc.Descriptor](),
	reflect.TypeFor[struct{}](),
	reflect.TypeFor[complex64](),
	reflect.TypeFor[complex128](),
	reflect.TypeFor[uintptr](),
}

var (
	wellKnownIDs   = make(map[reflect.Type]uint32, len(wellKnownOrder))
	wellKnownTypes = make(map[uint32]reflect.Type, len(wellKnownOrder))
)

func init() {
	for i, t := range wellKnownOrder {
		id := uint32(i + 1) //nolint:gosec
		wellKnownIDs[t] = id
		wellKnownTypes[id] = t
	}
}

var builtinCodecs = sync.OnceValue(func() map[reflect.Type]FieldCodec {
	bodies := map[reflect.Type]body{
		reflect.TypeFor[bool]():                  boolBody{},
		reflect.TypeFor[int8]():                  intBody{checked: true},
		reflect.TypeFor[int16]():                 intBody{checked: true},
		reflect.TypeFor[int32]():                 intBody{checked: true},
		reflect.TypeFor[int64]():                 intBody{checked: true},
		reflect.TypeFor[int]():                   intBody{checked: true},
		reflect.TypeFor[uint8]():                 uintBody{checked: true},
		reflect.TypeFor[uint16]():                uintBody{checked: true},
		reflect.TypeFor[uint32]():                uintBody{checked: true},
		reflect.TypeFor[uint64]():                uintBody{checked: true},
		reflect.TypeFor[uint]():                  uintBody{checked: true},
		reflect.TypeFor[uintptr]():               uintBody{checked: true},
		reflect.TypeFor[float32]():               float32Body{},
		reflect.TypeFor[float64]():               float64Body{},
		reflect.TypeFor[complex64]():             complexBody{partSize: 4},
		reflect.TypeFor[complex128]():            complexBody{partSize: 8},
		reflect.TypeFor[string]():                stringBody{},
		reflect.TypeFor[[]byte]():                bytesBody{},
		reflect.TypeFor[float16.Float16]():       halfBody{},
		reflect.TypeFor[wellknown.Int128]():      int128Body,
		reflect.TypeFor[wellknown.Uint128]():     uint128Body,
		reflect.TypeFor[time.Time]():             timeBody,
		reflect.TypeFor[time.Duration]():         intBody{checked: true},
		reflect.TypeFor[wellknown.Date]():        dateBody,
		reflect.TypeFor[wellknown.TimeOfDay]():   intBody{checked: true},
		reflect.TypeFor[uuid.UUID]():             uuidBody,
		reflect.TypeFor[wellknown.Version]():     versionBody{},
		reflect.TypeFor[wellknown.BitVector32](): fixed32Body{},
		reflect.TypeFor[netip.Addr]():            netipBody,
		reflect.TypeFor[net.IP]():                netIPBody,
		reflect.TypeFor[*url.URL]():              urlBody,
		reflect.TypeFor[*big.Int]():              gobBody(func() *big.Int { return new(big.Int) }),
		reflect.TypeFor[*big.Float]():            gobBody(func() *big.Float { return new(big.Float) }),
		reflect.TypeFor[*big.Rat]():              gobBody(func() *big.Rat { return new(big.Rat) }),
		rtypeType:                                typeBody,
		reflect.TypeFor[*typedesc.Descriptor]():  descriptorBody,
		reflect.TypeFor[struct{}]():              markerBody{},
	}

	m := make(map[reflect.Type]FieldCodec, len(bodies))
	for t, b := range bodies {
		m[t] = newField(t, b)
	}

	return m
})

var builtinCopiers = sync.OnceValue(func() map[reflect.Type]ValueCopier {
	m := make(map[reflect.Type]ValueCopier, len(wellKnownOrder))
	for _, t := range wellKnownOrder {
		m[t] = immutableCopier{}
	}
	m[reflect.TypeFor[[]byte]()] = bytesCopier{}
	m[reflect.TypeFor[net.IP]()] = bytesCopier{}
	m[reflect.TypeFor[*url.URL]()] = pointerFuncCopier[*url.URL](func(u *url.URL) *url.URL {
		c := *u
		return &c
	})
	m[reflect.TypeFor[*big.Int]()] = pointerFuncCopier[*big.Int](func(x *big.Int) *big.Int {
		return new(big.Int).Set(x)
	})
	m[reflect.TypeFor[*big.Float]()] = pointerFuncCopier[*big.Float](func(x *big.Float) *big.Float {
		return new(big.Float).Copy(x)
	})
	m[reflect.TypeFor[*big.Rat]()] = pointerFuncCopier[*big.Rat](func(x *big.Rat) *big.Rat {
		return new(big.Rat).Set(x)
	})

	return m
})

// immutableCopier returns its input.
type immutableCopier struct{}

func (immutableCopier) DeepCopy(v reflect.Value, _ *session.Session) (reflect.Value, error) {
	return v, nil
}

func (immutableCopier) IsImmutable() bool { return true }

// bytesCopier copies byte slices of any named or unnamed byte slice type.
type bytesCopier struct{}

func (bytesCopier) DeepCopy(v reflect.Value, s *session.Session) (reflect.Value, error) {
	if v.IsNil() {
		return v, nil
	}
	id, tracked := session.IdentityOf(v)
	if tracked {
		if c, ok := s.Copies.TryGetCopy(id); ok {
			return c, nil
		}
	}
	out := reflect.MakeSlice(v.Type(), v.Len(), v.Len())
	reflect.Copy(out, v)
	if tracked {
		s.Copies.RecordCopy(id, out)
	}

	return out, nil
}

func (bytesCopier) IsImmutable() bool { return false }

// pointerFuncCopier copies a pointer type with a clone function, keeping shared
// pointers shared in the copy.
type pointerFuncCopier[T any] func(T) T

func (f pointerFuncCopier[T]) DeepCopy(v reflect.Value, s *session.Session) (reflect.Value, error) {
	if v.IsNil() {
		return v, nil
	}
	id, _ := session.IdentityOf(v)
	if c, ok := s.Copies.TryGetCopy(id); ok {
		return c, nil
	}
	out := reflect.ValueOf(f(fromValue[T](v)))
	s.Copies.RecordCopy(id, out)

	return out, nil
}

func (pointerFuncCopier[T]) IsImmutable() bool { return false }
