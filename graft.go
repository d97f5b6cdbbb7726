// Package graft provides a compact binary serializer and a deep copier for Go
// object graphs.
//
// The encoding is a stream of tagged fields. Shared pointers, maps and slices
// are written once and referenced afterwards, so cyclic graphs round trip and
// aliasing is preserved. Interface-typed fields carry their runtime type, and
// unknown fields are skipped, so readers tolerate added and removed fields.
//
// # Basic Usage
//
//	type Order struct {
//	    ID    int64
//	    Items []string
//	    Next  *Order
//	}
//
//	data, err := graft.Marshal(&Order{ID: 1, Items: []string{"a"}})
//	if err != nil {
//	    return err
//	}
//	order, err := graft.Unmarshal[*Order](data)
//
//	clone, err := graft.Clone(order)
//
// Framed payloads add compression and a checksum:
//
//	framed, err := graft.MarshalFrame(order, format.CompressionZstd)
//	order, err = graft.UnmarshalFrame[*Order](framed)
//
// # Package Structure
//
// These functions wrap codec.Default(). Use the codec package directly to
// register custom codecs, to configure sessions, or to write into segmented
// buffers. The frame and compress packages hold the envelope, and the config
// package maps a YAML file onto all of their options.
package graft

import (
	"reflect"
	"sync"

	"github.com/arloliu/graft/codec"
	"github.com/arloliu/graft/format"
	"github.com/arloliu/graft/frame"
	"github.com/arloliu/graft/internal/hash"
)

var (
	serializers sync.Map // reflect.Type -> *codec.Serializer[T]
	copiers     sync.Map // reflect.Type -> *codec.DeepCopier[T]
	decoder     = sync.OnceValue(func() *frame.Decoder {
		d, _ := frame.NewDecoder()
		return d
	})
)

func serializerFor[T any]() (*codec.Serializer[T], error) {
	typ := reflect.TypeFor[T]()
	if s, ok := serializers.Load(typ); ok {
		return s.(*codec.Serializer[T]), nil //nolint:forcetypeassert
	}
	s, err := codec.NewSerializer[T](codec.Default())
	if err != nil {
		return nil, err
	}
	actual, _ := serializers.LoadOrStore(typ, s)

	return actual.(*codec.Serializer[T]), nil //nolint:forcetypeassert
}

// Marshal encodes v with the default registry.
func Marshal[T any](v T) ([]byte, error) {
	s, err := serializerFor[T]()
	if err != nil {
		return nil, err
	}

	return s.SerializeToBytes(v)
}

// Unmarshal decodes data produced by Marshal for the same T.
func Unmarshal[T any](data []byte) (T, error) {
	s, err := serializerFor[T]()
	if err != nil {
		var zero T
		return zero, err
	}

	return s.DeserializeBytes(data)
}

// Clone returns a deep copy of v that shares no mutable state with it.
// Shared references stay shared in the copy and cycles are reproduced.
func Clone[T any](v T) (T, error) {
	typ := reflect.TypeFor[T]()
	c, ok := copiers.Load(typ)
	if !ok {
		dc, err := codec.NewDeepCopier[T](codec.Default())
		if err != nil {
			var zero T
			return zero, err
		}
		c, _ = copiers.LoadOrStore(typ, dc)
	}

	return c.(*codec.DeepCopier[T]).Copy(v) //nolint:forcetypeassert
}

// MarshalFrame encodes v and wraps it in a checksummed frame compressed with ct.
func MarshalFrame[T any](v T, ct format.CompressionType) ([]byte, error) {
	enc, err := frame.NewEncoder(frame.WithCompression(ct))
	if err != nil {
		return nil, err
	}
	payload, err := Marshal(v)
	if err != nil {
		return nil, err
	}

	return enc.Encode(payload)
}

// UnmarshalFrame verifies a frame produced by MarshalFrame and decodes its payload.
func UnmarshalFrame[T any](data []byte) (T, error) {
	payload, _, err := decoder().Decode(data)
	if err != nil {
		var zero T
		return zero, err
	}

	return Unmarshal[T](payload)
}

// TypeKey returns the 64-bit hash under which a wire type name is indexed.
func TypeKey(name string) uint64 {
	return hash.TypeKey(name)
}
