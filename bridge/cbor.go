// Package bridge adapts types that already have a CBOR representation to the
// graft codec and copier contracts.
//
// A bridged value travels as one LengthPrefixed field whose payload is the
// deterministic CBOR encoding of the value. Bridged values are opaque to the
// reference table: pointers shared inside them are not kept shared.
package bridge

import (
	"fmt"
	"reflect"

	"github.com/fxamacker/cbor/v2"

	"github.com/arloliu/graft/buffers"
	"github.com/arloliu/graft/codec"
	"github.com/arloliu/graft/errs"
	"github.com/arloliu/graft/format"
	"github.com/arloliu/graft/session"
)

// encMode uses Core Deterministic Encoding, so equal values produce equal bytes.
var encMode cbor.EncMode

var decMode cbor.DecMode

func init() {
	var err error

	encOptions := cbor.CoreDetEncOptions()
	encOptions.TextMarshaler = cbor.TextMarshalerTextString
	encMode, err = encOptions.EncMode()
	if err != nil {
		panic("bridge: CBOR encoder initialization failed: " + err.Error())
	}

	decMode, err = cbor.DecOptions{
		DefaultMapType:  reflect.TypeOf(map[string]any(nil)),
		TextUnmarshaler: cbor.TextUnmarshalerTextString,
	}.DecMode()
	if err != nil {
		panic("bridge: CBOR decoder initialization failed: " + err.Error())
	}
}

// Marshal encodes v with the bridge encoding.
func Marshal(v any) ([]byte, error) {
	return encMode.Marshal(v)
}

// Unmarshal decodes data produced by Marshal into v.
func Unmarshal(data []byte, v any) error {
	return decMode.Unmarshal(data, v)
}

// Diagnose returns the CBOR diagnostic notation of data.
func Diagnose(data []byte) (string, error) {
	return cbor.Diagnose(data)
}

// Codec encodes T as a CBOR payload.
type Codec[T any] struct{}

var _ codec.Codec[struct{}] = Codec[struct{}]{}

// WriteField writes v as a LengthPrefixed field.
func (Codec[T]) WriteField(w *buffers.Writer, delta uint32, expected reflect.Type, v T) error {
	payload, err := encMode.Marshal(v)
	if err != nil {
		return fmt.Errorf("cbor encode %v: %w", reflect.TypeFor[T](), err)
	}
	if err := w.WriteFieldHeader(delta, expected, reflect.TypeFor[T](), format.WireLengthPrefixed); err != nil {
		return err
	}
	w.WriteLengthPrefixed(payload)

	return nil
}

// ReadValue decodes the CBOR payload that follows h.
func (Codec[T]) ReadValue(r *buffers.Reader, h buffers.FieldHeader) (T, error) {
	var out T
	if h.WireType != format.WireLengthPrefixed {
		return out, fmt.Errorf("%v field with wire type %s: %w", reflect.TypeFor[T](), h.WireType, errs.ErrMalformedInput)
	}
	payload, err := r.ReadLengthPrefixed()
	if err != nil {
		return out, err
	}
	if err := decMode.Unmarshal(payload, &out); err != nil {
		return out, fmt.Errorf("cbor decode %v: %v: %w", reflect.TypeFor[T](), err, errs.ErrMalformedInput)
	}

	return out, nil
}

// Copier copies T through a CBOR round trip.
type Copier[T any] struct{}

var _ codec.Copier[struct{}] = Copier[struct{}]{}

// DeepCopy returns an independent copy of v.
func (Copier[T]) DeepCopy(v T, _ *session.Session) (T, error) {
	var out T
	payload, err := encMode.Marshal(v)
	if err != nil {
		return out, fmt.Errorf("cbor encode %v: %w", reflect.TypeFor[T](), err)
	}
	if err := decMode.Unmarshal(payload, &out); err != nil {
		return out, fmt.Errorf("cbor decode %v: %w", reflect.TypeFor[T](), err)
	}

	return out, nil
}

func (Copier[T]) IsImmutable() bool { return false }

// Register installs the CBOR codec and copier for T in reg.
func Register[T any](reg *codec.Registry) {
	codec.RegisterCodec[T](reg, Codec[T]{})
	codec.RegisterCopier[T](reg, Copier[T]{})
}
