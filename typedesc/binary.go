package typedesc

import (
	"fmt"
	"io"

	"github.com/arloliu/graft/encoding"
	"github.com/arloliu/graft/errs"
)

// maxNesting bounds descriptor nesting while decoding untrusted input.
const maxNesting = 64

// maxNameLen bounds the length of a decoded type name.
const maxNameLen = 4096

// AppendBinary appends the binary form of d to dst.
//
// Layout: one shape byte followed by the shape's payload. Names are a varint length
// and UTF-8 bytes; lengths, ranks, arities and argument counts are varints; nested
// descriptors follow in place.
func (d *Descriptor) AppendBinary(dst []byte) []byte {
	dst = append(dst, byte(d.Shape))

	switch d.Shape {
	case ShapeNamed:
		dst = appendName(dst, d.Name)
	case ShapePointer, ShapeSlice, ShapeByRef:
		dst = d.Elem.AppendBinary(dst)
	case ShapeArray, ShapeMultiArray:
		dst = encoding.AppendUvarint(dst, uint64(d.Len)) //nolint:gosec
		dst = d.Elem.AppendBinary(dst)
	case ShapeMap:
		dst = d.Key.AppendBinary(dst)
		dst = d.Elem.AppendBinary(dst)
	case ShapeGeneric:
		dst = appendName(dst, d.Name)
		dst = encoding.AppendUvarint(dst, uint64(len(d.Args)))
		for _, arg := range d.Args {
			dst = arg.AppendBinary(dst)
		}
	case ShapeOpenGeneric:
		dst = appendName(dst, d.Name)
		dst = encoding.AppendUvarint(dst, uint64(d.Len)) //nolint:gosec
	}

	return dst
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (d *Descriptor) MarshalBinary() ([]byte, error) {
	return d.AppendBinary(nil), nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (d *Descriptor) UnmarshalBinary(data []byte) error {
	r := &sliceReader{buf: data}
	decoded, err := ReadBinary(r)
	if err != nil {
		return err
	}
	if r.off != len(data) {
		return fmt.Errorf("%d trailing bytes after type descriptor: %w", len(data)-r.off, errs.ErrMalformedInput)
	}
	*d = *decoded

	return nil
}

// ReadBinary decodes one descriptor from r.
// Unknown shapes and excessive nesting fail with errs.ErrMalformedInput.
func ReadBinary(r io.ByteReader) (*Descriptor, error) {
	return readBinary(r, 0)
}

func readBinary(r io.ByteReader, depth int) (*Descriptor, error) {
	if depth > maxNesting {
		return nil, fmt.Errorf("type descriptor nested deeper than %d: %w", maxNesting, errs.ErrMalformedInput)
	}

	b, err := r.ReadByte()
	if err != nil {
		return nil, errs.ErrUnexpectedEndOfData
	}

	d := &Descriptor{Shape: Shape(b)}
	switch d.Shape {
	case ShapeNamed:
		d.Name, err = readName(r)
	case ShapePointer, ShapeSlice, ShapeByRef:
		d.Elem, err = readBinary(r, depth+1)
	case ShapeArray, ShapeMultiArray:
		if d.Len, err = readLen(r); err == nil {
			d.Elem, err = readBinary(r, depth+1)
		}
	case ShapeMap:
		if d.Key, err = readBinary(r, depth+1); err == nil {
			d.Elem, err = readBinary(r, depth+1)
		}
	case ShapeGeneric:
		err = readGenericArgs(r, d, depth)
	case ShapeOpenGeneric:
		if d.Name, err = readName(r); err == nil {
			d.Len, err = readLen(r)
		}
	default:
		return nil, fmt.Errorf("unknown type descriptor shape 0x%02x: %w", b, errs.ErrMalformedInput)
	}
	if err != nil {
		return nil, err
	}

	return d, nil
}

func readGenericArgs(r io.ByteReader, d *Descriptor, depth int) error {
	name, err := readName(r)
	if err != nil {
		return err
	}
	d.Name = name

	n, err := readLen(r)
	if err != nil {
		return err
	}
	if n > maxNesting {
		return fmt.Errorf("generic type %s has %d arguments: %w", name, n, errs.ErrMalformedInput)
	}
	d.Args = make([]*Descriptor, n)
	for i := range d.Args {
		if d.Args[i], err = readBinary(r, depth+1); err != nil {
			return err
		}
	}

	return nil
}

func appendName(dst []byte, name string) []byte {
	dst = encoding.AppendUvarint(dst, uint64(len(name)))
	return append(dst, name...)
}

func readName(r io.ByteReader) (string, error) {
	n, err := readLen(r)
	if err != nil {
		return "", err
	}
	if n > maxNameLen {
		return "", fmt.Errorf("type name of %d bytes: %w", n, errs.ErrMalformedInput)
	}
	buf := make([]byte, n)
	for i := range buf {
		if buf[i], err = r.ReadByte(); err != nil {
			return "", errs.ErrUnexpectedEndOfData
		}
	}

	return string(buf), nil
}

func readLen(r io.ByteReader) (int, error) {
	v, err := encoding.ReadUvarint32(r)
	if err != nil {
		return 0, err
	}

	return int(v), nil
}

type sliceReader struct {
	buf []byte
	off int
}

func (s *sliceReader) ReadByte() (byte, error) {
	if s.off >= len(s.buf) {
		return 0, io.EOF
	}
	b := s.buf[s.off]
	s.off++

	return b, nil
}
