package encoding

import (
	"errors"
	"fmt"
	"io"

	"github.com/arloliu/graft/errs"
)

const (
	// MaxVarintLen32 is the maximum encoded length of a 32-bit varint.
	MaxVarintLen32 = 5
	// MaxVarintLen64 is the maximum encoded length of a 64-bit varint.
	MaxVarintLen64 = 10
	// MaxVarintLen128 is the maximum encoded length of a 128-bit varint.
	MaxVarintLen128 = 19
)

// ZigZag32 maps a signed 32-bit integer onto an unsigned one so that values with a small
// magnitude produce short varints: 0→0, -1→1, 1→2, -2→3 and so on.
func ZigZag32(v int32) uint32 {
	return uint32(v<<1) ^ uint32(v>>31) //nolint:gosec
}

// UnZigZag32 reverses ZigZag32.
func UnZigZag32(u uint32) int32 {
	return int32(u>>1) ^ -int32(u&1) //nolint:gosec
}

// ZigZag64 maps a signed 64-bit integer onto an unsigned one.
func ZigZag64(v int64) uint64 {
	return uint64(v<<1) ^ uint64(v>>63) //nolint:gosec
}

// UnZigZag64 reverses ZigZag64.
func UnZigZag64(u uint64) int64 {
	return int64(u>>1) ^ -int64(u&1) //nolint:gosec
}

// ZigZag128 maps a signed 128-bit integer, given as its high and low words, onto an unsigned one.
func ZigZag128(hi int64, lo uint64) (uint64, uint64) {
	sign := uint64(hi >> 63) //nolint:gosec
	uhi := uint64(hi)<<1 | lo>>63 //nolint:gosec
	ulo := lo << 1

	return uhi ^ sign, ulo ^ sign
}

// UnZigZag128 reverses ZigZag128.
func UnZigZag128(uhi, ulo uint64) (int64, uint64) {
	mask := -(ulo & 1)
	lo := (ulo>>1 | uhi<<63) ^ mask
	hi := (uhi >> 1) ^ mask

	return int64(hi), lo //nolint:gosec
}

// UvarintLen returns the number of bytes AppendUvarint uses for v.
func UvarintLen(v uint64) int {
	n := 1
	for v >= 0x80 {
		v >>= 7
		n++
	}

	return n
}

// AppendUvarint appends v in base-128 form, least-significant group first.
//
// Parameters:
//   - dst: Destination slice
//   - v: Value to encode
//
// Returns:
//   - []byte: dst extended by 1 to 10 bytes
func AppendUvarint(dst []byte, v uint64) []byte {
	for v >= 0x80 {
		dst = append(dst, byte(v)|0x80)
		v >>= 7
	}

	return append(dst, byte(v))
}

// AppendVarint appends the zig-zag varint form of a signed 64-bit value.
func AppendVarint(dst []byte, v int64) []byte {
	return AppendUvarint(dst, ZigZag64(v))
}

// AppendUvarint128 appends a 128-bit unsigned value given as high and low words.
func AppendUvarint128(dst []byte, hi, lo uint64) []byte {
	for hi != 0 || lo >= 0x80 {
		dst = append(dst, byte(lo)|0x80)
		lo = lo>>7 | hi<<57
		hi >>= 7
	}

	return append(dst, byte(lo))
}

// Uvarint decodes a 64-bit varint from the start of b.
//
// Returns:
//   - uint64: Decoded value
//   - int: Number of bytes consumed
//   - error: errs.ErrUnexpectedEndOfData if b ends inside the varint,
//     errs.ErrMalformedInput if the varint overflows 64 bits
func Uvarint(b []byte) (uint64, int, error) {
	var v uint64
	for i := 0; i < MaxVarintLen64; i++ {
		if i >= len(b) {
			return 0, 0, errs.ErrUnexpectedEndOfData
		}
		c := b[i]
		if i == MaxVarintLen64-1 && c > 1 {
			return 0, 0, fmt.Errorf("varint overflows 64 bits: %w", errs.ErrMalformedInput)
		}
		v |= uint64(c&0x7f) << (7 * uint(i)) //nolint:gosec
		if c < 0x80 {
			return v, i + 1, nil
		}
	}

	return 0, 0, fmt.Errorf("varint longer than %d bytes: %w", MaxVarintLen64, errs.ErrMalformedInput)
}

// ReadUvarint decodes a 64-bit varint from a byte source.
// An io.EOF from the source inside a varint is reported as errs.ErrUnexpectedEndOfData.
func ReadUvarint(r io.ByteReader) (uint64, error) {
	var v uint64
	for i := 0; i < MaxVarintLen64; i++ {
		c, err := r.ReadByte()
		if err != nil {
			return 0, eofToUnexpected(err)
		}
		if i == MaxVarintLen64-1 && c > 1 {
			return 0, fmt.Errorf("varint overflows 64 bits: %w", errs.ErrMalformedInput)
		}
		v |= uint64(c&0x7f) << (7 * uint(i)) //nolint:gosec
		if c < 0x80 {
			return v, nil
		}
	}

	return 0, fmt.Errorf("varint longer than %d bytes: %w", MaxVarintLen64, errs.ErrMalformedInput)
}

// ReadUvarint32 decodes a varint that must fit in 32 bits.
func ReadUvarint32(r io.ByteReader) (uint32, error) {
	v, err := ReadUvarint(r)
	if err != nil {
		return 0, err
	}
	if v > 0xFFFFFFFF {
		return 0, fmt.Errorf("varint %d overflows 32 bits: %w", v, errs.ErrMalformedInput)
	}

	return uint32(v), nil
}

// ReadUvarint128 decodes a 128-bit varint and returns its high and low words.
func ReadUvarint128(r io.ByteReader) (uint64, uint64, error) {
	var hi, lo uint64
	for i := 0; i < MaxVarintLen128; i++ {
		c, err := r.ReadByte()
		if err != nil {
			return 0, 0, eofToUnexpected(err)
		}
		if i == MaxVarintLen128-1 && c > 3 {
			return 0, 0, fmt.Errorf("varint overflows 128 bits: %w", errs.ErrMalformedInput)
		}
		group := uint64(c & 0x7f)
		shift := 7 * uint(i) //nolint:gosec
		switch {
		case shift < 64:
			lo |= group << shift
			if shift > 57 {
				hi |= group >> (64 - shift)
			}
		default:
			hi |= group << (shift - 64)
		}
		if c < 0x80 {
			return hi, lo, nil
		}
	}

	return 0, 0, fmt.Errorf("varint longer than %d bytes: %w", MaxVarintLen128, errs.ErrMalformedInput)
}

func eofToUnexpected(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return errs.ErrUnexpectedEndOfData
	}

	return err
}
