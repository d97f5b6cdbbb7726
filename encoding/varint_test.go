package encoding

import (
	"bytes"
	"math"
	"testing"

	"github.com/arloliu/graft/errs"
	"github.com/stretchr/testify/require"
)

func TestZigZag64(t *testing.T) {
	tests := []struct {
		in   int64
		want uint64
	}{
		{0, 0},
		{-1, 1},
		{1, 2},
		{-2, 3},
		{math.MaxInt64, math.MaxUint64 - 1},
		{math.MinInt64, math.MaxUint64},
	}

	for _, tt := range tests {
		require.Equal(t, tt.want, ZigZag64(tt.in))
		require.Equal(t, tt.in, UnZigZag64(tt.want))
	}
}

func TestZigZag32(t *testing.T) {
	for _, v := range []int32{0, 1, -1, 63, -64, math.MaxInt32, math.MinInt32} {
		require.Equal(t, v, UnZigZag32(ZigZag32(v)))
		require.Equal(t, uint32(ZigZag64(int64(v))), ZigZag32(v))
	}
}

func TestZigZag128(t *testing.T) {
	tests := []struct {
		hi int64
		lo uint64
	}{
		{0, 0},
		{-1, math.MaxUint64},
		{0, 1},
		{math.MaxInt64, math.MaxUint64},
		{math.MinInt64, 0},
		{-1, 0},
		{12345, 678},
	}

	for _, tt := range tests {
		uhi, ulo := ZigZag128(tt.hi, tt.lo)
		hi, lo := UnZigZag128(uhi, ulo)
		require.Equal(t, tt.hi, hi)
		require.Equal(t, tt.lo, lo)
	}

	// -1 maps to 1 and 1 maps to 2, as in the 64-bit form.
	uhi, ulo := ZigZag128(-1, math.MaxUint64)
	require.Equal(t, uint64(0), uhi)
	require.Equal(t, uint64(1), ulo)
	uhi, ulo = ZigZag128(0, 1)
	require.Equal(t, uint64(0), uhi)
	require.Equal(t, uint64(2), ulo)
}

func TestAppendUvarint_EveryLength(t *testing.T) {
	for shift := 0; shift < 64; shift++ {
		v := uint64(1) << uint(shift)
		buf := AppendUvarint(nil, v)
		require.Len(t, buf, UvarintLen(v))
		require.Equal(t, shift/7+1, len(buf), "value 1<<%d", shift)

		got, n, err := Uvarint(buf)
		require.NoError(t, err)
		require.Equal(t, len(buf), n)
		require.Equal(t, v, got)

		got, err = ReadUvarint(bytes.NewReader(buf))
		require.NoError(t, err)
		require.Equal(t, v, got)
	}

	buf := AppendUvarint(nil, math.MaxUint64)
	require.Len(t, buf, MaxVarintLen64)
}

func TestUvarint_LeastSignificantGroupFirst(t *testing.T) {
	require.Equal(t, []byte{0xAC, 0x02}, AppendUvarint(nil, 300))
	require.Equal(t, []byte{0x03}, AppendVarint(nil, -2))
}

func TestUvarint_Errors(t *testing.T) {
	_, _, err := Uvarint([]byte{0x80, 0x80})
	require.ErrorIs(t, err, errs.ErrUnexpectedEndOfData)

	_, err = ReadUvarint(bytes.NewReader([]byte{0xFF}))
	require.ErrorIs(t, err, errs.ErrUnexpectedEndOfData)

	overlong := bytes.Repeat([]byte{0xFF}, 9)
	overlong = append(overlong, 0x02)
	_, _, err = Uvarint(overlong)
	require.ErrorIs(t, err, errs.ErrMalformedInput)

	_, err = ReadUvarint32(bytes.NewReader(AppendUvarint(nil, math.MaxUint32+1)))
	require.ErrorIs(t, err, errs.ErrMalformedInput)
}

func TestUvarint128_RoundTrip(t *testing.T) {
	tests := []struct {
		hi, lo  uint64
		wantLen int
	}{
		{0, 0, 1},
		{0, 127, 1},
		{0, 128, 2},
		{0, math.MaxUint64, 10},
		{1, 0, 10},
		{math.MaxUint64, math.MaxUint64, MaxVarintLen128},
		{1 << 62, 5, MaxVarintLen128},
	}

	for _, tt := range tests {
		buf := AppendUvarint128(nil, tt.hi, tt.lo)
		require.Len(t, buf, tt.wantLen)

		hi, lo, err := ReadUvarint128(bytes.NewReader(buf))
		require.NoError(t, err)
		require.Equal(t, tt.hi, hi)
		require.Equal(t, tt.lo, lo)
	}

	// Same bytes as the 64-bit form while the high word is zero.
	require.Equal(t, AppendUvarint(nil, 1<<40), AppendUvarint128(nil, 0, 1<<40))

	overflow := bytes.Repeat([]byte{0xFF}, MaxVarintLen128-1)
	overflow = append(overflow, 0x04)
	_, _, err := ReadUvarint128(bytes.NewReader(overflow))
	require.ErrorIs(t, err, errs.ErrMalformedInput)
}
