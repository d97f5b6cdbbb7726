package pool

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestByteBuffer(t *testing.T) {
	bb := NewByteBuffer(8)
	require.Equal(t, 0, bb.Len())
	require.Equal(t, 8, bb.Cap())
	require.Equal(t, 8, bb.Available())

	n, err := bb.Write([]byte{1, 2, 3})
	require.NoError(t, err)
	require.Equal(t, 3, n)
	require.Equal(t, []byte{1, 2, 3}, bb.Bytes())
	require.Equal(t, 5, bb.Available())

	bb.Reset()
	require.Equal(t, 0, bb.Len())
	require.Equal(t, 8, bb.Cap())
}

func TestByteBufferPool(t *testing.T) {
	t.Run("get returns empty buffer", func(t *testing.T) {
		p := NewByteBufferPool(16, 64)
		bb := p.Get()
		require.NotNil(t, bb)
		require.Equal(t, 0, bb.Len())
		require.GreaterOrEqual(t, bb.Cap(), 16)

		_, _ = bb.Write([]byte("hello"))
		p.Put(bb)

		again := p.Get()
		require.Equal(t, 0, again.Len())
	})

	t.Run("put nil is ignored", func(t *testing.T) {
		p := NewByteBufferPool(16, 64)
		require.NotPanics(t, func() { p.Put(nil) })
	})

	t.Run("oversized buffer is dropped", func(t *testing.T) {
		p := NewByteBufferPool(16, 64)
		bb := p.Get()
		_, _ = bb.Write(make([]byte, 128))
		p.Put(bb)

		again := p.Get()
		require.LessOrEqual(t, again.Cap(), 64)
	})
}

func TestSegmentPool(t *testing.T) {
	a := SegmentPool(SegmentDefaultSize)
	b := SegmentPool(SegmentDefaultSize)
	require.Same(t, a, b)
	require.Equal(t, SegmentDefaultSize, a.Size())

	small := SegmentPool(8)
	require.NotSame(t, a, small)
	require.Equal(t, 8, small.Size())
}
