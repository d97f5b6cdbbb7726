package graft

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/graft/errs"
	"github.com/arloliu/graft/format"
	"github.com/arloliu/graft/optional"
)

type order struct {
	ID       int64
	Items    []string
	Discount optional.Optional[float64]
	Next     *order
	Meta     map[string]any
}

func TestMarshalUnmarshal(t *testing.T) {
	in := &order{ID: 1, Items: []string{"a", "b"}, Discount: optional.Some(0.1), Meta: map[string]any{"k": int64(3)}}
	in.Next = in

	data, err := Marshal(in)
	require.NoError(t, err)

	got, err := Unmarshal[*order](data)
	require.NoError(t, err)
	require.Equal(t, in.ID, got.ID)
	require.Equal(t, in.Items, got.Items)
	require.Equal(t, in.Discount, got.Discount)
	require.Equal(t, in.Meta, got.Meta)
	require.Same(t, got, got.Next)
}

func TestMarshal_Unsupported(t *testing.T) {
	_, err := Marshal(make(chan int))
	require.ErrorIs(t, err, errs.ErrUnsupportedType)

	_, err = Unmarshal[chan int]([]byte{0})
	require.ErrorIs(t, err, errs.ErrUnsupportedType)

	_, err = Clone(func() {})
	require.ErrorIs(t, err, errs.ErrUnsupportedType)
}

func TestClone(t *testing.T) {
	shared := []string{"x"}
	in := []*order{{ID: 1, Items: shared}, {ID: 2, Items: shared}}

	got, err := Clone(in)
	require.NoError(t, err)
	require.Equal(t, int64(2), got[1].ID)
	got[0].Items[0] = "y"
	require.Equal(t, "y", got[1].Items[0])
	require.Equal(t, "x", shared[0])

	again, err := Clone(in)
	require.NoError(t, err)
	require.Equal(t, "x", again[0].Items[0])
}

func TestFrame(t *testing.T) {
	in := order{ID: 9, Items: []string{"framed"}}

	for _, ct := range []format.CompressionType{format.CompressionNone, format.CompressionZstd, format.CompressionLZ4} {
		t.Run(ct.String(), func(t *testing.T) {
			data, err := MarshalFrame(in, ct)
			require.NoError(t, err)

			got, err := UnmarshalFrame[order](data)
			require.NoError(t, err)
			require.Equal(t, in, got)

			data[len(data)-1] ^= 0x01
			_, err = UnmarshalFrame[order](data)
			require.Error(t, err)
		})
	}

	_, err := MarshalFrame(in, format.CompressionType(0))
	require.ErrorIs(t, err, errs.ErrInvalidCompression)
}

func TestTypeKey(t *testing.T) {
	require.Equal(t, uint64(0x4fdcca5ddb678139), TypeKey("test"))
}
