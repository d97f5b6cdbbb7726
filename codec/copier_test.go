package codec

import (
	"encoding/binary"
	"fmt"
	"math/big"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/graft/collections"
	"github.com/arloliu/graft/errs"
	"github.com/arloliu/graft/format"
)

func deepCopy[T any](t *testing.T, reg *Registry, v T) T {
	t.Helper()

	c, err := NewDeepCopier[T](reg)
	require.NoError(t, err)
	out, err := c.Copy(v)
	require.NoError(t, err)

	return out
}

func TestCopy_Graph(t *testing.T) {
	reg := newTestRegistry(t)

	shared := &node{Name: "shared"}
	root := &node{Name: "root", Children: []*node{shared, shared}}
	root.Next = root

	got := deepCopy(t, reg, root)
	require.NotSame(t, root, got)
	require.Same(t, got, got.Next)
	require.Len(t, got.Children, 2)
	require.NotSame(t, shared, got.Children[0])
	require.Same(t, got.Children[0], got.Children[1])
	require.Equal(t, "shared", got.Children[0].Name)

	got.Children[0].Name = "changed"
	require.Equal(t, "shared", shared.Name)
}

func TestCopy_Containers(t *testing.T) {
	reg := newTestRegistry(t)

	in := map[string][]int{"a": {1, 2}, "b": nil}
	got := deepCopy(t, reg, in)
	require.Equal(t, in, got)
	got["a"][0] = 9
	require.Equal(t, 1, in["a"][0])

	arr := [2][]string{{"x"}, {"y"}}
	arrCopy := deepCopy(t, reg, arr)
	arrCopy[0][0] = "z"
	require.Equal(t, "x", arr[0][0])

	var ifaces []any
	shared := &item{Label: "i"}
	ifaces = append(ifaces, shared, shared, 3, "s", nil)
	ifCopy := deepCopy(t, reg, ifaces)
	require.Len(t, ifCopy, 5)
	first, ok := ifCopy[0].(*item)
	require.True(t, ok)
	require.NotSame(t, shared, first)
	require.Same(t, first, ifCopy[1])
	require.Equal(t, 3, ifCopy[2])
	require.Nil(t, ifCopy[4])
}

type coordinates struct {
	Lat, Lng float64
	Name     string
}

func TestCopy_ImmutableShapes(t *testing.T) {
	reg := newTestRegistry(t)

	c, err := GetDeepCopier[coordinates](reg)
	require.NoError(t, err)
	require.True(t, c.IsImmutable())

	c2, err := GetDeepCopier[[3]coordinates](reg)
	require.NoError(t, err)
	require.True(t, c2.IsImmutable())

	mc, err := GetDeepCopier[customer](reg)
	require.NoError(t, err)
	require.False(t, mc.IsImmutable())

	names := collections.NewImmutableSet("a", "b")
	require.Same(t, names, deepCopy(t, reg, names))

	nodes := collections.NewImmutableSet(&node{Name: "n"})
	nodesCopy := deepCopy(t, reg, nodes)
	require.NotSame(t, nodes, nodesCopy)
	require.Equal(t, 1, nodesCopy.Len())
}

func TestCopy_WellKnownPointers(t *testing.T) {
	reg := newTestRegistry(t)

	type holder struct {
		N   *big.Int
		F   *big.Float
		R   *big.Rat
		U   *url.URL
		Dup *big.Int
	}
	n := big.NewInt(1 << 40)
	u, err := url.Parse("https://example.com/a?b=c")
	require.NoError(t, err)
	in := holder{N: n, F: big.NewFloat(1.25), R: big.NewRat(1, 3), U: u, Dup: n}

	got := deepCopy(t, reg, in)
	require.Equal(t, 0, n.Cmp(got.N))
	require.NotSame(t, n, got.N)
	require.Same(t, got.N, got.Dup)
	require.Equal(t, 0, in.F.Cmp(got.F))
	require.Equal(t, 0, in.R.Cmp(got.R))
	require.Equal(t, u.String(), got.U.String())
	require.NotSame(t, u, got.U)

	got.N.SetInt64(0)
	require.Equal(t, int64(1<<40), n.Int64())
}

// point marshals itself, keeping its fields unexported.
type point struct {
	x, y int32
}

func (p point) MarshalBinary() ([]byte, error) {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint32(buf, uint32(p.x))     //nolint:gosec
	binary.LittleEndian.PutUint32(buf[4:], uint32(p.y)) //nolint:gosec

	return buf, nil
}

func (p *point) UnmarshalBinary(data []byte) error {
	if len(data) != 8 {
		return fmt.Errorf("point needs 8 bytes, got %d", len(data))
	}
	p.x = int32(binary.LittleEndian.Uint32(data))     //nolint:gosec
	p.y = int32(binary.LittleEndian.Uint32(data[4:])) //nolint:gosec

	return nil
}

func TestBinaryMarshaler(t *testing.T) {
	reg := newTestRegistry(t)

	in := point{x: -3, y: 7}
	data := encode(t, reg, in)
	require.Equal(t, byte(format.WireLengthPrefixed)<<5, data[0])
	require.Equal(t, in, decode[point](t, reg, data))

	require.Equal(t, []point{in, {}}, roundTrip(t, reg, []point{in, {}}))
	require.Equal(t, in, deepCopy(t, reg, in))

	bad := encode(t, reg, "short")
	pser, err := NewSerializer[point](reg)
	require.NoError(t, err)
	_, err = pser.DeserializeBytes(bad)
	require.Error(t, err)
}

func TestCopy_Unsupported(t *testing.T) {
	reg := newTestRegistry(t)

	_, err := NewDeepCopier[map[string]chan int](reg)
	require.ErrorIs(t, err, errs.ErrUnsupportedType)

	type withFunc struct {
		Fn func()
	}
	_, err = NewDeepCopier[withFunc](reg)
	require.ErrorIs(t, err, errs.ErrUnsupportedType)
}
