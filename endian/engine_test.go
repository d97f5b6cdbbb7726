package endian

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWire_LittleEndian(t *testing.T) {
	engine := Wire()
	require.Equal(t, binary.LittleEndian, engine)

	buf := engine.AppendUint32(nil, 0x01020304)
	require.Equal(t, []byte{0x04, 0x03, 0x02, 0x01}, buf)
	require.Equal(t, uint32(0x01020304), engine.Uint32(buf))
}

func TestWire_Float64RoundTrip(t *testing.T) {
	engine := Wire()
	values := []float64{0, -0.0, 1.5, math.MaxFloat64, math.SmallestNonzeroFloat64, math.Inf(-1)}

	for _, v := range values {
		buf := engine.AppendUint64(nil, math.Float64bits(v))
		require.Len(t, buf, 8)
		require.Equal(t, math.Float64bits(v), engine.Uint64(buf))
	}
}

func TestFrame_MatchesWire(t *testing.T) {
	require.Equal(t, Wire(), Frame())
}
