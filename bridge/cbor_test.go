package bridge

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/graft/codec"
	"github.com/arloliu/graft/errs"
	"github.com/arloliu/graft/format"
)

// event has an unexported field the structural codec would reject.
type event struct {
	Kind    string            `cbor:"kind"`
	At      time.Time         `cbor:"at"`
	Labels  map[string]string `cbor:"labels,omitempty"`
	Payload any               `cbor:"payload"`
	seen    bool
}

type envelope struct {
	ID     int64
	Event  event
	Events []event
}

func newRegistry(t *testing.T) *codec.Registry {
	t.Helper()

	reg, err := codec.NewRegistry()
	require.NoError(t, err)
	Register[event](reg)

	return reg
}

func TestCodec_RoundTrip(t *testing.T) {
	reg := newRegistry(t)
	ser, err := codec.NewSerializer[envelope](reg)
	require.NoError(t, err)

	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	in := envelope{
		ID:    7,
		Event: event{Kind: "created", At: at, Labels: map[string]string{"zone": "a"}, Payload: "x", seen: true},
		Events: []event{
			{Kind: "a", At: at, Payload: map[string]any{"n": uint64(1)}},
			{Kind: "b", At: at},
		},
	}

	data, err := ser.SerializeToBytes(in)
	require.NoError(t, err)
	got, err := ser.DeserializeBytes(data)
	require.NoError(t, err)

	require.Equal(t, in.ID, got.ID)
	require.Equal(t, "created", got.Event.Kind)
	require.True(t, at.Equal(got.Event.At))
	require.Equal(t, map[string]string{"zone": "a"}, got.Event.Labels)
	require.False(t, got.Event.seen)
	require.Len(t, got.Events, 2)
	require.Equal(t, map[string]any{"n": uint64(1)}, got.Events[0].Payload)
	require.Nil(t, got.Events[1].Payload)
}

func TestCodec_Deterministic(t *testing.T) {
	reg := newRegistry(t)
	ser, err := codec.NewSerializer[event](reg)
	require.NoError(t, err)

	labels := map[string]string{}
	for _, k := range []string{"d", "a", "c", "b", "e"} {
		labels[k] = k
	}
	first, err := ser.SerializeToBytes(event{Kind: "k", Labels: labels})
	require.NoError(t, err)
	for range 10 {
		again, err := ser.SerializeToBytes(event{Kind: "k", Labels: labels})
		require.NoError(t, err)
		require.Equal(t, first, again)
	}
	require.Equal(t, byte(format.WireLengthPrefixed)<<5, first[0])
}

func TestCodec_MalformedPayload(t *testing.T) {
	reg := newRegistry(t)

	strSer, err := codec.NewSerializer[string](reg)
	require.NoError(t, err)
	notCBOR, err := strSer.SerializeToBytes("\xff\xff")
	require.NoError(t, err)

	ser, err := codec.NewSerializer[event](reg)
	require.NoError(t, err)
	_, err = ser.DeserializeBytes(notCBOR)
	require.ErrorIs(t, err, errs.ErrMalformedInput)

	intSer, err := codec.NewSerializer[int64](reg)
	require.NoError(t, err)
	wrongWire, err := intSer.SerializeToBytes(5)
	require.NoError(t, err)
	_, err = ser.DeserializeBytes(wrongWire)
	require.ErrorIs(t, err, errs.ErrMalformedInput)
}

func TestCopier(t *testing.T) {
	reg := newRegistry(t)
	cp, err := codec.NewDeepCopier[envelope](reg)
	require.NoError(t, err)

	in := envelope{Event: event{Kind: "k", Labels: map[string]string{"a": "1"}}}
	got, err := cp.Copy(in)
	require.NoError(t, err)
	require.Equal(t, in.Event.Labels, got.Event.Labels)

	got.Event.Labels["a"] = "2"
	require.Equal(t, "1", in.Event.Labels["a"])
}

func TestDiagnose(t *testing.T) {
	data, err := Marshal(map[string]int{"b": 2, "a": 1})
	require.NoError(t, err)

	diag, err := Diagnose(data)
	require.NoError(t, err)
	require.Equal(t, `{"a": 1, "b": 2}`, diag)

	var back map[string]int
	require.NoError(t, Unmarshal(data, &back))
	require.Equal(t, map[string]int{"a": 1, "b": 2}, back)
}
