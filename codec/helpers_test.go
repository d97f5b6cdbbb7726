package codec

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestRegistry(t *testing.T, opts ...RegistryOption) *Registry {
	t.Helper()

	reg, err := NewRegistry(opts...)
	require.NoError(t, err)

	return reg
}

func encode[T any](t *testing.T, reg *Registry, v T) []byte {
	t.Helper()

	ser, err := NewSerializer[T](reg)
	require.NoError(t, err)
	data, err := ser.SerializeToBytes(v)
	require.NoError(t, err)

	return data
}

func decode[T any](t *testing.T, reg *Registry, data []byte) T {
	t.Helper()

	ser, err := NewSerializer[T](reg)
	require.NoError(t, err)
	out, err := ser.DeserializeBytes(data)
	require.NoError(t, err)

	return out
}

func roundTrip[T any](t *testing.T, reg *Registry, v T) T {
	t.Helper()

	return decode[T](t, reg, encode(t, reg, v))
}
