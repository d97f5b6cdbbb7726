package optional

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOptional(t *testing.T) {
	some := Some(42)
	v, ok := some.Get()
	require.True(t, ok)
	require.Equal(t, 42, v)
	require.Equal(t, 42, some.OrElse(7))
	require.Equal(t, 42, *some.Pointer())

	none := None[int]()
	_, ok = none.Get()
	require.False(t, ok)
	require.Equal(t, 7, none.OrElse(7))
	require.Nil(t, none.Pointer())

	x := "x"
	require.Equal(t, Some("x"), FromPointer(&x))
	require.Equal(t, None[string](), FromPointer[string](nil))

	var opt Option = none
	require.Equal(t, reflect.TypeFor[int](), opt.OptionElem())
}
