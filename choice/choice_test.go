package choice

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestChoice(t *testing.T) {
	c := Case2Of3[int, string, bool]("text")
	require.Equal(t, 2, c.Selected())
	require.Equal(t, 3, c.Cases())
	require.Equal(t, "text", c.Item2)
	require.Zero(t, c.Item1)

	var empty Choice6[int, int, int, int, int, int]
	require.Equal(t, 0, empty.Selected())

	all := []Choice{
		Case1Of2[int, int](1),
		Case3Of4[int, int, int, int](1),
		Case5Of5[int, int, int, int, int](1),
		Case6Of6[int, int, int, int, int, int](1),
	}
	wantCases := []int{2, 4, 5, 6}
	wantSelected := []int{1, 3, 5, 6}
	for i, c := range all {
		require.Equal(t, wantCases[i], c.Cases())
		require.Equal(t, wantSelected[i], c.Selected())
	}
}
