package raster

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFromRowsRejectsRaggedInput(t *testing.T) {
	_, err := FromRows([][]float64{{1, 2, 3}, {1, 2}})
	require.Error(t, err)
}

func TestFromSliceChecksLength(t *testing.T) {
	_, err := FromSlice(2, 2, []float64{1, 2, 3})
	require.Error(t, err)

	g, err := FromSlice(2, 2, []float64{1, 2, 3, 4})
	require.NoError(t, err)
	require.Equal(t, 3.0, g.At(1, 0))
	require.Equal(t, [][]float64{{1, 2}, {3, 4}}, g.ToRows())
}

func TestReplaceNonFinite(t *testing.T) {
	g, err := FromRows([][]float64{{math.NaN(), 1}, {math.Inf(1), math.Inf(-1)}})
	require.NoError(t, err)

	require.Equal(t, 3, g.ReplaceNonFinite(0))
	require.Equal(t, []float64{0, 1, 0, 0}, g.Data)
}

func TestRangeSkipsNaN(t *testing.T) {
	g, err := FromRows([][]float64{{math.NaN(), -2}, {5, 1}})
	require.NoError(t, err)

	lo, hi, ok := g.Range()
	require.True(t, ok)
	require.Equal(t, -2.0, lo)
	require.Equal(t, 5.0, hi)

	_, _, ok = New(0, 0).Range()
	require.False(t, ok)
}

func TestScaledLeavesSourceUntouched(t *testing.T) {
	g, err := FromRows([][]float64{{90, 180}})
	require.NoError(t, err)

	out := g.Scaled(math.Pi / 180)
	require.InDelta(t, math.Pi/2, out.At(0, 0), 1e-12)
	require.Equal(t, 90.0, g.At(0, 0))
}
