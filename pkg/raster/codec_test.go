package raster

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	apperrors "github.com/yanqian/shadowcast/pkg/errors"
)

func TestEncodeWritesRecordsLayout(t *testing.T) {
	g, err := FromRows([][]float64{{0, 1.5}, {2, -3}})
	require.NoError(t, err)

	payload, err := Encode(g)
	require.NoError(t, err)
	require.Equal(t, `[{"0":0,"1":1.5},{"0":2,"1":-3}]`, payload)
}

func TestEncodeKeepsNumericColumnOrder(t *testing.T) {
	g := New(1, 12)
	for c := 0; c < 12; c++ {
		g.Set(0, c, float64(c))
	}

	payload, err := Encode(g)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(payload, `[{"0":0,"1":1,"2":2,`))
	require.Less(t, strings.Index(payload, `"9":`), strings.Index(payload, `"10":`))
}

func TestRoundTripIsExact(t *testing.T) {
	g, err := FromRows([][]float64{
		{0.1 + 0.2, 1.0 / 3.0, math.SmallestNonzeroFloat64},
		{math.MaxFloat64, -1e-300, 0.9999999999999999},
		{0, 1, 0.5},
	})
	require.NoError(t, err)

	payload, err := Encode(g)
	require.NoError(t, err)

	decoded, err := Decode(payload)
	require.NoError(t, err)
	require.Equal(t, g, decoded)
}

func TestRoundTripEmptyGrid(t *testing.T) {
	payload, err := Encode(New(0, 0))
	require.NoError(t, err)
	require.Equal(t, "[]", payload)

	decoded, err := Decode(payload)
	require.NoError(t, err)
	require.Equal(t, 0, decoded.Rows)
	require.Equal(t, 0, decoded.Cols)
}

func TestEncodeRejectsRowlessGridWithColumns(t *testing.T) {
	_, err := Encode(New(0, 4))
	require.Error(t, err)
	require.True(t, apperrors.IsCode(err, apperrors.CodeCodec))
}

func TestDecodeAcceptsLeadingWhitespace(t *testing.T) {
	decoded, err := Decode("\n  [{\"0\":1}]")
	require.NoError(t, err)
	require.Equal(t, [][]float64{{1}}, decoded.ToRows())
}

func TestEncodeRejectsNonFinite(t *testing.T) {
	g, err := FromRows([][]float64{{1, math.NaN()}})
	require.NoError(t, err)

	_, err = Encode(g)
	require.Error(t, err)
	require.True(t, apperrors.IsCode(err, apperrors.CodeCodec))
}

func TestDecodeRejectsInconsistentRows(t *testing.T) {
	payload := `[{"0":1,"1":2,"2":3},{"0":1,"1":2,"2":3,"3":4,"4":5}]`

	_, err := Decode(payload)
	require.Error(t, err)
	require.True(t, apperrors.IsCode(err, apperrors.CodeCodec))
}

func TestDecodeRejectsMalformedJSON(t *testing.T) {
	for _, payload := range []string{
		`not json`,
		``,
		`null`,
		`  null`,
		`"[]"`,
		`{"0":1}`,
		`[{"0":1},null]`,
		`[{"0":"a"}]`,
		`[{"x":1}]`,
		`[{"0":1,"2":2}]`,
	} {
		_, err := Decode(payload)
		require.Error(t, err, payload)
		require.True(t, apperrors.IsCode(err, apperrors.CodeCodec), payload)
	}
}

func TestDecodePlacesCellsByColumnKey(t *testing.T) {
	decoded, err := Decode(`[{"1":20,"0":10},{"0":30,"1":40}]`)
	require.NoError(t, err)
	require.Equal(t, [][]float64{{10, 20}, {30, 40}}, decoded.ToRows())
}

func TestDecodeNullAsNaN(t *testing.T) {
	decoded, err := Decode(`[{"0":null,"1":1}]`)
	require.NoError(t, err)
	require.True(t, math.IsNaN(decoded.At(0, 0)))
	require.Equal(t, 1.0, decoded.At(0, 1))
}
