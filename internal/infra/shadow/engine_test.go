package shadow

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/shadowcast/internal/domain/analysis"
	apperrors "github.com/yanqian/shadowcast/pkg/errors"
	"github.com/yanqian/shadowcast/pkg/raster"
)

func castInput(surface raster.Grid, azimuth, altitude float64) analysis.CastInput {
	return analysis.CastInput{
		Surface:    surface,
		Azimuth:    azimuth,
		Altitude:   altitude,
		Scale:      1,
		WallHeight: raster.New(surface.Rows, surface.Cols),
		WallAspect: raster.New(surface.Rows, surface.Cols),
	}
}

func towerSurface() raster.Grid {
	g := raster.New(5, 5)
	g.Set(2, 2, 10)
	return g
}

func TestFlatSurfaceIsFullySunlit(t *testing.T) {
	surface := raster.New(10, 10)

	out, err := NewEngine().Cast(context.Background(), castInput(surface, 135, 40))
	require.NoError(t, err)
	require.True(t, out.Shadow.SameShape(surface))
	for _, v := range out.Shadow.Data {
		require.Equal(t, 1.0, v)
	}
}

func TestSunBelowHorizonShadowsEverything(t *testing.T) {
	surface := towerSurface()

	for _, altitude := range []float64{0, -12.5} {
		out, err := NewEngine().Cast(context.Background(), castInput(surface, 200, altitude))
		require.NoError(t, err)
		require.Equal(t, 5, out.Shadow.Rows)
		require.Equal(t, 5, out.Shadow.Cols)
		for _, v := range out.Shadow.Data {
			require.Equal(t, 0.0, v)
		}
	}
}

func TestTowerCastsShadowAwayFromSouthernSun(t *testing.T) {
	out, err := NewEngine().Cast(context.Background(), castInput(towerSurface(), 180, 45))
	require.NoError(t, err)

	// north of the tower (lower row index) is dark
	require.Equal(t, 0.0, out.Shadow.At(1, 2))
	require.Equal(t, 0.0, out.Shadow.At(0, 2))
	// the tower top and the sun-facing side stay lit
	require.Equal(t, 1.0, out.Shadow.At(2, 2))
	require.Equal(t, 1.0, out.Shadow.At(3, 2))
	require.Equal(t, 1.0, out.Shadow.At(1, 0))
}

func TestTowerCastsShadowAwayFromEasternSun(t *testing.T) {
	out, err := NewEngine().Cast(context.Background(), castInput(towerSurface(), 90, 45))
	require.NoError(t, err)

	require.Equal(t, 0.0, out.Shadow.At(2, 1))
	require.Equal(t, 0.0, out.Shadow.At(2, 0))
	require.Equal(t, 1.0, out.Shadow.At(2, 3))
	require.Equal(t, 1.0, out.Shadow.At(0, 2))
}

func TestLowSunCastsLongerShadow(t *testing.T) {
	surface := raster.New(20, 3)
	surface.Set(19, 1, 5)

	high, err := NewEngine().Cast(context.Background(), castInput(surface, 180, 60))
	require.NoError(t, err)
	low, err := NewEngine().Cast(context.Background(), castInput(surface, 180, 15))
	require.NoError(t, err)

	count := func(g raster.Grid) int {
		n := 0
		for _, v := range g.Data {
			if v == 0 {
				n++
			}
		}
		return n
	}
	require.Greater(t, count(low.Shadow), count(high.Shadow))
	// tan(15°) ≈ 0.268, so a 5 m tower shades about 18 cells
	require.Equal(t, 0.0, low.Shadow.At(2, 1))
}

func TestCastIsDeterministic(t *testing.T) {
	surface := towerSurface()
	a, err := NewEngine().Cast(context.Background(), castInput(surface, 237.4, 31.2))
	require.NoError(t, err)
	b, err := NewEngine().Cast(context.Background(), castInput(surface, 237.4, 31.2))
	require.NoError(t, err)
	require.Equal(t, a.Shadow.Data, b.Shadow.Data)
}

func TestWallRastersMustMatchSurface(t *testing.T) {
	in := castInput(raster.New(3, 3), 180, 45)
	in.WallHeight = raster.New(2, 3)

	_, err := NewEngine().Cast(context.Background(), in)
	require.Error(t, err)
	require.True(t, apperrors.IsCode(err, apperrors.CodeComputationFailed))
}

func TestEmptySurfaceIsRejected(t *testing.T) {
	_, err := NewEngine().Cast(context.Background(), castInput(raster.Grid{}, 180, 45))
	require.True(t, apperrors.IsCode(err, apperrors.CodeComputationFailed))
}

func TestMissingWallRastersDefaultToFlat(t *testing.T) {
	out, err := NewEngine().Cast(context.Background(), analysis.CastInput{
		Surface:  raster.New(4, 4),
		Azimuth:  100,
		Altitude: 30,
	})
	require.NoError(t, err)
	require.True(t, out.WallSun.SameShape(out.Shadow))
}

func TestWallFaces(t *testing.T) {
	surface := raster.New(3, 3)
	walls := raster.New(3, 3)
	aspect := raster.New(3, 3)
	walls.Set(1, 0, 4)
	aspect.Set(1, 0, math.Pi) // south facing
	walls.Set(1, 2, 3)
	aspect.Set(1, 2, 0) // north facing

	out, err := NewEngine().Cast(context.Background(), analysis.CastInput{
		Surface:    surface,
		Azimuth:    180,
		Altitude:   45,
		Scale:      1,
		WallHeight: walls,
		WallAspect: aspect,
	})
	require.NoError(t, err)

	require.Equal(t, 1.0, out.FaceSun.At(1, 0))
	require.Equal(t, 0.0, out.FaceShadow.At(1, 0))
	require.Equal(t, 4.0, out.WallSun.At(1, 0))

	require.Equal(t, 1.0, out.FaceShadow.At(1, 2))
	require.Equal(t, 3.0, out.WallShadow.At(1, 2))
	require.Equal(t, 0.0, out.WallSun.At(1, 2))
}

func TestCastHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	surface := raster.New(200, 200)
	surface.Set(199, 100, 1000)

	_, err := NewEngine().Cast(ctx, castInput(surface, 180, 5))
	require.ErrorIs(t, err, context.Canceled)
}
