// Package shadow casts sun shadows over a gridded height field.
//
// The height field is swept toward the sun one cell at a time. At each step
// the shifted field is lowered by the rise of a sun ray over that horizontal
// distance, and the running maximum becomes the height of the shadow volume
// above each cell. A cell is sunlit when no shifted neighbour rises above it.
package shadow

import (
	"context"
	"fmt"
	"math"

	"github.com/yanqian/shadowcast/internal/domain/analysis"
	apperrors "github.com/yanqian/shadowcast/pkg/errors"
	"github.com/yanqian/shadowcast/pkg/raster"
)

// cancellation is checked once per this many sweep steps.
const checkEvery = 64

// Engine implements analysis.ShadowEngine.
type Engine struct{}

// NewEngine constructs the engine.
func NewEngine() *Engine {
	return &Engine{}
}

// Cast implements analysis.ShadowEngine. Azimuth and altitude are in degrees,
// Scale is cells per metre and WallAspect is in radians.
func (Engine) Cast(ctx context.Context, in analysis.CastInput) (analysis.CastResult, error) {
	surface := in.Surface
	if surface.Rows == 0 || surface.Cols == 0 {
		return analysis.CastResult{}, apperrors.Wrap(apperrors.CodeComputationFailed, "surface model is empty", nil)
	}
	walls, aspect, err := wallInputs(in)
	if err != nil {
		return analysis.CastResult{}, err
	}
	scale := in.Scale
	if scale <= 0 {
		scale = 1
	}

	if in.Altitude <= 0 {
		// sun at or below the horizon: everything is dark
		out := analysis.CastResult{
			Shadow:     raster.New(surface.Rows, surface.Cols),
			WallShadow: walls.Clone(),
			WallSun:    raster.New(surface.Rows, surface.Cols),
			FaceShadow: raster.New(surface.Rows, surface.Cols),
			FaceSun:    raster.New(surface.Rows, surface.Cols),
		}
		for i, h := range walls.Data {
			if h > 0 {
				out.FaceShadow.Data[i] = 1
			}
		}
		return out, nil
	}

	volume, err := sweep(ctx, surface, radians(in.Azimuth), radians(in.Altitude), scale)
	if err != nil {
		return analysis.CastResult{}, err
	}
	return classify(surface, volume, walls, aspect, radians(in.Azimuth)), nil
}

// sweep returns the shadow volume: for each cell the highest sun-ray-lowered
// height seen when looking toward the sun, never lower than the cell itself.
func sweep(ctx context.Context, a raster.Grid, azimuth, altitude, scale float64) (raster.Grid, error) {
	rows, cols := a.Rows, a.Cols
	f := a.Clone()
	_, maxHeight, _ := a.Range()

	sinAz, cosAz, tanAz := math.Sin(azimuth), math.Cos(azimuth), math.Tan(azimuth)
	signSin, signCos := sign(sinAz), sign(cosAz)
	dsSin, dsCos := math.Abs(1/sinAz), math.Abs(1/cosAz)
	rise := math.Tan(altitude) / scale

	// steps along the dominant axis are one cell; the other axis is rounded
	eastWest := (math.Pi/4 <= azimuth && azimuth < 3*math.Pi/4) || (5*math.Pi/4 <= azimuth && azimuth < 7*math.Pi/4)

	var dx, dy, dz float64
	for index := 1.0; maxHeight >= dz && math.Abs(dx) < float64(rows) && math.Abs(dy) < float64(cols); index++ {
		if int(index)%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				return raster.Grid{}, err
			}
		}
		var ds float64
		if eastWest {
			dy = signSin * index
			dx = -signCos * math.Abs(math.Round(index/tanAz))
			ds = dsSin
		} else {
			dy = signSin * math.Abs(math.Round(index*tanAz))
			dx = -signCos * index
			ds = dsCos
		}
		dz = ds * index * rise

		shiftRaise(f, a, int(dx), int(dy), dz)
	}
	return f, nil
}

// shiftRaise sets f[r][c] = max(f[r][c], a[r+dx][c+dy]-dz) wherever the source
// cell lies inside the grid.
func shiftRaise(f, a raster.Grid, dx, dy int, dz float64) {
	rows, cols := a.Rows, a.Cols
	r0, r1 := max(0, -dx), min(rows, rows-dx)
	c0, c1 := max(0, -dy), min(cols, cols-dy)
	for r := r0; r < r1; r++ {
		dst := f.Data[r*cols : (r+1)*cols]
		src := a.Data[(r+dx)*cols : (r+dx+1)*cols]
		for c := c0; c < c1; c++ {
			if v := src[c+dy] - dz; v > dst[c] {
				dst[c] = v
			}
		}
	}
}

// classify derives the ground and wall rasters from the shadow volume.
func classify(a, volume, walls, aspect raster.Grid, azimuth float64) analysis.CastResult {
	rows, cols := a.Rows, a.Cols
	out := analysis.CastResult{
		Shadow:     raster.New(rows, cols),
		WallShadow: raster.New(rows, cols),
		WallSun:    raster.New(rows, cols),
		FaceShadow: raster.New(rows, cols),
		FaceSun:    raster.New(rows, cols),
	}
	for i := range a.Data {
		depth := volume.Data[i] - a.Data[i]
		if depth <= 0 {
			out.Shadow.Data[i] = 1
		}

		wall := walls.Data[i]
		if wall <= 0 {
			continue
		}
		if facesAway(aspect.Data[i], azimuth) {
			out.FaceShadow.Data[i] = 1
			out.WallShadow.Data[i] = wall
			continue
		}
		out.FaceSun.Data[i] = 1
		shaded := math.Min(math.Max(depth, 0), wall)
		out.WallShadow.Data[i] = shaded
		out.WallSun.Data[i] = wall - shaded
	}
	return out
}

// facesAway reports whether a wall whose outward normal points along aspect
// is turned more than a right angle from the sun.
func facesAway(aspect, azimuth float64) bool {
	diff := math.Abs(math.Mod(aspect-azimuth, 2*math.Pi))
	if diff > math.Pi {
		diff = 2*math.Pi - diff
	}
	return diff > math.Pi/2
}

func wallInputs(in analysis.CastInput) (raster.Grid, raster.Grid, error) {
	rows, cols := in.Surface.Rows, in.Surface.Cols
	walls, aspect := in.WallHeight, in.WallAspect
	if walls.Rows == 0 && walls.Cols == 0 {
		walls = raster.New(rows, cols)
	}
	if aspect.Rows == 0 && aspect.Cols == 0 {
		aspect = raster.New(rows, cols)
	}
	if !walls.SameShape(in.Surface) || !aspect.SameShape(in.Surface) {
		return raster.Grid{}, raster.Grid{}, apperrors.Wrap(apperrors.CodeComputationFailed,
			fmt.Sprintf("wall rasters must match the %dx%d surface model", rows, cols), nil)
	}
	return walls, aspect, nil
}

func radians(d float64) float64 {
	r := math.Mod(d*math.Pi/180, 2*math.Pi)
	if r < 0 {
		r += 2 * math.Pi
	}
	return r
}

func sign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}

var _ analysis.ShadowEngine = Engine{}
