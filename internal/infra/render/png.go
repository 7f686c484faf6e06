// Package render draws shadow rasters as titled, color-mapped PNG images.
package render

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/yanqian/shadowcast/internal/domain/visualize"
	"github.com/yanqian/shadowcast/pkg/raster"
)

const (
	canvasWidth  = 640
	canvasHeight = 480
	titlePad     = 10
)

// Plot area as figure fractions, matching a default single-axes figure.
const (
	plotLeft   = 0.125
	plotRight  = 0.9
	plotBottom = 0.11
	plotTop    = 0.88
)

// PNGRenderer implements visualize.Renderer.
type PNGRenderer struct {
	width  int
	height int
	face   font.Face
}

// NewPNGRenderer constructs a renderer producing 640x480 images.
func NewPNGRenderer() *PNGRenderer {
	return &PNGRenderer{width: canvasWidth, height: canvasHeight, face: basicfont.Face7x13}
}

// Render implements visualize.Renderer. Values are normalized to the finite
// min..max of the grid; non-finite cells are left blank.
func (r *PNGRenderer) Render(grid raster.Grid, title string) ([]byte, error) {
	if grid.Rows == 0 || grid.Cols == 0 {
		return nil, errors.New("cannot render an empty raster")
	}

	canvas := image.NewRGBA(image.Rect(0, 0, r.width, r.height))
	draw.Draw(canvas, canvas.Bounds(), image.White, image.Point{}, draw.Src)

	target := r.imageRect(grid.Rows, grid.Cols)
	draw.NearestNeighbor.Scale(canvas, target, colorize(grid), image.Rect(0, 0, grid.Cols, grid.Rows), draw.Over, nil)
	frame(canvas, target.Inset(-1))
	r.drawTitle(canvas, title, target)

	var buf bytes.Buffer
	if err := png.Encode(&buf, canvas); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// imageRect fits a rows x cols raster into the plot area with square cells.
func (r *PNGRenderer) imageRect(rows, cols int) image.Rectangle {
	x0 := plotLeft * float64(r.width)
	x1 := plotRight * float64(r.width)
	y0 := (1 - plotTop) * float64(r.height)
	y1 := (1 - plotBottom) * float64(r.height)

	scale := math.Min((x1-x0)/float64(cols), (y1-y0)/float64(rows))
	w := max(1, int(math.Round(float64(cols)*scale)))
	h := max(1, int(math.Round(float64(rows)*scale)))
	cx := int(math.Round((x0 + x1) / 2))
	cy := int(math.Round((y0 + y1) / 2))
	return image.Rect(cx-w/2, cy-h/2, cx-w/2+w, cy-h/2+h)
}

func (r *PNGRenderer) drawTitle(dst *image.RGBA, title string, target image.Rectangle) {
	if title == "" {
		return
	}
	d := &font.Drawer{Dst: dst, Src: image.Black, Face: r.face}
	width := d.MeasureString(title).Ceil()
	x := target.Min.X + (target.Dx()-width)/2
	y := target.Min.Y - titlePad - r.face.Metrics().Descent.Ceil()
	// overstrike for a bold weight
	for _, dx := range []int{0, 1} {
		d.Dot = fixed.P(x+dx, y)
		d.DrawString(title)
	}
}

// colorize builds a one-pixel-per-cell image of the raster.
func colorize(grid raster.Grid) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, grid.Cols, grid.Rows))
	lo, hi, ok := grid.Range()
	span := hi - lo
	for row := 0; row < grid.Rows; row++ {
		for col := 0; col < grid.Cols; col++ {
			v := grid.At(row, col)
			if !ok || math.IsNaN(v) || math.IsInf(v, 0) {
				img.SetRGBA(col, row, color.RGBA{})
				continue
			}
			t := 0.0
			if span > 0 {
				t = (v - lo) / span
			}
			img.SetRGBA(col, row, Viridis(t))
		}
	}
	return img
}

func frame(dst *image.RGBA, rect image.Rectangle) {
	black := color.RGBA{A: 0xff}
	for x := rect.Min.X; x < rect.Max.X; x++ {
		dst.SetRGBA(x, rect.Min.Y, black)
		dst.SetRGBA(x, rect.Max.Y-1, black)
	}
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		dst.SetRGBA(rect.Min.X, y, black)
		dst.SetRGBA(rect.Max.X-1, y, black)
	}
}

var _ visualize.Renderer = (*PNGRenderer)(nil)
