// Package raster holds the row-major float grids exchanged between the surface
// loader, the shadow engine, the record store and the renderer.
package raster

import (
	"fmt"
	"math"
)

// Grid is a dense row-major 2D raster.
type Grid struct {
	Rows int
	Cols int
	Data []float64
}

// New allocates a zero-valued grid.
func New(rows, cols int) Grid {
	if rows < 0 {
		rows = 0
	}
	if cols < 0 {
		cols = 0
	}
	return Grid{Rows: rows, Cols: cols, Data: make([]float64, rows*cols)}
}

// FromSlice wraps row-major data without copying it.
func FromSlice(rows, cols int, data []float64) (Grid, error) {
	if rows < 0 || cols < 0 {
		return Grid{}, fmt.Errorf("raster: negative shape %dx%d", rows, cols)
	}
	if len(data) != rows*cols {
		return Grid{}, fmt.Errorf("raster: %d values do not fill a %dx%d grid", len(data), rows, cols)
	}
	return Grid{Rows: rows, Cols: cols, Data: data}, nil
}

// FromRows copies a slice of rows into a grid. Every row must have the same width.
func FromRows(rows [][]float64) (Grid, error) {
	if len(rows) == 0 {
		return New(0, 0), nil
	}
	cols := len(rows[0])
	g := New(len(rows), cols)
	for r, row := range rows {
		if len(row) != cols {
			return Grid{}, fmt.Errorf("raster: row %d has %d columns, expected %d", r, len(row), cols)
		}
		copy(g.Data[r*cols:(r+1)*cols], row)
	}
	return g, nil
}

// At returns the value at (r, c).
func (g Grid) At(r, c int) float64 {
	return g.Data[r*g.Cols+c]
}

// Set stores v at (r, c).
func (g Grid) Set(r, c int, v float64) {
	g.Data[r*g.Cols+c] = v
}

// Row returns a view of row r.
func (g Grid) Row(r int) []float64 {
	return g.Data[r*g.Cols : (r+1)*g.Cols]
}

// ToRows copies the grid into a slice of rows.
func (g Grid) ToRows() [][]float64 {
	out := make([][]float64, g.Rows)
	for r := range out {
		out[r] = append([]float64(nil), g.Row(r)...)
	}
	return out
}

// SameShape reports whether both grids have identical dimensions.
func (g Grid) SameShape(o Grid) bool {
	return g.Rows == o.Rows && g.Cols == o.Cols
}

// Clone returns a deep copy.
func (g Grid) Clone() Grid {
	return Grid{Rows: g.Rows, Cols: g.Cols, Data: append([]float64(nil), g.Data...)}
}

// Scaled returns a copy with every cell multiplied by f.
func (g Grid) Scaled(f float64) Grid {
	out := g.Clone()
	for i := range out.Data {
		out.Data[i] *= f
	}
	return out
}

// ReplaceNonFinite overwrites NaN and ±Inf cells with v in place and returns how many changed.
func (g Grid) ReplaceNonFinite(v float64) int {
	replaced := 0
	for i, x := range g.Data {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			g.Data[i] = v
			replaced++
		}
	}
	return replaced
}

// Range returns the finite min and max. ok is false when no finite cell exists.
func (g Grid) Range() (lo, hi float64, ok bool) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, x := range g.Data {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			continue
		}
		ok = true
		lo = math.Min(lo, x)
		hi = math.Max(hi, x)
	}
	if !ok {
		return 0, 0, false
	}
	return lo, hi, true
}
