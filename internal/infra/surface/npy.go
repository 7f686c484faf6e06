// Package surface loads the site height field from a NumPy .npy file, either
// from local disk or from S3-compatible object storage.
package surface

import (
	"fmt"
	"io"
	"strings"

	"github.com/sbinet/npyio"

	"github.com/yanqian/shadowcast/pkg/raster"
)

// Decode reads a two-dimensional numeric .npy array into a grid. C and Fortran
// ordered arrays are both accepted; integer dtypes are widened to float64.
func Decode(r io.Reader) (raster.Grid, error) {
	npy, err := npyio.NewReader(r)
	if err != nil {
		return raster.Grid{}, fmt.Errorf("read npy header: %w", err)
	}
	shape := npy.Header.Descr.Shape
	if len(shape) != 2 {
		return raster.Grid{}, fmt.Errorf("surface model must be 2-D, got shape %v", shape)
	}
	rows, cols := shape[0], shape[1]

	data, err := readFloat64(npy, rows*cols)
	if err != nil {
		return raster.Grid{}, err
	}
	if npy.Header.Descr.Fortran {
		data = transpose(data, rows, cols)
	}
	return raster.FromSlice(rows, cols, data)
}

func readFloat64(npy *npyio.Reader, n int) ([]float64, error) {
	dtype := strings.TrimLeft(npy.Header.Descr.Type, "<=|")
	switch dtype {
	case "f8":
		out := make([]float64, n)
		if err := npy.Read(&out); err != nil {
			return nil, fmt.Errorf("read npy float64 data: %w", err)
		}
		return out, nil
	case "f4":
		raw := make([]float32, n)
		if err := npy.Read(&raw); err != nil {
			return nil, fmt.Errorf("read npy float32 data: %w", err)
		}
		return widen(raw), nil
	case "i4":
		raw := make([]int32, n)
		if err := npy.Read(&raw); err != nil {
			return nil, fmt.Errorf("read npy int32 data: %w", err)
		}
		return widen(raw), nil
	case "i8":
		raw := make([]int64, n)
		if err := npy.Read(&raw); err != nil {
			return nil, fmt.Errorf("read npy int64 data: %w", err)
		}
		return widen(raw), nil
	default:
		return nil, fmt.Errorf("unsupported npy dtype %q", npy.Header.Descr.Type)
	}
}

func widen[T float32 | int32 | int64](in []T) []float64 {
	out := make([]float64, len(in))
	for i, v := range in {
		out[i] = float64(v)
	}
	return out
}

// transpose converts column-major data to row-major.
func transpose(data []float64, rows, cols int) []float64 {
	out := make([]float64, len(data))
	for c := 0; c < cols; c++ {
		for r := 0; r < rows; r++ {
			out[r*cols+c] = data[c*rows+r]
		}
	}
	return out
}
