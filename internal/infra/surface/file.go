package surface

import (
	"bufio"
	"context"
	"fmt"
	"os"

	"github.com/yanqian/shadowcast/pkg/raster"
)

// FileLoader reads the surface model from local disk on every Load.
type FileLoader struct {
	path string
}

// NewFileLoader constructs a loader for path.
func NewFileLoader(path string) *FileLoader {
	return &FileLoader{path: path}
}

// Load implements analysis.SurfaceLoader.
func (l *FileLoader) Load(_ context.Context) (raster.Grid, error) {
	f, err := os.Open(l.path)
	if err != nil {
		return raster.Grid{}, fmt.Errorf("open surface model: %w", err)
	}
	defer f.Close()

	grid, err := Decode(bufio.NewReader(f))
	if err != nil {
		return raster.Grid{}, fmt.Errorf("decode %s: %w", l.path, err)
	}
	return grid, nil
}
