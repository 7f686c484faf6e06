package visualize

import (
	"context"

	"github.com/yanqian/shadowcast/pkg/raster"
)

// Renderer turns a raster into an encoded PNG titled with title.
type Renderer interface {
	Render(grid raster.Grid, title string) ([]byte, error)
}

// ImageCache stores rendered images by record id. Records never change once
// written, so entries never need invalidation.
type ImageCache interface {
	Get(ctx context.Context, recordID string) ([]byte, bool, error)
	Put(ctx context.Context, recordID string, png []byte) error
}
