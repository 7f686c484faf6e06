package analysis

import (
	"context"
	"time"

	"github.com/yanqian/shadowcast/pkg/raster"
)

// SurfaceLoader reads the site height field. It is called once per analysis.
type SurfaceLoader interface {
	Load(ctx context.Context) (raster.Grid, error)
}

// SolarProvider answers the sun position for one UTC instant.
type SolarProvider interface {
	Position(ctx context.Context, at time.Time, latitude, longitude float64) (SolarSample, error)
}

// ShadowEngine casts shadows over a height field for one sun position.
type ShadowEngine interface {
	Cast(ctx context.Context, in CastInput) (CastResult, error)
}
