package analysis

import (
	"time"

	"github.com/yanqian/shadowcast/pkg/raster"
)

// SolarSample is the sun position for a single instant.
type SolarSample struct {
	Timestamp time.Time
	Elevation float64
	Zenith    float64
	Azimuth   float64
}

// CastInput carries the arguments of one shadow casting run. Angles are in
// degrees except WallAspect, which is in radians per cell.
type CastInput struct {
	Surface    raster.Grid
	Azimuth    float64
	Altitude   float64
	Scale      float64
	WallHeight raster.Grid
	WallAspect raster.Grid
}

// CastResult holds the primary shadow raster and the wall auxiliaries.
type CastResult struct {
	Shadow     raster.Grid
	WallShadow raster.Grid
	WallSun    raster.Grid
	FaceShadow raster.Grid
	FaceSun    raster.Grid
}

// Result is returned to callers once the record is stored.
type Result struct {
	RecordID  string
	Timestamp time.Time
	Time      string
	Elevation float64
	Azimuth   float64
}

// Config fixes the analysis site.
type Config struct {
	Latitude  float64
	Longitude float64
	UTCOffset time.Duration
	Scale     float64
}
