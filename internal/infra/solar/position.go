// Package solar computes sun positions and daylight windows for the site.
package solar

import (
	"context"
	"time"

	"github.com/sj14/astral/pkg/astral"

	"github.com/yanqian/shadowcast/internal/domain/analysis"
)

// Astral implements analysis.SolarProvider on top of astral's NOAA based sun
// position. Elevation is geometric (no refraction correction) and azimuth is
// measured clockwise from true north.
type Astral struct{}

// NewAstral constructs the provider.
func NewAstral() *Astral {
	return &Astral{}
}

// Position implements analysis.SolarProvider.
func (Astral) Position(_ context.Context, at time.Time, latitude, longitude float64) (analysis.SolarSample, error) {
	observer := astral.Observer{Latitude: latitude, Longitude: longitude}
	zenith, azimuth := astral.ZenithAndAzimuth(observer, at.UTC(), false)
	return analysis.SolarSample{
		Timestamp: at,
		Elevation: 90 - zenith,
		Zenith:    zenith,
		Azimuth:   azimuth,
	}, nil
}

var _ analysis.SolarProvider = Astral{}
