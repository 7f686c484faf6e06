package solar

import (
	"fmt"
	"sync"
	"time"

	"github.com/sj14/astral/pkg/astral"
)

type window struct {
	sunrise time.Time
	sunset  time.Time
}

// Daylight answers whether the sun is up at the site, caching sunrise and
// sunset per UTC date.
type Daylight struct {
	observer astral.Observer
	lock     sync.RWMutex
	cache    map[string]window
}

// NewDaylight constructs a daylight calculator for the given coordinates.
func NewDaylight(latitude, longitude float64) *Daylight {
	return &Daylight{
		observer: astral.Observer{Latitude: latitude, Longitude: longitude},
		cache:    make(map[string]window),
	}
}

// Window returns sunrise and sunset (UTC) for the UTC date of at.
func (d *Daylight) Window(at time.Time) (time.Time, time.Time, error) {
	date := at.UTC()
	key := date.Format("2006-01-02")

	d.lock.RLock()
	w, ok := d.cache[key]
	d.lock.RUnlock()
	if ok {
		return w.sunrise, w.sunset, nil
	}

	sunrise, err := astral.Sunrise(d.observer, date)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("calculate sunrise: %w", err)
	}
	sunset, err := astral.Sunset(d.observer, date)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("calculate sunset: %w", err)
	}

	d.lock.Lock()
	d.cache[key] = window{sunrise: sunrise, sunset: sunset}
	d.lock.Unlock()
	return sunrise, sunset, nil
}

// IsDaylight reports whether the most recent sun event at or before at was a
// sunrise. Events from the neighbouring UTC dates are included because western
// sites set after midnight UTC.
func (d *Daylight) IsDaylight(at time.Time) (bool, error) {
	var (
		latest time.Time
		up     bool
	)
	for _, offset := range []int{-1, 0, 1} {
		sunrise, sunset, err := d.Window(at.AddDate(0, 0, offset))
		if err != nil {
			return false, err
		}
		if !sunrise.After(at) && sunrise.After(latest) {
			latest, up = sunrise, true
		}
		if !sunset.After(at) && sunset.After(latest) {
			latest, up = sunset, false
		}
	}
	return up, nil
}
