package util

import "time"

// FixedZone builds a location for a whole-or-fractional hour UTC offset.
func FixedZone(offset time.Duration) *time.Location {
	return time.FixedZone("site", int(offset/time.Second))
}

// WallClockUTC reinterprets the wall clock of t as a UTC instant, dropping its zone.
func WallClockUTC(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}
