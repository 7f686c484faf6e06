package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestWallClockUTCDropsZone(t *testing.T) {
	loc := FixedZone(-6 * time.Hour)
	local := time.Date(2024, 6, 21, 12, 30, 15, 0, loc)

	got := WallClockUTC(local)
	require.Equal(t, time.UTC, got.Location())
	require.Equal(t, 12, got.Hour())
	require.Equal(t, 30, got.Minute())
	require.Equal(t, 15, got.Second())
}

func TestFixedZoneOffset(t *testing.T) {
	_, offset := time.Date(2024, 1, 1, 0, 0, 0, 0, FixedZone(5*time.Hour+30*time.Minute)).Zone()
	require.Equal(t, 19800, offset)
}
