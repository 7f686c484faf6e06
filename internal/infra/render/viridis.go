package render

import (
	"image/color"
	"math"
)

// viridisAnchors samples matplotlib's viridis map at eleven evenly spaced points.
var viridisAnchors = [...]color.RGBA{
	{0x44, 0x01, 0x54, 0xff},
	{0x48, 0x24, 0x75, 0xff},
	{0x41, 0x44, 0x87, 0xff},
	{0x35, 0x5f, 0x8d, 0xff},
	{0x2a, 0x78, 0x8e, 0xff},
	{0x21, 0x91, 0x8c, 0xff},
	{0x22, 0xa8, 0x84, 0xff},
	{0x44, 0xbf, 0x70, 0xff},
	{0x7a, 0xd1, 0x51, 0xff},
	{0xbd, 0xdf, 0x26, 0xff},
	{0xfd, 0xe7, 0x25, 0xff},
}

// Viridis maps t in [0, 1] onto the viridis color map. Out of range values
// are clamped.
func Viridis(t float64) color.RGBA {
	if math.IsNaN(t) || t <= 0 {
		return viridisAnchors[0]
	}
	last := len(viridisAnchors) - 1
	if t >= 1 {
		return viridisAnchors[last]
	}
	pos := t * float64(last)
	i := int(pos)
	frac := pos - float64(i)
	a, b := viridisAnchors[i], viridisAnchors[i+1]
	return color.RGBA{
		R: lerp(a.R, b.R, frac),
		G: lerp(a.G, b.G, frac),
		B: lerp(a.B, b.B, frac),
		A: 0xff,
	}
}

func lerp(a, b uint8, t float64) uint8 {
	return uint8(math.Round(float64(a) + (float64(b)-float64(a))*t))
}
