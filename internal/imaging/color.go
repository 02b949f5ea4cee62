package imaging

import (
	"image/color"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// GreyLevel converts an 8-bit RGB triple to a grey level using the weights
// 0.30, 0.59 and 0.11 with a 1.002 gain so pure white maps to 255.
//
// The result is truncated, not rounded, and clamped to 255.
func GreyLevel(r, g, b uint8) uint8 {
	v := int((0.3*float64(r) + 0.59*float64(g) + 0.11*float64(b)) * 1.002)
	if v > 255 {
		v = 255
	}
	if v < 0 {
		v = 0
	}
	return uint8(v)
}

// goldenAngle spreads consecutive hues so neighbouring lines stay distinct.
const goldenAngle = 137.508

// LineColor returns the overlay colour for the zero-based text line n.
func LineColor(n int) color.RGBA {
	if n < 0 {
		n = -n
	}
	hue := float64(n) * goldenAngle
	for hue >= 360 {
		hue -= 360
	}
	c := colorful.Hsv(hue, 0.9, 0.85).Clamped()
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}
}
