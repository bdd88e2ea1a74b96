// Package colorutil provides shared color utilities for rendering label
// masks and intensity heatmaps.
package colorutil

import (
	"image/color"
	"math"
)

// Common colors used throughout the application.
var (
	Black = color.RGBA{R: 0, G: 0, B: 0, A: 255}
	White = color.RGBA{R: 255, G: 255, B: 255, A: 255}
)

// HSVToRGB converts HSV (H 0-360, S 0-1, V 0-1) to an 8-bit RGBA color.
func HSVToRGB(h, s, v float64) color.RGBA {
	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}

	c := v * s
	x := c * (1 - math.Abs(math.Mod(h/60, 2)-1))
	m := v - c

	var r, g, b float64
	switch {
	case h < 60:
		r, g, b = c, x, 0
	case h < 120:
		r, g, b = x, c, 0
	case h < 180:
		r, g, b = 0, c, x
	case h < 240:
		r, g, b = 0, x, c
	case h < 300:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}

	return color.RGBA{
		R: uint8((r + m) * 255),
		G: uint8((g + m) * 255),
		B: uint8((b + m) * 255),
		A: 255,
	}
}

// goldenAngle spreads consecutive label hues far apart so neighboring
// objects rarely share a similar color.
const goldenAngle = 137.50776405003785

// LabelColor returns a deterministic color for an object label.
// Label 0 (background) is black; the same label always yields the same
// color regardless of how many labels the mask contains.
func LabelColor(label int32) color.RGBA {
	if label <= 0 {
		return Black
	}
	hue := math.Mod(float64(label)*goldenAngle, 360)
	// Alternate saturation/value so adjacent hues still separate
	sat := 0.85
	val := 0.95
	if label%2 == 0 {
		sat = 0.65
		val = 0.80
	}
	return HSVToRGB(hue, sat, val)
}

// Heat maps a normalized intensity in [0,1] onto a dark-blue to yellow to
// white ramp. Values outside the interval are clamped.
func Heat(v float64) color.RGBA {
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}

	switch {
	case v < 0.25:
		t := v / 0.25
		return color.RGBA{R: 0, G: 0, B: uint8(t * 200), A: 255}
	case v < 0.75:
		t := (v - 0.25) / 0.5
		return color.RGBA{
			R: uint8(t * 255),
			G: uint8(t * 220),
			B: uint8(200 * (1 - t)),
			A: 255,
		}
	default:
		t := (v - 0.75) / 0.25
		return color.RGBA{
			R: 255,
			G: uint8(220 + t*35),
			B: uint8(t * 255),
			A: 255,
		}
	}
}
