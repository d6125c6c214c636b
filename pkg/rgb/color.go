// Package rgb provides the floating point color type shared by materials,
// lights and the tracer.
package rgb

import (
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// Color is a linear RGB triple. Channels are meant to lie in [0, 1], but
// only New and Clamp enforce that; arithmetic may leave the range while
// contributions are being accumulated.
type Color struct {
	R, G, B float64
}

// Channel names one of the three color channels.
type Channel int

const (
	Red Channel = iota
	Green
	Blue
)

// Common colors.
var (
	Black = Color{0, 0, 0}
	White = Color{1, 1, 1}
)

// New returns a clamped color.
func New(r, g, b float64) Color {
	return Color{r, g, b}.Clamp()
}

// Gray returns the clamped color (v, v, v).
func Gray(v float64) Color {
	return New(v, v, v)
}

// Add returns c + o.
func (c Color) Add(o Color) Color {
	return Color{c.R + o.R, c.G + o.G, c.B + o.B}
}

// Scale returns c * s.
func (c Color) Scale(s float64) Color {
	return Color{c.R * s, c.G * s, c.B * s}
}

// Mul returns the channel-wise product, used for tinting and attenuation.
func (c Color) Mul(o Color) Color {
	return Color{c.R * o.R, c.G * o.G, c.B * o.B}
}

// Clamp forces every channel into [0, 1]. NaN channels become 0.
func (c Color) Clamp() Color {
	return Color{clamp01(c.R), clamp01(c.G), clamp01(c.B)}
}

func clamp01(v float64) float64 {
	if !(v > 0) {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Max returns the largest channel.
func (c Color) Max() float64 {
	return math.Max(math.Max(c.R, c.G), c.B)
}

// Min returns the smallest channel.
func (c Color) Min() float64 {
	return math.Min(math.Min(c.R, c.G), c.B)
}

// Argmax returns the dominant channel. Ties favour red, then green.
func (c Color) Argmax() Channel {
	if c.R >= c.G {
		if c.R >= c.B {
			return Red
		}
		return Blue
	}
	if c.G >= c.B {
		return Green
	}
	return Blue
}

// Sup returns the channel-wise maximum of c and o.
func (c Color) Sup(o Color) Color {
	return Color{math.Max(c.R, o.R), math.Max(c.G, o.G), math.Max(c.B, o.B)}
}

// Distance returns the largest per-channel difference between c and o.
func (c Color) Distance(o Color) float64 {
	return math.Max(math.Abs(c.R-o.R), math.Max(math.Abs(c.G-o.G), math.Abs(c.B-o.B)))
}

// HSV returns hue in degrees [0, 360), saturation and value of the
// clamped color.
func (c Color) HSV() (h, s, v float64) {
	k := c.Clamp()
	return colorful.Color{R: k.R, G: k.G, B: k.B}.Hsv()
}

// FromHSV builds a clamped color from hue (degrees), saturation and value.
func FromHSV(h, s, v float64) Color {
	k := colorful.Hsv(h, s, v)
	return New(k.R, k.G, k.B)
}

// RGBA converts the clamped color to 8 bits per channel, fully opaque.
func (c Color) RGBA() color.RGBA {
	k := c.Clamp()
	return color.RGBA{
		R: uint8(math.Round(k.R * 255)),
		G: uint8(math.Round(k.G * 255)),
		B: uint8(math.Round(k.B * 255)),
		A: 255,
	}
}
