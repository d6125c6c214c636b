package tracer

import (
	"math"

	"github.com/taigrr/prism/pkg/geometry"
	"github.com/taigrr/prism/pkg/rgb"
)

// Background colors rays that escape the scene.
type Background interface {
	BackgroundColor(r geometry.Ray) rgb.Color
}

// BackgroundFunc adapts a function to Background.
type BackgroundFunc func(r geometry.Ray) rgb.Color

// BackgroundColor implements Background.
func (f BackgroundFunc) BackgroundColor(r geometry.Ray) rgb.Color { return f(r) }

// Sky is a vertical gradient above the horizon and a checkered ground
// plane below it, fading to white with distance. It depends only on the
// ray direction.
type Sky struct {
	// GroundDepth is how far below the eye the ground plane sits.
	GroundDepth float64
	// FadeDistance is the projected distance at which the checker has
	// fully faded to white.
	FadeDistance float64
	Dark, Light  float64
}

// DefaultSky returns the sky used by New.
func DefaultSky() Sky {
	return Sky{
		GroundDepth:  0.5,
		FadeDistance: 30,
		Dark:         0.7,
		Light:        0.9,
	}
}

// BackgroundColor implements Background.
func (s Sky) BackgroundColor(r geometry.Ray) rgb.Color {
	d := r.Direction
	switch {
	case d.Z > 0.5:
		return rgb.Color{B: 1 - 2*(d.Z-0.5)}
	case d.Z >= 0:
		v := 1 - 2*d.Z
		return rgb.Color{R: v, G: v, B: 1}
	}

	x := -s.GroundDepth * d.X / d.Z
	y := -s.GroundDepth * d.Y / d.Z
	t := math.Min(math.Hypot(x, y), s.FadeDistance) / s.FadeDistance

	fx := x - math.Floor(x)
	fy := y - math.Floor(y)
	g := s.Light
	if (fx >= 0.5) == (fy >= 0.5) {
		g = s.Dark
	}
	return rgb.Gray(g).Scale(1 - t).Add(rgb.White.Scale(t))
}
