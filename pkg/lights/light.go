// Package lights provides light sources for the tracer.
package lights

import (
	"github.com/taigrr/prism/pkg/math3d"
	"github.com/taigrr/prism/pkg/rgb"
)

// Light is a source of illumination.
type Light interface {
	// Direction returns the unit vector from p toward the light, or the
	// zero vector when p coincides with the light.
	Direction(p math3d.Vec3) math3d.Vec3
	// Color returns the light reaching p, before shadowing.
	Color(p math3d.Vec3) rgb.Color
}

// Positional is implemented by lights that may sit at a finite point.
type Positional interface {
	// Position returns the light's location and true, or false when the
	// light is at infinity.
	Position() (math3d.Vec3, bool)
}

// PointLight is a light at a homogeneous position. W == 0 makes it
// directional: it shines from the direction (X, Y, Z) at infinity.
type PointLight struct {
	Pos      math3d.Vec4
	Emission rgb.Color
}

// NewPointLight creates a light at pos with the given color.
func NewPointLight(pos math3d.Vec4, emission rgb.Color) *PointLight {
	return &PointLight{Pos: pos, Emission: emission}
}

// NewDirectional creates a light at infinity in direction dir.
func NewDirectional(dir math3d.Vec3, emission rgb.Color) *PointLight {
	return NewPointLight(math3d.V4FromV3(dir, 0), emission)
}

// Direction implements Light.
func (l *PointLight) Direction(p math3d.Vec3) math3d.Vec3 {
	if l.Pos.AtInfinity() {
		return l.Pos.Vec3().Normalize()
	}
	return l.Pos.PerspectiveDivide().Sub(p).Normalize()
}

// Color implements Light. Point lights do not attenuate with distance.
func (l *PointLight) Color(math3d.Vec3) rgb.Color {
	return l.Emission
}

// Position implements Positional.
func (l *PointLight) Position() (math3d.Vec3, bool) {
	if l.Pos.AtInfinity() {
		return math3d.Vec3{}, false
	}
	return l.Pos.PerspectiveDivide(), true
}
