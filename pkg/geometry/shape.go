package geometry

import (
	"math"

	"github.com/taigrr/prism/pkg/material"
	"github.com/taigrr/prism/pkg/math3d"
)

// Shape is anything a ray can hit.
//
// RayIntersection returns a signal and a point. A negative signal means
// the ray hit the shape and p is the first surface point along the ray.
// A non-negative signal means no hit; p is then meaningless. Only the sign
// of the signal carries information.
type Shape interface {
	Normal(p math3d.Vec3) math3d.Vec3
	MaterialAt(p math3d.Vec3) material.Material
	RayIntersection(r Ray) (signal float64, p math3d.Vec3)
}

// Bounded is implemented by shapes that know their axis-aligned extent.
type Bounded interface {
	Bounds() (min, max math3d.Vec3)
}

// hitSignal turns a ray parameter into a strictly negative signal.
func hitSignal(t float64) float64 {
	return -math.Max(t, math.SmallestNonzeroFloat64)
}

// Hit reports whether a signal denotes an intersection.
func Hit(signal float64) bool {
	return signal < 0
}
