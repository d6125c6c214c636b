// Package geometry defines rays and the shapes they can hit.
package geometry

import "github.com/taigrr/prism/pkg/math3d"

// Ray is a half-line with a unit direction and a bounce budget.
type Ray struct {
	Origin    math3d.Vec3
	Direction math3d.Vec3
	// Depth is the number of reflection/refraction bounces still allowed.
	Depth int
}

// NewRay creates a ray, normalizing dir. A zero dir stays zero and yields
// a ray that hits nothing useful; callers must not pass one.
func NewRay(origin, dir math3d.Vec3, depth int) Ray {
	return Ray{
		Origin:    origin,
		Direction: dir.Normalize(),
		Depth:     depth,
	}
}

// At returns the point at parameter t along the ray.
func (r Ray) At(t float64) math3d.Vec3 {
	return r.Origin.Add(r.Direction.Scale(t))
}

// Offset returns the same ray with its origin pushed dist along the
// direction, which keeps secondary rays from re-hitting their own surface.
func (r Ray) Offset(dist float64) Ray {
	r.Origin = r.At(dist)
	return r
}
