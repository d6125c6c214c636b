package geometry

import (
	"math"

	"github.com/taigrr/prism/pkg/material"
	"github.com/taigrr/prism/pkg/math3d"
)

// Sphere is a ball with a single material.
type Sphere struct {
	Center   math3d.Vec3
	Radius   float64
	Material material.Material
}

// NewSphere creates a sphere. A zero radius is a caller error.
func NewSphere(center math3d.Vec3, radius float64, m material.Material) *Sphere {
	return &Sphere{
		Center:   center,
		Radius:   radius,
		Material: m,
	}
}

// Normal returns the outward unit normal at p.
func (s *Sphere) Normal(p math3d.Vec3) math3d.Vec3 {
	return p.Sub(s.Center).Normalize()
}

// MaterialAt returns the sphere's material; it is uniform.
func (s *Sphere) MaterialAt(math3d.Vec3) material.Material {
	return s.Material
}

// RayIntersection solves |o + t·d - c|² = r² for the smallest t >= 0.
// On a miss the returned signal is the distance from the ray to the
// sphere surface (or from the origin, when the sphere lies behind it).
func (s *Sphere) RayIntersection(r Ray) (float64, math3d.Vec3) {
	oc := r.Origin.Sub(s.Center)
	a := r.Direction.LenSq()
	halfB := oc.Dot(r.Direction)
	c := oc.LenSq() - s.Radius*s.Radius

	disc := halfB*halfB - a*c
	if disc < 0 {
		closest := math.Sqrt(math.Max(0, oc.LenSq()-halfB*halfB/a))
		return closest - s.Radius, math3d.Vec3{}
	}

	sq := math.Sqrt(disc)
	t := (-halfB - sq) / a
	if t < 0 {
		t = (-halfB + sq) / a
	}
	if t < 0 {
		return math.Max(0, oc.Len()-s.Radius), math3d.Vec3{}
	}

	return hitSignal(t), r.At(t)
}

// Bounds returns the sphere's bounding box.
func (s *Sphere) Bounds() (min, max math3d.Vec3) {
	r := math3d.V3(s.Radius, s.Radius, s.Radius)
	return s.Center.Sub(r), s.Center.Add(r)
}

// Localize returns the surface point at the given latitude and longitude,
// both in degrees. Latitude 90 is the +Z pole.
func (s *Sphere) Localize(latitude, longitude float64) math3d.Vec3 {
	lat := latitude * math.Pi / 180
	lon := longitude * math.Pi / 180
	dir := math3d.V3(
		math.Cos(lat)*math.Cos(lon),
		math.Cos(lat)*math.Sin(lon),
		math.Sin(lat),
	)
	return s.Center.Add(dir.Scale(s.Radius))
}
