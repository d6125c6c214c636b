package geometry

import (
	"fmt"
	"math"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/taigrr/prism/pkg/material"
	"github.com/taigrr/prism/pkg/math3d"
)

// Sphere tracing parameters.
const (
	MaxMarchSteps = 256
	MarchEpsilon  = 1e-5
	// marchSkip is the distance a ray must travel before a surface counts,
	// so rays leaving a surface do not report it again.
	marchSkip     = 1e-3
	normalStep    = 1e-4
)

// Implicit is a shape described by a signed distance field. Intersections
// are found by sphere tracing inside the field's bounding box.
type Implicit struct {
	SDF      sdf.SDF3
	Material material.Material
}

// NewImplicit wraps an sdfx solid.
func NewImplicit(s sdf.SDF3, m material.Material) *Implicit {
	return &Implicit{SDF: s, Material: m}
}

// NewBox creates an axis-aligned box centered at center with the given
// edge lengths. round > 0 rounds the edges.
func NewBox(center, size math3d.Vec3, round float64, m material.Material) (*Implicit, error) {
	s, err := sdf.Box3D(toV3(size), round)
	if err != nil {
		return nil, fmt.Errorf("box: %w", err)
	}
	return NewImplicit(sdf.Transform3D(s, sdf.Translate3d(toV3(center))), m), nil
}

// NewRoundedBox is NewBox with edges rounded by radius, which must not
// exceed half the smallest edge.
func NewRoundedBox(center, size math3d.Vec3, radius float64, m material.Material) (*Implicit, error) {
	if radius < 0 || 2*radius > math.Min(size.X, math.Min(size.Y, size.Z)) {
		return nil, fmt.Errorf("rounded box: radius %g does not fit size %v", radius, size)
	}
	return NewBox(center, size, radius, m)
}

// NewCylinder creates a Z-aligned cylinder centered at center.
func NewCylinder(center math3d.Vec3, height, radius, round float64, m material.Material) (*Implicit, error) {
	s, err := sdf.Cylinder3D(height, radius, round)
	if err != nil {
		return nil, fmt.Errorf("cylinder: %w", err)
	}
	return NewImplicit(sdf.Transform3D(s, sdf.Translate3d(toV3(center))), m), nil
}

func (im *Implicit) eval(p math3d.Vec3) float64 {
	return im.SDF.Evaluate(toV3(p))
}

// Normal estimates the gradient of the field by central differences.
func (im *Implicit) Normal(p math3d.Vec3) math3d.Vec3 {
	h := normalStep
	dx := im.eval(p.Add(math3d.V3(h, 0, 0))) - im.eval(p.Sub(math3d.V3(h, 0, 0)))
	dy := im.eval(p.Add(math3d.V3(0, h, 0))) - im.eval(p.Sub(math3d.V3(0, h, 0)))
	dz := im.eval(p.Add(math3d.V3(0, 0, h))) - im.eval(p.Sub(math3d.V3(0, 0, h)))
	return math3d.V3(dx, dy, dz).Normalize()
}

// MaterialAt returns the shape's uniform material.
func (im *Implicit) MaterialAt(math3d.Vec3) material.Material {
	return im.Material
}

// Bounds returns the field's bounding box.
func (im *Implicit) Bounds() (min, max math3d.Vec3) {
	bb := im.SDF.BoundingBox()
	return fromV3(bb.Min), fromV3(bb.Max)
}

// RayIntersection marches along the ray through the bounding box. The
// absolute field value is used as the step so rays starting inside the
// solid find the exit surface as well.
func (im *Implicit) RayIntersection(r Ray) (float64, math3d.Vec3) {
	lo, hi := im.Bounds()
	pad := math3d.V3(marchSkip, marchSkip, marchSkip)
	tEnter, tExit, ok := slab(r, lo.Sub(pad), hi.Add(pad))
	if !ok {
		return math.Max(0, im.eval(r.Origin)), math3d.Vec3{}
	}

	t := math.Max(tEnter, 0)
	closest := math.Inf(1)
	for range MaxMarchSteps {
		if t > tExit {
			break
		}
		p := r.At(t)
		d := math.Abs(im.eval(p))
		if t >= marchSkip && d < MarchEpsilon {
			return hitSignal(t), p
		}
		closest = math.Min(closest, d)
		t += math.Max(d, MarchEpsilon*2)
	}
	return closest, math3d.Vec3{}
}

// slab clips the ray against a box and returns the parameter interval
// that lies inside it.
func slab(r Ray, lo, hi math3d.Vec3) (tmin, tmax float64, ok bool) {
	tmin, tmax = math.Inf(-1), math.Inf(1)
	o := [3]float64{r.Origin.X, r.Origin.Y, r.Origin.Z}
	d := [3]float64{r.Direction.X, r.Direction.Y, r.Direction.Z}
	l := [3]float64{lo.X, lo.Y, lo.Z}
	h := [3]float64{hi.X, hi.Y, hi.Z}

	for i := range 3 {
		if d[i] == 0 {
			if o[i] < l[i] || o[i] > h[i] {
				return 0, 0, false
			}
			continue
		}
		t0 := (l[i] - o[i]) / d[i]
		t1 := (h[i] - o[i]) / d[i]
		if t0 > t1 {
			t0, t1 = t1, t0
		}
		tmin = math.Max(tmin, t0)
		tmax = math.Min(tmax, t1)
	}
	return tmin, tmax, tmax >= math.Max(tmin, 0)
}

func toV3(v math3d.Vec3) v3.Vec {
	return v3.Vec{X: v.X, Y: v.Y, Z: v.Z}
}

func fromV3(v v3.Vec) math3d.Vec3 {
	return math3d.V3(v.X, v.Y, v.Z)
}
