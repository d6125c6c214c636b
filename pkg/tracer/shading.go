package tracer

import (
	"math"

	"github.com/taigrr/prism/pkg/geometry"
	"github.com/taigrr/prism/pkg/lights"
	"github.com/taigrr/prism/pkg/material"
	"github.com/taigrr/prism/pkg/math3d"
	"github.com/taigrr/prism/pkg/rgb"
	"github.com/taigrr/prism/pkg/scene"
)

// Illumination computes the local Phong shading at a hit: per light a
// shadowed diffuse term and a specular term, plus the ambient color once.
func (rd *Renderer) Illumination(r geometry.Ray, hit scene.Hit) rgb.Color {
	m := hit.Shape.MaterialAt(hit.Point)
	n := hit.Shape.Normal(hit.Point)
	c := rgb.Black

	if n.IsZero() {
		return m.Ambient
	}
	view := r.Direction.Reflect(n).Normalize()

	for _, l := range rd.world.Lights() {
		dir := l.Direction(hit.Point)
		if dir.IsZero() {
			continue
		}
		lc := l.Color(hit.Point)

		if cos := dir.Dot(n); cos > 0 {
			shadow := rd.shadowTo(geometry.NewRay(hit.Point, dir, 1), lc, lightDistance(l, hit.Point))
			c = c.Add(m.Diffuse.Mul(lc).Mul(shadow).Scale(cos))
		}

		if !view.IsZero() {
			if cos := view.Dot(dir); cos > 0 {
				c = c.Add(m.Specular.Mul(lc).Scale(math.Pow(cos, m.Shininess)))
			}
		}
	}

	return c.Add(m.Ambient)
}

// Shadow marches a ray from a surface point toward a light through any
// transparent geometry in the way. lightColor is attenuated by every
// surface crossed; the result falls below ShadowThreshold when an opaque
// surface blocks the light.
func (rd *Renderer) Shadow(r geometry.Ray, lightColor rgb.Color) rgb.Color {
	return rd.shadowTo(r, lightColor, math.Inf(1))
}

// shadowTo is Shadow with occluders farther than maxDist from the ray
// origin ignored.
func (rd *Renderer) shadowTo(r geometry.Ray, lightColor rgb.Color, maxDist float64) rgb.Color {
	start := r.Origin
	maxDistSq := maxDist * maxDist
	p := r.Origin

	for range MaxShadowSteps {
		if lightColor.Max() <= ShadowThreshold {
			break
		}
		march := geometry.Ray{Origin: p, Direction: r.Direction, Depth: r.Depth}.Offset(shadowOffset)
		signal, hit := rd.world.RayIntersection(march)
		if !geometry.Hit(signal) || hit.Point.DistanceSq(start) > maxDistSq {
			return lightColor
		}
		m := hit.Shape.MaterialAt(hit.Point)
		lightColor = lightColor.Mul(m.Diffuse).Scale(m.Refraction)
		p = hit.Point
	}
	return lightColor
}

// lightDistance returns how far a positional light is from p, or +Inf for
// lights at infinity.
func lightDistance(l lights.Light, p math3d.Vec3) float64 {
	if pl, ok := l.(lights.Positional); ok {
		if pos, finite := pl.Position(); finite {
			return pos.Distance(p)
		}
	}
	return math.Inf(1)
}

// RefractionRay bends r at p according to Snell's law. The ray's depth is
// decremented. When the ray undergoes total internal reflection the mirror
// ray is returned instead, with ok false.
func RefractionRay(r geometry.Ray, p, n math3d.Vec3, m material.Material) (out geometry.Ray, ok bool) {
	c := -n.Dot(r.Direction)
	eta := m.InIndex / m.OutIndex
	if r.Direction.Dot(n) <= 0 {
		eta = m.OutIndex / m.InIndex
	}

	k := 1 - eta*eta*(1-c*c)
	if k < 0 {
		dir := r.Direction.Reflect(n)
		return geometry.NewRay(p, dir, r.Depth-1).Offset(refractionOffset), false
	}

	t := eta*c + math.Sqrt(k)
	if c > 0 {
		t = eta*c - math.Sqrt(k)
	}
	dir := r.Direction.Scale(eta).Add(n.Scale(t))
	return geometry.NewRay(p.Add(r.Direction.Scale(refractionOffset)), dir, r.Depth-1), true
}
