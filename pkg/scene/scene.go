// Package scene holds the shapes and lights that make up a world.
package scene

import (
	"math"

	"github.com/taigrr/prism/pkg/geometry"
	"github.com/taigrr/prism/pkg/lights"
	"github.com/taigrr/prism/pkg/material"
	"github.com/taigrr/prism/pkg/math3d"
	"github.com/taigrr/prism/pkg/rgb"
)

// Scene owns its shapes and lights. Elements are addressed by the index
// returned when they were added; indices stay valid for the scene's life.
type Scene struct {
	shapes []geometry.Shape
	lights []lights.Light
}

// Hit describes the nearest intersection found by RayIntersection.
type Hit struct {
	Index int
	Shape geometry.Shape
	Point math3d.Vec3
}

// New returns an empty scene.
func New() *Scene {
	return &Scene{}
}

// AddShape appends s and returns its index.
func (sc *Scene) AddShape(s geometry.Shape) int {
	sc.shapes = append(sc.shapes, s)
	return len(sc.shapes) - 1
}

// AddLight appends l and returns its index.
func (sc *Scene) AddLight(l lights.Light) int {
	sc.lights = append(sc.lights, l)
	return len(sc.lights) - 1
}

// Shapes returns the scene's shapes in insertion order. The slice must not
// be modified.
func (sc *Scene) Shapes() []geometry.Shape { return sc.shapes }

// Lights returns the scene's lights in insertion order. The slice must not
// be modified.
func (sc *Scene) Lights() []lights.Light { return sc.lights }

// Shape returns the shape at index i.
func (sc *Scene) Shape(i int) geometry.Shape { return sc.shapes[i] }

// Len returns the number of shapes.
func (sc *Scene) Len() int { return len(sc.shapes) }

// RayIntersection finds the shape hit closest to the ray origin.
//
// The returned signal is negative on a hit (minus the squared distance to
// the hit point) and non-negative otherwise. Among hits at exactly equal
// distance the shape added first wins.
func (sc *Scene) RayIntersection(r geometry.Ray) (float64, Hit) {
	best := Hit{Index: -1}
	bestDistSq := math.Inf(1)

	for i, s := range sc.shapes {
		signal, p := s.RayIntersection(r)
		if !geometry.Hit(signal) {
			continue
		}
		d := p.DistanceSq(r.Origin)
		if d < bestDistSq {
			bestDistSq = d
			best = Hit{Index: i, Shape: s, Point: p}
		}
	}

	if best.Shape == nil {
		return 1, best
	}
	// A ray starting on a surface hits at distance 0; the signal must
	// still be negative.
	return -math.Max(bestDistSq, math.SmallestNonzeroFloat64), best
}

// Nearest is RayIntersection with a boolean result.
func (sc *Scene) Nearest(r geometry.Ray) (Hit, bool) {
	signal, hit := sc.RayIntersection(r)
	return hit, geometry.Hit(signal)
}

// Bounds returns the union of the bounding boxes of all shapes that
// report one. ok is false when none do.
func (sc *Scene) Bounds() (min, max math3d.Vec3, ok bool) {
	for _, s := range sc.shapes {
		b, isBounded := s.(geometry.Bounded)
		if !isBounded {
			continue
		}
		lo, hi := b.Bounds()
		if !ok {
			min, max, ok = lo, hi, true
			continue
		}
		min = min.Min(lo)
		max = max.Max(hi)
	}
	return min, max, ok
}

// DemoLights adds the two default lights: a white light straight above at
// infinity and a white point light at (7, 5, 15).
func DemoLights(sc *Scene) {
	sc.AddLight(lights.NewDirectional(math3d.V3(0, 0, 1), rgb.White))
	sc.AddLight(lights.NewPointLight(math3d.V4(7, 5, 15, 1), rgb.White))
}

// Demo returns the default scene: a bronze sphere at the origin and a
// smaller emerald sphere beside it, lit by DemoLights.
func Demo() *Scene {
	sc := New()
	DemoLights(sc)
	sc.AddShape(geometry.NewSphere(math3d.Zero3(), 2, material.Bronze()))
	sc.AddShape(geometry.NewSphere(math3d.V3(0, 4, 0), 1, material.Emerald()))
	return sc
}
