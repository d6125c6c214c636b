package geometry

import (
	"math"
	"testing"

	"github.com/taigrr/prism/pkg/material"
	"github.com/taigrr/prism/pkg/math3d"
)

const epsilon = 1e-9

func vecNear(a, b math3d.Vec3, tol float64) bool {
	return a.Sub(b).Len() < tol
}

func TestNewRayNormalizes(t *testing.T) {
	r := NewRay(math3d.Zero3(), math3d.V3(0, 3, 4), 2)
	if math.Abs(r.Direction.Len()-1) > epsilon {
		t.Errorf("direction length = %v, want 1", r.Direction.Len())
	}
	if r.Depth != 2 {
		t.Errorf("Depth = %d, want 2", r.Depth)
	}
	off := r.Offset(5)
	if !vecNear(off.Origin, math3d.V3(0, 3, 4), epsilon) {
		t.Errorf("Offset origin = %v, want (0,3,4)", off.Origin)
	}
}

func TestSphereIntersection(t *testing.T) {
	s := NewSphere(math3d.Zero3(), 2, material.Bronze())

	tests := []struct {
		name   string
		ray    Ray
		hit    bool
		point  math3d.Vec3
		normal math3d.Vec3
	}{
		{
			name:   "from above",
			ray:    NewRay(math3d.V3(0, 0, 10), math3d.V3(0, 0, -1), 0),
			hit:    true,
			point:  math3d.V3(0, 0, 2),
			normal: math3d.V3(0, 0, 1),
		},
		{
			name:   "from side",
			ray:    NewRay(math3d.V3(-10, 0, 0), math3d.V3(1, 0, 0), 0),
			hit:    true,
			point:  math3d.V3(-2, 0, 0),
			normal: math3d.V3(-1, 0, 0),
		},
		{
			name:   "from inside",
			ray:    NewRay(math3d.Zero3(), math3d.V3(0, 1, 0), 0),
			hit:    true,
			point:  math3d.V3(0, 2, 0),
			normal: math3d.V3(0, 1, 0),
		},
		{
			name: "miss beside",
			ray:  NewRay(math3d.V3(5, 0, 10), math3d.V3(0, 0, -1), 0),
		},
		{
			name: "sphere behind",
			ray:  NewRay(math3d.V3(0, 0, 10), math3d.V3(0, 0, 1), 0),
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			signal, p := s.RayIntersection(tc.ray)
			if Hit(signal) != tc.hit {
				t.Fatalf("hit = %v (signal %v), want %v", Hit(signal), signal, tc.hit)
			}
			if !tc.hit {
				return
			}
			if !vecNear(p, tc.point, 1e-9) {
				t.Errorf("point = %v, want %v", p, tc.point)
			}
			if n := s.Normal(p); !vecNear(n, tc.normal, 1e-9) {
				t.Errorf("normal = %v, want %v", n, tc.normal)
			}
		})
	}
}

func TestSphereMissSignalIsDistance(t *testing.T) {
	s := NewSphere(math3d.Zero3(), 1, material.Bronze())
	signal, _ := s.RayIntersection(NewRay(math3d.V3(3, 0, 10), math3d.V3(0, 0, -1), 0))
	if math.Abs(signal-2) > 1e-9 {
		t.Errorf("miss signal = %v, want 2", signal)
	}
}

func TestSphereLocalize(t *testing.T) {
	s := NewSphere(math3d.V3(1, 1, 1), 2, material.Bronze())
	tests := []struct {
		lat, lon float64
		want     math3d.Vec3
	}{
		{90, 0, math3d.V3(1, 1, 3)},
		{-90, 0, math3d.V3(1, 1, -1)},
		{0, 0, math3d.V3(3, 1, 1)},
		{0, 90, math3d.V3(1, 3, 1)},
	}
	for _, tc := range tests {
		if got := s.Localize(tc.lat, tc.lon); !vecNear(got, tc.want, 1e-9) {
			t.Errorf("Localize(%v, %v) = %v, want %v", tc.lat, tc.lon, got, tc.want)
		}
	}
}

func TestSphereBounds(t *testing.T) {
	s := NewSphere(math3d.V3(0, 4, 0), 1, material.Emerald())
	lo, hi := s.Bounds()
	if lo != math3d.V3(-1, 3, -1) || hi != math3d.V3(1, 5, 1) {
		t.Errorf("Bounds = %v..%v", lo, hi)
	}
}

func TestImplicitBox(t *testing.T) {
	box, err := NewBox(math3d.Zero3(), math3d.V3(2, 2, 2), 0, material.RedPlastic())
	if err != nil {
		t.Fatalf("NewBox: %v", err)
	}

	signal, p := box.RayIntersection(NewRay(math3d.V3(0.2, 0.3, 10), math3d.V3(0, 0, -1), 0))
	if !Hit(signal) {
		t.Fatalf("expected hit, signal = %v", signal)
	}
	if math.Abs(p.Z-1) > 1e-3 {
		t.Errorf("hit z = %v, want 1", p.Z)
	}
	if n := box.Normal(p); !vecNear(n, math3d.V3(0, 0, 1), 1e-3) {
		t.Errorf("normal = %v, want (0,0,1)", n)
	}

	signal, _ = box.RayIntersection(NewRay(math3d.V3(5, 5, 10), math3d.V3(0, 0, -1), 0))
	if Hit(signal) {
		t.Errorf("expected miss, signal = %v", signal)
	}
}

func TestImplicitCylinderFromInside(t *testing.T) {
	cyl, err := NewCylinder(math3d.V3(0, 0, 1), 2, 1, 0, material.Glass())
	if err != nil {
		t.Fatalf("NewCylinder: %v", err)
	}
	signal, p := cyl.RayIntersection(NewRay(math3d.V3(0, 0, 1), math3d.V3(1, 0, 0), 0))
	if !Hit(signal) {
		t.Fatalf("expected exit hit, signal = %v", signal)
	}
	if math.Abs(p.X-1) > 1e-3 {
		t.Errorf("exit x = %v, want 1", p.X)
	}
}

func TestImplicitRejectsBadSize(t *testing.T) {
	if _, err := NewBox(math3d.Zero3(), math3d.V3(-1, 1, 1), 0, material.Bronze()); err == nil {
		t.Error("expected error for negative box size")
	}
}
