package math3d

import (
	"math"
	"testing"
)

const eps = 1e-9

func vecNear(a, b Vec3) bool {
	return math.Abs(a.X-b.X) < eps && math.Abs(a.Y-b.Y) < eps && math.Abs(a.Z-b.Z) < eps
}

func TestVec3Algebra(t *testing.T) {
	a := V3(1, 0, 0)
	w := V3(0.5, 3, 2)

	tests := []struct {
		name string
		got  Vec3
		want Vec3
	}{
		{"add", a.Add(w), V3(1.5, 3, 2)},
		{"sub", a.Sub(w), V3(0.5, -3, -2)},
		{"scale", w.Scale(2), V3(1, 6, 4)},
		{"div", w.Div(2), V3(0.25, 1.5, 1)},
		{"cross", V3(1, 0, 0).Cross(V3(0, 1, 0)), V3(0, 0, 1)},
		{"negate", w.Negate(), V3(-0.5, -3, -2)},
		{"lerp start", a.Lerp(w, 0), a},
		{"lerp end", a.Lerp(w, 1), w},
		{"reflect", V3(1, -1, 0).Reflect(V3(0, 1, 0)), V3(1, 1, 0)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if !vecNear(tc.got, tc.want) {
				t.Errorf("got %v, want %v", tc.got, tc.want)
			}
		})
	}

	if got := w.Dot(w); math.Abs(got-13.25) > eps {
		t.Errorf("|w|^2 = %v, want 13.25", got)
	}
}

func TestVec3Normalize(t *testing.T) {
	n := V3(3, 4, 12).Normalize()
	if math.Abs(n.Len()-1) > eps {
		t.Errorf("normalized length = %v, want 1", n.Len())
	}

	if z := Zero3().Normalize(); !z.IsZero() {
		t.Errorf("zero vector normalized to %v, want zero", z)
	}
}

func TestVec4Homogeneous(t *testing.T) {
	p := V4(14, 10, 30, 2)
	if got := p.PerspectiveDivide(); !vecNear(got, V3(7, 5, 15)) {
		t.Errorf("PerspectiveDivide = %v", got)
	}
	if p.AtInfinity() {
		t.Error("finite point reported at infinity")
	}

	d := V4(0, 0, 1, 0)
	if !d.AtInfinity() {
		t.Error("W=0 point should be at infinity")
	}
	if got := d.PerspectiveDivide(); !vecNear(got, V3(0, 0, 1)) {
		t.Errorf("PerspectiveDivide at infinity = %v", got)
	}
}

func TestTRS(t *testing.T) {
	// 90 degrees about Z.
	s := math.Sqrt2 / 2
	m := TRS(V3(1, 2, 3), V4(0, 0, s, s), V3(2, 2, 2))

	got := m.MulVec3(V3(1, 0, 0))
	want := V3(1, 4, 3)
	if !vecNear(got, want) {
		t.Errorf("TRS point = %v, want %v", got, want)
	}

	dir := m.MulVec3Dir(V3(1, 0, 0))
	if !vecNear(dir, V3(0, 2, 0)) {
		t.Errorf("TRS direction = %v, want (0, 2, 0)", dir)
	}
}

func TestLookAtMapsTargetToForward(t *testing.T) {
	view := LookAt(V3(0, -10, 0), Zero3(), Up())
	got := view.MulVec3(Zero3())
	if !vecNear(got, V3(0, 0, -10)) {
		t.Errorf("target in view space = %v, want (0, 0, -10)", got)
	}
}
