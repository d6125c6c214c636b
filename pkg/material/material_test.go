package material

import (
	"testing"

	"github.com/taigrr/prism/pkg/rgb"
)

func TestMixEndpoints(t *testing.T) {
	m1 := Bronze()
	m2 := Glass()

	if got := Mix(0, m1, m2); got != m1 {
		t.Errorf("Mix(0) = %+v, want %+v", got, m1)
	}
	if got := Mix(1, m1, m2); got != m2 {
		t.Errorf("Mix(1) = %+v, want %+v", got, m2)
	}
}

func TestMixMidpoint(t *testing.T) {
	m1 := New(rgb.Black, rgb.Black, rgb.Black, 0)
	m2 := New(rgb.White, rgb.White, rgb.White, 10)
	m2.Reflection = 1
	m2.InIndex = 2

	mid := Mix(0.5, m1, m2)
	if mid.Diffuse != (rgb.Color{R: 0.5, G: 0.5, B: 0.5}) {
		t.Errorf("Diffuse = %v, want gray 0.5", mid.Diffuse)
	}
	if mid.Shininess != 5 {
		t.Errorf("Shininess = %v, want 5", mid.Shininess)
	}
	if mid.Reflection != 0.5 {
		t.Errorf("Reflection = %v, want 0.5", mid.Reflection)
	}
	if mid.InIndex != 1.5 {
		t.Errorf("InIndex = %v, want 1.5", mid.InIndex)
	}
}

func TestNewDefaults(t *testing.T) {
	m := New(rgb.Black, rgb.White, rgb.White, 3)
	if m.Diffusion != 1 || m.Reflection != 0 || m.Refraction != 0 {
		t.Errorf("unexpected transport coefficients: %+v", m)
	}
	if m.InIndex != 1 || m.OutIndex != 1 {
		t.Errorf("unexpected refractive indices: %+v", m)
	}
	if !m.Opaque() {
		t.Error("default material should be opaque")
	}
}

func TestLookup(t *testing.T) {
	tests := []struct {
		name string
		ok   bool
	}{
		{"bronze", true},
		{"Emerald", true},
		{"white_plastic", true},
		{"red-plastic", true},
		{"glass", true},
		{"unobtainium", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, ok := Lookup(tc.name)
			if ok != tc.ok {
				t.Errorf("Lookup(%q) ok = %v, want %v", tc.name, ok, tc.ok)
			}
		})
	}

	if got := len(Names()); got != 5 {
		t.Errorf("Names() has %d entries, want 5", got)
	}
}

func TestGlassIsTransparent(t *testing.T) {
	g := Glass()
	if g.Opaque() {
		t.Error("glass should not be opaque")
	}
	if g.InIndex <= g.OutIndex {
		t.Errorf("glass should be denser than air: in=%v out=%v", g.InIndex, g.OutIndex)
	}
}
