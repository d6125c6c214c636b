// Package material describes how a surface reflects, transmits and tints
// light.
package material

import "github.com/taigrr/prism/pkg/rgb"

// Material bundles the reflectance colors and transport coefficients of a
// surface. Coefficients are intended in [0, 1] and refractive indices are
// intended to be at least 1; neither is validated.
type Material struct {
	Ambient  rgb.Color
	Diffuse  rgb.Color
	Specular rgb.Color

	// Shininess is the Phong exponent (1: dull, 50+: very sharp).
	Shininess float64

	// Diffusion scales local illumination. A perfectly diffuse surface
	// has Diffusion 1 and no Reflection or Refraction.
	Diffusion  float64
	Reflection float64
	Refraction float64

	// InIndex is the refractive index inside the object, OutIndex the
	// one of the surrounding medium (1 for air).
	InIndex  float64
	OutIndex float64
}

// New creates a purely diffuse material with refractive indices of 1.
func New(ambient, diffuse, specular rgb.Color, shininess float64) Material {
	return Material{
		Ambient:   ambient,
		Diffuse:   diffuse,
		Specular:  specular,
		Shininess: shininess,
		Diffusion: 1,
		InIndex:   1,
		OutIndex:  1,
	}
}

// Opaque reports whether the material lets no light through.
func (m Material) Opaque() bool {
	return m.Refraction == 0
}

// Mix interpolates every field of m1 and m2. t=0 yields m1 and t=1 yields
// m2 exactly.
func Mix(t float64, m1, m2 Material) Material {
	switch t {
	case 0:
		return m1
	case 1:
		return m2
	}
	s := 1 - t
	lerp := func(a, b float64) float64 { return s*a + t*b }
	lerpColor := func(a, b rgb.Color) rgb.Color { return a.Scale(s).Add(b.Scale(t)) }

	return Material{
		Ambient:    lerpColor(m1.Ambient, m2.Ambient),
		Diffuse:    lerpColor(m1.Diffuse, m2.Diffuse),
		Specular:   lerpColor(m1.Specular, m2.Specular),
		Shininess:  lerp(m1.Shininess, m2.Shininess),
		Diffusion:  lerp(m1.Diffusion, m2.Diffusion),
		Reflection: lerp(m1.Reflection, m2.Reflection),
		Refraction: lerp(m1.Refraction, m2.Refraction),
		InIndex:    lerp(m1.InIndex, m2.InIndex),
		OutIndex:   lerp(m1.OutIndex, m2.OutIndex),
	}
}
