// Package models imports glTF assets as traceable scene content.
package models

import (
	"math"

	"github.com/taigrr/prism/pkg/material"
	"github.com/taigrr/prism/pkg/math3d"
	"github.com/taigrr/prism/pkg/rgb"
)

// Mesh is the vertex cloud of one glTF primitive, already in world space.
type Mesh struct {
	Name      string
	Positions []math3d.Vec3
	Material  int // Index into the loader's materials (-1 for none)

	// Bounding box (calculated on load)
	BoundsMin math3d.Vec3
	BoundsMax math3d.Vec3
}

// Material is the subset of a glTF PBR material the tracer can use.
type Material struct {
	Name      string
	BaseColor [4]float64 // RGBA in 0-1 range
	Metallic  float64    // 0 = dielectric, 1 = metal
	Roughness float64    // 0 = smooth, 1 = rough
}

// NewMesh creates an empty mesh.
func NewMesh(name string) *Mesh {
	return &Mesh{
		Name:     name,
		Material: -1,
	}
}

// CalculateBounds computes the axis-aligned bounding box.
func (m *Mesh) CalculateBounds() {
	if len(m.Positions) == 0 {
		return
	}

	m.BoundsMin = m.Positions[0]
	m.BoundsMax = m.Positions[0]
	for _, p := range m.Positions[1:] {
		m.BoundsMin = m.BoundsMin.Min(p)
		m.BoundsMax = m.BoundsMax.Max(p)
	}
}

// Center returns the center of the bounding box.
func (m *Mesh) Center() math3d.Vec3 {
	return m.BoundsMin.Add(m.BoundsMax).Scale(0.5)
}

// Size returns the dimensions of the bounding box.
func (m *Mesh) Size() math3d.Vec3 {
	return m.BoundsMax.Sub(m.BoundsMin)
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Positions)
}

// Transform applies a transformation matrix to all vertices.
func (m *Mesh) Transform(mat math3d.Mat4) {
	for i := range m.Positions {
		m.Positions[i] = mat.MulVec3(m.Positions[i])
	}
	m.CalculateBounds()
}

// BoundingSphere returns a sphere around the bounding box center that
// contains every vertex.
func (m *Mesh) BoundingSphere() (center math3d.Vec3, radius float64) {
	center = m.Center()
	for _, p := range m.Positions {
		radius = math.Max(radius, p.Distance(center))
	}
	return center, radius
}

// Clone creates a deep copy of the mesh.
func (m *Mesh) Clone() *Mesh {
	clone := *m
	clone.Positions = append([]math3d.Vec3(nil), m.Positions...)
	return &clone
}

// ToMaterial maps a PBR material onto the Phong model used by the tracer.
// Metallic surfaces become mirrors tinted by their base color; rough
// surfaces get a broad highlight; translucent ones refract like glass.
func (pm Material) ToMaterial() material.Material {
	base := rgb.New(pm.BaseColor[0], pm.BaseColor[1], pm.BaseColor[2])
	metal := clamp01(pm.Metallic)
	rough := clamp01(pm.Roughness)
	alpha := clamp01(pm.BaseColor[3])

	m := material.New(
		base.Scale(0.1),
		base,
		rgb.White.Scale(1-metal).Add(base.Scale(metal)),
		1+127*(1-rough),
	)
	m.Diffusion = 1 - 0.5*metal
	m.Reflection = metal
	if alpha < 1 {
		m.Refraction = 1 - alpha
		m.InIndex = 1.5
		m.OutIndex = 1
	}
	return m
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
