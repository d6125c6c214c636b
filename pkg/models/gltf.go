package models

import (
	"fmt"
	"math"
	"path/filepath"

	"github.com/qmuntal/gltf"

	"github.com/taigrr/prism/pkg/geometry"
	"github.com/taigrr/prism/pkg/material"
	"github.com/taigrr/prism/pkg/math3d"
	"github.com/taigrr/prism/pkg/scene"
)

// yUpToZUp rotates glTF's +Y-up space into the tracer's +Z-up space.
var yUpToZUp = math3d.Mat4{
	1, 0, 0, 0,
	0, 0, 1, 0,
	0, -1, 0, 0,
	0, 0, 0, 1,
}

// GLTFLoader loads GLTF/GLB files as scenes. Each mesh primitive becomes
// one sphere bounding its vertices.
type GLTFLoader struct {
	// ConvertYUp rotates the asset from glTF's Y-up convention to Z-up.
	ConvertYUp bool
	// DefaultLights adds the demo lights when the scene has none.
	DefaultLights bool
	// MinRadius is the smallest sphere emitted; degenerate primitives
	// (a single point, say) are inflated to it.
	MinRadius float64
}

// NewGLTFLoader creates a new GLTF loader with default options.
func NewGLTFLoader() *GLTFLoader {
	return &GLTFLoader{
		ConvertYUp:    true,
		DefaultLights: true,
		MinRadius:     0.01,
	}
}

// LoadGLTF loads a .gltf or .glb file with the default loader.
func LoadGLTF(path string) (*scene.Scene, error) {
	return NewGLTFLoader().Load(path)
}

// Load opens a GLTF or GLB file and converts it to a scene.
func (l *GLTFLoader) Load(path string) (*scene.Scene, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gltf: %w", err)
	}
	sc, err := l.FromDocument(doc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return sc, nil
}

// FromDocument converts an already decoded document.
func (l *GLTFLoader) FromDocument(doc *gltf.Document) (*scene.Scene, error) {
	meshes, err := l.Meshes(doc)
	if err != nil {
		return nil, err
	}
	mats := Materials(doc)

	sc := scene.New()
	for _, m := range meshes {
		if m.VertexCount() == 0 {
			continue
		}
		center, radius := m.BoundingSphere()
		radius = math.Max(radius, l.MinRadius)

		mat := material.WhitePlastic()
		if m.Material >= 0 && m.Material < len(mats) {
			mat = mats[m.Material].ToMaterial()
		}
		sc.AddShape(geometry.NewSphere(center, radius, mat))
	}

	if l.DefaultLights && len(sc.Lights()) == 0 {
		scene.DemoLights(sc)
	}
	return sc, nil
}

// Meshes walks the default scene (or every root node when the document
// names none) and returns one world-space mesh per primitive.
func (l *GLTFLoader) Meshes(doc *gltf.Document) ([]*Mesh, error) {
	root := math3d.Identity()
	if l.ConvertYUp {
		root = yUpToZUp
	}

	var out []*Mesh
	var visit func(idx int, parent math3d.Mat4, depth int) error
	visit = func(idx int, parent math3d.Mat4, depth int) error {
		if idx < 0 || idx >= len(doc.Nodes) {
			return fmt.Errorf("node index %d out of range", idx)
		}
		if depth > len(doc.Nodes) {
			return fmt.Errorf("node hierarchy has a cycle at node %d", idx)
		}
		node := doc.Nodes[idx]
		world := parent.Mul(nodeTransform(node))

		if node.Mesh != nil {
			meshes, err := readMesh(doc, *node.Mesh)
			if err != nil {
				return fmt.Errorf("node %q: %w", node.Name, err)
			}
			for _, m := range meshes {
				m.Transform(world)
				out = append(out, m)
			}
		}
		for _, child := range node.Children {
			if err := visit(child, world, depth+1); err != nil {
				return err
			}
		}
		return nil
	}

	for _, idx := range rootNodes(doc) {
		if err := visit(idx, root, 0); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// rootNodes returns the nodes of the default scene, or of the first
// scene, or every node that is nobody's child.
func rootNodes(doc *gltf.Document) []int {
	if len(doc.Scenes) > 0 {
		s := 0
		if doc.Scene != nil && *doc.Scene < len(doc.Scenes) {
			s = *doc.Scene
		}
		return doc.Scenes[s].Nodes
	}

	isChild := make([]bool, len(doc.Nodes))
	for _, n := range doc.Nodes {
		for _, c := range n.Children {
			if c >= 0 && c < len(isChild) {
				isChild[c] = true
			}
		}
	}
	var roots []int
	for i := range doc.Nodes {
		if !isChild[i] {
			roots = append(roots, i)
		}
	}
	return roots
}

// nodeTransform returns the node's local matrix. An explicit matrix wins
// over translation/rotation/scale; zero-valued TRS fields take the glTF
// defaults.
func nodeTransform(n *gltf.Node) math3d.Mat4 {
	if n.Matrix != ([16]float64{}) {
		return math3d.Mat4(n.Matrix)
	}

	t := math3d.V3(n.Translation[0], n.Translation[1], n.Translation[2])
	r := math3d.V4(n.Rotation[0], n.Rotation[1], n.Rotation[2], n.Rotation[3])
	if r == (math3d.Vec4{}) {
		r = math3d.V4(0, 0, 0, 1)
	}
	s := math3d.V3(n.Scale[0], n.Scale[1], n.Scale[2])
	if s == (math3d.Vec3{}) {
		s = math3d.V3(1, 1, 1)
	}
	return math3d.TRS(t, r, s)
}

// readMesh extracts the positions of every primitive of a mesh, in the
// mesh's local space.
func readMesh(doc *gltf.Document, idx int) ([]*Mesh, error) {
	if idx < 0 || idx >= len(doc.Meshes) {
		return nil, fmt.Errorf("mesh index %d out of range", idx)
	}
	gm := doc.Meshes[idx]

	var out []*Mesh
	for i, prim := range gm.Primitives {
		posIdx, ok := prim.Attributes[gltf.POSITION]
		if !ok {
			continue
		}
		positions, err := readVec3Accessor(doc, posIdx)
		if err != nil {
			return nil, fmt.Errorf("mesh %q primitive %d: read positions: %w", gm.Name, i, err)
		}

		m := NewMesh(fmt.Sprintf("%s/%d", gm.Name, i))
		m.Positions = positions
		if prim.Material != nil {
			m.Material = *prim.Material
		}
		m.CalculateBounds()
		out = append(out, m)
	}
	return out, nil
}

// Materials converts every material of the document. Missing PBR factors
// take the glTF defaults.
func Materials(doc *gltf.Document) []Material {
	out := make([]Material, len(doc.Materials))
	for i, gm := range doc.Materials {
		m := Material{
			Name:      gm.Name,
			BaseColor: [4]float64{1, 1, 1, 1},
			Metallic:  1,
			Roughness: 1,
		}
		if pbr := gm.PBRMetallicRoughness; pbr != nil {
			if pbr.BaseColorFactor != nil {
				m.BaseColor = *pbr.BaseColorFactor
			}
			if pbr.MetallicFactor != nil {
				m.Metallic = *pbr.MetallicFactor
			}
			if pbr.RoughnessFactor != nil {
				m.Roughness = *pbr.RoughnessFactor
			}
		}
		out[i] = m
	}
	return out
}

// readVec3Accessor reads Vec3 data from a GLTF accessor.
func readVec3Accessor(doc *gltf.Document, accessorIdx int) ([]math3d.Vec3, error) {
	if accessorIdx < 0 || accessorIdx >= len(doc.Accessors) {
		return nil, fmt.Errorf("accessor index %d out of range", accessorIdx)
	}
	accessor := doc.Accessors[accessorIdx]
	if accessor.Type != gltf.AccessorVec3 {
		return nil, fmt.Errorf("expected VEC3, got %v", accessor.Type)
	}
	if accessor.ComponentType != gltf.ComponentFloat {
		return nil, fmt.Errorf("expected float components, got %v", accessor.ComponentType)
	}
	if accessor.BufferView == nil {
		return nil, fmt.Errorf("accessor has no buffer view")
	}

	bufferView := doc.BufferViews[*accessor.BufferView]
	bufData := doc.Buffers[bufferView.Buffer].Data
	if bufData == nil {
		return nil, fmt.Errorf("buffer has no data")
	}

	start := bufferView.ByteOffset + accessor.ByteOffset
	stride := bufferView.ByteStride
	if stride == 0 {
		stride = 12 // 3 floats * 4 bytes
	}

	count := accessor.Count
	if end := start + (count-1)*stride + 12; count > 0 && end > len(bufData) {
		return nil, fmt.Errorf("accessor reads past end of buffer (%d > %d)", end, len(bufData))
	}

	result := make([]math3d.Vec3, count)
	for i := range count {
		offset := start + i*stride
		result[i] = math3d.V3(
			float64(readFloat32(bufData[offset:])),
			float64(readFloat32(bufData[offset+4:])),
			float64(readFloat32(bufData[offset+8:])),
		)
	}
	return result, nil
}

// readFloat32 reads a little-endian float32.
func readFloat32(b []byte) float32 {
	bits := uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
	return math.Float32frombits(bits)
}
