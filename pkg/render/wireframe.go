package render

import (
	"image/color"
	"math"

	"github.com/taigrr/prism/pkg/geometry"
	"github.com/taigrr/prism/pkg/lights"
	"github.com/taigrr/prism/pkg/math3d"
	"github.com/taigrr/prism/pkg/rgb"
	"github.com/taigrr/prism/pkg/scene"
)

// Sphere tessellation used by the preview.
const (
	SphereLatitudes  = 16
	SphereLongitudes = 24
)

// Wireframe renders a fast line preview of a scene.
type Wireframe struct {
	camera *Camera
	fb     *Framebuffer

	// GridSize and GridStep describe the ground grid on z = 0. A zero
	// size disables it.
	GridSize float64
	GridStep float64
}

// NewWireframe creates a new wireframe renderer.
func NewWireframe(camera *Camera, fb *Framebuffer) *Wireframe {
	return &Wireframe{
		camera:   camera,
		fb:       fb,
		GridSize: 20,
		GridStep: 1,
	}
}

// DrawScene clears the framebuffer and draws every shape and light.
// Shapes outside the view frustum are skipped.
func (w *Wireframe) DrawScene(sc *scene.Scene) {
	w.fb.Clear(ColorSky)
	if w.GridSize > 0 && w.GridStep > 0 {
		w.DrawGrid(w.GridSize, w.GridStep, ColorGrid)
	}
	w.DrawAxes(1)

	frustum := w.camera.Frustum()
	for _, s := range sc.Shapes() {
		c := shapeColor(s)
		switch s := s.(type) {
		case *geometry.Sphere:
			if frustum.IntersectsSphere(s.Center, s.Radius) {
				w.DrawSphere(s, c)
			}
		case geometry.Bounded:
			box := NewAABB(s.Bounds())
			if frustum.IntersectAABB(box) {
				w.DrawBox(box, c)
			}
		}
	}

	for _, l := range sc.Lights() {
		if pl, ok := l.(lights.Positional); ok {
			if pos, finite := pl.Position(); finite {
				w.DrawPoint(pos, 0.6, ColorLight)
			}
		}
	}
}

// shapeColor returns the hue of the shape's diffuse color at full value,
// so dark materials stay visible.
func shapeColor(s geometry.Shape) color.RGBA {
	var at math3d.Vec3
	if b, ok := s.(geometry.Bounded); ok {
		lo, hi := b.Bounds()
		at = lo.Add(hi).Scale(0.5)
	}
	h, sat, _ := s.MaterialAt(at).Diffuse.HSV()
	return rgb.FromHSV(h, sat, 1).RGBA()
}

// DrawLine3D draws a line in 3D space.
func (w *Wireframe) DrawLine3D(p1, p2 math3d.Vec3, c color.RGBA) {
	x1, y1, ok1 := w.camera.ProjectClipped(p1, w.fb.Width, w.fb.Height)
	x2, y2, ok2 := w.camera.ProjectClipped(p2, w.fb.Width, w.fb.Height)
	if !ok1 || !ok2 {
		return
	}

	// Skip lines whose ends landed absurdly far off-screen; Bresenham would
	// walk every pixel in between.
	limit := float64(4 * max(w.fb.Width, w.fb.Height))
	if math.Abs(x1) > limit || math.Abs(y1) > limit || math.Abs(x2) > limit || math.Abs(y2) > limit {
		return
	}
	w.fb.DrawLine(int(x1), int(y1), int(x2), int(y2), c)
}

// DrawSphere draws latitude and longitude rings.
func (w *Wireframe) DrawSphere(s *geometry.Sphere, c color.RGBA) {
	latStep := 180.0 / SphereLatitudes
	lonStep := 360.0 / SphereLongitudes

	for i := 1; i < SphereLatitudes; i++ {
		lat := -90 + float64(i)*latStep
		for j := range SphereLongitudes {
			lon := float64(j) * lonStep
			w.DrawLine3D(s.Localize(lat, lon), s.Localize(lat, lon+lonStep), c)
		}
	}
	for j := range SphereLongitudes {
		lon := float64(j) * lonStep
		for i := range SphereLatitudes {
			lat := -90 + float64(i)*latStep
			w.DrawLine3D(s.Localize(lat, lon), s.Localize(lat+latStep, lon), c)
		}
	}
}

// boxEdges lists corner index pairs (see AABB.Corners) that differ in
// exactly one axis.
var boxEdges = [12][2]int{
	{0, 1}, {2, 3}, {4, 5}, {6, 7},
	{0, 2}, {1, 3}, {4, 6}, {5, 7},
	{0, 4}, {1, 5}, {2, 6}, {3, 7},
}

// DrawBox draws the twelve edges of an axis-aligned box.
func (w *Wireframe) DrawBox(box AABB, c color.RGBA) {
	corners := box.Corners()
	for _, e := range boxEdges {
		w.DrawLine3D(corners[e[0]], corners[e[1]], c)
	}
}

// DrawAxes draws the coordinate axes at the origin.
func (w *Wireframe) DrawAxes(length float64) {
	origin := math3d.Zero3()
	w.DrawLine3D(origin, math3d.V3(length, 0, 0), ColorRed)   // X axis
	w.DrawLine3D(origin, math3d.V3(0, length, 0), ColorGreen) // Y axis
	w.DrawLine3D(origin, math3d.V3(0, 0, length), ColorBlue)  // Z axis
}

// DrawGrid draws a grid on the XY plane at z=0.
func (w *Wireframe) DrawGrid(size, step float64, c color.RGBA) {
	half := size / 2
	for x := -half; x <= half; x += step {
		w.DrawLine3D(math3d.V3(x, -half, 0), math3d.V3(x, half, 0), c)
	}
	for y := -half; y <= half; y += step {
		w.DrawLine3D(math3d.V3(-half, y, 0), math3d.V3(half, y, 0), c)
	}
}

// DrawPoint draws a point as a small cross.
func (w *Wireframe) DrawPoint(pos math3d.Vec3, size float64, c color.RGBA) {
	h := size / 2
	w.DrawLine3D(pos.Sub(math3d.V3(h, 0, 0)), pos.Add(math3d.V3(h, 0, 0)), c)
	w.DrawLine3D(pos.Sub(math3d.V3(0, h, 0)), pos.Add(math3d.V3(0, h, 0)), c)
	w.DrawLine3D(pos.Sub(math3d.V3(0, 0, h)), pos.Add(math3d.V3(0, 0, h)), c)
}
