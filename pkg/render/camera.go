package render

import (
	"math"

	"github.com/taigrr/prism/pkg/math3d"
	"github.com/taigrr/prism/pkg/tracer"
)

// Camera is an orbit camera: it sits on a sphere around Target and always
// looks at it. +Z is up.
type Camera struct {
	Target math3d.Vec3

	// Orbit parameters. Azimuth is measured in the XY plane from +X,
	// elevation from the XY plane toward +Z. Both in radians.
	Azimuth   float64
	Elevation float64
	Distance  float64

	// Projection parameters
	FOV         float64 // Vertical field of view in radians
	AspectRatio float64 // Width / Height
	Near        float64
	Far         float64

	viewMatrix     math3d.Mat4
	projMatrix     math3d.Mat4
	viewProjMatrix math3d.Mat4
	viewDirty      bool
	projDirty      bool
	viewProjDirty  bool
}

const maxElevation = math.Pi/2 - 0.01

// NewCamera creates a camera looking at the origin from the +X side,
// slightly above the ground.
func NewCamera() *Camera {
	return &Camera{
		Azimuth:     0,
		Elevation:   0.2,
		Distance:    10,
		FOV:         math.Pi / 4,
		AspectRatio: 4.0 / 3.0,
		Near:        0.1,
		Far:         1000,
		viewDirty:   true,
		projDirty:   true,
	}
}

// Position returns the eye position in world space.
func (c *Camera) Position() math3d.Vec3 {
	ce := math.Cos(c.Elevation)
	offset := math3d.V3(
		ce*math.Cos(c.Azimuth),
		ce*math.Sin(c.Azimuth),
		math.Sin(c.Elevation),
	)
	return c.Target.Add(offset.Scale(c.Distance))
}

// SetPosition moves the eye to pos, keeping the current target.
func (c *Camera) SetPosition(pos math3d.Vec3) {
	d := pos.Sub(c.Target)
	c.Distance = d.Len()
	if c.Distance == 0 {
		c.Distance = 1e-6
		return
	}
	c.Azimuth = math.Atan2(d.Y, d.X)
	c.Elevation = clampElevation(math.Asin(d.Z / c.Distance))
	c.viewDirty = true
}

// LookAt keeps the eye where it is and turns it toward target.
func (c *Camera) LookAt(target math3d.Vec3) {
	eye := c.Position()
	c.Target = target
	c.SetPosition(eye)
}

// SetOrbit places the camera directly.
func (c *Camera) SetOrbit(azimuth, elevation, distance float64) {
	c.Azimuth = azimuth
	c.Elevation = clampElevation(elevation)
	c.Distance = math.Max(distance, c.Near)
	c.viewDirty = true
}

// Orbit rotates the camera around its target.
func (c *Camera) Orbit(deltaAzimuth, deltaElevation float64) {
	c.SetOrbit(c.Azimuth+deltaAzimuth, c.Elevation+deltaElevation, c.Distance)
}

// Zoom scales the distance to the target. factor < 1 moves closer.
func (c *Camera) Zoom(factor float64) {
	c.SetOrbit(c.Azimuth, c.Elevation, c.Distance*factor)
}

func clampElevation(e float64) float64 {
	return math.Max(-maxElevation, math.Min(maxElevation, e))
}

// SetFOV sets the vertical field of view (in radians).
func (c *Camera) SetFOV(fov float64) {
	c.FOV = fov
	c.projDirty = true
}

// SetAspectRatio sets the aspect ratio.
func (c *Camera) SetAspectRatio(aspect float64) {
	c.AspectRatio = aspect
	c.projDirty = true
}

// SetClipPlanes sets the near and far clipping planes.
func (c *Camera) SetClipPlanes(near, far float64) {
	c.Near = near
	c.Far = far
	c.projDirty = true
}

// Frame points the camera at the center of the box and backs off until
// the whole box fits in the vertical field of view.
func (c *Camera) Frame(min, max math3d.Vec3) {
	c.Target = min.Add(max).Scale(0.5)
	radius := max.Sub(min).Len() / 2
	dist := radius / math.Sin(c.FOV/2)
	c.SetOrbit(c.Azimuth, c.Elevation, math.Max(dist, 1))
}

// Forward returns the unit view direction.
func (c *Camera) Forward() math3d.Vec3 {
	return c.Target.Sub(c.Position()).Normalize()
}

// Right returns the unit right vector.
func (c *Camera) Right() math3d.Vec3 {
	return c.Forward().Cross(math3d.Up()).Normalize()
}

// Up returns the unit up vector of the image plane.
func (c *Camera) Up() math3d.Vec3 {
	return c.Right().Cross(c.Forward())
}

// ViewMatrix returns the view matrix.
func (c *Camera) ViewMatrix() math3d.Mat4 {
	if c.viewDirty {
		c.viewMatrix = math3d.LookAt(c.Position(), c.Target, math3d.Up())
		c.viewDirty = false
		c.viewProjDirty = true
	}
	return c.viewMatrix
}

// ProjectionMatrix returns the projection matrix.
func (c *Camera) ProjectionMatrix() math3d.Mat4 {
	if c.projDirty {
		c.projMatrix = math3d.Perspective(c.FOV, c.AspectRatio, c.Near, c.Far)
		c.projDirty = false
		c.viewProjDirty = true
	}
	return c.projMatrix
}

// ViewProjectionMatrix returns the combined view-projection matrix.
func (c *Camera) ViewProjectionMatrix() math3d.Mat4 {
	view := c.ViewMatrix()
	proj := c.ProjectionMatrix()
	if c.viewProjDirty {
		c.viewProjMatrix = proj.Mul(view)
		c.viewProjDirty = false
	}
	return c.viewProjMatrix
}

// ViewBox returns the tracer camera matching this view: the eye and the
// directions through the four image corners.
func (c *Camera) ViewBox() tracer.ViewBox {
	f := c.Forward()
	r := c.Right()
	u := c.Up()
	h := math.Tan(c.FOV / 2)
	w := h * c.AspectRatio

	up := u.Scale(h)
	right := r.Scale(w)
	return tracer.ViewBox{
		Origin: c.Position(),
		UL:     f.Add(up).Sub(right),
		UR:     f.Add(up).Add(right),
		LL:     f.Sub(up).Sub(right),
		LR:     f.Sub(up).Add(right),
	}
}

// WorldToScreen transforms a world point to screen coordinates.
// Returns (screenX, screenY, depth, visible).
func (c *Camera) WorldToScreen(worldPos math3d.Vec3, screenWidth, screenHeight int) (x, y, depth float64, visible bool) {
	clipPos := c.ViewProjectionMatrix().MulVec4(math3d.V4FromV3(worldPos, 1))

	// Behind the camera
	if clipPos.W <= 0 {
		return 0, 0, 0, false
	}

	ndc := clipPos.PerspectiveDivide()
	if ndc.X < -1 || ndc.X > 1 || ndc.Y < -1 || ndc.Y > 1 || ndc.Z < -1 || ndc.Z > 1 {
		return 0, 0, 0, false
	}

	x = (ndc.X + 1) * 0.5 * float64(screenWidth)
	y = (1 - ndc.Y) * 0.5 * float64(screenHeight) // Y is flipped
	depth = ndc.Z

	return x, y, depth, true
}

// ProjectClipped projects a world point without rejecting points outside
// the view, so lines with one end off-screen can still be drawn. ok is
// false only for points behind the eye.
func (c *Camera) ProjectClipped(worldPos math3d.Vec3, screenWidth, screenHeight int) (x, y float64, ok bool) {
	clipPos := c.ViewProjectionMatrix().MulVec4(math3d.V4FromV3(worldPos, 1))
	if clipPos.W <= c.Near*0.5 {
		return 0, 0, false
	}
	ndc := clipPos.PerspectiveDivide()
	x = (ndc.X + 1) * 0.5 * float64(screenWidth)
	y = (1 - ndc.Y) * 0.5 * float64(screenHeight)
	return x, y, true
}
