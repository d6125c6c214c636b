// Package tracer implements a recursive Whitted-style ray tracer: local
// Phong shading with transparent shadows, mirror reflection and
// refraction to a bounded depth.
package tracer

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/taigrr/prism/pkg/geometry"
	"github.com/taigrr/prism/pkg/lights"
	"github.com/taigrr/prism/pkg/math3d"
	"github.com/taigrr/prism/pkg/rgb"
	"github.com/taigrr/prism/pkg/scene"
)

// World is the read-only view of a scene the renderer needs.
// *scene.Scene satisfies it.
type World interface {
	RayIntersection(r geometry.Ray) (float64, scene.Hit)
	Lights() []lights.Light
}

// ViewBox describes the camera: an origin and the directions of the rays
// through the four image corners.
type ViewBox struct {
	Origin         math3d.Vec3
	UL, UR, LL, LR math3d.Vec3
}

// Renderer traces images of a World. It is safe to call Render and Trace
// from several goroutines as long as the world is not modified.
type Renderer struct {
	world      World
	view       ViewBox
	width      int
	height     int
	background Background
	logger     Logger
}

// New creates a renderer for world with the default sky and a 320x240
// resolution.
func New(world World) *Renderer {
	return &Renderer{
		world:      world,
		width:      320,
		height:     240,
		background: DefaultSky(),
		logger:     NopLogger,
	}
}

// SetViewBox sets the camera.
func (rd *Renderer) SetViewBox(v ViewBox) { rd.view = v }

// ViewBox returns the camera.
func (rd *Renderer) ViewBox() ViewBox { return rd.view }

// SetResolution sets the output size in pixels.
func (rd *Renderer) SetResolution(width, height int) {
	rd.width = width
	rd.height = height
}

// Resolution returns the output size in pixels.
func (rd *Renderer) Resolution() (width, height int) { return rd.width, rd.height }

// SetBackground replaces the sky. A nil background renders black.
func (rd *Renderer) SetBackground(b Background) {
	if b == nil {
		b = BackgroundFunc(func(geometry.Ray) rgb.Color { return rgb.Black })
	}
	rd.background = b
}

// SetLogger sets the logger. A nil logger discards output.
func (rd *Renderer) SetLogger(l Logger) {
	if l == nil {
		l = NopLogger
	}
	rd.logger = l
}

// Render traces one primary ray per pixel and returns the clamped image.
// Rows are rendered on up to opts.Workers goroutines. If ctx is canceled
// the partial image is discarded and ctx's error returned.
func (rd *Renderer) Render(ctx context.Context, opts Options) (*Image, error) {
	if rd.width <= 0 || rd.height <= 0 {
		return nil, fmt.Errorf("invalid resolution %dx%d", rd.width, rd.height)
	}
	if opts.MaxDepth < 0 {
		return nil, fmt.Errorf("invalid max depth %d", opts.MaxDepth)
	}
	workers := max(opts.Workers, 1)

	rd.logger.Printf("rendering %dx%d depth=%d workers=%d", rd.width, rd.height, opts.MaxDepth, workers)
	start := time.Now()

	img := NewImage(rd.width, rd.height)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	var (
		mu   sync.Mutex
		done int
	)
	for y := range rd.height {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rd.renderRow(img, y, opts.MaxDepth)
			if opts.Progress != nil {
				mu.Lock()
				done++
				opts.Progress(done, rd.height)
				mu.Unlock()
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("render canceled: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("render canceled: %w", err)
	}

	rd.logger.Printf("rendered %dx%d in %s", rd.width, rd.height, time.Since(start).Round(time.Millisecond))
	return img, nil
}

func (rd *Renderer) renderRow(img *Image, y, maxDepth int) {
	dirL, dirR := rd.rowEdges(y)
	for x := range rd.width {
		tx := fraction(x, rd.width)
		r := geometry.NewRay(rd.view.Origin, dirL.Lerp(dirR, tx), maxDepth)
		img.Set(x, y, rd.Trace(r))
	}
}

// rowEdges interpolates the left and right edge directions for row y.
func (rd *Renderer) rowEdges(y int) (dirL, dirR math3d.Vec3) {
	ty := fraction(y, rd.height)
	dirL = rd.view.UL.Lerp(rd.view.LL, ty).Normalize()
	dirR = rd.view.UR.Lerp(rd.view.LR, ty).Normalize()
	return dirL, dirR
}

// fraction maps i in [0, n) onto [0, 1].
func fraction(i, n int) float64 {
	if n <= 1 {
		return 0.5
	}
	return float64(i) / float64(n-1)
}

// PrimaryRay returns the camera ray through pixel (x, y).
func (rd *Renderer) PrimaryRay(x, y, maxDepth int) geometry.Ray {
	dirL, dirR := rd.rowEdges(y)
	return geometry.NewRay(rd.view.Origin, dirL.Lerp(dirR, fraction(x, rd.width)), maxDepth)
}

// Trace returns the color seen along r. The result is not clamped.
func (rd *Renderer) Trace(r geometry.Ray) rgb.Color {
	signal, hit := rd.world.RayIntersection(r)
	if !geometry.Hit(signal) {
		return rd.BackgroundColor(r)
	}

	m := hit.Shape.MaterialAt(hit.Point)
	result := rd.Illumination(r, hit).Scale(m.Diffusion)
	if r.Depth <= 0 {
		return result
	}

	n := hit.Shape.Normal(hit.Point)
	if n.IsZero() {
		return result
	}

	if m.Reflection != 0 {
		dir := r.Direction.Reflect(n)
		if !dir.IsZero() {
			reflected := geometry.NewRay(hit.Point, dir, r.Depth-1).Offset(reflectionOffset)
			result = result.Add(rd.Trace(reflected).Mul(m.Specular).Scale(m.Reflection))
		}
	}

	if m.Refraction != 0 {
		refracted, _ := RefractionRay(r, hit.Point, n, m)
		if !refracted.Direction.IsZero() {
			result = result.Add(rd.Trace(refracted).Mul(m.Diffuse).Scale(m.Refraction))
		}
	}

	return result
}

// BackgroundColor returns the sky color for r plus a glow around every
// light the ray points at.
func (rd *Renderer) BackgroundColor(r geometry.Ray) rgb.Color {
	c := rd.background.BackgroundColor(r)
	for _, l := range rd.world.Lights() {
		cos := l.Direction(r.Origin).Dot(r.Direction)
		if cos <= glowCos {
			continue
		}
		deg := math.Acos(math.Min(cos, 1)) * 180 / math.Pi
		a := math.Max(1-deg/glowDegrees, 0)
		c = c.Add(l.Color(r.Origin).Scale(a * a))
	}
	return c
}
