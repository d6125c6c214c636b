package tracer

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/taigrr/prism/pkg/geometry"
	"github.com/taigrr/prism/pkg/lights"
	"github.com/taigrr/prism/pkg/material"
	"github.com/taigrr/prism/pkg/math3d"
	"github.com/taigrr/prism/pkg/rgb"
	"github.com/taigrr/prism/pkg/scene"
)

// countingWorld records how many nearest-hit queries were made.
type countingWorld struct {
	*scene.Scene
	queries int
}

func (w *countingWorld) RayIntersection(r geometry.Ray) (float64, scene.Hit) {
	w.queries++
	return w.Scene.RayIntersection(r)
}

func opaque() material.Material {
	m := material.RedPlastic()
	m.Refraction = 0
	return m
}

func mirror() material.Material {
	m := material.New(rgb.Gray(0.1), rgb.Gray(0.5), rgb.White, 20)
	m.Reflection = 1
	m.Refraction = 1
	m.InIndex = 1.5
	return m
}

func demoView() ViewBox {
	return ViewBox{
		Origin: math3d.V3(10, 0, 2),
		UL:     math3d.V3(-1, 0.5, 0.3),
		UR:     math3d.V3(-1, -0.5, 0.3),
		LL:     math3d.V3(-1, 0.5, -0.4),
		LR:     math3d.V3(-1, -0.5, -0.4),
	}
}

func TestShadowNoBlock(t *testing.T) {
	sc := scene.New()
	sc.AddShape(geometry.NewSphere(math3d.V3(10, 10, 0), 1, opaque()))
	rd := New(sc)

	in := rgb.New(0.8, 0.6, 0.4)
	got := rd.Shadow(geometry.NewRay(math3d.Zero3(), math3d.V3(0, 0, 1), 1), in)
	if got != in {
		t.Errorf("Shadow = %v, want unchanged %v", got, in)
	}
}

func TestShadowFullBlock(t *testing.T) {
	sc := scene.New()
	sc.AddShape(geometry.NewSphere(math3d.V3(0, 0, 5), 1, opaque()))
	w := &countingWorld{Scene: sc}
	rd := New(w)

	got := rd.Shadow(geometry.NewRay(math3d.Zero3(), math3d.V3(0, 0, 1), 1), rgb.White)
	if got.Max() >= ShadowThreshold {
		t.Errorf("Shadow = %v, want below %v", got, ShadowThreshold)
	}
	if w.queries > MaxShadowSteps {
		t.Errorf("shadow took %d queries, more than %d", w.queries, MaxShadowSteps)
	}
}

func TestShadowThroughGlass(t *testing.T) {
	sc := scene.New()
	sc.AddShape(geometry.NewSphere(math3d.V3(0, 0, 5), 1, material.Glass()))
	rd := New(sc)

	got := rd.Shadow(geometry.NewRay(math3d.Zero3(), math3d.V3(0, 0, 1), 1), rgb.White)
	if got.Max() <= ShadowThreshold || got.Max() >= 1 {
		t.Errorf("Shadow through glass = %v, want partial attenuation", got)
	}
}

func TestShadowIgnoresOccluderBehindLight(t *testing.T) {
	sc := scene.New()
	sc.AddShape(geometry.NewSphere(math3d.V3(0, 0, 0), 1, opaque()))
	sc.AddShape(geometry.NewSphere(math3d.V3(0, 0, 20), 1, opaque()))
	sc.AddLight(lights.NewPointLight(math3d.V4(0, 0, 10, 1), rgb.White))
	rd := New(sc)

	hit, ok := sc.Nearest(geometry.NewRay(math3d.V3(0, 0, 5), math3d.V3(0, 0, -1), 0))
	if !ok {
		t.Fatal("expected to hit the lower sphere")
	}
	lit := rd.Illumination(geometry.NewRay(math3d.V3(0, 0, 5), math3d.V3(0, 0, -1), 0), hit)
	// Light, normal and mirrored view all point straight up.
	m := hit.Shape.MaterialAt(hit.Point)
	want := m.Diffuse.Add(m.Specular).Add(m.Ambient)
	if lit.Distance(want) > 1e-9 {
		t.Errorf("Illumination = %v, want fully lit %v", lit, want)
	}
}

func TestDepthZeroMakesNoRecursiveQueries(t *testing.T) {
	sc := scene.New()
	sc.AddShape(geometry.NewSphere(math3d.Zero3(), 1, mirror()))
	sc.AddLight(lights.NewDirectional(math3d.V3(0, 0, 1), rgb.White))

	ray := geometry.NewRay(math3d.V3(0, 0, 10), math3d.V3(0, 0, -1), 0)

	w := &countingWorld{Scene: sc}
	rd := New(w)
	local := rd.Trace(ray)
	// One primary query and one unobstructed shadow query.
	if w.queries != 2 {
		t.Errorf("depth 0 made %d queries, want 2", w.queries)
	}

	hit, _ := sc.Nearest(ray)
	want := rd.Illumination(ray, hit).Scale(mirror().Diffusion)
	if local != want {
		t.Errorf("depth 0 color = %v, want local illumination %v", local, want)
	}

	w.queries = 0
	ray.Depth = 1
	rd.Trace(ray)
	if w.queries <= 2 {
		t.Errorf("depth 1 made %d queries, expected recursion", w.queries)
	}
}

func TestRecursiveWeights(t *testing.T) {
	bg := rgb.New(0.8, 0.6, 0.4)
	diffuse := rgb.New(0.2, 0.4, 0.6)
	specular := rgb.New(0.5, 0.25, 1)

	// No lights and no ambient: the only light is the constant background
	// carried back by secondary rays.
	base := material.New(rgb.Black, diffuse, specular, 10)
	base.Diffusion = 0

	reflector := base
	reflector.Reflection = 0.5

	// Equal indices so the ray crosses the sphere without bending.
	refractor := base
	refractor.Refraction = 0.5

	tests := []struct {
		name  string
		m     material.Material
		depth int
		want  rgb.Color
	}{
		{
			name:  "mirror",
			m:     reflector,
			depth: 1,
			want:  bg.Mul(specular).Scale(0.5),
		},
		{
			// Two surfaces crossed, each weighting by diffuse * refraction.
			name:  "refractor",
			m:     refractor,
			depth: 2,
			want:  bg.Mul(diffuse).Scale(0.5).Mul(diffuse).Scale(0.5),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc := scene.New()
			sc.AddShape(geometry.NewSphere(math3d.Zero3(), 1, tt.m))
			rd := New(sc)
			rd.SetBackground(BackgroundFunc(func(geometry.Ray) rgb.Color { return bg }))

			got := rd.Trace(geometry.NewRay(math3d.V3(0, 0, 5), math3d.V3(0, 0, -1), tt.depth))
			if got.Distance(tt.want) > 1e-12 {
				t.Errorf("Trace = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBackgroundDeterminism(t *testing.T) {
	rd := New(scene.Demo())
	dirs := []math3d.Vec3{
		math3d.V3(1, 0, 0.2),
		math3d.V3(0.3, 0.4, 0.8),
		math3d.V3(0.5, -0.2, -0.3),
		math3d.V3(-1, 0, -0.01),
	}
	for _, d := range dirs {
		a := rd.BackgroundColor(geometry.NewRay(math3d.V3(50, 50, 50), d, 0))
		b := rd.BackgroundColor(geometry.NewRay(math3d.V3(-80, 20, 60), d, 0))
		if a != b {
			t.Errorf("direction %v: %v != %v", d, a, b)
		}
	}
}

func TestSkyZones(t *testing.T) {
	sky := DefaultSky()
	tests := []struct {
		name string
		dir  math3d.Vec3
		want rgb.Color
	}{
		{"horizon", math3d.V3(1, 0, 0), rgb.White},
		{"zenith", math3d.V3(0, 0, 1), rgb.Black},
		{"mid", math3d.V3(0, 0.8660254037844386, 0.5), rgb.Color{B: 1}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := sky.BackgroundColor(geometry.NewRay(math3d.Zero3(), tc.dir, 0))
			if got.Distance(tc.want) > 1e-9 {
				t.Errorf("got %v, want %v", got, tc.want)
			}
		})
	}

	ground := sky.BackgroundColor(geometry.NewRay(math3d.Zero3(), math3d.V3(0.1, 0.1, -1), 0))
	if ground.Min() < 0.7 || ground.Max() > 1 || ground.R != ground.B {
		t.Errorf("ground should be a light gray, got %v", ground)
	}
}

func TestGlowTowardLight(t *testing.T) {
	sc := scene.New()
	sc.AddLight(lights.NewDirectional(math3d.V3(1, 0, 0), rgb.New(1, 0, 0)))
	rd := New(sc)
	rd.SetBackground(nil)

	on := rd.BackgroundColor(geometry.NewRay(math3d.Zero3(), math3d.V3(1, 0, 0), 0))
	if math.Abs(on.R-1) > 1e-9 {
		t.Errorf("glow straight at light = %v, want full red", on)
	}
	off := rd.BackgroundColor(geometry.NewRay(math3d.Zero3(), math3d.V3(0, 1, 0), 0))
	if off != rgb.Black {
		t.Errorf("no glow expected away from light, got %v", off)
	}
}

func TestRefractionRay(t *testing.T) {
	m := material.Glass()
	n := math3d.V3(0, 0, 1)

	straight, ok := RefractionRay(geometry.NewRay(math3d.V3(0, 0, 1), math3d.V3(0, 0, -1), 3), math3d.Zero3(), n, m)
	if !ok {
		t.Fatal("head-on ray should refract")
	}
	if straight.Direction.Sub(math3d.V3(0, 0, -1)).Len() > 1e-9 {
		t.Errorf("head-on direction = %v, want (0,0,-1)", straight.Direction)
	}
	if straight.Depth != 2 {
		t.Errorf("Depth = %d, want 2", straight.Depth)
	}

	entering := geometry.NewRay(math3d.V3(-1, 0, 1), math3d.V3(1, 0, -1), 3)
	bent, ok := RefractionRay(entering, math3d.Zero3(), n, m)
	if !ok {
		t.Fatal("oblique entering ray should refract")
	}
	sinIn := math.Sqrt(0.5)
	sinOut := bent.Direction.X
	if math.Abs(sinIn/sinOut-m.InIndex/m.OutIndex) > 1e-9 {
		t.Errorf("Snell ratio = %v, want %v", sinIn/sinOut, m.InIndex/m.OutIndex)
	}
}

func TestTotalInternalReflection(t *testing.T) {
	m := material.Glass()
	n := math3d.V3(0, 0, 1)
	// Leaving the dense medium at a grazing angle.
	r := geometry.NewRay(math3d.V3(-1, 0, -0.2), math3d.V3(1, 0, 0.2), 3)

	out, ok := RefractionRay(r, math3d.Zero3(), n, m)
	if ok {
		t.Fatal("expected total internal reflection")
	}
	d := out.Direction
	if math.IsNaN(d.X) || math.IsNaN(d.Y) || math.IsNaN(d.Z) {
		t.Fatalf("direction is NaN: %v", d)
	}
	if d.Z >= 0 {
		t.Errorf("reflected direction should point back down, got %v", d)
	}

	sc := scene.New()
	sc.AddShape(geometry.NewSphere(math3d.Zero3(), 1, m))
	sc.AddLight(lights.NewPointLight(math3d.V4(5, 5, 5, 1), rgb.White))
	c := New(sc).Trace(geometry.NewRay(math3d.V3(0.95, 0, 10), math3d.V3(0, 0, -1), 8))
	if math.IsNaN(c.R) || math.IsNaN(c.G) || math.IsNaN(c.B) || math.IsInf(c.Max(), 0) {
		t.Errorf("trace through grazing glass produced %v", c)
	}
}

func TestRenderParallelMatchesSequential(t *testing.T) {
	rd := New(scene.Demo())
	rd.SetViewBox(demoView())
	rd.SetResolution(24, 16)

	seq, err := rd.Render(context.Background(), Options{MaxDepth: 4, Workers: 1})
	if err != nil {
		t.Fatalf("sequential render: %v", err)
	}
	par, err := rd.Render(context.Background(), Options{MaxDepth: 4, Workers: 8})
	if err != nil {
		t.Fatalf("parallel render: %v", err)
	}

	for i := range seq.Pix {
		if seq.Pix[i] != par.Pix[i] {
			t.Fatalf("pixel %d differs: %v vs %v", i, seq.Pix[i], par.Pix[i])
		}
	}
}

func TestRenderClampsAndReportsProgress(t *testing.T) {
	rd := New(scene.Demo())
	rd.SetViewBox(demoView())
	rd.SetResolution(12, 9)

	var last, calls int
	img, err := rd.Render(context.Background(), Options{
		MaxDepth: 3,
		Workers:  3,
		Progress: func(done, total int) {
			calls++
			last = done
			if total != 9 {
				t.Errorf("total = %d, want 9", total)
			}
		},
	})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if calls != 9 || last != 9 {
		t.Errorf("progress called %d times ending at %d, want 9 and 9", calls, last)
	}
	for i, c := range img.Pix {
		if c.Min() < 0 || c.Max() > 1 {
			t.Fatalf("pixel %d not clamped: %v", i, c)
		}
	}
}

func TestRenderCanceled(t *testing.T) {
	rd := New(scene.Demo())
	rd.SetViewBox(demoView())
	rd.SetResolution(64, 64)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := rd.Render(ctx, DefaultOptions())
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestRenderRejectsBadResolution(t *testing.T) {
	rd := New(scene.Demo())
	rd.SetResolution(0, 10)
	if _, err := rd.Render(context.Background(), DefaultOptions()); err == nil {
		t.Error("expected an error for zero width")
	}
}

func TestPrimaryRayCorners(t *testing.T) {
	rd := New(scene.New())
	v := demoView()
	rd.SetViewBox(v)
	rd.SetResolution(10, 5)

	corners := []struct {
		x, y int
		want math3d.Vec3
	}{
		{0, 0, v.UL},
		{9, 0, v.UR},
		{0, 4, v.LL},
		{9, 4, v.LR},
	}
	for _, c := range corners {
		r := rd.PrimaryRay(c.x, c.y, 2)
		if r.Direction.Sub(c.want.Normalize()).Len() > 1e-12 {
			t.Errorf("PrimaryRay(%d,%d) = %v, want %v", c.x, c.y, r.Direction, c.want.Normalize())
		}
		if r.Origin != v.Origin || r.Depth != 2 {
			t.Errorf("PrimaryRay(%d,%d) origin/depth = %v/%d", c.x, c.y, r.Origin, r.Depth)
		}
	}
}
