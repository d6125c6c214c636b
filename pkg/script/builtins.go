package script

import (
	"fmt"
	"slices"
	"strings"

	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/taigrr/prism/pkg/geometry"
	"github.com/taigrr/prism/pkg/lights"
	"github.com/taigrr/prism/pkg/material"
	"github.com/taigrr/prism/pkg/math3d"
	"github.com/taigrr/prism/pkg/rgb"
	"github.com/taigrr/prism/pkg/scene"
)

// builder accumulates what the builtins create during one evaluation.
type builder struct {
	scene  *scene.Scene
	camera *CameraSpec
}

func (b *builder) result() *Result {
	return &Result{Scene: b.scene, Camera: b.camera}
}

// Go values carried through the interpreter.

type sexpVec3 struct{ v math3d.Vec3 }

func (s *sexpVec3) SexpString(*zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %g %g %g)", s.v.X, s.v.Y, s.v.Z)
}
func (s *sexpVec3) Type() *zygo.RegisteredType { return nil }

type sexpVec4 struct{ v math3d.Vec4 }

func (s *sexpVec4) SexpString(*zygo.PrintState) string {
	return fmt.Sprintf("(vec4 %g %g %g %g)", s.v.X, s.v.Y, s.v.Z, s.v.W)
}
func (s *sexpVec4) Type() *zygo.RegisteredType { return nil }

type sexpColor struct{ c rgb.Color }

func (s *sexpColor) SexpString(*zygo.PrintState) string {
	return fmt.Sprintf("(color %g %g %g)", s.c.R, s.c.G, s.c.B)
}
func (s *sexpColor) Type() *zygo.RegisteredType { return nil }

type sexpMaterial struct{ m material.Material }

func (s *sexpMaterial) SexpString(*zygo.PrintState) string {
	return fmt.Sprintf("(material :diffuse %s :reflection %g :refraction %g)",
		(&sexpColor{s.m.Diffuse}).SexpString(nil), s.m.Reflection, s.m.Refraction)
}
func (s *sexpMaterial) Type() *zygo.RegisteredType { return nil }

// sexpRef is the scene index returned by shape and light builtins.
type sexpRef struct {
	kind  string
	index int
}

func (s *sexpRef) SexpString(*zygo.PrintState) string {
	return fmt.Sprintf("(%s #%d)", s.kind, s.index)
}
func (s *sexpRef) Type() *zygo.RegisteredType { return nil }

// call is a builtin's argument list split into positional and keyword
// arguments.
type call struct {
	name string
	pos  []zygo.Sexp
	kw   map[string]zygo.Sexp
}

func newCall(name string, args []zygo.Sexp) (*call, error) {
	c := &call{name: name, kw: make(map[string]zygo.Sexp)}
	for i := 0; i < len(args); i++ {
		key, ok := keyword(args[i])
		if !ok {
			c.pos = append(c.pos, args[i])
			continue
		}
		if i+1 == len(args) {
			return nil, fmt.Errorf("%s: keyword :%s has no value", name, key)
		}
		c.kw[key] = args[i+1]
		i++
	}
	return c, nil
}

func keyword(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok || !strings.HasPrefix(str.S, kwPrefix) {
		return "", false
	}
	return str.S[len(kwPrefix):], true
}

// expect checks the positional arity and rejects unknown keywords.
func (c *call) expect(minPos, maxPos int, keywords ...string) error {
	if n := len(c.pos); n < minPos || n > maxPos {
		if minPos == maxPos {
			return fmt.Errorf("%s: want %d arguments, got %d", c.name, minPos, n)
		}
		return fmt.Errorf("%s: want %d to %d arguments, got %d", c.name, minPos, maxPos, n)
	}
	for k := range c.kw {
		if !slices.Contains(keywords, k) {
			return fmt.Errorf("%s: unknown keyword :%s", c.name, k)
		}
	}
	return nil
}

func (c *call) wrap(what string, err error) error {
	return fmt.Errorf("%s: %s: %w", c.name, what, err)
}

func (c *call) float(i int, what string) (float64, error) {
	f, err := toFloat(c.pos[i])
	if err != nil {
		return 0, c.wrap(what, err)
	}
	return f, nil
}

func (c *call) vec3(i int, what string) (math3d.Vec3, error) {
	v, err := toVec3(c.pos[i])
	if err != nil {
		return math3d.Vec3{}, c.wrap(what, err)
	}
	return v, nil
}

func (c *call) material(i int) (material.Material, error) {
	m, err := toMaterial(c.pos[i])
	if err != nil {
		return material.Material{}, c.wrap("material", err)
	}
	return m, nil
}

// kwFloat returns the keyword's value, or def when it is absent.
func (c *call) kwFloat(key string, def float64) (float64, error) {
	s, ok := c.kw[key]
	if !ok {
		return def, nil
	}
	f, err := toFloat(s)
	if err != nil {
		return 0, c.wrap(":"+key, err)
	}
	return f, nil
}

func (c *call) kwVec3(key string) (math3d.Vec3, bool, error) {
	s, ok := c.kw[key]
	if !ok {
		return math3d.Vec3{}, false, nil
	}
	v, err := toVec3(s)
	if err != nil {
		return math3d.Vec3{}, false, c.wrap(":"+key, err)
	}
	return v, true, nil
}

func (c *call) kwColor(key string) (rgb.Color, bool, error) {
	s, ok := c.kw[key]
	if !ok {
		return rgb.Color{}, false, nil
	}
	col, err := toColor(s)
	if err != nil {
		return rgb.Color{}, false, c.wrap(":"+key, err)
	}
	return col, true, nil
}

func toFloat(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %s", s.SexpString(nil))
}

func toVec3(s zygo.Sexp) (math3d.Vec3, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.v, nil
	}
	return math3d.Vec3{}, fmt.Errorf("expected vec3, got %s", s.SexpString(nil))
}

// toVec4 also accepts a vec3, read as a point (w = 1).
func toVec4(s zygo.Sexp) (math3d.Vec4, error) {
	switch v := s.(type) {
	case *sexpVec4:
		return v.v, nil
	case *sexpVec3:
		return math3d.V4FromV3(v.v, 1), nil
	}
	return math3d.Vec4{}, fmt.Errorf("expected vec4, got %s", s.SexpString(nil))
}

// toColor also accepts a bare number as a gray level.
func toColor(s zygo.Sexp) (rgb.Color, error) {
	if c, ok := s.(*sexpColor); ok {
		return c.c, nil
	}
	if f, err := toFloat(s); err == nil {
		return rgb.Gray(f), nil
	}
	return rgb.Color{}, fmt.Errorf("expected color, got %s", s.SexpString(nil))
}

// toMaterial accepts a material value or a preset name.
func toMaterial(s zygo.Sexp) (material.Material, error) {
	switch v := s.(type) {
	case *sexpMaterial:
		return v.m, nil
	case *zygo.SexpStr:
		name := strings.TrimPrefix(v.S, kwPrefix)
		m, ok := material.Lookup(name)
		if !ok {
			return material.Material{}, fmt.Errorf("unknown preset %q (have %s)", name, strings.Join(material.Names(), ", "))
		}
		return m, nil
	}
	return material.Material{}, fmt.Errorf("expected material, got %s", s.SexpString(nil))
}

// materialOverrides are the keywords accepted by (material ...).
var materialOverrides = []string{
	"ambient", "diffuse", "specular", "shininess",
	"diffusion", "reflection", "refraction", "in", "out",
}

// registerBuiltins installs the scene vocabulary into env. Shapes and
// lights are added to b.scene in call order, so a script's first shape has
// index 0.
func registerBuiltins(env *zygo.Zlisp, b *builder) {
	// (vec3 x y z)
	env.AddFunction("vec3", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		f, err := numbers(name, args, 3)
		if err != nil {
			return zygo.SexpNull, err
		}
		return &sexpVec3{math3d.V3(f[0], f[1], f[2])}, nil
	})

	// (vec4 x y z w); w = 0 is a direction at infinity.
	env.AddFunction("vec4", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		f, err := numbers(name, args, 4)
		if err != nil {
			return zygo.SexpNull, err
		}
		return &sexpVec4{math3d.V4(f[0], f[1], f[2], f[3])}, nil
	})

	// (color r g b), clamped to [0, 1].
	env.AddFunction("color", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		f, err := numbers(name, args, 3)
		if err != nil {
			return zygo.SexpNull, err
		}
		return &sexpColor{rgb.New(f[0], f[1], f[2])}, nil
	})

	// (material "bronze" :reflection 0.5 ...). Without a preset the
	// overrides apply to white plastic.
	env.AddFunction("material", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		c, err := newCall(name, args)
		if err != nil {
			return zygo.SexpNull, err
		}
		if err := c.expect(0, 1, materialOverrides...); err != nil {
			return zygo.SexpNull, err
		}
		m := material.WhitePlastic()
		if len(c.pos) == 1 {
			if m, err = c.material(0); err != nil {
				return zygo.SexpNull, err
			}
		}
		if err := applyOverrides(c, &m); err != nil {
			return zygo.SexpNull, err
		}
		return &sexpMaterial{m}, nil
	})

	// (mix t m1 m2)
	env.AddFunction("mix", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		c, err := newCall(name, args)
		if err != nil {
			return zygo.SexpNull, err
		}
		if err := c.expect(3, 3); err != nil {
			return zygo.SexpNull, err
		}
		t, err := c.float(0, "t")
		if err != nil {
			return zygo.SexpNull, err
		}
		m1, err := c.material(1)
		if err != nil {
			return zygo.SexpNull, err
		}
		m2, err := c.material(2)
		if err != nil {
			return zygo.SexpNull, err
		}
		return &sexpMaterial{material.Mix(t, m1, m2)}, nil
	})

	// (sphere center radius material)
	env.AddFunction("sphere", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		c, err := newCall(name, args)
		if err != nil {
			return zygo.SexpNull, err
		}
		if err := c.expect(3, 3); err != nil {
			return zygo.SexpNull, err
		}
		center, err := c.vec3(0, "center")
		if err != nil {
			return zygo.SexpNull, err
		}
		radius, err := c.float(1, "radius")
		if err != nil {
			return zygo.SexpNull, err
		}
		if radius <= 0 {
			return zygo.SexpNull, fmt.Errorf("%s: radius must be positive, got %g", name, radius)
		}
		m, err := c.material(2)
		if err != nil {
			return zygo.SexpNull, err
		}
		return &sexpRef{"sphere", b.scene.AddShape(geometry.NewSphere(center, radius, m))}, nil
	})

	// (box center size material :round r)
	env.AddFunction("box", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		c, err := newCall(name, args)
		if err != nil {
			return zygo.SexpNull, err
		}
		if err := c.expect(3, 3, "round"); err != nil {
			return zygo.SexpNull, err
		}
		center, err := c.vec3(0, "center")
		if err != nil {
			return zygo.SexpNull, err
		}
		size, err := c.vec3(1, "size")
		if err != nil {
			return zygo.SexpNull, err
		}
		m, err := c.material(2)
		if err != nil {
			return zygo.SexpNull, err
		}
		round, err := c.kwFloat("round", 0)
		if err != nil {
			return zygo.SexpNull, err
		}
		box, err := geometry.NewRoundedBox(center, size, round, m)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("%s: %w", name, err)
		}
		return &sexpRef{"box", b.scene.AddShape(box)}, nil
	})

	// (cylinder center height radius material :round r), along Z.
	env.AddFunction("cylinder", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		c, err := newCall(name, args)
		if err != nil {
			return zygo.SexpNull, err
		}
		if err := c.expect(4, 4, "round"); err != nil {
			return zygo.SexpNull, err
		}
		center, err := c.vec3(0, "center")
		if err != nil {
			return zygo.SexpNull, err
		}
		height, err := c.float(1, "height")
		if err != nil {
			return zygo.SexpNull, err
		}
		radius, err := c.float(2, "radius")
		if err != nil {
			return zygo.SexpNull, err
		}
		m, err := c.material(3)
		if err != nil {
			return zygo.SexpNull, err
		}
		round, err := c.kwFloat("round", 0)
		if err != nil {
			return zygo.SexpNull, err
		}
		cyl, err := geometry.NewCylinder(center, height, radius, round, m)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("%s: %w", name, err)
		}
		return &sexpRef{"cylinder", b.scene.AddShape(cyl)}, nil
	})

	// (light pos color); a vec4 with w = 0 is a directional light.
	env.AddFunction("light", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		c, err := newCall(name, args)
		if err != nil {
			return zygo.SexpNull, err
		}
		if err := c.expect(1, 2); err != nil {
			return zygo.SexpNull, err
		}
		pos, err := toVec4(c.pos[0])
		if err != nil {
			return zygo.SexpNull, c.wrap("position", err)
		}
		if pos.AtInfinity() && pos.Vec3().IsZero() {
			return zygo.SexpNull, fmt.Errorf("%s: direction must not be zero", name)
		}
		col := rgb.White
		if len(c.pos) == 2 {
			if col, err = toColor(c.pos[1]); err != nil {
				return zygo.SexpNull, c.wrap("color", err)
			}
		}
		return &sexpRef{"light", b.scene.AddLight(lights.NewPointLight(pos, col))}, nil
	})

	// (camera :eye v :target v :fov deg). Every keyword is optional; later
	// calls override only what they set.
	env.AddFunction("camera", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		c, err := newCall(name, args)
		if err != nil {
			return zygo.SexpNull, err
		}
		if err := c.expect(0, 0, "eye", "target", "fov"); err != nil {
			return zygo.SexpNull, err
		}
		cam := CameraSpec{}
		if b.camera != nil {
			cam = *b.camera
		}
		if v, ok, err := c.kwVec3("eye"); err != nil {
			return zygo.SexpNull, err
		} else if ok {
			cam.Eye = &v
		}
		if v, ok, err := c.kwVec3("target"); err != nil {
			return zygo.SexpNull, err
		} else if ok {
			cam.Target = &v
		}
		if cam.FOV, err = c.kwFloat("fov", cam.FOV); err != nil {
			return zygo.SexpNull, err
		}
		if cam.FOV < 0 || cam.FOV >= 180 {
			return zygo.SexpNull, fmt.Errorf("%s: fov must be in [0, 180), got %g", name, cam.FOV)
		}
		if cam.Eye != nil && cam.Target != nil && *cam.Eye == *cam.Target {
			return zygo.SexpNull, fmt.Errorf("%s: eye and target coincide", name)
		}
		b.camera = &cam
		return zygo.SexpNull, nil
	})
}

// numbers checks that args is exactly n numbers.
func numbers(name string, args []zygo.Sexp, n int) ([]float64, error) {
	if len(args) != n {
		return nil, fmt.Errorf("%s: want %d numbers, got %d arguments", name, n, len(args))
	}
	out := make([]float64, n)
	for i, a := range args {
		f, err := toFloat(a)
		if err != nil {
			return nil, fmt.Errorf("%s: argument %d: %w", name, i+1, err)
		}
		out[i] = f
	}
	return out, nil
}

func applyOverrides(c *call, m *material.Material) error {
	colors := map[string]*rgb.Color{
		"ambient":  &m.Ambient,
		"diffuse":  &m.Diffuse,
		"specular": &m.Specular,
	}
	for key, dst := range colors {
		col, ok, err := c.kwColor(key)
		if err != nil {
			return err
		}
		if ok {
			*dst = col
		}
	}

	floats := map[string]*float64{
		"shininess":  &m.Shininess,
		"diffusion":  &m.Diffusion,
		"reflection": &m.Reflection,
		"refraction": &m.Refraction,
		"in":         &m.InIndex,
		"out":        &m.OutIndex,
	}
	for key, dst := range floats {
		f, err := c.kwFloat(key, *dst)
		if err != nil {
			return err
		}
		*dst = f
	}
	return nil
}
