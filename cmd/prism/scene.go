package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/taigrr/prism/pkg/math3d"
	"github.com/taigrr/prism/pkg/models"
	"github.com/taigrr/prism/pkg/render"
	"github.com/taigrr/prism/pkg/scene"
	"github.com/taigrr/prism/pkg/script"
)

// sceneFlags are shared by render and view.
type sceneFlags struct {
	path   string
	eye    string
	target string
	fov    float64 // degrees, 0 keeps the scene's or the default
}

func (f *sceneFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVarP(&f.path, "scene", "s", "", "scene script (.lisp) or glTF asset (.gltf/.glb); demo scene if empty")
	fl.StringVar(&f.eye, "eye", "", "camera position as x,y,z")
	fl.StringVar(&f.target, "target", "", "camera target as x,y,z")
	fl.Float64Var(&f.fov, "fov", 0, "vertical field of view in degrees")
}

// loadScene reads the scene and returns it with the camera the scene asked
// for, if any.
func loadScene(ctx context.Context, path string) (*scene.Scene, *script.CameraSpec, error) {
	if path == "" {
		return scene.Demo(), nil, nil
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".glb", ".gltf":
		sc, err := models.LoadGLTF(path)
		if err != nil {
			return nil, nil, fmt.Errorf("load model: %w", err)
		}
		return sc, nil, nil
	}

	src, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read scene: %w", err)
	}
	res, err := script.Eval(ctx, string(src))
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return res.Scene, res.Camera, nil
}

// setupCamera frames the scene, then applies the scene's camera and
// finally the command line overrides.
func (f *sceneFlags) setupCamera(sc *scene.Scene, spec *script.CameraSpec, aspect float64) (*render.Camera, error) {
	cam := render.NewCamera()
	cam.SetAspectRatio(aspect)

	fov := f.fov
	if fov == 0 && spec != nil {
		fov = spec.FOV
	}
	if fov < 0 || fov >= 180 {
		return nil, fmt.Errorf("fov must be in (0, 180) degrees, got %g", fov)
	}
	if fov > 0 {
		cam.SetFOV(fov * math.Pi / 180)
	}

	if lo, hi, ok := sc.Bounds(); ok {
		cam.Frame(lo, hi)
	}
	eye, target := cam.Position(), cam.Target
	if spec != nil && spec.Eye != nil {
		eye = *spec.Eye
	}
	if spec != nil && spec.Target != nil {
		target = *spec.Target
	}

	if f.target != "" {
		t, err := parseVec3(f.target)
		if err != nil {
			return nil, fmt.Errorf("--target: %w", err)
		}
		target = t
	}
	if f.eye != "" {
		e, err := parseVec3(f.eye)
		if err != nil {
			return nil, fmt.Errorf("--eye: %w", err)
		}
		eye = e
	}
	if eye == target {
		return nil, fmt.Errorf("camera eye %v is the target", eye)
	}

	cam.Target = target
	cam.SetPosition(eye)
	return cam, nil
}

// parseVec3 parses "x,y,z".
func parseVec3(s string) (math3d.Vec3, error) {
	var x, y, z float64
	if _, err := fmt.Sscanf(strings.ReplaceAll(s, " ", ""), "%g,%g,%g", &x, &y, &z); err != nil {
		return math3d.Vec3{}, fmt.Errorf("want x,y,z, got %q", s)
	}
	return math3d.V3(x, y, z), nil
}
