package material

import (
	"sort"
	"strings"

	"github.com/taigrr/prism/pkg/rgb"
)

// Coefficients loosely follow
// http://devernay.free.fr/cours/opengl/materials.html

// WhitePlastic is a mostly diffuse, slightly glossy white.
func WhitePlastic() Material {
	return Material{
		Ambient:    rgb.New(0.1, 0.1, 0.1),
		Diffuse:    rgb.New(0.7, 0.7, 0.7),
		Specular:   rgb.New(1.0, 1.0, 0.98),
		Shininess:  5,
		Diffusion:  0.9,
		Reflection: 0.1,
		InIndex:    1,
		OutIndex:   1,
	}
}

// RedPlastic is a diffuse red with a faint reflection.
func RedPlastic() Material {
	return Material{
		Ambient:    rgb.New(0.1, 0.0, 0.0),
		Diffuse:    rgb.New(0.85, 0.05, 0.05),
		Specular:   rgb.New(1.0, 0.8, 0.8),
		Shininess:  5,
		Diffusion:  1,
		Reflection: 0.05,
		InIndex:    1,
		OutIndex:   1,
	}
}

// Bronze is a strongly reflective metal.
func Bronze() Material {
	return Material{
		Ambient:    rgb.New(0.1125, 0.0675, 0.054),
		Diffuse:    rgb.New(0.714, 0.4284, 0.18144),
		Specular:   rgb.New(0.9, 0.8, 0.7),
		Shininess:  56,
		Diffusion:  0.5,
		Reflection: 0.75,
		InIndex:    1,
		OutIndex:   1,
	}
}

// Emerald is a green, partly transparent gem.
func Emerald() Material {
	return Material{
		Ambient:    rgb.New(0.0, 0.01, 0.0),
		Diffuse:    rgb.New(0.09568, 0.77424, 0.10),
		Specular:   rgb.New(0.9, 1.0, 0.9),
		Shininess:  0.6 * 128,
		Diffusion:  0.15,
		Reflection: 0.5,
		Refraction: 0.65,
		InIndex:    1.5,
		OutIndex:   1,
	}
}

// Glass is an almost perfectly transparent dielectric.
func Glass() Material {
	return Material{
		Ambient:    rgb.New(0.0, 0.0, 0.0),
		Diffuse:    rgb.New(0.95, 0.95, 1.0),
		Specular:   rgb.New(1.0, 1.0, 1.0),
		Shininess:  80,
		Diffusion:  0.01,
		Reflection: 0.05,
		Refraction: 0.98,
		InIndex:    1.5,
		OutIndex:   1,
	}
}

var presets = map[string]func() Material{
	"white-plastic": WhitePlastic,
	"red-plastic":   RedPlastic,
	"bronze":        Bronze,
	"emerald":       Emerald,
	"glass":         Glass,
}

// Lookup returns the preset registered under name. Names are matched
// case-insensitively and underscores are treated as dashes.
func Lookup(name string) (Material, bool) {
	key := strings.ReplaceAll(strings.ToLower(name), "_", "-")
	f, ok := presets[key]
	if !ok {
		return Material{}, false
	}
	return f(), true
}

// Names returns the preset names in sorted order.
func Names() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
