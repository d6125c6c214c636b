package tracer

// Tracing constants.
const (
	// ShadowThreshold is the dominant-channel level below which light is
	// considered fully blocked.
	ShadowThreshold = 0.003
	// MaxShadowSteps bounds the number of surfaces a shadow ray may cross.
	MaxShadowSteps = 64

	shadowOffset     = 0.0001
	reflectionOffset = 0.01
	refractionOffset = 0.0001

	// glowCos is the cosine of the widest angle at which a light glows.
	glowCos = 0.99
	// glowDegrees scales the angle to a light into the glow falloff.
	glowDegrees = 4.0
)

// Logger receives progress and diagnostic messages.
type Logger interface {
	Printf(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Printf(string, ...any) {}

// NopLogger discards everything.
var NopLogger Logger = nopLogger{}

// Options control a single Render call.
type Options struct {
	// MaxDepth is the bounce budget given to each primary ray.
	MaxDepth int
	// Workers is the number of rows rendered concurrently. Values below 1
	// mean 1.
	Workers int
	// Progress, if set, is called after each finished row with the number
	// of rows done so far. Calls are serialized.
	Progress func(done, total int)
}

// DefaultOptions returns a sequential render with depth 6.
func DefaultOptions() Options {
	return Options{
		MaxDepth: 6,
		Workers:  1,
	}
}
