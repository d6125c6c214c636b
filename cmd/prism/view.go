package main

import (
	"context"
	"fmt"
	"math"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/harmonica"
	uv "github.com/charmbracelet/ultraviolet"
	"github.com/spf13/cobra"

	"github.com/taigrr/prism/pkg/render"
	"github.com/taigrr/prism/pkg/scene"
	"github.com/taigrr/prism/pkg/tracer"
)

// Depth limits for the interactive viewer.
const (
	minViewDepth = 1
	maxViewDepth = 20
)

type viewFlags struct {
	sceneFlags
	fps   int
	depth int
	save  string
}

func newViewCmd() *cobra.Command {
	f := &viewFlags{}
	cmd := &cobra.Command{
		Use:   "view",
		Short: "Explore a scene in the terminal",
		Long: "Shows a wireframe preview that can be orbited, and ray traces the\n" +
			"current view on demand.\n\n" +
			"  arrows, hjkl  orbit\n" +
			"  + / -         zoom\n" +
			"  r             ray trace the current view and save it (--save)\n" +
			"  w             back to wireframe\n" +
			"  d / D         increase / decrease ray depth\n" +
			"  esc, ctrl+c   quit",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runView(cmd.Context(), f)
		},
	}
	f.sceneFlags.register(cmd)
	cmd.Flags().IntVar(&f.fps, "fps", 30, "target frames per second")
	cmd.Flags().IntVarP(&f.depth, "depth", "d", 4, "ray depth for traced frames")
	cmd.Flags().StringVar(&f.save, "save", "output.ppm", "file each traced frame is written to; empty to disable")
	return cmd
}

// OrbitAxis is one camera coordinate driven by a velocity that a spring
// eases back to zero.
type OrbitAxis struct {
	Position  float64
	Velocity  float64
	velSpring harmonica.Spring
	velAccel  float64
}

// NewOrbitAxis creates a critically damped axis starting at pos.
func NewOrbitAxis(fps int, pos float64) OrbitAxis {
	return OrbitAxis{
		Position:  pos,
		velSpring: harmonica.NewSpring(harmonica.FPS(fps), 4.0, 1.0),
	}
}

// Update advances one frame.
func (a *OrbitAxis) Update() {
	a.Position += a.Velocity
	a.Velocity, a.velAccel = a.velSpring.Update(a.Velocity, a.velAccel, 0)
}

// Stop drops any remaining motion.
func (a *OrbitAxis) Stop() {
	a.Velocity, a.velAccel = 0, 0
}

// Orbit holds the animated azimuth, elevation and log distance.
type Orbit struct {
	Azimuth, Elevation, LogDist OrbitAxis
}

// NewOrbit starts at the camera's current placement.
func NewOrbit(fps int, cam *render.Camera) *Orbit {
	return &Orbit{
		Azimuth:   NewOrbitAxis(fps, cam.Azimuth),
		Elevation: NewOrbitAxis(fps, cam.Elevation),
		LogDist:   NewOrbitAxis(fps, math.Log(cam.Distance)),
	}
}

// Apply advances the springs and moves cam. Clamped coordinates are
// written back so the axes do not wind up past the limits.
func (o *Orbit) Apply(cam *render.Camera) {
	o.Azimuth.Update()
	o.Elevation.Update()
	o.LogDist.Update()
	cam.SetOrbit(o.Azimuth.Position, o.Elevation.Position, math.Exp(o.LogDist.Position))
	o.Elevation.Position = cam.Elevation
	o.LogDist.Position = math.Log(cam.Distance)
}

// Stop freezes the camera where it is.
func (o *Orbit) Stop() {
	o.Azimuth.Stop()
	o.Elevation.Stop()
	o.LogDist.Stop()
}

// viewMode selects what the viewer draws.
type viewMode int

const (
	modeWireframe viewMode = iota
	modeTracing
	modeTraced
)

func (m viewMode) String() string {
	switch m {
	case modeTracing:
		return "tracing"
	case modeTraced:
		return "traced"
	}
	return "wireframe"
}

// viewState is shared by the event goroutine, the trace goroutine and the
// frame loop.
type viewState struct {
	mu       sync.Mutex
	mode     viewMode
	depth    int
	image    *tracer.Image
	progress float64
	message  string
	failed   bool
	cancel   context.CancelFunc
	gen      int
}

// stopTrace cancels a running trace and returns to the wireframe.
// Callers hold mu.
func (s *viewState) stopTrace() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.gen++
	s.mode = modeWireframe
	s.image = nil
}

var (
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#E0E0E0")).Background(lipgloss.Color("#303040"))
	modeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#101010")).Background(lipgloss.Color("#7D56F4")).Bold(true)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5F5F")).Background(lipgloss.Color("#303040"))
)

func runView(ctx context.Context, f *viewFlags) error {
	if f.fps <= 0 {
		return fmt.Errorf("invalid fps %d", f.fps)
	}
	sc, spec, err := loadScene(ctx, f.path)
	if err != nil {
		return err
	}

	term := uv.DefaultTerminal()
	width, height, err := term.GetSize()
	if err != nil {
		return fmt.Errorf("get terminal size: %w", err)
	}

	// The bottom row is the status line; each cell holds two pixels.
	fbWidth, fbHeight := width, max(height-1, 1)*2
	cam, err := f.setupCamera(sc, spec, float64(fbWidth)/float64(fbHeight))
	if err != nil {
		return err
	}

	if err := term.Start(); err != nil {
		return fmt.Errorf("start terminal: %w", err)
	}
	term.EnterAltScreen()
	term.HideCursor()
	term.Resize(width, height)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	fb := render.NewFramebuffer(fbWidth, fbHeight)
	wire := render.NewWireframe(cam, fb)
	orbit := NewOrbit(f.fps, cam)
	state := &viewState{depth: stepDepth(f.depth, 0)}
	name := "demo"
	if f.path != "" {
		name = filepath.Base(f.path)
	}

	// camMu guards cam, fb, orbit and the terminal size, which the event
	// goroutine touches on resize and key presses.
	var camMu sync.Mutex

	const (
		orbitStep = 0.04
		zoomStep  = 0.05
	)

	startTrace := func() {
		camMu.Lock()
		orbit.Stop()
		vb := cam.ViewBox()
		w, h := fb.Width, fb.Height
		camMu.Unlock()

		state.mu.Lock()
		state.stopTrace()
		tctx, tcancel := context.WithCancel(ctx)
		state.cancel = tcancel
		state.mode = modeTracing
		state.progress = 0
		state.message, state.failed = "", false
		gen, depth := state.gen, state.depth
		state.mu.Unlock()

		go func() {
			rd := tracer.New(sc)
			rd.SetResolution(w, h)
			rd.SetViewBox(vb)
			img, err := rd.Render(tctx, tracer.Options{
				MaxDepth: depth,
				Workers:  runtime.NumCPU(),
				Progress: func(done, total int) {
					state.mu.Lock()
					if state.gen == gen {
						state.progress = float64(done) / float64(total)
					}
					state.mu.Unlock()
				},
			})

			state.mu.Lock()
			defer state.mu.Unlock()
			if state.gen != gen {
				return
			}
			state.cancel = nil
			tcancel()
			if err != nil {
				state.mode = modeWireframe
				state.message, state.failed = err.Error(), true
				return
			}
			state.image = img
			state.mode = modeTraced
			if msg, err := saveFrame(f.save, img); err != nil {
				state.message, state.failed = err.Error(), true
			} else {
				state.message = msg
			}
		}()
	}

	move := func(dAz, dEl, dZoom float64) {
		state.mu.Lock()
		if state.mode != modeWireframe {
			state.stopTrace()
		}
		state.mu.Unlock()

		camMu.Lock()
		orbit.Azimuth.Velocity += dAz
		orbit.Elevation.Velocity += dEl
		orbit.LogDist.Velocity += dZoom
		camMu.Unlock()
	}

	go func() {
		for ev := range term.Events() {
			switch ev := ev.(type) {
			case uv.WindowSizeEvent:
				camMu.Lock()
				width, height = ev.Width, ev.Height
				term.Erase()
				term.Resize(width, height)
				fb.Resize(width, max(height-1, 1)*2)
				cam.SetAspectRatio(float64(fb.Width) / float64(fb.Height))
				camMu.Unlock()

				state.mu.Lock()
				state.stopTrace()
				state.mu.Unlock()

			case uv.KeyPressEvent:
				switch {
				case ev.MatchString("escape", "ctrl+c"):
					cancel()
					return
				case ev.MatchString("left", "h"):
					move(-orbitStep, 0, 0)
				case ev.MatchString("right", "l"):
					move(orbitStep, 0, 0)
				case ev.MatchString("up", "k"):
					move(0, orbitStep, 0)
				case ev.MatchString("down", "j"):
					move(0, -orbitStep, 0)
				case ev.MatchString("+", "="):
					move(0, 0, -zoomStep)
				case ev.MatchString("-", "_"):
					move(0, 0, zoomStep)
				case ev.MatchString("r"):
					startTrace()
				case ev.MatchString("w"):
					state.mu.Lock()
					state.stopTrace()
					state.message, state.failed = "", false
					state.mu.Unlock()
				default:
					if delta := depthKeyDelta(ev); delta != 0 {
						state.mu.Lock()
						state.depth = stepDepth(state.depth, delta)
						state.mu.Unlock()
					}
				}
			}
		}
	}()

	cleanup := func() {
		state.mu.Lock()
		state.stopTrace()
		state.mu.Unlock()
		term.ExitAltScreen()
		term.ShowCursor()
		term.Shutdown(context.Background())
	}

	frame := time.Second / time.Duration(f.fps)
	for {
		select {
		case <-ctx.Done():
			cleanup()
			return nil
		default:
		}
		start := time.Now()

		state.mu.Lock()
		mode, img, depth, progress := state.mode, state.image, state.depth, state.progress
		msg, failed := state.message, state.failed
		state.mu.Unlock()

		camMu.Lock()
		orbit.Apply(cam)
		if mode == modeTraced && img != nil {
			fb.Blit(img)
		} else {
			wire.DrawScene(sc)
		}
		fb.Draw(term, uv.Rect(0, 0, width, max(height-1, 1)))
		err := term.Display()
		w, h := width, height
		camMu.Unlock()

		if err != nil {
			cleanup()
			return fmt.Errorf("display: %w", err)
		}
		fmt.Print(statusLine(w, h, name, sc, mode, depth, progress, msg, failed))

		if elapsed := time.Since(start); elapsed < frame {
			time.Sleep(frame - elapsed)
		}
	}
}

// saveFrame writes a traced frame to path and returns the status message.
// An empty path saves nothing.
func saveFrame(path string, img *tracer.Image) (string, error) {
	if path == "" {
		return "", nil
	}
	if err := render.SaveImage(path, img); err != nil {
		return "", err
	}
	return "saved " + path, nil
}

// depthKeyDelta maps d to a deeper trace and D to a shallower one.
func depthKeyDelta(ev uv.KeyPressEvent) int {
	switch {
	case ev.MatchString("D", "shift+d"):
		return -1
	case ev.MatchString("d"):
		return 1
	}
	return 0
}

func stepDepth(depth, delta int) int {
	return min(max(depth+delta, minViewDepth), maxViewDepth)
}

// statusLine renders the bottom row: mode, scene, depth and either the
// trace progress or the last message.
func statusLine(width, height int, name string, sc *scene.Scene, mode viewMode, depth int, progress float64, msg string, failed bool) string {
	left := modeStyle.Render(" " + mode.String() + " ")
	info := fmt.Sprintf(" %s  %d shapes  %d lights  depth %d", name, sc.Len(), len(sc.Lights()), depth)
	switch {
	case mode == modeTracing:
		info += fmt.Sprintf("  %3.0f%%", progress*100)
	case failed:
		info += "  " + errorStyle.Render(msg)
	case msg != "":
		info += "  " + msg
	}
	line := left + statusStyle.Width(max(width-lipgloss.Width(left), 0)).Render(info)
	return fmt.Sprintf("\x1b[%d;1H\x1b[2K%s", height, line)
}
