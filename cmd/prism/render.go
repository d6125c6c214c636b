package main

import (
	"fmt"
	"io"
	"log"
	"runtime"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/spf13/cobra"

	"github.com/taigrr/prism/pkg/render"
	"github.com/taigrr/prism/pkg/tracer"
)

type renderFlags struct {
	sceneFlags
	out     string
	width   int
	height  int
	depth   int
	workers int
	quiet   bool
}

func newRenderCmd() *cobra.Command {
	f := &renderFlags{}
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Ray trace a scene to a PPM or PNG image",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRender(cmd, f)
		},
	}
	f.sceneFlags.register(cmd)
	fl := cmd.Flags()
	fl.StringVarP(&f.out, "out", "o", "out.ppm", "output image; .png writes PNG, anything else PPM")
	fl.IntVar(&f.width, "width", 320, "image width in pixels")
	fl.IntVar(&f.height, "height", 240, "image height in pixels")
	fl.IntVarP(&f.depth, "depth", "d", tracer.DefaultOptions().MaxDepth, "maximum ray depth")
	fl.IntVarP(&f.workers, "workers", "j", runtime.NumCPU(), "rows traced in parallel")
	fl.BoolVarP(&f.quiet, "quiet", "q", false, "no log or progress output")
	return cmd
}

func runRender(cmd *cobra.Command, f *renderFlags) error {
	if f.width <= 0 || f.height <= 0 {
		return fmt.Errorf("invalid resolution %dx%d", f.width, f.height)
	}
	if f.depth < 0 {
		return fmt.Errorf("invalid depth %d", f.depth)
	}
	ctx := cmd.Context()

	sc, spec, err := loadScene(ctx, f.path)
	if err != nil {
		return err
	}
	cam, err := f.setupCamera(sc, spec, float64(f.width)/float64(f.height))
	if err != nil {
		return err
	}

	rd := tracer.New(sc)
	rd.SetResolution(f.width, f.height)
	rd.SetViewBox(cam.ViewBox())

	opts := tracer.Options{MaxDepth: f.depth, Workers: f.workers}
	stderr := cmd.ErrOrStderr()
	if !f.quiet {
		logger := log.New(stderr, "prism: ", 0)
		rd.SetLogger(logger)
		logger.Printf("scene: %d shapes, %d lights, eye %v", sc.Len(), len(sc.Lights()), cam.Position())

		bar := newProgressBar(stderr, 30)
		opts.Progress = bar.Update
	}

	img, err := rd.Render(ctx, opts)
	if !f.quiet {
		fmt.Fprintln(stderr)
	}
	if err != nil {
		return err
	}

	if err := render.SaveImage(f.out, img); err != nil {
		return err
	}
	if !f.quiet {
		fmt.Fprintln(stderr, doneStyle.Render("wrote "+f.out))
	}
	return nil
}

var (
	barFull   = lipgloss.NewStyle().Foreground(lipgloss.Color("#7D56F4"))
	barEmpty  = lipgloss.NewStyle().Foreground(lipgloss.Color("#3C3C3C"))
	barLabel  = lipgloss.NewStyle().Foreground(lipgloss.Color("#A0A0A0"))
	doneStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575")).Bold(true)
)

// progressBar redraws a single line on w as rows complete.
type progressBar struct {
	w     io.Writer
	width int
}

func newProgressBar(w io.Writer, width int) *progressBar {
	return &progressBar{w: w, width: width}
}

// Update matches tracer.Options.Progress.
func (p *progressBar) Update(done, total int) {
	fmt.Fprint(p.w, "\r"+p.String(done, total))
}

func (p *progressBar) String(done, total int) string {
	filled := 0
	if total > 0 {
		filled = min(p.width, p.width*done/total)
	}
	pct := 0
	if total > 0 {
		pct = 100 * done / total
	}
	return barFull.Render(strings.Repeat("█", filled)) +
		barEmpty.Render(strings.Repeat("░", p.width-filled)) +
		barLabel.Render(fmt.Sprintf(" %3d%% %d/%d rows", pct, done, total))
}
