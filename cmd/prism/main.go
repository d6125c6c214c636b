// prism - Whitted-style ray tracer with a terminal preview.
//
// Scenes come from a Lisp script, a glTF/GLB asset, or the built-in demo.
//
//	prism render --scene spheres.lisp --out spheres.png
//	prism view --scene model.glb
//	prism materials
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := fang.Execute(ctx, newRootCmd()); err != nil {
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "prism",
		Short: "Ray trace scenes to images or the terminal",
		Long: "prism traces scenes made of spheres, boxes and cylinders with\n" +
			"reflection, refraction and hard shadows. Scenes are Lisp scripts,\n" +
			"glTF/GLB assets, or the built-in demo when no scene is given.",
		SilenceUsage: true,
	}
	root.AddCommand(newRenderCmd(), newViewCmd(), newMaterialsCmd())
	return root
}
