package main

import (
	"fmt"

	"charm.land/lipgloss/v2"
	"github.com/spf13/cobra"

	"github.com/taigrr/prism/pkg/material"
	"github.com/taigrr/prism/pkg/rgb"
)

var headerStyle = lipgloss.NewStyle().Bold(true).Underline(true)

func newMaterialsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "materials",
		Short: "List the material presets usable from scene scripts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, headerStyle.Render(fmt.Sprintf("%-14s %-6s %-9s %-9s %-10s %-10s %s",
				"name", "color", "shininess", "diffusion", "reflection", "refraction", "in/out")))
			for _, name := range material.Names() {
				m, _ := material.Lookup(name)
				fmt.Fprintf(out, "%-14s %s %9.1f %9.2f %10.2f %10.2f %.2f/%.2f\n",
					name, swatch(m.Diffuse), m.Shininess, m.Diffusion, m.Reflection, m.Refraction, m.InIndex, m.OutIndex)
			}
			return nil
		},
	}
}

// swatch is a six cell block in the given color.
func swatch(c rgb.Color) string {
	return lipgloss.NewStyle().Background(c.RGBA()).Render("      ")
}
