// Package cli implements the enerviz command-line interface.
//
// This package provides commands for rendering hierarchical energy
// systems as graphviz documents at a chosen depth cutoff, printing the
// DOT source, opening a rendered document in a viewer, building sankey
// flow-diagram payloads from external results, and managing the local
// artifact cache. The CLI is built using cobra and supports verbose
// logging via the charmbracelet/log library.
//
// # Commands
//
//   - render: Render a system document to pdf, svg, png, jpg, or dot
//   - source: Print the DOT description without rendering
//   - view: Render into a temp file and open the platform viewer
//   - sankey: Build a flow-volume diagram payload from results
//   - cache: Manage the rendered-artifact cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers
// are passed through context.Context.
package cli

import (
	"context"
	"os"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/enerviz/pkg/buildinfo"
)

// Execute runs the enerviz CLI with ctx governing cancellation.
func Execute(ctx context.Context) error {
	var verbose bool

	root := &cobra.Command{
		Use:          "enerviz",
		Short:        "Enerviz renders hierarchical energy-system networks",
		Long:         `Enerviz is a CLI tool for visualizing energy-system networks: busses, components, and nested subnetworks are flattened into a graphviz document at a chosen depth, with hidden subtrees collapsed into placeholder nodes.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := charmlog.InfoLevel
			if verbose {
				level = charmlog.DebugLevel
			}
			ctx := withLogger(cmd.Context(), newLogger(os.Stderr, level))
			cmd.SetContext(ctx)
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(newRenderCmd())
	root.AddCommand(newSourceCmd())
	root.AddCommand(newViewCmd())
	root.AddCommand(newSankeyCmd())
	root.AddCommand(newCacheCmd())

	return root.ExecuteContext(ctx)
}
