// Package cmd implements the sceneforge command line.
package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/philipparndt/sceneforge/internal/logging"
	"github.com/philipparndt/sceneforge/version"
)

type globalFlags struct {
	verbose     bool
	veryVerbose bool
	quiet       bool
}

// NewRootCmd builds the command tree
func NewRootCmd() *cobra.Command {
	var flags globalFlags

	rootCmd := &cobra.Command{
		Use:   "sceneforge",
		Short: "Convert meshes, primitives and GeoJSON into glTF scenes",
		Long: `sceneforge converts OBJ/MTL, PLY, STL, GLB and OpenSCAD models, procedural
primitives and GeoJSON polygon sets into self-contained glTF 2.0 assets,
either as .gltf JSON with embedded buffers or as a packed .glb container.`,
		Version:       version.GetFullVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.Setup(flags.veryVerbose, flags.verbose, flags.quiet)
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.BoolVarP(&flags.verbose, "verbose", "v", false, "Log progress")
	pf.BoolVar(&flags.veryVerbose, "vv", false, "Log debug details such as skipped records")
	pf.BoolVarP(&flags.quiet, "quiet", "q", false, "Only log errors")

	rootCmd.AddCommand(
		newConvertCmd(),
		newGeoCmd(),
		newPrimitivesCmd(),
		newInfoCmd(),
		newPreviewCmd(),
		newCompletionCmd(rootCmd),
	)
	return rootCmd
}

// Execute runs the root command
func Execute() error {
	return NewRootCmd().Execute()
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
