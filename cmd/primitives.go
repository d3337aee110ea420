package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/philipparndt/sceneforge/internal/config"
)

func newPrimitivesCmd() *cobra.Command {
	var output, configPath string

	cmd := &cobra.Command{
		Use:   "primitives <scene.yaml>",
		Short: "Generate a glTF scene from a YAML list of primitives",
		Long: `Generate boxes, spheres, pyramids, prisms, icosahedra, trees and rocks
described in a YAML file:

  primitives:
    - type: sphere
      radius: 1
      translation: [0, 1, 0]
      color: [0.9, 0.2, 0.2]`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := config.LoadOptional(configPath)
			if err != nil {
				return err
			}
			settings.Resolve(config.Flags{})

			def, err := config.LoadScene(args[0])
			if err != nil {
				return err
			}
			shapes, err := def.Build()
			if err != nil {
				return err
			}
			if err := writeScene(output, shapes, settings.EncoderOptions()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%d shapes)\n", output, len(shapes))
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (.glb or .gltf)")
	cmd.Flags().StringVar(&configPath, "config", "", "Settings file (default ./"+config.DefaultFile+" if present)")
	_ = cmd.MarkFlagRequired("output")
	return cmd
}
