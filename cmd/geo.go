package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/philipparndt/sceneforge/internal/config"
)

type geoOptions struct {
	output       string
	configPath   string
	seed         uint64
	density      float32
	sceneSize    float32
	maxInstances int
}

func newGeoCmd() *cobra.Command {
	var opts geoOptions

	cmd := &cobra.Command{
		Use:   "geo <file.geojson>",
		Short: "Convert a GeoJSON polygon set into a glTF scene",
		Long: `Project the features of a GeoJSON feature collection around the single
feature tagged "asset" and build terrain, trees, rocks and scattered ground
cover. Styles and custom models come from the settings file.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGeo(cmd, args[0], opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.output, "output", "o", "", "Output file (.glb or .gltf)")
	f.StringVar(&opts.configPath, "config", "", "Settings file (default ./"+config.DefaultFile+" if present)")
	f.Uint64Var(&opts.seed, "seed", 0, "Random seed for scattering (default from config)")
	f.Float32Var(&opts.density, "density", 0, "Scattered instances per square unit")
	f.Float32Var(&opts.sceneSize, "scene-size", 0, "Extent of the asset in scene units")
	f.IntVar(&opts.maxInstances, "max-instances", 0, "Fail when scattering would exceed this many instances")
	_ = cmd.MarkFlagRequired("output")
	return cmd
}

func runGeo(cmd *cobra.Command, input string, opts geoOptions) error {
	settings, err := config.LoadOptional(opts.configPath)
	if err != nil {
		return err
	}
	settings.Resolve(config.Flags{
		SceneSize:    opts.sceneSize,
		Density:      opts.density,
		Seed:         opts.seed,
		SeedSet:      cmd.Flags().Changed("seed"),
		MaxInstances: opts.maxInstances,
	})

	ctx := commandContext(cmd)
	shapes, err := newLoader(ctx, settings).geo(input)
	if err != nil {
		return err
	}
	if err := writeScene(opts.output, shapes, settings.EncoderOptions()); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%d shapes)\n", opts.output, len(shapes))
	return nil
}
