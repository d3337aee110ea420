package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/philipparndt/sceneforge/internal/config"
	"github.com/philipparndt/sceneforge/pkg/mesh"
	"github.com/philipparndt/sceneforge/pkg/watcher"
)

type convertOptions struct {
	output     string
	material   string
	color      string
	spacing    float32
	configPath string
	instancing bool
	watch      bool
}

func newConvertCmd() *cobra.Command {
	var opts convertOptions

	cmd := &cobra.Command{
		Use:   "convert <input...>",
		Short: "Convert model files into one glTF scene",
		Long: `Convert OBJ, PLY, STL, GLB and OpenSCAD files into a single .glb or .gltf
scene. Every input becomes one shape; shapes are laid out along X.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(cmd, args, opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.output, "output", "o", "", "Output file (.glb or .gltf)")
	f.StringVar(&opts.material, "mtl", "", "Material library for OBJ inputs")
	f.StringVar(&opts.color, "color", "", "Flat color r,g,b[,a] in [0,1] for every shape")
	f.Float32Var(&opts.spacing, "spacing", 0, "Gap between shapes along X (default from config)")
	f.StringVar(&opts.configPath, "config", "", "Settings file (default ./"+config.DefaultFile+" if present)")
	f.BoolVar(&opts.instancing, "instancing", false, "Store shared geometry once")
	f.BoolVarP(&opts.watch, "watch", "w", false, "Rebuild when an input changes")
	_ = cmd.MarkFlagRequired("output")
	return cmd
}

func runConvert(cmd *cobra.Command, inputs []string, opts convertOptions) error {
	for _, in := range inputs {
		if !isMesh(in) {
			return fmt.Errorf("%s is not a model file, supported are .obj .ply .stl .glb .scad", in)
		}
	}

	settings, err := config.LoadOptional(opts.configPath)
	if err != nil {
		return err
	}
	settings.Resolve(config.Flags{Spacing: opts.spacing})
	encOpts := settings.EncoderOptions()
	encOpts.Instancing = encOpts.Instancing || opts.instancing

	var color *[4]float32
	if opts.color != "" {
		c, err := parseColorFlag(opts.color)
		if err != nil {
			return err
		}
		color = &c
	}

	ctx := commandContext(cmd)
	l := newLoader(ctx, settings)
	l.material = opts.material

	build := func() error {
		shapes := make([]mesh.Shape, 0, len(inputs))
		for _, in := range inputs {
			loaded, err := l.shapes(in)
			if err != nil {
				return err
			}
			shapes = append(shapes, loaded...)
		}
		if color != nil {
			for i := range shapes {
				shapes[i].Color = color
			}
		}
		shapes = layoutAlongX(shapes, settings.Output.Spacing)
		if err := writeScene(opts.output, shapes, encOpts); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%d shapes)\n", opts.output, len(shapes))
		return nil
	}

	if err := build(); err != nil {
		return err
	}
	if !opts.watch {
		return nil
	}
	return watchInputs(ctx, l, inputs, build)
}

// watchInputs rebuilds on every batch of changes until interrupted. Build
// errors are logged and watching continues.
func watchInputs(ctx context.Context, l *loader, inputs []string, build func() error) error {
	fw, err := watcher.NewFileWatcher(300 * time.Millisecond)
	if err != nil {
		return err
	}
	defer fw.Close()

	for _, in := range inputs {
		if err := fw.Add(l.dependencies(in)...); err != nil {
			return err
		}
	}
	slog.Info("watching for changes", "files", len(fw.Files()))

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	err = fw.Run(ctx, func(changed []string) {
		slog.Info("change detected, rebuilding", "files", changed)
		if err := build(); err != nil {
			slog.Error("rebuild failed", "err", err)
		}
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// parseColorFlag reads "r,g,b" or "r,g,b,a"
func parseColorFlag(s string) ([4]float32, error) {
	parts := strings.Split(s, ",")
	values := make([]float32, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 32)
		if err != nil {
			return [4]float32{}, fmt.Errorf("invalid color %q: %w", s, err)
		}
		values = append(values, float32(v))
	}
	c, err := config.ParseColor(values)
	if err != nil {
		return c, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return c, nil
}
