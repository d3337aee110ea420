package cmd

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/philipparndt/sceneforge/internal/config"
	"github.com/philipparndt/sceneforge/pkg/preview"
)

type previewOptions struct {
	output     string
	size       int
	pitch, yaw float32
	material   string
	configPath string
}

func newPreviewCmd() *cobra.Command {
	var opts previewOptions
	def := preview.DefaultOptions()

	cmd := &cobra.Command{
		Use:   "preview <input>",
		Short: "Render a thumbnail of a model or scene",
		Long:  "Render a flat shaded thumbnail of any supported input to a .png or .webp file.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPreview(cmd, args[0], opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.output, "output", "o", "", "Output image (.png or .webp)")
	f.IntVar(&opts.size, "size", def.Size, "Edge length in pixels")
	f.Float32Var(&opts.pitch, "pitch", def.Pitch, "Camera elevation in radians")
	f.Float32Var(&opts.yaw, "yaw", def.Yaw, "Camera heading in radians")
	f.StringVar(&opts.material, "mtl", "", "Material library for OBJ inputs")
	f.StringVar(&opts.configPath, "config", "", "Settings file (default ./"+config.DefaultFile+" if present)")
	_ = cmd.MarkFlagRequired("output")
	return cmd
}

func runPreview(cmd *cobra.Command, input string, opts previewOptions) error {
	format, err := preview.FormatFromPath(opts.output)
	if err != nil {
		return err
	}
	settings, err := config.LoadOptional(opts.configPath)
	if err != nil {
		return err
	}
	settings.Resolve(config.Flags{})

	ctx := commandContext(cmd)
	l := newLoader(ctx, settings)
	l.material = opts.material
	shapes, err := l.shapes(input)
	if err != nil {
		return err
	}

	renderOpts := preview.DefaultOptions()
	renderOpts.Size = opts.size
	renderOpts.Pitch = opts.pitch
	renderOpts.Yaw = opts.yaw
	img, err := preview.Render(shapes, renderOpts)
	if err != nil {
		return fmt.Errorf("failed to render preview: %w", err)
	}

	var buf bytes.Buffer
	if err := preview.Encode(&buf, img, format); err != nil {
		return err
	}
	if err := os.WriteFile(opts.output, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", opts.output, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%dx%d)\n", opts.output, opts.size, opts.size)
	return nil
}
