package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/philipparndt/sceneforge/internal/config"
	"github.com/philipparndt/sceneforge/pkg/analysis"
)

type infoOptions struct {
	edges      int
	material   string
	configPath string
}

func newInfoCmd() *cobra.Command {
	var opts infoOptions

	cmd := &cobra.Command{
		Use:   "info <input>",
		Short: "Display statistics about a model or scene",
		Long:  "Show dimensions, vertex and triangle counts, surface area and edge statistics of a model, or a summary of a GeoJSON or primitive scene.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInfo(cmd, args[0], opts)
		},
	}

	cmd.Flags().IntVarP(&opts.edges, "edges", "n", 0, "Also list the n longest and shortest edges")
	cmd.Flags().StringVar(&opts.material, "mtl", "", "Material library for OBJ inputs")
	cmd.Flags().StringVar(&opts.configPath, "config", "", "Settings file (default ./"+config.DefaultFile+" if present)")
	return cmd
}

func runInfo(cmd *cobra.Command, input string, opts infoOptions) error {
	settings, err := config.LoadOptional(opts.configPath)
	if err != nil {
		return err
	}
	settings.Resolve(config.Flags{})

	ctx := commandContext(cmd)
	l := newLoader(ctx, settings)
	l.material = opts.material
	out := cmd.OutOrStdout()

	if !isMesh(input) {
		shapes, err := l.shapes(input)
		if err != nil {
			return err
		}
		printScene(out, input, analysis.AnalyzeShapes(shapes))
		return nil
	}

	g, err := l.geometry(input)
	if err != nil {
		return err
	}
	result := analysis.AnalyzeGeometry(g)
	printModel(out, input, result)
	if opts.edges > 0 {
		printEdges(out, "Longest Edges", analysis.FindLongestEdges(result, opts.edges))
		printEdges(out, "Shortest Edges", analysis.FindShortestEdges(result, opts.edges))
	}
	return nil
}

func printModel(out io.Writer, file string, result *analysis.MeasurementResult) {
	fmt.Fprintln(out, "Model Information")
	fmt.Fprintln(out, "=================")
	fmt.Fprintf(out, "File: %s\n\n", file)

	fmt.Fprintln(out, "Model Statistics:")
	fmt.Fprintf(out, "  Vertices: %d\n", result.VertexCount)
	fmt.Fprintf(out, "  Triangles: %d\n", result.TriangleCount)
	if result.Degenerate > 0 {
		fmt.Fprintf(out, "  Degenerate Triangles: %d\n", result.Degenerate)
	}
	fmt.Fprintf(out, "  Parts: %d\n", result.Parts)
	fmt.Fprintf(out, "  Vertex Colors: %t\n", result.HasColors)
	fmt.Fprintf(out, "  Texture Coordinates: %t\n", result.HasUVs)
	fmt.Fprintf(out, "  Textured: %t\n", result.Textured)
	fmt.Fprintf(out, "  Surface Area: %s\n\n", analysis.FormatMeasurement(result.SurfaceArea, "square units"))

	fmt.Fprintln(out, "Bounding Box:")
	fmt.Fprintf(out, "  Min: %s\n", analysis.FormatVector(result.BoundingBox.Min))
	fmt.Fprintf(out, "  Max: %s\n", analysis.FormatVector(result.BoundingBox.Max))
	fmt.Fprintf(out, "  Center: %s\n\n", analysis.FormatVector(result.BoundingBox.Center()))

	fmt.Fprintln(out, "Dimensions:")
	fmt.Fprintf(out, "  Width (X): %.6f units\n", result.Dimensions.X)
	fmt.Fprintf(out, "  Height (Y): %.6f units\n", result.Dimensions.Y)
	fmt.Fprintf(out, "  Depth (Z): %.6f units\n", result.Dimensions.Z)
	fmt.Fprintf(out, "  Diagonal: %.6f units\n", result.BoundingBox.Diagonal())
	fmt.Fprintf(out, "  Volume: %.6f cubic units\n\n", result.Volume)

	fmt.Fprintln(out, "Edge Lengths:")
	fmt.Fprintf(out, "  Minimum: %.6f units\n", result.MinEdgeLength)
	fmt.Fprintf(out, "  Maximum: %.6f units\n", result.MaxEdgeLength)
	fmt.Fprintf(out, "  Average: %.6f units\n", result.AvgEdgeLength)
}

func printEdges(out io.Writer, title string, edges []analysis.EdgeInfo) {
	fmt.Fprintf(out, "\n%s:\n", title)
	for i, e := range edges {
		fmt.Fprintf(out, "  %d. %.6f units  %s -> %s  (triangle %d)\n",
			i+1, e.Length, analysis.FormatVector(e.Start), analysis.FormatVector(e.End), e.Triangle)
	}
}

func printScene(out io.Writer, file string, result *analysis.SceneResult) {
	fmt.Fprintln(out, "Scene Information")
	fmt.Fprintln(out, "=================")
	fmt.Fprintf(out, "File: %s\n\n", file)

	fmt.Fprintf(out, "  Shapes: %d\n", result.Shapes)
	fmt.Fprintf(out, "  Distinct Geometries: %d\n", result.Geometries)
	fmt.Fprintf(out, "  Vertices: %d\n", result.VertexCount)
	fmt.Fprintf(out, "  Triangles: %d\n\n", result.TriangleCount)

	if !result.BoundingBox.IsEmpty() {
		size := result.BoundingBox.Size()
		fmt.Fprintln(out, "Bounding Box:")
		fmt.Fprintf(out, "  Min: %s\n", analysis.FormatVector(result.BoundingBox.Min))
		fmt.Fprintf(out, "  Max: %s\n", analysis.FormatVector(result.BoundingBox.Max))
		fmt.Fprintf(out, "  Size: %s\n", analysis.FormatVector(size))
	}
}
