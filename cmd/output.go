package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/philipparndt/sceneforge/pkg/mesh"
	"github.com/philipparndt/sceneforge/pkg/scene"
)

// writeScene serializes shapes in the form chosen by the output extension
func writeScene(path string, shapes []mesh.Shape, opts scene.Options) error {
	enc := scene.NewEncoder(opts)

	start := time.Now()
	var data []byte
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".glb":
		data, err = enc.EncodeGLB(shapes)
	case ".gltf":
		data, err = enc.EncodeGLTF(shapes)
	default:
		return fmt.Errorf("unsupported output format %q, use .glb or .gltf", filepath.Ext(path))
	}
	if err != nil {
		return fmt.Errorf("failed to serialize scene: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	slog.Info("wrote scene", "file", path, "shapes", len(shapes), "bytes", len(data), "took", time.Since(start))
	return nil
}

// layoutAlongX places shapes side by side on the X axis with spacing
// between their bounding boxes. Each shape's lowest point rests on y=0.
func layoutAlongX(shapes []mesh.Shape, spacing float32) []mesh.Shape {
	out := make([]mesh.Shape, len(shapes))
	var cursor float32
	for i, s := range shapes {
		b := s.Geometry.Bounds()
		if b.IsEmpty() {
			out[i] = s
			continue
		}
		size := b.Size()
		s.Translation = [3]float32{cursor - b.Min.X, -b.Min.Y, -b.Center().Z}
		cursor += size.X + spacing
		out[i] = s
	}
	return out
}
