package cmd

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/philipparndt/sceneforge/internal/config"
	"github.com/philipparndt/sceneforge/internal/openscad"
	"github.com/philipparndt/sceneforge/internal/textenc"
	"github.com/philipparndt/sceneforge/pkg/geo"
	"github.com/philipparndt/sceneforge/pkg/gltfimport"
	"github.com/philipparndt/sceneforge/pkg/mesh"
	"github.com/philipparndt/sceneforge/pkg/models"
	"github.com/philipparndt/sceneforge/pkg/obj"
	"github.com/philipparndt/sceneforge/pkg/ply"
	"github.com/philipparndt/sceneforge/pkg/stl"
)

// loader reads input files and hands their content to the importers
type loader struct {
	ctx      context.Context
	settings config.Settings
	material string // explicit material library for OBJ inputs
}

func newLoader(ctx context.Context, settings config.Settings) *loader {
	return &loader{ctx: ctx, settings: settings}
}

func ext(path string) string {
	return strings.ToLower(filepath.Ext(path))
}

// isMesh reports whether path is a single model rather than a scene file
func isMesh(path string) bool {
	switch ext(path) {
	case ".obj", ".ply", ".stl", ".glb", ".scad":
		return true
	}
	return false
}

// geometry imports one model file
func (l *loader) geometry(path string) (*mesh.Geometry, error) {
	start := time.Now()
	g, err := l.importGeometry(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	slog.Info("loaded model", "file", path, "vertices", g.VertexCount(), "triangles", g.TriangleCount(), "took", time.Since(start))
	return g, nil
}

func (l *loader) importGeometry(path string) (*mesh.Geometry, error) {
	switch ext(path) {
	case ".obj":
		text, err := textenc.ReadFile(path)
		if err != nil {
			return nil, err
		}
		material, err := l.materialText(path, text)
		if err != nil {
			return nil, err
		}
		g, stats, err := obj.ParseWithStats(text, material)
		if err != nil {
			return nil, err
		}
		slog.Debug("obj statistics", "file", path, "vertices", stats.Vertices, "faces", stats.Faces,
			"skipped_vertices", stats.SkippedVertices, "skipped_faces", stats.SkippedFaces)
		return g, nil

	case ".ply":
		text, err := textenc.ReadFile(path)
		if err != nil {
			return nil, err
		}
		g, stats, err := ply.ParseWithStats(text)
		if err != nil {
			return nil, err
		}
		slog.Debug("ply statistics", "file", path, "vertices", stats.Vertices, "faces", stats.Faces,
			"skipped_vertices", stats.SkippedVertices, "skipped_faces", stats.SkippedFaces)
		return g, nil

	case ".stl":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		model, err := stl.Parse(data)
		if err != nil {
			return nil, err
		}
		return model.Geometry, nil

	case ".glb":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		return gltfimport.Import(data)

	case ".scad":
		return openscad.NewRenderer(filepath.Dir(path)).Render(l.ctx, filepath.Base(path))
	}
	return nil, fmt.Errorf("unsupported model format %q", ext(path))
}

// materialPath returns the explicit --mtl file or the first mtllib named in
// the OBJ text, if it exists
func (l *loader) materialPath(objPath, text string) string {
	if l.material != "" {
		return l.material
	}
	scanner := bufio.NewScanner(strings.NewReader(text))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if name, ok := strings.CutPrefix(line, "mtllib "); ok {
			path := filepath.Join(filepath.Dir(objPath), strings.TrimSpace(name))
			if _, err := os.Stat(path); err == nil {
				return path
			}
			slog.Warn("material library not found", "file", path)
			return ""
		}
	}
	return ""
}

func (l *loader) materialText(objPath, text string) (string, error) {
	path := l.materialPath(objPath, text)
	if path == "" {
		return "", nil
	}
	return textenc.ReadFile(path)
}

// shapes loads any supported input as a list of shapes
func (l *loader) shapes(path string) ([]mesh.Shape, error) {
	switch ext(path) {
	case ".geojson", ".json":
		return l.geo(path)
	case ".yaml", ".yml":
		def, err := config.LoadScene(path)
		if err != nil {
			return nil, err
		}
		return def.Build()
	}

	g, err := l.geometry(path)
	if err != nil {
		return nil, err
	}
	return []mesh.Shape{mesh.NewShape(strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)), g)}, nil
}

func (l *loader) geo(path string) ([]mesh.Shape, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	opts, err := l.settings.GeoOptions()
	if err != nil {
		return nil, err
	}
	custom, err := l.settings.CustomModels()
	if err != nil {
		return nil, err
	}

	start := time.Now()
	shapes, stats, err := geo.ConvertWithStats(data, opts, models.NewResolver(custom))
	if err != nil {
		return nil, fmt.Errorf("failed to convert %s: %w", path, err)
	}
	slog.Info("converted geojson", "file", path, "features", stats.Features, "terrain", stats.Terrain,
		"points", stats.Points, "scattered", stats.Scattered, "took", time.Since(start))
	slog.Debug("skipped features", "count", stats.SkippedFeatures)
	return shapes, nil
}

// dependencies lists the files whose change affects path
func (l *loader) dependencies(path string) []string {
	deps := []string{path}
	switch ext(path) {
	case ".obj":
		if text, err := textenc.ReadFile(path); err == nil {
			if m := l.materialPath(path, text); m != "" {
				deps = append(deps, m)
			}
		}
	case ".scad":
		if scad, err := openscad.NewRenderer(filepath.Dir(path)).Dependencies(filepath.Base(path)); err == nil {
			deps = scad
		}
	}
	return deps
}
