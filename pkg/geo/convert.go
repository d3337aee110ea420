package geo

import (
	"math/rand/v2"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/philipparndt/sceneforge/pkg/geometry"
	"github.com/philipparndt/sceneforge/pkg/mesh"
	"github.com/philipparndt/sceneforge/pkg/models"
	"github.com/philipparndt/sceneforge/pkg/primitives"
)

// Stats summarizes a conversion
type Stats struct {
	Features        int
	Terrain         int
	Points          int
	Scattered       int
	SkippedFeatures int
}

// Convert projects every recognized feature of a GeoJSON feature collection
// into shapes. Exactly one feature must be tagged "asset"; it defines the
// projection. Custom models override the built-in tree and rock and enable
// scattering over ground cover.
func Convert(data []byte, opts Options, resolver *models.Resolver) ([]mesh.Shape, error) {
	shapes, _, err := ConvertWithStats(data, opts, resolver)
	return shapes, err
}

// ConvertWithStats is Convert that also reports what was produced
func ConvertWithStats(data []byte, opts Options, resolver *models.Resolver) ([]mesh.Shape, Stats, error) {
	var stats Stats
	opts = opts.withDefaults()

	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, stats, &mesh.ParseError{Format: "geojson", Reason: "failed to decode feature collection", Err: err}
	}
	stats.Features = len(fc.Features)

	proj, err := assetProjection(fc, opts.SceneSize)
	if err != nil {
		return nil, stats, err
	}

	c := &converter{
		opts:     opts,
		proj:     proj,
		resolver: resolver,
		rng:      NewRand(opts.Seed),
		stats:    &stats,
		points:   map[string][]mesh.Shape{},
	}
	for _, f := range fc.Features {
		if err := c.feature(f); err != nil {
			return nil, stats, err
		}
	}

	if len(c.shapes) == 0 {
		return nil, stats, mesh.Validationf("conversion produced no visible geometry")
	}
	return c.shapes, stats, nil
}

// Tag returns the role tag of a feature: properties "type", else "tag",
// else "name"
func Tag(f *geojson.Feature) string {
	for _, key := range []string{"type", "tag", "name"} {
		if s, ok := f.Properties[key].(string); ok && s != "" {
			return strings.ToLower(strings.TrimSpace(s))
		}
	}
	return ""
}

func assetProjection(fc *geojson.FeatureCollection, sceneSize float32) (Projection, error) {
	var asset *geojson.Feature
	for _, f := range fc.Features {
		if Kind(Tag(f)) != KindAsset {
			continue
		}
		if asset != nil {
			return Projection{}, mesh.Validationf("more than one asset feature")
		}
		asset = f
	}
	if asset == nil {
		return Projection{}, mesh.Validationf("no feature is tagged asset")
	}

	rings := outerRings(asset.Geometry)
	if len(rings) == 0 || len(rings[0]) < 3 {
		return Projection{}, mesh.Validationf("asset feature has no polygon ring")
	}
	return NewProjection(rings[0].Bound(), sceneSize)
}

// outerRings returns the outer ring of every polygon in g. Holes are ignored.
func outerRings(g orb.Geometry) []orb.Ring {
	switch v := g.(type) {
	case orb.Polygon:
		if len(v) > 0 {
			return []orb.Ring{v[0]}
		}
	case orb.MultiPolygon:
		var rings []orb.Ring
		for _, p := range v {
			if len(p) > 0 {
				rings = append(rings, p[0])
			}
		}
		return rings
	case orb.Ring:
		return []orb.Ring{v}
	}
	return nil
}

type converter struct {
	opts     Options
	proj     Projection
	resolver *models.Resolver
	rng      *rand.Rand
	stats    *Stats
	shapes   []mesh.Shape
	points   map[string][]mesh.Shape // built-in composites per kind, at the origin
}

func (c *converter) feature(f *geojson.Feature) error {
	kind := Kind(Tag(f))
	switch {
	case kind == KindTree || kind == KindRock:
		return c.point(kind, f.Geometry)
	case isTerrain(kind):
		return c.terrain(kind, f.Geometry)
	}
	c.stats.SkippedFeatures++
	return nil
}

// point places one instance at the vertex-averaged centroid
func (c *converter) point(kind string, g orb.Geometry) error {
	var pos geometry.Vector2
	switch v := g.(type) {
	case orb.Point:
		pos = c.proj.Project(v)
	default:
		rings := outerRings(g)
		if len(rings) == 0 || len(rings[0]) == 0 {
			c.stats.SkippedFeatures++
			return nil
		}
		pos = Centroid(c.proj.ProjectRing(rings[0]))
	}

	custom, ok, err := c.resolver.Resolve(kind)
	if err != nil {
		return err
	}
	if ok {
		c.shapes = append(c.shapes, mesh.NewShape(kind, custom).At(pos.X, 0, pos.Y))
		c.stats.Points++
		return nil
	}

	for _, s := range c.builtin(kind) {
		s.Translation[0] += pos.X
		s.Translation[2] += pos.Y
		c.shapes = append(c.shapes, s)
	}
	c.stats.Points++
	return nil
}

// builtin returns the default composite for kind, generated once per call
func (c *converter) builtin(kind string) []mesh.Shape {
	if shapes, ok := c.points[kind]; ok {
		return shapes
	}
	var comp primitives.Composite
	if kind == KindTree {
		comp = primitives.Tree(0.4, 0.05, 0.25)
	} else {
		comp = primitives.Rock(0.2)
	}
	shapes := comp.Shapes([3]float32{})
	c.points[kind] = shapes
	return shapes
}

func (c *converter) terrain(kind string, g orb.Geometry) error {
	style := c.opts.Terrain[kind]
	produced := false
	for _, ring := range outerRings(g) {
		tris := terrainTriangles(c.proj.ProjectRing(ring))
		if len(tris) == 0 {
			continue
		}

		s := mesh.NewShape(kind, terrainGeometry(tris, style)).At(0, style.Offset, 0)
		if style.Texture == "" {
			s = s.WithColor(style.Color)
		}
		c.shapes = append(c.shapes, s)
		produced = true

		if isScatterable(kind) {
			if err := c.scatter(kind, tris, style.Offset); err != nil {
				return err
			}
		}
	}
	if produced {
		c.stats.Terrain++
	} else {
		c.stats.SkippedFeatures++
	}
	return nil
}

func (c *converter) scatter(kind string, tris []geometry.Triangle2D, offset float32) error {
	model, ok, err := c.resolver.Resolve(kind)
	if err != nil || !ok {
		return err
	}

	for _, t := range tris {
		if limit := c.opts.MaxInstances; limit > 0 && c.stats.Scattered+ScatterCount(t, c.opts.Density) > limit {
			return mesh.Validationf("scattering %s exceeds the limit of %d instances", kind, limit)
		}
		for _, p := range Scatter(t, c.opts.Density, c.rng) {
			rot := mesh.YawQuat(p.Yaw)
			scale := [3]float32{p.Scale, p.Scale, p.Scale}
			s := mesh.NewShape(kind, model).At(p.Position.X, offset, p.Position.Y)
			s.Rotation = &rot
			s.Scale = &scale
			c.shapes = append(c.shapes, s)
			c.stats.Scattered++
		}
	}
	return nil
}
