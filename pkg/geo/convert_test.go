package geo

import (
	"errors"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/philipparndt/sceneforge/pkg/geometry"
	"github.com/philipparndt/sceneforge/pkg/mesh"
	"github.com/philipparndt/sceneforge/pkg/models"
)

const triangle = "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 3\n"

func groundCoverModel() *models.Resolver {
	return models.NewResolver(map[string]models.CustomModelData{
		models.RoleGroundCover: {MeshText: triangle},
	})
}

func TestConvertRequiresAsset(t *testing.T) {
	data := collection(t, feature("water", rect(0, 0, 1, 1)))

	_, err := Convert(data, DefaultOptions(), nil)
	var verr *mesh.ValidationError
	require.True(t, errors.As(err, &verr), "got %v", err)
	assert.Contains(t, verr.Reason, "asset")
}

func TestConvertRejectsSecondAsset(t *testing.T) {
	data := collection(t, asset(), feature("asset", rect(0, 0, 1, 1)))

	_, err := Convert(data, DefaultOptions(), nil)
	var verr *mesh.ValidationError
	assert.True(t, errors.As(err, &verr))
}

func TestConvertRejectsAssetWithoutRing(t *testing.T) {
	data := collection(t, feature("asset", orb.Point{1, 1}))

	_, err := Convert(data, DefaultOptions(), nil)
	var verr *mesh.ValidationError
	assert.True(t, errors.As(err, &verr))
}

func TestConvertRejectsMalformedInput(t *testing.T) {
	_, err := Convert([]byte("{not json"), DefaultOptions(), nil)
	var perr *mesh.ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "geojson", perr.Format)
}

func TestConvertAssetSpansSceneSize(t *testing.T) {
	shapes, err := Convert(collection(t, asset()), DefaultOptions(), nil)
	require.NoError(t, err)
	require.Len(t, shapes, 1)

	bounds := shapes[0].Bounds()
	assert.InDelta(t, -10, bounds.Min.X, 1e-4)
	assert.InDelta(t, 10, bounds.Max.X, 1e-4)
	assert.InDelta(t, -5, bounds.Min.Z, 1e-4)
	assert.InDelta(t, 5, bounds.Max.Z, 1e-4)

	g := shapes[0].Geometry
	assert.Equal(t, 2, g.TriangleCount())
	for i := 0; i < g.TriangleCount(); i++ {
		n := g.Triangle(i).Normal
		assert.InDelta(t, 1, n.Y, 1e-5, "triangle %d faces down", i)
	}
	for i := 0; i < g.VertexCount(); i++ {
		assert.Equal(t, up, geometry.Vector3At(g.Normals, i))
	}
	require.NotNil(t, shapes[0].Color)
	assert.Equal(t, DefaultTerrain()[KindAsset].Color, *shapes[0].Color)
}

func TestConvertStratifiesTerrain(t *testing.T) {
	data := collection(t,
		asset(),
		feature("river", rect(0, 0, 1, 1)),
		feature("grass", rect(0, 0, 1, 1)),
		feature("rocks", rect(0, 0, 1, 1)),
	)

	shapes, err := Convert(data, DefaultOptions(), nil)
	require.NoError(t, err)
	require.Len(t, shapes, 4)

	offsets := map[string]float32{}
	for _, s := range shapes {
		offsets[s.Name] = s.Translation[1]
	}
	assert.Equal(t, map[string]float32{
		KindAsset:       0,
		KindWater:       0.01,
		KindGroundCover: 0.02,
		KindRockTerrain: 0.03,
	}, offsets)
}

func TestConvertTexturedTerrainHasNoColor(t *testing.T) {
	opts := DefaultOptions()
	style := opts.Terrain[KindAsset]
	style.Texture = "data:image/png;base64,AAAA"
	opts.Terrain[KindAsset] = style

	shapes, err := Convert(collection(t, asset()), opts, nil)
	require.NoError(t, err)
	assert.Nil(t, shapes[0].Color)
	assert.Equal(t, style.Texture, shapes[0].Geometry.Texture)
	assert.True(t, shapes[0].Geometry.HasUVs())
}

func TestConvertPlacesTreeAtCentroid(t *testing.T) {
	tree := geojson.NewFeature(rect(0, 0, 1, 1))
	tree.Properties["name"] = " Tree "

	shapes, stats, err := ConvertWithStats(collection(t, asset(), tree), DefaultOptions(), nil)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Points)

	// asset terrain plus trunk and canopy
	require.Len(t, shapes, 3)
	trunk := shapes[1]
	assert.InDelta(t, -5, trunk.Translation[0], 1e-4)
	assert.InDelta(t, 0, trunk.Translation[2], 1e-4)
	assert.Nil(t, trunk.Rotation)
	assert.Nil(t, trunk.Scale)
	assert.Greater(t, shapes[2].Translation[1], trunk.Translation[1])
}

func TestConvertPointFeature(t *testing.T) {
	shapes, err := Convert(collection(t, asset(), feature("rock", orb.Point{2, 1})), DefaultOptions(), nil)
	require.NoError(t, err)
	require.Len(t, shapes, 2)
	assert.InDelta(t, 10, shapes[1].Translation[0], 1e-4)
	assert.InDelta(t, -5, shapes[1].Translation[2], 1e-4)
}

func TestConvertUsesCustomTreeModel(t *testing.T) {
	resolver := models.NewResolver(map[string]models.CustomModelData{
		models.RoleTree: {MeshText: triangle},
	})
	data := collection(t, asset(), feature("tree", rect(0, 0, 1, 1)), feature("tree", rect(1, 0, 2, 1)))

	shapes, err := Convert(data, DefaultOptions(), resolver)
	require.NoError(t, err)
	require.Len(t, shapes, 3)
	assert.Same(t, shapes[1].Geometry, shapes[2].Geometry)
	assert.Equal(t, 1, shapes[1].Geometry.TriangleCount())
}

func TestConvertSkipsUnknownTags(t *testing.T) {
	data := collection(t, asset(), feature("parking", rect(0, 0, 1, 1)), geojson.NewFeature(rect(0, 0, 1, 1)))

	shapes, stats, err := ConvertWithStats(data, DefaultOptions(), nil)
	require.NoError(t, err)
	assert.Len(t, shapes, 1)
	assert.Equal(t, 2, stats.SkippedFeatures)
	assert.Equal(t, 3, stats.Features)
}

func TestConvertScattersGroundCover(t *testing.T) {
	opts := DefaultOptions()
	opts.Density = 0.5
	// ground cover projects to a 10 x 10 square, two triangles of area 50
	data := collection(t, asset(), feature("ground-cover", rect(0, 0, 1, 1)))

	shapes, stats, err := ConvertWithStats(data, opts, groundCoverModel())
	require.NoError(t, err)
	assert.Equal(t, 50, stats.Scattered)
	assert.Len(t, shapes, 2+50)

	var model *mesh.Geometry
	for _, s := range shapes[2:] {
		if model == nil {
			model = s.Geometry
		}
		assert.Same(t, model, s.Geometry)
		require.NotNil(t, s.Rotation)
		require.NotNil(t, s.Scale)
		assert.GreaterOrEqual(t, s.Scale[0], MinScatterScale)
		assert.LessOrEqual(t, s.Scale[0], MaxScatterScale)
		assert.Equal(t, float32(0.02), s.Translation[1])
		assert.GreaterOrEqual(t, s.Translation[0], float32(-10.0001))
		assert.LessOrEqual(t, s.Translation[0], float32(0.0001))
	}
}

func TestConvertScatterIsReproducible(t *testing.T) {
	opts := DefaultOptions()
	opts.Seed = 42
	data := collection(t, asset(), feature("grass", rect(0, 0, 1, 1)))

	a, err := Convert(data, opts, groundCoverModel())
	require.NoError(t, err)
	b, err := Convert(data, opts, groundCoverModel())
	require.NoError(t, err)

	require.Equal(t, len(a), len(b))
	for i := range a {
		assert.Equal(t, a[i].Translation, b[i].Translation)
		if a[i].Rotation != nil {
			assert.Equal(t, *a[i].Rotation, *b[i].Rotation)
		}
	}

	opts.Seed = 43
	c, err := Convert(data, opts, groundCoverModel())
	require.NoError(t, err)
	assert.NotEqual(t, a[len(a)-1].Translation, c[len(c)-1].Translation)
}

func TestConvertCapsScattering(t *testing.T) {
	opts := DefaultOptions()
	opts.Density = 0.5
	opts.MaxInstances = 30
	data := collection(t, asset(), feature("ground-cover", rect(0, 0, 1, 1)))

	_, err := Convert(data, opts, groundCoverModel())
	var verr *mesh.ValidationError
	require.True(t, errors.As(err, &verr), "got %v", err)
	assert.Contains(t, verr.Reason, "30")
}

func TestConvertWithoutGroundCoverModelDoesNotScatter(t *testing.T) {
	data := collection(t, asset(), feature("ground-cover", rect(0, 0, 1, 1)))

	shapes, stats, err := ConvertWithStats(data, DefaultOptions(), nil)
	require.NoError(t, err)
	assert.Len(t, shapes, 2)
	assert.Zero(t, stats.Scattered)
}

func TestTag(t *testing.T) {
	f := geojson.NewFeature(orb.Point{})
	assert.Equal(t, "", Tag(f))

	f.Properties["name"] = "Grass"
	assert.Equal(t, "grass", Tag(f))

	f.Properties["tag"] = "RIVER"
	assert.Equal(t, "river", Tag(f))

	f.Properties["type"] = 7
	assert.Equal(t, "river", Tag(f), "non-string values are ignored")
}
