// Package geo turns a GeoJSON polygon set into positioned shapes.
package geo

// Feature kinds after tag normalization
const (
	KindAsset       = "asset"
	KindGroundCover = "ground-cover"
	KindWater       = "water"
	KindRockTerrain = "rock-terrain"
	KindTree        = "tree"
	KindRock        = "rock"
)

const (
	DefaultSceneSize float32 = 20
	DefaultDensity   float32 = 2.0
)

// TerrainStyle is the look of one terrain kind
type TerrainStyle struct {
	Offset  float32    // height above the reference plane
	Color   [4]float32 // ignored when Texture is set
	Tiling  float32    // texture repeats per scene unit
	Texture string     // data URI, optional
}

// Options controls the conversion
type Options struct {
	SceneSize    float32 // extent of the larger asset axis in scene units
	Density      float32 // scattered instances per square unit
	Seed         uint64
	MaxInstances int // 0 means unlimited
	Terrain      map[string]TerrainStyle
}

// DefaultTerrain returns the built-in style table. Offsets are stratified
// so coincident layers do not z-fight.
func DefaultTerrain() map[string]TerrainStyle {
	return map[string]TerrainStyle{
		KindAsset:       {Offset: 0.00, Color: [4]float32{0.55, 0.5, 0.4, 1}, Tiling: 0.5},
		KindWater:       {Offset: 0.01, Color: [4]float32{0.2, 0.4, 0.8, 1}, Tiling: 0.25},
		KindGroundCover: {Offset: 0.02, Color: [4]float32{0.3, 0.6, 0.25, 1}, Tiling: 1},
		KindRockTerrain: {Offset: 0.03, Color: [4]float32{0.5, 0.5, 0.5, 1}, Tiling: 0.5},
	}
}

// DefaultOptions returns options with the built-in constants
func DefaultOptions() Options {
	return Options{
		SceneSize: DefaultSceneSize,
		Density:   DefaultDensity,
		Seed:      1,
		Terrain:   DefaultTerrain(),
	}
}

func (o Options) withDefaults() Options {
	if o.SceneSize <= 0 {
		o.SceneSize = DefaultSceneSize
	}
	if o.Density <= 0 {
		o.Density = DefaultDensity
	}
	if o.Terrain == nil {
		o.Terrain = DefaultTerrain()
	}
	return o
}

// aliases maps source tags to kinds
var aliases = map[string]string{
	"asset":        KindAsset,
	"grass":        KindGroundCover,
	"ground-cover": KindGroundCover,
	"river":        KindWater,
	"water":        KindWater,
	"rocks":        KindRockTerrain,
	"rock-terrain": KindRockTerrain,
	"tree":         KindTree,
	"rock":         KindRock,
}

// Kind normalizes a feature tag, returning "" for unknown tags
func Kind(tag string) string {
	return aliases[tag]
}

func isTerrain(kind string) bool {
	switch kind {
	case KindAsset, KindGroundCover, KindWater, KindRockTerrain:
		return true
	}
	return false
}

func isScatterable(kind string) bool {
	return kind == KindGroundCover
}
