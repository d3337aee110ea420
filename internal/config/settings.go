// Package config loads the sceneforge settings file and primitive scene
// definitions.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/philipparndt/sceneforge/internal/textenc"
	"github.com/philipparndt/sceneforge/pkg/geo"
	"github.com/philipparndt/sceneforge/pkg/models"
	"github.com/philipparndt/sceneforge/pkg/scene"
	"github.com/philipparndt/sceneforge/pkg/texture"
)

// DefaultFile is looked up in the working directory when --config is not given
const DefaultFile = "sceneforge.toml"

// Settings holds everything that can be configured in sceneforge.toml
type Settings struct {
	Geo     GeoSettings              `toml:"geo"`
	Models  map[string]ModelSettings `toml:"models"`
	Output  OutputSettings           `toml:"output"`
	Texture TextureSettings          `toml:"texture"`

	// dir resolves relative file paths, empty for the working directory
	dir string
}

// GeoSettings configures the geographic converter
type GeoSettings struct {
	SceneSize    float32                    `toml:"scene_size"`
	Density      float32                    `toml:"density"`
	Seed         uint64                     `toml:"seed"`
	MaxInstances int                        `toml:"max_instances"`
	Terrain      map[string]TerrainSettings `toml:"terrain"`
}

// TerrainSettings overrides the built-in style of one terrain tag. Unset
// fields keep the built-in value.
type TerrainSettings struct {
	Offset  *float32  `toml:"offset"`
	Color   []float32 `toml:"color"`
	Tiling  *float32  `toml:"tiling"`
	Texture string    `toml:"texture"` // image file
}

// ModelSettings points at the files of a custom model
type ModelSettings struct {
	Mesh     string `toml:"mesh"`
	Material string `toml:"material"`
	GLB      string `toml:"glb"`
}

// OutputSettings configures the serializer and the convert layout
type OutputSettings struct {
	Generator  string  `toml:"generator"`
	Spacing    float32 `toml:"spacing"`
	Instancing bool    `toml:"instancing"`
}

// TextureSettings limits embedded images
type TextureSettings struct {
	MaxSize int `toml:"max_size"`
}

// Flags holds CLI flag values that override config file settings
type Flags struct {
	SceneSize    float32
	Density      float32
	Seed         uint64
	SeedSet      bool
	MaxInstances int
	Generator    string
	Spacing      float32
}

// Default returns the built-in settings
func Default() Settings {
	opts := geo.DefaultOptions()
	return Settings{
		Geo: GeoSettings{
			SceneSize: opts.SceneSize,
			Density:   opts.Density,
			Seed:      opts.Seed,
		},
		Output: OutputSettings{
			Generator: scene.DefaultOptions().Generator,
			Spacing:   1.5,
		},
		Texture: TextureSettings{MaxSize: 2048},
	}
}

// Load reads a TOML settings file on top of the defaults. Relative file
// paths inside it are resolved against its directory.
func Load(path string) (Settings, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Settings{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	cfg.dir = filepath.Dir(path)
	return cfg, nil
}

// LoadOptional loads path, or DefaultFile when path is empty and it
// exists, or falls back to the defaults
func LoadOptional(path string) (Settings, error) {
	if path != "" {
		return Load(path)
	}
	if _, err := os.Stat(DefaultFile); err == nil {
		return Load(DefaultFile)
	}
	return Default(), nil
}

// Resolve applies flag overrides and fills anything still unset
func (c *Settings) Resolve(flags Flags) {
	if flags.SceneSize > 0 {
		c.Geo.SceneSize = flags.SceneSize
	}
	if flags.Density > 0 {
		c.Geo.Density = flags.Density
	}
	if flags.SeedSet {
		c.Geo.Seed = flags.Seed
	}
	if flags.MaxInstances > 0 {
		c.Geo.MaxInstances = flags.MaxInstances
	}
	if flags.Generator != "" {
		c.Output.Generator = flags.Generator
	}
	if flags.Spacing > 0 {
		c.Output.Spacing = flags.Spacing
	}

	def := Default()
	if c.Geo.SceneSize <= 0 {
		c.Geo.SceneSize = def.Geo.SceneSize
	}
	if c.Geo.Density <= 0 {
		c.Geo.Density = def.Geo.Density
	}
	if c.Output.Generator == "" {
		c.Output.Generator = def.Output.Generator
	}
	if c.Output.Spacing < 0 {
		c.Output.Spacing = def.Output.Spacing
	}
}

// Path resolves a file path from the settings file
func (c *Settings) Path(p string) string {
	if p == "" || filepath.IsAbs(p) || c.dir == "" {
		return p
	}
	return filepath.Join(c.dir, p)
}

// TextureOptions returns the limits for embedded images
func (c *Settings) TextureOptions() texture.Options {
	return texture.Options{MaxSize: c.Texture.MaxSize}
}

// EncoderOptions returns the serializer options
func (c *Settings) EncoderOptions() scene.Options {
	return scene.Options{Generator: c.Output.Generator, Instancing: c.Output.Instancing}
}

// GeoOptions builds converter options, reading any terrain texture files
func (c *Settings) GeoOptions() (geo.Options, error) {
	opts := geo.DefaultOptions()
	opts.SceneSize = c.Geo.SceneSize
	opts.Density = c.Geo.Density
	opts.Seed = c.Geo.Seed
	opts.MaxInstances = c.Geo.MaxInstances

	for tag, ts := range c.Geo.Terrain {
		kind := geo.Kind(tag)
		style, ok := opts.Terrain[kind]
		if !ok {
			return geo.Options{}, fmt.Errorf("config: unknown terrain tag %q", tag)
		}
		if ts.Offset != nil {
			style.Offset = *ts.Offset
		}
		if ts.Tiling != nil {
			style.Tiling = *ts.Tiling
		}
		if ts.Color != nil {
			color, err := ParseColor(ts.Color)
			if err != nil {
				return geo.Options{}, fmt.Errorf("config: terrain %s: %w", tag, err)
			}
			style.Color = color
		}
		if ts.Texture != "" {
			data, err := os.ReadFile(c.Path(ts.Texture))
			if err != nil {
				return geo.Options{}, fmt.Errorf("config: terrain %s: %w", tag, err)
			}
			uri, err := texture.EncodeURI(data, c.TextureOptions())
			if err != nil {
				return geo.Options{}, fmt.Errorf("config: terrain %s: %w", tag, err)
			}
			style.Texture = uri
		}
		opts.Terrain[kind] = style
	}
	return opts, nil
}

// CustomModels reads the configured model files
func (c *Settings) CustomModels() (map[string]models.CustomModelData, error) {
	out := make(map[string]models.CustomModelData, len(c.Models))
	for name, m := range c.Models {
		role := geo.Kind(name)
		switch role {
		case models.RoleTree, models.RoleRock, models.RoleGroundCover:
		default:
			return nil, fmt.Errorf("config: models.%s is not a tree, rock or ground-cover role", name)
		}

		var data models.CustomModelData
		var err error
		if m.GLB != "" {
			if data.BinaryContainer, err = os.ReadFile(c.Path(m.GLB)); err != nil {
				return nil, fmt.Errorf("config: models.%s: %w", name, err)
			}
		}
		if m.Mesh != "" {
			if data.MeshText, err = textenc.ReadFile(c.Path(m.Mesh)); err != nil {
				return nil, fmt.Errorf("config: models.%s: %w", name, err)
			}
		}
		if m.Material != "" {
			if data.MaterialText, err = textenc.ReadFile(c.Path(m.Material)); err != nil {
				return nil, fmt.Errorf("config: models.%s: %w", name, err)
			}
		}
		out[role] = data
	}
	return out, nil
}

// ParseColor accepts RGB or RGBA components in [0,1]. A missing alpha is 1.
func ParseColor(values []float32) ([4]float32, error) {
	var c [4]float32
	if len(values) != 3 && len(values) != 4 {
		return c, fmt.Errorf("color needs 3 or 4 components, got %d", len(values))
	}
	c[3] = 1
	for i, v := range values {
		if v < 0 || v > 1 {
			return c, fmt.Errorf("color component %d is %v, outside [0,1]", i, v)
		}
		c[i] = v
	}
	return c, nil
}
