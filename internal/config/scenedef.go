package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/chewxy/math32"
	"gopkg.in/yaml.v3"

	"github.com/philipparndt/sceneforge/pkg/geometry"
	"github.com/philipparndt/sceneforge/pkg/mesh"
	"github.com/philipparndt/sceneforge/pkg/primitives"
)

// PrimitiveDef is one generated object of a scene file. Zero valued sizes
// fall back to the defaults of the primitive type.
type PrimitiveDef struct {
	Type        string     `yaml:"type"`
	Name        string     `yaml:"name,omitempty"`
	Size        [3]float32 `yaml:"size,omitempty"`
	Radius      float32    `yaml:"radius,omitempty"`
	Height      float32    `yaml:"height,omitempty"`
	Sectors     int        `yaml:"sectors,omitempty"`
	Stacks      int        `yaml:"stacks,omitempty"`
	Sides       int        `yaml:"sides,omitempty"`
	Translation [3]float32 `yaml:"translation,omitempty"`
	Scale       []float32  `yaml:"scale,omitempty"`      // one uniform or three per-axis factors
	RotationY   float32    `yaml:"rotation_y,omitempty"` // degrees
	Color       []float32  `yaml:"color,omitempty"`
}

// SceneDef is a YAML list of primitives
type SceneDef struct {
	Primitives []PrimitiveDef `yaml:"primitives"`
}

// LoadScene reads a YAML scene definition
func LoadScene(path string) (SceneDef, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return SceneDef{}, fmt.Errorf("scene: read %s: %w", path, err)
	}
	return ParseScene(data)
}

// ParseScene decodes a YAML scene definition
func ParseScene(data []byte) (SceneDef, error) {
	var def SceneDef
	if err := yaml.Unmarshal(data, &def); err != nil {
		return SceneDef{}, fmt.Errorf("scene: parse: %w", err)
	}
	if len(def.Primitives) == 0 {
		return SceneDef{}, fmt.Errorf("scene: no primitives defined")
	}
	return def, nil
}

// Build generates every primitive. Geometries of identical definitions are
// generated once and shared.
func (d SceneDef) Build() ([]mesh.Shape, error) {
	cache := map[primitiveKey][]mesh.Shape{}
	var shapes []mesh.Shape
	for i, p := range d.Primitives {
		key := p.key()
		local, ok := cache[key]
		if !ok {
			var err error
			if local, err = p.generate(); err != nil {
				return nil, fmt.Errorf("scene: primitive %d: %w", i, err)
			}
			cache[key] = local
		}

		placed, err := p.place(local)
		if err != nil {
			return nil, fmt.Errorf("scene: primitive %d: %w", i, err)
		}
		shapes = append(shapes, placed...)
	}
	return shapes, nil
}

// primitiveKey identifies the generated geometry of a definition
type primitiveKey struct {
	Type                   string
	Size                   [3]float32
	Radius, Height         float32
	Sectors, Stacks, Sides int
}

func (p PrimitiveDef) key() primitiveKey {
	return primitiveKey{
		Type:    p.Type,
		Size:    p.Size,
		Radius:  p.Radius,
		Height:  p.Height,
		Sectors: p.Sectors,
		Stacks:  p.Stacks,
		Sides:   p.Sides,
	}
}

func orDefault[T float32 | int](v, def T) T {
	if v == 0 {
		return def
	}
	return v
}

// generate returns the shapes of the primitive at the origin
func (p PrimitiveDef) generate() ([]mesh.Shape, error) {
	if p.Radius < 0 || p.Height < 0 || p.Size[0] < 0 || p.Size[1] < 0 || p.Size[2] < 0 {
		return nil, fmt.Errorf("%s: dimensions must not be negative", p.Type)
	}

	radius := orDefault(p.Radius, 0.5)
	height := orDefault(p.Height, 1)
	single := func(g *mesh.Geometry) []mesh.Shape {
		return []mesh.Shape{mesh.NewShape(p.Type, g)}
	}

	switch p.Type {
	case "box", "cube":
		return single(primitives.Box(orDefault(p.Size[0], 1), orDefault(p.Size[1], 1), orDefault(p.Size[2], 1))), nil
	case "sphere":
		return single(primitives.Sphere(radius, orDefault(p.Sectors, 32), orDefault(p.Stacks, 16))), nil
	case "pyramid", "cone":
		return single(primitives.Pyramid(radius, height, orDefault(p.Sides, 4))), nil
	case "icosahedron":
		return single(primitives.Icosahedron(radius)), nil
	case "prism", "cylinder":
		return single(primitives.Prism(radius, height, orDefault(p.Sides, 16))), nil
	case "tree":
		canopy := orDefault(p.Radius, 0.25)
		return primitives.Tree(orDefault(p.Height, 0.4), canopy*0.2, canopy).Shapes([3]float32{}), nil
	case "rock":
		return primitives.Rock(orDefault(p.Radius, 0.2)).Shapes([3]float32{}), nil
	}
	return nil, fmt.Errorf("unknown primitive type %q", p.Type)
}

// place applies the definition transform to shapes generated at the origin
func (p PrimitiveDef) place(local []mesh.Shape) ([]mesh.Shape, error) {
	var scale *[3]float32
	switch len(p.Scale) {
	case 0:
	case 1:
		scale = &[3]float32{p.Scale[0], p.Scale[0], p.Scale[0]}
	case 3:
		scale = &[3]float32{p.Scale[0], p.Scale[1], p.Scale[2]}
	default:
		return nil, fmt.Errorf("scale needs 1 or 3 values, got %d", len(p.Scale))
	}

	var color *[4]float32
	if p.Color != nil {
		c, err := ParseColor(p.Color)
		if err != nil {
			return nil, err
		}
		color = &c
	}

	var rotation *mesh.Quat
	if p.RotationY != 0 {
		q := mesh.YawQuat(p.RotationY * math32.Pi / 180)
		rotation = &q
	}

	out := make([]mesh.Shape, 0, len(local))
	for _, s := range local {
		placed := mesh.NewShape(s.Name, s.Geometry).At(p.Translation[0], p.Translation[1], p.Translation[2])
		if p.Name != "" {
			placed.Name = p.Name
			if len(local) > 1 {
				// composite parts are named "<composite>_<part>"
				_, part, _ := strings.Cut(s.Name, "_")
				placed.Name = p.Name + "_" + part
			}
		}
		placed.Scale = scale
		placed.Rotation = rotation
		placed.Color = s.Color
		if color != nil {
			placed.Color = color
		}

		// part offsets of composites follow the same transform
		t := placed.Transform(geometry.NewVector3(s.Translation[0], s.Translation[1], s.Translation[2]))
		placed.Translation = [3]float32{t.X, t.Y, t.Z}
		out = append(out, placed)
	}
	return out, nil
}
