package primitives

import (
	"github.com/philipparndt/sceneforge/pkg/mesh"
)

// Suggested colors for the parts of a tree
var (
	TrunkColor  = [4]float32{0.45, 0.3, 0.15, 1}
	CanopyColor = [4]float32{0.2, 0.55, 0.2, 1}
	RockColor   = [4]float32{0.5, 0.5, 0.5, 1}
)

// Part is one named piece of a composite object
type Part struct {
	Name     string
	Geometry *mesh.Geometry
	Offset   [3]float32 // relative to the composite origin
	Color    [4]float32
}

// Composite is an object made of several geometries
type Composite struct {
	Name  string
	Parts []Part
}

// Tree returns a hexagonal trunk with an icosahedron canopy on top
func Tree(trunkHeight, trunkRadius, canopyRadius float32) Composite {
	return Composite{
		Name: "tree",
		Parts: []Part{
			{
				Name:     "trunk",
				Geometry: Prism(trunkRadius, trunkHeight, 6),
				Color:    TrunkColor,
			},
			{
				Name:     "canopy",
				Geometry: Icosahedron(canopyRadius),
				Offset:   [3]float32{0, trunkHeight + canopyRadius*0.8, 0},
				Color:    CanopyColor,
			},
		},
	}
}

// Rock returns a single gray icosahedron flattened towards the ground
func Rock(radius float32) Composite {
	scale := [3]float32{1, 0.6, 1}
	return Composite{
		Name: "rock",
		Parts: []Part{{
			Name:     "rock",
			Geometry: scaled(Icosahedron(radius), scale),
			Offset:   [3]float32{0, radius * 0.3, 0},
			Color:    RockColor,
		}},
	}
}

// Shapes places every part relative to translation. The geometries are
// shared, not copied.
func (c Composite) Shapes(translation [3]float32) []mesh.Shape {
	shapes := make([]mesh.Shape, 0, len(c.Parts))
	for _, p := range c.Parts {
		s := mesh.NewShape(c.Name+"_"+p.Name, p.Geometry).At(
			translation[0]+p.Offset[0],
			translation[1]+p.Offset[1],
			translation[2]+p.Offset[2],
		).WithColor(p.Color)
		shapes = append(shapes, s)
	}
	return shapes
}

// scaled returns a copy of g with positions scaled and normals re-derived
// from the scaled faces
func scaled(g *mesh.Geometry, s [3]float32) *mesh.Geometry {
	b := mesh.NewBuilder(g.VertexCount())
	for i := 0; i < g.TriangleCount(); i++ {
		t := g.Triangle(i)
		v1 := t.V1
		v2 := t.V2
		v3 := t.V3
		v1.X, v1.Y, v1.Z = v1.X*s[0], v1.Y*s[1], v1.Z*s[2]
		v2.X, v2.Y, v2.Z = v2.X*s[0], v2.Y*s[1], v2.Z*s[2]
		v3.X, v3.Y, v3.Z = v3.X*s[0], v3.Y*s[1], v3.Z*s[2]
		b.AddTriangle(v1, v2, v3)
	}
	return b.Build()
}
