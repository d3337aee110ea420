package stl

import (
	"github.com/philipparndt/sceneforge/pkg/geometry"
	"github.com/philipparndt/sceneforge/pkg/mesh"
)

// Model is a parsed STL solid
type Model struct {
	Name     string
	Geometry *mesh.Geometry
}

// NewModel creates a new STL model
func NewModel(name string, g *mesh.Geometry) *Model {
	return &Model{
		Name:     name,
		Geometry: g,
	}
}

// TriangleCount returns the number of triangles in the model
func (m *Model) TriangleCount() int {
	return m.Geometry.TriangleCount()
}

// BoundingBox calculates the bounding box of the entire model
func (m *Model) BoundingBox() geometry.BoundingBox {
	return m.Geometry.Bounds()
}

// SurfaceArea calculates the total surface area of the model
func (m *Model) SurfaceArea() float32 {
	var totalArea float32
	for i := 0; i < m.Geometry.TriangleCount(); i++ {
		totalArea += m.Geometry.Triangle(i).Area()
	}
	return totalArea
}
