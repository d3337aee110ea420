// Package mesh holds the canonical triangle mesh shared by every importer,
// generator and the scene serializer.
package mesh

import (
	"fmt"

	"github.com/philipparndt/sceneforge/pkg/geometry"
)

// SubPrimitive marks a run of indices that was imported with its own material
type SubPrimitive struct {
	IndexOffset int         // first index of the run, in elements
	IndexCount  int         // number of indices, a multiple of 3
	Texture     string      // data URI, empty when untextured
	BaseColor   *[4]float32 // RGBA, nil when the source had none
}

// Geometry is an immutable triangle mesh. Once built it is shared by pointer
// between any number of shapes and must not be modified.
type Geometry struct {
	Positions []float32 // xyz per vertex
	Normals   []float32 // xyz per vertex
	Indices   []uint32  // triangle list

	Colors    []float32 // ColorSize floats per vertex, optional
	ColorSize int       // 3 or 4 when Colors is set

	UVs     []float32 // uv per vertex, optional
	Texture string    // data URI, optional

	SubPrimitives []SubPrimitive
}

// VertexCount returns the number of vertices
func (g *Geometry) VertexCount() int {
	return len(g.Positions) / 3
}

// TriangleCount returns the number of triangles
func (g *Geometry) TriangleCount() int {
	return len(g.Indices) / 3
}

// HasColors reports whether per-vertex colors are present
func (g *Geometry) HasColors() bool {
	return len(g.Colors) > 0
}

// HasUVs reports whether texture coordinates are present
func (g *Geometry) HasUVs() bool {
	return len(g.UVs) > 0
}

// IsEmpty reports whether the geometry has no triangles
func (g *Geometry) IsEmpty() bool {
	return len(g.Indices) == 0
}

// Triangle returns triangle i with its flat normal
func (g *Geometry) Triangle(i int) geometry.Triangle {
	a := geometry.Vector3At(g.Positions, int(g.Indices[i*3]))
	b := geometry.Vector3At(g.Positions, int(g.Indices[i*3+1]))
	c := geometry.Vector3At(g.Positions, int(g.Indices[i*3+2]))
	return geometry.FlatTriangle(a, b, c)
}

// Bounds returns the bounding box of all positions
func (g *Geometry) Bounds() geometry.BoundingBox {
	return geometry.BoundsOf(g.Positions)
}

// Validate checks the structural invariants every producer must uphold
func (g *Geometry) Validate() error {
	if len(g.Positions)%3 != 0 {
		return validationErrorf("positions length %d is not a multiple of 3", len(g.Positions))
	}
	if len(g.Normals) != len(g.Positions) {
		return validationErrorf("normals length %d does not match positions length %d", len(g.Normals), len(g.Positions))
	}
	if len(g.Indices)%3 != 0 {
		return validationErrorf("indices length %d is not a multiple of 3", len(g.Indices))
	}
	n := g.VertexCount()
	if g.HasColors() {
		if g.ColorSize != 3 && g.ColorSize != 4 {
			return validationErrorf("color size must be 3 or 4, got %d", g.ColorSize)
		}
		if len(g.Colors) != n*g.ColorSize {
			return validationErrorf("colors length %d does not match %d vertices", len(g.Colors), n)
		}
	}
	if g.HasUVs() && len(g.UVs) != n*2 {
		return validationErrorf("uvs length %d does not match %d vertices", len(g.UVs), n)
	}
	for i, idx := range g.Indices {
		if int(idx) >= n {
			return validationErrorf("index %d at position %d is out of range for %d vertices", idx, i, n)
		}
	}
	for i, sp := range g.SubPrimitives {
		if sp.IndexOffset < 0 || sp.IndexCount < 0 || sp.IndexOffset+sp.IndexCount > len(g.Indices) {
			return validationErrorf("sub-primitive %d range [%d,+%d) exceeds %d indices", i, sp.IndexOffset, sp.IndexCount, len(g.Indices))
		}
		if sp.IndexOffset%3 != 0 || sp.IndexCount%3 != 0 {
			return validationErrorf("sub-primitive %d range is not triangle aligned", i)
		}
	}
	return nil
}

// MaxIndex returns the largest index, or -1 when there are none
func (g *Geometry) MaxIndex() int {
	maxIdx := -1
	for _, idx := range g.Indices {
		if int(idx) > maxIdx {
			maxIdx = int(idx)
		}
	}
	return maxIdx
}

func (g *Geometry) String() string {
	return fmt.Sprintf("Geometry{vertices: %d, triangles: %d, colors: %t, uvs: %t, parts: %d}",
		g.VertexCount(), g.TriangleCount(), g.HasColors(), g.HasUVs(), len(g.SubPrimitives))
}
