package geo

import (
	"github.com/philipparndt/sceneforge/pkg/geometry"
	"github.com/philipparndt/sceneforge/pkg/mesh"
)

var up = geometry.NewVector3(0, 1, 0)

// terrainTriangles fan-triangulates a projected ring from its first vertex.
// Each triangle is wound counter-clockwise seen from above.
func terrainTriangles(ring []geometry.Vector2) []geometry.Triangle2D {
	fan := geometry.FanTriangulate(len(ring))
	tris := make([]geometry.Triangle2D, 0, len(fan))
	for _, f := range fan {
		t := geometry.Triangle2D{A: ring[f[0]], B: ring[f[1]], C: ring[f[2]]}
		// planar (x, y) maps to scene (x, z); a positive 2D cross product
		// would give a downward facing normal
		if t.B.Sub(t.A).Cross(t.C.Sub(t.A)) > 0 {
			t.B, t.C = t.C, t.B
		}
		tris = append(tris, t)
	}
	return tris
}

// terrainGeometry builds a flat upward-facing mesh at y=0 with UVs scaled
// by tiling
func terrainGeometry(tris []geometry.Triangle2D, style TerrainStyle) *mesh.Geometry {
	b := mesh.NewBuilder(len(tris) * 3).WithTexture(style.Texture)
	for _, t := range tris {
		first := uint32(b.VertexCount())
		for _, p := range []geometry.Vector2{t.A, t.B, t.C} {
			b.AddVertex(geometry.NewVector3(p.X, 0, p.Y), up)
			b.AddUV(p.X*style.Tiling, p.Y*style.Tiling)
		}
		b.AddIndices(first, first+1, first+2)
	}
	return b.Build()
}
