// Package analysis computes statistics over meshes and scenes.
package analysis

import (
	"fmt"
	"sort"

	"github.com/chewxy/math32"

	"github.com/philipparndt/sceneforge/pkg/geometry"
	"github.com/philipparndt/sceneforge/pkg/mesh"
)

// degenerateArea is the area below which a triangle counts as collapsed
const degenerateArea = 1e-12

// EdgeInfo is one triangle edge
type EdgeInfo struct {
	Start    geometry.Vector3
	End      geometry.Vector3
	Length   float32
	Triangle int
}

// MeasurementResult holds the statistics of one geometry
type MeasurementResult struct {
	BoundingBox   geometry.BoundingBox
	Dimensions    geometry.Vector3
	Volume        float32 // of the bounding box
	SurfaceArea   float32
	VertexCount   int
	TriangleCount int
	Degenerate    int
	EdgeCount     int
	MinEdgeLength float32
	MaxEdgeLength float32
	AvgEdgeLength float32
	HasColors     bool
	HasUVs        bool
	Textured      bool
	Parts         int
	AllEdges      []EdgeInfo
}

// AnalyzeGeometry measures a single geometry
func AnalyzeGeometry(g *mesh.Geometry) *MeasurementResult {
	result := &MeasurementResult{
		BoundingBox:   g.Bounds(),
		VertexCount:   g.VertexCount(),
		TriangleCount: g.TriangleCount(),
		HasColors:     g.HasColors(),
		HasUVs:        g.HasUVs(),
		Textured:      g.Texture != "",
		Parts:         max(len(g.SubPrimitives), 1),
		AllEdges:      make([]EdgeInfo, 0, g.TriangleCount()*3),
	}
	for _, sp := range g.SubPrimitives {
		if sp.Texture != "" {
			result.Textured = true
		}
	}
	if !result.BoundingBox.IsEmpty() {
		result.Dimensions = result.BoundingBox.Size()
		result.Volume = result.BoundingBox.Volume()
	}

	minLength := float32(math32.MaxFloat32)
	var maxLength, totalLength float32
	for i := 0; i < g.TriangleCount(); i++ {
		tri := g.Triangle(i)
		area := tri.Area()
		result.SurfaceArea += area
		if area < degenerateArea {
			result.Degenerate++
		}

		corners := [3]geometry.Vector3{tri.V1, tri.V2, tri.V3}
		for k, length := range tri.EdgeLengths() {
			result.AllEdges = append(result.AllEdges, EdgeInfo{
				Start:    corners[k],
				End:      corners[(k+1)%3],
				Length:   length,
				Triangle: i,
			})
			totalLength += length
			minLength = min(minLength, length)
			maxLength = max(maxLength, length)
		}
	}

	result.EdgeCount = len(result.AllEdges)
	if result.EdgeCount > 0 {
		result.MinEdgeLength = minLength
		result.MaxEdgeLength = maxLength
		result.AvgEdgeLength = totalLength / float32(result.EdgeCount)
	}
	return result
}

// SceneResult summarizes a list of shapes
type SceneResult struct {
	BoundingBox   geometry.BoundingBox // scene space
	Shapes        int
	Geometries    int // distinct Geometry pointers
	VertexCount   int
	TriangleCount int
	SurfaceArea   float32 // before scaling
}

// AnalyzeShapes measures a scene. Shared geometries are counted once per
// shape for vertices and triangles.
func AnalyzeShapes(shapes []mesh.Shape) *SceneResult {
	result := &SceneResult{BoundingBox: geometry.NewBoundingBox(), Shapes: len(shapes)}
	seen := map[*mesh.Geometry]*MeasurementResult{}

	for _, s := range shapes {
		if s.Geometry == nil {
			continue
		}
		m, ok := seen[s.Geometry]
		if !ok {
			m = AnalyzeGeometry(s.Geometry)
			seen[s.Geometry] = m
		}
		result.VertexCount += m.VertexCount
		result.TriangleCount += m.TriangleCount
		result.SurfaceArea += m.SurfaceArea

		b := s.Bounds()
		if !b.IsEmpty() {
			result.BoundingBox.Extend(b.Min)
			result.BoundingBox.Extend(b.Max)
		}
	}
	result.Geometries = len(seen)
	return result
}

// FindEdgesByLength returns all edges with a length in [minLength, maxLength]
func FindEdgesByLength(result *MeasurementResult, minLength, maxLength float32) []EdgeInfo {
	var edges []EdgeInfo
	for _, edge := range result.AllEdges {
		if edge.Length >= minLength && edge.Length <= maxLength {
			edges = append(edges, edge)
		}
	}
	return edges
}

// FindLongestEdges returns the count longest edges
func FindLongestEdges(result *MeasurementResult, count int) []EdgeInfo {
	return sortedEdges(result, count, func(a, b float32) bool { return a > b })
}

// FindShortestEdges returns the count shortest edges
func FindShortestEdges(result *MeasurementResult, count int) []EdgeInfo {
	return sortedEdges(result, count, func(a, b float32) bool { return a < b })
}

func sortedEdges(result *MeasurementResult, count int, less func(a, b float32) bool) []EdgeInfo {
	edges := make([]EdgeInfo, len(result.AllEdges))
	copy(edges, result.AllEdges)
	sort.SliceStable(edges, func(i, j int) bool {
		return less(edges[i].Length, edges[j].Length)
	})
	return edges[:min(count, len(edges))]
}

// FindNearestVertex returns the vertex of g closest to point and its distance
func FindNearestVertex(g *mesh.Geometry, point geometry.Vector3) (geometry.Vector3, float32) {
	var nearest geometry.Vector3
	minDistance := float32(math32.MaxFloat32)
	for i := 0; i < g.VertexCount(); i++ {
		v := geometry.Vector3At(g.Positions, i)
		if d := point.Distance(v); d < minDistance {
			minDistance = d
			nearest = v
		}
	}
	return nearest, minDistance
}

// FormatMeasurement formats a measurement with appropriate units
func FormatMeasurement(value float32, unit string) string {
	if unit == "" {
		unit = "units"
	}
	return fmt.Sprintf("%.6f %s", value, unit)
}

// FormatVector formats a 3D vector
func FormatVector(v geometry.Vector3) string {
	return fmt.Sprintf("(%.6f, %.6f, %.6f)", v.X, v.Y, v.Z)
}
