package geometry

import "github.com/chewxy/math32"

// Triangle represents a triangular facet in 3D space
type Triangle struct {
	Normal     Vector3
	V1, V2, V3 Vector3
}

// NewTriangle creates a new triangle
func NewTriangle(normal, v1, v2, v3 Vector3) Triangle {
	return Triangle{
		Normal: normal,
		V1:     v1,
		V2:     v2,
		V3:     v3,
	}
}

// FlatTriangle creates a triangle whose normal is computed from its winding
func FlatTriangle(v1, v2, v3 Vector3) Triangle {
	return Triangle{Normal: FaceNormal(v1, v2, v3), V1: v1, V2: v2, V3: v3}
}

// FaceNormal is the normalized cross product of the two edges leaving v1.
// Degenerate triangles yield the zero vector.
func FaceNormal(v1, v2, v3 Vector3) Vector3 {
	return v2.Sub(v1).Cross(v3.Sub(v1)).Normalize()
}

// CalculateNormal computes the normal vector for the triangle
func (t Triangle) CalculateNormal() Vector3 {
	return FaceNormal(t.V1, t.V2, t.V3)
}

// Area returns the surface area of the triangle
func (t Triangle) Area() float32 {
	edge1 := t.V2.Sub(t.V1)
	edge2 := t.V3.Sub(t.V1)
	return edge1.Cross(edge2).Length() / 2.0
}

// EdgeLengths returns the lengths of all three edges
func (t Triangle) EdgeLengths() [3]float32 {
	return [3]float32{
		t.V1.Distance(t.V2),
		t.V2.Distance(t.V3),
		t.V3.Distance(t.V1),
	}
}

// Perimeter returns the total length of all edges
func (t Triangle) Perimeter() float32 {
	lengths := t.EdgeLengths()
	return lengths[0] + lengths[1] + lengths[2]
}

// Center returns the centroid of the triangle
func (t Triangle) Center() Vector3 {
	return Vector3{
		X: (t.V1.X + t.V2.X + t.V3.X) / 3.0,
		Y: (t.V1.Y + t.V2.Y + t.V3.Y) / 3.0,
		Z: (t.V1.Z + t.V2.Z + t.V3.Z) / 3.0,
	}
}

// Triangle2D is a triangle on the ground plane
type Triangle2D struct {
	A, B, C Vector2
}

// Area returns the unsigned area using the 2D cross product
func (t Triangle2D) Area() float32 {
	return math32.Abs(t.B.Sub(t.A).Cross(t.C.Sub(t.A))) / 2
}

// Sample maps two uniform samples in [0,1) to a uniformly distributed
// point inside the triangle. The square root keeps the density even
// across the surface instead of clustering at A.
func (t Triangle2D) Sample(r1, r2 float32) Vector2 {
	s := math32.Sqrt(r1)
	wa := 1 - s
	wb := s * (1 - r2)
	wc := s * r2
	return Vector2{
		X: wa*t.A.X + wb*t.B.X + wc*t.C.X,
		Y: wa*t.A.Y + wb*t.B.Y + wc*t.C.Y,
	}
}

// Barycentric returns the weights of p relative to A, B and C.
// For a degenerate triangle all weights are zero.
func (t Triangle2D) Barycentric(p Vector2) (wa, wb, wc float32) {
	v0 := t.B.Sub(t.A)
	v1 := t.C.Sub(t.A)
	v2 := p.Sub(t.A)
	den := v0.Cross(v1)
	if den == 0 {
		return 0, 0, 0
	}
	wb = v2.Cross(v1) / den
	wc = v0.Cross(v2) / den
	wa = 1 - wb - wc
	return wa, wb, wc
}
