package geometry

import (
	"testing"

	"github.com/chewxy/math32"
)

func TestTriangleArea(t *testing.T) {
	// Create a right triangle with sides 3, 4, 5
	tri := NewTriangle(
		NewVector3(0, 0, 1),
		NewVector3(0, 0, 0),
		NewVector3(3, 0, 0),
		NewVector3(0, 4, 0),
	)

	area := tri.Area()
	expected := float32(6.0) // (3 * 4) / 2 = 6

	if math32.Abs(area-expected) > 1e-5 {
		t.Errorf("Area failed: expected %v, got %v", expected, area)
	}
}

func TestTriangleEdgeLengths(t *testing.T) {
	tri := NewTriangle(
		NewVector3(0, 0, 1),
		NewVector3(0, 0, 0),
		NewVector3(3, 0, 0),
		NewVector3(0, 4, 0),
	)

	lengths := tri.EdgeLengths()

	// Expected lengths: 3, 5, 4 (Pythagorean triple)
	if math32.Abs(lengths[0]-3.0) > 1e-5 {
		t.Errorf("Edge 0 length failed: expected 3.0, got %v", lengths[0])
	}
	if math32.Abs(lengths[1]-5.0) > 1e-5 {
		t.Errorf("Edge 1 length failed: expected 5.0, got %v", lengths[1])
	}
	if math32.Abs(lengths[2]-4.0) > 1e-5 {
		t.Errorf("Edge 2 length failed: expected 4.0, got %v", lengths[2])
	}
}

func TestTrianglePerimeter(t *testing.T) {
	tri := NewTriangle(
		NewVector3(0, 0, 1),
		NewVector3(0, 0, 0),
		NewVector3(3, 0, 0),
		NewVector3(0, 4, 0),
	)

	perimeter := tri.Perimeter()
	expected := float32(12.0) // 3 + 4 + 5 = 12

	if math32.Abs(perimeter-expected) > 1e-5 {
		t.Errorf("Perimeter failed: expected %v, got %v", expected, perimeter)
	}
}

func TestTriangleCenter(t *testing.T) {
	tri := NewTriangle(
		NewVector3(0, 0, 1),
		NewVector3(0, 0, 0),
		NewVector3(3, 0, 0),
		NewVector3(0, 3, 0),
	)

	center := tri.Center()
	expected := NewVector3(1, 1, 0)

	if center != expected {
		t.Errorf("Center failed: expected %v, got %v", expected, center)
	}
}

func TestFaceNormalFollowsWinding(t *testing.T) {
	a := NewVector3(0, 0, 0)
	b := NewVector3(1, 0, 0)
	c := NewVector3(0, 1, 0)

	if n := FaceNormal(a, b, c); n != NewVector3(0, 0, 1) {
		t.Errorf("FaceNormal failed: expected (0,0,1), got %v", n)
	}
	if n := FaceNormal(a, c, b); n != NewVector3(0, 0, -1) {
		t.Errorf("FaceNormal reversed failed: expected (0,0,-1), got %v", n)
	}
	if n := FaceNormal(a, a, b); n != (Vector3{}) {
		t.Errorf("FaceNormal degenerate failed: expected zero, got %v", n)
	}
}

func TestTriangle2DArea(t *testing.T) {
	tri := Triangle2D{A: NewVector2(0, 0), B: NewVector2(2, 0), C: NewVector2(0, 2)}
	if area := tri.Area(); math32.Abs(area-2) > 1e-5 {
		t.Errorf("Area failed: expected 2, got %v", area)
	}

	// Clockwise order gives the same unsigned area
	cw := Triangle2D{A: tri.A, B: tri.C, C: tri.B}
	if area := cw.Area(); math32.Abs(area-2) > 1e-5 {
		t.Errorf("Area (cw) failed: expected 2, got %v", area)
	}
}

func TestTriangle2DSampleStaysInside(t *testing.T) {
	tri := Triangle2D{A: NewVector2(-1, -1), B: NewVector2(3, 0), C: NewVector2(0, 4)}
	samples := []float32{0, 0.1, 0.25, 0.5, 0.75, 0.9, 0.999}

	for _, r1 := range samples {
		for _, r2 := range samples {
			p := tri.Sample(r1, r2)
			wa, wb, wc := tri.Barycentric(p)
			if wa < -1e-4 || wb < -1e-4 || wc < -1e-4 {
				t.Fatalf("Sample(%v, %v) = %v outside triangle: weights %v %v %v", r1, r2, p, wa, wb, wc)
			}
			if sum := wa + wb + wc; math32.Abs(sum-1) > 1e-4 {
				t.Fatalf("Sample(%v, %v) weights sum to %v", r1, r2, sum)
			}
		}
	}
}

func TestFanTriangulate(t *testing.T) {
	for n := 0; n < 10; n++ {
		tris := FanTriangulate(n)
		want := n - 2
		if want < 0 {
			want = 0
		}
		if len(tris) != want {
			t.Errorf("FanTriangulate(%d): expected %d triangles, got %d", n, want, len(tris))
		}
		for _, tri := range tris {
			if tri[0] != 0 {
				t.Errorf("FanTriangulate(%d): triangle %v does not start at corner 0", n, tri)
			}
		}
	}
}
