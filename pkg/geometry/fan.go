package geometry

// FanTriangulate splits a polygon with n corners into n-2 triangles that
// all share the first corner. It returns corner positions, not indices, as
// triples. Polygons with fewer than three corners yield nothing. Convexity
// is not checked.
func FanTriangulate(n int) [][3]int {
	if n < 3 {
		return nil
	}
	tris := make([][3]int, 0, n-2)
	for i := 1; i < n-1; i++ {
		tris = append(tris, [3]int{0, i, i + 1})
	}
	return tris
}
