package preview

import (
	"image"
	"image/color"

	"github.com/chewxy/math32"
)

// vertex is a projected corner: pixel position plus depth
type vertex struct {
	x, y, z float32
}

// fillTriangle scan converts a projected triangle, keeping the pixel
// closest to the camera
func fillTriangle(img *image.RGBA, zbuffer []float32, a, b, c vertex, col color.RGBA) {
	// sort by y, top to bottom
	if a.y > b.y {
		a, b = b, a
	}
	if b.y > c.y {
		b, c = c, b
	}
	if a.y > b.y {
		a, b = b, a
	}

	bounds := img.Bounds()
	width := bounds.Dx()
	// the long edge first so a span never collapses at the middle vertex
	edges := [3][2]vertex{{a, c}, {a, b}, {b, c}}

	yStart := int(math32.Ceil(max(0, a.y)))
	yEnd := int(math32.Floor(min(float32(bounds.Dy()-1), c.y)))
	for y := yStart; y <= yEnd; y++ {
		fy := float32(y)

		var xs, zs [2]float32
		found := 0
		for _, e := range edges {
			p, q := e[0], e[1]
			if p.y == q.y || fy < p.y || fy > q.y || found == 2 {
				continue
			}
			t := (fy - p.y) / (q.y - p.y)
			xs[found] = p.x + t*(q.x-p.x)
			zs[found] = p.z + t*(q.z-p.z)
			found++
		}
		if found < 2 {
			continue
		}
		if xs[0] > xs[1] {
			xs[0], xs[1] = xs[1], xs[0]
			zs[0], zs[1] = zs[1], zs[0]
		}

		xStart := int(math32.Ceil(max(0, xs[0])))
		xEnd := int(math32.Floor(min(float32(width-1), xs[1])))
		for x := xStart; x <= xEnd; x++ {
			t := float32(0)
			if xs[1] != xs[0] {
				t = (float32(x) - xs[0]) / (xs[1] - xs[0])
			}
			z := zs[0] + t*(zs[1]-zs[0])

			idx := y*width + x
			if z < zbuffer[idx] {
				zbuffer[idx] = z
				img.SetRGBA(bounds.Min.X+x, bounds.Min.Y+y, col)
			}
		}
	}
}
