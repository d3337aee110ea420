// Package primitives generates simple meshes directly from parameters.
package primitives

import (
	"github.com/chewxy/math32"

	"github.com/philipparndt/sceneforge/pkg/geometry"
	"github.com/philipparndt/sceneforge/pkg/mesh"
)

// addOutward adds a flat triangle, flipping its winding when the face
// normal would point towards center
func addOutward(b *mesh.Builder, v0, v1, v2, center geometry.Vector3) {
	n := geometry.FaceNormal(v0, v1, v2)
	centroid := v0.Add(v1).Add(v2).Mul(1.0 / 3)
	if n.Dot(centroid.Sub(center)) < 0 {
		v1, v2 = v2, v1
	}
	b.AddTriangle(v0, v1, v2)
}

type face struct {
	normal, u, v geometry.Vector3
}

// boxFaces lists each side with u x v == normal so corners wind
// counter-clockwise seen from outside
var boxFaces = []face{
	{geometry.NewVector3(1, 0, 0), geometry.NewVector3(0, 0, -1), geometry.NewVector3(0, 1, 0)},
	{geometry.NewVector3(-1, 0, 0), geometry.NewVector3(0, 0, 1), geometry.NewVector3(0, 1, 0)},
	{geometry.NewVector3(0, 1, 0), geometry.NewVector3(1, 0, 0), geometry.NewVector3(0, 0, -1)},
	{geometry.NewVector3(0, -1, 0), geometry.NewVector3(1, 0, 0), geometry.NewVector3(0, 0, 1)},
	{geometry.NewVector3(0, 0, 1), geometry.NewVector3(1, 0, 0), geometry.NewVector3(0, 1, 0)},
	{geometry.NewVector3(0, 0, -1), geometry.NewVector3(-1, 0, 0), geometry.NewVector3(0, 1, 0)},
}

// Box returns an axis-aligned box centered on the origin. Each side has its
// own four vertices so normals stay flat, and UVs span [0,1] per side.
func Box(width, height, depth float32) *mesh.Geometry {
	half := geometry.NewVector3(width/2, height/2, depth/2)
	scale := func(v geometry.Vector3) geometry.Vector3 {
		return geometry.NewVector3(v.X*half.X, v.Y*half.Y, v.Z*half.Z)
	}

	b := mesh.NewBuilder(24)
	for _, f := range boxFaces {
		c := scale(f.normal)
		u := scale(f.u)
		v := scale(f.v)

		i0 := b.AddVertex(c.Sub(u).Sub(v), f.normal)
		b.AddUV(0, 1)
		b.AddVertex(c.Add(u).Sub(v), f.normal)
		b.AddUV(1, 1)
		b.AddVertex(c.Add(u).Add(v), f.normal)
		b.AddUV(1, 0)
		b.AddVertex(c.Sub(u).Add(v), f.normal)
		b.AddUV(0, 0)

		b.AddIndices(i0, i0+1, i0+2)
		b.AddIndices(i0, i0+2, i0+3)
	}
	return b.Build()
}

// ring returns n points on a horizontal circle at height y
func ring(n int, radius, y float32) []geometry.Vector3 {
	points := make([]geometry.Vector3, n)
	for k := range points {
		a := 2 * math32.Pi * float32(k) / float32(n)
		points[k] = geometry.NewVector3(radius*math32.Cos(a), y, -radius*math32.Sin(a))
	}
	return points
}

// Pyramid approximates a cone with the given number of sides. The base sits
// on y=0 and the apex at y=height.
func Pyramid(radius, height float32, sides int) *mesh.Geometry {
	sides = max(sides, 3)
	base := ring(sides, radius, 0)
	apex := geometry.NewVector3(0, height, 0)
	bottom := geometry.NewVector3(0, 0, 0)
	center := geometry.NewVector3(0, height/3, 0)

	b := mesh.NewBuilder(sides * 6)
	for k := range base {
		next := base[(k+1)%sides]
		addOutward(b, base[k], next, apex, center)
		addOutward(b, bottom, next, base[k], center)
	}
	return b.Build()
}

// Sphere builds a UV sphere from stacks (latitude rows) and sectors
// (longitude columns). Normals are position/radius.
func Sphere(radius float32, sectors, stacks int) *mesh.Geometry {
	sectors = max(sectors, 3)
	stacks = max(stacks, 2)

	b := mesh.NewBuilder((stacks + 1) * (sectors + 1))
	sectorStep := 2 * math32.Pi / float32(sectors)
	stackStep := math32.Pi / float32(stacks)

	for i := 0; i <= stacks; i++ {
		stackAngle := math32.Pi/2 - float32(i)*stackStep
		xz := radius * math32.Cos(stackAngle)
		y := radius * math32.Sin(stackAngle)

		for j := 0; j <= sectors; j++ {
			sectorAngle := float32(j) * sectorStep
			p := geometry.NewVector3(xz*math32.Cos(sectorAngle), y, -xz*math32.Sin(sectorAngle))
			b.AddVertex(p, p.Mul(1/radius))
			b.AddUV(1-float32(j)/float32(sectors), 1-float32(i)/float32(stacks))
		}
	}

	for i := 0; i < stacks; i++ {
		k1 := uint32(i * (sectors + 1))
		k2 := k1 + uint32(sectors+1)
		for j := 0; j < sectors; j++ {
			if i != 0 {
				b.AddIndices(k1, k2, k1+1)
			}
			if i != stacks-1 {
				b.AddIndices(k1+1, k2, k2+1)
			}
			k1++
			k2++
		}
	}
	return b.Build()
}

var (
	phi = (1 + math32.Sqrt(5)) / 2

	icosahedronVertices = [12][3]float32{
		{-1, phi, 0}, {1, phi, 0}, {-1, -phi, 0}, {1, -phi, 0},
		{0, -1, phi}, {0, 1, phi}, {0, -1, -phi}, {0, 1, -phi},
		{phi, 0, -1}, {phi, 0, 1}, {-phi, 0, -1}, {-phi, 0, 1},
	}

	icosahedronFaces = [20][3]int{
		{0, 11, 5}, {0, 5, 1}, {0, 1, 7}, {0, 7, 10}, {0, 10, 11},
		{1, 5, 9}, {5, 11, 4}, {11, 10, 2}, {10, 7, 6}, {7, 1, 8},
		{3, 9, 4}, {3, 4, 2}, {3, 2, 6}, {3, 6, 8}, {3, 8, 9},
		{4, 9, 5}, {2, 4, 11}, {6, 2, 10}, {8, 6, 7}, {9, 8, 1},
	}
)

// Icosahedron returns a flat shaded icosahedron with all corners at radius
func Icosahedron(radius float32) *mesh.Geometry {
	var verts [12]geometry.Vector3
	for i, v := range icosahedronVertices {
		verts[i] = geometry.NewVector3(v[0], v[1], v[2]).Normalize().Mul(radius)
	}

	b := mesh.NewBuilder(60)
	origin := geometry.Vector3{}
	for _, f := range icosahedronFaces {
		addOutward(b, verts[f[0]], verts[f[1]], verts[f[2]], origin)
	}
	return b.Build()
}

// Prism returns a closed prism with the given number of sides standing on
// y=0. Sides and caps carry their own face normals.
func Prism(radius, height float32, sides int) *mesh.Geometry {
	sides = max(sides, 3)
	bottom := ring(sides, radius, 0)
	top := ring(sides, radius, height)
	center := geometry.NewVector3(0, height/2, 0)
	bottomCenter := geometry.NewVector3(0, 0, 0)
	topCenter := geometry.NewVector3(0, height, 0)

	b := mesh.NewBuilder(sides * 12)
	for k := 0; k < sides; k++ {
		next := (k + 1) % sides
		addOutward(b, bottom[k], bottom[next], top[next], center)
		addOutward(b, bottom[k], top[next], top[k], center)
		addOutward(b, bottomCenter, bottom[next], bottom[k], center)
		addOutward(b, topCenter, top[k], top[next], center)
	}
	return b.Build()
}
