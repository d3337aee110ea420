package geometry

import "github.com/chewxy/math32"

// BoundingBox represents an axis-aligned bounding box
type BoundingBox struct {
	Min Vector3
	Max Vector3
}

// NewBoundingBox creates an empty bounding box that any point will extend
func NewBoundingBox() BoundingBox {
	return BoundingBox{
		Min: Vector3{X: math32.MaxFloat32, Y: math32.MaxFloat32, Z: math32.MaxFloat32},
		Max: Vector3{X: -math32.MaxFloat32, Y: -math32.MaxFloat32, Z: -math32.MaxFloat32},
	}
}

// BoundsOf returns the bounds of a flat xyz position slice
func BoundsOf(positions []float32) BoundingBox {
	bbox := NewBoundingBox()
	for i := 0; i+2 < len(positions); i += 3 {
		bbox.Extend(Vector3{X: positions[i], Y: positions[i+1], Z: positions[i+2]})
	}
	return bbox
}

// Extend expands the bounding box to include a point
func (b *BoundingBox) Extend(point Vector3) {
	b.Min = b.Min.Min(point)
	b.Max = b.Max.Max(point)
}

// IsEmpty reports whether no point has been added
func (b BoundingBox) IsEmpty() bool {
	return b.Min.X > b.Max.X
}

// Size returns the dimensions of the bounding box
func (b BoundingBox) Size() Vector3 {
	return b.Max.Sub(b.Min)
}

// Center returns the center point of the bounding box
func (b BoundingBox) Center() Vector3 {
	return Vector3{
		X: (b.Min.X + b.Max.X) / 2.0,
		Y: (b.Min.Y + b.Max.Y) / 2.0,
		Z: (b.Min.Z + b.Max.Z) / 2.0,
	}
}

// Diagonal returns the length of the bounding box diagonal
func (b BoundingBox) Diagonal() float32 {
	return b.Size().Length()
}

// Volume returns the volume of the bounding box
func (b BoundingBox) Volume() float32 {
	size := b.Size()
	return size.X * size.Y * size.Z
}
