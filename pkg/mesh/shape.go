package mesh

import (
	"github.com/chewxy/math32"

	"github.com/philipparndt/sceneforge/pkg/geometry"
)

// Quat is a unit rotation quaternion in glTF order (x, y, z, w)
type Quat struct {
	X, Y, Z, W float32
}

// IdentityQuat returns the rotation that does nothing
func IdentityQuat() Quat {
	return Quat{W: 1}
}

// QuatFromAxisAngle builds a rotation of angle radians around axis
func QuatFromAxisAngle(axis geometry.Vector3, angle float32) Quat {
	a := axis.Normalize()
	s := math32.Sin(angle / 2)
	return Quat{X: a.X * s, Y: a.Y * s, Z: a.Z * s, W: math32.Cos(angle / 2)}
}

// YawQuat rotates around the vertical Y axis
func YawQuat(rad float32) Quat {
	return QuatFromAxisAngle(geometry.NewVector3(0, 1, 0), rad)
}

// Array returns the components in glTF order
func (q Quat) Array() [4]float32 {
	return [4]float32{q.X, q.Y, q.Z, q.W}
}

// Rotate applies the rotation to v
func (q Quat) Rotate(v geometry.Vector3) geometry.Vector3 {
	u := geometry.NewVector3(q.X, q.Y, q.Z)
	t := u.Cross(v).Mul(2)
	return v.Add(t.Mul(q.W)).Add(u.Cross(t))
}

// Shape places a shared Geometry in the scene
type Shape struct {
	Geometry    *Geometry
	Translation [3]float32
	Rotation    *Quat
	Scale       *[3]float32
	Color       *[4]float32 // flat color override
	Name        string
}

// NewShape creates an untransformed shape
func NewShape(name string, g *Geometry) Shape {
	return Shape{Geometry: g, Name: name}
}

// At returns a copy of the shape translated to (x, y, z)
func (s Shape) At(x, y, z float32) Shape {
	s.Translation = [3]float32{x, y, z}
	return s
}

// WithColor returns a copy of the shape with a flat color override
func (s Shape) WithColor(c [4]float32) Shape {
	s.Color = &c
	return s
}

// Transform maps a local point to scene space (scale, then rotate, then translate)
func (s Shape) Transform(p geometry.Vector3) geometry.Vector3 {
	if s.Scale != nil {
		p = geometry.NewVector3(p.X*s.Scale[0], p.Y*s.Scale[1], p.Z*s.Scale[2])
	}
	if s.Rotation != nil {
		p = s.Rotation.Rotate(p)
	}
	return p.Add(geometry.NewVector3(s.Translation[0], s.Translation[1], s.Translation[2]))
}

// TransformNormal rotates a normal into scene space
func (s Shape) TransformNormal(n geometry.Vector3) geometry.Vector3 {
	if s.Rotation != nil {
		n = s.Rotation.Rotate(n)
	}
	return n
}

// Bounds returns the scene space bounding box of the shape
func (s Shape) Bounds() geometry.BoundingBox {
	bbox := geometry.NewBoundingBox()
	if s.Geometry == nil {
		return bbox
	}
	for i := 0; i < s.Geometry.VertexCount(); i++ {
		bbox.Extend(s.Transform(geometry.Vector3At(s.Geometry.Positions, i)))
	}
	return bbox
}
