package geometry

import "github.com/chewxy/math32"

// Vector3 represents a 3D point or vector
type Vector3 struct {
	X, Y, Z float32
}

// NewVector3 creates a new 3D vector
func NewVector3(x, y, z float32) Vector3 {
	return Vector3{X: x, Y: y, Z: z}
}

// Vector3At reads the vector stored at element i of a flat xyz slice
func Vector3At(values []float32, i int) Vector3 {
	return Vector3{X: values[i*3], Y: values[i*3+1], Z: values[i*3+2]}
}

// Add returns the sum of two vectors
func (v Vector3) Add(other Vector3) Vector3 {
	return Vector3{
		X: v.X + other.X,
		Y: v.Y + other.Y,
		Z: v.Z + other.Z,
	}
}

// Sub returns the difference between two vectors
func (v Vector3) Sub(other Vector3) Vector3 {
	return Vector3{
		X: v.X - other.X,
		Y: v.Y - other.Y,
		Z: v.Z - other.Z,
	}
}

// Mul multiplies the vector by a scalar
func (v Vector3) Mul(scalar float32) Vector3 {
	return Vector3{
		X: v.X * scalar,
		Y: v.Y * scalar,
		Z: v.Z * scalar,
	}
}

// Dot returns the dot product of two vectors
func (v Vector3) Dot(other Vector3) float32 {
	return v.X*other.X + v.Y*other.Y + v.Z*other.Z
}

// Cross returns the cross product of two vectors
func (v Vector3) Cross(other Vector3) Vector3 {
	return Vector3{
		X: v.Y*other.Z - v.Z*other.Y,
		Y: v.Z*other.X - v.X*other.Z,
		Z: v.X*other.Y - v.Y*other.X,
	}
}

// Length returns the magnitude of the vector
func (v Vector3) Length() float32 {
	return math32.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// Distance returns the distance between two points
func (v Vector3) Distance(other Vector3) float32 {
	return v.Sub(other).Length()
}

// Normalize returns a unit vector in the same direction.
// The zero vector stays zero.
func (v Vector3) Normalize() Vector3 {
	length := v.Length()
	if length == 0 {
		return Vector3{}
	}
	return v.Mul(1.0 / length)
}

// Min returns a vector with the minimum components of two vectors
func (v Vector3) Min(other Vector3) Vector3 {
	return Vector3{
		X: math32.Min(v.X, other.X),
		Y: math32.Min(v.Y, other.Y),
		Z: math32.Min(v.Z, other.Z),
	}
}

// Max returns a vector with the maximum components of two vectors
func (v Vector3) Max(other Vector3) Vector3 {
	return Vector3{
		X: math32.Max(v.X, other.X),
		Y: math32.Max(v.Y, other.Y),
		Z: math32.Max(v.Z, other.Z),
	}
}

// Array returns the components as an array, the layout used by glTF
func (v Vector3) Array() [3]float32 {
	return [3]float32{v.X, v.Y, v.Z}
}

// Vector2 is a point on the ground plane
type Vector2 struct {
	X, Y float32
}

// NewVector2 creates a new 2D vector
func NewVector2(x, y float32) Vector2 {
	return Vector2{X: x, Y: y}
}

// Sub returns the difference between two vectors
func (v Vector2) Sub(other Vector2) Vector2 {
	return Vector2{X: v.X - other.X, Y: v.Y - other.Y}
}

// Cross returns the z component of the 3D cross product
func (v Vector2) Cross(other Vector2) float32 {
	return v.X*other.Y - v.Y*other.X
}
