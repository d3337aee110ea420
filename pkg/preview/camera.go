package preview

import (
	"github.com/chewxy/math32"

	"github.com/philipparndt/sceneforge/pkg/geometry"
)

// Camera orbits a target point
type Camera struct {
	Position geometry.Vector3
	Target   geometry.Vector3
	Up       geometry.Vector3
	FOV      float32 // vertical field of view in radians
	Distance float32
	Pitch    float32 // rotation around X, positive looks down
	Yaw      float32 // rotation around Y
}

// NewCamera creates a camera that frames bbox from the given angles
func NewCamera(bbox geometry.BoundingBox, pitch, yaw float32) *Camera {
	size := bbox.Size()
	fov := math32.Pi / 4
	radius := max(size.Length()/2, 0.001)

	c := &Camera{
		Target:   bbox.Center(),
		Up:       geometry.NewVector3(0, 1, 0),
		FOV:      fov,
		Distance: radius / math32.Sin(fov/2) * 1.05,
	}
	c.Rotate(pitch, yaw)
	return c
}

// UpdatePosition places the camera on its orbit
func (c *Camera) UpdatePosition() {
	x := c.Distance * math32.Cos(c.Pitch) * math32.Sin(c.Yaw)
	y := c.Distance * math32.Sin(c.Pitch)
	z := c.Distance * math32.Cos(c.Pitch) * math32.Cos(c.Yaw)
	c.Position = c.Target.Add(geometry.NewVector3(x, y, z))
}

// Rotate changes the orbit angles. Pitch stays short of the poles.
func (c *Camera) Rotate(deltaPitch, deltaYaw float32) {
	limit := math32.Pi/2 - 0.1
	c.Pitch = min(max(c.Pitch+deltaPitch, -limit), limit)
	c.Yaw += deltaYaw
	c.UpdatePosition()
}

// Zoom scales the orbit distance by 1+delta
func (c *Camera) Zoom(delta float32) {
	c.Distance = max(c.Distance*(1+delta), 0.1)
	c.UpdatePosition()
}

// Forward returns the unit view direction
func (c *Camera) Forward() geometry.Vector3 {
	return c.Target.Sub(c.Position).Normalize()
}

// Project maps a scene point to pixel coordinates and view depth
func (c *Camera) Project(point geometry.Vector3, width, height float32) (float32, float32, float32) {
	forward := c.Forward()
	right := forward.Cross(c.Up).Normalize()
	up := right.Cross(forward).Normalize()

	relative := point.Sub(c.Position)
	x := relative.Dot(right)
	y := relative.Dot(up)
	z := max(relative.Dot(forward), 0.01)

	aspect := width / height
	fovScale := math32.Tan(c.FOV / 2)

	screenX := (x/(z*fovScale*aspect))*(width/2) + width/2
	screenY := (-y/(z*fovScale))*(height/2) + height/2
	return screenX, screenY, z
}
