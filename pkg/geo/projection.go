package geo

import (
	"github.com/paulmach/orb"

	"github.com/philipparndt/sceneforge/pkg/geometry"
	"github.com/philipparndt/sceneforge/pkg/mesh"
)

// Projection maps lon/lat onto the X/Z plane around the asset center.
// Latitude grows towards -Z.
type Projection struct {
	Center orb.Point
	Scale  float64
}

// NewProjection fits bound so its larger side spans sceneSize units
func NewProjection(bound orb.Bound, sceneSize float32) (Projection, error) {
	lonRange := bound.Right() - bound.Left()
	latRange := bound.Top() - bound.Bottom()
	extent := max(lonRange, latRange)
	if extent <= 0 {
		return Projection{}, mesh.Validationf("asset boundary has no extent")
	}
	return Projection{
		Center: bound.Center(),
		Scale:  float64(sceneSize) / extent,
	}, nil
}

// Project returns the planar position of p
func (pr Projection) Project(p orb.Point) geometry.Vector2 {
	return geometry.NewVector2(
		float32((p.Lon()-pr.Center.Lon())*pr.Scale),
		float32(-(p.Lat()-pr.Center.Lat())*pr.Scale),
	)
}

// ProjectRing projects a ring, dropping the closing vertex
func (pr Projection) ProjectRing(r orb.Ring) []geometry.Vector2 {
	n := len(r)
	if n > 1 && r.Closed() {
		n--
	}
	out := make([]geometry.Vector2, n)
	for i := 0; i < n; i++ {
		out[i] = pr.Project(r[i])
	}
	return out
}

// Centroid averages the ring vertices without the closing vertex
func Centroid(points []geometry.Vector2) geometry.Vector2 {
	var c geometry.Vector2
	if len(points) == 0 {
		return c
	}
	for _, p := range points {
		c.X += p.X
		c.Y += p.Y
	}
	n := float32(len(points))
	return geometry.NewVector2(c.X/n, c.Y/n)
}
