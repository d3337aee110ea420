package geo

import (
	"math/rand/v2"

	"github.com/chewxy/math32"

	"github.com/philipparndt/sceneforge/pkg/geometry"
)

// Scale band applied to scattered instances
const (
	MinScatterScale float32 = 0.8
	MaxScatterScale float32 = 1.2
)

// Placement is one scattered instance on the ground plane
type Placement struct {
	Position geometry.Vector2
	Yaw      float32 // radians in [0, 2pi)
	Scale    float32
}

// NewRand returns the deterministic source used for scattering
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9E3779B97F4A7C15))
}

// ScatterCount is the number of instances for a triangle
func ScatterCount(t geometry.Triangle2D, density float32) int {
	return int(math32.Floor(t.Area() * density))
}

// Scatter places floor(area*density) instances uniformly inside t
func Scatter(t geometry.Triangle2D, density float32, rng *rand.Rand) []Placement {
	n := ScatterCount(t, density)
	out := make([]Placement, n)
	for i := range out {
		r1, r2 := rng.Float32(), rng.Float32()
		out[i] = Placement{
			Position: t.Sample(r1, r2),
			Yaw:      rng.Float32() * 2 * math32.Pi,
			Scale:    MinScatterScale + rng.Float32()*(MaxScatterScale-MinScatterScale),
		}
	}
	return out
}
