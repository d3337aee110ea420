// Package preview renders a flat shaded thumbnail of a shape list without
// a GPU.
package preview

import (
	"image"
	"image/color"

	"github.com/chewxy/math32"
	"golang.org/x/image/draw"

	"github.com/philipparndt/sceneforge/pkg/geometry"
	"github.com/philipparndt/sceneforge/pkg/mesh"
)

// Options controls the thumbnail
type Options struct {
	Size        int // output edge length in pixels
	Supersample int // render scale before downsampling
	Background  color.RGBA
	Pitch, Yaw  float32 // camera angles in radians
}

// DefaultOptions returns a 256px three-quarter view
func DefaultOptions() Options {
	return Options{
		Size:        256,
		Supersample: 2,
		Background:  color.RGBA{R: 40, G: 44, B: 52, A: 255},
		Pitch:       0.5,
		Yaw:         0.75,
	}
}

var (
	fallbackColor = [4]float32{0.8, 0.8, 0.8, 1}
	light         = geometry.NewVector3(0.4, 1, 0.6).Normalize()
)

const ambient = 0.3

// Render draws all shapes into a square image
func Render(shapes []mesh.Shape, opts Options) (*image.RGBA, error) {
	if opts.Size <= 0 {
		opts.Size = DefaultOptions().Size
	}
	opts.Supersample = max(opts.Supersample, 1)

	bbox := geometry.NewBoundingBox()
	triangles := 0
	for _, s := range shapes {
		if s.Geometry == nil || s.Geometry.IsEmpty() {
			continue
		}
		b := s.Bounds()
		bbox.Extend(b.Min)
		bbox.Extend(b.Max)
		triangles += s.Geometry.TriangleCount()
	}
	if triangles == 0 {
		return nil, mesh.Validationf("nothing to render")
	}

	size := opts.Size * opts.Supersample
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.Draw(img, img.Bounds(), image.NewUniform(opts.Background), image.Point{}, draw.Src)

	zbuffer := make([]float32, size*size)
	for i := range zbuffer {
		zbuffer[i] = math32.MaxFloat32
	}

	cam := NewCamera(bbox, opts.Pitch, opts.Yaw)
	for _, s := range shapes {
		if s.Geometry != nil {
			drawShape(img, zbuffer, cam, s)
		}
	}

	if opts.Supersample == 1 {
		return img, nil
	}
	out := image.NewRGBA(image.Rect(0, 0, opts.Size, opts.Size))
	draw.CatmullRom.Scale(out, out.Bounds(), img, img.Bounds(), draw.Src, nil)
	return out, nil
}

func drawShape(img *image.RGBA, zbuffer []float32, cam *Camera, s mesh.Shape) {
	g := s.Geometry
	w := float32(img.Bounds().Dx())
	h := float32(img.Bounds().Dy())
	forward := cam.Forward()

	for i := 0; i < g.TriangleCount(); i++ {
		var corners [3]vertex
		var world [3]geometry.Vector3
		for k := 0; k < 3; k++ {
			world[k] = s.Transform(geometry.Vector3At(g.Positions, int(g.Indices[i*3+k])))
			x, y, z := cam.Project(world[k], w, h)
			corners[k] = vertex{x, y, z}
		}

		n := geometry.FaceNormal(world[0], world[1], world[2])
		// double sided: light the side that faces the camera
		if n.Dot(forward) > 0 {
			n = n.Mul(-1)
		}
		shade := ambient + (1-ambient)*max(n.Dot(light), 0)
		fillTriangle(img, zbuffer, corners[0], corners[1], corners[2], shaded(triangleColor(s, i), shade))
	}
}

// triangleColor follows the serializer: shape color, then the imported
// part color, then vertex colors, then gray
func triangleColor(s mesh.Shape, tri int) [4]float32 {
	if s.Color != nil {
		return *s.Color
	}
	g := s.Geometry
	for _, sp := range g.SubPrimitives {
		if sp.BaseColor != nil && tri*3 >= sp.IndexOffset && tri*3 < sp.IndexOffset+sp.IndexCount {
			return *sp.BaseColor
		}
	}
	if g.HasColors() {
		var c [4]float32
		for k := 0; k < 3; k++ {
			v := int(g.Indices[tri*3+k])
			for ch := 0; ch < g.ColorSize; ch++ {
				c[ch] += g.Colors[v*g.ColorSize+ch]
			}
		}
		for ch := range c {
			c[ch] /= 3
		}
		if g.ColorSize == 3 {
			c[3] = 1
		}
		return c
	}
	return fallbackColor
}

func shaded(c [4]float32, shade float32) color.RGBA {
	channel := func(v float32) uint8 {
		return uint8(min(max(v*shade, 0), 1)*255 + 0.5)
	}
	return color.RGBA{R: channel(c[0]), G: channel(c[1]), B: channel(c[2]), A: 255}
}
