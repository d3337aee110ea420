package scene

import (
	"fmt"

	"github.com/philipparndt/sceneforge/pkg/mesh"
	"github.com/philipparndt/sceneforge/pkg/texture"
)

// placement records where one shape's data lands inside the combined
// arrays, in elements (floats or indices)
type placement struct {
	position int
	normal   int
	color    int // -1 when the shape has no colors
	uv       int // -1 when the shape has no uvs
	index    int
}

// layout is the result of the sizing pass
type layout struct {
	positions int
	normals   int
	colors    int
	uvs       int
	indices   int
	wide      bool // indices need UNSIGNED_INT

	slots     []placement      // one per stored geometry
	geoms     []*mesh.Geometry // geometry stored in each slot
	shapeSlot []int            // slot used by each shape

	textures []string            // unique texture URIs in first-use order
	images   map[string]embedded // decoded payloads, binary form only
}

type embedded struct {
	mimeType string
	data     []byte
}

// plan validates every shape and sums the attribute lengths so the fill pass
// can allocate exact-size arrays. With instancing, shapes that point at the
// same Geometry share one slot.
func plan(shapes []mesh.Shape, binary, instancing bool) (*layout, error) {
	if len(shapes) == 0 {
		return nil, mesh.Validationf("no shapes to serialize")
	}

	l := &layout{shapeSlot: make([]int, len(shapes)), images: map[string]embedded{}}
	seen := map[string]bool{}
	stored := map[*mesh.Geometry]int{}
	for i, s := range shapes {
		g := s.Geometry
		if g == nil || g.IsEmpty() {
			return nil, mesh.Validationf("shape %d (%s) has no geometry", i, s.Name)
		}
		if slot, ok := stored[g]; ok && instancing {
			l.shapeSlot[i] = slot
			continue
		}
		if err := g.Validate(); err != nil {
			return nil, fmt.Errorf("shape %d (%s): %w", i, s.Name, err)
		}

		p := placement{position: l.positions, normal: l.normals, color: -1, uv: -1, index: l.indices}
		n := g.VertexCount()
		l.positions += n * 3
		l.normals += n * 3
		if g.HasColors() {
			p.color = l.colors
			l.colors += n * 4
		}
		if g.HasUVs() {
			p.uv = l.uvs
			l.uvs += n * 2
		}
		l.indices += len(g.Indices)
		if n > 0xFFFF {
			l.wide = true
		}
		l.shapeSlot[i] = len(l.slots)
		stored[g] = len(l.slots)
		l.slots = append(l.slots, p)
		l.geoms = append(l.geoms, g)

		for _, uri := range shapeTextures(g) {
			if seen[uri] {
				continue
			}
			seen[uri] = true
			l.textures = append(l.textures, uri)
			if binary {
				mimeType, data, err := texture.ParseDataURI(uri)
				if err != nil {
					return nil, fmt.Errorf("shape %d (%s): failed to embed texture: %w", i, s.Name, err)
				}
				l.images[uri] = embedded{mimeType: mimeType, data: data}
			}
		}
	}
	return l, nil
}

func shapeTextures(g *mesh.Geometry) []string {
	var uris []string
	if len(g.SubPrimitives) == 0 {
		if g.Texture != "" {
			uris = append(uris, g.Texture)
		}
		return uris
	}
	for _, sp := range g.SubPrimitives {
		if sp.Texture != "" {
			uris = append(uris, sp.Texture)
		}
	}
	return uris
}

func (l *layout) indexSize() int {
	if l.wide {
		return 4
	}
	return 2
}

func align4(n int) int {
	return (n + 3) &^ 3
}
