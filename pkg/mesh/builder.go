package mesh

import "github.com/philipparndt/sceneforge/pkg/geometry"

// Builder accumulates vertices and triangles for a new Geometry
type Builder struct {
	positions []float32
	normals   []float32
	colors    []float32
	uvs       []float32
	indices   []uint32
	colorSize int
	texture   string
	subs      []SubPrimitive
}

// NewBuilder creates a builder sized for the given number of vertices
func NewBuilder(vertexHint int) *Builder {
	if vertexHint < 0 {
		vertexHint = 0
	}
	return &Builder{
		positions: make([]float32, 0, vertexHint*3),
		normals:   make([]float32, 0, vertexHint*3),
		indices:   make([]uint32, 0, vertexHint),
	}
}

// WithColors enables per-vertex colors of the given width (3 or 4)
func (b *Builder) WithColors(size int) *Builder {
	b.colorSize = size
	return b
}

// WithTexture attaches an image data URI to the geometry
func (b *Builder) WithTexture(uri string) *Builder {
	b.texture = uri
	return b
}

// ColorSize returns the configured color width, 0 when colors are disabled
func (b *Builder) ColorSize() int {
	return b.colorSize
}

// VertexCount returns the number of vertices added so far
func (b *Builder) VertexCount() int {
	return len(b.positions) / 3
}

// IndexCount returns the number of indices added so far
func (b *Builder) IndexCount() int {
	return len(b.indices)
}

// AddVertex appends a vertex and returns its index
func (b *Builder) AddVertex(p, n geometry.Vector3) uint32 {
	idx := uint32(b.VertexCount())
	b.positions = append(b.positions, p.X, p.Y, p.Z)
	b.normals = append(b.normals, n.X, n.Y, n.Z)
	return idx
}

// AddUV appends texture coordinates for the most recent vertex
func (b *Builder) AddUV(u, v float32) {
	b.uvs = append(b.uvs, u, v)
}

// AddColor appends a color for the most recent vertex. Only the first
// ColorSize channels are used; a missing alpha becomes 1.
func (b *Builder) AddColor(c ...float32) {
	for i := 0; i < b.colorSize; i++ {
		switch {
		case i < len(c):
			b.colors = append(b.colors, c[i])
		case i == 3:
			b.colors = append(b.colors, 1)
		default:
			b.colors = append(b.colors, 0)
		}
	}
}

// AddIndices appends one indexed triangle
func (b *Builder) AddIndices(i0, i1, i2 uint32) {
	b.indices = append(b.indices, i0, i1, i2)
}

// AddTriangle de-indexes a triangle into three fresh vertices that share the
// flat face normal. It returns the index of the first new vertex.
func (b *Builder) AddTriangle(v0, v1, v2 geometry.Vector3) uint32 {
	n := geometry.FaceNormal(v0, v1, v2)
	first := b.AddVertex(v0, n)
	b.AddVertex(v1, n)
	b.AddVertex(v2, n)
	b.AddIndices(first, first+1, first+2)
	return first
}

// AddTriangleWithNormal is AddTriangle with a caller supplied normal
func (b *Builder) AddTriangleWithNormal(v0, v1, v2, n geometry.Vector3) uint32 {
	first := b.AddVertex(v0, n)
	b.AddVertex(v1, n)
	b.AddVertex(v2, n)
	b.AddIndices(first, first+1, first+2)
	return first
}

// AddSubPrimitive records a material run over the indices added so far
func (b *Builder) AddSubPrimitive(sp SubPrimitive) {
	b.subs = append(b.subs, sp)
}

// Build returns the finished geometry. The builder must not be used after.
func (b *Builder) Build() *Geometry {
	g := &Geometry{
		Positions:     b.positions,
		Normals:       b.normals,
		Indices:       b.indices,
		UVs:           b.uvs,
		Texture:       b.texture,
		SubPrimitives: b.subs,
	}
	if b.colorSize > 0 && len(b.colors) > 0 {
		g.Colors = b.colors
		g.ColorSize = b.colorSize
	}
	return g
}
