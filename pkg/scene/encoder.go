// Package scene serializes positioned shapes into one glTF 2.0 asset.
package scene

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"

	"github.com/qmuntal/gltf"

	"github.com/philipparndt/sceneforge/pkg/geometry"
	"github.com/philipparndt/sceneforge/pkg/glb"
	"github.com/philipparndt/sceneforge/pkg/mesh"
	"github.com/philipparndt/sceneforge/pkg/texture"
	"github.com/philipparndt/sceneforge/version"
)

// Options controls the serializer
type Options struct {
	Generator string // asset.generator

	// Instancing stores a Geometry shared by several shapes once and lets
	// their nodes reference the same mesh when they also look the same.
	Instancing bool
}

// DefaultOptions returns the options used by EncodeGLTF and EncodeGLB
func DefaultOptions() Options {
	return Options{Generator: "sceneforge " + version.Version}
}

// Encoder turns shape lists into glTF or GLB bytes
type Encoder struct {
	opts Options
}

// NewEncoder creates an encoder
func NewEncoder(opts Options) *Encoder {
	if opts.Generator == "" {
		opts.Generator = DefaultOptions().Generator
	}
	return &Encoder{opts: opts}
}

// EncodeGLTF serializes shapes with default options as a .gltf document
func EncodeGLTF(shapes []mesh.Shape) ([]byte, error) {
	return NewEncoder(DefaultOptions()).EncodeGLTF(shapes)
}

// EncodeGLB serializes shapes with default options as a .glb container
func EncodeGLB(shapes []mesh.Shape) ([]byte, error) {
	return NewEncoder(DefaultOptions()).EncodeGLB(shapes)
}

// EncodeGLTF returns a JSON document whose single buffer is a base64 data URI
func (e *Encoder) EncodeGLTF(shapes []mesh.Shape) ([]byte, error) {
	doc, bin, err := e.build(shapes, false)
	if err != nil {
		return nil, err
	}
	doc.Buffers[0].URI = texture.DataURI("application/octet-stream", bin)

	out, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal document: %w", err)
	}
	return out, nil
}

// EncodeGLB returns a binary container holding the document and its buffer
func (e *Encoder) EncodeGLB(shapes []mesh.Shape) ([]byte, error) {
	doc, bin, err := e.build(shapes, true)
	if err != nil {
		return nil, err
	}

	jsonDoc, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal document: %w", err)
	}
	return glb.Encode(jsonDoc, bin), nil
}

// builder holds the state of one serialization call
type builder struct {
	doc        *gltf.Document
	layout     *layout
	materials  map[string]uint32
	textures   map[string]uint32
	imageViews map[string]uint32 // texture URI -> buffer view, binary form only
	slotAttrs  map[int]map[string]uint32
	meshes     map[string]uint32

	positions []float32
	normals   []float32
	colors    []float32
	uvs       []float32
	indices   []uint32

	// buffer view indices, -1 when absent
	positionView, normalView, colorView, uvView, indexView int
}

func (e *Encoder) build(shapes []mesh.Shape, binaryForm bool) (*gltf.Document, []byte, error) {
	l, err := plan(shapes, binaryForm, e.opts.Instancing)
	if err != nil {
		return nil, nil, err
	}

	doc := gltf.NewDocument()
	doc.Asset.Generator = e.opts.Generator

	b := &builder{
		doc:        doc,
		layout:     l,
		materials:  map[string]uint32{},
		textures:   map[string]uint32{},
		imageViews: map[string]uint32{},
		slotAttrs:  map[int]map[string]uint32{},
		meshes:     map[string]uint32{},
		positions:  make([]float32, 0, l.positions),
		normals:    make([]float32, 0, l.normals),
		colors:     make([]float32, 0, l.colors),
		uvs:        make([]float32, 0, l.uvs),
		indices:    make([]uint32, 0, l.indices),
	}

	for _, g := range l.geoms {
		b.fill(g)
	}
	bin := b.pack()

	for i, s := range shapes {
		b.addShape(i, s)
	}
	return doc, bin, nil
}

// fill appends one geometry to the combined arrays
func (b *builder) fill(g *mesh.Geometry) {
	b.positions = append(b.positions, g.Positions...)
	b.normals = append(b.normals, g.Normals...)
	if g.HasColors() {
		if g.ColorSize == 4 {
			b.colors = append(b.colors, g.Colors...)
		} else {
			for i := 0; i < g.VertexCount(); i++ {
				b.colors = append(b.colors, g.Colors[i*3], g.Colors[i*3+1], g.Colors[i*3+2], 1)
			}
		}
	}
	if g.HasUVs() {
		b.uvs = append(b.uvs, g.UVs...)
	}
	b.indices = append(b.indices, g.Indices...)
}

// pack writes the combined arrays into one little-endian buffer and creates
// a buffer view per attribute kind, each starting 4-byte aligned
func (b *builder) pack() []byte {
	l := b.layout
	size := 4 * (len(b.positions) + len(b.normals) + len(b.colors) + len(b.uvs))
	size += align4(len(b.indices) * l.indexSize())
	for _, uri := range l.textures {
		if img, ok := l.images[uri]; ok {
			size += align4(len(img.data))
		}
	}

	buf := make([]byte, size)
	offset := 0
	b.positionView = b.writeFloats(buf, &offset, b.positions, gltf.TargetArrayBuffer)
	b.normalView = b.writeFloats(buf, &offset, b.normals, gltf.TargetArrayBuffer)
	b.colorView = b.writeFloats(buf, &offset, b.colors, gltf.TargetArrayBuffer)
	b.uvView = b.writeFloats(buf, &offset, b.uvs, gltf.TargetArrayBuffer)

	b.indexView = -1
	if len(b.indices) > 0 {
		start := offset
		le := binary.LittleEndian
		for _, idx := range b.indices {
			if l.wide {
				le.PutUint32(buf[offset:], idx)
				offset += 4
			} else {
				le.PutUint16(buf[offset:], uint16(idx))
				offset += 2
			}
		}
		b.indexView = b.addView(start, offset-start, gltf.TargetElementArrayBuffer)
		offset = align4(offset)
	}

	for _, uri := range l.textures {
		img, ok := l.images[uri]
		if !ok {
			continue
		}
		copy(buf[offset:], img.data)
		b.imageViews[uri] = uint32(b.addView(offset, len(img.data), gltf.TargetNone))
		offset += align4(len(img.data))
	}

	b.doc.Buffers = []*gltf.Buffer{{ByteLength: uint32(len(buf))}}
	return buf
}

func (b *builder) writeFloats(buf []byte, offset *int, values []float32, target gltf.Target) int {
	if len(values) == 0 {
		return -1
	}
	start := *offset
	for _, v := range values {
		binary.LittleEndian.PutUint32(buf[*offset:], math.Float32bits(v))
		*offset += 4
	}
	return b.addView(start, *offset-start, target)
}

func (b *builder) addView(offset, length int, target gltf.Target) int {
	b.doc.BufferViews = append(b.doc.BufferViews, &gltf.BufferView{
		Buffer:     0,
		ByteOffset: uint32(offset),
		ByteLength: uint32(length),
		Target:     target,
	})
	return len(b.doc.BufferViews) - 1
}

func (b *builder) addAccessor(acc *gltf.Accessor) uint32 {
	b.doc.Accessors = append(b.doc.Accessors, acc)
	return uint32(len(b.doc.Accessors) - 1)
}

// attributes returns the vertex accessors of a slot, creating them once
func (b *builder) attributes(slot int) map[string]uint32 {
	if attrs, ok := b.slotAttrs[slot]; ok {
		return attrs
	}
	g := b.layout.geoms[slot]
	p := b.layout.slots[slot]
	n := uint32(g.VertexCount())

	bounds := geometry.BoundsOf(g.Positions)
	attrs := map[string]uint32{
		gltf.POSITION: b.addAccessor(&gltf.Accessor{
			BufferView:    gltf.Index(uint32(b.positionView)),
			ByteOffset:    uint32(p.position * 4),
			ComponentType: gltf.ComponentFloat,
			Count:         n,
			Type:          gltf.AccessorVec3,
			Min:           []float32{bounds.Min.X, bounds.Min.Y, bounds.Min.Z},
			Max:           []float32{bounds.Max.X, bounds.Max.Y, bounds.Max.Z},
		}),
		gltf.NORMAL: b.addAccessor(&gltf.Accessor{
			BufferView:    gltf.Index(uint32(b.normalView)),
			ByteOffset:    uint32(p.normal * 4),
			ComponentType: gltf.ComponentFloat,
			Count:         n,
			Type:          gltf.AccessorVec3,
		}),
	}
	if p.color >= 0 {
		attrs[gltf.COLOR_0] = b.addAccessor(&gltf.Accessor{
			BufferView:    gltf.Index(uint32(b.colorView)),
			ByteOffset:    uint32(p.color * 4),
			ComponentType: gltf.ComponentFloat,
			Count:         n,
			Type:          gltf.AccessorVec4,
		})
	}
	if p.uv >= 0 {
		attrs[gltf.TEXCOORD_0] = b.addAccessor(&gltf.Accessor{
			BufferView:    gltf.Index(uint32(b.uvView)),
			ByteOffset:    uint32(p.uv * 4),
			ComponentType: gltf.ComponentFloat,
			Count:         n,
			Type:          gltf.AccessorVec2,
		})
	}
	b.slotAttrs[slot] = attrs
	return attrs
}

// meshFor returns the mesh for shape s stored in slot, reusing an existing one
// when the slot and every primitive look match
func (b *builder) meshFor(slot int, s mesh.Shape) uint32 {
	g := s.Geometry
	var looks []look
	var subs []*mesh.SubPrimitive
	if len(g.SubPrimitives) == 0 {
		looks = append(looks, resolveLook(s, nil))
		subs = append(subs, nil)
	} else {
		for j := range g.SubPrimitives {
			sp := &g.SubPrimitives[j]
			if sp.IndexCount == 0 {
				continue
			}
			looks = append(looks, resolveLook(s, sp))
			subs = append(subs, sp)
		}
	}

	key := fmt.Sprint(slot)
	for _, l := range looks {
		key += "|" + l.key()
	}
	if idx, ok := b.meshes[key]; ok {
		return idx
	}

	attrs := b.attributes(slot)
	first := b.layout.slots[slot].index
	m := &gltf.Mesh{Name: s.Name}
	for j, sp := range subs {
		offset, count := 0, len(g.Indices)
		if sp != nil {
			offset, count = sp.IndexOffset, sp.IndexCount
		}
		m.Primitives = append(m.Primitives, &gltf.Primitive{
			Attributes: attrs,
			Indices:    gltf.Index(b.indexAccessor(first+offset, count)),
			Material:   gltf.Index(b.material(looks[j])),
		})
	}

	idx := uint32(len(b.doc.Meshes))
	b.doc.Meshes = append(b.doc.Meshes, m)
	b.meshes[key] = idx
	return idx
}

// addShape creates the node of shape i
func (b *builder) addShape(i int, s mesh.Shape) {
	node := &gltf.Node{
		Name:        s.Name,
		Mesh:        gltf.Index(b.meshFor(b.layout.shapeSlot[i], s)),
		Translation: s.Translation,
		Rotation:    [4]float32{0, 0, 0, 1},
		Scale:       [3]float32{1, 1, 1},
	}
	if s.Rotation != nil {
		node.Rotation = s.Rotation.Array()
	}
	if s.Scale != nil {
		node.Scale = *s.Scale
	}
	nodeIdx := uint32(len(b.doc.Nodes))
	b.doc.Nodes = append(b.doc.Nodes, node)
	b.doc.Scenes[0].Nodes = append(b.doc.Scenes[0].Nodes, nodeIdx)
}

// indexAccessor covers count indices starting at element first of the
// combined index array
func (b *builder) indexAccessor(first, count int) uint32 {
	ct := gltf.ComponentUshort
	if b.layout.wide {
		ct = gltf.ComponentUint
	}
	return b.addAccessor(&gltf.Accessor{
		BufferView:    gltf.Index(uint32(b.indexView)),
		ByteOffset:    uint32(first * b.layout.indexSize()),
		ComponentType: ct,
		Count:         uint32(count),
		Type:          gltf.AccessorScalar,
	})
}
