package scene

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/qmuntal/gltf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/philipparndt/sceneforge/pkg/glb"
	"github.com/philipparndt/sceneforge/pkg/mesh"
	"github.com/philipparndt/sceneforge/pkg/primitives"
	"github.com/philipparndt/sceneforge/pkg/texture"
)

func decodeGLB(t *testing.T, data []byte) (*gltf.Document, []byte) {
	t.Helper()
	c, err := glb.Decode(data)
	require.NoError(t, err)
	var doc gltf.Document
	require.NoError(t, json.Unmarshal(c.JSON, &doc))
	return &doc, c.BIN
}

func colored(g *mesh.Geometry, r, gr, b float32) mesh.Shape {
	return mesh.NewShape("shape", g).WithColor([4]float32{r, gr, b, 1})
}

func TestEncodeDistinctColors(t *testing.T) {
	box := primitives.Box(1, 1, 1)
	ico := primitives.Icosahedron(1)
	pyr := primitives.Pyramid(1, 1, 5)
	box.UVs = nil

	shapes := []mesh.Shape{
		colored(box, 1, 0, 0).At(-2, 0, 0),
		colored(ico, 0, 1, 0),
		colored(pyr, 0, 0, 1).At(2, 0, 0),
	}
	data, err := EncodeGLB(shapes)
	require.NoError(t, err)
	doc, _ := decodeGLB(t, data)

	require.Len(t, doc.Materials, 3)
	require.Len(t, doc.Meshes, 3)
	used := map[uint32]int{}
	for _, m := range doc.Meshes {
		require.Len(t, m.Primitives, 1)
		used[*m.Primitives[0].Material]++
	}
	assert.Equal(t, map[uint32]int{0: 1, 1: 1, 2: 1}, used)

	vertices := box.VertexCount() + ico.VertexCount() + pyr.VertexCount()
	indices := len(box.Indices) + len(ico.Indices) + len(pyr.Indices)
	require.Len(t, doc.BufferViews, 3)
	assert.Equal(t, uint32(vertices*12), doc.BufferViews[0].ByteLength)
	assert.Equal(t, uint32(vertices*12), doc.BufferViews[1].ByteLength)
	assert.Equal(t, uint32(indices*2), doc.BufferViews[2].ByteLength)
	for _, bv := range doc.BufferViews {
		assert.Zero(t, bv.ByteOffset%4)
	}

	require.Len(t, doc.Nodes, 3)
	assert.Equal(t, [3]float32{-2, 0, 0}, doc.Nodes[0].Translation)
	assert.Equal(t, []uint32{0, 1, 2}, doc.Scenes[0].Nodes)
}

func TestEncodeDeduplicatesMaterials(t *testing.T) {
	box := primitives.Box(1, 1, 1)
	shapes := []mesh.Shape{
		colored(box, 1, 0, 0),
		colored(box, 1, 0, 0).At(3, 0, 0),
		colored(box, 0, 0, 1).At(6, 0, 0),
	}
	data, err := EncodeGLB(shapes)
	require.NoError(t, err)
	doc, _ := decodeGLB(t, data)

	assert.Len(t, doc.Materials, 2)
	assert.Len(t, doc.Meshes, 3)
	assert.Equal(t, *doc.Meshes[0].Primitives[0].Material, *doc.Meshes[1].Primitives[0].Material)
}

func TestEncodeInstancing(t *testing.T) {
	box := primitives.Box(1, 1, 1)
	shapes := []mesh.Shape{
		colored(box, 1, 0, 0),
		colored(box, 1, 0, 0).At(3, 0, 0),
		colored(box, 0, 0, 1).At(6, 0, 0),
	}
	data, err := NewEncoder(Options{Instancing: true}).EncodeGLB(shapes)
	require.NoError(t, err)
	doc, _ := decodeGLB(t, data)

	assert.Len(t, doc.Nodes, 3)
	assert.Len(t, doc.Meshes, 2)
	assert.Equal(t, uint32(box.VertexCount()*12), doc.BufferViews[0].ByteLength)
	assert.Equal(t, *doc.Nodes[0].Mesh, *doc.Nodes[1].Mesh)
}

func TestEncodeAccessorBounds(t *testing.T) {
	data, err := EncodeGLB([]mesh.Shape{
		mesh.NewShape("a", primitives.Box(2, 2, 2)),
		mesh.NewShape("b", primitives.Box(4, 6, 8)),
	})
	require.NoError(t, err)
	doc, _ := decodeGLB(t, data)

	pos := doc.Accessors[doc.Meshes[1].Primitives[0].Attributes[gltf.POSITION]]
	assert.Equal(t, []float32{-2, -3, -4}, pos.Min)
	assert.Equal(t, []float32{2, 3, 4}, pos.Max)
	assert.Equal(t, uint32(24*12), pos.ByteOffset)
}

func TestEncodeVertexColorsAsVec4(t *testing.T) {
	b := mesh.NewBuilder(3).WithColors(3)
	b.AddTriangle(vec(0, 0, 0), vec(1, 0, 0), vec(0, 1, 0))
	for range 3 {
		b.AddColor(0.5, 0.5, 0.5)
	}
	data, err := EncodeGLB([]mesh.Shape{mesh.NewShape("tri", b.Build())})
	require.NoError(t, err)
	doc, bin := decodeGLB(t, data)

	attrs := doc.Meshes[0].Primitives[0].Attributes
	col := doc.Accessors[attrs[gltf.COLOR_0]]
	assert.Equal(t, gltf.AccessorVec4, col.Type)
	assert.Equal(t, gltf.ComponentFloat, col.ComponentType)

	view := doc.BufferViews[*col.BufferView]
	assert.Equal(t, uint32(3*16), view.ByteLength)
	alpha := binary.LittleEndian.Uint32(bin[view.ByteOffset+12:])
	assert.Equal(t, uint32(0x3F800000), alpha)

	require.Len(t, doc.Materials, 1)
	assert.Equal(t, "vertex-color", resolveLook(mesh.NewShape("", b.Build()), nil).key())
}

func TestEncodeWideIndices(t *testing.T) {
	b := mesh.NewBuilder(70000)
	for i := 0; i < 70000/3; i++ {
		x := float32(i)
		b.AddTriangle(vec(x, 0, 0), vec(x+1, 0, 0), vec(x, 1, 0))
	}
	data, err := EncodeGLB([]mesh.Shape{mesh.NewShape("big", b.Build())})
	require.NoError(t, err)
	doc, _ := decodeGLB(t, data)

	idx := doc.Accessors[*doc.Meshes[0].Primitives[0].Indices]
	assert.Equal(t, gltf.ComponentUint, idx.ComponentType)
}

func TestEncodeSubPrimitives(t *testing.T) {
	b := mesh.NewBuilder(6)
	b.AddTriangle(vec(0, 0, 0), vec(1, 0, 0), vec(0, 1, 0))
	b.AddTriangle(vec(0, 0, 1), vec(1, 0, 1), vec(0, 1, 1))
	red := [4]float32{1, 0, 0, 1}
	b.AddSubPrimitive(mesh.SubPrimitive{IndexOffset: 0, IndexCount: 3, BaseColor: &red})
	b.AddSubPrimitive(mesh.SubPrimitive{IndexOffset: 3, IndexCount: 3})

	data, err := EncodeGLB([]mesh.Shape{
		mesh.NewShape("first", primitives.Box(1, 1, 1)),
		mesh.NewShape("parts", b.Build()),
	})
	require.NoError(t, err)
	doc, _ := decodeGLB(t, data)

	prims := doc.Meshes[1].Primitives
	require.Len(t, prims, 2)
	first := doc.Accessors[*prims[0].Indices]
	second := doc.Accessors[*prims[1].Indices]
	// box indices come first in the shared index view
	assert.Equal(t, uint32(36*2), first.ByteOffset)
	assert.Equal(t, uint32(39*2), second.ByteOffset)
	assert.Equal(t, uint32(3), second.Count)
	assert.NotEqual(t, *prims[0].Material, *prims[1].Material)
}

func TestEncodeTextures(t *testing.T) {
	uri := texture.DataURI(texture.MimePNG, []byte{1, 2, 3, 4, 5})
	box := primitives.Box(1, 1, 1)
	box.Texture = uri

	data, err := EncodeGLB([]mesh.Shape{mesh.NewShape("a", box), mesh.NewShape("b", box)})
	require.NoError(t, err)
	doc, bin := decodeGLB(t, data)

	require.Len(t, doc.Images, 1)
	img := doc.Images[0]
	require.NotNil(t, img.BufferView)
	assert.Equal(t, texture.MimePNG, img.MimeType)
	view := doc.BufferViews[*img.BufferView]
	assert.Equal(t, []byte{1, 2, 3, 4, 5}, bin[view.ByteOffset:view.ByteOffset+view.ByteLength])
	assert.Len(t, doc.Materials, 1)

	text, err := EncodeGLTF([]mesh.Shape{mesh.NewShape("a", box)})
	require.NoError(t, err)
	var tdoc gltf.Document
	require.NoError(t, json.Unmarshal(text, &tdoc))
	require.Len(t, tdoc.Images, 1)
	assert.Equal(t, uri, tdoc.Images[0].URI)
}

func TestEncodeGLTFDataURI(t *testing.T) {
	text, err := NewEncoder(Options{Generator: "test"}).EncodeGLTF([]mesh.Shape{mesh.NewShape("box", primitives.Box(1, 1, 1))})
	require.NoError(t, err)

	var doc gltf.Document
	require.NoError(t, json.Unmarshal(text, &doc))
	assert.Equal(t, "test", doc.Asset.Generator)
	require.Len(t, doc.Buffers, 1)
	assert.True(t, strings.HasPrefix(doc.Buffers[0].URI, "data:application/octet-stream;base64,"))

	_, payload, err := texture.ParseDataURI(doc.Buffers[0].URI)
	require.NoError(t, err)
	assert.Equal(t, int(doc.Buffers[0].ByteLength), len(payload))
}

func TestEncodeRejectsBadInput(t *testing.T) {
	tests := []struct {
		name   string
		shapes []mesh.Shape
	}{
		{"no shapes", nil},
		{"nil geometry", []mesh.Shape{{Name: "x"}}},
		{"empty geometry", []mesh.Shape{mesh.NewShape("x", &mesh.Geometry{})}},
		{"invalid geometry", []mesh.Shape{mesh.NewShape("x", &mesh.Geometry{
			Positions: make([]float32, 9), Normals: make([]float32, 9), Indices: []uint32{0, 1, 5},
		})}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := EncodeGLB(tt.shapes)
			assert.Nil(t, out)
			var verr *mesh.ValidationError
			assert.True(t, errors.As(err, &verr))
		})
	}
}
