// Package gltfimport merges the first mesh of a GLB container into one
// Geometry.
package gltfimport

import (
	"encoding/json"

	"github.com/qmuntal/gltf"

	"github.com/philipparndt/sceneforge/pkg/geometry"
	"github.com/philipparndt/sceneforge/pkg/glb"
	"github.com/philipparndt/sceneforge/pkg/mesh"
	"github.com/philipparndt/sceneforge/pkg/texture"
)

// part is one primitive decoded into local buffers
type part struct {
	positions []float32
	normals   []float32
	colors    []float32 // always RGBA
	uvs       []float32
	indices   []uint32
	texture   string
	baseColor *[4]float32
}

func (p *part) vertexCount() int {
	return len(p.positions) / 3
}

// Import decodes a GLB container and merges every primitive of its first
// mesh. Each primitive becomes one SubPrimitive of the result.
func Import(data []byte) (*mesh.Geometry, error) {
	return decode(data, false)
}

// ImportAll is Import over every mesh of the document, in order. Node
// transforms are not applied.
func ImportAll(data []byte) (*mesh.Geometry, error) {
	return decode(data, true)
}

func decode(data []byte, allMeshes bool) (*mesh.Geometry, error) {
	c, err := glb.Decode(data)
	if err != nil {
		return nil, err
	}

	var doc gltf.Document
	if err := json.Unmarshal(c.JSON, &doc); err != nil {
		return nil, &mesh.FormatError{Reason: "failed to decode JSON chunk", Err: err}
	}
	if len(doc.Meshes) == 0 || doc.Meshes[0] == nil {
		return nil, mesh.Formatf("document has no mesh")
	}
	meshes := doc.Meshes[:1]
	if allMeshes {
		meshes = doc.Meshes
	}

	var parts []*part
	for _, m := range meshes {
		if m == nil {
			continue
		}
		for _, prim := range m.Primitives {
			if prim == nil {
				continue
			}
			if _, ok := prim.Attributes[gltf.POSITION]; !ok || !isTriangles(prim.Mode) {
				continue
			}
			p, err := readPrimitive(&doc, c.BIN, prim)
			if err != nil {
				return nil, err
			}
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return nil, mesh.Formatf("no primitive has positions")
	}

	return merge(parts), nil
}

func readPrimitive(doc *gltf.Document, bin []byte, prim *gltf.Primitive) (*part, error) {
	p := &part{}

	pos, err := resolve(doc, bin, prim.Attributes[gltf.POSITION])
	if err != nil {
		return nil, err
	}
	if pos.components != 3 {
		return nil, mesh.Formatf("POSITION must be VEC3")
	}
	p.positions = pos.floats(false)
	n := p.vertexCount()

	if idx, ok := prim.Attributes[gltf.NORMAL]; ok {
		nrm, err := resolve(doc, bin, idx)
		if err != nil {
			return nil, err
		}
		if nrm.components == 3 && nrm.count == n {
			p.normals = nrm.floats(false)
		}
	}

	if idx, ok := prim.Attributes[gltf.COLOR_0]; ok {
		col, err := resolve(doc, bin, idx)
		if err != nil {
			return nil, err
		}
		if (col.components == 3 || col.components == 4) && col.count == n {
			p.colors = toRGBA(col.floats(true), col.components)
		}
	}

	if idx, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
		uv, err := resolve(doc, bin, idx)
		if err != nil {
			return nil, err
		}
		if uv.components == 2 && uv.count == n {
			p.uvs = uv.floats(true)
		}
	}

	if prim.Indices != nil {
		iv, err := resolve(doc, bin, *prim.Indices)
		if err != nil {
			return nil, err
		}
		raw, err := iv.uints()
		if err != nil {
			return nil, err
		}
		p.indices = validTriangles(triangleList(prim.Mode, raw), n)
	} else {
		seq := make([]uint32, n)
		for i := range seq {
			seq[i] = uint32(i)
		}
		p.indices = validTriangles(triangleList(prim.Mode, seq), n)
	}

	if prim.Material != nil {
		resolveMaterial(doc, bin, *prim.Material, p)
	}

	if p.normals == nil {
		deindex(p)
	}
	return p, nil
}

func isTriangles(mode gltf.PrimitiveMode) bool {
	switch mode {
	case gltf.PrimitiveTriangles, gltf.PrimitiveTriangleStrip, gltf.PrimitiveTriangleFan:
		return true
	}
	return false
}

// triangleList expands strip and fan indices into a triangle list. Strips
// flip every other triangle to keep the winding.
func triangleList(mode gltf.PrimitiveMode, raw []uint32) []uint32 {
	if len(raw) < 3 {
		return raw[:0]
	}
	switch mode {
	case gltf.PrimitiveTriangleStrip:
		out := make([]uint32, 0, (len(raw)-2)*3)
		for i := 2; i < len(raw); i++ {
			if i%2 == 0 {
				out = append(out, raw[i-2], raw[i-1], raw[i])
			} else {
				out = append(out, raw[i-1], raw[i-2], raw[i])
			}
		}
		return out
	case gltf.PrimitiveTriangleFan:
		out := make([]uint32, 0, (len(raw)-2)*3)
		for i := 2; i < len(raw); i++ {
			out = append(out, raw[0], raw[i-1], raw[i])
		}
		return out
	}
	return raw
}

// validTriangles drops a trailing partial triangle and any triangle that
// references a vertex outside the primitive.
func validTriangles(raw []uint32, vertexCount int) []uint32 {
	out := make([]uint32, 0, len(raw)-len(raw)%3)
	for i := 0; i+2 < len(raw); i += 3 {
		a, b, c := raw[i], raw[i+1], raw[i+2]
		if int(a) >= vertexCount || int(b) >= vertexCount || int(c) >= vertexCount {
			continue
		}
		out = append(out, a, b, c)
	}
	return out
}

func toRGBA(values []float32, components int) []float32 {
	if components == 4 {
		return values
	}
	n := len(values) / 3
	out := make([]float32, 0, n*4)
	for i := 0; i < n; i++ {
		out = append(out, values[i*3], values[i*3+1], values[i*3+2], 1)
	}
	return out
}

func resolveMaterial(doc *gltf.Document, bin []byte, idx uint32, p *part) {
	if int(idx) >= len(doc.Materials) || doc.Materials[idx] == nil {
		return
	}
	pbr := doc.Materials[idx].PBRMetallicRoughness
	if pbr == nil {
		return
	}
	if pbr.BaseColorFactor != nil {
		c := *pbr.BaseColorFactor
		p.baseColor = &c
	}
	if pbr.BaseColorTexture != nil {
		p.texture = imageURI(doc, bin, pbr.BaseColorTexture.Index)
	}
}

// imageURI re-encodes the image behind texture idx as a data URI. Images
// that cannot be resolved are dropped.
func imageURI(doc *gltf.Document, bin []byte, idx uint32) string {
	if int(idx) >= len(doc.Textures) || doc.Textures[idx] == nil || doc.Textures[idx].Source == nil {
		return ""
	}
	src := *doc.Textures[idx].Source
	if int(src) >= len(doc.Images) || doc.Images[src] == nil {
		return ""
	}
	img := doc.Images[src]

	if img.BufferView == nil {
		if texture.IsDataURI(img.URI) {
			return img.URI
		}
		return ""
	}
	if int(*img.BufferView) >= len(doc.BufferViews) {
		return ""
	}
	bv := doc.BufferViews[*img.BufferView]
	start, end := int(bv.ByteOffset), int(bv.ByteOffset)+int(bv.ByteLength)
	if end > len(bin) {
		return ""
	}
	mimeType := img.MimeType
	if mimeType == "" {
		mimeType = texture.MimePNG
	}
	return texture.DataURI(mimeType, bin[start:end])
}

// deindex expands an indexed primitive without normals into independent
// triangles carrying flat face normals.
func deindex(p *part) {
	triCount := len(p.indices) / 3
	positions := make([]float32, 0, triCount*9)
	normals := make([]float32, 0, triCount*9)
	var colors, uvs []float32
	if p.colors != nil {
		colors = make([]float32, 0, triCount*12)
	}
	if p.uvs != nil {
		uvs = make([]float32, 0, triCount*6)
	}

	for t := 0; t < triCount; t++ {
		corners := p.indices[t*3 : t*3+3]
		v0 := geometry.Vector3At(p.positions, int(corners[0]))
		v1 := geometry.Vector3At(p.positions, int(corners[1]))
		v2 := geometry.Vector3At(p.positions, int(corners[2]))
		n := geometry.FaceNormal(v0, v1, v2)
		for _, c := range corners {
			i := int(c)
			positions = append(positions, p.positions[i*3:i*3+3]...)
			normals = append(normals, n.X, n.Y, n.Z)
			if colors != nil {
				colors = append(colors, p.colors[i*4:i*4+4]...)
			}
			if uvs != nil {
				uvs = append(uvs, p.uvs[i*2:i*2+2]...)
			}
		}
	}

	p.positions, p.normals, p.colors, p.uvs = positions, normals, colors, uvs
	p.indices = make([]uint32, triCount*3)
	for i := range p.indices {
		p.indices[i] = uint32(i)
	}
}

// merge concatenates parts, re-basing each part's indices by the number of
// vertices that precede it
func merge(parts []*part) *mesh.Geometry {
	var vertices, indices int
	withColors, withUVs := false, false
	for _, p := range parts {
		vertices += p.vertexCount()
		indices += len(p.indices)
		withColors = withColors || p.colors != nil
		withUVs = withUVs || p.uvs != nil
	}

	g := &mesh.Geometry{
		Positions:     make([]float32, 0, vertices*3),
		Normals:       make([]float32, 0, vertices*3),
		Indices:       make([]uint32, 0, indices),
		SubPrimitives: make([]mesh.SubPrimitive, 0, len(parts)),
	}
	if withColors {
		g.Colors = make([]float32, 0, vertices*4)
		g.ColorSize = 4
	}
	if withUVs {
		g.UVs = make([]float32, 0, vertices*2)
	}

	for _, p := range parts {
		base := uint32(g.VertexCount())
		offset := len(g.Indices)

		g.Positions = append(g.Positions, p.positions...)
		g.Normals = append(g.Normals, p.normals...)
		for _, idx := range p.indices {
			g.Indices = append(g.Indices, base+idx)
		}

		if withColors {
			if p.colors != nil {
				g.Colors = append(g.Colors, p.colors...)
			} else {
				for range p.vertexCount() {
					g.Colors = append(g.Colors, 1, 1, 1, 1)
				}
			}
		}
		if withUVs {
			if p.uvs != nil {
				g.UVs = append(g.UVs, p.uvs...)
			} else {
				g.UVs = append(g.UVs, make([]float32, p.vertexCount()*2)...)
			}
		}

		g.SubPrimitives = append(g.SubPrimitives, mesh.SubPrimitive{
			IndexOffset: offset,
			IndexCount:  len(p.indices),
			Texture:     p.texture,
			BaseColor:   p.baseColor,
		})
	}
	return g
}
