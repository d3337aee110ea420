package scene

import (
	"fmt"

	"github.com/qmuntal/gltf"

	"github.com/philipparndt/sceneforge/pkg/mesh"
)

// DefaultColor is used when a shape carries no color information
var DefaultColor = [4]float32{0.8, 0.8, 0.8, 1}

// look describes the appearance of one primitive
type look struct {
	color       [4]float32
	texture     string
	vertexColor bool
}

// key identifies materials with identical content
func (l look) key() string {
	switch {
	case l.texture != "":
		return fmt.Sprintf("texture|%s|%v", l.texture, l.color)
	case l.vertexColor:
		return "vertex-color"
	default:
		return fmt.Sprintf("color|%v", l.color)
	}
}

// resolveLook picks the appearance of a shape, or of one of its
// sub-primitives when sp is set. Texture wins over an explicit shape color,
// which wins over the sub-primitive base color, then vertex colors.
func resolveLook(s mesh.Shape, sp *mesh.SubPrimitive) look {
	l := look{color: DefaultColor}
	tex := s.Geometry.Texture
	if sp != nil {
		tex = sp.Texture
	}

	switch {
	case s.Color != nil:
		l.color = *s.Color
	case sp != nil && sp.BaseColor != nil:
		l.color = *sp.BaseColor
	case tex != "":
		l.color = [4]float32{1, 1, 1, 1}
	case s.Geometry.HasColors():
		l.color = [4]float32{1, 1, 1, 1}
		l.vertexColor = true
	}
	l.texture = tex
	return l
}

// material returns the index of a material matching l, creating it on
// first use
func (b *builder) material(l look) uint32 {
	k := l.key()
	if idx, ok := b.materials[k]; ok {
		return idx
	}

	color := l.color
	pbr := &gltf.PBRMetallicRoughness{
		BaseColorFactor: &color,
		MetallicFactor:  gltf.Float(0),
		RoughnessFactor: gltf.Float(1),
	}
	if l.texture != "" {
		pbr.BaseColorTexture = &gltf.TextureInfo{Index: b.texture(l.texture)}
	}

	m := &gltf.Material{
		Name:                 fmt.Sprintf("material_%d", len(b.doc.Materials)),
		PBRMetallicRoughness: pbr,
		DoubleSided:          true,
		AlphaMode:            gltf.AlphaOpaque,
	}
	if color[3] < 1 {
		m.AlphaMode = gltf.AlphaBlend
	}

	idx := uint32(len(b.doc.Materials))
	b.doc.Materials = append(b.doc.Materials, m)
	b.materials[k] = idx
	return idx
}

// texture returns the glTF texture index for an image URI
func (b *builder) texture(uri string) uint32 {
	if idx, ok := b.textures[uri]; ok {
		return idx
	}
	if len(b.doc.Samplers) == 0 {
		// repeat wrapping so terrain tiling works
		b.doc.Samplers = append(b.doc.Samplers, &gltf.Sampler{})
	}

	img := &gltf.Image{}
	if view, ok := b.imageViews[uri]; ok {
		img.BufferView = gltf.Index(view)
		img.MimeType = b.layout.images[uri].mimeType
	} else {
		img.URI = uri
	}
	imgIdx := uint32(len(b.doc.Images))
	b.doc.Images = append(b.doc.Images, img)

	idx := uint32(len(b.doc.Textures))
	b.doc.Textures = append(b.doc.Textures, &gltf.Texture{
		Sampler: gltf.Index(0),
		Source:  gltf.Index(imgIdx),
	})
	b.textures[uri] = idx
	return idx
}
