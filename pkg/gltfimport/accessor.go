package gltfimport

import (
	"encoding/binary"
	"math"

	"github.com/qmuntal/gltf"

	"github.com/philipparndt/sceneforge/pkg/mesh"
)

// componentSize returns the byte width of one component
func componentSize(ct gltf.ComponentType) int {
	switch ct {
	case gltf.ComponentByte, gltf.ComponentUbyte:
		return 1
	case gltf.ComponentShort, gltf.ComponentUshort:
		return 2
	case gltf.ComponentUint, gltf.ComponentFloat:
		return 4
	}
	return 0
}

// componentCount returns the number of components per element
func componentCount(t gltf.AccessorType) int {
	switch t {
	case gltf.AccessorScalar:
		return 1
	case gltf.AccessorVec2:
		return 2
	case gltf.AccessorVec3:
		return 3
	case gltf.AccessorVec4, gltf.AccessorMat2:
		return 4
	case gltf.AccessorMat3:
		return 9
	case gltf.AccessorMat4:
		return 16
	}
	return 0
}

// maxZeroFill bounds accessors without a buffer view when the BIN chunk is
// smaller than this
const maxZeroFill = 1 << 20

// view is an accessor resolved to tightly packed little-endian bytes
type view struct {
	data       []byte
	count      int
	components int
	ctype      gltf.ComponentType
	normalized bool
}

// resolve returns the packed bytes of accessor idx. Tightly packed data is
// sliced from bin; strided data is copied element by element.
func resolve(doc *gltf.Document, bin []byte, idx uint32) (*view, error) {
	if int(idx) >= len(doc.Accessors) {
		return nil, mesh.Formatf("accessor %d does not exist", idx)
	}
	acc := doc.Accessors[idx]
	size := componentSize(acc.ComponentType)
	comps := componentCount(acc.Type)
	if size == 0 || comps == 0 {
		return nil, mesh.Formatf("accessor %d has unsupported type %v/%v", idx, acc.ComponentType, acc.Type)
	}

	elem := size * comps
	count := int(acc.Count)
	v := &view{count: count, components: comps, ctype: acc.ComponentType, normalized: acc.Normalized}

	if acc.BufferView == nil {
		// no buffer view means all zeros
		if count*elem > max(len(bin), maxZeroFill) {
			return nil, mesh.Formatf("accessor %d has %d elements but no buffer view", idx, count)
		}
		v.data = make([]byte, count*elem)
		return v, nil
	}
	if int(*acc.BufferView) >= len(doc.BufferViews) {
		return nil, mesh.Formatf("accessor %d references missing buffer view %d", idx, *acc.BufferView)
	}
	bv := doc.BufferViews[*acc.BufferView]

	stride := int(bv.ByteStride)
	if stride == 0 {
		stride = elem
	}
	if stride < elem {
		return nil, mesh.Formatf("buffer view %d stride %d is smaller than element size %d", *acc.BufferView, stride, elem)
	}

	start := int(bv.ByteOffset) + int(acc.ByteOffset)
	viewEnd := int(bv.ByteOffset) + int(bv.ByteLength)
	if viewEnd > len(bin) {
		return nil, mesh.Formatf("buffer view %d ends at %d, beyond the %d byte BIN chunk", *acc.BufferView, viewEnd, len(bin))
	}
	if count == 0 {
		return v, nil
	}
	if end := start + (count-1)*stride + elem; end > viewEnd {
		return nil, mesh.Formatf("accessor %d reads past the end of buffer view %d", idx, *acc.BufferView)
	}

	if stride == elem {
		v.data = bin[start : start+count*elem]
		return v, nil
	}
	v.data = make([]byte, count*elem)
	for i := 0; i < count; i++ {
		src := start + i*stride
		copy(v.data[i*elem:(i+1)*elem], bin[src:src+elem])
	}
	return v, nil
}

// component reads component i as a float. When normalize is set, integer
// components are mapped to [0,1] (unsigned) or [-1,1] (signed).
func (v *view) component(i int, normalize bool) float32 {
	le := binary.LittleEndian
	switch v.ctype {
	case gltf.ComponentFloat:
		return math.Float32frombits(le.Uint32(v.data[i*4:]))
	case gltf.ComponentUbyte:
		x := float32(v.data[i])
		if normalize {
			return x / math.MaxUint8
		}
		return x
	case gltf.ComponentByte:
		x := float32(int8(v.data[i]))
		if normalize {
			return max(x/math.MaxInt8, -1)
		}
		return x
	case gltf.ComponentUshort:
		x := float32(le.Uint16(v.data[i*2:]))
		if normalize {
			return x / math.MaxUint16
		}
		return x
	case gltf.ComponentShort:
		x := float32(int16(le.Uint16(v.data[i*2:])))
		if normalize {
			return max(x/math.MaxInt16, -1)
		}
		return x
	case gltf.ComponentUint:
		x := le.Uint32(v.data[i*4:])
		if normalize {
			return float32(float64(x) / math.MaxUint32)
		}
		return float32(x)
	}
	return 0
}

// floats decodes every component. Integer data is normalized when the
// accessor says so or when force is set.
func (v *view) floats(force bool) []float32 {
	n := v.count * v.components
	out := make([]float32, n)
	normalize := force || v.normalized
	for i := 0; i < n; i++ {
		out[i] = v.component(i, normalize)
	}
	return out
}

// uints decodes scalar index data
func (v *view) uints() ([]uint32, error) {
	le := binary.LittleEndian
	out := make([]uint32, v.count)
	switch v.ctype {
	case gltf.ComponentUbyte:
		for i := range out {
			out[i] = uint32(v.data[i])
		}
	case gltf.ComponentUshort:
		for i := range out {
			out[i] = uint32(le.Uint16(v.data[i*2:]))
		}
	case gltf.ComponentUint:
		for i := range out {
			out[i] = le.Uint32(v.data[i*4:])
		}
	default:
		return nil, mesh.Formatf("index component type %v is not unsigned", v.ctype)
	}
	return out, nil
}
