// Package glb reads and writes the binary glTF container framing.
package glb

import (
	"encoding/binary"

	"github.com/philipparndt/sceneforge/pkg/mesh"
)

const (
	Magic     uint32 = 0x46546C67 // "glTF"
	Version   uint32 = 2
	ChunkJSON uint32 = 0x4E4F534A // "JSON"
	ChunkBIN  uint32 = 0x004E4942 // "BIN\x00"

	headerSize      = 12
	chunkHeaderSize = 8
)

// Container holds the payloads of a decoded GLB file. Both slices alias the
// input buffer.
type Container struct {
	JSON []byte
	BIN  []byte
}

// Decode validates the header and chunk framing of data
func Decode(data []byte) (*Container, error) {
	if len(data) < headerSize {
		return nil, mesh.Formatf("file is %d bytes, shorter than the header", len(data))
	}
	le := binary.LittleEndian
	if magic := le.Uint32(data[0:4]); magic != Magic {
		return nil, mesh.Formatf("bad magic 0x%08x", magic)
	}
	if version := le.Uint32(data[4:8]); version != Version {
		return nil, mesh.Formatf("unsupported version %d", version)
	}
	total := le.Uint32(data[8:12])
	if int64(total) > int64(len(data)) || total < headerSize {
		return nil, mesh.Formatf("declared length %d does not fit %d bytes", total, len(data))
	}
	data = data[:total]

	c := &Container{}
	offset := headerSize
	first := true
	for offset+chunkHeaderSize <= len(data) {
		length := int(le.Uint32(data[offset:]))
		kind := le.Uint32(data[offset+4:])
		start := offset + chunkHeaderSize
		if length < 0 || start+length > len(data) {
			return nil, mesh.Formatf("chunk at offset %d overruns the file", offset)
		}
		payload := data[start : start+length]

		if first {
			if kind != ChunkJSON {
				return nil, mesh.Formatf("first chunk is 0x%08x, not JSON", kind)
			}
			c.JSON = payload
			first = false
		} else if kind == ChunkBIN && c.BIN == nil {
			c.BIN = payload
		}
		offset = start + pad4(length)
	}

	if first {
		return nil, mesh.Formatf("missing JSON chunk")
	}
	if c.BIN == nil {
		return nil, mesh.Formatf("missing BIN chunk")
	}
	return c, nil
}

// Encode frames a JSON document and binary payload. The JSON chunk is padded
// with spaces and the BIN chunk with zeros so both stay 4-byte aligned. The
// BIN chunk is omitted when bin is empty.
func Encode(jsonDoc, bin []byte) []byte {
	jsonLen := pad4(len(jsonDoc))
	binLen := pad4(len(bin))
	total := headerSize + chunkHeaderSize + jsonLen
	if len(bin) > 0 {
		total += chunkHeaderSize + binLen
	}

	out := make([]byte, total)
	le := binary.LittleEndian
	le.PutUint32(out[0:], Magic)
	le.PutUint32(out[4:], Version)
	le.PutUint32(out[8:], uint32(total))

	offset := headerSize
	le.PutUint32(out[offset:], uint32(jsonLen))
	le.PutUint32(out[offset+4:], ChunkJSON)
	offset += chunkHeaderSize
	copy(out[offset:], jsonDoc)
	for i := offset + len(jsonDoc); i < offset+jsonLen; i++ {
		out[i] = ' '
	}
	offset += jsonLen

	if len(bin) > 0 {
		le.PutUint32(out[offset:], uint32(binLen))
		le.PutUint32(out[offset+4:], ChunkBIN)
		offset += chunkHeaderSize
		copy(out[offset:], bin)
	}
	return out
}

func pad4(n int) int {
	return (n + 3) &^ 3
}
