// Package stl imports ASCII and binary STL meshes.
package stl

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/philipparndt/sceneforge/pkg/geometry"
	"github.com/philipparndt/sceneforge/pkg/mesh"
)

const (
	headerSize = 80
	facetSize  = 50
)

// facet mirrors one binary STL record
type facet struct {
	Normal     [3]float32
	V1, V2, V3 [3]float32
	Attribute  uint16
}

// Parse reads STL bytes and returns a Model.
// It automatically detects whether the data is ASCII or binary.
func Parse(data []byte) (*Model, error) {
	if isASCII(data) {
		return parseASCII(bytes.NewReader(data))
	}
	return parseBinary(bytes.NewReader(data))
}

// isASCII checks the "solid" prefix. Some exporters write binary files that
// start with "solid", so a size that matches the binary layout wins.
func isASCII(data []byte) bool {
	if !bytes.HasPrefix(data, []byte("solid")) {
		return false
	}
	if len(data) >= headerSize+4 {
		count := binary.LittleEndian.Uint32(data[headerSize:])
		if int64(headerSize+4)+int64(count)*facetSize == int64(len(data)) {
			return false
		}
	}
	return true
}

// parseASCII parses an ASCII STL stream
func parseASCII(reader io.Reader) (*Model, error) {
	scanner := bufio.NewScanner(reader)
	name := ""
	b := mesh.NewBuilder(0)

	var currentNormal geometry.Vector3
	var vertices []geometry.Vector3
	line := 0

	for scanner.Scan() {
		line++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "solid":
			if len(fields) > 1 {
				name = strings.Join(fields[1:], " ")
			}

		case "facet":
			currentNormal = geometry.Vector3{}
			if len(fields) >= 5 && fields[1] == "normal" {
				if n, ok := parseVector(fields[2:5]); ok {
					currentNormal = n
				}
			}

		case "vertex":
			v, ok := parseVector(fields[1:])
			if !ok {
				return nil, &mesh.ParseError{Format: "stl", Line: line, Reason: "malformed vertex"}
			}
			vertices = append(vertices, v)

		case "endfacet":
			if len(vertices) == 3 {
				addFacet(b, currentNormal, vertices[0], vertices[1], vertices[2])
			}
			vertices = vertices[:0]
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading ASCII STL: %w", err)
	}

	return NewModel(name, b.Build()), nil
}

// parseBinary parses a binary STL stream
func parseBinary(reader io.Reader) (*Model, error) {
	header := make([]byte, headerSize)
	if _, err := io.ReadFull(reader, header); err != nil {
		return nil, &mesh.ParseError{Format: "stl", Reason: "failed to read header", Err: err}
	}
	name := strings.TrimSpace(string(bytes.TrimRight(header, "\x00")))

	var triangleCount uint32
	if err := binary.Read(reader, binary.LittleEndian, &triangleCount); err != nil {
		return nil, &mesh.ParseError{Format: "stl", Reason: "failed to read triangle count", Err: err}
	}

	b := mesh.NewBuilder(int(min(triangleCount, 1<<24)) * 3)
	for i := uint32(0); i < triangleCount; i++ {
		var f facet
		if err := binary.Read(reader, binary.LittleEndian, &f); err != nil {
			return nil, &mesh.ParseError{Format: "stl", Reason: fmt.Sprintf("failed to read triangle %d", i), Err: err}
		}
		addFacet(b, toVector(f.Normal), toVector(f.V1), toVector(f.V2), toVector(f.V3))
	}

	return NewModel(name, b.Build()), nil
}

// addFacet keeps the stored normal unless it is missing
func addFacet(b *mesh.Builder, normal, v1, v2, v3 geometry.Vector3) {
	if normal.Length() == 0 {
		b.AddTriangle(v1, v2, v3)
		return
	}
	b.AddTriangleWithNormal(v1, v2, v3, normal.Normalize())
}

func parseVector(fields []string) (geometry.Vector3, bool) {
	if len(fields) < 3 {
		return geometry.Vector3{}, false
	}
	var xyz [3]float32
	for i := range xyz {
		v, err := strconv.ParseFloat(fields[i], 32)
		if err != nil {
			return geometry.Vector3{}, false
		}
		xyz[i] = float32(v)
	}
	return geometry.NewVector3(xyz[0], xyz[1], xyz[2]), true
}

func toVector(v [3]float32) geometry.Vector3 {
	return geometry.NewVector3(v[0], v[1], v[2])
}
