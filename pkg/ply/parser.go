// Package ply imports ASCII PLY vertex/face text into a flat-shaded Geometry.
package ply

import (
	"bufio"
	"strconv"
	"strings"

	"github.com/philipparndt/sceneforge/pkg/geometry"
	"github.com/philipparndt/sceneforge/pkg/mesh"
)

// Stats counts what the parser read and what it dropped
type Stats struct {
	Vertices        int
	Faces           int
	Triangles       int
	SkippedVertices int
	SkippedFaces    int
}

// Shortest possible records: "0 0 0\n" and "3 0 1 2\n"
const (
	minVertexRecord = 6
	minFaceRecord   = 8
)

type header struct {
	vertexCount int
	faceCount   int
	properties  map[string]int // vertex property name -> column
	line        int            // lines consumed, including end_header
}

// Parse imports ASCII PLY text
func Parse(text string) (*mesh.Geometry, error) {
	g, _, err := ParseWithStats(text)
	return g, err
}

// ParseWithStats is Parse that also reports skipped records
func ParseWithStats(text string) (*mesh.Geometry, Stats, error) {
	var stats Stats

	scanner := bufio.NewScanner(strings.NewReader(text))
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)

	h, err := readHeader(scanner)
	if err != nil {
		return nil, stats, err
	}

	xi, xok := h.properties["x"]
	yi, yok := h.properties["y"]
	zi, zok := h.properties["z"]
	if !xok || !yok || !zok {
		return nil, stats, &mesh.ParseError{Format: "ply", Reason: "vertex element must declare x, y and z"}
	}
	ri, rok := h.properties["red"]
	gi, gok := h.properties["green"]
	bi, bok := h.properties["blue"]
	colored := rok && gok && bok

	// header counts are untrusted; a record needs at least a few bytes of text
	vertexHint := min(h.vertexCount, len(text)/minVertexRecord)
	positions := make([]geometry.Vector3, 0, vertexHint)
	colors := make([][3]float32, 0, vertexHint)
	valid := make([]bool, 0, vertexHint)
	line := h.line

	for len(positions) < h.vertexCount && scanner.Scan() {
		line++
		fields := strings.Fields(scanner.Text())
		values, ok := parseFloats(fields, len(h.properties))
		if !ok {
			stats.SkippedVertices++
			positions = append(positions, geometry.Vector3{})
			colors = append(colors, [3]float32{})
			valid = append(valid, false)
			continue
		}
		positions = append(positions, geometry.NewVector3(values[xi], values[yi], values[zi]))
		if colored {
			colors = append(colors, [3]float32{values[ri] / 255, values[gi] / 255, values[bi] / 255})
		} else {
			colors = append(colors, [3]float32{})
		}
		valid = append(valid, true)
	}
	if len(positions) < h.vertexCount {
		return nil, stats, &mesh.ParseError{Format: "ply", Line: line, Reason: "expected " + strconv.Itoa(h.vertexCount) + " vertex records"}
	}
	stats.Vertices = h.vertexCount - stats.SkippedVertices

	b := mesh.NewBuilder(min(h.faceCount, len(text)/minFaceRecord) * 3)
	if colored {
		b.WithColors(3)
	}

	for read := 0; read < h.faceCount && scanner.Scan(); read++ {
		line++
		corners, ok := parseFace(strings.Fields(scanner.Text()))
		if !ok || !usable(corners, valid) {
			stats.SkippedFaces++
			continue
		}
		for _, tri := range geometry.FanTriangulate(len(corners)) {
			a, c1, c2 := corners[tri[0]], corners[tri[1]], corners[tri[2]]
			b.AddTriangle(positions[a], positions[c1], positions[c2])
			if colored {
				b.AddColor(colors[a][:]...)
				b.AddColor(colors[c1][:]...)
				b.AddColor(colors[c2][:]...)
			}
			stats.Triangles++
		}
		stats.Faces++
	}
	if err := scanner.Err(); err != nil {
		return nil, stats, &mesh.ParseError{Format: "ply", Line: line, Reason: "failed to read body", Err: err}
	}

	return b.Build(), stats, nil
}

func readHeader(scanner *bufio.Scanner) (header, error) {
	h := header{properties: map[string]int{}}
	element := ""
	column := 0

	for scanner.Scan() {
		h.line++
		fields := strings.Fields(scanner.Text())
		if h.line == 1 {
			if len(fields) != 1 || fields[0] != "ply" {
				return h, &mesh.ParseError{Format: "ply", Line: 1, Reason: "missing ply magic"}
			}
			continue
		}
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "format":
			if len(fields) < 2 || fields[1] != "ascii" {
				return h, &mesh.ParseError{Format: "ply", Line: h.line, Reason: "only ascii format is supported"}
			}
		case "element":
			if len(fields) < 3 {
				return h, &mesh.ParseError{Format: "ply", Line: h.line, Reason: "malformed element record"}
			}
			n, err := strconv.Atoi(fields[2])
			if err != nil || n < 0 {
				return h, &mesh.ParseError{Format: "ply", Line: h.line, Reason: "invalid element count", Err: err}
			}
			element = fields[1]
			switch element {
			case "vertex":
				h.vertexCount = n
			case "face":
				h.faceCount = n
			}
		case "property":
			if element != "vertex" || len(fields) < 3 {
				continue
			}
			if fields[1] == "list" {
				return h, &mesh.ParseError{Format: "ply", Line: h.line, Reason: "list properties are not supported on vertices"}
			}
			h.properties[fields[len(fields)-1]] = column
			column++
		case "end_header":
			return h, nil
		}
	}
	if err := scanner.Err(); err != nil {
		return h, &mesh.ParseError{Format: "ply", Line: h.line, Reason: "failed to read header", Err: err}
	}
	if h.line == 0 {
		return h, &mesh.ParseError{Format: "ply", Reason: "missing ply magic"}
	}
	return h, &mesh.ParseError{Format: "ply", Line: h.line, Reason: "missing end_header"}
}

func parseFloats(fields []string, want int) ([]float32, bool) {
	if len(fields) < want {
		return nil, false
	}
	values := make([]float32, want)
	for i := 0; i < want; i++ {
		v, err := strconv.ParseFloat(fields[i], 32)
		if err != nil {
			return nil, false
		}
		values[i] = float32(v)
	}
	return values, true
}

// parseFace reads "n i0 i1 ... in-1"
func parseFace(fields []string) ([]int, bool) {
	if len(fields) < 1 {
		return nil, false
	}
	n, err := strconv.Atoi(fields[0])
	if err != nil || n < 3 || len(fields) < n+1 {
		return nil, false
	}
	corners := make([]int, n)
	for i := 0; i < n; i++ {
		c, err := strconv.Atoi(fields[i+1])
		if err != nil {
			return nil, false
		}
		corners[i] = c
	}
	return corners, true
}

func usable(corners []int, valid []bool) bool {
	for _, c := range corners {
		if c < 0 || c >= len(valid) || !valid[c] {
			return false
		}
	}
	return true
}
