// Package obj imports Wavefront OBJ mesh text into a flat-shaded Geometry.
package obj

import (
	"bufio"
	"strconv"
	"strings"

	"github.com/philipparndt/sceneforge/pkg/geometry"
	"github.com/philipparndt/sceneforge/pkg/mesh"
	"github.com/philipparndt/sceneforge/pkg/mtl"
)

// NeutralGray is used for faces whose material has no diffuse color
const NeutralGray float32 = 0.7

// Stats counts what the parser read and what it dropped
type Stats struct {
	Vertices        int
	Faces           int
	Triangles       int
	SkippedFaces    int
	SkippedVertices int
}

type face struct {
	corners  []int // 0-based, unchecked
	material string
	line     int
}

// Parse imports mesh text, coloring faces from the optional material text
func Parse(meshText, materialText string) (*mesh.Geometry, error) {
	g, _, err := ParseWithStats(meshText, materialText)
	return g, err
}

// ParseWithStats is Parse that also reports skipped records
func ParseWithStats(meshText, materialText string) (*mesh.Geometry, Stats, error) {
	var stats Stats
	var positions []geometry.Vector3
	var valid []bool
	var faces []face
	material := ""

	scanner := bufio.NewScanner(strings.NewReader(meshText))
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "v":
			// a placeholder keeps later indices aligned
			p, ok := parseVertex(fields[1:])
			if !ok {
				stats.SkippedVertices++
			}
			positions = append(positions, p)
			valid = append(valid, ok)
		case "f":
			corners, ok := parseFace(fields[1:], len(positions))
			if !ok {
				stats.SkippedFaces++
				continue
			}
			faces = append(faces, face{corners: corners, material: material, line: lineNo})
		case "usemtl":
			material = strings.Join(fields[1:], " ")
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, stats, &mesh.ParseError{Format: "obj", Line: lineNo, Reason: "failed to read mesh text", Err: err}
	}

	stats.Vertices = len(positions) - stats.SkippedVertices
	if stats.Vertices == 0 {
		return nil, stats, &mesh.ParseError{Format: "obj", Reason: "no vertex positions found"}
	}

	lib, err := mtl.Parse(materialText)
	if err != nil {
		return nil, stats, err
	}
	colored := lib.HasColors()

	triangles := 0
	for _, f := range faces {
		triangles += len(f.corners) - 2
	}
	b := mesh.NewBuilder(triangles * 3)
	if colored {
		b.WithColors(3)
	}

	for _, f := range faces {
		if !usable(f.corners, valid) {
			stats.SkippedFaces++
			continue
		}
		color := [3]float32{NeutralGray, NeutralGray, NeutralGray}
		if c, ok := lib.Diffuse(f.material); ok {
			color = c
		}

		for _, tri := range geometry.FanTriangulate(len(f.corners)) {
			b.AddTriangle(
				positions[f.corners[tri[0]]],
				positions[f.corners[tri[1]]],
				positions[f.corners[tri[2]]],
			)
			if colored {
				for range 3 {
					b.AddColor(color[:]...)
				}
			}
			stats.Triangles++
		}
		stats.Faces++
	}

	return b.Build(), stats, nil
}

func parseVertex(fields []string) (geometry.Vector3, bool) {
	if len(fields) < 3 {
		return geometry.Vector3{}, false
	}
	var xyz [3]float32
	for i := 0; i < 3; i++ {
		v, err := strconv.ParseFloat(fields[i], 32)
		if err != nil {
			return geometry.Vector3{}, false
		}
		xyz[i] = float32(v)
	}
	return geometry.NewVector3(xyz[0], xyz[1], xyz[2]), true
}

// parseFace resolves the position part of each corner (v, v/vt, v//vn,
// v/vt/vn). Negative indices count back from the vertices read so far.
func parseFace(fields []string, vertexCount int) ([]int, bool) {
	if len(fields) < 3 {
		return nil, false
	}
	corners := make([]int, len(fields))
	for i, f := range fields {
		ref, _, _ := strings.Cut(f, "/")
		n, err := strconv.Atoi(ref)
		if err != nil || n == 0 {
			return nil, false
		}
		if n < 0 {
			corners[i] = vertexCount + n
		} else {
			corners[i] = n - 1
		}
	}
	return corners, true
}

// usable reports whether every corner names a vertex that parsed
func usable(corners []int, valid []bool) bool {
	for _, c := range corners {
		if c < 0 || c >= len(valid) || !valid[c] {
			return false
		}
	}
	return true
}
