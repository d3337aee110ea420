package ply

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/philipparndt/sceneforge/pkg/geometry"
	"github.com/philipparndt/sceneforge/pkg/mesh"
)

const coloredQuad = `ply
format ascii 1.0
comment made by hand
element vertex 4
property float x
property float y
property float z
property uchar red
property uchar green
property uchar blue
element face 1
property list uchar int vertex_indices
end_header
0 0 0 255 0 0
1 0 0 0 255 0
1 1 0 0 0 255
0 1 0 255 255 255
4 0 1 2 3
`

func TestParseColoredQuad(t *testing.T) {
	g, stats, err := ParseWithStats(coloredQuad)
	require.NoError(t, err)
	require.NoError(t, g.Validate())

	assert.Equal(t, 2, g.TriangleCount())
	assert.Equal(t, 6, g.VertexCount())
	assert.Equal(t, 3, g.ColorSize)
	assert.Equal(t, 4, stats.Vertices)
	assert.Equal(t, 1, stats.Faces)

	// corners 0,1,2 then 0,2,3 copied from their source vertices
	assert.Equal(t, []float32{1, 0, 0, 0, 1, 0, 0, 0, 1}, g.Colors[0:9])
	assert.Equal(t, []float32{1, 0, 0, 0, 0, 1, 1, 1, 1}, g.Colors[9:18])

	for i := 0; i < g.VertexCount(); i++ {
		assert.Equal(t, geometry.NewVector3(0, 0, 1), geometry.Vector3At(g.Normals, i))
	}
}

func TestParseWithoutColors(t *testing.T) {
	text := `ply
format ascii 1.0
element vertex 3
property float z
property float y
property float x
element face 1
property list uchar int vertex_indices
end_header
0 0 0
0 0 1
0 1 0
3 0 1 2
`
	g, err := Parse(text)
	require.NoError(t, err)
	assert.False(t, g.HasColors())
	assert.Equal(t, []float32{0, 0, 0, 1, 0, 0, 0, 1, 0}, g.Positions)
}

func TestParseMissingCoordinate(t *testing.T) {
	text := `ply
format ascii 1.0
element vertex 1
property float x
property float y
end_header
0 0
`
	_, err := Parse(text)
	var perr *mesh.ParseError
	require.Error(t, err)
	assert.True(t, errors.As(err, &perr))
}

func TestParseHeaderErrors(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"empty", ""},
		{"no magic", "format ascii 1.0\nend_header\n"},
		{"binary", "ply\nformat binary_little_endian 1.0\nend_header\n"},
		{"no end", "ply\nformat ascii 1.0\nelement vertex 0\n"},
		{"huge vertex count", "ply\nformat ascii 1.0\nelement vertex 4000000000000000\nproperty float x\nproperty float y\nproperty float z\nend_header\n0 0 0\n"},
		{"short body", "ply\nformat ascii 1.0\nelement vertex 2\nproperty float x\nproperty float y\nproperty float z\nend_header\n0 0 0\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.text)
			var perr *mesh.ParseError
			require.Error(t, err)
			assert.True(t, errors.As(err, &perr))
		})
	}
}

func TestParseSkipsBadFaces(t *testing.T) {
	text := `ply
format ascii 1.0
element vertex 3
property float x
property float y
property float z
element face 4
property list uchar int vertex_indices
end_header
0 0 0
1 0 0
0 1 0
3 0 1 2
3 0 1 7
2 0 1
3 0 a 2
`
	g, stats, err := ParseWithStats(text)
	require.NoError(t, err)
	assert.Equal(t, 1, g.TriangleCount())
	assert.Equal(t, 3, stats.SkippedFaces)
	assert.Less(t, g.MaxIndex(), g.VertexCount())
}

func TestParseUntrustedFaceCount(t *testing.T) {
	text := "ply\nformat ascii 1.0\nelement vertex 3\nproperty float x\nproperty float y\nproperty float z\n" +
		"element face 4000000000000000\nproperty list uchar int vertex_indices\nend_header\n0 0 0\n1 0 0\n0 1 0\n3 0 1 2\n"
	g, err := Parse(text)
	require.NoError(t, err)
	assert.Equal(t, 1, g.TriangleCount())
}
