package cmd

import (
	"bytes"
	"encoding/json"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/philipparndt/sceneforge/pkg/glb"
	"github.com/philipparndt/sceneforge/pkg/gltfimport"
	"github.com/philipparndt/sceneforge/pkg/mesh"
	"github.com/philipparndt/sceneforge/pkg/primitives"
)

const triangleOBJ = "mtllib tri.mtl\nusemtl red\nv 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 3\n"

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"-q"}, args...))
	err := root.Execute()
	return out.String(), err
}

func writeInput(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestConvertWritesGLB(t *testing.T) {
	dir := t.TempDir()
	a := writeInput(t, dir, "tri.obj", triangleOBJ)
	writeInput(t, dir, "tri.mtl", "newmtl red\nKd 1 0 0\n")
	b := writeInput(t, dir, "quad.ply", `ply
format ascii 1.0
element vertex 4
property float x
property float y
property float z
element face 1
property list uchar int vertex_indices
end_header
0 0 0
1 0 0
1 1 0
0 1 0
4 0 1 2 3
`)
	out := filepath.Join(dir, "scene.glb")

	stdout, err := run(t, "convert", a, b, "-o", out)
	require.NoError(t, err)
	assert.Contains(t, stdout, "2 shapes")

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	_, err = glb.Decode(data)
	require.NoError(t, err)

	g, err := gltfimport.ImportAll(data)
	require.NoError(t, err)
	assert.Equal(t, 3, g.TriangleCount())
	assert.True(t, g.HasColors(), "material colors from the mtllib reference")
}

func TestConvertRejectsUnknownInput(t *testing.T) {
	dir := t.TempDir()
	in := writeInput(t, dir, "notes.txt", "hello")

	_, err := run(t, "convert", in, "-o", filepath.Join(dir, "out.glb"))
	assert.ErrorContains(t, err, "not a model file")
}

func TestConvertRejectsUnknownOutput(t *testing.T) {
	dir := t.TempDir()
	in := writeInput(t, dir, "tri.obj", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 3\n")

	_, err := run(t, "convert", in, "-o", filepath.Join(dir, "out.fbx"))
	assert.ErrorContains(t, err, "unsupported output format")
}

func TestConvertColorFlag(t *testing.T) {
	dir := t.TempDir()
	in := writeInput(t, dir, "tri.obj", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 3\n")
	out := filepath.Join(dir, "out.gltf")

	_, err := run(t, "convert", in, "-o", out, "--color", "0,0.5,1")
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	var doc struct {
		Materials []struct {
			PBR struct {
				BaseColorFactor []float32 `json:"baseColorFactor"`
			} `json:"pbrMetallicRoughness"`
		} `json:"materials"`
	}
	require.NoError(t, json.Unmarshal(data, &doc))
	require.Len(t, doc.Materials, 1)
	assert.Equal(t, []float32{0, 0.5, 1, 1}, doc.Materials[0].PBR.BaseColorFactor)

	_, err = run(t, "convert", in, "-o", out, "--color", "red")
	assert.ErrorContains(t, err, "invalid color")
}

func TestPrimitivesCommand(t *testing.T) {
	dir := t.TempDir()
	in := writeInput(t, dir, "scene.yaml", "primitives:\n  - type: box\n  - type: sphere\n    translation: [2, 0, 0]\n")
	out := filepath.Join(dir, "scene.glb")

	_, err := run(t, "primitives", in, "-o", out)
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	g, err := gltfimport.ImportAll(data)
	require.NoError(t, err)
	assert.Equal(t, primitives.Box(1, 1, 1).TriangleCount()+primitives.Sphere(0.5, 32, 16).TriangleCount(), g.TriangleCount())
}

func TestGeoCommand(t *testing.T) {
	dir := t.TempDir()
	in := writeInput(t, dir, "site.geojson", `{
  "type": "FeatureCollection",
  "features": [
    {"type": "Feature", "properties": {"type": "asset"},
     "geometry": {"type": "Polygon", "coordinates": [[[0,0],[2,0],[2,1],[0,1],[0,0]]]}},
    {"type": "Feature", "properties": {"name": "tree"},
     "geometry": {"type": "Point", "coordinates": [1, 0.5]}}
  ]
}`)
	out := filepath.Join(dir, "site.glb")

	stdout, err := run(t, "geo", in, "-o", out, "--seed", "3")
	require.NoError(t, err)
	assert.Contains(t, stdout, "3 shapes")

	_, err = run(t, "geo", writeInput(t, dir, "empty.geojson", `{"type":"FeatureCollection","features":[]}`), "-o", out)
	var verr *mesh.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestInfoCommand(t *testing.T) {
	dir := t.TempDir()
	in := writeInput(t, dir, "tri.obj", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 3\n")

	stdout, err := run(t, "info", in, "--edges", "1")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Triangles: 1")
	assert.Contains(t, stdout, "Longest Edges")
	assert.Contains(t, stdout, "1.414214 units")

	scene := writeInput(t, dir, "scene.yml", "primitives:\n  - type: box\n  - type: box\n    translation: [3, 0, 0]\n")
	stdout, err = run(t, "info", scene)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Shapes: 2")
	assert.Contains(t, stdout, "Distinct Geometries: 1")
}

func TestPreviewCommand(t *testing.T) {
	dir := t.TempDir()
	in := writeInput(t, dir, "tri.obj", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 3\n")
	out := filepath.Join(dir, "thumb.png")

	_, err := run(t, "preview", in, "-o", out, "--size", "24")
	require.NoError(t, err)

	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 24, img.Bounds().Dx())

	_, err = run(t, "preview", in, "-o", filepath.Join(dir, "thumb.bmp"))
	assert.Error(t, err)
}

func TestCompletionCommand(t *testing.T) {
	stdout, err := run(t, "completion", "bash")
	require.NoError(t, err)
	assert.Contains(t, stdout, "sceneforge")

	_, err = run(t, "completion", "powershell-classic")
	assert.Error(t, err)
}

func TestLayoutAlongX(t *testing.T) {
	box := primitives.Box(2, 2, 2)
	shapes := layoutAlongX([]mesh.Shape{mesh.NewShape("a", box), mesh.NewShape("b", box)}, 1)

	assert.Equal(t, [3]float32{1, 1, 0}, shapes[0].Translation)
	assert.Equal(t, [3]float32{4, 1, 0}, shapes[1].Translation)
}

func TestParseColorFlag(t *testing.T) {
	c, err := parseColorFlag("1, 0.5, 0, 0.25")
	require.NoError(t, err)
	assert.Equal(t, [4]float32{1, 0.5, 0, 0.25}, c)

	_, err = parseColorFlag("1,2,3")
	assert.Error(t, err)
}
