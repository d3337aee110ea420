// Package openscad renders .scad sources through the openscad binary.
package openscad

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/philipparndt/sceneforge/pkg/mesh"
	"github.com/philipparndt/sceneforge/pkg/stl"
)

// DefaultBinary is looked up in PATH
const DefaultBinary = "openscad"

// ErrNotInstalled is returned when the openscad binary cannot be found
var ErrNotInstalled = errors.New("openscad not found in PATH, install it from https://openscad.org/")

// matches: use <file.scad>, include <./lib/file.scad>
var dependencyPattern = regexp.MustCompile(`^\s*(?:use|include)\s*<([^>]+)>`)

// Renderer turns OpenSCAD sources into meshes
type Renderer struct {
	workDir string
	binary  string
}

// NewRenderer creates a renderer resolving relative paths against workDir
func NewRenderer(workDir string) *Renderer {
	return &Renderer{workDir: workDir, binary: DefaultBinary}
}

// WithBinary returns a renderer that runs the given executable
func (r *Renderer) WithBinary(binary string) *Renderer {
	c := *r
	c.binary = binary
	return &c
}

func (r *Renderer) abs(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(r.workDir, path)
}

// RenderSTL runs openscad on scadFile and returns the STL bytes it wrote
func (r *Renderer) RenderSTL(ctx context.Context, scadFile string) ([]byte, error) {
	binary, err := exec.LookPath(r.binary)
	if err != nil {
		return nil, ErrNotInstalled
	}

	tmp, err := os.MkdirTemp("", "sceneforge-scad-")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(tmp)

	out := filepath.Join(tmp, "model.stl")
	cmd := exec.CommandContext(ctx, binary, "-o", out, r.abs(scadFile))
	cmd.Dir = r.workDir

	var output bytes.Buffer
	cmd.Stdout = &output
	cmd.Stderr = &output
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(output.String())
		if msg != "" {
			return nil, fmt.Errorf("failed to render %s: %w\n%s", scadFile, err, msg)
		}
		return nil, fmt.Errorf("failed to render %s: %w", scadFile, err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		return nil, fmt.Errorf("failed to read rendered STL: %w", err)
	}
	return data, nil
}

// Render renders scadFile and parses the result
func (r *Renderer) Render(ctx context.Context, scadFile string) (*mesh.Geometry, error) {
	data, err := r.RenderSTL(ctx, scadFile)
	if err != nil {
		return nil, err
	}
	model, err := stl.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse rendered %s: %w", scadFile, err)
	}
	return model.Geometry, nil
}

// Dependencies returns scadFile and every file it pulls in through use or
// include statements, as absolute paths. Cycles are followed once.
func (r *Renderer) Dependencies(scadFile string) ([]string, error) {
	var deps []string
	seen := map[string]bool{}
	queue := []string{r.abs(scadFile)}

	for len(queue) > 0 {
		file := queue[0]
		queue = queue[1:]
		if seen[file] {
			continue
		}
		seen[file] = true
		deps = append(deps, file)

		refs, err := r.references(file)
		if err != nil {
			return nil, err
		}
		queue = append(queue, refs...)
	}
	return deps, nil
}

func (r *Renderer) references(scadFile string) ([]string, error) {
	file, err := os.Open(scadFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", scadFile, err)
	}
	defer file.Close()

	dir := filepath.Dir(scadFile)
	var refs []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(strings.TrimSpace(line), "//") {
			continue
		}
		if m := dependencyPattern.FindStringSubmatch(line); m != nil {
			refs = append(refs, r.locate(m[1], dir))
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", scadFile, err)
	}
	return refs, nil
}

// locate finds a referenced file next to the referencing one, then in the
// working directory
func (r *Renderer) locate(ref, dir string) string {
	local := filepath.Clean(filepath.Join(dir, ref))
	if strings.HasPrefix(ref, "./") || strings.HasPrefix(ref, "../") {
		return local
	}
	if _, err := os.Stat(local); err == nil {
		return local
	}
	return filepath.Clean(filepath.Join(r.workDir, ref))
}
