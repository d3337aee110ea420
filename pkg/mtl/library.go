// Package mtl parses Wavefront material libraries.
package mtl

import (
	"bufio"
	"strconv"
	"strings"

	"github.com/philipparndt/sceneforge/pkg/mesh"
)

// Material is a named material definition
type Material struct {
	Name    string
	Diffuse *[3]float32 // Kd, nil when not defined
}

// Library maps material names to their definitions
type Library map[string]Material

// Parse reads newmtl and Kd records. Any other record, and any Kd record
// that cannot be read, is ignored.
func Parse(text string) (Library, error) {
	lib := Library{}
	current := ""

	scanner := bufio.NewScanner(strings.NewReader(text))
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}

		switch fields[0] {
		case "newmtl":
			if len(fields) < 2 {
				current = ""
				continue
			}
			current = strings.Join(fields[1:], " ")
			lib[current] = Material{Name: current}
		case "Kd":
			if current == "" || len(fields) < 4 {
				continue
			}
			color, ok := parseColor(fields[1:4])
			if !ok {
				continue
			}
			m := lib[current]
			m.Diffuse = &color
			lib[current] = m
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, &mesh.ParseError{Format: "mtl", Line: line + 1, Reason: "failed to read material text", Err: err}
	}
	return lib, nil
}

func parseColor(fields []string) ([3]float32, bool) {
	var c [3]float32
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 32)
		if err != nil {
			return c, false
		}
		c[i] = float32(v)
	}
	return c, true
}

// HasColors reports whether any material defines a diffuse color
func (l Library) HasColors() bool {
	for _, m := range l {
		if m.Diffuse != nil {
			return true
		}
	}
	return false
}

// Diffuse returns the diffuse color of the named material
func (l Library) Diffuse(name string) ([3]float32, bool) {
	m, ok := l[name]
	if !ok || m.Diffuse == nil {
		return [3]float32{}, false
	}
	return *m.Diffuse, true
}
