// Package models resolves user supplied replacement models per semantic role.
package models

import (
	"fmt"

	"github.com/philipparndt/sceneforge/pkg/gltfimport"
	"github.com/philipparndt/sceneforge/pkg/mesh"
	"github.com/philipparndt/sceneforge/pkg/obj"
)

// Well known roles
const (
	RoleTree        = "tree"
	RoleRock        = "rock"
	RoleGroundCover = "ground-cover"
)

// CustomModelData is a replacement model as handed over by the caller.
// A binary container takes precedence over mesh text.
type CustomModelData struct {
	MeshText        string
	MaterialText    string
	BinaryContainer []byte
}

// IsEmpty reports whether no model source is set
func (d CustomModelData) IsEmpty() bool {
	return d.MeshText == "" && len(d.BinaryContainer) == 0
}

type resolved struct {
	geometry *mesh.Geometry
	err      error
}

// Resolver parses custom models lazily, once per role. It is not safe for
// concurrent use.
type Resolver struct {
	custom map[string]CustomModelData
	cache  map[string]resolved
}

// NewResolver creates a resolver over the given role -> model mapping
func NewResolver(custom map[string]CustomModelData) *Resolver {
	c := make(map[string]CustomModelData, len(custom))
	for role, data := range custom {
		if !data.IsEmpty() {
			c[role] = data
		}
	}
	return &Resolver{custom: c, cache: map[string]resolved{}}
}

// Has reports whether a custom model is registered for role
func (r *Resolver) Has(role string) bool {
	if r == nil {
		return false
	}
	_, ok := r.custom[role]
	return ok
}

// Roles returns the number of registered roles
func (r *Resolver) Roles() int {
	if r == nil {
		return 0
	}
	return len(r.custom)
}

// Resolve returns the geometry for role. The second result is false when
// no custom model is registered. Results, including errors, are cached so
// every instance shares one Geometry.
func (r *Resolver) Resolve(role string) (*mesh.Geometry, bool, error) {
	if !r.Has(role) {
		return nil, false, nil
	}
	if res, ok := r.cache[role]; ok {
		return res.geometry, true, res.err
	}

	g, err := parse(r.custom[role])
	if err == nil && g.IsEmpty() {
		err = mesh.Validationf("custom model has no triangles")
	}
	if err != nil {
		err = fmt.Errorf("failed to resolve %s model: %w", role, err)
		g = nil
	}
	r.cache[role] = resolved{geometry: g, err: err}
	return g, true, err
}

func parse(data CustomModelData) (*mesh.Geometry, error) {
	if len(data.BinaryContainer) > 0 {
		return gltfimport.Import(data.BinaryContainer)
	}
	return obj.Parse(data.MeshText, data.MaterialText)
}
