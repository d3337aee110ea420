package models

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/philipparndt/sceneforge/pkg/mesh"
	"github.com/philipparndt/sceneforge/pkg/primitives"
	"github.com/philipparndt/sceneforge/pkg/scene"
)

const triangle = "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 3\n"

func TestResolveCachesPerRole(t *testing.T) {
	r := NewResolver(map[string]CustomModelData{
		RoleGroundCover: {MeshText: triangle},
	})

	assert.True(t, r.Has(RoleGroundCover))
	assert.False(t, r.Has(RoleTree))

	a, ok, err := r.Resolve(RoleGroundCover)
	require.NoError(t, err)
	require.True(t, ok)
	b, _, err := r.Resolve(RoleGroundCover)
	require.NoError(t, err)
	assert.Same(t, a, b)
	assert.Equal(t, 1, a.TriangleCount())
}

func TestResolveMissingRole(t *testing.T) {
	r := NewResolver(map[string]CustomModelData{RoleTree: {}})
	g, ok, err := r.Resolve(RoleTree)
	assert.Nil(t, g)
	assert.False(t, ok)
	assert.NoError(t, err)
	assert.Zero(t, r.Roles())

	var nilResolver *Resolver
	assert.False(t, nilResolver.Has(RoleTree))
}

func TestResolvePrefersBinaryContainer(t *testing.T) {
	data, err := scene.EncodeGLB([]mesh.Shape{mesh.NewShape("rock", primitives.Icosahedron(1))})
	require.NoError(t, err)

	r := NewResolver(map[string]CustomModelData{
		RoleRock: {MeshText: triangle, BinaryContainer: data},
	})
	g, ok, err := r.Resolve(RoleRock)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 20, g.TriangleCount())
}

func TestResolveErrorsAreCached(t *testing.T) {
	r := NewResolver(map[string]CustomModelData{
		RoleTree:        {MeshText: "# no vertices\n"},
		RoleGroundCover: {MeshText: "v 0 0 0\n"},
	})

	_, ok, err := r.Resolve(RoleTree)
	assert.True(t, ok)
	var perr *mesh.ParseError
	assert.True(t, errors.As(err, &perr))

	_, _, again := r.Resolve(RoleTree)
	assert.Equal(t, err, again)

	_, _, err = r.Resolve(RoleGroundCover)
	var verr *mesh.ValidationError
	assert.True(t, errors.As(err, &verr))
}
