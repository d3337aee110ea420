package gltfimport

import "github.com/philipparndt/sceneforge/pkg/geometry"

func vec(x, y, z float32) geometry.Vector3 {
	return geometry.NewVector3(x, y, z)
}
