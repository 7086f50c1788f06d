package game_object

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Carmen-Shannon/splatfx/engine/renderer/material"
	"github.com/Carmen-Shannon/splatfx/engine/splat"
)

// GameObjectBuilderOption is a functional option for configuring a GameObject during construction.
type GameObjectBuilderOption func(*gameObject)

// WithID sets the ID of the GameObject.
//
// Parameters:
//   - id: unique identifier for the GameObject
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the ID
func WithID(id uint64) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.id.Store(id)
	}
}

// WithName sets the label of the GameObject.
func WithName(name string) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.name = name
	}
}

// WithVisible sets whether the GameObject starts visible.
//
// Parameters:
//   - visible: false to start hidden
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the visibility
func WithVisible(visible bool) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.visible.Store(visible)
	}
}

// WithMesh makes the GameObject a splat object drawing mesh.
//
// Parameters:
//   - mesh: the splat mesh
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the mesh
func WithMesh(mesh splat.Mesh) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.shape = ShapeSplats
		obj.mesh = mesh
	}
}

// WithSphere makes the GameObject a sphere of the given radius.
//
// Parameters:
//   - radius: the sphere radius
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the shape
func WithSphere(radius float32) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.shape = ShapeSphere
		obj.scale = radius
	}
}

// WithQuad makes the GameObject a fullscreen quad.
func WithQuad() GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.shape = ShapeQuad
	}
}

// WithPosition sets the initial position of the GameObject.
//
// Parameters:
//   - p: the position
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the initial position
func WithPosition(p mgl32.Vec3) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.position = p
	}
}

// WithMaterial sets the material of the GameObject.
//
// Parameters:
//   - m: the material
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the material
func WithMaterial(m material.Material) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.mat = m
	}
}
