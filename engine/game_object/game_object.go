package game_object

import (
	"sync"
	"sync/atomic"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Carmen-Shannon/splatfx/common"
	"github.com/Carmen-Shannon/splatfx/engine/renderer/material"
	"github.com/Carmen-Shannon/splatfx/engine/splat"
)

// Shape selects how a renderer draws a GameObject.
type Shape int

const (
	// ShapeSplats draws the object's splat mesh.
	ShapeSplats Shape = iota

	// ShapeSphere draws a sphere of radius Scale around Position with a PhysicalMaterial.
	ShapeSphere

	// ShapeQuad draws a fullscreen quad with a ShaderMaterial.
	ShapeQuad
)

type gameObject struct {
	id      atomic.Uint64
	name    string
	shape   Shape
	visible atomic.Bool

	mu       *sync.Mutex
	position mgl32.Vec3
	scale    float32
	mat      material.Material
	mesh     splat.Mesh
}

// GameObject is a scene entity: a splat mesh, a sphere or a fullscreen quad with a
// transform and material. It satisfies scene.Object. Visibility is atomic so a capture
// running off the frame thread may hide and restore it.
type GameObject interface {
	// ID returns the object's unique identifier.
	//
	// Returns:
	//   - uint64: the object ID
	ID() uint64

	// SetID sets the object's unique identifier.
	//
	// Parameters:
	//   - id: the ID to assign
	SetID(id uint64)

	// Name returns the object's label.
	Name() string

	// Visible returns whether this object is drawn.
	//
	// Returns:
	//   - bool: true if visible
	Visible() bool

	// SetVisible sets whether the object is drawn.
	//
	// Parameters:
	//   - visible: true to draw
	SetVisible(visible bool)

	// Shape returns how the object is drawn.
	Shape() Shape

	// Position returns the world-space position.
	//
	// Returns:
	//   - mgl32.Vec3: the position
	Position() mgl32.Vec3

	// SetPosition moves the object.
	//
	// Parameters:
	//   - p: the new position
	SetPosition(p mgl32.Vec3)

	// Scale returns the uniform scale. For spheres it is the radius.
	Scale() float32

	// SetScale sets the uniform scale.
	//
	// Parameters:
	//   - s: the new scale
	SetScale(s float32)

	// Bounds returns the world-space bounding box.
	//
	// Returns:
	//   - common.Box3: the bounds
	Bounds() common.Box3

	// Material returns the object's material, or nil.
	//
	// Returns:
	//   - material.Material: the material or nil
	Material() material.Material

	// SetMaterial replaces the material.
	//
	// Parameters:
	//   - m: the new material
	SetMaterial(m material.Material)

	// Mesh returns the splat mesh of a ShapeSplats object, or nil.
	//
	// Returns:
	//   - splat.Mesh: the mesh or nil
	Mesh() splat.Mesh
}

var _ GameObject = &gameObject{}

// NewGameObject creates a new GameObject configured with the given options. Objects are
// visible by default.
//
// Parameters:
//   - options: functional options to configure the object
//
// Returns:
//   - GameObject: the newly created object
func NewGameObject(options ...GameObjectBuilderOption) GameObject {
	obj := &gameObject{
		mu:    &sync.Mutex{},
		scale: 1,
	}
	obj.visible.Store(true)
	for _, option := range options {
		option(obj)
	}
	return obj
}

func (g *gameObject) ID() uint64 {
	return g.id.Load()
}

func (g *gameObject) SetID(id uint64) {
	g.id.Store(id)
}

func (g *gameObject) Name() string {
	return g.name
}

func (g *gameObject) Visible() bool {
	return g.visible.Load()
}

func (g *gameObject) SetVisible(visible bool) {
	g.visible.Store(visible)
}

func (g *gameObject) Shape() Shape {
	return g.shape
}

func (g *gameObject) Position() mgl32.Vec3 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.position
}

func (g *gameObject) SetPosition(p mgl32.Vec3) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.position = p
}

func (g *gameObject) Scale() float32 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.scale
}

func (g *gameObject) SetScale(s float32) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.scale = s
}

func (g *gameObject) Bounds() common.Box3 {
	g.mu.Lock()
	defer g.mu.Unlock()
	switch g.shape {
	case ShapeSplats:
		if g.mesh == nil {
			return common.Box3{Min: g.position, Max: g.position}
		}
		b := g.mesh.BoundingBox()
		return common.Box3{Min: b.Min.Add(g.position), Max: b.Max.Add(g.position)}
	case ShapeSphere:
		r := mgl32.Vec3{g.scale, g.scale, g.scale}
		return common.Box3{Min: g.position.Sub(r), Max: g.position.Add(r)}
	}
	return common.Box3{Min: mgl32.Vec3{-1, -1, 0}, Max: mgl32.Vec3{1, 1, 0}}
}

func (g *gameObject) Material() material.Material {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.mat
}

func (g *gameObject) SetMaterial(m material.Material) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.mat = m
}

func (g *gameObject) Mesh() splat.Mesh {
	return g.mesh
}

// IntersectSphere returns the distance along ray to the first hit with a sphere object.
//
// Parameters:
//   - obj: a ShapeSphere object
//   - ray: the pick ray with a unit direction
//
// Returns:
//   - float32: the hit distance
//   - bool: false if the ray misses or obj is not a sphere
func IntersectSphere(obj GameObject, ray common.Ray) (float32, bool) {
	if obj.Shape() != ShapeSphere {
		return 0, false
	}
	oc := ray.Origin.Sub(obj.Position())
	r := obj.Scale()
	b := oc.Dot(ray.Direction)
	c := oc.Dot(oc) - r*r
	disc := b*b - c
	if disc < 0 {
		return 0, false
	}
	sq := float32(0)
	if disc > 0 {
		sq = math32.Sqrt(disc)
	}
	t := -b - sq
	if t < 0 {
		t = -b + sq
	}
	if t < 0 {
		return 0, false
	}
	return t, true
}
