package material

import (
	"sync"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Carmen-Shannon/splatfx/engine/renderer"
)

// Material is the part every material shares: a name, a version that renderers compare
// against their cached pipeline state, and an explicit release.
type Material interface {
	// Name retrieves the material identifier.
	//
	// Returns:
	//   - string: the name of the material
	Name() string

	// Version increments on every change that requires the renderer to refresh its
	// GPU-side copy.
	//
	// Returns:
	//   - uint64: the current version
	Version() uint64

	// Dispose releases the material. Later changes are ignored.
	Dispose()

	// Disposed reports whether Dispose was called.
	Disposed() bool
}

// PhysicalMaterial is a metal/rough surface that may sample a captured environment map.
// The environment probe uses it for itself and for every reflective object.
type PhysicalMaterial interface {
	Material

	// BaseColor retrieves the albedo color of the material.
	//
	// Returns:
	//   - mgl32.Vec3: the base color
	BaseColor() mgl32.Vec3

	// Metalness retrieves the metallic factor (0 dielectric, 1 metal).
	Metalness() float32

	// SetMetalness sets the metallic factor, clamped to [0, 1].
	//
	// Parameters:
	//   - v: the metallic factor
	SetMetalness(v float32)

	// Roughness retrieves the roughness factor (0 mirror, 1 fully rough).
	Roughness() float32

	// SetRoughness sets the roughness factor, clamped to [0, 1].
	//
	// Parameters:
	//   - v: the roughness factor
	SetRoughness(v float32)

	// EnvMap returns the bound environment map, or nil.
	EnvMap() renderer.EnvMap

	// SetEnvMap binds an environment map. The material does not take ownership.
	//
	// Parameters:
	//   - m: the map, or nil to unbind
	SetEnvMap(m renderer.EnvMap)

	// EnvMapIntensity returns the reflection strength.
	EnvMapIntensity() float32

	// SetEnvMapIntensity sets the reflection strength.
	//
	// Parameters:
	//   - v: the strength, at least 0
	SetEnvMapIntensity(v float32)
}

// physicalMaterial is the implementation of the PhysicalMaterial interface.
type physicalMaterial struct {
	mu *sync.Mutex

	name            string
	version         uint64
	disposed        bool
	baseColor       mgl32.Vec3
	metalness       float32
	roughness       float32
	envMap          renderer.EnvMap
	envMapIntensity float32
}

var _ PhysicalMaterial = &physicalMaterial{}

// NewPhysicalMaterial creates a new PhysicalMaterial configured with the provided options.
// Defaults to a white dielectric with roughness 1 and no reflection.
//
// Parameters:
//   - options: variadic list of MaterialBuilderOption functions to configure the material
//
// Returns:
//   - PhysicalMaterial: a new PhysicalMaterial instance
func NewPhysicalMaterial(options ...MaterialBuilderOption) PhysicalMaterial {
	m := &physicalMaterial{
		mu:        &sync.Mutex{},
		baseColor: mgl32.Vec3{1, 1, 1},
		roughness: 1.0,
	}
	for _, opt := range options {
		opt(m)
	}
	return m
}

func (m *physicalMaterial) Name() string {
	return m.name
}

func (m *physicalMaterial) Version() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.version
}

func (m *physicalMaterial) Dispose() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.disposed = true
	m.envMap = nil
}

func (m *physicalMaterial) Disposed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.disposed
}

func (m *physicalMaterial) BaseColor() mgl32.Vec3 {
	return m.baseColor
}

func (m *physicalMaterial) Metalness() float32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.metalness
}

func (m *physicalMaterial) SetMetalness(v float32) {
	m.update(func() { m.metalness = clamp01(v) })
}

func (m *physicalMaterial) Roughness() float32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.roughness
}

func (m *physicalMaterial) SetRoughness(v float32) {
	m.update(func() { m.roughness = clamp01(v) })
}

func (m *physicalMaterial) EnvMap() renderer.EnvMap {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.envMap
}

func (m *physicalMaterial) SetEnvMap(envMap renderer.EnvMap) {
	m.update(func() { m.envMap = envMap })
}

func (m *physicalMaterial) EnvMapIntensity() float32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.envMapIntensity
}

func (m *physicalMaterial) SetEnvMapIntensity(v float32) {
	m.update(func() { m.envMapIntensity = max(v, 0) })
}

// update applies fn and bumps the version unless the material is disposed.
func (m *physicalMaterial) update(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.disposed {
		return
	}
	fn()
	m.version++
}

func clamp01(v float32) float32 {
	return min(max(v, 0), 1)
}
