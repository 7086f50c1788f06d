package splat

import (
	"log"
	"sync"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Carmen-Shannon/splatfx/common"
)

// Mesh is the splat mesh contract. Modifier installation is cheap; the mesh regenerates
// its program on UpdateGenerator and only re-uploads parameters on UpdateVersion.
//
// The object modifier runs first on object-space splats, the world modifier runs after it.
type Mesh interface {
	// Len returns the number of splats.
	Len() int

	// BoundingBox returns the bounds of the unmodified splat centers.
	BoundingBox() common.Box3

	// ObjectModifier returns the installed object modifier, or nil.
	ObjectModifier() *Modifier

	// SetObjectModifier installs or, with nil, removes the object modifier. The change
	// takes effect on the next UpdateGenerator.
	SetObjectModifier(m *Modifier)

	// WorldModifier returns the installed world modifier, or nil.
	WorldModifier() *Modifier

	// SetWorldModifier installs or, with nil, removes the world modifier. The change
	// takes effect on the next UpdateGenerator.
	SetWorldModifier(m *Modifier)

	// UpdateGenerator rebuilds the modifier program. Call after installing or removing a modifier.
	UpdateGenerator()

	// UpdateVersion re-uploads live uniform values without rebuilding.
	UpdateVersion()

	// Generation returns the count of UpdateGenerator calls.
	Generation() uint64

	// Version returns the count of UpdateVersion calls.
	Version() uint64

	// DynamicColors reports whether the color buffer has been split out for painting.
	DynamicColors() bool

	// BakeColors evaluates the modifier chain and stores the resulting colors as the
	// mesh's own color buffer, splitting it out on the first call.
	BakeColors()

	// Evaluate runs the installed modifiers on every splat.
	//
	// Parameters:
	//   - dst: a buffer to reuse, may be nil
	//
	// Returns:
	//   - []Splat: the modified splats
	Evaluate(dst []Splat) []Splat
}

type memoryMesh struct {
	mu *sync.Mutex

	name   string
	splats []Splat
	colors []mgl32.Vec4
	bounds common.Box3

	object, world        *Modifier
	activeObj, activeWld *Modifier

	generation uint64
	version    uint64
}

var _ Mesh = &memoryMesh{}

// NewMemoryMesh creates an in-memory mesh over a copy of splats.
//
// Parameters:
//   - splats: the unmodified splats
//   - options: functional options
//
// Returns:
//   - Mesh: the mesh
func NewMemoryMesh(splats []Splat, options ...MeshBuilderOption) Mesh {
	m := &memoryMesh{
		mu:     &sync.Mutex{},
		name:   "splats",
		splats: append([]Splat(nil), splats...),
	}
	for _, opt := range options {
		opt(m)
	}
	if len(m.splats) > 0 {
		m.bounds = common.Box3{Min: m.splats[0].Center, Max: m.splats[0].Center}
		for _, s := range m.splats[1:] {
			m.bounds.Expand(s.Center)
		}
	}
	return m
}

func (m *memoryMesh) Len() int {
	return len(m.splats)
}

func (m *memoryMesh) BoundingBox() common.Box3 {
	return m.bounds
}

func (m *memoryMesh) ObjectModifier() *Modifier {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.object
}

func (m *memoryMesh) SetObjectModifier(mod *Modifier) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.object = mod
}

func (m *memoryMesh) WorldModifier() *Modifier {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.world
}

func (m *memoryMesh) SetWorldModifier(mod *Modifier) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.world = mod
}

func (m *memoryMesh) UpdateGenerator() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.activeObj, m.activeWld = m.object, m.world
	m.generation++
}

func (m *memoryMesh) UpdateVersion() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.version++
}

func (m *memoryMesh) Generation() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.generation
}

func (m *memoryMesh) Version() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.version
}

func (m *memoryMesh) DynamicColors() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.colors != nil
}

func (m *memoryMesh) BakeColors() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.colors == nil {
		m.colors = make([]mgl32.Vec4, len(m.splats))
		log.Printf("[Splat] %s: split out %d dynamic colors", m.name, len(m.splats))
	}
	for i := range m.splats {
		m.colors[i] = m.evaluate(i).RGBA
	}
}

func (m *memoryMesh) Evaluate(dst []Splat) []Splat {
	m.mu.Lock()
	defer m.mu.Unlock()
	dst = dst[:0]
	for i := range m.splats {
		dst = append(dst, m.evaluate(i))
	}
	return dst
}

// evaluate runs the active modifier chain on splat i. Caller must hold the mutex.
func (m *memoryMesh) evaluate(i int) Splat {
	s := m.splats[i]
	if m.colors != nil {
		s.RGBA = m.colors[i]
	}
	s = m.activeObj.Evaluate(s)
	return m.activeWld.Evaluate(s)
}
