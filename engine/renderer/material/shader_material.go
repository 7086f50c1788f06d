package material

import (
	"maps"
	"sync"

	"github.com/Carmen-Shannon/splatfx/common"
	"github.com/Carmen-Shannon/splatfx/engine/renderer/shader"
)

// Reference is the CPU form of a fullscreen program. Software backends draw a quad by
// running it on the quad's input texture.
type Reference func(src *common.Image) *common.Image

// ShaderMaterial draws a fullscreen program. Replacing the program bumps the version so
// the renderer rebuilds its pipeline; uniform writes only rewrite the uniform buffer.
type ShaderMaterial interface {
	Material

	// Program returns the current program.
	Program() shader.Program

	// SetProgram replaces the program and marks the material for a pipeline rebuild.
	//
	// Parameters:
	//   - p: the new program
	SetProgram(p shader.Program)

	// Uniform returns a uniform value, or nil when unset. Textures are stored under their
	// binding name as renderer.Texture values.
	//
	// Parameters:
	//   - name: the uniform or binding name
	//
	// Returns:
	//   - any: the value or nil
	Uniform(name string) any

	// SetUniform stores a uniform value. It does not change the version.
	//
	// Parameters:
	//   - name: the uniform or binding name
	//   - value: the value
	SetUniform(name string, value any)

	// Uniforms returns a copy of every uniform value.
	Uniforms() map[string]any

	// UniformBytes packs the uniform values to the program's WGSL layout.
	//
	// Returns:
	//   - []byte: bytes ready for a uniform buffer write
	UniformBytes() []byte

	// Transparent reports whether the quad blends over its destination.
	Transparent() bool

	// DepthTest reports whether the quad is depth tested.
	DepthTest() bool

	// DepthWrite reports whether the quad writes depth.
	DepthWrite() bool

	// Reference returns the CPU form of the program, or nil.
	Reference() Reference

	// SetReference replaces the CPU form. Called together with SetProgram.
	//
	// Parameters:
	//   - ref: the CPU program
	SetReference(ref Reference)
}

type shaderMaterial struct {
	mu *sync.Mutex

	name        string
	version     uint64
	disposed    bool
	program     shader.Program
	uniforms    map[string]any
	transparent bool
	depthTest   bool
	depthWrite  bool
	reference   Reference
}

var _ ShaderMaterial = &shaderMaterial{}

// NewShaderMaterial creates a ShaderMaterial. Fullscreen passes are opaque and skip the
// depth buffer by default.
//
// Parameters:
//   - program: the initial program
//   - options: variadic list of ShaderMaterialBuilderOption functions
//
// Returns:
//   - ShaderMaterial: the new material
func NewShaderMaterial(program shader.Program, options ...ShaderMaterialBuilderOption) ShaderMaterial {
	m := &shaderMaterial{
		mu:       &sync.Mutex{},
		program:  program,
		uniforms: make(map[string]any),
	}
	for _, opt := range options {
		opt(m)
	}
	return m
}

func (m *shaderMaterial) Name() string {
	return m.name
}

func (m *shaderMaterial) Version() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.version
}

func (m *shaderMaterial) Dispose() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.disposed = true
	clear(m.uniforms)
}

func (m *shaderMaterial) Disposed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.disposed
}

func (m *shaderMaterial) Program() shader.Program {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.program
}

func (m *shaderMaterial) SetProgram(p shader.Program) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.disposed {
		return
	}
	m.program = p
	m.version++
}

func (m *shaderMaterial) Uniform(name string) any {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.uniforms[name]
}

func (m *shaderMaterial) SetUniform(name string, value any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.disposed {
		return
	}
	m.uniforms[name] = value
}

func (m *shaderMaterial) Uniforms() map[string]any {
	m.mu.Lock()
	defer m.mu.Unlock()
	return maps.Clone(m.uniforms)
}

func (m *shaderMaterial) UniformBytes() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.program.Uniforms.Pack(m.uniforms)
}

func (m *shaderMaterial) Transparent() bool {
	return m.transparent
}

func (m *shaderMaterial) DepthTest() bool {
	return m.depthTest
}

func (m *shaderMaterial) DepthWrite() bool {
	return m.depthWrite
}

func (m *shaderMaterial) Reference() Reference {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reference
}

func (m *shaderMaterial) SetReference(ref Reference) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reference = ref
}
