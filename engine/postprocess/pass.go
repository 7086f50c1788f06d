// Package postprocess holds the fullscreen passes the composer chains: the edge
// sharpening pass (Laplacian and Sobel kernels) and the bilateral denoiser. A pass owns
// one offscreen target, one fullscreen quad, a private scene containing only that quad,
// and the program generated from its parameters.
package postprocess

import (
	"fmt"
	"sync"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Carmen-Shannon/splatfx/engine/camera"
	"github.com/Carmen-Shannon/splatfx/engine/game_object"
	"github.com/Carmen-Shannon/splatfx/engine/renderer"
	"github.com/Carmen-Shannon/splatfx/engine/renderer/material"
	"github.com/Carmen-Shannon/splatfx/engine/renderer/shader"
	"github.com/Carmen-Shannon/splatfx/engine/scene"
)

// Compiler produces the program and its CPU reference from a pass's current parameters.
type Compiler func(b *shader.Builder) (shader.Program, material.Reference)

// Pass is one fullscreen post-processing step.
type Pass interface {
	// Name returns the pass label.
	Name() string

	// EnsureResources creates the render target, quad and private scene if they are
	// missing, and re-creates the target when the renderer size changed.
	//
	// Parameters:
	//   - r: the renderer to allocate the target on
	//
	// Returns:
	//   - error: wraps renderer.ErrTargetUnavailable when the target cannot be created
	EnsureResources(r renderer.Renderer) error

	// Target returns the offscreen target the scene or a previous pass draws into, or nil
	// before EnsureResources.
	Target() renderer.RenderTarget

	// Quad returns the fullscreen quad, or nil before EnsureResources.
	Quad() game_object.GameObject

	// Program returns the current program.
	Program() shader.Program

	// Execute draws the quad sampling input into the renderer's current destination. The
	// quad is visible only while it is being drawn.
	//
	// Parameters:
	//   - r: the renderer
	//   - cam: the camera the quad scene is rendered with
	//   - input: the texture to filter
	Execute(r renderer.Renderer, cam camera.Camera, input renderer.Texture)

	// Rebuild regenerates the program from the current parameters and swaps it into the
	// quad material.
	Rebuild()

	// Dispose releases the target and the material. A later EnsureResources creates them again.
	Dispose()
}

type pass struct {
	mu *sync.Mutex

	name    string
	builder *shader.Builder
	compile Compiler

	program   shader.Program
	reference material.Reference

	target    renderer.RenderTarget
	mat       material.ShaderMaterial
	quad      game_object.GameObject
	quadScene scene.Scene
}

var _ Pass = &pass{}

// NewPass creates a pass that compiles its program with compile. Resources are created on
// the first EnsureResources.
//
// Parameters:
//   - name: the pass label, used for the target and quad names
//   - builder: the shader builder
//   - compile: the program generator
//
// Returns:
//   - Pass: the pass
func NewPass(name string, builder *shader.Builder, compile Compiler) Pass {
	p := &pass{
		mu:      &sync.Mutex{},
		name:    name,
		builder: builder,
		compile: compile,
	}
	p.program, p.reference = compile(builder)
	return p
}

func (p *pass) Name() string {
	return p.name
}

func (p *pass) EnsureResources(r renderer.Renderer) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	w, h := r.Size()
	if p.target != nil {
		tw, th := p.target.Size()
		if tw != w || th != h {
			p.target.Dispose()
			p.target = nil
		}
	}
	if p.target == nil {
		target, err := r.CreateRenderTarget(renderer.RenderTargetDescriptor{
			Label:       p.name,
			Width:       w,
			Height:      h,
			DepthBuffer: true,
		})
		if err != nil {
			return fmt.Errorf("%s pass: %w", p.name, err)
		}
		p.target = target
	}

	if p.mat == nil || p.mat.Disposed() {
		p.mat = material.NewShaderMaterial(p.program,
			material.WithShaderName(p.name),
			material.WithDepth(false, false),
			material.WithReference(p.reference),
		)
		p.quad = game_object.NewGameObject(
			game_object.WithName(p.name+" Quad"),
			game_object.WithQuad(),
			game_object.WithMaterial(p.mat),
			game_object.WithVisible(false),
		)
		p.quadScene = scene.NewScene(p.name, scene.WithObjects(p.quad))
	}
	return nil
}

func (p *pass) Target() renderer.RenderTarget {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.target
}

func (p *pass) Quad() game_object.GameObject {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.quad
}

func (p *pass) Program() shader.Program {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.program
}

func (p *pass) Execute(r renderer.Renderer, cam camera.Camera, input renderer.Texture) {
	p.mu.Lock()
	mat, quad, quadScene := p.mat, p.quad, p.quadScene
	p.mu.Unlock()
	if mat == nil || quad == nil || input == nil {
		return
	}

	w, h := input.Size()
	mat.SetUniform("inputTexture", input)
	mat.SetUniform("textureSize", mgl32.Vec2{float32(w), float32(h)})

	quad.SetVisible(true)
	defer quad.SetVisible(false)
	r.Render(quadScene, cam)
}

func (p *pass) Rebuild() {
	program, reference := p.compile(p.builder)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.program, p.reference = program, reference
	if p.mat != nil {
		p.mat.SetReference(reference)
		p.mat.SetProgram(program)
	}
}

func (p *pass) Dispose() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.target != nil {
		p.target.Dispose()
		p.target = nil
	}
	if p.mat != nil {
		p.mat.Dispose()
		p.mat = nil
	}
	p.quad = nil
	p.quadScene = nil
}
