// Package gpu presents frames drawn by a CPU backend on a wgpu window surface. The frame
// is uploaded to a texture created from a render target descriptor and drawn through a
// fullscreen post-processing program, so a pass kernel can run on the way to the screen.
package gpu

import (
	"errors"
	"fmt"
	"log"
	"runtime"
	"sync"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Carmen-Shannon/splatfx/common"
	"github.com/Carmen-Shannon/splatfx/engine/renderer"
	"github.com/Carmen-Shannon/splatfx/engine/renderer/shader"
)

// ErrReleased is returned by Present after Release.
var ErrReleased = errors.New("presenter released")

// FrameSource supplies the image to present.
type FrameSource interface {
	// Screen returns the finished frame.
	Screen() *common.Image
}

// PassthroughConstants turns the basic edge kernel into a plain copy: the threshold is
// never reached and the weak sharpen has zero strength.
var PassthroughConstants = shader.Constants{Threshold: 1000, PreserveAlpha: true}

type frameTexture struct {
	width, height int
	texture       *wgpu.Texture
	view          *wgpu.TextureView
	bindGroup     *wgpu.BindGroup
}

func (f *frameTexture) release() {
	if f == nil {
		return
	}
	if f.bindGroup != nil {
		f.bindGroup.Release()
	}
	if f.view != nil {
		f.view.Release()
	}
	if f.texture != nil {
		f.texture.Release()
	}
}

type wgpuPresenter struct {
	mu *sync.Mutex

	source               FrameSource
	program              shader.Program
	presentMode          wgpu.PresentMode
	forceFallbackAdapter bool
	clearColor           wgpu.Color

	instance      *wgpu.Instance
	surface       *wgpu.Surface
	adapter       *wgpu.Adapter
	device        *wgpu.Device
	queue         *wgpu.Queue
	surfaceFormat wgpu.TextureFormat
	width, height int

	layouts  []*wgpu.BindGroupLayout
	kinds    map[uint32]bindingKind
	pipeline *wgpu.RenderPipeline
	sampler  *wgpu.Sampler
	uniforms *wgpu.Buffer
	frame    *frameTexture

	released bool
}

var _ renderer.Presenter = &wgpuPresenter{}

// NewPresenter acquires an adapter and device for the surface and builds the present
// pipeline. It locks the calling goroutine to its OS thread, like the window does.
//
// Parameters:
//   - surfaceDescriptor: the window surface, see window.Window.SurfaceDescriptor
//   - source: where frames are read from, normally the software renderer
//   - width, height: the initial surface size
//   - options: functional options
//
// Returns:
//   - renderer.Presenter: the presenter
//   - error: an error if no adapter, device or pipeline could be created
func NewPresenter(surfaceDescriptor *wgpu.SurfaceDescriptor, source FrameSource, width, height int, options ...PresenterBuilderOption) (renderer.Presenter, error) {
	if surfaceDescriptor == nil || source == nil {
		return nil, errors.New("presenter needs a surface and a frame source")
	}
	runtime.LockOSThread()
	p := &wgpuPresenter{
		mu:          &sync.Mutex{},
		source:      source,
		presentMode: wgpu.PresentModeFifo,
		clearColor:  wgpu.Color{R: 0, G: 0, B: 0, A: 1},
	}
	for _, option := range options {
		option(p)
	}
	if p.program.Fragment == nil {
		p.program = shader.NewBuilder().Build(shader.VariantBasic, PassthroughConstants, shader.PostUniforms)
	}

	p.instance = wgpu.CreateInstance(nil)
	p.surface = p.instance.CreateSurface(surfaceDescriptor)
	adapter, err := p.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: p.forceFallbackAdapter,
		CompatibleSurface:    p.surface,
	})
	if err != nil {
		p.Release()
		return nil, fmt.Errorf("request adapter: %w", err)
	}
	p.adapter = adapter

	device, err := adapter.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Present Device",
		RequiredLimits: &wgpu.RequiredLimits{
			Limits: wgpu.DefaultLimits(),
		},
	})
	if err != nil {
		p.Release()
		return nil, fmt.Errorf("request device: %w", err)
	}
	p.device = device
	p.queue = device.GetQueue()

	p.configure(width, height)
	if err := p.buildPipeline(); err != nil {
		p.Release()
		return nil, err
	}
	log.Printf("[GPU] presenter ready: %s, format %s", p.program.Variant, p.surfaceFormat)
	return p, nil
}

// configure applies the surface configuration. Caller must hold the lock or own p.
func (p *wgpuPresenter) configure(width, height int) {
	p.width, p.height = max(width, 1), max(height, 1)
	capabilities := p.surface.GetCapabilities(p.adapter)
	p.surfaceFormat = pickSurfaceFormat(capabilities.Formats)
	alpha := wgpu.CompositeAlphaModeAuto
	if len(capabilities.AlphaModes) > 0 {
		alpha = capabilities.AlphaModes[0]
	}
	p.surface.Configure(p.adapter, p.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      p.surfaceFormat,
		Width:       uint32(p.width),
		Height:      uint32(p.height),
		PresentMode: p.presentMode,
		AlphaMode:   alpha,
	})
}

// buildPipeline compiles the program's modules against its reflected layouts and
// creates the sampler and uniform buffer every frame binds.
func (p *wgpuPresenter) buildPipeline() error {
	vs, err := p.device.CreateShaderModule(p.program.Vertex.Module())
	if err != nil {
		return fmt.Errorf("vertex module %s: %w", p.program.Vertex.Key(), err)
	}
	defer vs.Release()
	fs, err := p.device.CreateShaderModule(p.program.Fragment.Module())
	if err != nil {
		return fmt.Errorf("fragment module %s: %w", p.program.Fragment.Key(), err)
	}
	defer fs.Release()

	descs := programLayouts(p.program)
	if len(descs) == 0 {
		return errors.New("program declares no bind groups")
	}
	p.kinds, err = bindingKinds(descs[0])
	if err != nil {
		return err
	}
	p.layouts = make([]*wgpu.BindGroupLayout, len(descs))
	for g := range descs {
		layout, err := p.device.CreateBindGroupLayout(&descs[g])
		if err != nil {
			return fmt.Errorf("bind group layout %d: %w", g, err)
		}
		p.layouts[g] = layout
	}
	pipelineLayout, err := p.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            string(p.program.Variant) + " Present Layout",
		BindGroupLayouts: p.layouts,
	})
	if err != nil {
		return err
	}
	defer pipelineLayout.Release()

	p.pipeline, err = p.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  string(p.program.Variant) + " Present Pipeline",
		Layout: pipelineLayout,
		Vertex: wgpu.VertexState{
			Module:     vs,
			EntryPoint: p.program.Vertex.EntryPoint(),
		},
		Fragment: &wgpu.FragmentState{
			Module:     fs,
			EntryPoint: p.program.Fragment.EntryPoint(),
			Targets: []wgpu.ColorTargetState{{
				Format:    p.surfaceFormat,
				WriteMask: wgpu.ColorWriteMaskAll,
			}},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  wgpu.CullModeNone,
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return fmt.Errorf("present pipeline: %w", err)
	}

	targetDesc := renderer.RenderTargetDescriptor{Label: "Present"}
	p.sampler, err = p.device.CreateSampler(targetDesc.SamplerDescriptor())
	if err != nil {
		return err
	}
	p.uniforms, err = p.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "Present Uniforms",
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
		Size:  p.program.Uniforms.Size(),
	})
	return err
}

// ensureFrame recreates the frame texture and its bind group when the source size
// changes. Caller must hold the lock.
func (p *wgpuPresenter) ensureFrame(width, height int) error {
	if p.frame != nil && p.frame.width == width && p.frame.height == height {
		return nil
	}
	p.frame.release()
	p.frame = nil

	desc := renderer.RenderTargetDescriptor{Label: "Present Frame", Width: width, Height: height}
	texDesc := desc.TextureDescriptor()
	texDesc.Usage |= wgpu.TextureUsageCopyDst
	tex, err := p.device.CreateTexture(texDesc)
	if err != nil {
		return err
	}
	frame := &frameTexture{width: width, height: height, texture: tex}
	frame.view, err = tex.CreateView(nil)
	if err != nil {
		frame.release()
		return err
	}

	entries := make([]wgpu.BindGroupEntry, 0, len(p.kinds))
	for binding, kind := range p.kinds {
		entry := wgpu.BindGroupEntry{Binding: binding}
		switch kind {
		case bindingTexture:
			entry.TextureView = frame.view
		case bindingSampler:
			entry.Sampler = p.sampler
		case bindingUniform:
			entry.Buffer = p.uniforms
			entry.Size = p.program.Uniforms.Size()
		}
		entries = append(entries, entry)
	}
	frame.bindGroup, err = p.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   "Present Frame Bind Group",
		Layout:  p.layouts[0],
		Entries: entries,
	})
	if err != nil {
		frame.release()
		return err
	}

	block := p.program.Uniforms.Pack(map[string]any{
		"textureSize": mgl32.Vec2{float32(width), float32(height)},
	})
	if err := p.queue.WriteBuffer(p.uniforms, 0, block); err != nil {
		frame.release()
		return err
	}
	p.frame = frame
	return nil
}

func (p *wgpuPresenter) Present() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.released {
		return ErrReleased
	}
	img := p.source.Screen()
	if img == nil || img.Width <= 0 || img.Height <= 0 {
		return nil
	}
	if err := p.ensureFrame(img.Width, img.Height); err != nil {
		return fmt.Errorf("frame texture: %w", err)
	}

	err := p.queue.WriteTexture(
		&wgpu.ImageCopyTexture{
			Texture:  p.frame.texture,
			MipLevel: 0,
			Origin:   wgpu.Origin3D{},
			Aspect:   wgpu.TextureAspectAll,
		},
		framePixels(img),
		&wgpu.TextureDataLayout{
			Offset:       0,
			BytesPerRow:  uint32(img.Width * 4),
			RowsPerImage: uint32(img.Height),
		},
		&wgpu.Extent3D{
			Width:              uint32(img.Width),
			Height:             uint32(img.Height),
			DepthOrArrayLayers: 1,
		},
	)
	if err != nil {
		return fmt.Errorf("upload frame: %w", err)
	}

	surfaceTexture, err := p.surface.GetCurrentTexture()
	if err != nil {
		return err
	}
	defer surfaceTexture.Release()
	view, err := surfaceTexture.CreateView(nil)
	if err != nil {
		return err
	}
	defer view.Release()

	encoder, err := p.device.CreateCommandEncoder(nil)
	if err != nil {
		return err
	}
	defer encoder.Release()
	pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{{
			View:       view,
			LoadOp:     wgpu.LoadOpClear,
			StoreOp:    wgpu.StoreOpStore,
			ClearValue: p.clearColor,
		}},
	})
	defer pass.Release()
	pass.SetPipeline(p.pipeline)
	pass.SetBindGroup(0, p.frame.bindGroup, nil)
	pass.Draw(6, 1, 0, 0)
	if err := pass.End(); err != nil {
		return err
	}

	commands, err := encoder.Finish(nil)
	if err != nil {
		return err
	}
	defer commands.Release()
	p.queue.Submit(commands)
	p.surface.Present()
	return nil
}

func (p *wgpuPresenter) Resize(width, height int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.released || width <= 0 || height <= 0 || (width == p.width && height == p.height) {
		return
	}
	p.configure(width, height)
}

func (p *wgpuPresenter) Release() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.released {
		return
	}
	p.released = true
	p.frame.release()
	p.frame = nil
	if p.uniforms != nil {
		p.uniforms.Release()
	}
	if p.sampler != nil {
		p.sampler.Release()
	}
	if p.pipeline != nil {
		p.pipeline.Release()
	}
	for _, layout := range p.layouts {
		if layout != nil {
			layout.Release()
		}
	}
	if p.queue != nil {
		p.queue.Release()
	}
	if p.device != nil {
		p.device.Release()
	}
	if p.adapter != nil {
		p.adapter.Release()
	}
	if p.surface != nil {
		p.surface.Release()
	}
	if p.instance != nil {
		p.instance.Release()
	}
	log.Printf("[GPU] presenter released")
}
