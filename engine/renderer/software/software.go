// Package software is a headless renderer.Renderer that draws into common.Image buffers.
// Splat meshes are rasterized as depth-sorted gaussian discs, fullscreen quads run their
// material's CPU reference program, and spheres are shaded from their physical material.
// It backs the examples and the integration tests; it is not meant to be fast.
package software

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/nfnt/resize"

	"github.com/Carmen-Shannon/splatfx/common"
	"github.com/Carmen-Shannon/splatfx/engine/camera"
	"github.com/Carmen-Shannon/splatfx/engine/game_object"
	"github.com/Carmen-Shannon/splatfx/engine/renderer"
	"github.com/Carmen-Shannon/splatfx/engine/renderer/material"
	"github.com/Carmen-Shannon/splatfx/engine/scene"
)

// Renderer is the software renderer. It implements renderer.Renderer and
// renderer.LightingTarget.
type Renderer interface {
	renderer.Renderer
	renderer.LightingTarget

	// Screen returns the screen buffer.
	//
	// Returns:
	//   - *common.Image: the screen image, owned by the renderer
	Screen() *common.Image

	// Resize changes the screen size. Targets created earlier keep their size.
	//
	// Parameters:
	//   - width, height: the new size in pixels
	Resize(width, height int)

	// LightingUniform returns the last value pushed through SetLightingUniform.
	LightingUniform(name string) any
}

// ImageTexture is a texture whose pixels are readable on the CPU. Every texture the
// software renderer hands out implements it.
type ImageTexture interface {
	renderer.Texture

	// Image returns the texture pixels. The image is shared, not copied.
	Image() *common.Image
}

type softwareRenderer struct {
	mu *sync.Mutex

	screen     *surface
	current    *surface
	clearColor mgl32.Vec4

	lighting         *renderer.LightingPatch
	lightingUniforms map[string]any

	captureFaceSize int
}

var _ Renderer = &softwareRenderer{}

// NewRenderer creates a software renderer with a screen of the given size.
//
// Parameters:
//   - width, height: the screen size in pixels
//   - options: functional options
//
// Returns:
//   - Renderer: the renderer
func NewRenderer(width, height int, options ...RendererBuilderOption) Renderer {
	r := &softwareRenderer{
		mu:               &sync.Mutex{},
		screen:           newSurface(width, height),
		clearColor:       mgl32.Vec4{0, 0, 0, 1},
		lightingUniforms: make(map[string]any),
		captureFaceSize:  64,
	}
	for _, opt := range options {
		opt(r)
	}
	r.current = r.screen
	return r
}

func (r *softwareRenderer) Screen() *common.Image {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.screen.color
}

func (r *softwareRenderer) Resize(width, height int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	onScreen := r.current == r.screen
	r.screen = newSurface(width, height)
	if onScreen {
		r.current = r.screen
	}
}

func (r *softwareRenderer) Size() (int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.screen.color.Width, r.screen.color.Height
}

func (r *softwareRenderer) CreateRenderTarget(desc renderer.RenderTargetDescriptor) (renderer.RenderTarget, error) {
	if !desc.Valid() {
		return nil, fmt.Errorf("%s %dx%d: %w", common.Coalesce(desc.Label, "target"), desc.Width, desc.Height, renderer.ErrTargetUnavailable)
	}
	return &target{surface: newSurface(desc.Width, desc.Height), desc: desc}, nil
}

func (r *softwareRenderer) SetRenderTarget(t renderer.RenderTarget) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t == nil {
		r.current = r.screen
		return
	}
	st, ok := t.(*target)
	if !ok || st.disposed {
		log.Printf("[Software] ignoring foreign or disposed render target %T", t)
		r.current = r.screen
		return
	}
	r.current = st.surface
}

func (r *softwareRenderer) Clear(color, depth, _ bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.current.clear(r.clearColor, color, depth)
}

func (r *softwareRenderer) Render(s scene.Scene, cam camera.Camera) {
	r.mu.Lock()
	dst := r.current
	patch := r.lighting
	r.mu.Unlock()
	draw(dst, s, cam, patch, nil)
}

func (r *softwareRenderer) SetLightingPatch(patch *renderer.LightingPatch) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lighting = patch
}

func (r *softwareRenderer) SetLightingUniform(name string, value any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lightingUniforms[name] = value
}

func (r *softwareRenderer) LightingUniform(name string) any {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lightingUniforms[name]
}

// cubeFaces are the capture directions and up vectors of the six env map faces.
var cubeFaces = [6][2]mgl32.Vec3{
	{{1, 0, 0}, {0, 1, 0}},
	{{-1, 0, 0}, {0, 1, 0}},
	{{0, 1, 0}, {0, 0, -1}},
	{{0, -1, 0}, {0, 0, 1}},
	{{0, 0, 1}, {0, 1, 0}},
	{{0, 0, -1}, {0, 1, 0}},
}

func (r *softwareRenderer) RenderEnvMap(ctx context.Context, req renderer.EnvMapRequest) (renderer.EnvMap, error) {
	if req.Resolution <= 0 {
		return nil, fmt.Errorf("env map resolution %d: %w", req.Resolution, renderer.ErrTargetUnavailable)
	}
	r.mu.Lock()
	patch := r.lighting
	clearColor := r.clearColor
	face := min(r.captureFaceSize, req.Resolution)
	r.mu.Unlock()

	// The capture runs off the frame goroutine, so hidden objects are filtered here
	// instead of toggling their shared visibility.
	skip := make(map[uint64]bool, len(req.HideObjects))
	for _, obj := range req.HideObjects {
		if obj != nil && obj.ID() != 0 {
			skip[obj.ID()] = true
		}
	}

	env := &envMap{size: req.Resolution}
	for i, f := range cubeFaces {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		ctrl := camera.NewCameraController(camera.WithTarget(req.WorldCenter.Add(f[0])))
		ctrl.SetPosition(req.WorldCenter)
		cam := camera.NewCamera(
			camera.WithController(ctrl),
			camera.WithUp(f[1]),
			camera.WithFov(math32.Pi/2),
			camera.WithNear(0.01),
		)
		surf := newSurface(face, face)
		surf.clear(clearColor, true, true)
		draw(surf, req.Scene, cam, patch, skip)

		scaled := resize.Resize(uint(req.Resolution), uint(req.Resolution), surf.color.ToNRGBA(), resize.Bilinear)
		env.faces[i] = common.ImageFrom(scaled)
	}
	return env, nil
}

// draw renders every visible object of s into dst: spheres first with depth writes, then
// splats back to front, then quads over the whole surface. Objects whose ID is in skip
// are left out.
func draw(dst *surface, s scene.Scene, cam camera.Camera, patch *renderer.LightingPatch, skip map[uint64]bool) {
	if s == nil || cam == nil {
		return
	}
	var spheres, splats, quads []game_object.GameObject
	for _, obj := range s.Objects() {
		g, ok := obj.(game_object.GameObject)
		if !ok || !g.Visible() || skip[g.ID()] {
			continue
		}
		switch g.Shape() {
		case game_object.ShapeSphere:
			spheres = append(spheres, g)
		case game_object.ShapeSplats:
			splats = append(splats, g)
		case game_object.ShapeQuad:
			quads = append(quads, g)
		}
	}
	for _, g := range spheres {
		drawSphere(dst, g, cam)
	}
	for _, g := range splats {
		drawSplats(dst, g, cam, patch)
	}
	for _, g := range quads {
		drawQuad(dst, g)
	}
}

type projected struct {
	x, y, radius float32
	depth        float32
	rgba         mgl32.Vec4
}

func drawSplats(dst *surface, g game_object.GameObject, cam camera.Camera, patch *renderer.LightingPatch) {
	mesh := g.Mesh()
	if mesh == nil {
		return
	}
	w, h := dst.color.Width, dst.color.Height
	offset := g.Position()
	eye := cam.Position()
	_, _, forward := cam.Basis()
	focal := float32(h) * 0.5 / math32.Tan(cam.Fov()*0.5)

	evaluated := mesh.Evaluate(nil)
	points := make([]projected, 0, len(evaluated))
	for _, sp := range evaluated {
		center := sp.Center.Add(offset)
		ndc, ok := cam.Project(center)
		if !ok || ndc[2] < -1 || ndc[2] > 1 {
			continue
		}
		dist := center.Sub(eye).Dot(forward)
		if dist <= 0 {
			continue
		}
		rgb := sp.RGB()
		if patch != nil && patch.Shade != nil {
			rgb = patch.Shade(rgb, sp.Normal())
		}
		scale := max(sp.Scales[0], sp.Scales[1], sp.Scales[2])
		points = append(points, projected{
			x:      (ndc[0]*0.5 + 0.5) * float32(w),
			y:      (0.5 - ndc[1]*0.5) * float32(h),
			radius: max(scale*focal/dist, 0.75),
			depth:  ndc[2],
			rgba:   rgb.Vec4(sp.RGBA[3]),
		})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].depth > points[j].depth })

	for _, p := range points {
		r := p.radius * 2
		x0, x1 := int(math32.Floor(p.x-r)), int(math32.Ceil(p.x+r))
		y0, y1 := int(math32.Floor(p.y-r)), int(math32.Ceil(p.y+r))
		for y := max(y0, 0); y <= min(y1, h-1); y++ {
			for x := max(x0, 0); x <= min(x1, w-1); x++ {
				if p.depth > dst.depth[y*w+x] {
					continue
				}
				dx, dy := float32(x)+0.5-p.x, float32(y)+0.5-p.y
				falloff := math32.Exp(-0.5 * (dx*dx + dy*dy) / (p.radius * p.radius))
				dst.blend(x, y, p.rgba, p.rgba[3]*falloff)
			}
		}
	}
}

func drawSphere(dst *surface, g game_object.GameObject, cam camera.Camera) {
	w, h := dst.color.Width, dst.color.Height
	center := g.Position()
	ndc, ok := cam.Project(center)
	if !ok {
		return
	}
	eye := cam.Position()
	_, _, forward := cam.Basis()
	dist := center.Sub(eye).Dot(forward)
	if dist <= 0 {
		return
	}
	focal := float32(h) * 0.5 / math32.Tan(cam.Fov()*0.5)
	r := g.Scale() * focal / dist
	cx, cy := (ndc[0]*0.5+0.5)*float32(w), (0.5-ndc[1]*0.5)*float32(h)

	base := mgl32.Vec3{0.8, 0.8, 0.8}
	var reflection mgl32.Vec3
	var mix float32
	if pm, ok := g.Material().(material.PhysicalMaterial); ok {
		base = pm.BaseColor()
		if env, ok := pm.EnvMap().(*envMap); ok && env != nil {
			reflection = env.Average().Vec3().Mul(pm.EnvMapIntensity())
			mix = pm.Metalness() * (1 - pm.Roughness()*0.5)
		}
	}

	for y := max(int(cy-r), 0); y <= min(int(cy+r), h-1); y++ {
		for x := max(int(cx-r), 0); x <= min(int(cx+r), w-1); x++ {
			dx, dy := (float32(x)+0.5-cx)/r, (float32(y)+0.5-cy)/r
			d2 := dx*dx + dy*dy
			if d2 > 1 {
				continue
			}
			if ndc[2] > dst.depth[y*w+x] {
				continue
			}
			facing := math32.Sqrt(1 - d2)
			rgb := common.MixVec3(base.Mul(0.3+0.7*facing), reflection, mix)
			dst.color.Set(x, y, rgb.Vec4(1))
			dst.depth[y*w+x] = ndc[2]
		}
	}
}

func drawQuad(dst *surface, g game_object.GameObject) {
	sm, ok := g.Material().(material.ShaderMaterial)
	if !ok || sm.Disposed() {
		return
	}
	tex, ok := sm.Uniform("inputTexture").(ImageTexture)
	if !ok || tex == nil || tex.Image() == nil {
		log.Printf("[Software] quad %s has no input texture", g.Name())
		return
	}
	out := tex.Image()
	if ref := sm.Reference(); ref != nil {
		out = ref(out)
	}
	dst.blit(out)
}
