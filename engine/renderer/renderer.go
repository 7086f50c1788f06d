// Package renderer declares the contracts the viewer consumes from the splat renderer.
// The renderer itself (device, pipelines, splat sorting and rasterization) is supplied
// by the host; this package only fixes the calls the post-processing core makes and the
// wgpu descriptors it hands over for the resources it owns.
package renderer

import (
	"context"
	"errors"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Carmen-Shannon/splatfx/engine/camera"
	"github.com/Carmen-Shannon/splatfx/engine/scene"
)

// ErrTargetUnavailable is returned when a render target cannot be created, for example
// because the surface has a zero size.
var ErrTargetUnavailable = errors.New("render target unavailable")

// Texture is an opaque handle to a sampled GPU texture owned by the renderer.
type Texture interface {
	// Size returns the texture dimensions in pixels.
	//
	// Returns:
	//   - width, height: dimensions in pixels
	Size() (width, height int)
}

// RenderTarget is an offscreen color buffer (plus optional depth) the renderer can draw
// into instead of the screen.
type RenderTarget interface {
	// Texture returns the color attachment for sampling in a later pass.
	//
	// Returns:
	//   - Texture: the color texture
	Texture() Texture

	// Size returns the target dimensions in pixels.
	//
	// Returns:
	//   - width, height: dimensions in pixels
	Size() (width, height int)

	// Dispose releases the GPU resources. Disposing twice is a no-op.
	Dispose()
}

// EnvMap is a captured environment map. It is owned by whoever requested the capture.
type EnvMap interface {
	// Texture returns the map for binding to a reflective material.
	//
	// Returns:
	//   - Texture: the map texture
	Texture() Texture

	// Dispose releases the GPU resources.
	Dispose()
}

// EnvMapRequest describes one environment capture.
type EnvMapRequest struct {
	// Scene is rendered around WorldCenter.
	Scene scene.Scene

	// WorldCenter is the capture origin, normally the probe position.
	WorldCenter mgl32.Vec3

	// HideObjects are left out of the capture so the probe does not capture itself.
	// Their visibility flags are not touched.
	HideObjects []scene.Object

	// Resolution is the face size in pixels.
	Resolution int
}

// Renderer is the subset of the splat renderer the post-processing core drives.
// All methods except RenderEnvMap are called from the frame thread only.
type Renderer interface {
	// Size returns the drawable size in pixels. Post-processing targets follow it.
	//
	// Returns:
	//   - width, height: drawable size in pixels
	Size() (width, height int)

	// CreateRenderTarget allocates an offscreen target.
	//
	// Parameters:
	//   - desc: the target description
	//
	// Returns:
	//   - RenderTarget: the new target
	//   - error: ErrTargetUnavailable or a backend error
	CreateRenderTarget(desc RenderTargetDescriptor) (RenderTarget, error)

	// SetRenderTarget redirects subsequent draws. A nil target selects the screen.
	//
	// Parameters:
	//   - target: the destination, or nil for the screen
	SetRenderTarget(target RenderTarget)

	// Clear clears the selected buffers of the current destination.
	//
	// Parameters:
	//   - color, depth, stencil: which buffers to clear
	Clear(color, depth, stencil bool)

	// Render draws every visible object of s from cam into the current destination.
	//
	// Parameters:
	//   - s: the scene to draw
	//   - cam: the viewpoint
	Render(s scene.Scene, cam camera.Camera)

	// RenderEnvMap captures the scene around req.WorldCenter. It may block for a long
	// time and is never called on the frame thread. Cancellation is cooperative: a
	// backend may ignore ctx and finish the capture.
	//
	// Parameters:
	//   - ctx: cancelled when the result is no longer wanted
	//   - req: the capture description
	//
	// Returns:
	//   - EnvMap: the captured map
	//   - error: a capture error
	RenderEnvMap(ctx context.Context, req EnvMapRequest) (EnvMap, error)
}

// Presenter shows the finished frame on a display surface. It is driven from the frame
// thread after the composer has rendered.
type Presenter interface {
	// Present copies the current screen image to the display.
	//
	// Returns:
	//   - error: an error if the surface could not be acquired or submitted
	Present() error

	// Resize reconfigures the display surface.
	//
	// Parameters:
	//   - width, height: the new surface size in pixels
	Resize(width, height int)

	// Release frees the device resources. Releasing twice is a no-op.
	Release()
}

// LightingPatch is a lighting rule for the splat material.
type LightingPatch struct {
	// Globals holds WGSL helper declarations.
	Globals string

	// Statements operate on `color` (vec3f) and `normal` (vec3f) and read the uniforms
	// pushed through SetLightingUniform.
	Statements string

	// Shade is the CPU form of the same rule for software backends.
	Shade func(rgb, normal mgl32.Vec3) mgl32.Vec3
}

// LightingTarget is implemented by renderers that accept a lighting patch for the splat
// material. Renderers that do not implement it render unlit.
type LightingTarget interface {
	// SetLightingPatch installs or, with nil, removes the lighting rule.
	//
	// Parameters:
	//   - patch: the rule
	SetLightingPatch(patch *LightingPatch)

	// SetLightingUniform updates one lighting uniform without rebuilding the material.
	//
	// Parameters:
	//   - name: the uniform name
	//   - value: float32, bool or mgl32.Vec3
	SetLightingUniform(name string, value any)
}
