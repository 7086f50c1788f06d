package gpu

import (
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Carmen-Shannon/splatfx/engine/renderer/shader"
)

// PresenterBuilderOption is a functional option for configuring a presenter.
type PresenterBuilderOption func(*wgpuPresenter)

// WithProgram draws the frame through p instead of the passthrough copy, for example an
// edge pass program to sharpen on the GPU.
//
// Parameters:
//   - p: a fullscreen post-processing program
//
// Returns:
//   - PresenterBuilderOption: option function to apply
func WithProgram(p shader.Program) PresenterBuilderOption {
	return func(wp *wgpuPresenter) {
		wp.program = p
	}
}

// WithVSync selects Fifo presentation when on and Immediate when off. Defaults to on.
func WithVSync(on bool) PresenterBuilderOption {
	return func(wp *wgpuPresenter) {
		if on {
			wp.presentMode = wgpu.PresentModeFifo
			return
		}
		wp.presentMode = wgpu.PresentModeImmediate
	}
}

// WithForceFallbackAdapter requests the software adapter.
func WithForceFallbackAdapter(force bool) PresenterBuilderOption {
	return func(wp *wgpuPresenter) {
		wp.forceFallbackAdapter = force
	}
}

// WithClearColor sets the color behind the frame.
func WithClearColor(c mgl32.Vec4) PresenterBuilderOption {
	return func(wp *wgpuPresenter) {
		wp.clearColor = wgpu.Color{R: float64(c[0]), G: float64(c[1]), B: float64(c[2]), A: float64(c[3])}
	}
}
