package viewer

import (
	"time"

	"github.com/Carmen-Shannon/splatfx/engine/camera"
	"github.com/Carmen-Shannon/splatfx/engine/composer"
	"github.com/Carmen-Shannon/splatfx/engine/environment"
	"github.com/Carmen-Shannon/splatfx/engine/renderer"
	"github.com/Carmen-Shannon/splatfx/engine/scene"
	"github.com/Carmen-Shannon/splatfx/engine/scheduler"
	"github.com/Carmen-Shannon/splatfx/engine/splat"
	"github.com/Carmen-Shannon/splatfx/engine/window"
)

// ViewerBuilderOption is a functional option for configuring the viewer.
type ViewerBuilderOption func(*viewer)

// WithRenderer sets the splat renderer. Required.
//
// Parameters:
//   - r: the renderer
//
// Returns:
//   - ViewerBuilderOption: option function to apply
func WithRenderer(r renderer.Renderer) ViewerBuilderOption {
	return func(v *viewer) {
		v.renderer = r
	}
}

// WithScene sets the scene the viewer draws. The mesh is added to it.
func WithScene(s scene.Scene) ViewerBuilderOption {
	return func(v *viewer) {
		v.scene = s
	}
}

// WithCamera sets the viewpoint. Its controller is used unless WithControls is given.
func WithCamera(cam camera.Camera) ViewerBuilderOption {
	return func(v *viewer) {
		v.camera = cam
	}
}

// WithControls sets the camera controls that brush and probe drags disable.
//
// Parameters:
//   - ctrl: the controller
//
// Returns:
//   - ViewerBuilderOption: option function to apply
func WithControls(ctrl camera.CameraController) ViewerBuilderOption {
	return func(v *viewer) {
		v.controls = ctrl
	}
}

// WithMesh sets the splat mesh that effects, lighting and the brush modify.
func WithMesh(mesh splat.Mesh) ViewerBuilderOption {
	return func(v *viewer) {
		v.mesh = mesh
	}
}

// WithWindow binds a native window. Run drives frames through its message loop.
func WithWindow(w window.Window) ViewerBuilderOption {
	return func(v *viewer) {
		v.window = w
	}
}

// WithPresenter shows every finished frame through p, for example a gpu presenter on the
// window surface. The viewer releases it on Dispose.
//
// Parameters:
//   - p: the presenter
//
// Returns:
//   - ViewerBuilderOption: option function to apply
func WithPresenter(p renderer.Presenter) ViewerBuilderOption {
	return func(v *viewer) {
		v.presenter = p
	}
}

// WithProfiling enables the frame rate and memory log.
func WithProfiling(enabled bool) ViewerBuilderOption {
	return func(v *viewer) {
		v.profilingEnabled = enabled
	}
}

// WithRenderFrameLimit caps Run at fps frames per second. Zero leaves a window uncapped and
// paces a headless loop at 60 frames per second.
//
// Parameters:
//   - fps: the frame rate cap
//
// Returns:
//   - ViewerBuilderOption: option function to apply
func WithRenderFrameLimit(fps float64) ViewerBuilderOption {
	return func(v *viewer) {
		if fps <= 0 {
			v.frameInterval = 0
			return
		}
		v.frameInterval = time.Duration(float64(time.Second) / fps)
	}
}

// WithMaxFrames stops Run after n frames. Zero runs until stopped.
func WithMaxFrames(n int) ViewerBuilderOption {
	return func(v *viewer) {
		v.maxFrames = max(n, 0)
	}
}

// WithMoveSpeed sets the move-mode step per frame.
func WithMoveSpeed(speed float32) ViewerBuilderOption {
	return func(v *viewer) {
		if speed > 0 {
			v.moveSpeed = speed
		}
	}
}

// WithClock sets the time source of the scheduler and profiler.
func WithClock(clock scheduler.Clock) ViewerBuilderOption {
	return func(v *viewer) {
		v.clock = clock
	}
}

// WithCaptureExecutor sets where environment captures run. The default is a one-worker pool.
func WithCaptureExecutor(e environment.Executor) ViewerBuilderOption {
	return func(v *viewer) {
		v.executor = e
	}
}

// WithEnvironmentOptions appends options to the environment controller.
func WithEnvironmentOptions(options ...environment.ControllerBuilderOption) ViewerBuilderOption {
	return func(v *viewer) {
		v.envOptions = append(v.envOptions, options...)
	}
}

// WithComposerOptions appends options to the render composer.
func WithComposerOptions(options ...composer.ComposerBuilderOption) ViewerBuilderOption {
	return func(v *viewer) {
		v.composerOpts = append(v.composerOpts, options...)
	}
}
