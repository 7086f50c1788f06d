package environment

import (
	"time"

	"github.com/Carmen-Shannon/splatfx/engine/camera"
	"github.com/Carmen-Shannon/splatfx/engine/scheduler"
)

// ControllerBuilderOption is a functional option for configuring the environment Controller.
type ControllerBuilderOption func(*controller)

// WithScheduler sets the scheduler that owns the debounce, settle and follow-up slots.
//
// Parameters:
//   - s: the frame scheduler
//
// Returns:
//   - ControllerBuilderOption: option function to apply
func WithScheduler(s *scheduler.Scheduler) ControllerBuilderOption {
	return func(c *controller) {
		c.sched = s
	}
}

// WithExecutor sets where captures run. The default is a worker pool.
//
// Parameters:
//   - e: the capture executor
//
// Returns:
//   - ControllerBuilderOption: option function to apply
func WithExecutor(e Executor) ControllerBuilderOption {
	return func(c *controller) {
		c.exec = e
	}
}

// WithControls sets the camera controls disabled while the probe is dragged. When unset
// the camera's own controller is used.
//
// Parameters:
//   - ctrl: the orbit controls
//
// Returns:
//   - ControllerBuilderOption: option function to apply
func WithControls(ctrl camera.CameraController) ControllerBuilderOption {
	return func(c *controller) {
		c.controls = ctrl
	}
}

// WithRefreshInterval enables a periodic low-quality recapture while a map is ready.
// Zero disables it, which is the default.
//
// Parameters:
//   - d: the refresh period
//
// Returns:
//   - ControllerBuilderOption: option function to apply
func WithRefreshInterval(d time.Duration) ControllerBuilderOption {
	return func(c *controller) {
		c.refreshInterval = d
	}
}

// WithResolutions overrides the low and high capture resolutions.
//
// Parameters:
//   - low: the face size used while dragging
//   - high: the face size of the initial and settled captures
//
// Returns:
//   - ControllerBuilderOption: option function to apply
func WithResolutions(low, high int) ControllerBuilderOption {
	return func(c *controller) {
		if low > 0 {
			c.lowRes = low
		}
		if high > 0 {
			c.highRes = high
		}
	}
}
