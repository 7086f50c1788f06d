package brush

import "github.com/Carmen-Shannon/splatfx/engine/camera"

// ControllerBuilderOption is a functional option for configuring the brush Controller.
type ControllerBuilderOption func(*controller)

// WithControls sets the camera controls that paint mode disables. When unset the camera's
// own controller is used.
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
