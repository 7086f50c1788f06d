package camera

import "github.com/go-gl/mathgl/mgl32"

// CameraControllerOption is a functional option for configuring a CameraController.
type CameraControllerOption func(*cameraControllerImpl)

// WithOrbit sets the starting spherical coordinates around the target.
//
// Parameters:
//   - radius: distance from the target
//   - azimuth: horizontal angle in radians, 0 looks down -Z from +Z
//   - elevation: vertical angle in radians above the horizontal plane
//
// Returns:
//   - CameraControllerOption: option function to apply
func WithOrbit(radius, azimuth, elevation float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.radius = radius
		cc.azimuth = azimuth
		cc.elevation = elevation
	}
}

// WithTarget sets the look-at point.
func WithTarget(target mgl32.Vec3) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.target = target
	}
}

// WithEnabled sets whether user input moves the camera. Defaults to true.
func WithEnabled(enabled bool) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.enabled = enabled
	}
}

// WithRadiusBounds limits how far Zoom and SetRadius can move the camera from the target.
//
// Parameters:
//   - lo, hi: the closest and farthest distance
//
// Returns:
//   - CameraControllerOption: option function to apply
func WithRadiusBounds(lo, hi float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.minRadius, cc.maxRadius = lo, hi
	}
}

// WithElevationBounds limits the vertical angle so the camera cannot flip over the poles.
func WithElevationBounds(lo, hi float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.minElevation, cc.maxElevation = lo, hi
	}
}

// WithSpeeds scales the input handlers. A zero argument keeps that default.
//
// Parameters:
//   - orbit: radians per OrbitLeft/OrbitRight/OrbitUp/OrbitDown step
//   - drag: radians per pixel of Rotate
//   - zoom: multiplier on Zoom deltas
//   - pan: multiplier on the Pan deltas
//
// Returns:
//   - CameraControllerOption: option function to apply
func WithSpeeds(orbit, drag, zoom, pan float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		if orbit > 0 {
			cc.orbitSpeed = orbit
		}
		if drag > 0 {
			cc.mouseSensitivity = drag
		}
		if zoom > 0 {
			cc.zoomSpeed = zoom
		}
		if pan > 0 {
			cc.panSpeed = pan
		}
	}
}
