package software

import "github.com/go-gl/mathgl/mgl32"

// RendererBuilderOption is a functional option for configuring the software renderer.
type RendererBuilderOption func(*softwareRenderer)

// WithClearColor sets the color Clear fills with. Defaults to opaque black.
//
// Parameters:
//   - c: the clear color
//
// Returns:
//   - RendererBuilderOption: option function to apply
func WithClearColor(c mgl32.Vec4) RendererBuilderOption {
	return func(r *softwareRenderer) {
		r.clearColor = c
	}
}

// WithCaptureFaceSize caps the internal render size of each env map face before it is
// resized to the requested resolution. Defaults to 64.
//
// Parameters:
//   - size: the face size in pixels
//
// Returns:
//   - RendererBuilderOption: option function to apply
func WithCaptureFaceSize(size int) RendererBuilderOption {
	return func(r *softwareRenderer) {
		r.captureFaceSize = max(size, 1)
	}
}
