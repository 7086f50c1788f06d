package camera

import (
	"math"
	"sync"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Carmen-Shannon/splatfx/common"
)

type cameraImpl struct {
	mu *sync.Mutex

	up mgl32.Vec3

	fov    float32
	aspect float32
	near   float32
	far    float32

	viewMatrix            mgl32.Mat4
	projectionMatrix      mgl32.Mat4
	viewProjectionMatrix  mgl32.Mat4
	inverseViewProjMatrix mgl32.Mat4

	position, target       mgl32.Vec3
	right, upAxis, forward mgl32.Vec3

	controller CameraController
}

// Camera defines the interface for the viewer camera.
// The camera holds perspective settings and computes view/projection matrices
// from an attached CameraController each frame via Update().
type Camera interface {
	// Up returns the camera's world up vector.
	//
	// Returns:
	//   - mgl32.Vec3: up vector
	Up() mgl32.Vec3

	// Fov returns the vertical field of view in radians.
	Fov() float32

	// Aspect returns the aspect ratio (width / height).
	Aspect() float32

	// Near returns the near clipping plane distance.
	Near() float32

	// Far returns the far clipping plane distance.
	Far() float32

	// Position returns the eye position as of the last Update.
	//
	// Returns:
	//   - mgl32.Vec3: world-space eye position
	Position() mgl32.Vec3

	// Target returns the look-at point as of the last Update.
	//
	// Returns:
	//   - mgl32.Vec3: world-space target
	Target() mgl32.Vec3

	// Basis returns the camera's local axes in world space.
	//
	// Returns:
	//   - right, up, forward: unit vectors
	Basis() (right, up, forward mgl32.Vec3)

	// View returns the current view matrix.
	View() mgl32.Mat4

	// Projection returns the current projection matrix.
	Projection() mgl32.Mat4

	// ViewProjection returns the combined view-projection matrix.
	ViewProjection() mgl32.Mat4

	// Ray unprojects a normalized device coordinate into a world-space ray starting at the
	// eye. NDC x grows to the right and y grows upward, both in [-1, 1].
	//
	// Parameters:
	//   - ndc: the normalized device coordinate
	//
	// Returns:
	//   - common.Ray: the pick ray with a unit direction
	Ray(ndc mgl32.Vec2) common.Ray

	// Project maps a world-space point to normalized device coordinates.
	//
	// Parameters:
	//   - p: the world-space point
	//
	// Returns:
	//   - mgl32.Vec3: NDC x, y and depth
	//   - bool: false if the point is behind the eye
	Project(p mgl32.Vec3) (mgl32.Vec3, bool)

	// Controller returns the attached CameraController.
	Controller() CameraController

	// Update reads position/target from the controller and recomputes matrices.
	// Should be called once per frame.
	Update()

	// SetUp sets the camera's up vector.
	SetUp(up mgl32.Vec3)

	// SetFov sets the field of view in radians and recomputes matrices.
	SetFov(fov float32)

	// SetAspect sets the aspect ratio (width / height) and recomputes matrices.
	//
	// Parameters:
	//   - aspect: the aspect ratio
	SetAspect(aspect float32)

	// SetNear sets the near clipping plane distance and recomputes matrices.
	SetNear(near float32)

	// SetFar sets the far clipping plane distance and recomputes matrices.
	SetFar(far float32)

	// SetController attaches a CameraController to the camera.
	//
	// Parameters:
	//   - ctrl: the controller to attach
	SetController(ctrl CameraController)
}

var _ Camera = &cameraImpl{}

// NewCamera creates a new Camera with default perspective settings. If no controller is
// supplied an orbit controller with default settings is attached.
//
// Parameters:
//   - options: functional options to configure the camera
//
// Returns:
//   - Camera: the newly created camera
func NewCamera(options ...CameraBuilderOption) Camera {
	c := &cameraImpl{
		mu:     &sync.Mutex{},
		up:     mgl32.Vec3{0, 1, 0},
		fov:    float32(50.0 * (math.Pi / 180.0)),
		aspect: 1.0,
		near:   0.01,
		far:    100.0,
	}
	for _, option := range options {
		option(c)
	}
	if c.controller == nil {
		c.controller = NewCameraController()
	}
	c.updateMatrices()
	return c
}

func (c *cameraImpl) Up() mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.up
}

func (c *cameraImpl) Fov() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fov
}

func (c *cameraImpl) Aspect() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.aspect
}

func (c *cameraImpl) Near() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.near
}

func (c *cameraImpl) Far() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.far
}

func (c *cameraImpl) Position() mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.position
}

func (c *cameraImpl) Target() mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.target
}

func (c *cameraImpl) Basis() (right, up, forward mgl32.Vec3) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.right, c.upAxis, c.forward
}

func (c *cameraImpl) View() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewMatrix
}

func (c *cameraImpl) Projection() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.projectionMatrix
}

func (c *cameraImpl) ViewProjection() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewProjectionMatrix
}

func (c *cameraImpl) Ray(ndc mgl32.Vec2) common.Ray {
	c.mu.Lock()
	defer c.mu.Unlock()
	p := c.inverseViewProjMatrix.Mul4x1(mgl32.Vec4{ndc[0], ndc[1], 0.5, 1})
	if p[3] == 0 {
		return common.Ray{Origin: c.position, Direction: c.forward}
	}
	world := p.Vec3().Mul(1 / p[3])
	dir := world.Sub(c.position)
	if dir.Len() < 1e-8 {
		dir = c.forward
	}
	return common.Ray{Origin: c.position, Direction: dir.Normalize()}
}

func (c *cameraImpl) Project(p mgl32.Vec3) (mgl32.Vec3, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	clip := c.viewProjectionMatrix.Mul4x1(p.Vec4(1))
	if clip[3] <= 0 {
		return mgl32.Vec3{}, false
	}
	return clip.Vec3().Mul(1 / clip[3]), true
}

func (c *cameraImpl) SetUp(up mgl32.Vec3) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.up = up
	c.updateMatrices()
}

func (c *cameraImpl) SetFov(fov float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fov = fov
	c.updateMatrices()
}

func (c *cameraImpl) SetAspect(aspect float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.aspect = aspect
	c.updateMatrices()
}

func (c *cameraImpl) SetNear(near float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.near = near
	c.updateMatrices()
}

func (c *cameraImpl) SetFar(far float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.far = far
	c.updateMatrices()
}

func (c *cameraImpl) Controller() CameraController {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.controller
}

func (c *cameraImpl) Update() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.updateMatrices()
}

func (c *cameraImpl) SetController(ctrl CameraController) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.controller = ctrl
	c.updateMatrices()
}

// updateMatrices recalculates the view, projection and derived matrices from the
// controller's position and target. Caller must hold the mutex.
func (c *cameraImpl) updateMatrices() {
	if c.controller == nil {
		return
	}
	c.position = c.controller.Position()
	c.target = c.controller.Target()

	c.viewMatrix = mgl32.LookAtV(c.position, c.target, c.up)
	c.projectionMatrix = mgl32.Perspective(c.fov, c.aspect, c.near, c.far)
	c.viewProjectionMatrix = c.projectionMatrix.Mul4(c.viewMatrix)
	c.inverseViewProjMatrix = c.viewProjectionMatrix.Inv()

	// rows of the view rotation are the camera axes
	c.right = mgl32.Vec3{c.viewMatrix.At(0, 0), c.viewMatrix.At(0, 1), c.viewMatrix.At(0, 2)}
	c.upAxis = mgl32.Vec3{c.viewMatrix.At(1, 0), c.viewMatrix.At(1, 1), c.viewMatrix.At(1, 2)}
	c.forward = mgl32.Vec3{-c.viewMatrix.At(2, 0), -c.viewMatrix.At(2, 1), -c.viewMatrix.At(2, 2)}
}

// NDC converts a pixel position on a width x height viewport to normalized device
// coordinates with y up. A degenerate viewport maps to the center.
//
// Parameters:
//   - x, y: the pixel position, origin top-left
//   - width, height: the viewport size in pixels
//
// Returns:
//   - mgl32.Vec2: the position in [-1, 1]
func NDC(x, y float32, width, height int) mgl32.Vec2 {
	if width <= 0 || height <= 0 {
		return mgl32.Vec2{}
	}
	return mgl32.Vec2{x/float32(width)*2 - 1, -(y/float32(height))*2 + 1}
}
