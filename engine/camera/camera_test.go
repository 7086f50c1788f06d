package camera

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRayThroughCenterPointsAtTarget(t *testing.T) {
	ctrl := NewCameraController(WithTarget(mgl32.Vec3{0, 0, 0}))
	ctrl.SetPosition(mgl32.Vec3{0, 0, 3})
	cam := NewCamera(WithController(ctrl), WithAspect(1.5))

	ray := cam.Ray(mgl32.Vec2{0, 0})
	assert.InDelta(t, 0, ray.Origin.Sub(mgl32.Vec3{0, 0, 3}).Len(), 1e-4)
	assert.InDelta(t, 0, ray.Direction.Sub(mgl32.Vec3{0, 0, -1}).Len(), 1e-4)
	assert.InDelta(t, 1, ray.Direction.Len(), 1e-5)

	right, up, forward := cam.Basis()
	assert.InDelta(t, 1, right[0], 1e-5)
	assert.InDelta(t, 1, up[1], 1e-5)
	assert.InDelta(t, -1, forward[2], 1e-5)

	// NDC x grows to the right
	side := cam.Ray(mgl32.Vec2{0.5, 0})
	assert.Greater(t, side.Direction[0], float32(0))
	above := cam.Ray(mgl32.Vec2{0, 0.5})
	assert.Greater(t, above.Direction[1], float32(0))
}

func TestProjectRoundTrip(t *testing.T) {
	ctrl := NewCameraController()
	ctrl.SetPosition(mgl32.Vec3{1, 0.5, 2})
	cam := NewCamera(WithController(ctrl))

	ndc, ok := cam.Project(mgl32.Vec3{0, 0, 0})
	require.True(t, ok)
	assert.InDelta(t, 0, ndc[0], 1e-4)
	assert.InDelta(t, 0, ndc[1], 1e-4)

	_, ok = cam.Project(cam.Position().Add(cam.Position().Normalize()))
	assert.False(t, ok, "points behind the eye do not project")
}

func TestControllerSetPositionKeepsOrbit(t *testing.T) {
	ctrl := NewCameraController(WithTarget(mgl32.Vec3{1, 0, 1}))
	ctrl.SetPosition(mgl32.Vec3{1.2, 0, 1.2})
	assert.InDelta(t, 0.2828, ctrl.Radius(), 1e-3)
	assert.InDelta(t, 0, ctrl.Elevation(), 1e-5)

	ctrl.SetRadius(ctrl.Radius())
	assert.InDelta(t, 0, ctrl.Position().Sub(mgl32.Vec3{1.2, 0, 1.2}).Len(), 1e-4)
}

func TestDisabledControllerIgnoresInput(t *testing.T) {
	ctrl := NewCameraController()
	start := ctrl.Position()

	ctrl.SetEnabled(false)
	ctrl.Rotate(100, 0)
	ctrl.Zoom(1)
	ctrl.OrbitLeft()
	ctrl.PanRight(1)
	ctrl.Update()
	assert.Equal(t, start, ctrl.Position())

	ctrl.SetEnabled(true)
	ctrl.Rotate(100, 0)
	assert.Equal(t, start, ctrl.Position(), "rotation applies on Update")
	ctrl.Update()
	assert.NotEqual(t, start, ctrl.Position())
	assert.InDelta(t, 1, ctrl.Radius(), 1e-5)
}

func TestZoomClampsRadius(t *testing.T) {
	ctrl := NewCameraController(WithRadiusBounds(0.5, 2), WithSpeeds(0, 0, 1, 0))
	ctrl.Zoom(10)
	assert.Equal(t, float32(0.5), ctrl.Radius())
	ctrl.Zoom(-10)
	assert.Equal(t, float32(2), ctrl.Radius())
}

func TestNDC(t *testing.T) {
	assert.Equal(t, mgl32.Vec2{-1, 1}, NDC(0, 0, 800, 600))
	assert.Equal(t, mgl32.Vec2{0, 0}, NDC(400, 300, 800, 600))
	assert.Equal(t, mgl32.Vec2{1, -1}, NDC(800, 600, 800, 600))
	assert.Equal(t, mgl32.Vec2{}, NDC(10, 10, 0, 600))
}
