package game_object

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"

	"github.com/Carmen-Shannon/splatfx/common"
	"github.com/Carmen-Shannon/splatfx/engine/splat"
)

func TestIntersectSphere(t *testing.T) {
	probe := NewGameObject(WithSphere(0.5), WithPosition(mgl32.Vec3{0, 0, -3}))
	hit, ok := IntersectSphere(probe, common.Ray{Origin: mgl32.Vec3{}, Direction: mgl32.Vec3{0, 0, -1}})
	assert.True(t, ok)
	assert.InDelta(t, 2.5, hit, 1e-5)

	_, ok = IntersectSphere(probe, common.Ray{Origin: mgl32.Vec3{}, Direction: mgl32.Vec3{0, 1, 0}})
	assert.False(t, ok)

	_, ok = IntersectSphere(probe, common.Ray{Origin: mgl32.Vec3{0, 0, -6}, Direction: mgl32.Vec3{0, 0, -1}})
	assert.False(t, ok, "spheres behind the origin are not hit")

	inside, ok := IntersectSphere(probe, common.Ray{Origin: mgl32.Vec3{0, 0, -3}, Direction: mgl32.Vec3{1, 0, 0}})
	assert.True(t, ok)
	assert.InDelta(t, 0.5, inside, 1e-5)

	quad := NewGameObject(WithQuad())
	_, ok = IntersectSphere(quad, common.Ray{Direction: mgl32.Vec3{0, 0, -1}})
	assert.False(t, ok)
}

func TestBoundsFollowShape(t *testing.T) {
	mesh := splat.NewMemoryMesh([]splat.Splat{{Center: mgl32.Vec3{-1, 0, 0}}, {Center: mgl32.Vec3{1, 2, 0}}})
	obj := NewGameObject(WithMesh(mesh), WithPosition(mgl32.Vec3{0, 1, 0}))
	assert.Equal(t, mgl32.Vec3{-1, 1, 0}, obj.Bounds().Min)
	assert.Equal(t, mgl32.Vec3{1, 3, 0}, obj.Bounds().Max)

	probe := NewGameObject(WithSphere(0.08), WithVisible(false))
	assert.False(t, probe.Visible())
	assert.InDelta(t, 0.16, probe.Bounds().Size()[0], 1e-6)
}
