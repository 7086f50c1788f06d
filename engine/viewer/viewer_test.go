package viewer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/splatfx/common"
	"github.com/Carmen-Shannon/splatfx/engine/camera"
	"github.com/Carmen-Shannon/splatfx/engine/environment"
	"github.com/Carmen-Shannon/splatfx/engine/renderer/software"
	"github.com/Carmen-Shannon/splatfx/engine/scene"
	"github.com/Carmen-Shannon/splatfx/engine/scheduler"
	"github.com/Carmen-Shannon/splatfx/engine/splat"
	"github.com/Carmen-Shannon/splatfx/engine/window"
)

func testMesh() splat.Mesh {
	return splat.NewMemoryMesh([]splat.Splat{
		{Center: mgl32.Vec3{-0.5, -0.5, -0.5}, Scales: mgl32.Vec3{0.05, 0.05, 0.05}, Quaternion: mgl32.QuatIdent(), RGBA: mgl32.Vec4{0.8, 0.4, 0.2, 1}},
		{Center: mgl32.Vec3{0.5, 0.5, 0.5}, Scales: mgl32.Vec3{0.05, 0.05, 0.05}, Quaternion: mgl32.QuatIdent(), RGBA: mgl32.Vec4{0.2, 0.4, 0.8, 1}},
	})
}

func newTestViewer(t *testing.T, options ...ViewerBuilderOption) (Viewer, *scheduler.ManualClock) {
	t.Helper()
	clock := scheduler.NewManualClock(time.Unix(0, 0))
	options = append([]ViewerBuilderOption{
		WithRenderer(software.NewRenderer(32, 32)),
		WithMesh(testMesh()),
		WithClock(clock.Now),
		WithCaptureExecutor(environment.InlineExecutor()),
	}, options...)
	v, err := NewViewer(options...)
	require.NoError(t, err)
	t.Cleanup(v.Dispose)
	return v, clock
}

// fakeWindow runs its update callback until closed.
type fakeWindow struct {
	running bool
	w, h    int

	update      func()
	resize      func(int, int)
	keyDown     func(int)
	keyUp       func(int)
	scroll      func(float32)
	pointerDown func(window.MouseButton, float32, float32)
	pointerUp   func(window.MouseButton, float32, float32)
	pointerMove func(float32, float32)
}

var _ window.Window = &fakeWindow{}

func (f *fakeWindow) SetUpdateCallback(cb func())         { f.update = cb }
func (f *fakeWindow) SetResizeCallback(cb func(int, int)) { f.resize = cb }
func (f *fakeWindow) SetScrollCallback(cb func(float32))  { f.scroll = cb }
func (f *fakeWindow) SetKeyDownCallback(cb func(int))     { f.keyDown = cb }
func (f *fakeWindow) SetKeyUpCallback(cb func(int))       { f.keyUp = cb }
func (f *fakeWindow) SetPointerMoveCallback(cb func(x, y float32)) {
	f.pointerMove = cb
}
func (f *fakeWindow) SetPointerDownCallback(cb func(window.MouseButton, float32, float32)) {
	f.pointerDown = cb
}
func (f *fakeWindow) SetPointerUpCallback(cb func(window.MouseButton, float32, float32)) {
	f.pointerUp = cb
}
func (f *fakeWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor { return nil }
func (f *fakeWindow) IsRunning() bool                            { return f.running }
func (f *fakeWindow) Size() (int, int)                           { return f.w, f.h }

func (f *fakeWindow) Close() error {
	f.running = false
	return nil
}

func (f *fakeWindow) ProcessMessages() {
	for f.running {
		if f.update != nil {
			f.update()
		}
	}
}

func TestNewViewerRequiresRenderer(t *testing.T) {
	_, err := NewViewer(WithMesh(testMesh()))
	assert.ErrorIs(t, err, ErrNoRenderer)
}

func TestCameraStartsBesideMeshCenter(t *testing.T) {
	v, _ := newTestViewer(t)
	pos := v.Camera().Position()
	assert.InDelta(t, 0.2, pos.X(), 1e-4)
	assert.InDelta(t, 0, pos.Y(), 1e-4)
	assert.InDelta(t, 0.2, pos.Z(), 1e-4)
	assert.InDelta(t, 0, v.Camera().Target().Len(), 1e-5)
}

func TestMeshIsAddedToScene(t *testing.T) {
	s := scene.NewScene("custom")
	v, _ := newTestViewer(t, WithScene(s))
	assert.Same(t, s, v.Scene())
	// the splats plus the reflection probe
	assert.Equal(t, 2, s.Count())
}

func TestFrameRunsScheduledTasks(t *testing.T) {
	v, _ := newTestViewer(t)
	ran := false
	v.Scheduler().NewSlot("probe").Schedule(0, func() { ran = true })

	v.Frame()
	assert.True(t, ran)
	assert.Equal(t, 1, v.Frames())
}

// panicRenderer panics whenever the scene is drawn.
type panicRenderer struct {
	software.Renderer
}

func (r panicRenderer) Render(scene.Scene, camera.Camera) {
	panic("draw failed")
}

func TestFrameRecoversFromPanics(t *testing.T) {
	v, _ := newTestViewer(t, WithRenderer(panicRenderer{software.NewRenderer(16, 16)}))
	ran := 0
	slot := v.Scheduler().NewSlot("after")
	slot.Schedule(0, func() { ran++ })

	assert.NotPanics(t, v.Frame)
	assert.NotPanics(t, v.Frame)
	assert.Equal(t, 1, ran, "steps before the render still run")
	assert.Equal(t, 2, v.Frames())
}

func TestMoveModeTranslatesAlongGround(t *testing.T) {
	v, _ := newTestViewer(t)
	v.KeyDown(common.KeyW)
	v.Frame()
	assert.InDelta(t, 0, v.Camera().Target().Len(), 1e-5, "move mode is off by default")

	v.SetMoveMode(true)
	v.KeyDown(common.KeyW)
	v.Frame()
	target := v.Camera().Target()
	assert.InDelta(t, DefaultMoveSpeed, target.Len(), 1e-4)
	assert.Less(t, target.X(), float32(0))
	assert.Less(t, target.Z(), float32(0))
	assert.InDelta(t, 0, target.Y(), 1e-6)

	v.KeyUp(common.KeyW)
	v.Frame()
	assert.InDelta(t, DefaultMoveSpeed, v.Camera().Target().Len(), 1e-4)
}

func TestMoveModeDisablesOrbitControls(t *testing.T) {
	v, _ := newTestViewer(t)
	controls := v.Camera().Controller()
	require.True(t, controls.Enabled())

	v.SetMoveMode(true)
	assert.False(t, controls.Enabled())
	azimuth := controls.Azimuth()
	v.PointerDown(2, 2)
	v.PointerMove(30, 2)
	v.PointerUp()
	v.Frame()
	assert.Equal(t, azimuth, controls.Azimuth(), "dragging does not orbit in move mode")

	v.SetMoveMode(false)
	assert.True(t, controls.Enabled())
}

func TestOpposingKeysCancel(t *testing.T) {
	v, _ := newTestViewer(t, WithMoveSpeed(0.5))
	v.SetMoveMode(true)
	v.KeyDown(common.KeyA)
	v.KeyDown(common.KeyD)
	v.Frame()
	assert.InDelta(t, 0, v.Camera().Target().Len(), 1e-5)
}

func TestBrushKeysAndPointerRouting(t *testing.T) {
	v, _ := newTestViewer(t)
	v.KeyDown(common.Key1)
	require.True(t, v.Brush().PaintMode())
	assert.False(t, v.Camera().Controller().Enabled())

	v.PointerDown(16, 16)
	assert.True(t, v.Brush().Dragging())
	v.PointerMove(17, 16)
	v.PointerUp()
	assert.False(t, v.Brush().Dragging())

	v.KeyDown(common.KeyEsc)
	assert.False(t, v.Brush().PaintMode())
	assert.True(t, v.Camera().Controller().Enabled())
}

func TestRunStopsAtFrameLimit(t *testing.T) {
	v, _ := newTestViewer(t, WithMaxFrames(3), WithRenderFrameLimit(1000))
	require.NoError(t, v.Run(context.Background()))
	assert.Equal(t, 3, v.Frames())
}

func TestRunStopsOnContext(t *testing.T) {
	v, _ := newTestViewer(t, WithRenderFrameLimit(1000))
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, v.Run(ctx), context.DeadlineExceeded)
}

func TestRunAfterQuitReturnsImmediately(t *testing.T) {
	v, _ := newTestViewer(t)
	v.Quit()
	v.Quit()
	assert.NoError(t, v.Run(context.Background()))
	assert.Zero(t, v.Frames())
}

func TestRunDrivesWindow(t *testing.T) {
	w := &fakeWindow{running: true, w: 32, h: 32}
	v, _ := newTestViewer(t, WithWindow(w), WithMaxFrames(2))
	require.NoError(t, v.Run(context.Background()))
	assert.Equal(t, 2, v.Frames())
	assert.False(t, w.running, "the window is closed when the loop stops")
}

func TestBindWindowRoutesInput(t *testing.T) {
	w := &fakeWindow{running: true, w: 32, h: 32}
	v, _ := newTestViewer(t)
	v.BindWindow(w)

	w.keyDown(common.Key1)
	assert.True(t, v.Brush().PaintMode())

	w.pointerDown(window.MouseRight, 16, 16)
	assert.False(t, v.Brush().Dragging(), "only the left button paints")
	w.pointerDown(window.MouseLeft, 16, 16)
	assert.True(t, v.Brush().Dragging())
	w.pointerUp(window.MouseLeft, 16, 16)
	assert.False(t, v.Brush().Dragging())

	w.resize(64, 32)
	assert.InDelta(t, 2, v.Camera().Aspect(), 1e-6)
}

func TestGetStateAndReset(t *testing.T) {
	v, _ := newTestViewer(t)
	v.Effects().SetEffectType("Waves")
	v.SetMoveMode(true)

	state := v.GetState()
	for _, key := range []string{"composer", "effects", "environment", "brush", "lighting"} {
		assert.Contains(t, state, key)
	}
	assert.Equal(t, true, state["moveMode"])

	v.Reset()
	assert.False(t, v.MoveMode())
	assert.False(t, v.Effects().Active())
}

// countingPresenter records presenter calls and fails when failErr is set.
type countingPresenter struct {
	presents, releases int
	w, h               int
	failErr            error
}

func (p *countingPresenter) Present() error {
	p.presents++
	return p.failErr
}
func (p *countingPresenter) Resize(w, h int) { p.w, p.h = w, h }
func (p *countingPresenter) Release()        { p.releases++ }

func TestFramePresentsAfterRender(t *testing.T) {
	p := &countingPresenter{}
	v, _ := newTestViewer(t, WithPresenter(p))
	v.Frame()
	v.Frame()
	assert.Equal(t, 2, p.presents)

	p.failErr = errors.New("surface lost")
	assert.NotPanics(t, v.Frame)
	assert.Equal(t, 3, v.Frames(), "a failed present does not stop the loop")

	v.Resize(48, 24)
	assert.Equal(t, 48, p.w)
	assert.Equal(t, 24, p.h)

	v.Dispose()
	v.Dispose()
	assert.Equal(t, 1, p.releases)
}

func TestDisposeIsIdempotent(t *testing.T) {
	mesh := testMesh()
	v, _ := newTestViewer(t, WithMesh(mesh))
	v.Effects().SetEffectType("Waves")
	require.NotNil(t, mesh.ObjectModifier())

	v.Dispose()
	assert.NotPanics(t, v.Dispose)
	assert.Nil(t, mesh.ObjectModifier())
	assert.Nil(t, mesh.WorldModifier())
	assert.NoError(t, v.Run(context.Background()), "a disposed viewer does not run")
}

func TestDisposeWithNormalVisualization(t *testing.T) {
	mesh := testMesh()
	v, _ := newTestViewer(t, WithMesh(mesh))
	v.Lighting().ToggleNormalVisualization(true)
	require.NotNil(t, mesh.WorldModifier())
	assert.Equal(t, "normals", mesh.WorldModifier().Name)

	v.Dispose()
	assert.Nil(t, mesh.WorldModifier())
}
