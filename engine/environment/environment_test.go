package environment

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/splatfx/engine/camera"
	"github.com/Carmen-Shannon/splatfx/engine/renderer"
	"github.com/Carmen-Shannon/splatfx/engine/renderer/material"
	"github.com/Carmen-Shannon/splatfx/engine/renderer/software"
	"github.com/Carmen-Shannon/splatfx/engine/scene"
	"github.com/Carmen-Shannon/splatfx/engine/scheduler"
	"github.com/Carmen-Shannon/splatfx/engine/splat"
)

type fakeEnvMap struct{ disposed bool }

func (m *fakeEnvMap) Texture() renderer.Texture { return nil }
func (m *fakeEnvMap) Dispose()                  { m.disposed = true }

// captureRenderer records env map requests and answers with fresh maps or failErr.
type captureRenderer struct {
	mu       sync.Mutex
	requests []renderer.EnvMapRequest
	failErr  error
	panicMsg string
}

func (r *captureRenderer) Size() (int, int) { return 64, 64 }
func (r *captureRenderer) CreateRenderTarget(renderer.RenderTargetDescriptor) (renderer.RenderTarget, error) {
	return nil, renderer.ErrTargetUnavailable
}
func (r *captureRenderer) SetRenderTarget(renderer.RenderTarget)      {}
func (r *captureRenderer) Clear(bool, bool, bool)                     {}
func (r *captureRenderer) Render(scene.Scene, camera.Camera)          {}
func (r *captureRenderer) RenderEnvMap(_ context.Context, req renderer.EnvMapRequest) (renderer.EnvMap, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requests = append(r.requests, req)
	if r.panicMsg != "" {
		panic(r.panicMsg)
	}
	if r.failErr != nil {
		return nil, r.failErr
	}
	return &fakeEnvMap{}, nil
}

func (r *captureRenderer) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.requests)
}

func (r *captureRenderer) last() renderer.EnvMapRequest {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.requests[len(r.requests)-1]
}

// manualExecutor holds jobs until run is called.
type manualExecutor struct {
	jobs []func()
}

func (e *manualExecutor) Submit(job func()) { e.jobs = append(e.jobs, job) }

func (e *manualExecutor) run() int {
	jobs := e.jobs
	e.jobs = nil
	for _, job := range jobs {
		job()
	}
	return len(jobs)
}

func testMesh() splat.Mesh {
	return splat.NewMemoryMesh([]splat.Splat{
		{Center: mgl32.Vec3{-0.5, -0.5, -0.5}, Quaternion: mgl32.QuatIdent()},
		{Center: mgl32.Vec3{0.5, 0.5, 0.5}, Quaternion: mgl32.QuatIdent()},
	})
}

type fixture struct {
	ctrl  Controller
	r     *captureRenderer
	exec  *manualExecutor
	clock *scheduler.ManualClock
	sched *scheduler.Scheduler
	scene scene.Scene
	cam   camera.Camera
}

func newFixture(t *testing.T, options ...ControllerBuilderOption) *fixture {
	t.Helper()
	f := &fixture{
		r:     &captureRenderer{},
		exec:  &manualExecutor{},
		clock: scheduler.NewManualClock(time.Unix(0, 0)),
		scene: scene.NewScene("main"),
	}
	f.sched = scheduler.NewScheduler(scheduler.WithClock(f.clock.Now))
	camCtrl := camera.NewCameraController(camera.WithTarget(mgl32.Vec3{0, 0, 0}))
	camCtrl.SetPosition(mgl32.Vec3{0, 0, 2})
	f.cam = camera.NewCamera(camera.WithController(camCtrl))
	options = append([]ControllerBuilderOption{WithScheduler(f.sched), WithExecutor(f.exec)}, options...)
	f.ctrl = NewController(f.r, f.scene, f.cam, testMesh(), options...)
	return f
}

// advance moves the clock and runs due slots.
func (f *fixture) advance(d time.Duration) {
	f.clock.Advance(d)
	f.sched.Poll()
}

// settle runs queued captures and drains their results.
func (f *fixture) settle() {
	f.exec.run()
	f.ctrl.Update()
}

func probeMaterial(t *testing.T, c Controller) material.PhysicalMaterial {
	t.Helper()
	m, ok := c.Probe().Material().(material.PhysicalMaterial)
	require.True(t, ok)
	return m
}

func TestProbeStartsHiddenAtMeshCenter(t *testing.T) {
	f := newFixture(t)
	probe := f.ctrl.Probe()
	assert.False(t, probe.Visible())
	assert.InDelta(t, 0, probe.Position().Len(), 1e-6)
	assert.Equal(t, float32(ProbeRadius), probe.Scale())
	assert.NotNil(t, f.scene.Get(probe.ID()))
	assert.Equal(t, StateDisabled, f.ctrl.State())
}

func TestToggleOnCapturesHighQuality(t *testing.T) {
	f := newFixture(t)
	f.ctrl.Toggle(true)
	assert.True(t, f.ctrl.Probe().Visible())
	assert.Equal(t, StateGenerating, f.ctrl.State())

	f.settle()
	require.Equal(t, 1, f.r.count())
	req := f.r.last()
	assert.Equal(t, HighResolution, req.Resolution)
	assert.Same(t, f.scene, req.Scene)
	require.Len(t, req.HideObjects, 1)
	assert.Equal(t, f.ctrl.Probe().ID(), req.HideObjects[0].ID())

	assert.Equal(t, StateReady, f.ctrl.State())
	m := probeMaterial(t, f.ctrl)
	assert.NotNil(t, m.EnvMap())
	assert.Equal(t, float32(1), m.Metalness())
	assert.InDelta(t, 0.02, m.Roughness(), 1e-6)
	assert.Equal(t, float32(1), m.EnvMapIntensity())
	assert.Equal(t, true, f.ctrl.GetState()["envMapRendered"])
}

func TestRequestsDuringFlightCoalesce(t *testing.T) {
	f := newFixture(t)
	f.ctrl.Toggle(true)
	f.ctrl.RequestCapture(LowResolution)
	f.ctrl.RequestCapture(LowResolution)
	f.ctrl.RequestCapture(HighResolution)
	assert.Len(t, f.exec.jobs, 1, "only one capture is outstanding")

	f.settle()
	assert.Equal(t, 1, f.r.count())
	assert.Empty(t, f.exec.jobs, "the follow-up waits one frame")

	f.advance(FollowUpDelay)
	assert.Len(t, f.exec.jobs, 1)
	f.settle()
	assert.Equal(t, 2, f.r.count(), "exactly one follow-up")
	assert.Equal(t, HighResolution, f.r.last().Resolution, "the latest request wins")

	f.advance(time.Second)
	assert.Empty(t, f.exec.jobs)
}

func TestToggleOffDiscardsInFlightResult(t *testing.T) {
	f := newFixture(t)
	f.ctrl.Toggle(true)
	f.ctrl.RequestCapture(LowResolution)
	f.ctrl.Toggle(false)

	assert.False(t, f.ctrl.Probe().Visible())
	m := probeMaterial(t, f.ctrl)
	assert.Nil(t, m.EnvMap())
	assert.Equal(t, float32(0), m.Metalness())
	assert.Equal(t, float32(1), m.Roughness())
	assert.Equal(t, float32(0), m.EnvMapIntensity())

	f.settle()
	assert.Nil(t, f.ctrl.EnvMap(), "the stale result is discarded")
	assert.Equal(t, StateDisabled, f.ctrl.State())
	f.advance(time.Second)
	assert.Empty(t, f.exec.jobs, "the coalesced request was dropped")
}

// gatedScene blocks the first object walk after it is armed until release is closed.
type gatedScene struct {
	scene.Scene
	armed   atomic.Bool
	once    sync.Once
	entered chan struct{}
	release chan struct{}
}

func (s *gatedScene) Objects() []scene.Object {
	if s.armed.Load() {
		s.once.Do(func() {
			close(s.entered)
			<-s.release
		})
	}
	return s.Scene.Objects()
}

func TestToggleOffDuringCaptureKeepsProbeHidden(t *testing.T) {
	gs := &gatedScene{
		Scene:   scene.NewScene("main"),
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	exec := &manualExecutor{}
	sched := scheduler.NewScheduler(scheduler.WithClock(scheduler.NewManualClock(time.Unix(0, 0)).Now))
	camCtrl := camera.NewCameraController(camera.WithTarget(mgl32.Vec3{0, 0, 0}))
	camCtrl.SetPosition(mgl32.Vec3{0, 0, 2})
	cam := camera.NewCamera(camera.WithController(camCtrl))
	r := software.NewRenderer(16, 16, software.WithCaptureFaceSize(4))
	ctrl := NewController(r, gs, cam, testMesh(),
		WithScheduler(sched),
		WithExecutor(exec),
		WithResolutions(4, 8),
	)

	ctrl.Toggle(true)
	require.Len(t, exec.jobs, 1)
	gs.armed.Store(true)
	done := make(chan struct{})
	go func() {
		exec.run()
		close(done)
	}()

	<-gs.entered
	assert.True(t, ctrl.Probe().Visible(), "the frame thread keeps seeing the probe while it is captured")
	ctrl.Toggle(false)
	close(gs.release)
	<-done

	ctrl.Update()
	assert.False(t, ctrl.Probe().Visible(), "the probe stays hidden once disabled")
	assert.Equal(t, StateDisabled, ctrl.State())
	assert.Nil(t, ctrl.EnvMap())
}

func TestPanickingCaptureIsRecovered(t *testing.T) {
	f := newFixture(t, WithExecutor(InlineExecutor()))
	f.r.panicMsg = "gpu lost"

	assert.NotPanics(t, func() { f.ctrl.Toggle(true) })
	f.ctrl.Update()
	assert.Nil(t, f.ctrl.EnvMap(), "a failed capture publishes nothing")
	assert.Equal(t, StateReady, f.ctrl.State(), "the in-flight flag is released")

	f.r.panicMsg = ""
	f.ctrl.RequestCapture(LowResolution)
	f.ctrl.Update()
	assert.NotNil(t, f.ctrl.EnvMap(), "the next capture goes through")
	assert.Equal(t, 2, f.r.count())
}

func TestFailedCaptureKeepsLastGoodMap(t *testing.T) {
	f := newFixture(t)
	f.ctrl.Toggle(true)
	f.settle()
	good := f.ctrl.EnvMap()
	require.NotNil(t, good)

	f.r.failErr = errors.New("device lost")
	f.ctrl.RequestCapture(LowResolution)
	f.settle()
	assert.Same(t, good, f.ctrl.EnvMap())
	assert.Equal(t, StateReady, f.ctrl.State())

	f.r.failErr = nil
	f.ctrl.RequestCapture(LowResolution)
	f.settle()
	assert.NotSame(t, good, f.ctrl.EnvMap())
	assert.True(t, good.(*fakeEnvMap).disposed, "the replaced map is released")
}

func TestDragDebouncesAndSettles(t *testing.T) {
	f := newFixture(t)
	f.ctrl.Toggle(true)
	f.settle()

	assert.False(t, f.ctrl.PointerDown(mgl32.Vec2{0.9, 0.9}), "a miss is not consumed")
	require.True(t, f.ctrl.PointerDown(mgl32.Vec2{0, 0}))
	assert.False(t, f.cam.Controller().Enabled())
	start := f.ctrl.Probe().Position()

	for i := 1; i <= 5; i++ {
		assert.True(t, f.ctrl.PointerMove(mgl32.Vec2{0.02 * float32(i), 0}))
		f.advance(5 * time.Millisecond)
	}
	assert.Empty(t, f.exec.jobs, "moves inside the debounce window do not capture")
	moved := f.ctrl.Probe().Position().Sub(start)
	assert.Greater(t, moved[0], float32(0), "the probe follows the pointer along the camera right axis")
	assert.InDelta(t, 0, moved[1], 1e-5)

	f.advance(DragDebounce)
	require.Len(t, f.exec.jobs, 1)
	f.settle()
	assert.Equal(t, LowResolution, f.r.last().Resolution)
	assert.InDelta(t, 0, f.r.last().WorldCenter.Sub(f.ctrl.Probe().Position()).Len(), 1e-6)

	f.ctrl.PointerMove(mgl32.Vec2{0.15, 0})
	assert.True(t, f.ctrl.PointerUp())
	assert.True(t, f.cam.Controller().Enabled())
	f.advance(DragDebounce)
	assert.Empty(t, f.exec.jobs, "release cancels the pending drag capture")

	f.advance(SettleDelay)
	require.Len(t, f.exec.jobs, 1)
	f.settle()
	assert.Equal(t, HighResolution, f.r.last().Resolution)
	assert.False(t, f.ctrl.PointerUp())
}

func TestPointerIgnoredWhileDisabled(t *testing.T) {
	f := newFixture(t)
	assert.False(t, f.ctrl.PointerDown(mgl32.Vec2{0, 0}))
	assert.False(t, f.ctrl.PointerMove(mgl32.Vec2{0.1, 0}))
}

func TestParametersApplyOnlyWithMap(t *testing.T) {
	f := newFixture(t)
	m := probeMaterial(t, f.ctrl)
	f.ctrl.SetMetalness(0.3)
	assert.Equal(t, float32(1), m.Metalness(), "nothing is pushed before a map exists")

	f.ctrl.Toggle(true)
	f.settle()
	assert.InDelta(t, 0.3, m.Metalness(), 1e-6)

	f.ctrl.SetRoughness(0.5)
	f.ctrl.SetReflectivity(0.7)
	assert.InDelta(t, 0.5, m.Roughness(), 1e-6)
	assert.InDelta(t, 0.7, m.EnvMapIntensity(), 1e-6)
	assert.Equal(t, float32(0.7), f.ctrl.GetState()["envMapIntensity"])
}

func TestRefreshInterval(t *testing.T) {
	f := newFixture(t, WithRefreshInterval(100*time.Millisecond))
	f.ctrl.Toggle(true)
	f.settle()
	f.ctrl.Update()
	f.advance(DragDebounce)
	require.Len(t, f.exec.jobs, 1)
	f.settle()
	assert.Equal(t, LowResolution, f.r.last().Resolution)
}

func TestResetAndDispose(t *testing.T) {
	f := newFixture(t)
	f.ctrl.Toggle(true)
	f.settle()
	m := f.ctrl.EnvMap().(*fakeEnvMap)
	f.ctrl.SetMetalness(0.2)

	f.ctrl.Reset()
	assert.True(t, m.disposed)
	state := f.ctrl.GetState()
	assert.Equal(t, false, state[ParamEnabled])
	assert.Equal(t, float32(1), state[ParamMetalness])
	assert.Equal(t, "disabled", state["state"])

	f.ctrl.Toggle(true)
	f.ctrl.Dispose()
	assert.Nil(t, f.scene.Get(f.ctrl.Probe().ID()))
	f.settle()
	assert.Nil(t, f.ctrl.EnvMap())
	f.ctrl.Dispose()
	f.ctrl.Toggle(true)
	assert.Empty(t, f.exec.jobs)
}

func TestPoolExecutorRuns(t *testing.T) {
	done := make(chan struct{})
	NewPoolExecutor(1, 4, time.Second).Submit(func() { close(done) })
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("job did not run")
	}
}
