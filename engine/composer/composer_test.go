package composer

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/splatfx/engine/camera"
	"github.com/Carmen-Shannon/splatfx/engine/postprocess"
	"github.com/Carmen-Shannon/splatfx/engine/renderer"
	"github.com/Carmen-Shannon/splatfx/engine/scene"
	"github.com/Carmen-Shannon/splatfx/engine/scheduler"
)

type fakeTexture struct{ w, h int }

func (t fakeTexture) Size() (int, int) { return t.w, t.h }

type fakeTarget struct {
	label    string
	w, h     int
	disposed bool
}

func (t *fakeTarget) Texture() renderer.Texture { return fakeTexture{t.w, t.h} }
func (t *fakeTarget) Size() (int, int)          { return t.w, t.h }
func (t *fakeTarget) Dispose()                  { t.disposed = true }

// recordingRenderer logs every call so tests can check the pass order.
type recordingRenderer struct {
	w, h     int
	calls    []string
	switches int
	failNext bool
	panicOn  string
}

func (r *recordingRenderer) Size() (int, int) { return r.w, r.h }

func (r *recordingRenderer) CreateRenderTarget(desc renderer.RenderTargetDescriptor) (renderer.RenderTarget, error) {
	if r.failNext || !desc.Valid() {
		r.failNext = false
		return nil, renderer.ErrTargetUnavailable
	}
	return &fakeTarget{label: desc.Label, w: desc.Width, h: desc.Height}, nil
}

func (r *recordingRenderer) SetRenderTarget(t renderer.RenderTarget) {
	if t == nil {
		r.calls = append(r.calls, "target:screen")
		return
	}
	r.switches++
	r.calls = append(r.calls, "target:"+t.(*fakeTarget).label)
}

func (r *recordingRenderer) Clear(_, _, _ bool) {
	r.calls = append(r.calls, "clear")
}

func (r *recordingRenderer) Render(s scene.Scene, _ camera.Camera) {
	if s.Name() == r.panicOn {
		panic("boom")
	}
	r.calls = append(r.calls, "render:"+s.Name())
}

func (r *recordingRenderer) RenderEnvMap(context.Context, renderer.EnvMapRequest) (renderer.EnvMap, error) {
	return nil, nil
}

func (r *recordingRenderer) reset() {
	r.calls = nil
	r.switches = 0
}

func newTestComposer(t *testing.T, opts ...ComposerBuilderOption) (Composer, *recordingRenderer) {
	t.Helper()
	r := &recordingRenderer{w: 16, h: 9}
	c, err := NewComposer(r, scene.NewScene("main"), camera.NewCamera(), opts...)
	require.NoError(t, err)
	return c, r
}

func TestTargetSwitchesPerPath(t *testing.T) {
	cases := []struct {
		bilateral, laplacian bool
		path                 Path
		switches             int
	}{
		{true, true, PathBoth, 2},
		{true, false, PathBilateral, 1},
		{false, true, PathLaplacian, 1},
		{false, false, PathDirect, 0},
	}
	for _, tc := range cases {
		t.Run(tc.path.String(), func(t *testing.T) {
			c, r := newTestComposer(t)
			c.ToggleBilateralFiltering(tc.bilateral)
			c.ToggleLaplacianBoundaries(tc.laplacian)
			assert.Equal(t, tc.path, c.ActivePath())

			r.reset()
			c.Render()
			assert.Equal(t, tc.switches, r.switches)
			assert.Equal(t, tc.switches, tc.path.TargetSwitches())
		})
	}
}

func TestBothPathOrder(t *testing.T) {
	c, r := newTestComposer(t)
	c.ToggleBilateralFiltering(true)
	c.ToggleLaplacianBoundaries(true)
	r.reset()
	c.Render()

	assert.Equal(t, []string{
		"target:Bilateral Filter", "clear", "render:main",
		"target:Laplacian Boundary", "clear", "render:Bilateral Filter",
		"target:screen", "clear", "render:Laplacian Boundary",
	}, r.calls)
	assert.False(t, c.EdgePass().Quad().Visible())
	assert.False(t, c.BilateralPass().Quad().Visible())
}

func TestEnablingBilateralDuringLaplacianSwitchesNextFrame(t *testing.T) {
	c, r := newTestComposer(t)
	c.ToggleLaplacianBoundaries(true)
	r.reset()
	c.Render()
	assert.Equal(t, 1, r.switches)

	c.ToggleBilateralFiltering(true)
	r.reset()
	c.Render()
	assert.Equal(t, 2, r.switches)
	assert.Contains(t, r.calls, "render:Laplacian Boundary", "the frame still reaches the screen")
}

func TestToggleIsIdempotentAndDisableUnbinds(t *testing.T) {
	c, r := newTestComposer(t)
	c.ToggleLaplacianBoundaries(false)
	assert.Empty(t, r.calls, "an unchanged state does nothing")

	c.ToggleLaplacianBoundaries(true)
	r.reset()
	c.ToggleLaplacianBoundaries(false)
	assert.Equal(t, []string{"target:screen"}, r.calls)
	assert.Equal(t, PathDirect, c.ActivePath())
}

func TestMissingTargetFallsBackToDirect(t *testing.T) {
	c, r := newTestComposer(t)
	r.failNext = true
	c.ToggleLaplacianBoundaries(true)
	assert.Nil(t, c.EdgePass().Target(), "the first setup failed")

	r.w = 0
	r.reset()
	c.Render()
	assert.Equal(t, []string{"target:screen", "clear", "render:main"}, r.calls)

	r.w = 16
	r.reset()
	c.Render()
	assert.Equal(t, 1, r.switches, "the pass re-initializes lazily")
}

func TestPanickingPassFallsBackToDirect(t *testing.T) {
	c, r := newTestComposer(t)
	c.ToggleBilateralFiltering(true)
	r.panicOn = "Bilateral Filter"
	r.reset()
	assert.NotPanics(t, c.Render)
	assert.Equal(t, []string{"target:screen", "clear", "render:main"}, r.calls[len(r.calls)-3:])
	assert.False(t, c.BilateralPass().Quad().Visible(), "the deferred hide runs on panic")
}

func TestTestBoundariesRequiresLaplacian(t *testing.T) {
	c, _ := newTestComposer(t)
	c.ToggleTestBoundaries()
	assert.False(t, c.EdgePass().TestMode())

	c.ToggleLaplacianBoundaries(true)
	c.ToggleTestBoundaries()
	assert.True(t, c.EdgePass().TestMode())
	assert.Contains(t, c.EdgePass().Program().Fragment.Source(), "vec4f(1.0, 0.5, 0.0")
}

func TestQuickComparisonCyclesKernels(t *testing.T) {
	clock := scheduler.NewManualClock(time.Unix(0, 0))
	sched := scheduler.NewScheduler(scheduler.WithClock(clock.Now))
	c, _ := newTestComposer(t, WithScheduler(sched))

	c.SetKernelType("sobel")
	c.QuickComparison()
	assert.Equal(t, "sobel", c.GetState()[postprocess.ParamKernelType], "nothing happens while laplacian is off")

	c.ToggleLaplacianBoundaries(true)
	c.QuickComparison()
	assert.Equal(t, "basic", c.GetState()[postprocess.ParamKernelType])

	clock.Advance(ComparisonInterval)
	sched.Poll()
	assert.Equal(t, "extended", c.GetState()[postprocess.ParamKernelType])

	clock.Advance(ComparisonInterval)
	sched.Poll()
	assert.Equal(t, "sobel", c.GetState()[postprocess.ParamKernelType])
}

func TestResetRestoresDefaults(t *testing.T) {
	c, _ := newTestComposer(t)
	c.ToggleLaplacianBoundaries(true)
	c.ToggleBilateralFiltering(true)
	c.ToggleTestBoundaries()
	c.SetLaplacianThreshold(0.9)
	c.SetBilateralKernelSize(9)
	c.SetKernelType("extended")

	c.Reset()
	state := c.GetState()
	assert.Equal(t, float32(0.3), state[postprocess.ParamLaplacianThreshold])
	assert.Equal(t, float32(5), state[postprocess.ParamKernelSize])
	assert.Equal(t, "basic", state[postprocess.ParamKernelType])
	assert.Equal(t, false, state[postprocess.ParamBoundaryTest])
	assert.Equal(t, false, state["laplacianSystemActive"])
	assert.Equal(t, false, state["bilateralSystemActive"])
	assert.Equal(t, "direct", state["activePath"])
}

func TestDisposeReleasesTargets(t *testing.T) {
	c, r := newTestComposer(t)
	c.ToggleLaplacianBoundaries(true)
	target := c.EdgePass().Target().(*fakeTarget)

	c.Dispose()
	c.Dispose()
	assert.True(t, target.disposed)

	r.reset()
	c.Render()
	assert.Equal(t, 0, r.switches)
}
