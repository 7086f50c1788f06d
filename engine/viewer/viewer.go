// Package viewer runs the splat viewer: it builds every post-processing subsystem around
// one renderer, routes input to them and drives the per-frame update order.
package viewer

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Carmen-Shannon/splatfx/common"
	"github.com/Carmen-Shannon/splatfx/engine/brush"
	"github.com/Carmen-Shannon/splatfx/engine/camera"
	"github.com/Carmen-Shannon/splatfx/engine/composer"
	"github.com/Carmen-Shannon/splatfx/engine/effects"
	"github.com/Carmen-Shannon/splatfx/engine/environment"
	"github.com/Carmen-Shannon/splatfx/engine/game_object"
	"github.com/Carmen-Shannon/splatfx/engine/lighting"
	"github.com/Carmen-Shannon/splatfx/engine/profiler"
	"github.com/Carmen-Shannon/splatfx/engine/renderer"
	"github.com/Carmen-Shannon/splatfx/engine/scene"
	"github.com/Carmen-Shannon/splatfx/engine/scheduler"
	"github.com/Carmen-Shannon/splatfx/engine/splat"
	"github.com/Carmen-Shannon/splatfx/engine/window"
)

// ErrNoRenderer is returned by NewViewer when no renderer was supplied.
var ErrNoRenderer = errors.New("viewer requires a renderer")

const (
	// DefaultMoveSpeed is the move-mode step per frame in world units.
	DefaultMoveSpeed = 0.01

	// defaultFrameInterval paces Run when no window and no frame limit are set.
	defaultFrameInterval = time.Second / 60
)

// cameraOffset places the initial eye relative to the mesh center.
var cameraOffset = mgl32.Vec3{0.2, 0, 0.2}

// Viewer is the top-level splat viewer.
type Viewer interface {
	// Frame runs one animation frame: profiler, camera controls, move mode, effects,
	// environment, scheduled tasks and finally the composed render. A panic in any step is
	// logged and the remaining steps still run.
	Frame()

	// Run drives Frame until Quit is called, ctx is done, the window closes or the frame
	// limit is reached.
	//
	// Parameters:
	//   - ctx: cancels the loop
	//
	// Returns:
	//   - error: ctx.Err() if the loop ended through ctx, otherwise nil
	Run(ctx context.Context) error

	// Quit stops Run. Safe to call multiple times.
	Quit()

	// Frames returns the number of frames run so far.
	Frames() int

	// KeyDown routes a key press to the brush and then to move mode.
	//
	// Parameters:
	//   - key: a common key code
	KeyDown(key int)

	// KeyUp releases a move-mode key.
	KeyUp(key int)

	// PointerDown routes a button press at pixel (x, y) to the environment probe first and
	// to the brush if the probe did not take it.
	PointerDown(x, y float32)

	// PointerMove routes cursor movement the same way as PointerDown.
	PointerMove(x, y float32)

	// PointerUp ends any probe drag or paint stroke.
	PointerUp()

	// Scroll zooms the camera.
	//
	// Parameters:
	//   - delta: positive zooms in
	Scroll(delta float32)

	// Resize follows a new drawable size.
	Resize(width, height int)

	// SetMoveMode turns keyboard movement on the XZ plane on or off.
	SetMoveMode(enabled bool)

	// MoveMode reports whether keyboard movement is on.
	MoveMode() bool

	// BindWindow wires the window's input callbacks to the viewer. Run then drives frames
	// through the window's message loop.
	//
	// Parameters:
	//   - w: the window
	BindWindow(w window.Window)

	Camera() camera.Camera
	Scene() scene.Scene
	Scheduler() *scheduler.Scheduler
	Composer() composer.Composer
	Effects() effects.System
	Environment() environment.Controller
	Brush() brush.Controller
	Lighting() lighting.System

	// GetState returns the state of every subsystem keyed by subsystem name.
	GetState() map[string]any

	// Reset restores every subsystem's defaults.
	Reset()

	// Dispose releases every subsystem. Safe to call multiple times.
	Dispose()
}

type viewer struct {
	renderer  renderer.Renderer
	scene     scene.Scene
	camera    camera.Camera
	controls  camera.CameraController
	mesh      splat.Mesh
	window    window.Window
	presenter renderer.Presenter

	clock       scheduler.Clock
	scheduler   *scheduler.Scheduler
	lighting    lighting.System
	effects     effects.System
	environment environment.Controller
	brush       brush.Controller
	composer    composer.Composer

	profiler         *profiler.Profiler
	profilingEnabled bool

	executor      environment.Executor
	envOptions    []environment.ControllerBuilderOption
	composerOpts  []composer.ComposerBuilderOption
	frameInterval time.Duration
	maxFrames     int
	frames        int

	moveSpeed     float32
	moveMode      bool
	pressed       map[int]bool
	pointerDown   bool
	probeDragging bool
	lastX, lastY  float32

	quit        chan struct{}
	quitOnce    sync.Once
	disposeOnce sync.Once
}

var _ Viewer = &viewer{}

// NewViewer builds the viewer and its subsystems in dependency order: scheduler,
// lighting, effects, environment, brush and composer. A scene and camera are created when
// none are supplied, and the mesh is added to the scene.
//
// Parameters:
//   - options: functional options; WithRenderer is required
//
// Returns:
//   - Viewer: the viewer
//   - error: ErrNoRenderer, or an error from composer creation
func NewViewer(options ...ViewerBuilderOption) (Viewer, error) {
	v := &viewer{
		moveSpeed: DefaultMoveSpeed,
		pressed:   make(map[int]bool),
		quit:      make(chan struct{}),
	}
	for _, opt := range options {
		opt(v)
	}
	if v.renderer == nil {
		return nil, ErrNoRenderer
	}
	if v.clock == nil {
		v.clock = time.Now
	}
	if v.scene == nil {
		v.scene = scene.NewScene("main")
	}
	if v.camera == nil {
		v.camera = camera.NewCamera()
	}
	if v.controls == nil {
		v.controls = v.camera.Controller()
	}
	if v.executor == nil {
		v.executor = environment.NewPoolExecutor(1, 4, time.Second)
	}
	if w, h := v.renderer.Size(); w > 0 && h > 0 {
		v.camera.SetAspect(float32(w) / float32(h))
	}

	center := mgl32.Vec3{}
	if v.mesh != nil {
		center = v.mesh.BoundingBox().Center()
		v.scene.Add(game_object.NewGameObject(game_object.WithName("splats"), game_object.WithMesh(v.mesh)))
	}
	v.controls.SetTarget(center)
	v.controls.SetPosition(center.Add(cameraOffset))
	v.camera.Update()

	v.profiler = profiler.NewProfiler(profiler.WithClock(profiler.Clock(v.clock)))
	v.scheduler = scheduler.NewScheduler(scheduler.WithClock(v.clock))
	v.lighting = lighting.NewSystem(v.renderer, v.mesh)
	v.effects = effects.NewSystem(v.mesh, effects.WithScheduler(v.scheduler))

	envOpts := append([]environment.ControllerBuilderOption{
		environment.WithScheduler(v.scheduler),
		environment.WithExecutor(v.executor),
		environment.WithControls(v.controls),
	}, v.envOptions...)
	v.environment = environment.NewController(v.renderer, v.scene, v.camera, v.mesh, envOpts...)

	v.brush = brush.NewController(v.mesh, v.camera, v.renderer, brush.WithControls(v.controls))
	v.brush.Init()

	compOpts := append([]composer.ComposerBuilderOption{composer.WithScheduler(v.scheduler)}, v.composerOpts...)
	c, err := composer.NewComposer(v.renderer, v.scene, v.camera, compOpts...)
	if err != nil {
		v.brush.Dispose()
		v.environment.Dispose()
		v.effects.Dispose()
		v.lighting.Dispose()
		return nil, err
	}
	v.composer = c

	if v.window != nil {
		v.BindWindow(v.window)
	}
	log.Printf("[Viewer] initialized with %d objects", v.scene.Count())
	return v, nil
}

func (v *viewer) Frame() {
	v.frames++
	v.step("profiler", func() {
		if v.profilingEnabled {
			v.profiler.Tick()
		}
	})
	v.step("controls", func() {
		v.controls.Update()
		v.camera.Update()
	})
	v.step("move", v.move)
	v.step("effects", v.effects.Update)
	v.step("environment", v.environment.Update)
	v.step("scheduler", func() { v.scheduler.Poll() })
	v.step("render", v.composer.Render)
	if v.presenter != nil {
		v.step("present", func() {
			if err := v.presenter.Present(); err != nil {
				log.Printf("[Viewer] present failed: %v", err)
			}
		})
	}
}

// step runs one frame step and contains any panic it raises.
func (v *viewer) step(name string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[Viewer] %s step recovered from panic: %v", name, r)
		}
	}()
	fn()
}

// move translates the camera and its target along the ground plane from held keys.
func (v *viewer) move() {
	if !v.moveMode {
		return
	}
	var fx, rx float32
	if v.pressed[common.KeyW] || v.pressed[common.KeyUp] {
		fx++
	}
	if v.pressed[common.KeyS] || v.pressed[common.KeyDown] {
		fx--
	}
	if v.pressed[common.KeyD] || v.pressed[common.KeyRight] {
		rx++
	}
	if v.pressed[common.KeyA] || v.pressed[common.KeyLeft] {
		rx--
	}
	if fx == 0 && rx == 0 {
		return
	}

	forward := v.controls.Target().Sub(v.controls.Position())
	forward[1] = 0
	if forward.Len() == 0 {
		return
	}
	forward = forward.Normalize()
	right := forward.Cross(mgl32.Vec3{0, 1, 0})
	delta := forward.Mul(fx).Add(right.Mul(rx))
	if delta.Len() == 0 {
		return
	}
	delta = delta.Normalize().Mul(v.moveSpeed)

	v.controls.SetTarget(v.controls.Target().Add(delta))
	v.camera.Update()
}

func (v *viewer) Run(ctx context.Context) error {
	select {
	case <-v.quit:
		return nil
	default:
	}
	stop := context.AfterFunc(ctx, v.Quit)
	defer stop()

	if v.window != nil {
		v.window.SetUpdateCallback(func() {
			if v.stopped() {
				if err := v.window.Close(); err != nil {
					log.Printf("[Viewer] closing window: %v", err)
				}
				return
			}
			v.tick()
		})
		v.window.ProcessMessages()
		v.Quit()
		return ctx.Err()
	}

	interval := v.frameInterval
	if interval <= 0 {
		interval = defaultFrameInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-v.quit:
			return ctx.Err()
		case <-ticker.C:
			v.tick()
		}
	}
}

// tick runs one frame inside Run and enforces the frame limits.
func (v *viewer) tick() {
	start := time.Now()
	v.Frame()
	if v.maxFrames > 0 && v.frames >= v.maxFrames {
		log.Printf("[Viewer] frame limit %d reached", v.maxFrames)
		v.Quit()
		return
	}
	if v.window != nil && v.frameInterval > 0 {
		if remaining := v.frameInterval - time.Since(start); remaining > 0 {
			time.Sleep(remaining)
		}
	}
}

func (v *viewer) stopped() bool {
	select {
	case <-v.quit:
		return true
	default:
		return false
	}
}

func (v *viewer) Quit() {
	v.quitOnce.Do(func() {
		close(v.quit)
	})
}

func (v *viewer) Frames() int {
	return v.frames
}

func (v *viewer) KeyDown(key int) {
	if v.brush.KeyDown(key) {
		return
	}
	v.pressed[key] = true
}

func (v *viewer) KeyUp(key int) {
	delete(v.pressed, key)
}

func (v *viewer) ndc(x, y float32) mgl32.Vec2 {
	w, h := v.renderer.Size()
	return camera.NDC(x, y, w, h)
}

func (v *viewer) PointerDown(x, y float32) {
	v.pointerDown = true
	v.lastX, v.lastY = x, y
	if v.environment.PointerDown(v.ndc(x, y)) {
		v.probeDragging = true
		return
	}
	v.brush.PointerDown(x, y)
}

func (v *viewer) PointerMove(x, y float32) {
	dx, dy := x-v.lastX, y-v.lastY
	v.lastX, v.lastY = x, y
	if v.environment.PointerMove(v.ndc(x, y)) {
		return
	}
	if v.brush.Dragging() {
		v.brush.PointerMove(x, y)
		return
	}
	if v.pointerDown && !v.probeDragging {
		v.controls.Rotate(dx, dy)
	}
}

func (v *viewer) PointerUp() {
	v.pointerDown = false
	v.probeDragging = false
	if v.environment.PointerUp() {
		if v.moveMode {
			v.controls.SetEnabled(false)
		}
		return
	}
	v.brush.PointerUp()
}

func (v *viewer) Scroll(delta float32) {
	v.controls.Zoom(delta)
}

func (v *viewer) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	if r, ok := v.renderer.(interface{ Resize(width, height int) }); ok {
		r.Resize(width, height)
	}
	if v.presenter != nil {
		v.presenter.Resize(width, height)
	}
	v.camera.SetAspect(float32(width) / float32(height))
}

func (v *viewer) SetMoveMode(enabled bool) {
	v.moveMode = enabled
	// orbit input is off while the keyboard drives the camera
	v.controls.SetEnabled(!enabled)
	if !enabled {
		clear(v.pressed)
	}
	log.Printf("[Viewer] move mode %t", enabled)
}

func (v *viewer) MoveMode() bool {
	return v.moveMode
}

func (v *viewer) BindWindow(w window.Window) {
	v.window = w
	w.SetResizeCallback(v.Resize)
	w.SetKeyDownCallback(v.KeyDown)
	w.SetKeyUpCallback(v.KeyUp)
	w.SetScrollCallback(v.Scroll)
	w.SetPointerDownCallback(func(button window.MouseButton, x, y float32) {
		if button == window.MouseLeft {
			v.PointerDown(x, y)
		}
	})
	w.SetPointerUpCallback(func(button window.MouseButton, _, _ float32) {
		if button == window.MouseLeft {
			v.PointerUp()
		}
	})
	w.SetPointerMoveCallback(v.PointerMove)
}

func (v *viewer) Camera() camera.Camera {
	return v.camera
}

func (v *viewer) Scene() scene.Scene {
	return v.scene
}

func (v *viewer) Scheduler() *scheduler.Scheduler {
	return v.scheduler
}

func (v *viewer) Composer() composer.Composer {
	return v.composer
}

func (v *viewer) Effects() effects.System {
	return v.effects
}

func (v *viewer) Environment() environment.Controller {
	return v.environment
}

func (v *viewer) Brush() brush.Controller {
	return v.brush
}

func (v *viewer) Lighting() lighting.System {
	return v.lighting
}

func (v *viewer) GetState() map[string]any {
	return map[string]any{
		"composer":    v.composer.GetState(),
		"effects":     v.effects.GetState(),
		"environment": v.environment.GetState(),
		"brush":       v.brush.GetState(),
		"lighting":    v.lighting.GetState(),
		"moveMode":    v.moveMode,
		"fps":         v.profiler.FPS(),
	}
}

func (v *viewer) Reset() {
	v.composer.Reset()
	v.effects.Reset()
	v.environment.Reset()
	v.brush.Reset()
	v.lighting.Reset()
	v.SetMoveMode(false)
}

func (v *viewer) Dispose() {
	v.disposeOnce.Do(func() {
		v.Quit()
		// lighting hands the world hook back before the brush clears it
		v.lighting.Dispose()
		v.brush.Dispose()
		v.environment.Dispose()
		v.effects.Dispose()
		v.composer.Dispose()
		if v.presenter != nil {
			v.presenter.Release()
		}
		log.Printf("[Viewer] disposed")
	})
}
