// Package environment maintains a draggable reflective probe and the environment map
// captured around it.
package environment

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Carmen-Shannon/splatfx/engine/camera"
	"github.com/Carmen-Shannon/splatfx/engine/game_object"
	"github.com/Carmen-Shannon/splatfx/engine/params"
	"github.com/Carmen-Shannon/splatfx/engine/renderer"
	"github.com/Carmen-Shannon/splatfx/engine/renderer/material"
	"github.com/Carmen-Shannon/splatfx/engine/scene"
	"github.com/Carmen-Shannon/splatfx/engine/scheduler"
	"github.com/Carmen-Shannon/splatfx/engine/splat"
)

// ErrCaptureCancelled is reported for a capture whose result was no longer wanted when
// it started.
var ErrCaptureCancelled = errors.New("environment capture cancelled")

// Parameter names of the environment system.
const (
	ParamEnabled      = "enabled"
	ParamMetalness    = "metalness"
	ParamRoughness    = "roughness"
	ParamReflectivity = "reflectivity"
)

// Capture timing and sizes.
const (
	LowResolution  = 128
	HighResolution = 256

	// DragDebounce bounds the capture rate while the probe is dragged.
	DragDebounce = 16 * time.Millisecond

	// SettleDelay is the wait between releasing the probe and the final capture.
	SettleDelay = 150 * time.Millisecond

	// FollowUpDelay is the one-frame yield before a coalesced request runs.
	FollowUpDelay = 16 * time.Millisecond

	// ProbeRadius is the radius of the reflective probe sphere.
	ProbeRadius = 0.08
)

// State is the derived capture state.
type State int

const (
	StateDisabled State = iota
	StateGenerating
	StateReady
)

func (s State) String() string {
	switch s {
	case StateGenerating:
		return "generating"
	case StateReady:
		return "ready"
	}
	return "disabled"
}

// Controller owns the probe, the capture pipeline and the reflective materials.
type Controller interface {
	// Toggle turns environment mapping on or off.
	//
	// Parameters:
	//   - enable: the new state
	Toggle(enable bool)

	// Enabled reports whether environment mapping is on.
	Enabled() bool

	// State returns the derived capture state.
	State() State

	// Probe returns the reflective probe object.
	Probe() game_object.GameObject

	// EnvMap returns the current map, or nil.
	EnvMap() renderer.EnvMap

	// AddReflectiveObject registers obj to receive the map. Only objects with a physical
	// material are reflective.
	//
	// Parameters:
	//   - obj: the object
	AddReflectiveObject(obj game_object.GameObject)

	// SetMetalness stores v and pushes it to the materials when a map exists.
	SetMetalness(v float32)

	// SetRoughness stores v and pushes it to the materials when a map exists.
	SetRoughness(v float32)

	// SetReflectivity stores v as the env-map intensity and pushes it when a map exists.
	SetReflectivity(v float32)

	// RequestCapture asks for a capture at the given resolution. A request while a capture
	// is in flight is coalesced into a single follow-up.
	//
	// Parameters:
	//   - resolution: the face size in pixels
	RequestCapture(resolution int)

	// PointerDown starts dragging the probe when ndc hits it.
	//
	// Parameters:
	//   - ndc: the pointer in normalized device coordinates
	//
	// Returns:
	//   - bool: true if the event was consumed
	PointerDown(ndc mgl32.Vec2) bool

	// PointerMove drags the probe in the camera plane.
	//
	// Parameters:
	//   - ndc: the pointer in normalized device coordinates
	//
	// Returns:
	//   - bool: true if the event was consumed
	PointerMove(ndc mgl32.Vec2) bool

	// PointerUp ends a drag and schedules the settled high-quality capture.
	//
	// Returns:
	//   - bool: true if the event was consumed
	PointerUp() bool

	// Dragging reports whether the probe is being dragged.
	Dragging() bool

	// Update consumes finished captures. Called once per frame.
	Update()

	// GetState returns the parameters, envMapRendered, isDragging and state.
	GetState() map[string]any

	// Reset turns mapping off and restores the default parameters.
	Reset()

	// Dispose cancels all work, releases the map and removes the probe from the scene.
	Dispose()
}

type captureResult struct {
	generation uint64
	resolution int
	envMap     renderer.EnvMap
	err        error
}

type controller struct {
	r        renderer.Renderer
	s        scene.Scene
	cam      camera.Camera
	controls camera.CameraController

	store  *params.Store
	probe  game_object.GameObject
	probes []scene.Object

	reflective []game_object.GameObject
	envMap     renderer.EnvMap
	rendered   bool

	sched    *scheduler.Scheduler
	debounce *scheduler.Slot
	settle   *scheduler.Slot
	followUp *scheduler.Slot
	refresh  *scheduler.Throttle

	exec    Executor
	results chan captureResult
	cancel  context.CancelFunc

	inFlight          bool
	pending           bool
	pendingResolution int
	generation        uint64

	dragging       bool
	dragStartProbe mgl32.Vec3
	dragStartNDC   mgl32.Vec2

	lowRes, highRes int
	refreshInterval time.Duration
	disposed        bool
}

var _ Controller = &controller{}

// Definitions returns the environment parameters with their default literals.
func Definitions() []params.Definition {
	return []params.Definition{
		params.Bool(ParamEnabled, false),
		params.Float(ParamMetalness, 1.0),
		params.Float(ParamRoughness, 0.02),
		params.Float(ParamReflectivity, 1.0),
	}
}

// NewController creates the probe at the mesh center, adds it to s hidden, and returns
// the controller in the disabled state.
//
// Parameters:
//   - r: the renderer that performs captures
//   - s: the scene to capture and to add the probe to
//   - cam: the viewer camera used for picking and dragging
//   - mesh: the splat mesh whose center places the probe, may be nil
//   - options: functional options
//
// Returns:
//   - Controller: the environment controller
func NewController(r renderer.Renderer, s scene.Scene, cam camera.Camera, mesh splat.Mesh, options ...ControllerBuilderOption) Controller {
	c := &controller{
		r:       r,
		s:       s,
		cam:     cam,
		store:   params.NewStore(Definitions()...),
		results: make(chan captureResult, 1),
		lowRes:  LowResolution,
		highRes: HighResolution,
	}
	for _, opt := range options {
		opt(c)
	}
	if c.sched == nil {
		c.sched = scheduler.NewScheduler()
	}
	if c.exec == nil {
		c.exec = NewPoolExecutor(1, 4, time.Second)
	}
	if c.controls == nil && cam != nil {
		c.controls = cam.Controller()
	}
	c.debounce = c.sched.NewSlot("env-debounce")
	c.settle = c.sched.NewSlot("env-settle")
	c.followUp = c.sched.NewSlot("env-follow-up")
	if c.refreshInterval > 0 {
		c.refresh = c.sched.NewThrottle(c.refreshInterval)
	}

	var center mgl32.Vec3
	if mesh != nil {
		center = mesh.BoundingBox().Center()
	}
	c.probe = game_object.NewGameObject(
		game_object.WithName("Environment Probe"),
		game_object.WithSphere(ProbeRadius),
		game_object.WithPosition(center),
		game_object.WithVisible(false),
		game_object.WithMaterial(material.NewPhysicalMaterial(
			material.WithName("Environment Probe"),
			material.WithBaseColor(mgl32.Vec3{1, 1, 1}),
			material.WithMetalness(1),
			material.WithRoughness(0),
			material.WithEnvMapIntensity(1),
		)),
	)
	c.probes = []scene.Object{c.probe}
	c.reflective = append(c.reflective, c.probe)
	if s != nil {
		s.Add(c.probe)
	}

	c.store.OnChange(func(string) { c.updateMaterials() }, ParamMetalness, ParamRoughness, ParamReflectivity)
	log.Printf("[Environment] initialized, probe at %v", center)
	return c
}

func (c *controller) Enabled() bool {
	return c.store.Bool(ParamEnabled)
}

func (c *controller) State() State {
	switch {
	case !c.Enabled():
		return StateDisabled
	case c.inFlight:
		return StateGenerating
	}
	return StateReady
}

func (c *controller) Probe() game_object.GameObject {
	return c.probe
}

func (c *controller) EnvMap() renderer.EnvMap {
	return c.envMap
}

func (c *controller) AddReflectiveObject(obj game_object.GameObject) {
	if obj == nil {
		return
	}
	if _, ok := obj.Material().(material.PhysicalMaterial); !ok {
		log.Printf("[Environment] %s has no physical material, ignoring", obj.Name())
		return
	}
	c.reflective = append(c.reflective, obj)
	c.probes = append(c.probes, obj)
	c.updateMaterials()
}

func (c *controller) Toggle(enable bool) {
	if c.disposed {
		return
	}
	c.store.SetBool(ParamEnabled, enable)
	for _, obj := range c.reflective {
		obj.SetVisible(enable)
	}

	if enable {
		if !c.rendered {
			c.debounce.Cancel()
			c.pending = false
			c.RequestCapture(c.highRes)
		}
		log.Printf("[Environment] enabled")
		return
	}
	c.stopWork()
	c.clearMaps()
	log.Printf("[Environment] disabled")
}

// stopWork cancels every scheduled capture and invalidates the one in flight. The
// in-flight capture keeps the in-flight flag until its result is drained.
func (c *controller) stopWork() {
	c.debounce.Cancel()
	c.settle.Cancel()
	c.followUp.Cancel()
	c.pending = false
	c.generation++
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

// clearMaps drops the map and returns every reflective material to a matte look.
func (c *controller) clearMaps() {
	for _, obj := range c.reflective {
		m, ok := obj.Material().(material.PhysicalMaterial)
		if !ok {
			continue
		}
		m.SetEnvMap(nil)
		m.SetMetalness(0)
		m.SetRoughness(1)
		m.SetEnvMapIntensity(0)
		obj.SetVisible(false)
	}
	if c.envMap != nil {
		c.envMap.Dispose()
		c.envMap = nil
	}
	c.rendered = false
}

// updateMaterials pushes the map and the current parameters. It does nothing until a
// map exists.
func (c *controller) updateMaterials() {
	if c.envMap == nil {
		return
	}
	metalness := c.store.Float(ParamMetalness)
	roughness := c.store.Float(ParamRoughness)
	intensity := c.store.Float(ParamReflectivity)
	for _, obj := range c.reflective {
		m, ok := obj.Material().(material.PhysicalMaterial)
		if !ok {
			continue
		}
		m.SetEnvMap(c.envMap)
		m.SetMetalness(metalness)
		m.SetRoughness(roughness)
		m.SetEnvMapIntensity(intensity)
	}
}

func (c *controller) SetMetalness(v float32) {
	c.store.SetFloat(ParamMetalness, v)
}

func (c *controller) SetRoughness(v float32) {
	c.store.SetFloat(ParamRoughness, v)
}

func (c *controller) SetReflectivity(v float32) {
	c.store.SetFloat(ParamReflectivity, v)
}

func (c *controller) RequestCapture(resolution int) {
	if c.disposed || c.r == nil || c.s == nil {
		return
	}
	if c.inFlight {
		c.pending = true
		c.pendingResolution = resolution
		return
	}
	c.inFlight = true

	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	req := renderer.EnvMapRequest{
		Scene:       c.s,
		WorldCenter: c.probe.Position(),
		HideObjects: c.probes,
		Resolution:  resolution,
	}
	gen := c.generation
	r, results := c.r, c.results
	c.exec.Submit(func() {
		res := captureResult{generation: gen, resolution: resolution}
		// A panicking renderer is reported as a failed capture so the in-flight flag
		// is always released.
		defer func() {
			if rec := recover(); rec != nil {
				res.envMap = nil
				res.err = fmt.Errorf("capture panicked: %v", rec)
			}
			results <- res
		}()
		if ctx.Err() != nil {
			res.err = ErrCaptureCancelled
			return
		}
		res.envMap, res.err = r.RenderEnvMap(ctx, req)
	})
}

func (c *controller) Update() {
	select {
	case res := <-c.results:
		c.complete(res)
	default:
	}

	if c.refresh != nil && c.rendered && c.Enabled() && !c.dragging && c.refresh.Ready() {
		c.debounce.Schedule(DragDebounce, func() { c.RequestCapture(c.lowRes) })
	}
}

func (c *controller) complete(res captureResult) {
	c.inFlight = false
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}

	switch {
	case res.generation != c.generation || c.disposed:
		if res.envMap != nil {
			res.envMap.Dispose()
		}
	case res.err != nil:
		if !errors.Is(res.err, ErrCaptureCancelled) && !errors.Is(res.err, context.Canceled) {
			log.Printf("[Environment] capture at %d failed, keeping the previous map: %v", res.resolution, res.err)
		}
	case res.envMap != nil:
		old := c.envMap
		c.envMap = res.envMap
		c.rendered = true
		c.updateMaterials()
		if old != nil {
			old.Dispose()
		}
		log.Printf("[Environment] map updated at %d", res.resolution)
	}

	if c.pending && !c.disposed {
		c.pending = false
		resolution := c.pendingResolution
		c.followUp.Schedule(FollowUpDelay, func() { c.RequestCapture(resolution) })
	}
}

func (c *controller) PointerDown(ndc mgl32.Vec2) bool {
	if !c.probe.Visible() || c.cam == nil {
		return false
	}
	if _, hit := game_object.IntersectSphere(c.probe, c.cam.Ray(ndc)); !hit {
		return false
	}
	c.dragging = true
	c.dragStartProbe = c.probe.Position()
	c.dragStartNDC = ndc
	if c.controls != nil {
		c.controls.SetEnabled(false)
	}
	return true
}

func (c *controller) PointerMove(ndc mgl32.Vec2) bool {
	if !c.dragging {
		return false
	}
	delta := ndc.Sub(c.dragStartNDC)
	right, up, _ := c.cam.Basis()
	scale := c.cam.Position().Sub(c.probe.Position()).Len() * 0.5
	move := right.Mul(delta[0] * scale).Add(up.Mul(delta[1] * scale))
	c.probe.SetPosition(c.dragStartProbe.Add(move))

	if c.rendered {
		c.debounce.Schedule(DragDebounce, func() { c.RequestCapture(c.lowRes) })
	}
	return true
}

func (c *controller) PointerUp() bool {
	if !c.dragging {
		return false
	}
	c.dragging = false
	c.debounce.Cancel()
	c.pending = false
	if c.rendered {
		c.settle.Schedule(SettleDelay, func() { c.RequestCapture(c.highRes) })
	}
	if c.controls != nil {
		c.controls.SetEnabled(true)
	}
	return true
}

func (c *controller) Dragging() bool {
	return c.dragging
}

func (c *controller) GetState() map[string]any {
	state := map[string]any(c.store.Snapshot())
	state["envMapIntensity"] = c.store.Float(ParamReflectivity)
	state["envMapRendered"] = c.rendered
	state["isDragging"] = c.dragging
	state["state"] = c.State().String()
	return state
}

func (c *controller) Reset() {
	if c.dragging {
		c.PointerUp()
	}
	c.Toggle(false)
	c.store.Reset()
	log.Printf("[Environment] reset")
}

func (c *controller) Dispose() {
	if c.disposed {
		return
	}
	c.stopWork()
	c.clearMaps()
	c.disposed = true
	c.dragging = false
	if c.s != nil {
		c.s.Remove(c.probe.ID())
	}
	log.Printf("[Environment] disposed")
}
