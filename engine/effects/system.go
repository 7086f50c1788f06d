package effects

import (
	"log"
	"time"

	"github.com/Carmen-Shannon/splatfx/engine/params"
	"github.com/Carmen-Shannon/splatfx/engine/scheduler"
	"github.com/Carmen-Shannon/splatfx/engine/splat"
)

// Parameter names of the effect system.
const (
	ParamEffect    = "effect"
	ParamIntensity = "intensity"
)

// TimeUpdateInterval is the minimum time between two pushes of the time uniform.
const TimeUpdateInterval = 100 * time.Millisecond

// Effect is the selected effect and its parameters.
type Effect struct {
	Type      EffectType
	Intensity float32
}

// System owns the effect selection of one mesh.
type System interface {
	// SetEffectType selects an effect by display name, installs or removes the object
	// modifier and rebuilds the mesh generator. An unknown name selects None.
	//
	// Parameters:
	//   - name: the display name
	SetEffectType(name string)

	// SetIntensity updates the intensity uniform without rebuilding.
	//
	// Parameters:
	//   - v: the new intensity
	SetIntensity(v float32)

	// Current returns the selected effect.
	Current() Effect

	// Active reports whether an effect other than None is installed.
	Active() bool

	// Update pushes the elapsed time at most once per TimeUpdateInterval. Called per frame.
	Update()

	// GetState returns effect, intensity and isActive.
	GetState() map[string]any

	// Reset selects None and restores the default intensity.
	Reset()

	// Dispose removes the modifier.
	Dispose()
}

type system struct {
	mesh     splat.Mesh
	store    *params.Store
	uniforms *splat.Uniforms

	sched    *scheduler.Scheduler
	throttle *scheduler.Throttle
	start    time.Time

	modifier *splat.Modifier
}

var _ System = &system{}

// Definitions returns the effect parameters with their default literals.
func Definitions() []params.Definition {
	return []params.Definition{
		params.Enum(ParamEffect, EffectNone.String(), Names()...),
		params.Float(ParamIntensity, 0.8),
	}
}

// NewSystem creates the effect system for mesh. A nil mesh is allowed; every call is then
// a no-op apart from the parameter bookkeeping.
//
// Parameters:
//   - mesh: the mesh to install modifiers on
//   - options: functional options
//
// Returns:
//   - System: the effect system
func NewSystem(mesh splat.Mesh, options ...SystemBuilderOption) System {
	s := &system{
		mesh:     mesh,
		store:    params.NewStore(Definitions()...),
		uniforms: NewUniforms(),
	}
	for _, opt := range options {
		opt(s)
	}
	if s.sched == nil {
		s.sched = scheduler.NewScheduler()
	}
	s.throttle = s.sched.NewThrottle(TimeUpdateInterval)
	s.start = s.sched.Now()

	if mesh != nil {
		s.uniforms.Set(UniformMeshCenter, mesh.BoundingBox().Center())
	}
	s.uniforms.Set(UniformIntensity, s.store.Float(ParamIntensity))

	s.store.OnChange(func(string) { s.install() }, ParamEffect)
	s.store.OnChange(func(string) { s.pushIntensity() }, ParamIntensity)
	return s
}

func (s *system) SetEffectType(name string) {
	kind, ok := ParseEffectType(name)
	if !ok {
		log.Printf("[Effects] unknown effect %q, using %s", name, EffectNone)
	}
	s.store.SetEnum(ParamEffect, kind.String())
}

func (s *system) SetIntensity(v float32) {
	s.store.SetFloat(ParamIntensity, v)
}

func (s *system) Current() Effect {
	kind, _ := ParseEffectType(s.store.Enum(ParamEffect))
	return Effect{Type: kind, Intensity: s.store.Float(ParamIntensity)}
}

func (s *system) Active() bool {
	return s.Current().Type != EffectNone
}

// install derives the modifier from the current selection.
func (s *system) install() {
	if s.mesh == nil {
		return
	}
	effect := s.Current()
	s.modifier = Build(effect.Type, s.uniforms)
	s.mesh.SetObjectModifier(s.modifier)
	s.mesh.UpdateGenerator()
	log.Printf("[Effects] applied %s (active=%v)", effect.Type, s.modifier != nil)
}

func (s *system) pushIntensity() {
	s.uniforms.Set(UniformIntensity, s.store.Float(ParamIntensity))
	if s.mesh != nil && s.Active() {
		s.mesh.UpdateVersion()
	}
}

func (s *system) Update() {
	if s.mesh == nil || !s.Active() {
		return
	}
	if !s.throttle.Ready() {
		return
	}
	s.uniforms.Set(UniformTime, float32(s.sched.Now().Sub(s.start).Seconds()))
	s.mesh.UpdateVersion()
}

func (s *system) GetState() map[string]any {
	state := map[string]any(s.store.Snapshot())
	state["isActive"] = s.Active()
	return state
}

func (s *system) Reset() {
	log.Printf("[Effects] reset")
	s.store.Reset()
}

func (s *system) Dispose() {
	if s.mesh != nil && s.modifier != nil {
		s.mesh.SetObjectModifier(nil)
		s.mesh.UpdateGenerator()
	}
	s.modifier = nil
	log.Printf("[Effects] disposed")
}
