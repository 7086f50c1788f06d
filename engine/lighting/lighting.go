// Package lighting applies a directional light to the splat material and provides a
// normal visualization of the splat mesh.
package lighting

import (
	"log"
	"sync"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Carmen-Shannon/splatfx/engine/params"
	"github.com/Carmen-Shannon/splatfx/engine/renderer"
	"github.com/Carmen-Shannon/splatfx/engine/splat"
)

// Parameter names of the lighting system.
const (
	ParamBrightness       = "brightness"
	ParamLightColor       = "lightColor"
	ParamColorPreset      = "colorPreset"
	ParamAmbient          = "ambient"
	ParamLightDirection   = "lightDirection"
	ParamUseGsplatNormals = "useGsplatNormals"
	ParamShowNormals      = "showGsplatNormals"
)

// Uniform names pushed to the lighting target.
const (
	UniformLightDirection   = "lightDirection"
	UniformLightColor       = "lightColor"
	UniformLightIntensity   = "lightIntensity"
	UniformAmbientIntensity = "ambientIntensity"
	UniformUseGsplatNormals = "useGsplatNormals"
)

// Presets maps color preset names to light colors. Unknown names select "default".
var Presets = map[string]mgl32.Vec3{
	"warm":     {2.0, 1.5, 0.5},
	"cool":     {0.5, 1.0, 2.0},
	"sunlight": {2.0, 2.0, 1.0},
	"night":    {0.2, 0.3, 1.0},
	"default":  {1.0, 1.0, 1.0},
}

var presetNames = []string{"default", "warm", "cool", "sunlight", "night"}

// DefaultDirection is normalize(1, 1, 0).
var DefaultDirection = mgl32.Vec3{1, 1, 0}.Normalize()

// System owns the lighting parameters.
type System interface {
	// SetBrightness sets the diffuse intensity.
	SetBrightness(v float32)

	// SetAmbient sets the ambient term.
	SetAmbient(v float32)

	// SetLightColor sets the light color directly.
	SetLightColor(c mgl32.Vec3)

	// SetColorPreset selects a named light color.
	//
	// Parameters:
	//   - name: warm, cool, sunlight, night or default
	SetColorPreset(name string)

	// SetLightDirection sets the direction from an azimuth angle.
	//
	// Parameters:
	//   - angleDeg: the angle in degrees around the up axis
	SetLightDirection(angleDeg float32)

	// ToggleGsplatNormals switches between per-splat normals and a constant up normal.
	ToggleGsplatNormals(use bool)

	// ToggleNormalVisualization colors splats by their normal while on.
	ToggleNormalVisualization(show bool)

	// Shade applies the current light to one color.
	//
	// Parameters:
	//   - rgb: the unlit color
	//   - normal: the splat normal
	//
	// Returns:
	//   - mgl32.Vec3: the lit color
	Shade(rgb, normal mgl32.Vec3) mgl32.Vec3

	// GetState returns every parameter.
	GetState() map[string]any

	// Reset restores the constructor defaults.
	Reset()

	// Dispose removes the lighting patch and the normal visualization.
	Dispose()
}

// shading is the set of values Shade reads. It is copied under a mutex because captures
// shade from a worker goroutine.
type shading struct {
	brightness float32
	ambient    float32
	color      mgl32.Vec3
	direction  mgl32.Vec3
	useNormals bool
}

type system struct {
	target renderer.LightingTarget
	mesh   splat.Mesh
	store  *params.Store

	mu    *sync.Mutex
	shade shading

	normalViz *splat.Modifier
	previous  *splat.Modifier
	showing   bool
}

var _ System = &system{}

// Definitions returns the lighting parameters with their default literals.
func Definitions() []params.Definition {
	return []params.Definition{
		params.Float(ParamBrightness, 0.8),
		params.Color(ParamLightColor, Presets["default"]),
		params.Enum(ParamColorPreset, "default", presetNames...),
		params.Float(ParamAmbient, 0.4),
		params.Vec3(ParamLightDirection, DefaultDirection),
		params.Bool(ParamUseGsplatNormals, false),
		params.Bool(ParamShowNormals, false),
	}
}

// NewSystem creates the lighting system and installs the lighting patch when r accepts one.
// A renderer without lighting support renders unlit and every setter only updates state.
//
// Parameters:
//   - r: the splat renderer, may be nil
//   - mesh: the splat mesh for the normal visualization, may be nil
//
// Returns:
//   - System: the lighting system
func NewSystem(r renderer.Renderer, mesh splat.Mesh) System {
	s := &system{
		mesh:  mesh,
		store: params.NewStore(Definitions()...),
		mu:    &sync.Mutex{},
	}
	if target, ok := r.(renderer.LightingTarget); ok {
		s.target = target
	} else {
		log.Printf("[Lighting] renderer has no lighting support, rendering unlit")
	}
	s.normalViz = &splat.Modifier{
		Name:       "normals",
		Globals:    "//@fx:include gsplat_normal",
		Statements: normalVizStatements,
		Apply: func(sp splat.Splat) splat.Splat {
			sp.RGBA = sp.Normal().Mul(0.5).Add(mgl32.Vec3{0.5, 0.5, 0.5}).Vec4(sp.RGBA[3])
			return sp
		},
	}

	s.store.OnChange(func(string) { s.push() },
		ParamBrightness, ParamLightColor, ParamAmbient, ParamLightDirection, ParamUseGsplatNormals)
	s.store.OnChange(func(string) {
		s.store.SetColor(ParamLightColor, Presets[s.store.Enum(ParamColorPreset)])
	}, ParamColorPreset)
	s.store.OnChange(func(string) { s.applyNormalViz() }, ParamShowNormals)

	if s.target != nil {
		s.target.SetLightingPatch(&renderer.LightingPatch{
			Globals:    lightingGlobals,
			Statements: lightingStatements,
			Shade:      s.Shade,
		})
	}
	s.push()
	log.Printf("[Lighting] initialized")
	return s
}

// push copies the parameters into the shading snapshot and the renderer uniforms.
func (s *system) push() {
	sh := shading{
		brightness: s.store.Float(ParamBrightness),
		ambient:    s.store.Float(ParamAmbient),
		color:      s.store.Color(ParamLightColor),
		direction:  s.store.Color(ParamLightDirection),
		useNormals: s.store.Bool(ParamUseGsplatNormals),
	}
	s.mu.Lock()
	s.shade = sh
	s.mu.Unlock()

	if s.target == nil {
		return
	}
	s.target.SetLightingUniform(UniformLightIntensity, sh.brightness)
	s.target.SetLightingUniform(UniformAmbientIntensity, sh.ambient)
	s.target.SetLightingUniform(UniformLightColor, sh.color)
	s.target.SetLightingUniform(UniformLightDirection, sh.direction)
	s.target.SetLightingUniform(UniformUseGsplatNormals, sh.useNormals)
}

func (s *system) Shade(rgb, normal mgl32.Vec3) mgl32.Vec3 {
	s.mu.Lock()
	sh := s.shade
	s.mu.Unlock()

	n := mgl32.Vec3{0, 1, 0}
	if sh.useNormals {
		if l := normal.Len(); l > 0 {
			n = normal.Mul(1 / l)
		} else {
			n = mgl32.Vec3{0, 0, 1}
		}
	}
	dir := sh.direction
	if l := dir.Len(); l > 0 {
		dir = dir.Mul(1 / l)
	}
	k := sh.ambient + max(n.Dot(dir), 0)*sh.brightness
	return mgl32.Vec3{rgb[0] * k * sh.color[0], rgb[1] * k * sh.color[1], rgb[2] * k * sh.color[2]}
}

func (s *system) SetBrightness(v float32) {
	s.store.SetFloat(ParamBrightness, v)
}

func (s *system) SetAmbient(v float32) {
	s.store.SetFloat(ParamAmbient, v)
}

func (s *system) SetLightColor(c mgl32.Vec3) {
	s.store.SetColor(ParamLightColor, c)
}

func (s *system) SetColorPreset(name string) {
	s.store.SetEnum(ParamColorPreset, name)
	log.Printf("[Lighting] color preset %s", s.store.Enum(ParamColorPreset))
}

func (s *system) SetLightDirection(angleDeg float32) {
	rad := angleDeg * math32.Pi / 180
	s.store.SetColor(ParamLightDirection, mgl32.Vec3{math32.Cos(rad), 1, math32.Sin(rad)}.Normalize())
}

func (s *system) ToggleGsplatNormals(use bool) {
	s.store.SetBool(ParamUseGsplatNormals, use)
}

func (s *system) ToggleNormalVisualization(show bool) {
	s.store.SetBool(ParamShowNormals, show)
}

// applyNormalViz installs the visualization as the world modifier, remembering the one it
// displaces, or puts the displaced modifier back.
func (s *system) applyNormalViz() {
	if s.mesh == nil {
		return
	}
	show := s.store.Bool(ParamShowNormals)
	if show == s.showing {
		return
	}
	if show {
		s.previous = s.mesh.WorldModifier()
		s.mesh.SetWorldModifier(s.normalViz)
	} else {
		s.mesh.SetWorldModifier(s.previous)
		s.previous = nil
	}
	s.showing = show
	s.mesh.UpdateGenerator()
	log.Printf("[Lighting] normal visualization %v", show)
}

func (s *system) GetState() map[string]any {
	return map[string]any(s.store.Snapshot())
}

func (s *system) Reset() {
	s.store.Reset()
	log.Printf("[Lighting] reset")
}

func (s *system) Dispose() {
	s.store.SetBool(ParamShowNormals, false)
	if s.target != nil {
		s.target.SetLightingPatch(nil)
	}
	log.Printf("[Lighting] disposed")
}
