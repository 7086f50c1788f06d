// Package effects is the procedural distortion catalog. Each effect is an object modifier
// that moves and recolors splats from their local position, the elapsed time and an
// intensity. Time and intensity are live uniforms; only changing the effect type
// rebuilds the modifier.
package effects

import (
	"strings"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Carmen-Shannon/splatfx/engine/renderer/shader"
	"github.com/Carmen-Shannon/splatfx/engine/splat"
)

// EffectType is the catalog code of an effect.
type EffectType int32

const (
	EffectNone EffectType = iota
	EffectElectronic
	EffectDeepMeditation
	EffectWaves
	EffectFlare
	EffectDisintegrate
	EffectDisco
)

var effectNames = [...]string{
	EffectNone:           "None",
	EffectElectronic:     "Electronic",
	EffectDeepMeditation: "Deep Meditation",
	EffectWaves:          "Waves",
	EffectFlare:          "Flare",
	EffectDisintegrate:   "Disintegrate",
	EffectDisco:          "Disco",
}

// String returns the display name.
func (e EffectType) String() string {
	if e < 0 || int(e) >= len(effectNames) {
		return effectNames[EffectNone]
	}
	return effectNames[e]
}

// Names returns the display names in catalog order.
func Names() []string {
	return effectNames[:]
}

// ParseEffectType maps a display name to its code, ignoring case and surrounding space.
//
// Parameters:
//   - name: e.g. "Deep Meditation"
//
// Returns:
//   - EffectType: the code, EffectNone if unknown
//   - bool: false if name was not recognized
func ParseEffectType(name string) (EffectType, bool) {
	name = strings.TrimSpace(name)
	for i, n := range effectNames {
		if strings.EqualFold(n, name) {
			return EffectType(i), true
		}
	}
	return EffectNone, false
}

// Uniform names of the effect block.
const (
	UniformTime       = "t"
	UniformIntensity  = "intensity"
	UniformEffectType = "effectType"
	UniformMeshCenter = "meshCenter"
)

// NewUniforms creates the live parameter block shared by every effect.
func NewUniforms() *splat.Uniforms {
	u := splat.NewUniforms(
		shader.UniformField{Name: UniformTime, Type: "f32"},
		shader.UniformField{Name: UniformIntensity, Type: "f32"},
		shader.UniformField{Name: UniformEffectType, Type: "i32"},
		shader.UniformField{Name: UniformMeshCenter, Type: "vec3f"},
	)
	u.Set(UniformTime, float32(0))
	u.Set(UniformIntensity, float32(0))
	u.Set(UniformEffectType, int32(EffectNone))
	u.Set(UniformMeshCenter, mgl32.Vec3{})
	return u
}

// Build returns the modifier for kind reading its parameters from u, or nil for
// EffectNone and unknown codes. It writes the effect type into u.
//
// Parameters:
//   - kind: the effect
//   - u: the block created by NewUniforms
//
// Returns:
//   - *splat.Modifier: the modifier, or nil
func Build(kind EffectType, u *splat.Uniforms) *splat.Modifier {
	if kind <= EffectNone || kind > EffectDisco {
		return nil
	}
	u.Set(UniformEffectType, int32(kind))
	return &splat.Modifier{
		Name:       "effect",
		Globals:    effectGlobals,
		Statements: effectStatements,
		Uniforms:   u,
		Apply: func(s splat.Splat) splat.Splat {
			return Apply(EffectType(u.Int(UniformEffectType)), s, u.Float(UniformTime), u.Float(UniformIntensity), u.Vec3(UniformMeshCenter))
		},
	}
}
