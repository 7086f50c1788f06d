package effects

import (
	"strings"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/splatfx/engine/renderer/shader"
	"github.com/Carmen-Shannon/splatfx/engine/scheduler"
	"github.com/Carmen-Shannon/splatfx/engine/splat"
)

func newTestSystem(t *testing.T) (System, splat.Mesh, *scheduler.ManualClock) {
	t.Helper()
	clock := scheduler.NewManualClock(time.Unix(0, 0))
	mesh := splat.NewMemoryMesh(splat.Sphere(32, mgl32.Vec3{0, 1, 0}, 1, 0.02))
	sys := NewSystem(mesh, WithScheduler(scheduler.NewScheduler(scheduler.WithClock(clock.Now))))
	return sys, mesh, clock
}

func TestParseEffectType(t *testing.T) {
	kind, ok := ParseEffectType(" deep meditation ")
	assert.True(t, ok)
	assert.Equal(t, EffectDeepMeditation, kind)

	kind, ok = ParseEffectType("Strobe")
	assert.False(t, ok)
	assert.Equal(t, EffectNone, kind)

	assert.Equal(t, "None", Names()[0])
	assert.Len(t, Names(), int(EffectDisco)+1)
}

func TestSetEffectTypeInstallsModifier(t *testing.T) {
	sys, mesh, _ := newTestSystem(t)
	assert.Nil(t, mesh.ObjectModifier())
	assert.False(t, sys.Active())

	sys.SetEffectType("Waves")
	require.NotNil(t, mesh.ObjectModifier())
	assert.Equal(t, EffectWaves, sys.Current().Type)
	assert.Equal(t, int32(EffectWaves), mesh.ObjectModifier().Uniforms.Int(UniformEffectType))
	assert.Equal(t, uint64(1), mesh.Generation())

	sys.SetEffectType("None")
	assert.Nil(t, mesh.ObjectModifier())
	assert.Equal(t, uint64(2), mesh.Generation())
}

func TestUnknownEffectFallsBackToNone(t *testing.T) {
	sys, mesh, _ := newTestSystem(t)
	sys.SetEffectType("Disco")
	require.NotNil(t, mesh.ObjectModifier())

	sys.SetEffectType("Strobe")
	assert.Nil(t, mesh.ObjectModifier())
	assert.Equal(t, "None", sys.GetState()[ParamEffect])
}

func TestIntensityUpdatesWithoutRebuild(t *testing.T) {
	sys, mesh, _ := newTestSystem(t)
	sys.SetEffectType("Flare")
	gen, ver := mesh.Generation(), mesh.Version()

	sys.SetIntensity(0.25)
	assert.Equal(t, gen, mesh.Generation())
	assert.Equal(t, ver+1, mesh.Version())
	assert.Equal(t, EffectFlare, sys.Current().Type)
	assert.Equal(t, float32(0.25), mesh.ObjectModifier().Uniforms.Float(UniformIntensity))
}

func TestUpdateIsThrottled(t *testing.T) {
	sys, mesh, clock := newTestSystem(t)

	sys.Update()
	assert.Equal(t, uint64(0), mesh.Version(), "nothing to push while inactive")

	sys.SetEffectType("Electronic")
	clock.Advance(time.Second)
	sys.Update()
	ver := mesh.Version()
	assert.InDelta(t, 1, mesh.ObjectModifier().Uniforms.Float(UniformTime), 1e-6)

	clock.Advance(50 * time.Millisecond)
	sys.Update()
	assert.Equal(t, ver, mesh.Version())

	clock.Advance(60 * time.Millisecond)
	sys.Update()
	assert.Equal(t, ver+1, mesh.Version())
	assert.InDelta(t, 1.11, mesh.ObjectModifier().Uniforms.Float(UniformTime), 1e-4)
}

func TestGetStateResetAndDispose(t *testing.T) {
	sys, mesh, _ := newTestSystem(t)
	sys.SetEffectType("Disintegrate")
	sys.SetIntensity(0.1)

	state := sys.GetState()
	assert.Equal(t, "Disintegrate", state[ParamEffect])
	assert.Equal(t, float32(0.1), state[ParamIntensity])
	assert.Equal(t, true, state["isActive"])

	sys.Reset()
	assert.Nil(t, mesh.ObjectModifier())
	assert.Equal(t, Effect{Type: EffectNone, Intensity: 0.8}, sys.Current())

	sys.SetEffectType("Disco")
	sys.Dispose()
	assert.Nil(t, mesh.ObjectModifier())
	gen := mesh.Generation()
	sys.Dispose()
	assert.Equal(t, gen, mesh.Generation())
}

func TestNilMeshIsTolerated(t *testing.T) {
	sys := NewSystem(nil)
	sys.SetEffectType("Waves")
	sys.SetIntensity(0.3)
	sys.Update()
	sys.Dispose()
	assert.Equal(t, EffectWaves, sys.Current().Type)
}

func TestModifierSourceCompiles(t *testing.T) {
	for kind := EffectElectronic; kind <= EffectDisco; kind++ {
		t.Run(kind.String(), func(t *testing.T) {
			m := Build(kind, NewUniforms())
			require.NotNil(t, m)
			src, err := m.Source(shader.NewPreProcessor(), 2, 0)
			require.NoError(t, err)
			assert.NotContains(t, src, "@fx:include")
			assert.Contains(t, src, "fn effect_modify(input: Gsplat) -> Gsplat")
			assert.Contains(t, src, "var<uniform> effect: EffectUniforms;")
			assert.Equal(t, strings.Count(src, "{"), strings.Count(src, "}"))
		})
	}
	assert.Nil(t, Build(EffectNone, NewUniforms()))
	assert.Nil(t, Build(EffectType(42), NewUniforms()))
}

func TestApplyKernels(t *testing.T) {
	s := splat.Splat{
		Center:     mgl32.Vec3{0.3, 0.2, -0.1},
		Scales:     mgl32.Vec3{0.02, 0.02, 0.02},
		Quaternion: mgl32.QuatIdent(),
		RGBA:       mgl32.Vec4{0.5, 0.4, 0.3, 0.9},
	}
	center := mgl32.Vec3{0, 0, 0}

	assert.Equal(t, s, Apply(EffectNone, s, 3, 1, center))

	for _, tt := range []float32{0, 0.7, 2.5, 10} {
		f := Apply(EffectFlare, s, tt, 1, center)
		assert.GreaterOrEqual(t, f.RGBA[3], float32(0.3)-1e-5)
		assert.LessOrEqual(t, f.RGBA[3], float32(0.9)+1e-5)

		d := Apply(EffectDisco, s, tt, 1, center)
		assert.LessOrEqual(t, d.RGBA[3], float32(1))
		assert.Equal(t, s.Center, d.Center, "disco only recolors")
	}

	waves := Apply(EffectWaves, s, 0, 0, center)
	assert.InDelta(t, 0, waves.Center.Sub(s.Center).Len(), 1e-5, "zero intensity keeps the position")
	assert.Equal(t, s.RGBA, waves.RGBA)
}
