package splat

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/splatfx/engine/renderer/shader"
)

func TestNormalUsesSmallestAxis(t *testing.T) {
	s := Splat{Scales: mgl32.Vec3{1, 0.1, 1}, Quaternion: mgl32.QuatIdent()}
	assert.InDelta(t, 1, s.Normal()[1], 1e-5)

	s.Scales = mgl32.Vec3{1, 1, 0.1}
	s.Quaternion = mgl32.QuatRotate(mgl32.DegToRad(90), mgl32.Vec3{0, 1, 0})
	n := s.Normal()
	assert.InDelta(t, 1, n[0], 1e-5, "z rotated a quarter turn about y points along x")

	degenerate := Splat{Scales: mgl32.Vec3{1, 1, 1}}
	assert.InDelta(t, 1, degenerate.Normal().Len(), 1e-5)
}

func TestSphereLayout(t *testing.T) {
	splats := Sphere(64, mgl32.Vec3{1, 2, 3}, 0.5, 0.01)
	require.Len(t, splats, 64)
	for _, s := range splats {
		assert.InDelta(t, 0.5, s.Center.Sub(mgl32.Vec3{1, 2, 3}).Len(), 1e-4)
		assert.Equal(t, float32(1), s.RGBA[3])
	}
	box := NewMemoryMesh(splats).BoundingBox()
	assert.InDelta(t, 0, box.Center().Sub(mgl32.Vec3{1, 2, 3}).Len(), 0.05)
}

func TestModifierSource(t *testing.T) {
	m := &Modifier{
		Name:       "effect",
		Globals:    "//@fx:include rot2",
		Statements: "gsplat.center = gsplat.center * effect.intensity;\n\ngsplat.rgba.a = 1.0;",
		Uniforms: NewUniforms(
			shader.UniformField{Name: "t", Type: "f32"},
			shader.UniformField{Name: "intensity", Type: "f32"},
		),
	}
	src, err := m.Source(shader.NewPreProcessor(), 2, 0)
	require.NoError(t, err)
	assert.Contains(t, src, "struct Gsplat {")
	assert.Contains(t, src, "struct EffectUniforms {")
	assert.Contains(t, src, "@group(2) @binding(0) var<uniform> effect: EffectUniforms;")
	assert.Contains(t, src, "fn rot2(")
	assert.Contains(t, src, "fn effect_modify(input: Gsplat) -> Gsplat {\n    var gsplat = input;\n    gsplat.center")
	assert.Contains(t, src, "    return gsplat;\n}")

	m.Globals = "//@fx:include missing"
	_, err = m.Source(shader.NewPreProcessor(), 2, 0)
	assert.ErrorIs(t, err, shader.ErrUnknownInclude)
}

func TestMeshModifiersApplyAfterUpdateGenerator(t *testing.T) {
	mesh := NewMemoryMesh([]Splat{{Center: mgl32.Vec3{1, 0, 0}, RGBA: mgl32.Vec4{0.5, 0.5, 0.5, 1}}})
	u := NewUniforms(shader.UniformField{Name: "k", Type: "f32"})
	u.Set("k", float32(2))
	mesh.SetObjectModifier(&Modifier{Name: "scale", Uniforms: u, Apply: func(s Splat) Splat {
		s.Center = s.Center.Mul(u.Float("k"))
		return s
	}})
	mesh.SetWorldModifier(&Modifier{Name: "shift", Apply: func(s Splat) Splat {
		s.Center = s.Center.Add(mgl32.Vec3{0, 1, 0})
		return s
	}})

	assert.Equal(t, mgl32.Vec3{1, 0, 0}, mesh.Evaluate(nil)[0].Center, "not active before UpdateGenerator")
	mesh.UpdateGenerator()
	assert.Equal(t, mgl32.Vec3{2, 1, 0}, mesh.Evaluate(nil)[0].Center, "object runs before world")

	u.Set("k", float32(3))
	mesh.UpdateVersion()
	assert.Equal(t, mgl32.Vec3{3, 1, 0}, mesh.Evaluate(nil)[0].Center)
	assert.Equal(t, uint64(1), mesh.Generation())
	assert.Equal(t, uint64(1), mesh.Version())
}

func TestBakeColorsSplitsOutBuffer(t *testing.T) {
	mesh := NewMemoryMesh([]Splat{{RGBA: mgl32.Vec4{0.2, 0.2, 0.2, 1}}})
	assert.False(t, mesh.DynamicColors())

	mesh.SetWorldModifier(&Modifier{Name: "paint", Apply: func(s Splat) Splat {
		s.RGBA = mgl32.Vec4{1, 0, 0, s.RGBA[3]}
		return s
	}})
	mesh.UpdateGenerator()
	mesh.BakeColors()
	assert.True(t, mesh.DynamicColors())

	mesh.SetWorldModifier(nil)
	mesh.UpdateGenerator()
	assert.Equal(t, mgl32.Vec4{1, 0, 0, 1}, mesh.Evaluate(nil)[0].RGBA, "baked colors survive removing the rule")
}

func TestUniformsAccessors(t *testing.T) {
	u := NewUniforms(shader.UniformField{Name: "enabled", Type: "u32"}, shader.UniformField{Name: "origin", Type: "vec3f"})
	u.Set("enabled", true)
	u.Set("origin", mgl32.Vec3{1, 2, 3})
	assert.True(t, u.Bool("enabled"))
	assert.Equal(t, mgl32.Vec3{1, 2, 3}, u.Vec3("origin"))
	assert.Zero(t, u.Float("missing"))
	assert.Len(t, u.Bytes(), 32)
	assert.Len(t, u.Values(), 2)
}
