package shader

import (
	"encoding/binary"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultEdgeConstants() Constants {
	return Constants{
		Threshold:          0.3,
		SharpeningStrength: 0.5,
		ColorCodeEdges:     true,
		PreserveAlpha:      true,
	}
}

func TestBuildEmbedsConstantsAsLiterals(t *testing.T) {
	p := NewBuilder().Build(VariantBasic, defaultEdgeConstants(), PostUniforms)
	src := p.Fragment.Source()

	assert.Contains(t, src, "edgeStrength > 0.30")
	assert.Contains(t, src, "laplacian * 0.50")
	assert.Contains(t, src, "laplacian * 0.15", "the gentle branch uses 0.3 of the strength")
	assert.Contains(t, src, "vec4f(sharpened.rgb, center.a)")
	assert.NotContains(t, src, "vec4f(1.0, 0.5, 0.0", "test coloring is compiled out when test mode is off")
	assert.NotContains(t, src, "@fx:include", "includes are expanded")
	assert.Contains(t, src, "struct Uniforms {\n    textureSize: vec2f,\n};")
}

func TestBuildTestModeBranches(t *testing.T) {
	c := defaultEdgeConstants()
	c.TestMode = true

	basic := NewBuilder().Build(VariantBasic, c, PostUniforms).Fragment.Source()
	assert.Contains(t, basic, "edgeStrength > 0.60")
	assert.Contains(t, basic, "vec4f(1.0, 0.5, 0.0, center.a)")

	c.PreserveAlpha = false
	c.ColorCodeEdges = false
	plain := NewBuilder().Build(VariantBasic, c, PostUniforms).Fragment.Source()
	assert.Contains(t, plain, "vec4f(1.0, 0.0, 0.0, 1.0)")
	assert.NotContains(t, plain, "vec4f(1.0, 0.5, 0.0")
	assert.Contains(t, plain, "vec4f(sharpened.rgb, sharpened.a)")
}

func TestEveryVariantIsComplete(t *testing.T) {
	b := NewBuilder()
	c := defaultEdgeConstants()
	c.SpatialSigma, c.RangeSigma, c.KernelSize = 2, 0.1, 5
	for _, v := range []Variant{VariantBasic, VariantExtended, VariantSobel, VariantBilateral} {
		t.Run(string(v), func(t *testing.T) {
			p := b.Build(v, c, PostUniforms)
			assert.Equal(t, v, p.Variant)
			assert.Equal(t, "fs_main", p.Fragment.EntryPoint())
			assert.Equal(t, "vs_main", p.Vertex.EntryPoint())
			assert.Equal(t, strings.Count(p.Fragment.Source(), "{"), strings.Count(p.Fragment.Source(), "}"))

			module := p.Fragment.Module()
			require.NotNil(t, module.WGSLDescriptor)
			assert.Equal(t, p.Fragment.Source(), module.WGSLDescriptor.Code)
			assert.Equal(t, p.Fragment.Key(), module.Label)
		})
	}
}

func TestBilateralLoopBounds(t *testing.T) {
	c := Constants{SpatialSigma: 2, RangeSigma: 0.1, KernelSize: 5}
	src := NewBuilder().Build(VariantBilateral, c, PostUniforms).Fragment.Source()
	assert.Contains(t, src, "var x: i32 = -2; x <= 2;")
	assert.Contains(t, src, "max(2.0 * 2.00 * 2.00, 1e-6)")
	assert.Contains(t, src, "max(2.0 * 0.10 * 0.10, 1e-6)")

	zero := NewBuilder().Build(VariantBilateral, Constants{KernelSize: 3}, PostUniforms).Fragment.Source()
	assert.Contains(t, zero, "max(2.0 * 0.00 * 0.00, 1e-6)", "a zero sigma never divides by zero")
}

func TestUnknownVariantFallsBackToBasic(t *testing.T) {
	b := NewBuilder()
	p := b.Build(Variant("prewitt"), defaultEdgeConstants(), PostUniforms)
	assert.Equal(t, VariantBasic, p.Variant)
	assert.Equal(t, b.Build(VariantBasic, defaultEdgeConstants(), PostUniforms).Fragment.Source(), p.Fragment.Source())

	bad := b.Build(VariantSobel, defaultEdgeConstants(), UniformLayout{{Name: "m", Type: "mat4x4f"}})
	assert.Equal(t, VariantBasic, bad.Variant)
	assert.Equal(t, PostUniforms, bad.Uniforms)
}

func TestParseVariant(t *testing.T) {
	v, ok := ParseVariant(" Sobel")
	assert.True(t, ok)
	assert.Equal(t, VariantSobel, v)

	v, ok = ParseVariant("prewitt")
	assert.False(t, ok)
	assert.Equal(t, VariantBasic, v)
}

func TestBuildIsDeterministic(t *testing.T) {
	a := NewBuilder().Build(VariantSobel, defaultEdgeConstants(), PostUniforms)
	b := NewBuilder().Build(VariantSobel, defaultEdgeConstants(), PostUniforms)
	assert.Equal(t, a.Fragment.Key(), b.Fragment.Key())

	c := defaultEdgeConstants()
	c.Threshold = 0.31
	other := NewBuilder().Build(VariantSobel, c, PostUniforms)
	assert.NotEqual(t, a.Fragment.Key(), other.Fragment.Key())
}

func TestBindGroupReflection(t *testing.T) {
	p := NewBuilder().Build(VariantBasic, defaultEdgeConstants(), PostUniforms)
	layouts := p.Fragment.BindGroupLayoutDescriptors()
	require.Contains(t, layouts, 0)
	entries := layouts[0].Entries
	require.Len(t, entries, 3)

	assert.Equal(t, wgpu.TextureViewDimension2D, entries[0].Texture.ViewDimension)
	assert.Equal(t, wgpu.TextureSampleTypeFloat, entries[0].Texture.SampleType)
	assert.Equal(t, wgpu.SamplerBindingTypeFiltering, entries[1].Sampler.Type)
	assert.Equal(t, wgpu.BufferBindingTypeUniform, entries[2].Buffer.Type)
	assert.Equal(t, wgpu.ShaderStageFragment, entries[2].Visibility)

	assert.Equal(t, "inputTexture", p.Fragment.BindGroupVarName(0, 0))
	assert.Equal(t, "uniforms", p.Fragment.BindGroupVarName(0, 2))
	assert.Empty(t, p.Fragment.BindGroupVarName(3, 0))
	assert.Empty(t, p.Vertex.BindGroupLayoutDescriptors())
}

func TestPreProcessorErrors(t *testing.T) {
	pp := NewPreProcessor()
	_, err := pp.Process("//@fx:include nope\n")
	assert.True(t, errors.Is(err, ErrUnknownInclude))

	pp.Register("a", "//@fx:include rot2\nfn a() {}")
	out, err := pp.Process("//@fx:include rot2\n//@fx:include a")
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(out, "fn rot2"), "each snippet is injected once")
	assert.Contains(t, out, "fn a() {}")
}

func TestUniformLayoutPacking(t *testing.T) {
	l := UniformLayout{
		{Name: "t", Type: "f32"},
		{Name: "center", Type: "vec3f"},
		{Name: "size", Type: "vec2f"},
	}
	// t at 0, center aligned to 4, size at 8, block padded to 12 floats
	assert.Equal(t, uint64(48), l.Size())

	buf := l.Pack(map[string]any{
		"t":      float32(1.5),
		"center": mgl32.Vec3{1, 2, 3},
		"size":   mgl32.Vec2{640, 480},
	})
	require.Len(t, buf, 48)
	at := func(i int) float32 {
		return math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))
	}
	assert.Equal(t, float32(1.5), at(0))
	assert.Equal(t, float32(1), at(4))
	assert.Equal(t, float32(3), at(6))
	assert.Equal(t, float32(640), at(8))
	assert.Equal(t, float32(480), at(9))
}

func TestQuantize(t *testing.T) {
	assert.Equal(t, float32(0.15), Quantize(0.5*0.3))
	assert.Equal(t, float32(0.3), Quantize(0.3))
	assert.Equal(t, float32(0.13), Quantize(0.125000001))
}

func TestUniformLayoutDeclareAndIntegers(t *testing.T) {
	l := UniformLayout{{Name: "effectType", Type: "i32"}, {Name: "enabled", Type: "u32"}}
	src, err := l.Declare("EffectUniforms", "effect", 1, 0)
	require.NoError(t, err)
	assert.Contains(t, src, "struct EffectUniforms {\n    effectType: i32,\n    enabled: u32,\n};")
	assert.Contains(t, src, "@group(1) @binding(0) var<uniform> effect: EffectUniforms;")

	buf := l.Pack(map[string]any{"effectType": 6, "enabled": true})
	assert.Equal(t, uint32(6), binary.LittleEndian.Uint32(buf[0:]))
	assert.Equal(t, uint32(1), binary.LittleEndian.Uint32(buf[4:]))

	empty, err := UniformLayout{}.Declare("X", "x", 0, 0)
	require.NoError(t, err)
	assert.Empty(t, empty)
}
