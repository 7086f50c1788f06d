package gpu

import (
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/splatfx/common"
	"github.com/Carmen-Shannon/splatfx/engine/postprocess"
	"github.com/Carmen-Shannon/splatfx/engine/renderer/shader"
)

func TestMergeBindGroupLayoutsOrsVisibility(t *testing.T) {
	vertex := map[int]wgpu.BindGroupLayoutDescriptor{
		0: {Label: "shared", Entries: []wgpu.BindGroupLayoutEntry{
			{Binding: 2, Visibility: wgpu.ShaderStageVertex},
		}},
	}
	fragment := map[int]wgpu.BindGroupLayoutDescriptor{
		0: {Entries: []wgpu.BindGroupLayoutEntry{
			{Binding: 2, Visibility: wgpu.ShaderStageFragment},
			{Binding: 0, Visibility: wgpu.ShaderStageFragment},
		}},
		1: {Entries: []wgpu.BindGroupLayoutEntry{{Binding: 0, Visibility: wgpu.ShaderStageFragment}}},
	}

	merged := mergeBindGroupLayouts(vertex, fragment)
	require.Len(t, merged, 2)
	group := merged[0]
	assert.Equal(t, "shared", group.Label)
	require.Len(t, group.Entries, 2)
	assert.Equal(t, uint32(0), group.Entries[0].Binding)
	assert.Equal(t, uint32(2), group.Entries[1].Binding)
	assert.Equal(t, wgpu.ShaderStageVertex|wgpu.ShaderStageFragment, group.Entries[1].Visibility)
	assert.Len(t, merged[1].Entries, 1)
}

func TestPassthroughProgramBindings(t *testing.T) {
	p := shader.NewBuilder().Build(shader.VariantBasic, PassthroughConstants, shader.PostUniforms)
	layouts := programLayouts(p)
	require.Len(t, layouts, 1)
	assert.NotEmpty(t, layouts[0].Label)

	kinds, err := bindingKinds(layouts[0])
	require.NoError(t, err)
	assert.Equal(t, map[uint32]bindingKind{
		0: bindingTexture,
		1: bindingSampler,
		2: bindingUniform,
	}, kinds)
	assert.Equal(t, "vs_main", p.Vertex.EntryPoint())
	assert.Equal(t, "fs_main", p.Fragment.EntryPoint())
}

func TestBindingKindsRejectsUnknownResources(t *testing.T) {
	_, err := bindingKinds(wgpu.BindGroupLayoutDescriptor{
		Entries: []wgpu.BindGroupLayoutEntry{{Binding: 3}},
	})
	assert.Error(t, err)
}

func TestPassthroughConstantsCopyTheFrame(t *testing.T) {
	src := common.NewImage(4, 4)
	src.Fill(mgl32.Vec4{0.2, 0.2, 0.2, 1})
	src.Set(1, 1, mgl32.Vec4{1, 1, 1, 0.5})

	out := postprocess.EdgeFilter(shader.VariantBasic, PassthroughConstants)(src)
	for y := range 4 {
		for x := range 4 {
			want, got := src.At(x, y), out.At(x, y)
			assert.InDeltaSlice(t, want[:], got[:], 1e-6, "pixel %d,%d", x, y)
		}
	}
}

func TestPickSurfaceFormat(t *testing.T) {
	tests := []struct {
		name    string
		formats []wgpu.TextureFormat
		want    wgpu.TextureFormat
	}{
		{"prefers linear bgra", []wgpu.TextureFormat{wgpu.TextureFormatBGRA8UnormSrgb, wgpu.TextureFormatBGRA8Unorm}, wgpu.TextureFormatBGRA8Unorm},
		{"accepts linear rgba", []wgpu.TextureFormat{wgpu.TextureFormatRGBA8Unorm}, wgpu.TextureFormatRGBA8Unorm},
		{"falls back to first", []wgpu.TextureFormat{wgpu.TextureFormatRGBA16Float}, wgpu.TextureFormatRGBA16Float},
		{"empty list", nil, wgpu.TextureFormatBGRA8Unorm},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, pickSurfaceFormat(tt.formats))
		})
	}
}

func TestFramePixelsPacksRows(t *testing.T) {
	img := common.NewImage(3, 2)
	img.Set(2, 1, mgl32.Vec4{1, 0, 0, 1})
	pix := framePixels(img)
	require.Len(t, pix, 3*2*4)
	assert.Equal(t, []byte{255, 0, 0, 255}, pix[(1*3+2)*4:(1*3+2)*4+4])
}

func TestNewPresenterRequiresSurfaceAndSource(t *testing.T) {
	_, err := NewPresenter(nil, nil, 8, 8)
	assert.Error(t, err)
}
