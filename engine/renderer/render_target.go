package renderer

import (
	"github.com/cogentcore/webgpu/wgpu"

	"github.com/Carmen-Shannon/splatfx/common"
)

// RenderTargetDescriptor describes an offscreen target owned by a post-processing pass.
type RenderTargetDescriptor struct {
	Label  string
	Width  int
	Height int

	// Format defaults to RGBA8Unorm.
	Format wgpu.TextureFormat

	// DepthBuffer attaches a Depth24Plus buffer; StencilBuffer upgrades it to Depth24PlusStencil8.
	DepthBuffer   bool
	StencilBuffer bool

	// Nearest selects nearest filtering instead of linear.
	Nearest bool
}

// Valid reports whether the descriptor has a drawable size.
func (d RenderTargetDescriptor) Valid() bool {
	return d.Width > 0 && d.Height > 0
}

// TextureDescriptor returns the color attachment descriptor. The texture is both rendered
// into and sampled by the next pass.
//
// Returns:
//   - *wgpu.TextureDescriptor: the color texture descriptor
func (d RenderTargetDescriptor) TextureDescriptor() *wgpu.TextureDescriptor {
	return &wgpu.TextureDescriptor{
		Label: common.Coalesce(d.Label, "Render Target") + " Texture",
		Size: wgpu.Extent3D{
			Width:              uint32(d.Width),
			Height:             uint32(d.Height),
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        common.Coalesce(d.Format, wgpu.TextureFormatRGBA8Unorm),
		Usage:         wgpu.TextureUsageRenderAttachment | wgpu.TextureUsageTextureBinding,
	}
}

// DepthTextureDescriptor returns the depth attachment descriptor, or nil when the target
// has no depth buffer.
//
// Returns:
//   - *wgpu.TextureDescriptor: the depth texture descriptor or nil
func (d RenderTargetDescriptor) DepthTextureDescriptor() *wgpu.TextureDescriptor {
	if !d.DepthBuffer && !d.StencilBuffer {
		return nil
	}
	format := wgpu.TextureFormatDepth24Plus
	if d.StencilBuffer {
		format = wgpu.TextureFormatDepth24PlusStencil8
	}
	return &wgpu.TextureDescriptor{
		Label: common.Coalesce(d.Label, "Render Target") + " Depth",
		Size: wgpu.Extent3D{
			Width:              uint32(d.Width),
			Height:             uint32(d.Height),
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        format,
		Usage:         wgpu.TextureUsageRenderAttachment,
	}
}

// SamplerDescriptor returns the sampler the next pass reads the color texture with.
// Addressing is clamp-to-edge so neighborhood kernels never wrap around the border.
//
// Returns:
//   - *wgpu.SamplerDescriptor: the sampler descriptor
func (d RenderTargetDescriptor) SamplerDescriptor() *wgpu.SamplerDescriptor {
	filter := wgpu.FilterModeLinear
	if d.Nearest {
		filter = wgpu.FilterModeNearest
	}
	return &wgpu.SamplerDescriptor{
		Label:         common.Coalesce(d.Label, "Render Target") + " Sampler",
		AddressModeU:  wgpu.AddressModeClampToEdge,
		AddressModeV:  wgpu.AddressModeClampToEdge,
		AddressModeW:  wgpu.AddressModeClampToEdge,
		MagFilter:     filter,
		MinFilter:     filter,
		MipmapFilter:  wgpu.MipmapFilterModeNearest,
		LodMaxClamp:   32.0,
		MaxAnisotropy: 1,
	}
}
