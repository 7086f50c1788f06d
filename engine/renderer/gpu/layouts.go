package gpu

import (
	"fmt"
	"sort"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/Carmen-Shannon/splatfx/common"
	"github.com/Carmen-Shannon/splatfx/engine/renderer/shader"
)

// bindingKind is the resource a reflected layout entry expects.
type bindingKind int

const (
	bindingTexture bindingKind = iota
	bindingSampler
	bindingUniform
)

// mergeBindGroupLayouts combines the vertex and fragment descriptors of one program.
// A binding declared by both stages keeps one entry with the visibilities OR'd together.
//
// Parameters:
//   - vertexLayouts: descriptors reflected from the vertex stage
//   - fragmentLayouts: descriptors reflected from the fragment stage
//
// Returns:
//   - map[int]wgpu.BindGroupLayoutDescriptor: the merged descriptors keyed by group index
func mergeBindGroupLayouts(vertexLayouts, fragmentLayouts map[int]wgpu.BindGroupLayoutDescriptor) map[int]wgpu.BindGroupLayoutDescriptor {
	merged := make(map[int]wgpu.BindGroupLayoutDescriptor, max(len(vertexLayouts), len(fragmentLayouts)))
	for g, desc := range vertexLayouts {
		merged[g] = desc
	}
	for g, fDesc := range fragmentLayouts {
		vDesc, ok := merged[g]
		if !ok {
			merged[g] = fDesc
			continue
		}
		byBinding := make(map[uint32]wgpu.BindGroupLayoutEntry, len(vDesc.Entries)+len(fDesc.Entries))
		for _, e := range vDesc.Entries {
			byBinding[e.Binding] = e
		}
		for _, e := range fDesc.Entries {
			if existing, ok := byBinding[e.Binding]; ok {
				existing.Visibility |= e.Visibility
				e = existing
			}
			byBinding[e.Binding] = e
		}
		entries := make([]wgpu.BindGroupLayoutEntry, 0, len(byBinding))
		for _, e := range byBinding {
			entries = append(entries, e)
		}
		sort.Slice(entries, func(i, j int) bool { return entries[i].Binding < entries[j].Binding })
		merged[g] = wgpu.BindGroupLayoutDescriptor{Label: vDesc.Label, Entries: entries}
	}
	return merged
}

// programLayouts returns the merged layouts of p as a dense slice indexed by group.
// Groups the program skips stay as empty descriptors.
func programLayouts(p shader.Program) []wgpu.BindGroupLayoutDescriptor {
	merged := mergeBindGroupLayouts(p.Vertex.BindGroupLayoutDescriptors(), p.Fragment.BindGroupLayoutDescriptors())
	maxGroup := -1
	for g := range merged {
		maxGroup = max(maxGroup, g)
	}
	dense := make([]wgpu.BindGroupLayoutDescriptor, maxGroup+1)
	for g, desc := range merged {
		desc.Label = common.Coalesce(desc.Label, fmt.Sprintf("%s Group %d", p.Variant, g))
		dense[g] = desc
	}
	return dense
}

// bindingKinds classifies every entry of a reflected layout. The present pipeline only
// has a sampled texture, a sampler and the uniform block to offer.
//
// Parameters:
//   - desc: the reflected layout
//
// Returns:
//   - map[uint32]bindingKind: the resource kind per binding index
//   - error: an error if an entry needs a resource the presenter cannot supply
func bindingKinds(desc wgpu.BindGroupLayoutDescriptor) (map[uint32]bindingKind, error) {
	kinds := make(map[uint32]bindingKind, len(desc.Entries))
	for _, e := range desc.Entries {
		switch {
		case e.Buffer.Type == wgpu.BufferBindingTypeUniform:
			kinds[e.Binding] = bindingUniform
		case e.Sampler.Type != wgpu.SamplerBindingTypeUndefined:
			kinds[e.Binding] = bindingSampler
		case e.Texture.SampleType != wgpu.TextureSampleTypeUndefined:
			kinds[e.Binding] = bindingTexture
		default:
			return nil, fmt.Errorf("binding %d: unsupported resource", e.Binding)
		}
	}
	return kinds, nil
}

// pickSurfaceFormat prefers a linear 8-bit format because the uploaded frame is already
// display encoded. It falls back to the first supported format.
func pickSurfaceFormat(formats []wgpu.TextureFormat) wgpu.TextureFormat {
	for _, want := range []wgpu.TextureFormat{wgpu.TextureFormatBGRA8Unorm, wgpu.TextureFormatRGBA8Unorm} {
		for _, f := range formats {
			if f == want {
				return f
			}
		}
	}
	if len(formats) == 0 {
		return wgpu.TextureFormatBGRA8Unorm
	}
	return formats[0]
}

// framePixels returns the tightly packed RGBA8 bytes of img, row by row.
func framePixels(img *common.Image) []byte {
	nrgba := img.ToNRGBA()
	rowBytes := img.Width * 4
	if nrgba.Stride == rowBytes {
		return nrgba.Pix[:rowBytes*img.Height]
	}
	out := make([]byte, 0, rowBytes*img.Height)
	for y := range img.Height {
		start := y * nrgba.Stride
		out = append(out, nrgba.Pix[start:start+rowBytes]...)
	}
	return out
}
