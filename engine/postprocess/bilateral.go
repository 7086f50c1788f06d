package postprocess

import (
	"github.com/Carmen-Shannon/splatfx/engine/params"
	"github.com/Carmen-Shannon/splatfx/engine/renderer/material"
	"github.com/Carmen-Shannon/splatfx/engine/renderer/shader"
)

// Bilateral pass parameter names.
const (
	ParamSpatialSigma = "bilateralSpatialSigma"
	ParamRangeSigma   = "bilateralRangeSigma"
	ParamKernelSize   = "bilateralKernelSize"
)

// BilateralDefinitions returns the bilateral pass parameters with their default literals.
func BilateralDefinitions() []params.Definition {
	return []params.Definition{
		params.Float(ParamSpatialSigma, 2.0),
		params.Float(ParamRangeSigma, 0.1),
		params.Float(ParamKernelSize, 5),
	}
}

// BilateralPass is the joint spatial and range Gaussian denoiser.
type BilateralPass struct {
	Pass
	store *params.Store
}

// NewBilateralPass creates the bilateral pass with default parameters.
//
// Parameters:
//   - builder: the shader builder
//
// Returns:
//   - *BilateralPass: the pass
func NewBilateralPass(builder *shader.Builder) *BilateralPass {
	bp := &BilateralPass{store: params.NewStore(BilateralDefinitions()...)}
	bp.Pass = NewPass("Bilateral Filter", builder, bp.compile)
	bp.store.OnChange(func(string) { bp.Rebuild() }, bp.store.Names()...)
	return bp
}

// Constants returns the compile-time constants for the current parameters.
func (bp *BilateralPass) Constants() shader.Constants {
	return shader.Constants{
		SpatialSigma: bp.store.Float(ParamSpatialSigma),
		RangeSigma:   bp.store.Float(ParamRangeSigma),
		KernelSize:   int(bp.store.Float(ParamKernelSize) + 0.5),
	}
}

func (bp *BilateralPass) compile(b *shader.Builder) (shader.Program, material.Reference) {
	c := bp.Constants()
	return b.Build(shader.VariantBilateral, c, shader.PostUniforms), BilateralFilter(c)
}

// Params exposes the parameter store.
func (bp *BilateralPass) Params() *params.Store {
	return bp.store
}

// SetSpatialSigma sets the spatial Gaussian sigma in pixels.
func (bp *BilateralPass) SetSpatialSigma(v float32) {
	bp.store.SetFloat(ParamSpatialSigma, v)
}

// SetRangeSigma sets the range Gaussian sigma in RGB distance.
func (bp *BilateralPass) SetRangeSigma(v float32) {
	bp.store.SetFloat(ParamRangeSigma, v)
}

// SetKernelSize sets the window width. The radius is floor(size / 2).
func (bp *BilateralPass) SetKernelSize(size int) {
	bp.store.SetFloat(ParamKernelSize, float32(size))
}
