package postprocess

import (
	"github.com/Carmen-Shannon/splatfx/engine/params"
	"github.com/Carmen-Shannon/splatfx/engine/renderer/material"
	"github.com/Carmen-Shannon/splatfx/engine/renderer/shader"
)

// Edge pass parameter names.
const (
	ParamLaplacianThreshold = "laplacianThreshold"
	ParamKernelType         = "kernelType"
	ParamColorCodeEdges     = "colorCodeEdges"
	ParamSharpeningStrength = "sharpeningStrength"
	ParamPreserveAlpha      = "preserveSplatAlpha"
	ParamBoundaryTest       = "boundaryTestActive"
)

// EdgeDefinitions returns the edge pass parameters with their default literals.
func EdgeDefinitions() []params.Definition {
	return []params.Definition{
		params.Float(ParamLaplacianThreshold, 0.3),
		params.Enum(ParamKernelType, string(shader.VariantBasic),
			string(shader.VariantBasic), string(shader.VariantExtended), string(shader.VariantSobel)),
		params.Bool(ParamColorCodeEdges, true),
		params.Float(ParamSharpeningStrength, 0.5),
		params.Bool(ParamPreserveAlpha, true),
		params.Bool(ParamBoundaryTest, false),
	}
}

// EdgePass is the Laplacian/Sobel boundary sharpening pass. Every parameter is a
// compile-time constant, so each setter rebuilds the program.
type EdgePass struct {
	Pass
	store *params.Store
}

// NewEdgePass creates the edge pass with default parameters.
//
// Parameters:
//   - builder: the shader builder
//
// Returns:
//   - *EdgePass: the pass
func NewEdgePass(builder *shader.Builder) *EdgePass {
	e := &EdgePass{store: params.NewStore(EdgeDefinitions()...)}
	e.Pass = NewPass("Laplacian Boundary", builder, e.compile)
	e.store.OnChange(func(string) { e.Rebuild() }, e.store.Names()...)
	return e
}

// Variant returns the selected kernel.
func (e *EdgePass) Variant() shader.Variant {
	v, _ := shader.ParseVariant(e.store.Enum(ParamKernelType))
	return v
}

// Constants returns the compile-time constants for the current parameters.
func (e *EdgePass) Constants() shader.Constants {
	return shader.Constants{
		Threshold:          e.store.Float(ParamLaplacianThreshold),
		SharpeningStrength: e.store.Float(ParamSharpeningStrength),
		TestMode:           e.store.Bool(ParamBoundaryTest),
		ColorCodeEdges:     e.store.Bool(ParamColorCodeEdges),
		PreserveAlpha:      e.store.Bool(ParamPreserveAlpha),
	}
}

func (e *EdgePass) compile(b *shader.Builder) (shader.Program, material.Reference) {
	variant, c := e.Variant(), e.Constants()
	program := b.Build(variant, c, shader.PostUniforms)
	return program, EdgeFilter(program.Variant, c)
}

// Params exposes the parameter store.
func (e *EdgePass) Params() *params.Store {
	return e.store
}

// SetThreshold sets the edge strength threshold.
func (e *EdgePass) SetThreshold(v float32) {
	e.store.SetFloat(ParamLaplacianThreshold, v)
}

// SetKernelType selects the kernel by name. An unknown name selects basic.
//
// Parameters:
//   - name: "basic", "extended" or "sobel"
func (e *EdgePass) SetKernelType(name string) {
	v, _ := shader.ParseVariant(name)
	e.store.SetEnum(ParamKernelType, string(v))
}

// SetSharpeningStrength sets the unsharp mask strength.
func (e *EdgePass) SetSharpeningStrength(v float32) {
	e.store.SetFloat(ParamSharpeningStrength, v)
}

// SetColorCodeEdges toggles test-mode coloring by strength or orientation.
func (e *EdgePass) SetColorCodeEdges(on bool) {
	e.store.SetBool(ParamColorCodeEdges, on)
}

// SetPreserveAlpha toggles keeping the source alpha.
func (e *EdgePass) SetPreserveAlpha(on bool) {
	e.store.SetBool(ParamPreserveAlpha, on)
}

// SetTestMode toggles boundary test coloring.
func (e *EdgePass) SetTestMode(on bool) {
	e.store.SetBool(ParamBoundaryTest, on)
}

// TestMode reports whether boundary test coloring is on.
func (e *EdgePass) TestMode() bool {
	return e.store.Bool(ParamBoundaryTest)
}
