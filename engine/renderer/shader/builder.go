package shader

import (
	"fmt"
	"hash/fnv"
	"log"
	"math"
	"strings"
	"text/template"
)

// Variant selects the fragment formula of a post-processing program.
type Variant string

const (
	// VariantBasic is the 4-neighbor Laplacian edge kernel.
	VariantBasic Variant = "basic"

	// VariantExtended is the 8-neighbor Laplacian edge kernel with orientation coloring.
	VariantExtended Variant = "extended"

	// VariantSobel is the 3x3 Sobel gradient kernel.
	VariantSobel Variant = "sobel"

	// VariantBilateral is the joint spatial and range Gaussian denoiser.
	VariantBilateral Variant = "bilateral"
)

// EdgeVariants lists the edge kernels in the order the quick comparison cycles them.
var EdgeVariants = []Variant{VariantBasic, VariantExtended, VariantSobel}

// ParseVariant maps a kernel name to its variant. Unknown names map to VariantBasic.
//
// Parameters:
//   - name: "basic", "extended", "sobel" or "bilateral"
//
// Returns:
//   - Variant: the matching variant
//   - bool: false if name was not recognized
func ParseVariant(name string) (Variant, bool) {
	switch v := Variant(strings.ToLower(strings.TrimSpace(name))); v {
	case VariantBasic, VariantExtended, VariantSobel, VariantBilateral:
		return v, true
	}
	return VariantBasic, false
}

// Constants is the compile-time parameter class. Every field is folded into the generated
// source as a two-decimal literal or a loop bound, so changing one requires a rebuild.
type Constants struct {
	// Threshold is the edge strength above which a pixel counts as a boundary.
	Threshold float32

	// SharpeningStrength scales the unsharp mask.
	SharpeningStrength float32

	// TestMode replaces boundary pixels with flat diagnostic colors.
	TestMode bool

	// ColorCodeEdges colors test-mode boundaries by strength or orientation.
	ColorCodeEdges bool

	// PreserveAlpha keeps the center sample's alpha.
	PreserveAlpha bool

	// SpatialSigma is the bilateral spatial Gaussian sigma in pixels.
	SpatialSigma float32

	// RangeSigma is the bilateral range Gaussian sigma in RGB distance.
	RangeSigma float32

	// KernelSize is the bilateral window width; the radius is KernelSize / 2.
	KernelSize int
}

// KernelRadius returns floor(KernelSize / 2), never negative.
func (c Constants) KernelRadius() int {
	return max(c.KernelSize, 0) / 2
}

// Quantize rounds v to the precision it is embedded with in generated source. CPU mirrors
// of the kernels call it so both paths see the same literal.
//
// Parameters:
//   - v: the value to round
//
// Returns:
//   - float32: v rounded to two decimals
func Quantize(v float32) float32 {
	return float32(math.Round(float64(v)*100) / 100)
}

// Program is an immutable vertex and fragment pair plus the parameter classes that
// produced it.
type Program struct {
	Variant   Variant
	Constants Constants
	Uniforms  UniformLayout
	Vertex    Shader
	Fragment  Shader
}

var templates = map[Variant]*template.Template{}

var templateFuncs = template.FuncMap{
	"f2": func(v float32) string {
		return fmt.Sprintf("%.2f", Quantize(v))
	},
	"mul": func(a, b float32) float32 {
		return a * b
	},
	"testAlpha": func(c Constants) string {
		if c.PreserveAlpha {
			return "center.a"
		}
		return "1.0"
	},
	"sharpAlpha": func(c Constants) string {
		if c.PreserveAlpha {
			return "center.a"
		}
		return "sharpened.a"
	},
}

func init() {
	for v, src := range map[Variant]string{
		VariantBasic:     basicFragmentTemplate,
		VariantExtended:  extendedFragmentTemplate,
		VariantSobel:     sobelFragmentTemplate,
		VariantBilateral: bilateralFragmentTemplate,
	} {
		templates[v] = template.Must(template.New(string(v)).Funcs(templateFuncs).Parse(src))
	}
}

// Builder assembles post-processing programs.
type Builder struct {
	pp PreProcessor
}

// NewBuilder creates a builder with its own include pre-processor.
//
// Returns:
//   - *Builder: the builder
func NewBuilder() *Builder {
	return &Builder{pp: NewPreProcessor()}
}

// PreProcessor exposes the builder's include registry so callers may register snippets.
func (b *Builder) PreProcessor() PreProcessor {
	return b.pp
}

// Build generates a complete program for variant. The two parameter classes stay separate:
// constants are folded into the source, uniforms become the runtime block. Build never
// fails: if the variant is unknown or cannot be assembled it logs and builds the basic
// variant instead.
//
// Parameters:
//   - variant: the kernel variant
//   - constants: compile-time parameters
//   - uniforms: runtime uniform layout
//
// Returns:
//   - Program: the generated program
func (b *Builder) Build(variant Variant, constants Constants, uniforms UniformLayout) Program {
	fragment, err := b.Fragment(variant, constants, uniforms)
	if err != nil {
		log.Printf("[Shader] building %q failed, falling back to %q: %v", variant, VariantBasic, err)
		variant = VariantBasic
		if _, uerr := uniforms.WGSL(); uerr != nil {
			uniforms = PostUniforms
		}
		fragment, err = b.Fragment(VariantBasic, constants, uniforms)
		if err != nil {
			// the basic template is compiled into the binary; failing here is a programming error
			panic(fmt.Sprintf("shader: basic variant failed to build: %v", err))
		}
	}
	vertex, _ := b.pp.Process(fullscreenVertexSource)

	return Program{
		Variant:   variant,
		Constants: constants,
		Uniforms:  uniforms,
		Vertex:    NewShader(sourceKey("fullscreen_vs", vertex), ShaderTypeVertex, vertex),
		Fragment:  NewShader(sourceKey(string(variant)+"_fs", fragment), ShaderTypeFragment, fragment),
	}
}

// Fragment renders only the fragment source for variant.
//
// Parameters:
//   - variant: the kernel variant
//   - constants: compile-time parameters
//   - uniforms: runtime uniform layout
//
// Returns:
//   - string: the complete WGSL fragment source
//   - error: an error if the variant is unknown or expansion fails
func (b *Builder) Fragment(variant Variant, constants Constants, uniforms UniformLayout) (string, error) {
	tmpl, ok := templates[variant]
	if !ok {
		return "", fmt.Errorf("unknown variant %q", variant)
	}
	block, err := uniforms.WGSL()
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	data := struct {
		Constants
		UniformBlock string
	}{constants, block}
	if err := tmpl.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("render %q: %w", variant, err)
	}
	return b.pp.Process(sb.String())
}

func sourceKey(prefix, source string) string {
	h := fnv.New32a()
	h.Write([]byte(source))
	return fmt.Sprintf("%s_%08x", prefix, h.Sum32())
}
