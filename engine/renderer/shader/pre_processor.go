// pre_processor.go implements the WGSL include pre-processor. Generated pass and modifier
// sources reference shared helper snippets with a single-line directive:
//
//	//@fx:include <name>
//
// The directive line is replaced by the registered snippet. Each snippet is injected at
// most once per Process call so sources may include helpers that include the same
// dependency.
package shader

import (
	"errors"
	"fmt"
	"strings"
)

// includePrefix is the marker that identifies an include directive within a WGSL comment line.
const includePrefix = "//@fx:include"

// ErrUnknownInclude is returned when a directive names a snippet that is not registered.
var ErrUnknownInclude = errors.New("unknown include")

// PreProcessor resolves include directives in WGSL source.
type PreProcessor interface {
	// Process replaces every include directive with its registered snippet.
	//
	// Parameters:
	//   - source: WGSL source containing include directives
	//
	// Returns:
	//   - string: the expanded source
	//   - error: ErrUnknownInclude (wrapped with the line number) if a snippet is missing
	Process(source string) (string, error)

	// Register adds or replaces a snippet.
	//
	// Parameters:
	//   - name: the include name
	//   - source: the WGSL snippet, which may itself contain include directives
	Register(name, source string)
}

type preProcessor struct {
	registry map[string]string
}

var _ PreProcessor = &preProcessor{}

// NewPreProcessor creates a pre-processor with the built-in helper snippets registered.
//
// Returns:
//   - PreProcessor: a ready-to-use pre-processor instance
func NewPreProcessor() PreProcessor {
	p := &preProcessor{registry: make(map[string]string, len(builtinIncludes))}
	for name, src := range builtinIncludes {
		p.registry[name] = src
	}
	return p
}

func (p *preProcessor) Register(name, source string) {
	p.registry[name] = source
}

func (p *preProcessor) Process(source string) (string, error) {
	return p.expand(source, make(map[string]bool))
}

func (p *preProcessor) expand(source string, seen map[string]bool) (string, error) {
	lines := strings.Split(source, "\n")
	out := make([]string, 0, len(lines))
	for i, line := range lines {
		rest, ok := strings.CutPrefix(strings.TrimSpace(line), includePrefix)
		if !ok {
			out = append(out, line)
			continue
		}
		name := strings.TrimSpace(rest)
		if seen[name] {
			continue
		}
		snippet, ok := p.registry[name]
		if !ok {
			return "", fmt.Errorf("line %d: %w %q", i+1, ErrUnknownInclude, name)
		}
		seen[name] = true
		expanded, err := p.expand(snippet, seen)
		if err != nil {
			return "", fmt.Errorf("include %q: %w", name, err)
		}
		out = append(out, expanded)
	}
	return strings.Join(out, "\n"), nil
}

// builtinIncludes are the helper snippets shared by post passes and splat modifiers.
var builtinIncludes = map[string]string{
	"sstep": `// smoothstep that accepts reversed edges
fn sstep(e0: f32, e1: f32, x: f32) -> f32 {
    let t = clamp((x - e0) / (e1 - e0), 0.0, 1.0);
    return t * t * (3.0 - 2.0 * t);
}`,
	"rot2": `fn rot2(v: vec2f, a: f32) -> vec2f {
    let c = cos(a);
    let s = sin(a);
    return vec2f(c * v.x - s * v.y, s * v.x + c * v.y);
}`,
	"hash3": `fn hash3(p: vec3f) -> vec3f {
    return fract(sin(p * 123.456) * 123.456);
}`,
	"luminance": `fn luminance(c: vec3f) -> f32 {
    return dot(c, vec3f(1.0)) / 3.0;
}`,
	"gsplat_normal": `fn quatVec(q: vec4f, v: vec3f) -> vec3f {
    let t = 2.0 * cross(q.xyz, v);
    return v + q.w * t + cross(q.xyz, t);
}

// normal of the smallest scale axis
fn gsplatNormal(scales: vec3f, quat: vec4f) -> vec3f {
    let minScale = min(scales.x, min(scales.y, scales.z));
    var axis = vec3f(1.0, 0.0, 0.0);
    if (scales.z == minScale) {
        axis = vec3f(0.0, 0.0, 1.0);
    } else if (scales.y == minScale) {
        axis = vec3f(0.0, 1.0, 0.0);
    }
    let n = quatVec(quat, axis);
    let len = length(n);
    if (len > 0.0) {
        return n / len;
    }
    return vec3f(0.0, 0.0, 1.0);
}`,
	"fullscreen_io": `struct VertexOutput {
    @builtin(position) position: vec4f,
    @location(0) uv: vec2f,
};`,
	"post_bindings": `@group(0) @binding(0) var inputTexture: texture_2d<f32>;
@group(0) @binding(1) var inputSampler: sampler;

fn sampleAt(uv: vec2f) -> vec4f {
    return textureSampleLevel(inputTexture, inputSampler, uv, 0.0);
}`,
}
