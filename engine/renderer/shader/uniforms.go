package shader

import (
	"fmt"
	"math"
	"strings"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Carmen-Shannon/splatfx/common"
)

// UniformField is one member of the runtime uniform block.
type UniformField struct {
	// Name is the WGSL member name and the key used when packing values.
	Name string

	// Type is the WGSL type: f32, i32, u32, vec2f, vec3f or vec4f.
	Type string
}

// UniformLayout is the ordered runtime parameter class of a program. Values in this class
// are pushed every frame without regenerating source. It is emitted as
//
//	struct Uniforms { ... };
//	@group(0) @binding(2) var<uniform> uniforms: Uniforms;
type UniformLayout []UniformField

// PostUniforms is the layout shared by both post-processing passes.
var PostUniforms = UniformLayout{
	{Name: "textureSize", Type: "vec2f"},
}

// uniformBinding is the binding index of the uniform block in group 0.
const uniformBinding = 2

// fieldLayout returns the WGSL alignment and size in floats for a uniform member type.
func fieldLayout(typ string) (align, size int, ok bool) {
	switch typ {
	case "f32", "i32", "u32":
		return 1, 1, true
	case "vec2f":
		return 2, 2, true
	case "vec3f":
		return 4, 3, true
	case "vec4f":
		return 4, 4, true
	}
	return 0, 0, false
}

// WGSL renders the post-processing uniform block declaration. An empty layout renders nothing.
//
// Returns:
//   - string: the WGSL declaration
//   - error: an error if a field has an unsupported type
func (l UniformLayout) WGSL() (string, error) {
	return l.Declare("Uniforms", "uniforms", 0, uniformBinding)
}

// Declare renders the block as structName bound to varName at the given group and binding.
//
// Parameters:
//   - structName: the WGSL struct name
//   - varName: the WGSL variable name
//   - group, binding: the bind group slot
//
// Returns:
//   - string: the WGSL declaration
//   - error: an error if a field has an unsupported type
func (l UniformLayout) Declare(structName, varName string, group, binding int) (string, error) {
	if len(l) == 0 {
		return "", nil
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "struct %s {\n", structName)
	for _, f := range l {
		if _, _, ok := fieldLayout(f.Type); !ok {
			return "", fmt.Errorf("uniform %s: unsupported type %q", f.Name, f.Type)
		}
		fmt.Fprintf(&sb, "    %s: %s,\n", f.Name, f.Type)
	}
	sb.WriteString("};\n")
	fmt.Fprintf(&sb, "@group(%d) @binding(%d) var<uniform> %s: %s;", group, binding, varName, structName)
	return sb.String(), nil
}

// offsets computes the float offset of each field and the padded block size in floats.
func (l UniformLayout) offsets() ([]int, int) {
	offs := make([]int, len(l))
	cursor, maxAlign := 0, 1
	for i, f := range l {
		align, size, _ := fieldLayout(f.Type)
		if align == 0 {
			continue
		}
		maxAlign = max(maxAlign, align)
		cursor = (cursor + align - 1) / align * align
		offs[i] = cursor
		cursor += size
	}
	total := (cursor + maxAlign - 1) / maxAlign * maxAlign
	return offs, total
}

// Size returns the byte size of the uniform block including WGSL padding.
func (l UniformLayout) Size() uint64 {
	_, total := l.offsets()
	return uint64(total * 4)
}

// Pack writes values into a byte buffer laid out to match the WGSL block. Missing or
// mistyped values are left zero. Integer and bool values are stored as their bit patterns.
//
// Parameters:
//   - values: uniform values keyed by field name (float32, int, int32, uint32, bool,
//     mgl32.Vec2, mgl32.Vec3, mgl32.Vec4)
//
// Returns:
//   - []byte: the packed block ready for a buffer write
func (l UniformLayout) Pack(values map[string]any) []byte {
	offs, total := l.offsets()
	buf := make([]float32, total)
	for i, f := range l {
		switch v := values[f.Name].(type) {
		case float32:
			buf[offs[i]] = v
		case int:
			buf[offs[i]] = math.Float32frombits(uint32(int32(v)))
		case int32:
			buf[offs[i]] = math.Float32frombits(uint32(v))
		case uint32:
			buf[offs[i]] = math.Float32frombits(v)
		case bool:
			if v {
				buf[offs[i]] = math.Float32frombits(1)
			}
		case mgl32.Vec2:
			copy(buf[offs[i]:], v[:])
		case mgl32.Vec3:
			copy(buf[offs[i]:], v[:])
		case mgl32.Vec4:
			copy(buf[offs[i]:], v[:])
		}
	}
	return common.SliceToBytes(buf)
}
