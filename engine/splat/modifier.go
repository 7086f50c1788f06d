package splat

import (
	"fmt"
	"maps"
	"strings"
	"sync"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Carmen-Shannon/splatfx/engine/renderer/shader"
)

// Uniforms is the live parameter block of a modifier. Writing a value never rebuilds the
// modifier's source; the mesh only needs UpdateVersion to pick it up.
type Uniforms struct {
	mu     *sync.RWMutex
	layout shader.UniformLayout
	values map[string]any
}

// NewUniforms creates a block with the given fields, all zero.
//
// Parameters:
//   - fields: the ordered WGSL members
//
// Returns:
//   - *Uniforms: the block
func NewUniforms(fields ...shader.UniformField) *Uniforms {
	return &Uniforms{
		mu:     &sync.RWMutex{},
		layout: shader.UniformLayout(fields),
		values: make(map[string]any, len(fields)),
	}
}

// Layout returns the WGSL layout of the block.
func (u *Uniforms) Layout() shader.UniformLayout {
	return u.layout
}

// Set stores a value.
//
// Parameters:
//   - name: the member name
//   - value: float32, int32, bool or an mgl32 vector matching the member type
func (u *Uniforms) Set(name string, value any) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.values[name] = value
}

// Get returns the stored value or nil.
func (u *Uniforms) Get(name string) any {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.values[name]
}

// Float returns a float32 member, or 0.
func (u *Uniforms) Float(name string) float32 {
	v, _ := u.Get(name).(float32)
	return v
}

// Int returns an int32 member, or 0.
func (u *Uniforms) Int(name string) int32 {
	v, _ := u.Get(name).(int32)
	return v
}

// Bool returns a bool member, or false.
func (u *Uniforms) Bool(name string) bool {
	v, _ := u.Get(name).(bool)
	return v
}

// Vec3 returns an mgl32.Vec3 member, or the zero vector.
func (u *Uniforms) Vec3(name string) mgl32.Vec3 {
	v, _ := u.Get(name).(mgl32.Vec3)
	return v
}

// Values returns a copy of every stored value.
func (u *Uniforms) Values() map[string]any {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return maps.Clone(u.values)
}

// Bytes packs the block for a uniform buffer write.
func (u *Uniforms) Bytes() []byte {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.layout.Pack(u.values)
}

// Modifier is a per-splat procedural rule installed on a Mesh. The GPU form is WGSL
// statements over a `gsplat` variable; Apply is the CPU form with the same behavior.
// Both read their parameters from Uniforms at evaluation time.
type Modifier struct {
	// Name is the WGSL identifier prefix and the name of the uniform variable the
	// statements read, e.g. `effect.t`.
	Name string

	// Globals holds helper declarations. It may contain include directives.
	Globals string

	// Statements read and write `gsplat`.
	Statements string

	// Uniforms is the live parameter block. May be nil.
	Uniforms *Uniforms

	// Apply is the CPU form of the rule.
	Apply func(s Splat) Splat
}

// Source assembles the complete WGSL for the modifier: the Gsplat record, the uniform
// declaration, the expanded globals and a `<name>_modify` function.
//
// Parameters:
//   - pp: the include pre-processor to expand globals with
//   - group, binding: where the uniform block is bound
//
// Returns:
//   - string: the WGSL source
//   - error: an include or uniform layout error
func (m *Modifier) Source(pp shader.PreProcessor, group, binding int) (string, error) {
	var sb strings.Builder
	sb.WriteString(GsplatStruct)
	sb.WriteString("\n\n")

	if m.Uniforms != nil {
		structName := strings.ToUpper(m.Name[:1]) + m.Name[1:] + "Uniforms"
		block, err := m.Uniforms.Layout().Declare(structName, m.Name, group, binding)
		if err != nil {
			return "", fmt.Errorf("modifier %s: %w", m.Name, err)
		}
		if block != "" {
			sb.WriteString(block)
			sb.WriteString("\n\n")
		}
	}

	globals, err := pp.Process(m.Globals)
	if err != nil {
		return "", fmt.Errorf("modifier %s: %w", m.Name, err)
	}
	if globals != "" {
		sb.WriteString(globals)
		sb.WriteString("\n\n")
	}

	fmt.Fprintf(&sb, "fn %s_modify(input: Gsplat) -> Gsplat {\n    var gsplat = input;\n", m.Name)
	for _, line := range strings.Split(strings.TrimRight(m.Statements, "\n"), "\n") {
		if strings.TrimSpace(line) == "" {
			sb.WriteString("\n")
			continue
		}
		sb.WriteString("    ")
		sb.WriteString(line)
		sb.WriteString("\n")
	}
	sb.WriteString("    return gsplat;\n}\n")
	return sb.String(), nil
}

// Evaluate runs the CPU form, or returns s unchanged when the modifier has none.
func (m *Modifier) Evaluate(s Splat) Splat {
	if m == nil || m.Apply == nil {
		return s
	}
	return m.Apply(s)
}
