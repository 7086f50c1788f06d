package material

import (
	"github.com/go-gl/mathgl/mgl32"
)

// MaterialBuilderOption is a function that configures a physical material during construction.
type MaterialBuilderOption func(*physicalMaterial)

// WithName is an option builder that sets the name of the material.
//
// Parameters:
//   - name: the identifier for the material
//
// Returns:
//   - MaterialBuilderOption: a function that applies the name option to a material
func WithName(name string) MaterialBuilderOption {
	return func(m *physicalMaterial) {
		m.name = name
	}
}

// WithBaseColor is an option builder that sets the albedo color of the material.
//
// Parameters:
//   - color: the base color
//
// Returns:
//   - MaterialBuilderOption: a function that applies the base color option to a material
func WithBaseColor(color mgl32.Vec3) MaterialBuilderOption {
	return func(m *physicalMaterial) {
		m.baseColor = color
	}
}

// WithMetalness is an option builder that sets the metallic factor of the material.
//
// Parameters:
//   - metalness: the metallic factor (0.0 = dielectric, 1.0 = metal)
//
// Returns:
//   - MaterialBuilderOption: a function that applies the metallic option to a material
func WithMetalness(metalness float32) MaterialBuilderOption {
	return func(m *physicalMaterial) {
		m.metalness = clamp01(metalness)
	}
}

// WithRoughness is an option builder that sets the roughness factor of the material.
//
// Parameters:
//   - roughness: the roughness factor (0.0 = mirror, 1.0 = rough)
//
// Returns:
//   - MaterialBuilderOption: a function that applies the roughness option to a material
func WithRoughness(roughness float32) MaterialBuilderOption {
	return func(m *physicalMaterial) {
		m.roughness = clamp01(roughness)
	}
}

// WithEnvMapIntensity sets the initial reflection strength.
func WithEnvMapIntensity(intensity float32) MaterialBuilderOption {
	return func(m *physicalMaterial) {
		m.envMapIntensity = max(intensity, 0)
	}
}

// ShaderMaterialBuilderOption is a function that configures a shader material during construction.
type ShaderMaterialBuilderOption func(*shaderMaterial)

// WithShaderName sets the name of a shader material.
func WithShaderName(name string) ShaderMaterialBuilderOption {
	return func(m *shaderMaterial) {
		m.name = name
	}
}

// WithUniform seeds one uniform or texture binding.
//
// Parameters:
//   - name: the uniform or binding name
//   - value: the initial value
//
// Returns:
//   - ShaderMaterialBuilderOption: a function that stores the value
func WithUniform(name string, value any) ShaderMaterialBuilderOption {
	return func(m *shaderMaterial) {
		m.uniforms[name] = value
	}
}

// WithTransparent enables alpha blending over the destination.
func WithTransparent(transparent bool) ShaderMaterialBuilderOption {
	return func(m *shaderMaterial) {
		m.transparent = transparent
	}
}

// WithDepth sets the depth test and depth write flags.
//
// Parameters:
//   - test: whether the quad is depth tested
//   - write: whether the quad writes depth
//
// Returns:
//   - ShaderMaterialBuilderOption: a function that sets both flags
func WithDepth(test, write bool) ShaderMaterialBuilderOption {
	return func(m *shaderMaterial) {
		m.depthTest = test
		m.depthWrite = write
	}
}

// WithReference sets the CPU form of the program.
func WithReference(ref Reference) ShaderMaterialBuilderOption {
	return func(m *shaderMaterial) {
		m.reference = ref
	}
}
