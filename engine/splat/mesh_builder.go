package splat

// MeshBuilderOption is a functional option for configuring a MemoryMesh.
type MeshBuilderOption func(*memoryMesh)

// WithName sets the label used in log messages.
//
// Parameters:
//   - name: the mesh label
//
// Returns:
//   - MeshBuilderOption: option function to apply
func WithName(name string) MeshBuilderOption {
	return func(m *memoryMesh) {
		m.name = name
	}
}
