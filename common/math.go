package common

import (
	"unsafe"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// The helpers in this file mirror the WGSL helpers injected into generated shaders so the
// CPU reference paths (software backend, tests) evaluate the same formulas.

// SliceToBytes converts any slice to a byte slice for GPU buffer uploads.
// Uses unsafe pointer operations to create a view into the original data.
// WARNING: The returned slice shares memory with the input - do not modify.
//
// Parameters:
//   - data: source slice of any type
//
// Returns:
//   - []byte: byte slice view of the input data, or nil if input is empty
func SliceToBytes[T any](data []T) []byte {
	if len(data) == 0 {
		return nil
	}
	var zero T
	size := unsafe.Sizeof(zero)
	return unsafe.Slice((*byte)(unsafe.Pointer(&data[0])), int(size)*len(data))
}

// Clamp limits v to the closed range [lo, hi].
//
// Parameters:
//   - v: the value to clamp
//   - lo: lower bound
//   - hi: upper bound
//
// Returns:
//   - float32: the clamped value
func Clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Smoothstep is the Hermite interpolation used by GLSL, extended to accept reversed edges
// (e0 > e1) the way the GLSL kernels rely on. WGSL's builtin rejects that case, so the
// generated shaders use the sstep helper which has the same definition.
//
// Parameters:
//   - e0: the edge mapped to 0
//   - e1: the edge mapped to 1
//   - x: the input value
//
// Returns:
//   - float32: the interpolated value in [0, 1]
func Smoothstep(e0, e1, x float32) float32 {
	if e0 == e1 {
		if x < e0 {
			return 0
		}
		return 1
	}
	t := Clamp((x-e0)/(e1-e0), 0, 1)
	return t * t * (3 - 2*t)
}

// Step returns 0 when x < edge and 1 otherwise.
func Step(edge, x float32) float32 {
	if x < edge {
		return 0
	}
	return 1
}

// Mix linearly interpolates between a and b by t.
func Mix(a, b, t float32) float32 {
	return a + (b-a)*t
}

// MixVec3 linearly interpolates each component of a and b by t.
func MixVec3(a, b mgl32.Vec3, t float32) mgl32.Vec3 {
	return a.Add(b.Sub(a).Mul(t))
}

// Fract returns the fractional part of x using the GLSL definition x - floor(x).
func Fract(x float32) float32 {
	return x - math32.Floor(x)
}

// Hash3 is the per-component pseudo-random hash fract(sin(p*123.456)*123.456).
//
// Parameters:
//   - p: the seed vector, typically a splat position
//
// Returns:
//   - mgl32.Vec3: three pseudo-random values in [0, 1)
func Hash3(p mgl32.Vec3) mgl32.Vec3 {
	var out mgl32.Vec3
	for i := range 3 {
		out[i] = Fract(math32.Sin(p[i]*123.456) * 123.456)
	}
	return out
}

// Rot2 rotates the 2D vector (x, y) by angle a in radians.
//
// Parameters:
//   - x, y: the vector components
//   - a: rotation angle in radians
//
// Returns:
//   - float32, float32: the rotated components
func Rot2(x, y, a float32) (float32, float32) {
	s, c := math32.Sin(a), math32.Cos(a)
	return c*x - s*y, s*x + c*y
}

// Luminance returns the unweighted channel mean (r+g+b)/3 used by the brush rule.
func Luminance(rgb mgl32.Vec3) float32 {
	return (rgb[0] + rgb[1] + rgb[2]) / 3
}

// Vec3Abs returns the component-wise absolute value of v.
func Vec3Abs(v mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{math32.Abs(v[0]), math32.Abs(v[1]), math32.Abs(v[2])}
}
