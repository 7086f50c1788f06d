// Package splat holds the splat record, the procedural modifier hook and the mesh
// contract the post-processing systems install their rules on. MemoryMesh is an
// in-memory mesh that evaluates modifiers on the CPU for the software backend and tests.
package splat

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Splat is one gaussian: a center, per-axis scales, an orientation and a straight-alpha color.
type Splat struct {
	Center     mgl32.Vec3
	Scales     mgl32.Vec3
	Quaternion mgl32.Quat
	RGBA       mgl32.Vec4
}

// RGB returns the color channels.
func (s Splat) RGB() mgl32.Vec3 {
	return s.RGBA.Vec3()
}

// Normal returns the world-space normal: the axis of the smallest scale rotated by the
// splat's orientation. Ties prefer z, then y.
//
// Returns:
//   - mgl32.Vec3: the unit normal, or +z for a degenerate orientation
func (s Splat) Normal() mgl32.Vec3 {
	axis := mgl32.Vec3{1, 0, 0}
	smallest := min(s.Scales[0], s.Scales[1], s.Scales[2])
	switch smallest {
	case s.Scales[2]:
		axis = mgl32.Vec3{0, 0, 1}
	case s.Scales[1]:
		axis = mgl32.Vec3{0, 1, 0}
	}
	q := s.Quaternion
	if q.Len() == 0 {
		q = mgl32.QuatIdent()
	}
	n := q.Normalize().Rotate(axis)
	if l := n.Len(); l > 0 {
		return n.Mul(1 / l)
	}
	return mgl32.Vec3{0, 0, 1}
}

// GsplatStruct is the WGSL record modifier statements read and write through `gsplat`.
const GsplatStruct = `struct Gsplat {
    center: vec3f,
    scales: vec3f,
    quaternion: vec4f,
    rgba: vec4f,
};`

// Sphere lays out n splats on a sphere of the given radius around center with a
// golden-angle spiral. Colors follow the normalized position so every splat is distinct.
// It is used to build demo and test scenes without an asset loader.
//
// Parameters:
//   - n: the splat count
//   - center: the sphere center
//   - radius: the sphere radius
//   - scale: the splat scale along the tangent axes
//
// Returns:
//   - []Splat: the splats
func Sphere(n int, center mgl32.Vec3, radius, scale float32) []Splat {
	out := make([]Splat, n)
	golden := float32(2.39996323)
	for i := range n {
		y := 1 - 2*(float32(i)+0.5)/float32(n)
		r := math32.Sqrt(max(1-y*y, 0))
		a := golden * float32(i)
		dir := mgl32.Vec3{math32.Cos(a) * r, y, math32.Sin(a) * r}
		out[i] = Splat{
			Center:     center.Add(dir.Mul(radius)),
			Scales:     mgl32.Vec3{scale, scale, scale * 0.1},
			Quaternion: mgl32.QuatBetweenVectors(mgl32.Vec3{0, 0, 1}, dir),
			RGBA:       dir.Mul(0.5).Add(mgl32.Vec3{0.5, 0.5, 0.5}).Vec4(1),
		}
	}
	return out
}
