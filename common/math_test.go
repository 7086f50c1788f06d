package common

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestSmoothstep(t *testing.T) {
	tests := []struct {
		name     string
		e0, e1   float32
		x        float32
		expected float32
	}{
		{"below", 0, 1, -1, 0},
		{"above", 0, 1, 2, 1},
		{"middle", 0, 1, 0.5, 0.5},
		{"reversed below", -1, -2, -0.5, 0},
		{"reversed above", -1, -2, -3, 1},
		{"reversed middle", -1, -2, -1.5, 0.5},
		{"equal edges", 1, 1, 0.5, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, Smoothstep(tt.e0, tt.e1, tt.x), 1e-6)
		})
	}
}

func TestHash3Range(t *testing.T) {
	for _, p := range []mgl32.Vec3{{0, 0, 0}, {0.3, -1.2, 5}, {-7, 2.5, 0.01}} {
		h := Hash3(p)
		for i := range 3 {
			assert.GreaterOrEqual(t, h[i], float32(0))
			assert.Less(t, h[i], float32(1))
		}
		assert.Equal(t, h, Hash3(p), "hash must be deterministic")
	}
}

func TestRot2QuarterTurn(t *testing.T) {
	x, y := Rot2(1, 0, mgl32.DegToRad(90))
	assert.InDelta(t, 0, x, 1e-6)
	assert.InDelta(t, 1, y, 1e-6)
}

func TestFract(t *testing.T) {
	assert.InDelta(t, 0.25, Fract(1.25), 1e-6)
	assert.InDelta(t, 0.75, Fract(-0.25), 1e-6)
}

func TestBox3Center(t *testing.T) {
	b := Box3{Min: mgl32.Vec3{-1, 0, 2}, Max: mgl32.Vec3{3, 4, 2}}
	assert.Equal(t, mgl32.Vec3{1, 2, 2}, b.Center())

	b.Expand(mgl32.Vec3{5, -1, 2})
	assert.Equal(t, mgl32.Vec3{5, 4, 2}, b.Max)
	assert.Equal(t, mgl32.Vec3{-1, -1, 2}, b.Min)
}

func TestImageClampToEdge(t *testing.T) {
	img := NewImage(2, 2)
	img.Set(0, 0, mgl32.Vec4{1, 0, 0, 1})
	img.Set(1, 1, mgl32.Vec4{0, 0, 1, 1})

	assert.Equal(t, mgl32.Vec4{1, 0, 0, 1}, img.At(-5, -5))
	assert.Equal(t, mgl32.Vec4{0, 0, 1, 1}, img.At(9, 9))

	rgba := img.ToNRGBA()
	assert.Equal(t, uint8(255), rgba.NRGBAAt(0, 0).R)
	assert.Equal(t, img.Pix, ImageFrom(rgba).Pix)
}

func TestCoalesce(t *testing.T) {
	assert.Equal(t, "b", Coalesce("", "b", "c"))
	assert.Equal(t, 0, Coalesce(0, 0))
}
