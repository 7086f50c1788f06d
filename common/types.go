// package common contains common types that are used throughout this engine. They are not interface-wrapped structs, just plain structs that express
// commonly used data-types.
package common

import (
	"image"
	"image/color"

	"github.com/go-gl/mathgl/mgl32"
)

// Box3 is an axis-aligned bounding box in world space.
type Box3 struct {
	// Min is the corner with the smallest coordinates.
	Min mgl32.Vec3

	// Max is the corner with the largest coordinates.
	Max mgl32.Vec3
}

// Center returns the midpoint of the box.
//
// Returns:
//   - mgl32.Vec3: the center of the box
func (b Box3) Center() mgl32.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

// Size returns the extent of the box along each axis.
//
// Returns:
//   - mgl32.Vec3: Max - Min
func (b Box3) Size() mgl32.Vec3 {
	return b.Max.Sub(b.Min)
}

// Expand grows the box to contain p.
//
// Parameters:
//   - p: the point to include
func (b *Box3) Expand(p mgl32.Vec3) {
	for i := range 3 {
		if p[i] < b.Min[i] {
			b.Min[i] = p[i]
		}
		if p[i] > b.Max[i] {
			b.Max[i] = p[i]
		}
	}
}

// Ray is a half-line with a unit direction.
type Ray struct {
	Origin    mgl32.Vec3
	Direction mgl32.Vec3
}

// At returns the point at distance t along the ray.
func (r Ray) At(t float32) mgl32.Vec3 {
	return r.Origin.Add(r.Direction.Mul(t))
}

// Image is a linear float RGBA pixel buffer stored row-major with the origin at the top-left.
// It is the texture representation used by the CPU reference kernels and the software backend.
type Image struct {
	Width  int
	Height int
	Pix    []mgl32.Vec4
}

// NewImage allocates a transparent black image.
//
// Parameters:
//   - width: width in pixels
//   - height: height in pixels
//
// Returns:
//   - *Image: the allocated image
func NewImage(width, height int) *Image {
	return &Image{
		Width:  width,
		Height: height,
		Pix:    make([]mgl32.Vec4, width*height),
	}
}

// At samples the pixel at (x, y) with clamp-to-edge addressing.
//
// Parameters:
//   - x: column, may be out of range
//   - y: row, may be out of range
//
// Returns:
//   - mgl32.Vec4: the RGBA value
func (img *Image) At(x, y int) mgl32.Vec4 {
	if img.Width == 0 || img.Height == 0 {
		return mgl32.Vec4{}
	}
	x = min(max(x, 0), img.Width-1)
	y = min(max(y, 0), img.Height-1)
	return img.Pix[y*img.Width+x]
}

// Set writes the pixel at (x, y). Out of range writes are ignored.
func (img *Image) Set(x, y int, c mgl32.Vec4) {
	if x < 0 || y < 0 || x >= img.Width || y >= img.Height {
		return
	}
	img.Pix[y*img.Width+x] = c
}

// Fill sets every pixel to c.
func (img *Image) Fill(c mgl32.Vec4) {
	for i := range img.Pix {
		img.Pix[i] = c
	}
}

// Clone returns a deep copy of the image.
func (img *Image) Clone() *Image {
	out := &Image{Width: img.Width, Height: img.Height, Pix: make([]mgl32.Vec4, len(img.Pix))}
	copy(out.Pix, img.Pix)
	return out
}

// ToNRGBA converts the buffer to an 8-bit image, clamping each channel to [0, 1].
//
// Returns:
//   - *image.NRGBA: the converted image
func (img *Image) ToNRGBA() *image.NRGBA {
	out := image.NewNRGBA(image.Rect(0, 0, img.Width, img.Height))
	for y := range img.Height {
		for x := range img.Width {
			p := img.Pix[y*img.Width+x]
			out.SetNRGBA(x, y, color.NRGBA{
				R: toByte(p[0]),
				G: toByte(p[1]),
				B: toByte(p[2]),
				A: toByte(p[3]),
			})
		}
	}
	return out
}

// ImageFrom converts any image.Image into a float buffer.
//
// Parameters:
//   - src: the source image
//
// Returns:
//   - *Image: the converted buffer
func ImageFrom(src image.Image) *Image {
	b := src.Bounds()
	out := NewImage(b.Dx(), b.Dy())
	for y := range out.Height {
		for x := range out.Width {
			c := color.NRGBAModel.Convert(src.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
			out.Pix[y*out.Width+x] = mgl32.Vec4{
				float32(c.R) / 255,
				float32(c.G) / 255,
				float32(c.B) / 255,
				float32(c.A) / 255,
			}
		}
	}
	return out
}

func toByte(v float32) uint8 {
	return uint8(Clamp(v, 0, 1)*255 + 0.5)
}
