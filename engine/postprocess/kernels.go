package postprocess

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Carmen-Shannon/splatfx/common"
	"github.com/Carmen-Shannon/splatfx/engine/renderer/material"
	"github.com/Carmen-Shannon/splatfx/engine/renderer/shader"
)

// neighborhood is the 3x3 window around a pixel. Image y grows downward, so top is y-1.
type neighborhood struct {
	center, left, right, top, bottom           mgl32.Vec4
	topLeft, topRight, bottomLeft, bottomRight mgl32.Vec4
}

func sampleNeighborhood(img *common.Image, x, y int) neighborhood {
	return neighborhood{
		center:      img.At(x, y),
		left:        img.At(x-1, y),
		right:       img.At(x+1, y),
		top:         img.At(x, y-1),
		bottom:      img.At(x, y+1),
		topLeft:     img.At(x-1, y-1),
		topRight:    img.At(x+1, y-1),
		bottomLeft:  img.At(x-1, y+1),
		bottomRight: img.At(x+1, y+1),
	}
}

// edgeLiterals are the constants as they appear in generated source.
type edgeLiterals struct {
	threshold, doubleThreshold float32
	strong, gentle             float32
	test, colorCode, keepAlpha bool
}

func newEdgeLiterals(variant shader.Variant, c shader.Constants) edgeLiterals {
	gentle := float32(0.3)
	if variant == shader.VariantSobel {
		gentle = 0.2
	}
	return edgeLiterals{
		threshold:       shader.Quantize(c.Threshold),
		doubleThreshold: shader.Quantize(c.Threshold * 2),
		strong:          shader.Quantize(c.SharpeningStrength),
		gentle:          shader.Quantize(c.SharpeningStrength * gentle),
		test:            c.TestMode,
		colorCode:       c.ColorCodeEdges,
		keepAlpha:       c.PreserveAlpha,
	}
}

func (l edgeLiterals) flat(rgb mgl32.Vec3, center mgl32.Vec4) mgl32.Vec4 {
	if l.keepAlpha {
		return rgb.Vec4(center[3])
	}
	return rgb.Vec4(1)
}

func (l edgeLiterals) sharpened(s, center mgl32.Vec4) mgl32.Vec4 {
	if l.keepAlpha {
		return s.Vec3().Vec4(center[3])
	}
	return s
}

var (
	red    = mgl32.Vec3{1, 0, 0}
	orange = mgl32.Vec3{1, 0.5, 0}
	green  = mgl32.Vec3{0, 1, 0}
	blue   = mgl32.Vec3{0, 0, 1}
)

// EdgeFilter returns the CPU form of the edge program for variant. Constants are rounded
// the way the generated source embeds them.
//
// Parameters:
//   - variant: basic, extended or sobel; anything else runs basic
//   - c: the compile-time constants
//
// Returns:
//   - material.Reference: the filter
func EdgeFilter(variant shader.Variant, c shader.Constants) material.Reference {
	l := newEdgeLiterals(variant, c)
	var kernel func(n neighborhood) mgl32.Vec4
	switch variant {
	case shader.VariantExtended:
		kernel = l.extended
	case shader.VariantSobel:
		kernel = l.sobel
	default:
		kernel = l.basic
	}
	return func(src *common.Image) *common.Image {
		out := common.NewImage(src.Width, src.Height)
		for y := range src.Height {
			for x := range src.Width {
				out.Set(x, y, saturate(kernel(sampleNeighborhood(src, x, y))))
			}
		}
		return out
	}
}

func (l edgeLiterals) basic(n neighborhood) mgl32.Vec4 {
	laplacian := n.left.Add(n.right).Add(n.top).Add(n.bottom).Sub(n.center.Mul(4))
	strength := laplacian.Vec3().Len()
	if strength > l.threshold {
		if l.test {
			if l.colorCode && strength <= l.doubleThreshold {
				return l.flat(orange, n.center)
			}
			return l.flat(red, n.center)
		}
		return l.sharpened(n.center.Sub(laplacian.Mul(l.strong)), n.center)
	}
	return l.sharpened(n.center.Sub(laplacian.Mul(l.gentle)), n.center)
}

func (l edgeLiterals) extended(n neighborhood) mgl32.Vec4 {
	laplacian := n.left.Add(n.right).Add(n.top).Add(n.bottom).
		Add(n.topLeft).Add(n.topRight).Add(n.bottomLeft).Add(n.bottomRight).
		Sub(n.center.Mul(8))
	strength := laplacian.Vec3().Len()
	if strength > l.threshold {
		if l.test {
			if !l.colorCode {
				return l.flat(red, n.center)
			}
			horizontal := n.right.Sub(n.left).Mul(2).Add(n.topRight.Add(n.bottomRight).Sub(n.topLeft).Sub(n.bottomLeft))
			vertical := n.top.Sub(n.bottom).Mul(2).Add(n.topLeft.Add(n.topRight).Sub(n.bottomLeft).Sub(n.bottomRight))
			angle := math32.Abs(math32.Atan2(vertical.Len(), horizontal.Len()))
			switch {
			case angle < 0.5:
				return l.flat(red, n.center)
			case angle > 2.6:
				return l.flat(green, n.center)
			}
			return l.flat(blue, n.center)
		}
		return l.sharpened(n.center.Sub(laplacian.Mul(l.strong)), n.center)
	}
	return l.sharpened(n.center.Sub(laplacian.Mul(l.gentle)), n.center)
}

func (l edgeLiterals) sobel(n neighborhood) mgl32.Vec4 {
	sobelX := n.topRight.Add(n.right.Mul(2)).Add(n.bottomRight).Sub(n.topLeft.Add(n.left.Mul(2)).Add(n.bottomLeft))
	sobelY := n.bottomLeft.Add(n.bottom.Mul(2)).Add(n.bottomRight).Sub(n.topLeft.Add(n.top.Mul(2)).Add(n.topRight))
	gx, gy := sobelX.Vec3(), sobelY.Vec3()
	strength := math32.Sqrt(gx.Dot(gx) + gy.Dot(gy))
	gradient := sobelX.Add(sobelY)
	if strength > l.threshold {
		if l.test {
			if !l.colorCode {
				return l.flat(red, n.center)
			}
			switch lx, ly := gx.Len(), gy.Len(); {
			case lx > ly*1.5:
				return l.flat(red, n.center)
			case ly > lx*1.5:
				return l.flat(green, n.center)
			}
			return l.flat(blue, n.center)
		}
		return l.sharpened(n.center.Add(gradient.Mul(l.strong*0.5)), n.center)
	}
	return l.sharpened(n.center.Add(gradient.Mul(l.gentle*0.5)), n.center)
}

// BilateralFilter returns the CPU form of the bilateral program.
//
// Parameters:
//   - c: the compile-time constants; only the bilateral fields are read
//
// Returns:
//   - material.Reference: the filter
func BilateralFilter(c shader.Constants) material.Reference {
	radius := c.KernelRadius()
	spatial := shader.Quantize(c.SpatialSigma)
	rng := shader.Quantize(c.RangeSigma)
	twoSpatial := 2 * spatial * spatial
	twoRange := 2 * rng * rng

	// spatial weights depend only on the offset
	size := 2*radius + 1
	spatialWeights := make([]float32, size*size)
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			d2 := float32(dx*dx + dy*dy)
			spatialWeights[(dy+radius)*size+dx+radius] = gaussian(d2, twoSpatial)
		}
	}

	return func(src *common.Image) *common.Image {
		out := common.NewImage(src.Width, src.Height)
		for y := range src.Height {
			for x := range src.Width {
				center := src.At(x, y)
				var sum mgl32.Vec4
				var total float32
				for dy := -radius; dy <= radius; dy++ {
					for dx := -radius; dx <= radius; dx++ {
						tap := src.At(x+dx, y+dy)
						diff := tap.Vec3().Sub(center.Vec3())
						w := spatialWeights[(dy+radius)*size+dx+radius] * gaussian(diff.Dot(diff), twoRange)
						sum = sum.Add(tap.Mul(w))
						total += w
					}
				}
				if total <= 0 {
					out.Set(x, y, center)
					continue
				}
				out.Set(x, y, sum.Mul(1/total))
			}
		}
		return out
	}
}

// gaussian returns exp(-d2 / twoSigma2). A zero sigma keeps only the exact match.
func gaussian(d2, twoSigma2 float32) float32 {
	if twoSigma2 <= 0 {
		if d2 == 0 {
			return 1
		}
		return 0
	}
	return math32.Exp(-d2 / twoSigma2)
}

// saturate clamps every channel to [0, 1], matching a unorm target write.
func saturate(c mgl32.Vec4) mgl32.Vec4 {
	for i := range c {
		c[i] = common.Clamp(c[i], 0, 1)
	}
	return c
}
