package software

import (
	"image"
	"math"
	"sync"

	"github.com/go-gl/mathgl/mgl32"
	xdraw "golang.org/x/image/draw"

	"github.com/Carmen-Shannon/splatfx/common"
	"github.com/Carmen-Shannon/splatfx/engine/renderer"
)

// surface is a color buffer plus an NDC depth buffer.
type surface struct {
	color *common.Image
	depth []float32
}

func newSurface(width, height int) *surface {
	width, height = max(width, 0), max(height, 0)
	s := &surface{color: common.NewImage(width, height), depth: make([]float32, width*height)}
	s.clear(mgl32.Vec4{}, false, true)
	return s
}

func (s *surface) clear(c mgl32.Vec4, color, depth bool) {
	if color {
		s.color.Fill(c)
	}
	if depth {
		for i := range s.depth {
			s.depth[i] = math.MaxFloat32
		}
	}
}

// blend composites c over the pixel with straight alpha a.
func (s *surface) blend(x, y int, c mgl32.Vec4, a float32) {
	if a <= 0 {
		return
	}
	a = min(a, 1)
	d := s.color.At(x, y)
	rgb := c.Vec3().Mul(a).Add(d.Vec3().Mul(1 - a))
	s.color.Set(x, y, rgb.Vec4(a+d[3]*(1-a)))
}

// blit copies src over the whole surface, rescaling bilinearly when sizes differ.
func (s *surface) blit(src *common.Image) {
	w, h := s.color.Width, s.color.Height
	if src.Width == w && src.Height == h {
		copy(s.color.Pix, src.Pix)
		return
	}
	if w == 0 || h == 0 || src.Width == 0 || src.Height == 0 {
		return
	}
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), src.ToNRGBA(), image.Rect(0, 0, src.Width, src.Height), xdraw.Src, nil)
	copy(s.color.Pix, common.ImageFrom(dst).Pix)
}

// texture is the sampled view of a target's color buffer.
type texture struct {
	img *common.Image
}

var _ ImageTexture = &texture{}

func (t *texture) Size() (int, int) {
	return t.img.Width, t.img.Height
}

func (t *texture) Image() *common.Image {
	return t.img
}

type target struct {
	*surface
	desc     renderer.RenderTargetDescriptor
	once     sync.Once
	disposed bool
}

var _ renderer.RenderTarget = &target{}

func (t *target) Texture() renderer.Texture {
	return &texture{img: t.color}
}

func (t *target) Size() (int, int) {
	return t.color.Width, t.color.Height
}

func (t *target) Dispose() {
	t.once.Do(func() {
		t.disposed = true
	})
}

// envMap holds six captured cube faces in +x, -x, +y, -y, +z, -z order.
type envMap struct {
	size  int
	faces [6]*common.Image
}

var _ renderer.EnvMap = &envMap{}

func (e *envMap) Texture() renderer.Texture {
	return &texture{img: e.faces[0]}
}

func (e *envMap) Dispose() {
	e.faces = [6]*common.Image{}
}

// Average returns the mean color of every face, used as a cheap reflection term.
func (e *envMap) Average() mgl32.Vec4 {
	var sum mgl32.Vec4
	n := 0
	for _, f := range e.faces {
		if f == nil {
			continue
		}
		for _, p := range f.Pix {
			sum = sum.Add(p)
		}
		n += len(f.Pix)
	}
	if n == 0 {
		return mgl32.Vec4{}
	}
	return sum.Mul(1 / float32(n))
}
