// Package brush paints splats that fall inside a ray-aligned brush volume.
package brush

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/Carmen-Shannon/splatfx/common"
)

// Brush limits and defaults.
const (
	MinRadius = 0.01
	MaxRadius = 0.25
	MinDepth  = 0.1
	MaxDepth  = 100.0

	// RadiusStep is the increment of IncreaseBrushRadius and DecreaseBrushRadius.
	RadiusStep = 0.01

	// LuminanceThreshold is the luminance at or below which a splat is never painted.
	LuminanceThreshold = 0.1

	DefaultRadius = 0.02
	DefaultDepth  = 10.0
	DefaultColor  = "#87CEEB"
)

// Volume is a cylinder of Radius around the ray Origin + t*Direction for t in (0, Depth).
type Volume struct {
	Origin    mgl32.Vec3
	Direction mgl32.Vec3
	Radius    float32
	Depth     float32
}

// Contains reports whether center lies strictly inside the volume. A center exactly on the
// radius or on either depth bound is outside.
//
// Parameters:
//   - center: the splat center in world space
//
// Returns:
//   - bool: true when inside
func (v Volume) Contains(center mgl32.Vec3) bool {
	amplitude := v.Direction.Dot(center.Sub(v.Origin))
	if amplitude <= 0 || amplitude >= v.Depth {
		return false
	}
	projected := v.Origin.Add(v.Direction.Mul(amplitude))
	return projected.Sub(center).Len() < v.Radius
}

// Paint recolors one splat. A splat inside an enabled brush whose luminance exceeds
// LuminanceThreshold takes the brush color scaled to keep its own luminance. Any other
// splat keeps rgb.
//
// Parameters:
//   - vol: the brush volume
//   - enabled: whether paint mode is on
//   - brushColor: the linear brush color
//   - rgb: the splat color
//   - center: the splat center in world space
//
// Returns:
//   - mgl32.Vec3: the painted color
func Paint(vol Volume, enabled bool, brushColor, rgb, center mgl32.Vec3) mgl32.Vec3 {
	if !enabled || !vol.Contains(center) {
		return rgb
	}
	lumOld := common.Luminance(rgb)
	if lumOld <= LuminanceThreshold {
		return rgb
	}
	lumNew := common.Luminance(brushColor)
	if lumNew <= 0 {
		return brushColor
	}
	return brushColor.Mul(lumOld / lumNew)
}

// ParseColor parses a #rrggbb hex string.
//
// Parameters:
//   - hex: the color string
//
// Returns:
//   - mgl32.Vec3: the color with channels in [0, 1]
//   - error: an error if hex is malformed
func ParseColor(hex string) (mgl32.Vec3, error) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return mgl32.Vec3{}, err
	}
	return mgl32.Vec3{float32(c.R), float32(c.G), float32(c.B)}, nil
}

// FormatColor renders rgb as a lowercase #rrggbb string.
func FormatColor(rgb mgl32.Vec3) string {
	return colorful.Color{R: float64(rgb[0]), G: float64(rgb[1]), B: float64(rgb[2])}.Clamped().Hex()
}

// brushStatements is the GPU form of Paint over the `brush` uniform block.
const brushStatements = `let projectionAmplitude = dot(brush.direction, gsplat.center - brush.origin);
let projectedCenter = brush.origin + brush.direction * projectionAmplitude;
let brushDistance = length(projectedCenter - gsplat.center);
let insideBrush = brushDistance < brush.radius && projectionAmplitude > 0.0 && projectionAmplitude < brush.depth;
let luminanceOld = dot(gsplat.rgba.rgb, vec3f(1.0)) / 3.0;
let luminanceNew = max(dot(brush.color, vec3f(1.0)) / 3.0, 1e-6);
if (brush.enabled != 0u && insideBrush && luminanceOld > 0.1) {
    gsplat.rgba = vec4f(brush.color * (luminanceOld / luminanceNew), gsplat.rgba.a);
}`
