package brush

import (
	"log"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Carmen-Shannon/splatfx/common"
	"github.com/Carmen-Shannon/splatfx/engine/camera"
	"github.com/Carmen-Shannon/splatfx/engine/params"
	"github.com/Carmen-Shannon/splatfx/engine/renderer/shader"
	"github.com/Carmen-Shannon/splatfx/engine/splat"
)

// Parameter names of the brush.
const (
	ParamRadius = "brushRadius"
	ParamDepth  = "brushDepth"
	ParamColor  = "brushColor"
)

// Uniform names of the brush block.
const (
	UniformEnabled   = "enabled"
	UniformRadius    = "radius"
	UniformDepth     = "depth"
	UniformOrigin    = "origin"
	UniformDirection = "direction"
	UniformColor     = "color"
)

// Viewport reports the drawable size that pointer positions are measured against.
type Viewport interface {
	Size() (width, height int)
}

// Controller drives painting from pointer and key input.
type Controller interface {
	// Init installs the brush as the mesh's world modifier.
	Init()

	// EnableBrushMode turns painting on and disables the camera controls.
	EnableBrushMode()

	// EnableViewMode turns painting off and re-enables the camera controls.
	EnableViewMode()

	// PaintMode reports whether brush mode is on.
	PaintMode() bool

	// Dragging reports whether a paint stroke is in progress.
	Dragging() bool

	// SetBrushRadius stores radius clamped to [MinRadius, MaxRadius].
	SetBrushRadius(radius float32)

	// SetBrushDepth stores depth clamped to [MinDepth, MaxDepth].
	SetBrushDepth(depth float32)

	// SetBrushColor parses a #rrggbb color. A malformed color is logged and ignored.
	SetBrushColor(hex string)

	// IncreaseBrushRadius grows the radius by RadiusStep.
	//
	// Returns:
	//   - float32: the new radius
	IncreaseBrushRadius() float32

	// DecreaseBrushRadius shrinks the radius by RadiusStep.
	//
	// Returns:
	//   - float32: the new radius
	DecreaseBrushRadius() float32

	// Volume returns the current brush volume.
	Volume() Volume

	// PointerDown starts a stroke at the pixel position when brush mode is on.
	//
	// Parameters:
	//   - x, y: the pointer position in pixels, origin top-left
	PointerDown(x, y float32)

	// PointerMove updates the brush ray while a stroke is in progress.
	//
	// Parameters:
	//   - x, y: the pointer position in pixels, origin top-left
	PointerMove(x, y float32)

	// PointerUp ends the stroke.
	PointerUp()

	// KeyDown handles brush shortcuts.
	//
	// Parameters:
	//   - key: a common key code
	//
	// Returns:
	//   - bool: true if the key was handled
	KeyDown(key int) bool

	// GetState returns isPaintingActive, brushRadius, brushDepth, brushColor and isDragging.
	GetState() map[string]any

	// Reset selects view mode and restores the default radius, depth and color.
	Reset()

	// Dispose ends painting and removes the world modifier.
	Dispose()
}

type controller struct {
	mesh     splat.Mesh
	cam      camera.Camera
	viewport Viewport
	controls camera.CameraController

	store    *params.Store
	uniforms *splat.Uniforms
	modifier *splat.Modifier

	paintMode bool
	dragging  bool
}

var _ Controller = &controller{}

// Definitions returns the brush parameters with their default literals.
func Definitions() []params.Definition {
	c, _ := ParseColor(DefaultColor)
	return []params.Definition{
		params.ClampedFloat(ParamRadius, DefaultRadius, MinRadius, MaxRadius),
		params.ClampedFloat(ParamDepth, DefaultDepth, MinDepth, MaxDepth),
		params.Color(ParamColor, c),
	}
}

// NewController creates the brush controller. Call Init to install the modifier.
//
// Parameters:
//   - mesh: the painted mesh, may be nil
//   - cam: the camera that pointer rays are cast from
//   - viewport: the drawable size pointer positions refer to
//   - options: functional options
//
// Returns:
//   - Controller: the brush controller
func NewController(mesh splat.Mesh, cam camera.Camera, viewport Viewport, options ...ControllerBuilderOption) Controller {
	c := &controller{
		mesh:     mesh,
		cam:      cam,
		viewport: viewport,
		store:    params.NewStore(Definitions()...),
		uniforms: splat.NewUniforms(
			shader.UniformField{Name: UniformEnabled, Type: "u32"},
			shader.UniformField{Name: UniformRadius, Type: "f32"},
			shader.UniformField{Name: UniformDepth, Type: "f32"},
			shader.UniformField{Name: UniformOrigin, Type: "vec3f"},
			shader.UniformField{Name: UniformDirection, Type: "vec3f"},
			shader.UniformField{Name: UniformColor, Type: "vec3f"},
		),
	}
	for _, opt := range options {
		opt(c)
	}
	if c.controls == nil && cam != nil {
		c.controls = cam.Controller()
	}

	c.uniforms.Set(UniformEnabled, false)
	c.uniforms.Set(UniformOrigin, mgl32.Vec3{})
	c.uniforms.Set(UniformDirection, mgl32.Vec3{})
	c.pushParams()
	c.store.OnChange(func(string) { c.pushParams() }, ParamRadius, ParamDepth, ParamColor)
	return c
}

func (c *controller) Init() {
	if c.mesh == nil {
		log.Printf("[Brush] mesh not available, painting disabled")
		return
	}
	c.modifier = &splat.Modifier{
		Name:       "brush",
		Statements: brushStatements,
		Uniforms:   c.uniforms,
		Apply: func(s splat.Splat) splat.Splat {
			rgb := Paint(c.Volume(), c.uniforms.Bool(UniformEnabled), c.uniforms.Vec3(UniformColor), s.RGB(), s.Center)
			s.RGBA = rgb.Vec4(s.RGBA[3])
			return s
		},
	}
	c.mesh.SetWorldModifier(c.modifier)
	c.mesh.UpdateGenerator()
	log.Printf("[Brush] initialized")
}

func (c *controller) pushParams() {
	c.uniforms.Set(UniformRadius, c.store.Float(ParamRadius))
	c.uniforms.Set(UniformDepth, c.store.Float(ParamDepth))
	c.uniforms.Set(UniformColor, c.store.Color(ParamColor))
}

func (c *controller) setControls(enabled bool) {
	if c.controls != nil {
		c.controls.SetEnabled(enabled)
	}
}

func (c *controller) EnableBrushMode() {
	c.paintMode = true
	c.uniforms.Set(UniformEnabled, true)
	c.setControls(false)
	log.Printf("[Brush] paint mode enabled")
}

func (c *controller) EnableViewMode() {
	c.paintMode = false
	c.uniforms.Set(UniformEnabled, false)
	c.setControls(true)
	log.Printf("[Brush] view mode enabled")
}

func (c *controller) PaintMode() bool {
	return c.paintMode
}

func (c *controller) Dragging() bool {
	return c.dragging
}

func (c *controller) SetBrushRadius(radius float32) {
	v := c.store.SetFloat(ParamRadius, radius)
	log.Printf("[Brush] radius set to %.2f", v)
}

func (c *controller) SetBrushDepth(depth float32) {
	v := c.store.SetFloat(ParamDepth, depth)
	log.Printf("[Brush] depth set to %.1f", v)
}

func (c *controller) SetBrushColor(hex string) {
	rgb, err := ParseColor(hex)
	if err != nil {
		log.Printf("[Brush] ignoring color %q: %v", hex, err)
		return
	}
	c.store.SetColor(ParamColor, rgb)
}

func (c *controller) IncreaseBrushRadius() float32 {
	c.SetBrushRadius(min(c.store.Float(ParamRadius)+RadiusStep, MaxRadius))
	return c.store.Float(ParamRadius)
}

func (c *controller) DecreaseBrushRadius() float32 {
	c.SetBrushRadius(max(c.store.Float(ParamRadius)-RadiusStep, MinRadius))
	return c.store.Float(ParamRadius)
}

func (c *controller) Volume() Volume {
	return Volume{
		Origin:    c.uniforms.Vec3(UniformOrigin),
		Direction: c.uniforms.Vec3(UniformDirection),
		Radius:    c.uniforms.Float(UniformRadius),
		Depth:     c.uniforms.Float(UniformDepth),
	}
}

// updateRay casts the pointer into the scene and stores the ray as the brush axis.
func (c *controller) updateRay(x, y float32) {
	if c.cam == nil || c.viewport == nil {
		return
	}
	w, h := c.viewport.Size()
	ray := c.cam.Ray(camera.NDC(x, y, w, h))
	c.uniforms.Set(UniformOrigin, ray.Origin)
	c.uniforms.Set(UniformDirection, ray.Direction.Normalize())
}

func (c *controller) PointerDown(x, y float32) {
	if c.mesh == nil || !c.paintMode {
		return
	}
	c.dragging = true
	c.setControls(false)
	if !c.mesh.DynamicColors() {
		c.mesh.BakeColors()
		c.mesh.UpdateGenerator()
	}
	c.updateRay(x, y)
	log.Printf("[Brush] painting started")
}

func (c *controller) PointerMove(x, y float32) {
	if !c.dragging || c.mesh == nil || !c.paintMode {
		return
	}
	c.updateRay(x, y)
	c.mesh.BakeColors()
	c.mesh.UpdateVersion()
}

func (c *controller) PointerUp() {
	if !c.dragging {
		return
	}
	c.dragging = false
	c.setControls(!c.paintMode)
	log.Printf("[Brush] painting ended")
}

func (c *controller) KeyDown(key int) bool {
	switch key {
	case common.Key1:
		c.EnableBrushMode()
	case common.KeyEsc:
		c.EnableViewMode()
	case common.KeyEqual, common.KeyKPAdd:
		c.IncreaseBrushRadius()
	case common.KeyMinus, common.KeyKPSubtract:
		c.DecreaseBrushRadius()
	default:
		return false
	}
	return true
}

func (c *controller) GetState() map[string]any {
	return map[string]any{
		"isPaintingActive": c.paintMode,
		ParamRadius:        c.store.Float(ParamRadius),
		ParamDepth:         c.store.Float(ParamDepth),
		ParamColor:         FormatColor(c.store.Color(ParamColor)),
		"isDragging":       c.dragging,
	}
}

func (c *controller) Reset() {
	c.EnableViewMode()
	c.store.Reset()
	c.dragging = false
	log.Printf("[Brush] reset")
}

func (c *controller) Dispose() {
	c.dragging = false
	c.paintMode = false
	c.uniforms.Set(UniformEnabled, false)
	if c.mesh != nil && c.modifier != nil && c.mesh.WorldModifier() == c.modifier {
		c.mesh.SetWorldModifier(nil)
		c.mesh.UpdateGenerator()
	}
	c.modifier = nil
	log.Printf("[Brush] disposed")
}
