// Package composer decides each frame which post-processing passes run and chains their
// render targets: scene to the bilateral target, to the edge target, to the screen, with
// any inactive stage skipped.
package composer

import (
	"fmt"
	"log"
	"maps"
	"time"

	"github.com/Carmen-Shannon/splatfx/engine/camera"
	"github.com/Carmen-Shannon/splatfx/engine/postprocess"
	"github.com/Carmen-Shannon/splatfx/engine/renderer"
	"github.com/Carmen-Shannon/splatfx/engine/renderer/shader"
	"github.com/Carmen-Shannon/splatfx/engine/scene"
	"github.com/Carmen-Shannon/splatfx/engine/scheduler"
)

// Path is one of the four frame render orders.
type Path int

const (
	// PathDirect renders the scene straight to the screen.
	PathDirect Path = iota

	// PathLaplacian renders scene → edge target → screen.
	PathLaplacian

	// PathBilateral renders scene → bilateral target → screen.
	PathBilateral

	// PathBoth renders scene → bilateral target → edge target → screen.
	PathBoth
)

// String returns the path name.
func (p Path) String() string {
	switch p {
	case PathLaplacian:
		return "laplacian"
	case PathBilateral:
		return "bilateral"
	case PathBoth:
		return "both"
	}
	return "direct"
}

// TargetSwitches returns how many offscreen targets the path binds before the screen draw.
func (p Path) TargetSwitches() int {
	switch p {
	case PathLaplacian, PathBilateral:
		return 1
	case PathBoth:
		return 2
	}
	return 0
}

// PathFor maps the activation pair to its path.
//
// Parameters:
//   - bilateral: whether the bilateral pass is active
//   - laplacian: whether the edge pass is active
//
// Returns:
//   - Path: the render order
func PathFor(bilateral, laplacian bool) Path {
	switch {
	case bilateral && laplacian:
		return PathBoth
	case bilateral:
		return PathBilateral
	case laplacian:
		return PathLaplacian
	}
	return PathDirect
}

// ComparisonInterval is the dwell time per kernel in QuickComparison.
const ComparisonInterval = 2 * time.Second

// Composer owns both post-processing passes and renders one frame through them. It is
// driven from the frame thread only.
type Composer interface {
	// Render draws one frame along the active path. Failures fall back to the direct path
	// for that frame and are logged.
	Render()

	// ActivePath returns the path the next Render takes.
	ActivePath() Path

	// ToggleLaplacianBoundaries enables or disables the edge pass.
	//
	// Parameters:
	//   - on: the new state
	ToggleLaplacianBoundaries(on bool)

	// ToggleBilateralFiltering enables or disables the bilateral pass.
	//
	// Parameters:
	//   - on: the new state
	ToggleBilateralFiltering(on bool)

	// ToggleTestBoundaries flips boundary test coloring. It does nothing unless the edge
	// pass is active.
	ToggleTestBoundaries()

	// QuickComparison steps the edge kernel through basic, extended and sobel. It does
	// nothing unless the edge pass is active.
	QuickComparison()

	SetLaplacianThreshold(v float32)
	SetKernelType(name string)
	SetSharpeningStrength(v float32)
	SetColorCodeEdges(on bool)
	SetPreserveSplatAlpha(on bool)
	SetBilateralSpatialSigma(v float32)
	SetBilateralRangeSigma(v float32)
	SetBilateralKernelSize(size int)

	// EdgePass returns the edge pass.
	EdgePass() *postprocess.EdgePass

	// BilateralPass returns the bilateral pass.
	BilateralPass() *postprocess.BilateralPass

	// GetState returns every pass parameter plus the activation flags.
	GetState() map[string]any

	// Reset disables both passes and restores the default parameters.
	Reset()

	// Dispose releases both passes. Subsequent renders go direct.
	Dispose()
}

type composer struct {
	renderer renderer.Renderer
	scene    scene.Scene
	camera   camera.Camera

	builder   *shader.Builder
	sched     *scheduler.Scheduler
	edge      *postprocess.EdgePass
	bilateral *postprocess.BilateralPass

	laplacianActive bool
	bilateralActive bool

	comparison      *scheduler.Slot
	comparisonIndex int

	disposed bool
}

var _ Composer = &composer{}

// NewComposer creates a composer drawing s from cam with r.
//
// Parameters:
//   - r: the renderer
//   - s: the scene
//   - cam: the camera
//   - options: functional options
//
// Returns:
//   - Composer: the composer
//   - error: an error if a required dependency is nil
func NewComposer(r renderer.Renderer, s scene.Scene, cam camera.Camera, options ...ComposerBuilderOption) (Composer, error) {
	if r == nil || s == nil || cam == nil {
		return nil, fmt.Errorf("composer: renderer, scene and camera are required")
	}
	c := &composer{
		renderer: r,
		scene:    s,
		camera:   cam,
	}
	for _, opt := range options {
		opt(c)
	}
	if c.builder == nil {
		c.builder = shader.NewBuilder()
	}
	if c.sched == nil {
		c.sched = scheduler.NewScheduler()
	}
	c.edge = postprocess.NewEdgePass(c.builder)
	c.bilateral = postprocess.NewBilateralPass(c.builder)
	c.comparison = c.sched.NewSlot("kernel comparison")
	return c, nil
}

func (c *composer) ActivePath() Path {
	if c.disposed {
		return PathDirect
	}
	return PathFor(c.bilateralActive, c.laplacianActive)
}

func (c *composer) Render() {
	path := c.ActivePath()
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[Composer] %s path panicked, rendering direct: %v", path, r)
			c.renderDirect()
		}
	}()
	if err := c.render(path); err != nil {
		log.Printf("[Composer] %s path failed, rendering direct: %v", path, err)
		c.renderDirect()
	}
}

func (c *composer) render(path Path) error {
	switch path {
	case PathLaplacian:
		return c.renderSingle(c.edge)
	case PathBilateral:
		return c.renderSingle(c.bilateral)
	case PathBoth:
		return c.renderBoth()
	}
	c.renderDirect()
	return nil
}

// bind switches the destination and clears it.
func (c *composer) bind(target renderer.RenderTarget) {
	c.renderer.SetRenderTarget(target)
	c.renderer.Clear(true, true, true)
}

func (c *composer) renderDirect() {
	c.bind(nil)
	c.renderer.Render(c.scene, c.camera)
}

func (c *composer) renderSingle(p postprocess.Pass) error {
	if err := p.EnsureResources(c.renderer); err != nil {
		return err
	}
	target := p.Target()

	c.bind(target)
	c.renderer.Render(c.scene, c.camera)

	c.bind(nil)
	p.Execute(c.renderer, c.camera, target.Texture())
	return nil
}

func (c *composer) renderBoth() error {
	if err := c.bilateral.EnsureResources(c.renderer); err != nil {
		return err
	}
	if err := c.edge.EnsureResources(c.renderer); err != nil {
		return err
	}
	bilateralTarget, edgeTarget := c.bilateral.Target(), c.edge.Target()

	c.bind(bilateralTarget)
	c.renderer.Render(c.scene, c.camera)

	c.bind(edgeTarget)
	c.bilateral.Execute(c.renderer, c.camera, bilateralTarget.Texture())

	c.bind(nil)
	c.edge.Execute(c.renderer, c.camera, edgeTarget.Texture())
	return nil
}

func (c *composer) ToggleLaplacianBoundaries(on bool) {
	if on == c.laplacianActive {
		return
	}
	c.laplacianActive = on
	log.Printf("[Composer] laplacian boundaries enabled=%v", on)
	if on {
		c.prepare(c.edge)
		return
	}
	c.comparison.Cancel()
	c.renderer.SetRenderTarget(nil)
}

func (c *composer) ToggleBilateralFiltering(on bool) {
	if on == c.bilateralActive {
		return
	}
	c.bilateralActive = on
	log.Printf("[Composer] bilateral filtering enabled=%v", on)
	if on {
		c.prepare(c.bilateral)
		return
	}
	c.renderer.SetRenderTarget(nil)
}

// prepare creates pass resources ahead of the first frame. A failure is retried by Render.
func (c *composer) prepare(p postprocess.Pass) {
	if err := p.EnsureResources(c.renderer); err != nil {
		log.Printf("[Composer] deferring %s setup: %v", p.Name(), err)
	}
}

func (c *composer) ToggleTestBoundaries() {
	if !c.laplacianActive {
		log.Printf("[Composer] enable laplacian boundaries before testing them")
		return
	}
	c.edge.SetTestMode(!c.edge.TestMode())
	log.Printf("[Composer] boundary testing enabled=%v", c.edge.TestMode())
}

func (c *composer) QuickComparison() {
	if !c.laplacianActive {
		log.Printf("[Composer] enable laplacian boundaries before comparing kernels")
		return
	}
	c.comparisonIndex = 0
	c.nextComparison()
}

func (c *composer) nextComparison() {
	if !c.laplacianActive || c.comparisonIndex >= len(shader.EdgeVariants) {
		log.Printf("[Composer] kernel comparison complete")
		return
	}
	kernel := shader.EdgeVariants[c.comparisonIndex]
	log.Printf("[Composer] comparing kernel %s", kernel)
	c.edge.SetKernelType(string(kernel))
	c.comparisonIndex++
	c.comparison.Schedule(ComparisonInterval, c.nextComparison)
}

func (c *composer) SetLaplacianThreshold(v float32) {
	c.edge.SetThreshold(v)
}

func (c *composer) SetKernelType(name string) {
	c.edge.SetKernelType(name)
}

func (c *composer) SetSharpeningStrength(v float32) {
	c.edge.SetSharpeningStrength(v)
}

func (c *composer) SetColorCodeEdges(on bool) {
	c.edge.SetColorCodeEdges(on)
}

func (c *composer) SetPreserveSplatAlpha(on bool) {
	c.edge.SetPreserveAlpha(on)
}

func (c *composer) SetBilateralSpatialSigma(v float32) {
	c.bilateral.SetSpatialSigma(v)
}

func (c *composer) SetBilateralRangeSigma(v float32) {
	c.bilateral.SetRangeSigma(v)
}

func (c *composer) SetBilateralKernelSize(size int) {
	c.bilateral.SetKernelSize(size)
}

func (c *composer) EdgePass() *postprocess.EdgePass {
	return c.edge
}

func (c *composer) BilateralPass() *postprocess.BilateralPass {
	return c.bilateral
}

func (c *composer) GetState() map[string]any {
	state := map[string]any{}
	maps.Copy(state, c.edge.Params().Snapshot())
	maps.Copy(state, c.bilateral.Params().Snapshot())
	state["laplacianSystemActive"] = c.laplacianActive
	state["bilateralSystemActive"] = c.bilateralActive
	state["activePath"] = c.ActivePath().String()
	return state
}

func (c *composer) Reset() {
	c.ToggleLaplacianBoundaries(false)
	c.ToggleBilateralFiltering(false)
	c.comparison.Cancel()
	c.edge.Params().Reset()
	c.bilateral.Params().Reset()
	log.Printf("[Composer] reset")
}

func (c *composer) Dispose() {
	if c.disposed {
		return
	}
	c.disposed = true
	c.comparison.Cancel()
	c.edge.Dispose()
	c.bilateral.Dispose()
	log.Printf("[Composer] disposed")
}
