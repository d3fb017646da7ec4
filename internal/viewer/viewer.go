// Package viewer ties the scene, camera, controls, render loop, loader and
// selection together behind the operations a host exposes.
package viewer

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Faultbox/ifcview/internal/engine/camera"
	"github.com/Faultbox/ifcview/internal/engine/loop"
	"github.com/Faultbox/ifcview/internal/engine/picking"
	"github.com/Faultbox/ifcview/internal/engine/scene"
	"github.com/Faultbox/ifcview/internal/engine/screenshot"
	"github.com/Faultbox/ifcview/internal/engine/viewpoint"
	"github.com/Faultbox/ifcview/internal/loader"
	"github.com/Faultbox/ifcview/internal/logger"
	"github.com/Faultbox/ifcview/pkg/math"
)

var (
	// ErrMissingContainer is returned by New without a container.
	ErrMissingContainer = errors.New("viewer: missing container")
	// ErrMissingDependency is returned by New when a required Deps field is nil.
	ErrMissingDependency = errors.New("viewer: missing dependency")
	// ErrNoModel is returned when an operation needs a loaded model.
	ErrNoModel = errors.New("viewer: no model loaded")
)

// defaultDampingFactor is the orbit controls' own damping factor.
const defaultDampingFactor = 0.05

// Container is the surface the viewer renders into.
type Container interface {
	ClientWidth() int
	ClientHeight() int
}

// Renderer draws frames into the container and reads them back.
type Renderer interface {
	loop.Renderer
	SetSize(width, height int)
	Capture() (image.Image, error)
}

// Deps are the host-provided collaborators.
type Deps struct {
	Renderer  Renderer       // required
	Scheduler loop.Scheduler // required
	Engine    loader.Engine  // required

	// Selector resolves pointer events. Defaults to a BoxSelector over the
	// viewer's scene.
	Selector picking.Selector
	// Clock overrides the render loop clock.
	Clock *loop.Clock
}

// Viewer owns one scene and everything needed to show and interact with it.
// Apart from LoadModel, its methods must be called from the host's
// callback thread.
type Viewer struct {
	container Container
	scene     *scene.Scene
	camera    *camera.PerspectiveCamera
	controls  *camera.OrbitControls
	renderer  Renderer
	loop      *loop.Loop
	loader    *loader.Manager
	selector  picking.Selector
	pointer   *picking.PointerTracker

	log *zap.Logger
}

// New builds a viewer sized to container.
func New(container Container, opts Options, deps Deps) (*Viewer, error) {
	if container == nil {
		return nil, ErrMissingContainer
	}
	switch {
	case deps.Renderer == nil:
		return nil, fmt.Errorf("%w: renderer", ErrMissingDependency)
	case deps.Scheduler == nil:
		return nil, fmt.Errorf("%w: scheduler", ErrMissingDependency)
	case deps.Engine == nil:
		return nil, fmt.Errorf("%w: engine", ErrMissingDependency)
	}

	v := &Viewer{
		container: container,
		scene:     scene.New(),
		renderer:  deps.Renderer,
		loader:    loader.NewManager(deps.Engine),
		pointer:   &picking.PointerTracker{},
		log:       logger.Named("viewer"),
	}
	v.scene.Background = opts.Background
	v.scene.Lights = opts.Lights

	width, height := container.ClientWidth(), container.ClientHeight()
	v.camera = camera.NewPerspective(opts.FOV, 1, opts.Near, opts.Far)
	v.camera.SetAspect(width, height)
	v.camera.Position = opts.CameraPosition
	v.camera.LookAt(math.Vec3{})

	v.controls = camera.NewOrbitControls(v.camera)
	v.controls.EnableDamping = opts.EnableDamping
	v.controls.DampingFactor = defaultDampingFactor * opts.DampingFactor
	v.controls.RotateSpeed = opts.RotateSpeed
	v.controls.ZoomSpeed = opts.ZoomSpeed
	v.controls.PanSpeed = opts.PanSpeed
	v.controls.MinDistance = opts.MinDistance
	v.controls.MaxDistance = opts.MaxDistance

	v.renderer.SetSize(width, height)

	v.loop = loop.New(deps.Scheduler, v.controls, v.renderer, v.scene, v.camera)
	if deps.Clock != nil {
		v.loop.SetClock(deps.Clock)
	}

	v.selector = deps.Selector
	if v.selector == nil {
		v.selector = picking.NewBoxSelector(v.scene, v.camera, v.pointer)
	}

	v.log.Info("viewer created",
		zap.Int("width", width),
		zap.Int("height", height),
		zap.Float32("fov", opts.FOV),
	)
	return v, nil
}

// Scene returns the viewer's scene.
func (v *Viewer) Scene() *scene.Scene { return v.scene }

// Camera returns the viewer's camera.
func (v *Viewer) Camera() *camera.PerspectiveCamera { return v.camera }

// Controls returns the orbit controls.
func (v *Viewer) Controls() *camera.OrbitControls { return v.controls }

// Loader returns the model load manager.
func (v *Viewer) Loader() *loader.Manager { return v.loader }

// Pointer returns the pointer tracker fed by PointerMove.
func (v *Viewer) Pointer() *picking.PointerTracker { return v.pointer }

// Loop returns the render loop.
func (v *Viewer) Loop() *loop.Loop { return v.loop }

// Start begins rendering.
func (v *Viewer) Start() {
	v.loop.Start()
}

// Stop halts rendering after the current frame.
func (v *Viewer) Stop() {
	v.loop.Stop()
}

// AddComponent registers c for a per-frame update after each render.
func (v *Viewer) AddComponent(c loop.Component) {
	v.loop.AddComponent(c)
}

// SetWasmPath tells the IFC engine where its module lives.
func (v *Viewer) SetWasmPath(path string) {
	v.loader.SetWasmPath(path)
}

// LoadModel loads src, adds the root to the scene and, if fitToFrame is
// set, frames it. The fit only runs once the load has completed. Loader
// errors are returned unchanged; a load replaced by a newer one returns
// context.Canceled. If the model loads but cannot be framed, the root is
// returned together with the fit error.
//
// LoadModel blocks on the engine, so hosts with a single callback thread
// should load with Loader().Load off that thread and call AddModel on it.
func (v *Viewer) LoadModel(ctx context.Context, src loader.Source, fitToFrame bool) (*scene.Node, error) {
	root, err := v.loader.Load(ctx, src)
	if err != nil {
		return nil, err
	}
	return root, v.AddModel(root, fitToFrame)
}

// LoadModelURL is LoadModel for a URL.
func (v *Viewer) LoadModelURL(ctx context.Context, url string, fitToFrame bool) (*scene.Node, error) {
	return v.LoadModel(ctx, loader.URLSource(url), fitToFrame)
}

// AddModel adds a loaded root to the scene and optionally frames it.
func (v *Viewer) AddModel(root *scene.Node, fitToFrame bool) error {
	v.scene.Add(root)
	if !fitToFrame {
		return nil
	}
	if _, err := v.FitModelToFrame(); err != nil {
		return fmt.Errorf("fitting %q: %w", root.Name, err)
	}
	return nil
}

// RemoveModel takes root out of the scene and the loaded list.
func (v *Viewer) RemoveModel(root *scene.Node) bool {
	v.loader.Forget(root)
	return v.scene.Remove(root)
}

// FitModelToFrame frames the most recently added model.
func (v *Viewer) FitModelToFrame() (camera.FitResult, error) {
	last := v.scene.Last()
	if last == nil {
		return camera.FitResult{}, ErrNoModel
	}

	res, err := camera.FitToFrame(v.camera, v.controls, last.SubtreeBounds())
	if err != nil {
		return res, err
	}
	if res.UsedFallback {
		v.log.Debug("fit used fallback direction", zap.String("model", last.Name))
	}
	v.log.Debug("model framed",
		zap.String("model", last.Name),
		zap.Float32("distance", res.Distance),
	)
	return res, nil
}

// ApplyViewpoint moves the camera to vp. It reports whether vp carried a
// perspective camera; without one nothing changes.
func (v *Viewer) ApplyViewpoint(vp viewpoint.Viewpoint) bool {
	applied := viewpoint.Apply(vp, v.camera, v.controls)
	if applied {
		v.log.Debug("viewpoint applied", zap.String("guid", vp.GUID))
	}
	return applied
}

// Preselect forwards a hover event to the selector.
func (v *Viewer) Preselect(ev picking.Event) {
	v.selector.Preselect(ev)
}

// Select forwards a click to the selector.
func (v *Viewer) Select(ev picking.Event, indirect, recursive bool) {
	v.selector.Select(ev, indirect, recursive)
}

// PointerMove records a pointer position over the render surface.
func (v *Viewer) PointerMove(clientX, clientY float32, rect picking.Rect) {
	v.pointer.Move(clientX, clientY, rect)
}

// Resize matches the camera and renderer to the container's current size.
func (v *Viewer) Resize() {
	width, height := v.container.ClientWidth(), v.container.ClientHeight()
	v.camera.SetAspect(width, height)
	v.renderer.SetSize(width, height)
	v.log.Debug("resized", zap.Int("width", width), zap.Int("height", height))
}

// TakeScreenshot renders one frame synchronously and returns it as a PNG
// data URL.
func (v *Viewer) TakeScreenshot() (string, error) {
	v.loop.RenderNow()

	img, err := v.renderer.Capture()
	if err != nil {
		return "", fmt.Errorf("capturing frame: %w", err)
	}
	return screenshot.DataURL(img)
}

// Close stops the loop, cancels any load and closes the renderer and
// components that hold resources.
func (v *Viewer) Close() error {
	v.Stop()
	v.loader.Cancel()

	var err error
	for _, c := range v.loop.Components() {
		if closer, ok := c.(io.Closer); ok {
			err = multierr.Append(err, closer.Close())
		}
	}
	if closer, ok := v.renderer.(io.Closer); ok {
		err = multierr.Append(err, closer.Close())
	}
	return err
}
