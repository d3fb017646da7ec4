package viewer

import (
	"context"
	"errors"
	"image"
	"image/color"
	"strings"
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/ifcview/internal/config"
	"github.com/Faultbox/ifcview/internal/engine/camera"
	"github.com/Faultbox/ifcview/internal/engine/loop"
	"github.com/Faultbox/ifcview/internal/engine/picking"
	"github.com/Faultbox/ifcview/internal/engine/scene"
	"github.com/Faultbox/ifcview/internal/engine/screenshot"
	"github.com/Faultbox/ifcview/internal/engine/viewpoint"
	"github.com/Faultbox/ifcview/internal/loader"
	"github.com/Faultbox/ifcview/pkg/math"
)

type fakeContainer struct{ w, h int }

func (c *fakeContainer) ClientWidth() int  { return c.w }
func (c *fakeContainer) ClientHeight() int { return c.h }

type fakeRenderer struct {
	renders    int
	width      int
	height     int
	closed     bool
	closeErr   error
	captureErr error
}

func (r *fakeRenderer) Render(*scene.Scene, *camera.PerspectiveCamera) { r.renders++ }
func (r *fakeRenderer) SetSize(w, h int)                              { r.width, r.height = w, h }

func (r *fakeRenderer) Capture() (image.Image, error) {
	if r.captureErr != nil {
		return nil, r.captureErr
	}
	img := image.NewRGBA(image.Rect(0, 0, r.width, r.height))
	img.Set(0, 0, color.RGBA{R: 0xa9, G: 0xa9, B: 0xa9, A: 0xff})
	return img, nil
}

func (r *fakeRenderer) Close() error {
	r.closed = true
	return r.closeErr
}

// cubeEngine returns a model with one [-1,1]^3 element.
type cubeEngine struct {
	err      error
	wasmPath string
}

func (e *cubeEngine) Load(_ context.Context, src loader.Source) (*scene.Node, error) {
	if e.err != nil {
		return nil, e.err
	}
	root := scene.NewNode(src.Name())
	cube := scene.NewNode("cube")
	cube.IsIFC = true
	cube.ExpressID = 1
	cube.Bounds = math.NewBox3(math.Vec3{X: -1, Y: -1, Z: -1}, math.Vec3{X: 1, Y: 1, Z: 1})
	root.Add(cube)
	return root, nil
}

func (e *cubeEngine) SetWasmPath(p string) { e.wasmPath = p }

type testRig struct {
	viewer    *Viewer
	container *fakeContainer
	renderer  *fakeRenderer
	engine    *cubeEngine
	queue     *loop.FrameQueue
}

func newTestRig(t *testing.T) *testRig {
	t.Helper()
	r := &testRig{
		container: &fakeContainer{w: 800, h: 600},
		renderer:  &fakeRenderer{},
		engine:    &cubeEngine{},
		queue:     &loop.FrameQueue{},
	}
	v, err := New(r.container, DefaultOptions(), Deps{
		Renderer:  r.renderer,
		Scheduler: r.queue,
		Engine:    r.engine,
	})
	require.NoError(t, err)
	r.viewer = v
	return r
}

func TestNewRequiresContainer(t *testing.T) {
	_, err := New(nil, DefaultOptions(), Deps{})
	assert.ErrorIs(t, err, ErrMissingContainer)

	_, err = New(&fakeContainer{w: 1, h: 1}, DefaultOptions(), Deps{Renderer: &fakeRenderer{}})
	assert.ErrorIs(t, err, ErrMissingDependency)
}

func TestNewDefaults(t *testing.T) {
	rig := newTestRig(t)
	v := rig.viewer

	cam := v.Camera()
	assert.Equal(t, float32(45), cam.FOV)
	assert.Equal(t, float32(0.1), cam.Near)
	assert.Equal(t, float32(1000), cam.Far)
	assert.InDelta(t, 800.0/600.0, cam.Aspect, 1e-6)
	assert.Equal(t, math.Vec3{X: 8, Y: 8, Z: 8}, cam.Position)
	assert.True(t, cam.Target().ApproxEqual(math.Vec3{}, 1e-6))

	assert.True(t, v.Controls().EnableDamping)
	assert.InDelta(t, 0.1, v.Controls().DampingFactor, 1e-6)
	assert.Equal(t, scene.DefaultBackground, v.Scene().Background)

	assert.Equal(t, 800, rig.renderer.width)
	assert.Equal(t, 600, rig.renderer.height)
}

func TestEndToEndLoadAndFit(t *testing.T) {
	rig := newTestRig(t)
	v := rig.viewer

	root, err := v.LoadModel(context.Background(), loader.FileSource("cube.ifc"), true)
	require.NoError(t, err)
	assert.Same(t, root, v.Scene().Last())

	want := math32.Sqrt(12) / 2 / math32.Tan(camera.DegToRad(45)/2)
	dist := v.Camera().Position.Distance(v.Controls().Target)
	assert.InDelta(t, want, dist, 1e-3)
	assert.True(t, v.Controls().Target.ApproxEqual(math.Vec3{}, 1e-6))

	// The horizontal direction from (8, 8, 8) is kept.
	pos := v.Camera().Position
	assert.InDelta(t, 0, pos.Y, 1e-3)
	assert.InDelta(t, pos.X, pos.Z, 1e-3)
}

func TestLoadModelErrorsPropagateUnchanged(t *testing.T) {
	rig := newTestRig(t)
	want := errors.New("bad file")
	rig.engine.err = want

	root, err := rig.viewer.LoadModel(context.Background(), loader.FileSource("broken.ifc"), true)
	assert.Nil(t, root)
	assert.Same(t, want, err)
	assert.Nil(t, rig.viewer.Scene().Last())
}

func TestLoadModelURLWithoutFit(t *testing.T) {
	rig := newTestRig(t)
	before := rig.viewer.Camera().Position

	root, err := rig.viewer.LoadModelURL(context.Background(), "https://example.com/models/house.ifc", false)
	require.NoError(t, err)
	assert.Equal(t, "house.ifc", root.Name)
	assert.Equal(t, before, rig.viewer.Camera().Position)
}

func TestFitModelToFrameWithoutModel(t *testing.T) {
	rig := newTestRig(t)
	_, err := rig.viewer.FitModelToFrame()
	assert.ErrorIs(t, err, ErrNoModel)
}

func TestAddModelWithoutGeometry(t *testing.T) {
	rig := newTestRig(t)
	err := rig.viewer.AddModel(scene.NewNode("empty"), true)
	assert.ErrorIs(t, err, camera.ErrEmptyBounds)
	assert.Len(t, rig.viewer.Scene().Children(), 1)
}

func TestSetWasmPath(t *testing.T) {
	rig := newTestRig(t)
	rig.viewer.SetWasmPath("/wasm/")
	assert.Equal(t, "/wasm/", rig.engine.wasmPath)
}

func TestApplyViewpoint(t *testing.T) {
	rig := newTestRig(t)
	v := rig.viewer

	before := v.Camera().Position
	assert.False(t, v.ApplyViewpoint(viewpoint.Viewpoint{}))
	assert.Equal(t, before, v.Camera().Position)

	vp := viewpoint.Viewpoint{PerspectiveCamera: &viewpoint.PerspectiveCamera{
		ViewPoint:   viewpoint.Point{X: 1, Y: 2, Z: 3},
		Direction:   viewpoint.Point{X: 0, Y: 1, Z: 0},
		FieldOfView: 60,
	}}
	assert.True(t, v.ApplyViewpoint(vp))
	assert.Equal(t, float32(60), v.Camera().FOV)
	assert.NotEqual(t, before, v.Camera().Position)
}

func TestResize(t *testing.T) {
	rig := newTestRig(t)
	rig.container.w, rig.container.h = 1000, 500
	rig.viewer.Resize()

	assert.InDelta(t, 2, rig.viewer.Camera().Aspect, 1e-6)
	assert.Equal(t, 1000, rig.renderer.width)
	assert.Equal(t, 500, rig.renderer.height)
}

func TestTakeScreenshotRendersFirst(t *testing.T) {
	rig := newTestRig(t)

	url, err := rig.viewer.TakeScreenshot()
	require.NoError(t, err)
	assert.Equal(t, 1, rig.renderer.renders)
	assert.True(t, strings.HasPrefix(url, screenshot.DataURLPrefix))

	img, err := screenshot.DecodeDataURL(url)
	require.NoError(t, err)
	assert.Equal(t, 800, img.Bounds().Dx())

	rig.renderer.captureErr = errors.New("context lost")
	_, err = rig.viewer.TakeScreenshot()
	assert.ErrorIs(t, err, rig.renderer.captureErr)
}

func TestRenderLoopComponents(t *testing.T) {
	rig := newTestRig(t)

	var calls []int
	rig.viewer.AddComponent(loop.ComponentFunc(func(float64) {
		calls = append(calls, rig.renderer.renders)
	}))

	rig.viewer.Start()
	for i := 0; i < 3; i++ {
		rig.queue.Flush()
	}
	rig.viewer.Stop()
	rig.queue.Flush()

	assert.Equal(t, []int{1, 2, 3}, calls)
	assert.Equal(t, 3, rig.renderer.renders)
}

func TestSelectionThroughPointer(t *testing.T) {
	rig := newTestRig(t)
	v := rig.viewer

	_, err := v.LoadModel(context.Background(), loader.FileSource("cube.ifc"), true)
	require.NoError(t, err)

	rect := picking.Rect{Width: 800, Height: 600}
	v.PointerMove(400, 300, rect)
	v.Select(picking.Event{ClientX: 400, ClientY: 300}, true, false)

	cube := v.Scene().Last().Children()[0]
	assert.True(t, cube.Selected)

	v.PointerMove(1, 1, rect)
	v.Preselect(picking.Event{ClientX: 1, ClientY: 1})
	assert.False(t, cube.Highlighted)
}

type closingComponent struct{ err error }

func (closingComponent) Update(float64) {}
func (c closingComponent) Close() error  { return c.err }

func TestCloseAggregatesErrors(t *testing.T) {
	rig := newTestRig(t)
	rig.renderer.closeErr = errors.New("renderer")
	compErr := errors.New("component")
	rig.viewer.AddComponent(closingComponent{err: compErr})
	rig.viewer.Start()

	err := rig.viewer.Close()
	assert.ErrorIs(t, err, compErr)
	assert.ErrorIs(t, err, rig.renderer.closeErr)
	assert.True(t, rig.renderer.closed)
	assert.False(t, rig.viewer.Loop().Running())
}

func TestOptionsFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Viewer.Background = "#102030"
	cfg.Camera.FOV = 60
	cfg.Controls.DampingFactor = 0.2

	opts, err := OptionsFromConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{R: 0x10, G: 0x20, B: 0x30, A: 0xff}, opts.Background)
	assert.Equal(t, float32(60), opts.FOV)
	assert.InDelta(t, 4, opts.DampingFactor, 1e-6)

	cfg.Viewer.Background = "grey"
	_, err = OptionsFromConfig(cfg)
	assert.Error(t, err)
}
