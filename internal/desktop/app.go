//go:build !js

// Package desktop runs the viewer in an SDL2 window with OpenGL rendering.
package desktop

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Faultbox/ifcview/internal/config"
	"github.com/Faultbox/ifcview/internal/engine/input"
	"github.com/Faultbox/ifcview/internal/engine/loop"
	"github.com/Faultbox/ifcview/internal/engine/picking"
	"github.com/Faultbox/ifcview/internal/engine/renderer"
	"github.com/Faultbox/ifcview/internal/engine/scene"
	"github.com/Faultbox/ifcview/internal/engine/screenshot"
	"github.com/Faultbox/ifcview/internal/engine/window"
	"github.com/Faultbox/ifcview/internal/loader"
	"github.com/Faultbox/ifcview/internal/logger"
	"github.com/Faultbox/ifcview/internal/viewer"
	"github.com/Faultbox/ifcview/internal/viewsync"
)

// clickSlop is how far in pixels the pointer may move between press and
// release and still count as a click.
const clickSlop = 4

// App is the desktop viewer instance.
type App struct {
	config   *config.Config
	running  bool
	window   *window.Window
	renderer *renderer.Renderer
	input    *input.Input
	queue    *loop.FrameQueue
	viewer   *viewer.Viewer
	saver    *screenshot.Saver
	sync     *viewsync.Client

	ctx    context.Context
	cancel context.CancelFunc

	// current is the file or URL shown; models holds its roots so a reload
	// can replace them.
	current  loader.Source
	models   []*scene.Node
	watching map[string]context.CancelFunc

	pressX, pressY int
	dragged        bool

	log *zap.Logger
}

// New creates the window, renderer and viewer.
func New(cfg *config.Config) (*App, error) {
	a := &App{
		config:   cfg,
		queue:    &loop.FrameQueue{},
		saver:    screenshot.NewSaver(cfg.Screenshot.OutputDir, cfg.Screenshot.Prefix),
		watching: make(map[string]context.CancelFunc),
		log:      logger.Named("app"),
	}
	a.ctx, a.cancel = context.WithCancel(context.Background())

	a.log.Info("initializing viewer",
		zap.Int("width", cfg.Window.Width),
		zap.Int("height", cfg.Window.Height),
	)

	var err error
	a.window, err = window.New(window.Config{
		Title:      "ifcview",
		Width:      cfg.Window.Width,
		Height:     cfg.Window.Height,
		Fullscreen: cfg.Window.Fullscreen,
		VSync:      cfg.Window.VSync,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	// The renderer needs the GL context created with the window.
	a.renderer, err = renderer.New(renderer.Config{
		Width:      a.window.ClientWidth(),
		Height:     a.window.ClientHeight(),
		ShowBounds: cfg.Viewer.ShowBounds,
	})
	if err != nil {
		a.window.Close()
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}

	opts, err := viewer.OptionsFromConfig(cfg)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("invalid viewer options: %w", err)
	}

	engine := loader.NewManifestEngine()
	a.viewer, err = viewer.New(a.window, opts, viewer.Deps{
		Renderer:  a.renderer,
		Scheduler: a.queue,
		Engine:    engine,
	})
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to create viewer: %w", err)
	}
	a.viewer.SetWasmPath(cfg.Loader.WasmPath)

	a.input = input.New()

	if cfg.Sync.HubURL != "" {
		if err := a.joinSync(cfg.Sync.HubURL); err != nil {
			a.log.Warn("viewpoint sync unavailable", zap.Error(err))
		}
	}

	a.log.Info("viewer initialized")
	return a, nil
}

func (a *App) joinSync(url string) error {
	ctx, cancel := context.WithTimeout(a.ctx, 5*time.Second)
	defer cancel()

	client, err := viewsync.Dial(ctx, url, "ifcviewer")
	if err != nil {
		return err
	}
	a.sync = client
	go func() {
		if err := client.Run(a.ctx); err != nil {
			a.log.Warn("viewpoint sync stopped", zap.Error(err))
		}
	}()
	a.viewer.AddComponent(viewsync.NewComponent(client.Viewpoints(), a.viewer))
	return nil
}

// Run starts the main loop and returns when the window closes.
func (a *App) Run() error {
	a.running = true

	if a.config.Loader.Model != "" {
		a.open(loader.ParseSource(a.config.Loader.Model))
	}

	a.viewer.Start()
	a.log.Info("starting main loop")

	frameCount := 0
	fpsTimer := time.Now()

	for a.running {
		if a.input.Update() {
			a.running = false
			break
		}
		for _, event := range a.input.Events() {
			a.handle(event)
		}

		// Runs the render tick plus any load results posted since the
		// last frame.
		a.queue.Flush()
		a.window.SwapBuffers()

		frameCount++
		if time.Since(fpsTimer) >= time.Second {
			a.log.Debug("fps", zap.Int("count", frameCount))
			frameCount = 0
			fpsTimer = time.Now()
		}
	}

	a.viewer.Stop()
	return nil
}

func (a *App) handle(event input.Event) {
	switch event.Type {
	case input.EventWindowResize:
		a.viewer.Resize()

	case input.EventKeyDown:
		a.handleKey(event)

	case input.EventMouseDown:
		a.pressX, a.pressY = event.MouseX, event.MouseY
		a.dragged = false

	case input.EventMouseMove:
		a.handleMouseMove(event)

	case input.EventMouseUp:
		if event.Button == input.ButtonLeft && !a.dragged {
			recursive := sdl.GetModState()&sdl.KMOD_SHIFT != 0
			a.viewer.Select(a.pointerEvent(event), true, recursive)
		}

	case input.EventMouseWheel:
		a.viewer.Controls().HandleZoom(event.Wheel)

	case input.EventDropFile:
		a.open(loader.ParseSource(event.Path))
	}
}

func (a *App) handleKey(event input.Event) {
	switch event.Key {
	case sdl.SCANCODE_ESCAPE:
		a.running = false
	case sdl.SCANCODE_F:
		if _, err := a.viewer.FitModelToFrame(); err != nil {
			a.log.Warn("fit failed", zap.Error(err))
		}
	case sdl.SCANCODE_P:
		a.saveScreenshot()
	case sdl.SCANCODE_B:
		a.renderer.SetShowBounds(!a.renderer.ShowBounds())
	case sdl.SCANCODE_O:
		a.openDialog()
	case sdl.SCANCODE_V:
		a.viewpointDialog()
	}
}

func (a *App) handleMouseMove(event input.Event) {
	scale := a.window.PixelScale()
	dx, dy := float32(event.DeltaX)*scale, float32(event.DeltaY)*scale
	height := a.window.ClientHeight()

	switch {
	case event.Dragging(input.ButtonLeft):
		a.viewer.Controls().HandleDrag(dx, dy, height)
	case event.Dragging(input.ButtonRight), event.Dragging(input.ButtonMiddle):
		a.viewer.Controls().HandlePan(dx, dy, height)
	}
	if event.Held != 0 && abs(event.MouseX-a.pressX)+abs(event.MouseY-a.pressY) > clickSlop {
		a.dragged = true
	}

	ev := a.pointerEvent(event)
	a.viewer.PointerMove(ev.ClientX, ev.ClientY, a.pointerRect())
	if event.Held == 0 {
		a.viewer.Preselect(ev)
	}
}

// pointerEvent converts an SDL mouse event to window coordinates.
func (a *App) pointerEvent(event input.Event) picking.Event {
	return picking.Event{ClientX: float32(event.MouseX), ClientY: float32(event.MouseY), Button: int(event.Button)}
}

func (a *App) pointerRect() picking.Rect {
	w, h := a.window.Size()
	return picking.Rect{Width: float32(w), Height: float32(h)}
}

// open loads src off the main thread and adds it on the next frame,
// replacing the current model.
func (a *App) open(src loader.Source) {
	fit := a.config.Controls.FitOnLoad
	a.load(src, fit)

	if a.config.Loader.Watch && !src.IsURL() {
		a.watch(src)
	}
}

func (a *App) load(src loader.Source, fit bool) {
	go func() {
		root, err := a.viewer.Loader().Load(a.ctx, src)
		a.queue.RequestFrame(func() {
			if errors.Is(err, context.Canceled) {
				return
			}
			if err != nil {
				a.log.Error("failed to load model", zap.Stringer("source", src), zap.Error(err))
				return
			}
			a.replace(src, root, fit)
		})
	}()
}

func (a *App) replace(src loader.Source, root *scene.Node, fit bool) {
	for _, old := range a.models {
		a.viewer.RemoveModel(old)
	}
	a.models = append(a.models[:0], root)
	a.current = src
	a.window.SetTitle("ifcview - " + src.Name())

	if err := a.viewer.AddModel(root, fit); err != nil {
		a.log.Warn("model added without framing", zap.Error(err))
		return
	}
	if fit && a.config.Controls.ScreenshotOnFit {
		a.saveScreenshot()
	}
}

func (a *App) watch(src loader.Source) {
	for path, stop := range a.watching {
		if path != src.Path {
			stop()
			delete(a.watching, path)
		}
	}
	if _, ok := a.watching[src.Path]; ok {
		return
	}

	ctx, cancel := context.WithCancel(a.ctx)
	a.watching[src.Path] = cancel
	go func() {
		err := a.viewer.Loader().Watch(ctx, src.Path, loader.DefaultDebounce, func() {
			a.log.Info("model changed, reloading", zap.Stringer("source", src))
			a.load(src, false)
		})
		if err != nil {
			a.log.Warn("watch failed", zap.Error(err))
		}
	}()
}

func (a *App) saveScreenshot() {
	url, err := a.viewer.TakeScreenshot()
	if err != nil {
		a.log.Error("screenshot failed", zap.Error(err))
		return
	}
	path, err := a.saver.SaveDataURL(url)
	if err != nil {
		a.log.Error("saving screenshot failed", zap.Error(err))
		return
	}
	a.log.Info("screenshot saved", zap.String("path", path))
}

// Close cleans up viewer resources.
func (a *App) Close() error {
	a.log.Info("closing viewer")
	a.cancel()

	var err error
	if a.sync != nil {
		err = multierr.Append(err, a.sync.Close())
	}
	if a.viewer != nil {
		// Closes the renderer as well.
		err = multierr.Append(err, a.viewer.Close())
	} else if a.renderer != nil {
		err = multierr.Append(err, a.renderer.Close())
	}
	if a.window != nil {
		err = multierr.Append(err, a.window.Close())
	}
	return err
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
