//go:build js

package web

import (
	"context"
	"errors"
	"strings"
	"syscall/js"

	"go.uber.org/zap"

	"github.com/Faultbox/ifcview/internal/engine/picking"
	"github.com/Faultbox/ifcview/internal/engine/viewpoint"
	"github.com/Faultbox/ifcview/internal/loader"
	"github.com/Faultbox/ifcview/internal/logger"
	"github.com/Faultbox/ifcview/internal/viewer"
)

const clickSlop = 4

// Host runs a viewer on a canvas element and exposes it to JavaScript.
type Host struct {
	element   Element
	renderer  *CanvasRenderer
	scheduler *rafScheduler
	viewer    *viewer.Viewer

	funcs     []js.Func
	listeners []listener

	pressX, pressY float64
	dragged        bool

	log *zap.Logger
}

type listener struct {
	target js.Value
	event  string
	fn     js.Func
}

// NewHost creates a viewer rendering into canvas. A null or undefined
// canvas fails with viewer.ErrMissingContainer.
func NewHost(canvas js.Value, opts viewer.Options) (*Host, error) {
	if canvas.IsNull() || canvas.IsUndefined() {
		return nil, viewer.ErrMissingContainer
	}

	engine, err := NewJSEngine()
	if err != nil {
		return nil, err
	}
	renderer, err := NewCanvasRenderer(canvas)
	if err != nil {
		return nil, err
	}

	h := &Host{
		element:   Element{canvas},
		renderer:  renderer,
		scheduler: newRAFScheduler(),
		log:       logger.Named("web"),
	}
	h.viewer, err = viewer.New(h.element, opts, viewer.Deps{
		Renderer:  renderer,
		Scheduler: h.scheduler,
		Engine:    engine,
	})
	if err != nil {
		return nil, err
	}

	h.listen(canvas, "pointermove", h.onPointerMove)
	h.listen(canvas, "pointerdown", h.onPointerDown)
	h.listen(canvas, "pointerup", h.onPointerUp)
	h.listen(canvas, "wheel", h.onWheel)
	h.listen(canvas, "contextmenu", func(this js.Value, args []js.Value) any {
		args[0].Call("preventDefault")
		return nil
	})
	h.listen(js.Global(), "resize", func(this js.Value, args []js.Value) any {
		h.viewer.Resize()
		return nil
	})

	return h, nil
}

// Viewer returns the hosted viewer.
func (h *Host) Viewer() *viewer.Viewer {
	return h.viewer
}

func (h *Host) listen(target js.Value, event string, fn func(js.Value, []js.Value) any) {
	f := js.FuncOf(fn)
	target.Call("addEventListener", event, f)
	h.listeners = append(h.listeners, listener{target: target, event: event, fn: f})
}

func pointerEvent(ev js.Value) picking.Event {
	return picking.Event{
		ClientX: float32(ev.Get("clientX").Float()),
		ClientY: float32(ev.Get("clientY").Float()),
		Button:  ev.Get("button").Int(),
	}
}

func (h *Host) onPointerMove(this js.Value, args []js.Value) any {
	ev := args[0]
	pe := pointerEvent(ev)
	h.viewer.PointerMove(pe.ClientX, pe.ClientY, h.element.Rect())

	buttons := ev.Get("buttons").Int()
	if buttons == 0 {
		h.viewer.Preselect(pe)
		return nil
	}

	dx := float32(ev.Get("movementX").Float())
	dy := float32(ev.Get("movementY").Float())
	height := h.element.ClientHeight()
	if buttons&1 != 0 {
		h.viewer.Controls().HandleDrag(dx, dy, height)
	} else {
		h.viewer.Controls().HandlePan(dx, dy, height)
	}

	moved := abs(ev.Get("clientX").Float()-h.pressX) + abs(ev.Get("clientY").Float()-h.pressY)
	if moved > clickSlop {
		h.dragged = true
	}
	return nil
}

func (h *Host) onPointerDown(this js.Value, args []js.Value) any {
	ev := args[0]
	h.pressX, h.pressY = ev.Get("clientX").Float(), ev.Get("clientY").Float()
	h.dragged = false
	h.element.Call("setPointerCapture", ev.Get("pointerId"))
	return nil
}

func (h *Host) onPointerUp(this js.Value, args []js.Value) any {
	ev := args[0]
	h.element.Call("releasePointerCapture", ev.Get("pointerId"))
	if ev.Get("button").Int() == 0 && !h.dragged {
		h.viewer.Select(pointerEvent(ev), true, ev.Get("shiftKey").Bool())
	}
	return nil
}

func (h *Host) onWheel(this js.Value, args []js.Value) any {
	ev := args[0]
	ev.Call("preventDefault")
	switch dy := ev.Get("deltaY").Float(); {
	case dy < 0:
		h.viewer.Controls().HandleZoom(1)
	case dy > 0:
		h.viewer.Controls().HandleZoom(-1)
	}
	return nil
}

// Export publishes the viewer API as a global object named name.
func (h *Host) Export(name string) {
	api := map[string]any{
		"loadUrl":      h.export(h.jsLoadURL),
		"fit":          h.export(h.jsFit),
		"setViewpoint": h.export(h.jsSetViewpoint),
		"screenshot":   h.export(h.jsScreenshot),
		"setWasmPath":  h.export(h.jsSetWasmPath),
		"showBounds":   h.export(h.jsShowBounds),
	}
	js.Global().Set(name, js.ValueOf(api))
	h.log.Info("api exported", zap.String("name", name))
}

func (h *Host) export(fn func(js.Value, []js.Value) any) js.Func {
	f := js.FuncOf(fn)
	h.funcs = append(h.funcs, f)
	return f
}

// jsLoadURL(url, fitToFrame = true) returns a promise of the model name.
func (h *Host) jsLoadURL(this js.Value, args []js.Value) any {
	if len(args) == 0 || args[0].Type() != js.TypeString {
		return rejected("loadUrl: url must be a string")
	}
	url := args[0].String()
	fit := len(args) < 2 || args[1].Truthy()

	var executor js.Func
	executor = js.FuncOf(func(this js.Value, p []js.Value) any {
		resolve, reject := p[0], p[1]
		executor.Release()
		// Loading waits on a promise, which must not happen on the
		// callback goroutine.
		go func() {
			root, err := h.viewer.LoadModel(context.Background(), loader.URLSource(url), fit)
			if root == nil {
				reject.Invoke(jsError(err))
				return
			}
			if err != nil {
				h.log.Warn("model loaded without framing", zap.Error(err))
			}
			resolve.Invoke(root.Name)
		}()
		return nil
	})
	return js.Global().Get("Promise").New(executor)
}

func (h *Host) jsFit(this js.Value, args []js.Value) any {
	if _, err := h.viewer.FitModelToFrame(); err != nil {
		h.log.Warn("fit failed", zap.Error(err))
		return false
	}
	return true
}

// jsSetViewpoint accepts a BCF viewpoint object or JSON string.
func (h *Host) jsSetViewpoint(this js.Value, args []js.Value) any {
	if len(args) == 0 {
		return false
	}
	raw := args[0]
	if raw.Type() != js.TypeString {
		raw = js.Global().Get("JSON").Call("stringify", raw)
	}
	vp, err := viewpoint.Decode(strings.NewReader(raw.String()))
	if err != nil {
		h.log.Warn("invalid viewpoint", zap.Error(err))
		return false
	}
	return h.viewer.ApplyViewpoint(vp)
}

func (h *Host) jsScreenshot(this js.Value, args []js.Value) any {
	url, err := h.viewer.TakeScreenshot()
	if err != nil {
		h.log.Error("screenshot failed", zap.Error(err))
		return js.Null()
	}
	return url
}

func (h *Host) jsSetWasmPath(this js.Value, args []js.Value) any {
	if len(args) > 0 {
		h.viewer.SetWasmPath(args[0].String())
	}
	return nil
}

func (h *Host) jsShowBounds(this js.Value, args []js.Value) any {
	h.renderer.SetShowBounds(len(args) > 0 && args[0].Truthy())
	return nil
}

// Close stops the viewer and releases every JavaScript callback.
func (h *Host) Close() error {
	err := h.viewer.Close()
	for _, l := range h.listeners {
		l.target.Call("removeEventListener", l.event, l.fn)
		l.fn.Release()
	}
	for _, f := range h.funcs {
		f.Release()
	}
	h.listeners, h.funcs = nil, nil
	h.scheduler.release()
	return err
}

func jsError(err error) js.Value {
	return js.Global().Get("Error").New(err.Error())
}

func rejected(msg string) js.Value {
	return js.Global().Get("Promise").Call("reject", jsError(errors.New(msg)))
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
