//go:build js

package web

import (
	"fmt"
	"image"
	"syscall/js"

	"github.com/Faultbox/ifcview/internal/engine/camera"
	"github.com/Faultbox/ifcview/internal/engine/painter"
	"github.com/Faultbox/ifcview/internal/engine/scene"
)

// CanvasRenderer draws painter frames with the 2D canvas API.
type CanvasRenderer struct {
	canvas  js.Value
	ctx     js.Value
	painter painter.Painter
}

// NewCanvasRenderer renders into canvas.
func NewCanvasRenderer(canvas js.Value) (*CanvasRenderer, error) {
	ctx := canvas.Call("getContext", "2d")
	if ctx.IsNull() {
		return nil, fmt.Errorf("canvas has no 2d context")
	}
	return &CanvasRenderer{canvas: canvas, ctx: ctx}, nil
}

// SetShowBounds toggles outlines on every node.
func (r *CanvasRenderer) SetShowBounds(show bool) {
	r.painter.ShowBounds = show
}

// SetSize resizes the canvas backing store.
func (r *CanvasRenderer) SetSize(width, height int) {
	r.canvas.Set("width", width)
	r.canvas.Set("height", height)
}

// Render draws s from cam.
func (r *CanvasRenderer) Render(s *scene.Scene, cam *camera.PerspectiveCamera) {
	w, h := r.canvas.Get("width").Int(), r.canvas.Get("height").Int()
	f := r.painter.Paint(s, cam, w, h)
	ctx := r.ctx

	ctx.Set("fillStyle", painter.CSS(f.Background))
	ctx.Call("fillRect", 0, 0, w, h)

	for _, p := range f.Polygons {
		fill := painter.CSS(p.Fill)
		ctx.Set("fillStyle", fill)
		// Stroking with the fill color hides seams between faces.
		ctx.Set("strokeStyle", fill)
		ctx.Call("beginPath")
		ctx.Call("moveTo", p.Points[0].X, p.Points[0].Y)
		for _, pt := range p.Points[1:] {
			ctx.Call("lineTo", pt.X, pt.Y)
		}
		ctx.Call("closePath")
		ctx.Call("fill")
		ctx.Call("stroke")
	}

	ctx.Set("lineWidth", 1.5)
	for _, l := range f.Lines {
		ctx.Set("strokeStyle", painter.CSS(l.Color))
		ctx.Call("beginPath")
		ctx.Call("moveTo", l.A.X, l.A.Y)
		ctx.Call("lineTo", l.B.X, l.B.Y)
		ctx.Call("stroke")
	}
	ctx.Set("lineWidth", 1)
}

// Capture copies the canvas pixels.
func (r *CanvasRenderer) Capture() (image.Image, error) {
	w, h := r.canvas.Get("width").Int(), r.canvas.Get("height").Int()
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("invalid canvas size %dx%d", w, h)
	}
	data := r.ctx.Call("getImageData", 0, 0, w, h).Get("data")

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	if n := js.CopyBytesToGo(img.Pix, data); n != len(img.Pix) {
		return nil, fmt.Errorf("copied %d of %d pixel bytes", n, len(img.Pix))
	}
	return img, nil
}
