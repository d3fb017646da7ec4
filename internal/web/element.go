//go:build js

package web

import (
	"syscall/js"

	"github.com/Faultbox/ifcview/internal/engine/picking"
)

// Element adapts a DOM element to viewer.Container.
type Element struct {
	js.Value
}

// ClientWidth returns the element's clientWidth.
func (e Element) ClientWidth() int {
	return e.Get("clientWidth").Int()
}

// ClientHeight returns the element's clientHeight.
func (e Element) ClientHeight() int {
	return e.Get("clientHeight").Int()
}

// Rect returns the element's bounding client rectangle.
func (e Element) Rect() picking.Rect {
	r := e.Call("getBoundingClientRect")
	return picking.Rect{
		Left:   float32(r.Get("left").Float()),
		Top:    float32(r.Get("top").Float()),
		Width:  float32(r.Get("width").Float()),
		Height: float32(r.Get("height").Float()),
	}
}
