//go:build js

// Package web hosts the viewer on an HTML canvas in a wasm build.
package web

import "syscall/js"

// rafScheduler runs callbacks on the next requestAnimationFrame. All
// callbacks requested before a frame share one browser request.
type rafScheduler struct {
	pending   []func()
	running   []func()
	requested bool
	cb        js.Func
}

func newRAFScheduler() *rafScheduler {
	s := &rafScheduler{}
	s.cb = js.FuncOf(func(this js.Value, args []js.Value) any {
		s.requested = false
		s.running, s.pending = s.pending, s.running[:0]
		for _, fn := range s.running {
			fn()
		}
		s.running = s.running[:0]
		return nil
	})
	return s
}

// RequestFrame implements loop.Scheduler.
func (s *rafScheduler) RequestFrame(fn func()) {
	s.pending = append(s.pending, fn)
	if !s.requested {
		s.requested = true
		js.Global().Call("requestAnimationFrame", s.cb)
	}
}

func (s *rafScheduler) release() {
	s.cb.Release()
}
