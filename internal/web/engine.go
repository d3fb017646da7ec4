//go:build js

package web

import (
	"context"
	"fmt"
	"strings"
	"syscall/js"

	"github.com/Faultbox/ifcview/internal/engine/scene"
	"github.com/Faultbox/ifcview/internal/loader"
)

// JSEngine delegates parsing to a global JavaScript function
// loadIfc(url, wasmPath) returning a promise of an element manifest.
type JSEngine struct {
	fn       js.Value
	wasmPath string
}

// NewJSEngine looks up the global loadIfc function.
func NewJSEngine() (*JSEngine, error) {
	fn := js.Global().Get("loadIfc")
	if fn.Type() != js.TypeFunction {
		return nil, fmt.Errorf("global loadIfc is not a function")
	}
	return &JSEngine{fn: fn}, nil
}

// SetWasmPath implements loader.Engine.
func (e *JSEngine) SetWasmPath(path string) {
	e.wasmPath = path
}

// Load implements loader.Engine.
func (e *JSEngine) Load(ctx context.Context, src loader.Source) (*scene.Node, error) {
	result, err := await(ctx, e.fn.Invoke(src.String(), e.wasmPath))
	if err != nil {
		return nil, err
	}

	// The manifest format is YAML, which accepts JSON as is.
	raw := js.Global().Get("JSON").Call("stringify", result).String()
	m, err := loader.ParseManifest(strings.NewReader(raw))
	if err != nil {
		return nil, err
	}
	if m.Name == "" {
		m.Name = src.Name()
	}
	return m.Build()
}

// await blocks the calling goroutine until the promise settles or ctx is
// done. It must not be called from a js.Func callback.
func await(ctx context.Context, v js.Value) (js.Value, error) {
	if v.Type() != js.TypeObject || v.Get("then").Type() != js.TypeFunction {
		return v, nil
	}

	type outcome struct {
		value js.Value
		ok    bool
	}
	done := make(chan outcome, 1)

	// The callbacks release themselves once the promise settles, which may
	// be after a cancelled await has returned.
	var onResolve, onReject js.Func
	settle := func(o outcome) {
		done <- o
		onResolve.Release()
		onReject.Release()
	}
	onResolve = js.FuncOf(func(this js.Value, args []js.Value) any {
		settle(outcome{value: args[0], ok: true})
		return nil
	})
	onReject = js.FuncOf(func(this js.Value, args []js.Value) any {
		settle(outcome{value: args[0]})
		return nil
	})

	v.Call("then", onResolve, onReject)

	select {
	case <-ctx.Done():
		return js.Undefined(), ctx.Err()
	case o := <-done:
		if !o.ok {
			return js.Undefined(), fmt.Errorf("loadIfc: %s", o.value.Call("toString").String())
		}
		return o.value, nil
	}
}
