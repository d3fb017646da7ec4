//go:build js

// Package main is the wasm entry point. It expects a canvas with id
// "ifcview" (or the id in the body's data-canvas attribute) and a global
// loadIfc function, then exports the viewer API as the global "ifcview".
package main

import (
	"syscall/js"

	"go.uber.org/zap"

	"github.com/Faultbox/ifcview/internal/logger"
	"github.com/Faultbox/ifcview/internal/viewer"
	"github.com/Faultbox/ifcview/internal/web"
)

func main() {
	doc := js.Global().Get("document")
	body := doc.Get("body")

	level := "info"
	if v := body.Call("getAttribute", "data-log-level"); v.Type() == js.TypeString {
		level = v.String()
	}
	logger.InitPlain(level)

	id := "ifcview"
	if v := body.Call("getAttribute", "data-canvas"); v.Type() == js.TypeString {
		id = v.String()
	}

	host, err := web.NewHost(doc.Call("getElementById", id), viewer.DefaultOptions())
	if err != nil {
		logger.Error("failed to start viewer", zap.String("canvas", id), zap.Error(err))
		return
	}
	if v := body.Call("getAttribute", "data-wasm-path"); v.Type() == js.TypeString {
		host.Viewer().SetWasmPath(v.String())
	}

	host.Viewer().Start()
	host.Export("ifcview")
	logger.Info("viewer ready")

	select {}
}
