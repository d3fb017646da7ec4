//go:build !js

package desktop

import (
	"errors"
	"path/filepath"

	"github.com/sqweek/dialog"
	"go.uber.org/zap"

	"github.com/Faultbox/ifcview/internal/engine/viewpoint"
	"github.com/Faultbox/ifcview/internal/loader"
)

// startDir is where file pickers open: next to the current model if it is
// a local file.
func (a *App) startDir() string {
	if a.current.Path != "" {
		return filepath.Dir(a.current.Path)
	}
	return ""
}

// openDialog asks for a model file and opens it.
func (a *App) openDialog() {
	path, err := dialog.File().
		Title("Open model").
		Filter("Model manifests", "yaml", "yml").
		SetStartDir(a.startDir()).
		Load()
	if errors.Is(err, dialog.ErrCancelled) {
		return
	}
	if err != nil {
		a.log.Warn("open dialog failed", zap.Error(err))
		return
	}
	a.open(loader.FileSource(path))
}

// viewpointDialog asks for a BCF viewpoint file and applies it. With a sync
// hub configured the viewpoint is also shared with the room.
func (a *App) viewpointDialog() {
	path, err := dialog.File().
		Title("Apply viewpoint").
		Filter("Viewpoints", "json", "yaml", "yml").
		SetStartDir(a.startDir()).
		Load()
	if errors.Is(err, dialog.ErrCancelled) {
		return
	}
	if err != nil {
		a.log.Warn("viewpoint dialog failed", zap.Error(err))
		return
	}

	vp, err := viewpoint.LoadFile(path)
	if err != nil {
		dialog.Message("%v", err).Title("Invalid viewpoint").Error()
		return
	}
	if !a.viewer.ApplyViewpoint(vp) {
		a.log.Info("viewpoint has no perspective camera", zap.String("path", path))
		return
	}
	if a.sync != nil {
		if err := a.sync.Publish(vp); err != nil {
			a.log.Warn("publishing viewpoint failed", zap.Error(err))
		}
	}
}
