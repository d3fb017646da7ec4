package viewer

import (
	"image/color"

	"github.com/Faultbox/ifcview/internal/config"
	"github.com/Faultbox/ifcview/internal/engine/lighting"
	"github.com/Faultbox/ifcview/internal/engine/scene"
	"github.com/Faultbox/ifcview/pkg/math"
)

// Options tune a Viewer. Start from DefaultOptions.
type Options struct {
	Background color.RGBA
	Lights     lighting.Rig

	FOV            float32 // degrees
	Near           float32
	Far            float32
	CameraPosition math.Vec3

	EnableDamping bool
	// DampingFactor multiplies the orbit controls' default damping factor.
	DampingFactor float32
	RotateSpeed   float32
	ZoomSpeed     float32
	PanSpeed      float32
	MinDistance   float32
	MaxDistance   float32
}

// DefaultOptions returns the stock viewer setup: a 45 degree camera at
// (8, 8, 8) and damped orbit controls at twice the default damping.
func DefaultOptions() Options {
	return Options{
		Background:     scene.DefaultBackground,
		Lights:         lighting.DefaultRig(),
		FOV:            45,
		Near:           0.1,
		Far:            1000,
		CameraPosition: math.Vec3{X: 8, Y: 8, Z: 8},
		EnableDamping:  true,
		DampingFactor:  2,
		RotateSpeed:    1,
		ZoomSpeed:      1,
		PanSpeed:       1,
	}
}

// OptionsFromConfig maps configuration onto DefaultOptions.
func OptionsFromConfig(cfg *config.Config) (Options, error) {
	opts := DefaultOptions()

	bg, err := cfg.BackgroundColor()
	if err != nil {
		return opts, err
	}
	opts.Background = bg

	opts.FOV = cfg.Camera.FOV
	opts.Near = cfg.Camera.Near
	opts.Far = cfg.Camera.Far
	p := cfg.Camera.Position
	opts.CameraPosition = math.Vec3{X: p[0], Y: p[1], Z: p[2]}

	c := cfg.Controls
	opts.EnableDamping = c.EnableDamping
	// Config stores the absolute factor. Validate rejects zero; an
	// unvalidated zero keeps the default.
	if c.DampingFactor > 0 {
		opts.DampingFactor = c.DampingFactor / defaultDampingFactor
	}
	opts.RotateSpeed = c.RotateSpeed
	opts.ZoomSpeed = c.ZoomSpeed
	opts.PanSpeed = c.PanSpeed
	opts.MinDistance = c.MinDistance
	opts.MaxDistance = c.MaxDistance
	return opts, nil
}
