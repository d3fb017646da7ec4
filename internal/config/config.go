// Package config handles viewer configuration loading and management.
package config

import (
	"fmt"
	"image/color"

	"github.com/lucasb-eyer/go-colorful"
)

// Config holds all viewer settings.
type Config struct {
	Window     WindowConfig     `yaml:"window"`
	Viewer     ViewerConfig     `yaml:"viewer"`
	Camera     CameraConfig     `yaml:"camera"`
	Controls   ControlsConfig   `yaml:"controls"`
	Loader     LoaderConfig     `yaml:"loader"`
	Sync       SyncConfig       `yaml:"sync"`
	Screenshot ScreenshotConfig `yaml:"screenshot"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// WindowConfig holds desktop window settings.
type WindowConfig struct {
	Width      int  `yaml:"width"`
	Height     int  `yaml:"height"`
	Fullscreen bool `yaml:"fullscreen"`
	VSync      bool `yaml:"vsync"`
}

// ViewerConfig holds scene presentation settings.
type ViewerConfig struct {
	Background string `yaml:"background"` // hex color, e.g. "#a9a9a9"
	ShowBounds bool   `yaml:"show_bounds"`
}

// CameraConfig holds the perspective camera defaults.
type CameraConfig struct {
	FOV      float32    `yaml:"fov"` // vertical, degrees
	Near     float32    `yaml:"near"`
	Far      float32    `yaml:"far"`
	Position [3]float32 `yaml:"position"`
}

// ControlsConfig holds orbit controls settings.
type ControlsConfig struct {
	EnableDamping   bool    `yaml:"enable_damping"`
	DampingFactor   float32 `yaml:"damping_factor"`
	RotateSpeed     float32 `yaml:"rotate_speed"`
	ZoomSpeed       float32 `yaml:"zoom_speed"`
	PanSpeed        float32 `yaml:"pan_speed"`
	MinDistance     float32 `yaml:"min_distance"`
	MaxDistance     float32 `yaml:"max_distance"`
	FitOnLoad       bool    `yaml:"fit_on_load"`
	ScreenshotOnFit bool    `yaml:"screenshot_on_fit"`
}

// LoaderConfig holds model loading settings.
type LoaderConfig struct {
	WasmPath string `yaml:"wasm_path"`
	Model    string `yaml:"model"` // file path or URL loaded at startup
	Watch    bool   `yaml:"watch"` // reload the model file when it changes
}

// SyncConfig holds viewpoint sync settings.
type SyncConfig struct {
	HubURL string `yaml:"hub_url"` // e.g. ws://127.0.0.1:7420/rooms/review
	Listen string `yaml:"listen"`  // address for the hub command
}

// ScreenshotConfig holds screenshot output settings.
type ScreenshotConfig struct {
	OutputDir string `yaml:"output_dir"`
	Prefix    string `yaml:"prefix"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Window: WindowConfig{
			Width:  1280,
			Height: 720,
			VSync:  true,
		},
		Viewer: ViewerConfig{
			Background: "#a9a9a9",
		},
		Camera: CameraConfig{
			FOV:      45,
			Near:     0.1,
			Far:      1000,
			Position: [3]float32{8, 8, 8},
		},
		Controls: ControlsConfig{
			EnableDamping: true,
			DampingFactor: 0.1,
			RotateSpeed:   1,
			ZoomSpeed:     1,
			PanSpeed:      1,
			MinDistance:   0,
			MaxDistance:   0,
			FitOnLoad:     true,
		},
		Loader: LoaderConfig{
			WasmPath: "./",
		},
		Sync: SyncConfig{
			Listen: "127.0.0.1:7420",
		},
		Screenshot: ScreenshotConfig{
			OutputDir: "screenshots",
			Prefix:    "ifcview",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// BackgroundColor parses Viewer.Background.
func (c *Config) BackgroundColor() (color.RGBA, error) {
	col, err := colorful.Hex(c.Viewer.Background)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("viewer.background %q: %w", c.Viewer.Background, err)
	}
	r, g, b := col.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 0xff}, nil
}
