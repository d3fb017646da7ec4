package config

import (
	"image/color"
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Camera.FOV != 45 {
		t.Errorf("expected fov 45, got %v", cfg.Camera.FOV)
	}
	if cfg.Camera.Near != 0.1 || cfg.Camera.Far != 1000 {
		t.Errorf("expected near/far 0.1/1000, got %v/%v", cfg.Camera.Near, cfg.Camera.Far)
	}
	if cfg.Camera.Position != [3]float32{8, 8, 8} {
		t.Errorf("expected start position (8, 8, 8), got %v", cfg.Camera.Position)
	}
	if !cfg.Controls.EnableDamping {
		t.Error("expected damping to be enabled by default")
	}
	if cfg.Controls.DampingFactor != 0.1 {
		t.Errorf("expected damping factor 0.1, got %v", cfg.Controls.DampingFactor)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestBackgroundColor(t *testing.T) {
	cfg := Default()
	got, err := cfg.BackgroundColor()
	if err != nil {
		t.Fatalf("BackgroundColor: %v", err)
	}
	want := color.RGBA{R: 0xa9, G: 0xa9, B: 0xa9, A: 0xff}
	if got != want {
		t.Errorf("BackgroundColor = %v, want %v", got, want)
	}

	cfg.Viewer.Background = "grey"
	if _, err := cfg.BackgroundColor(); err == nil {
		t.Error("expected error for non-hex background")
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "ifcview.yaml")

	yamlContent := `
window:
  width: 1920
  height: 1080
  fullscreen: true

viewer:
  background: "#202830"

camera:
  fov: 60
  near: 0.5
  far: 5000
  position: [10, 4, -3]

controls:
  enable_damping: false
  damping_factor: 0.25

loader:
  model: "models/office.yaml"
  watch: true

sync:
  hub_url: "ws://127.0.0.1:7420/rooms/review"

logging:
  level: "debug"
  log_file: "ifcview.log"
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Window.Width != 1920 || cfg.Window.Height != 1080 || !cfg.Window.Fullscreen {
		t.Errorf("window not loaded: %+v", cfg.Window)
	}
	if cfg.Camera.FOV != 60 || cfg.Camera.Far != 5000 {
		t.Errorf("camera not loaded: %+v", cfg.Camera)
	}
	if cfg.Camera.Position != [3]float32{10, 4, -3} {
		t.Errorf("expected position (10, 4, -3), got %v", cfg.Camera.Position)
	}
	if cfg.Controls.EnableDamping {
		t.Error("expected damping to be disabled")
	}
	if cfg.Loader.Model != "models/office.yaml" || !cfg.Loader.Watch {
		t.Errorf("loader not loaded: %+v", cfg.Loader)
	}
	if cfg.Sync.HubURL != "ws://127.0.0.1:7420/rooms/review" {
		t.Errorf("sync not loaded: %+v", cfg.Sync)
	}
	// Untouched sections keep defaults.
	if cfg.Screenshot.Prefix != "ifcview" {
		t.Errorf("expected default screenshot prefix, got %q", cfg.Screenshot.Prefix)
	}
	if bg, _ := cfg.BackgroundColor(); bg != (color.RGBA{R: 0x20, G: 0x28, B: 0x30, A: 0xff}) {
		t.Errorf("unexpected background %v", bg)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.yaml")

	invalidYAML := `
camera:
  fov: not a number
  invalid syntax here
`
	if err := os.WriteFile(configPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err == nil {
		t.Error("expected error loading invalid YAML, got nil")
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := Default()
	if err := loadFromFile(cfg, "/nonexistent/path/ifcview.yaml"); err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero fov", func(c *Config) { c.Camera.FOV = 0 }},
		{"wide fov", func(c *Config) { c.Camera.FOV = 180 }},
		{"far before near", func(c *Config) { c.Camera.Far = 0.01 }},
		{"damping above one", func(c *Config) { c.Controls.DampingFactor = 1.5 }},
		{"zero damping", func(c *Config) { c.Controls.DampingFactor = 0 }},
		{"bad background", func(c *Config) { c.Viewer.Background = "#zz0000" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()
	if dir == "" {
		t.Error("ConfigDir returned empty string")
	}
	if !filepath.IsAbs(dir) {
		t.Errorf("ConfigDir should return absolute path, got %s", dir)
	}
}

func TestFindConfigFile(t *testing.T) {
	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)

	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, "xdg"))
	os.Chdir(tmpDir)

	if path := findConfigFile(); path != "" {
		t.Errorf("expected empty path when no config exists, got %s", path)
	}

	if err := os.WriteFile(filepath.Join(tmpDir, "ifcview.yaml"), []byte("window:\n  width: 800\n"), 0644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}
	if path := findConfigFile(); path == "" {
		t.Error("expected to find ifcview.yaml in current directory")
	}
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name     string
		setup    func()
		verify   func(*testing.T, *Config)
		teardown func()
	}{
		{
			name:  "debug flag",
			setup: func() { *flagDebug = true },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
				}
				if !cfg.Viewer.ShowBounds {
					t.Error("expected show_bounds to be enabled with debug flag")
				}
			},
			teardown: func() { *flagDebug = false },
		},
		{
			name: "model and watch flags",
			setup: func() {
				*flagModel = "tower.yaml"
				*flagWatch = true
			},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Loader.Model != "tower.yaml" || !cfg.Loader.Watch {
					t.Errorf("loader flags not applied: %+v", cfg.Loader)
				}
			},
			teardown: func() {
				*flagModel = ""
				*flagWatch = false
			},
		},
		{
			name:  "sync flag",
			setup: func() { *flagSync = "ws://hub/rooms/a" },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Sync.HubURL != "ws://hub/rooms/a" {
					t.Errorf("expected hub url, got %q", cfg.Sync.HubURL)
				}
			},
			teardown: func() { *flagSync = "" },
		},
		{
			name: "width and height flags",
			setup: func() {
				*flagWidth = 2560
				*flagHeight = 1440
			},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Window.Width != 2560 || cfg.Window.Height != 1440 {
					t.Errorf("expected 2560x1440, got %dx%d", cfg.Window.Width, cfg.Window.Height)
				}
			},
			teardown: func() {
				*flagWidth = 0
				*flagHeight = 0
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()
			defer tt.teardown()

			cfg := Default()
			applyFlags(cfg)
			tt.verify(t, cfg)
		})
	}
}

func TestLoadPriority(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "ifcview.yaml")

	yamlContent := `
window:
  width: 1600
  height: 900
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	*flagConfig = configPath
	*flagWidth = 1920
	defer func() {
		*flagConfig = ""
		*flagWidth = 0
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.Window.Width != 1920 {
		t.Errorf("expected width 1920 from flag, got %d", cfg.Window.Width)
	}
	if cfg.Window.Height != 900 {
		t.Errorf("expected height 900 from file, got %d", cfg.Window.Height)
	}
}

func TestSaveTo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "ifcview.yaml")
	cfg := Default()
	cfg.Camera.FOV = 50

	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}
	loaded := Default()
	if err := loadFromFile(loaded, path); err != nil {
		t.Fatalf("loadFromFile: %v", err)
	}
	if loaded.Camera.FOV != 50 {
		t.Errorf("expected fov 50 after save/load, got %v", loaded.Camera.FOV)
	}
}
