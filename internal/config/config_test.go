package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Graphics.Width != 1280 || cfg.Graphics.Height != 720 {
		t.Errorf("expected 1280x720, got %dx%d", cfg.Graphics.Width, cfg.Graphics.Height)
	}
	if cfg.Graphics.Fullscreen {
		t.Error("expected fullscreen to be false by default")
	}
	if cfg.Render.Mode != ModePerObject {
		t.Errorf("expected per-object mode by default, got %s", cfg.Render.Mode)
	}
	if cfg.Render.MaxLights != 10 {
		t.Errorf("expected max lights 10, got %d", cfg.Render.MaxLights)
	}
	if cfg.Render.ScreenshotDir != "screenshots" {
		t.Errorf("expected screenshots dir, got %q", cfg.Render.ScreenshotDir)
	}
	if cfg.Camera.MinRadius != 0.2 || cfg.Camera.MaxRadius != 99 {
		t.Errorf("expected radius band [0.2, 99], got [%v, %v]", cfg.Camera.MinRadius, cfg.Camera.MaxRadius)
	}
	if cfg.Demo.GridSize != 64 {
		t.Errorf("expected 64x64 demo grid, got %d", cfg.Demo.GridSize)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "lumen.yaml")

	yamlContent := `
graphics:
  width: 1920
  height: 1080
  vsync: false
  clear_color: [0, 0, 0, 1]

render:
  mode: batched
  debug_octree: true

octree:
  max_objects: 4
  max_depth: 3

camera:
  fov: 60
  max_radius: 50

demo:
  grid_size: 8
  mesh: "models/sphere.glb"
  material: tess

logging:
  level: "debug"
  log_file: "lumen.log"
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Graphics.Width != 1920 || cfg.Graphics.Height != 1080 {
		t.Errorf("expected 1920x1080, got %dx%d", cfg.Graphics.Width, cfg.Graphics.Height)
	}
	if cfg.Graphics.VSync {
		t.Error("expected vsync to be false")
	}
	if cfg.Graphics.ClearColor != [4]float32{0, 0, 0, 1} {
		t.Errorf("unexpected clear color %v", cfg.Graphics.ClearColor)
	}
	if !cfg.Batched() {
		t.Error("expected batched mode")
	}
	if !cfg.Render.DebugOctree {
		t.Error("expected debug_octree to be true")
	}
	if cfg.Octree.MaxObjects != 4 || cfg.Octree.MaxDepth != 3 {
		t.Errorf("unexpected octree config %+v", cfg.Octree)
	}
	if cfg.Camera.FOV != 60 || cfg.Camera.MaxRadius != 50 {
		t.Errorf("unexpected camera config %+v", cfg.Camera)
	}
	// Untouched keys keep their defaults
	if cfg.Camera.MinRadius != 0.2 {
		t.Errorf("expected default min radius, got %v", cfg.Camera.MinRadius)
	}
	if cfg.Demo.Mesh != "models/sphere.glb" || cfg.Demo.Material != "tess" {
		t.Errorf("unexpected demo config %+v", cfg.Demo)
	}
	if cfg.Logging.LogFile != "lumen.log" {
		t.Errorf("expected log file 'lumen.log', got %s", cfg.Logging.LogFile)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "invalid.yaml")

	invalidYAML := `
graphics:
  width: not a number
  invalid syntax here
`
	if err := os.WriteFile(configPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	if err := loadFromFile(Default(), configPath); err == nil {
		t.Error("expected error loading invalid YAML, got nil")
	}
}

func TestLoadFromFileUnknownKey(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "typo.yaml")
	if err := os.WriteFile(configPath, []byte("render:\n  mdoe: batched\n"), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	if err := loadFromFile(Default(), configPath); err == nil {
		t.Error("expected error for unknown key, got nil")
	}
}

func TestLoadFromFileEmpty(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "empty.yaml")
	if err := os.WriteFile(configPath, nil, 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("empty file should load: %v", err)
	}
	if cfg.Graphics.Width != 1280 {
		t.Errorf("expected defaults to survive, got width %d", cfg.Graphics.Width)
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	if err := loadFromFile(Default(), "/nonexistent/path/lumen.yaml"); err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown mode", func(c *Config) { c.Render.Mode = "deferred" }},
		{"zero width", func(c *Config) { c.Graphics.Width = 0 }},
		{"negative lights", func(c *Config) { c.Render.MaxLights = -1 }},
		{"empty leaves", func(c *Config) { c.Octree.MaxObjects = 0 }},
		{"inverted radius band", func(c *Config) { c.Camera.MinRadius, c.Camera.MaxRadius = 10, 1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error, got nil")
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

	if err := os.WriteFile(filepath.Join(tmpDir, fileName), []byte("graphics:\n  width: 800\n"), 0644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}

	if path := findConfigFile(); path == "" {
		t.Error("expected to find lumen.yaml in current directory")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "lumen.yaml")

	cfg := Default()
	cfg.Render.Mode = ModeBatched
	cfg.Demo.GridSize = 3
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}

	loaded := Default()
	if err := loadFromFile(loaded, path); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if !loaded.Batched() || loaded.Demo.GridSize != 3 {
		t.Errorf("saved values not restored: mode=%s grid=%d", loaded.Render.Mode, loaded.Demo.GridSize)
	}
}

func TestSaveToConfigDir(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	if runtime.GOOS != "linux" {
		t.Skip("XDG_CONFIG_HOME only applies on linux")
	}

	cfg := Default()
	cfg.Graphics.Width = 1024
	if err := cfg.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded := Default()
	if err := loadFromFile(loaded, filepath.Join(ConfigDir(), fileName)); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if loaded.Graphics.Width != 1024 {
		t.Errorf("expected saved width 1024, got %d", loaded.Graphics.Width)
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
			},
			teardown: func() { *flagDebug = false },
		},
		{
			name:  "batched flag",
			setup: func() { *flagBatched = true },
			verify: func(t *testing.T, cfg *Config) {
				if !cfg.Batched() {
					t.Error("expected batched mode with batched flag")
				}
			},
			teardown: func() { *flagBatched = false },
		},
		{
			name:  "fullscreen flag",
			setup: func() { *flagFullscreen = true },
			verify: func(t *testing.T, cfg *Config) {
				if !cfg.Graphics.Fullscreen {
					t.Error("expected fullscreen to be true with fullscreen flag")
				}
			},
			teardown: func() { *flagFullscreen = false },
		},
		{
			name: "demo flags",
			setup: func() {
				*flagMesh = "sphere.mesh"
				*flagMaterial = "cel"
				*flagGrid = 0
			},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Demo.Mesh != "sphere.mesh" || cfg.Demo.Material != "cel" {
					t.Errorf("unexpected demo config %+v", cfg.Demo)
				}
				if cfg.Demo.GridSize != 0 {
					t.Errorf("expected grid 0 from flag, got %d", cfg.Demo.GridSize)
				}
			},
			teardown: func() {
				*flagMesh = ""
				*flagMaterial = ""
				*flagGrid = -1
			},
		},
		{
			name: "width and height flags",
			setup: func() {
				*flagWidth = 2560
				*flagHeight = 1440
			},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Graphics.Width != 2560 || cfg.Graphics.Height != 1440 {
					t.Errorf("expected 2560x1440, got %dx%d", cfg.Graphics.Width, cfg.Graphics.Height)
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
	configPath := filepath.Join(t.TempDir(), "lumen.yaml")

	yamlContent := `
graphics:
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

	// Width from flag, height from file
	if cfg.Graphics.Width != 1920 {
		t.Errorf("expected width 1920 from flag, got %d", cfg.Graphics.Width)
	}
	if cfg.Graphics.Height != 900 {
		t.Errorf("expected height 900 from file, got %d", cfg.Graphics.Height)
	}
}
