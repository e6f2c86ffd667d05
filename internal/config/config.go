// Package config handles viewer configuration loading and management.
package config

import (
	"fmt"
	"strings"
)

// Render modes.
const (
	ModePerObject = "per_object"
	ModeBatched   = "batched"
)

// Config holds all viewer settings.
type Config struct {
	Graphics GraphicsConfig `yaml:"graphics"`
	Render   RenderConfig   `yaml:"render"`
	Octree   OctreeConfig   `yaml:"octree"`
	Camera   CameraConfig   `yaml:"camera"`
	Demo     DemoConfig     `yaml:"demo"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// GraphicsConfig holds display settings.
type GraphicsConfig struct {
	Width      int        `yaml:"width"`
	Height     int        `yaml:"height"`
	Fullscreen bool       `yaml:"fullscreen"`
	VSync      bool       `yaml:"vsync"`
	MSAA       int        `yaml:"msaa"` // samples, 0 disables multisampling
	ClearColor [4]float32 `yaml:"clear_color"`
}

// RenderConfig selects the draw strategy.
type RenderConfig struct {
	Mode          string `yaml:"mode"`       // per_object or batched
	MaxLights     int    `yaml:"max_lights"` // cap per light kind
	DebugOctree   bool   `yaml:"debug_octree"`
	ScreenshotDir string `yaml:"screenshot_dir"`
}

// OctreeConfig holds spatial index tuning.
type OctreeConfig struct {
	MaxObjects int     `yaml:"max_objects"` // leaf capacity before subdivision
	MaxDepth   int     `yaml:"max_depth"`
	Padding    float32 `yaml:"padding"`
}

// CameraConfig holds projection and navigation limits.
type CameraConfig struct {
	FOV             float32 `yaml:"fov"` // vertical, degrees
	Near            float32 `yaml:"near"`
	Far             float32 `yaml:"far"`
	Distance        float32 `yaml:"distance"`
	MinRadius       float32 `yaml:"min_radius"`
	MaxRadius       float32 `yaml:"max_radius"`
	Epsilon         float32 `yaml:"epsilon"`
	ZoomStep        float32 `yaml:"zoom_step"` // radius factor change per wheel notch
	LightStep       float32 `yaml:"light_step"`
	ObjectStep      float32 `yaml:"object_step"`
	DragSensitivity float32 `yaml:"drag_sensitivity"`
}

// DemoConfig describes the generated demo scene.
type DemoConfig struct {
	GridSize     int     `yaml:"grid_size"`
	Spacing      float32 `yaml:"spacing"`
	Mesh         string  `yaml:"mesh"` // empty uses a generated icosphere
	Subdivisions int     `yaml:"subdivisions"`
	Material     string  `yaml:"material"`
	PointLight   bool    `yaml:"point_light"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Graphics: GraphicsConfig{
			Width:      1280,
			Height:     720,
			Fullscreen: false,
			VSync:      true,
			MSAA:       4,
			ClearColor: [4]float32{1, 1, 1, 1},
		},
		Render: RenderConfig{
			Mode:          ModePerObject,
			MaxLights:     10,
			ScreenshotDir: "screenshots",
		},
		Octree: OctreeConfig{
			MaxObjects: 8,
			MaxDepth:   6,
			Padding:    1,
		},
		Camera: CameraConfig{
			FOV:             45,
			Near:            0.1,
			Far:             500,
			Distance:        60,
			MinRadius:       0.2,
			MaxRadius:       99,
			Epsilon:         0.000001,
			ZoomStep:        0.05,
			LightStep:       0.2,
			ObjectStep:      2,
			DragSensitivity: 1,
		},
		Demo: DemoConfig{
			GridSize:     64,
			Spacing:      3,
			Subdivisions: 3,
			Material:     "phong",
			PointLight:   false,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Batched reports whether the indirect multi-draw path is selected.
func (c *Config) Batched() bool {
	return c.Render.Mode == ModeBatched
}

// Validate checks values the engine cannot recover from at runtime.
func (c *Config) Validate() error {
	switch c.Render.Mode {
	case ModePerObject, ModeBatched:
	default:
		return fmt.Errorf("render.mode: unknown mode %q", c.Render.Mode)
	}
	if c.Graphics.Width <= 0 || c.Graphics.Height <= 0 {
		return fmt.Errorf("graphics: invalid size %dx%d", c.Graphics.Width, c.Graphics.Height)
	}
	if c.Render.MaxLights < 0 {
		return fmt.Errorf("render.max_lights: must not be negative")
	}
	if c.Octree.MaxObjects < 1 || c.Octree.MaxDepth < 0 {
		return fmt.Errorf("octree: max_objects must be >= 1 and max_depth >= 0")
	}
	if c.Camera.MinRadius <= 0 || c.Camera.MaxRadius < c.Camera.MinRadius {
		return fmt.Errorf("camera: invalid radius band [%g, %g]", c.Camera.MinRadius, c.Camera.MaxRadius)
	}
	if c.Demo.GridSize < 0 {
		return fmt.Errorf("demo.grid_size: must not be negative")
	}
	c.Demo.Material = strings.ToLower(c.Demo.Material)
	return nil
}
