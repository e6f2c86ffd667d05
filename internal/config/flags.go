package config

import "flag"

var (
	flagConfig     = flag.String("config", "", "Path to config file")
	flagDebug      = flag.Bool("debug", false, "Enable debug logging")
	flagBatched    = flag.Bool("batched", false, "Draw every object with one indirect multi-draw")
	flagOctree     = flag.Bool("octree", false, "Draw octree node boxes")
	flagWindowed   = flag.Bool("windowed", false, "Run in windowed mode")
	flagFullscreen = flag.Bool("fullscreen", false, "Run in fullscreen mode")
	flagWidth      = flag.Int("width", 0, "Window width")
	flagHeight     = flag.Int("height", 0, "Window height")
	flagMesh       = flag.String("mesh", "", "Mesh file (.gltf, .glb or .mesh) for the demo grid")
	flagMaterial   = flag.String("material", "", "Demo material: basic, gouraud, phong, tess, cel, point, line")
	flagGrid       = flag.Int("grid", -1, "Demo grid size (objects per side)")
	flagSave       = flag.Bool("save-config", false, "Write the effective config to the user config directory")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// SaveRequested reports whether --save-config was given.
func SaveRequested() bool {
	return *flagSave
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagBatched {
		cfg.Render.Mode = ModeBatched
	}
	if *flagOctree {
		cfg.Render.DebugOctree = true
	}
	if *flagWindowed {
		cfg.Graphics.Fullscreen = false
	}
	if *flagFullscreen {
		cfg.Graphics.Fullscreen = true
	}
	if *flagWidth > 0 {
		cfg.Graphics.Width = *flagWidth
	}
	if *flagHeight > 0 {
		cfg.Graphics.Height = *flagHeight
	}
	if *flagMesh != "" {
		cfg.Demo.Mesh = *flagMesh
	}
	if *flagMaterial != "" {
		cfg.Demo.Material = *flagMaterial
	}
	if *flagGrid >= 0 {
		cfg.Demo.GridSize = *flagGrid
	}
}
