// Package app runs the viewer frame loop: events, scene update, render,
// present.
package app

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/lumen/internal/config"
	"github.com/Faultbox/lumen/internal/engine/debug"
	"github.com/Faultbox/lumen/internal/engine/gpu/glgpu"
	"github.com/Faultbox/lumen/internal/engine/input"
	"github.com/Faultbox/lumen/internal/engine/renderer"
	"github.com/Faultbox/lumen/internal/engine/window"
	"github.com/Faultbox/lumen/internal/logger"
	"github.com/Faultbox/lumen/internal/viewer"
)

const title = "lumen"

// App is the viewer instance.
type App struct {
	config   *config.Config
	running  bool
	window   *window.Window
	device   *glgpu.Device
	renderer *renderer.Renderer
	input    *input.Input
	shots    *debug.Screenshots

	demo       *viewer.Demo
	controller *viewer.Controller
}

// New creates the window, the graphics device and the demo scene.
func New(cfg *config.Config) (*App, error) {
	logger.Info("initializing viewer",
		zap.Int("width", cfg.Graphics.Width),
		zap.Int("height", cfg.Graphics.Height),
		zap.String("mode", cfg.Render.Mode),
	)

	mode, err := renderer.ParseMode(cfg.Render.Mode)
	if err != nil {
		return nil, err
	}

	a := &App{config: cfg}

	// Create window (this also creates OpenGL context)
	a.window, err = window.New(window.Config{
		Title:      title,
		Width:      cfg.Graphics.Width,
		Height:     cfg.Graphics.Height,
		Fullscreen: cfg.Graphics.Fullscreen,
		VSync:      cfg.Graphics.VSync,
		MSAA:       cfg.Graphics.MSAA,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	// Device AFTER window, since the OpenGL context must exist
	a.device, err = glgpu.New()
	if err != nil {
		a.window.Close()
		return nil, fmt.Errorf("failed to create graphics device: %w", err)
	}
	a.device.Setup(cfg.Graphics.MSAA > 0)
	dw, dh := a.window.DrawableSize()
	a.device.Viewport(dw, dh)

	a.renderer = renderer.New(a.device, renderer.Options{
		Mode:      mode,
		MaxLights: cfg.Render.MaxLights,
	})
	a.input = input.New()
	a.shots = debug.NewScreenshots(cfg.Render.ScreenshotDir, title)

	w, h := a.window.Size()
	a.demo, err = viewer.BuildDemo(cfg, float32(w)/float32(max(h, 1)))
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to build scene: %w", err)
	}
	a.controller = viewer.NewController(a.demo, cfg, w, h)

	logger.Info("viewer initialized successfully")
	return a, nil
}

// Run starts the frame loop and returns when the window is closed.
func (a *App) Run() error {
	a.running = true

	lastTime := time.Now()
	frameCount := 0
	fpsTimer := time.Now()

	logger.Info("starting frame loop")

	for a.running {
		now := time.Now()
		dt := now.Sub(lastTime).Seconds()
		lastTime = now

		// 1. Process input
		a.input.Update()
		for _, ev := range a.input.Events() {
			a.controller.Handle(ev)
			if ev.Type == input.EventWindowResize {
				a.device.Viewport(a.window.DrawableSize())
			}
		}
		if a.controller.Quit() {
			a.running = false
			break
		}

		// 2. Render
		a.render()
		if a.controller.TakeScreenshot() {
			a.screenshot()
		}

		// 3. Present
		a.window.SwapBuffers()

		frameCount++
		if time.Since(fpsTimer) >= time.Second {
			st := a.renderer.Stats()
			logger.Debug("fps",
				zap.Int("count", frameCount),
				zap.String("dt", fmt.Sprintf("%.2fms", dt*1000)),
				zap.Int("draw_calls", st.DrawCalls),
				zap.Int("drawn", st.ObjectsDrawn),
				zap.Int("skipped", st.ObjectsSkipped))
			a.window.SetTitle(fmt.Sprintf("%s - %d fps - %d/%d objects", title,
				frameCount, st.ObjectsDrawn, st.ObjectsDrawn+st.ObjectsSkipped))
			frameCount = 0
			fpsTimer = time.Now()
		}
	}

	return nil
}

func (a *App) render() {
	a.device.Clear(a.config.Graphics.ClearColor)
	a.renderer.Render(a.demo.Scene)
	if a.controller.ShowOctree() {
		a.renderer.RenderOctree(a.demo.Scene, a.demo.Lines)
	}
}

// screenshot saves the back buffer before it is presented.
func (a *App) screenshot() {
	w, h := a.window.DrawableSize()
	path, err := a.shots.Save(a.device.ReadPixels(w, h), w, h)
	if err != nil {
		logger.Warn("screenshot failed", zap.Error(err))
		return
	}
	logger.Info("screenshot saved", zap.String("path", path))
}

// Close releases GPU resources and the window.
func (a *App) Close() {
	logger.Info("closing viewer")

	if a.renderer != nil {
		if a.demo != nil {
			a.renderer.Release(a.demo.Scene)
		}
		a.renderer.Close()
	}
	if a.demo != nil {
		a.demo.Scene.Clear()
	}
	if a.window != nil {
		a.window.Close()
	}
}
