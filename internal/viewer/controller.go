package viewer

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/lumen/internal/config"
	"github.com/Faultbox/lumen/internal/engine/camera"
	"github.com/Faultbox/lumen/internal/engine/input"
	"github.com/Faultbox/lumen/internal/engine/octree"
	"github.com/Faultbox/lumen/internal/engine/picking"
	"github.com/Faultbox/lumen/internal/engine/scene"
	"github.com/Faultbox/lumen/internal/logger"
)

// Controller applies input to the demo. Left drag orbits the camera, the
// wheel zooms and right click selects the object under the cursor. Bound
// keys orbit the light and move the selection.
type Controller struct {
	demo     *Demo
	cfg      config.CameraConfig
	bindings input.Bindings

	cameraOrbit *camera.Orbit
	lightOrbit  *camera.Orbit

	width, height int
	dragging      bool
	showOctree    bool
	screenshot    bool
	quit          bool
}

// NewController derives both orbits from the current camera and light.
// width and height are the window size in the units of mouse motion.
func NewController(d *Demo, cfg *config.Config, width, height int) *Controller {
	cam := d.Scene.Camera()
	return &Controller{
		demo:        d,
		cfg:         cfg.Camera,
		bindings:    input.DefaultBindings(),
		cameraOrbit: camera.FromPosition(cam.Target(), cam.Position(), cfg.Camera.MinRadius, cfg.Camera.MaxRadius, cfg.Camera.Epsilon),
		lightOrbit:  camera.FromPosition(mgl32.Vec3{}, d.Light.Direction.Mul(LightRadius), LightRadius, LightRadius, cfg.Camera.Epsilon),
		width:       max(width, 1),
		height:      max(height, 1),
		showOctree:  cfg.Render.DebugOctree,
	}
}

// Quit reports whether a quit was requested.
func (c *Controller) Quit() bool { return c.quit }

// ShowOctree reports whether octree boxes should be drawn.
func (c *Controller) ShowOctree() bool { return c.showOctree }

// TakeScreenshot reports a pending screenshot request and clears it.
func (c *Controller) TakeScreenshot() bool {
	req := c.screenshot
	c.screenshot = false
	return req
}

// CameraOrbit returns the camera navigation state.
func (c *Controller) CameraOrbit() *camera.Orbit { return c.cameraOrbit }

// LightOrbit returns the light navigation state.
func (c *Controller) LightOrbit() *camera.Orbit { return c.lightOrbit }

// Handle applies one event.
func (c *Controller) Handle(ev input.Event) {
	switch ev.Type {
	case input.EventQuit:
		c.quit = true
	case input.EventWindowResize:
		c.Resize(ev.Width, ev.Height)
	case input.EventKeyDown:
		c.Apply(c.bindings.Command(ev))
	case input.EventMouseDown:
		switch ev.Button {
		case sdl.BUTTON_LEFT:
			c.dragging = true
		case sdl.BUTTON_RIGHT:
			c.Select(ev.MouseX, ev.MouseY)
		}
	case input.EventMouseUp:
		if ev.Button == sdl.BUTTON_LEFT {
			c.dragging = false
		}
	case input.EventMouseMove:
		if c.dragging {
			c.Drag(ev.RelX, ev.RelY)
		}
	case input.EventMouseWheel:
		c.Zoom(ev.Wheel)
	}
}

// Resize records the new window size and updates the camera aspect.
func (c *Controller) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	c.width, c.height = width, height
	c.demo.Scene.Resize(int32(width), int32(height))
}

// Drag orbits the camera: a full window width turns it once around.
func (c *Controller) Drag(dx, dy int) {
	s := c.cfg.DragSensitivity
	dTheta := -2 * math.Pi * float32(dx) / float32(c.width) * s
	dPhi := -2 * math.Pi * float32(dy) / float32(c.height) * s
	c.moveCamera(dPhi, dTheta, 1)
}

// Zoom scales the camera radius by 1 - notches·ZoomStep.
func (c *Controller) Zoom(notches int) {
	if notches == 0 {
		return
	}
	c.moveCamera(0, 0, 1-float32(notches)*c.cfg.ZoomStep)
}

func (c *Controller) moveCamera(dPhi, dTheta, factor float32) {
	if c.cameraOrbit.Apply(dPhi, dTheta, factor) {
		c.demo.Scene.Camera().SetPosition(c.cameraOrbit.Position())
	}
}

// Apply runs one command.
func (c *Controller) Apply(cmd input.Command) {
	step := c.cfg.LightStep
	move := c.cfg.ObjectStep
	switch cmd {
	case input.CmdNone:
		return
	case input.CmdQuit:
		c.quit = true
	case input.CmdLightUp:
		c.moveLight(-step, 0)
	case input.CmdLightDown:
		c.moveLight(step, 0)
	case input.CmdLightLeft:
		c.moveLight(0, -step)
	case input.CmdLightRight:
		c.moveLight(0, step)
	case input.CmdObjectLeft:
		c.moveSelected(mgl32.Vec3{-move, 0, 0})
	case input.CmdObjectRight:
		c.moveSelected(mgl32.Vec3{move, 0, 0})
	case input.CmdObjectUp:
		c.moveSelected(mgl32.Vec3{0, move, 0})
	case input.CmdObjectDown:
		c.moveSelected(mgl32.Vec3{0, -move, 0})
	case input.CmdObjectNear:
		c.moveSelected(mgl32.Vec3{0, 0, move})
	case input.CmdObjectFar:
		c.moveSelected(mgl32.Vec3{0, 0, -move})
	case input.CmdToggleOctree:
		c.showOctree = !c.showOctree
	case input.CmdScreenshot:
		c.screenshot = true
	}
	logger.Debug("command", zap.Stringer("command", cmd))
}

func (c *Controller) moveLight(dPhi, dTheta float32) {
	if c.lightOrbit.Apply(dPhi, dTheta, 1) {
		c.demo.Light.Toward(c.lightOrbit.Position())
	}
}

// moveSelected translates the selected object and re-inserts it into the
// octree, which does not track moves on its own.
func (c *Controller) moveSelected(d mgl32.Vec3) {
	o := c.demo.Selected
	o.Translate(d)
	c.demo.Scene.UpdateObject(o)
}

// Select makes the object under window position (x, y) the target of the
// movement keys. It reports whether anything was hit.
func (c *Controller) Select(x, y int) bool {
	s := c.demo.Scene
	if !s.HasOctree() {
		return false
	}
	cam := s.Camera()
	ray := picking.ScreenToRay(float32(x), float32(y), float32(c.width), float32(c.height), cam.ViewProjection().Inv())
	it, dist, ok := picking.Pick(s.Octree(), ray, func(it octree.Item) float32 {
		return it.(*scene.Object).Radius()
	})
	if !ok {
		return false
	}
	o := it.(*scene.Object)
	c.demo.Selected = o
	logger.Debug("object selected",
		zap.String("name", o.Name),
		zap.Float32("distance", dist))
	return true
}
