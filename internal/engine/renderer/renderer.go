// Package renderer draws a scene every frame through a gpu.Device.
//
// Per frame it uploads the scene blocks (camera matrices, lights, ambient),
// makes sure every material has a program for the scene's current shader
// parameters, then submits geometry either one draw per object or as a
// single indirect multi-draw over shared buffers.
package renderer

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/lumen/internal/engine/gpu"
	"github.com/Faultbox/lumen/internal/engine/lighting"
	"github.com/Faultbox/lumen/internal/engine/scene"
	"github.com/Faultbox/lumen/internal/engine/shader"
	"github.com/Faultbox/lumen/internal/logger"
)

// Mode selects the draw path.
type Mode int

const (
	// PerObject issues one draw call per visible object.
	PerObject Mode = iota
	// Batched packs all geometry into shared buffers and issues one
	// indirect multi-draw with the first material's program.
	Batched
)

func (m Mode) String() string {
	if m == Batched {
		return "batched"
	}
	return "per_object"
}

// ParseMode accepts the names produced by String.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "per_object", "":
		return PerObject, nil
	case "batched":
		return Batched, nil
	}
	return PerObject, fmt.Errorf("unknown render mode %q", s)
}

// Options configures a renderer.
type Options struct {
	Mode Mode
	// MaxLights caps each light kind; 0 or anything above
	// lighting.MaxLights means lighting.MaxLights.
	MaxLights int
}

// Stats are the counters of the last rendered frame.
type Stats struct {
	Frame            uint64
	DrawCalls        int
	ObjectsDrawn     int
	ObjectsSkipped   int
	BufferUploads    int
	ProgramsReleased int
}

// Renderer holds per-device state that outlives a frame. It must only be
// used from the thread owning the graphics context.
type Renderer struct {
	dev  gpu.Device
	opts Options

	vao     gpu.Handle
	program gpu.Handle // last program passed to UseProgram
	batch   batch
	debug   debugMesh

	frame uint64
	stats Stats
}

// New creates a renderer. No GPU objects are created until the first frame.
func New(dev gpu.Device, opts Options) *Renderer {
	if opts.MaxLights <= 0 || opts.MaxLights > lighting.MaxLights {
		opts.MaxLights = lighting.MaxLights
	}
	return &Renderer{dev: dev, opts: opts}
}

// Options returns the renderer configuration.
func (r *Renderer) Options() Options { return r.opts }

// Stats returns the counters of the last frame.
func (r *Renderer) Stats() Stats { return r.stats }

// Render draws one frame of s.
func (r *Renderer) Render(s *scene.Scene) {
	r.frame++
	r.stats = Stats{Frame: r.frame}
	r.program = 0

	if r.vao == 0 {
		r.vao = r.dev.CreateVertexArray()
	}
	r.dev.BindVertexArray(r.vao)

	cam := s.Camera()
	if s.HasOctree() {
		s.Octree().CalculateVisibility(cam.ViewProjection(), cam.Position())
	}

	p := r.params(s, r.opts.Mode == Batched)
	r.uploadBlocks(s, p)

	switch r.opts.Mode {
	case Batched:
		r.renderBatched(s, p)
	default:
		r.renderPerObject(s, p)
	}

	for _, m := range s.Materials() {
		r.stats.ProgramsReleased += m.ReleaseRetired(r.dev)
	}
}

// params is the scene configuration with the renderer's light cap applied.
func (r *Renderer) params(s *scene.Scene, batched bool) shader.Params {
	p := s.ProgramParams(batched)
	p.NumDirLights = min(p.NumDirLights, r.opts.MaxLights)
	p.NumPointLights = min(p.NumPointLights, r.opts.MaxLights)
	return p
}

func (r *Renderer) use(prog gpu.Handle) {
	if r.program != prog {
		r.dev.UseProgram(prog)
		r.program = prog
	}
}

// Release deletes every GPU resource reachable from the renderer and s:
// geometry buffers, programs, scene blocks and shared batch buffers. The
// scene's collections are left intact.
func (r *Renderer) Release(s *scene.Scene) {
	deleted := 0
	del := func(h *gpu.Handle) {
		if *h != 0 {
			r.dev.DeleteBuffer(*h)
			*h = 0
			deleted++
		}
	}

	for _, g := range s.Geometries() {
		for _, b := range []gpu.Handle{g.VertexBuffer, g.NormalBuffer, g.ElementBuffer} {
			if b != 0 {
				r.dev.DeleteBuffer(b)
				deleted++
			}
		}
		g.ResetBuffers()
	}
	for _, m := range s.Materials() {
		m.Release(r.dev)
	}

	h := s.Handles()
	for _, slot := range []*scene.Slot{&h.GlobalMatrices, &h.DirectionalLights, &h.PointLights, &h.AmbientLight} {
		del(&slot.Buffer)
		slot.Size = 0
	}

	for _, b := range r.batch.buffers() {
		del(b)
	}
	r.batch = batch{}

	if r.debug.mat != nil {
		r.debug.mat.Release(r.dev)
	}
	del(&r.debug.vertices)
	del(&r.debug.elements)
	r.debug = debugMesh{}

	logger.Debug("renderer released scene", zap.Int("buffers", deleted))
}

// Close deletes the vertex array. Call Release for each scene first.
func (r *Renderer) Close() {
	logger.Info("closing renderer")
	if r.vao != 0 {
		r.dev.DeleteVertexArray(r.vao)
		r.vao = 0
	}
}
