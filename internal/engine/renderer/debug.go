package renderer

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/lumen/internal/engine/gpu"
	"github.com/Faultbox/lumen/internal/engine/material"
	"github.com/Faultbox/lumen/internal/engine/scene"
)

// debugMesh holds the buffers of the octree outline. They are rewritten in
// place while the node count is unchanged.
type debugMesh struct {
	mat          *material.Material
	vertices     gpu.Handle
	elements     gpu.Handle
	vertexSize   int
	elementSize  int
	elementCount int
}

// RenderOctree draws the outline of every octree node with mat, which
// should be a Line material. Call it after Render in the same frame so the
// scene blocks are bound.
func (r *Renderer) RenderOctree(s *scene.Scene, mat *material.Material) {
	if !s.HasOctree() || mat == nil {
		return
	}
	mesh := s.Octree().TreeMesh()
	if mesh == nil || mesh.NumElements() == 0 {
		return
	}
	if err := mat.MakePrograms(r.dev, r.params(s, false)); err != nil {
		return
	}

	d := &r.debug
	d.mat = mat
	d.vertices, d.vertexSize = r.writeDebug(gpu.ArrayBuffer, d.vertices, d.vertexSize, gpu.Float32s(mesh.Vertices))
	d.elements, d.elementSize = r.writeDebug(gpu.ElementArrayBuffer, d.elements, d.elementSize, gpu.Uint16s(mesh.Elements))
	d.elementCount = mesh.NumElements()

	r.use(mat.Program())
	b := mat.Bindings()
	r.bindAttributes(b, d.vertices, 0)
	r.dev.BindBuffer(gpu.ElementArrayBuffer, d.elements)
	r.setUniforms(mat, b, mgl32.Ident4(), 0)
	r.draw(gpu.Lines, d.elementCount)

	mat.ReleaseRetired(r.dev)
}

func (r *Renderer) writeDebug(target gpu.BufferTarget, buf gpu.Handle, size int, data []byte) (gpu.Handle, int) {
	if buf != 0 && size == len(data) {
		r.dev.UpdateBuffer(target, buf, 0, data)
		return buf, size
	}
	if buf != 0 {
		r.dev.DeleteBuffer(buf)
	}
	r.stats.BufferUploads++
	return r.dev.CreateBuffer(target, data, len(data), gpu.DynamicDraw), len(data)
}
