package renderer

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/lumen/internal/engine/geometry"
	"github.com/Faultbox/lumen/internal/engine/gpu"
	"github.com/Faultbox/lumen/internal/engine/material"
	"github.com/Faultbox/lumen/internal/engine/scene"
	"github.com/Faultbox/lumen/internal/engine/shader"
)

func (r *Renderer) renderPerObject(s *scene.Scene, p shader.Params) {
	eye := s.Camera().Position()
	for _, o := range s.Objects() {
		if !r.drawObject(o, p, eye) {
			r.stats.ObjectsSkipped++
		}
	}
}

// drawObject submits one object. It reports false when the object was
// skipped: hidden, culled, empty or its material failed to build.
func (r *Renderer) drawObject(o *scene.Object, p shader.Params, eye mgl32.Vec3) bool {
	if !o.Drawable() || o.Geometry == nil || o.Material == nil || o.Geometry.NumElements() == 0 {
		return false
	}
	m := o.Material
	if err := m.MakePrograms(r.dev, p); err != nil {
		return false
	}

	g := o.Geometry
	r.uploadGeometry(g)

	o.ForceUpdate()
	o.Distance = o.Position().Sub(eye).Len()

	r.use(m.Program())
	b := m.Bindings()
	r.bindAttributes(b, g.VertexBuffer, g.NormalBuffer)
	r.dev.BindBuffer(gpu.ElementArrayBuffer, g.ElementBuffer)
	r.setUniforms(m, b, o.ModelMatrix(), o.Distance)
	r.draw(m.Primitive(), g.NumElements())

	r.stats.ObjectsDrawn++
	return true
}

// uploadGeometry creates the geometry's buffers the first time it is drawn.
func (r *Renderer) uploadGeometry(g *geometry.Geometry) {
	if g.Uploaded() {
		return
	}
	g.VertexBuffer = r.createStatic(gpu.ArrayBuffer, gpu.Float32s(g.Vertices))
	if g.NumNormals() > 0 {
		g.NormalBuffer = r.createStatic(gpu.ArrayBuffer, gpu.Float32s(g.Normals))
	}
	g.ElementBuffer = r.createStatic(gpu.ElementArrayBuffer, gpu.Uint16s(g.Elements))
}

func (r *Renderer) createStatic(target gpu.BufferTarget, data []byte) gpu.Handle {
	r.stats.BufferUploads++
	return r.dev.CreateBuffer(target, data, len(data), gpu.StaticDraw)
}

func (r *Renderer) bindAttributes(b material.Bindings, vertices, normals gpu.Handle) {
	if b.Position >= 0 {
		r.dev.BindBuffer(gpu.ArrayBuffer, vertices)
		r.dev.VertexAttrib(b.Position, 3, gpu.Float, 0)
	}
	if b.Normal >= 0 {
		if normals == 0 {
			r.dev.DisableVertexAttrib(b.Normal)
		} else {
			r.dev.BindBuffer(gpu.ArrayBuffer, normals)
			r.dev.VertexAttrib(b.Normal, 3, gpu.Float, 0)
		}
	}
}

func (r *Renderer) setUniforms(m *material.Material, b material.Bindings, model mgl32.Mat4, distance float32) {
	if b.ModelMatrix >= 0 {
		r.dev.UniformMatrix4(b.ModelMatrix, model)
	}
	if b.DistanceToCamera >= 0 {
		r.dev.Uniform1f(b.DistanceToCamera, distance)
	}
	if b.DiffuseColor >= 0 {
		r.dev.Uniform4f(b.DiffuseColor, m.Diffuse)
	}
	if b.SpecularColor >= 0 {
		r.dev.Uniform4f(b.SpecularColor, m.Specular)
	}
	if b.Shininess >= 0 {
		r.dev.Uniform1f(b.Shininess, m.Shininess)
	}
	if b.PointSize >= 0 {
		r.dev.Uniform1f(b.PointSize, m.PointSize)
	}
}

func (r *Renderer) draw(mode gpu.Primitive, count int) {
	if mode == gpu.Patches {
		r.dev.PatchVertices(3)
	}
	r.dev.DrawElements(mode, count, 0)
	r.stats.DrawCalls++
}
