package renderer

import (
	"slices"

	"go.uber.org/zap"

	"github.com/Faultbox/lumen/internal/engine/geometry"
	"github.com/Faultbox/lumen/internal/engine/gpu"
	"github.com/Faultbox/lumen/internal/engine/material"
	"github.com/Faultbox/lumen/internal/engine/scene"
	"github.com/Faultbox/lumen/internal/engine/shader"
	"github.com/Faultbox/lumen/internal/logger"
)

// Block strides of the batched path.
const (
	ModelMatrixStride = 64 // std430 mat4
	IndicesStride     = 16 // std430 {int materialIndex; int visible; float distance; float pad}
	MaterialStride    = 48 // std140 {vec4 diffuse; vec4 specular; float shininess}
)

// batch is the shared state of the batched path. Geometry buffers follow
// the scene's geometry list; the per-object buffers follow the object and
// material counts.
type batch struct {
	geoms []*geometry.Geometry

	vertices gpu.Handle
	normals  gpu.Handle
	elements gpu.Handle

	drawIDs   gpu.Handle
	indirect  gpu.Handle
	models    gpu.Handle
	indices   gpu.Handle
	materials gpu.Handle

	objects      int
	numMaterials int
}

func (b *batch) buffers() []*gpu.Handle {
	return []*gpu.Handle{
		&b.vertices, &b.normals, &b.elements,
		&b.drawIDs, &b.indirect, &b.models, &b.indices, &b.materials,
	}
}

func (r *Renderer) renderBatched(s *scene.Scene, p shader.Params) {
	objs := s.Objects()
	mats := s.Materials()
	if len(objs) == 0 {
		return
	}
	if len(mats) == 0 {
		r.stats.ObjectsSkipped = len(objs)
		return
	}
	m := mats[0]
	if err := m.MakePrograms(r.dev, p); err != nil {
		r.stats.ObjectsSkipped = len(objs)
		return
	}

	repacked := r.packGeometry(s.Geometries())
	b := &r.batch
	if repacked || b.objects != len(objs) || b.numMaterials != len(mats) {
		r.rebuildBatch(objs, mats)
	}
	r.refreshBatch(s, objs, mats)

	r.dev.BindBufferRange(gpu.ShaderStorageBuffer, gpu.BindModelMatrices, b.models, 0, len(objs)*ModelMatrixStride)
	r.dev.BindBufferRange(gpu.ShaderStorageBuffer, gpu.BindIndices, b.indices, 0, len(objs)*IndicesStride)
	r.dev.BindBufferRange(gpu.UniformBuffer, gpu.BindMaterials, b.materials, 0, len(mats)*MaterialStride)

	r.use(m.Program())
	bind := m.Bindings()
	r.bindAttributes(bind, b.vertices, b.normals)
	if bind.DrawID >= 0 {
		r.dev.BindBuffer(gpu.ArrayBuffer, b.drawIDs)
		r.dev.VertexAttrib(bind.DrawID, 1, gpu.Int, 1)
	}
	if bind.PointSize >= 0 {
		r.dev.Uniform1f(bind.PointSize, m.PointSize)
	}
	r.dev.BindBuffer(gpu.ElementArrayBuffer, b.elements)
	r.dev.BindBuffer(gpu.DrawIndirectBuffer, b.indirect)

	mode := m.Primitive()
	if mode == gpu.Patches {
		r.dev.PatchVertices(3)
	}
	r.dev.MultiDrawElementsIndirect(mode, len(objs))
	r.stats.DrawCalls++
}

// packGeometry concatenates the scene geometry into the shared buffers. It
// reports whether the buffers were rebuilt.
func (r *Renderer) packGeometry(geoms []*geometry.Geometry) bool {
	b := &r.batch
	if b.vertices != 0 && slices.Equal(b.geoms, geoms) {
		return false
	}
	for _, h := range []*gpu.Handle{&b.vertices, &b.normals, &b.elements} {
		if *h != 0 {
			r.dev.DeleteBuffer(*h)
			*h = 0
		}
	}

	packed := geometry.Pack(geoms)
	b.vertices = r.createStatic(gpu.ArrayBuffer, gpu.Float32s(packed.Vertices))
	b.normals = r.createStatic(gpu.ArrayBuffer, gpu.Float32s(packed.Normals))
	b.elements = r.createStatic(gpu.ElementArrayBuffer, gpu.Uint16s(packed.Elements))
	b.geoms = slices.Clone(geoms)

	logger.Debug("geometry packed",
		zap.Int("geometries", len(geoms)),
		zap.Int("vertices", packed.NumVertices()),
		zap.Int("elements", len(packed.Elements)))
	return true
}

// rebuildBatch recreates the buffers sized by object and material count.
// Draw IDs and indirect commands only change here.
func (r *Renderer) rebuildBatch(objs []*scene.Object, mats []*material.Material) {
	b := &r.batch
	for _, h := range []*gpu.Handle{&b.drawIDs, &b.indirect, &b.models, &b.indices, &b.materials} {
		if *h != 0 {
			r.dev.DeleteBuffer(*h)
			*h = 0
		}
	}

	ids := gpu.NewBlock(len(objs) * 4)
	cmds := make([]gpu.IndirectCommand, len(objs))
	for i, o := range objs {
		ids.Int(int32(i))
		cmds[i] = gpu.IndirectCommand{InstanceCount: 1, BaseInstance: uint32(i)}
		if g := o.Geometry; g != nil {
			cmds[i].Count = uint32(g.NumElements())
			cmds[i].FirstIndex = uint32(g.IndexOffset)
			cmds[i].BaseVertex = int32(g.VertexOffset)
		}
	}
	b.drawIDs = r.createStatic(gpu.ArrayBuffer, ids.Bytes())
	b.indirect = r.createStatic(gpu.DrawIndirectBuffer, gpu.EncodeIndirect(cmds))

	b.models = r.createDynamic(gpu.ShaderStorageBuffer, len(objs)*ModelMatrixStride)
	b.indices = r.createDynamic(gpu.ShaderStorageBuffer, len(objs)*IndicesStride)
	b.materials = r.createDynamic(gpu.UniformBuffer, len(mats)*MaterialStride)

	b.objects = len(objs)
	b.numMaterials = len(mats)

	logger.Debug("batch buffers rebuilt",
		zap.Int("objects", len(objs)),
		zap.Int("materials", len(mats)))
}

func (r *Renderer) createDynamic(target gpu.BufferTarget, size int) gpu.Handle {
	r.stats.BufferUploads++
	return r.dev.CreateBuffer(target, nil, size, gpu.DynamicDraw)
}

// refreshBatch rewrites the per-frame blocks: model matrices, per-object
// indices and material colors.
func (r *Renderer) refreshBatch(s *scene.Scene, objs []*scene.Object, mats []*material.Material) {
	eye := s.Camera().Position()
	models := gpu.NewBlock(len(objs) * ModelMatrixStride)
	indices := gpu.NewBlock(len(objs) * IndicesStride)

	for _, o := range objs {
		o.ForceUpdate()
		o.Distance = o.Position().Sub(eye).Len()
		models.Mat4(o.ModelMatrix())

		var matIndex, visible int32
		if o.Material != nil {
			matIndex = int32(o.Material.SceneIndex)
		}
		if o.Drawable() && o.Geometry != nil {
			visible = 1
			r.stats.ObjectsDrawn++
		} else {
			r.stats.ObjectsSkipped++
		}
		indices.Int(matIndex).Int(visible).Float(o.Distance).Pad(4)
	}

	colors := gpu.NewBlock(len(mats) * MaterialStride)
	for _, m := range mats {
		colors.Vec4(m.Diffuse).Vec4(m.Specular).Float(m.Shininess).Align(16)
	}

	b := &r.batch
	r.dev.UpdateBuffer(gpu.ShaderStorageBuffer, b.models, 0, models.Bytes())
	r.dev.UpdateBuffer(gpu.ShaderStorageBuffer, b.indices, 0, indices.Bytes())
	r.dev.UpdateBuffer(gpu.UniformBuffer, b.materials, 0, colors.Bytes())
}
