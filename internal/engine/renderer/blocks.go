package renderer

import (
	"go.uber.org/zap"

	"github.com/Faultbox/lumen/internal/engine/gpu"
	"github.com/Faultbox/lumen/internal/engine/lighting"
	"github.com/Faultbox/lumen/internal/engine/scene"
	"github.com/Faultbox/lumen/internal/engine/shader"
	"github.com/Faultbox/lumen/internal/logger"
)

// uploadBlocks refreshes the uniform blocks shared by every program.
// Lights are stored in view space, so they are repacked every frame; the
// camera block is only rewritten when the camera changed.
func (r *Renderer) uploadBlocks(s *scene.Scene, p shader.Params) {
	h := s.Handles()
	cam := s.Camera()
	view := cam.ViewMatrix()

	matrices := cam.Matrices()
	if cam.Dirty() || h.GlobalMatrices.Empty() {
		r.uploadSlot(&h.GlobalMatrices, gpu.BindGlobalMatrices, gpu.Float32s(matrices[:]))
		cam.MarkClean()
	} else {
		r.bindSlot(&h.GlobalMatrices, gpu.BindGlobalMatrices)
	}

	r.uploadSlot(&h.AmbientLight, gpu.BindAmbientLight, lighting.PackAmbient(s.AmbientLight()))

	dirs := s.DirectionalLights()
	r.uploadSlot(&h.DirectionalLights, gpu.BindDirectionalLights,
		lighting.PackDirectional(dirs[:p.NumDirLights], view))

	points := s.PointLights()
	r.uploadSlot(&h.PointLights, gpu.BindPointLights,
		lighting.PackPoint(points[:p.NumPointLights], view))
}

// uploadSlot writes data into the slot's buffer, creating it on first use
// and recreating it when the size changes. Empty data drops the buffer:
// programs built without that light kind do not declare the block.
func (r *Renderer) uploadSlot(slot *scene.Slot, binding gpu.Binding, data []byte) {
	if len(data) == 0 {
		if !slot.Empty() {
			r.dev.DeleteBuffer(slot.Buffer)
			*slot = scene.Slot{}
		}
		return
	}

	if slot.Empty() || slot.Size != len(data) {
		if !slot.Empty() {
			r.dev.DeleteBuffer(slot.Buffer)
		}
		slot.Buffer = r.dev.CreateBuffer(gpu.UniformBuffer, data, len(data), gpu.DynamicDraw)
		slot.Size = len(data)
		r.stats.BufferUploads++
		logger.Debug("block buffer created",
			zap.Uint32("binding", uint32(binding)),
			zap.Int("size", len(data)))
	} else {
		r.dev.UpdateBuffer(gpu.UniformBuffer, slot.Buffer, 0, data)
	}
	r.bindSlot(slot, binding)
}

func (r *Renderer) bindSlot(slot *scene.Slot, binding gpu.Binding) {
	r.dev.BindBufferRange(gpu.UniformBuffer, binding, slot.Buffer, 0, slot.Size)
}
