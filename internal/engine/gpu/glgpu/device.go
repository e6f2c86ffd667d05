// Package glgpu implements gpu.Device on OpenGL 4.3 core.
package glgpu

import (
	"fmt"
	"strings"
	"unsafe"

	"github.com/go-gl/gl/v4.3-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/lumen/internal/engine/gpu"
	"github.com/Faultbox/lumen/internal/logger"
)

// Indirect multi-draw and storage blocks need 4.3.
const (
	minMajor = 4
	minMinor = 3
)

// Device issues gpu.Device commands to the current OpenGL context.
type Device struct {
	Version  string
	Renderer string
}

var _ gpu.Device = (*Device)(nil)

// New loads GL entry points.
// IMPORTANT: Must be called AFTER the OpenGL context is created and made current!
func New() (*Device, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	d := &Device{
		Version:  gl.GoStr(gl.GetString(gl.VERSION)),
		Renderer: gl.GoStr(gl.GetString(gl.RENDERER)),
	}

	var major, minor int32
	gl.GetIntegerv(gl.MAJOR_VERSION, &major)
	gl.GetIntegerv(gl.MINOR_VERSION, &minor)
	if major < minMajor || (major == minMajor && minor < minMinor) {
		return nil, fmt.Errorf("OpenGL %d.%d required, context provides %d.%d", minMajor, minMinor, major, minor)
	}

	logger.Info("OpenGL initialized",
		zap.String("version", d.Version),
		zap.String("renderer", d.Renderer),
	)
	return d, nil
}

// Setup enables the fixed pipeline state used by the forward renderer.
func (d *Device) Setup(multisample bool) {
	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LEQUAL)
	gl.Enable(gl.PROGRAM_POINT_SIZE)
	gl.Enable(gl.LINE_SMOOTH)
	gl.Hint(gl.LINE_SMOOTH_HINT, gl.NICEST)
	if multisample {
		gl.Enable(gl.MULTISAMPLE)
	}
}

// Viewport resizes the default framebuffer viewport.
func (d *Device) Viewport(width, height int) {
	gl.Viewport(0, 0, int32(width), int32(height))
}

// Clear clears color and depth.
func (d *Device) Clear(color [4]float32) {
	gl.ClearColor(color[0], color[1], color[2], color[3])
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

// ReadPixels reads the default framebuffer as RGBA, bottom row first.
func (d *Device) ReadPixels(width, height int) []byte {
	pixels := make([]byte, width*height*4)
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(0, 0, int32(width), int32(height), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))
	return pixels
}

func (d *Device) CreateVertexArray() gpu.Handle {
	var vao uint32
	gl.GenVertexArrays(1, &vao)
	return gpu.Handle(vao)
}

func (d *Device) BindVertexArray(vao gpu.Handle) {
	gl.BindVertexArray(uint32(vao))
}

func (d *Device) DeleteVertexArray(vao gpu.Handle) {
	v := uint32(vao)
	gl.DeleteVertexArrays(1, &v)
}

func (d *Device) CreateBuffer(target gpu.BufferTarget, data []byte, size int, usage gpu.Usage) gpu.Handle {
	var buf uint32
	gl.GenBuffers(1, &buf)
	gl.BindBuffer(glTarget(target), buf)
	gl.BufferData(glTarget(target), size, ptr(data), glUsage(usage))

	logger.Debug("buffer created",
		zap.Uint32("buffer", buf),
		zap.Stringer("target", target),
		zap.Int("size", size),
	)
	return gpu.Handle(buf)
}

func (d *Device) UpdateBuffer(target gpu.BufferTarget, buf gpu.Handle, offset int, data []byte) {
	if len(data) == 0 {
		return
	}
	gl.BindBuffer(glTarget(target), uint32(buf))
	gl.BufferSubData(glTarget(target), offset, len(data), ptr(data))
}

func (d *Device) BindBuffer(target gpu.BufferTarget, buf gpu.Handle) {
	gl.BindBuffer(glTarget(target), uint32(buf))
}

func (d *Device) BindBufferRange(target gpu.BufferTarget, binding gpu.Binding, buf gpu.Handle, offset, size int) {
	gl.BindBufferRange(glTarget(target), uint32(binding), uint32(buf), offset, size)
}

func (d *Device) DeleteBuffer(buf gpu.Handle) {
	b := uint32(buf)
	gl.DeleteBuffers(1, &b)
}

func (d *Device) CompileShader(stage gpu.Stage, source string) (gpu.Handle, error) {
	shader := gl.CreateShader(glStage(stage))
	csource, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csource, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLen)
		log := strings.Repeat("\x00", int(logLen+1))
		gl.GetShaderInfoLog(shader, logLen, nil, gl.Str(log))
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("%s shader: %s", stage, strings.TrimRight(log, "\x00"))
	}
	return gpu.Handle(shader), nil
}

func (d *Device) DeleteShader(sh gpu.Handle) {
	gl.DeleteShader(uint32(sh))
}

func (d *Device) LinkProgram(shaders ...gpu.Handle) (gpu.Handle, error) {
	program := gl.CreateProgram()
	for _, sh := range shaders {
		gl.AttachShader(program, uint32(sh))
	}
	gl.LinkProgram(program)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLen)
		log := strings.Repeat("\x00", int(logLen+1))
		gl.GetProgramInfoLog(program, logLen, nil, gl.Str(log))
		gl.DeleteProgram(program)
		return 0, fmt.Errorf("link: %s", strings.TrimRight(log, "\x00"))
	}

	for _, sh := range shaders {
		gl.DetachShader(program, uint32(sh))
	}
	return gpu.Handle(program), nil
}

func (d *Device) DeleteProgram(prog gpu.Handle) {
	gl.DeleteProgram(uint32(prog))
}

func (d *Device) UseProgram(prog gpu.Handle) {
	gl.UseProgram(uint32(prog))
}

func (d *Device) AttribLocation(prog gpu.Handle, name string) int32 {
	return gl.GetAttribLocation(uint32(prog), gl.Str(name+"\x00"))
}

func (d *Device) UniformLocation(prog gpu.Handle, name string) int32 {
	return gl.GetUniformLocation(uint32(prog), gl.Str(name+"\x00"))
}

func (d *Device) BindUniformBlock(prog gpu.Handle, name string, binding gpu.Binding) bool {
	idx := gl.GetUniformBlockIndex(uint32(prog), gl.Str(name+"\x00"))
	if idx == gl.INVALID_INDEX {
		return false
	}
	gl.UniformBlockBinding(uint32(prog), idx, uint32(binding))
	return true
}

func (d *Device) BindStorageBlock(prog gpu.Handle, name string, binding gpu.Binding) bool {
	idx := gl.GetProgramResourceIndex(uint32(prog), gl.SHADER_STORAGE_BLOCK, gl.Str(name+"\x00"))
	if idx == gl.INVALID_INDEX {
		return false
	}
	gl.ShaderStorageBlockBinding(uint32(prog), idx, uint32(binding))
	return true
}

func (d *Device) VertexAttrib(loc int32, components int, typ gpu.AttribType, divisor uint32) {
	if loc < 0 {
		return
	}
	index := uint32(loc)
	switch typ {
	case gpu.Int:
		gl.VertexAttribIPointer(index, int32(components), gl.INT, 0, nil)
	default:
		gl.VertexAttribPointer(index, int32(components), gl.FLOAT, false, 0, nil)
	}
	gl.EnableVertexAttribArray(index)
	gl.VertexAttribDivisor(index, divisor)
}

func (d *Device) DisableVertexAttrib(loc int32) {
	if loc < 0 {
		return
	}
	gl.DisableVertexAttribArray(uint32(loc))
}

func (d *Device) UniformMatrix4(loc int32, m mgl32.Mat4) {
	gl.UniformMatrix4fv(loc, 1, false, &m[0])
}

func (d *Device) Uniform4f(loc int32, v mgl32.Vec4) {
	gl.Uniform4fv(loc, 1, &v[0])
}

func (d *Device) Uniform1f(loc int32, v float32) {
	gl.Uniform1f(loc, v)
}

func (d *Device) PatchVertices(n int) {
	gl.PatchParameteri(gl.PATCH_VERTICES, int32(n))
}

func (d *Device) DrawElements(mode gpu.Primitive, count int, firstIndex int) {
	gl.DrawElementsWithOffset(glPrimitive(mode), int32(count), gl.UNSIGNED_SHORT, uintptr(firstIndex*2))
}

func (d *Device) MultiDrawElementsIndirect(mode gpu.Primitive, drawCount int) {
	gl.MultiDrawElementsIndirect(glPrimitive(mode), gl.UNSIGNED_SHORT, nil, int32(drawCount), gpu.IndirectCommandSize)
}

func ptr(data []byte) unsafe.Pointer {
	if len(data) == 0 {
		return nil
	}
	return gl.Ptr(data)
}

func glTarget(t gpu.BufferTarget) uint32 {
	switch t {
	case gpu.ElementArrayBuffer:
		return gl.ELEMENT_ARRAY_BUFFER
	case gpu.UniformBuffer:
		return gl.UNIFORM_BUFFER
	case gpu.ShaderStorageBuffer:
		return gl.SHADER_STORAGE_BUFFER
	case gpu.DrawIndirectBuffer:
		return gl.DRAW_INDIRECT_BUFFER
	default:
		return gl.ARRAY_BUFFER
	}
}

func glUsage(u gpu.Usage) uint32 {
	switch u {
	case gpu.DynamicDraw:
		return gl.DYNAMIC_DRAW
	case gpu.StreamDraw:
		return gl.STREAM_DRAW
	default:
		return gl.STATIC_DRAW
	}
}

func glStage(s gpu.Stage) uint32 {
	switch s {
	case gpu.TessControlStage:
		return gl.TESS_CONTROL_SHADER
	case gpu.TessEvaluationStage:
		return gl.TESS_EVALUATION_SHADER
	case gpu.FragmentStage:
		return gl.FRAGMENT_SHADER
	default:
		return gl.VERTEX_SHADER
	}
}

func glPrimitive(p gpu.Primitive) uint32 {
	switch p {
	case gpu.Patches:
		return gl.PATCHES
	case gpu.Points:
		return gl.POINTS
	case gpu.Lines:
		return gl.LINES
	default:
		return gl.TRIANGLES
	}
}
