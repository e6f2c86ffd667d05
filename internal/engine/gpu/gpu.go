// Package gpu defines the boundary between the engine and the graphics API.
//
// Everything above this package talks to a Device; the OpenGL implementation
// lives in gpu/glgpu and a recording implementation for tests in gpu/gputest.
// All Device calls must be made from the thread that owns the GL context.
package gpu

import "github.com/go-gl/mathgl/mgl32"

// Handle is an opaque GPU object name. Zero means "not created".
type Handle uint32

// BufferTarget selects the binding target of a buffer object.
type BufferTarget int

const (
	ArrayBuffer BufferTarget = iota
	ElementArrayBuffer
	UniformBuffer
	ShaderStorageBuffer
	DrawIndirectBuffer
)

var targetNames = [...]string{"array", "element", "uniform", "storage", "indirect"}

func (t BufferTarget) String() string {
	if int(t) < len(targetNames) {
		return targetNames[t]
	}
	return "unknown"
}

// Usage is the buffer usage hint.
type Usage int

const (
	StaticDraw Usage = iota
	DynamicDraw
	StreamDraw
)

// Stage is a programmable pipeline stage.
type Stage int

const (
	VertexStage Stage = iota
	TessControlStage
	TessEvaluationStage
	FragmentStage
)

var stageNames = [...]string{"vertex", "tess control", "tess evaluation", "fragment"}

func (s Stage) String() string {
	if int(s) < len(stageNames) {
		return stageNames[s]
	}
	return "unknown"
}

// Primitive is the draw topology.
type Primitive int

const (
	Triangles Primitive = iota
	Patches
	Points
	Lines
)

// AttribType is the component type of a vertex attribute.
type AttribType int

const (
	Float AttribType = iota
	Int
)

// Binding is a well-known uniform/storage block binding point shared by
// every program, so any program works with the same per-frame uploads.
type Binding uint32

const (
	BindGlobalMatrices Binding = iota
	BindDirectionalLights
	BindAmbientLight
	BindPointLights
	BindModelMatrices
	BindMaterials
	BindIndices
)

// Device is the retained-mode command interface the engine renders through.
type Device interface {
	CreateVertexArray() Handle
	BindVertexArray(vao Handle)
	DeleteVertexArray(vao Handle)

	// CreateBuffer allocates size bytes and uploads data when it is non-nil.
	// The new buffer is left bound to target.
	CreateBuffer(target BufferTarget, data []byte, size int, usage Usage) Handle
	// UpdateBuffer replaces a sub-range of an existing buffer.
	UpdateBuffer(target BufferTarget, buf Handle, offset int, data []byte)
	BindBuffer(target BufferTarget, buf Handle)
	BindBufferRange(target BufferTarget, binding Binding, buf Handle, offset, size int)
	DeleteBuffer(buf Handle)

	// CompileShader returns the driver log wrapped in an error on failure.
	CompileShader(stage Stage, source string) (Handle, error)
	DeleteShader(sh Handle)
	// LinkProgram returns the driver log wrapped in an error on failure.
	LinkProgram(shaders ...Handle) (Handle, error)
	DeleteProgram(prog Handle)
	UseProgram(prog Handle)

	// AttribLocation and UniformLocation return -1 for inactive names.
	AttribLocation(prog Handle, name string) int32
	UniformLocation(prog Handle, name string) int32
	// BindUniformBlock and BindStorageBlock return false when the program
	// has no active block of that name.
	BindUniformBlock(prog Handle, name string, binding Binding) bool
	BindStorageBlock(prog Handle, name string, binding Binding) bool

	// VertexAttrib points loc at the buffer currently bound to ArrayBuffer
	// and enables it. A non-zero divisor makes it per-instance.
	VertexAttrib(loc int32, components int, typ AttribType, divisor uint32)
	DisableVertexAttrib(loc int32)

	UniformMatrix4(loc int32, m mgl32.Mat4)
	Uniform4f(loc int32, v mgl32.Vec4)
	Uniform1f(loc int32, v float32)

	PatchVertices(n int)
	// DrawElements draws count uint16 indices starting at firstIndex of the
	// bound element buffer.
	DrawElements(mode Primitive, count int, firstIndex int)
	// MultiDrawElementsIndirect issues drawCount commands from the bound
	// indirect buffer, tightly packed IndirectCommand records.
	MultiDrawElementsIndirect(mode Primitive, drawCount int)
}
