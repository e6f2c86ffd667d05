// Package gputest provides a recording gpu.Device for tests that run
// without a graphics context.
package gputest

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/lumen/internal/engine/gpu"
)

// Buffer is the recorded state of a buffer object.
type Buffer struct {
	Target  gpu.BufferTarget
	Size    int
	Data    []byte
	Updates int
	Deleted bool
}

// Draw is one recorded draw submission.
type Draw struct {
	Program    gpu.Handle
	Mode       gpu.Primitive
	Count      int
	FirstIndex int
	Indirect   bool
}

// Device records every call. Handles are allocated from a single counter so
// they are unique across object kinds, which makes mix-ups visible.
type Device struct {
	next gpu.Handle

	Buffers  map[gpu.Handle]*Buffer
	Shaders  map[gpu.Handle]string
	Programs map[gpu.Handle][]string // linked program -> stage sources
	Deleted  map[gpu.Handle]bool
	VAOs     int
	Compiles int
	Links    int
	Draws    []Draw
	Bindings map[gpu.Binding]gpu.Handle
	Patch    int
	Uniforms map[int32]any
	Current  gpu.Handle
	Enabled  map[int32]bool
	Divisors map[int32]uint32

	// FailCompile makes CompileShader fail for sources containing the string.
	FailCompile string
}

var _ gpu.Device = (*Device)(nil)

// New returns an empty recorder.
func New() *Device {
	return &Device{
		Buffers:  make(map[gpu.Handle]*Buffer),
		Shaders:  make(map[gpu.Handle]string),
		Programs: make(map[gpu.Handle][]string),
		Deleted:  make(map[gpu.Handle]bool),
		Bindings: make(map[gpu.Binding]gpu.Handle),
		Uniforms: make(map[int32]any),
		Enabled:  make(map[int32]bool),
		Divisors: make(map[int32]uint32),
	}
}

func (d *Device) alloc() gpu.Handle {
	d.next++
	return d.next
}

// BuffersOf returns live buffers created for target.
func (d *Device) BuffersOf(target gpu.BufferTarget) []gpu.Handle {
	var out []gpu.Handle
	for h, b := range d.Buffers {
		if b.Target == target && !b.Deleted {
			out = append(out, h)
		}
	}
	return out
}

// LiveBuffers counts buffers not yet deleted.
func (d *Device) LiveBuffers() int {
	n := 0
	for _, b := range d.Buffers {
		if !b.Deleted {
			n++
		}
	}
	return n
}

// LivePrograms counts linked programs not yet deleted.
func (d *Device) LivePrograms() int {
	n := 0
	for h := range d.Programs {
		if !d.Deleted[h] {
			n++
		}
	}
	return n
}

// ResetFrame clears per-frame draw records.
func (d *Device) ResetFrame() {
	d.Draws = d.Draws[:0]
}

func (d *Device) CreateVertexArray() gpu.Handle {
	d.VAOs++
	return d.alloc()
}

func (d *Device) BindVertexArray(gpu.Handle) {}

func (d *Device) DeleteVertexArray(vao gpu.Handle) {
	d.Deleted[vao] = true
}

func (d *Device) CreateBuffer(target gpu.BufferTarget, data []byte, size int, _ gpu.Usage) gpu.Handle {
	h := d.alloc()
	b := &Buffer{Target: target, Size: size, Data: make([]byte, size)}
	copy(b.Data, data)
	d.Buffers[h] = b
	return h
}

func (d *Device) UpdateBuffer(_ gpu.BufferTarget, buf gpu.Handle, offset int, data []byte) {
	b, ok := d.Buffers[buf]
	if !ok {
		panic(fmt.Sprintf("gputest: update of unknown buffer %d", buf))
	}
	if offset+len(data) > b.Size {
		panic(fmt.Sprintf("gputest: update of %d bytes at %d overflows buffer %d of %d bytes", len(data), offset, buf, b.Size))
	}
	copy(b.Data[offset:], data)
	b.Updates++
}

func (d *Device) BindBuffer(gpu.BufferTarget, gpu.Handle) {}

func (d *Device) BindBufferRange(_ gpu.BufferTarget, binding gpu.Binding, buf gpu.Handle, _, _ int) {
	d.Bindings[binding] = buf
}

func (d *Device) DeleteBuffer(buf gpu.Handle) {
	if b, ok := d.Buffers[buf]; ok {
		b.Deleted = true
	}
}

func (d *Device) CompileShader(stage gpu.Stage, source string) (gpu.Handle, error) {
	d.Compiles++
	if d.FailCompile != "" && strings.Contains(source, d.FailCompile) {
		return 0, fmt.Errorf("%s shader: 0:1(1): error: forced failure", stage)
	}
	h := d.alloc()
	d.Shaders[h] = source
	return h, nil
}

func (d *Device) DeleteShader(sh gpu.Handle) {
	d.Deleted[sh] = true
}

func (d *Device) LinkProgram(shaders ...gpu.Handle) (gpu.Handle, error) {
	d.Links++
	h := d.alloc()
	srcs := make([]string, 0, len(shaders))
	for _, sh := range shaders {
		srcs = append(srcs, d.Shaders[sh])
	}
	d.Programs[h] = srcs
	return h, nil
}

func (d *Device) DeleteProgram(prog gpu.Handle) {
	d.Deleted[prog] = true
}

func (d *Device) UseProgram(prog gpu.Handle) {
	d.Current = prog
}

// Source returns the concatenated stage sources of a linked program.
func (d *Device) Source(prog gpu.Handle) string {
	return strings.Join(d.Programs[prog], "\n")
}

var attribs = map[string]int32{"position": 0, "normal": 1, "drawID": 2}

func (d *Device) AttribLocation(prog gpu.Handle, name string) int32 {
	loc, ok := attribs[name]
	if !ok || !d.declares(prog, `in\s+\w+\s+`+name+`\s*;`) {
		return -1
	}
	return loc
}

func (d *Device) UniformLocation(prog gpu.Handle, name string) int32 {
	if !d.declares(prog, `uniform\s+\w+\s+`+name+`\s*;`) {
		return -1
	}
	var loc int32 = 10
	for _, c := range name {
		loc = loc*31 + c
	}
	if loc < 0 {
		loc = -loc
	}
	return loc
}

func (d *Device) BindUniformBlock(prog gpu.Handle, name string, _ gpu.Binding) bool {
	return d.declares(prog, `uniform\s+`+name+`\s*\{`)
}

func (d *Device) BindStorageBlock(prog gpu.Handle, name string, _ gpu.Binding) bool {
	return d.declares(prog, `buffer\s+`+name+`\s*\{`)
}

func (d *Device) declares(prog gpu.Handle, pattern string) bool {
	return regexp.MustCompile(pattern).MatchString(d.Source(prog))
}

func (d *Device) VertexAttrib(loc int32, _ int, _ gpu.AttribType, divisor uint32) {
	if loc < 0 {
		return
	}
	d.Enabled[loc] = true
	d.Divisors[loc] = divisor
}

func (d *Device) DisableVertexAttrib(loc int32) {
	delete(d.Enabled, loc)
}

func (d *Device) UniformMatrix4(loc int32, m mgl32.Mat4) {
	d.Uniforms[loc] = m
}

func (d *Device) Uniform4f(loc int32, v mgl32.Vec4) {
	d.Uniforms[loc] = v
}

func (d *Device) Uniform1f(loc int32, v float32) {
	d.Uniforms[loc] = v
}

func (d *Device) PatchVertices(n int) {
	d.Patch = n
}

func (d *Device) DrawElements(mode gpu.Primitive, count int, firstIndex int) {
	d.Draws = append(d.Draws, Draw{Program: d.Current, Mode: mode, Count: count, FirstIndex: firstIndex})
}

func (d *Device) MultiDrawElementsIndirect(mode gpu.Primitive, drawCount int) {
	d.Draws = append(d.Draws, Draw{Program: d.Current, Mode: mode, Count: drawCount, Indirect: true})
}
