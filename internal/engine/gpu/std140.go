package gpu

import (
	"encoding/binary"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Block serializes values into a std140/std430 compatible byte layout.
// Callers are responsible for the padding rules of the block they mirror;
// Align and Pad make that explicit at the call site.
type Block struct {
	buf []byte
}

// NewBlock returns a block with capacity for n bytes.
func NewBlock(n int) *Block {
	return &Block{buf: make([]byte, 0, n)}
}

// Float appends a 4 byte float.
func (b *Block) Float(v float32) *Block {
	b.buf = binary.LittleEndian.AppendUint32(b.buf, math.Float32bits(v))
	return b
}

// Int appends a 4 byte signed integer.
func (b *Block) Int(v int32) *Block {
	b.buf = binary.LittleEndian.AppendUint32(b.buf, uint32(v))
	return b
}

// Uint appends a 4 byte unsigned integer.
func (b *Block) Uint(v uint32) *Block {
	b.buf = binary.LittleEndian.AppendUint32(b.buf, v)
	return b
}

// Vec4 appends a 16 byte vector.
func (b *Block) Vec4(v mgl32.Vec4) *Block {
	for _, c := range v {
		b.Float(c)
	}
	return b
}

// Mat4 appends a column-major matrix.
func (b *Block) Mat4(m mgl32.Mat4) *Block {
	for _, c := range m {
		b.Float(c)
	}
	return b
}

// Pad appends n zero bytes.
func (b *Block) Pad(n int) *Block {
	for i := 0; i < n; i++ {
		b.buf = append(b.buf, 0)
	}
	return b
}

// Align pads the block to a multiple of n bytes.
func (b *Block) Align(n int) *Block {
	if rem := len(b.buf) % n; rem != 0 {
		b.Pad(n - rem)
	}
	return b
}

// Len returns the current size in bytes.
func (b *Block) Len() int {
	return len(b.buf)
}

// Bytes returns the serialized block.
func (b *Block) Bytes() []byte {
	return b.buf
}

// Float32s serializes a float slice, used for vertex data.
func Float32s(v []float32) []byte {
	b := NewBlock(len(v) * 4)
	for _, f := range v {
		b.Float(f)
	}
	return b.Bytes()
}

// Uint16s serializes an index slice.
func Uint16s(v []uint16) []byte {
	out := make([]byte, 0, len(v)*2)
	for _, i := range v {
		out = binary.LittleEndian.AppendUint16(out, i)
	}
	return out
}

// IndirectCommand mirrors DrawElementsIndirectCommand.
type IndirectCommand struct {
	Count         uint32
	InstanceCount uint32
	FirstIndex    uint32
	BaseVertex    int32
	BaseInstance  uint32
}

// IndirectCommandSize is the stride of a packed IndirectCommand.
const IndirectCommandSize = 20

// EncodeIndirect packs commands for a DrawIndirectBuffer.
func EncodeIndirect(cmds []IndirectCommand) []byte {
	b := NewBlock(len(cmds) * IndirectCommandSize)
	for _, c := range cmds {
		b.Uint(c.Count).Uint(c.InstanceCount).Uint(c.FirstIndex).Int(c.BaseVertex).Uint(c.BaseInstance)
	}
	return b.Bytes()
}
