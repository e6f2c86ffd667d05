// Package material holds shading-model configuration and the program cache
// that compiles it against a scene's shader parameters.
package material

import (
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/lumen/internal/engine/gpu"
	"github.com/Faultbox/lumen/internal/engine/shader"
	"github.com/Faultbox/lumen/internal/logger"
)

// Bindings are the locations resolved from a linked program. Inactive
// names resolve to -1.
type Bindings struct {
	Position int32
	Normal   int32
	DrawID   int32

	ModelMatrix      int32
	DistanceToCamera int32
	DiffuseColor     int32
	SpecularColor    int32
	Shininess        int32
	PointSize        int32

	// Blocks lists the binding points the program declares.
	Blocks map[gpu.Binding]bool
}

var uniformBlocks = map[string]gpu.Binding{
	"globalMatrices":    gpu.BindGlobalMatrices,
	"directionalLights": gpu.BindDirectionalLights,
	"ambientLight":      gpu.BindAmbientLight,
	"pointLights":       gpu.BindPointLights,
	"materials":         gpu.BindMaterials,
}

var storageBlocks = map[string]gpu.Binding{
	"modelMatrices": gpu.BindModelMatrices,
	"indices":       gpu.BindIndices,
}

// Material is a shading model plus its colors, shared by any number of
// objects. The program is built lazily by MakePrograms.
type Material struct {
	Name      string
	Diffuse   mgl32.Vec4
	Specular  mgl32.Vec4
	Shininess float32
	PointSize float32

	// SceneIndex is the material's slot in the scene, used by the batched
	// materials block.
	SceneIndex int

	kind     Kind
	program  gpu.Handle
	params   shader.Params
	built    bool // params hold the configuration of the last build attempt
	err      error
	bindings Bindings
	retired  []gpu.Handle
}

// New creates a material with the defaults of its kind.
func New(kind Kind) *Material {
	m := &Material{
		Name:      kind.String(),
		Diffuse:   mgl32.Vec4{0.8, 0.8, 0.8, 1},
		Specular:  mgl32.Vec4{0.5, 0.5, 0.5, 1},
		Shininess: 32,
		PointSize: 4,
		kind:      kind,
	}
	switch kind {
	case Basic, Point:
		m.Specular = mgl32.Vec4{0, 0, 0, 1}
	case Line:
		m.Diffuse = mgl32.Vec4{0, 0, 0, 1}
		m.Specular = mgl32.Vec4{0, 0, 0, 1}
	case Cel:
		m.Shininess = 16
	}
	return m
}

// SetDiffuse sets the diffuse color.
func (m *Material) SetDiffuse(r, g, b float32) *Material {
	m.Diffuse = mgl32.Vec4{r, g, b, m.Diffuse[3]}
	return m
}

// SetSpecular sets the specular color.
func (m *Material) SetSpecular(r, g, b float32) *Material {
	m.Specular = mgl32.Vec4{r, g, b, m.Specular[3]}
	return m
}

// SetShininess sets the Blinn-Phong exponent.
func (m *Material) SetShininess(s float32) *Material {
	m.Shininess = s
	return m
}

// Kind returns the shading model.
func (m *Material) Kind() Kind { return m.kind }

// Primitive returns the draw topology of the material.
func (m *Material) Primitive() gpu.Primitive { return m.kind.Primitive() }

// Program returns the current program, zero when none is built.
func (m *Material) Program() gpu.Handle { return m.program }

// Params returns the configuration of the last build attempt.
func (m *Material) Params() shader.Params { return m.params }

// Bindings returns the resolved locations of the current program.
func (m *Material) Bindings() Bindings { return m.bindings }

// Err returns the failure of the last build attempt, if any.
func (m *Material) Err() error { return m.err }

// Usable reports whether objects using the material can be drawn.
func (m *Material) Usable() bool {
	return m.program != 0 && m.err == nil
}

// MakePrograms builds the program for p. It is a no-op when the last
// attempt used the same parameters, whether it succeeded or failed.
// Otherwise the program is rebuilt and the previous one is retired until
// ReleaseRetired.
func (m *Material) MakePrograms(dev gpu.Device, p shader.Params) error {
	if m.built && m.params == p {
		return m.err
	}
	m.built = true
	m.params = p
	m.retire()

	v := variants[m.kind]
	prog, err := shader.Build(dev, v.sources, p)
	if err != nil {
		m.err = err
		logger.Error("material program failed",
			zap.String("material", m.Name),
			zap.Stringer("kind", m.kind),
			zap.Error(err))
		return err
	}
	m.err = nil
	m.program = prog
	m.resolve(dev, v)

	logger.Debug("material program built",
		zap.String("material", m.Name),
		zap.Stringer("kind", m.kind),
		zap.Uint32("program", uint32(prog)),
		zap.Int("dir_lights", p.NumDirLights),
		zap.Int("point_lights", p.NumPointLights),
		zap.Int("objects", p.NumObjects),
		zap.Bool("batched", p.Batched))
	return nil
}

func (m *Material) resolve(dev gpu.Device, v variant) {
	prog := m.program
	b := Bindings{
		Position:         dev.AttribLocation(prog, "position"),
		Normal:           dev.AttribLocation(prog, "normal"),
		DrawID:           dev.AttribLocation(prog, "drawID"),
		ModelMatrix:      dev.UniformLocation(prog, "modelMatrix"),
		DistanceToCamera: dev.UniformLocation(prog, "distanceToCamera"),
		DiffuseColor:     dev.UniformLocation(prog, "diffuseColor"),
		SpecularColor:    dev.UniformLocation(prog, "specularColor"),
		Shininess:        dev.UniformLocation(prog, "shininess"),
		PointSize:        -1,
		Blocks:           make(map[gpu.Binding]bool),
	}
	for name, binding := range uniformBlocks {
		if dev.BindUniformBlock(prog, name, binding) {
			b.Blocks[binding] = true
		}
	}
	for name, binding := range storageBlocks {
		if dev.BindStorageBlock(prog, name, binding) {
			b.Blocks[binding] = true
		}
	}
	if v.resolve != nil {
		v.resolve(dev, prog, &b)
	}
	m.bindings = b
}

func (m *Material) retire() {
	if m.program != 0 {
		m.retired = append(m.retired, m.program)
	}
	m.program = 0
	m.bindings = Bindings{}
}

// Retired returns programs replaced by a rebuild and not yet released.
func (m *Material) Retired() []gpu.Handle {
	return m.retired
}

// ReleaseRetired deletes replaced programs. Call it once the frame that may
// still reference them has been submitted.
func (m *Material) ReleaseRetired(dev gpu.Device) int {
	n := len(m.retired)
	for _, prog := range m.retired {
		dev.DeleteProgram(prog)
	}
	m.retired = m.retired[:0]
	return n
}

// Release deletes every program the material owns and forgets its build
// state, so a later MakePrograms starts over.
func (m *Material) Release(dev gpu.Device) {
	m.retire()
	m.ReleaseRetired(dev)
	m.built = false
	m.err = nil
	m.params = shader.Params{}
}
