package renderer

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/lumen/internal/engine/geometry"
	"github.com/Faultbox/lumen/internal/engine/gpu"
	"github.com/Faultbox/lumen/internal/engine/gpu/gputest"
	"github.com/Faultbox/lumen/internal/engine/lighting"
	"github.com/Faultbox/lumen/internal/engine/material"
	"github.com/Faultbox/lumen/internal/engine/octree"
	"github.com/Faultbox/lumen/internal/engine/scene"
)

func sphere(t *testing.T) *geometry.Geometry {
	t.Helper()
	g, err := geometry.Icosphere(1)
	require.NoError(t, err)
	return g
}

// twoSpheres is one directional light, no point lights and two objects
// sharing one material.
func twoSpheres(t *testing.T, kind material.Kind) (*scene.Scene, *material.Material) {
	t.Helper()
	s := scene.New()
	s.Camera().SetPosition(mgl32.Vec3{0, 0, 10})
	require.NoError(t, s.AddDirectionalLight(lighting.NewDirectional()))

	g := sphere(t)
	m := material.New(kind)
	for _, x := range []float32{-2, 2} {
		o := scene.NewObject(g, m)
		o.SetPosition(mgl32.Vec3{x, 0, 0})
		require.NoError(t, s.AddObject(o))
	}
	return s, m
}

func TestScenarioPerObject(t *testing.T) {
	dev := gputest.New()
	s, m := twoSpheres(t, material.Phong)
	r := New(dev, Options{Mode: PerObject})

	r.Render(s)

	h := s.Handles()
	assert.False(t, h.DirectionalLights.Empty(), "one directional light buffer")
	assert.True(t, h.PointLights.Empty(), "no point light buffer")
	assert.Len(t, dev.BuffersOf(gpu.UniformBuffer), 3, "matrices, ambient, directional")
	assert.Equal(t, 1, dev.LivePrograms())
	require.Len(t, dev.Draws, 2)
	for _, d := range dev.Draws {
		assert.Equal(t, m.Program(), d.Program)
		assert.Equal(t, gpu.Triangles, d.Mode)
		assert.False(t, d.Indirect)
	}

	st := r.Stats()
	assert.Equal(t, uint64(1), st.Frame)
	assert.Equal(t, 2, st.DrawCalls)
	assert.Equal(t, 2, st.ObjectsDrawn)
	assert.Zero(t, st.ObjectsSkipped)
}

func TestScenarioBatched(t *testing.T) {
	dev := gputest.New()
	s, m := twoSpheres(t, material.Phong)
	r := New(dev, Options{Mode: Batched})

	r.Render(s)

	assert.True(t, s.Handles().PointLights.Empty())
	assert.Equal(t, 1, dev.LivePrograms())
	require.Len(t, dev.Draws, 1)
	d := dev.Draws[0]
	assert.True(t, d.Indirect)
	assert.Equal(t, 2, d.Count, "one indirect draw covering both objects")
	assert.Equal(t, m.Program(), d.Program)

	for _, b := range []gpu.Binding{gpu.BindModelMatrices, gpu.BindIndices, gpu.BindMaterials, gpu.BindGlobalMatrices, gpu.BindDirectionalLights} {
		assert.NotZero(t, dev.Bindings[b], "binding %d", b)
	}
	assert.Equal(t, uint32(1), dev.Divisors[m.Bindings().DrawID], "drawID advances per instance")

	indirect := dev.BuffersOf(gpu.DrawIndirectBuffer)
	require.Len(t, indirect, 1)
	data := dev.Buffers[indirect[0]].Data
	require.Len(t, data, 2*gpu.IndirectCommandSize)
	elements := uint32(s.Geometries()[0].NumElements())
	for i := 0; i < 2; i++ {
		cmd := data[i*gpu.IndirectCommandSize:]
		assert.Equal(t, elements, binary.LittleEndian.Uint32(cmd[0:]), "count")
		assert.Equal(t, uint32(1), binary.LittleEndian.Uint32(cmd[4:]), "instances")
		assert.Equal(t, uint32(i), binary.LittleEndian.Uint32(cmd[16:]), "base instance")
	}
}

func TestGeometryUploadedOnce(t *testing.T) {
	dev := gputest.New()
	s, _ := twoSpheres(t, material.Phong)
	r := New(dev, Options{})

	r.Render(s)
	g := s.Geometries()[0]
	require.True(t, g.Uploaded())
	live := dev.LiveBuffers()
	compiles := dev.Compiles

	dev.ResetFrame()
	r.Render(s)
	assert.Equal(t, live, dev.LiveBuffers())
	assert.Equal(t, compiles, dev.Compiles, "no recompilation for unchanged params")
	assert.Zero(t, r.Stats().BufferUploads)
	assert.Len(t, dev.Draws, 2)
}

func TestCameraBlockUpdatedOnlyWhenDirty(t *testing.T) {
	dev := gputest.New()
	s, _ := twoSpheres(t, material.Phong)
	r := New(dev, Options{})

	r.Render(s)
	buf := s.Handles().GlobalMatrices.Buffer
	require.NotZero(t, buf)
	assert.Zero(t, dev.Buffers[buf].Updates)

	r.Render(s)
	assert.Zero(t, dev.Buffers[buf].Updates, "unchanged camera is not re-uploaded")

	s.Camera().SetPosition(mgl32.Vec3{0, 5, 10})
	r.Render(s)
	assert.Equal(t, 1, dev.Buffers[buf].Updates)
	assert.Equal(t, buf, s.Handles().GlobalMatrices.Buffer, "same size updates in place")
}

func TestLightBufferReallocatedOnCountChange(t *testing.T) {
	dev := gputest.New()
	s, m := twoSpheres(t, material.Phong)
	r := New(dev, Options{})

	r.Render(s)
	first := s.Handles().DirectionalLights
	assert.Equal(t, lighting.DirectionalStride, first.Size)
	prog := m.Program()

	require.NoError(t, s.AddDirectionalLight(lighting.NewDirectional()))
	r.Render(s)
	second := s.Handles().DirectionalLights
	assert.Equal(t, 2*lighting.DirectionalStride, second.Size)
	assert.NotEqual(t, first.Buffer, second.Buffer)
	assert.True(t, dev.Buffers[first.Buffer].Deleted)

	assert.NotEqual(t, prog, m.Program(), "light count is a program parameter")
	assert.True(t, dev.Deleted[prog], "replaced program released at frame end")
	assert.Equal(t, 1, r.Stats().ProgramsReleased)
}

func TestMaxLightsOption(t *testing.T) {
	dev := gputest.New()
	s, m := twoSpheres(t, material.Phong)
	for i := 0; i < 4; i++ {
		require.NoError(t, s.AddPointLight(lighting.NewPoint(mgl32.Vec3{float32(i), 2, 0})))
	}
	r := New(dev, Options{MaxLights: 2})

	r.Render(s)
	assert.Equal(t, 2, m.Params().NumPointLights)
	assert.Equal(t, 2*lighting.PointStride, s.Handles().PointLights.Size)
	assert.Equal(t, lighting.MaxLights, New(dev, Options{MaxLights: 99}).Options().MaxLights)
}

func TestBatchedRecompilesOnceOnObjectCountChange(t *testing.T) {
	dev := gputest.New()
	s, m := twoSpheres(t, material.Phong)
	r := New(dev, Options{Mode: Batched})

	r.Render(s)
	links := dev.Links
	old := m.Program()

	o := scene.NewObject(s.Geometries()[0], m)
	require.NoError(t, s.AddObject(o))
	r.Render(s)
	assert.Equal(t, links+1, dev.Links)
	assert.Equal(t, 3, m.Params().NumObjects)
	assert.True(t, dev.Deleted[old])
	assert.Equal(t, 1, dev.LivePrograms())
	assert.Equal(t, 3, dev.Draws[len(dev.Draws)-1].Count)

	r.Render(s)
	assert.Equal(t, links+1, dev.Links, "stable scene does not recompile")
}

func TestPerObjectIgnoresObjectCount(t *testing.T) {
	dev := gputest.New()
	s, m := twoSpheres(t, material.Phong)
	r := New(dev, Options{})

	r.Render(s)
	links := dev.Links
	require.NoError(t, s.AddObject(scene.NewObject(s.Geometries()[0], m)))
	r.Render(s)
	assert.Equal(t, links, dev.Links)
}

func TestFailedMaterialIsolated(t *testing.T) {
	dev := gputest.New()
	dev.FailCompile = "#define OUTLINE"
	s, phong := twoSpheres(t, material.Phong)
	cel := material.New(material.Cel)
	require.NoError(t, s.AddObject(scene.NewObject(s.Geometries()[0], cel)))
	r := New(dev, Options{})

	r.Render(s)
	assert.False(t, cel.Usable())
	assert.Error(t, cel.Err())
	assert.True(t, phong.Usable())
	assert.Len(t, dev.Draws, 2)
	assert.Equal(t, 1, r.Stats().ObjectsSkipped)

	compiles := dev.Compiles
	r.Render(s)
	assert.Equal(t, compiles, dev.Compiles, "failed build is not retried for the same params")
}

func TestPrimitivePerKind(t *testing.T) {
	tests := []struct {
		kind  material.Kind
		mode  gpu.Primitive
		patch int
	}{
		{material.Tess, gpu.Patches, 3},
		{material.Point, gpu.Points, 0},
		{material.Line, gpu.Lines, 0},
		{material.Gouraud, gpu.Triangles, 0},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			dev := gputest.New()
			s, _ := twoSpheres(t, tt.kind)
			New(dev, Options{}).Render(s)
			require.Len(t, dev.Draws, 2)
			assert.Equal(t, tt.mode, dev.Draws[0].Mode)
			assert.Equal(t, tt.patch, dev.Patch)
		})
	}
}

func TestPointSizeUniform(t *testing.T) {
	dev := gputest.New()
	s, m := twoSpheres(t, material.Point)
	m.PointSize = 7
	New(dev, Options{}).Render(s)

	loc := m.Bindings().PointSize
	require.GreaterOrEqual(t, loc, int32(0))
	assert.Equal(t, float32(7), dev.Uniforms[loc])
}

func TestPerObjectUniforms(t *testing.T) {
	dev := gputest.New()
	s, m := twoSpheres(t, material.Phong)
	m.SetDiffuse(0.4, 0.1, 0.1)
	New(dev, Options{}).Render(s)

	b := m.Bindings()
	last := s.Objects()[1]
	assert.Equal(t, last.ModelMatrix(), dev.Uniforms[b.ModelMatrix])
	assert.Equal(t, mgl32.Vec4{0.4, 0.1, 0.1, 1}, dev.Uniforms[b.DiffuseColor])
	assert.Equal(t, m.Shininess, dev.Uniforms[b.Shininess])
	assert.InDelta(t, math.Sqrt(4+100), last.Distance, 1e-5)
	assert.Equal(t, last.Distance, dev.Uniforms[b.DistanceToCamera])
	assert.True(t, dev.Enabled[b.Position])
	assert.True(t, dev.Enabled[b.Normal])
}

func TestHiddenAndCulledObjectsSkipped(t *testing.T) {
	dev := gputest.New()
	s, m := twoSpheres(t, material.Phong)
	s.Objects()[0].Visible = false

	behind := scene.NewObject(s.Geometries()[0], m)
	behind.SetPosition(mgl32.Vec3{0, 0, 50})
	require.NoError(t, s.AddObject(behind))
	s.SetOctreeOptions(octree.Options{MaxObjects: 1, MaxDepth: 4, Padding: 1})
	s.GenerateOctree()

	r := New(dev, Options{})
	r.Render(s)
	assert.False(t, behind.Drawable(), "node behind the camera is culled")
	assert.Len(t, dev.Draws, 1)
	assert.Equal(t, 2, r.Stats().ObjectsSkipped)
}

func TestBatchedVisibilityFlags(t *testing.T) {
	dev := gputest.New()
	s, _ := twoSpheres(t, material.Phong)
	s.Objects()[1].Visible = false
	r := New(dev, Options{Mode: Batched})

	r.Render(s)
	buf := dev.Bindings[gpu.BindIndices]
	data := dev.Buffers[buf].Data
	require.Len(t, data, 2*IndicesStride)
	assert.Equal(t, uint32(1), binary.LittleEndian.Uint32(data[4:]))
	assert.Equal(t, uint32(0), binary.LittleEndian.Uint32(data[IndicesStride+4:]))
	assert.Equal(t, 1, r.Stats().ObjectsDrawn)
	assert.Equal(t, 1, r.Stats().ObjectsSkipped)
}

func TestBatchedMaterialsBlock(t *testing.T) {
	dev := gputest.New()
	s, _ := twoSpheres(t, material.Phong)
	red := material.New(material.Basic).SetDiffuse(1, 0, 0)
	require.NoError(t, s.AddObject(scene.NewObject(s.Geometries()[0], red)))
	r := New(dev, Options{Mode: Batched})

	r.Render(s)
	data := dev.Buffers[dev.Bindings[gpu.BindMaterials]].Data
	require.Len(t, data, 2*MaterialStride)
	assert.Equal(t, float32(1), math.Float32frombits(binary.LittleEndian.Uint32(data[MaterialStride:])))

	indices := dev.Buffers[dev.Bindings[gpu.BindIndices]].Data
	assert.Equal(t, uint32(1), binary.LittleEndian.Uint32(indices[2*IndicesStride:]), "third object uses material 1")
	assert.Equal(t, 1, dev.LivePrograms(), "only the first material is built")
}

func TestBatchedRepacksNewGeometry(t *testing.T) {
	dev := gputest.New()
	s, m := twoSpheres(t, material.Phong)
	r := New(dev, Options{Mode: Batched})
	r.Render(s)

	box := geometry.Box(mgl32.Vec3{-1, -1, -1}, mgl32.Vec3{1, 1, 1})
	require.NoError(t, s.AddObject(scene.NewObject(box, m)))
	r.Render(s)

	assert.Equal(t, s.Geometries()[0].NumVertices(), box.VertexOffset)
	assert.Equal(t, s.Geometries()[0].NumElements(), box.IndexOffset)
	assert.Len(t, dev.BuffersOf(gpu.ElementArrayBuffer), 1, "old shared buffers deleted")
}

func TestRenderOctree(t *testing.T) {
	dev := gputest.New()
	s, _ := twoSpheres(t, material.Phong)
	r := New(dev, Options{})
	lines := material.New(material.Line)

	r.RenderOctree(s, lines)
	assert.Empty(t, dev.Draws, "no tree yet")

	s.GenerateOctree()
	r.Render(s)
	dev.ResetFrame()
	r.RenderOctree(s, lines)
	require.Len(t, dev.Draws, 1)
	assert.Equal(t, gpu.Lines, dev.Draws[0].Mode)
	assert.Equal(t, s.Octree().NodeCount()*geometry.BoxElementCount, dev.Draws[0].Count)
}

func TestReleaseAndClose(t *testing.T) {
	for _, mode := range []Mode{PerObject, Batched} {
		t.Run(mode.String(), func(t *testing.T) {
			dev := gputest.New()
			s, _ := twoSpheres(t, material.Phong)
			s.GenerateOctree()
			r := New(dev, Options{Mode: mode})
			r.Render(s)
			r.RenderOctree(s, material.New(material.Line))
			require.NotZero(t, dev.LiveBuffers())

			r.Release(s)
			r.Close()
			assert.Zero(t, dev.LiveBuffers())
			assert.Zero(t, dev.LivePrograms())
			assert.True(t, s.Handles().GlobalMatrices.Empty())
			for _, g := range s.Geometries() {
				assert.False(t, g.Uploaded())
				assert.Zero(t, g.VertexBuffer)
				assert.Zero(t, g.NormalBuffer)
				assert.Zero(t, g.ElementBuffer)
			}
			assert.Len(t, s.Objects(), 2, "collections survive release")

			// A released scene renders again from scratch.
			dev.ResetFrame()
			r.Render(s)
			assert.NotEmpty(t, dev.Draws)
		})
	}
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("batched")
	require.NoError(t, err)
	assert.Equal(t, Batched, m)
	m, err = ParseMode("per_object")
	require.NoError(t, err)
	assert.Equal(t, PerObject, m)
	_, err = ParseMode("deferred")
	assert.Error(t, err)
}
