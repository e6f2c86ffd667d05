package shader

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/lumen/internal/engine/gpu"
	"github.com/Faultbox/lumen/internal/engine/gpu/gputest"
)

const vertexSrc = `{{template "header" .}}
{{template "globals" .}}
{{template "object" .}}
{{template "inputs" .}}
void main() {
    {{template "passDrawID" .}}
    gl_Position = projectionMatrix * viewMatrix * MODEL_MATRIX(DRAW_ID) * vec4(position, 1.0);
}
`

const fragmentSrc = `{{template "header" .}}
{{template "object" .}}
{{template "material" .}}
{{template "lights" .}}
{{template "fragmentDrawID" .}}
{{template "shading" .}}
out vec4 outputColor;
void main() {
    outputColor = shade(vec3(0.0), vec3(0.0, 0.0, 1.0), MATERIAL(DRAW_ID), 0.0);
}
`

func TestConfigureNamedSlots(t *testing.T) {
	src, err := Configure("frag", fragmentSrc, Params{NumDirLights: 2, NumObjects: 7, NumMaterials: 3})
	require.NoError(t, err)

	assert.Contains(t, src, "#define NUM_DIR_LIGHTS 2")
	assert.Contains(t, src, "#define NUM_POINT_LIGHTS 0")
	assert.Contains(t, src, "#define NUM_OBJECTS 7")
	assert.Contains(t, src, "#define NUM_MATERIALS 3")
	assert.True(t, strings.HasPrefix(src, "#version 430 core"))
}

func TestConfigureCompilesOutEmptyLights(t *testing.T) {
	src, err := Configure("frag", fragmentSrc, Params{NumDirLights: 1})
	require.NoError(t, err)
	assert.Contains(t, src, "uniform directionalLights")
	assert.NotContains(t, src, "uniform pointLights")
	assert.NotContains(t, src, "pLights[i]")
	assert.Contains(t, src, "uniform ambientLight")
}

func TestConfigureBatched(t *testing.T) {
	perObject, err := Configure("vert", vertexSrc, Params{NumObjects: 4, NumMaterials: 1})
	require.NoError(t, err)
	assert.Contains(t, perObject, "uniform mat4 modelMatrix;")
	assert.NotContains(t, perObject, "in int drawID;")

	batched, err := Configure("vert", vertexSrc, Params{NumObjects: 4, NumMaterials: 1, Batched: true})
	require.NoError(t, err)
	assert.Contains(t, batched, "buffer modelMatrices")
	assert.Contains(t, batched, "mat4 modelMatrix[NUM_OBJECTS];")
	assert.Contains(t, batched, "in int drawID;")
	assert.Contains(t, batched, "vDrawID = drawID;")
}

func TestConfigureUnknownSlot(t *testing.T) {
	_, err := Configure("bad", "#define N {{.NumLights}}", Params{})
	assert.ErrorIs(t, err, ErrCompile)

	_, err = Configure("bad", "{{template \"nope\" .}}", Params{})
	assert.ErrorIs(t, err, ErrCompile)

	_, err = Configure("bad", "{{if}}", Params{})
	assert.ErrorIs(t, err, ErrCompile)
}

func TestBuild(t *testing.T) {
	dev := gputest.New()
	sources := []Source{
		{Stage: gpu.VertexStage, Name: "test.vert", Template: vertexSrc},
		{Stage: gpu.FragmentStage, Name: "test.frag", Template: fragmentSrc},
	}

	prog, err := Build(dev, sources, Params{NumDirLights: 1, NumObjects: 1, NumMaterials: 1})
	require.NoError(t, err)
	assert.NotZero(t, prog)
	assert.Equal(t, 2, dev.Compiles)
	assert.Equal(t, 1, dev.Links)
	assert.Len(t, dev.Programs[prog], 2)
	for sh := range dev.Shaders {
		assert.True(t, dev.Deleted[sh], "shader %d not deleted after link", sh)
	}
}

func TestBuildCompileFailure(t *testing.T) {
	dev := gputest.New()
	dev.FailCompile = "outputColor"
	sources := []Source{
		{Stage: gpu.VertexStage, Name: "test.vert", Template: vertexSrc},
		{Stage: gpu.FragmentStage, Name: "test.frag", Template: fragmentSrc},
	}

	prog, err := Build(dev, sources, Params{})
	assert.ErrorIs(t, err, ErrCompile)
	assert.Contains(t, err.Error(), "forced failure")
	assert.Zero(t, prog)
	assert.Zero(t, dev.Links)
	for sh := range dev.Shaders {
		assert.True(t, dev.Deleted[sh], "vertex shader %d leaked", sh)
	}
}
