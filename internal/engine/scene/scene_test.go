package scene

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/lumen/internal/engine/camera"
	"github.com/Faultbox/lumen/internal/engine/geometry"
	"github.com/Faultbox/lumen/internal/engine/lighting"
	"github.com/Faultbox/lumen/internal/engine/material"
	"github.com/Faultbox/lumen/internal/engine/octree"
)

func sphere(t *testing.T) *geometry.Geometry {
	t.Helper()
	g, err := geometry.Icosphere(1)
	require.NoError(t, err)
	return g
}

func TestNewDefaults(t *testing.T) {
	s := New()
	require.NotNil(t, s.Camera())
	require.NotNil(t, s.AmbientLight())
	assert.Equal(t, mgl32.Vec3{}, s.AmbientLight().Color)
	assert.Empty(t, s.Objects())
	assert.False(t, s.HasOctree())
}

func TestNilArguments(t *testing.T) {
	s := New()
	assert.ErrorIs(t, s.AddObject(nil), ErrNil)
	assert.ErrorIs(t, s.AddDirectionalLight(nil), ErrNil)
	assert.ErrorIs(t, s.AddPointLight(nil), ErrNil)
	assert.ErrorIs(t, s.SetAmbientLight(nil), ErrNil)
	assert.ErrorIs(t, s.SetCamera(nil), ErrNil)
	assert.NotNil(t, s.Camera())
	assert.NotNil(t, s.AmbientLight())
}

func TestAddObjectRegistersShared(t *testing.T) {
	s := New()
	g := sphere(t)
	phong := material.New(material.Phong)
	basic := material.New(material.Basic)

	require.NoError(t, s.AddObject(NewObject(g, phong)))
	require.NoError(t, s.AddObject(NewObject(g, basic)))
	require.NoError(t, s.AddObject(NewObject(g, phong)))

	assert.Len(t, s.Objects(), 3)
	assert.Equal(t, []*geometry.Geometry{g}, s.Geometries())
	assert.Equal(t, []*material.Material{phong, basic}, s.Materials())
	assert.Equal(t, 0, phong.SceneIndex)
	assert.Equal(t, 1, basic.SceneIndex)
}

func TestAddObjectRejectsDuplicate(t *testing.T) {
	s := New()
	m := material.New(material.Phong)
	o := NewObject(sphere(t), m)
	require.NoError(t, s.AddObject(o))
	assert.ErrorIs(t, s.AddObject(o), ErrDuplicate)

	assert.Len(t, s.Objects(), 1)
	assert.Equal(t, 1, s.ProgramParams(true).NumObjects)
	assert.Equal(t, 0, m.SceneIndex)
}

func TestLightsAndCamera(t *testing.T) {
	s := New()
	require.NoError(t, s.AddDirectionalLight(lighting.NewDirectional()))
	require.NoError(t, s.AddPointLight(lighting.NewPoint(mgl32.Vec3{1, 2, 3})))
	amb := lighting.NewAmbient(mgl32.Vec3{0.1, 0.1, 0.1})
	require.NoError(t, s.SetAmbientLight(amb))
	cam := camera.New(60, 1, 0.1, 100)
	require.NoError(t, s.SetCamera(cam))

	assert.Len(t, s.DirectionalLights(), 1)
	assert.Len(t, s.PointLights(), 1)
	assert.Same(t, amb, s.AmbientLight())
	assert.Same(t, cam, s.Camera())

	s.Resize(800, 400)
	assert.Equal(t, float32(2), cam.Aspect())
	s.Resize(0, 400)
	assert.Equal(t, float32(2), cam.Aspect())
}

func TestProgramParams(t *testing.T) {
	s := New()
	g := sphere(t)
	m := material.New(material.Phong)

	p := s.ProgramParams(true)
	assert.Equal(t, 0, p.NumDirLights)
	assert.Equal(t, 1, p.NumObjects, "empty batches still declare one slot")
	assert.Equal(t, 1, p.NumMaterials)

	for i := 0; i < 3; i++ {
		require.NoError(t, s.AddObject(NewObject(g, m)))
	}
	for i := 0; i < 12; i++ {
		require.NoError(t, s.AddDirectionalLight(lighting.NewDirectional()))
	}
	require.NoError(t, s.AddPointLight(lighting.NewPoint(mgl32.Vec3{})))

	p = s.ProgramParams(true)
	assert.Equal(t, lighting.MaxLights, p.NumDirLights)
	assert.Equal(t, 1, p.NumPointLights)
	assert.Equal(t, 3, p.NumObjects)
	assert.Equal(t, 1, p.NumMaterials)
	assert.True(t, p.Batched)

	p = s.ProgramParams(false)
	assert.Equal(t, 1, p.NumObjects)
	assert.False(t, p.Batched)
}

func TestGenerateOctree(t *testing.T) {
	s := New()
	s.SetOctreeOptions(octree.Options{MaxObjects: 2, MaxDepth: 4, Padding: 1})
	g := sphere(t)
	m := material.New(material.Phong)
	for i := 0; i < 16; i++ {
		o := NewObject(g, m)
		o.SetPosition(mgl32.Vec3{float32(i % 4 * 3), float32(i / 4 * 3), 0})
		require.NoError(t, s.AddObject(o))
	}

	tree := s.GenerateOctree()
	assert.True(t, s.HasOctree())
	assert.Equal(t, 16, tree.Len())
	assert.InDelta(t, g.Radius(), tree.Options().Margin, 1e-6)
	for _, o := range s.Objects() {
		require.NotNil(t, o.Node())
		assert.True(t, o.Node().Bounds.Contains(o.Position()))
	}
}

func TestUpdateObject(t *testing.T) {
	s := New()
	g := sphere(t)
	m := material.New(material.Phong)
	a := NewObject(g, m)
	b := NewObject(g, m)
	b.SetPosition(mgl32.Vec3{10, 10, 10})
	require.NoError(t, s.AddObject(a))
	require.NoError(t, s.AddObject(b))

	assert.False(t, s.UpdateObject(a), "no tree yet")

	s.GenerateOctree()
	a.Translate(mgl32.Vec3{0, 0, 2})
	s.UpdateObject(a)
	assert.True(t, a.Node().Bounds.Contains(a.Position()))

	// Leaving the root forces a rebuild that still indexes everything.
	a.SetPosition(mgl32.Vec3{-50, 0, 0})
	s.UpdateObject(a)
	assert.Equal(t, 2, s.Octree().Len())
	assert.True(t, s.Octree().Root().Bounds.Contains(a.Position()))
}

func TestRemoveObject(t *testing.T) {
	s := New()
	g := sphere(t)
	m := material.New(material.Phong)
	a := NewObject(g, m)
	require.NoError(t, s.AddObject(a))
	s.GenerateOctree()

	assert.True(t, s.RemoveObject(a))
	assert.False(t, s.RemoveObject(a))
	assert.Empty(t, s.Objects())
	assert.Equal(t, 0, s.Octree().Len())
	assert.Len(t, s.Materials(), 1, "shared resources stay registered")
}

func TestDrawable(t *testing.T) {
	s := New()
	o := NewObject(sphere(t), material.New(material.Phong))
	assert.True(t, o.Drawable(), "unindexed objects are drawn")

	require.NoError(t, s.AddObject(o))
	s.GenerateOctree()
	o.Node().Visible = false
	assert.False(t, o.Drawable())

	o.Node().Visible = true
	o.Visible = false
	assert.False(t, o.Drawable())
}

func TestSetOctreeOptionsDropsNodes(t *testing.T) {
	s := New()
	o := NewObject(sphere(t), material.New(material.Phong))
	require.NoError(t, s.AddObject(o))
	s.GenerateOctree()

	// Look away so the object's node is culled.
	cam := s.Camera()
	cam.SetPosition(mgl32.Vec3{0, 0, 50})
	cam.SetTarget(mgl32.Vec3{0, 0, 100})
	s.Octree().CalculateVisibility(cam.ViewProjection(), cam.Position())
	require.False(t, o.Drawable())

	s.SetOctreeOptions(octree.Options{MaxObjects: 4, MaxDepth: 2, Padding: 1})
	assert.False(t, s.HasOctree())
	assert.Nil(t, o.Node())
	assert.True(t, o.Drawable(), "no tree means no culling")

	s.GenerateOctree()
	assert.NotNil(t, o.Node())
}

func TestObjectRadiusScales(t *testing.T) {
	o := NewObject(sphere(t), nil)
	o.SetScale(mgl32.Vec3{1, 3, 2})
	assert.InDelta(t, 3, o.Radius(), 1e-5)
	assert.Zero(t, NewObject(nil, nil).Radius())
}

func TestClear(t *testing.T) {
	s := New()
	o := NewObject(sphere(t), material.New(material.Phong))
	require.NoError(t, s.AddObject(o))
	require.NoError(t, s.AddDirectionalLight(lighting.NewDirectional()))
	s.GenerateOctree()
	s.Handles().AmbientLight = Slot{Buffer: 7, Size: 16}

	s.Clear()
	assert.Empty(t, s.Objects())
	assert.Empty(t, s.Materials())
	assert.Empty(t, s.Geometries())
	assert.Empty(t, s.DirectionalLights())
	assert.Nil(t, o.Node())
	assert.False(t, s.HasOctree())
	assert.True(t, s.Handles().AmbientLight.Empty())
}
