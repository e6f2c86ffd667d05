// Package scene is the aggregate the renderer draws: objects, the geometry
// and materials they share, lights, the camera and the spatial index.
package scene

import (
	"errors"
	"slices"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/lumen/internal/engine/camera"
	"github.com/Faultbox/lumen/internal/engine/geometry"
	"github.com/Faultbox/lumen/internal/engine/lighting"
	"github.com/Faultbox/lumen/internal/engine/material"
	"github.com/Faultbox/lumen/internal/engine/octree"
	"github.com/Faultbox/lumen/internal/engine/shader"
	"github.com/Faultbox/lumen/internal/logger"
)

var (
	// ErrNil is returned when a nil object, light or camera is added.
	ErrNil = errors.New("scene: nil value")
	// ErrDuplicate is returned when an object is already in the scene.
	ErrDuplicate = errors.New("scene: object already added")
)

// Scene owns its collections. Objects reference geometry and materials
// registered in the scene; the octree references objects.
type Scene struct {
	objects    []*Object
	geometries []*geometry.Geometry
	materials  []*material.Material

	dirLights   []*lighting.Directional
	pointLights []*lighting.Point
	ambient     *lighting.Ambient
	camera      *camera.Camera

	octreeOpts octree.Options
	tree       *octree.Octree

	handles Handles
}

// New creates an empty scene with a default camera and black ambient light.
func New() *Scene {
	return &Scene{
		ambient:    lighting.NewAmbient(mgl32.Vec3{}),
		camera:     camera.NewDefault(),
		octreeOpts: octree.DefaultOptions(),
	}
}

// AddObject appends an object and registers its geometry and material.
func (s *Scene) AddObject(o *Object) error {
	if o == nil {
		return ErrNil
	}
	if slices.Contains(s.objects, o) {
		return ErrDuplicate
	}
	if o.Geometry != nil && !slices.Contains(s.geometries, o.Geometry) {
		s.geometries = append(s.geometries, o.Geometry)
	}
	if o.Material != nil && !slices.Contains(s.materials, o.Material) {
		o.Material.SceneIndex = len(s.materials)
		s.materials = append(s.materials, o.Material)
	}
	s.objects = append(s.objects, o)
	return nil
}

// RemoveObject drops an object from the scene and the octree. Its geometry
// and material stay registered.
func (s *Scene) RemoveObject(o *Object) bool {
	i := slices.Index(s.objects, o)
	if i < 0 {
		return false
	}
	s.objects = slices.Delete(s.objects, i, i+1)
	if s.tree != nil {
		s.tree.Remove(o)
	}
	return true
}

// AddDirectionalLight appends a directional light.
func (s *Scene) AddDirectionalLight(l *lighting.Directional) error {
	if l == nil {
		return ErrNil
	}
	s.dirLights = append(s.dirLights, l)
	return nil
}

// AddPointLight appends a point light.
func (s *Scene) AddPointLight(l *lighting.Point) error {
	if l == nil {
		return ErrNil
	}
	s.pointLights = append(s.pointLights, l)
	return nil
}

// SetAmbientLight replaces the ambient light.
func (s *Scene) SetAmbientLight(a *lighting.Ambient) error {
	if a == nil {
		return ErrNil
	}
	s.ambient = a
	return nil
}

// SetCamera replaces the camera.
func (s *Scene) SetCamera(c *camera.Camera) error {
	if c == nil {
		return ErrNil
	}
	s.camera = c
	return nil
}

// Objects returns the scene objects in insertion order.
func (s *Scene) Objects() []*Object { return s.objects }

// Geometries returns the registered geometry in first-use order.
func (s *Scene) Geometries() []*geometry.Geometry { return s.geometries }

// Materials returns the registered materials; a material's SceneIndex is
// its position here.
func (s *Scene) Materials() []*material.Material { return s.materials }

func (s *Scene) DirectionalLights() []*lighting.Directional { return s.dirLights }

func (s *Scene) PointLights() []*lighting.Point { return s.pointLights }

func (s *Scene) AmbientLight() *lighting.Ambient { return s.ambient }

func (s *Scene) Camera() *camera.Camera { return s.camera }

// Resize updates the camera aspect ratio for a new viewport.
func (s *Scene) Resize(width, height int32) {
	if width <= 0 || height <= 0 {
		return
	}
	s.camera.SetAspect(float32(width) / float32(height))
}

// SetOctreeOptions replaces the settings used by the next GenerateOctree.
// The current tree is dropped and objects are drawn unculled until then.
func (s *Scene) SetOctreeOptions(opts octree.Options) {
	s.octreeOpts = opts
	s.dropTree()
}

func (s *Scene) dropTree() {
	for _, o := range s.objects {
		o.SetNode(nil)
	}
	s.tree = nil
}

// Octree returns the spatial index, creating an empty one on first use.
func (s *Scene) Octree() *octree.Octree {
	if s.tree == nil {
		s.tree = octree.New(s.octreeOpts)
	}
	return s.tree
}

// HasOctree reports whether the index has been generated.
func (s *Scene) HasOctree() bool {
	return s.tree != nil && s.tree.Root() != nil
}

// GenerateOctree rebuilds the index from the current objects. The culling
// margin is the largest object radius so spheres straddling a node edge are
// not dropped.
func (s *Scene) GenerateOctree() *octree.Octree {
	t := s.Octree()
	items := make([]octree.Item, len(s.objects))
	var margin float32
	for i, o := range s.objects {
		items[i] = o
		margin = max(margin, o.Radius())
	}
	t.SetMargin(margin)
	t.Generate(items)
	return t
}

// UpdateObject re-inserts a moved object into the octree. It reports
// whether the object changed leaves. Without a generated tree it does
// nothing.
func (s *Scene) UpdateObject(o *Object) bool {
	if !s.HasOctree() || o == nil {
		return false
	}
	t := s.tree
	if r := o.Radius(); r > t.Options().Margin {
		t.SetMargin(r)
	}
	moved := t.Update(o)
	if moved {
		logger.Debug("object moved leaves", zap.String("object", o.Name))
	}
	return moved
}

// ProgramParams derives the shader configuration for the current scene.
// Object and material counts only size the batched blocks, so per-object
// programs do not depend on them.
func (s *Scene) ProgramParams(batched bool) shader.Params {
	p := shader.Params{
		NumDirLights:   lighting.Capped(len(s.dirLights)),
		NumPointLights: lighting.Capped(len(s.pointLights)),
		NumObjects:     1,
		NumMaterials:   1,
		Batched:        batched,
	}
	if batched {
		p.NumObjects = max(1, len(s.objects))
		p.NumMaterials = max(1, len(s.materials))
	}
	return p
}

// Handles returns the GPU slots the renderer keeps for this scene.
func (s *Scene) Handles() *Handles {
	return &s.handles
}

// Clear drops every collection and resets the handle slots. GPU resources
// must already be released through the renderer.
func (s *Scene) Clear() {
	s.dropTree()
	s.objects = nil
	s.geometries = nil
	s.materials = nil
	s.dirLights = nil
	s.pointLights = nil
	s.ambient = lighting.NewAmbient(mgl32.Vec3{})
	s.handles = Handles{}
}
