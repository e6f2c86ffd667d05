// Package viewer builds the demo scene and maps input to scene changes.
// It holds no graphics state, so it runs without a window.
package viewer

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/lumen/internal/config"
	"github.com/Faultbox/lumen/internal/engine/camera"
	"github.com/Faultbox/lumen/internal/engine/geometry"
	"github.com/Faultbox/lumen/internal/engine/lighting"
	"github.com/Faultbox/lumen/internal/engine/material"
	"github.com/Faultbox/lumen/internal/engine/octree"
	"github.com/Faultbox/lumen/internal/engine/scene"
	"github.com/Faultbox/lumen/internal/logger"
)

// Demo defaults.
var (
	SelectedStart = mgl32.Vec3{1, 1, 1}
	LightStart    = mgl32.Vec3{2, 4, 5}
	DiffuseColor  = mgl32.Vec3{0.4, 0.1, 0.1}
	AmbientColor  = mgl32.Vec3{0.1, 0.1, 0.1}
)

// LightRadius is the fixed distance of the orbiting directional light.
const LightRadius = 10

// Demo is the generated scene plus the handles the controller drives.
type Demo struct {
	Scene    *scene.Scene
	Material *material.Material
	Lines    *material.Material
	Light    *lighting.Directional
	Selected *scene.Object
}

// BuildDemo creates a grid of GridSize² meshes in the z=0 plane, centered on
// the origin, plus one movable mesh, lit by one directional light.
func BuildDemo(cfg *config.Config, aspect float32) (*Demo, error) {
	g, err := demoGeometry(cfg.Demo)
	if err != nil {
		return nil, err
	}
	kind, err := material.ParseKind(cfg.Demo.Material)
	if err != nil {
		return nil, fmt.Errorf("demo material: %w", err)
	}

	d := &Demo{
		Scene:    scene.New(),
		Material: material.New(kind).SetDiffuse(DiffuseColor[0], DiffuseColor[1], DiffuseColor[2]),
		Lines:    material.New(material.Line),
		Light:    lighting.NewDirectional(),
	}
	s := d.Scene

	cam := camera.NewDefault()
	cam.SetFOV(cfg.Camera.FOV)
	cam.SetClip(cfg.Camera.Near, cfg.Camera.Far)
	cam.SetAspect(aspect)
	cam.SetPosition(mgl32.Vec3{0, 0, cfg.Camera.Distance})
	cam.SetTarget(mgl32.Vec3{})
	if err := s.SetCamera(cam); err != nil {
		return nil, err
	}

	d.Light.Toward(LightStart)
	if err := s.AddDirectionalLight(d.Light); err != nil {
		return nil, err
	}
	if cfg.Demo.PointLight {
		if err := s.AddPointLight(lighting.NewPoint(mgl32.Vec3{0, 0, LightRadius})); err != nil {
			return nil, err
		}
	}
	if err := s.SetAmbientLight(lighting.NewAmbient(AmbientColor)); err != nil {
		return nil, err
	}

	n := cfg.Demo.GridSize
	half := n / 2
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			o := scene.NewObject(g, d.Material)
			o.Name = fmt.Sprintf("grid_%d_%d", i, j)
			o.SetPosition(mgl32.Vec3{
				cfg.Demo.Spacing * float32(i-half),
				cfg.Demo.Spacing * float32(half-j),
				0,
			})
			if err := s.AddObject(o); err != nil {
				return nil, err
			}
		}
	}

	d.Selected = scene.NewObject(g, d.Material)
	d.Selected.Name = "selected"
	d.Selected.SetPosition(SelectedStart)
	if err := s.AddObject(d.Selected); err != nil {
		return nil, err
	}

	s.SetOctreeOptions(octree.Options{
		MaxObjects: cfg.Octree.MaxObjects,
		MaxDepth:   cfg.Octree.MaxDepth,
		Padding:    cfg.Octree.Padding,
	})
	tree := s.GenerateOctree()

	logger.Info("demo scene built",
		zap.Int("objects", len(s.Objects())),
		zap.String("geometry", g.Name),
		zap.Int("vertices", g.NumVertices()),
		zap.Stringer("material", kind),
		zap.Int("octree_nodes", tree.NodeCount()))
	return d, nil
}

func demoGeometry(cfg config.DemoConfig) (*geometry.Geometry, error) {
	if cfg.Mesh != "" {
		g, err := geometry.Load(cfg.Mesh)
		if err != nil {
			return nil, fmt.Errorf("demo mesh: %w", err)
		}
		return g, nil
	}
	g, err := geometry.Icosphere(cfg.Subdivisions)
	if err != nil {
		return nil, fmt.Errorf("demo sphere: %w", err)
	}
	return g, nil
}
