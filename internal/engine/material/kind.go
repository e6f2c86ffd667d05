package material

import (
	"fmt"
	"strings"

	"github.com/Faultbox/lumen/internal/engine/gpu"
	"github.com/Faultbox/lumen/internal/engine/shader"
)

// Kind is the shading model of a material. The set is closed.
type Kind int

const (
	Basic Kind = iota
	Gouraud
	Phong
	Tess
	Cel
	Point
	Line
)

// variant is the per-kind entry of the dispatch table.
type variant struct {
	name      string
	sources   []shader.Source
	primitive gpu.Primitive
	// resolve looks up kind-specific locations after link.
	resolve func(dev gpu.Device, prog gpu.Handle, b *Bindings)
}

func src(name string, stage gpu.Stage, template string) shader.Source {
	return shader.Source{Stage: stage, Name: name, Template: template}
}

func resolvePointSize(dev gpu.Device, prog gpu.Handle, b *Bindings) {
	b.PointSize = dev.UniformLocation(prog, "pointSize")
}

var variants = [...]variant{
	Basic: {
		name:      "basic",
		sources:   []shader.Source{src("basic.vert", gpu.VertexStage, basicVertex), src("basic.frag", gpu.FragmentStage, basicFragment)},
		primitive: gpu.Triangles,
	},
	Gouraud: {
		name:      "gouraud",
		sources:   []shader.Source{src("gouraud.vert", gpu.VertexStage, gouraudVertex), src("gouraud.frag", gpu.FragmentStage, gouraudFragment)},
		primitive: gpu.Triangles,
	},
	Phong: {
		name:      "phong",
		sources:   []shader.Source{src("phong.vert", gpu.VertexStage, phongVertex), src("phong.frag", gpu.FragmentStage, phongFragment)},
		primitive: gpu.Triangles,
	},
	Tess: {
		name: "tess",
		sources: []shader.Source{
			src("tess.vert", gpu.VertexStage, tessVertex),
			src("tess.tesc", gpu.TessControlStage, tessControl),
			src("tess.tese", gpu.TessEvaluationStage, tessEvaluation),
			src("tess.frag", gpu.FragmentStage, phongFragment),
		},
		primitive: gpu.Patches,
	},
	Cel: {
		name:      "cel",
		sources:   []shader.Source{src("cel.vert", gpu.VertexStage, phongVertex), src("cel.frag", gpu.FragmentStage, celFragment)},
		primitive: gpu.Triangles,
	},
	Point: {
		name:      "point",
		sources:   []shader.Source{src("point.vert", gpu.VertexStage, pointVertex), src("point.frag", gpu.FragmentStage, pointFragment)},
		primitive: gpu.Points,
		resolve:   resolvePointSize,
	},
	Line: {
		name:      "line",
		sources:   []shader.Source{src("line.vert", gpu.VertexStage, basicVertex), src("line.frag", gpu.FragmentStage, basicFragment)},
		primitive: gpu.Lines,
	},
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(variants) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return variants[k].name
}

// Primitive returns the topology objects of this kind are drawn with.
func (k Kind) Primitive() gpu.Primitive {
	return variants[k].primitive
}

// Kinds returns every shading model.
func Kinds() []Kind {
	out := make([]Kind, len(variants))
	for i := range variants {
		out[i] = Kind(i)
	}
	return out
}

// ParseKind resolves a kind by its name, case-insensitively.
func ParseKind(s string) (Kind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, v := range variants {
		if v.name == s {
			return Kind(i), nil
		}
	}
	return 0, fmt.Errorf("unknown material kind %q", s)
}
