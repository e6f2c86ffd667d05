// Package shader configures GLSL templates for a scene and compiles them
// into programs.
//
// Templates are text/template sources with named slots filled from Params.
// Shared blocks (binding layouts, lighting) are partials embedded from glsl/
// and referenced with {{template "name" .}}.
package shader

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"text/template"

	"github.com/Faultbox/lumen/internal/engine/gpu"
)

//go:embed glsl/*.glsl
var partialsFS embed.FS

var partials = template.Must(template.New("partials").ParseFS(partialsFS, "glsl/*.glsl"))

// ErrCompile reports a template, compile or link failure. The wrapped
// message carries the driver log.
var ErrCompile = errors.New("shader build failed")

// Params is the scene configuration a program is built for. Two programs
// built from the same templates and equal Params are interchangeable.
type Params struct {
	NumDirLights   int
	NumPointLights int
	NumObjects     int
	NumMaterials   int
	Batched        bool
}

// Source is one stage template.
type Source struct {
	Stage    gpu.Stage
	Name     string
	Template string
}

// Configure fills the named slots of src with p.
func Configure(name, src string, p Params) (string, error) {
	t, err := partials.Clone()
	if err != nil {
		return "", err
	}
	t, err = t.New(name).Option("missingkey=error").Parse(src)
	if err != nil {
		return "", fmt.Errorf("%w: parse %s: %v", ErrCompile, name, err)
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, name, p); err != nil {
		return "", fmt.Errorf("%w: configure %s: %v", ErrCompile, name, err)
	}
	return buf.String(), nil
}

// Build configures, compiles and links sources into one program. Shader
// objects are deleted once linked, or on failure.
func Build(dev gpu.Device, sources []Source, p Params) (gpu.Handle, error) {
	shaders := make([]gpu.Handle, 0, len(sources))
	defer func() {
		for _, sh := range shaders {
			dev.DeleteShader(sh)
		}
	}()

	for _, s := range sources {
		code, err := Configure(s.Name, s.Template, p)
		if err != nil {
			return 0, err
		}
		sh, err := dev.CompileShader(s.Stage, code)
		if err != nil {
			return 0, fmt.Errorf("%w: %s: %v", ErrCompile, s.Name, err)
		}
		shaders = append(shaders, sh)
	}

	prog, err := dev.LinkProgram(shaders...)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrCompile, err)
	}
	return prog, nil
}
