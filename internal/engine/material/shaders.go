package material

import _ "embed"

// Stage templates. Shared partials come from the shader package.

//go:embed glsl/basic.vert
var basicVertex string

//go:embed glsl/basic.frag
var basicFragment string

//go:embed glsl/gouraud.vert
var gouraudVertex string

//go:embed glsl/gouraud.frag
var gouraudFragment string

//go:embed glsl/phong.vert
var phongVertex string

//go:embed glsl/phong.frag
var phongFragment string

//go:embed glsl/cel.frag
var celFragment string

//go:embed glsl/tess.vert
var tessVertex string

//go:embed glsl/tess.tesc
var tessControl string

//go:embed glsl/tess.tese
var tessEvaluation string

//go:embed glsl/point.vert
var pointVertex string

//go:embed glsl/point.frag
var pointFragment string
