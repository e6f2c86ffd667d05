package geometry

// Packed is the concatenation of many geometries into shared buffers.
type Packed struct {
	Vertices []float32
	Normals  []float32
	Elements []uint16
}

// NumVertices returns the total vertex count.
func (p Packed) NumVertices() int {
	return len(p.Vertices) / 3
}

// Pack concatenates geoms in order and records each geometry's offsets.
//
// Elements stay local to their geometry; draws add VertexOffset as the base
// vertex. Geometries without normals get zero normals so the normal buffer
// stays aligned with the vertex buffer.
func Pack(geoms []*Geometry) Packed {
	var vertices, elements int
	for _, g := range geoms {
		vertices += g.NumVertices()
		elements += g.NumElements()
	}

	p := Packed{
		Vertices: make([]float32, 0, vertices*3),
		Normals:  make([]float32, 0, vertices*3),
		Elements: make([]uint16, 0, elements),
	}
	for _, g := range geoms {
		g.VertexOffset = p.NumVertices()
		g.IndexOffset = len(p.Elements)

		p.Vertices = append(p.Vertices, g.Vertices...)
		if len(g.Normals) == len(g.Vertices) {
			p.Normals = append(p.Normals, g.Normals...)
		} else {
			p.Normals = append(p.Normals, make([]float32, len(g.Vertices))...)
		}
		p.Elements = append(p.Elements, g.Elements...)
	}
	return p
}
