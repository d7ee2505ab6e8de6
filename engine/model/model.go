package model

import "github.com/pkg/errors"

// FloatsPerVertex is the interleaved vertex width: position XYZ then normal XYZ.
const FloatsPerVertex = 6

// Geometry is CPU-side, GPU-ready mesh data: interleaved vertices and a triangle-list index buffer.
type Geometry struct {
	// Vertices holds FloatsPerVertex floats per vertex.
	Vertices []float32

	// Indices holds three entries per triangle.
	Indices []uint32
}

// VertexCount returns the number of vertices.
func (g Geometry) VertexCount() int {
	return len(g.Vertices) / FloatsPerVertex
}

// TriangleCount returns the number of triangles.
func (g Geometry) TriangleCount() int {
	return len(g.Indices) / 3
}

// MaxIndex returns the largest index, or -1 for an empty index buffer.
func (g Geometry) MaxIndex() int {
	m := -1
	for _, i := range g.Indices {
		if int(i) > m {
			m = int(i)
		}
	}
	return m
}

// Position returns the position of vertex i.
func (g Geometry) Position(i int) [3]float32 {
	o := i * FloatsPerVertex
	return [3]float32{g.Vertices[o], g.Vertices[o+1], g.Vertices[o+2]}
}

// Normal returns the normal of vertex i.
func (g Geometry) Normal(i int) [3]float32 {
	o := i*FloatsPerVertex + 3
	return [3]float32{g.Vertices[o], g.Vertices[o+1], g.Vertices[o+2]}
}

// Validate checks the structural invariants: whole vertices, whole triangles and in-range indices.
//
// Returns:
//   - error: describing the first violation, or nil
func (g Geometry) Validate() error {
	if len(g.Vertices)%FloatsPerVertex != 0 {
		return errors.Errorf("vertex data length %d is not a multiple of %d", len(g.Vertices), FloatsPerVertex)
	}
	if len(g.Indices)%3 != 0 {
		return errors.Errorf("index count %d is not a multiple of 3", len(g.Indices))
	}
	if m := g.MaxIndex(); m >= g.VertexCount() {
		return errors.Errorf("index %d out of range for %d vertices", m, g.VertexCount())
	}
	return nil
}

// Append adds other's vertices and indices to g, offsetting other's indices by g's current vertex count.
//
// Parameters:
//   - other: geometry whose indices are local to its own vertices
func (g *Geometry) Append(other Geometry) {
	offset := uint32(g.VertexCount())
	g.Vertices = append(g.Vertices, other.Vertices...)
	for _, i := range other.Indices {
		g.Indices = append(g.Indices, i+offset)
	}
}
