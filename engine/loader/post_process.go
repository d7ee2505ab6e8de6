package loader

import (
	"math"

	"github.com/Carmen-Shannon/oxy-viewer/engine/model"
	"github.com/go-gl/mathgl/mgl32"
)

// PostProcess is a set of import post-processing steps applied to every sub-mesh.
type PostProcess uint8

const (
	// Triangulate fan-splits polygons into triangles and drops points and lines.
	Triangulate PostProcess = 1 << iota
	// JoinIdenticalVertices merges vertices with bit-identical position and normal.
	JoinIdenticalVertices
	// GenerateNormals computes area-weighted smooth normals for sub-meshes that have none.
	GenerateNormals

	// DefaultPostProcess applies every step.
	DefaultPostProcess = Triangulate | JoinIdenticalVertices | GenerateNormals
)

// Has reports whether every step in step is enabled.
func (p PostProcess) Has(step PostProcess) bool {
	return p&step == step
}

// Apply runs the enabled steps on every sub-mesh of scene, in the order
// Triangulate, JoinIdenticalVertices, GenerateNormals.
//
// Parameters:
//   - scene: the scene to modify in place
func (p PostProcess) Apply(scene *model.Scene) {
	if scene == nil {
		return
	}
	for i := range scene.Meshes {
		sm := &scene.Meshes[i]
		if p.Has(Triangulate) {
			triangulate(sm)
		}
		if p.Has(JoinIdenticalVertices) {
			joinIdenticalVertices(sm)
		}
		if p.Has(GenerateNormals) {
			generateNormals(sm)
		}
	}
}

// fanTriangles splits face into a triangle fan around its first index.
// Faces with fewer than three indices yield nothing.
func fanTriangles(face []uint32) [][]uint32 {
	if len(face) < 3 {
		return nil
	}
	out := make([][]uint32, 0, len(face)-2)
	for i := 1; i+1 < len(face); i++ {
		out = append(out, []uint32{face[0], face[i], face[i+1]})
	}
	return out
}

func triangulate(sm *model.SubMesh) {
	faces := make([][]uint32, 0, len(sm.Faces))
	for _, f := range sm.Faces {
		if len(f) == 3 {
			faces = append(faces, f)
			continue
		}
		faces = append(faces, fanTriangles(f)...)
	}
	sm.Faces = faces
}

type vertexKey [6]uint32

func joinIdenticalVertices(sm *model.SubMesh) {
	hasNormals := sm.HasNormals()
	remap := make([]uint32, len(sm.Positions))
	seen := make(map[vertexKey]uint32, len(sm.Positions))
	positions := make([][3]float32, 0, len(sm.Positions))
	var normals [][3]float32

	for i, p := range sm.Positions {
		var n [3]float32
		if hasNormals {
			n = sm.Normals[i]
		}
		key := vertexKey{
			math.Float32bits(p[0]), math.Float32bits(p[1]), math.Float32bits(p[2]),
			math.Float32bits(n[0]), math.Float32bits(n[1]), math.Float32bits(n[2]),
		}
		if j, ok := seen[key]; ok {
			remap[i] = j
			continue
		}
		j := uint32(len(positions))
		seen[key] = j
		remap[i] = j
		positions = append(positions, p)
		if hasNormals {
			normals = append(normals, n)
		}
	}
	if len(positions) == len(sm.Positions) {
		return
	}

	for _, f := range sm.Faces {
		for k, idx := range f {
			if int(idx) < len(remap) {
				f[k] = remap[idx]
			}
		}
	}
	sm.Positions = positions
	sm.Normals = normals
}

func generateNormals(sm *model.SubMesh) {
	if sm.HasNormals() || len(sm.Positions) == 0 {
		return
	}
	acc := make([]mgl32.Vec3, len(sm.Positions))
	for _, f := range sm.Faces {
		for _, tri := range fanTriangles(f) {
			if !inRange(tri, len(sm.Positions)) {
				continue
			}
			a := mgl32.Vec3(sm.Positions[tri[0]])
			b := mgl32.Vec3(sm.Positions[tri[1]])
			c := mgl32.Vec3(sm.Positions[tri[2]])
			// unnormalized cross product weights by twice the triangle area
			n := b.Sub(a).Cross(c.Sub(a))
			for _, idx := range tri {
				acc[idx] = acc[idx].Add(n)
			}
		}
	}

	sm.Normals = make([][3]float32, len(acc))
	for i, n := range acc {
		if n.Len() == 0 {
			sm.Normals[i] = FallbackNormal
			continue
		}
		sm.Normals[i] = [3]float32(n.Normalize())
	}
}

func inRange(face []uint32, n int) bool {
	for _, idx := range face {
		if int(idx) >= n {
			return false
		}
	}
	return true
}
