package loader

import (
	"github.com/Carmen-Shannon/oxy-viewer/engine/model"
	"github.com/pkg/errors"
)

// FallbackNormal is emitted for every vertex of a sub-mesh that carries no normals.
var FallbackNormal = [3]float32{0, 1, 0}

// FlattenSubMesh interleaves a sub-mesh into GPU-ready geometry: position X,Y,Z then normal X,Y,Z
// per vertex, with the face indices copied unchanged. Faces with more than three indices are
// fan-triangulated; faces with fewer are dropped.
//
// Parameters:
//   - sm: the sub-mesh to flatten
//
// Returns:
//   - model.Geometry: the interleaved vertices and local triangle indices
func FlattenSubMesh(sm *model.SubMesh) model.Geometry {
	hasNormals := sm.HasNormals()
	g := model.Geometry{
		Vertices: make([]float32, 0, len(sm.Positions)*model.FloatsPerVertex),
		Indices:  make([]uint32, 0, len(sm.Faces)*3),
	}
	for i, p := range sm.Positions {
		n := FallbackNormal
		if hasNormals {
			n = sm.Normals[i]
		}
		g.Vertices = append(g.Vertices, p[0], p[1], p[2], n[0], n[1], n[2])
	}
	for _, f := range sm.Faces {
		if len(f) == 3 {
			g.Indices = append(g.Indices, f...)
			continue
		}
		for _, tri := range fanTriangles(f) {
			g.Indices = append(g.Indices, tri...)
		}
	}
	return g
}

// FlattenPerSubMesh flattens every sub-mesh of scene independently, in scene order.
//
// Parameters:
//   - scene: the imported scene
//
// Returns:
//   - []model.Geometry: one geometry per scene.Meshes entry
func FlattenPerSubMesh(scene *model.Scene) []model.Geometry {
	out := make([]model.Geometry, len(scene.Meshes))
	for i := range scene.Meshes {
		out[i] = FlattenSubMesh(&scene.Meshes[i])
	}
	return out
}

// FlattenCombined merges every sub-mesh referenced by the node tree into one geometry.
// Nodes are visited depth-first, parent before children; each referenced sub-mesh is appended
// with its indices offset by the number of vertices already emitted. A sub-mesh referenced by
// several nodes is appended once per reference.
//
// Parameters:
//   - scene: the imported scene
//
// Returns:
//   - model.Geometry: the merged geometry
//   - error: if the scene has no usable hierarchy or a node references a missing sub-mesh
func FlattenCombined(scene *model.Scene) (model.Geometry, error) {
	if scene.Incomplete || scene.Root == nil {
		return model.Geometry{}, errors.Errorf("scene %q has no usable node hierarchy", scene.Name)
	}

	var (
		g   model.Geometry
		err error
	)
	scene.Root.Walk(func(n *model.Node) bool {
		for _, idx := range n.MeshIndices {
			if idx < 0 || idx >= len(scene.Meshes) {
				err = errors.Errorf("node %q references mesh %d of %d", n.Name, idx, len(scene.Meshes))
				return false
			}
			g.Append(FlattenSubMesh(&scene.Meshes[idx]))
		}
		return true
	})
	if err != nil {
		return model.Geometry{}, err
	}
	return g, nil
}
