package model

// --- Import Types ---

// Scene is an imported model file: a flat list of sub-meshes plus the node tree that references them.
// This is the universal format importer backends produce, independent of the file format.
type Scene struct {
	// Name is the scene identifier, usually the file's base name.
	Name string

	// Meshes are all sub-meshes in file order.
	Meshes []SubMesh

	// Root is the top of the node hierarchy. Nil when the file defines no nodes.
	Root *Node

	// Incomplete is set when the importer could not build a usable hierarchy.
	Incomplete bool
}

// Node is one element of a scene hierarchy. It references sub-meshes by index into Scene.Meshes.
// Node transforms are not kept; sub-mesh data stays in its own local space.
type Node struct {
	// Name is the node identifier.
	Name string

	// MeshIndices index Scene.Meshes, in the order the node lists them.
	MeshIndices []int

	// Children are the child nodes in file order.
	Children []*Node
}

// SubMesh is one imported mesh in its local space.
type SubMesh struct {
	// Name is the mesh identifier.
	Name string

	// Positions are the vertex positions.
	Positions [][3]float32

	// Normals are per-vertex normals. Either empty or the same length as Positions.
	Normals [][3]float32

	// Faces are polygons as local vertex indices. After triangulation every face has exactly three indices.
	Faces [][]uint32
}

// HasNormals reports whether the sub-mesh carries one normal per vertex.
func (m *SubMesh) HasNormals() bool {
	return len(m.Normals) > 0 && len(m.Normals) == len(m.Positions)
}

// Walk visits n and then its descendants depth-first, parent before children, children in order.
//
// Parameters:
//   - visit: called for every node; returning false stops the walk
//
// Returns:
//   - bool: false if visit stopped the walk
func (n *Node) Walk(visit func(*Node) bool) bool {
	if n == nil {
		return true
	}
	if !visit(n) {
		return false
	}
	for _, c := range n.Children {
		if !c.Walk(visit) {
			return false
		}
	}
	return true
}
