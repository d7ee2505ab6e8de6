package loader

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-viewer/engine/model"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func triangle(name string, z float32) model.SubMesh {
	return model.SubMesh{
		Name:      name,
		Positions: [][3]float32{{0, 0, z}, {1, 0, z}, {0, 1, z}},
		Normals:   [][3]float32{{0, 0, 1}, {0, 0, 1}, {0, 0, 1}},
		Faces:     [][]uint32{{0, 1, 2}},
	}
}

func TestFlattenSubMeshInterleaves(t *testing.T) {
	sm := triangle("t", 5)
	g := FlattenSubMesh(&sm)
	assert.Equal(t, []float32{
		0, 0, 5, 0, 0, 1,
		1, 0, 5, 0, 0, 1,
		0, 1, 5, 0, 0, 1,
	}, g.Vertices)
	assert.Equal(t, []uint32{0, 1, 2}, g.Indices)
}

func TestFlattenSubMeshFallbackNormalAndPolygons(t *testing.T) {
	sm := model.SubMesh{
		Positions: [][3]float32{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0}},
		Faces:     [][]uint32{{0, 1, 2, 3}, {0, 1}},
	}
	g := FlattenSubMesh(&sm)
	for v := 0; v < g.VertexCount(); v++ {
		assert.Equal(t, [3]float32{0, 1, 0}, g.Normal(v))
	}
	assert.Equal(t, []uint32{0, 1, 2, 0, 2, 3}, g.Indices)
	assert.NoError(t, g.Validate())
}

func TestFlattenCombinedWalksParentFirst(t *testing.T) {
	scene := &model.Scene{
		Meshes: []model.SubMesh{triangle("a", 0), triangle("b", 1), triangle("c", 2)},
		Root: &model.Node{
			Name:        "root",
			MeshIndices: []int{2},
			Children: []*model.Node{
				{Name: "left", MeshIndices: []int{0}, Children: []*model.Node{{Name: "leaf", MeshIndices: []int{1}}}},
				{Name: "right", MeshIndices: []int{0}},
			},
		},
	}

	g, err := FlattenCombined(scene)
	require.NoError(t, err)
	require.Equal(t, 12, g.VertexCount())
	// c, a, b, a
	for block, z := range []float32{2, 0, 1, 0} {
		assert.Equal(t, z, g.Position(block*3)[2])
	}
	assert.Equal(t, []uint32{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11}, g.Indices)
	assert.NoError(t, g.Validate())
}

func TestFlattenCombinedIndexBound(t *testing.T) {
	// every merged index stays below the total vertex count for any partition
	sizes := [][2]int{{3, 1}, {4, 2}, {6, 4}, {5, 3}}
	scene := &model.Scene{Root: &model.Node{}}
	total := 0
	for i, s := range sizes {
		sm := model.SubMesh{Positions: make([][3]float32, s[0])}
		for f := 0; f < s[1]; f++ {
			sm.Faces = append(sm.Faces, []uint32{0, uint32(s[0] - 2), uint32(s[0] - 1)})
		}
		scene.Meshes = append(scene.Meshes, sm)
		scene.Root.MeshIndices = append(scene.Root.MeshIndices, i)
		total += s[0]
	}

	g, err := FlattenCombined(scene)
	require.NoError(t, err)
	assert.Equal(t, total, g.VertexCount())
	assert.Less(t, g.MaxIndex(), total)
	assert.Equal(t, total-1, g.MaxIndex())
}

func TestFlattenCombinedErrors(t *testing.T) {
	sm := triangle("a", 0)
	tests := []struct {
		name  string
		scene *model.Scene
	}{
		{"incomplete", &model.Scene{Meshes: []model.SubMesh{sm}, Root: &model.Node{}, Incomplete: true}},
		{"no root", &model.Scene{Meshes: []model.SubMesh{sm}}},
		{"bad reference", &model.Scene{Meshes: []model.SubMesh{sm}, Root: &model.Node{MeshIndices: []int{1}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FlattenCombined(tt.scene)
			assert.Error(t, err)
		})
	}
}

func TestFlattenPerSubMeshKeepsOrder(t *testing.T) {
	scene := &model.Scene{Meshes: []model.SubMesh{triangle("a", 0), triangle("b", 7)}}
	out := FlattenPerSubMesh(scene)
	require.Len(t, out, 2)
	assert.Equal(t, float32(7), out[1].Position(0)[2])
	assert.Equal(t, []uint32{0, 1, 2}, out[1].Indices)
}

func TestPostProcessTriangulate(t *testing.T) {
	sm := model.SubMesh{
		Positions: make([][3]float32, 5),
		Faces:     [][]uint32{{0, 1, 2, 3, 4}, {0}, {1, 2}, {2, 3, 4}},
	}
	triangulate(&sm)
	assert.Equal(t, [][]uint32{{0, 1, 2}, {0, 2, 3}, {0, 3, 4}, {2, 3, 4}}, sm.Faces)
}

func TestPostProcessJoinIdenticalVertices(t *testing.T) {
	sm := model.SubMesh{
		Positions: [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {1, 0, 0}, {0, 1, 0}, {1, 1, 0}},
		Faces:     [][]uint32{{0, 1, 2}, {3, 5, 4}},
	}
	joinIdenticalVertices(&sm)
	assert.Len(t, sm.Positions, 4)
	assert.Equal(t, [][]uint32{{0, 1, 2}, {1, 3, 2}}, sm.Faces)
	assert.Empty(t, sm.Normals)

	// same position, different normal stays split
	split := model.SubMesh{
		Positions: [][3]float32{{0, 0, 0}, {0, 0, 0}},
		Normals:   [][3]float32{{0, 1, 0}, {1, 0, 0}},
	}
	joinIdenticalVertices(&split)
	assert.Len(t, split.Positions, 2)
}

func TestPostProcessGenerateNormals(t *testing.T) {
	sm := model.SubMesh{
		Positions: [][3]float32{{0, 0, 0}, {1, 0, 0}, {1, 0, -1}, {5, 5, 5}},
		Faces:     [][]uint32{{0, 1, 2}},
	}
	generateNormals(&sm)
	require.True(t, sm.HasNormals())
	for v := 0; v < 3; v++ {
		assert.True(t, mgl32.Vec3(sm.Normals[v]).ApproxEqual(mgl32.Vec3{0, 1, 0}), "normal %v", sm.Normals[v])
	}
	// unreferenced vertex gets the fallback
	assert.Equal(t, FallbackNormal, sm.Normals[3])

	existing := triangle("n", 0)
	generateNormals(&existing)
	assert.Equal(t, [3]float32{0, 0, 1}, existing.Normals[0])
}

func TestPostProcessFlags(t *testing.T) {
	assert.True(t, DefaultPostProcess.Has(Triangulate|GenerateNormals))
	assert.False(t, Triangulate.Has(GenerateNormals))

	scene := &model.Scene{Meshes: []model.SubMesh{{
		Positions: [][3]float32{{0, 0, 0}, {1, 0, 0}, {1, 0, -1}, {0, 0, -1}},
		Faces:     [][]uint32{{0, 1, 2, 3}},
	}}}
	Triangulate.Apply(scene)
	assert.Len(t, scene.Meshes[0].Faces, 2)
	assert.False(t, scene.Meshes[0].HasNormals())
}
