package loader

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/engine/model"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHeadless(t *testing.T) renderer.Renderer {
	t.Helper()
	r, err := renderer.NewRenderer(renderer.BackendTypeHeadless, renderer.WithLeakDetection(true))
	require.NoError(t, err)
	return r
}

// writeTwoMeshModel saves a GLB with a triangle mesh on the root node and a quad mesh
// (without normals) on its child.
func writeTwoMeshModel(t *testing.T, dir string) string {
	t.Helper()
	doc := gltf.NewDocument()

	triPos := modeler.WritePosition(doc, [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}})
	triNrm := modeler.WriteNormal(doc, [][3]float32{{0, 0, 1}, {0, 0, 1}, {0, 0, 1}})
	triIdx := modeler.WriteIndices(doc, []uint16{0, 1, 2})

	quadPos := modeler.WritePosition(doc, [][3]float32{{2, 0, 0}, {3, 0, 0}, {3, 0, -1}, {2, 0, -1}})
	quadIdx := modeler.WriteIndices(doc, []uint16{0, 1, 2, 0, 2, 3})

	doc.Meshes = []*gltf.Mesh{
		{Name: "tri", Primitives: []*gltf.Primitive{{
			Indices:    gltf.Index(triIdx),
			Attributes: map[string]uint32{"POSITION": triPos, "NORMAL": triNrm},
		}}},
		{Name: "quad", Primitives: []*gltf.Primitive{{
			Indices:    gltf.Index(quadIdx),
			Attributes: map[string]uint32{"POSITION": quadPos},
		}}},
	}
	doc.Nodes = []*gltf.Node{
		{Name: "root", Mesh: gltf.Index(0), Children: []uint32{1}},
		{Name: "child", Mesh: gltf.Index(1)},
	}
	doc.Scenes[0].Nodes = []uint32{0}

	path := filepath.Join(dir, "pair.glb")
	require.NoError(t, gltf.SaveBinary(doc, path))
	return path
}

func TestImportMissingFile(t *testing.T) {
	r := newHeadless(t)
	l := NewLoader(BackendTypeGLTF, WithRenderer(r))

	meshes, err := l.Load(filepath.Join(t.TempDir(), "nope.glb"), common.DefaultPlacement())
	assert.Nil(t, meshes)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrFileNotFound))
	assert.False(t, errors.Is(err, ErrImport))

	var le *LoadError
	require.True(t, errors.As(err, &le))
	assert.Equal(t, FileNotFound, le.Kind)

	assert.Empty(t, r.LiveHandles())
	assert.NoError(t, r.Close())
}

func TestImportRejectsBadFiles(t *testing.T) {
	dir := t.TempDir()
	unsupported := filepath.Join(dir, "model.obj")
	corrupt := filepath.Join(dir, "corrupt.glb")
	require.NoError(t, os.WriteFile(unsupported, []byte("v 0 0 0\n"), 0o644))
	require.NoError(t, os.WriteFile(corrupt, []byte("not a glb"), 0o644))

	l := NewLoader(BackendTypeGLTF)
	for _, path := range []string{unsupported, corrupt} {
		_, err := l.Import(path)
		require.Error(t, err, path)
		assert.True(t, errors.Is(err, ErrImport), path)
		assert.False(t, errors.Is(err, ErrEmptyScene), path)
		assert.Nil(t, l.Get(path))
	}
}

func TestImportEmptyScene(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.glb")
	require.NoError(t, gltf.SaveBinary(gltf.NewDocument(), path))

	_, err := NewLoader(BackendTypeGLTF).Import(path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrEmptyScene))
	assert.True(t, errors.Is(err, ErrImport))
}

func TestImportBuildsSceneAndCaches(t *testing.T) {
	path := writeTwoMeshModel(t, t.TempDir())
	l := NewLoader(BackendTypeGLTF)

	scene, err := l.Import(path)
	require.NoError(t, err)
	require.Len(t, scene.Meshes, 2)
	assert.Equal(t, "tri", scene.Meshes[0].Name)
	assert.Equal(t, "quad", scene.Meshes[1].Name)
	assert.True(t, scene.Meshes[1].HasNormals(), "normals are generated by default")

	require.NotNil(t, scene.Root)
	assert.False(t, scene.Incomplete)
	var names []string
	scene.Root.Walk(func(n *model.Node) bool {
		names = append(names, n.Name)
		return true
	})
	assert.Equal(t, []string{"pair", "root", "child"}, names)

	again, err := l.Import(path)
	require.NoError(t, err)
	assert.Same(t, scene, again)
	assert.Same(t, scene, l.Get(path))
	assert.Len(t, l.Scenes(), 1)
}

func TestLoadPerSubMesh(t *testing.T) {
	path := writeTwoMeshModel(t, t.TempDir())
	r := newHeadless(t)
	l := NewLoader(BackendTypeGLTF, WithRenderer(r))

	defaults := common.Placement{
		Position: mgl32.Vec3{1, 2, 3},
		Scale:    mgl32.Vec3{2, 2, 2},
		Color:    mgl32.Vec4{0.2, 0.6, 0.9, 1},
	}
	meshes, err := l.Load(path, defaults)
	require.NoError(t, err)
	require.Len(t, meshes, 2)

	assert.Equal(t, uint32(3), meshes[0].IndexCount())
	assert.Equal(t, uint32(6), meshes[1].IndexCount())
	assert.Equal(t, "pair/quad", meshes[1].Name())
	for _, m := range meshes {
		assert.Equal(t, defaults, m.Placement())
		assert.True(t, m.Uploaded())
	}
	assert.Equal(t, 6, r.LiveHandles()[renderer.HandleBuffer])

	for _, m := range meshes {
		m.Release()
	}
	assert.NoError(t, r.Close())
}

func TestLoadCombinedOffsetsIndices(t *testing.T) {
	path := writeTwoMeshModel(t, t.TempDir())
	r := newHeadless(t)
	l := NewLoader(BackendTypeGLTF, WithRenderer(r), WithPostProcess(Triangulate))

	m, err := l.LoadCombined(path, common.DefaultPlacement())
	require.NoError(t, err)
	g := m.Geometry()

	assert.Equal(t, 7, g.VertexCount())
	assert.Equal(t, []uint32{0, 1, 2, 3, 4, 5, 3, 5, 6}, g.Indices)
	assert.Equal(t, uint32(9), m.IndexCount())
	assert.Less(t, g.MaxIndex(), g.VertexCount())
	// the quad has no normals and normal generation is off
	for v := 3; v < 7; v++ {
		assert.Equal(t, FallbackNormal, g.Normal(v))
	}

	m.Release()
	assert.NoError(t, r.Close())
}

func TestLoadRejectsIncompleteScene(t *testing.T) {
	r := newHeadless(t)
	scene := &model.Scene{
		Name:       "flat",
		Meshes:     []model.SubMesh{{Name: "a", Positions: [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}, Faces: [][]uint32{{0, 1, 2}}}},
		Incomplete: true,
	}
	l := NewLoader(BackendTypeGLTF, WithRenderer(r), WithScene("flat.glb", scene))

	_, err := l.LoadCombined("flat.glb", common.DefaultPlacement())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrImport))
	assert.Empty(t, r.LiveHandles())

	meshes, err := l.Load("flat.glb", common.DefaultPlacement())
	assert.Nil(t, meshes)
	assert.True(t, errors.Is(err, ErrImport))
	assert.False(t, errors.Is(err, ErrEmptyScene))
	assert.Empty(t, r.LiveHandles())
}

func TestLoadWithoutRenderer(t *testing.T) {
	_, err := NewLoader(BackendTypeGLTF).Load("any.glb", common.DefaultPlacement())
	assert.ErrorIs(t, err, ErrNoRenderer)
}

func TestImportAll(t *testing.T) {
	dir := t.TempDir()
	first := writeTwoMeshModel(t, dir)
	second := filepath.Join(dir, "copy.glb")
	data, err := os.ReadFile(first)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(second, data, 0o644))
	missing := filepath.Join(dir, "missing.glb")

	l := NewLoader(BackendTypeGLTF, WithWorkers(2))
	scenes, err := l.ImportAll(first, missing, second)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrFileNotFound))
	assert.Len(t, scenes, 2)
	assert.Contains(t, scenes, first)
	assert.Contains(t, scenes, second)

	scenes, err = l.ImportAll(first, second)
	require.NoError(t, err)
	assert.Same(t, l.Get(first), scenes[first])
}
