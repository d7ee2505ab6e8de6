package main

import (
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/engine/config"
	"github.com/Carmen-Shannon/oxy-viewer/engine/loader"
	"github.com/Carmen-Shannon/oxy-viewer/engine/model"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer"
	"github.com/Carmen-Shannon/oxy-viewer/engine/scene"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

func headlessScene(t *testing.T) (renderer.Renderer, renderer.Recorder, scene.Scene) {
	t.Helper()
	r, err := renderer.NewRenderer(renderer.BackendTypeHeadless, renderer.WithLeakDetection(true), renderer.WithLogger(quiet))
	require.NoError(t, err)
	rec, ok := r.Backend().(renderer.Recorder)
	require.True(t, ok)
	return r, rec, scene.NewScene(r, scene.WithLogger(quiet))
}

func TestPopulateDefaultWorld(t *testing.T) {
	r, rec, s := headlessScene(t)
	l := loader.NewLoader(loader.BackendTypeGLTF, loader.WithRenderer(r), loader.WithLogger(quiet))

	require.NoError(t, populate(s, l, config.Default(), quiet))
	assert.Equal(t, []string{"basic", "building", "sky"}, s.Programs())
	assert.Equal(t, 3, s.Count(), "ground and two buildings")

	require.NoError(t, s.Render(0.016))
	draws := rec.Draws()
	require.Len(t, draws, 4)
	assert.Equal(t, s.Program("sky").Handle(), draws[0].Program)
	assert.Equal(t, renderer.DepthLessEqual, draws[0].DepthFunc)
	assert.Equal(t, s.Program("basic").Handle(), draws[1].Program)
	assert.Equal(t, s.Program("building").Handle(), draws[3].Program)

	s.Release()
	assert.NoError(t, r.Close())
}

func TestPopulateLoadsModelsAndSkipsMissing(t *testing.T) {
	r, _, s := headlessScene(t)
	tri := &model.Scene{
		Name: "tri",
		Meshes: []model.SubMesh{{
			Name:      "a",
			Positions: [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
			Faces:     [][]uint32{{0, 1, 2}},
		}},
		Root: &model.Node{MeshIndices: []int{0}},
	}
	l := loader.NewLoader(loader.BackendTypeGLTF,
		loader.WithRenderer(r),
		loader.WithLogger(quiet),
		loader.WithScene("tri.glb", tri),
	)

	cfg := config.Default()
	cfg.Sky.Enabled = false
	cfg.Buildings = nil
	placement := common.DefaultPlacement().UniformScale(2)
	cfg.Models = []config.ModelConfig{
		{Path: "tri.glb", Program: "building", Placement: placement},
		{Path: "tri.glb", Combined: true, Program: "basic", Placement: placement},
		{Path: filepath.Join(t.TempDir(), "missing.glb"), Program: "basic", Placement: placement},
	}

	require.NoError(t, populate(s, l, cfg, quiet))
	assert.Equal(t, 3, s.Count(), "ground plus both modes of the same model")
	assert.Equal(t, mgl32.Vec3{2, 2, 2}, s.Get(2).Mesh().Scale())

	s.Release()
	assert.Empty(t, r.LiveHandles())
	assert.NoError(t, r.Close())
}

func TestPopulateFailureIsReleasedByScene(t *testing.T) {
	r, _, s := headlessScene(t)
	cfg := config.Default()
	cfg.Ground.Program = "undeclared"

	require.Error(t, populate(s, loader.NewLoader(loader.BackendTypeGLTF, loader.WithRenderer(r)), cfg, quiet))
	s.Release()
	assert.Empty(t, r.LiveHandles())
	assert.NoError(t, r.Close())
}
