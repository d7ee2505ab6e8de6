package shader

import (
	"bytes"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testVertex = `#version 410 core
layout(location = 0) in vec3 aPos;
layout(location = 1) in vec3 aNormal;
uniform mat4 model;
uniform mat4 view;
uniform mat4 projection;
out vec3 Normal;
void main()
{
    Normal = aNormal;
    gl_Position = projection * view * model * vec4(aPos, 1.0);
}
`

const testFragment = `#version 410 core
in vec3 Normal;
uniform vec4 color;
out vec4 FragColor;
void main()
{
    FragColor = color;
}
`

func newHeadless(t *testing.T, logger *slog.Logger) (renderer.Renderer, renderer.Recorder) {
	t.Helper()
	r, err := renderer.NewRenderer(renderer.BackendTypeHeadless, renderer.WithLogger(logger), renderer.WithLeakDetection(true))
	require.NoError(t, err)
	rec, ok := r.Backend().(renderer.Recorder)
	require.True(t, ok)
	return r, rec
}

func TestNewProgramLinksAndDeletesStages(t *testing.T) {
	r, rec := newHeadless(t, nil)

	p, err := NewProgram(r, testVertex, testFragment, WithName("flat"))
	require.NoError(t, err)
	assert.Equal(t, "flat", p.Name())
	assert.NotZero(t, p.Handle())
	assert.Equal(t, 2, rec.CallCount("DeleteShader"))
	assert.Equal(t, map[renderer.HandleKind]int{renderer.HandleProgram: 1}, r.LiveHandles())
	assert.ElementsMatch(t, []string{"color", "model", "projection", "view"}, p.Uniforms())

	inputs := p.Inputs()
	require.Len(t, inputs, 2)
	assert.Equal(t, "aPos", inputs[0].Name)
	assert.Equal(t, 0, inputs[0].Location)

	p.Release()
	assert.Empty(t, r.LiveHandles())
	assert.NoError(t, r.Close())
}

func TestNewProgramCompileFailure(t *testing.T) {
	tests := []struct {
		name     string
		vertex   string
		fragment string
		stage    renderer.ShaderStage
	}{
		{"vertex empty", "", testFragment, renderer.StageVertex},
		{"vertex unbalanced", "#version 410 core\nvoid main() {\n", testFragment, renderer.StageVertex},
		{"fragment unbalanced", testVertex, "#version 410 core\nvoid main() }\n", renderer.StageFragment},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, rec := newHeadless(t, nil)

			p, err := NewProgram(r, tt.vertex, tt.fragment)
			assert.Nil(t, p)
			var ce *CompileError
			require.True(t, errors.As(err, &ce), "got %v", err)
			assert.Equal(t, tt.stage, ce.Stage)
			assert.NotEmpty(t, ce.Log)
			assert.Contains(t, err.Error(), ce.Log)

			assert.Zero(t, rec.CallCount("LinkProgram"))
			assert.Empty(t, r.LiveHandles())
			assert.NoError(t, r.Close())
		})
	}
}

func TestNewProgramLinkFailure(t *testing.T) {
	r, _ := newHeadless(t, nil)
	fragment := strings.Replace(testFragment, "in vec3 Normal;", "in vec3 Tangent;", 1)

	p, err := NewProgram(r, testVertex, fragment, WithName("broken"))
	assert.Nil(t, p)
	var le *LinkError
	require.True(t, errors.As(err, &le), "got %v", err)
	assert.Equal(t, "broken", le.Program)
	assert.Contains(t, le.Log, "Tangent")
	assert.Empty(t, r.LiveHandles())
}

func TestMissingUniformWarnsOnceAndSkipsWrite(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	r, rec := newHeadless(t, logger)

	p, err := NewProgram(r, testVertex, testFragment)
	require.NoError(t, err)
	p.Use()

	assert.False(t, p.SetVec3("lightPos", mgl32.Vec3{1, 2, 3}))
	assert.False(t, p.SetVec3("lightPos", mgl32.Vec3{1, 2, 3}))
	assert.Zero(t, rec.CallCount("UniformVec3"))
	assert.Equal(t, 1, strings.Count(buf.String(), "uniform not found"))

	assert.True(t, p.SetMat4("model", mgl32.Ident4()))
	assert.True(t, p.SetVec4("color", mgl32.Vec4{1, 0, 0, 1}))
	got, ok := rec.UniformValue(p.Handle(), "color")
	require.True(t, ok)
	assert.Equal(t, mgl32.Vec4{1, 0, 0, 1}, got)

	p.Release()
}

func TestReleaseTwiceIsNoOpAndUseAfterReleasePanics(t *testing.T) {
	r, rec := newHeadless(t, nil)
	p, err := NewProgram(r, testVertex, testFragment)
	require.NoError(t, err)

	p.Release()
	p.Release()
	assert.True(t, p.Released())
	assert.Equal(t, 1, rec.CallCount("DeleteProgram"))

	assert.Panics(t, func() { p.Use() })
	assert.Panics(t, func() { p.SetFloat("anything", 1) })
}

func TestLoadProgramReadsFiles(t *testing.T) {
	dir := t.TempDir()
	vertexPath := filepath.Join(dir, "flat.vert")
	fragmentPath := filepath.Join(dir, "flat.frag")
	require.NoError(t, os.WriteFile(vertexPath, []byte(testVertex), 0o644))
	require.NoError(t, os.WriteFile(fragmentPath, []byte(testFragment), 0o644))

	r, _ := newHeadless(t, nil)
	p, err := LoadProgram(r, vertexPath, fragmentPath)
	require.NoError(t, err)
	assert.Equal(t, "flat", p.Name())
	p.Release()

	_, err = LoadProgram(r, filepath.Join(dir, "missing.vert"), fragmentPath)
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
	assert.Empty(t, r.LiveHandles())
}
