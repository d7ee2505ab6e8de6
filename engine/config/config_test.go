package config

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-viewer/engine/mesh"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "viewer.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaultScene(t *testing.T) {
	c := Default()
	require.NoError(t, c.Validate())

	assert.Equal(t, 1280, c.Window.Width)
	assert.Equal(t, mgl32.Vec4{0.1, 0.2, 0.4, 1}, c.Window.ClearColor)
	assert.Equal(t, mgl32.Vec3{0, 1.7, 10}, c.Camera.Position)
	assert.Equal(t, float32(45), c.Camera.Fov)

	assert.Equal(t, mgl32.Vec3{100, 0.2, 100}, c.Ground.Scale)
	assert.Equal(t, mgl32.Vec4{0.65, 0.50, 0.48, 1}, c.Ground.Color)

	require.Len(t, c.Buildings, 2)
	assert.Equal(t, mesh.ShapeBuilding, c.Buildings[1].Shape)
	assert.Equal(t, mgl32.Vec3{4, 7, -4}, c.Buildings[1].Position)
	assert.Equal(t, mgl32.Vec3{7, 20, 7}, c.Buildings[1].Scale)

	assert.Empty(t, c.Models)
	assert.Equal(t, 5*time.Second, c.Profiling.Interval)
	level, err := c.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelInfo, level)
}

func TestLoadOverlaysDefaults(t *testing.T) {
	path := writeConfig(t, `
window:
  width: 800
log_level: DEBUG
buildings:
  - shape: pyramid
    program: basic
    position: [1, 2, 3]
    scale: [1, 1, 1]
    color: [1, 0, 0, 1]
models:
  - path: assets/house.glb
    combined: true
    program: building
    scale: [2, 2, 2]
    color: [1, 1, 1, 1]
`)
	c, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 800, c.Window.Width)
	assert.Equal(t, 720, c.Window.Height, "untouched keys keep defaults")
	require.Len(t, c.Buildings, 1, "lists replace defaults")
	assert.Equal(t, mesh.ShapePyramid, c.Buildings[0].Shape)
	require.Len(t, c.Models, 1)
	assert.True(t, c.Models[0].Combined)
	assert.Equal(t, mgl32.Vec3{2, 2, 2}, c.Models[0].Scale)

	level, err := c.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestLoadEmptyFileKeepsDefaults(t *testing.T) {
	c, err := Load(writeConfig(t, ""))
	require.NoError(t, err)
	assert.Equal(t, Default(), c)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.True(t, errors.Is(err, os.ErrNotExist))

	_, err = Load(writeConfig(t, "window:\n  widht: 10\n"))
	assert.Error(t, err, "unknown keys are rejected")

	_, err = Load(writeConfig(t, "camera:\n  position: [1, 2]\n"))
	assert.Error(t, err, "vectors need every component")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"zero width", func(c *Config) { c.Window.Width = 0 }},
		{"fov too wide", func(c *Config) { c.Camera.Fov = 180 }},
		{"near beyond far", func(c *Config) { c.Camera.Near = 600 }},
		{"clear color out of range", func(c *Config) { c.Window.ClearColor[0] = 1.5 }},
		{"negative intensity", func(c *Config) { c.Light.Intensity = -1 }},
		{"bad level", func(c *Config) { c.LogLevel = "loud" }},
		{"unknown shape", func(c *Config) { c.Buildings[0].Shape = "sphere" }},
		{"unknown program", func(c *Config) { c.Ground.Program = "phong" }},
		{"building color", func(c *Config) { c.Buildings[1].Color[3] = -0.1 }},
		{"duplicate shader", func(c *Config) { c.Shaders = append(c.Shaders, ProgramConfig{Name: "basic"}) }},
		{"half a shader", func(c *Config) { c.Shaders[0].Vertex = "basic.vert" }},
		{"sky without program", func(c *Config) { c.Sky.Program = "none" }},
		{"model without path", func(c *Config) {
			c.Models = []ModelConfig{{Program: "basic"}}
		}},
		{"profiling without interval", func(c *Config) {
			c.Profiling.Enabled = true
			c.Profiling.Interval = 0
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.mutate(&c)
			err := c.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalid))
		})
	}
}
