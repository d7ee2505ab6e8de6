package scene

import (
	"log/slog"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/engine/camera"
	"github.com/Carmen-Shannon/oxy-viewer/engine/light"
	"github.com/Carmen-Shannon/oxy-viewer/engine/profiler"
	"github.com/go-gl/mathgl/mgl32"
)

// SceneBuilderOption is a functional option for configuring a Scene.
// Use the With* functions to create options.
type SceneBuilderOption func(s *scene)

// WithName sets the scene name used in logs and sink events.
func WithName(name string) SceneBuilderOption {
	return func(s *scene) {
		if name != "" {
			s.name = name
		}
	}
}

// WithActive sets whether the scene is active for rendering.
//
// Parameters:
//   - active: whether the scene is active
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithActive(active bool) SceneBuilderOption {
	return func(s *scene) {
		s.active = active
	}
}

// WithCamera sets the camera providing view and projection.
//
// Parameters:
//   - cam: the camera
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithCamera(cam camera.Camera) SceneBuilderOption {
	return func(s *scene) {
		s.cam = cam
	}
}

// WithLight sets the point light.
func WithLight(l light.Light) SceneBuilderOption {
	return func(s *scene) {
		s.light = l
	}
}

// WithClearColor sets the frame clear color. Components are clamped to [0, 1].
//
// Parameters:
//   - color: RGBA clear color
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithClearColor(color mgl32.Vec4) SceneBuilderOption {
	return func(s *scene) {
		s.clearColor = common.ClampColor(color)
	}
}

// WithSkyColors sets the horizon and zenith colors of the sky gradient.
func WithSkyColors(horizon, zenith mgl32.Vec3) SceneBuilderOption {
	return func(s *scene) {
		s.horizonColor, s.zenithColor = horizon, zenith
	}
}

// WithSink sets the observability sink receiving frame statistics and events.
// A nil sink is ignored.
//
// Parameters:
//   - sink: the sink
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithSink(sink profiler.Sink) SceneBuilderOption {
	return func(s *scene) {
		if sink != nil {
			s.sink = sink
		}
	}
}

// WithLogger sets the logger. Defaults to the renderer's logger; nil is ignored.
func WithLogger(logger *slog.Logger) SceneBuilderOption {
	return func(s *scene) {
		if logger != nil {
			s.logger = logger
		}
	}
}
