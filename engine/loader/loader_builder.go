package loader

import (
	"log/slog"

	"github.com/Carmen-Shannon/oxy-viewer/engine/model"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer"
)

// LoaderBuilderOption is a functional option for configuring a Loader via NewLoader.
type LoaderBuilderOption func(*loader)

// WithRenderer is an option builder that sets the Renderer meshes are uploaded to.
// Import and ImportAll work without one; Load and LoadCombined require it.
//
// Parameters:
//   - r: the renderer instance
//
// Returns:
//   - LoaderBuilderOption: a function that applies the renderer option to a loader
func WithRenderer(r renderer.Renderer) LoaderBuilderOption {
	return func(l *loader) {
		l.renderer = r
	}
}

// WithLogger sets the logger. A nil logger is ignored.
func WithLogger(logger *slog.Logger) LoaderBuilderOption {
	return func(l *loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithPostProcess replaces DefaultPostProcess.
//
// Parameters:
//   - steps: the post-processing steps applied after every import
//
// Returns:
//   - LoaderBuilderOption: a function that applies the post-process option to a loader
func WithPostProcess(steps PostProcess) LoaderBuilderOption {
	return func(l *loader) {
		l.postProcess = steps
	}
}

// WithWorkers sets the maximum number of concurrent imports in ImportAll. Values below 1 are ignored.
func WithWorkers(n int) LoaderBuilderOption {
	return func(l *loader) {
		if n > 0 {
			l.workers = n
		}
	}
}

// WithScene is an option builder that pre-populates the scene cache.
// The scene is stored as given; no post-processing is applied.
//
// Parameters:
//   - key: the cache key, normally the file path
//   - scene: the scene to cache
//
// Returns:
//   - LoaderBuilderOption: a function that applies the scene option to a loader
func WithScene(key string, scene *model.Scene) LoaderBuilderOption {
	return func(l *loader) {
		l.sceneCache[key] = scene
	}
}
