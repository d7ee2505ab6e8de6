package renderer

import "log/slog"

// RendererBuilderOption is a functional option applied to a renderer during construction via NewRenderer.
type RendererBuilderOption func(*renderer)

// WithLogger sets the structured logger for the renderer and the resources created through it.
//
// Parameters:
//   - logger: the logger to use; nil keeps slog.Default()
//
// Returns:
//   - RendererBuilderOption: a function that applies the logger option to a renderer
func WithLogger(logger *slog.Logger) RendererBuilderOption {
	return func(r *renderer) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithLeakDetection overrides the build default for leak detection. When enabled, Close returns
// ErrLeakedHandles if any GPU object is still alive. Debug builds (-tags debug) enable it by default.
//
// Parameters:
//   - enabled: true to report leaks as an error from Close
//
// Returns:
//   - RendererBuilderOption: a function that applies the leak detection option to a renderer
func WithLeakDetection(enabled bool) RendererBuilderOption {
	return func(r *renderer) {
		r.leakDetection = enabled
	}
}
