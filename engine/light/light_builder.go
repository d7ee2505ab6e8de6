package light

import "github.com/go-gl/mathgl/mgl32"

// LightBuilderOption is a function that configures a Light instance during construction.
type LightBuilderOption func(*lightImpl)

// WithPosition places the light in world space. It feeds the "lightPos" uniform.
//
// Parameters:
//   - position: world-space position
func WithPosition(position mgl32.Vec3) LightBuilderOption {
	return func(l *lightImpl) {
		l.position = position
	}
}

// WithColor sets the RGB colour before intensity is applied.
//
// Parameters:
//   - color: linear RGB, each channel normally in [0, 1]
func WithColor(color mgl32.Vec3) LightBuilderOption {
	return func(l *lightImpl) {
		l.color = color
	}
}

// WithIntensity scales the colour; "lightColor" receives color * intensity.
//
// Parameters:
//   - intensity: the multiplier, negative values clamp to 0
func WithIntensity(intensity float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.intensity = max(intensity, 0)
	}
}

// WithEnabled sets whether the light starts enabled.
func WithEnabled(enabled bool) LightBuilderOption {
	return func(l *lightImpl) {
		l.enabled = enabled
	}
}
