package light

import (
	"sync"

	"github.com/go-gl/mathgl/mgl32"
)

// lightImpl is the implementation of the Light interface.
type lightImpl struct {
	mu *sync.Mutex

	position  mgl32.Vec3
	color     mgl32.Vec3
	intensity float32
	enabled   bool
}

// Light is a point light feeding the "lightPos" and "lightColor" uniforms of lit programs.
type Light interface {
	// Position returns the world-space position of the light.
	//
	// Returns:
	//   - mgl32.Vec3: the light position
	Position() mgl32.Vec3

	// Color returns the RGB color of the light before intensity is applied.
	//
	// Returns:
	//   - mgl32.Vec3: the light color
	Color() mgl32.Vec3

	// Intensity returns the scalar multiplier applied to Color.
	//
	// Returns:
	//   - float32: the intensity
	Intensity() float32

	// Enabled reports whether the light contributes. A disabled light radiates black.
	Enabled() bool

	// Radiance returns Color scaled by Intensity, or black when disabled.
	// This is the value written to "lightColor".
	//
	// Returns:
	//   - mgl32.Vec3: the effective light color
	Radiance() mgl32.Vec3

	// SetPosition moves the light.
	//
	// Parameters:
	//   - position: the world-space position
	SetPosition(position mgl32.Vec3)

	// SetColor sets the RGB color.
	//
	// Parameters:
	//   - color: the light color
	SetColor(color mgl32.Vec3)

	// SetIntensity sets the scalar multiplier; negative values clamp to 0.
	//
	// Parameters:
	//   - intensity: the intensity
	SetIntensity(intensity float32)

	// SetEnabled enables or disables the light.
	SetEnabled(enabled bool)
}

var _ Light = &lightImpl{}

// NewLight creates a white, enabled point light at (0, 10, 5) with intensity 1.
//
// Parameters:
//   - opts: variadic LightBuilderOption functions
//
// Returns:
//   - Light: the configured light
func NewLight(opts ...LightBuilderOption) Light {
	l := &lightImpl{
		mu:        &sync.Mutex{},
		position:  mgl32.Vec3{0, 10, 5},
		color:     mgl32.Vec3{1, 1, 1},
		intensity: 1,
		enabled:   true,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *lightImpl) Position() mgl32.Vec3 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.position
}

func (l *lightImpl) Color() mgl32.Vec3 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.color
}

func (l *lightImpl) Intensity() float32 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.intensity
}

func (l *lightImpl) Enabled() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.enabled
}

func (l *lightImpl) Radiance() mgl32.Vec3 {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.enabled {
		return mgl32.Vec3{}
	}
	return l.color.Mul(l.intensity)
}

func (l *lightImpl) SetPosition(position mgl32.Vec3) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.position = position
}

func (l *lightImpl) SetColor(color mgl32.Vec3) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.color = color
}

func (l *lightImpl) SetIntensity(intensity float32) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.intensity = max(intensity, 0)
}

func (l *lightImpl) SetEnabled(enabled bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.enabled = enabled
}
