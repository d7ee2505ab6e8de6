// package common contains common types that are used throughout this viewer. They are not interface-wrapped structs, just plain structs that express
// commonly used data-types.
package common

import "github.com/go-gl/mathgl/mgl32"

// Placement is the per-instance state every drawable carries: where it sits, how it is stretched and what colour it is tinted.
type Placement struct {
	// Position is the world-space translation.
	Position mgl32.Vec3 `yaml:"position"`

	// Scale is the non-uniform scale applied before translation.
	Scale mgl32.Vec3 `yaml:"scale"`

	// Color is the RGBA tint, each channel in [0, 1].
	Color mgl32.Vec4 `yaml:"color"`
}

// DefaultPlacement returns a Placement at the origin with unit scale and opaque white colour.
//
// Returns:
//   - Placement: the identity placement
func DefaultPlacement() Placement {
	return Placement{
		Scale: mgl32.Vec3{1, 1, 1},
		Color: mgl32.Vec4{1, 1, 1, 1},
	}
}

// UniformScale returns a copy of p with the same scale factor on every axis.
//
// Parameters:
//   - s: the scale factor
//
// Returns:
//   - Placement: the modified copy
func (p Placement) UniformScale(s float32) Placement {
	p.Scale = mgl32.Vec3{s, s, s}
	return p
}

// RGB returns a copy of p with an opaque colour built from r, g and b.
//
// Parameters:
//   - r, g, b: colour channels in [0, 1]
//
// Returns:
//   - Placement: the modified copy
func (p Placement) RGB(r, g, b float32) Placement {
	p.Color = mgl32.Vec4{r, g, b, 1}
	return p
}

// ClampColor bounds every channel of c to [0, 1].
//
// Parameters:
//   - c: the colour to clamp
//
// Returns:
//   - mgl32.Vec4: the clamped colour
func ClampColor(c mgl32.Vec4) mgl32.Vec4 {
	for i := range c {
		c[i] = Clamp(c[i], 0, 1)
	}
	return c
}
