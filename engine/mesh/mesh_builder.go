package mesh

import (
	"log/slog"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/go-gl/mathgl/mgl32"
)

// MeshBuilderOption is a functional option for configuring a Mesh via NewMesh.
type MeshBuilderOption func(*mesh)

// WithName sets the label used in logs and leak reports.
//
// Parameters:
//   - name: the mesh name
//
// Returns:
//   - MeshBuilderOption: a function that applies the name option to a mesh
func WithName(name string) MeshBuilderOption {
	return func(m *mesh) {
		if name != "" {
			m.name = name
		}
	}
}

// WithLayout replaces PositionNormalLayout.
//
// Parameters:
//   - layout: the vertex layout of the geometry
//
// Returns:
//   - MeshBuilderOption: a function that applies the layout option to a mesh
func WithLayout(layout VertexLayout) MeshBuilderOption {
	return func(m *mesh) {
		m.layout = layout
	}
}

// WithPosition sets the world-space position.
//
// Parameters:
//   - position: the translation
//
// Returns:
//   - MeshBuilderOption: a function that applies the position option to a mesh
func WithPosition(position mgl32.Vec3) MeshBuilderOption {
	return func(m *mesh) {
		m.placement.Position = position
	}
}

// WithScale sets the non-uniform scale.
//
// Parameters:
//   - scale: per-axis scale factors
//
// Returns:
//   - MeshBuilderOption: a function that applies the scale option to a mesh
func WithScale(scale mgl32.Vec3) MeshBuilderOption {
	return func(m *mesh) {
		m.placement.Scale = scale
	}
}

// WithColor sets the RGBA tint. Channels are clamped to [0, 1].
//
// Parameters:
//   - color: the tint
//
// Returns:
//   - MeshBuilderOption: a function that applies the color option to a mesh
func WithColor(color mgl32.Vec4) MeshBuilderOption {
	return func(m *mesh) {
		m.placement.Color = color
	}
}

// WithPlacement sets position, scale and colour at once.
//
// Parameters:
//   - p: the placement
//
// Returns:
//   - MeshBuilderOption: a function that applies the placement option to a mesh
func WithPlacement(p common.Placement) MeshBuilderOption {
	return func(m *mesh) {
		m.placement = p
	}
}

// WithLogger overrides the logger inherited from the renderer.
//
// Parameters:
//   - logger: the logger to use; nil keeps the renderer's logger
//
// Returns:
//   - MeshBuilderOption: a function that applies the logger option to a mesh
func WithLogger(logger *slog.Logger) MeshBuilderOption {
	return func(m *mesh) {
		if logger != nil {
			m.logger = logger
		}
	}
}
