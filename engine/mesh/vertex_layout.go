package mesh

import (
	"strconv"
	"strings"

	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/glsl"
	"github.com/pkg/errors"
)

// Attribute describes one float vertex attribute inside an interleaved vertex.
type Attribute struct {
	// Location is the shader input location.
	Location uint32

	// Components is the number of float32 components (1-4).
	Components int32

	// Offset is the byte offset of the attribute inside one vertex.
	Offset uintptr
}

// VertexLayout describes how interleaved vertex data maps onto shader inputs.
type VertexLayout struct {
	Attributes []Attribute

	// Stride is the byte distance between consecutive vertices.
	Stride int32
}

// PositionNormalLayout is the layout every built-in mesh uses: location 0 is the position (3 floats),
// location 1 the normal (3 floats), 24 bytes per vertex.
var PositionNormalLayout = VertexLayout{
	Attributes: []Attribute{
		{Location: 0, Components: 3, Offset: 0},
		{Location: 1, Components: 3, Offset: 3 * 4},
	},
	Stride: 6 * 4,
}

// FloatsPerVertex returns the stride in float32 units.
func (l VertexLayout) FloatsPerVertex() int {
	return int(l.Stride) / 4
}

// Locations returns the attribute locations in declaration order.
func (l VertexLayout) Locations() []uint32 {
	out := make([]uint32, len(l.Attributes))
	for i, a := range l.Attributes {
		out[i] = a.Location
	}
	return out
}

// Validate checks that the layout is well formed: a positive float-aligned stride, 1-4 components per
// attribute, every attribute inside the stride and no location used twice.
//
// Returns:
//   - error: describing the first violation, or nil
func (l VertexLayout) Validate() error {
	if l.Stride <= 0 || l.Stride%4 != 0 {
		return errors.Errorf("vertex layout stride %d must be a positive multiple of 4", l.Stride)
	}
	if len(l.Attributes) == 0 {
		return errors.New("vertex layout has no attributes")
	}
	seen := make(map[uint32]struct{}, len(l.Attributes))
	for _, a := range l.Attributes {
		if a.Components < 1 || a.Components > 4 {
			return errors.Errorf("attribute %d has %d components", a.Location, a.Components)
		}
		if end := a.Offset + uintptr(a.Components)*4; end > uintptr(l.Stride) {
			return errors.Errorf("attribute %d ends at byte %d past stride %d", a.Location, end, l.Stride)
		}
		if _, dup := seen[a.Location]; dup {
			return errors.Errorf("attribute location %d used twice", a.Location)
		}
		seen[a.Location] = struct{}{}
	}
	return nil
}

// check validates vertex and index data against the layout.
func (l VertexLayout) check(vertices []float32, indices []uint32) error {
	if err := l.Validate(); err != nil {
		return err
	}
	fpv := l.FloatsPerVertex()
	if len(vertices)%fpv != 0 {
		return errors.Errorf("vertex data length %d is not a multiple of %d floats", len(vertices), fpv)
	}
	if len(indices)%3 != 0 {
		return errors.Errorf("index count %d is not a multiple of 3", len(indices))
	}
	count := uint32(len(vertices) / fpv)
	for _, i := range indices {
		if i >= count {
			return errors.Errorf("index %d out of range for %d vertices", i, count)
		}
	}
	return nil
}

// Match checks that every located vertex input of a program is fed by an attribute of this layout with the
// same component count. Inputs without an explicit location and attributes the program ignores are allowed.
//
// Parameters:
//   - inputs: the vertex stage input declarations, typically Program.Inputs()
//
// Returns:
//   - error: wrapping ErrLayoutMismatch for the first unfed input, or nil
func (l VertexLayout) Match(inputs glsl.Declarations) error {
	for _, in := range inputs {
		if in.Location < 0 {
			continue
		}
		attr, ok := l.attribute(uint32(in.Location))
		if !ok {
			return errors.Wrapf(ErrLayoutMismatch, "input %s at location %d has no attribute", in.Name, in.Location)
		}
		if n := components(in.Type); n > 0 && n != attr.Components {
			return errors.Wrapf(ErrLayoutMismatch, "input %s is %s but location %d has %d components", in.Name, in.Type, in.Location, attr.Components)
		}
	}
	return nil
}

func (l VertexLayout) attribute(location uint32) (Attribute, bool) {
	for _, a := range l.Attributes {
		if a.Location == location {
			return a, true
		}
	}
	return Attribute{}, false
}

// components returns the scalar count of a GLSL vector type, or 0 for types a single attribute cannot feed.
func components(glslType string) int32 {
	switch glslType {
	case "float", "int", "uint":
		return 1
	}
	for _, prefix := range []string{"vec", "ivec", "uvec"} {
		if rest, ok := strings.CutPrefix(glslType, prefix); ok {
			if n, err := strconv.Atoi(rest); err == nil && n >= 2 && n <= 4 {
				return int32(n)
			}
		}
	}
	return 0
}
