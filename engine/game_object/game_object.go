package game_object

import (
	"sync/atomic"

	"github.com/Carmen-Shannon/oxy-viewer/engine/mesh"
)

// gameObject is the implementation of the GameObject interface.
type gameObject struct {
	id      uint64
	name    string
	program string
	mesh    mesh.Mesh
	enabled atomic.Bool
}

// GameObject is one drawable entry of a scene: a mesh bound to the name of the program that draws it.
// The object does not own the mesh; whoever acquired the mesh releases it.
type GameObject interface {
	// ID returns the scene-assigned identifier, 0 until added to a scene.
	//
	// Returns:
	//   - uint64: the identifier
	ID() uint64

	// Name returns the object label, defaulting to the mesh name.
	Name() string

	// Enabled reports whether the object is drawn.
	//
	// Returns:
	//   - bool: true when the object is rendered
	Enabled() bool

	// Mesh returns the drawn mesh.
	Mesh() mesh.Mesh

	// Program returns the name of the program that draws the mesh.
	Program() string

	// SetID sets the identifier. Called by the scene on Add.
	//
	// Parameters:
	//   - id: the identifier
	SetID(id uint64)

	// SetEnabled shows or hides the object.
	//
	// Parameters:
	//   - enabled: true to render the object
	SetEnabled(enabled bool)
}

var _ GameObject = &gameObject{}

// NewGameObject creates an enabled GameObject drawing m with the program named program.
//
// Parameters:
//   - m: the mesh to draw
//   - program: the program name as registered on the scene
//   - options: functional options
//
// Returns:
//   - GameObject: the new object
func NewGameObject(m mesh.Mesh, program string, options ...GameObjectBuilderOption) GameObject {
	obj := &gameObject{
		mesh:    m,
		program: program,
	}
	if m != nil {
		obj.name = m.Name()
	}
	obj.enabled.Store(true)
	for _, opt := range options {
		opt(obj)
	}
	return obj
}

func (g *gameObject) ID() uint64 {
	return g.id
}

func (g *gameObject) Name() string {
	return g.name
}

func (g *gameObject) Enabled() bool {
	return g.enabled.Load()
}

func (g *gameObject) Mesh() mesh.Mesh {
	return g.mesh
}

func (g *gameObject) Program() string {
	return g.program
}

func (g *gameObject) SetID(id uint64) {
	g.id = id
}

func (g *gameObject) SetEnabled(enabled bool) {
	g.enabled.Store(enabled)
}
