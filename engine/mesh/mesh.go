package mesh

import (
	"log/slog"
	"sync"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/engine/model"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/shader"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
)

// mesh is the implementation of the Mesh interface.
type mesh struct {
	mu *sync.Mutex

	name     string
	renderer renderer.Renderer
	logger   *slog.Logger
	layout   VertexLayout
	geometry model.Geometry

	placement common.Placement

	vertexArray  uint32
	vertexBuffer uint32
	indexBuffer  uint32
	indexCount   uint32

	uploaded bool
	released bool
}

// Mesh is a GPU-resident indexed triangle mesh with per-instance position, scale and colour.
//
// A Mesh owns one vertex array, one vertex buffer and one index buffer between Upload and Release.
// Drawing writes the "color" and "model" uniforms of the active program and issues exactly one
// indexed draw, so the program must be made active by the caller beforehand.
type Mesh interface {
	// Name returns the label given at construction.
	//
	// Returns:
	//   - string: the mesh name
	Name() string

	// Upload validates the geometry against the layout and creates the GPU buffers.
	// Uploading twice panics with ErrAlreadyUploaded.
	//
	// Returns:
	//   - error: a validation error; no GPU object is created in that case
	Upload() error

	// Draw writes "color" then "model" on program and draws IndexCount indices.
	// Panics with ErrNotUploaded before Upload and with renderer.ErrReleased after Release.
	//
	// Parameters:
	//   - program: the active program to receive the per-instance uniforms
	Draw(program shader.Program)

	// DrawGeometry binds the vertex array and draws IndexCount indices without writing any uniform.
	// Used for geometry whose program has no per-instance uniforms, such as the sky.
	// Panics like Draw.
	DrawGeometry()

	// Release deletes the GPU objects. A second call logs a warning and does nothing.
	Release()

	// Released reports whether Release has been called.
	Released() bool

	// Uploaded reports whether Upload has succeeded.
	Uploaded() bool

	// IndexCount returns the number of indices drawn per Draw, always a multiple of 3.
	IndexCount() uint32

	// VertexCount returns the number of vertices in the geometry.
	VertexCount() int

	// Geometry returns the CPU-side geometry the mesh was built from.
	Geometry() model.Geometry

	// Layout returns the vertex layout.
	Layout() VertexLayout

	// VertexArray returns the vertex array handle, 0 when not uploaded or released.
	VertexArray() uint32

	// ModelMatrix returns Translate(position) * Scale(scale): scale first, then translation.
	//
	// Returns:
	//   - mgl32.Mat4: the object-to-world matrix
	ModelMatrix() mgl32.Mat4

	Position() mgl32.Vec3
	SetPosition(position mgl32.Vec3)
	Scale() mgl32.Vec3
	SetScale(scale mgl32.Vec3)
	Color() mgl32.Vec4

	// SetColor sets the RGBA tint, clamping every channel to [0, 1].
	SetColor(color mgl32.Vec4)

	Placement() common.Placement
	SetPlacement(p common.Placement)
}

var _ Mesh = &mesh{}

// NewMesh creates a Mesh for geometry. No GPU object exists until Upload.
//
// Parameters:
//   - r: the renderer GPU objects are created through; must not be nil
//   - geometry: the vertices and indices
//   - options: variadic list of MeshBuilderOption functions
//
// Returns:
//   - Mesh: the new, not yet uploaded mesh
func NewMesh(r renderer.Renderer, geometry model.Geometry, options ...MeshBuilderOption) Mesh {
	if r == nil {
		panic("mesh: NewMesh requires a renderer")
	}
	m := &mesh{
		mu:        &sync.Mutex{},
		name:      "mesh",
		renderer:  r,
		logger:    r.Logger(),
		layout:    PositionNormalLayout,
		geometry:  geometry,
		placement: common.DefaultPlacement(),
	}
	for _, opt := range options {
		opt(m)
	}
	m.placement.Color = common.ClampColor(m.placement.Color)
	return m
}

func (m *mesh) Name() string {
	return m.name
}

func (m *mesh) Upload() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.released {
		panic(errors.Wrapf(renderer.ErrReleased, "mesh %q", m.name))
	}
	if m.uploaded {
		panic(errors.Wrapf(ErrAlreadyUploaded, "mesh %q", m.name))
	}
	if err := m.layout.check(m.geometry.Vertices, m.geometry.Indices); err != nil {
		return errors.Wrapf(err, "mesh %q", m.name)
	}

	r := m.renderer
	m.vertexArray = r.CreateVertexArray(m.name + ".vao")
	m.vertexBuffer = r.CreateBuffer(renderer.BufferTargetVertex, common.SliceToBytes(m.geometry.Vertices), m.name+".vbo")
	m.indexBuffer = r.CreateBuffer(renderer.BufferTargetIndex, common.SliceToBytes(m.geometry.Indices), m.name+".ebo")
	for _, a := range m.layout.Attributes {
		r.VertexAttribPointer(a.Location, a.Components, m.layout.Stride, a.Offset)
	}
	r.BindVertexArray(0)

	m.indexCount = uint32(len(m.geometry.Indices))
	m.uploaded = true
	m.logger.Debug("mesh uploaded", "mesh", m.name, "vertices", len(m.geometry.Vertices)/m.layout.FloatsPerVertex(), "indices", m.indexCount)
	return nil
}

func (m *mesh) Draw(program shader.Program) {
	vao, count, placement := m.drawState()
	program.SetVec4("color", placement.Color)
	program.SetMat4("model", common.ModelMatrix(placement.Position, placement.Scale))
	m.renderer.BindVertexArray(vao)
	m.renderer.DrawIndexed(count)
}

func (m *mesh) DrawGeometry() {
	vao, count, _ := m.drawState()
	m.renderer.BindVertexArray(vao)
	m.renderer.DrawIndexed(count)
}

// drawState snapshots what a draw needs, panicking when the mesh cannot be drawn.
func (m *mesh) drawState() (uint32, uint32, common.Placement) {
	m.mu.Lock()
	released, uploaded := m.released, m.uploaded
	vao, count, placement := m.vertexArray, m.indexCount, m.placement
	m.mu.Unlock()

	if released {
		panic(errors.Wrapf(renderer.ErrReleased, "mesh %q", m.name))
	}
	if !uploaded {
		panic(errors.Wrapf(ErrNotUploaded, "mesh %q", m.name))
	}
	return vao, count, placement
}

func (m *mesh) Release() {
	m.mu.Lock()
	if m.released {
		m.mu.Unlock()
		m.logger.Warn("mesh released twice", "mesh", m.name)
		return
	}
	m.released = true
	uploaded := m.uploaded
	vbo, ebo, vao := m.vertexBuffer, m.indexBuffer, m.vertexArray
	m.vertexBuffer, m.indexBuffer, m.vertexArray = 0, 0, 0
	m.mu.Unlock()

	if !uploaded {
		return
	}
	m.renderer.DeleteBuffer(vbo)
	m.renderer.DeleteBuffer(ebo)
	m.renderer.DeleteVertexArray(vao)
}

func (m *mesh) Released() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.released
}

func (m *mesh) Uploaded() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.uploaded
}

func (m *mesh) IndexCount() uint32 {
	return uint32(len(m.geometry.Indices))
}

func (m *mesh) VertexCount() int {
	return len(m.geometry.Vertices) / m.layout.FloatsPerVertex()
}

func (m *mesh) Geometry() model.Geometry {
	return m.geometry
}

func (m *mesh) Layout() VertexLayout {
	return m.layout
}

func (m *mesh) VertexArray() uint32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.vertexArray
}

func (m *mesh) ModelMatrix() mgl32.Mat4 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return common.ModelMatrix(m.placement.Position, m.placement.Scale)
}

func (m *mesh) Position() mgl32.Vec3 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.placement.Position
}

func (m *mesh) SetPosition(position mgl32.Vec3) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.placement.Position = position
}

func (m *mesh) Scale() mgl32.Vec3 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.placement.Scale
}

func (m *mesh) SetScale(scale mgl32.Vec3) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.placement.Scale = scale
}

func (m *mesh) Color() mgl32.Vec4 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.placement.Color
}

func (m *mesh) SetColor(color mgl32.Vec4) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.placement.Color = common.ClampColor(color)
}

func (m *mesh) Placement() common.Placement {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.placement
}

func (m *mesh) SetPlacement(p common.Placement) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p.Color = common.ClampColor(p.Color)
	m.placement = p
}
