package renderer

import (
	"log/slog"
	"sync"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
)

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu *sync.Mutex

	backendType RendererBackendType
	backend     RendererBackend

	logger        *slog.Logger
	tracker       *leakTracker
	leakDetection bool

	currentProgram uint32
	depthFunc      DepthFunc
	polygonMode    PolygonMode
	drawCalls      uint64
	closed         bool
}

// Renderer is the graphics context collaborator every GPU resource is created through.
//
// It is a thin stateful layer over a RendererBackend: it counts live handles per kind so leaks can
// be reported, caches the bound state it is responsible for (active program, depth function,
// polygon mode), and guards against deleting a handle twice. All methods must be called from the
// thread that owns the graphics context.
type Renderer interface {
	// CompileShader compiles one shader stage. The returned handle is live even when compilation
	// fails and must be released with DeleteShader.
	//
	// Parameters:
	//   - stage: the pipeline stage
	//   - source: complete GLSL source text
	//   - label: a name used in leak reports
	//
	// Returns:
	//   - uint32: the shader handle
	//   - string: the compiler info log
	//   - bool: true if compilation succeeded
	CompileShader(stage ShaderStage, source, label string) (uint32, string, bool)

	// DeleteShader deletes a shader object. Unknown or already deleted handles are ignored with a warning.
	//
	// Parameters:
	//   - handle: the shader handle
	DeleteShader(handle uint32)

	// LinkProgram links a vertex and fragment shader into a program. The returned handle is live even
	// when linking fails and must be released with DeleteProgram.
	//
	// Parameters:
	//   - vertex: the compiled vertex shader handle
	//   - fragment: the compiled fragment shader handle
	//   - label: a name used in leak reports
	//
	// Returns:
	//   - uint32: the program handle
	//   - string: the linker info log
	//   - bool: true if linking succeeded
	LinkProgram(vertex, fragment uint32, label string) (uint32, string, bool)

	// DeleteProgram deletes a program. If it is the active program, no program is active afterwards.
	//
	// Parameters:
	//   - handle: the program handle
	DeleteProgram(handle uint32)

	// UseProgram makes a program active. Re-activating the active program is skipped.
	//
	// Parameters:
	//   - handle: the program handle
	UseProgram(handle uint32)

	// CurrentProgram returns the active program handle, or 0 if none.
	//
	// Returns:
	//   - uint32: the active program
	CurrentProgram() uint32

	// UniformLocation looks up a uniform of a linked program by name.
	//
	// Parameters:
	//   - program: the program handle
	//   - name: the uniform name
	//
	// Returns:
	//   - int32: the location, or -1 if not found
	UniformLocation(program uint32, name string) int32

	// ActiveUniforms lists the names of the active uniforms of a linked program.
	//
	// Parameters:
	//   - program: the program handle
	//
	// Returns:
	//   - []string: uniform names
	ActiveUniforms(program uint32) []string

	// UniformMat4 writes a 4x4 matrix to a location of the active program.
	UniformMat4(location int32, m mgl32.Mat4)

	// UniformVec4 writes a vec4 to a location of the active program.
	UniformVec4(location int32, v mgl32.Vec4)

	// UniformVec3 writes a vec3 to a location of the active program.
	UniformVec3(location int32, v mgl32.Vec3)

	// UniformFloat writes a float to a location of the active program.
	UniformFloat(location int32, f float32)

	// CreateVertexArray creates a vertex array and leaves it bound so buffers and attributes attach to it.
	//
	// Parameters:
	//   - label: a name used in leak reports
	//
	// Returns:
	//   - uint32: the vertex array handle
	CreateVertexArray(label string) uint32

	// BindVertexArray binds a vertex array, or unbinds with 0.
	BindVertexArray(handle uint32)

	// DeleteVertexArray deletes a vertex array. Unknown or already deleted handles are ignored with a warning.
	DeleteVertexArray(handle uint32)

	// CreateBuffer creates a buffer, binds it to target and uploads data. Index buffers attach to the bound vertex array.
	//
	// Parameters:
	//   - target: vertex or index buffer
	//   - data: raw bytes to upload
	//   - label: a name used in leak reports
	//
	// Returns:
	//   - uint32: the buffer handle
	CreateBuffer(target BufferTarget, data []byte, label string) uint32

	// DeleteBuffer deletes a buffer. Unknown or already deleted handles are ignored with a warning.
	DeleteBuffer(handle uint32)

	// VertexAttribPointer describes one float attribute of the bound vertex buffer on the bound vertex array.
	//
	// Parameters:
	//   - location: the shader input location
	//   - components: float components per vertex (1-4)
	//   - stride: bytes between consecutive vertices
	//   - offset: byte offset of the attribute inside a vertex
	VertexAttribPointer(location uint32, components int32, stride int32, offset uintptr)

	// DrawIndexed issues one indexed triangle-list draw from the bound vertex array with the active program.
	//
	// Parameters:
	//   - indexCount: the number of uint32 indices to read
	DrawIndexed(indexCount uint32)

	// SetDepthTest enables or disables depth testing.
	SetDepthTest(enabled bool)

	// SetDepthFunc sets the depth comparison.
	SetDepthFunc(f DepthFunc)

	// DepthFunc returns the last depth comparison set.
	DepthFunc() DepthFunc

	// SetPolygonMode switches between filled and wireframe rasterization.
	SetPolygonMode(mode PolygonMode)

	// PolygonMode returns the current rasterization mode.
	PolygonMode() PolygonMode

	// Clear clears the color and depth buffers.
	//
	// Parameters:
	//   - color: the RGBA clear color
	Clear(color mgl32.Vec4)

	// Resize updates the viewport to a new framebuffer size.
	//
	// Parameters:
	//   - width: the new width in pixels
	//   - height: the new height in pixels
	Resize(width, height int)

	// LiveHandles returns the number of live GPU objects per kind. Kinds with none are omitted.
	//
	// Returns:
	//   - map[HandleKind]int: live counts
	LiveHandles() map[HandleKind]int

	// DrawCalls returns the number of draws issued since creation.
	DrawCalls() uint64

	// Backend returns the underlying backend, e.g. to type-assert a Recorder in tests.
	Backend() RendererBackend

	// BackendType returns the backend type the renderer was created with.
	BackendType() RendererBackendType

	// Logger returns the logger resources created from this renderer should inherit.
	Logger() *slog.Logger

	// Close ends the renderer. Any GPU object still alive is logged; when leak detection is on,
	// Close also returns ErrLeakedHandles. Creating objects after Close panics.
	//
	// Returns:
	//   - error: ErrLeakedHandles wrapped with the leak report, or nil
	Close() error
}

var _ Renderer = &renderer{}

// NewRenderer creates a new Renderer with the given backend type.
// For BackendTypeGL a GL 4.1 core context must already be current on the calling thread.
//
// Parameters:
//   - backendType: the graphics backend to use (BackendTypeGL or BackendTypeHeadless)
//   - options: variadic list of RendererBuilderOption functions to configure the Renderer
//
// Returns:
//   - Renderer: the configured renderer
//   - error: ErrContextUnavailable if the GL backend fails to initialize
func NewRenderer(backendType RendererBackendType, options ...RendererBuilderOption) (Renderer, error) {
	r := &renderer{
		mu:            &sync.Mutex{},
		backendType:   backendType,
		logger:        slog.Default(),
		tracker:       newLeakTracker(),
		leakDetection: leakDetectionDefault,
	}
	for _, opt := range options {
		opt(r)
	}

	switch backendType {
	case BackendTypeHeadless:
		r.backend = newHeadlessRendererBackend()
	case BackendTypeGL:
		fallthrough
	default:
		b, err := newGLRendererBackend()
		if err != nil {
			return nil, err
		}
		r.backend = b
	}

	r.backend.SetDepthTest(true)
	r.backend.SetDepthFunc(DepthLess)
	r.logger.Debug("renderer created", "backend", r.backend.Version(), "leak_detection", r.leakDetection)
	return r, nil
}

func (r *renderer) ensureOpen() {
	if r.closed {
		panic(ErrClosed)
	}
}

func (r *renderer) forget(kind HandleKind, handle uint32) bool {
	if handle == 0 || !r.tracker.release(kind, handle) {
		r.logger.Warn("ignoring delete of unknown gpu handle", "kind", kind.String(), "handle", handle)
		return false
	}
	return true
}

func (r *renderer) CompileShader(stage ShaderStage, source, label string) (uint32, string, bool) {
	r.ensureOpen()
	h, infoLog, ok := r.backend.CompileShader(stage, source)
	r.tracker.acquire(HandleShader, h, label)
	return h, infoLog, ok
}

func (r *renderer) DeleteShader(handle uint32) {
	if r.forget(HandleShader, handle) {
		r.backend.DeleteShader(handle)
	}
}

func (r *renderer) LinkProgram(vertex, fragment uint32, label string) (uint32, string, bool) {
	r.ensureOpen()
	h, infoLog, ok := r.backend.LinkProgram(vertex, fragment)
	r.tracker.acquire(HandleProgram, h, label)
	return h, infoLog, ok
}

func (r *renderer) DeleteProgram(handle uint32) {
	if !r.forget(HandleProgram, handle) {
		return
	}
	r.backend.DeleteProgram(handle)
	r.mu.Lock()
	if r.currentProgram == handle {
		r.currentProgram = 0
	}
	r.mu.Unlock()
}

func (r *renderer) UseProgram(handle uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.currentProgram == handle {
		return
	}
	r.currentProgram = handle
	r.backend.UseProgram(handle)
}

func (r *renderer) CurrentProgram() uint32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.currentProgram
}

func (r *renderer) UniformLocation(program uint32, name string) int32 {
	return r.backend.UniformLocation(program, name)
}

func (r *renderer) ActiveUniforms(program uint32) []string {
	return r.backend.ActiveUniforms(program)
}

func (r *renderer) UniformMat4(location int32, m mgl32.Mat4) {
	r.backend.UniformMat4(location, m)
}

func (r *renderer) UniformVec4(location int32, v mgl32.Vec4) {
	r.backend.UniformVec4(location, v)
}

func (r *renderer) UniformVec3(location int32, v mgl32.Vec3) {
	r.backend.UniformVec3(location, v)
}

func (r *renderer) UniformFloat(location int32, f float32) {
	r.backend.UniformFloat(location, f)
}

func (r *renderer) CreateVertexArray(label string) uint32 {
	r.ensureOpen()
	h := r.backend.CreateVertexArray()
	r.tracker.acquire(HandleVertexArray, h, label)
	return h
}

func (r *renderer) BindVertexArray(handle uint32) {
	r.backend.BindVertexArray(handle)
}

func (r *renderer) DeleteVertexArray(handle uint32) {
	if r.forget(HandleVertexArray, handle) {
		r.backend.DeleteVertexArray(handle)
	}
}

func (r *renderer) CreateBuffer(target BufferTarget, data []byte, label string) uint32 {
	r.ensureOpen()
	h := r.backend.CreateBuffer(target, data)
	r.tracker.acquire(HandleBuffer, h, label)
	return h
}

func (r *renderer) DeleteBuffer(handle uint32) {
	if r.forget(HandleBuffer, handle) {
		r.backend.DeleteBuffer(handle)
	}
}

func (r *renderer) VertexAttribPointer(location uint32, components int32, stride int32, offset uintptr) {
	r.backend.VertexAttribPointer(location, components, stride, offset)
}

func (r *renderer) DrawIndexed(indexCount uint32) {
	r.backend.DrawIndexed(int32(indexCount))
	r.mu.Lock()
	r.drawCalls++
	r.mu.Unlock()
}

func (r *renderer) SetDepthTest(enabled bool) {
	r.backend.SetDepthTest(enabled)
}

func (r *renderer) SetDepthFunc(f DepthFunc) {
	r.mu.Lock()
	r.depthFunc = f
	r.mu.Unlock()
	r.backend.SetDepthFunc(f)
}

func (r *renderer) DepthFunc() DepthFunc {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.depthFunc
}

func (r *renderer) SetPolygonMode(mode PolygonMode) {
	r.mu.Lock()
	r.polygonMode = mode
	r.mu.Unlock()
	r.backend.SetPolygonMode(mode)
}

func (r *renderer) PolygonMode() PolygonMode {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.polygonMode
}

func (r *renderer) Clear(color mgl32.Vec4) {
	r.backend.Clear(color)
}

func (r *renderer) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	r.backend.Viewport(width, height)
}

func (r *renderer) LiveHandles() map[HandleKind]int {
	return r.tracker.counts()
}

func (r *renderer) DrawCalls() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.drawCalls
}

func (r *renderer) Backend() RendererBackend {
	return r.backend
}

func (r *renderer) BackendType() RendererBackendType {
	return r.backendType
}

func (r *renderer) Logger() *slog.Logger {
	return r.logger
}

func (r *renderer) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true

	n := r.tracker.total()
	if n == 0 {
		return nil
	}
	report := r.tracker.report()
	r.logger.Warn("gpu handles still alive at close", "count", n, "handles", report)
	if r.leakDetection {
		return errors.Wrapf(ErrLeakedHandles, "%d live: %s", n, report)
	}
	return nil
}
