package renderer

import "github.com/go-gl/mathgl/mgl32"

// RendererBackendType identifies the graphics backend implementation used by the Renderer.
type RendererBackendType int

const (
	// BackendTypeGL selects the OpenGL 4.1 core backend. Requires a current GL context on the calling thread.
	BackendTypeGL RendererBackendType = iota

	// BackendTypeHeadless selects the in-memory recording backend. It emulates handle allocation,
	// shader compilation, uniform locations and draw calls without a GPU.
	BackendTypeHeadless
)

// HandleKind classifies a GPU object for live-handle tracking.
type HandleKind int

const (
	HandleBuffer HandleKind = iota
	HandleVertexArray
	HandleShader
	HandleProgram
)

func (k HandleKind) String() string {
	switch k {
	case HandleBuffer:
		return "buffer"
	case HandleVertexArray:
		return "vertex array"
	case HandleShader:
		return "shader"
	case HandleProgram:
		return "program"
	default:
		return "unknown"
	}
}

// ShaderStage identifies the pipeline stage a shader object is compiled for.
type ShaderStage int

const (
	StageVertex ShaderStage = iota
	StageFragment
)

func (s ShaderStage) String() string {
	if s == StageFragment {
		return "fragment"
	}
	return "vertex"
}

// BufferTarget identifies what a buffer object holds.
type BufferTarget int

const (
	// BufferTargetVertex holds interleaved vertex attributes.
	BufferTargetVertex BufferTarget = iota

	// BufferTargetIndex holds uint32 triangle indices. Binding it records it on the bound vertex array.
	BufferTargetIndex
)

// DepthFunc is the comparison used by the depth test.
type DepthFunc int

const (
	// DepthLess passes fragments strictly closer than the stored depth. This is the resting state.
	DepthLess DepthFunc = iota

	// DepthLessEqual also passes fragments at equal depth, used while drawing the sky at the far plane.
	DepthLessEqual
)

func (f DepthFunc) String() string {
	if f == DepthLessEqual {
		return "LEQUAL"
	}
	return "LESS"
}

// PolygonMode selects how triangles are rasterized.
type PolygonMode int

const (
	PolygonFill PolygonMode = iota
	PolygonLine
)

// RendererBackend is the low-level graphics API surface the Renderer drives.
// Every method must be called on the thread that owns the graphics context.
type RendererBackend interface {
	// CompileShader creates a shader object and compiles source for the given stage.
	//
	// Parameters:
	//   - stage: the pipeline stage
	//   - source: complete GLSL source text
	//
	// Returns:
	//   - uint32: the shader handle (valid even on failure, must still be deleted)
	//   - string: the compiler info log
	//   - bool: true if compilation succeeded
	CompileShader(stage ShaderStage, source string) (uint32, string, bool)

	DeleteShader(handle uint32)

	// LinkProgram creates a program, attaches both stages, links, and detaches the stages again.
	//
	// Parameters:
	//   - vertex: a compiled vertex shader handle
	//   - fragment: a compiled fragment shader handle
	//
	// Returns:
	//   - uint32: the program handle (valid even on failure, must still be deleted)
	//   - string: the linker info log
	//   - bool: true if linking succeeded
	LinkProgram(vertex, fragment uint32) (uint32, string, bool)

	DeleteProgram(handle uint32)
	UseProgram(handle uint32)

	// UniformLocation looks up a uniform by name on a linked program.
	//
	// Returns:
	//   - int32: the location, or -1 if the program has no active uniform with that name
	UniformLocation(program uint32, name string) int32

	// ActiveUniforms lists the names of the active uniforms of a linked program.
	ActiveUniforms(program uint32) []string

	UniformMat4(location int32, m mgl32.Mat4)
	UniformVec4(location int32, v mgl32.Vec4)
	UniformVec3(location int32, v mgl32.Vec3)
	UniformFloat(location int32, f float32)

	CreateVertexArray() uint32
	BindVertexArray(handle uint32)
	DeleteVertexArray(handle uint32)

	// CreateBuffer creates a buffer object, binds it to target and uploads data with static usage.
	// The buffer stays bound afterwards.
	CreateBuffer(target BufferTarget, data []byte) uint32
	DeleteBuffer(handle uint32)

	// VertexAttribPointer enables a float attribute on the bound vertex array, sourced from the bound vertex buffer.
	VertexAttribPointer(location uint32, components int32, stride int32, offset uintptr)

	// DrawIndexed issues an indexed triangle-list draw of count uint32 indices from the bound vertex array.
	DrawIndexed(count int32)

	SetDepthTest(enabled bool)
	SetDepthFunc(f DepthFunc)
	SetPolygonMode(mode PolygonMode)
	Clear(color mgl32.Vec4)
	Viewport(width, height int)

	// Version describes the underlying context.
	Version() string
}
