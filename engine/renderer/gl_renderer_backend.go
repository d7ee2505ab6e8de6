package renderer

import (
	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
)

// glRendererBackend drives an OpenGL 4.1 core context through go-gl.
// The context must be current on the calling OS thread for the backend's whole life.
type glRendererBackend struct{}

var _ RendererBackend = &glRendererBackend{}

// newGLRendererBackend loads the GL function pointers for the current context.
//
// Reference: https://pkg.go.dev/github.com/go-gl/gl/v4.1-core/gl#Init
func newGLRendererBackend() (*glRendererBackend, error) {
	if err := gl.Init(); err != nil {
		return nil, errors.Wrap(ErrContextUnavailable, err.Error())
	}
	return &glRendererBackend{}, nil
}

func (b *glRendererBackend) CompileShader(stage ShaderStage, source string) (uint32, string, bool) {
	xtype := uint32(gl.VERTEX_SHADER)
	if stage == StageFragment {
		xtype = gl.FRAGMENT_SHADER
	}

	handle := gl.CreateShader(xtype)
	csource, free := gl.Strs(source + "\x00")
	gl.ShaderSource(handle, 1, csource, nil)
	free()
	gl.CompileShader(handle)

	var status int32
	gl.GetShaderiv(handle, gl.COMPILE_STATUS, &status)

	var logSize int32
	gl.GetShaderiv(handle, gl.INFO_LOG_LENGTH, &logSize)
	infoLog := ""
	if logSize > 0 {
		buf := make([]uint8, logSize+1)
		gl.GetShaderInfoLog(handle, int32(len(buf)), &logSize, &buf[0])
		infoLog = string(buf[:logSize])
	}
	return handle, infoLog, status != gl.FALSE
}

func (b *glRendererBackend) DeleteShader(handle uint32) {
	gl.DeleteShader(handle)
}

func (b *glRendererBackend) LinkProgram(vertex, fragment uint32) (uint32, string, bool) {
	handle := gl.CreateProgram()
	gl.AttachShader(handle, vertex)
	gl.AttachShader(handle, fragment)
	gl.LinkProgram(handle)

	var status int32
	gl.GetProgramiv(handle, gl.LINK_STATUS, &status)

	var logSize int32
	gl.GetProgramiv(handle, gl.INFO_LOG_LENGTH, &logSize)
	infoLog := ""
	if logSize > 0 {
		buf := make([]uint8, logSize+1)
		gl.GetProgramInfoLog(handle, int32(len(buf)), &logSize, &buf[0])
		infoLog = string(buf[:logSize])
	}

	gl.DetachShader(handle, vertex)
	gl.DetachShader(handle, fragment)
	return handle, infoLog, status != gl.FALSE
}

func (b *glRendererBackend) DeleteProgram(handle uint32) {
	gl.DeleteProgram(handle)
}

func (b *glRendererBackend) UseProgram(handle uint32) {
	gl.UseProgram(handle)
}

func (b *glRendererBackend) UniformLocation(program uint32, name string) int32 {
	return gl.GetUniformLocation(program, gl.Str(name+"\x00"))
}

func (b *glRendererBackend) ActiveUniforms(program uint32) []string {
	var count, maxLen int32
	gl.GetProgramiv(program, gl.ACTIVE_UNIFORMS, &count)
	gl.GetProgramiv(program, gl.ACTIVE_UNIFORM_MAX_LENGTH, &maxLen)
	if count == 0 || maxLen == 0 {
		return nil
	}

	names := make([]string, 0, count)
	buf := make([]uint8, maxLen+1)
	for i := uint32(0); i < uint32(count); i++ {
		var length, size int32
		var xtype uint32
		gl.GetActiveUniform(program, i, int32(len(buf)), &length, &size, &xtype, &buf[0])
		names = append(names, string(buf[:length]))
	}
	return names
}

func (b *glRendererBackend) UniformMat4(location int32, m mgl32.Mat4) {
	gl.UniformMatrix4fv(location, 1, false, &m[0])
}

func (b *glRendererBackend) UniformVec4(location int32, v mgl32.Vec4) {
	gl.Uniform4fv(location, 1, &v[0])
}

func (b *glRendererBackend) UniformVec3(location int32, v mgl32.Vec3) {
	gl.Uniform3fv(location, 1, &v[0])
}

func (b *glRendererBackend) UniformFloat(location int32, f float32) {
	gl.Uniform1f(location, f)
}

func (b *glRendererBackend) CreateVertexArray() uint32 {
	var handle uint32
	gl.GenVertexArrays(1, &handle)
	gl.BindVertexArray(handle)
	return handle
}

func (b *glRendererBackend) BindVertexArray(handle uint32) {
	gl.BindVertexArray(handle)
}

func (b *glRendererBackend) DeleteVertexArray(handle uint32) {
	gl.DeleteVertexArrays(1, &handle)
}

func (b *glRendererBackend) CreateBuffer(target BufferTarget, data []byte) uint32 {
	glTarget := uint32(gl.ARRAY_BUFFER)
	if target == BufferTargetIndex {
		glTarget = gl.ELEMENT_ARRAY_BUFFER
	}

	var handle uint32
	gl.GenBuffers(1, &handle)
	gl.BindBuffer(glTarget, handle)
	if len(data) > 0 {
		gl.BufferData(glTarget, len(data), gl.Ptr(data), gl.STATIC_DRAW)
	} else {
		gl.BufferData(glTarget, 0, nil, gl.STATIC_DRAW)
	}
	return handle
}

func (b *glRendererBackend) DeleteBuffer(handle uint32) {
	gl.DeleteBuffers(1, &handle)
}

func (b *glRendererBackend) VertexAttribPointer(location uint32, components int32, stride int32, offset uintptr) {
	gl.VertexAttribPointerWithOffset(location, components, gl.FLOAT, false, stride, offset)
	gl.EnableVertexAttribArray(location)
}

func (b *glRendererBackend) DrawIndexed(count int32) {
	gl.DrawElementsWithOffset(gl.TRIANGLES, count, gl.UNSIGNED_INT, 0)
}

func (b *glRendererBackend) SetDepthTest(enabled bool) {
	if enabled {
		gl.Enable(gl.DEPTH_TEST)
		return
	}
	gl.Disable(gl.DEPTH_TEST)
}

func (b *glRendererBackend) SetDepthFunc(f DepthFunc) {
	switch f {
	case DepthLessEqual:
		gl.DepthFunc(gl.LEQUAL)
	default:
		gl.DepthFunc(gl.LESS)
	}
}

func (b *glRendererBackend) SetPolygonMode(mode PolygonMode) {
	if mode == PolygonLine {
		gl.PolygonMode(gl.FRONT_AND_BACK, gl.LINE)
		gl.Enable(gl.POLYGON_OFFSET_LINE)
		gl.PolygonOffset(-1, -1)
		return
	}
	gl.PolygonMode(gl.FRONT_AND_BACK, gl.FILL)
	gl.Disable(gl.POLYGON_OFFSET_LINE)
}

func (b *glRendererBackend) Clear(color mgl32.Vec4) {
	gl.ClearColor(color[0], color[1], color[2], color[3])
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

func (b *glRendererBackend) Viewport(width, height int) {
	gl.Viewport(0, 0, int32(width), int32(height))
}

func (b *glRendererBackend) Version() string {
	return gl.GoStr(gl.GetString(gl.VERSION))
}
