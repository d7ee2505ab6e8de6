package shader

import (
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/Carmen-Shannon/oxy-viewer/assets"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/glsl"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
)

// program is the implementation of the Program interface.
// It owns exactly one linked program handle and keeps no uniform location cache.
type program struct {
	mu *sync.Mutex

	name     string
	renderer renderer.Renderer
	logger   *slog.Logger

	handle   uint32
	released bool

	// includes are the @oxy:include roots, searched before the embedded chunks
	includes []fs.FS

	vertexDecls glsl.Declarations

	// warned holds the uniform names already reported missing
	warned map[string]struct{}
}

// Program is a linked vertex+fragment shader pair that can be made active and receive uniform writes.
// Uniform setters look the location up by name on every call; a name the program does not have is
// reported once through the logger and the write is skipped.
type Program interface {
	// Name returns the label given at construction.
	//
	// Returns:
	//   - string: the program name
	Name() string

	// Handle returns the underlying program handle.
	//
	// Returns:
	//   - uint32: the program handle, 0 after Release
	Handle() uint32

	// Use makes this program the active one. Panics with renderer.ErrReleased after Release.
	Use()

	// SetMat4 writes a 4x4 matrix uniform on this program, which must be active.
	//
	// Parameters:
	//   - name: the uniform name
	//   - m: the matrix
	//
	// Returns:
	//   - bool: false if the program has no uniform with that name
	SetMat4(name string, m mgl32.Mat4) bool

	// SetVec4 writes a vec4 uniform on this program, which must be active.
	//
	// Parameters:
	//   - name: the uniform name
	//   - v: the vector
	//
	// Returns:
	//   - bool: false if the program has no uniform with that name
	SetVec4(name string, v mgl32.Vec4) bool

	// SetVec3 writes a vec3 uniform on this program, which must be active.
	//
	// Parameters:
	//   - name: the uniform name
	//   - v: the vector
	//
	// Returns:
	//   - bool: false if the program has no uniform with that name
	SetVec3(name string, v mgl32.Vec3) bool

	// SetFloat writes a float uniform on this program, which must be active.
	//
	// Parameters:
	//   - name: the uniform name
	//   - f: the value
	//
	// Returns:
	//   - bool: false if the program has no uniform with that name
	SetFloat(name string, f float32) bool

	// Uniforms lists the active uniform names reported by the context.
	//
	// Returns:
	//   - []string: uniform names
	Uniforms() []string

	// Inputs returns the vertex stage input declarations parsed from the source.
	//
	// Returns:
	//   - glsl.Declarations: the vertex inputs in source order
	Inputs() glsl.Declarations

	// Release deletes the program. A second call is a no-op.
	Release()

	// Released reports whether Release has been called.
	Released() bool
}

var _ Program = &program{}

// NewProgram compiles vertexSource and fragmentSource and links them into a Program.
// If either stage fails to compile no link is attempted and a *CompileError carrying the compiler
// log is returned. If linking fails a *LinkError carrying the linker log is returned. In both cases
// every intermediate GPU object has been deleted. The stage shaders are deleted after a successful link.
// Both sources are run through the @oxy: pre-processor first; an annotation error is a *CompileError
// for that stage and creates no GPU object.
//
// Parameters:
//   - r: the renderer to create GPU objects through
//   - vertexSource: GLSL vertex stage source
//   - fragmentSource: GLSL fragment stage source
//   - options: variadic list of ProgramBuilderOption functions
//
// Returns:
//   - Program: the linked program, or nil on error
//   - error: *CompileError or *LinkError
func NewProgram(r renderer.Renderer, vertexSource, fragmentSource string, options ...ProgramBuilderOption) (Program, error) {
	if r == nil {
		panic("shader: NewProgram requires a renderer")
	}
	p := &program{
		mu:       &sync.Mutex{},
		name:     "program",
		renderer: r,
		logger:   r.Logger(),
		warned:   make(map[string]struct{}),
	}
	for _, opt := range options {
		opt(p)
	}

	pre := NewPreProcessor(append(p.includes, assets.Includes())...)
	vertexSource, err := pre.Process(vertexSource)
	if err != nil {
		return nil, &CompileError{Program: p.name, Stage: renderer.StageVertex, Log: err.Error()}
	}
	fragmentSource, err = pre.Process(fragmentSource)
	if err != nil {
		return nil, &CompileError{Program: p.name, Stage: renderer.StageFragment, Log: err.Error()}
	}

	vs, vsLog, ok := r.CompileShader(renderer.StageVertex, vertexSource, p.name+".vert")
	if !ok {
		r.DeleteShader(vs)
		p.logger.Error("shader compile failed", "program", p.name, "stage", "vertex", "log", vsLog)
		return nil, &CompileError{Program: p.name, Stage: renderer.StageVertex, Log: vsLog}
	}

	fs, fsLog, ok := r.CompileShader(renderer.StageFragment, fragmentSource, p.name+".frag")
	if !ok {
		r.DeleteShader(fs)
		r.DeleteShader(vs)
		p.logger.Error("shader compile failed", "program", p.name, "stage", "fragment", "log", fsLog)
		return nil, &CompileError{Program: p.name, Stage: renderer.StageFragment, Log: fsLog}
	}

	handle, linkLog, ok := r.LinkProgram(vs, fs, p.name)
	r.DeleteShader(vs)
	r.DeleteShader(fs)
	if !ok {
		r.DeleteProgram(handle)
		p.logger.Error("shader link failed", "program", p.name, "log", linkLog)
		return nil, &LinkError{Program: p.name, Log: linkLog}
	}

	p.handle = handle
	p.vertexDecls = glsl.Parse(vertexSource)
	p.logger.Debug("shader linked", "program", p.name, "handle", handle, "uniforms", p.Uniforms())
	return p, nil
}

// LoadProgram reads both shader files fully into memory and builds a Program from them.
// The program name defaults to the vertex file's base name without extension, and @oxy:include
// chunks are looked up next to the vertex file before the embedded ones.
//
// Parameters:
//   - r: the renderer to create GPU objects through
//   - vertexPath: path to the GLSL vertex stage file
//   - fragmentPath: path to the GLSL fragment stage file
//   - options: variadic list of ProgramBuilderOption functions
//
// Returns:
//   - Program: the linked program, or nil on error
//   - error: a wrapped os.ErrNotExist, *CompileError or *LinkError
func LoadProgram(r renderer.Renderer, vertexPath, fragmentPath string, options ...ProgramBuilderOption) (Program, error) {
	vertexSource, err := os.ReadFile(vertexPath)
	if err != nil {
		return nil, errors.Wrapf(err, "reading vertex shader %s", vertexPath)
	}
	fragmentSource, err := os.ReadFile(fragmentPath)
	if err != nil {
		return nil, errors.Wrapf(err, "reading fragment shader %s", fragmentPath)
	}

	name := strings.TrimSuffix(filepath.Base(vertexPath), filepath.Ext(vertexPath))
	if r != nil {
		r.Logger().Debug("loading shader files", "vertex", vertexPath, "fragment", fragmentPath)
	}
	defaults := []ProgramBuilderOption{WithName(name), WithIncludes(os.DirFS(filepath.Dir(vertexPath)))}
	return NewProgram(r, string(vertexSource), string(fragmentSource), append(defaults, options...)...)
}

func (p *program) Name() string {
	return p.name
}

func (p *program) Handle() uint32 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.handle
}

func (p *program) mustBeLive() {
	p.mu.Lock()
	released := p.released
	p.mu.Unlock()
	if released {
		panic(errors.Wrapf(renderer.ErrReleased, "shader %q", p.name))
	}
}

func (p *program) Use() {
	p.mustBeLive()
	p.renderer.UseProgram(p.handle)
}

// location resolves name, warning once per name when it is missing.
func (p *program) location(name string) int32 {
	p.mustBeLive()
	loc := p.renderer.UniformLocation(p.handle, name)
	if loc >= 0 {
		return loc
	}

	p.mu.Lock()
	_, seen := p.warned[name]
	p.warned[name] = struct{}{}
	p.mu.Unlock()
	if !seen {
		p.logger.Warn("uniform not found", "program", p.name, "uniform", name)
	}
	return -1
}

func (p *program) SetMat4(name string, m mgl32.Mat4) bool {
	loc := p.location(name)
	if loc < 0 {
		return false
	}
	p.renderer.UniformMat4(loc, m)
	return true
}

func (p *program) SetVec4(name string, v mgl32.Vec4) bool {
	loc := p.location(name)
	if loc < 0 {
		return false
	}
	p.renderer.UniformVec4(loc, v)
	return true
}

func (p *program) SetVec3(name string, v mgl32.Vec3) bool {
	loc := p.location(name)
	if loc < 0 {
		return false
	}
	p.renderer.UniformVec3(loc, v)
	return true
}

func (p *program) SetFloat(name string, f float32) bool {
	loc := p.location(name)
	if loc < 0 {
		return false
	}
	p.renderer.UniformFloat(loc, f)
	return true
}

func (p *program) Uniforms() []string {
	p.mustBeLive()
	return p.renderer.ActiveUniforms(p.handle)
}

func (p *program) Inputs() glsl.Declarations {
	return p.vertexDecls.Filter(glsl.QualifierIn)
}

func (p *program) Release() {
	p.mu.Lock()
	if p.released {
		p.mu.Unlock()
		p.logger.Warn("shader released twice", "program", p.name)
		return
	}
	p.released = true
	handle := p.handle
	p.handle = 0
	p.mu.Unlock()

	p.renderer.DeleteProgram(handle)
}

func (p *program) Released() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.released
}
