package renderer

import (
	"fmt"
	"strings"
	"sync"

	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/glsl"
	"github.com/go-gl/mathgl/mgl32"
)

// Call is one recorded backend invocation.
type Call struct {
	Op   string
	Args []any
}

// DrawRecord captures the bound state at the moment of an indexed draw.
type DrawRecord struct {
	Program     uint32
	VertexArray uint32
	IndexCount  int32
	DepthFunc   DepthFunc
	PolygonMode PolygonMode
}

// Recorder exposes what a headless backend has observed. Only BackendTypeHeadless implements it.
type Recorder interface {
	// Calls returns a copy of every recorded call in order.
	Calls() []Call

	// CallCount returns how many calls named op were recorded.
	CallCount(op string) int

	// Draws returns a copy of every recorded draw in order.
	Draws() []DrawRecord

	// UniformValue returns the last value written to the named uniform of program.
	//
	// Parameters:
	//   - program: the program handle
	//   - name: the uniform name
	//
	// Returns:
	//   - any: an mgl32.Mat4, mgl32.Vec4, mgl32.Vec3 or float32
	//   - bool: false if nothing was written
	UniformValue(program uint32, name string) (any, bool)

	// Reset forgets recorded calls and draws but keeps all objects alive.
	Reset()
}

type headlessShader struct {
	stage    ShaderStage
	source   string
	decls    glsl.Declarations
	compiled bool
}

type headlessProgram struct {
	linked   bool
	uniforms []string
	values   map[int32]any
}

type headlessVertexArray struct {
	indexBuffer uint32
	attributes  map[uint32]int32
}

type headlessRendererBackend struct {
	mu *sync.Mutex

	nextHandle uint32

	shaders      map[uint32]*headlessShader
	programs     map[uint32]*headlessProgram
	vertexArrays map[uint32]*headlessVertexArray
	buffers      map[uint32][]byte

	currentProgram     uint32
	currentVertexArray uint32
	depthTest          bool
	depthFunc          DepthFunc
	polygonMode        PolygonMode

	calls []Call
	draws []DrawRecord
}

var _ RendererBackend = &headlessRendererBackend{}
var _ Recorder = &headlessRendererBackend{}

func newHeadlessRendererBackend() *headlessRendererBackend {
	return &headlessRendererBackend{
		mu:           &sync.Mutex{},
		nextHandle:   1,
		shaders:      make(map[uint32]*headlessShader),
		programs:     make(map[uint32]*headlessProgram),
		vertexArrays: make(map[uint32]*headlessVertexArray),
		buffers:      make(map[uint32][]byte),
	}
}

func (b *headlessRendererBackend) record(op string, args ...any) {
	b.calls = append(b.calls, Call{Op: op, Args: args})
}

func (b *headlessRendererBackend) allocate() uint32 {
	h := b.nextHandle
	b.nextHandle++
	return h
}

func (b *headlessRendererBackend) CompileShader(stage ShaderStage, source string) (uint32, string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	h := b.allocate()
	s := &headlessShader{stage: stage, source: source}
	b.shaders[h] = s
	b.record("CompileShader", stage, h)

	if strings.TrimSpace(glsl.StripComments(source)) == "" {
		return h, "ERROR: 0:1: '' : syntax error: empty source", false
	}
	if line, ok := unbalancedBrace(source); ok {
		return h, fmt.Sprintf("ERROR: 0:%d: '}' : syntax error: unbalanced braces", line), false
	}

	s.decls = glsl.Parse(source)
	s.compiled = true
	return h, "", true
}

// unbalancedBrace returns the line where brace depth first goes negative, or the last line if it ends non-zero.
func unbalancedBrace(source string) (int, bool) {
	depth, line := 0, 1
	for _, r := range glsl.StripComments(source) {
		switch r {
		case '\n':
			line++
		case '{':
			depth++
		case '}':
			depth--
			if depth < 0 {
				return line, true
			}
		}
	}
	return line, depth != 0
}

func (b *headlessRendererBackend) DeleteShader(handle uint32) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.shaders, handle)
	b.record("DeleteShader", handle)
}

func (b *headlessRendererBackend) LinkProgram(vertex, fragment uint32) (uint32, string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	h := b.allocate()
	p := &headlessProgram{values: make(map[int32]any)}
	b.programs[h] = p
	b.record("LinkProgram", vertex, fragment, h)

	vs, fs := b.shaders[vertex], b.shaders[fragment]
	if vs == nil || fs == nil || !vs.compiled || !fs.compiled {
		return h, "error: linking with uncompiled/unknown shader", false
	}
	for _, s := range []*headlessShader{vs, fs} {
		if !glsl.HasEntryPoint(s.source) {
			return h, fmt.Sprintf("error: %s shader lacks `main'", s.stage), false
		}
	}

	for _, in := range fs.decls.Filter(glsl.QualifierIn) {
		out, ok := vs.decls.Find(glsl.QualifierOut, in.Name)
		if !ok {
			return h, fmt.Sprintf("error: fragment shader input `%s' has no matching output in the previous stage", in.Name), false
		}
		if out.Type != in.Type {
			return h, fmt.Sprintf("error: `%s' has type %s in the vertex shader and %s in the fragment shader", in.Name, out.Type, in.Type), false
		}
	}

	uniforms := append(vs.decls.Filter(glsl.QualifierUniform), fs.decls.Filter(glsl.QualifierUniform)...)
	types := make(map[string]string, len(uniforms))
	for _, u := range uniforms {
		if t, ok := types[u.Name]; ok && t != u.Type {
			return h, fmt.Sprintf("error: uniform `%s' declared as type %s and type %s", u.Name, t, u.Type), false
		}
		types[u.Name] = u.Type
	}

	p.uniforms = uniforms.Names()
	p.linked = true
	return h, "", true
}

func (b *headlessRendererBackend) DeleteProgram(handle uint32) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.programs, handle)
	if b.currentProgram == handle {
		b.currentProgram = 0
	}
	b.record("DeleteProgram", handle)
}

func (b *headlessRendererBackend) UseProgram(handle uint32) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.currentProgram = handle
	b.record("UseProgram", handle)
}

func (b *headlessRendererBackend) UniformLocation(program uint32, name string) int32 {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.record("UniformLocation", program, name)

	p := b.programs[program]
	if p == nil || !p.linked {
		return -1
	}
	for i, u := range p.uniforms {
		if u == name {
			return int32(i)
		}
	}
	return -1
}

func (b *headlessRendererBackend) ActiveUniforms(program uint32) []string {
	b.mu.Lock()
	defer b.mu.Unlock()

	p := b.programs[program]
	if p == nil {
		return nil
	}
	return append([]string(nil), p.uniforms...)
}

func (b *headlessRendererBackend) writeUniform(op string, location int32, value any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.record(op, location, value)

	if location < 0 {
		return
	}
	if p := b.programs[b.currentProgram]; p != nil {
		p.values[location] = value
	}
}

func (b *headlessRendererBackend) UniformMat4(location int32, m mgl32.Mat4) {
	b.writeUniform("UniformMat4", location, m)
}

func (b *headlessRendererBackend) UniformVec4(location int32, v mgl32.Vec4) {
	b.writeUniform("UniformVec4", location, v)
}

func (b *headlessRendererBackend) UniformVec3(location int32, v mgl32.Vec3) {
	b.writeUniform("UniformVec3", location, v)
}

func (b *headlessRendererBackend) UniformFloat(location int32, f float32) {
	b.writeUniform("UniformFloat", location, f)
}

func (b *headlessRendererBackend) CreateVertexArray() uint32 {
	b.mu.Lock()
	defer b.mu.Unlock()

	h := b.allocate()
	b.vertexArrays[h] = &headlessVertexArray{attributes: make(map[uint32]int32)}
	b.currentVertexArray = h
	b.record("CreateVertexArray", h)
	return h
}

func (b *headlessRendererBackend) BindVertexArray(handle uint32) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.currentVertexArray = handle
	b.record("BindVertexArray", handle)
}

func (b *headlessRendererBackend) DeleteVertexArray(handle uint32) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.vertexArrays, handle)
	if b.currentVertexArray == handle {
		b.currentVertexArray = 0
	}
	b.record("DeleteVertexArray", handle)
}

func (b *headlessRendererBackend) CreateBuffer(target BufferTarget, data []byte) uint32 {
	b.mu.Lock()
	defer b.mu.Unlock()

	h := b.allocate()
	b.buffers[h] = append([]byte(nil), data...)
	if target == BufferTargetIndex {
		if va := b.vertexArrays[b.currentVertexArray]; va != nil {
			va.indexBuffer = h
		}
	}
	b.record("CreateBuffer", target, h, len(data))
	return h
}

func (b *headlessRendererBackend) DeleteBuffer(handle uint32) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.buffers, handle)
	b.record("DeleteBuffer", handle)
}

func (b *headlessRendererBackend) VertexAttribPointer(location uint32, components int32, stride int32, offset uintptr) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if va := b.vertexArrays[b.currentVertexArray]; va != nil {
		va.attributes[location] = components
	}
	b.record("VertexAttribPointer", location, components, stride, offset)
}

func (b *headlessRendererBackend) DrawIndexed(count int32) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.draws = append(b.draws, DrawRecord{
		Program:     b.currentProgram,
		VertexArray: b.currentVertexArray,
		IndexCount:  count,
		DepthFunc:   b.depthFunc,
		PolygonMode: b.polygonMode,
	})
	b.record("DrawIndexed", count)
}

func (b *headlessRendererBackend) SetDepthTest(enabled bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.depthTest = enabled
	b.record("SetDepthTest", enabled)
}

func (b *headlessRendererBackend) SetDepthFunc(f DepthFunc) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.depthFunc = f
	b.record("SetDepthFunc", f)
}

func (b *headlessRendererBackend) SetPolygonMode(mode PolygonMode) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.polygonMode = mode
	b.record("SetPolygonMode", mode)
}

func (b *headlessRendererBackend) Clear(color mgl32.Vec4) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.record("Clear", color)
}

func (b *headlessRendererBackend) Viewport(width, height int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.record("Viewport", width, height)
}

func (b *headlessRendererBackend) Version() string {
	return "headless 4.1"
}

func (b *headlessRendererBackend) Calls() []Call {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Call(nil), b.calls...)
}

func (b *headlessRendererBackend) CallCount(op string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, c := range b.calls {
		if c.Op == op {
			n++
		}
	}
	return n
}

func (b *headlessRendererBackend) Draws() []DrawRecord {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]DrawRecord(nil), b.draws...)
}

func (b *headlessRendererBackend) UniformValue(program uint32, name string) (any, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	p := b.programs[program]
	if p == nil {
		return nil, false
	}
	for i, u := range p.uniforms {
		if u == name {
			v, ok := p.values[int32(i)]
			return v, ok
		}
	}
	return nil, false
}

func (b *headlessRendererBackend) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls = nil
	b.draws = nil
}
