package scene

import (
	"log/slog"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/engine/camera"
	"github.com/Carmen-Shannon/oxy-viewer/engine/game_object"
	"github.com/Carmen-Shannon/oxy-viewer/engine/light"
	"github.com/Carmen-Shannon/oxy-viewer/engine/mesh"
	"github.com/Carmen-Shannon/oxy-viewer/engine/model"
	"github.com/Carmen-Shannon/oxy-viewer/engine/profiler"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/shader"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
)

var (
	ErrUnknownProgram   = errors.New("unknown program")
	ErrDuplicateProgram = errors.New("program name already registered")
)

// Releaser is anything holding GPU objects that must be released exactly once.
type Releaser interface {
	Release()
}

type releaseEntry struct {
	label string
	res   Releaser
}

// programGroup is the ordered set of objects one program draws.
type programGroup struct {
	name    string
	program shader.Program
	objects []game_object.GameObject
}

// scene implements the Scene interface.
type scene struct {
	mu sync.Mutex

	name   string
	active bool

	r      renderer.Renderer
	cam    camera.Camera
	light  light.Light
	sink   profiler.Sink
	logger *slog.Logger

	clearColor   mgl32.Vec4
	horizonColor mgl32.Vec3
	zenithColor  mgl32.Vec3

	// groups keeps program registration order; draw order follows it
	groups  []*programGroup
	byName  map[string]*programGroup
	objects map[uint64]game_object.GameObject
	nextID  uint64

	skybox        mesh.Mesh
	skyboxProgram shader.Program

	wireframe bool

	// releases is the scoped acquisition stack, unwound in reverse on Release
	releases []releaseEntry
	released bool

	frame uint64
}

// Scene owns the programs, meshes and draw order of one rendered view.
//
// Resources created through the Acquire* methods, or handed over with Own, are released in reverse
// acquisition order by Release, so a scene that failed halfway through construction can always be
// torn down. Render must be called on the thread that owns the GL context.
type Scene interface {
	// Name returns the scene name.
	//
	// Returns:
	//   - string: the scene name
	Name() string

	// Active reports whether the engine renders this scene.
	Active() bool

	// SetActive includes or excludes the scene from rendering.
	SetActive(active bool)

	// Renderer returns the renderer the scene draws through.
	//
	// Returns:
	//   - renderer.Renderer: the renderer
	Renderer() renderer.Renderer

	// Camera returns the camera providing view and projection.
	//
	// Returns:
	//   - camera.Camera: the camera
	Camera() camera.Camera

	// SetCamera replaces the camera.
	//
	// Parameters:
	//   - cam: the new camera
	SetCamera(cam camera.Camera)

	// Light returns the point light feeding lightPos and lightColor.
	//
	// Returns:
	//   - light.Light: the scene light
	Light() light.Light

	// SetClearColor sets the color the frame is cleared to.
	//
	// Parameters:
	//   - color: RGBA clear color
	SetClearColor(color mgl32.Vec4)

	// AcquireProgram compiles and links a program, registers it under name and schedules its release.
	// Programs are drawn in the order they were registered.
	//
	// Parameters:
	//   - name: the program name drawables refer to
	//   - vertexSource: GLSL vertex stage source
	//   - fragmentSource: GLSL fragment stage source
	//
	// Returns:
	//   - shader.Program: the linked program
	//   - error: a *shader.CompileError, *shader.LinkError or ErrDuplicateProgram
	AcquireProgram(name, vertexSource, fragmentSource string) (shader.Program, error)

	// LoadProgram is AcquireProgram reading both stages from files.
	//
	// Parameters:
	//   - name: the program name drawables refer to
	//   - vertexPath: path to the vertex stage
	//   - fragmentPath: path to the fragment stage
	//
	// Returns:
	//   - shader.Program: the linked program
	//   - error: a read, compile or link error
	LoadProgram(name, vertexPath, fragmentPath string) (shader.Program, error)

	// AcquireMesh creates and uploads a mesh and schedules its release.
	//
	// Parameters:
	//   - geometry: the mesh geometry
	//   - options: mesh options such as name and placement
	//
	// Returns:
	//   - mesh.Mesh: the uploaded mesh
	//   - error: if the geometry fails validation
	AcquireMesh(geometry model.Geometry, options ...mesh.MeshBuilderOption) (mesh.Mesh, error)

	// Own schedules the release of a resource acquired elsewhere, such as meshes from a loader.
	//
	// Parameters:
	//   - label: a name used in logs
	//   - res: the resource
	Own(label string, res Releaser)

	// Program returns the program registered under name, or nil.
	//
	// Parameters:
	//   - name: the program name
	//
	// Returns:
	//   - shader.Program: the program or nil
	Program(name string) shader.Program

	// Programs returns the registered program names in draw order.
	Programs() []string

	// SetSkybox sets the mesh drawn first each frame with the named program, a rotation-only view
	// and depth function LessEqual. A nil mesh removes the skybox.
	//
	// Parameters:
	//   - m: the sky mesh
	//   - program: name of a registered program
	//
	// Returns:
	//   - error: ErrUnknownProgram if program is not registered
	SetSkybox(m mesh.Mesh, program string) error

	// SetSkyColors sets the horizonColor and zenithColor uniforms of the sky program.
	SetSkyColors(horizon, zenith mgl32.Vec3)

	// Add registers a drawable and assigns it an ID.
	// Objects of one program are drawn in the order they were added.
	//
	// Parameters:
	//   - obj: the drawable
	//
	// Returns:
	//   - uint64: the assigned ID
	//   - error: ErrUnknownProgram if the object's program is not registered, or mesh.ErrLayoutMismatch
	//     if the program reads a vertex input the mesh layout does not provide
	Add(obj game_object.GameObject) (uint64, error)

	// AddMesh wraps m in a GameObject drawn by program and adds it.
	//
	// Parameters:
	//   - m: the mesh
	//   - program: name of a registered program
	//
	// Returns:
	//   - uint64: the assigned ID
	//   - error: ErrUnknownProgram if program is not registered
	AddMesh(m mesh.Mesh, program string) (uint64, error)

	// Get returns the drawable with id, or nil.
	Get(id uint64) game_object.GameObject

	// Remove removes the drawable with id. Its mesh is not released.
	Remove(id uint64)

	// Count returns the number of drawables.
	Count() int

	// Wireframe reports whether polygons are drawn as lines.
	Wireframe() bool

	// SetWireframe switches between line and fill polygon mode.
	//
	// Parameters:
	//   - enabled: true for wireframe
	SetWireframe(enabled bool)

	// ToggleWireframe flips the polygon mode.
	//
	// Returns:
	//   - bool: the new wireframe state
	ToggleWireframe() bool

	// Render draws one frame: clear, sky first with LessEqual then Less restored, then every program
	// group in registration order. Frame statistics are reported to the sink.
	//
	// Parameters:
	//   - dt: seconds since the previous frame
	//
	// Returns:
	//   - error: renderer.ErrReleased after Release
	Render(dt float32) error

	// FrameCount returns the number of frames rendered.
	FrameCount() uint64

	// Release releases every acquired or owned resource once, most recent first.
	// A second call logs a warning and does nothing.
	Release()

	// Released reports whether Release has been called.
	Released() bool
}

var _ Scene = &scene{}

// NewScene creates a new Scene drawing through r.
// Without options the scene gets a default camera, a default light and a no-op sink.
//
// Parameters:
//   - r: the renderer; must not be nil
//   - options: variadic SceneBuilderOption functions
//
// Returns:
//   - Scene: the new scene
func NewScene(r renderer.Renderer, options ...SceneBuilderOption) Scene {
	if r == nil {
		panic("scene: NewScene requires a renderer")
	}
	s := &scene{
		name:         "scene",
		active:       true,
		r:            r,
		sink:         profiler.NopSink(),
		logger:       r.Logger(),
		clearColor:   mgl32.Vec4{0.1, 0.2, 0.4, 1},
		horizonColor: mgl32.Vec3{0.75, 0.85, 0.95},
		zenithColor:  mgl32.Vec3{0.1, 0.2, 0.4},
		byName:       make(map[string]*programGroup),
		objects:      make(map[uint64]game_object.GameObject),
	}
	for _, option := range options {
		option(s)
	}
	if s.cam == nil {
		s.cam = camera.NewCamera()
	}
	if s.light == nil {
		s.light = light.NewLight()
	}
	return s
}

func (s *scene) Name() string {
	return s.name
}

func (s *scene) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

func (s *scene) SetActive(active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = active
}

func (s *scene) Renderer() renderer.Renderer {
	return s.r
}

func (s *scene) Camera() camera.Camera {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cam
}

func (s *scene) SetCamera(cam camera.Camera) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cam != nil {
		s.cam = cam
	}
}

func (s *scene) Light() light.Light {
	return s.light
}

func (s *scene) SetClearColor(color mgl32.Vec4) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearColor = common.ClampColor(color)
}

func (s *scene) AcquireProgram(name, vertexSource, fragmentSource string) (shader.Program, error) {
	if s.Program(name) != nil {
		return nil, errors.Wrapf(ErrDuplicateProgram, "%q", name)
	}
	p, err := shader.NewProgram(s.r, vertexSource, fragmentSource, shader.WithName(name), shader.WithLogger(s.logger))
	if err != nil {
		return nil, err
	}
	s.registerProgram(name, p)
	return p, nil
}

func (s *scene) LoadProgram(name, vertexPath, fragmentPath string) (shader.Program, error) {
	if s.Program(name) != nil {
		return nil, errors.Wrapf(ErrDuplicateProgram, "%q", name)
	}
	p, err := shader.LoadProgram(s.r, vertexPath, fragmentPath, shader.WithName(name), shader.WithLogger(s.logger))
	if err != nil {
		return nil, err
	}
	s.registerProgram(name, p)
	return p, nil
}

func (s *scene) registerProgram(name string, p shader.Program) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g := &programGroup{name: name, program: p}
	s.groups = append(s.groups, g)
	s.byName[name] = g
	s.releases = append(s.releases, releaseEntry{label: "program " + name, res: p})
}

func (s *scene) AcquireMesh(geometry model.Geometry, options ...mesh.MeshBuilderOption) (mesh.Mesh, error) {
	opts := append([]mesh.MeshBuilderOption{mesh.WithLogger(s.logger)}, options...)
	m := mesh.NewMesh(s.r, geometry, opts...)
	if err := m.Upload(); err != nil {
		return nil, err
	}
	s.Own("mesh "+m.Name(), m)
	return m, nil
}

func (s *scene) Own(label string, res Releaser) {
	if res == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.releases = append(s.releases, releaseEntry{label: label, res: res})
}

func (s *scene) Program(name string) shader.Program {
	s.mu.Lock()
	defer s.mu.Unlock()
	if g, ok := s.byName[name]; ok {
		return g.program
	}
	return nil
}

func (s *scene) Programs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, len(s.groups))
	for i, g := range s.groups {
		names[i] = g.name
	}
	return names
}

func (s *scene) SetSkybox(m mesh.Mesh, program string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m == nil {
		s.skybox, s.skyboxProgram = nil, nil
		return nil
	}
	g, ok := s.byName[program]
	if !ok {
		return errors.Wrapf(ErrUnknownProgram, "skybox program %q", program)
	}
	s.skybox, s.skyboxProgram = m, g.program
	return nil
}

func (s *scene) SetSkyColors(horizon, zenith mgl32.Vec3) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.horizonColor, s.zenithColor = horizon, zenith
}

func (s *scene) Add(obj game_object.GameObject) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.byName[obj.Program()]
	if !ok {
		return 0, errors.Wrapf(ErrUnknownProgram, "object %q program %q", obj.Name(), obj.Program())
	}
	if err := obj.Mesh().Layout().Match(g.program.Inputs()); err != nil {
		return 0, errors.Wrapf(err, "object %q program %q", obj.Name(), obj.Program())
	}
	s.nextID++
	obj.SetID(s.nextID)
	g.objects = append(g.objects, obj)
	s.objects[s.nextID] = obj
	return s.nextID, nil
}

func (s *scene) AddMesh(m mesh.Mesh, program string) (uint64, error) {
	return s.Add(game_object.NewGameObject(m, program))
}

func (s *scene) Get(id uint64) game_object.GameObject {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.objects[id]
}

func (s *scene) Remove(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	obj, ok := s.objects[id]
	if !ok {
		return
	}
	delete(s.objects, id)
	g := s.byName[obj.Program()]
	for i, o := range g.objects {
		if o.ID() == id {
			g.objects = append(g.objects[:i], g.objects[i+1:]...)
			break
		}
	}
}

func (s *scene) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects)
}

func (s *scene) Wireframe() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.wireframe
}

func (s *scene) SetWireframe(enabled bool) {
	s.mu.Lock()
	s.wireframe = enabled
	s.mu.Unlock()
	if enabled {
		s.r.SetPolygonMode(renderer.PolygonLine)
	} else {
		s.r.SetPolygonMode(renderer.PolygonFill)
	}
	s.sink.Event("wireframe", "scene", s.name, "enabled", enabled)
}

func (s *scene) ToggleWireframe() bool {
	enabled := !s.Wireframe()
	s.SetWireframe(enabled)
	return enabled
}

func (s *scene) Render(dt float32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.released {
		return errors.Wrapf(renderer.ErrReleased, "scene %q", s.name)
	}

	start := time.Now()
	drawsBefore := s.r.DrawCalls()

	s.r.Clear(s.clearColor)
	view := s.cam.View()
	projection := s.cam.Projection()
	eye := s.cam.Position()

	if s.frame == 0 {
		s.reportUniforms()
	}

	if s.skybox != nil {
		s.drawSkybox(view, projection)
	}

	meshes := 0
	lightPos := s.light.Position()
	lightColor := s.light.Radiance()
	for _, g := range s.groups {
		if !hasEnabled(g.objects) {
			continue
		}
		p := g.program
		p.Use()
		p.SetMat4("view", view)
		p.SetMat4("projection", projection)
		p.SetVec3("lightPos", lightPos)
		p.SetVec3("lightColor", lightColor)
		p.SetVec3("viewPos", eye)
		for _, obj := range g.objects {
			if !obj.Enabled() {
				continue
			}
			obj.Mesh().Draw(p)
			meshes++
		}
	}

	s.frame++
	s.sink.Frame(profiler.FrameStats{
		Frame:     s.frame,
		DrawCalls: int(s.r.DrawCalls() - drawsBefore),
		Meshes:    meshes,
		Duration:  time.Since(start),
	})
	return nil
}

// drawSkybox draws the sky at the far plane. The depth function is restored even if the draw panics.
// Caller must hold the mutex.
func (s *scene) drawSkybox(view, projection mgl32.Mat4) {
	s.r.SetDepthFunc(renderer.DepthLessEqual)
	defer s.r.SetDepthFunc(renderer.DepthLess)

	p := s.skyboxProgram
	p.Use()
	p.SetMat4("view", common.RotationOnly(view))
	p.SetMat4("projection", projection)
	p.SetVec3("horizonColor", s.horizonColor)
	p.SetVec3("zenithColor", s.zenithColor)
	s.skybox.DrawGeometry()
}

// reportUniforms sends the uniform locations of every program to the sink once, on the first frame.
// Caller must hold the mutex.
func (s *scene) reportUniforms() {
	for _, g := range s.groups {
		locations := make(map[string]int32)
		for _, name := range g.program.Uniforms() {
			locations[name] = s.r.UniformLocation(g.program.Handle(), name)
		}
		s.sink.Event("uniform report",
			"scene", s.name,
			"program", g.name,
			"handle", g.program.Handle(),
			"locations", locations,
			"camera", s.cam.Position(),
		)
	}
}

func (s *scene) FrameCount() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frame
}

func (s *scene) Release() {
	s.mu.Lock()
	if s.released {
		s.mu.Unlock()
		s.logger.Warn("scene released twice", "scene", s.name)
		return
	}
	s.released = true
	releases := s.releases
	s.releases = nil
	s.groups = nil
	s.byName = map[string]*programGroup{}
	s.objects = map[uint64]game_object.GameObject{}
	s.skybox, s.skyboxProgram = nil, nil
	s.mu.Unlock()

	for i := len(releases) - 1; i >= 0; i-- {
		s.logger.Debug("releasing", "scene", s.name, "resource", releases[i].label)
		releases[i].res.Release()
	}
}

func (s *scene) Released() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.released
}

func hasEnabled(objects []game_object.GameObject) bool {
	for _, o := range objects {
		if o.Enabled() {
			return true
		}
	}
	return false
}
