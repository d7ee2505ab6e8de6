package engine

import (
	"log/slog"
	"runtime/debug"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/engine/profiler"
	"github.com/Carmen-Shannon/oxy-viewer/engine/scene"
	"github.com/Carmen-Shannon/oxy-viewer/engine/window"
	"github.com/pkg/errors"
)

var (
	ErrNoWindow    = errors.New("engine has no window")
	ErrFramePanic  = errors.New("panic during frame")
	ErrAlreadyRuns = errors.New("engine is already running")
)

// engine implements the Engine interface.
// Every frame runs on the calling goroutine, which must be the one owning the GL context.
type engine struct {
	mu sync.Mutex

	running atomic.Bool
	quit    atomic.Bool

	window window.Window
	logger *slog.Logger

	profiler         *profiler.Profiler
	profilingEnabled bool

	tickCallback   func(deltaTime float32)
	renderCallback func(deltaTime float32)

	scenes map[int]scene.Scene

	renderFrameLimit time.Duration // minimum frame duration; 0 = uncapped
	maxDelta         time.Duration
	now              func() time.Time

	frames atomic.Uint64
}

// Engine is the main entry point for the viewer.
// It owns the frame loop: poll window events, tick, render every active scene, swap, profile.
type Engine interface {
	// Window returns the underlying window.
	//
	// Returns:
	//   - window.Window: the window instance
	Window() window.Window

	// EnableProfiler enables periodic runtime statistics through the profiler sink.
	EnableProfiler()

	// DisableProfiler disables periodic runtime statistics.
	DisableProfiler()

	// Profiler returns the frame profiler.
	Profiler() *profiler.Profiler

	// SetTickCallback registers the function called once per frame before any scene renders.
	// Use this for input processing and camera movement.
	//
	// Parameters:
	//   - callback: function receiving the delta time in seconds
	SetTickCallback(callback func(deltaTime float32))

	// SetRenderCallback registers the function called each frame after the scenes rendered
	// and before the buffers are swapped.
	//
	// Parameters:
	//   - callback: function receiving the delta time in seconds
	SetRenderCallback(callback func(deltaTime float32))

	// SetRenderFrameLimit sets an optional frame rate cap in frames per second.
	// Pass 0 to uncap the loop (default).
	//
	// Parameters:
	//   - fps: maximum frames per second (0 = uncapped)
	SetRenderFrameLimit(fps float64)

	// AddScene registers a scene at the given z-index key.
	// Scenes are rendered in ascending key order.
	//
	// Parameters:
	//   - key: the z-index determining render order (lower renders first)
	//   - s: the Scene to register
	AddScene(key int, s scene.Scene)

	// RemoveScene removes the scene at the given z-index key. The scene is not released.
	//
	// Parameters:
	//   - key: the z-index of the scene to remove
	RemoveScene(key int)

	// Scene retrieves the scene registered at the given z-index key.
	// Returns nil if no scene exists at that key.
	//
	// Parameters:
	//   - key: the z-index of the scene to retrieve
	//
	// Returns:
	//   - scene.Scene: the scene at the key, or nil if not found
	Scene(key int) scene.Scene

	// Scenes returns a copy of all registered scenes keyed by z-index.
	//
	// Returns:
	//   - map[int]scene.Scene: a copy of the scenes map
	Scenes() map[int]scene.Scene

	// Run runs the frame loop on the calling goroutine until the window closes or Quit is called.
	// A panic or render error inside a frame stops the loop and is returned, so deferred releases
	// in the caller still run.
	//
	// Returns:
	//   - error: nil on a normal close, ErrNoWindow, ErrAlreadyRuns, or the frame failure
	Run() error

	// Quit stops the loop after the current frame. Safe to call multiple times and from any goroutine.
	Quit()

	// Frames returns the number of completed frames.
	Frames() uint64
}

var _ Engine = &engine{}

// NewEngine creates a new Engine instance with the provided options.
// When a window is set its resize events update the viewport and camera aspect of every scene.
//
// Parameters:
//   - options: functional options for engine configuration
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engine{
		scenes:   make(map[int]scene.Scene),
		logger:   slog.Default(),
		maxDelta: 100 * time.Millisecond,
		now:      time.Now,
	}

	for _, opt := range options {
		opt(e)
	}

	if e.profiler == nil {
		e.profiler = profiler.NewProfiler(profiler.WithSink(profiler.NewLogSink(e.logger)))
	}

	if e.window != nil {
		e.window.SetResizeCallback(e.resize)
	}

	return e
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) resize(width, height int) {
	for _, s := range e.sortedScenes(false) {
		s.Renderer().Resize(width, height)
		s.Camera().SetAspect(float32(width) / float32(height))
	}
	e.logger.Debug("window resized", "width", width, "height", height)
}

func (e *engine) Run() error {
	if e.window == nil {
		return ErrNoWindow
	}
	if !e.running.CompareAndSwap(false, true) {
		return ErrAlreadyRuns
	}
	defer e.running.Store(false)
	e.quit.Store(false)

	e.logger.Info("engine started", "scenes", len(e.Scenes()), "frame_limit", e.renderFrameLimit)
	last := e.now()
	for !e.quit.Load() && e.window.PollEvents() {
		frameStart := e.now()
		elapsed := common.Clamp(frameStart.Sub(last), 0, e.maxDelta)
		last = frameStart

		if err := e.frame(float32(elapsed.Seconds())); err != nil {
			e.logger.Error("frame failed, stopping", "frame", e.frames.Load(), "error", err)
			return err
		}
		e.window.SwapBuffers()
		e.frames.Add(1)

		e.mu.Lock()
		profiling := e.profilingEnabled
		e.mu.Unlock()
		if profiling {
			e.profiler.Tick()
		}

		if e.renderFrameLimit > 0 {
			if remaining := e.renderFrameLimit - e.now().Sub(frameStart); remaining > 0 {
				time.Sleep(remaining)
			}
		}
	}
	e.logger.Info("engine stopped", "frames", e.frames.Load())
	return nil
}

// frame runs one tick and render pass, converting a panic into ErrFramePanic.
func (e *engine) frame(dt float32) (err error) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Debug("frame panic stack", "stack", string(debug.Stack()))
			err = errors.Wrapf(ErrFramePanic, "%v", r)
		}
	}()

	e.mu.Lock()
	tick, render := e.tickCallback, e.renderCallback
	e.mu.Unlock()

	if tick != nil {
		tick(dt)
	}
	for _, s := range e.sortedScenes(true) {
		if err := s.Render(dt); err != nil {
			return errors.Wrapf(err, "rendering scene %q", s.Name())
		}
	}
	if render != nil {
		render(dt)
	}
	return nil
}

// sortedScenes returns the registered scenes in ascending z-index order.
func (e *engine) sortedScenes(activeOnly bool) []scene.Scene {
	e.mu.Lock()
	defer e.mu.Unlock()
	keys := make([]int, 0, len(e.scenes))
	for k := range e.scenes {
		keys = append(keys, k)
	}
	sort.Ints(keys)

	out := make([]scene.Scene, 0, len(keys))
	for _, k := range keys {
		if s := e.scenes[k]; !activeOnly || s.Active() {
			out = append(out, s)
		}
	}
	return out
}

// Quit stops the loop after the current frame and asks the window to close.
func (e *engine) Quit() {
	e.quit.Store(true)
	if e.window != nil {
		e.window.RequestClose()
	}
}

func (e *engine) Frames() uint64 {
	return e.frames.Load()
}

func (e *engine) Profiler() *profiler.Profiler {
	return e.profiler
}

// EnableProfiler enables performance profiling output to the sink.
func (e *engine) EnableProfiler() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.profilingEnabled = true
}

// DisableProfiler disables performance profiling output.
func (e *engine) DisableProfiler() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.profilingEnabled = false
}

// SetTickCallback registers the function called each frame before rendering.
func (e *engine) SetTickCallback(callback func(deltaTime float32)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.tickCallback = callback
}

// SetRenderCallback registers the function called each frame after rendering.
func (e *engine) SetRenderCallback(callback func(deltaTime float32)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.renderCallback = callback
}

// SetRenderFrameLimit sets an optional render frame rate cap.
// Pass 0 to uncap the render loop.
func (e *engine) SetRenderFrameLimit(fps float64) {
	e.renderFrameLimit = frameDuration(fps)
}

func (e *engine) AddScene(key int, s scene.Scene) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.scenes[key] = s
}

func (e *engine) RemoveScene(key int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.scenes, key)
}

func (e *engine) Scene(key int) scene.Scene {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.scenes[key]
}

func (e *engine) Scenes() map[int]scene.Scene {
	e.mu.Lock()
	defer e.mu.Unlock()
	cp := make(map[int]scene.Scene, len(e.scenes))
	for k, v := range e.scenes {
		cp[k] = v
	}
	return cp
}

func frameDuration(fps float64) time.Duration {
	if fps <= 0 {
		return 0
	}
	return time.Duration(float64(time.Second) / fps)
}
