package window

import (
	"log/slog"
	"runtime"
	"sync"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer"
	"github.com/pkg/errors"
)

// The GL context belongs to the thread that created it, and GLFW must run on the main thread.
func init() {
	runtime.LockOSThread()
}

// Window provides platform windowing, the GL context and input event handling.
// Wraps platform-specific window implementations with a common interface.
type Window interface {
	common.KeyState

	// SetUpdateCallback sets the function called each message loop iteration.
	//
	// Parameters:
	//   - callback: function to call (or nil to disable)
	SetUpdateCallback(callback func())

	// SetResizeCallback sets the function called when the framebuffer is resized.
	//
	// Parameters:
	//   - callback: function receiving new width and height in pixels
	SetResizeCallback(callback func(width, height int))

	// SetKeyDownCallback sets the callback for key press events. Repeats are not reported.
	//
	// Parameters:
	//   - callback: function receiving the virtual key code
	SetKeyDownCallback(callback func(keyCode uint32))

	// SetKeyUpCallback sets the callback for key release events.
	//
	// Parameters:
	//   - callback: function receiving the virtual key code
	SetKeyUpCallback(callback func(keyCode uint32))

	// SetMouseMoveCallback sets the callback for cursor movement.
	//
	// Parameters:
	//   - callback: function receiving the cursor x, y position
	SetMouseMoveCallback(callback func(x, y float64))

	// IsRunning returns true if the window is still active.
	//
	// Returns:
	//   - bool: true if window is running, false if closed
	IsRunning() bool

	// RequestClose asks the message loop to stop after the current iteration.
	RequestClose()

	// Close destroys the window and its GL context and releases platform resources.
	//
	// Returns:
	//   - error: error if the window was never created
	Close() error

	// PollEvents processes pending events without blocking.
	//
	// Returns:
	//   - bool: true while the window is still running
	PollEvents() bool

	// ProcessMessages runs the window message loop.
	// Blocks until the window is closed. Calls the update callback each iteration.
	ProcessMessages()

	// SwapBuffers presents the back buffer.
	SwapBuffers()

	// SetCursorCaptured hides and locks the cursor for mouse look, or releases it.
	//
	// Parameters:
	//   - captured: true to capture the cursor
	SetCursorCaptured(captured bool)

	// Width returns the current framebuffer width in pixels.
	//
	// Returns:
	//   - int: width in pixels
	Width() int

	// Height returns the current framebuffer height in pixels.
	//
	// Returns:
	//   - int: height in pixels
	Height() int
}

// engineWindow is the implementation of the Window interface.
// Holds window configuration, GLFW state, held keys and event callbacks.
type engineWindow struct {
	mu sync.Mutex

	title     string
	minWidth  int
	minHeight int
	width     int
	height    int
	vsync     bool
	captured  bool
	logger    *slog.Logger

	// internalWindow holds the platform-specific window data (glfwWindow).
	internalWindow any

	// keys holds the codes currently pressed
	keys map[uint32]bool

	onUpdate    func()
	onResize    func(width, height int)
	onKeyDown   func(keyCode uint32)
	onKeyUp     func(keyCode uint32)
	onMouseMove func(x, y float64)
}

var _ Window = &engineWindow{}

// NewWindow creates the platform window and makes its GL context current on the calling thread.
// Applies default values first, then each option in order.
//
// Parameters:
//   - options: functional options to configure the window
//
// Returns:
//   - Window: the created window
//   - error: wraps renderer.ErrContextUnavailable if no window or context could be created
func NewWindow(options ...WindowBuilderOption) (Window, error) {
	w := newEngineWindow(options...)
	if err := newPlatformWindow(w); err != nil {
		return nil, errors.Wrapf(renderer.ErrContextUnavailable, "create window: %v", err)
	}
	w.logger.Info("window created", "title", w.title, "width", w.width, "height", w.height)
	return w, nil
}

func newEngineWindow(options ...WindowBuilderOption) *engineWindow {
	w := &engineWindow{
		title:     "oxy viewer",
		minWidth:  320,
		minHeight: 200,
		width:     1280,
		height:    720,
		vsync:     true,
		captured:  true,
		logger:    slog.Default(),
		keys:      make(map[uint32]bool),
	}
	for _, opt := range options {
		opt(w)
	}
	return w
}

func (w *engineWindow) SetUpdateCallback(callback func()) {
	w.onUpdate = callback
}

func (w *engineWindow) SetResizeCallback(callback func(width, height int)) {
	w.onResize = callback
}

func (w *engineWindow) SetKeyDownCallback(callback func(keyCode uint32)) {
	w.onKeyDown = callback
}

func (w *engineWindow) SetKeyUpCallback(callback func(keyCode uint32)) {
	w.onKeyUp = callback
}

func (w *engineWindow) SetMouseMoveCallback(callback func(x, y float64)) {
	w.onMouseMove = callback
}

func (w *engineWindow) IsKeyDown(keyCode uint32) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.keys[keyCode]
}

func (w *engineWindow) IsRunning() bool {
	return platformIsRunningCheck(w)
}

func (w *engineWindow) RequestClose() {
	platformRequestClose(w)
}

func (w *engineWindow) Close() error {
	return platformCloseWindow(w)
}

func (w *engineWindow) PollEvents() bool {
	return platformProcessMessages(w)
}

func (w *engineWindow) ProcessMessages() {
	for w.IsRunning() {
		if succ := platformProcessMessages(w); !succ {
			break
		}
		if w.onUpdate != nil {
			w.onUpdate()
		}
	}
}

func (w *engineWindow) SwapBuffers() {
	platformSwapBuffers(w)
}

func (w *engineWindow) SetCursorCaptured(captured bool) {
	w.captured = captured
	platformSetCursorCaptured(w, captured)
}

func (w *engineWindow) Width() int {
	return w.width
}

func (w *engineWindow) Height() int {
	return w.height
}

// handleKey records a key transition and fires the key callbacks. Escape requests close.
func (w *engineWindow) handleKey(keyCode uint32, pressed bool) {
	w.mu.Lock()
	was := w.keys[keyCode]
	if pressed {
		w.keys[keyCode] = true
	} else {
		delete(w.keys, keyCode)
	}
	w.mu.Unlock()

	if pressed && keyCode == common.KeyEsc {
		w.RequestClose()
		return
	}
	switch {
	case pressed && !was && w.onKeyDown != nil:
		w.onKeyDown(keyCode)
	case !pressed && was && w.onKeyUp != nil:
		w.onKeyUp(keyCode)
	}
}

// handleResize stores the new framebuffer size and fires the resize callback.
// Zero sizes from minimizing are stored but not forwarded.
func (w *engineWindow) handleResize(width, height int) {
	w.width = width
	w.height = height
	if width <= 0 || height <= 0 {
		return
	}
	if w.onResize != nil {
		w.onResize(width, height)
	}
}

func (w *engineWindow) handleMouseMove(x, y float64) {
	if w.onMouseMove != nil {
		w.onMouseMove(x, y)
	}
}
