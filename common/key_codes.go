package common

// Virtual key codes for cross-platform input handling.
// These values match GLFW key codes which use ASCII values for printable keys.
// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#Key
const (
	KeyW     = 87  // W key (ASCII)
	KeyA     = 65  // A key (ASCII)
	KeyS     = 83  // S key (ASCII)
	KeyD     = 68  // D key (ASCII)
	KeyF     = 70  // F key (ASCII), toggles wireframe
	KeySpace = 32  // Spacebar (ASCII), jump
	KeyEsc   = 256 // Escape key (GLFW)
)

// KeyState reports whether a key is currently held. Implemented by the window.
type KeyState interface {
	IsKeyDown(keyCode uint32) bool
}

// KeyStateFunc adapts a plain function to KeyState.
type KeyStateFunc func(keyCode uint32) bool

// IsKeyDown calls f(keyCode).
func (f KeyStateFunc) IsKeyDown(keyCode uint32) bool {
	return f(keyCode)
}
