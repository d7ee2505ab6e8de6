package camera

import (
	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/go-gl/mathgl/mgl32"
)

// CameraController defines the movement model that drives a Camera's eye and look direction.
// The controller owns position and orientation; the Camera only turns them into matrices.
type CameraController interface {
	// Position returns the eye position.
	//
	// Returns:
	//   - mgl32.Vec3: the eye position in world space
	Position() mgl32.Vec3

	// SetPosition moves the eye without changing orientation.
	//
	// Parameters:
	//   - p: the new eye position
	SetPosition(p mgl32.Vec3)

	// Front returns the unit look direction.
	//
	// Returns:
	//   - mgl32.Vec3: the normalized front vector
	Front() mgl32.Vec3

	// Right returns the unit vector to the right of Front on the horizontal plane.
	//
	// Returns:
	//   - mgl32.Vec3: normalize(Front x WorldUp)
	Right() mgl32.Vec3

	// Yaw returns the horizontal angle in degrees.
	Yaw() float32

	// Pitch returns the vertical angle in degrees, within the pitch limit.
	Pitch() float32

	// ProcessMouse turns a cursor sample into yaw and pitch changes. The first sample only
	// records the cursor position. Moving the cursor up raises the pitch.
	//
	// Parameters:
	//   - x, y: the cursor position in window coordinates
	ProcessMouse(x, y float64)

	// Update advances movement by dt seconds using the held keys: W/S along Front, A/D along Right,
	// Space to jump when grounded. Gravity then pulls the eye down to ground height.
	//
	// Parameters:
	//   - dt: elapsed seconds since the previous update
	//   - keys: the current key state, nil for no input
	Update(dt float32, keys common.KeyState)

	// Grounded reports whether the eye rests at ground height.
	Grounded() bool

	// VerticalVelocity returns the current vertical speed in units per second.
	VerticalVelocity() float32

	// Speed returns the movement speed in units per second.
	Speed() float32

	// Sensitivity returns the degrees of rotation per cursor pixel.
	Sensitivity() float32
}
