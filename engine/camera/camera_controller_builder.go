package camera

import "github.com/go-gl/mathgl/mgl32"

// CameraControllerOption is a functional option for configuring a controller via NewFlyController.
type CameraControllerOption func(*flyControllerImpl)

// WithPosition sets the starting eye position.
//
// Parameters:
//   - p: the eye position
//
// Returns:
//   - CameraControllerOption: a function that sets the controller position
func WithPosition(p mgl32.Vec3) CameraControllerOption {
	return func(fc *flyControllerImpl) {
		fc.position = p
	}
}

// WithYawPitch sets the starting orientation in degrees. Pitch is clamped to the pitch limit.
//
// Parameters:
//   - yaw: horizontal angle, -90 looks down -Z
//   - pitch: vertical angle
//
// Returns:
//   - CameraControllerOption: a function that sets the controller orientation
func WithYawPitch(yaw, pitch float32) CameraControllerOption {
	return func(fc *flyControllerImpl) {
		fc.yaw = yaw
		fc.pitch = pitch
	}
}

// WithPitchLimit sets the maximum absolute pitch in degrees.
func WithPitchLimit(limit float32) CameraControllerOption {
	return func(fc *flyControllerImpl) {
		if limit > 0 && limit < 90 {
			fc.pitchLimit = limit
		}
	}
}

// WithSpeed sets the movement speed in units per second.
//
// Parameters:
//   - speed: the movement speed
//
// Returns:
//   - CameraControllerOption: a function that sets the movement speed
func WithSpeed(speed float32) CameraControllerOption {
	return func(fc *flyControllerImpl) {
		fc.speed = speed
	}
}

// WithMouseSensitivity sets the degrees of rotation per cursor pixel.
//
// Parameters:
//   - sensitivity: the mouse sensitivity
//
// Returns:
//   - CameraControllerOption: a function that sets the mouse sensitivity
func WithMouseSensitivity(sensitivity float32) CameraControllerOption {
	return func(fc *flyControllerImpl) {
		fc.sensitivity = sensitivity
	}
}

// WithGravity sets the vertical acceleration, negative pulls down.
func WithGravity(gravity float32) CameraControllerOption {
	return func(fc *flyControllerImpl) {
		fc.gravity = gravity
	}
}

// WithJumpStrength sets the upward velocity a jump starts with.
func WithJumpStrength(strength float32) CameraControllerOption {
	return func(fc *flyControllerImpl) {
		fc.jumpStrength = strength
	}
}

// WithGroundLevel sets the eye height the controller cannot fall below.
func WithGroundLevel(level float32) CameraControllerOption {
	return func(fc *flyControllerImpl) {
		fc.groundLevel = level
	}
}
