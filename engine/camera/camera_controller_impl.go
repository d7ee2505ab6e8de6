package camera

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/go-gl/mathgl/mgl32"
)

// WorldUp is the fixed up axis of the fly controller.
var WorldUp = mgl32.Vec3{0, 1, 0}

// flyControllerImpl is a first-person controller: free look, planar-relative movement, jump and gravity.
type flyControllerImpl struct {
	mu *sync.Mutex

	position mgl32.Vec3
	front    mgl32.Vec3

	yaw        float32
	pitch      float32
	pitchLimit float32

	speed       float32
	sensitivity float32

	// mouse state
	firstMove bool
	lastX     float64
	lastY     float64

	// vertical motion
	groundLevel      float32
	gravity          float32
	jumpStrength     float32
	verticalVelocity float32
	grounded         bool
}

var _ CameraController = &flyControllerImpl{}

// NewFlyController creates a fly controller standing at (0, 1.7, 10) looking down -Z.
//
// Parameters:
//   - options: functional options to configure the controller
//
// Returns:
//   - CameraController: the newly created controller
func NewFlyController(options ...CameraControllerOption) CameraController {
	fc := &flyControllerImpl{
		mu:           &sync.Mutex{},
		position:     mgl32.Vec3{0, 1.7, 10},
		yaw:          -90,
		pitch:        0,
		pitchLimit:   89,
		speed:        2.5,
		sensitivity:  0.1,
		firstMove:    true,
		groundLevel:  1.7,
		gravity:      -25,
		jumpStrength: 15,
		grounded:     true,
	}
	for _, option := range options {
		option(fc)
	}
	fc.pitch = common.Clamp(fc.pitch, -fc.pitchLimit, fc.pitchLimit)
	fc.updateFront()
	return fc
}

func (fc *flyControllerImpl) Position() mgl32.Vec3 {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	return fc.position
}

func (fc *flyControllerImpl) SetPosition(p mgl32.Vec3) {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	fc.position = p
	fc.grounded = p.Y() <= fc.groundLevel
}

func (fc *flyControllerImpl) Front() mgl32.Vec3 {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	return fc.front
}

func (fc *flyControllerImpl) Right() mgl32.Vec3 {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	return fc.right()
}

func (fc *flyControllerImpl) Yaw() float32 {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	return fc.yaw
}

func (fc *flyControllerImpl) Pitch() float32 {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	return fc.pitch
}

func (fc *flyControllerImpl) Grounded() bool {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	return fc.grounded
}

func (fc *flyControllerImpl) VerticalVelocity() float32 {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	return fc.verticalVelocity
}

func (fc *flyControllerImpl) Speed() float32 {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	return fc.speed
}

func (fc *flyControllerImpl) Sensitivity() float32 {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	return fc.sensitivity
}

func (fc *flyControllerImpl) ProcessMouse(x, y float64) {
	fc.mu.Lock()
	defer fc.mu.Unlock()

	if fc.firstMove {
		fc.lastX, fc.lastY = x, y
		fc.firstMove = false
		return
	}
	dx := float32(x - fc.lastX)
	dy := float32(y - fc.lastY)
	fc.lastX, fc.lastY = x, y

	fc.yaw += dx * fc.sensitivity
	// window Y grows downward
	fc.pitch -= dy * fc.sensitivity
	fc.pitch = common.Clamp(fc.pitch, -fc.pitchLimit, fc.pitchLimit)
	fc.updateFront()
}

func (fc *flyControllerImpl) Update(dt float32, keys common.KeyState) {
	if dt <= 0 {
		return
	}
	fc.mu.Lock()
	defer fc.mu.Unlock()

	if keys != nil {
		step := fc.speed * dt
		if keys.IsKeyDown(common.KeyW) {
			fc.position = fc.position.Add(fc.front.Mul(step))
		}
		if keys.IsKeyDown(common.KeyS) {
			fc.position = fc.position.Sub(fc.front.Mul(step))
		}
		if keys.IsKeyDown(common.KeyA) {
			fc.position = fc.position.Sub(fc.right().Mul(step))
		}
		if keys.IsKeyDown(common.KeyD) {
			fc.position = fc.position.Add(fc.right().Mul(step))
		}
		if keys.IsKeyDown(common.KeySpace) && fc.grounded {
			fc.verticalVelocity = fc.jumpStrength
			fc.grounded = false
		}
	}

	fc.verticalVelocity += fc.gravity * dt
	fc.position[1] += fc.verticalVelocity * dt
	if fc.position[1] <= fc.groundLevel {
		fc.position[1] = fc.groundLevel
		fc.verticalVelocity = 0
		fc.grounded = true
	}
}

// updateFront recomputes the look direction from yaw and pitch. Caller must hold the mutex.
func (fc *flyControllerImpl) updateFront() {
	fc.front = common.DirectionFromYawPitch(fc.yaw, fc.pitch)
}

// right returns normalize(front x up). Caller must hold the mutex.
func (fc *flyControllerImpl) right() mgl32.Vec3 {
	r := fc.front.Cross(WorldUp)
	if r.Len() == 0 {
		return mgl32.Vec3{1, 0, 0}
	}
	return r.Normalize()
}
