package common

import (
	"math"
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
)

// SliceToBytes converts any slice to a byte slice for GPU buffer uploads.
// Uses unsafe pointer operations to create a view into the original data.
// WARNING: The returned slice shares memory with the input - do not modify.
//
// Parameters:
//   - data: source slice of any type
//
// Returns:
//   - []byte: byte slice view of the input data, or nil if input is empty
func SliceToBytes[T any](data []T) []byte {
	if len(data) == 0 {
		return nil
	}
	var zero T
	size := unsafe.Sizeof(zero)
	totalBytes := int(size) * len(data)
	return unsafe.Slice((*byte)(unsafe.Pointer(&data[0])), totalBytes)
}

// ModelMatrix builds the object-to-world matrix for a position and a non-uniform scale.
// Scale is applied first, then translation, so the object origin always lands on position.
//
// Parameters:
//   - position: world-space translation
//   - scale: per-axis scale factors
//
// Returns:
//   - mgl32.Mat4: Translate(position) * Scale(scale), column-major
func ModelMatrix(position, scale mgl32.Vec3) mgl32.Mat4 {
	return mgl32.Translate3D(position.X(), position.Y(), position.Z()).
		Mul4(mgl32.Scale3D(scale.X(), scale.Y(), scale.Z()))
}

// FaceNormal returns the unit normal of the counter-clockwise triangle (a, b, c).
// Degenerate triangles return the zero vector.
//
// Parameters:
//   - a, b, c: the triangle corners in winding order
//
// Returns:
//   - mgl32.Vec3: normalize((b - a) x (c - a))
func FaceNormal(a, b, c mgl32.Vec3) mgl32.Vec3 {
	n := b.Sub(a).Cross(c.Sub(a))
	if n.Len() == 0 {
		return mgl32.Vec3{}
	}
	return n.Normalize()
}

// DirectionFromYawPitch converts yaw and pitch angles (degrees) into a unit look direction.
// Yaw -90 with pitch 0 looks down -Z.
//
// Parameters:
//   - yaw: rotation around the Y axis in degrees
//   - pitch: elevation in degrees
//
// Returns:
//   - mgl32.Vec3: the normalized direction vector
func DirectionFromYawPitch(yaw, pitch float32) mgl32.Vec3 {
	y := float64(mgl32.DegToRad(yaw))
	p := float64(mgl32.DegToRad(pitch))
	return mgl32.Vec3{
		float32(math.Cos(y) * math.Cos(p)),
		float32(math.Sin(p)),
		float32(math.Sin(y) * math.Cos(p)),
	}.Normalize()
}

// RotationOnly strips the translation from a view matrix, used for sky geometry that follows the camera.
//
// Parameters:
//   - view: a view matrix
//
// Returns:
//   - mgl32.Mat4: the upper 3x3 of view embedded in an identity 4x4
func RotationOnly(view mgl32.Mat4) mgl32.Mat4 {
	return view.Mat3().Mat4()
}
