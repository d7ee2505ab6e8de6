package common

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func assertVec3(t *testing.T, want, got mgl32.Vec3) {
	t.Helper()
	for i := range want {
		assert.InDelta(t, want[i], got[i], 1e-5, "component %d", i)
	}
}

func TestModelMatrixScalesThenTranslates(t *testing.T) {
	m := ModelMatrix(mgl32.Vec3{4, 7, -4}, mgl32.Vec3{7, 20, 7})
	assertVec3(t, mgl32.Vec3{11, 27, 3}, mgl32.TransformCoordinate(mgl32.Vec3{1, 1, 1}, m))
	assertVec3(t, mgl32.Vec3{4, 7, -4}, mgl32.TransformCoordinate(mgl32.Vec3{}, m))

	assert.Equal(t, mgl32.Ident4(), ModelMatrix(mgl32.Vec3{}, mgl32.Vec3{1, 1, 1}))
}

func TestFaceNormal(t *testing.T) {
	assertVec3(t, mgl32.Vec3{0, 0, 1}, FaceNormal(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 1, 0}))
	assertVec3(t, mgl32.Vec3{0, 0, -1}, FaceNormal(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0, 1, 0}, mgl32.Vec3{1, 0, 0}))
	assert.Equal(t, mgl32.Vec3{}, FaceNormal(mgl32.Vec3{1, 1, 1}, mgl32.Vec3{2, 2, 2}, mgl32.Vec3{3, 3, 3}))
}

func TestDirectionFromYawPitch(t *testing.T) {
	tests := []struct {
		name       string
		yaw, pitch float32
		want       mgl32.Vec3
	}{
		{"forward", -90, 0, mgl32.Vec3{0, 0, -1}},
		{"right", 0, 0, mgl32.Vec3{1, 0, 0}},
		{"up", -90, 90, mgl32.Vec3{0, 1, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DirectionFromYawPitch(tt.yaw, tt.pitch)
			assertVec3(t, tt.want, got)
			assert.InDelta(t, 1, got.Len(), 1e-5)
		})
	}
}

func TestRotationOnlyDropsTranslation(t *testing.T) {
	view := mgl32.LookAtV(mgl32.Vec3{5, 3, 10}, mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0, 1, 0})
	rot := RotationOnly(view)

	assert.Equal(t, mgl32.Vec4{0, 0, 0, 1}, rot.Col(3))
	assert.Equal(t, view.Mat3(), rot.Mat3())
}

func TestSliceToBytes(t *testing.T) {
	assert.Nil(t, SliceToBytes([]float32{}))
	assert.Len(t, SliceToBytes([]float32{1, 2, 3}), 12)
	assert.Len(t, SliceToBytes([]uint32{7}), 4)
}

func TestClampAndCoalesce(t *testing.T) {
	assert.Equal(t, 0, Clamp(-3, 0, 10))
	assert.Equal(t, 10, Clamp(42, 0, 10))
	assert.Equal(t, float32(0.5), Clamp(float32(0.5), 0, 1))

	assert.Equal(t, "b", Coalesce("", "b", "c"))
	assert.Equal(t, 0, Coalesce(0, 0))
}

func TestPlacementHelpers(t *testing.T) {
	p := DefaultPlacement()
	assert.Equal(t, mgl32.Vec3{1, 1, 1}, p.Scale)
	assert.Equal(t, mgl32.Vec4{1, 1, 1, 1}, p.Color)

	q := p.UniformScale(3).RGB(0.2, 0.4, 0.6)
	assert.Equal(t, mgl32.Vec3{3, 3, 3}, q.Scale)
	assert.Equal(t, mgl32.Vec4{0.2, 0.4, 0.6, 1}, q.Color)
	assert.Equal(t, mgl32.Vec3{1, 1, 1}, p.Scale, "helpers return copies")

	assert.Equal(t, mgl32.Vec4{0, 1, 0.5, 1}, ClampColor(mgl32.Vec4{-1, 2, 0.5, 1}))
}

func TestKeyStateFunc(t *testing.T) {
	var keys KeyState = KeyStateFunc(func(k uint32) bool { return k == KeyW })
	assert.True(t, keys.IsKeyDown(KeyW))
	assert.False(t, keys.IsKeyDown(KeyS))
}
