package mesh

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/oxy-viewer/assets"
	"github.com/Carmen-Shannon/oxy-viewer/engine/model"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/shader"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHeadless(t *testing.T) (renderer.Renderer, renderer.Recorder) {
	t.Helper()
	r, err := renderer.NewRenderer(renderer.BackendTypeHeadless, renderer.WithLeakDetection(true))
	require.NoError(t, err)
	rec, ok := r.Backend().(renderer.Recorder)
	require.True(t, ok)
	return r, rec
}

func basicProgram(t *testing.T, r renderer.Renderer) shader.Program {
	t.Helper()
	vs, fs, err := assets.ShaderPair("basic")
	require.NoError(t, err)
	p, err := shader.NewProgram(r, vs, fs, shader.WithName("basic"))
	require.NoError(t, err)
	return p
}

// panicErr runs fn and returns the error it panicked with, or nil.
func panicErr(fn func()) (err error) {
	defer func() {
		if v := recover(); v != nil {
			err, _ = v.(error)
		}
	}()
	fn()
	return nil
}

func TestMeshUploadCreatesOwnedHandles(t *testing.T) {
	r, rec := newHeadless(t)
	m := NewMesh(r, UnitBox(), WithName("box"))

	require.NoError(t, m.Upload())
	assert.True(t, m.Uploaded())
	assert.Equal(t, uint32(36), m.IndexCount())
	assert.Equal(t, 24, m.VertexCount())
	assert.Equal(t, map[renderer.HandleKind]int{
		renderer.HandleBuffer:      2,
		renderer.HandleVertexArray: 1,
	}, r.LiveHandles())

	var attribs []renderer.Call
	for _, c := range rec.Calls() {
		if c.Op == "VertexAttribPointer" {
			attribs = append(attribs, c)
		}
	}
	require.Len(t, attribs, 2)
	assert.Equal(t, []any{uint32(0), int32(3), int32(24), uintptr(0)}, attribs[0].Args)
	assert.Equal(t, []any{uint32(1), int32(3), int32(24), uintptr(12)}, attribs[1].Args)

	m.Release()
	assert.Empty(t, r.LiveHandles())
	assert.NoError(t, r.Close())
}

func TestMeshDrawWritesColorThenModelAndDrawsOnce(t *testing.T) {
	r, rec := newHeadless(t)
	p := basicProgram(t, r)
	m := NewMesh(r, BuildingBox(),
		WithPosition(mgl32.Vec3{4, 7, -4}),
		WithScale(mgl32.Vec3{7, 20, 7}),
		WithColor(mgl32.Vec4{0.2, 0.6, 0.9, 1}),
	)
	require.NoError(t, m.Upload())
	rec.Reset()

	p.Use()
	m.Draw(p)

	var ops []string
	for _, c := range rec.Calls() {
		switch c.Op {
		case "UniformVec4", "UniformMat4", "DrawIndexed":
			ops = append(ops, c.Op)
		}
	}
	assert.Equal(t, []string{"UniformVec4", "UniformMat4", "DrawIndexed"}, ops)

	draws := rec.Draws()
	require.Len(t, draws, 1)
	assert.Equal(t, int32(36), draws[0].IndexCount)
	assert.Equal(t, m.VertexArray(), draws[0].VertexArray)
	assert.Equal(t, p.Handle(), draws[0].Program)

	color, ok := rec.UniformValue(p.Handle(), "color")
	require.True(t, ok)
	assert.Equal(t, mgl32.Vec4{0.2, 0.6, 0.9, 1}, color)
	modelMat, ok := rec.UniformValue(p.Handle(), "model")
	require.True(t, ok)
	assert.Equal(t, m.ModelMatrix(), modelMat)

	m.Release()
	p.Release()
	assert.NoError(t, r.Close())
}

func TestModelMatrixScalesThenTranslates(t *testing.T) {
	r, _ := newHeadless(t)
	m := NewMesh(r, UnitBox(), WithPosition(mgl32.Vec3{4, 7, -4}), WithScale(mgl32.Vec3{7, 20, 7}))

	mat := m.ModelMatrix()
	origin := mat.Mul4x1(mgl32.Vec4{0, 0, 0, 1}).Vec3()
	assert.True(t, origin.ApproxEqual(mgl32.Vec3{4, 7, -4}), "origin maps to %v", origin)

	corner := mat.Mul4x1(mgl32.Vec4{1, 1, 1, 1}).Vec3()
	assert.True(t, corner.ApproxEqual(mgl32.Vec3{11, 27, 3}), "corner maps to %v", corner)
}

func TestMeshDoubleReleaseIsNoOp(t *testing.T) {
	r, rec := newHeadless(t)
	m := NewMesh(r, UnitPyramid())
	require.NoError(t, m.Upload())

	m.Release()
	m.Release()

	assert.True(t, m.Released())
	assert.Equal(t, 2, rec.CallCount("DeleteBuffer"))
	assert.Equal(t, 1, rec.CallCount("DeleteVertexArray"))
	assert.NoError(t, r.Close())
}

func TestMeshDrawAfterReleasePanics(t *testing.T) {
	r, _ := newHeadless(t)
	p := basicProgram(t, r)
	m := NewMesh(r, UnitBox())
	require.NoError(t, m.Upload())
	m.Release()

	err := panicErr(func() { m.Draw(p) })
	require.Error(t, err)
	assert.True(t, errors.Is(err, renderer.ErrReleased))
	p.Release()
}

func TestMeshDrawBeforeUploadPanics(t *testing.T) {
	r, _ := newHeadless(t)
	p := basicProgram(t, r)
	m := NewMesh(r, UnitBox())

	err := panicErr(func() { m.Draw(p) })
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotUploaded))
	p.Release()
}

func TestMeshUploadTwicePanics(t *testing.T) {
	r, _ := newHeadless(t)
	m := NewMesh(r, UnitBox())
	require.NoError(t, m.Upload())

	err := panicErr(func() { _ = m.Upload() })
	assert.True(t, errors.Is(err, ErrAlreadyUploaded))
	m.Release()
}

func TestMeshUploadRejectsBadGeometry(t *testing.T) {
	tests := []struct {
		name     string
		geometry model.Geometry
	}{
		{"partial vertex", model.Geometry{Vertices: []float32{0, 0, 0, 0, 1}, Indices: nil}},
		{"partial triangle", model.Geometry{Vertices: make([]float32, 18), Indices: []uint32{0, 1}}},
		{"index out of range", model.Geometry{Vertices: make([]float32, 18), Indices: []uint32{0, 1, 3}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _ := newHeadless(t)
			m := NewMesh(r, tt.geometry)
			assert.Error(t, m.Upload())
			assert.False(t, m.Uploaded())
			assert.Empty(t, r.LiveHandles())
		})
	}
}

func TestMeshColorIsClamped(t *testing.T) {
	r, _ := newHeadless(t)
	m := NewMesh(r, UnitBox(), WithColor(mgl32.Vec4{2, -1, 0.5, 1}))
	assert.Equal(t, mgl32.Vec4{1, 0, 0.5, 1}, m.Color())

	m.SetColor(mgl32.Vec4{0.3, 1.5, -0.2, 0.4})
	assert.Equal(t, mgl32.Vec4{0.3, 1, 0, 0.4}, m.Color())
}

func TestLeakReportedWhenMeshNotReleased(t *testing.T) {
	r, _ := newHeadless(t)
	m := NewMesh(r, UnitBox(), WithName("forgotten"))
	require.NoError(t, m.Upload())

	err := r.Close()
	require.Error(t, err)
	assert.True(t, errors.Is(err, renderer.ErrLeakedHandles))
	assert.Contains(t, err.Error(), "forgotten.vbo")
}

func TestVertexLayoutValidate(t *testing.T) {
	assert.NoError(t, PositionNormalLayout.Validate())
	assert.Equal(t, 6, PositionNormalLayout.FloatsPerVertex())
	assert.Equal(t, []uint32{0, 1}, PositionNormalLayout.Locations())

	bad := []VertexLayout{
		{Stride: 0, Attributes: []Attribute{{Location: 0, Components: 3}}},
		{Stride: 10, Attributes: []Attribute{{Location: 0, Components: 2}}},
		{Stride: 12},
		{Stride: 12, Attributes: []Attribute{{Location: 0, Components: 3, Offset: 4}}},
		{Stride: 24, Attributes: []Attribute{{Location: 0, Components: 3}, {Location: 0, Components: 3, Offset: 12}}},
		{Stride: 24, Attributes: []Attribute{{Location: 0, Components: 5}}},
	}
	for _, l := range bad {
		assert.Error(t, l.Validate(), "%+v", l)
	}
}

func TestVertexLayoutMatchesProgramInputs(t *testing.T) {
	r, _ := newHeadless(t)
	p := basicProgram(t, r)
	defer p.Release()
	assert.NoError(t, PositionNormalLayout.Match(p.Inputs()))

	positionsOnly := VertexLayout{Attributes: []Attribute{{Location: 0, Components: 3}}, Stride: 12}
	assert.True(t, errors.Is(positionsOnly.Match(p.Inputs()), ErrLayoutMismatch))

	flat := VertexLayout{Attributes: []Attribute{{Location: 0, Components: 2}, {Location: 1, Components: 3, Offset: 8}}, Stride: 20}
	err := flat.Match(p.Inputs())
	assert.True(t, errors.Is(err, ErrLayoutMismatch))
	assert.Contains(t, err.Error(), "vec3")

	assert.NoError(t, positionsOnly.Match(nil))
}

func TestMeshWithCustomLayout(t *testing.T) {
	r, rec := newHeadless(t)
	positionsOnly := VertexLayout{Attributes: []Attribute{{Location: 0, Components: 3}}, Stride: 12}
	g := model.Geometry{
		Vertices: []float32{0, 0, 0, 1, 0, 0, 0, 1, 0},
		Indices:  []uint32{0, 1, 2},
	}
	m := NewMesh(r, g, WithLayout(positionsOnly))
	require.NoError(t, m.Upload())
	assert.Equal(t, 3, m.VertexCount())
	assert.Equal(t, 1, rec.CallCount("VertexAttribPointer"))
	m.Release()
}

func TestDrawGeometryWritesNoUniforms(t *testing.T) {
	r, rec := newHeadless(t)
	m := NewMesh(r, SkyboxGeometry(), WithName("sky"))
	require.NoError(t, m.Upload())
	rec.Reset()

	m.DrawGeometry()
	assert.Zero(t, rec.CallCount("UniformVec4"))
	assert.Zero(t, rec.CallCount("UniformMat4"))
	assert.Equal(t, 1, rec.CallCount("DrawIndexed"))

	m.Release()
	assert.Panics(t, func() { m.DrawGeometry() })
}
