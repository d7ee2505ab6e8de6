package window

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/stretchr/testify/assert"
)

func TestKeyStateTracksTransitions(t *testing.T) {
	w := newEngineWindow()
	var downs, ups []uint32
	w.SetKeyDownCallback(func(k uint32) { downs = append(downs, k) })
	w.SetKeyUpCallback(func(k uint32) { ups = append(ups, k) })

	w.handleKey(common.KeyW, true)
	w.handleKey(common.KeyW, true)
	assert.True(t, w.IsKeyDown(common.KeyW))
	assert.False(t, w.IsKeyDown(common.KeyS))
	assert.Equal(t, []uint32{common.KeyW}, downs, "held keys report one press")

	w.handleKey(common.KeyW, false)
	assert.False(t, w.IsKeyDown(common.KeyW))
	assert.Equal(t, []uint32{common.KeyW}, ups)
}

func TestEscapeDoesNotReachCallbacks(t *testing.T) {
	w := newEngineWindow()
	called := false
	w.SetKeyDownCallback(func(uint32) { called = true })
	w.handleKey(common.KeyEsc, true)
	assert.False(t, called)
	assert.False(t, w.IsRunning(), "no platform window")
}

func TestResizeSkipsZeroSize(t *testing.T) {
	w := newEngineWindow(WithWidth(800), WithHeight(600))
	assert.Equal(t, 800, w.Width())

	var got [][2]int
	w.SetResizeCallback(func(width, height int) { got = append(got, [2]int{width, height}) })
	w.handleResize(0, 0)
	w.handleResize(1024, 768)
	assert.Equal(t, [][2]int{{1024, 768}}, got)
	assert.Equal(t, 768, w.Height())
}

func TestWithoutPlatformWindow(t *testing.T) {
	w := newEngineWindow()
	assert.False(t, w.PollEvents())
	assert.Error(t, w.Close())
	assert.NotPanics(t, func() {
		w.SwapBuffers()
		w.SetCursorCaptured(false)
		w.RequestClose()
		w.ProcessMessages()
	})
}

func TestMouseMoveForwarded(t *testing.T) {
	w := newEngineWindow()
	var x, y float64
	w.SetMouseMoveCallback(func(mx, my float64) { x, y = mx, my })
	w.handleMouseMove(12.5, 40)
	assert.Equal(t, 12.5, x)
	assert.Equal(t, 40.0, y)
}
