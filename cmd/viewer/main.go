// Command viewer opens a window with a fly camera over a ground plane, a few buildings and any
// models listed in the config. The optional single argument is a YAML config file.
//
// Controls: mouse looks, WASD moves, Space jumps, F toggles wireframe, Escape quits.
package main

import (
	"log/slog"
	"os"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/engine"
	"github.com/Carmen-Shannon/oxy-viewer/engine/camera"
	"github.com/Carmen-Shannon/oxy-viewer/engine/config"
	"github.com/Carmen-Shannon/oxy-viewer/engine/light"
	"github.com/Carmen-Shannon/oxy-viewer/engine/loader"
	"github.com/Carmen-Shannon/oxy-viewer/engine/profiler"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer"
	"github.com/Carmen-Shannon/oxy-viewer/engine/scene"
	"github.com/Carmen-Shannon/oxy-viewer/engine/window"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		slog.Error("viewer failed", "error", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg := config.Default()
	if len(args) > 0 {
		var err error
		if cfg, err = config.Load(args[0]); err != nil {
			return err
		}
	}
	level, _ := cfg.Level()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	w, err := window.NewWindow(
		window.WithTitle(cfg.Window.Title),
		window.WithWidth(cfg.Window.Width),
		window.WithHeight(cfg.Window.Height),
		window.WithMinSize(cfg.Window.MinWidth, cfg.Window.MinHeight),
		window.WithVSync(cfg.Window.VSync),
		window.WithCursorCaptured(cfg.Window.CursorCaptured),
		window.WithLogger(logger),
	)
	if err != nil {
		return err
	}
	defer w.Close()

	r, err := renderer.NewRenderer(renderer.BackendTypeGL, renderer.WithLogger(logger))
	if err != nil {
		return err
	}
	defer func() {
		if err := r.Close(); err != nil {
			logger.Error("renderer close", "error", err)
		}
	}()
	r.Resize(w.Width(), w.Height())

	cc := cfg.Camera
	cam := camera.NewCamera(
		camera.WithFov(cc.Fov),
		camera.WithAspect(float32(w.Width())/float32(w.Height())),
		camera.WithClip(cc.Near, cc.Far),
		camera.WithController(camera.NewFlyController(
			camera.WithPosition(cc.Position),
			camera.WithYawPitch(cc.Yaw, cc.Pitch),
			camera.WithSpeed(cc.Speed),
			camera.WithMouseSensitivity(cc.Sensitivity),
			camera.WithGravity(cc.Gravity),
			camera.WithJumpStrength(cc.JumpStrength),
			camera.WithGroundLevel(cc.GroundLevel),
		)),
	)

	sink := profiler.NewLogSink(logger)
	s := scene.NewScene(r,
		scene.WithName("viewer"),
		scene.WithCamera(cam),
		scene.WithLight(light.NewLight(
			light.WithPosition(cfg.Light.Position),
			light.WithColor(cfg.Light.Color),
			light.WithIntensity(cfg.Light.Intensity),
		)),
		scene.WithClearColor(cfg.Window.ClearColor),
		scene.WithSink(sink),
		scene.WithLogger(logger),
	)
	defer s.Release()

	l := loader.NewLoader(loader.BackendTypeGLTF, loader.WithRenderer(r), loader.WithLogger(logger))
	if err := populate(s, l, cfg, logger); err != nil {
		return err
	}

	eng := engine.NewEngine(
		engine.WithWindow(w),
		engine.WithScene(0, s),
		engine.WithLogger(logger),
		engine.WithProfiling(cfg.Profiling.Enabled),
		engine.WithProfiler(profiler.NewProfiler(
			profiler.WithSink(sink),
			profiler.WithInterval(cfg.Profiling.Interval),
		)),
	)

	w.SetKeyDownCallback(func(key uint32) {
		if key == common.KeyF {
			s.ToggleWireframe()
		}
	})
	w.SetMouseMoveCallback(cam.ProcessMouse)
	eng.SetTickCallback(func(dt float32) {
		cam.Update(dt, w)
	})

	logger.Info("viewer ready",
		"programs", s.Programs(),
		"objects", s.Count(),
		"gl", r.Backend().Version(),
	)
	return eng.Run()
}
