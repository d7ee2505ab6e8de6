package main

import (
	"fmt"
	"log/slog"

	"github.com/Carmen-Shannon/oxy-viewer/assets"
	"github.com/Carmen-Shannon/oxy-viewer/engine/config"
	"github.com/Carmen-Shannon/oxy-viewer/engine/loader"
	"github.com/Carmen-Shannon/oxy-viewer/engine/mesh"
	"github.com/Carmen-Shannon/oxy-viewer/engine/scene"
	"github.com/pkg/errors"
)

// populate fills s from cfg: programs, sky, ground, buildings, then models.
// Every resource is owned by s, so s.Release cleans up after a failure at any step.
// Models that fail to load are logged and skipped.
func populate(s scene.Scene, l loader.Loader, cfg config.Config, logger *slog.Logger) error {
	for _, p := range cfg.Shaders {
		if err := acquireProgram(s, p); err != nil {
			return err
		}
	}

	if cfg.Sky.Enabled {
		sky, err := s.AcquireMesh(mesh.SkyboxGeometry(), mesh.WithName("sky"))
		if err != nil {
			return errors.Wrap(err, "sky mesh")
		}
		if err := s.SetSkybox(sky, cfg.Sky.Program); err != nil {
			return err
		}
		s.SetSkyColors(cfg.Sky.Horizon, cfg.Sky.Zenith)
	}

	objects := append([]config.ObjectConfig{cfg.Ground}, cfg.Buildings...)
	for i, o := range objects {
		name := "ground"
		if i > 0 {
			name = fmt.Sprintf("building.%d", i-1)
		}
		if err := addShape(s, name, o); err != nil {
			return err
		}
	}

	if len(cfg.Models) == 0 {
		return nil
	}
	paths := make([]string, len(cfg.Models))
	for i, m := range cfg.Models {
		paths[i] = m.Path
	}
	if _, err := l.ImportAll(paths...); err != nil {
		logger.Warn("model import failed", "error", err)
	}
	for _, m := range cfg.Models {
		if err := addModel(s, l, m); err != nil {
			logger.Error("skipping model", "path", m.Path, "error", err)
		}
	}
	return nil
}

func acquireProgram(s scene.Scene, p config.ProgramConfig) error {
	if !p.Embedded() {
		_, err := s.LoadProgram(p.Name, p.Vertex, p.Fragment)
		return err
	}
	vs, fs, err := assets.ShaderPair(p.Name)
	if err != nil {
		return err
	}
	_, err = s.AcquireProgram(p.Name, vs, fs)
	return err
}

func addShape(s scene.Scene, name string, o config.ObjectConfig) error {
	geometry, ok := mesh.ShapeGeometry(o.Shape)
	if !ok {
		return errors.Errorf("%s: unknown shape %q", name, o.Shape)
	}
	m, err := s.AcquireMesh(geometry, mesh.WithName(name), mesh.WithPlacement(o.Placement))
	if err != nil {
		return errors.Wrap(err, name)
	}
	_, err = s.AddMesh(m, o.Program)
	return err
}

func addModel(s scene.Scene, l loader.Loader, m config.ModelConfig) error {
	if m.Combined {
		combined, err := l.LoadCombined(m.Path, m.Placement)
		if err != nil {
			return err
		}
		s.Own("model "+m.Path, combined)
		_, err = s.AddMesh(combined, m.Program)
		return err
	}

	meshes, err := l.Load(m.Path, m.Placement)
	if err != nil {
		return err
	}
	for _, sub := range meshes {
		s.Own("model "+sub.Name(), sub)
	}
	for _, sub := range meshes {
		if _, err := s.AddMesh(sub, m.Program); err != nil {
			return err
		}
	}
	return nil
}
