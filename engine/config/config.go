// Package config holds the viewer configuration: window, camera, light, shaders and the objects placed in the scene.
// Defaults are embedded; a YAML file overlays them.
package config

import (
	"bytes"
	_ "embed"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/engine/mesh"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultYAML []byte

// ErrInvalid is matched by every error returned from Validate.
var ErrInvalid = errors.New("invalid config")

// Config is the complete viewer configuration.
type Config struct {
	Window    WindowConfig    `yaml:"window"`
	Camera    CameraConfig    `yaml:"camera"`
	Light     LightConfig     `yaml:"light"`
	Sky       SkyConfig       `yaml:"sky"`
	Shaders   []ProgramConfig `yaml:"shaders"`
	Ground    ObjectConfig    `yaml:"ground"`
	Buildings []ObjectConfig  `yaml:"buildings"`
	Models    []ModelConfig   `yaml:"models"`
	LogLevel  string          `yaml:"log_level"`
	Profiling ProfilingConfig `yaml:"profiling"`
}

type WindowConfig struct {
	Title          string     `yaml:"title"`
	Width          int        `yaml:"width"`
	Height         int        `yaml:"height"`
	MinWidth       int        `yaml:"min_width"`
	MinHeight      int        `yaml:"min_height"`
	VSync          bool       `yaml:"vsync"`
	CursorCaptured bool       `yaml:"cursor_captured"`
	ClearColor     mgl32.Vec4 `yaml:"clear_color"`
}

// CameraConfig carries the fly camera and its controller settings. Angles are in degrees.
type CameraConfig struct {
	Position     mgl32.Vec3 `yaml:"position"`
	Yaw          float32    `yaml:"yaw"`
	Pitch        float32    `yaml:"pitch"`
	Fov          float32    `yaml:"fov"`
	Near         float32    `yaml:"near"`
	Far          float32    `yaml:"far"`
	Speed        float32    `yaml:"speed"`
	Sensitivity  float32    `yaml:"sensitivity"`
	Gravity      float32    `yaml:"gravity"`
	JumpStrength float32    `yaml:"jump_strength"`
	GroundLevel  float32    `yaml:"ground_level"`
}

type LightConfig struct {
	Position  mgl32.Vec3 `yaml:"position"`
	Color     mgl32.Vec3 `yaml:"color"`
	Intensity float32    `yaml:"intensity"`
}

type SkyConfig struct {
	Enabled bool       `yaml:"enabled"`
	Program string     `yaml:"program"`
	Horizon mgl32.Vec3 `yaml:"horizon"`
	Zenith  mgl32.Vec3 `yaml:"zenith"`
}

// ProgramConfig names a shader program. Empty paths select the embedded shader with the same name.
type ProgramConfig struct {
	Name     string `yaml:"name"`
	Vertex   string `yaml:"vertex,omitempty"`
	Fragment string `yaml:"fragment,omitempty"`
}

// Embedded reports whether the program is read from the embedded assets.
func (p ProgramConfig) Embedded() bool {
	return p.Vertex == "" && p.Fragment == ""
}

// ObjectConfig places one procedural shape.
type ObjectConfig struct {
	Shape            mesh.Shape `yaml:"shape"`
	Program          string     `yaml:"program"`
	common.Placement `yaml:",inline"`
}

// ModelConfig places one imported model file. Combined merges the whole node tree into one mesh.
type ModelConfig struct {
	Path             string `yaml:"path"`
	Combined         bool   `yaml:"combined"`
	Program          string `yaml:"program"`
	common.Placement `yaml:",inline"`
}

type ProfilingConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Interval time.Duration `yaml:"interval"`
}

// Default returns the embedded default configuration.
//
// Returns:
//   - Config: the defaults
func Default() Config {
	var c Config
	if err := decode(defaultYAML, &c); err != nil {
		panic(errors.Wrap(err, "embedded default config"))
	}
	return c
}

// Load reads the YAML file at path over the defaults and validates the result.
// Lists in the file replace the default lists; unknown keys are rejected.
//
// Parameters:
//   - path: the YAML file
//
// Returns:
//   - Config: the merged configuration
//   - error: a read, parse or validation error
func Load(path string) (Config, error) {
	c := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return c, errors.Wrapf(err, "reading config %s", path)
	}
	if err := decode(data, &c); err != nil {
		return c, errors.Wrapf(err, "parsing config %s", path)
	}
	if err := c.Validate(); err != nil {
		return c, errors.Wrapf(err, "config %s", path)
	}
	slog.Debug("config loaded", "path", path, "buildings", len(c.Buildings), "models", len(c.Models))
	return c, nil
}

func decode(data []byte, c *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// Validate checks ranges and cross references.
//
// Returns:
//   - error: nil, or an error matching ErrInvalid naming the first bad field
func (c Config) Validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return errors.Wrapf(ErrInvalid, "window size %dx%d", c.Window.Width, c.Window.Height)
	}
	if !colorInRange(c.Window.ClearColor[:]) {
		return errors.Wrapf(ErrInvalid, "window.clear_color %v", c.Window.ClearColor)
	}
	if c.Camera.Fov <= 0 || c.Camera.Fov >= 180 {
		return errors.Wrapf(ErrInvalid, "camera.fov %v not in (0, 180)", c.Camera.Fov)
	}
	if c.Camera.Near <= 0 || c.Camera.Near >= c.Camera.Far {
		return errors.Wrapf(ErrInvalid, "camera clip near %v far %v", c.Camera.Near, c.Camera.Far)
	}
	if c.Light.Intensity < 0 {
		return errors.Wrapf(ErrInvalid, "light.intensity %v", c.Light.Intensity)
	}
	if !colorInRange(c.Light.Color[:]) {
		return errors.Wrapf(ErrInvalid, "light.color %v", c.Light.Color)
	}
	if _, err := c.Level(); err != nil {
		return errors.Wrapf(ErrInvalid, "log_level %q", c.LogLevel)
	}
	if c.Profiling.Enabled && c.Profiling.Interval <= 0 {
		return errors.Wrapf(ErrInvalid, "profiling.interval %v", c.Profiling.Interval)
	}

	programs := make(map[string]bool, len(c.Shaders))
	for i, p := range c.Shaders {
		if p.Name == "" {
			return errors.Wrapf(ErrInvalid, "shaders[%d] has no name", i)
		}
		if programs[p.Name] {
			return errors.Wrapf(ErrInvalid, "shader %q declared twice", p.Name)
		}
		if !p.Embedded() && (p.Vertex == "" || p.Fragment == "") {
			return errors.Wrapf(ErrInvalid, "shader %q needs both vertex and fragment paths", p.Name)
		}
		programs[p.Name] = true
	}
	if c.Sky.Enabled && !programs[c.Sky.Program] {
		return errors.Wrapf(ErrInvalid, "sky program %q not declared", c.Sky.Program)
	}

	objects := append([]ObjectConfig{c.Ground}, c.Buildings...)
	for i, o := range objects {
		if _, ok := mesh.ShapeGeometry(o.Shape); !ok {
			return errors.Wrapf(ErrInvalid, "object %d: unknown shape %q", i, o.Shape)
		}
		if err := checkPlacement(o.Program, o.Placement, programs); err != nil {
			return errors.Wrapf(err, "object %d", i)
		}
	}
	for i, m := range c.Models {
		if m.Path == "" {
			return errors.Wrapf(ErrInvalid, "models[%d] has no path", i)
		}
		if err := checkPlacement(m.Program, m.Placement, programs); err != nil {
			return errors.Wrapf(err, "model %s", m.Path)
		}
	}
	return nil
}

// Level parses LogLevel, accepting the slog names (debug, info, warn, error) in any case.
//
// Returns:
//   - slog.Level: the level, info when LogLevel is empty
//   - error: if LogLevel is not a level name
func (c Config) Level() (slog.Level, error) {
	var level slog.Level
	if c.LogLevel == "" {
		return slog.LevelInfo, nil
	}
	err := level.UnmarshalText([]byte(c.LogLevel))
	return level, err
}

func checkPlacement(program string, p common.Placement, programs map[string]bool) error {
	if !programs[program] {
		return errors.Wrapf(ErrInvalid, "program %q not declared", program)
	}
	if !colorInRange(p.Color[:]) {
		return errors.Wrapf(ErrInvalid, "color %v", p.Color)
	}
	return nil
}

func colorInRange(c []float32) bool {
	for _, v := range c {
		if v < 0 || v > 1 {
			return false
		}
	}
	return true
}
