// Package config loads simulator settings from defaults, an optional YAML file,
// and WAVELATTICE_* environment variables, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-gl/mathgl/mgl64"
	"gopkg.in/yaml.v3"

	"wavelattice/internal/memory"
	"wavelattice/internal/wavefield"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid configuration")

const (
	OriginAnchor = "anchor"
	OriginCamera = "camera"

	FrequenciesLive     = "live"
	FrequenciesBaseline = "baseline"
)

// Config is the full simulator configuration.
type Config struct {
	Side    int     `yaml:"side" env:"WAVELATTICE_SIDE"`
	Spacing float64 `yaml:"spacing" env:"WAVELATTICE_SPACING"`

	Width       int       `yaml:"width" env:"WAVELATTICE_WIDTH"`
	Height      int       `yaml:"height" env:"WAVELATTICE_HEIGHT"`
	FOV         float64   `yaml:"fov" env:"WAVELATTICE_FOV"`
	CameraStart []float64 `yaml:"camera_start" env:"WAVELATTICE_CAMERA_START"`
	TPS         int       `yaml:"tps" env:"WAVELATTICE_TPS"`
	TimeStep    float64   `yaml:"time_step" env:"WAVELATTICE_TIME_STEP"`

	Frequencies    []float64 `yaml:"frequencies" env:"WAVELATTICE_FREQUENCIES"`
	Damping        float64   `yaml:"damping" env:"WAVELATTICE_DAMPING"`
	Decay          float64   `yaml:"decay" env:"WAVELATTICE_DECAY"`
	Origin         string    `yaml:"origin" env:"WAVELATTICE_ORIGIN"`
	Anchor         []float64 `yaml:"anchor" env:"WAVELATTICE_ANCHOR"`
	ExternalWeight float64   `yaml:"external_weight" env:"WAVELATTICE_EXTERNAL_WEIGHT"`
	ExternalWAV    string    `yaml:"external_wav" env:"WAVELATTICE_EXTERNAL_WAV"`

	SnapshotPath        string        `yaml:"snapshot_path" env:"WAVELATTICE_SNAPSHOT_PATH"`
	SnapshotInterval    time.Duration `yaml:"snapshot_interval" env:"WAVELATTICE_SNAPSHOT_INTERVAL"`
	SnapshotMax         int           `yaml:"snapshot_max" env:"WAVELATTICE_SNAPSHOT_MAX"`
	SnapshotFrequencies string        `yaml:"snapshot_frequencies" env:"WAVELATTICE_SNAPSHOT_FREQUENCIES"`

	MoveStep        float64 `yaml:"move_step" env:"WAVELATTICE_MOVE_STEP"`
	TurnStep        float64 `yaml:"turn_step" env:"WAVELATTICE_TURN_STEP"`
	DragSensitivity float64 `yaml:"drag_sensitivity" env:"WAVELATTICE_DRAG_SENSITIVITY"`

	Workers  int    `yaml:"workers" env:"WAVELATTICE_WORKERS"`
	OpenCL   bool   `yaml:"opencl" env:"WAVELATTICE_OPENCL"`
	Audio    bool   `yaml:"audio" env:"WAVELATTICE_AUDIO"`
	Debug    bool   `yaml:"debug" env:"WAVELATTICE_DEBUG"`
	LogLevel string `yaml:"log_level" env:"WAVELATTICE_LOG_LEVEL"`

	Memory []memory.Pair `yaml:"memory" envPrefix:"WAVELATTICE_MEMORY_"`
}

// Default returns the stock 18x18x18 viewer settings.
func Default() Config {
	return Config{
		Side:                18,
		Spacing:             30,
		Width:               800,
		Height:              800,
		FOV:                 600,
		CameraStart:         []float64{0, 0, -500},
		TPS:                 60,
		TimeStep:            0.02,
		Frequencies:         []float64{0, 0, 0},
		Damping:             0.01,
		Decay:               1,
		Origin:              OriginAnchor,
		Anchor:              []float64{0, 0, 0},
		ExternalWeight:      0.5,
		SnapshotPath:        "cube_snapshots.txt",
		SnapshotInterval:    time.Second,
		SnapshotMax:         30,
		SnapshotFrequencies: FrequenciesLive,
		MoveStep:            20,
		TurnStep:            0.05,
		DragSensitivity:     0.01,
		LogLevel:            "info",
		Memory: []memory.Pair{
			{Prompt: "hello how are you", Response: "I am fine"},
		},
	}
}

// Load layers an optional YAML file and the environment over the defaults.
// An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return Config{}, err
		}
	}
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Validate reports every invalid field at once.
func (c Config) Validate() error {
	var errs []error
	bad := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
	}
	if c.Side <= 0 {
		bad("side %d must be positive", c.Side)
	}
	if !positive(c.Spacing) {
		bad("spacing %v must be positive", c.Spacing)
	}
	if c.Width <= 0 || c.Height <= 0 {
		bad("window %dx%d must be positive", c.Width, c.Height)
	}
	if !positive(c.FOV) {
		bad("fov %v must be positive", c.FOV)
	}
	if len(c.CameraStart) != 3 {
		bad("camera_start needs 3 coordinates, got %d", len(c.CameraStart))
	}
	if c.TPS <= 0 {
		bad("tps %d must be positive", c.TPS)
	}
	if !finite(c.TimeStep) {
		bad("time_step %v must be finite", c.TimeStep)
	}
	if len(c.Frequencies) == 0 || len(c.Frequencies) > 10 {
		bad("need 1 to 10 frequencies, got %d", len(c.Frequencies))
	}
	if !finite(c.Damping) || c.Damping < 0 {
		bad("damping %v must be non-negative", c.Damping)
	}
	for i, f := range c.Frequencies {
		if err := wavefield.CheckFrequency(f, c.Damping); err != nil {
			bad("frequency %d: %w", i, err)
		}
	}
	if !positive(c.Decay) || c.Decay > 1 {
		bad("decay %v must be in (0, 1]", c.Decay)
	}
	switch c.Origin {
	case OriginAnchor, OriginCamera:
	default:
		bad("origin %q must be %q or %q", c.Origin, OriginAnchor, OriginCamera)
	}
	if len(c.Anchor) != 3 {
		bad("anchor needs 3 coordinates, got %d", len(c.Anchor))
	}
	if !finite(c.ExternalWeight) {
		bad("external_weight %v must be finite", c.ExternalWeight)
	}
	if strings.TrimSpace(c.SnapshotPath) == "" {
		bad("snapshot_path must not be empty")
	}
	if c.SnapshotInterval <= 0 {
		bad("snapshot_interval %v must be positive", c.SnapshotInterval)
	}
	if c.SnapshotMax <= 0 {
		bad("snapshot_max %d must be positive", c.SnapshotMax)
	}
	switch c.SnapshotFrequencies {
	case FrequenciesLive, FrequenciesBaseline:
	default:
		bad("snapshot_frequencies %q must be %q or %q", c.SnapshotFrequencies, FrequenciesLive, FrequenciesBaseline)
	}
	if !finite(c.MoveStep) || !finite(c.TurnStep) || !finite(c.DragSensitivity) {
		bad("camera steps must be finite")
	}
	if c.Workers < 0 {
		bad("workers %d must not be negative", c.Workers)
	}
	if _, err := c.SlogLevel(); err != nil {
		bad("log_level %q: %v", c.LogLevel, err)
	}
	return errors.Join(errs...)
}

// CameraPosition returns CameraStart as a vector. Call after Validate.
func (c Config) CameraPosition() mgl64.Vec3 {
	return mgl64.Vec3{c.CameraStart[0], c.CameraStart[1], c.CameraStart[2]}
}

// AnchorPoint returns Anchor as a vector. Call after Validate.
func (c Config) AnchorPoint() mgl64.Vec3 {
	return mgl64.Vec3{c.Anchor[0], c.Anchor[1], c.Anchor[2]}
}

// SlogLevel parses LogLevel ("debug", "info", "warn", "error").
func (c Config) SlogLevel() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo, err
	}
	return lvl, nil
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

func positive(v float64) bool { return finite(v) && v > 0 }
