package main

import (
	"time"

	"github.com/spf13/cobra"

	"wavelattice/internal/config"
)

// cliFlags holds command-line overrides. Values only replace the loaded
// configuration when the flag was set explicitly.
type cliFlags struct {
	// configPath names an optional YAML file layered over the defaults.
	configPath string
	logLevel   string

	// cpuProfile writes a CPU profile covering the whole run.
	cpuProfile string

	// recordDefaultPGO orbits the camera for 15s while capturing default.pgo.
	recordDefaultPGO bool

	side             int
	spacing          float64
	fov              float64
	width            int
	height           int
	frequencies      []float64
	origin           string
	decay            float64
	externalWAV      string
	snapshotPath     string
	snapshotInterval time.Duration
	snapshotMax      int
	workers          int
	openCL           bool
	audio            bool
	debug            bool

	// cadence is the replay block period.
	cadence time.Duration
}

// bindPersistent registers flags shared by every subcommand.
func (f *cliFlags) bindPersistent(cmd *cobra.Command) {
	fs := cmd.PersistentFlags()
	fs.StringVarP(&f.configPath, "config", "c", "", "YAML configuration file")
	fs.StringVar(&f.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	fs.StringVar(&f.cpuProfile, "cpuprofile", "", "write a CPU profile to this file")
	fs.IntVar(&f.width, "width", 0, "window width in pixels")
	fs.IntVar(&f.height, "height", 0, "window height in pixels")
	fs.Float64Var(&f.fov, "fov", 0, "projection focal distance")
	fs.BoolVar(&f.debug, "debug", false, "show FPS and evaluation overlay")
	fs.StringVar(&f.snapshotPath, "snapshot-path", "", "snapshot log path")
}

// bindSimulator registers flags that only the live viewer reads.
func (f *cliFlags) bindSimulator(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.BoolVar(&f.recordDefaultPGO, "record-default-pgo", false, "orbit the camera for 15s while capturing default.pgo")
	fs.IntVar(&f.side, "side", 0, "points per lattice edge")
	fs.Float64Var(&f.spacing, "spacing", 0, "distance between neighbouring points")
	fs.Float64SliceVar(&f.frequencies, "frequencies", nil, "initial frequencies, comma separated")
	fs.StringVar(&f.origin, "origin", "", "distance origin (anchor or camera)")
	fs.Float64Var(&f.decay, "decay", 0, "per-index weight decay in (0, 1]")
	fs.StringVar(&f.externalWAV, "external-wav", "", "WAV file mixed into the field as a spectrogram")
	fs.DurationVar(&f.snapshotInterval, "snapshot-interval", 0, "time between snapshots")
	fs.IntVar(&f.snapshotMax, "snapshot-max", 0, "snapshots per recording session")
	fs.IntVar(&f.workers, "workers", 0, "evaluation goroutines (0 uses every CPU)")
	fs.BoolVar(&f.openCL, "opencl", false, "evaluate the field with OpenCL when built with -tags opencl")
	fs.BoolVar(&f.audio, "audio", false, "play the intensity at the lattice centre")
}

// bindReplay registers replay flags.
func (f *cliFlags) bindReplay(cmd *cobra.Command) {
	cmd.Flags().DurationVar(&f.cadence, "cadence", defaultCadence, "time each snapshot stays on screen")
}

// apply copies explicitly set flags over cfg.
func (f *cliFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	changed := func(name string) bool {
		fl := cmd.Flags().Lookup(name)
		return fl != nil && fl.Changed
	}
	if changed("log-level") {
		cfg.LogLevel = f.logLevel
	}
	if changed("width") {
		cfg.Width = f.width
	}
	if changed("height") {
		cfg.Height = f.height
	}
	if changed("fov") {
		cfg.FOV = f.fov
	}
	if changed("debug") {
		cfg.Debug = f.debug
	}
	if changed("snapshot-path") {
		cfg.SnapshotPath = f.snapshotPath
	}
	if changed("side") {
		cfg.Side = f.side
	}
	if changed("spacing") {
		cfg.Spacing = f.spacing
	}
	if changed("frequencies") {
		cfg.Frequencies = append([]float64(nil), f.frequencies...)
	}
	if changed("origin") {
		cfg.Origin = f.origin
	}
	if changed("decay") {
		cfg.Decay = f.decay
	}
	if changed("external-wav") {
		cfg.ExternalWAV = f.externalWAV
	}
	if changed("snapshot-interval") {
		cfg.SnapshotInterval = f.snapshotInterval
	}
	if changed("snapshot-max") {
		cfg.SnapshotMax = f.snapshotMax
	}
	if changed("workers") {
		cfg.Workers = f.workers
	}
	if changed("opencl") {
		cfg.OpenCL = f.openCL
	}
	if changed("audio") {
		cfg.Audio = f.audio
	}
}
