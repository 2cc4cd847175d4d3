// Package recorder samples the wave field over the lattice at a fixed wall-clock
// interval after a trigger and appends each sample to the snapshot log.
package recorder

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"wavelattice/internal/snapshot"
)

const (
	DefaultInterval     = time.Second
	DefaultMaxSnapshots = 30
	DefaultPath         = "cube_snapshots.txt"
)

// Sampler fills dst with the field intensity of every lattice point at time t.
type Sampler func(t float64, dst []float64) error

// Options configures a Recorder. Zero values select the defaults.
type Options struct {
	Path         string
	Interval     time.Duration
	MaxSnapshots int
	Logger       *slog.Logger
	Now          func() time.Time
}

// Recorder owns at most one recording session. It is driven from the render tick
// and writes each snapshot through to disk before returning.
type Recorder struct {
	opts    Options
	points  []mgl64.Vec3
	sample  Sampler
	scratch []float64

	active  bool
	start   time.Time
	counter int
}

// New prepares a recorder for points. Nothing is written until Trigger.
func New(opts Options, points []mgl64.Vec3, sample Sampler) *Recorder {
	if opts.Path == "" {
		opts.Path = DefaultPath
	}
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.MaxSnapshots <= 0 {
		opts.MaxSnapshots = DefaultMaxSnapshots
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Recorder{
		opts:    opts,
		points:  points,
		sample:  sample,
		scratch: make([]float64, len(points)),
	}
}

// Trigger starts a new session, truncating the log. A session already in
// progress is abandoned and its blocks are discarded with the old file contents.
func (r *Recorder) Trigger() error {
	r.active = false
	r.counter = 0
	f, err := os.Create(r.opts.Path)
	if err != nil {
		r.opts.Logger.Error("snapshot log unavailable", "path", r.opts.Path, "err", err)
		return fmt.Errorf("creating snapshot log: %w", err)
	}
	werr := snapshot.WritePreamble(f)
	if cerr := f.Close(); werr == nil {
		werr = cerr
	}
	if werr != nil {
		r.opts.Logger.Error("snapshot log unavailable", "path", r.opts.Path, "err", werr)
		return fmt.Errorf("writing snapshot preamble: %w", werr)
	}
	r.start = r.opts.Now()
	r.active = true
	r.opts.Logger.Info("snapshot recording started",
		"path", r.opts.Path, "interval", r.opts.Interval, "max", r.opts.MaxSnapshots)
	return nil
}

// Tick takes at most one snapshot if one is due and reports whether a block was
// written. Write failures are logged and consume the slot; they never stop the
// caller.
func (r *Recorder) Tick(simTime float64) bool {
	if !r.active {
		return false
	}
	elapsed := r.opts.Now().Sub(r.start)
	if elapsed < r.opts.Interval*time.Duration(r.counter) {
		return false
	}
	index := r.counter
	r.counter++
	err := r.capture(index, simTime)
	if r.counter >= r.opts.MaxSnapshots {
		r.finish()
	}
	if err != nil {
		r.opts.Logger.Warn("snapshot skipped", "index", index, "path", r.opts.Path, "err", err)
		return false
	}
	return true
}

func (r *Recorder) finish() {
	if r.active {
		r.active = false
		r.opts.Logger.Info("snapshot recording finished", "path", r.opts.Path, "count", r.counter)
	}
}

func (r *Recorder) capture(index int, simTime float64) error {
	if err := r.sample(simTime, r.scratch); err != nil {
		return fmt.Errorf("sampling field: %w", err)
	}
	f, err := os.OpenFile(r.opts.Path, os.O_APPEND|os.O_WRONLY, 0)
	if err != nil {
		return fmt.Errorf("opening snapshot log: %w", err)
	}
	werr := snapshot.WriteBlockFrom(f, index, simTime, r.points, r.scratch)
	if cerr := f.Close(); werr == nil {
		werr = cerr
	}
	if werr != nil {
		return fmt.Errorf("writing snapshot %d: %w", index, werr)
	}
	return nil
}

// Active reports whether a session is in progress.
func (r *Recorder) Active() bool { return r.active }

// Count is the number of snapshot slots used in the current or last session.
func (r *Recorder) Count() int { return r.counter }

func (r *Recorder) MaxSnapshots() int { return r.opts.MaxSnapshots }

func (r *Recorder) Path() string { return r.opts.Path }
