package main

import (
	"fmt"
	"image/color"
	"log/slog"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/spf13/cobra"
	"golang.org/x/image/font/basicfont"

	"wavelattice/internal/camera"
	"wavelattice/internal/config"
	"wavelattice/internal/snapshot"
)

func newReplayCmd(flags *cliFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "replay [snapshot-log]",
		Short: "Play back a snapshot log one block at a time",
		Long: `replay reads a snapshot log written by the viewer and shows each block
for --cadence before moving on. The window closes after the last block.
Without an argument the configured snapshot_path is used.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadSettings(cmd, flags)
			if err != nil {
				return err
			}
			path := cfg.SnapshotPath
			if len(args) == 1 {
				path = args[0]
			}
			return runReplay(cfg, logger, path, flags.cadence)
		},
	}
	flags.bindReplay(cmd)
	return cmd
}

func runReplay(cfg config.Config, logger *slog.Logger, path string, cadence time.Duration) error {
	if cadence <= 0 {
		return fmt.Errorf("cadence %v must be positive", cadence)
	}
	records, err := snapshot.ReadFile(path)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return fmt.Errorf("no snapshots found in %s", path)
	}
	logger.Info("replaying snapshots", "path", path, "blocks", len(records), "cadence", cadence)

	g := newReplayGame(cfg, records, cadence)
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	ebiten.SetWindowTitle(replayWindowTitle)
	ebiten.SetTPS(cfg.TPS)
	if err := ebiten.RunGame(g); err != nil {
		return fmt.Errorf("run replay: %w", err)
	}
	return nil
}

// replayGame shows recorded blocks through the live viewer's projection.
type replayGame struct {
	records []snapshot.Record
	cadence time.Duration
	cam     *camera.Camera
	steps   camera.Steps
	width   int
	height  int

	start time.Time
	index int
	now   func() time.Time
}

func newReplayGame(cfg config.Config, records []snapshot.Record, cadence time.Duration) *replayGame {
	return &replayGame{
		records: records,
		cadence: cadence,
		cam:     camera.New(cfg.CameraPosition(), cfg.FOV, cfg.Width, cfg.Height),
		steps:   camera.Steps{Move: cfg.MoveStep, Turn: cfg.TurnStep},
		width:   cfg.Width,
		height:  cfg.Height,
		now:     time.Now,
	}
}

func (r *replayGame) Update() error {
	if r.start.IsZero() {
		r.start = r.now()
	}
	idx, done := replayIndex(r.now().Sub(r.start), r.cadence, len(r.records))
	if done {
		return ebiten.Termination
	}
	r.index = idx
	r.cam.Apply(manualKeys(), r.steps)
	return nil
}

func (r *replayGame) Draw(screen *ebiten.Image) {
	screen.Fill(color.Black)
	rec := r.records[r.index]
	rot := r.cam.Rotation()
	for _, s := range rec.Samples {
		p, ok := r.cam.ProjectRotated(rot.Mul3x1(s.Point))
		if !ok {
			continue
		}
		vector.DrawFilledCircle(screen, float32(p.X()), float32(p.Y()), dotRadius, replayColor(s.Intensity), false)
	}
	status := fmt.Sprintf("Snapshot %d (%d/%d) at time %g", rec.Index, r.index+1, len(r.records), rec.Time)
	text.Draw(screen, status, basicfont.Face7x13, hudMargin, hudMargin+hudLineHeight, color.White)
}

func (r *replayGame) Layout(_, _ int) (int, int) { return r.width, r.height }

// replayIndex selects the block on screen after elapsed time. done is true once
// every block has had its full cadence.
func replayIndex(elapsed, cadence time.Duration, n int) (int, bool) {
	if n == 0 {
		return 0, true
	}
	idx := int(elapsed / cadence)
	if idx >= n {
		return n - 1, true
	}
	return idx, false
}
