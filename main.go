package main

import (
	"fmt"
	"log/slog"
	"os"
	"runtime"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/spf13/cobra"

	"wavelattice/internal/config"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newRootCmd wires the viewer and the replay subcommand.
func newRootCmd() *cobra.Command {
	var flags cliFlags
	root := &cobra.Command{
		Use:   "wavelattice",
		Short: "Interactive 3D wave lattice viewer",
		Long: `wavelattice renders a cube of points whose brightness follows a
synthesized wave field. Press backtick to pick a frequency and type a new
value, Tab to talk to the responder, and p to record snapshots.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := loadSettings(cmd, &flags)
			if err != nil {
				return err
			}
			return runViewer(cfg, logger, &flags)
		},
	}
	flags.bindPersistent(root)
	flags.bindSimulator(root)
	root.AddCommand(newReplayCmd(&flags))
	return root
}

// loadSettings layers defaults, the config file, the environment and flags,
// then validates the result.
func loadSettings(cmd *cobra.Command, flags *cliFlags) (config.Config, *slog.Logger, error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return config.Config{}, nil, err
	}
	flags.apply(cmd, &cfg)
	if err := cfg.Validate(); err != nil {
		return config.Config{}, nil, err
	}
	level, _ := cfg.SlogLevel()
	logger := setupLogger(level)
	slog.SetDefault(logger)
	return cfg, logger, nil
}

func setupLogger(level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func runViewer(cfg config.Config, logger *slog.Logger, flags *cliFlags) error {
	runtime.GOMAXPROCS(runtime.NumCPU())

	if flags.cpuProfile != "" {
		stop, err := startDefaultPGORecording(flags.cpuProfile)
		if err != nil {
			return fmt.Errorf("start cpu profile: %w", err)
		}
		defer stop()
	}

	g, err := newGame(cfg, logger)
	if err != nil {
		return err
	}
	defer g.Close()

	if flags.recordDefaultPGO {
		if flags.cpuProfile != "" {
			logger.Warn("--record-default-pgo ignored while --cpuprofile is active")
		} else if stop, err := startDefaultPGORecording(pgoProfilePath); err != nil {
			logger.Error("default.pgo recording failed", "err", err)
		} else {
			logger.Info("recording default.pgo", "duration", pgoRecordDuration)
			g.enableAutoOrbit(pgoRecordDuration, stop)
			defer stop()
		}
	}

	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	ebiten.SetWindowTitle(windowTitle)
	ebiten.SetTPS(cfg.TPS)
	ebiten.SetWindowClosingHandled(true)
	logger.Info("starting viewer",
		"points", g.lattice.Len(),
		"spacing", g.lattice.Spacing(),
		"evaluator", g.evaluatorName(),
		"frequencies", []float64(g.freqs),
		"origin", cfg.Origin,
		"snapshot_path", cfg.SnapshotPath)
	if err := ebiten.RunGame(g); err != nil {
		return fmt.Errorf("run viewer: %w", err)
	}
	return nil
}
