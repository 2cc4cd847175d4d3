package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"wavelattice/internal/camera"
	"wavelattice/internal/config"
	"wavelattice/internal/input"
	"wavelattice/internal/lattice"
	"wavelattice/internal/memory"
	"wavelattice/internal/recorder"
	"wavelattice/internal/spectrogram"
	"wavelattice/internal/wavefield"
)

// fieldEvaluator fills dst with the field intensity of every point.
type fieldEvaluator interface {
	Evaluate(ctx context.Context, points []mgl64.Vec3, t float64, freqs wavefield.FrequencySet, ext wavefield.External, prm wavefield.Params, dst []float64) error
}

// Game is the simulation context: it owns the lattice, the frequencies, the
// camera, the input session and the recorder. Only the ebiten tick touches it.
type Game struct {
	cfg    config.Config
	logger *slog.Logger

	lattice     *lattice.Lattice
	freqs       wavefield.FrequencySet
	baseline    wavefield.FrequencySet
	params      wavefield.Params
	external    wavefield.External
	evaluator   fieldEvaluator
	gpu         *openCLFieldEvaluator
	intensities []float64
	simTime     float64

	cam   *camera.Camera
	steps camera.Steps
	drag  *camera.Drag

	input    *input.Machine
	recorder *recorder.Recorder
	monitor  *centerMonitor

	hudMessage string
	hudExpiry  time.Time

	autoOrbit         bool
	autoOrbitDeadline time.Time
	autoOrbitTicks    int
	autoOrbitStop     func()

	lastEvalDuration time.Duration
}

// newGame builds a fully initialized Game from a validated configuration.
func newGame(cfg config.Config, logger *slog.Logger) (*Game, error) {
	if logger == nil {
		logger = slog.Default()
	}
	lat, err := lattice.Generate(cfg.Side, cfg.Spacing)
	if err != nil {
		return nil, fmt.Errorf("generate lattice: %w", err)
	}

	freqs := wavefield.FrequencySet(append([]float64(nil), cfg.Frequencies...))
	g := &Game{
		cfg:      cfg,
		logger:   logger,
		lattice:  lat,
		freqs:    freqs,
		baseline: freqs.Clone(),
		params: wavefield.Params{
			Origin:         cfg.AnchorPoint(),
			Damping:        cfg.Damping,
			Decay:          cfg.Decay,
			ExternalWeight: cfg.ExternalWeight,
		},
		intensities: make([]float64, lat.Len()),
		cam:         camera.New(cfg.CameraPosition(), cfg.FOV, cfg.Width, cfg.Height),
		steps:       camera.Steps{Move: cfg.MoveStep, Turn: cfg.TurnStep},
		drag:        camera.NewDrag(cfg.DragSensitivity),
	}

	if cfg.ExternalWAV != "" {
		grid, err := spectrogram.LoadGrid(cfg.ExternalWAV, cfg.Side)
		if err != nil {
			return nil, fmt.Errorf("load external input: %w", err)
		}
		g.external = grid
		logger.Info("external input loaded", "path", cfg.ExternalWAV, "weight", cfg.ExternalWeight)
	}

	g.evaluator = wavefield.NewEvaluator(cfg.Workers)
	if cfg.OpenCL {
		if gpu, err := newOpenCLFieldEvaluator(lat.Len()); err != nil {
			logger.Warn("OpenCL evaluator unavailable, using CPU", "err", err)
		} else {
			logger.Info("OpenCL evaluator enabled", "device", gpu.DeviceName())
			g.gpu = gpu
			g.evaluator = gpu
		}
	}

	if cfg.Audio {
		if mon, err := newCenterMonitor(lat); err != nil {
			logger.Warn("center audio unavailable", "err", err)
		} else {
			g.monitor = mon
		}
	}

	responder := memory.NewAssociative(cfg.Memory...)
	logger.Debug("responder seeded", "pairs", responder.Len())
	g.input = input.NewMachine(g.freqs, responder)
	g.input.SetDamping(cfg.Damping)
	g.recorder = recorder.New(recorder.Options{
		Path:         cfg.SnapshotPath,
		Interval:     cfg.SnapshotInterval,
		MaxSnapshots: cfg.SnapshotMax,
		Logger:       logger,
	}, lat.Points(), g.sampleSnapshot)

	if err := g.evaluate(); err != nil {
		g.Close()
		return nil, err
	}
	return g, nil
}

// Close releases GPU and audio resources.
func (g *Game) Close() {
	g.closeGPU()
	if g.monitor != nil {
		g.monitor.Close()
		g.monitor = nil
	}
}

func (g *Game) closeGPU() {
	if g.gpu != nil {
		g.gpu.Close()
		g.gpu = nil
	}
}

// Update advances one tick: input, camera, recorder, then field evaluation.
func (g *Game) Update() error {
	if ebiten.IsWindowBeingClosed() {
		g.logger.Info("shutting down", "sim_time", g.simTime, "snapshots", g.recorder.Count())
		return ebiten.Termination
	}

	wasCapturing := g.input.Capturing()
	g.handleInput()
	enabled := controlsEnabled(wasCapturing, g.input.Capturing())
	g.handleDrag(enabled && !g.autoOrbit)
	if enabled {
		g.handleMovement()
		if inpututil.IsKeyJustPressed(ebiten.KeyP) {
			g.startRecording()
		}
		g.handleDebugControls()
	}

	g.simTime += g.cfg.TimeStep
	if g.cfg.Origin == config.OriginCamera {
		g.params.Origin = g.cam.Position
	}
	g.recorder.Tick(g.simTime)
	return g.evaluate()
}

// controlsEnabled reports whether control keys may act this tick. A tick that
// starts or ends in a capturing mode belongs to the input session.
func controlsEnabled(wasCapturing, capturing bool) bool {
	return !wasCapturing && !capturing
}

// evaluate refreshes the intensity buffer for the current tick.
func (g *Game) evaluate() error {
	start := time.Now()
	if err := g.evaluator.Evaluate(context.Background(), g.lattice.Points(), g.simTime, g.freqs, g.external, g.params, g.intensities); err != nil {
		if g.gpu == nil {
			return fmt.Errorf("evaluate field: %w", err)
		}
		g.logger.Warn("OpenCL evaluation failed, falling back to CPU", "err", err)
		g.closeGPU()
		g.evaluator = wavefield.NewEvaluator(g.cfg.Workers)
		return g.evaluate()
	}
	g.lastEvalDuration = time.Since(start)
	if g.monitor != nil {
		g.monitor.Update(g.intensities, len(g.freqs))
	}
	return nil
}

// sampleSnapshot is the recorder's view of the field. The baseline option
// records the configured frequencies regardless of live edits.
func (g *Game) sampleSnapshot(t float64, dst []float64) error {
	freqs := g.freqs
	if g.cfg.SnapshotFrequencies == config.FrequenciesBaseline {
		freqs = g.baseline
	}
	return g.evaluator.Evaluate(context.Background(), g.lattice.Points(), t, freqs, g.external, g.params, dst)
}

func (g *Game) startRecording() {
	if err := g.recorder.Trigger(); err != nil {
		g.showMessage(fmt.Sprintf("Recording failed: %v", err))
		return
	}
	g.logger.Info("recording started",
		"path", g.recorder.Path(),
		"interval", g.cfg.SnapshotInterval,
		"snapshots", g.recorder.MaxSnapshots())
}

// applyResult reports the outcome of an input event to the operator.
func (g *Game) applyResult(res input.Result) {
	switch {
	case res.Err != nil:
		var perr *input.ParseError
		if errors.As(res.Err, &perr) {
			g.logger.Warn("frequency input discarded", "buffer", perr.Buffer, "err", perr.Err)
			g.showMessage(fmt.Sprintf("Invalid frequency %q", perr.Buffer))
			return
		}
		g.logger.Warn("input rejected", "err", res.Err)
		g.showMessage(res.Err.Error())
	case res.Committed:
		g.logger.Info("frequency updated", "index", res.Target, "value", res.Value)
		g.showMessage(fmt.Sprintf("Frequency %d set to %g", res.Target, res.Value))
	case res.Replied:
		g.logger.Debug("responder reply", "text", res.Text, "response", res.Response, "confidence", res.Confidence)
		if shouldTrain(res) {
			n := g.freqs.Train(res.Text)
			g.params.Decay = wavefield.TrainedDecay
			g.logger.Info("frequencies trained from text", "count", n, "frequencies", []float64(g.freqs), "decay", g.params.Decay)
			g.showMessage(fmt.Sprintf("Trained %d frequencies from %q", n, res.Text))
			return
		}
		g.showMessage(fmt.Sprintf("%s (%.2f)", res.Response, res.Confidence))
	}
}

// shouldTrain reports whether a text reply was too weak to answer, in which case
// the text itself seeds the frequency set.
func shouldTrain(res input.Result) bool {
	return res.Replied && strings.TrimSpace(res.Text) != "" && (res.Response == "" || res.Confidence < trainConfidence)
}

func (g *Game) showMessage(msg string) {
	g.hudMessage = msg
	g.hudExpiry = time.Now().Add(hudMessageTTL)
}

// currentMessage returns the HUD message until it expires.
func (g *Game) currentMessage(now time.Time) string {
	if g.hudMessage == "" || now.After(g.hudExpiry) {
		return ""
	}
	return g.hudMessage
}
