package main

import (
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font/basicfont"

	"wavelattice/internal/input"
	"wavelattice/internal/wavefield"
)

// Draw renders the lattice, the input prompt and optional overlays.
func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(color.Black)

	rot := g.cam.Rotation()
	for i, p := range g.lattice.Points() {
		s, ok := g.cam.ProjectRotated(rot.Mul3x1(p))
		if !ok {
			continue
		}
		vector.DrawFilledCircle(screen, float32(s.X()), float32(s.Y()), dotRadius, brightnessColor(g.intensities[i]), false)
	}

	g.drawHUD(screen)

	if g.cfg.Debug {
		debugMsg := fmt.Sprintf("FPS: %.1f\nTPS: %.1f\nEval: %.2f ms (%s)\nSim time: %.2f (step %.3f, +/-)\nYaw %.2f Pitch %.2f",
			ebiten.ActualFPS(), ebiten.ActualTPS(),
			g.lastEvalDuration.Seconds()*1000, g.evaluatorName(),
			g.simTime, g.cfg.TimeStep, g.cam.Yaw, g.cam.Pitch)
		ebitenutil.DebugPrintAt(screen, debugMsg, g.cfg.Width-220, 0)
	}
}

// Layout reports the logical screen size used by Ebiten.
func (g *Game) Layout(_, _ int) (int, int) { return g.cfg.Width, g.cfg.Height }

// drawHUD writes the frequency list, the active prompt, recorder status and the
// transient message, one line each.
func (g *Game) drawHUD(screen *ebiten.Image) {
	lines := []string{formatFrequencies(g.freqs)}
	if prompt := promptText(g.input.Mode(), len(g.freqs)); prompt != "" {
		lines = append(lines, prompt)
	}
	if g.recorder.Active() {
		lines = append(lines, fmt.Sprintf("Recording %d/%d -> %s", g.recorder.Count(), g.recorder.MaxSnapshots(), g.recorder.Path()))
	}
	if msg := g.currentMessage(time.Now()); msg != "" {
		lines = append(lines, msg)
	}
	for i, line := range lines {
		text.Draw(screen, line, basicfont.Face7x13, hudMargin, hudMargin+hudLineHeight*(i+1), color.White)
	}
}

func (g *Game) evaluatorName() string {
	if g.gpu != nil {
		return "opencl"
	}
	if cpu, ok := g.evaluator.(*wavefield.Evaluator); ok {
		return fmt.Sprintf("cpu/%d", cpu.Workers())
	}
	return "cpu"
}

// promptText returns the HUD prompt for the current input mode.
func promptText(mode input.Mode, count int) string {
	switch m := mode.(type) {
	case input.Select:
		idx := make([]string, count)
		for i := range idx {
			idx[i] = strconv.Itoa(i)
		}
		return fmt.Sprintf("Select Frequency (%s):", strings.Join(idx, ", "))
	case input.Edit:
		return fmt.Sprintf("Enter Frequency for %d: %s", m.Target, m.Buffer)
	case input.TextEdit:
		return "Say: " + m.Buffer
	}
	return ""
}

func formatFrequencies(freqs []float64) string {
	parts := make([]string, len(freqs))
	for i, f := range freqs {
		parts[i] = fmt.Sprintf("%d: %g", i, f)
	}
	return "Frequencies  " + strings.Join(parts, "  ")
}

// brightnessColor maps an intensity to (b, b, 255) with b = 127 + 128*i clamped
// to [0, 255].
func brightnessColor(intensity float64) color.RGBA {
	b := uint8(clampByte(127 + 128*intensity))
	return color.RGBA{b, b, 255, 255}
}

// replayColor maps an intensity to red for strong and blue for weak samples.
func replayColor(intensity float64) color.RGBA {
	a := math.Min(math.Abs(intensity), 1)
	return color.RGBA{uint8(clampByte(255 * a)), 0, uint8(clampByte(255 * (1 - a))), 255}
}

func clampByte(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(255, v))
}
