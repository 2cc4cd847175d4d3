package main

import (
	"math"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"wavelattice/internal/camera"
)

// enableAutoOrbit schedules a scripted camera orbit for a limited duration.
// stop runs once when the orbit ends.
func (g *Game) enableAutoOrbit(duration time.Duration, stop func()) {
	g.autoOrbit = true
	g.autoOrbitDeadline = time.Now().Add(duration)
	g.autoOrbitTicks = 0
	g.autoOrbitStop = stop
}

// handleMovement applies either the scripted orbit or the operator's keys to the
// camera.
func (g *Game) handleMovement() {
	if g.autoOrbit {
		if time.Now().After(g.autoOrbitDeadline) {
			g.finishAutoOrbit()
		} else {
			g.cam.Turn(g.autoOrbitStep())
			return
		}
	}
	g.cam.Apply(manualKeys(), g.steps)
}

// manualKeys samples WASD and the arrow keys.
func manualKeys() camera.Keys {
	return camera.Keys{
		Forward:   ebiten.IsKeyPressed(ebiten.KeyW),
		Back:      ebiten.IsKeyPressed(ebiten.KeyS),
		Left:      ebiten.IsKeyPressed(ebiten.KeyA),
		Right:     ebiten.IsKeyPressed(ebiten.KeyD),
		TurnLeft:  ebiten.IsKeyPressed(ebiten.KeyArrowLeft),
		TurnRight: ebiten.IsKeyPressed(ebiten.KeyArrowRight),
		TurnUp:    ebiten.IsKeyPressed(ebiten.KeyArrowUp),
		TurnDown:  ebiten.IsKeyPressed(ebiten.KeyArrowDown),
	}
}

// handleDrag tracks the left mouse button every tick and rotates the camera
// only when rotate is set.
func (g *Game) handleDrag(rotate bool) {
	x, y := ebiten.CursorPosition()
	held := ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft)
	if dyaw, dpitch := g.drag.Sync(held, x, y, rotate); dyaw != 0 || dpitch != 0 {
		g.cam.Turn(dyaw, dpitch)
	}
}

// autoOrbitStep returns the yaw and pitch deltas for the next scripted tick: a
// steady yaw with a slow pitch sway.
func (g *Game) autoOrbitStep() (float64, float64) {
	g.autoOrbitTicks++
	phase := 2 * math.Pi * float64(g.autoOrbitTicks) / orbitPitchPeriod
	dpitch := orbitPitchSwing * 2 * math.Pi / orbitPitchPeriod * math.Cos(phase)
	return orbitYawPerTick, dpitch
}

func (g *Game) finishAutoOrbit() {
	g.autoOrbit = false
	if g.autoOrbitStop != nil {
		g.autoOrbitStop()
		g.autoOrbitStop = nil
	}
	g.logger.Info("default.pgo recording finished")
}

// handleDebugControls processes debug overlay hotkeys.
func (g *Game) handleDebugControls() {
	if !g.cfg.Debug {
		return
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyMinus) || inpututil.IsKeyJustPressed(ebiten.KeyKPSubtract) {
		g.adjustTimeStep(-timeStepNudge)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEqual) || inpututil.IsKeyJustPressed(ebiten.KeyKPAdd) {
		g.adjustTimeStep(timeStepNudge)
	}
}

// adjustTimeStep nudges the simulated seconds per tick, never below zero.
func (g *Game) adjustTimeStep(delta float64) {
	g.cfg.TimeStep = math.Max(0, g.cfg.TimeStep+delta)
}
