package main

import "time"

// Rendering and runtime constants that are not exposed through configuration.
// Everything tunable lives in internal/config.
const (
	windowTitle       = "Wave Lattice"
	replayWindowTitle = "Wave Lattice Replay"
	dotRadius         = 3
	hudMessageTTL     = 3 * time.Second
	hudLineHeight     = 16
	hudMargin         = 10
	pgoRecordDuration = 15 * time.Second
	pgoProfilePath    = "default.pgo"
	orbitYawPerTick   = 0.01
	orbitPitchPeriod  = 240
	orbitPitchSwing   = 0.3
	timeStepNudge     = 0.005
	defaultCadence    = time.Second
	trainConfidence   = 0.5

	audioSampleRate     = 48000
	audioBufferDuration = 80 * time.Millisecond
	pcm16MaxValue       = 32767
)
