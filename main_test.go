package main

import (
	"encoding/binary"
	"image/color"
	"log/slog"
	"testing"
	"time"

	"github.com/spf13/cobra"

	"wavelattice/internal/config"
	"wavelattice/internal/input"
	"wavelattice/internal/wavefield"
)

func TestBrightnessColor(t *testing.T) {
	cases := []struct {
		intensity float64
		want      uint8
	}{
		{0, 127},
		{1, 255},
		{-1, 0},
		{3, 255},
		{-3, 0},
		{0.5, 191},
	}
	for _, tc := range cases {
		got := brightnessColor(tc.intensity)
		if got != (color.RGBA{tc.want, tc.want, 255, 255}) {
			t.Errorf("intensity %v: got %v, want b=%d", tc.intensity, got, tc.want)
		}
	}
}

func TestReplayColor(t *testing.T) {
	if got := replayColor(0); got != (color.RGBA{0, 0, 255, 255}) {
		t.Fatalf("zero intensity should be blue, got %v", got)
	}
	if got := replayColor(-1); got != (color.RGBA{255, 0, 0, 255}) {
		t.Fatalf("unit intensity should be red, got %v", got)
	}
	if got := replayColor(2.5); got != (color.RGBA{255, 0, 0, 255}) {
		t.Fatalf("intensity above one should saturate, got %v", got)
	}
}

func TestPromptText(t *testing.T) {
	cases := []struct {
		mode input.Mode
		want string
	}{
		{input.Idle{}, ""},
		{input.Select{}, "Select Frequency (0, 1, 2):"},
		{input.Edit{Target: 1, Buffer: "4.5"}, "Enter Frequency for 1: 4.5"},
		{input.TextEdit{Buffer: "hi"}, "Say: hi"},
	}
	for _, tc := range cases {
		if got := promptText(tc.mode, 3); got != tc.want {
			t.Errorf("%v: got %q, want %q", tc.mode, got, tc.want)
		}
	}
}

func TestAppendCharEvents(t *testing.T) {
	got := appendCharEvents(nil, []rune("`4.x\t\n"))
	want := []input.Event{
		{Kind: input.Digit, Rune: '4'},
		{Kind: input.Char, Rune: '.'},
		{Kind: input.Char, Rune: 'x'},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d events, want %d: %+v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("event %d: got %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestReplayIndex(t *testing.T) {
	cases := []struct {
		elapsed time.Duration
		idx     int
		done    bool
	}{
		{0, 0, false},
		{999 * time.Millisecond, 0, false},
		{time.Second, 1, false},
		{2500 * time.Millisecond, 2, false},
		{3 * time.Second, 2, true},
	}
	for _, tc := range cases {
		idx, done := replayIndex(tc.elapsed, time.Second, 3)
		if idx != tc.idx || done != tc.done {
			t.Errorf("elapsed %v: got (%d, %v), want (%d, %v)", tc.elapsed, idx, done, tc.idx, tc.done)
		}
	}
	if _, done := replayIndex(0, time.Second, 0); !done {
		t.Fatal("empty replay should be done immediately")
	}
}

func TestCenterAudioStream(t *testing.T) {
	s := newCenterAudioStream()
	s.SetSample(5)
	buf := make([]byte, 10)
	n, err := s.Read(buf)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if n != 8 {
		t.Fatalf("expected two whole frames, got %d bytes", n)
	}
	left := int16(binary.LittleEndian.Uint16(buf[0:2]))
	right := int16(binary.LittleEndian.Uint16(buf[2:4]))
	if left != right || left <= 0 {
		t.Fatalf("expected matching positive channels, got %d %d", left, right)
	}
	if n, _ := s.Read(buf[:3]); n != 0 {
		t.Fatalf("expected no partial frame, got %d bytes", n)
	}
}

func TestFlagsOverrideOnlyWhenSet(t *testing.T) {
	var flags cliFlags
	root := &cobra.Command{Use: "wavelattice"}
	flags.bindPersistent(root)
	flags.bindSimulator(root)
	if err := root.ParseFlags([]string{"--side", "6", "--frequencies", "1,2.5", "--log-level", "debug", "--audio"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	cfg := config.Default()
	flags.apply(root, &cfg)
	if cfg.Side != 6 || cfg.LogLevel != "debug" || !cfg.Audio {
		t.Fatalf("flags not applied: %+v", cfg)
	}
	if len(cfg.Frequencies) != 2 || cfg.Frequencies[1] != 2.5 {
		t.Fatalf("unexpected frequencies %v", cfg.Frequencies)
	}
	if cfg.Spacing != 30 || cfg.FOV != 600 || cfg.Origin != config.OriginAnchor {
		t.Fatalf("unset flags must keep config values: %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestControlsDisabledOnPromptExitTick(t *testing.T) {
	m := input.NewMachine(wavefield.NewFrequencySet(3), nil)
	m.Handle(input.Event{Kind: input.ModeKey})
	m.Handle(input.Event{Kind: input.Digit, Rune: '0'})
	m.Handle(input.Event{Kind: input.Digit, Rune: '1'})

	// 'p' and Enter arrive in the same tick while editing.
	wasCapturing := m.Capturing()
	m.Handle(input.Event{Kind: input.Char, Rune: 'p'})
	m.Handle(input.Event{Kind: input.Confirm})
	if m.Capturing() {
		t.Fatal("expected confirm to return to idle")
	}
	if controlsEnabled(wasCapturing, m.Capturing()) {
		t.Fatal("the tick that closes the prompt must not reach camera or recorder keys")
	}
	if !controlsEnabled(m.Capturing(), m.Capturing()) {
		t.Fatal("expected controls on the following idle tick")
	}

	// Opening the prompt also claims the tick.
	wasCapturing = m.Capturing()
	m.Handle(input.Event{Kind: input.TextModeKey})
	if controlsEnabled(wasCapturing, m.Capturing()) {
		t.Fatal("the tick that opens the prompt must not reach camera keys")
	}
}

func TestWeakReplyTrainsFrequencies(t *testing.T) {
	g := &Game{
		logger: slog.New(slog.DiscardHandler),
		freqs:  wavefield.FrequencySet{1, 2, 3},
		params: wavefield.DefaultParams(),
	}
	g.applyResult(input.Result{Replied: true, Text: "hello world"})
	if g.freqs[0] != 5 || g.freqs[1] != 2 || g.freqs[2] != 9 {
		t.Fatalf("expected frequencies from text, got %v", g.freqs)
	}
	if g.params.Decay != wavefield.TrainedDecay {
		t.Fatalf("expected trained decay, got %v", g.params.Decay)
	}

	g.freqs = wavefield.FrequencySet{1, 2, 3}
	g.params.Decay = 1
	g.applyResult(input.Result{Replied: true, Text: "hello", Response: "hi", Confidence: 1})
	if g.freqs[0] != 1 || g.params.Decay != 1 {
		t.Fatalf("confident reply must not retrain: %v decay=%v", g.freqs, g.params.Decay)
	}
	if got := g.currentMessage(time.Now()); got != "hi (1.00)" {
		t.Fatalf("unexpected HUD message %q", got)
	}
}

func TestShouldTrain(t *testing.T) {
	cases := []struct {
		res  input.Result
		want bool
	}{
		{input.Result{Replied: true, Text: "abc"}, true},
		{input.Result{Replied: true, Text: "abc", Response: "x", Confidence: 0.2}, true},
		{input.Result{Replied: true, Text: "abc", Response: "x", Confidence: 0.5}, false},
		{input.Result{Replied: true, Text: "  "}, false},
		{input.Result{Committed: true, Text: "abc"}, false},
	}
	for _, tc := range cases {
		if got := shouldTrain(tc.res); got != tc.want {
			t.Errorf("%+v: got %v, want %v", tc.res, got, tc.want)
		}
	}
}
