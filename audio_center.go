package main

import (
	"sync"

	"github.com/hajimehoshi/ebiten/v2/audio"

	"wavelattice/internal/lattice"
)

// centerAudioStream holds the latest centre intensity and renders it as 16-bit
// stereo PCM with a slow DC blocker.
type centerAudioStream struct {
	mu     sync.Mutex
	sample float32
	dc     float32
}

func newCenterAudioStream() *centerAudioStream {
	return &centerAudioStream{}
}

// SetSample stores v clamped to [-1, 1].
func (s *centerAudioStream) SetSample(v float32) {
	if v > 1 {
		v = 1
	} else if v < -1 {
		v = -1
	}
	s.mu.Lock()
	const alpha = 0.001
	s.dc += alpha * (v - s.dc)
	s.sample = v - s.dc
	s.mu.Unlock()
}

// Read fills p with whole stereo frames of the held sample.
func (s *centerAudioStream) Read(p []byte) (int, error) {
	frameBytes := len(p) - len(p)%4
	if frameBytes == 0 {
		return 0, nil
	}
	s.mu.Lock()
	sample := s.sample
	s.mu.Unlock()

	v := int16(sample * pcm16MaxValue)
	for i := 0; i < frameBytes; i += 4 {
		p[i] = byte(v)
		p[i+1] = byte(v >> 8)
		p[i+2] = p[i]
		p[i+3] = p[i+1]
	}
	return frameBytes, nil
}

func (s *centerAudioStream) Close() error {
	return nil
}

// centerMonitor plays the intensity of the lattice point nearest the centre.
type centerMonitor struct {
	index  int
	stream *centerAudioStream
	player *audio.Player
}

func newCenterMonitor(lat *lattice.Lattice) (*centerMonitor, error) {
	mid := lat.Side() / 2
	stream := newCenterAudioStream()
	ctx := audio.NewContext(audioSampleRate)
	player, err := ctx.NewPlayer(stream)
	if err != nil {
		return nil, err
	}
	player.SetBufferSize(audioBufferDuration)
	player.Play()
	return &centerMonitor{index: lat.Index(mid, mid, mid), stream: stream, player: player}, nil
}

// Update feeds the centre intensity, normalized by the number of frequencies.
func (p *centerMonitor) Update(intensities []float64, freqCount int) {
	if freqCount < 1 {
		freqCount = 1
	}
	p.stream.SetSample(float32(intensities[p.index] / float64(freqCount)))
}

func (p *centerMonitor) Close() {
	if p.player != nil {
		_ = p.player.Close()
		p.player = nil
	}
}
