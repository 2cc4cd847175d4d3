// Package spectrogram turns an audio clip into the square external-input grid mixed
// into the wave field.
package spectrogram

import (
	"errors"
	"fmt"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/dsp/window"

	"wavelattice/internal/wavefield"
)

// ErrNoSamples is returned when there is nothing to analyse.
var ErrNoSamples = errors.New("no audio samples")

// Encode computes a side x side magnitude spectrogram: side evenly spaced frames
// of 2*side samples, each reduced to its first side frequency bins. Values are
// normalized by the global maximum into [0, 1]. grid[frame][bin].
func Encode(samples []float32, side int) (wavefield.Grid, error) {
	if side <= 0 {
		return nil, fmt.Errorf("spectrogram side %d must be positive", side)
	}
	if len(samples) == 0 {
		return nil, ErrNoSamples
	}
	frameLen := 2 * side
	fft := fourier.NewFFT(frameLen)
	hop := 0
	if side > 1 && len(samples) > frameLen {
		hop = (len(samples) - frameLen) / (side - 1)
	}

	grid := wavefield.NewGrid(side)
	frame := make([]float64, frameLen)
	var coeffs []complex128
	peak := 0.0
	for f := 0; f < side; f++ {
		start := f * hop
		for i := range frame {
			frame[i] = 0
			if idx := start + i; idx < len(samples) {
				frame[i] = float64(samples[idx])
			}
		}
		window.Hann(frame)
		coeffs = fft.Coefficients(coeffs, frame)
		for bin := 0; bin < side; bin++ {
			mag := cmplx.Abs(coeffs[bin])
			grid[f][bin] = mag
			if mag > peak {
				peak = mag
			}
		}
	}
	if peak > 0 {
		for _, row := range grid {
			for i := range row {
				row[i] /= peak
			}
		}
	}
	return grid, nil
}

// LoadGrid decodes the WAV at path and encodes it for a lattice of the given side.
func LoadGrid(path string, side int) (wavefield.Grid, error) {
	samples, err := LoadWAV(path, DefaultSampleRate)
	if err != nil {
		return nil, err
	}
	grid, err := Encode(samples, side)
	if err != nil {
		return nil, fmt.Errorf("encoding %q: %w", path, err)
	}
	return grid, nil
}
