// Package wavefield evaluates the synthesized scalar wave field sampled by the lattice.
package wavefield

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

const (
	// DefaultDamping slows propagation of higher frequencies: the travel term is
	// d / (1 + f*DefaultDamping).
	DefaultDamping = 0.01
	// TrainedDecay is the per-index decay applied after the set is trained from text.
	TrainedDecay = 0.9
	// DefaultExternalWeight mixes an external sample into the field.
	DefaultExternalWeight = 0.5
)

// ErrSingularFrequency marks a frequency for which 1 + f*Damping is zero.
var ErrSingularFrequency = errors.New("frequency makes the propagation denominator zero")

// CheckFrequency reports whether f can be evaluated under damping. Intensity
// returns NaN for any frequency this rejects.
func CheckFrequency(f, damping float64) error {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return fmt.Errorf("frequency %v is not finite", f)
	}
	if 1+f*damping == 0 {
		return fmt.Errorf("%w: %v with damping %v", ErrSingularFrequency, f, damping)
	}
	return nil
}

// Params fixes the constants of one field configuration.
type Params struct {
	Origin         mgl64.Vec3
	Damping        float64
	Decay          float64
	ExternalWeight float64
}

// DefaultParams anchors the field at the world origin with no per-index decay.
func DefaultParams() Params {
	return Params{
		Damping:        DefaultDamping,
		Decay:          1,
		ExternalWeight: DefaultExternalWeight,
	}
}

// External supplies an additive per-point term, for example a spectrogram grid.
type External interface {
	Sample(p mgl64.Vec3) float64
}

// FrequencySet is the ordered list of generating frequencies.
type FrequencySet []float64

// NewFrequencySet returns n zero frequencies.
func NewFrequencySet(n int) FrequencySet {
	return make(FrequencySet, n)
}

func (f FrequencySet) Len() int { return len(f) }

// Clone returns an independent copy.
func (f FrequencySet) Clone() FrequencySet {
	out := make(FrequencySet, len(f))
	copy(out, f)
	return out
}

// Set replaces the frequency at index i.
func (f FrequencySet) Set(i int, v float64) error {
	if i < 0 || i >= len(f) {
		return fmt.Errorf("frequency index %d out of range [0, %d)", i, len(f))
	}
	f[i] = v
	return nil
}

// Intensity sums one propagating sinusoid per frequency at point p and time t.
// The result is never clamped.
func Intensity(p mgl64.Vec3, t float64, freqs FrequencySet, ext External, prm Params) float64 {
	distance := p.Sub(prm.Origin).Len()
	intensity := 0.0
	weight := 1.0
	for _, freq := range freqs {
		wave := math.Sin(2 * math.Pi * freq * (t - distance/(1+freq*prm.Damping)))
		intensity += wave * weight
		weight *= prm.Decay
	}
	if ext != nil {
		intensity += ext.Sample(p) * prm.ExternalWeight
	}
	return intensity
}

// FrequenciesFromText maps each rune of text to a frequency in [1, 10].
func FrequenciesFromText(text string) FrequencySet {
	freqs := make(FrequencySet, 0, len(text))
	for _, r := range text {
		freqs = append(freqs, float64(int(r)%10+1))
	}
	return freqs
}

// Train overwrites the set with the frequencies derived from text, in order, and
// returns how many were written. Entries past the end of text are kept.
func (f FrequencySet) Train(text string) int {
	return copy(f, FrequenciesFromText(text))
}
