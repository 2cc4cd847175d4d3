// Package lattice builds the fixed cubic grid of sample points rendered each tick.
package lattice

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// ErrInvalidDimensions is returned when the side or spacing cannot describe a lattice.
var ErrInvalidDimensions = errors.New("invalid lattice dimensions")

// Lattice holds side^3 points centred on the origin. Points are read-only after
// Generate returns.
type Lattice struct {
	side    int
	spacing float64
	points  []mgl64.Vec3
}

// Generate precomputes the lattice points. The half-side offset uses integer
// division, so odd sides sit half a cell off centre.
func Generate(side int, spacing float64) (*Lattice, error) {
	if side <= 0 {
		return nil, fmt.Errorf("%w: side %d must be positive", ErrInvalidDimensions, side)
	}
	if spacing <= 0 || math.IsNaN(spacing) || math.IsInf(spacing, 0) {
		return nil, fmt.Errorf("%w: spacing %v must be a positive finite number", ErrInvalidDimensions, spacing)
	}
	half := side / 2
	points := make([]mgl64.Vec3, 0, side*side*side)
	for i := 0; i < side; i++ {
		for j := 0; j < side; j++ {
			for k := 0; k < side; k++ {
				points = append(points, mgl64.Vec3{
					float64(i-half) * spacing,
					float64(j-half) * spacing,
					float64(k-half) * spacing,
				})
			}
		}
	}
	return &Lattice{side: side, spacing: spacing, points: points}, nil
}

// Points returns the backing slice. Callers must not modify it.
func (l *Lattice) Points() []mgl64.Vec3 { return l.points }

// Len reports the number of points.
func (l *Lattice) Len() int { return len(l.points) }

func (l *Lattice) Side() int { return l.side }

// Spacing reports the distance between neighbouring points.
func (l *Lattice) Spacing() float64 { return l.spacing }

// Index converts grid indices into a position in Points.
func (l *Lattice) Index(i, j, k int) int {
	return (i*l.side+j)*l.side + k
}
