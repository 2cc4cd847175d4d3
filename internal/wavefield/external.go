package wavefield

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Grid is a 2D external-input sample indexed by lattice coordinates modulo its size.
// Grid[x][y] is used for a point at (x, y, *).
type Grid [][]float64

// NewGrid allocates a zeroed side x side grid.
func NewGrid(side int) Grid {
	g := make(Grid, side)
	for i := range g {
		g[i] = make([]float64, side)
	}
	return g
}

// Sample reads the cell under p. Negative coordinates wrap like a floor modulo.
func (g Grid) Sample(p mgl64.Vec3) float64 {
	if len(g) == 0 {
		return 0
	}
	row := g[floorMod(p.X(), len(g))]
	if len(row) == 0 {
		return 0
	}
	return row[floorMod(p.Y(), len(row))]
}

func floorMod(v float64, n int) int {
	i := int(math.Floor(v)) % n
	if i < 0 {
		i += n
	}
	return i
}
