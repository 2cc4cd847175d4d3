package wavefield

import (
	"context"
	"fmt"
	"runtime"

	"github.com/go-gl/mathgl/mgl64"
	"golang.org/x/sync/errgroup"
)

// minChunk keeps small lattices on the calling goroutine.
const minChunk = 512

// span is a half-open range of point indices assigned to one worker.
type span struct{ start, end int }

// Evaluator computes the field over a whole lattice, splitting the points across
// worker goroutines. Intensity is pure, so workers share nothing but dst.
type Evaluator struct {
	workers int
}

// NewEvaluator returns an evaluator using workers goroutines; values below 1
// select runtime.NumCPU().
func NewEvaluator(workers int) *Evaluator {
	if workers < 1 {
		workers = runtime.NumCPU()
	}
	return &Evaluator{workers: workers}
}

// Workers reports how many goroutines split each evaluation.
func (e *Evaluator) Workers() int { return e.workers }

// Evaluate writes Intensity for every point into dst, which must be len(points).
func (e *Evaluator) Evaluate(ctx context.Context, points []mgl64.Vec3, t float64, freqs FrequencySet, ext External, prm Params, dst []float64) error {
	if len(dst) != len(points) {
		return fmt.Errorf("intensity buffer holds %d values, lattice has %d points", len(dst), len(points))
	}
	spans := assignSpans(len(points), e.workers)
	if len(spans) == 1 {
		evalSpan(points, t, freqs, ext, prm, dst, spans[0])
		return ctx.Err()
	}
	g, gctx := errgroup.WithContext(ctx)
	for _, sp := range spans {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			evalSpan(points, t, freqs, ext, prm, dst, sp)
			return nil
		})
	}
	return g.Wait()
}

func evalSpan(points []mgl64.Vec3, t float64, freqs FrequencySet, ext External, prm Params, dst []float64, sp span) {
	for i := sp.start; i < sp.end; i++ {
		dst[i] = Intensity(points[i], t, freqs, ext, prm)
	}
}

// assignSpans splits n points into at most workers contiguous ranges, using no
// more than one range per minChunk points.
func assignSpans(n, workers int) []span {
	if workers < 1 {
		workers = 1
	}
	if limit := (n + minChunk - 1) / minChunk; workers > limit {
		workers = limit
	}
	if workers < 1 {
		workers = 1
	}
	per := (n + workers - 1) / workers
	spans := make([]span, 0, workers)
	for start := 0; start < n; start += per {
		end := start + per
		if end > n {
			end = n
		}
		spans = append(spans, span{start: start, end: end})
	}
	if len(spans) == 0 {
		spans = append(spans, span{})
	}
	return spans
}
