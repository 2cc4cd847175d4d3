//go:build !opencl

package main

import (
	"context"
	"errors"

	"github.com/go-gl/mathgl/mgl64"

	"wavelattice/internal/wavefield"
)

var errOpenCLDisabled = errors.New("OpenCL support is not enabled; rebuild with -tags opencl")

type openCLFieldEvaluator struct{}

func newOpenCLFieldEvaluator(int) (*openCLFieldEvaluator, error) {
	return nil, errOpenCLDisabled
}

func (e *openCLFieldEvaluator) Evaluate(context.Context, []mgl64.Vec3, float64, wavefield.FrequencySet, wavefield.External, wavefield.Params, []float64) error {
	return errOpenCLDisabled
}

func (e *openCLFieldEvaluator) Close() {}

func (e *openCLFieldEvaluator) DeviceName() string { return "" }
