//go:build opencl

package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unsafe"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/jgillich/go-opencl/cl"

	"wavelattice/internal/wavefield"
)

// maxGPUFrequencies bounds the frequency buffer uploaded per evaluation.
const maxGPUFrequencies = 10

// openCLFieldEvaluator evaluates the wave sum in float32 on an OpenCL device.
// The external term is added on the host.
type openCLFieldEvaluator struct {
	context   *cl.Context
	queue     *cl.CommandQueue
	program   *cl.Program
	kernel    *cl.Kernel
	pointsBuf *cl.MemObject
	freqBuf   *cl.MemObject
	outBuf    *cl.MemObject

	count        int
	pointsSynced *mgl64.Vec3
	hostPoints   []float32
	hostFreqs    []float32
	hostOut      []float32
	deviceName   string
}

const fieldKernelSource = `__kernel void wave_intensity(
    const int count,
    const int nfreq,
    const float t,
    const float ox,
    const float oy,
    const float oz,
    const float damping,
    const float decay,
    __global const float* points,
    __global const float* freqs,
    __global float* out)
{
    int idx = get_global_id(0);
    if (idx >= count) {
        return;
    }
    float dx = points[3 * idx] - ox;
    float dy = points[3 * idx + 1] - oy;
    float dz = points[3 * idx + 2] - oz;
    float dist = sqrt(dx * dx + dy * dy + dz * dz);
    float sum = 0.0f;
    float weight = 1.0f;
    for (int i = 0; i < nfreq; i++) {
        float f = freqs[i];
        sum += weight * sin(2.0f * M_PI_F * f * (t - dist / (1.0f + f * damping)));
        weight *= decay;
    }
    out[idx] = sum;
}`

func newOpenCLFieldEvaluator(count int) (*openCLFieldEvaluator, error) {
	if count <= 0 {
		return nil, fmt.Errorf("OpenCL evaluator needs points, got %d", count)
	}
	platforms, err := cl.GetPlatforms()
	if err != nil {
		msg := "querying OpenCL platforms"
		if strings.Contains(err.Error(), "-1001") {
			msg += ": no ICD loader reported any platforms; install OpenCL drivers and verify with `clinfo`"
		}
		return nil, fmt.Errorf("%s: %w", msg, err)
	}
	if len(platforms) == 0 {
		return nil, errors.New("no OpenCL platforms available; ensure a vendor driver is installed and detected by `clinfo`")
	}
	device := pickDevice(platforms, cl.DeviceTypeGPU)
	if device == nil {
		device = pickDevice(platforms, cl.DeviceTypeCPU)
	}
	if device == nil {
		return nil, errors.New("no suitable OpenCL devices found")
	}

	e := &openCLFieldEvaluator{
		count:      count,
		hostPoints: make([]float32, 3*count),
		hostFreqs:  make([]float32, maxGPUFrequencies),
		hostOut:    make([]float32, count),
		deviceName: device.Name(),
	}
	if e.context, err = cl.CreateContext([]*cl.Device{device}); err != nil {
		return nil, fmt.Errorf("creating OpenCL context: %w", err)
	}
	if e.queue, err = e.context.CreateCommandQueue(device, 0); err != nil {
		e.Close()
		return nil, fmt.Errorf("creating OpenCL command queue: %w", err)
	}
	if e.program, err = e.context.CreateProgramWithSource([]string{fieldKernelSource}); err != nil {
		e.Close()
		return nil, fmt.Errorf("creating OpenCL program: %w", err)
	}
	if err := e.program.BuildProgram([]*cl.Device{device}, ""); err != nil {
		e.Close()
		if buildErr, ok := err.(cl.BuildError); ok {
			return nil, fmt.Errorf("building OpenCL program: %s", string(buildErr))
		}
		return nil, fmt.Errorf("building OpenCL program: %w", err)
	}
	if e.kernel, err = e.program.CreateKernel("wave_intensity"); err != nil {
		e.Close()
		return nil, fmt.Errorf("creating OpenCL kernel: %w", err)
	}
	floatSize := int(unsafe.Sizeof(float32(0)))
	if e.pointsBuf, err = e.context.CreateEmptyBuffer(cl.MemReadOnly, 3*count*floatSize); err != nil {
		e.Close()
		return nil, fmt.Errorf("allocating point buffer: %w", err)
	}
	if e.freqBuf, err = e.context.CreateEmptyBuffer(cl.MemReadOnly, maxGPUFrequencies*floatSize); err != nil {
		e.Close()
		return nil, fmt.Errorf("allocating frequency buffer: %w", err)
	}
	if e.outBuf, err = e.context.CreateEmptyBuffer(cl.MemWriteOnly, count*floatSize); err != nil {
		e.Close()
		return nil, fmt.Errorf("allocating output buffer: %w", err)
	}
	return e, nil
}

func pickDevice(platforms []*cl.Platform, kind cl.DeviceType) *cl.Device {
	for _, p := range platforms {
		devices, err := p.GetDevices(kind)
		if err != nil && err != cl.ErrDeviceNotFound {
			continue
		}
		if len(devices) > 0 {
			return devices[0]
		}
	}
	return nil
}

// Evaluate runs one kernel launch over points and adds the external term on
// the host. points must stay the same slice between calls to skip re-uploads.
func (e *openCLFieldEvaluator) Evaluate(ctx context.Context, points []mgl64.Vec3, t float64, freqs wavefield.FrequencySet, ext wavefield.External, prm wavefield.Params, dst []float64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(points) != e.count || len(dst) != e.count {
		return fmt.Errorf("OpenCL evaluator sized for %d points, got %d points and %d outputs", e.count, len(points), len(dst))
	}
	if len(freqs) > maxGPUFrequencies {
		return fmt.Errorf("OpenCL evaluator supports %d frequencies, got %d", maxGPUFrequencies, len(freqs))
	}

	if e.pointsSynced != &points[0] {
		for i, p := range points {
			e.hostPoints[3*i] = float32(p.X())
			e.hostPoints[3*i+1] = float32(p.Y())
			e.hostPoints[3*i+2] = float32(p.Z())
		}
		if _, err := e.queue.EnqueueWriteBufferFloat32(e.pointsBuf, false, 0, e.hostPoints, nil); err != nil {
			return fmt.Errorf("uploading points: %w", err)
		}
		e.pointsSynced = &points[0]
	}
	for i := range e.hostFreqs {
		e.hostFreqs[i] = 0
		if i < len(freqs) {
			e.hostFreqs[i] = float32(freqs[i])
		}
	}
	if _, err := e.queue.EnqueueWriteBufferFloat32(e.freqBuf, false, 0, e.hostFreqs, nil); err != nil {
		return fmt.Errorf("uploading frequencies: %w", err)
	}

	if err := e.kernel.SetArgs(
		int32(e.count),
		int32(len(freqs)),
		float32(t),
		float32(prm.Origin.X()),
		float32(prm.Origin.Y()),
		float32(prm.Origin.Z()),
		float32(prm.Damping),
		float32(prm.Decay),
		e.pointsBuf,
		e.freqBuf,
		e.outBuf,
	); err != nil {
		return fmt.Errorf("setting kernel arguments: %w", err)
	}
	if _, err := e.queue.EnqueueNDRangeKernel(e.kernel, nil, []int{e.count}, nil, nil); err != nil {
		return fmt.Errorf("enqueue wave kernel: %w", err)
	}
	if _, err := e.queue.EnqueueReadBufferFloat32(e.outBuf, true, 0, e.hostOut, nil); err != nil {
		return fmt.Errorf("reading intensities: %w", err)
	}

	for i, v := range e.hostOut {
		dst[i] = float64(v)
		if ext != nil {
			dst[i] += ext.Sample(points[i]) * prm.ExternalWeight
		}
	}
	return nil
}

func (e *openCLFieldEvaluator) Close() {
	if e.outBuf != nil {
		e.outBuf.Release()
		e.outBuf = nil
	}
	if e.freqBuf != nil {
		e.freqBuf.Release()
		e.freqBuf = nil
	}
	if e.pointsBuf != nil {
		e.pointsBuf.Release()
		e.pointsBuf = nil
	}
	if e.kernel != nil {
		e.kernel.Release()
		e.kernel = nil
	}
	if e.program != nil {
		e.program.Release()
		e.program = nil
	}
	if e.queue != nil {
		e.queue.Release()
		e.queue = nil
	}
	if e.context != nil {
		e.context.Release()
		e.context = nil
	}
}

func (e *openCLFieldEvaluator) DeviceName() string {
	return e.deviceName
}
