package spectrogram

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/hajimehoshi/ebiten/v2/audio/wav"
)

// DefaultSampleRate is the rate WAV input is resampled to before framing.
const DefaultSampleRate = 22050

const (
	frameBytes  = 4
	pcm16Scale  = 1.0 / 32768.0
	channelMean = 0.5
)

// LoadWAV decodes the WAV at path, resampled to sampleRate, into mono samples.
func LoadWAV(path string, sampleRate int) ([]float32, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open wav: %w", err)
	}
	defer f.Close()

	stream, err := wav.DecodeWithSampleRate(sampleRate, f)
	if err != nil {
		return nil, fmt.Errorf("decode wav %s: %w", path, err)
	}
	pcm, err := io.ReadAll(stream)
	if err != nil {
		return nil, fmt.Errorf("read wav %s: %w", path, err)
	}
	samples := decodeStereoI16ToFloat(pcm)
	if len(samples) == 0 {
		return nil, fmt.Errorf("wav %s: %w", path, ErrNoSamples)
	}
	return samples, nil
}

// decodeStereoI16ToFloat averages interleaved 16-bit little-endian stereo frames
// into mono samples in [-1, 1). A trailing partial frame is dropped.
func decodeStereoI16ToFloat(pcm []byte) []float32 {
	n := len(pcm) / frameBytes
	if n == 0 {
		return nil
	}
	out := make([]float32, n)
	for i := range out {
		frame := pcm[i*frameBytes : (i+1)*frameBytes]
		left := int16(binary.LittleEndian.Uint16(frame[0:2]))
		right := int16(binary.LittleEndian.Uint16(frame[2:4]))
		out[i] = (float32(left) + float32(right)) * channelMean * pcm16Scale
	}
	return out
}
