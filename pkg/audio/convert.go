package audio

import (
	"encoding/binary"
	"math"
)

// DecodeF32LE converts raw 32-bit little-endian IEEE float PCM bytes to a
// float32 sample slice. Any trailing partial sample is silently ignored.
func DecodeF32LE(data []byte) []float32 {
	n := len(data) / 4
	samples := make([]float32, n)
	for i := range n {
		bits := binary.LittleEndian.Uint32(data[i*4 : i*4+4])
		samples[i] = math.Float32frombits(bits)
	}
	return samples
}

// FirstChannel extracts channel 0 from an interleaved multi-channel sample
// slice. With channels <= 1 the input is returned unchanged.
func FirstChannel(samples []float32, channels int) []float32 {
	if channels <= 1 {
		return samples
	}
	n := len(samples) / channels
	mono := make([]float32, n)
	for i := range n {
		mono[i] = samples[i*channels]
	}
	return mono
}

// float32ToPCM16 converts normalised float32 samples to 16-bit signed PCM
// values, clipping anything outside [-1.0, 1.0].
func float32ToPCM16(samples []float32) []int {
	out := make([]int, len(samples))
	for i, s := range samples {
		if s > 1.0 {
			s = 1.0
		} else if s < -1.0 {
			s = -1.0
		}
		out[i] = int(s * 32767.0)
	}
	return out
}

// RMS returns the root-mean-square amplitude of samples, 0 for an empty
// slice. Used for session-level debug logging.
func RMS(samples []float32) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range samples {
		sum += float64(s) * float64(s)
	}
	return math.Sqrt(sum / float64(len(samples)))
}
