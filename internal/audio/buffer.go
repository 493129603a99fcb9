// Package audio provides the sample buffer type and its decoders
package audio

import (
	"errors"
	"time"
)

// ErrInvalidSampleRate is returned when a buffer is built with a non-positive rate.
var ErrInvalidSampleRate = errors.New("sample rate must be positive")

// Buffer is a captured mono recording with samples normalised to [-1.0, 1.0].
// A Buffer is never modified after construction.
type Buffer struct {
	samples    []float64
	sampleRate int
}

// NewBuffer copies samples into a new Buffer.
func NewBuffer(samples []float64, sampleRate int) (Buffer, error) {
	if sampleRate <= 0 {
		return Buffer{}, ErrInvalidSampleRate
	}
	owned := make([]float64, len(samples))
	copy(owned, samples)
	return Buffer{samples: owned, sampleRate: sampleRate}, nil
}

// View exposes the samples without copying. Callers must not write to it.
func (b Buffer) View() []float64 {
	return b.samples
}

// SampleRate returns the sample rate in Hz
func (b Buffer) SampleRate() int {
	return b.sampleRate
}

// Len returns the number of samples.
func (b Buffer) Len() int {
	return len(b.samples)
}

// Duration returns the recording length.
func (b Buffer) Duration() time.Duration {
	if b.sampleRate <= 0 {
		return 0
	}
	return time.Duration(float64(len(b.samples)) / float64(b.sampleRate) * float64(time.Second))
}
