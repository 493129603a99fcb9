package metrics

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/dsp/window"
)

// WelchSegment is the default periodogram segment length. Shorter buffers
// use a single segment covering the whole buffer.
const WelchSegment = 4096

// Speech band limits used for SpeechBandRatio.
const (
	SpeechLowHz  = 300.0
	SpeechHighHz = 3000.0
)

// Spectrum is a one-sided power spectral density estimate.
// Frequencies and Power always have the same length.
type Spectrum struct {
	Frequencies []float64 // Hz, 0..Nyquist
	Power       []float64 // power spectral density (amplitude²/Hz)
}

// Total returns the integrated power over all bins.
func (s Spectrum) Total() float64 {
	var sum float64
	for _, p := range s.Power {
		sum += p
	}
	return sum
}

// BandPower sums the power of bins with low <= f <= high.
func (s Spectrum) BandPower(low, high float64) float64 {
	var sum float64
	for i, f := range s.Frequencies {
		if f >= low && f <= high {
			sum += s.Power[i]
		}
	}
	return sum
}

// InvalidRangeError reports a malformed frequency range request.
type InvalidRangeError struct {
	LowHz   float64
	HighHz  float64
	Nyquist float64
}

func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("invalid frequency range [%.1f, %.1f] Hz (Nyquist %.1f Hz)", e.LowHz, e.HighHz, e.Nyquist)
}

// ComputeSpectrum estimates the power spectral density with Welch's method:
// Hann-windowed segments of min(WelchSegment, len) samples, 50% overlap,
// per-segment mean removal, averaged periodograms with density scaling.
func ComputeSpectrum(samples []float64, sampleRate int) Spectrum {
	n := len(samples)
	if n == 0 || sampleRate <= 0 {
		return Spectrum{}
	}

	segLen := WelchSegment
	if n < segLen {
		segLen = n
	}
	step := segLen / 2
	if step == 0 {
		step = 1
	}

	win := hannWindow(segLen)
	var winPower float64
	for _, w := range win {
		winPower += w * w
	}

	bins := segLen/2 + 1
	power := make([]float64, bins)
	fft := fourier.NewFFT(segLen)
	seg := make([]float64, segLen)
	coeffs := make([]complex128, bins)

	segments := 0
	for start := 0; start+segLen <= n; start += step {
		copy(seg, samples[start:start+segLen])
		removeMean(seg)
		for i := range seg {
			seg[i] *= win[i]
		}
		coeffs = fft.Coefficients(coeffs, seg)
		for k, c := range coeffs {
			re, im := real(c), imag(c)
			power[k] += re*re + im*im
		}
		segments++
	}

	scale := 1.0
	if winPower > 0 {
		scale = 1.0 / (float64(sampleRate) * winPower * float64(segments))
	}
	freqs := make([]float64, bins)
	for k := range power {
		power[k] *= scale
		// One-sided: fold negative frequencies except DC and (even) Nyquist
		if k != 0 && !(segLen%2 == 0 && k == bins-1) {
			power[k] *= 2
		}
		freqs[k] = float64(k) * float64(sampleRate) / float64(segLen)
	}

	return Spectrum{Frequencies: freqs, Power: power}
}

// hannWindow returns the periodic Hann window used for spectral estimation.
// A single-sample segment gets a unit window.
func hannWindow(n int) []float64 {
	w := make([]float64, n)
	for i := range w {
		w[i] = 1
	}
	if n < 2 {
		return w
	}
	// gonum's Hann is symmetric over n points; build the periodic form
	// from n+1 points and drop the last.
	ext := make([]float64, n+1)
	for i := range ext {
		ext[i] = 1
	}
	window.Hann(ext)
	copy(w, ext[:n])
	return w
}

func removeMean(seg []float64) {
	var mean float64
	for _, v := range seg {
		mean += v
	}
	mean /= float64(len(seg))
	for i := range seg {
		seg[i] -= mean
	}
}

// BandEnergyRatio returns the fraction of total spectral power inside
// [lowHz, highHz]. Buffers without spectral power yield 0.
func BandEnergyRatio(samples []float64, sampleRate int, lowHz, highHz float64) (float64, error) {
	nyquist := float64(sampleRate) / 2.0
	if lowHz < 0 || lowHz >= highHz || lowHz > nyquist || highHz > nyquist {
		return 0, &InvalidRangeError{LowHz: lowHz, HighHz: highHz, Nyquist: nyquist}
	}
	return ComputeSpectrum(samples, sampleRate).ratio(lowHz, highHz), nil
}

func (s Spectrum) ratio(low, high float64) float64 {
	total := s.Total()
	if total == 0 {
		return 0
	}
	return s.BandPower(low, high) / total
}

// SpeechBandRatio returns the share of power in the 300–3000 Hz speech band.
// The upper limit is clipped to Nyquist for low sample rates.
func SpeechBandRatio(samples []float64, sampleRate int) float64 {
	return ComputeSpectrum(samples, sampleRate).SpeechBandRatio()
}

// SpeechBandRatio is the speech band share of an already computed spectrum.
func (s Spectrum) SpeechBandRatio() float64 {
	if len(s.Frequencies) == 0 {
		return 0
	}
	high := math.Min(SpeechHighHz, s.Frequencies[len(s.Frequencies)-1])
	if high <= SpeechLowHz {
		return 0
	}
	return s.ratio(SpeechLowHz, high)
}
