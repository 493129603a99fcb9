package metrics

import "math"

const testRate = 48000

// sineWave generates a pure tone of the given frequency, duration and peak amplitude.
func sineWave(freq, durationSecs, amplitude float64) []float64 {
	n := int(durationSecs * testRate)
	out := make([]float64, n)
	for i := range out {
		out[i] = amplitude * math.Sin(2.0*math.Pi*freq*float64(i)/testRate)
	}
	return out
}

// whiteNoise generates deterministic uniform noise in [-amplitude, amplitude].
// A fixed LCG keeps the output identical across runs.
func whiteNoise(durationSecs, amplitude float64) []float64 {
	n := int(durationSecs * testRate)
	out := make([]float64, n)
	state := uint32(12345)
	for i := range out {
		// LCG parameters from Numerical Recipes
		state = state*1664525 + 1013904223
		out[i] = amplitude * ((float64(state)/float64(0xFFFFFFFF))*2.0 - 1.0)
	}
	return out
}

func mix(a, b []float64) []float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = a[i] + b[i]
	}
	return out
}
