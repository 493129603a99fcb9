// Package metrics turns sample buffers into scalar quality measurements.
//
// Every function here is a pure function of its inputs: no state, no I/O,
// safe to call concurrently. Levels are reported in dBFS where 0 dBFS is a
// full-scale sample.
package metrics

import "math"

// FloorDBFS is returned for silent or empty input where log10(0) is undefined.
// It sits at the bottom of the 16-bit dynamic range.
const FloorDBFS = -96.0

// RMS returns the root-mean-square amplitude of samples (0 for empty input).
func RMS(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range samples {
		sum += s * s
	}
	return math.Sqrt(sum / float64(len(samples)))
}

// Peak returns the largest absolute sample value.
func Peak(samples []float64) float64 {
	var peak float64
	for _, s := range samples {
		if a := math.Abs(s); a > peak {
			peak = a
		}
	}
	return peak
}

// AmplitudeToDBFS converts a linear amplitude to dBFS, returning FloorDBFS
// for non-positive amplitudes.
func AmplitudeToDBFS(amplitude float64) float64 {
	if amplitude <= 0 {
		return FloorDBFS
	}
	return 20.0 * math.Log10(amplitude)
}

// DBFSToAmplitude converts dBFS back to a linear amplitude.
func DBFSToAmplitude(dbfs float64) float64 {
	return math.Pow(10, dbfs/20.0)
}

// LevelDBFS returns the RMS level in dBFS, or FloorDBFS when RMS is zero.
func LevelDBFS(samples []float64) float64 {
	return AmplitudeToDBFS(RMS(samples))
}

// PeakLevelDBFS returns the peak level in dBFS, or FloorDBFS for silence.
func PeakLevelDBFS(samples []float64) float64 {
	return AmplitudeToDBFS(Peak(samples))
}

// SNR is the signal level minus the noise floor in dB. It is not clamped:
// a negative result means the signal measured below the floor, which is a
// valid (bad) measurement.
func SNR(signalDBFS, noiseFloorDBFS float64) float64 {
	return signalDBFS - noiseFloorDBFS
}

// DominanceRatio converts two RMS levels into a linear amplitude ratio of
// target over interferer.
func DominanceRatio(targetDBFS, interfererDBFS float64) float64 {
	return DBFSToAmplitude(targetDBFS - interfererDBFS)
}

// EnergyRatio returns RMS(a) / RMS(b), or 0 when b is silent.
func EnergyRatio(a, b []float64) float64 {
	rmsB := RMS(b)
	if rmsB == 0 {
		return 0
	}
	return RMS(a) / rmsB
}
