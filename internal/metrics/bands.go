package metrics

import (
	"fmt"
	"math"
)

// Band is a named frequency range. HighHz is exclusive when integrating power.
type Band struct {
	Name   string  `json:"name" yaml:"name"`
	LowHz  float64 `json:"low_hz" yaml:"low_hz"`
	HighHz float64 `json:"high_hz" yaml:"high_hz"`
}

func (b Band) String() string {
	return fmt.Sprintf("%s (%s-%s)", b.Name, formatHz(b.LowHz), formatHz(b.HighHz))
}

func formatHz(hz float64) string {
	if hz >= 1000 {
		return fmt.Sprintf("%gk", hz/1000)
	}
	return fmt.Sprintf("%g", hz)
}

// Bands is the fixed partition used by DominantBand, lowest first.
var Bands = []Band{
	{Name: "Sub-bass", LowHz: 20, HighHz: 60},
	{Name: "Bass", LowHz: 60, HighHz: 250},
	{Name: "Low-mid", LowHz: 250, HighHz: 500},
	{Name: "Mid", LowHz: 500, HighHz: 2000},
	{Name: "Upper-mid", LowHz: 2000, HighHz: 4000},
	{Name: "Presence", LowHz: 4000, HighHz: 6000},
	{Name: "Brilliance", LowHz: 6000, HighHz: 20000},
}

// DominantBand returns the band with the most integrated power. Ties,
// including the all-zero case of a silent buffer, go to the lower band.
func DominantBand(samples []float64, sampleRate int) Band {
	return ComputeSpectrum(samples, sampleRate).DominantBand()
}

// DominantBand picks the highest-power entry of Bands for this spectrum.
func (s Spectrum) DominantBand() Band {
	best := Bands[0]
	bestPower := -1.0
	for _, b := range Bands {
		var p float64
		for i, f := range s.Frequencies {
			if f >= b.LowHz && f < b.HighHz {
				p += s.Power[i]
			}
		}
		if p > bestPower {
			best, bestPower = b, p
		}
	}
	return best
}

// HumTolerance is the minimum half-width of each mains hum window. The
// window widens to two FFT bins, the Hann main lobe, when the spectral
// resolution is coarser.
const HumTolerance = 3.0

// HumHarmonics is the number of mains multiples (fundamental included)
// counted by HumRatio.
const HumHarmonics = 4

// HumRatio returns the share of spectral power sitting on the mains
// frequency and its harmonics. Harmonics above Nyquist are skipped.
// A non-positive mains frequency or a silent buffer yields 0.
func HumRatio(samples []float64, sampleRate int, mainsHz float64) float64 {
	if mainsHz <= 0 {
		return 0
	}
	s := ComputeSpectrum(samples, sampleRate)
	total := s.Total()
	if total == 0 {
		return 0
	}
	nyquist := float64(sampleRate) / 2.0
	tol := HumTolerance
	if len(s.Frequencies) > 1 {
		tol = math.Max(tol, 2*s.Frequencies[1])
	}
	var hum float64
	for h := 1; h <= HumHarmonics; h++ {
		centre := mainsHz * float64(h)
		if centre+tol > nyquist {
			break
		}
		hum += s.BandPower(centre-tol, centre+tol)
	}
	return hum / total
}
