package metrics

import "testing"

func TestDominantBand(t *testing.T) {
	tests := []struct {
		name    string
		samples []float64
		want    string
	}{
		{"bass_tone", sineWave(100, 1.0, 0.5), "Bass"},
		{"mid_tone", sineWave(1000, 1.0, 0.5), "Mid"},
		{"presence_tone", sineWave(5000, 1.0, 0.5), "Presence"},
		{"brilliance_tone", sineWave(9000, 1.0, 0.5), "Brilliance"},
		{"silence_ties_to_lowest", make([]float64, testRate), "Sub-bass"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DominantBand(tt.samples, testRate); got.Name != tt.want {
				t.Errorf("DominantBand() = %s, want %s", got.Name, tt.want)
			}
		})
	}
}

func TestDominantBandTieBreaksLow(t *testing.T) {
	s := Spectrum{
		Frequencies: []float64{100, 1000},
		Power:       []float64{2, 2},
	}
	if got := s.DominantBand(); got.Name != "Bass" {
		t.Errorf("tie resolved to %s, want Bass", got.Name)
	}
}

func TestDominantBandDeterministic(t *testing.T) {
	signal := whiteNoise(1.0, 0.2)
	first := DominantBand(signal, testRate)
	for i := 0; i < 3; i++ {
		if got := DominantBand(signal, testRate); got != first {
			t.Fatalf("call %d returned %v, want %v", i, got, first)
		}
	}
}

func TestBandString(t *testing.T) {
	if got := Bands[3].String(); got != "Mid (500-2k)" {
		t.Errorf("String() = %q, want %q", got, "Mid (500-2k)")
	}
}

func TestHumRatio(t *testing.T) {
	tests := []struct {
		name    string
		samples []float64
		mains   float64
		check   func(float64) bool
		want    string
	}{
		{"pure_50hz_hum", sineWave(50, 1.0, 0.1), 50, func(r float64) bool { return r > 0.9 }, "> 0.9"},
		{"pure_60hz_hum", sineWave(60, 1.0, 0.1), 60, func(r float64) bool { return r > 0.9 }, "> 0.9"},
		{"voice_band_tone", sineWave(1000, 1.0, 0.1), 50, func(r float64) bool { return r < 0.01 }, "< 0.01"},
		{"unknown_mains", sineWave(50, 1.0, 0.1), 0, func(r float64) bool { return r == 0 }, "0"},
		{"silence", make([]float64, testRate), 50, func(r float64) bool { return r == 0 }, "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := HumRatio(tt.samples, testRate, tt.mains)
			if !tt.check(got) {
				t.Errorf("HumRatio() = %v, want %s", got, tt.want)
			}
		})
	}
}
