package calibration

import (
	"time"

	"github.com/linuxmatters/mictune/internal/metrics"
)

// PhaseResult holds the metrics measured for one phase execution.
// Results are values: a Run stores its own copies and never changes them.
type PhaseResult struct {
	Phase           Phase         `json:"phase" yaml:"phase"`
	RMSDBFS         float64       `json:"rms_dbfs" yaml:"rms_dbfs"`
	PeakDBFS        float64       `json:"peak_dbfs" yaml:"peak_dbfs"`
	SNRDB           Optional      `json:"snr_db" yaml:"snr_db"`
	Dominance       Optional      `json:"dominance_ratio" yaml:"dominance_ratio"`
	MusicRatio      Optional      `json:"music_ratio" yaml:"music_ratio"`
	HumRatio        Optional      `json:"hum_ratio" yaml:"hum_ratio"`
	SpeechBandRatio float64       `json:"speech_band_ratio" yaml:"speech_band_ratio"`
	DominantBand    metrics.Band  `json:"dominant_band" yaml:"dominant_band"`
	Duration        time.Duration `json:"duration" yaml:"duration"`
	Inferred        bool          `json:"inferred,omitempty" yaml:"inferred,omitempty"`
	RecordedAt      time.Time     `json:"recorded_at" yaml:"recorded_at"`
}

// Clipping reports whether the peak is at or above the clipping margin.
func (r PhaseResult) Clipping() bool {
	return r.PeakDBFS >= ClippingDBFS
}
