package calibration

import (
	"fmt"
	"time"
)

// DefaultGainPercent is the configured gain when the config file sets none.
const DefaultGainPercent = 35

// SettingsInput is what the operator and advice contribute to the final
// device configuration.
type SettingsInput struct {
	SampleRate     int
	Channels       int
	GainPercent    int
	Pattern        string
	DistanceInches float64
}

// Settings is the final device configuration exported after a passing run.
type Settings struct {
	DeviceName     string    `json:"preferred_device_name"`
	SampleRate     int       `json:"sample_rate"`
	Channels       int       `json:"channels"`
	GainPercent    int       `json:"recommended_gain_percent"`
	Pattern        string    `json:"recommended_pattern"`
	DistanceInches float64   `json:"recommended_distance_inches"`
	NoiseFloorDBFS Optional  `json:"noise_floor_dbfs"`
	VoiceSNRDB     Optional  `json:"voice_snr_db"`
	CalibratedAt   time.Time `json:"calibration_date"`
	RunID          int       `json:"run_id"`
}

// NewSettings builds the final configuration, refusing with
// ErrNotCalibrated unless the verdict passed.
func NewSettings(run *Run, verdict Verdict, in SettingsInput, now time.Time) (Settings, error) {
	if !verdict.Passed {
		return Settings{}, ErrNotCalibrated
	}
	return DraftSettings(run, in, now)
}

// DraftSettings builds the configuration without checking the verdict.
func DraftSettings(run *Run, in SettingsInput, now time.Time) (Settings, error) {
	if run.Empty() {
		return Settings{}, emptyRunError(run)
	}
	gain := in.GainPercent
	if gain < 0 || gain > 100 {
		return Settings{}, fmt.Errorf("gain %d%% out of range 0-100", gain)
	}
	if in.SampleRate <= 0 {
		return Settings{}, fmt.Errorf("sample rate %d must be positive", in.SampleRate)
	}
	channels := in.Channels
	if channels == 0 {
		channels = 1
	}
	if channels != 1 {
		return Settings{}, fmt.Errorf("channels %d: calibration is measured in mono", channels)
	}

	s := Settings{
		DeviceName:     run.Setup.DeviceName,
		SampleRate:     in.SampleRate,
		Channels:       channels,
		GainPercent:    gain,
		Pattern:        in.Pattern,
		DistanceInches: in.DistanceInches,
		CalibratedAt:   now,
		RunID:          run.ID,
	}
	if r, ok := run.Latest(SilenceBaseline); ok {
		s.NoiseFloorDBFS = Some(r.RMSDBFS)
	}
	if r, ok := run.Latest(VoiceOnly); ok {
		s.VoiceSNRDB = r.SNRDB
	}
	return s, nil
}
