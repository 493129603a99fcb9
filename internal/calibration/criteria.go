package calibration

import (
	"fmt"
)

// Success thresholds. These are independent of the advice thresholds in
// package advice, which deliberately use different cut-offs.
const (
	NoiseFloorMaxDBFS = -55.0
	VoiceSNRMinDB     = 20.0
	SpeakerSNRMinDB   = 6.0
	DominanceMin      = 2.0
	DominanceMax      = 5.0
	ClippingDBFS      = -3.0
	MusicRatioMax     = 0.25
)

// Criterion names.
const (
	CriterionNoiseFloor = "noise_floor"
	CriterionVoiceSNR   = "voice_snr"
	CriterionSpeakerSNR = "speaker_snr"
	CriterionDominance  = "dominance"
	CriterionClipping   = "clipping"
	CriterionMusicLevel = "music_level"
)

// Status is the outcome of one criterion.
type Status int

const (
	NotMeasured Status = iota
	Pass
	Fail
)

func (s Status) String() string {
	switch s {
	case Pass:
		return "pass"
	case Fail:
		return "fail"
	default:
		return "not measured"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Criterion is one evaluated success criterion.
type Criterion struct {
	Name     string   `json:"name" yaml:"name"`
	Title    string   `json:"title" yaml:"title"`
	Phase    Phase    `json:"phase" yaml:"phase"`
	Status   Status   `json:"status" yaml:"status"`
	Measured Optional `json:"measured" yaml:"measured"`
	Target   string   `json:"target" yaml:"target"`
}

// Passed reports whether the criterion was measured and met.
func (c Criterion) Passed() bool {
	return c.Status == Pass
}

// Verdict is the evaluation of a run against every criterion.
type Verdict struct {
	RunID    int         `json:"run_id" yaml:"run_id"`
	Criteria []Criterion `json:"criteria" yaml:"criteria"`
	Passed   bool        `json:"passed" yaml:"passed"`
}

// Get returns the named criterion.
func (v Verdict) Get(name string) (Criterion, bool) {
	for _, c := range v.Criteria {
		if c.Name == name {
			return c, true
		}
	}
	return Criterion{}, false
}

// Count returns how many criteria have the given status.
func (v Verdict) Count(status Status) int {
	n := 0
	for _, c := range v.Criteria {
		if c.Status == status {
			n++
		}
	}
	return n
}

type criterionRule struct {
	name   string
	title  string
	phase  Phase
	value  func(PhaseResult) Optional
	passes func(float64) bool
	target string
}

var criterionRules = []criterionRule{
	{
		name:   CriterionNoiseFloor,
		title:  "Noise floor",
		phase:  SilenceBaseline,
		value:  func(r PhaseResult) Optional { return Some(r.RMSDBFS) },
		passes: func(v float64) bool { return v < NoiseFloorMaxDBFS },
		target: fmt.Sprintf("< %.0f dBFS", NoiseFloorMaxDBFS),
	},
	{
		name:   CriterionVoiceSNR,
		title:  "Voice SNR",
		phase:  VoiceOnly,
		value:  func(r PhaseResult) Optional { return r.SNRDB },
		passes: func(v float64) bool { return v > VoiceSNRMinDB },
		target: fmt.Sprintf("> %.0f dB", VoiceSNRMinDB),
	},
	{
		name:   CriterionSpeakerSNR,
		title:  "Speaker SNR",
		phase:  SpeakerOnly,
		value:  func(r PhaseResult) Optional { return r.SNRDB },
		passes: func(v float64) bool { return v > SpeakerSNRMinDB },
		target: fmt.Sprintf("> %.0f dB", SpeakerSNRMinDB),
	},
	{
		name:   CriterionDominance,
		title:  "Voice dominance",
		phase:  VoiceAndSpeaker,
		value:  func(r PhaseResult) Optional { return r.Dominance },
		passes: func(v float64) bool { return v >= DominanceMin && v <= DominanceMax },
		target: fmt.Sprintf("%.1fx - %.1fx", DominanceMin, DominanceMax),
	},
	{
		name:   CriterionClipping,
		title:  "No clipping",
		phase:  VoiceOnly,
		value:  func(r PhaseResult) Optional { return Some(r.PeakDBFS) },
		passes: func(v float64) bool { return v < ClippingDBFS },
		target: fmt.Sprintf("peak < %.0f dBFS", ClippingDBFS),
	},
	{
		name:   CriterionMusicLevel,
		title:  "Music level",
		phase:  VoiceSpeakerMusic,
		value:  func(r PhaseResult) Optional { return r.MusicRatio },
		passes: func(v float64) bool { return v < MusicRatioMax },
		target: fmt.Sprintf("< %.0f%% of voice energy", MusicRatioMax*100),
	},
}

// Evaluate checks a run against the success criteria. A criterion whose
// phase or metric is absent is NotMeasured and fails the aggregate.
func Evaluate(run *Run) (Verdict, error) {
	if run.Empty() {
		return Verdict{}, emptyRunError(run)
	}

	verdict := Verdict{RunID: run.ID, Passed: true}
	for _, rule := range criterionRules {
		c := Criterion{
			Name:   rule.name,
			Title:  rule.title,
			Phase:  rule.phase,
			Status: NotMeasured,
			Target: rule.target,
		}
		if res, ok := run.Latest(rule.phase); ok {
			c.Measured = rule.value(res)
		}
		if v, ok := c.Measured.Get(); ok {
			c.Status = Fail
			if rule.passes(v) {
				c.Status = Pass
			}
		}
		if c.Status != Pass {
			verdict.Passed = false
		}
		verdict.Criteria = append(verdict.Criteria, c)
	}
	return verdict, nil
}
