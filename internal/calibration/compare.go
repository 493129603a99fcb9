package calibration

import (
	"math"
)

// Direction is the change of a metric between two runs.
type Direction int

const (
	Unchanged Direction = iota
	Improved
	Regressed
)

func (d Direction) String() string {
	switch d {
	case Improved:
		return "improved"
	case Regressed:
		return "regressed"
	default:
		return "unchanged"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (d Direction) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Polarity says which way a metric should move.
type Polarity int

const (
	HigherIsBetter Polarity = iota
	LowerIsBetter
	CloserIsBetter
)

// Comparison epsilons below which a change counts as noise.
const (
	EpsilonDB    = 0.1
	EpsilonRatio = 0.05
)

// DominanceTarget is the midpoint of the accepted dominance range.
const DominanceTarget = (DominanceMin + DominanceMax) / 2

// Delta is one metric compared across two runs.
type Delta struct {
	Metric    string    `json:"metric" yaml:"metric"`
	Phase     Phase     `json:"phase" yaml:"phase"`
	Unit      string    `json:"unit" yaml:"unit"`
	Previous  float64   `json:"previous" yaml:"previous"`
	Current   float64   `json:"current" yaml:"current"`
	Direction Direction `json:"direction" yaml:"direction"`
}

// Change is Current minus Previous.
func (d Delta) Change() float64 {
	return d.Current - d.Previous
}

type comparedMetric struct {
	name     string
	phase    Phase
	unit     string
	value    func(PhaseResult) Optional
	polarity Polarity
	epsilon  float64
}

var comparedMetrics = []comparedMetric{
	{CriterionNoiseFloor, SilenceBaseline, "dBFS", func(r PhaseResult) Optional { return Some(r.RMSDBFS) }, LowerIsBetter, EpsilonDB},
	{CriterionVoiceSNR, VoiceOnly, "dB", func(r PhaseResult) Optional { return r.SNRDB }, HigherIsBetter, EpsilonDB},
	{"voice_peak", VoiceOnly, "dBFS", func(r PhaseResult) Optional { return Some(r.PeakDBFS) }, LowerIsBetter, EpsilonDB},
	{CriterionSpeakerSNR, SpeakerOnly, "dB", func(r PhaseResult) Optional { return r.SNRDB }, HigherIsBetter, EpsilonDB},
	{CriterionDominance, VoiceAndSpeaker, "x", func(r PhaseResult) Optional { return r.Dominance }, CloserIsBetter, EpsilonRatio},
	{CriterionMusicLevel, VoiceSpeakerMusic, "ratio", func(r PhaseResult) Optional { return r.MusicRatio }, LowerIsBetter, EpsilonRatio},
}

// Compare computes per-metric deltas from previous to current. Metrics not
// measured in both runs are left out.
func Compare(current, previous *Run) []Delta {
	var deltas []Delta
	for _, m := range comparedMetrics {
		cur, ok := metricValue(current, m)
		if !ok {
			continue
		}
		prev, ok := metricValue(previous, m)
		if !ok {
			continue
		}
		deltas = append(deltas, Delta{
			Metric:    m.name,
			Phase:     m.phase,
			Unit:      m.unit,
			Previous:  prev,
			Current:   cur,
			Direction: direction(prev, cur, m.polarity, m.epsilon),
		})
	}
	return deltas
}

// Regressions returns only the deltas that got worse.
func Regressions(deltas []Delta) []Delta {
	var out []Delta
	for _, d := range deltas {
		if d.Direction == Regressed {
			out = append(out, d)
		}
	}
	return out
}

func metricValue(run *Run, m comparedMetric) (float64, bool) {
	res, ok := run.Latest(m.phase)
	if !ok {
		return 0, false
	}
	return m.value(res).Get()
}

func direction(prev, cur float64, polarity Polarity, epsilon float64) Direction {
	var gain float64
	switch polarity {
	case HigherIsBetter:
		gain = cur - prev
	case LowerIsBetter:
		gain = prev - cur
	case CloserIsBetter:
		gain = math.Abs(prev-DominanceTarget) - math.Abs(cur-DominanceTarget)
	}
	if math.Abs(cur-prev) < epsilon || gain == 0 {
		return Unchanged
	}
	if gain > 0 {
		return Improved
	}
	return Regressed
}
