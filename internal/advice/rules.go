// Package advice turns a calibration run into hardware and placement
// recommendations using a fixed, ordered rule table.
package advice

import (
	"fmt"

	"github.com/linuxmatters/mictune/internal/calibration"
)

// Severity ranks an advisory for display.
type Severity int

const (
	Good Severity = iota
	Info
	Warning
	Danger
)

func (s Severity) String() string {
	switch s {
	case Good:
		return "good"
	case Info:
		return "info"
	case Warning:
		return "warning"
	case Danger:
		return "danger"
	default:
		return fmt.Sprintf("severity(%d)", int(s))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Corrective reports whether the advisory asks the operator to change something.
func (s Severity) Corrective() bool {
	return s == Warning || s == Danger
}

// Metric selects the phase measurement a rule reads.
type Metric int

const (
	MetricRMS Metric = iota
	MetricPeak
	MetricSNR
	MetricDominance
)

func (m Metric) label() string {
	switch m {
	case MetricRMS:
		return "RMS"
	case MetricPeak:
		return "peak"
	case MetricSNR:
		return "SNR"
	default:
		return "dominance"
	}
}

func (m Metric) format(v float64) string {
	switch m {
	case MetricRMS, MetricPeak:
		return fmt.Sprintf("%.1f dBFS", v)
	case MetricSNR:
		return fmt.Sprintf("%.1f dB", v)
	default:
		return fmt.Sprintf("%.1fx", v)
	}
}

func (m Metric) value(r calibration.PhaseResult) calibration.Optional {
	switch m {
	case MetricRMS:
		return calibration.Some(r.RMSDBFS)
	case MetricPeak:
		return calibration.Some(r.PeakDBFS)
	case MetricSNR:
		return r.SNRDB
	default:
		return r.Dominance
	}
}

// Op is the comparison a rule applies.
type Op int

const (
	Above Op = iota
	Below
	Within
)

// Condition is a threshold test: v > Low, v < Low, or Low <= v <= High.
type Condition struct {
	Op   Op
	Low  float64
	High float64
}

// Holds reports whether v satisfies the condition.
func (c Condition) Holds(v float64) bool {
	switch c.Op {
	case Above:
		return v > c.Low
	case Below:
		return v < c.Low
	default:
		return v >= c.Low && v <= c.High
	}
}

func (c Condition) describe(m Metric) string {
	switch c.Op {
	case Above:
		return "> " + m.format(c.Low)
	case Below:
		return "< " + m.format(c.Low)
	default:
		return fmt.Sprintf("in %s-%s", m.format(c.Low), m.format(c.High))
	}
}

// Rule identifiers.
const (
	RuleNoiseHigh         = "noise_floor_high"
	RuleGainHeadroom      = "gain_headroom"
	RuleVoiceTooQuiet     = "voice_too_quiet"
	RuleVoiceExcellent    = "voice_isolation_excellent"
	RuleVoiceClipping     = "voice_clipping"
	RuleSpeakerFaint      = "speaker_barely_audible"
	RuleSpeakerClear      = "speaker_pickup_clear"
	RuleNotDominant       = "target_not_dominant"
	RuleSecondaryTooQuiet = "secondary_too_quiet"
	RuleBalanceGood       = "balance_good"
)

// Rule is one row of the advice table.
type Rule struct {
	ID        string
	Phase     calibration.Phase
	Metric    Metric
	Condition Condition
	Severity  Severity
	Message   string
}

// Rules is the advice table, evaluated in order. Rules are independent:
// any number may fire for one run.
var Rules = []Rule{
	{
		ID: RuleNoiseHigh, Phase: calibration.SilenceBaseline, Metric: MetricRMS,
		Condition: Condition{Op: Above, Low: -50}, Severity: Warning,
		Message: "Reduce input gain: the noise floor is too high.",
	},
	{
		ID: RuleGainHeadroom, Phase: calibration.SilenceBaseline, Metric: MetricRMS,
		Condition: Condition{Op: Below, Low: -70}, Severity: Info,
		Message: "Gain has headroom to increase for a stronger signal.",
	},
	{
		ID: RuleVoiceTooQuiet, Phase: calibration.VoiceOnly, Metric: MetricSNR,
		Condition: Condition{Op: Below, Low: 15}, Severity: Warning,
		Message: "Voice too quiet: increase gain or move the mic closer to your mouth.",
	},
	{
		ID: RuleVoiceExcellent, Phase: calibration.VoiceOnly, Metric: MetricSNR,
		Condition: Condition{Op: Above, Low: 40}, Severity: Good,
		Message: "Voice isolation is excellent.",
	},
	{
		ID: RuleVoiceClipping, Phase: calibration.VoiceOnly, Metric: MetricPeak,
		Condition: Condition{Op: Above, Low: -3}, Severity: Danger,
		Message: "Clipping risk: reduce gain or move back from the mic.",
	},
	{
		ID: RuleSpeakerFaint, Phase: calibration.SpeakerOnly, Metric: MetricSNR,
		Condition: Condition{Op: Below, Low: 6}, Severity: Warning,
		Message: "Secondary source barely audible: widen the pickup pattern or raise its volume.",
	},
	{
		ID: RuleSpeakerClear, Phase: calibration.SpeakerOnly, Metric: MetricSNR,
		Condition: Condition{Op: Above, Low: 25}, Severity: Good,
		Message: "Secondary source pickup is clear.",
	},
	{
		ID: RuleNotDominant, Phase: calibration.VoiceAndSpeaker, Metric: MetricDominance,
		Condition: Condition{Op: Below, Low: 1.5}, Severity: Warning,
		Message: "Voice not dominant: move the mic closer to your mouth.",
	},
	{
		ID: RuleSecondaryTooQuiet, Phase: calibration.VoiceAndSpeaker, Metric: MetricDominance,
		Condition: Condition{Op: Above, Low: 10}, Severity: Warning,
		Message: "Secondary source too quiet: widen the pattern or raise its volume.",
	},
	{
		ID: RuleBalanceGood, Phase: calibration.VoiceAndSpeaker, Metric: MetricDominance,
		Condition: Condition{Op: Within, Low: 2, High: 5}, Severity: Good,
		Message: "Voice and secondary source balance is good.",
	},
}

// Advisory is a fired rule with the measurement that triggered it.
type Advisory struct {
	RuleID    string            `json:"rule_id" yaml:"rule_id"`
	Phase     calibration.Phase `json:"phase" yaml:"phase"`
	Severity  Severity          `json:"severity" yaml:"severity"`
	Condition string            `json:"condition" yaml:"condition"`
	Message   string            `json:"message" yaml:"message"`
}

// evaluateRules applies every rule to the latest result of its phase.
// Absent phases and unmeasured metrics fire nothing.
func evaluateRules(run *calibration.Run) []Advisory {
	var out []Advisory
	for _, rule := range Rules {
		res, ok := run.Latest(rule.Phase)
		if !ok {
			continue
		}
		v, ok := rule.Metric.value(res).Get()
		if !ok || !rule.Condition.Holds(v) {
			continue
		}
		cond := fmt.Sprintf("%s %s %s %s", rule.Phase.Title(), rule.Metric.label(),
			rule.Metric.format(v), rule.Condition.describe(rule.Metric))
		out = append(out, Advisory{
			RuleID:    rule.ID,
			Phase:     rule.Phase,
			Severity:  rule.Severity,
			Condition: cond,
			Message:   rule.Message,
		})
	}
	return out
}
