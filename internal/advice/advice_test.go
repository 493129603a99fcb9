package advice

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linuxmatters/mictune/internal/calibration"
)

var testTime = time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

func newRun(id int, results ...calibration.PhaseResult) *calibration.Run {
	run := calibration.NewRun(id, testTime, calibration.Setup{DeviceName: "Yeti"})
	run.Append(results...)
	return run
}

func silence(rms float64) calibration.PhaseResult {
	return calibration.PhaseResult{Phase: calibration.SilenceBaseline, RMSDBFS: rms, PeakDBFS: rms + 12}
}

func voice(snr, peak float64) calibration.PhaseResult {
	return calibration.PhaseResult{Phase: calibration.VoiceOnly, RMSDBFS: -60 + snr, PeakDBFS: peak, SNRDB: calibration.Some(snr)}
}

func speaker(snr float64) calibration.PhaseResult {
	return calibration.PhaseResult{Phase: calibration.SpeakerOnly, RMSDBFS: -60 + snr, PeakDBFS: -30, SNRDB: calibration.Some(snr)}
}

func mixed(dominance float64) calibration.PhaseResult {
	return calibration.PhaseResult{Phase: calibration.VoiceAndSpeaker, RMSDBFS: -35, PeakDBFS: -12, Dominance: calibration.Some(dominance)}
}

func scenario() *calibration.Run {
	return newRun(4,
		silence(-60),
		voice(25, -10),
		speaker(10),
		mixed(3.0),
		calibration.PhaseResult{Phase: calibration.VoiceSpeakerMusic, RMSDBFS: -52, PeakDBFS: -40, MusicRatio: calibration.Some(0.1)},
	)
}

func ruleIDs(set Set) []string {
	ids := make([]string, 0, len(set.Advisories))
	for _, a := range set.Advisories {
		ids = append(ids, a.RuleID)
	}
	return ids
}

func TestRecommendScenario(t *testing.T) {
	set, err := Recommend(scenario(), nil)
	require.NoError(t, err)

	assert.Equal(t, []string{RuleBalanceGood}, ruleIDs(set))
	assert.False(t, set.Fired(RuleVoiceExcellent))
	assert.False(t, set.Fired(RuleSpeakerClear))
	assert.Empty(t, set.Corrective())
	assert.Equal(t, Cardioid, set.Pattern.Pattern)
	assert.Equal(t, DefaultPositioning, set.Positioning)
	assert.Equal(t, "6-12 in", set.Positioning.Distance())
	assert.Empty(t, set.Trends)
}

func TestRecommendSilenceOnly(t *testing.T) {
	set, err := Recommend(newRun(1, silence(-40)), nil)
	require.NoError(t, err)

	require.Len(t, set.Advisories, 1)
	a := set.Advisories[0]
	assert.Equal(t, RuleNoiseHigh, a.RuleID)
	assert.Equal(t, Warning, a.Severity)
	assert.Contains(t, a.Message, "Reduce input gain")
	assert.Contains(t, a.Condition, "-40.0 dBFS")
}

func TestRecommendEmptyRun(t *testing.T) {
	_, err := Recommend(newRun(9), nil)
	var invalid *calibration.InvalidRunError
	require.True(t, errors.As(err, &invalid))
	assert.Equal(t, 9, invalid.RunID)

	_, err = Recommend(nil, nil)
	assert.True(t, errors.As(err, &invalid))
}

func TestRecommendIsIdempotent(t *testing.T) {
	run := newRun(2, silence(-45), voice(12, -2), speaker(4), mixed(12))
	first, err := Recommend(run, nil)
	require.NoError(t, err)
	second, err := Recommend(run, nil)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestRules(t *testing.T) {
	tests := []struct {
		name   string
		result calibration.PhaseResult
		want   []string
	}{
		{"noise_high", silence(-45), []string{RuleNoiseHigh}},
		{"noise_boundary", silence(-50), nil},
		{"headroom", silence(-75), []string{RuleGainHeadroom}},
		{"noise_middle", silence(-60), nil},
		{"voice_quiet", voice(10, -20), []string{RuleVoiceTooQuiet}},
		{"voice_excellent", voice(45, -20), []string{RuleVoiceExcellent}},
		{"voice_clipping", voice(30, -1), []string{RuleVoiceClipping}},
		{"voice_quiet_and_clipping", voice(12, -2), []string{RuleVoiceTooQuiet, RuleVoiceClipping}},
		{"voice_peak_boundary", voice(30, -3), nil},
		{"speaker_faint", speaker(3), []string{RuleSpeakerFaint}},
		{"speaker_negative_snr", speaker(-4), []string{RuleSpeakerFaint}},
		{"speaker_clear", speaker(30), []string{RuleSpeakerClear}},
		{"speaker_ok", speaker(15), nil},
		{"not_dominant", mixed(1.2), []string{RuleNotDominant}},
		{"secondary_quiet", mixed(11), []string{RuleSecondaryTooQuiet}},
		{"balance_low_edge", mixed(2.0), []string{RuleBalanceGood}},
		{"balance_high_edge", mixed(5.0), []string{RuleBalanceGood}},
		{"dominance_gap", mixed(1.8), nil},
		{"dominance_upper_gap", mixed(7), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set, err := Recommend(newRun(1, tt.result), nil)
			require.NoError(t, err)
			got := ruleIDs(set)
			if len(tt.want) == 0 {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRulesSkipUnmeasuredMetrics(t *testing.T) {
	// Voice without a floor has no SNR; only the peak rule can fire.
	run := newRun(1, calibration.PhaseResult{Phase: calibration.VoiceOnly, RMSDBFS: -20, PeakDBFS: -1})
	set, err := Recommend(run, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{RuleVoiceClipping}, ruleIDs(set))

	run = newRun(1, calibration.PhaseResult{Phase: calibration.VoiceAndSpeaker, RMSDBFS: -30, PeakDBFS: -10})
	set, err = Recommend(run, nil)
	require.NoError(t, err)
	assert.Empty(t, set.Advisories)
}

func TestRulesUseLatestResult(t *testing.T) {
	run := newRun(1, silence(-45), silence(-60))
	set, err := Recommend(run, nil)
	require.NoError(t, err)
	assert.Empty(t, set.Advisories)
}

func TestRecommendPattern(t *testing.T) {
	tests := []struct {
		name     string
		run      *calibration.Run
		opposite bool
		want     Pattern
	}{
		{"default", scenario(), false, Cardioid},
		{"faint_speaker", newRun(1, speaker(5.9)), false, Omnidirectional},
		{"faint_speaker_beats_opposite", newRun(1, speaker(2)), true, Omnidirectional},
		{"opposite_sides", scenario(), true, Bidirectional},
		{"speaker_absent", newRun(1, silence(-60)), false, Cardioid},
		{"speaker_boundary", newRun(1, speaker(6)), false, Cardioid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.run.Setup.SourcesOpposite = tt.opposite
			set, err := Recommend(tt.run, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, set.Pattern.Pattern)
			assert.NotEmpty(t, set.Pattern.Reasoning)
			assert.NotEqual(t, Stereo, set.Pattern.Pattern)
		})
	}
}

func TestRecommendPositioning(t *testing.T) {
	tests := []struct {
		name    string
		run     *calibration.Run
		rule    string
		minInch float64
		maxInch float64
	}{
		{"clipping_wins", newRun(1, voice(12, -1), mixed(1.2)), RuleVoiceClipping, 10, 12},
		{"voice_quiet", newRun(1, voice(12, -20)), RuleVoiceTooQuiet, 6, 8},
		{"not_dominant", newRun(1, voice(30, -20), mixed(1.2)), RuleNotDominant, 6, 8},
		{"secondary_quiet", newRun(1, mixed(15)), RuleSecondaryTooQuiet, 8, 12},
		{"noise_high", newRun(1, silence(-45)), RuleNoiseHigh, 6, 10},
		{"headroom_is_default", newRun(1, silence(-80)), "", 6, 12},
		{"balance_is_default", newRun(1, mixed(3)), "", 6, 12},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set, err := Recommend(tt.run, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.rule, set.Positioning.RuleID)
			assert.Equal(t, tt.minInch, set.Positioning.MinInches)
			assert.Equal(t, tt.maxInch, set.Positioning.MaxInches)
		})
	}
}

func TestRecommendTrends(t *testing.T) {
	older := newRun(1, silence(-50), voice(18, -10))
	previous := newRun(2, silence(-58), voice(22, -10))
	current := newRun(3, silence(-62), voice(20, -10))

	set, err := Recommend(current, []*calibration.Run{older, previous, newRun(5)})
	require.NoError(t, err)

	assert.Equal(t, 2, set.PriorRunID)
	require.NotEmpty(t, set.Trends)
	regressions := set.Regressions()
	require.Len(t, regressions, 1)
	assert.Equal(t, calibration.CriterionVoiceSNR, regressions[0].Metric)

	// Trends never change the rule output.
	plain, err := Recommend(current, nil)
	require.NoError(t, err)
	assert.Equal(t, plain.Advisories, set.Advisories)
}

func TestParsePattern(t *testing.T) {
	p, err := ParsePattern("omnidirectional")
	require.NoError(t, err)
	assert.Equal(t, Omnidirectional, p)
	assert.Equal(t, "Bidirectional", Bidirectional.String())

	_, err = ParsePattern("figure-8")
	assert.Error(t, err)
}

func TestMessagesFollowRuleOrder(t *testing.T) {
	set, err := Recommend(newRun(1, mixed(12), silence(-45), voice(10, -20)), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{
		Rules[0].Message,
		Rules[2].Message,
		Rules[8].Message,
	}, set.Messages())
}
