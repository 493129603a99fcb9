package calibration

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluateScenarioPasses(t *testing.T) {
	verdict, err := Evaluate(scenarioRun())
	require.NoError(t, err)

	assert.True(t, verdict.Passed)
	assert.Equal(t, 7, verdict.RunID)
	require.Len(t, verdict.Criteria, 6)
	for _, c := range verdict.Criteria {
		assert.Equal(t, Pass, c.Status, c.Name)
		assert.NotEmpty(t, c.Target, c.Name)
	}
	assert.Equal(t, 6, verdict.Count(Pass))
}

func TestEvaluateMissingSpeakerIsNotMeasured(t *testing.T) {
	verdict, err := Evaluate(without(scenarioRun(), SpeakerOnly))
	require.NoError(t, err)

	assert.False(t, verdict.Passed)
	c, ok := verdict.Get(CriterionSpeakerSNR)
	require.True(t, ok)
	assert.Equal(t, NotMeasured, c.Status)
	assert.False(t, c.Measured.Present())
	assert.Equal(t, 5, verdict.Count(Pass))
	assert.Equal(t, 0, verdict.Count(Fail))
}

func TestEvaluateFailures(t *testing.T) {
	tests := []struct {
		name      string
		criterion string
		result    PhaseResult
		want      Status
	}{
		{"noise_high", CriterionNoiseFloor, PhaseResult{Phase: SilenceBaseline, RMSDBFS: -55}, Fail},
		{"noise_ok", CriterionNoiseFloor, PhaseResult{Phase: SilenceBaseline, RMSDBFS: -55.1}, Pass},
		{"voice_snr_boundary", CriterionVoiceSNR, PhaseResult{Phase: VoiceOnly, SNRDB: Some(20), PeakDBFS: -10}, Fail},
		{"voice_snr_unmeasured", CriterionVoiceSNR, PhaseResult{Phase: VoiceOnly, PeakDBFS: -10}, NotMeasured},
		{"speaker_snr_negative", CriterionSpeakerSNR, PhaseResult{Phase: SpeakerOnly, SNRDB: Some(-2)}, Fail},
		{"dominance_low_edge", CriterionDominance, PhaseResult{Phase: VoiceAndSpeaker, Dominance: Some(2.0)}, Pass},
		{"dominance_high_edge", CriterionDominance, PhaseResult{Phase: VoiceAndSpeaker, Dominance: Some(5.0)}, Pass},
		{"dominance_over", CriterionDominance, PhaseResult{Phase: VoiceAndSpeaker, Dominance: Some(5.01)}, Fail},
		{"clipping", CriterionClipping, PhaseResult{Phase: VoiceOnly, SNRDB: Some(30), PeakDBFS: -3}, Fail},
		{"music_loud", CriterionMusicLevel, PhaseResult{Phase: VoiceSpeakerMusic, MusicRatio: Some(0.25)}, Fail},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			run := scenarioRun()
			run.Append(tt.result)

			verdict, err := Evaluate(run)
			require.NoError(t, err)

			c, ok := verdict.Get(tt.criterion)
			require.True(t, ok)
			assert.Equal(t, tt.want, c.Status)
			assert.Equal(t, tt.want == Pass, verdict.Passed)
		})
	}
}

func TestEvaluateEmptyRun(t *testing.T) {
	_, err := Evaluate(NewRun(3, testTime, Setup{}))

	var invalid *InvalidRunError
	require.True(t, errors.As(err, &invalid))
	assert.Equal(t, 3, invalid.RunID)

	_, err = Evaluate(nil)
	assert.True(t, errors.As(err, &invalid))
}

func TestStatusText(t *testing.T) {
	assert.Equal(t, "pass", Pass.String())
	assert.Equal(t, "fail", Fail.String())
	assert.Equal(t, "not measured", NotMeasured.String())
}
