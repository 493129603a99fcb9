package calibration

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linuxmatters/mictune/internal/audio"
	"github.com/linuxmatters/mictune/internal/metrics"
)

func TestAnalyzePhaseSilenceHasNoSNR(t *testing.T) {
	silent, err := audio.NewBuffer(make([]float64, testRate), testRate)
	require.NoError(t, err)

	res, err := AnalyzePhase(SilenceBaseline, silent, Baseline{NoiseFloor: Some(-60)}, testTime)
	require.NoError(t, err)

	assert.Equal(t, metrics.FloorDBFS, res.RMSDBFS)
	assert.Equal(t, metrics.FloorDBFS, res.PeakDBFS)
	assert.False(t, res.SNRDB.Present())
	assert.False(t, res.Dominance.Present())
	assert.False(t, res.HumRatio.Present())
	assert.Equal(t, 0.0, res.SpeechBandRatio)
	assert.Equal(t, testTime, res.RecordedAt)
}

func TestAnalyzePhaseVoice(t *testing.T) {
	buf := sineBuffer(t, 1000, 0.1)

	res, err := AnalyzePhase(VoiceOnly, buf, Baseline{NoiseFloor: Some(-60)}, testTime)
	require.NoError(t, err)

	assert.InDelta(t, -23.01, res.RMSDBFS, 0.05)
	assert.InDelta(t, -20.0, res.PeakDBFS, 0.05)
	snr, ok := res.SNRDB.Get()
	require.True(t, ok)
	assert.InDelta(t, 36.99, snr, 0.05)
	assert.Greater(t, res.SpeechBandRatio, 0.95)
	assert.Equal(t, "Mid", res.DominantBand.Name)
	assert.Equal(t, buf.Duration(), res.Duration)
}

func TestAnalyzePhaseWithoutFloorLeavesSNRUnmeasured(t *testing.T) {
	res, err := AnalyzePhase(VoiceOnly, sineBuffer(t, 1000, 0.1), Baseline{}, testTime)
	require.NoError(t, err)
	assert.False(t, res.SNRDB.Present())
}

func TestAnalyzePhaseDominance(t *testing.T) {
	speaker := sineBuffer(t, 440, 0.1)
	mixed := sineBuffer(t, 440, 0.3)

	base := Baseline{NoiseFloor: Some(-60), SpeakerRMS: Some(metrics.LevelDBFS(speaker.View()))}
	res, err := AnalyzePhase(VoiceAndSpeaker, mixed, base, testTime)
	require.NoError(t, err)

	dom, ok := res.Dominance.Get()
	require.True(t, ok)
	assert.InDelta(t, 3.0, dom, 0.01)

	res, err = AnalyzePhase(VoiceAndSpeaker, mixed, Baseline{}, testTime)
	require.NoError(t, err)
	assert.False(t, res.Dominance.Present())
}

func TestAnalyzePhaseMusicRatio(t *testing.T) {
	voice := sineBuffer(t, 1000, 0.1)
	music := sineBuffer(t, 200, 0.02)

	base := Baseline{
		NoiseFloor: Some(-60),
		VoiceRMS:   Some(metrics.LevelDBFS(voice.View())),
	}
	res, err := AnalyzePhase(VoiceSpeakerMusic, music, base, testTime)
	require.NoError(t, err)

	want := (metrics.RMS(music.View()) - metrics.DBFSToAmplitude(-60)) / metrics.RMS(voice.View())
	got, ok := res.MusicRatio.Get()
	require.True(t, ok)
	assert.InDelta(t, want, got, 1e-6)
	assert.Less(t, got, MusicRatioMax)
}

func TestAnalyzePhaseMusicBelowFloor(t *testing.T) {
	quiet := sineBuffer(t, 200, 0.0001)
	base := Baseline{NoiseFloor: Some(-40), VoiceRMS: Some(-20)}

	res, err := AnalyzePhase(VoiceSpeakerMusic, quiet, base, testTime)
	require.NoError(t, err)
	assert.Equal(t, Some(0), res.MusicRatio)

	res, err = AnalyzePhase(VoiceSpeakerMusic, quiet, Baseline{NoiseFloor: Some(-40)}, testTime)
	require.NoError(t, err)
	assert.False(t, res.MusicRatio.Present())
}

func TestAnalyzePhaseHum(t *testing.T) {
	hum := sineBuffer(t, 50, 0.05)

	res, err := AnalyzePhase(SilenceBaseline, hum, Baseline{MainsHz: 50}, testTime)
	require.NoError(t, err)

	ratio, ok := res.HumRatio.Get()
	require.True(t, ok)
	assert.Greater(t, ratio, 0.9)
}

func TestAnalyzePhaseRejectsBadInput(t *testing.T) {
	_, err := AnalyzePhase(Phase(9), sineBuffer(t, 1000, 0.1), Baseline{}, testTime)
	assert.Error(t, err)

	_, err = AnalyzePhase(VoiceOnly, audio.Buffer{}, Baseline{}, testTime)
	assert.ErrorIs(t, err, audio.ErrInvalidSampleRate)
}

func TestBaselineFrom(t *testing.T) {
	base := BaselineFrom(scenarioRun(), 60)
	assert.Equal(t, Some(-60), base.NoiseFloor)
	assert.Equal(t, Some(-35), base.VoiceRMS)
	assert.Equal(t, Some(-50), base.SpeakerRMS)
	assert.Equal(t, 60.0, base.MainsHz)

	empty := BaselineFrom(NewRun(1, testTime, Setup{}), 0)
	assert.False(t, empty.NoiseFloor.Present())
}

func TestInferDominance(t *testing.T) {
	run := without(scenarioRun(), VoiceAndSpeaker)

	res, ok := InferDominance(run)
	require.True(t, ok)
	assert.True(t, res.Inferred)
	assert.Equal(t, VoiceAndSpeaker, res.Phase)
	assert.Equal(t, -35.0, res.RMSDBFS)

	dom, ok := res.Dominance.Get()
	require.True(t, ok)
	// 15 dB difference
	assert.InDelta(t, 5.623, dom, 0.001)

	_, ok = InferDominance(without(run, SpeakerOnly))
	assert.False(t, ok)
}

func TestDominanceStale(t *testing.T) {
	full := scenarioRun()
	assert.False(t, DominanceStale(full), "mixed recorded after voice and speaker")

	assert.True(t, DominanceStale(without(full, VoiceAndSpeaker)))
	assert.False(t, DominanceStale(without(full, VoiceAndSpeaker, SpeakerOnly)))

	// A voice re-test after the mixed phase makes the stored dominance stale.
	retest := scenarioRun()
	retest.Append(PhaseResult{Phase: VoiceOnly, RMSDBFS: -50, PeakDBFS: -30, SNRDB: Some(10)})
	assert.True(t, DominanceStale(retest))

	inferred, ok := InferDominance(retest)
	require.True(t, ok)
	retest.Append(inferred)
	assert.False(t, DominanceStale(retest))

	verdict, err := Evaluate(retest)
	require.NoError(t, err)
	dom, _ := verdict.Get(CriterionDominance)
	assert.Equal(t, Fail, dom.Status)
}
