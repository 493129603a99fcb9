package calibration

import (
	"fmt"
	"math"
	"time"

	"github.com/linuxmatters/mictune/internal/audio"
	"github.com/linuxmatters/mictune/internal/metrics"
)

// Baseline carries the levels from earlier phases that later phases are
// measured against.
type Baseline struct {
	NoiseFloor Optional // silence RMS, dBFS
	VoiceRMS   Optional // voice-only RMS, dBFS
	SpeakerRMS Optional // speaker-only RMS, dBFS
	// MainsHz enables hum measurement when positive.
	MainsHz float64
}

// BaselineFrom collects the reference levels already present in a run.
func BaselineFrom(run *Run, mainsHz float64) Baseline {
	b := Baseline{MainsHz: mainsHz}
	if r, ok := run.Latest(SilenceBaseline); ok {
		b.NoiseFloor = Some(r.RMSDBFS)
	}
	if r, ok := run.Latest(VoiceOnly); ok && !r.Inferred {
		b.VoiceRMS = Some(r.RMSDBFS)
	}
	if r, ok := run.Latest(SpeakerOnly); ok {
		b.SpeakerRMS = Some(r.RMSDBFS)
	}
	return b
}

// AnalyzePhase measures a captured buffer for the given phase.
func AnalyzePhase(phase Phase, buf audio.Buffer, base Baseline, recordedAt time.Time) (PhaseResult, error) {
	if !phase.Valid() {
		return PhaseResult{}, fmt.Errorf("analyze: invalid phase %d", int(phase))
	}
	if buf.SampleRate() <= 0 {
		return PhaseResult{}, fmt.Errorf("analyze %s: %w", phase, audio.ErrInvalidSampleRate)
	}

	samples := buf.View()
	psd := metrics.ComputeSpectrum(samples, buf.SampleRate())

	res := PhaseResult{
		Phase:           phase,
		RMSDBFS:         metrics.LevelDBFS(samples),
		PeakDBFS:        metrics.PeakLevelDBFS(samples),
		SpeechBandRatio: psd.SpeechBandRatio(),
		DominantBand:    psd.DominantBand(),
		Duration:        buf.Duration(),
		RecordedAt:      recordedAt,
	}

	if floor, ok := base.NoiseFloor.Get(); ok && phase != SilenceBaseline {
		res.SNRDB = Some(metrics.SNR(res.RMSDBFS, floor))
	}

	switch phase {
	case VoiceAndSpeaker:
		if speaker, ok := base.SpeakerRMS.Get(); ok {
			res.Dominance = Some(metrics.DominanceRatio(res.RMSDBFS, speaker))
		}
	case VoiceSpeakerMusic:
		res.MusicRatio = musicRatio(res.RMSDBFS, base)
	}

	if base.MainsHz > 0 {
		res.HumRatio = Some(metrics.HumRatio(samples, buf.SampleRate(), base.MainsHz))
	}

	return res, nil
}

// musicRatio is the music level above the noise floor as a share of the
// voice level, both linear.
func musicRatio(rmsDBFS float64, base Baseline) Optional {
	voice, ok := base.VoiceRMS.Get()
	if !ok {
		return None()
	}
	voiceLin := metrics.DBFSToAmplitude(voice)
	if voiceLin == 0 {
		return None()
	}
	floorLin := 0.0
	if floor, ok := base.NoiseFloor.Get(); ok {
		floorLin = metrics.DBFSToAmplitude(floor)
	}
	contribution := math.Max(0, metrics.DBFSToAmplitude(rmsDBFS)-floorLin)
	return Some(contribution / voiceLin)
}

// DominanceStale reports whether the run needs an inferred dominance
// result: voice and speaker results exist and the latest VoiceAndSpeaker
// result is missing or was appended before either of them. A partial
// re-run of voice or speaker therefore invalidates an earlier mixed result,
// measured or inferred.
func DominanceStale(run *Run) bool {
	voice := run.latestIndex(VoiceOnly)
	speaker := run.latestIndex(SpeakerOnly)
	if voice < 0 || speaker < 0 {
		return false
	}
	return run.latestIndex(VoiceAndSpeaker) < max(voice, speaker)
}

// InferDominance derives a VoiceAndSpeaker result from the separate voice
// and speaker phases, for quick re-tests that skip the mixed recording.
// It reports false when either source phase is missing.
func InferDominance(run *Run) (PhaseResult, bool) {
	voice, ok := run.Latest(VoiceOnly)
	if !ok {
		return PhaseResult{}, false
	}
	speaker, ok := run.Latest(SpeakerOnly)
	if !ok {
		return PhaseResult{}, false
	}
	return PhaseResult{
		Phase:           VoiceAndSpeaker,
		RMSDBFS:         voice.RMSDBFS,
		PeakDBFS:        voice.PeakDBFS,
		SNRDB:           voice.SNRDB,
		Dominance:       Some(metrics.DominanceRatio(voice.RMSDBFS, speaker.RMSDBFS)),
		HumRatio:        voice.HumRatio,
		SpeechBandRatio: voice.SpeechBandRatio,
		DominantBand:    voice.DominantBand,
		Inferred:        true,
		RecordedAt:      speaker.RecordedAt,
	}, true
}
