package calibration

import (
	"math"
	"testing"
	"time"

	"github.com/linuxmatters/mictune/internal/audio"
)

const testRate = 48000

var testTime = time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

func sineBuffer(t *testing.T, freq, amplitude float64) audio.Buffer {
	t.Helper()
	samples := make([]float64, testRate)
	for i := range samples {
		samples[i] = amplitude * math.Sin(2.0*math.Pi*freq*float64(i)/testRate)
	}
	buf, err := audio.NewBuffer(samples, testRate)
	if err != nil {
		t.Fatalf("NewBuffer: %v", err)
	}
	return buf
}

// scenarioRun is a complete run where every criterion passes:
// floor -60, voice SNR 25 with peak -10, speaker SNR 10, dominance 3.0,
// music at 10% of voice.
func scenarioRun() *Run {
	run := NewRun(7, testTime, Setup{DeviceName: "Yeti Stereo Microphone"})
	run.Append(
		PhaseResult{Phase: SilenceBaseline, RMSDBFS: -60, PeakDBFS: -48},
		PhaseResult{Phase: VoiceOnly, RMSDBFS: -35, PeakDBFS: -10, SNRDB: Some(25)},
		PhaseResult{Phase: SpeakerOnly, RMSDBFS: -50, PeakDBFS: -38, SNRDB: Some(10)},
		PhaseResult{Phase: VoiceAndSpeaker, RMSDBFS: -40.5, PeakDBFS: -12, SNRDB: Some(19.5), Dominance: Some(3.0)},
		PhaseResult{Phase: VoiceSpeakerMusic, RMSDBFS: -52, PeakDBFS: -40, SNRDB: Some(8), MusicRatio: Some(0.1)},
	)
	return run
}

// without returns a copy of run lacking the given phases.
func without(run *Run, phases ...Phase) *Run {
	skip := make(map[Phase]bool, len(phases))
	for _, p := range phases {
		skip[p] = true
	}
	out := NewRun(run.ID, run.CreatedAt, run.Setup)
	for _, r := range run.Results() {
		if !skip[r.Phase] {
			out.Append(r)
		}
	}
	return out
}
