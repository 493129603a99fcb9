package session

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linuxmatters/mictune/internal/audio"
	"github.com/linuxmatters/mictune/internal/calibration"
	"github.com/linuxmatters/mictune/internal/capture"
)

const rate = 8000

var sessionTime = time.Date(2026, 10, 19, 9, 30, 0, 0, time.UTC)

// fakeRecorder returns a sine whose amplitude depends on the call order.
type fakeRecorder struct {
	amplitudes []float64
	calls      int
	durations  []time.Duration
	err        map[int]error
}

func (f *fakeRecorder) Record(ctx context.Context, d time.Duration, onLevel capture.LevelFunc) (audio.Buffer, error) {
	call := f.calls
	f.calls++
	f.durations = append(f.durations, d)
	if err := f.err[call]; err != nil {
		return audio.Buffer{}, err
	}
	if err := ctx.Err(); err != nil {
		return audio.Buffer{}, err
	}
	amp := f.amplitudes[call%len(f.amplitudes)]
	samples := make([]float64, rate/2)
	for i := range samples {
		samples[i] = amp * math.Sin(2*math.Pi*440*float64(i)/rate)
	}
	if onLevel != nil {
		onLevel(-20)
		onLevel(-21)
	}
	return audio.NewBuffer(samples, rate)
}

type fakePlayback struct {
	started  []string
	stops    int
	err      error
	finished bool
}

func (f *fakePlayback) Start(path string) error {
	if f.err != nil {
		return f.err
	}
	f.started = append(f.started, path)
	return nil
}

func (f *fakePlayback) Playing() bool {
	return !f.finished
}

func (f *fakePlayback) Stop() error {
	f.stops++
	return nil
}

type fakeStore struct {
	saved []calibration.PhaseResult
}

func (f *fakeStore) AppendResults(_ context.Context, _ int, results ...calibration.PhaseResult) error {
	f.saved = append(f.saved, results...)
	return nil
}

type autoPrompt struct {
	asked  []calibration.Phase
	cancel func()
	after  int
}

func (a *autoPrompt) Ready(ctx context.Context, p calibration.Phase) error {
	a.asked = append(a.asked, p)
	if a.cancel != nil && len(a.asked) > a.after {
		a.cancel()
	}
	return ctx.Err()
}

func newRunner(rec Recorder, play Playback, store Store, prompt Prompter, events *[]Event) *Runner {
	return &Runner{
		Recorder: rec,
		Playback: play,
		Store:    store,
		Prompter: prompt,
		Observe:  func(e Event) { *events = append(*events, e) },
		PlaybackFile: func(p calibration.Phase) string {
			if p.NeedsPlayback() {
				return "/tmp/meeting.wav"
			}
			return ""
		},
		Duration: func(p calibration.Phase) time.Duration {
			if p == calibration.SilenceBaseline {
				return 2 * time.Second
			}
			return 0
		},
		Now: func() time.Time { return sessionTime },
	}
}

func TestRunAllPhases(t *testing.T) {
	rec := &fakeRecorder{amplitudes: []float64{0.001, 0.3, 0.05, 0.2, 0.01}}
	play := &fakePlayback{}
	store := &fakeStore{}
	prompt := &autoPrompt{}
	var events []Event
	r := newRunner(rec, play, store, prompt, &events)

	run := calibration.NewRun(1, sessionTime, calibration.Setup{})
	require.NoError(t, r.Run(context.Background(), run, nil))

	assert.Equal(t, calibration.Phases, prompt.asked)
	assert.Equal(t, calibration.Phases, run.Completed())
	assert.Len(t, store.saved, 5)
	assert.Equal(t, []string{"/tmp/meeting.wav", "/tmp/meeting.wav"}, play.started)
	assert.Equal(t, 2, play.stops)
	assert.Equal(t, 2*time.Second, rec.durations[0])
	assert.Equal(t, calibration.VoiceOnly.Duration(), rec.durations[1])

	voice, ok := run.Latest(calibration.VoiceOnly)
	require.True(t, ok)
	snr, ok := voice.SNRDB.Get()
	require.True(t, ok)
	assert.InDelta(t, 20*math.Log10(0.3/0.001), snr, 0.5)
	assert.Equal(t, sessionTime, voice.RecordedAt)

	mixed, ok := run.Latest(calibration.VoiceAndSpeaker)
	require.True(t, ok)
	dom, ok := mixed.Dominance.Get()
	require.True(t, ok)
	assert.InDelta(t, 4.0, dom, 0.1)
	assert.False(t, mixed.Inferred)

	assert.Len(t, r.Spectra(), 5)

	var levels, completed int
	for _, e := range events {
		switch e.Kind {
		case Level:
			levels++
		case PhaseCompleted:
			completed++
		}
	}
	assert.Equal(t, 10, levels)
	assert.Equal(t, 5, completed)
}

func TestRunSubsetInfersDominance(t *testing.T) {
	rec := &fakeRecorder{amplitudes: []float64{0.3, 0.1}}
	store := &fakeStore{}
	var events []Event
	r := newRunner(rec, &fakePlayback{}, store, &autoPrompt{}, &events)

	run := calibration.NewRun(2, sessionTime, calibration.Setup{})
	run.Append(calibration.PhaseResult{Phase: calibration.SilenceBaseline, RMSDBFS: -60, PeakDBFS: -50})

	require.NoError(t, r.Run(context.Background(), run, []calibration.Phase{calibration.VoiceOnly, calibration.SpeakerOnly}))

	mixed, ok := run.Latest(calibration.VoiceAndSpeaker)
	require.True(t, ok)
	assert.True(t, mixed.Inferred)
	dom, _ := mixed.Dominance.Get()
	assert.InDelta(t, 3.0, dom, 0.05)
	assert.Len(t, store.saved, 3)
	assert.Equal(t, DominanceInferred, events[len(events)-1].Kind)
}

func TestRunRetestReplacesInferredDominance(t *testing.T) {
	store := &fakeStore{}
	var events []Event
	run := calibration.NewRun(6, sessionTime, calibration.Setup{})
	run.Append(calibration.PhaseResult{Phase: calibration.SilenceBaseline, RMSDBFS: -60, PeakDBFS: -50})
	retest := []calibration.Phase{calibration.VoiceOnly, calibration.SpeakerOnly}

	first := newRunner(&fakeRecorder{amplitudes: []float64{0.3, 0.1}}, nil, store, &autoPrompt{}, &events)
	require.NoError(t, first.Run(context.Background(), run, retest))
	mixed, _ := run.Latest(calibration.VoiceAndSpeaker)
	dom, _ := mixed.Dominance.Get()
	assert.InDelta(t, 3.0, dom, 0.05)

	second := newRunner(&fakeRecorder{amplitudes: []float64{0.3, 0.3}}, nil, store, &autoPrompt{}, &events)
	require.NoError(t, second.Run(context.Background(), run, retest))
	mixed, _ = run.Latest(calibration.VoiceAndSpeaker)
	dom, _ = mixed.Dominance.Get()
	assert.True(t, mixed.Inferred)
	assert.InDelta(t, 1.0, dom, 0.05)

	verdict, err := calibration.Evaluate(run)
	require.NoError(t, err)
	c, _ := verdict.Get(calibration.CriterionDominance)
	assert.Equal(t, calibration.Fail, c.Status)
	assert.False(t, verdict.Passed)
}

func TestRunMeasuredMixedIsNotReplaced(t *testing.T) {
	var events []Event
	rec := &fakeRecorder{amplitudes: []float64{0.001, 0.3, 0.05, 0.2}}
	r := newRunner(rec, &fakePlayback{}, nil, &autoPrompt{}, &events)

	run := calibration.NewRun(8, sessionTime, calibration.Setup{})
	require.NoError(t, r.Run(context.Background(), run, calibration.Phases[:4]))

	mixed, _ := run.Latest(calibration.VoiceAndSpeaker)
	assert.False(t, mixed.Inferred)
	assert.Equal(t, 4, run.Len())
}

func TestRunReportsPlaybackEndingEarly(t *testing.T) {
	rec := &fakeRecorder{amplitudes: []float64{0.05}}
	play := &fakePlayback{finished: true}
	var events []Event
	r := newRunner(rec, play, nil, &autoPrompt{}, &events)

	run := calibration.NewRun(10, sessionTime, calibration.Setup{})
	require.NoError(t, r.Run(context.Background(), run, []calibration.Phase{calibration.SpeakerOnly}))

	var ended int
	for _, e := range events {
		if e.Kind == PlaybackEndedEarly {
			ended++
		}
	}
	assert.Equal(t, 1, ended)
	assert.Equal(t, 1, play.stops)
}

func TestRunPhaseFailureContinues(t *testing.T) {
	rec := &fakeRecorder{
		amplitudes: []float64{0.001, 0.3},
		err:        map[int]error{1: errors.New("device unplugged")},
	}
	var events []Event
	r := newRunner(rec, nil, nil, &autoPrompt{}, &events)

	run := calibration.NewRun(3, sessionTime, calibration.Setup{})
	err := r.Run(context.Background(), run, []calibration.Phase{
		calibration.SilenceBaseline, calibration.VoiceOnly, calibration.SpeakerOnly,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Voice Only: device unplugged")
	assert.True(t, run.Has(calibration.SilenceBaseline))
	assert.False(t, run.Has(calibration.VoiceOnly))
	assert.True(t, run.Has(calibration.SpeakerOnly))

	var failed, skipped int
	for _, e := range events {
		switch e.Kind {
		case PhaseFailed:
			failed++
		case PlaybackSkipped:
			skipped++
		}
	}
	assert.Equal(t, 1, failed)
	assert.Equal(t, 1, skipped)
}

func TestRunPlaybackFailureHaltsPhase(t *testing.T) {
	rec := &fakeRecorder{amplitudes: []float64{0.05}}
	play := &fakePlayback{err: errors.New("no such player")}
	var events []Event
	r := newRunner(rec, play, nil, &autoPrompt{}, &events)

	run := calibration.NewRun(4, sessionTime, calibration.Setup{})
	err := r.Run(context.Background(), run, []calibration.Phase{calibration.SpeakerOnly})
	require.Error(t, err)
	assert.Equal(t, 0, rec.calls)
	assert.True(t, run.Empty())
}

func TestRunCancelStopsSession(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	rec := &fakeRecorder{amplitudes: []float64{0.001}}
	prompt := &autoPrompt{cancel: cancel, after: 1}
	var events []Event
	r := newRunner(rec, nil, nil, prompt, &events)

	run := calibration.NewRun(5, sessionTime, calibration.Setup{})
	err := r.Run(ctx, run, nil)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, run.Len())
	assert.Len(t, prompt.asked, 2)
}

func TestRunSavesRecordings(t *testing.T) {
	dir := t.TempDir()
	rec := &fakeRecorder{amplitudes: []float64{0.2}}
	var events []Event
	r := newRunner(rec, nil, nil, &autoPrompt{}, &events)
	r.RecordingsDir = dir

	run := calibration.NewRun(9, sessionTime, calibration.Setup{})
	require.NoError(t, r.Run(context.Background(), run, []calibration.Phase{calibration.VoiceOnly}))

	path := filepath.Join(dir, "run-009", "phase2-voice-093000.wav")
	_, err := os.Stat(path)
	require.NoError(t, err)

	buf, _, err := audio.ReadWAVFile(path)
	require.NoError(t, err)
	assert.Equal(t, rate, buf.SampleRate())
}

func TestRunRequiresPorts(t *testing.T) {
	r := &Runner{}
	assert.Error(t, r.Run(context.Background(), calibration.NewRun(1, sessionTime, calibration.Setup{}), nil))
}

func TestInstructionsCoverEveryPhase(t *testing.T) {
	for _, p := range calibration.Phases {
		assert.NotEmpty(t, Instructions(p), p.String())
	}
}
