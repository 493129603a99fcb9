// Package session runs a guided calibration: it prompts for each phase,
// captures audio while optionally playing reference material, analyses
// the capture and persists the result.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/linuxmatters/mictune/internal/audio"
	"github.com/linuxmatters/mictune/internal/calibration"
	"github.com/linuxmatters/mictune/internal/capture"
	"github.com/linuxmatters/mictune/internal/metrics"
)

// Recorder captures a fixed duration of audio.
type Recorder interface {
	Record(ctx context.Context, d time.Duration, onLevel capture.LevelFunc) (audio.Buffer, error)
}

// Playback plays a reference file in the background.
type Playback interface {
	Start(path string) error
	Playing() bool
	Stop() error
}

// Store persists phase results as they complete.
type Store interface {
	AppendResults(ctx context.Context, runID int, results ...calibration.PhaseResult) error
}

// Prompter blocks until the user is ready for a phase.
type Prompter interface {
	Ready(ctx context.Context, p calibration.Phase) error
}

// EventKind identifies a session event.
type EventKind int

const (
	PhaseStarted EventKind = iota
	Level
	PhaseCompleted
	PhaseFailed
	PlaybackSkipped
	PlaybackEndedEarly
	DominanceInferred
)

// Event reports session progress to the view.
type Event struct {
	Kind      EventKind
	Phase     calibration.Phase
	LevelDBFS float64
	Elapsed   time.Duration
	Duration  time.Duration
	Result    calibration.PhaseResult
	Err       error
}

// Runner drives phases against a run. Recorder and Prompter are required.
type Runner struct {
	Recorder Recorder
	Playback Playback
	Store    Store
	Prompter Prompter
	Observe  func(Event)

	Duration      func(calibration.Phase) time.Duration
	PlaybackFile  func(calibration.Phase) string
	MainsHz       float64
	RecordingsDir string
	Now           func() time.Time

	mu      sync.Mutex
	spectra map[calibration.Phase]metrics.Spectrum
}

// Spectra returns the spectrum of the latest capture of each phase.
func (r *Runner) Spectra() map[calibration.Phase]metrics.Spectrum {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[calibration.Phase]metrics.Spectrum, len(r.spectra))
	for p, s := range r.spectra {
		out[p] = s
	}
	return out
}

// Run executes phases in order. A failing phase is reported and skipped;
// the remaining phases still run. Cancelling ctx stops the session.
// When the latest mixed result is missing or older than the latest voice
// or speaker result, an inferred dominance result is added.
func (r *Runner) Run(ctx context.Context, run *calibration.Run, phases []calibration.Phase) error {
	if r.Recorder == nil || r.Prompter == nil {
		return errors.New("session needs a recorder and a prompter")
	}
	if run == nil {
		return errors.New("session needs a run")
	}
	if len(phases) == 0 {
		phases = calibration.Phases
	}

	var errs []error
	for _, p := range phases {
		if err := ctx.Err(); err != nil {
			return err
		}
		result, err := r.runPhase(ctx, run, p)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			slog.Warn("phase failed", "component", "session", "phase", p.String(), "error", err)
			r.emit(Event{Kind: PhaseFailed, Phase: p, Err: err})
			errs = append(errs, fmt.Errorf("%s: %w", p.Title(), err))
			continue
		}
		r.emit(Event{Kind: PhaseCompleted, Phase: p, Result: result})
	}

	if calibration.DominanceStale(run) {
		if inferred, ok := calibration.InferDominance(run); ok {
			if err := r.commit(ctx, run, inferred); err != nil {
				errs = append(errs, err)
			} else {
				r.emit(Event{Kind: DominanceInferred, Phase: calibration.VoiceAndSpeaker, Result: inferred})
			}
		}
	}
	return errors.Join(errs...)
}

func (r *Runner) runPhase(ctx context.Context, run *calibration.Run, p calibration.Phase) (calibration.PhaseResult, error) {
	if err := r.Prompter.Ready(ctx, p); err != nil {
		return calibration.PhaseResult{}, err
	}

	d := r.duration(p)
	r.emit(Event{Kind: PhaseStarted, Phase: p, Duration: d})

	playing, err := r.startPlayback(p)
	if err != nil {
		return calibration.PhaseResult{}, err
	}

	var elapsed time.Duration
	buf, recErr := r.Recorder.Record(ctx, d, func(dbfs float64) {
		elapsed += capture.LevelInterval
		r.emit(Event{Kind: Level, Phase: p, LevelDBFS: dbfs, Elapsed: elapsed, Duration: d})
	})
	if playing {
		if recErr == nil && !r.Playback.Playing() {
			slog.Warn("playback ended before recording", "component", "session", "phase", p.String())
			r.emit(Event{Kind: PlaybackEndedEarly, Phase: p})
		}
		if err := r.Playback.Stop(); err != nil {
			slog.Warn("playback stop failed", "component", "session", "error", err)
		}
	}
	if recErr != nil {
		return calibration.PhaseResult{}, recErr
	}

	r.saveRecording(run, p, buf)

	base := calibration.BaselineFrom(run, r.MainsHz)
	result, err := calibration.AnalyzePhase(p, buf, base, r.now())
	if err != nil {
		return calibration.PhaseResult{}, err
	}

	r.mu.Lock()
	if r.spectra == nil {
		r.spectra = make(map[calibration.Phase]metrics.Spectrum)
	}
	r.spectra[p] = metrics.ComputeSpectrum(buf.View(), buf.SampleRate())
	r.mu.Unlock()

	if err := r.commit(ctx, run, result); err != nil {
		return calibration.PhaseResult{}, err
	}
	return result, nil
}

// startPlayback reports whether playback was started. A phase without a
// configured file records the room only.
func (r *Runner) startPlayback(p calibration.Phase) (bool, error) {
	if r.Playback == nil || r.PlaybackFile == nil {
		if p.NeedsPlayback() {
			r.emit(Event{Kind: PlaybackSkipped, Phase: p})
		}
		return false, nil
	}
	path := r.PlaybackFile(p)
	if path == "" {
		if p.NeedsPlayback() {
			r.emit(Event{Kind: PlaybackSkipped, Phase: p})
		}
		return false, nil
	}
	if err := r.Playback.Start(path); err != nil {
		return false, fmt.Errorf("start playback: %w", err)
	}
	return true, nil
}

func (r *Runner) commit(ctx context.Context, run *calibration.Run, result calibration.PhaseResult) error {
	if r.Store != nil {
		if err := r.Store.AppendResults(ctx, run.ID, result); err != nil {
			return fmt.Errorf("save %s result: %w", result.Phase, err)
		}
	}
	run.Append(result)
	return nil
}

func (r *Runner) saveRecording(run *calibration.Run, p calibration.Phase, buf audio.Buffer) {
	if r.RecordingsDir == "" {
		return
	}
	dir := filepath.Join(r.RecordingsDir, fmt.Sprintf("run-%03d", run.ID))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		slog.Warn("recording dir", "component", "session", "error", err)
		return
	}
	name := fmt.Sprintf("phase%d-%s-%s.wav", int(p)+1, p, r.now().Format("150405"))
	if err := audio.WriteWAVFile(filepath.Join(dir, name), buf); err != nil {
		slog.Warn("save recording", "component", "session", "error", err)
	}
}

func (r *Runner) duration(p calibration.Phase) time.Duration {
	if r.Duration != nil {
		if d := r.Duration(p); d > 0 {
			return d
		}
	}
	return p.Duration()
}

func (r *Runner) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

func (r *Runner) emit(e Event) {
	if r.Observe != nil {
		r.Observe(e)
	}
}
