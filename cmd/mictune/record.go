package main

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/linuxmatters/mictune/internal/calibration"
	"github.com/linuxmatters/mictune/internal/capture"
	"github.com/linuxmatters/mictune/internal/config"
	"github.com/linuxmatters/mictune/internal/history"
	"github.com/linuxmatters/mictune/internal/mains"
	"github.com/linuxmatters/mictune/internal/session"
	"github.com/linuxmatters/mictune/internal/ui"
)

// RecordCmd runs a guided session
type RecordCmd struct {
	Phases   []string `short:"p" sep:"," placeholder:"PHASE" help:"Phases to run: silence,voice,speaker,mixed,music (default all)"`
	Continue int      `placeholder:"RUN" help:"Add phases to an existing run instead of starting a new one"`
	Device   string   `short:"d" help:"ffmpeg input device (overrides config)"`
	Force    bool     `help:"Export settings even when the calibration does not pass"`
}

// Run executes the record command
func (c *RecordCmd) Run(g *Globals) error {
	cfg, err := g.loadConfig()
	if err != nil {
		return err
	}
	if c.Device != "" {
		cfg.Device.InputDevice = c.Device
	}
	phases, err := parsePhases(c.Phases)
	if err != nil {
		return err
	}

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hum := mains.Resolve(cfg.Setup.MainsHz)
	run, err := startRun(ctx, store, cfg, c.Continue, hum.Hz)
	if err != nil {
		return err
	}

	ready := make(chan struct{}, 1)
	model := ui.NewModel(cfg.Device.Name, phases, session.Preflight, ready, cancel)
	p := tea.NewProgram(model, tea.WithAltScreen())

	runner := &session.Runner{
		Recorder: capture.NewRecorder(capture.Config{
			FFmpeg:      cfg.Device.FFmpeg,
			InputFormat: cfg.Device.InputFormat,
			InputDevice: cfg.Device.InputDevice,
			SampleRate:  cfg.Device.SampleRate,
		}),
		Playback: capture.NewPlayer(cfg.Playback.Command, cfg.Playback.Args...),
		Store:    store,
		Prompter: ui.NewPrompter(p.Send, ready),
		Observe: func(e session.Event) {
			if msg := ui.FromEvent(e); msg != nil {
				p.Send(msg)
			}
		},
		Duration:      cfg.Duration,
		PlaybackFile:  cfg.PlaybackFile,
		MainsHz:       hum.Hz,
		RecordingsDir: cfg.Paths.Runs,
	}

	done := make(chan error, 1)
	go func() {
		err := runner.Run(ctx, run, phases)
		p.Send(ui.AllCompleteMsg{Error: err})
		done <- err
	}()

	if _, err := p.Run(); err != nil {
		cancel()
		return fmt.Errorf("UI error: %w", err)
	}
	cancel()
	sessionErr := <-done

	if run.Empty() {
		if sessionErr != nil {
			return sessionErr
		}
		return fmt.Errorf("no phases were recorded")
	}

	return finish(context.Background(), cfg, store, outcome{
		run:     run,
		spectra: runner.Spectra(),
		mainsHz: hum.Hz,
		force:   c.Force,
	})
}

// startRun creates and stores a new run, or loads an existing one.
func startRun(ctx context.Context, store *history.Store, cfg config.Config, existing int, mainsHz float64) (*calibration.Run, error) {
	if existing > 0 {
		return store.LoadRun(ctx, existing)
	}
	id, err := store.NextRunID(ctx)
	if err != nil {
		return nil, err
	}
	run := calibration.NewRun(id, time.Now(), calibration.Setup{
		DeviceName:      cfg.Device.Name,
		SourcesOpposite: cfg.Setup.OppositeSides,
	})
	if err := store.InsertRun(ctx, run, mainsHz); err != nil {
		return nil, fmt.Errorf("save run: %w", err)
	}
	return run, nil
}

func parsePhases(names []string) ([]calibration.Phase, error) {
	if len(names) == 0 {
		return calibration.Phases, nil
	}
	phases := make([]calibration.Phase, 0, len(names))
	for _, name := range names {
		p, err := calibration.ParsePhase(name)
		if err != nil {
			return nil, err
		}
		phases = append(phases, p)
	}
	return phases, nil
}
