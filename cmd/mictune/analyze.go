package main

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/linuxmatters/mictune/internal/audio"
	"github.com/linuxmatters/mictune/internal/calibration"
	"github.com/linuxmatters/mictune/internal/config"
	"github.com/linuxmatters/mictune/internal/history"
	"github.com/linuxmatters/mictune/internal/mains"
	"github.com/linuxmatters/mictune/internal/metrics"
)

// AnalyzeCmd builds a run from existing recordings
type AnalyzeCmd struct {
	Silence string `type:"existingfile" help:"Silence baseline recording"`
	Voice   string `type:"existingfile" help:"Voice-only recording"`
	Speaker string `type:"existingfile" help:"Speaker-only recording"`
	Mixed   string `type:"existingfile" help:"Voice plus speaker recording"`
	Music   string `type:"existingfile" help:"Voice, speaker and music recording"`

	Device        string `help:"Device name recorded with the run"`
	OppositeSides bool   `help:"Target and secondary sources are on opposite sides of the mic"`
	Save          bool   `help:"Store the run in history"`
	Out           string `type:"path" help:"Directory for reports (default under the runs directory)"`
	Force         bool   `help:"Export settings even when the calibration does not pass"`
}

type decoded struct {
	buf      audio.Buffer
	spectrum metrics.Spectrum
}

// Run executes the analyze command
func (c *AnalyzeCmd) Run(g *Globals) error {
	cfg, err := g.loadConfig()
	if err != nil {
		return err
	}

	files := map[calibration.Phase]string{}
	for p, path := range map[calibration.Phase]string{
		calibration.SilenceBaseline:   c.Silence,
		calibration.VoiceOnly:         c.Voice,
		calibration.SpeakerOnly:       c.Speaker,
		calibration.VoiceAndSpeaker:   c.Mixed,
		calibration.VoiceSpeakerMusic: c.Music,
	} {
		if path != "" {
			files[p] = path
		}
	}
	if len(files) == 0 {
		return fmt.Errorf("no recordings given: pass at least one of --silence, --voice, --speaker, --mixed, --music")
	}

	ctx := context.Background()
	buffers, err := decodeAll(ctx, files)
	if err != nil {
		return err
	}

	device := c.Device
	if device == "" {
		device = cfg.Device.Name
	}
	setup := calibration.Setup{DeviceName: device, SourcesOpposite: c.OppositeSides || cfg.Setup.OppositeSides}
	hum := mains.Resolve(cfg.Setup.MainsHz)

	var store *history.Store
	id := 1
	if c.Save {
		if store, err = openStore(cfg); err != nil {
			return err
		}
		defer store.Close()
		if id, err = store.NextRunID(ctx); err != nil {
			return err
		}
	}

	run := calibration.NewRun(id, time.Now(), setup)
	outDir := analyzeDir(cfg, c.Out, c.Save, id, run.CreatedAt)
	spectra := make(map[calibration.Phase]metrics.Spectrum, len(buffers))
	// Later phases are measured against earlier ones, so analysis runs in
	// phase order.
	for _, p := range calibration.Phases {
		d, ok := buffers[p]
		if !ok {
			continue
		}
		result, err := calibration.AnalyzePhase(p, d.buf, calibration.BaselineFrom(run, hum.Hz), run.CreatedAt)
		if err != nil {
			return fmt.Errorf("%s: %w", files[p], err)
		}
		run.Append(result)
		spectra[p] = d.spectrum
	}
	if calibration.DominanceStale(run) {
		if inferred, ok := calibration.InferDominance(run); ok {
			run.Append(inferred)
		}
	}

	if store != nil {
		if err := store.InsertRun(ctx, run, hum.Hz); err != nil {
			return fmt.Errorf("save run: %w", err)
		}
	}

	return finish(ctx, cfg, store, outcome{
		run:     run,
		spectra: spectra,
		mainsHz: hum.Hz,
		outDir:  outDir,
		force:   c.Force,
	})
}

// analyzeDir picks the report directory. Unsaved runs have no stored ID, so
// they get a timestamped directory instead of one that a recorded run owns.
func analyzeDir(cfg config.Config, out string, saved bool, id int, now time.Time) string {
	switch {
	case out != "":
		return out
	case saved:
		return runDir(cfg, id)
	default:
		return filepath.Join(cfg.Paths.Runs, "analyze-"+now.Format("20060102-150405"))
	}
}

// decodeAll reads every recording concurrently and computes its spectrum.
func decodeAll(ctx context.Context, files map[calibration.Phase]string) (map[calibration.Phase]decoded, error) {
	results := make([]decoded, len(calibration.Phases))
	g, _ := errgroup.WithContext(ctx)
	for p, path := range files {
		p, path := p, path
		g.Go(func() error {
			buf, meta, err := audio.ReadWAVFile(path)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			slog.Debug("decoded recording", "phase", p.String(), "path", path, "sample_rate", meta.SampleRate, "channels", meta.Channels)
			results[p] = decoded{buf: buf, spectrum: metrics.ComputeSpectrum(buf.View(), buf.SampleRate())}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(map[calibration.Phase]decoded, len(files))
	for p := range files {
		out[p] = results[p]
	}
	return out, nil
}
