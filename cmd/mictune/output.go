package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/linuxmatters/mictune/internal/calibration"
	"github.com/linuxmatters/mictune/internal/cli"
	"github.com/linuxmatters/mictune/internal/config"
	"github.com/linuxmatters/mictune/internal/history"
	"github.com/linuxmatters/mictune/internal/metrics"
	"github.com/linuxmatters/mictune/internal/report"
)

// priorRunCount bounds how much history feeds the trend comparison.
const priorRunCount = 5

// outcome collects what the record and analyze commands hand to finish.
type outcome struct {
	run     *calibration.Run
	spectra map[calibration.Phase]metrics.Spectrum
	mainsHz float64
	outDir  string
	force   bool
}

func runDir(cfg config.Config, id int) string {
	return filepath.Join(cfg.Paths.Runs, fmt.Sprintf("run-%03d", id))
}

// finish evaluates a run, writes its reports and prints the summary. The
// settings file is written when the run passes, or always with force.
func finish(ctx context.Context, cfg config.Config, store *history.Store, o outcome) error {
	var prior []*calibration.Run
	if store != nil {
		var err error
		prior, err = store.PriorRuns(ctx, o.run.ID, priorRunCount)
		if err != nil {
			return fmt.Errorf("load prior runs: %w", err)
		}
	}

	data, err := report.Build(o.run, prior, time.Now())
	if err != nil {
		return err
	}
	data.Spectra = o.spectra
	data.MainsHz = o.mainsHz

	report.WriteText(os.Stdout, data)
	fmt.Println()

	dir := o.outDir
	if dir == "" {
		dir = runDir(cfg, o.run.ID)
	}
	files, err := report.Generate(dir, data)
	if err != nil {
		return err
	}
	cli.PrintKeyValue(os.Stdout, "Report", files.HTML)
	cli.PrintKeyValue(os.Stdout, "Summary", files.Summary)

	cli.PrintVerdict(os.Stdout, data.Verdict.Passed, len(data.Verdict.Criteria)-data.Verdict.Count(calibration.Pass))
	for _, d := range data.Advice.Regressions() {
		cli.PrintWarning(fmt.Sprintf("%s regressed since run %d", d.Metric, data.Advice.PriorRunID))
	}

	in := calibration.SettingsInput{
		SampleRate:     cfg.Device.SampleRate,
		Channels:       cfg.Device.Channels,
		GainPercent:    cfg.Setup.GainPercent,
		Pattern:        data.Advice.Pattern.Pattern.String(),
		DistanceInches: data.Advice.Positioning.Midpoint(),
	}
	return exportSettings(cfg.Paths.Settings, o.run, data.Verdict, in, o.force)
}

func exportSettings(path string, run *calibration.Run, verdict calibration.Verdict, in calibration.SettingsInput, force bool) error {
	settings, err := calibration.NewSettings(run, verdict, in, time.Now())
	if errors.Is(err, calibration.ErrNotCalibrated) {
		if !force {
			cli.PrintWarning("settings not exported: calibration did not pass (use --force to export anyway)")
			return nil
		}
		settings, err = calibration.DraftSettings(run, in, time.Now())
	}
	if err != nil {
		return err
	}
	if prev, err := config.ReadSettings(path); err == nil && prev.RunID != settings.RunID {
		cli.PrintKeyValue(os.Stdout, "Replacing", fmt.Sprintf("settings from run %d (%s)", prev.RunID, prev.CalibratedAt.Local().Format("2006-01-02")))
	}
	if err := config.WriteSettings(path, settings); err != nil {
		return err
	}
	slog.Info("settings exported", "path", path, "run", run.ID, "forced", !verdict.Passed)
	cli.PrintKeyValue(os.Stdout, "Settings", path)
	return nil
}
