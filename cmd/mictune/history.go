package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/linuxmatters/mictune/internal/calibration"
	"github.com/linuxmatters/mictune/internal/cli"
	"github.com/linuxmatters/mictune/internal/report"
)

// HistoryCmd lists stored runs
type HistoryCmd struct {
	Limit int `short:"n" default:"10" help:"Number of runs to show (0 for all)"`
}

// Run executes the history command
func (c *HistoryCmd) Run(g *Globals) error {
	cfg, err := g.loadConfig()
	if err != nil {
		return err
	}
	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := context.Background()
	runs, err := store.ListRuns(ctx, c.Limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("No calibration runs stored yet.")
		return nil
	}

	t := report.NewMetricTable("Date", "Device", "Phases", "Passed")
	for _, sum := range runs {
		run, err := store.LoadRun(ctx, sum.ID)
		if err != nil {
			return err
		}
		passed, verdict := "-", "no results"
		if v, err := calibration.Evaluate(run); err == nil {
			passed = fmt.Sprintf("%d/%d", v.Count(calibration.Pass), len(v.Criteria))
			verdict = "FAIL"
			if v.Passed {
				verdict = "PASS"
			}
		}
		device := sum.DeviceName
		if device == "" {
			device = "-"
		}
		t.AddRow("Run "+strconv.Itoa(sum.ID),
			[]string{sum.CreatedAt.Local().Format("2006-01-02 15:04"), device, fmt.Sprintf("%d/%d", len(run.Completed()), len(calibration.Phases)), passed},
			"", verdict)
	}
	fmt.Print(t.String())
	return nil
}

// CompareCmd compares two stored runs
type CompareCmd struct {
	Current  int `arg:"" optional:"" help:"Run to assess (default latest)"`
	Previous int `arg:"" optional:"" help:"Run to compare against (default the one before)"`
}

// Run executes the compare command
func (c *CompareCmd) Run(g *Globals) error {
	cfg, err := g.loadConfig()
	if err != nil {
		return err
	}
	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := context.Background()
	currentID := c.Current
	if currentID == 0 {
		if currentID, err = latestRunID(ctx, store); err != nil {
			return err
		}
	}
	current, err := store.LoadRun(ctx, currentID)
	if err != nil {
		return err
	}

	var previous *calibration.Run
	if c.Previous > 0 {
		previous, err = store.LoadRun(ctx, c.Previous)
	} else {
		var prior []*calibration.Run
		prior, err = store.PriorRuns(ctx, currentID, 1)
		if err == nil && len(prior) == 0 {
			err = fmt.Errorf("run %d has no earlier run to compare with", currentID)
		}
		if err == nil {
			previous = prior[0]
		}
	}
	if err != nil {
		return err
	}

	deltas := calibration.Compare(current, previous)
	fmt.Printf("Run %d compared with Run %d\n\n", current.ID, previous.ID)
	if len(deltas) == 0 {
		fmt.Println("No metrics measured in both runs.")
		return nil
	}
	fmt.Print(report.ComparisonTable(deltas).String())
	if regressed := calibration.Regressions(deltas); len(regressed) > 0 {
		fmt.Println()
		cli.PrintWarning(fmt.Sprintf("%d metric(s) regressed", len(regressed)))
	}
	return nil
}

// ExportCmd writes reports or settings for a stored run
type ExportCmd struct {
	RunID    int    `arg:"" name:"run" optional:"" help:"Run to export (default latest)"`
	Out      string `type:"path" help:"Directory for reports (default under the runs directory)"`
	Settings bool   `help:"Also write the device settings file"`
	Force    bool   `help:"Write settings even when the calibration does not pass"`
}

// Run executes the export command
func (c *ExportCmd) Run(g *Globals) error {
	cfg, err := g.loadConfig()
	if err != nil {
		return err
	}
	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := context.Background()
	id := c.RunID
	if id == 0 {
		if id, err = latestRunID(ctx, store); err != nil {
			return err
		}
	}
	run, err := store.LoadRun(ctx, id)
	if err != nil {
		return err
	}
	mainsHz, err := store.MainsHz(ctx, id)
	if err != nil {
		return err
	}
	prior, err := store.PriorRuns(ctx, id, priorRunCount)
	if err != nil {
		return err
	}

	data, err := report.Build(run, prior, time.Now())
	if err != nil {
		return err
	}
	data.MainsHz = mainsHz

	dir := c.Out
	if dir == "" {
		dir = runDir(cfg, id)
	}
	files, err := report.Generate(dir, data)
	if err != nil {
		return err
	}
	cli.PrintKeyValue(os.Stdout, "Report", files.HTML)
	cli.PrintKeyValue(os.Stdout, "Markdown", files.Markdown)
	cli.PrintKeyValue(os.Stdout, "Summary", filepath.Base(files.Summary))

	if !c.Settings {
		return nil
	}
	in := calibration.SettingsInput{
		SampleRate:     cfg.Device.SampleRate,
		Channels:       cfg.Device.Channels,
		GainPercent:    cfg.Setup.GainPercent,
		Pattern:        data.Advice.Pattern.Pattern.String(),
		DistanceInches: data.Advice.Positioning.Midpoint(),
	}
	return exportSettings(cfg.Paths.Settings, run, data.Verdict, in, c.Force)
}
