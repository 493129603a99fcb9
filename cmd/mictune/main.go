package main

import (
	"context"
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	"github.com/linuxmatters/mictune/internal/cli"
	"github.com/linuxmatters/mictune/internal/config"
	"github.com/linuxmatters/mictune/internal/history"
)

var (
	version = "0.1.0"
)

// Globals are flags shared by every command
type Globals struct {
	Config    string `short:"c" type:"path" help:"Path to TOML config file (optional)"`
	HistoryDB string `name:"history-db" type:"path" help:"Path to the run history database"`
	Logs      bool   `help:"Write a debug log to mictune-debug.log"`
}

type versionFlag bool

// BeforeApply prints the styled version and exits before command parsing.
func (v versionFlag) BeforeApply(app *kong.Kong) error {
	cli.PrintVersion(version)
	app.Exit(0)
	return nil
}

// CLI defines the command-line interface
type CLI struct {
	Globals

	Version versionFlag `short:"v" help:"Show version information"`

	Record  RecordCmd  `cmd:"" help:"Run a guided calibration session"`
	Analyze AnalyzeCmd `cmd:"" help:"Analyse existing phase recordings"`
	History HistoryCmd `cmd:"" help:"List stored calibration runs"`
	Compare CompareCmd `cmd:"" help:"Compare two stored runs"`
	Export  ExportCmd  `cmd:"" help:"Export reports or settings for a stored run"`
}

func main() {
	cliArgs := &CLI{}
	ctx := kong.Parse(cliArgs,
		kong.Name("mictune"),
		kong.Description("USB microphone calibration and recommendations"),
		kong.UsageOnError(),
		kong.Vars{
			"version": version,
		},
		kong.Help(cli.StyledHelpPrinter(kong.HelpOptions{Compact: true})),
	)

	closeLog, err := cli.SetupLogger(cliArgs.Logs, cli.DebugLogName)
	if err != nil {
		cli.PrintWarning(fmt.Sprintf("debug log unavailable: %v", err))
	}
	defer closeLog()

	if err := ctx.Run(&cliArgs.Globals); err != nil {
		cli.PrintError(err.Error())
		closeLog()
		os.Exit(1)
	}
}

// loadConfig reads the config file and applies global overrides.
func (g *Globals) loadConfig() (config.Config, error) {
	path := g.Config
	if path == "" {
		path = config.DefaultConfigPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}
	if g.HistoryDB != "" {
		cfg.Paths.History = g.HistoryDB
	}
	return cfg, nil
}

func openStore(cfg config.Config) (*history.Store, error) {
	store, err := history.Open(cfg.Paths.History)
	if err != nil {
		return nil, fmt.Errorf("open history %s: %w", cfg.Paths.History, err)
	}
	return store, nil
}

// latestRunID returns the newest stored run ID.
func latestRunID(ctx context.Context, store *history.Store) (int, error) {
	runs, err := store.ListRuns(ctx, 1)
	if err != nil {
		return 0, err
	}
	if len(runs) == 0 {
		return 0, fmt.Errorf("no calibration runs stored yet")
	}
	return runs[0].ID, nil
}
