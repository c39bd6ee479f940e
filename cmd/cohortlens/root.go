package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/cohortlens/cohortlens/internal/cohort"
	"github.com/cohortlens/cohortlens/internal/config"
	"github.com/cohortlens/cohortlens/internal/dataset"
	"github.com/cohortlens/cohortlens/internal/logging"
	"github.com/cohortlens/cohortlens/internal/report"
)

// app holds the global flag values and the config resolved from them.
type app struct {
	configPath string
	dataPath   string
	filter     string
	verbose    bool
	quiet      bool
	noColor    bool

	cfg *config.Config
}

// newRootCmd builds the command tree. Each call returns fresh flag state.
func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "cohortlens",
		Short: "Summarize weekly cohort retention",
		Long: `cohortlens reads a cohort retention heatmap and quarterly comparison
curves, filters them by signup quarter, and reports the best and worst
cohort, the average week-4 drop and the week retention stabilizes.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&a.configPath, "config", "c", "", "config file (default ./"+config.FileName+" if present)")
	pf.StringVarP(&a.dataPath, "data", "d", "", "JSON fixture to read, overrides dataset settings")
	pf.StringVarP(&a.filter, "filter", "f", "", "quarter filter: all, q1, q2, q3 or q4")
	pf.BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")
	pf.BoolVarP(&a.quiet, "quiet", "q", false, "only log warnings and errors")
	pf.BoolVar(&a.noColor, "no-color", false, "disable colored output")

	root.AddCommand(
		newSummaryCmd(a),
		newRowsCmd(a),
		newSeriesCmd(a),
		newValidateCmd(a),
		newExportCmd(a),
		newCheckCmd(a),
		newWatchCmd(a),
		newVersionCmd(),
	)
	return root
}

// setup resolves the config and configures logging and color. Precedence:
// flags, then the config file, then defaults.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}
	if a.dataPath != "" {
		cfg.Dataset.Source = config.SourceFile
		cfg.Dataset.Path = a.dataPath
	}
	if a.filter != "" {
		cfg.Filter = a.filter
	}
	a.cfg = cfg

	if err := logging.Setup(cmd.ErrOrStderr(), logging.Options{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Verbose: a.verbose,
		Quiet:   a.quiet,
	}); err != nil {
		return err
	}
	if a.noColor {
		report.SetColor(false)
	}
	slog.Debug("cli: config resolved",
		"config", a.configPath, "source", cfg.Dataset.Source, "filter", cfg.Filter)
	return nil
}

func (a *app) loadConfig() (*config.Config, error) {
	if a.configPath != "" {
		return config.Load(a.configPath)
	}
	cfg, err := config.Load(config.FileName)
	if errors.Is(err, fs.ErrNotExist) {
		return config.Default(), nil
	}
	if err == nil {
		a.configPath = config.FileName
	}
	return cfg, err
}

// filterValue returns the effective quarter filter.
func (a *app) filterValue() (cohort.Filter, error) {
	return cohort.ParseFilter(a.cfg.Filter)
}

// load reads the dataset from the configured source.
func (a *app) load(ctx context.Context) (*cohort.Data, error) {
	src, err := dataset.New(a.cfg.Dataset)
	if err != nil {
		return nil, err
	}
	return src.Load(ctx)
}

// view loads the dataset and computes the view for the effective filter.
func (a *app) view(ctx context.Context) (cohort.View, error) {
	f, err := a.filterValue()
	if err != nil {
		return cohort.View{}, err
	}
	data, err := a.load(ctx)
	if err != nil {
		return cohort.View{}, err
	}
	return cohort.Compute(data, f), nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "cohortlens %s\n", Version)
			return err
		},
	}
}

// sourceName describes the configured dataset for banners and messages.
func (a *app) sourceName() string {
	if a.cfg.Dataset.Source == config.SourceFile {
		return a.cfg.Dataset.Path
	}
	return a.cfg.Dataset.Source + " (" + a.cfg.Dataset.DSNEnv + ")"
}
