package main

import (
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/cohortlens/cohortlens/internal/cohort"
	"github.com/cohortlens/cohortlens/internal/report"
)

func newExportCmd(a *app) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write summary statistics as a Prometheus textfile",
		Long: `Compute the summary statistics for every filter and write them in the
Prometheus text format. The file is replaced atomically, so it can be read by
node_exporter's textfile collector. Without --out or export.textfile in the
config the metrics are written to stdout.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := a.load(cmd.Context())
			if err != nil {
				return err
			}
			eng := cohort.NewEngine(data, time.Now())
			if out == "" {
				out = a.cfg.Export.Textfile
			}
			return a.export(cmd, eng, out)
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "textfile path (default: export.textfile, else stdout)")
	return cmd
}

// export writes the metrics of every view of eng to path, or to stdout when
// path is empty.
func (a *app) export(cmd *cobra.Command, eng *cohort.Engine, path string) error {
	fams := report.Families(a.cfg.Export.Namespace, eng.Views(), eng.LoadedAt())
	if path == "" {
		return report.WriteTextfile(cmd.OutOrStdout(), fams)
	}
	if err := report.WriteTextfileAtomic(path, fams); err != nil {
		return err
	}
	slog.Info("export: textfile written", "path", path, "families", len(fams))
	return nil
}
