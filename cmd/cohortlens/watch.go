package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/cohortlens/cohortlens/internal/cohort"
	"github.com/cohortlens/cohortlens/internal/config"
	"github.com/cohortlens/cohortlens/internal/dataset"
	"github.com/cohortlens/cohortlens/internal/report"
)

func newWatchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Re-render the view whenever the fixture changes",
		Long: `Render the filtered view, then watch the JSON fixture and render again
every time it is saved. When export.textfile is set the Prometheus textfile is
refreshed as well. A fixture that fails to load or validate is logged and the
previous data is kept. Stops on SIGINT or SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if a.cfg.Dataset.Source != config.SourceFile {
				return fmt.Errorf("watch needs the %s source, got %q", config.SourceFile, a.cfg.Dataset.Source)
			}
			f, err := a.filterValue()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			data, err := a.load(ctx)
			if err != nil {
				return err
			}
			eng := cohort.NewEngine(data, time.Now())

			refresh := func() {
				out := cmd.OutOrStdout()
				if err := report.RenderLoaded(out, a.sourceName(), eng.LoadedAt()); err != nil {
					slog.Error("watch: render failed", "err", err)
					return
				}
				if err := report.RenderView(out, eng.View(f)); err != nil {
					slog.Error("watch: render failed", "err", err)
				}
				if a.cfg.Export.Textfile == "" {
					return
				}
				if err := a.export(cmd, eng, a.cfg.Export.Textfile); err != nil {
					slog.Error("watch: export failed", "err", err)
				}
			}

			refresh()
			return dataset.Watch(ctx, a.cfg.Dataset.Path, func(d *cohort.Data) {
				eng.Swap(d, time.Now())
				refresh()
			})
		},
	}
}
