package main

import (
	"github.com/spf13/cobra"

	"github.com/cohortlens/cohortlens/internal/cohort"
	"github.com/cohortlens/cohortlens/internal/report"
)

// summaryOutput is the --json shape of `cohortlens summary`.
type summaryOutput struct {
	Filter  cohort.Filter         `json:"filter"`
	Label   string                `json:"label"`
	Summary [4]cohort.SummaryStat `json:"summary"`
	Stats   cohort.Stats          `json:"stats"`
}

func newSummaryCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print the four summary cards for the filtered cohorts",
		Long: `Print the best and worst cohort, the average week-4 drop and the
stabilization week for the cohorts selected by --filter.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			v, err := a.view(cmd.Context())
			if err != nil {
				return err
			}
			if asJSON {
				return report.WriteJSON(cmd.OutOrStdout(), summaryOutput{
					Filter: v.Filter, Label: v.Label, Summary: v.Summary, Stats: v.Stats,
				})
			}
			return report.RenderSummary(cmd.OutOrStdout(), v)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "write JSON instead of text")
	return cmd
}

func newRowsCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "rows",
		Short: "Print the heatmap rows for the filtered cohorts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			v, err := a.view(cmd.Context())
			if err != nil {
				return err
			}
			if asJSON {
				return report.WriteJSON(cmd.OutOrStdout(), v.Rows)
			}
			return report.RenderRows(cmd.OutOrStdout(), v.Rows)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "write JSON instead of text")
	return cmd
}

func newSeriesCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "series",
		Short: "Print the quarterly comparison curves",
		Long: `Print week-by-week retention for every quarter, or only for the
quarter selected by --filter.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			v, err := a.view(cmd.Context())
			if err != nil {
				return err
			}
			if asJSON {
				return report.WriteJSON(cmd.OutOrStdout(), v.Series)
			}
			return report.RenderSeries(cmd.OutOrStdout(), v.Series)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "write JSON instead of text")
	return cmd
}
