package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/cohortlens/cohortlens/internal/cohort"
	"github.com/cohortlens/cohortlens/internal/report"
	"github.com/cohortlens/cohortlens/internal/rules"
)

func newCheckCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Evaluate the configured rules against every filter",
		Long: `Evaluate each rule in the config file against the summary statistics of
every filter (or the rule's own filter). Exits with status 2 when a critical
rule fires.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := a.load(cmd.Context())
			if err != nil {
				return err
			}
			views := cohort.NewEngine(data, time.Now()).Views()
			results := rules.Evaluate(a.cfg.Rules, views)

			if asJSON {
				if results == nil {
					results = []rules.Result{}
				}
				err = report.WriteJSON(cmd.OutOrStdout(), results)
			} else {
				err = report.RenderResults(cmd.OutOrStdout(), results)
			}
			if err != nil {
				return err
			}
			if rules.HasCritical(results) {
				return &exitCodeError{
					code: ExitRulesFailed,
					msg:  fmt.Sprintf("cohortlens: %d rule(s) fired, at least one critical", len(results)),
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "write JSON instead of text")
	return cmd
}
