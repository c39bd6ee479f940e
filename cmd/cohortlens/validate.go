package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newValidateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the dataset for censoring, range and duplicate errors",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := a.load(cmd.Context())
			if err != nil {
				return &exitCodeError{code: ExitError, msg: fmt.Sprintf("invalid dataset %s:\n%v", a.sourceName(), err)}
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "ok: %s has %d cohorts and %d comparison weeks\n",
				a.sourceName(), len(data.Heatmap), len(data.Comparison))
			return err
		},
	}
}
