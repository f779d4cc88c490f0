package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newAdvanceCmd(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "advance <case-id> <stage>",
		Short: "Move a case to the next escalation stage",
		Long:  "Record a validated escalation move.  The target must be the pipeline's\nnext stage or its terminal stage; skips and regressions are rejected.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			updated, err := newClient(opts).Advance(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			if opts.Output == "json" {
				return printJSON(cmd.OutOrStdout(), updated)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s advanced to %s\n",
				updated.Reference, updated.EscalationStage)
			return nil
		},
	}
}
