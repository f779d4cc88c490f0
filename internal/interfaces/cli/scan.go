package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newScanCmd(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "scan",
		Short: "Run a compliance sweep over the open caseload",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := newClient(opts).Scan(cmd.Context())
			if err != nil {
				return err
			}
			if opts.Output == "json" {
				return printJSON(cmd.OutOrStdout(), report)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "scanned %d open cases in %s\n",
				report.Total, report.FinishedAt.Sub(report.StartedAt).Round(1e6))
			fmt.Fprintf(out, "  compliant  %d\n", report.Compliant)
			fmt.Fprintf(out, "  at risk    %d\n", report.AtRisk)
			fmt.Fprintf(out, "  breached   %d\n", report.Breached)
			fmt.Fprintf(out, "  excluded   %d\n", report.Excluded)
			return nil
		},
	}
}
