package cli

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

func newWorklistCmd(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "worklist",
		Short: "List open deadline-bearing cases, most urgent first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := newClient(opts).Worklist(cmd.Context())
			if err != nil {
				return err
			}
			if opts.Output == "json" {
				return printJSON(cmd.OutOrStdout(), items)
			}

			if len(items) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no open deadline-bearing cases")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "REFERENCE\tCATEGORY\tSTATUS\tDEADLINE\tDUE\tREMAINING")
			for _, item := range items {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
					item.Reference, item.Category, item.Status,
					item.DeadlineName, item.DueAt.Format("2006-01-02"),
					item.Remaining.Round(time.Minute))
			}
			return w.Flush()
		},
	}
}
