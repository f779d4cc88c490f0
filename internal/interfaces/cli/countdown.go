package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCountdownCmd(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "countdown <case-id>",
		Short: "Show the time remaining to the next deadline for one case",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			projection, err := newClient(opts).Countdown(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if opts.Output == "json" {
				return printJSON(cmd.OutOrStdout(), projection)
			}

			out := cmd.OutOrStdout()
			direction := "remaining"
			if projection.Tier == "overdue" {
				direction = "overdue"
			}
			fmt.Fprintf(out, "%s: %dd %dh %dm %s (%s)\n",
				projection.DeadlineName,
				projection.Days, projection.Hours, projection.Minutes,
				direction, projection.Tier)
			fmt.Fprintf(out, "due %s, %d working days left\n",
				projection.DueAt.Format("2006-01-02 15:04"), projection.WorkingDaysLeft)
			return nil
		},
	}
}
