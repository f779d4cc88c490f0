package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/socialhomes/CaseClock/pkg/client"
)

func newAssessCmd(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "assess <case-id>",
		Short: "Show the full deadline assessment for one case",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			assessment, err := newClient(opts).Assessment(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if opts.Output == "json" {
				return printJSON(cmd.OutOrStdout(), assessment)
			}
			printAssessment(cmd, assessment)
			return nil
		},
	}
}

func printAssessment(cmd *cobra.Command, a *client.Assessment) {
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "Case      %s (%s)\n", a.Reference, a.CaseID)
	fmt.Fprintf(out, "Category  %s", a.Category)
	if a.Classifier != "" {
		fmt.Fprintf(out, " / %s", a.Classifier)
	}
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Status    %s (level %d)", a.Status, a.Level)
	if a.Frozen {
		fmt.Fprint(out, " [completed]")
	}
	fmt.Fprintln(out)

	if a.Stage != "" {
		fmt.Fprintf(out, "Stage     %s", a.Stage)
		if a.StageStale {
			fmt.Fprint(out, " (stale)")
		}
		fmt.Fprintln(out)
	}

	if len(a.Deadlines) > 0 {
		fmt.Fprintln(out, "\nDeadlines:")
		for _, d := range a.Deadlines {
			fmt.Fprintf(out, "  %-14s due %s  %s\n",
				d.Deadline.Name, d.Deadline.DueAt.Format("2006-01-02 15:04"), d.Status)
		}
	}
	if len(a.RiskFactors) > 0 {
		fmt.Fprintf(out, "\nRisk factors:\n  %s\n", strings.Join(a.RiskFactors, "\n  "))
	}
	if len(a.RequiredActions) > 0 {
		fmt.Fprintf(out, "\nRequired actions:\n  %s\n", strings.Join(a.RequiredActions, "\n  "))
	}
}
