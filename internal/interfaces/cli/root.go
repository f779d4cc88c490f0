// Package cli implements the caseclock command-line interface.  Every
// subcommand talks to a running API server through the pkg/client SDK.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/socialhomes/CaseClock/pkg/client"
)

// Build-time variables injected via ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// RootOptions holds the global CLI flags.
type RootOptions struct {
	ServerAddr string
	Output     string
	Timeout    time.Duration
}

// NewRootCommand creates the root command with global flags and all
// subcommands attached.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:     "caseclock",
		Short:   "CaseClock CLI — statutory deadline and escalation tracking for housing cases",
		Long:    "CaseClock tracks statutory repair, complaint and hazard deadlines for a\nsocial-housing caseload, evaluates SLA positions and manages escalation\npipelines.  The CLI talks to a running CaseClock API server.",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildDate),

		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&opts.ServerAddr, "server", "s", "http://localhost:8080", "API server address")
	pf.StringVarP(&opts.Output, "output", "o", "text", "output format (text, json)")
	pf.DurationVar(&opts.Timeout, "timeout", 30*time.Second, "request timeout")

	cmd.AddCommand(
		newAssessCmd(opts),
		newCountdownCmd(opts),
		newWorklistCmd(opts),
		newScanCmd(opts),
		newAdvanceCmd(opts),
	)

	return cmd
}

// Execute runs the CLI.
func Execute() error {
	return NewRootCommand().Execute()
}

// newClient builds the SDK client from the global flags.
func newClient(opts *RootOptions) *client.Client {
	return client.New(opts.ServerAddr, client.WithTimeout(opts.Timeout))
}

// printJSON writes v as indented JSON.
func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
