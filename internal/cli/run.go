package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// NewRunCommand creates the run command.
func NewRunCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "run <scenario.yaml>",
		Short: "Replay a scripted scenario against the ledger",
		Long: `Run the steps of a scenario file against the ledger named by --db and
compare every outcome with the step's expectation.  The scenario's clock
pins the time stamped on records.

Exit codes:
  0 - Every step behaved as expected
  1 - One or more steps did not
  2 - Command error (unreadable scenario, database error)

Examples:
  ledgerctl --db /tmp/demo.db run testdata/scenarios/lifecycle.yaml`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := LoadScenario(args[0])
			if err != nil {
				return WrapExitError(ExitCommandError, "load scenario", err)
			}
			out := newFormatter(opts, cmd)
			out.VerboseLog("running %s (%d steps) against %s", sc.Name, len(sc.Steps), opts.DB)

			res, err := RunScenario(cmd.Context(), opts.DB, sc)
			if err != nil {
				return WrapExitError(ExitCommandError, "run scenario", err)
			}
			if err := out.Success(res, strings.TrimSuffix(res.Transcript(), "\n")); err != nil {
				return err
			}
			if res.Failed > 0 {
				return NewExitError(ExitFailure, fmt.Sprintf("%d of %d steps failed", res.Failed, len(res.Steps)))
			}
			return nil
		},
	}
}
