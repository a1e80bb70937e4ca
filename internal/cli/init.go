package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/iliyamo/booking-ledger/internal/database"
)

// NewInitCommand creates the init command.  Running it on an initialised
// ledger is a no-op.
func NewInitCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "init",
		Short:         "Create or upgrade the ledger schema",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withLedger(opts, cmd, func(ctx context.Context, l *ledger, out *OutputFormatter) error {
				version, err := database.SchemaVersion(ctx, l.db)
				if err != nil {
					return WrapExitError(ExitCommandError, "read schema version", err)
				}
				return out.Success(map[string]any{"db": opts.DB, "schema_version": version},
					fmt.Sprintf("ledger %s at schema version %d", opts.DB, version))
			})
		},
	}
}
