package cli

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/iliyamo/booking-ledger/internal/model"
)

// NewListingCommand creates the listing command group.
func NewListingCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "listing",
		Short: "Manage listings; a listing's owner operates the resource of the same id",
	}
	cmd.AddCommand(newListingCreateCommand(opts))
	cmd.AddCommand(newListingUpdateCommand(opts))
	cmd.AddCommand(newListingStatusCommand(opts))
	cmd.AddCommand(newListingGetCommand(opts))
	cmd.AddCommand(newListingListCommand(opts))
	return cmd
}

func newListingCreateCommand(opts *RootOptions) *cobra.Command {
	var owner, hash string
	cmd := &cobra.Command{
		Use:           "create <id>",
		Short:         "Register a listing",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withLedger(opts, cmd, func(ctx context.Context, l *ledger, out *OutputFormatter) error {
				li, err := l.listings.CreateListing(ctx, args[0], hash, owner)
				if err != nil {
					return out.Fail("listing create", err)
				}
				return out.Success(li, formatListing(li))
			})
		},
	}
	cmd.Flags().StringVar(&owner, "owner", "", "owning principal")
	cmd.Flags().StringVar(&hash, "hash", "", "content hash of the listing data")
	return cmd
}

func newListingUpdateCommand(opts *RootOptions) *cobra.Command {
	var owner, hash string
	cmd := &cobra.Command{
		Use:           "update <id>",
		Short:         "Replace the data hash of a listing",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withLedger(opts, cmd, func(ctx context.Context, l *ledger, out *OutputFormatter) error {
				li, err := l.listings.UpdateListing(ctx, args[0], hash, owner)
				if err != nil {
					return out.Fail("listing update", err)
				}
				return out.Success(li, formatListing(li))
			})
		},
	}
	cmd.Flags().StringVar(&owner, "owner", "", "owning principal")
	cmd.Flags().StringVar(&hash, "hash", "", "new content hash")
	return cmd
}

func newListingStatusCommand(opts *RootOptions) *cobra.Command {
	var owner string
	cmd := &cobra.Command{
		Use:           "status <id> <STATUS>",
		Short:         "Set a listing to AVAILABLE, BOOKED, MAINTENANCE or INACTIVE",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withLedger(opts, cmd, func(ctx context.Context, l *ledger, out *OutputFormatter) error {
				li, err := l.listings.UpdateListingStatus(ctx, args[0], owner, model.ListingStatus(strings.ToUpper(args[1])))
				if err != nil {
					return out.Fail("listing status", err)
				}
				return out.Success(li, formatListing(li))
			})
		},
	}
	cmd.Flags().StringVar(&owner, "owner", "", "owning principal")
	return cmd
}

func newListingGetCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "get <id>",
		Short:         "Show a listing",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withLedger(opts, cmd, func(ctx context.Context, l *ledger, out *OutputFormatter) error {
				li, err := l.listings.GetListing(ctx, args[0])
				if err != nil {
					return out.Fail("listing get", err)
				}
				return out.Success(li, formatListing(li))
			})
		},
	}
}

func newListingListCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "list",
		Short:         "List every listing",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withLedger(opts, cmd, func(ctx context.Context, l *ledger, out *OutputFormatter) error {
				list, err := l.listings.ListListings(ctx)
				if err != nil {
					return out.Fail("listing list", err)
				}
				lines := make([]string, len(list))
				for i := range list {
					lines[i] = formatListing(&list[i])
				}
				text := strings.Join(lines, "\n")
				if text == "" {
					text = "no listings"
				}
				return out.Success(list, text)
			})
		},
	}
}
