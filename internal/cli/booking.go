package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/iliyamo/booking-ledger/internal/model"
	"github.com/iliyamo/booking-ledger/internal/service"
)

func parseBookingID(arg string) (uint64, error) {
	id, err := strconv.ParseUint(arg, 10, 64)
	if err != nil {
		return 0, NewExitError(ExitCommandError, fmt.Sprintf("invalid booking id %q", arg))
	}
	return id, nil
}

// NewBookCommand creates the book command.
func NewBookCommand(opts *RootOptions) *cobra.Command {
	var in service.CreateBookingInput
	var price string

	cmd := &cobra.Command{
		Use:   "book",
		Short: "Reserve a resource for an interval",
		Long: `Create a PENDING reservation of [start, end) on a resource.

Times are epoch seconds and the price is an integer amount in the
smallest currency unit.

Examples:
  ledgerctl book --resource villa --requester alice --start 1704067200 --end 1704153600 --price 1000000000`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := model.ParseAmount(price)
			if err != nil {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid price %q", price))
			}
			in.TotalPrice = amount
			return withLedger(opts, cmd, func(ctx context.Context, l *ledger, out *OutputFormatter) error {
				id, err := l.bookings.Create(ctx, in)
				if err != nil {
					return out.Fail("book", err)
				}
				return out.Success(map[string]any{"id": id}, fmt.Sprintf("booked %d", id))
			})
		},
	}

	cmd.Flags().StringVar(&in.ResourceID, "resource", "", "resource id")
	cmd.Flags().StringVar(&in.RequesterID, "requester", "", "requesting principal")
	cmd.Flags().Uint64Var(&in.Start, "start", 0, "interval start (epoch seconds)")
	cmd.Flags().Uint64Var(&in.End, "end", 0, "interval end, exclusive (epoch seconds)")
	cmd.Flags().StringVar(&price, "price", "", "total price")
	return cmd
}

// NewGetCommand creates the get command.
func NewGetCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "get <id>",
		Short:         "Show a reservation",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseBookingID(args[0])
			if err != nil {
				return err
			}
			return withLedger(opts, cmd, func(ctx context.Context, l *ledger, out *OutputFormatter) error {
				res, err := l.bookings.Get(ctx, id)
				if err != nil {
					return out.Fail("get", err)
				}
				return out.Success(res, formatReservation(res))
			})
		},
	}
}

// NewListCommand creates the list command.
func NewListCommand(opts *RootOptions) *cobra.Command {
	var resource, requester string

	cmd := &cobra.Command{
		Use:           "list",
		Short:         "List reservations of a resource or a requester",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if (resource == "") == (requester == "") {
				return NewExitError(ExitCommandError, "exactly one of --resource or --requester is required")
			}
			return withLedger(opts, cmd, func(ctx context.Context, l *ledger, out *OutputFormatter) error {
				var list []model.Reservation
				var err error
				if resource != "" {
					list, err = l.bookings.ListByResource(ctx, resource)
				} else {
					list, err = l.bookings.ListByRequester(ctx, requester)
				}
				if err != nil {
					return out.Fail("list", err)
				}
				lines := make([]string, len(list))
				for i := range list {
					lines[i] = formatReservation(&list[i])
				}
				text := strings.Join(lines, "\n")
				if text == "" {
					text = "no reservations"
				}
				return out.Success(list, text)
			})
		},
	}

	cmd.Flags().StringVar(&resource, "resource", "", "list by resource")
	cmd.Flags().StringVar(&requester, "requester", "", "list by requester")
	return cmd
}

// NewAvailCommand creates the avail command.
func NewAvailCommand(opts *RootOptions) *cobra.Command {
	var resource string
	var start, end uint64

	cmd := &cobra.Command{
		Use:           "avail",
		Short:         "Check whether an interval is free",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withLedger(opts, cmd, func(ctx context.Context, l *ledger, out *OutputFormatter) error {
				free, err := l.bookings.CheckAvailability(ctx, resource, start, end)
				if err != nil {
					return out.Fail("avail", err)
				}
				text := "available"
				if !free {
					text = "unavailable"
				}
				return out.Success(map[string]any{"resource_id": resource, "start": start, "end": end, "available": free}, text)
			})
		},
	}

	cmd.Flags().StringVar(&resource, "resource", "", "resource id")
	cmd.Flags().Uint64Var(&start, "start", 0, "interval start (epoch seconds)")
	cmd.Flags().Uint64Var(&end, "end", 0, "interval end, exclusive (epoch seconds)")
	return cmd
}

// NewCancelCommand creates the cancel command.
func NewCancelCommand(opts *RootOptions) *cobra.Command {
	var requester string

	cmd := &cobra.Command{
		Use:           "cancel <id>",
		Short:         "Cancel a reservation as its requester",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseBookingID(args[0])
			if err != nil {
				return err
			}
			return withLedger(opts, cmd, func(ctx context.Context, l *ledger, out *OutputFormatter) error {
				if _, err := l.bookings.Cancel(ctx, id, requester); err != nil {
					return out.Fail("cancel", err)
				}
				return out.Success(map[string]any{"id": id, "status": model.StatusCancelled}, fmt.Sprintf("cancelled %d", id))
			})
		},
	}

	cmd.Flags().StringVar(&requester, "requester", "", "principal cancelling the reservation")
	return cmd
}

// NewStatusCommand creates the status command.
func NewStatusCommand(opts *RootOptions) *cobra.Command {
	var actor string

	cmd := &cobra.Command{
		Use:   "status <id> <STATUS>",
		Short: "Move a reservation to a new status as the resource operator",
		Long: `Move a reservation along PENDING -> CONFIRMED -> COMPLETED, or cancel
it from PENDING or CONFIRMED.  The actor must own the listing of the
booked resource and must not be the requester.`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseBookingID(args[0])
			if err != nil {
				return err
			}
			next, err := model.ParseStatus(args[1])
			if err != nil {
				return WrapExitError(ExitCommandError, "status", err)
			}
			return withLedger(opts, cmd, func(ctx context.Context, l *ledger, out *OutputFormatter) error {
				res, err := l.bookings.UpdateStatus(ctx, id, next, actor)
				if err != nil {
					return out.Fail("status", err)
				}
				return out.Success(res, formatReservation(res))
			})
		},
	}

	cmd.Flags().StringVar(&actor, "actor", "", "operator principal")
	return cmd
}

// NewEscrowCommand creates the escrow command.
func NewEscrowCommand(opts *RootOptions) *cobra.Command {
	var ref, contract string

	cmd := &cobra.Command{
		Use:           "escrow <id>",
		Short:         "Attach an escrow reference to a reservation",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseBookingID(args[0])
			if err != nil {
				return err
			}
			return withLedger(opts, cmd, func(ctx context.Context, l *ledger, out *OutputFormatter) error {
				if _, err := l.bookings.SetEscrow(ctx, id, ref, contract); err != nil {
					return out.Fail("escrow", err)
				}
				return out.Success(map[string]any{"id": id, "escrow_ref": ref, "contract_ref": contract},
					fmt.Sprintf("booking %d escrow=%s", id, ref))
			})
		},
	}

	cmd.Flags().StringVar(&ref, "ref", "", "escrow reference")
	cmd.Flags().StringVar(&contract, "contract", "", "escrow contract reference")
	return cmd
}
