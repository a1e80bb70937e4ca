package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/iliyamo/booking-ledger/internal/service"
)

// NewReviewCommand creates the review command group.
func NewReviewCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "review",
		Short: "Submit and read reviews of completed bookings",
	}
	cmd.AddCommand(newReviewSubmitCommand(opts))
	cmd.AddCommand(newReviewListCommand(opts))
	cmd.AddCommand(newReviewReputationCommand(opts))
	return cmd
}

func newReviewSubmitCommand(opts *RootOptions) *cobra.Command {
	var in service.SubmitReviewInput
	cmd := &cobra.Command{
		Use:           "submit <booking-id>",
		Short:         "Review the other party of a completed booking",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseBookingID(args[0])
			if err != nil {
				return err
			}
			in.BookingID = id
			return withLedger(opts, cmd, func(ctx context.Context, l *ledger, out *OutputFormatter) error {
				rv, err := l.reviews.Submit(ctx, in)
				if err != nil {
					return out.Fail("review submit", err)
				}
				return out.Success(rv, formatReview(rv))
			})
		},
	}
	cmd.Flags().StringVar(&in.Reviewer, "reviewer", "", "reviewing principal")
	cmd.Flags().StringVar(&in.Target, "target", "", "reviewed principal")
	cmd.Flags().IntVar(&in.Rating, "rating", 0, "rating from 1 to 5")
	cmd.Flags().StringVar(&in.Comment, "comment", "", "optional comment")
	return cmd
}

func newReviewListCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "list <principal>",
		Short:         "List reviews received by a principal",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withLedger(opts, cmd, func(ctx context.Context, l *ledger, out *OutputFormatter) error {
				list, err := l.reviews.ReviewsFor(ctx, args[0])
				if err != nil {
					return out.Fail("review list", err)
				}
				lines := make([]string, len(list))
				for i := range list {
					lines[i] = formatReview(&list[i])
				}
				text := strings.Join(lines, "\n")
				if text == "" {
					text = "no reviews"
				}
				return out.Success(list, text)
			})
		},
	}
}

func newReviewReputationCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "reputation <principal>",
		Short:         "Show the average rating of a principal, times 100",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withLedger(opts, cmd, func(ctx context.Context, l *ledger, out *OutputFormatter) error {
				score, err := l.reviews.Reputation(ctx, args[0])
				if err != nil {
					return out.Fail("review reputation", err)
				}
				return out.Success(map[string]any{"principal": args[0], "reputation": score},
					fmt.Sprintf("%s reputation=%d", args[0], score))
			})
		},
	}
}
