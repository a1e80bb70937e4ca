package cli

import (
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/iliyamo/booking-ledger/internal/utils"
)

// NewTokenCommand creates the token command, which mints API access tokens
// for a principal.
func NewTokenCommand(opts *RootOptions) *cobra.Command {
	var secret string
	var ttl time.Duration

	cmd := &cobra.Command{
		Use:   "token <principal>",
		Short: "Issue an API access token",
		Long: `Sign an HS256 access token whose subject is the principal.

The secret defaults to $JWT_SECRET and must match the server's.  The
lifetime defaults to $ACCESS_TOKEN_TTL_MIN minutes, or 60.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if secret == "" {
				secret = os.Getenv("JWT_SECRET")
			}
			if secret == "" {
				return NewExitError(ExitCommandError, "no signing secret: pass --secret or set JWT_SECRET")
			}
			tok, err := utils.NewAccessToken(secret, args[0], ttl)
			if err != nil {
				return WrapExitError(ExitCommandError, "sign token", err)
			}
			out := newFormatter(opts, cmd)
			return out.Success(map[string]any{"token": tok.Token, "expires_at": tok.Exp.Format(time.RFC3339)}, tok.Token)
		},
	}

	cmd.Flags().StringVar(&secret, "secret", "", "HMAC signing secret")
	cmd.Flags().DurationVar(&ttl, "ttl", defaultTokenTTL(), "token lifetime")
	return cmd
}

func defaultTokenTTL() time.Duration {
	if n, err := strconv.Atoi(os.Getenv("ACCESS_TOKEN_TTL_MIN")); err == nil && n > 0 {
		return time.Duration(n) * time.Minute
	}
	return time.Hour
}
