// Command token mints dashboard access tokens for operators and kiosks when
// AUTH_ENABLED is set on the API.
package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/lorrc/fleet-dashboard-backend/internal/auth"
	"github.com/lorrc/fleet-dashboard-backend/internal/config"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		subject string
		role    string
		ttl     time.Duration
		secret  string
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a signed dashboard access token",
		Long: `Mints an HS256 token accepted by the API and the /ws endpoint.
The signing secret defaults to JWT_SECRET.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if secret == "" {
				secret = config.FromEnv().JWT.Secret
			}
			if secret == "" {
				return errors.New("no signing secret: set JWT_SECRET or pass --secret")
			}
			if ttl == 0 {
				ttl = config.FromEnv().JWT.AccessTokenTTL
			}

			token, err := auth.NewTokenManager(secret, ttl).GenerateToken(subject, role)
			if err != nil {
				return fmt.Errorf("mint token: %w", err)
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
			return err
		},
	}

	cmd.Flags().StringVar(&subject, "subject", "", "token subject, e.g. an operator or kiosk name")
	cmd.Flags().StringVar(&role, "role", "viewer", "role claim")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "token lifetime (default JWT_ACCESS_TOKEN_TTL)")
	cmd.Flags().StringVar(&secret, "secret", "", "signing secret (default JWT_SECRET)")
	_ = cmd.MarkFlagRequired("subject")

	return cmd
}
