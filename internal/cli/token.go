package cli

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"quiz-rest-service/internal/config"
	"quiz-rest-service/internal/infra/authapi"
)

// NewTokenCmd mints a short-lived dev token for exercising the API locally
// against the dev HS256 verifier.
func NewTokenCmd(configPath *string) *cobra.Command {
	var (
		sub   string
		email string
		ttl   time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a dev bearer token (local testing only)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if cfg.Auth.DevSecret == "" {
				return fmt.Errorf("auth.dev_secret not configured")
			}

			token, err := authapi.MintDevToken(cfg.Auth.DevSecret, sub, email, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&sub, "sub", uuid.New().String(), "subject (user id) claim")
	cmd.Flags().StringVar(&email, "email", "test@example.com", "email claim")
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "token lifetime")
	return cmd
}
