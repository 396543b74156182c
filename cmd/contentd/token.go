package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/yungbote/neurobridge-content/internal/app"
	"github.com/yungbote/neurobridge-content/internal/platform/authtoken"
)

// newTokenCommand mints a bearer token signed with JWT_SECRET_KEY.
func newTokenCommand() *cobra.Command {
	var (
		subject string
		role    string
		ttl     time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a signed API token",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.LoadConfig()
			if err != nil {
				return err
			}
			if cfg.JWTSecretKey == "" {
				return errors.New("JWT_SECRET_KEY is not configured")
			}
			userID := uuid.New()
			if subject != "" {
				if userID, err = uuid.Parse(subject); err != nil {
					return fmt.Errorf("invalid --subject: %w", err)
				}
			}
			if ttl <= 0 {
				ttl = cfg.AccessTokenTTL
			}
			tok, err := authtoken.NewSigner(cfg.JWTSecretKey, ttl).Issue(userID, role)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "", "user id to embed (random when empty)")
	cmd.Flags().StringVar(&role, "role", "editor", "role claim: editor, admin or service")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "token lifetime (defaults to ACCESS_TOKEN_TTL)")
	return cmd
}
