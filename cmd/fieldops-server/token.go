package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/brigade/fieldops/internal/config"
	"github.com/brigade/fieldops/internal/platform/auth"
)

func tokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token signed with AUTH_SIGNING_KEY",
		RunE: func(cmd *cobra.Command, args []string) error {
			sub, _ := cmd.Flags().GetString("sub")
			roles, _ := cmd.Flags().GetStringSlice("role")
			ttl, _ := cmd.Flags().GetDuration("ttl")

			cfg, err := config.LoadAuth()
			if err != nil {
				return err
			}
			tok, err := mintToken(cfg, sub, roles, ttl, time.Now())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}
	cmd.Flags().String("sub", "", "Subject (crew member id)")
	cmd.Flags().StringSlice("role", []string{auth.RoleCrew}, "Role to grant; repeatable (crew, commander, admin)")
	cmd.Flags().Duration("ttl", 12*time.Hour, "Token lifetime")
	return cmd
}

func mintToken(cfg *config.Config, sub string, roles []string, ttl time.Duration, now time.Time) (string, error) {
	if sub == "" {
		return "", fmt.Errorf("--sub is required")
	}
	if cfg.AuthSigningKey == "" {
		return "", fmt.Errorf("AUTH_SIGNING_KEY is not set")
	}
	if ttl <= 0 {
		return "", fmt.Errorf("--ttl must be positive")
	}
	if len(roles) == 0 {
		return "", fmt.Errorf("at least one --role is required")
	}
	for _, r := range roles {
		if !auth.KnownRole(r) {
			return "", fmt.Errorf("unknown role %q", r)
		}
	}
	jwtCfg := auth.JWTConfig{
		Issuer:     cfg.AuthIssuer,
		Audience:   cfg.AuthAudience,
		SigningKey: []byte(cfg.AuthSigningKey),
	}
	return jwtCfg.IssueToken(sub, roles, ttl, now)
}
