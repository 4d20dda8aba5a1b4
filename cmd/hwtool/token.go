package main

import (
	"fmt"
	"strings"
	"time"

	"hardware-management-api/internal/auth"
	"hardware-management-api/internal/config"
	"hardware-management-api/internal/models"

	"github.com/spf13/cobra"
)

func newTokenCmd() *cobra.Command {
	var (
		email, role, name string
		secret            string
		expiry            time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Sign a session token for a user",
		Long: `Signs a bearer token with the configured JWT settings. Without --role the
role is derived from the email the same way demo logins do.`,
		Example: "  hwtool token --email hr@company.com\n  hwtool token --email ops@company.com --role admin --expiry 1h",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.Load()
			if secret != "" {
				cfg.JWTSecret = secret
			}
			if expiry > 0 {
				cfg.JWTExpiry = expiry
			}

			id := auth.DemoIdentity(email)
			if role != "" {
				id.Role = models.Role(strings.ToLower(role))
			}
			if name != "" {
				id.Name = name
			}

			manager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTAudience, cfg.JWTExpiry)
			if err := manager.ValidateConfig(); err != nil {
				return err
			}
			token, claims, err := manager.GenerateToken(id)
			if err != nil {
				return fmt.Errorf("generate token: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Email:   %s\n", claims.Email)
			fmt.Fprintf(out, "Role:    %s\n", claims.Role)
			fmt.Fprintf(out, "Expires: %s\n", claims.ExpiresAt.Time.Format(time.RFC3339))
			fmt.Fprintf(out, "\n%s\n\n", token)
			fmt.Fprintf(out, "curl -H \"Authorization: Bearer %s\" %s/auth/session\n", token, cfg.PublicBaseURL)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "user email")
	cmd.Flags().StringVar(&role, "role", "", "employee, admin or hr")
	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&secret, "secret", "", "JWT secret (overrides JWT_SECRET)")
	cmd.Flags().DurationVar(&expiry, "expiry", 0, "token lifetime (overrides JWT_EXPIRY)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newHashPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password [password]",
		Short: "Print the bcrypt hash for a users file entry",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var password string
			if len(args) == 1 {
				password = args[0]
			} else {
				if _, err := fmt.Fscanln(cmd.InOrStdin(), &password); err != nil {
					return fmt.Errorf("read password: %w", err)
				}
			}
			hash, err := auth.HashPassword(password)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
}
