package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/loykin/schemarun/internal/auth"
	"github.com/loykin/schemarun/internal/constants"
	"github.com/loykin/schemarun/internal/database"
	"github.com/loykin/schemarun/internal/server"
	"github.com/spf13/cobra"
)

func (s *session) jwtSecret() string {
	if v := strings.TrimSpace(s.doc.Server.JWTSecret); v != "" {
		return v
	}
	return strings.TrimSpace(s.env.GetString("jwt_secret"))
}

func (s *session) serverConfig(addr string) (server.Config, error) {
	secret := s.jwtSecret()
	if secret == "" {
		return server.Config{}, fmt.Errorf("jwt secret is required (server.jwt_secret or JWT_SECRET)")
	}
	skew, err := parseDuration(s.doc.Server.ClockSkew, 0)
	if err != nil {
		return server.Config{}, fmt.Errorf("invalid server.clock_skew: %w", err)
	}
	if addr == "" {
		addr = s.doc.Server.Addr
	}
	pattern := s.doc.Server.TenantPattern
	if pattern == "" {
		pattern = s.tenantPattern()
	}
	return server.Config{
		Addr: addr,
		JWT: auth.VerifyConfig{
			Secret:          []byte(secret),
			AllowedIssuer:   s.doc.Server.AllowedIssuer,
			AllowedAudience: s.doc.Server.AllowedAudience,
			ClockSkew:       skew,
		},
		TenantPattern: pattern,
		LedgerEnabled: s.doc.Ledger.Enabled || cmdRecord(),
		LedgerTable:   s.doc.Ledger.Table,
	}, nil
}

var ServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the read-only inspector API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		addr, _ := cmd.Flags().GetString("addr")
		cfg, err := current.serverConfig(addr)
		if err != nil {
			return err
		}
		h, err := database.Open(cmd.Context(), current.db)
		if err != nil {
			return err
		}
		return server.New(h, cfg).Run(cmd.Context())
	},
}

var TokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue an HS256 token for the inspector API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		secret := current.jwtSecret()
		if secret == "" {
			return fmt.Errorf("jwt secret is required (server.jwt_secret or JWT_SECRET)")
		}
		id, _ := cmd.Flags().GetString("id")
		role, _ := cmd.Flags().GetString("role")
		agency, _ := cmd.Flags().GetString("agency-id")
		ttl, _ := cmd.Flags().GetInt64("ttl")

		custom := map[string]any{"id": id, "role": role}
		if agency != "" {
			n, err := strconv.Atoi(agency)
			if err != nil {
				return fmt.Errorf("invalid --agency-id: %w", err)
			}
			custom["agency_id"] = n
		}
		cfg := auth.TokenConfig{Secret: secret, TTLSeconds: ttl, Custom: custom, Issuer: current.doc.Server.AllowedIssuer}
		if aud := current.doc.Server.AllowedAudience; aud != "" {
			cfg.Audience = []string{aud}
		}
		tok, err := cfg.Issue()
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), tok)
		return nil
	},
}

func init() {
	ServeCmd.Flags().String("addr", "", "listen address (default server.addr or "+constants.DefaultListenAddr+")")
	TokenCmd.Flags().String("id", "operator", "user id claim")
	TokenCmd.Flags().String("role", "admin", "role claim (super_admin sees all tenants)")
	TokenCmd.Flags().String("agency-id", "", "agency_id claim")
	TokenCmd.Flags().Int64("ttl", auth.DefaultTTLSeconds, "lifetime in seconds")
}
