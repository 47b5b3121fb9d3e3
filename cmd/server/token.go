package main

import (
	"fmt"
	"time"

	"alcyxob/liftlog/internal/identity"

	"github.com/spf13/cobra"
)

var tokenTTL time.Duration

var tokenCmd = &cobra.Command{
	Use:   "token <user-id>",
	Short: "Mint a bearer token for local development",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ttl := cfg.JWT.Expiration
		if tokenTTL > 0 {
			ttl = tokenTTL
		}
		issuer, err := identity.NewIssuer(cfg.JWT.Secret, cfg.JWT.Issuer, ttl)
		if err != nil {
			return err
		}
		token, err := issuer.Issue(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 0, "token lifetime (defaults to jwt.expiration)")
}
