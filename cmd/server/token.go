package main

import (
	"errors"
	"fmt"

	"github.com/actuallystonmai/product-recommendation-service/internal/auth"
	"github.com/spf13/cobra"
)

var (
	tokenSubject string
	tokenName    string
)

// tokenCmd mints the same kind of token the credential service issues on login.
var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Print a development bearer token signed with the configured secret",
	RunE: func(cmd *cobra.Command, args []string) error {
		if tokenSubject == "" {
			return errors.New("--subject is required")
		}
		cfg, _, err := bootstrap()
		if err != nil {
			return err
		}
		tok, err := auth.NewTokenIssuer(cfg.Auth.JWTSecret).Issue(tokenSubject, tokenName)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), tok)
		return nil
	},
}

func init() {
	tokenCmd.Flags().StringVar(&tokenSubject, "subject", "", "Token subject, usually the user's email")
	tokenCmd.Flags().StringVar(&tokenName, "name", "", "Display name claim")
}
