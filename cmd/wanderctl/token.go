package main

import (
	"fmt"

	"wanderlust-service/internal/infrastructure/oauth"

	"github.com/spf13/cobra"
)

func getTokenCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "token",
		Short: "Fetch an Amadeus access token and print it as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := e.cfg
			if cfg.AmadeusClientID == "" || cfg.AmadeusClientSecret == "" {
				return fmt.Errorf("AMADEUS_CLIENT_ID and AMADEUS_CLIENT_SECRET must be set")
			}
			creds := oauth.NewClientCredentials(cfg.AmadeusClientID, cfg.AmadeusClientSecret, cfg.AmadeusTokenURL, cfg.ProviderTimeout, e.log)
			token, err := creds.FetchToken(cmd.Context())
			if err != nil {
				return err
			}
			out, err := creds.TokenToJSON(token)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
}
