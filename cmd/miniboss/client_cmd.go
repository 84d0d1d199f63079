package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/aussiebroadwan/miniboss/internal/auth/app"
	"github.com/aussiebroadwan/miniboss/internal/auth/service"
)

func newClientCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "client",
		Short: "Manage OAuth2 clients",
	}
	cmd.AddCommand(
		newClientCreateCommand(opts),
		newClientListCommand(opts),
	)
	return cmd
}

func newClientCreateCommand(opts *rootOptions) *cobra.Command {
	var (
		name        string
		redirectURI string
		internal    bool
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Register a client",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.config()
			if err != nil {
				return err
			}
			st, err := app.OpenStore(cmd.Context(), cfg, false)
			if err != nil {
				return err
			}
			defer st.Close()

			clients := &service.ClientService{Store: st}
			c, err := clients.Create(cmd.Context(), name, redirectURI, internal)
			if err != nil {
				return fmt.Errorf("create client: %w", err)
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "client_id: %s\nredirect_uri: %s\n", c.ID, c.RedirectURI)
			return err
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "display name shown on the login page")
	cmd.Flags().StringVar(&redirectURI, "redirect-uri", "", "absolute callback URI")
	cmd.Flags().BoolVar(&internal, "internal", false, "register the first-party login UI client")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("redirect-uri")
	return cmd
}

func newClientListCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered clients",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.config()
			if err != nil {
				return err
			}
			st, err := app.OpenStore(cmd.Context(), cfg, false)
			if err != nil {
				return err
			}
			defer st.Close()

			clients := &service.ClientService{Store: st}
			list, err := clients.List(cmd.Context())
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tREDIRECT URI\tINTERNAL")
			for _, c := range list {
				fmt.Fprintf(w, "%s\t%s\t%s\t%t\n", c.ID, c.Name, c.RedirectURI, c.IsInternal)
			}
			return w.Flush()
		},
	}
}
