package main

import (
	"github.com/spf13/cobra"

	"github.com/aussiebroadwan/miniboss/internal/auth/app"
)

func newServeCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the authorization server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.config()
			if err != nil {
				return err
			}

			application, err := app.New(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			return application.Run()
		},
	}
}
