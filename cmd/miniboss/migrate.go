package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aussiebroadwan/miniboss/internal/auth/app"
)

func newMigrateCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations and exit",
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

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "migrations applied (%s)\n", cfg.DatabaseDriver)
			return err
		},
	}
}
