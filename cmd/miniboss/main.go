package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aussiebroadwan/miniboss/internal/auth/app"
)

func main() {
	os.Exit(submain(context.Background()))
}

func submain(ctx context.Context) int {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintf(os.Stderr, "%s\n", err)
		}
		return 1
	}
	return 0
}

// rootOptions are the persistent flags shared by every subcommand.
type rootOptions struct {
	envFile string
}

// config loads the configuration for a subcommand.
func (o *rootOptions) config() (app.Config, error) {
	return app.LoadConfig(o.envFile)
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "miniboss",
		Short:         "miniboss is a small OAuth2 authorization server",
		Version:       app.BuildVersion,
		SilenceErrors: true,
		SilenceUsage:  true,
		Example: `
  # Run the server against a local SQLite file, seeding the login UI client
  MINIBOSS_INTERNAL_CLIENT_REDIRECT_URI=https://login.example.com/callback miniboss serve

  # Register a third-party client
  miniboss client create --name "Example App" --redirect-uri https://app.example.com/callback

  # Allow a user to request a custom scope
  miniboss user grant-scope --email alice@example.com --scope custom:scope
`,
	}
	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "dotenv file read before MINIBOSS_* variables (skipped if missing)")

	cmd.AddCommand(
		newServeCommand(opts),
		newMigrateCommand(opts),
		newClientCommand(opts),
		newUserCommand(opts),
	)
	return cmd
}
