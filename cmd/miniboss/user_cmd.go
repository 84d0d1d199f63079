package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aussiebroadwan/miniboss/internal/auth/app"
	"github.com/aussiebroadwan/miniboss/internal/auth/service"
	"github.com/aussiebroadwan/miniboss/pkg/cryptox"
)

func newUserCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage users and their permitted scopes",
	}
	cmd.AddCommand(
		newUserRegisterCommand(opts),
		newUserScopeCommand(opts, "grant-scope", "Allow a user to request a scope", (*service.UserService).GrantScope),
		newUserScopeCommand(opts, "revoke-scope", "Withdraw a scope from a user", (*service.UserService).RevokeScope),
	)
	return cmd
}

// withUsers opens the store and hands fn a UserService with the server's
// pepper, so passwords set here verify against the running server.
func withUsers(ctx context.Context, opts *rootOptions, fn func(*service.UserService) error) error {
	cfg, err := opts.config()
	if err != nil {
		return err
	}
	pepper, err := cryptox.LoadPepper(cfg.PepperFile)
	if err != nil {
		return err
	}
	st, err := app.OpenStore(ctx, cfg, false)
	if err != nil {
		return err
	}
	defer st.Close()

	return fn(&service.UserService{Store: st, Pepper: pepper})
}

func newUserRegisterCommand(opts *rootOptions) *cobra.Command {
	var (
		name     string
		email    string
		password string
		admin    bool
	)
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a user with a password",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return withUsers(ctx, opts, func(users *service.UserService) error {
				u, err := users.RegisterWithPassword(ctx, name, email, password, admin)
				if err != nil {
					return fmt.Errorf("register: %w", err)
				}
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "user_id: %s\nadmin: %t\n", u.ID, u.IsAdmin)
				return err
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&email, "email", "", "login email")
	cmd.Flags().StringVar(&password, "password", "", "initial password")
	cmd.Flags().BoolVar(&admin, "admin", false, "make the user an admin")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

// scopeOp is a UserService method that changes one permitted scope.
type scopeOp func(s *service.UserService, ctx context.Context, userID, scope string) error

func newUserScopeCommand(opts *rootOptions, use, short string, apply scopeOp) *cobra.Command {
	var (
		email string
		scope string
	)
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return withUsers(ctx, opts, func(users *service.UserService) error {
				u, err := users.LookupByEmail(ctx, email)
				if err != nil {
					if errors.Is(err, service.ErrNotFound) {
						return fmt.Errorf("no user with email %q", email)
					}
					return err
				}

				if err := apply(users, ctx, u.ID, scope); err != nil {
					return fmt.Errorf("%s: %w", use, err)
				}

				scopes, err := users.ListPermittedScopes(ctx, u.ID)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s: %v\n", u.Email, scopes)
				return err
			})
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "user email")
	cmd.Flags().StringVar(&scope, "scope", "", "scope token")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("scope")
	return cmd
}
