package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cwrk-planet/news-chat/internal/errs"
	"github.com/cwrk-planet/news-chat/internal/rest"
)

func newLoginCommand(a *App) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and save the session token",
		Args:  cobra.NoArgs,
		Example: `  newschat login --email alice@example.com
  newschat login --email alice@example.com --password secret`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.prompt(&email, "email", false); err != nil {
				return err
			}
			if err := a.prompt(&password, "password", true); err != nil {
				return err
			}
			u, err := a.auth.Login(cmd.Context(), email, password)
			if err != nil {
				return fmt.Errorf("login failed: %w", err)
			}
			fmt.Fprintf(a.streams.Out, "logged in as %s\n", u.Username)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&password, "password", "", "Account password (prompted when omitted)")

	return cmd
}

func newSignupCommand(a *App) *cobra.Command {
	var in rest.SignupRequest

	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			for _, f := range []struct {
				dst    *string
				label  string
				secret bool
			}{
				{&in.Email, "email", false},
				{&in.Username, "username", false},
				{&in.Password, "password", true},
			} {
				if err := a.prompt(f.dst, f.label, f.secret); err != nil {
					return err
				}
			}
			out, err := a.api.Signup(cmd.Context(), in)
			if err != nil {
				return fmt.Errorf("signup failed: %w", err)
			}
			fmt.Fprintln(a.streams.Out, out.Message)
			fmt.Fprintln(a.streams.Out, "run `newschat login` to sign in")
			return nil
		},
	}

	cmd.Flags().StringVar(&in.Email, "email", "", "Account email")
	cmd.Flags().StringVar(&in.Username, "username", "", "Display name in chat")
	cmd.Flags().StringVar(&in.Password, "password", "", "Account password (prompted when omitted)")

	return cmd
}

func newLogoutCommand(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the saved session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.auth.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(a.streams.Out, "logged out")
			return nil
		},
	}
}

func newMeCommand(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "me",
		Short: "Show the logged-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			u, err := a.requireUser(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(a.streams.Out, "%s <%s>\n", u.Username, u.Email)
			return nil
		},
	}
}

func newProfileCommand(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "profile",
		Short: "Show account info and recent chat activity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := a.requireUser(cmd.Context()); err != nil {
				return err
			}
			p, err := a.api.Profile(cmd.Context(), a.auth.Token())
			if err != nil {
				return fmt.Errorf("load profile: %w", err)
			}
			renderProfile(a.streams.Out, p)
			return nil
		},
	}
}

func newPasswdCommand(a *App) *cobra.Command {
	var current, next, confirm string

	cmd := &cobra.Command{
		Use:   "passwd",
		Short: "Change the account password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := a.requireUser(cmd.Context()); err != nil {
				return err
			}
			if err := a.prompt(&current, "current password", true); err != nil {
				return err
			}
			if err := a.prompt(&next, "new password", true); err != nil {
				return err
			}
			if err := a.prompt(&confirm, "confirm new password", true); err != nil {
				return err
			}
			if next != confirm {
				return fmt.Errorf("%w: new passwords do not match", errs.ErrInvalidInput)
			}
			if strings.TrimSpace(next) == "" {
				return fmt.Errorf("%w: new password is empty", errs.ErrInvalidInput)
			}
			out, err := a.api.ChangePassword(cmd.Context(), a.auth.Token(), rest.ChangePasswordRequest{
				CurrentPassword: current,
				NewPassword:     next,
			})
			if err != nil {
				return fmt.Errorf("change password: %w", err)
			}
			fmt.Fprintln(a.streams.Out, out.Message)
			return nil
		},
	}

	cmd.Flags().StringVar(&current, "current", "", "Current password (prompted when omitted)")
	cmd.Flags().StringVar(&next, "new", "", "New password (prompted when omitted)")
	cmd.Flags().StringVar(&confirm, "confirm", "", "Repeat the new password (prompted when omitted)")

	return cmd
}
