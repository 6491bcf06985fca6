package app

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shelfmate/shelfmate/internal/api"
	"github.com/shelfmate/shelfmate/internal/tui"
)

func newLoginCmd() *cobra.Command {
	var (
		username string
		password string
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Interactive mode gets the dialog; flags and pipes get
			// plain prompts.
			if username == "" && password == "" && tui.ShouldUseTUI(cmd) {
				signedIn, err := tui.RunLoginForm(doLogin)
				if err != nil {
					return err
				}
				if !signedIn {
					return fmt.Errorf("canceled")
				}
				ok("Signed in")
				return nil
			}

			reader := bufio.NewReader(os.Stdin)
			if username == "" {
				fmt.Print("Username: ")
				line, err := reader.ReadString('\n')
				if err != nil {
					return err
				}
				username = strings.TrimSpace(line)
			}
			if password == "" {
				fmt.Print("Password: ")
				line, err := reader.ReadString('\n')
				if err != nil {
					return err
				}
				password = strings.TrimRight(line, "\r\n")
			}

			if err := doLogin(cmd.Context(), username, password); err != nil {
				if printFormError(err) {
					return fmt.Errorf("login failed")
				}
				return err
			}
			ok("Signed in as %s", username)
			return nil
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "Account username")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Account password (prompted when omitted)")
	return cmd
}

// doLogin exchanges credentials for a token and persists the session.
func doLogin(ctx context.Context, username, password string) error {
	res, err := backend.Login(ctx, api.Credentials{Username: username, Password: password})
	if err != nil {
		return err
	}
	if err := sess.Save(res.Token, res.ExpiresIn); err != nil {
		return fmt.Errorf("storing session: %w", err)
	}
	return nil
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := sess.Clear(); err != nil {
				return fmt.Errorf("clearing session: %w", err)
			}
			ok("Signed out")
			return nil
		},
	}
}

func newRegisterCmd() *cobra.Command {
	var reg api.Registration

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a new account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reader := bufio.NewReader(os.Stdin)
			prompt := func(label string, dest *string) error {
				if *dest != "" {
					return nil
				}
				fmt.Printf("%s: ", label)
				line, err := reader.ReadString('\n')
				if err != nil {
					return err
				}
				*dest = strings.TrimSpace(line)
				return nil
			}
			if err := prompt("Username", &reg.Username); err != nil {
				return err
			}
			if err := prompt("Email", &reg.Email); err != nil {
				return err
			}
			if err := prompt("Password", &reg.Password); err != nil {
				return err
			}

			// Local validation first, so obvious mistakes never go on
			// the wire.
			if errs := reg.Validate(); len(errs) > 0 {
				for _, e := range errs {
					warn("%s", e.Message)
				}
				return fmt.Errorf("registration rejected")
			}

			if err := backend.Register(cmd.Context(), reg); err != nil {
				if printFormError(err) {
					return fmt.Errorf("registration rejected")
				}
				return err
			}
			ok("Account created, run 'shelfmate login' to sign in")
			return nil
		},
	}

	cmd.Flags().StringVar(&reg.Username, "username", "", "Account username")
	cmd.Flags().StringVar(&reg.Email, "email", "", "Account email address")
	cmd.Flags().StringVar(&reg.Password, "password", "", "Account password (prompted when omitted)")
	return cmd
}
