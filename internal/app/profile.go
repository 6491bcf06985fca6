package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shelfmate/shelfmate/internal/api"
)

func newProfileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "View and manage your account",
	}
	cmd.AddCommand(newProfileShowCmd(), newProfileUpdateCmd(), newProfileDeleteCmd())
	return cmd
}

func newProfileShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the signed-in account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireSession(); err != nil {
				return err
			}
			p, err := backend.GetProfile(cmd.Context())
			if err != nil {
				return mapSessionErr(err)
			}
			header("Profile")
			printField("username", p.Username)
			printField("email", p.Email)
			return nil
		},
	}
}

func newProfileUpdateCmd() *cobra.Command {
	var update api.ProfileUpdate

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Update username, email or password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireSession(); err != nil {
				return err
			}

			// Unspecified fields keep their current values.
			if update.Username == "" || update.Email == "" {
				current, err := backend.GetProfile(cmd.Context())
				if err != nil {
					return mapSessionErr(err)
				}
				if update.Username == "" {
					update.Username = current.Username
				}
				if update.Email == "" {
					update.Email = current.Email
				}
			}

			if errs := update.Validate(); len(errs) > 0 {
				for _, e := range errs {
					warn("%s", e.Message)
				}
				return fmt.Errorf("profile update rejected")
			}

			if err := backend.UpdateProfile(cmd.Context(), update); err != nil {
				if printFormError(err) {
					return fmt.Errorf("profile update rejected")
				}
				return mapSessionErr(err)
			}
			ok("Profile updated")
			return nil
		},
	}

	cmd.Flags().StringVar(&update.Username, "username", "", "New username")
	cmd.Flags().StringVar(&update.Email, "email", "", "New email address")
	cmd.Flags().StringVar(&update.Password, "password", "", "New password (empty keeps the current one)")
	return cmd
}

func newProfileDeleteCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete the account and all its books",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireSession(); err != nil {
				return err
			}
			if !force {
				fmt.Print("Delete your account and all its books? (y/N): ")
				var response string
				_, _ = fmt.Scanln(&response)
				if response != "y" && response != "Y" && response != "yes" {
					return fmt.Errorf("canceled")
				}
			}
			if err := backend.DeleteProfile(cmd.Context()); err != nil {
				return mapSessionErr(err)
			}
			_ = sess.Clear()
			ok("Account deleted")
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Skip the confirmation prompt")
	return cmd
}
