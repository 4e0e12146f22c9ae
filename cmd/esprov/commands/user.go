package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/esprov/cmd/esprov/handlers"
)

// User returns the command that ensures a native realm user exists.
//
// Positional arguments:
//
//	username password roles (roles comma-separated)
//
// Without arguments an interactive wizard asks for them.
func User(opts *handlers.GlobalOptions) *cobra.Command {
	var userOpts handlers.UserOptions

	cmd := &cobra.Command{
		Use:   "user [username password roles]",
		Short: "Create a user if it does not exist",
		Long: `Ensure a native realm user exists with the given roles.

An existing user with the same roles is left untouched. If its roles
differ, they are updated; the password cannot be read back and is only
sent when the user is created or updated.

Examples:
  # Create a read-only user
  esprov user alice s3cret-pw viewer

  # Several roles
  esprov user bob s3cret-pw viewer,editor

  # Interactive
  esprov user`,
		Args: allOrNone(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return handlers.User(cmd.Context(), opts, userOpts, args)
		},
	}

	cmd.Flags().BoolVar(&userOpts.HashPassword, "hash-password", false, "Send a bcrypt password hash instead of the password")
	cmd.Flags().StringVar(&userOpts.FullName, "full-name", "", "Full name of the user")
	cmd.Flags().StringVar(&userOpts.Email, "email", "", "Email of the user")

	return cmd
}
