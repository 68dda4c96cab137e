package cli

import (
	"context"
	"fmt"
	"slices"

	"github.com/jrsteele09/go-store-admin/adminapi"
	"github.com/spf13/cobra"
)

func newUsersCommand(a *app) *cobra.Command {
	usersCmd := &cobra.Command{
		Use:   "users",
		Short: "Manage admin panel users",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	var params adminapi.ListParams
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List users",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			page, err := a.api.Users.List(cmd.Context(), params)
			if err != nil {
				return describe(err)
			}
			return a.print(cmd.OutOrStdout(), page)
		},
	}
	addListFlags(listCmd, &params, "Filter by user status")

	var in adminapi.UserInput
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if in.Password != "" && in.ConfirmPassword == "" {
				in.ConfirmPassword = in.Password
			}
			return edit(cmd, in, nil, func(ctx context.Context, v adminapi.UserInput) error {
				u, err := a.api.Users.Create(ctx, v)
				if err != nil {
					return err
				}
				return a.print(cmd.OutOrStdout(), u)
			})
		},
	}
	createCmd.Flags().StringVar(&in.Name, "name", "", "Full name")
	createCmd.Flags().StringVar(&in.Email, "email", "", "Email address")
	createCmd.Flags().StringVar((*string)(&in.Role), "role", string(adminapi.RoleEditor), "Role: admin, editor, customer or vendor")
	createCmd.Flags().StringVar(&in.Password, "password", "", "Initial password")
	createCmd.Flags().StringVar(&in.ConfirmPassword, "confirm-password", "", "Repeat the password; defaults to --password")

	var activity adminapi.ListParams
	activityCmd := &cobra.Command{
		Use:   "activity <id>",
		Short: "Show the activity log of a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			page, err := a.api.Users.ActivityLogs(cmd.Context(), args[0], activity)
			if err != nil {
				return describe(err)
			}
			return a.print(cmd.OutOrStdout(), page)
		},
	}
	addListFlags(activityCmd, &activity, "")

	var newPassword string
	resetCmd := &cobra.Command{
		Use:   "reset-password <token>",
		Short: "Set a new password with a reset token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if newPassword == "" {
				password, err := readLine(cmd, "New password: ")
				if err != nil {
					return err
				}
				newPassword = password
			}
			if err := a.api.Users.ResetPassword(cmd.Context(), args[0], newPassword); err != nil {
				return describe(err)
			}
			cmd.Println("Password has been reset")
			return nil
		},
	}
	resetCmd.Flags().StringVar(&newPassword, "password", "", "New password. Read from stdin when omitted.")

	// Password reset runs without a session, everything else needs an admin
	admin := func(cmd *cobra.Command) *cobra.Command { return requireGuard(cmd, guardAdmin) }
	usersCmd.AddCommand(
		admin(listCmd),
		admin(&cobra.Command{
			Use:   "get <id>",
			Short: "Show a user",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				u, err := a.api.Users.Get(cmd.Context(), args[0])
				if err != nil {
					return describe(err)
				}
				return a.print(cmd.OutOrStdout(), u)
			},
		}),
		admin(createCmd),
		admin(&cobra.Command{
			Use:   "delete <id>",
			Short: "Delete a user",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := a.api.Users.Delete(cmd.Context(), args[0]); err != nil {
					return describe(err)
				}
				cmd.Printf("Deleted user %s\n", args[0])
				return nil
			},
		}),
		admin(&cobra.Command{
			Use:   "status <id> <status>",
			Short: "Activate, deactivate or suspend a user",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				status := adminapi.UserStatus(args[1])
				if !slices.Contains(adminapi.UserStatuses, status) {
					return fmt.Errorf("unknown user status %q, expected one of %v", args[1], adminapi.UserStatuses)
				}
				u, err := a.api.Users.UpdateStatus(cmd.Context(), args[0], status)
				if err != nil {
					return describe(err)
				}
				return a.print(cmd.OutOrStdout(), u)
			},
		}),
		admin(&cobra.Command{
			Use:   "role <id> <role>",
			Short: "Change the role of a user",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				role := adminapi.Role(args[1])
				if !slices.Contains(adminapi.Roles, role) {
					return fmt.Errorf("unknown role %q, expected one of %v", args[1], adminapi.Roles)
				}
				u, err := a.api.Users.UpdateRole(cmd.Context(), args[0], role)
				if err != nil {
					return describe(err)
				}
				return a.print(cmd.OutOrStdout(), u)
			},
		}),
		admin(&cobra.Command{
			Use:   "roles",
			Short: "List roles",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				roles, err := a.api.Users.Roles(cmd.Context())
				if err != nil {
					return describe(err)
				}
				return a.print(cmd.OutOrStdout(), roles)
			},
		}),
		admin(&cobra.Command{
			Use:   "stats",
			Short: "User totals by role and status",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				s, err := a.api.Users.Stats(cmd.Context())
				if err != nil {
					return describe(err)
				}
				return a.print(cmd.OutOrStdout(), s)
			},
		}),
		admin(activityCmd),
		&cobra.Command{
			Use:   "forgot-password <email>",
			Short: "Send a password reset link",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := a.api.Users.SendPasswordReset(cmd.Context(), args[0]); err != nil {
					return describe(err)
				}
				cmd.Println("If the email exists, a reset link has been sent")
				return nil
			},
		},
		resetCmd,
	)
	return usersCmd
}
