package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jrsteele09/go-store-admin/form"
	"github.com/spf13/cobra"
)

type loginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func newLoginCommand(a *app) *cobra.Command {
	var in loginInput
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session tokens",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if in.Password == "" {
				password, err := readLine(cmd, "Password: ")
				if err != nil {
					return err
				}
				in.Password = password
			}

			f := form.New(in)
			result, err := f.Submit(cmd.Context(), func(ctx context.Context, v loginInput) error {
				login, err := a.api.Auth.Login(ctx, v.Email, v.Password)
				if err != nil {
					return err
				}
				cmd.Printf("Logged in as %s (%s)\n", login.User.Email, login.User.Role)
				return nil
			})
			if err != nil {
				return fmt.Errorf("login failed: %w", describe(err))
			}
			return validationError(result)
		},
	}
	cmd.Flags().StringVarP(&in.Email, "email", "e", "", "Account email")
	cmd.Flags().StringVarP(&in.Password, "password", "p", "", "Account password. Read from stdin when omitted.")
	return cmd
}

func newLogoutCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Revoke the session and forget the stored tokens",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.api.Auth.Logout(cmd.Context()); err != nil {
				return err
			}
			cmd.Println("Logged out")
			return nil
		},
	}
}

type whoami struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Role           string    `json:"role"`
	Status         string    `json:"status"`
	TokenExpiresAt time.Time `json:"tokenExpiresAt"`
}

func newWhoamiCommand(a *app) *cobra.Command {
	return requireGuard(&cobra.Command{
		Use:   "whoami",
		Short: "Show the signed in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := a.api.Auth.Profile(cmd.Context())
			if err != nil {
				return describe(err)
			}
			return a.print(cmd.OutOrStdout(), whoami{
				ID:             user.ID,
				Name:           user.Name,
				Email:          user.Email,
				Role:           string(user.Role),
				Status:         string(user.Status),
				TokenExpiresAt: a.principal.ExpiresAt,
			})
		},
	}, guardAuth)
}

func readLine(cmd *cobra.Command, prompt string) (string, error) {
	fmt.Fprint(cmd.ErrOrStderr(), prompt)
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}
