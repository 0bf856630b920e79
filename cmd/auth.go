package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"salon-admin-cli/store"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and remember the session token",
	RunE: func(cmd *cobra.Command, args []string) error {
		email, _ := cmd.Flags().GetString("email")
		if strings.TrimSpace(email) == "" {
			var err error
			if email, err = promptEmail(); err != nil {
				return err
			}
		}
		password, err := promptPassword()
		if err != nil {
			return err
		}

		result, err := deps.client.Login(context.Background(), email, password)
		if err != nil {
			return err
		}
		if err := store.SaveAuthToken(result.Token); err != nil {
			return err
		}
		name := email
		if result.User != nil && result.User.Name != "" {
			name = result.User.Name
		}
		deps.logger.Info("logged in", zap.String("email", email))
		fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s\n", name)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and forget the session token",
	RunE: func(cmd *cobra.Command, args []string) error {
		token, err := store.LoadAuthToken()
		if err != nil {
			return err
		}
		if token != "" {
			// The local token is cleared even if the backend call fails.
			if err := deps.client.Logout(context.Background(), token); err != nil {
				deps.logger.Warn("logout request failed", zap.Error(err))
			}
		}
		if err := store.ClearAuthToken(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
		return nil
	},
}

func init() {
	loginCmd.Flags().String("email", "", "account email")
}

func promptEmail() (string, error) {
	prompt := promptui.Prompt{
		Label: "Email",
		Validate: func(input string) error {
			if !strings.Contains(input, "@") {
				return errors.New("enter a valid email")
			}
			return nil
		},
	}
	value, err := prompt.Run()
	return strings.TrimSpace(value), err
}

func promptPassword() (string, error) {
	prompt := promptui.Prompt{
		Label: "Password",
		Mask:  '*',
		Validate: func(input string) error {
			if input == "" {
				return errors.New("password is required")
			}
			return nil
		},
	}
	return prompt.Run()
}
