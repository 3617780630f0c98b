package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// NewLogoutCmd creates the logout command
func NewLogoutCmd() *cobra.Command {
	var role string

	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Clear the stored session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogout(role)
		},
	}

	cmd.Flags().StringVar(&role, "role", "stakeholder", "Role to log out: user or stakeholder")

	return cmd
}

func runLogout(roleFlag string) error {
	role, err := parseRole(roleFlag)
	if err != nil {
		return err
	}

	apiClient, err := newClient()
	if err != nil {
		return err
	}

	if err := apiClient.Logout(context.Background(), role); err != nil {
		return fmt.Errorf("logout failed: %w", err)
	}

	fmt.Printf("✓ Logged out role %q\n", role)
	return nil
}
