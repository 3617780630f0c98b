package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// NewWhoamiCmd creates the whoami command
func NewWhoamiCmd() *cobra.Command {
	var role string

	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the identity behind the stored session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWhoami(role)
		},
	}

	cmd.Flags().StringVar(&role, "role", "stakeholder", "Role to inspect: user or stakeholder")

	return cmd
}

func runWhoami(roleFlag string) error {
	role, err := parseRole(roleFlag)
	if err != nil {
		return err
	}

	apiClient, err := newClient()
	if err != nil {
		return err
	}

	account, err := apiClient.Me(context.Background(), role)
	if err != nil {
		return friendlyAuthError(err)
	}

	fmt.Printf("%s <%s> (role: %s)\n", account.Name, account.Email, role)
	return nil
}
