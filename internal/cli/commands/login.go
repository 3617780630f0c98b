package commands

import (
	"context"
	"fmt"
	"os"

	"syscall"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/halosani-dev/halosani/internal/session"
)

// NewLoginCmd creates the login command
func NewLoginCmd() *cobra.Command {
	var role, email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate with the HaloSani platform",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogin(role, email, password)
		},
	}

	cmd.Flags().StringVar(&role, "role", "", "Role to log in as: user or stakeholder (will prompt if not provided)")
	cmd.Flags().StringVar(&email, "email", "", "Email address (or set HALOSANI_EMAIL)")
	cmd.Flags().StringVar(&password, "password", "", "Password (or set HALOSANI_PASSWORD, will prompt if not provided)")

	return cmd
}

func runLogin(roleFlag, email, password string) error {
	// Check for environment variables (useful for CI/CD)
	if email == "" {
		email = os.Getenv("HALOSANI_EMAIL")
	}
	if password == "" {
		password = os.Getenv("HALOSANI_PASSWORD")
	}

	if email == "" {
		return fmt.Errorf("email is required (use --email flag or HALOSANI_EMAIL env var)")
	}

	role, err := resolveRole(roleFlag)
	if err != nil {
		return err
	}

	// Prompt for password if not provided via flag or env var
	if password == "" {
		if term.IsTerminal(int(syscall.Stdin)) {
			fmt.Print("Password: ")
			bytePassword, err := term.ReadPassword(int(syscall.Stdin))
			if err != nil {
				return fmt.Errorf("failed to read password: %w", err)
			}
			password = string(bytePassword)
			fmt.Println() // New line after password input
		} else {
			return fmt.Errorf("password is required in non-interactive mode (use --password flag or HALOSANI_PASSWORD env var)")
		}
	}

	apiClient, err := newClient()
	if err != nil {
		return err
	}

	loginResp, err := apiClient.Login(context.Background(), role, email, password)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	fmt.Println("✓ Login successful!")
	fmt.Printf("  User: %s (%s)\n", loginResp.User.Name, loginResp.User.Email)
	if role == session.RoleAdmin {
		fmt.Println("  Role: Stakeholder")
	}

	return nil
}

// resolveRole turns the --role flag into a session role, falling back to an
// interactive selector when the flag is absent.
func resolveRole(roleFlag string) (session.Role, error) {
	if roleFlag != "" {
		return parseRole(roleFlag)
	}

	if !term.IsTerminal(int(syscall.Stdin)) {
		return "", fmt.Errorf("role is required in non-interactive mode (use --role user|stakeholder)")
	}

	prompt := promptui.Select{
		Label: "Log in as",
		Items: []string{"User", "Stakeholder"},
	}
	index, _, err := prompt.Run()
	if err != nil {
		return "", fmt.Errorf("role selection cancelled: %w", err)
	}

	if index == 1 {
		return session.RoleAdmin, nil
	}
	return session.RoleUser, nil
}
