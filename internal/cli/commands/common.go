package commands

import (
	"errors"
	"fmt"

	"github.com/halosani-dev/halosani/internal/cli/client"
	"github.com/halosani-dev/halosani/internal/cli/userconfig"
	"github.com/halosani-dev/halosani/internal/gateway"
	"github.com/halosani-dev/halosani/internal/session"
)

// newClient builds an API client from the saved user configuration
func newClient() (*client.Client, error) {
	serverURL, err := userconfig.RequireServerURL()
	if err != nil {
		return nil, err
	}
	return client.New(serverURL)
}

// parseRole maps the --role flag to a session role
func parseRole(raw string) (session.Role, error) {
	switch raw {
	case "user":
		return session.RoleUser, nil
	case "admin", "stakeholder":
		return session.RoleAdmin, nil
	default:
		return "", fmt.Errorf("unknown role %q (expected user or stakeholder)", raw)
	}
}

// friendlyAuthError rewrites an expired-session failure into the CLI's
// version of the login redirect: a hint to run 'halosani login'.
func friendlyAuthError(err error) error {
	var expired *gateway.AuthExpiredError
	if errors.As(err, &expired) {
		return fmt.Errorf("session expired for role %q. Please run 'halosani login' again", expired.Role)
	}
	return err
}
