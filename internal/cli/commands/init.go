package commands

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/halosani-dev/halosani/internal/cli/userconfig"
)

// NewInitCmd creates the init command
func NewInitCmd() *cobra.Command {
	var server string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Point the CLI at a HaloSani deployment",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(server)
		},
	}

	cmd.Flags().StringVar(&server, "server", "", "Base URL of the HaloSani API (e.g. https://api.halosani.cloud)")
	_ = cmd.MarkFlagRequired("server")

	return cmd
}

func runInit(server string) error {
	parsed, err := url.Parse(server)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("invalid server URL %q (expected scheme and host, e.g. https://api.halosani.cloud)", server)
	}

	cfg, err := userconfig.Load()
	if err != nil {
		return err
	}

	cfg.ServerURL = server
	if err := userconfig.Save(cfg); err != nil {
		return err
	}

	fmt.Printf("✓ Configured server %s\n", server)
	return nil
}
