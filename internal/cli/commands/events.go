package commands

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// NewEventsCmd creates the events command
func NewEventsCmd() *cobra.Command {
	var role string

	cmd := &cobra.Command{
		Use:     "events",
		Aliases: []string{"ev"},
		Short:   "List platform events",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEvents(role)
		},
	}

	cmd.Flags().StringVar(&role, "role", "stakeholder", "Role to list as: user or stakeholder")

	return cmd
}

func runEvents(roleFlag string) error {
	role, err := parseRole(roleFlag)
	if err != nil {
		return err
	}

	apiClient, err := newClient()
	if err != nil {
		return err
	}

	events, err := apiClient.ListEvents(context.Background(), role)
	if err != nil {
		return friendlyAuthError(err)
	}

	if len(events) == 0 {
		fmt.Println("No events found.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tDATE\tLOCATION")
	for _, event := range events {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", event.ID, event.Title, event.Date, event.Location)
	}
	return w.Flush()
}
