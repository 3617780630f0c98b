package commands

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// NewFeedbackCmd creates the feedback command group
func NewFeedbackCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "feedback",
		Short: "Review the feedback survey",
	}

	cmd.AddCommand(newFeedbackSummaryCmd())

	return cmd
}

func newFeedbackSummaryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Show per-category survey results (stakeholder only)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFeedbackSummary()
		},
	}
}

func runFeedbackSummary() error {
	apiClient, err := newClient()
	if err != nil {
		return err
	}

	summary, err := apiClient.FeedbackSummary(context.Background())
	if err != nil {
		return friendlyAuthError(err)
	}

	if len(summary) == 0 {
		fmt.Println("No feedback submitted yet.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "CATEGORY\tRESPONSES\tAVG RATING")
	for _, row := range summary {
		fmt.Fprintf(w, "%s\t%d\t%.2f\n", row.Category, row.Responses, row.AverageRating)
	}
	return w.Flush()
}
