package commands

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// NewBlogsCmd creates the blogs command group
func NewBlogsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "blogs",
		Short: "Browse and manage blog posts",
	}

	cmd.AddCommand(newBlogsListCmd())
	cmd.AddCommand(newBlogsCreateCmd())
	cmd.AddCommand(newBlogsDeleteCmd())

	return cmd
}

func newBlogsListCmd() *cobra.Command {
	var role string

	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List blog posts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBlogsList(role)
		},
	}

	cmd.Flags().StringVar(&role, "role", "stakeholder", "Role to list as: user or stakeholder")

	return cmd
}

func runBlogsList(roleFlag string) error {
	role, err := parseRole(roleFlag)
	if err != nil {
		return err
	}

	apiClient, err := newClient()
	if err != nil {
		return err
	}

	blogs, err := apiClient.ListBlogs(context.Background(), role)
	if err != nil {
		return friendlyAuthError(err)
	}

	if len(blogs) == 0 {
		fmt.Println("No blog posts found.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tCREATED")
	for _, blog := range blogs {
		fmt.Fprintf(w, "%s\t%s\t%s\n", blog.ID, blog.Title, blog.CreatedAt.Format("2006-01-02"))
	}
	return w.Flush()
}

func newBlogsCreateCmd() *cobra.Command {
	var title, content string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a blog post (stakeholder only)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBlogsCreate(title, content)
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "Blog post title")
	cmd.Flags().StringVar(&content, "content", "", "Blog post body")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("content")

	return cmd
}

func runBlogsCreate(title, content string) error {
	apiClient, err := newClient()
	if err != nil {
		return err
	}

	blog, err := apiClient.CreateBlog(context.Background(), title, content)
	if err != nil {
		return friendlyAuthError(err)
	}

	fmt.Printf("✓ Created blog %s (%s)\n", blog.Title, blog.ID)
	return nil
}

func newBlogsDeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a blog post (stakeholder only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBlogsDelete(args[0])
		},
	}

	return cmd
}

func runBlogsDelete(id string) error {
	apiClient, err := newClient()
	if err != nil {
		return err
	}

	if err := apiClient.DeleteBlog(context.Background(), id); err != nil {
		return friendlyAuthError(err)
	}

	fmt.Printf("✓ Deleted blog %s\n", id)
	return nil
}
