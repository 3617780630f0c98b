// Package client is the CLI's typed view of the HaloSani API. It rides on
// the same gateway pipeline as the web gate, with tokens coming from the OS
// keyring instead of the per-visitor store.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	cliauth "github.com/halosani-dev/halosani/internal/cli/auth"
	"github.com/halosani-dev/halosani/internal/gateway"
	"github.com/halosani-dev/halosani/internal/session"
)

// localSID names the CLI's single visitor in the Store contract
const localSID = "local"

// Client represents an HTTP client for the HaloSani API
type Client struct {
	gw    *gateway.Gateway
	store session.Store
}

// New creates a new API client for the given server URL
func New(serverURL string) (*Client, error) {
	parsed, err := url.Parse(serverURL)
	if err != nil || parsed.Host == "" {
		return nil, fmt.Errorf("invalid server URL %q", serverURL)
	}

	store := cliauth.NewKeyringStore(parsed.Host)
	return &Client{
		gw:    gateway.New(serverURL, store, zerolog.Nop()),
		store: store,
	}, nil
}

// SetHTTPClient sets a custom HTTP client
func (c *Client) SetHTTPClient(httpClient *http.Client) {
	c.gw.SetHTTPClient(httpClient)
}

// Store exposes the token store (used by logout and tests)
func (c *Client) Store() session.Store {
	return c.store
}

// Account represents the authenticated identity returned by the API
type Account struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// LoginResponse represents the login response
type LoginResponse struct {
	Token string  `json:"token"`
	User  Account `json:"user"`
}

// Blog is the listing shape of a blog post; the full entity stays upstream
type Blog struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
}

// Event is the listing shape of a platform event
type Event struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Date     string `json:"date"`
	Location string `json:"location"`
}

// CategorySummary is one row of the multi-category feedback aggregation
type CategorySummary struct {
	Category      string  `json:"category"`
	Responses     int     `json:"responses"`
	AverageRating float64 `json:"average_rating"`
}

// Login authenticates the given role and stores the returned token
func (c *Client) Login(ctx context.Context, role session.Role, email, password string) (*LoginResponse, error) {
	resp, err := c.gw.DoJSON(ctx, localSID, gateway.Request{
		Method: http.MethodPost,
		Path:   role.LoginPath(),
		Scope:  role,
	}, map[string]string{"email": email, "password": password})
	if err != nil {
		if _, ok := err.(*gateway.AuthExpiredError); ok {
			return nil, fmt.Errorf("invalid email or password")
		}
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("login failed (status %d): %s", resp.StatusCode, string(resp.Body))
	}

	var loginResp LoginResponse
	if err := json.Unmarshal(resp.Body, &loginResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if loginResp.Token == "" {
		return nil, fmt.Errorf("login response had no token")
	}

	if err := c.store.Set(ctx, localSID, role, loginResp.Token); err != nil {
		return nil, fmt.Errorf("failed to save authentication token: %w", err)
	}

	return &loginResp, nil
}

// Logout clears the role's token. Upstream logout is best-effort.
func (c *Client) Logout(ctx context.Context, role session.Role) error {
	path := "/user/logout"
	if role == session.RoleAdmin {
		path = "/admin/logout"
	}
	// A 401 already cleared the token inside the gateway
	if _, err := c.gw.Do(ctx, localSID, gateway.Request{
		Method: http.MethodPost,
		Path:   path,
		Scope:  role,
	}); err != nil {
		if _, ok := err.(*gateway.AuthExpiredError); ok {
			return nil
		}
	}
	return c.store.Clear(ctx, localSID, role)
}

// Me returns the authenticated identity for the role
func (c *Client) Me(ctx context.Context, role session.Role) (*Account, error) {
	path := "/user/me"
	if role == session.RoleAdmin {
		path = "/admin/me"
	}

	var account Account
	if err := c.getJSON(ctx, role, path, &account); err != nil {
		return nil, err
	}
	return &account, nil
}

// ListBlogs returns the blog listing visible to the role
func (c *Client) ListBlogs(ctx context.Context, role session.Role) ([]Blog, error) {
	path := "/user/blogs"
	if role == session.RoleAdmin {
		path = "/admin/blogs"
	}

	var blogs []Blog
	if err := c.getJSON(ctx, role, path, &blogs); err != nil {
		return nil, err
	}
	return blogs, nil
}

// CreateBlog creates a blog post (stakeholder only)
func (c *Client) CreateBlog(ctx context.Context, title, content string) (*Blog, error) {
	resp, err := c.gw.DoJSON(ctx, localSID, gateway.Request{
		Method: http.MethodPost,
		Path:   "/admin/blogs",
		Scope:  session.RoleAdmin,
	}, map[string]string{"title": title, "content": content})
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to create blog (status %d): %s", resp.StatusCode, string(resp.Body))
	}

	var blog Blog
	if err := json.Unmarshal(resp.Body, &blog); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &blog, nil
}

// DeleteBlog deletes a blog post by ID (stakeholder only)
func (c *Client) DeleteBlog(ctx context.Context, id string) error {
	resp, err := c.gw.Do(ctx, localSID, gateway.Request{
		Method: http.MethodDelete,
		Path:   "/admin/blogs/" + url.PathEscape(id),
		Scope:  session.RoleAdmin,
	})
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("failed to delete blog (status %d): %s", resp.StatusCode, string(resp.Body))
	}
	return nil
}

// ListEvents returns the event listing visible to the role
func (c *Client) ListEvents(ctx context.Context, role session.Role) ([]Event, error) {
	path := "/user/events"
	if role == session.RoleAdmin {
		path = "/admin/events"
	}

	var events []Event
	if err := c.getJSON(ctx, role, path, &events); err != nil {
		return nil, err
	}
	return events, nil
}

// FeedbackSummary returns the per-category survey aggregation (stakeholder only)
func (c *Client) FeedbackSummary(ctx context.Context) ([]CategorySummary, error) {
	var summary []CategorySummary
	if err := c.getJSON(ctx, session.RoleAdmin, "/admin/feedback/summary", &summary); err != nil {
		return nil, err
	}
	return summary, nil
}

func (c *Client) getJSON(ctx context.Context, scope session.Role, path string, out any) error {
	resp, err := c.gw.Do(ctx, localSID, gateway.Request{
		Method: http.MethodGet,
		Path:   path,
		Scope:  scope,
	})
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("request failed (status %d): %s", resp.StatusCode, string(resp.Body))
	}
	if err := json.Unmarshal(resp.Body, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
