// Package gateway is the single outbound pipeline between the web gate and
// the upstream HaloSani API. It attaches the correct role's bearer token to
// every request and reacts to upstream 401s by clearing that role's token.
// Navigation after an expired session is owned by the caller, not by this
// package.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/halosani-dev/halosani/internal/session"
)

const (
	adminPathPrefix = "/admin"
	requestTimeout  = 30 * time.Second
)

// Request describes one upstream call. Callers that know their scope set it
// explicitly; when Scope is empty the gateway falls back to path-prefix
// classification (see ClassifyPath).
type Request struct {
	Method string
	Path   string
	Query  string
	Scope  session.Role
	Body   io.Reader
	// Header carries extra request headers (e.g. Content-Type). Optional.
	Header http.Header
}

// Response is the upstream answer, passed through to the caller unmodified
// for every status except 401. Content entities stay opaque JSON.
type Response struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

// AuthExpiredError signals that the upstream rejected the role's token. By
// the time the caller sees it, the token has already been cleared — exactly
// once, here.
type AuthExpiredError struct {
	Role session.Role
}

func (e *AuthExpiredError) Error() string {
	return fmt.Sprintf("session expired for role %q", e.Role)
}

// ClassifyPath maps an upstream path to its token scope. Paths under /admin
// are admin-scoped; everything else falls through to the user scope. The
// user fallback is deliberate: it reproduces the default branch the HaloSani
// client has always had, so an admin-style path that does not start with
// /admin silently uses the user token. Callers that need certainty set
// Request.Scope instead of relying on inference.
func ClassifyPath(path string) session.Role {
	if path == adminPathPrefix || strings.HasPrefix(path, adminPathPrefix+"/") {
		return session.RoleAdmin
	}
	return session.RoleUser
}

// Gateway wraps the upstream base URL, an HTTP client and the session store.
type Gateway struct {
	baseURL    string
	httpClient *http.Client
	store      session.Store
	logger     zerolog.Logger
}

// New creates a gateway for the given HaloSani API base URL.
func New(baseURL string, store session.Store, logger zerolog.Logger) *Gateway {
	return &Gateway{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
		store:  store,
		logger: logger,
	}
}

// SetHTTPClient sets a custom HTTP client
func (g *Gateway) SetHTTPClient(httpClient *http.Client) {
	g.httpClient = httpClient
}

// Do executes one upstream request on behalf of the visitor identified by
// sid. The token lookup happens once, at call time; concurrent in-flight
// requests are independent. There is no retry, backoff or deduplication —
// the gateway only decorates and inspects.
func (g *Gateway) Do(ctx context.Context, sid string, req Request) (*Response, error) {
	scope := req.Scope
	if !scope.Valid() {
		scope = ClassifyPath(req.Path)
	}

	url := g.baseURL + req.Path
	if req.Query != "" {
		url += "?" + req.Query
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, url, req.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	for key, values := range req.Header {
		for _, value := range values {
			httpReq.Header.Add(key, value)
		}
	}

	token, ok, err := g.store.Get(ctx, sid, scope)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s token: %w", scope, err)
	}
	if ok {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("upstream request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read upstream response: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		if err := g.store.Clear(ctx, sid, scope); err != nil {
			g.logger.Error().Err(err).Str("role", string(scope)).Msg("Failed to clear token after 401")
		}
		g.logger.Info().
			Str("role", string(scope)).
			Str("path", req.Path).
			Msg("Upstream rejected token, session cleared")
		return nil, &AuthExpiredError{Role: scope}
	}

	return &Response{
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
	}, nil
}

// DoJSON marshals payload as the JSON request body and executes the request.
func (g *Gateway) DoJSON(ctx context.Context, sid string, req Request, payload any) (*Response, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}
	req.Body = bytes.NewReader(data)
	if req.Header == nil {
		req.Header = http.Header{}
	}
	req.Header.Set("Content-Type", "application/json")
	return g.Do(ctx, sid, req)
}
