package server

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/halosani-dev/halosani/internal/gate"
	"github.com/halosani-dev/halosani/internal/gateway"
	"github.com/halosani-dev/halosani/internal/session"
)

// relay builds a pass-through handler for one upstream endpoint. Route
// parameters in upstreamPath (e.g. :id) are substituted from the request.
// The upstream owns the content entities and their validation; the gate only
// attaches the right token and mirrors status and body back.
func (s *Server) relay(scope session.Role, method, upstreamPath string) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := upstreamPath
		for _, param := range c.Params {
			path = strings.Replace(path, ":"+param.Key, url.PathEscape(param.Value), 1)
		}

		header := http.Header{}
		if contentType := c.ContentType(); contentType != "" {
			header.Set("Content-Type", contentType)
		}

		resp, err := s.gateway.Do(c.Request.Context(), gate.SID(c), gateway.Request{
			Method: method,
			Path:   path,
			Query:  c.Request.URL.RawQuery,
			Scope:  scope,
			Body:   c.Request.Body,
			Header: header,
		})
		if err != nil {
			s.upstreamError(c, err)
			return
		}

		c.Data(resp.StatusCode, contentTypeOr(resp), resp.Body)
	}
}

// relayJSON forwards an already-bound payload, mirroring the upstream answer.
func (s *Server) relayJSON(c *gin.Context, scope session.Role, method, path string, payload any) {
	resp, err := s.gateway.DoJSON(c.Request.Context(), gate.SID(c), gateway.Request{
		Method: method,
		Path:   path,
		Scope:  scope,
	}, payload)
	if err != nil {
		s.upstreamError(c, err)
		return
	}
	c.Data(resp.StatusCode, contentTypeOr(resp), resp.Body)
}

// upstreamError is the single place session expiry turns into navigation:
// the gateway has already cleared the token, this forces the full-page
// redirect to the role's login screen. Every other failure class surfaces to
// the caller as a gateway error.
func (s *Server) upstreamError(c *gin.Context, err error) {
	var expired *gateway.AuthExpiredError
	if errors.As(err, &expired) {
		c.Redirect(http.StatusFound, gate.LoginRedirect(expired.Role, c.Request.URL.RequestURI()))
		c.Abort()
		return
	}
	respondWithError(c, s.logger, http.StatusBadGateway, err, "Upstream API unavailable")
}

func contentTypeOr(resp *gateway.Response) string {
	if resp.ContentType != "" {
		return resp.ContentType
	}
	return "application/json"
}
