// Package gate decides, per navigation, whether a protected route renders or
// the visitor is sent to the role's login screen. The check is a synchronous
// session-store read — no network call, no loading state — and is
// re-evaluated on every request; the gate keeps no memory of prior
// evaluations.
package gate

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/halosani-dev/halosani/internal/session"
)

// SIDKey is the gin context key under which the visitor session ID is set by
// the server's session middleware.
const SIDKey = "halosani_sid"

// NextParam carries the pending redirect target through the login redirect.
const NextParam = "next"

// SID returns the visitor session ID resolved for this request.
func SID(c *gin.Context) string {
	return c.GetString(SIDKey)
}

// LoginRedirect builds the login URL for role, preserving target (path plus
// query) as the pending redirect target so the login flow can return the
// visitor there after success.
func LoginRedirect(role session.Role, target string) string {
	return role.LoginPath() + "?" + NextParam + "=" + url.QueryEscape(target)
}

// Require gates the nested routes on the presence of the role's token. A
// missing token redirects to the role's login route (replacing the current
// navigation, nothing is pushed) with the original target preserved; a
// present token lets the chain render. A present-but-expired token also
// renders: invalidation is eventually consistent and arrives via the
// gateway's 401 handling.
func Require(store session.Store, role session.Role, logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		sid := SID(c)

		_, ok, err := store.Get(c.Request.Context(), sid, role)
		if err != nil {
			logger.Error().Err(err).Str("role", string(role)).Msg("Session store read failed")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}

		if !ok {
			target := c.Request.URL.RequestURI()
			logger.Debug().
				Str("role", string(role)).
				Str("target", target).
				Msg("No session token, redirecting to login")
			c.Redirect(http.StatusFound, LoginRedirect(role, target))
			c.Abort()
			return
		}

		c.Next()
	}
}

// SafeNext validates a pending redirect target taken from the request. Only
// same-site relative paths are honored; anything absolute or scheme-relative
// falls back to the role's default landing route.
func SafeNext(next string, role session.Role) string {
	fallback := "/"
	if role == session.RoleAdmin {
		fallback = "/admin/dashboard"
	}

	if next == "" || next[0] != '/' {
		return fallback
	}
	// "//evil.example" parses as a scheme-relative URL
	if len(next) > 1 && next[1] == '/' {
		return fallback
	}
	if _, err := url.ParseRequestURI(next); err != nil {
		return fallback
	}
	return next
}
