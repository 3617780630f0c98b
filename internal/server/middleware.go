package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"github.com/halosani-dev/halosani/internal/gate"
)

func respondWithError(c *gin.Context, log zerolog.Logger, statusCode int, err error, message string) {
	log.Warn().Err(err).Msg(message)
	c.JSON(statusCode, gin.H{"error": message})
	c.Abort()
}

// sessionMiddleware resolves the visitor session ID from the signed cookie,
// minting a fresh one when the cookie is absent or fails validation. The sid
// is only an identity for the token storage; it grants nothing by itself.
func (s *Server) sessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		sid := ""

		if value, err := c.Cookie(sessionCookieName); err == nil {
			if parsed, err := s.parseSID(value); err == nil {
				sid = parsed
			} else {
				s.logger.Debug().Err(err).Msg("Discarding invalid session cookie")
			}
		}

		if sid == "" {
			sid = ulid.Make().String()

			signed, err := s.signSID(sid)
			if err != nil {
				respondWithError(c, s.logger, http.StatusInternalServerError, err, "Internal server error")
				return
			}

			secure := strings.HasPrefix(s.config.API.BaseURL, "https://")
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(sessionCookieName, signed, int(sessionCookieMaxAge.Seconds()), "/", "", secure, true)
		}

		c.Set(gate.SIDKey, sid)
		c.Next()
	}
}
