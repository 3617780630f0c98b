package server

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	sessionCookieName = "halosani_session"
	// Long-lived on purpose: the cookie only names the visitor, the tokens
	// inside the session store are what authenticate anything.
	sessionCookieMaxAge = 365 * 24 * time.Hour
)

// sidClaims wraps the visitor session ID in a signed cookie payload
type sidClaims struct {
	SID string `json:"sid"`
	jwt.RegisteredClaims
}

// signSID creates the signed cookie value for a visitor session ID
func (s *Server) signSID(sid string) (string, error) {
	claims := sidClaims{
		SID: sid,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.cookieSecret)
}

// parseSID validates a cookie value and returns the visitor session ID
func (s *Server) parseSID(value string) (string, error) {
	token, err := jwt.ParseWithClaims(value, &sidClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.cookieSecret, nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to parse session cookie: %w", err)
	}

	claims, ok := token.Claims.(*sidClaims)
	if !ok || !token.Valid || claims.SID == "" {
		return "", fmt.Errorf("invalid session cookie")
	}

	return claims.SID, nil
}
