package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/halosani-dev/halosani/internal/gate"
	"github.com/halosani-dev/halosani/internal/gateway"
	"github.com/halosani-dev/halosani/internal/session"
)

// LoginRequest represents a login request for either role
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RegisterRequest represents a new user registration
type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

// VerifyOTPRequest confirms the emailed one-time code after registration
type VerifyOTPRequest struct {
	Email string `json:"email" binding:"required,email"`
	OTP   string `json:"otp" binding:"required,otpcode"`
}

// ResendOTPRequest asks the upstream to send a fresh one-time code
type ResendOTPRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ForgotPasswordRequest starts the password reset flow
type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ResetPasswordRequest completes the password reset flow
type ResetPasswordRequest struct {
	Email    string `json:"email" binding:"required,email"`
	OTP      string `json:"otp" binding:"required,otpcode"`
	Password string `json:"password" binding:"required,min=8"`
}

// authResponse is the slice of the upstream auth payload the gate acts on.
// Everything else in the payload is relayed untouched.
type authResponse struct {
	Token string `json:"token"`
}

// @Summary Login
// @Description Authenticate against the upstream API and store the role's token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login request"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Router /user/login [post]
// @Router /admin/login [post]
func (s *Server) login(role session.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		sid := gate.SID(c)
		resp, err := s.gateway.DoJSON(c.Request.Context(), sid, gateway.Request{
			Method: http.MethodPost,
			Path:   role.LoginPath(),
			Scope:  role,
		}, req)
		if err != nil {
			// A 401 here is just bad credentials; the visitor is already at
			// the login screen, so no redirect.
			var expired *gateway.AuthExpiredError
			if errors.As(err, &expired) {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
				return
			}
			respondWithError(c, s.logger, http.StatusBadGateway, err, "Upstream API unavailable")
			return
		}

		if resp.StatusCode != http.StatusOK {
			c.Data(resp.StatusCode, contentTypeOr(resp), resp.Body)
			return
		}

		var auth authResponse
		if err := json.Unmarshal(resp.Body, &auth); err != nil || auth.Token == "" {
			respondWithError(c, s.logger, http.StatusBadGateway, err, "Upstream login response had no token")
			return
		}

		if err := s.store.Set(c.Request.Context(), sid, role, auth.Token); err != nil {
			respondWithError(c, s.logger, http.StatusInternalServerError, err, "Failed to store session token")
			return
		}

		s.logger.Info().Str("role", string(role)).Msg("Login succeeded, token stored")

		// The pending redirect target is consumed exactly once, here
		c.JSON(http.StatusOK, gin.H{
			"redirect": gate.SafeNext(c.Query(gate.NextParam), role),
			"payload":  json.RawMessage(resp.Body),
		})
	}
}

// @Summary Logout
// @Description Clear the role's token; upstream logout is best-effort
// @Tags auth
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /user/logout [post]
// @Router /admin/logout [post]
func (s *Server) logout(role session.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		sid := gate.SID(c)

		// Tell the upstream first, while the token is still attached. A 401
		// means the token was already dead upstream and is cleared either way.
		path := "/user/logout"
		if role == session.RoleAdmin {
			path = "/admin/logout"
		}
		if _, err := s.gateway.Do(c.Request.Context(), sid, gateway.Request{
			Method: http.MethodPost,
			Path:   path,
			Scope:  role,
		}); err != nil {
			var expired *gateway.AuthExpiredError
			if !errors.As(err, &expired) {
				s.logger.Warn().Err(err).Str("role", string(role)).Msg("Upstream logout failed")
			}
		}

		if err := s.store.Clear(c.Request.Context(), sid, role); err != nil {
			respondWithError(c, s.logger, http.StatusInternalServerError, err, "Failed to clear session token")
			return
		}

		c.JSON(http.StatusOK, gin.H{"redirect": role.LoginPath()})
	}
}

// @Summary Register
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "Registration request"
// @Router /user/register [post]
func (s *Server) register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s.relayJSON(c, session.RoleUser, http.MethodPost, "/user/register", req)
}

// @Summary Verify OTP
// @Description Confirm the emailed code; a token in the response authenticates the user
// @Tags auth
// @Accept json
// @Produce json
// @Param request body VerifyOTPRequest true "OTP verification request"
// @Router /user/verify-otp [post]
func (s *Server) verifyOTP(c *gin.Context) {
	var req VerifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sid := gate.SID(c)
	resp, err := s.gateway.DoJSON(c.Request.Context(), sid, gateway.Request{
		Method: http.MethodPost,
		Path:   "/user/verify-otp",
		Scope:  session.RoleUser,
	}, req)
	if err != nil {
		s.upstreamError(c, err)
		return
	}

	// A successful verification responds with a token, exactly like login
	if resp.StatusCode == http.StatusOK {
		var auth authResponse
		if err := json.Unmarshal(resp.Body, &auth); err == nil && auth.Token != "" {
			if err := s.store.Set(c.Request.Context(), sid, session.RoleUser, auth.Token); err != nil {
				respondWithError(c, s.logger, http.StatusInternalServerError, err, "Failed to store session token")
				return
			}
			s.logger.Info().Msg("OTP verified, user token stored")
		}
	}

	c.Data(resp.StatusCode, contentTypeOr(resp), resp.Body)
}

// @Summary Resend OTP
// @Tags auth
// @Router /user/resend-otp [post]
func (s *Server) resendOTP(c *gin.Context) {
	var req ResendOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s.relayJSON(c, session.RoleUser, http.MethodPost, "/user/resend-otp", req)
}

// @Summary Forgot password
// @Tags auth
// @Router /user/forgot-password [post]
func (s *Server) forgotPassword(c *gin.Context) {
	var req ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s.relayJSON(c, session.RoleUser, http.MethodPost, "/user/forgot-password", req)
}

// @Summary Reset password
// @Tags auth
// @Router /user/reset-password [post]
func (s *Server) resetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s.relayJSON(c, session.RoleUser, http.MethodPost, "/user/reset-password", req)
}
