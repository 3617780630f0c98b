// Package server
//
// @title HaloSani Web Gate
// @version 1.0
// @description Session gate and API relay for the HaloSani web client
// @host localhost:8080
// @BasePath /
package server

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/glebarez/sqlite"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/halosani-dev/halosani/internal/config"
	"github.com/halosani-dev/halosani/internal/gate"
	"github.com/halosani-dev/halosani/internal/gateway"
	"github.com/halosani-dev/halosani/internal/models"
	"github.com/halosani-dev/halosani/internal/session"
)

// Server represents the HTTP server
type Server struct {
	router       *gin.Engine
	db           *gorm.DB
	store        session.Store
	gateway      *gateway.Gateway
	config       *config.Config
	logger       zerolog.Logger
	cookieSecret []byte
	version      string
}

// New creates a new server instance
func New(cfg *config.Config, zlog zerolog.Logger, version string) (*Server, error) {
	store, db, err := newSessionStore(cfg, zlog)
	if err != nil {
		return nil, err
	}

	// Secret for the signed visitor-session cookie. A missing secret gets a
	// random one, at the cost of invalidating cookies across restarts.
	cookieSecret := []byte(cfg.Session.Secret)
	if len(cookieSecret) == 0 {
		raw := make([]byte, 32)
		if _, err := rand.Read(raw); err != nil {
			return nil, fmt.Errorf("failed to generate session secret: %w", err)
		}
		cookieSecret = []byte(hex.EncodeToString(raw))
		zlog.Warn().Msg("SESSION_SECRET not set - visitor sessions will not survive restarts")
	}

	// Register custom validators used by the auth request bindings
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("otpcode", func(fl validator.FieldLevel) bool {
			code := fl.Field().String()
			if len(code) != 6 {
				return false
			}
			for _, char := range code {
				if char < '0' || char > '9' {
					return false
				}
			}
			return true
		})
	}

	server := &Server{
		db:           db,
		store:        store,
		gateway:      gateway.New(cfg.API.BaseURL, store, zlog),
		config:       cfg,
		logger:       zlog,
		cookieSecret: cookieSecret,
		version:      version,
	}

	// Setup router
	server.setupRouter()

	return server, nil
}

// newSessionStore builds the configured session backend. Storage being
// unavailable is fatal: the gate cannot run without its token store.
func newSessionStore(cfg *config.Config, zlog zerolog.Logger) (session.Store, *gorm.DB, error) {
	switch cfg.Session.Backend {
	case "redis":
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		store, err := session.NewRedisStore(ctx, cfg.Session.RedisAddress)
		if err != nil {
			return nil, nil, err
		}
		zlog.Info().Str("address", cfg.Session.RedisAddress).Msg("Using redis session backend")
		return store, nil, nil

	case "memory":
		zlog.Warn().Msg("Using in-memory session backend - sessions will not survive restarts")
		return session.NewMemoryStore(), nil, nil

	default:
		db, err := initDatabase(cfg, zlog)
		if err != nil {
			return nil, nil, err
		}
		if err := models.AutoMigrate(db); err != nil {
			return nil, nil, err
		}
		return session.NewGormStore(db), db, nil
	}
}

// initDatabase initializes the database connection with production settings
func initDatabase(cfg *config.Config, zlog zerolog.Logger) (*gorm.DB, error) {
	const (
		maxOpenConns    = 8
		maxIdleConns    = 4
		connMaxLifetime = 300 * time.Second
		busyTimeout     = 5000
	)

	db, err := gorm.Open(sqlite.Open(cfg.Session.DatabaseURL), &gorm.Config{
		Logger: logger.New(
			log.New(os.Stdout, "\r\n", log.LstdFlags),
			logger.Config{
				LogLevel:                  logger.Error,
				IgnoreRecordNotFoundError: true,
				SlowThreshold:             200 * time.Millisecond,
			},
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetMaxIdleConns(maxIdleConns)
	sqlDB.SetConnMaxLifetime(connMaxLifetime)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// WAL mode first, for concurrent reads under the request load
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		fmt.Sprintf("PRAGMA busy_timeout=%d", busyTimeout),
		"PRAGMA foreign_keys=1",
	}
	for _, pragma := range pragmas {
		if err := db.Exec(pragma).Error; err != nil {
			zlog.Warn().Str("pragma", pragma).Err(err).Msg("Failed to apply pragma")
		}
	}

	return db, nil
}

// setupRouter configures the Gin router with routes and middleware
func (s *Server) setupRouter() {
	gin.SetMode(gin.ReleaseMode)

	s.router = gin.New()

	s.router.Use(gin.Recovery())
	s.router.Use(s.loggingMiddleware())

	// CORS middleware for the SPA origin
	s.router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{s.config.Server.AllowedOrigin},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Every route below resolves (or mints) the visitor session cookie
	s.router.Use(s.sessionMiddleware())

	// Health check endpoint (no auth required)
	s.router.GET("/health", s.healthCheck)

	// Public content relays (no token attached unless one is present)
	s.router.GET("/webinfo", s.relay(session.RoleUser, http.MethodGet, "/webinfo"))
	s.router.GET("/psychologists", s.relay(session.RoleUser, http.MethodGet, "/psychologists"))
	s.router.GET("/psychologists/:id", s.relay(session.RoleUser, http.MethodGet, "/psychologists/:id"))

	// User auth flows (public by necessity)
	s.router.POST("/user/login", s.login(session.RoleUser))
	s.router.POST("/user/logout", s.logout(session.RoleUser))
	s.router.POST("/user/register", s.register)
	s.router.POST("/user/verify-otp", s.verifyOTP)
	s.router.POST("/user/resend-otp", s.resendOTP)
	s.router.POST("/user/forgot-password", s.forgotPassword)
	s.router.POST("/user/reset-password", s.resetPassword)

	// User area, gated on user_token presence
	user := s.router.Group("/user")
	user.Use(gate.Require(s.store, session.RoleUser, s.logger))
	{
		user.GET("/me", s.relay(session.RoleUser, http.MethodGet, "/user/me"))
		user.GET("/blogs", s.relay(session.RoleUser, http.MethodGet, "/user/blogs"))
		user.GET("/blogs/:id", s.relay(session.RoleUser, http.MethodGet, "/user/blogs/:id"))
		user.GET("/events", s.relay(session.RoleUser, http.MethodGet, "/user/events"))
		user.GET("/events/:id", s.relay(session.RoleUser, http.MethodGet, "/user/events/:id"))
		user.GET("/ebooks", s.relay(session.RoleUser, http.MethodGet, "/user/ebooks"))
		user.GET("/ebooks/:id", s.relay(session.RoleUser, http.MethodGet, "/user/ebooks/:id"))
		user.GET("/videos", s.relay(session.RoleUser, http.MethodGet, "/user/videos"))
		user.GET("/videos/:id", s.relay(session.RoleUser, http.MethodGet, "/user/videos/:id"))
		user.GET("/notifications", s.relay(session.RoleUser, http.MethodGet, "/user/notifications"))
		user.GET("/feedback", s.relay(session.RoleUser, http.MethodGet, "/user/feedback"))
		user.POST("/feedback", s.relay(session.RoleUser, http.MethodPost, "/user/feedback"))
	}

	// Admin auth flows
	s.router.POST("/admin/login", s.login(session.RoleAdmin))
	s.router.POST("/admin/logout", s.logout(session.RoleAdmin))

	// Admin area, gated on admin_token presence
	admin := s.router.Group("/admin")
	admin.Use(gate.Require(s.store, session.RoleAdmin, s.logger))
	{
		admin.GET("/me", s.relay(session.RoleAdmin, http.MethodGet, "/admin/me"))
		admin.GET("/dashboard", s.relay(session.RoleAdmin, http.MethodGet, "/admin/dashboard"))
		admin.GET("/feedback", s.relay(session.RoleAdmin, http.MethodGet, "/admin/feedback"))
		admin.GET("/feedback/summary", s.relay(session.RoleAdmin, http.MethodGet, "/admin/feedback/summary"))
		admin.GET("/webinfo", s.relay(session.RoleAdmin, http.MethodGet, "/admin/webinfo"))
		admin.PUT("/webinfo", s.relay(session.RoleAdmin, http.MethodPut, "/admin/webinfo"))

		for _, resource := range []string{"blogs", "events", "ebooks", "videos", "psychologists"} {
			s.registerAdminCRUD(admin, resource)
		}
	}
}

// registerAdminCRUD wires the standard management relays for one content
// collection. The content itself stays opaque JSON owned by the upstream API.
func (s *Server) registerAdminCRUD(group *gin.RouterGroup, resource string) {
	base := "/" + resource
	upstream := "/admin/" + resource

	group.GET(base, s.relay(session.RoleAdmin, http.MethodGet, upstream))
	group.GET(base+"/:id", s.relay(session.RoleAdmin, http.MethodGet, upstream+"/:id"))
	group.POST(base, s.relay(session.RoleAdmin, http.MethodPost, upstream))
	group.PUT(base+"/:id", s.relay(session.RoleAdmin, http.MethodPut, upstream+"/:id"))
	group.DELETE(base+"/:id", s.relay(session.RoleAdmin, http.MethodDelete, upstream+"/:id"))
}

// loggingMiddleware creates a custom logging middleware using zerolog
func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start)

		s.logger.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", duration).
			Str("client_ip", c.ClientIP()).
			Msg("HTTP request")
	}
}

// @Router /health [get]
// @Success 200 {object} map[string]interface{}
func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "online",
		"timestamp": time.Now().UTC(),
		"service":   "halosani-web-gate",
	})
}

// GetDB returns the database connection for use by workers. It is nil for
// the redis and memory backends.
func (s *Server) GetDB() *gorm.DB {
	return s.db
}

// Router exposes the configured handler, mainly for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// Start starts the HTTP server
func (s *Server) Start() error {
	addr := ":" + s.config.Server.Port

	// Setup signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		ReadHeaderTimeout: 30 * time.Second,
		IdleTimeout:       300 * time.Second,
	}

	// Start server in goroutine
	go func() {
		s.logger.Info().Str("addr", addr).Msg("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error().Err(err).Msg("HTTP server error")
		}
	}()

	// Wait for shutdown signal
	<-sigChan
	s.logger.Info().Msg("Received shutdown signal, shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Error().Err(err).Msg("Error shutting down HTTP server")
		return err
	}

	s.logger.Info().Msg("Server shutdown complete")

	// Close database connection to flush WAL writes
	if s.db != nil {
		if sqlDB, err := s.db.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				s.logger.Error().Err(err).Msg("Error closing database")
			}
		}
	}

	if closer, ok := s.store.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			s.logger.Warn().Err(err).Msg("Error closing session store")
		}
	}

	return nil
}
