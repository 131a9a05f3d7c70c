package httpapi

import (
	"github.com/gin-gonic/gin"

	authgate "github.com/kesparza-dev/authgate"
)

// Config tunes the HTTP surface.
type Config struct {
	// AllowOrigin is the CORS origin reflected in responses. Empty
	// disables the CORS headers entirely.
	AllowOrigin string
}

// Server binds the engine to a gin router.
type Server struct {
	engine *authgate.Engine
	config Config
}

// NewServer creates a Server for the given engine.
func NewServer(engine *authgate.Engine, cfg Config) *Server {
	return &Server{
		engine: engine,
		config: cfg,
	}
}

// Router builds the gin handler tree.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestContext())
	router.Use(requestLogger(s.engine))
	if s.config.AllowOrigin != "" {
		router.Use(corsHeaders(s.config.AllowOrigin))
	}

	router.GET("/healthz", s.handleHealthz)
	router.POST("/register", s.handleRegister)
	router.POST("/login", s.handleLogin)
	router.POST("/verify-otp", s.handleVerifyOTP)
	router.GET("/verify-token", s.handleVerifyToken)
	router.POST("/request-password-reset", s.handleRequestPasswordReset)
	router.POST("/verify-recovery-otp", s.handleVerifyRecoveryOTP)
	router.POST("/reset-password", s.handleResetPassword)

	return router
}
