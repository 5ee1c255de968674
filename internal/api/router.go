package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/kalakrut/portal/docs" // registers the OpenAPI document

	"github.com/kalakrut/portal/internal/api/handler"
	"github.com/kalakrut/portal/internal/api/middleware"
	"github.com/kalakrut/portal/internal/core/domain"
	"github.com/kalakrut/portal/internal/core/ports"
)

// Deps carries everything the HTTP surface needs.
type Deps struct {
	JWTSecret  string
	NewPortal  handler.PortalFactory
	Sessions   handler.SessionStore
	Tokens     handler.TokenIssuer
	Inbox      handler.NotificationInbox
	Directory  ports.UserDirectory
	Moderation ports.ModerationService
	// Pingers are reported by /health/ready under their map key.
	Pingers map[string]ports.Pinger
	Log     zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(d.Log))
	e.Use(echoprometheus.NewMiddleware("portal"))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(d.NewPortal, d.Sessions, d.Tokens, d.Inbox, d.Log)
	sessionHandler := handler.NewSessionHandler(d.Sessions, d.Inbox, d.Moderation)
	moderationHandler := handler.NewModerationHandler(d.Sessions, d.Moderation, d.Log)
	directoryHandler := handler.NewDirectoryHandler(d.Sessions, d.Directory)
	authMiddleware := middleware.Auth(d.JWTSecret)

	// --- Auth routes ---
	e.POST("/auth/login", authHandler.Login)
	e.POST("/auth/signup", authHandler.Signup)
	e.POST("/auth/logout", authHandler.Logout, authMiddleware)

	// --- Capability lookup (public) ---
	e.GET("/capabilities", directoryHandler.AllCapabilities)
	e.GET("/capabilities/:role", directoryHandler.Capabilities)

	// --- Session routes ---
	s := e.Group("/session", authMiddleware)
	s.GET("", sessionHandler.Get)
	s.GET("/view", sessionHandler.Route)
	s.POST("/view", sessionHandler.Navigate)
	s.GET("/notifications", sessionHandler.Notifications)
	s.PATCH("/profile", sessionHandler.UpdateProfile)
	s.POST("/profiles/:id/view", sessionHandler.ViewProfile)
	s.POST("/violations", sessionHandler.FlagViolation)
	s.POST("/appeal", sessionHandler.Appeal)

	// --- Moderation (administrators) ---
	m := e.Group("/moderation", authMiddleware, middleware.RequireCapability(domain.CapManageAllContracts))
	m.GET("/cases", moderationHandler.List)
	m.GET("/cases/:id", moderationHandler.Get)
	m.POST("/cases/:id/resolve", moderationHandler.Resolve)

	// --- Directory administration ---
	dir := e.Group("/directory", authMiddleware)
	dir.GET("/users", directoryHandler.Users, middleware.RequireCapability(domain.CapAdministerPortal))
	dir.POST("/purge-demo", directoryHandler.PurgeDemo, middleware.RequireCapability(domain.CapAccessSystemConfig))

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(d.Pingers)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?

	// --- Observability ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(_ echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Error != nil || v.Status >= 500 {
				ev = log.Error().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
