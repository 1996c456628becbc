package api

import (
	"net/http"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/unitynodes/unity-nodes-api/internal/api/handler"
	"github.com/unitynodes/unity-nodes-api/internal/api/middleware"
	"github.com/unitynodes/unity-nodes-api/internal/core/domain"
	"github.com/unitynodes/unity-nodes-api/internal/core/ports"
	"github.com/unitynodes/unity-nodes-api/internal/infrastructure/http/handlers"

	_ "github.com/unitynodes/unity-nodes-api/docs"
)

// Dependencies are the wired services the router exposes.
type Dependencies struct {
	Licenses ports.LicenseService
	Rewards  ports.RewardService
	Stats    ports.StatsService
	Auth     ports.AuthService

	JWTSecret      string
	RateLimitRPS   float64
	RateLimitBurst int
	AllowedOrigins []string
	// ReadinessChecks are run by /health/ready, keyed by dependency name.
	ReadinessChecks map[string]handlers.Check

	// Registerer and Gatherer default to the prometheus globals.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer

	// Version is reported by the liveness probe.
	Version string

	Logger zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	// Client IPs come from the socket; X-Forwarded-For and X-Real-IP are
	// client controlled and would let callers dodge the rate limiter.
	e.IPExtractor = echo.ExtractIPDirect()
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)

	if deps.Registerer == nil {
		deps.Registerer = prometheus.DefaultRegisterer
	}
	if deps.Gatherer == nil {
		deps.Gatherer = prometheus.DefaultGatherer
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(deps.Logger))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: deps.AllowedOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderContentType, echo.HeaderAuthorization, "Idempotency-Key"},
	}))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "unitynodes",
		Subsystem:  "http",
		Registerer: deps.Registerer,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	}))

	// --- Dependencies ---
	licenseHandler := handler.NewLicenseHandler(deps.Licenses)
	rewardHandler := handler.NewRewardHandler(deps.Rewards)
	statsHandler := handler.NewStatsHandler(deps.Stats)
	authHandler := handler.NewAuthHandler(deps.Auth)
	adminHandler := handler.NewAdminHandler(deps.Licenses)
	authMiddleware := middleware.Auth(deps.JWTSecret)

	// --- Public API ---
	allocation := []echo.MiddlewareFunc{}
	if deps.RateLimitRPS > 0 {
		limiter := middleware.NewRateLimiter(deps.RateLimitRPS, deps.RateLimitBurst, deps.Logger)
		allocation = append(allocation, limiter.Middleware())
	}

	apiGroup := e.Group("/api")
	apiGroup.POST("/licenses/generate", licenseHandler.Generate, allocation...)
	apiGroup.POST("/licenses", licenseHandler.Generate, allocation...)
	apiGroup.GET("/licenses", licenseHandler.List)
	apiGroup.GET("/stats", statsHandler.Snapshot)
	apiGroup.GET("/rewards", rewardHandler.Summary)
	apiGroup.POST("/rewards", rewardHandler.Record)

	// --- Auth routes ---
	e.POST("/auth/login", authHandler.Login)
	e.POST("/auth/register", authHandler.Register, authMiddleware, middleware.RBAC(domain.RoleAdmin))

	// --- Inventory maintenance ---
	admin := e.Group("/admin", authMiddleware)
	admin.POST("/licenses", adminHandler.Provision, middleware.RBAC(domain.RoleAdmin))
	admin.POST("/licenses/:id/activate", adminHandler.Activate, middleware.RBAC(domain.RoleAdmin, domain.RoleOperator))

	// --- Health probes (no auth required) ---
	healthHandler := handlers.NewHealthHandler(deps.Version)
	readinessHandler := handlers.NewReadinessHandler(deps.ReadinessChecks)

	e.GET("/health", healthHandler.Liveness)           // liveness  – is the process alive?
	e.GET("/health/ready", readinessHandler.Readiness) // readiness – are dependencies up?

	// --- Ops ---
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: deps.Gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

// requestLogger writes one zerolog entry per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		Skipper: func(c echo.Context) bool {
			p := c.Path()
			return p == "/health" || p == "/metrics"
		},
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Status >= http.StatusInternalServerError {
				ev = log.Error().Err(v.Error)
			} else if v.Status >= http.StatusBadRequest {
				ev = log.Warn()
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("remote_ip", v.RemoteIP).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
