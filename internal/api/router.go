package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/censudex/clients-service/docs"
	"github.com/censudex/clients-service/internal/api/handler"
	"github.com/censudex/clients-service/internal/api/middleware"
	"github.com/censudex/clients-service/internal/core/ports"
	"github.com/censudex/clients-service/internal/core/validation"
)

// ServiceName is reported by the health probes.
const ServiceName = "clients-service"

// RouterDeps holds what the HTTP front-end needs.
type RouterDeps struct {
	Service   ports.ClientService
	Validator *validation.Validator
	// Health is pinged by the readiness probe, keyed by dependency name.
	Health map[string]ports.Pinger
	// HideHealthErrors keeps driver error text out of readiness responses.
	HideHealthErrors bool
	// JWTSecret enables bearer authentication on /api/clients when non-empty.
	JWTSecret string
	Logger    zerolog.Logger
	// Registerer and Gatherer default to the prometheus globals.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps RouterDeps) *echo.Echo {
	if deps.Registerer == nil {
		deps.Registerer = prometheus.DefaultRegisterer
	}
	if deps.Gatherer == nil {
		deps.Gatherer = prometheus.DefaultGatherer
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator(deps.Validator)
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(deps.Logger))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "clients_http",
		Registerer: deps.Registerer,
	}))

	// --- Operational routes (no auth required) ---
	health := handler.NewHealthHandler(ServiceName, deps.Health)
	if deps.HideHealthErrors {
		health.HideErrors()
	}
	e.GET("/health", health.Liveness)
	e.GET("/health/ready", health.Readiness)
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: deps.Gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- Client routes ---
	clients := e.Group("/api/clients")
	if deps.JWTSecret != "" {
		clients.Use(middleware.Auth(deps.JWTSecret))
	}
	handler.NewClientHandler(deps.Service).Register(clients)

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
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Error != nil {
				ev = log.Warn().Err(v.Error)
			}
			if sub, ok := c.Get(middleware.CtxSubject).(string); ok && sub != "" {
				username, _ := c.Get(middleware.CtxUsername).(string)
				ev = ev.Str("subject", sub).Str("username", username)
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
