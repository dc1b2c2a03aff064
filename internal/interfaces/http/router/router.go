// Package router wires the admin API routes and middleware onto gin.
package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/stockwatch/backend/internal/infrastructure/logger"
	"github.com/stockwatch/backend/internal/interfaces/http/handler"
	"github.com/stockwatch/backend/internal/interfaces/http/middleware"
)

// RouteRegistrar defines the interface for registering versioned API routes
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// Config holds router configuration
type Config struct {
	// Env selects the gin mode ("production" -> release)
	Env string
	// ServiceName labels traces emitted by the HTTP layer
	ServiceName string
	// TracingEnabled toggles otelgin instrumentation
	TracingEnabled bool
	// TrustedProxies restricts which proxies gin trusts for client IPs
	TrustedProxies []string
}

// New builds the gin engine with the standard middleware chain and routes
func New(cfg Config, log *zap.Logger, system *handler.SystemHandler, registrars ...RouteRegistrar) (*gin.Engine, error) {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		return nil, err
	}

	engine.Use(middleware.RequestID())
	engine.Use(middleware.Tracing(middleware.TracingConfig{
		ServiceName: cfg.ServiceName,
		Enabled:     cfg.TracingEnabled,
	}))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(logger.Recovery(log))

	system.RegisterRoutes(engine)

	api := engine.Group("/api/v1")
	for _, registrar := range registrars {
		registrar.RegisterRoutes(api)
	}

	return engine, nil
}
