package router

import (
	"time"

	"influencer-platform/backend/pkg/config"
	"influencer-platform/backend/pkg/di"
	"influencer-platform/backend/pkg/errors"
	"influencer-platform/backend/pkg/logger"
	"influencer-platform/backend/pkg/middleware"

	"github.com/gin-gonic/gin"
)

// Track server start time for uptime calculations
var startTime = time.Now()

// Router serves the operational endpoints: health, metrics and version.
type Router struct {
	Engine    *gin.Engine
	Container *di.Container
	Logger    *logger.Logger
	Config    *config.Config
}

// New creates a new router with the given container
func New(container *di.Container, cfg *config.Config) *Router {
	if cfg == nil {
		cfg = config.Get()
	}

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()

	// The request ID must exist before the logger middleware reads it
	engine.Use(middleware.RequestIDMiddleware())
	engine.Use(logger.Middleware(container.Logger))
	engine.Use(errors.ErrorHandler())
	engine.Use(errors.RecoveryWithLogger())

	return &Router{
		Engine:    engine,
		Container: container,
		Logger:    container.Logger,
		Config:    cfg,
	}
}

// SetupRoutes registers all application routes
func (r *Router) SetupRoutes() {
	r.setupHealthRoutes()

	r.Engine.GET("/metrics", gin.WrapH(r.Container.Observability.Handler()))
	r.Engine.GET("/version", r.versionHandler())

	r.Engine.NoRoute(func(c *gin.Context) {
		_ = c.Error(errors.NewNotFoundError("ROUTE_NOT_FOUND", "no route for "+c.Request.URL.Path))
	})
}

func (r *Router) versionHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(200, gin.H{
			"service": r.Config.Observability.ServiceName,
			"version": r.Config.Server.Version,
			"env":     r.Config.Server.Env,
			"uptime":  time.Since(startTime).Round(time.Second).String(),
		})
	}
}
