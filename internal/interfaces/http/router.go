package http

import (
	"github.com/gin-gonic/gin"

	"github.com/cryptogift/ledger/internal/infrastructure/config"
	"github.com/cryptogift/ledger/internal/interfaces/http/middleware"
	"github.com/cryptogift/ledger/internal/interfaces/http/routes"
	"github.com/cryptogift/ledger/internal/shared/logger"
)

// Router owns the gin engine and the container it routes to.
type Router struct {
	engine    *gin.Engine
	container *Container
	log       logger.Interface
}

// NewRouter creates a router on a fresh engine.
func NewRouter(container *Container, log logger.Interface) *Router {
	return &Router{
		engine:    gin.New(),
		container: container,
		log:       log,
	}
}

// SetupRoutes installs the middleware chain and all routes.
func (r *Router) SetupRoutes(cfg *config.Config) {
	r.engine.Use(middleware.Logger(r.log))
	r.engine.Use(middleware.Recovery(r.log))
	r.engine.Use(middleware.CORS(cfg.Server.AllowedOrigins))
	r.engine.Use(middleware.SecurityHeaders())
	if cfg.Server.RequestTimeout > 0 {
		r.engine.Use(middleware.RequestTimeout(cfg.Server.RequestTimeout))
	}

	routes.SetupHealthRoutes(r.engine, r.container.healthHandler)
	routes.SetupReferralRoutes(r.engine, &routes.ReferralRouteConfig{
		ReferralHandler: r.container.referralHandler,
		WriteLimiter:    r.container.writeLimiter,
		CronMiddleware:  r.container.cronMiddleware,
	})
}

// Engine returns the configured gin engine.
func (r *Router) Engine() *gin.Engine {
	return r.engine
}

// Shutdown releases everything the container holds.
func (r *Router) Shutdown() {
	r.container.Shutdown()
}
