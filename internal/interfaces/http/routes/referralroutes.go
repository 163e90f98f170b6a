package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/cryptogift/ledger/internal/interfaces/http/handlers"
	"github.com/cryptogift/ledger/internal/interfaces/http/middleware"
)

// ReferralRouteConfig holds dependencies for referral routes.
type ReferralRouteConfig struct {
	ReferralHandler *handlers.ReferralHandler
	// WriteLimiter is optional; nil leaves write endpoints unthrottled.
	WriteLimiter   *middleware.RateLimiter
	CronMiddleware *middleware.CronSecretMiddleware
}

// SetupReferralRoutes configures the ledger API.
func SetupReferralRoutes(engine *gin.Engine, cfg *ReferralRouteConfig) {
	h := cfg.ReferralHandler

	referrals := engine.Group("/referrals")
	{
		writes := referrals.Group("")
		if cfg.WriteLimiter != nil {
			writes.Use(cfg.WriteLimiter.Limit())
		}
		{
			writes.POST("/track", h.TrackClick)
			writes.POST("/track-legacy", h.TrackClickLegacy)
			writes.POST("/activate", h.ActivateReferral)
			writes.POST("/sessions", h.RecordSession)
		}

		referrals.GET("/record/:id", h.GetReferral)
		referrals.GET("/:address/stats", h.GetStats)
		referrals.GET("/:address/earnings", h.GetEarningsHistory)
		referrals.GET("/:address/pending", h.GetPendingRewards)
		referrals.GET("/:address/list", h.ListReferrals)
	}

	engine.GET("/activations/recent", h.GetRecentActivations)

	cron := engine.Group("/cron")
	cron.Use(cfg.CronMiddleware.RequireCronSecret())
	{
		cron.POST("/cleanup-activations", h.CleanupRecentActivations)
	}
}

// SetupHealthRoutes registers the liveness endpoint.
func SetupHealthRoutes(engine *gin.Engine, handler *handlers.HealthHandler) {
	engine.GET("/health", handler.Health)
}
