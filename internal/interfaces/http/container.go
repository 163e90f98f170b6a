package http

import (
	"context"
	"fmt"

	referralApp "github.com/cryptogift/ledger/internal/application/referral"
	vo "github.com/cryptogift/ledger/internal/domain/referral/valueobjects"
	"github.com/cryptogift/ledger/internal/infrastructure/config"
	"github.com/cryptogift/ledger/internal/infrastructure/kvstore"
	"github.com/cryptogift/ledger/internal/infrastructure/ratelimit"
	"github.com/cryptogift/ledger/internal/infrastructure/repository"
	"github.com/cryptogift/ledger/internal/infrastructure/scheduler"
	"github.com/cryptogift/ledger/internal/interfaces/http/handlers"
	"github.com/cryptogift/ledger/internal/interfaces/http/middleware"
	"github.com/cryptogift/ledger/internal/shared/logger"
)

// writeScope is the rate-limit scope shared by the mutating endpoints.
const writeScope = "write"

// Container holds the store, the ledger service, the HTTP handlers and the
// background scheduler, and tears them down in Shutdown.
type Container struct {
	cfg *config.Config
	log logger.Interface

	store     kvstore.Store
	service   *referralApp.ServiceDDD
	scheduler *scheduler.SchedulerManager

	referralHandler *handlers.ReferralHandler
	healthHandler   *handlers.HealthHandler

	writeLimiter   *middleware.RateLimiter
	cronMiddleware *middleware.CronSecretMiddleware
}

// NewContainer wires everything on top of an already opened store.
func NewContainer(store kvstore.Store, cfg *config.Config, log logger.Interface) (*Container, error) {
	c := &Container{
		cfg:   cfg,
		log:   log,
		store: store,
	}

	c.service = NewReferralService(store, cfg, log)

	c.referralHandler = handlers.NewReferralHandler(c.service, cfg.Referral.DefaultFeedLimit, log)
	c.healthHandler = handlers.NewHealthHandler(store, log)
	c.cronMiddleware = middleware.NewCronSecretMiddleware(cfg.Referral.CronSecret, log)

	if cfg.RateLimit.Enabled {
		c.writeLimiter = middleware.NewRateLimiter(
			ratelimit.NewStoreRateLimiter(store),
			writeScope,
			ratelimit.RateLimitConfig{Limit: cfg.RateLimit.Limit, Window: cfg.RateLimit.Window},
			log,
		)
	}

	if cfg.Scheduler.Enabled {
		if err := c.initScheduler(); err != nil {
			return nil, err
		}
	}

	return c, nil
}

// NewReferralService builds the ledger service from configuration. The CLI
// commands share it with the HTTP server.
func NewReferralService(store kvstore.Store, cfg *config.Config, log logger.Interface) *referralApp.ServiceDDD {
	return referralApp.NewServiceDDD(
		repository.NewReferralRepository(store, log),
		repository.NewUserProfileRepository(store, log),
		repository.NewActivationFeed(store, log),
		referralApp.Options{
			Network:             vo.Network(cfg.Referral.Network),
			RecentActivationTTL: cfg.Referral.RecentActivationTTL,
			DefaultFeedLimit:    cfg.Referral.DefaultFeedLimit,
		},
		log,
	)
}

type sweeper interface {
	Sweep() int
}

func (c *Container) initScheduler() error {
	manager, err := scheduler.NewSchedulerManager(c.log)
	if err != nil {
		return fmt.Errorf("failed to create scheduler: %w", err)
	}

	cleanup := scheduler.BatchJobFunc(func(ctx context.Context) (int, error) {
		result, err := c.service.CleanupRecentActivations(ctx)
		if err != nil {
			return 0, err
		}
		// the in-memory store only purges expired counters lazily
		if sw, ok := c.store.(sweeper); ok {
			if n := sw.Sweep(); n > 0 {
				c.log.Debugw("swept expired memory store entries", "count", n)
			}
		}
		return result.Removed, nil
	})
	if err := manager.RegisterFeedCleanupJob(c.cfg.Scheduler.CleanupInterval, cleanup); err != nil {
		return fmt.Errorf("failed to register feed cleanup job: %w", err)
	}

	c.scheduler = manager
	return nil
}

// StartBackground starts the scheduler when one is configured.
func (c *Container) StartBackground() {
	if c.scheduler != nil {
		c.scheduler.Start()
	}
}

// Service exposes the ledger service.
func (c *Container) Service() *referralApp.ServiceDDD {
	return c.service
}

// Shutdown stops background jobs and closes the store.
func (c *Container) Shutdown() {
	if c.scheduler != nil {
		if err := c.scheduler.Stop(); err != nil {
			c.log.Warnw("scheduler stop failed", "error", err)
		}
	}
	if err := c.store.Close(); err != nil {
		c.log.Warnw("store close failed", "store", c.store.Name(), "error", err)
	}
}
