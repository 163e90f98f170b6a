package kvstore

import (
	"context"
	"fmt"

	"github.com/cryptogift/ledger/internal/shared/config"
	"github.com/cryptogift/ledger/internal/shared/logger"
)

// Open picks the store once at startup. Without Redis settings, or when
// Redis cannot be reached and is not required, the in-memory stand-in is
// returned and the degradation is logged.
func Open(ctx context.Context, cfg *config.RedisConfig, log logger.Interface) (Store, error) {
	if !cfg.HasCredentials() {
		if cfg.Required {
			return nil, fmt.Errorf("redis is required but no host is configured")
		}
		log.Warnw("redis not configured, using in-memory store; data will not survive a restart",
			"enabled", cfg.Enabled,
		)
		return NewMemoryStore(), nil
	}

	store := NewRedisStore(newRedisClient(cfg), cfg.OperationTimeout, cfg.MaxCASRetries, log)
	if err := store.Ping(ctx); err != nil {
		_ = store.Close()
		if cfg.Required {
			return nil, err
		}
		log.Errorw("redis unreachable, falling back to in-memory store",
			"addr", cfg.GetAddr(),
			"error", err,
		)
		return NewMemoryStore(), nil
	}

	log.Infow("connected to redis",
		"addr", cfg.GetAddr(),
		"db", cfg.DB,
	)
	return store, nil
}
