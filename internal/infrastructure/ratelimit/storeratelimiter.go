package ratelimit

import (
	"context"
	"fmt"

	"github.com/cryptogift/ledger/internal/infrastructure/kvstore"
)

// StoreRateLimiter is a fixed-window counter kept in the ledger's key-value
// store, so every instance sharing the store shares the limit.
type StoreRateLimiter struct {
	store kvstore.Store
}

func NewStoreRateLimiter(store kvstore.Store) RateLimiter {
	return &StoreRateLimiter{store: store}
}

func (l *StoreRateLimiter) Allow(ctx context.Context, scope, subject string, config RateLimitConfig) (bool, error) {
	if config.Limit <= 0 || config.Window <= 0 {
		return true, nil
	}

	count, err := l.store.IncrWindow(ctx, Key(scope, subject), config.Window)
	if err != nil {
		return false, fmt.Errorf("failed to count request: %w", err)
	}
	return count <= int64(config.Limit), nil
}

func (l *StoreRateLimiter) Reset(ctx context.Context, scope, subject string) error {
	if err := l.store.Del(ctx, Key(scope, subject)); err != nil {
		return fmt.Errorf("failed to reset rate limit: %w", err)
	}
	return nil
}
