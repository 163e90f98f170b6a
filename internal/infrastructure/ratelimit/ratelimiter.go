package ratelimit

import (
	"context"
	"time"
)

type RateLimitConfig struct {
	// Limit is the number of requests allowed per Window. Zero disables the check.
	Limit  int
	Window time.Duration
}

type RateLimiter interface {
	// Allow counts one request for subject within scope and reports whether
	// it is within the limit.
	Allow(ctx context.Context, scope, subject string, config RateLimitConfig) (bool, error)
	Reset(ctx context.Context, scope, subject string) error
}

const keyPrefix = "ratelimit:"

// Key namespaces a rate limit counter.
func Key(scope, subject string) string {
	return keyPrefix + scope + ":" + subject
}
