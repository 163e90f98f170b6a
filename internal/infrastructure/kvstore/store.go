// Package kvstore is the key-value surface the ledger persists to. A Redis
// backed store is used when configured; otherwise an in-process stand-in
// keeps the service usable without durability.
package kvstore

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned by Get for a missing or expired key.
	ErrNotFound = errors.New("kvstore: key not found")
	// ErrConflict is returned when an optimistic update keeps losing to
	// concurrent writers.
	ErrConflict = errors.New("kvstore: concurrent modification")
)

// HashMutator receives the current field map of a hash (empty when the key
// does not exist) and returns the full field map to store. It may run more
// than once and must not keep references to current.
type HashMutator func(current map[string]string) (map[string]string, error)

// Store is implemented by RedisStore and MemoryStore.
type Store interface {
	Name() string
	Ping(ctx context.Context) error
	Close() error

	Get(ctx context.Context, key string) (string, error)
	// Set stores a string value. A zero ttl keeps it forever.
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error

	// HGetAll returns an empty map for a missing key.
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HSet(ctx context.Context, key string, fields map[string]string) error
	// UpdateHash replaces the hash with fn's result if nobody else wrote it
	// in between, retrying a bounded number of times.
	UpdateHash(ctx context.Context, key string, fn HashMutator) (map[string]string, error)

	SAdd(ctx context.Context, key string, members ...string) error
	SMembers(ctx context.Context, key string) ([]string, error)
	SRem(ctx context.Context, key string, members ...string) (int64, error)

	// IncrWindow increments a counter that expires window after its first hit.
	IncrWindow(ctx context.Context, key string, window time.Duration) (int64, error)
	// ScanKeys lists keys matching a glob pattern. Meant for maintenance only.
	ScanKeys(ctx context.Context, pattern string) ([]string, error)
}

const (
	NameRedis  = "redis"
	NameMemory = "memory"
)

func cloneFields(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
