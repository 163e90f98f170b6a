package kvstore

import (
	"context"
	"errors"
	"fmt"
	"path"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/cryptogift/ledger/internal/shared/biztime"
)

type stringEntry struct {
	value     string
	expiresAt time.Time
}

func (e stringEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

// MemoryStore is the non-durable stand-in used when Redis is not configured.
// Entries with a TTL record their expiry time and are dropped on access or
// by Sweep; nothing runs in the background.
type MemoryStore struct {
	mu      sync.Mutex
	strings map[string]stringEntry
	hashes  map[string]map[string]string
	sets    map[string]map[string]struct{}
	now     biztime.Clock
}

func NewMemoryStore() *MemoryStore {
	return NewMemoryStoreWithClock(biztime.NowUTC)
}

// NewMemoryStoreWithClock lets tests control expiry.
func NewMemoryStoreWithClock(clock biztime.Clock) *MemoryStore {
	return &MemoryStore{
		strings: make(map[string]stringEntry),
		hashes:  make(map[string]map[string]string),
		sets:    make(map[string]map[string]struct{}),
		now:     clock,
	}
}

func (m *MemoryStore) Name() string { return NameMemory }

func (m *MemoryStore) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (m *MemoryStore) Close() error { return nil }

// Sweep drops every expired entry and returns how many were removed.
func (m *MemoryStore) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	removed := 0
	for k, e := range m.strings {
		if e.expired(now) {
			delete(m.strings, k)
			removed++
		}
	}
	return removed
}

// lookup returns a live string entry, purging it if it has expired.
func (m *MemoryStore) lookup(key string) (stringEntry, bool) {
	e, ok := m.strings[key]
	if !ok {
		return stringEntry{}, false
	}
	if e.expired(m.now()) {
		delete(m.strings, key)
		return stringEntry{}, false
	}
	return e, true
}

func (m *MemoryStore) Get(ctx context.Context, key string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.lookup(key)
	if !ok {
		return "", ErrNotFound
	}
	return e.value, nil
}

func (m *MemoryStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	e := stringEntry{value: value}
	if ttl > 0 {
		e.expiresAt = m.now().Add(ttl)
	}
	m.strings[key] = e
	return nil
}

func (m *MemoryStore) Del(ctx context.Context, keys ...string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, k := range keys {
		delete(m.strings, k)
		delete(m.hashes, k)
		delete(m.sets, k)
	}
	return nil
}

func (m *MemoryStore) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	return cloneFields(m.hashes[key]), nil
}

func (m *MemoryStore) HSet(ctx context.Context, key string, fields map[string]string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(fields) == 0 {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	h, ok := m.hashes[key]
	if !ok {
		h = make(map[string]string, len(fields))
		m.hashes[key] = h
	}
	for k, v := range fields {
		h[k] = v
	}
	return nil
}

// UpdateHash holds the store lock while fn runs, so it never conflicts.
func (m *MemoryStore) UpdateHash(ctx context.Context, key string, fn HashMutator) (map[string]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	next, err := fn(cloneFields(m.hashes[key]))
	if err != nil {
		return nil, err
	}
	if len(next) == 0 {
		delete(m.hashes, key)
		return next, nil
	}
	m.hashes[key] = cloneFields(next)
	return next, nil
}

func (m *MemoryStore) SAdd(ctx context.Context, key string, members ...string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	set, ok := m.sets[key]
	if !ok {
		set = make(map[string]struct{}, len(members))
		m.sets[key] = set
	}
	for _, member := range members {
		set[member] = struct{}{}
	}
	return nil
}

func (m *MemoryStore) SMembers(ctx context.Context, key string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	members := make([]string, 0, len(m.sets[key]))
	for member := range m.sets[key] {
		members = append(members, member)
	}
	sort.Strings(members)
	return members, nil
}

func (m *MemoryStore) SRem(ctx context.Context, key string, members ...string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	set := m.sets[key]
	var removed int64
	for _, member := range members {
		if _, ok := set[member]; ok {
			delete(set, member)
			removed++
		}
	}
	if len(set) == 0 {
		delete(m.sets, key)
	}
	return removed, nil
}

func (m *MemoryStore) IncrWindow(ctx context.Context, key string, window time.Duration) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.lookup(key)
	if !ok {
		e = stringEntry{value: "0", expiresAt: m.now().Add(window)}
	}
	count, err := strconv.ParseInt(e.value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("value at %s is not a counter: %w", key, err)
	}
	count++
	e.value = strconv.FormatInt(count, 10)
	m.strings[key] = e
	return count, nil
}

func (m *MemoryStore) ScanKeys(ctx context.Context, pattern string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, err := path.Match(pattern, ""); errors.Is(err, path.ErrBadPattern) {
		return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	var keys []string
	collect := func(k string) {
		if ok, _ := path.Match(pattern, k); ok {
			keys = append(keys, k)
		}
	}
	for k := range m.strings {
		if _, live := m.lookup(k); live {
			collect(k)
		}
	}
	for k := range m.hashes {
		collect(k)
	}
	for k := range m.sets {
		collect(k)
	}
	sort.Strings(keys)
	return keys, nil
}
