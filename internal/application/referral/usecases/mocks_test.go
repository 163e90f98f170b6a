package usecases

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/cryptogift/ledger/internal/domain/referral"
	vo "github.com/cryptogift/ledger/internal/domain/referral/valueobjects"
	"github.com/cryptogift/ledger/internal/infrastructure/kvstore"
	"github.com/cryptogift/ledger/internal/infrastructure/repository"
	"github.com/cryptogift/ledger/internal/shared/logger"
)

const (
	referrerA = "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	referrerC = "0xcccccccccccccccccccccccccccccccccccccccc"
	walletB   = "0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbabbbbb"
)

// testClock is a settable clock shared by the use cases under test.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func sequentialIDs(prefix string) IDGenerator {
	var mu sync.Mutex
	n := 0
	return func() (string, error) {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("%s_%012d", prefix, n), nil
	}
}

func fixedDelay(d time.Duration) PaymentDelayFunc {
	return func() time.Duration { return d }
}

// mockActivationFeed delegates to the wrapped feed unless a func is set.
type mockActivationFeed struct {
	referral.ActivationFeed
	AppendFunc func(ctx context.Context, event referral.ActivationEvent) error
}

func (m *mockActivationFeed) Append(ctx context.Context, event referral.ActivationEvent) error {
	if m.AppendFunc != nil {
		return m.AppendFunc(ctx, event)
	}
	return m.ActivationFeed.Append(ctx, event)
}

type mockProfileRepository struct {
	referral.ProfileRepository
	UpsertFunc func(ctx context.Context, address string, fn referral.ProfileMutator) (*referral.UserProfile, error)
}

func (m *mockProfileRepository) Upsert(ctx context.Context, address string, fn referral.ProfileMutator) (*referral.UserProfile, error) {
	if m.UpsertFunc != nil {
		return m.UpsertFunc(ctx, address, fn)
	}
	return m.ProfileRepository.Upsert(ctx, address, fn)
}

type fixture struct {
	store     *kvstore.MemoryStore
	referrals referral.Repository
	profiles  *mockProfileRepository
	feed      *mockActivationFeed
	clock     *testClock

	track     *TrackClickUseCase
	recompute *RecomputeStatsUseCase
	activate  *ActivateReferralUseCase
	stats     *GetStatsUseCase
	earnings  *GetEarningsUseCase
	recent    *RecentActivationsUseCase
	list      *ListReferralsUseCase
	sessions  *RecordSessionUseCase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	log := logger.NewNop()
	store := kvstore.NewMemoryStore()
	clock := newTestClock()

	f := &fixture{
		store:     store,
		referrals: repository.NewReferralRepository(store, log),
		profiles:  &mockProfileRepository{ProfileRepository: repository.NewUserProfileRepository(store, log)},
		feed:      &mockActivationFeed{ActivationFeed: repository.NewActivationFeed(store, log)},
		clock:     clock,
	}
	f.track = NewTrackClickUseCase(f.referrals, f.profiles, sequentialIDs("ref"), clock.Now, log)
	f.recompute = NewRecomputeStatsUseCase(f.referrals, f.profiles, clock.Now, log)
	f.activate = NewActivateReferralUseCase(f.referrals, f.feed, f.recompute, vo.NetworkTestnet, fixedDelay(2*time.Hour), sequentialIDs("gift"), clock.Now, log)
	f.stats = NewGetStatsUseCase(f.profiles, f.recompute, log)
	f.earnings = NewGetEarningsUseCase(f.referrals, clock.Now, log)
	f.recent = NewRecentActivationsUseCase(f.feed, 24*time.Hour, 10, clock.Now, log)
	f.list = NewListReferralsUseCase(f.referrals, log)
	f.sessions = NewRecordSessionUseCase(f.profiles, clock.Now, log)
	return f
}
