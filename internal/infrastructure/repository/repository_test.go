package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cryptogift/ledger/internal/domain/referral"
	vo "github.com/cryptogift/ledger/internal/domain/referral/valueobjects"
	"github.com/cryptogift/ledger/internal/infrastructure/kvstore"
	"github.com/cryptogift/ledger/internal/shared/logger"
)

const (
	referrerA = "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	walletB   = "0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"
)

var now = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func setupTestStore(t *testing.T) (*miniredis.Miniredis, kvstore.Store) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, kvstore.NewRedisStore(client, time.Second, 5, logger.NewNop())
}

func newRecord(t *testing.T, id string, signals referral.VisitorSignals, at time.Time) *referral.ReferralRecord {
	t.Helper()
	r, err := referral.NewReferralRecord(id, referrerA, signals, "newsletter", at)
	require.NoError(t, err)
	return r
}

func testnetGift(t *testing.T, id string) referral.GiftRecord {
	t.Helper()
	g, err := referral.NewGiftRecord(id, referral.GiftData{
		TokenID:    "42",
		Amount:     decimal.NewFromInt(10),
		Commission: decimal.RequireFromString("1.25"),
		TxHash:     "0xdeadbeef",
	}, referral.TermsForNetwork(vo.NetworkTestnet, now, 3*time.Hour), now)
	require.NoError(t, err)
	return g
}

func TestReferralRepository_CreateAndIndexes(t *testing.T) {
	mr, store := setupTestStore(t)
	repo := NewReferralRepository(store, logger.NewNop())
	ctx := context.Background()

	record := newRecord(t, "ref_000000000001", referral.VisitorSignals{Wallet: walletB, IP: "1.2.3.4"}, now)
	require.NoError(t, repo.Create(ctx, record))

	// durable key layout
	assert.True(t, mr.Exists("referral:ref_000000000001"))
	assert.Equal(t, "ref_000000000001", mustGet(t, mr, "user_to_referral:"+walletB))
	assert.Equal(t, "ref_000000000001", mustGet(t, mr, "ip_to_referral:1.2.3.4"))
	members, err := mr.Members("user_referrals:" + referrerA)
	require.NoError(t, err)
	assert.Equal(t, []string{"ref_000000000001"}, members)
	assert.Equal(t, "registered", mr.HGet("referral:ref_000000000001", "status"))
	assert.Equal(t, "[]", mr.HGet("referral:ref_000000000001", "gifts"))

	id, err := repo.FindIDByWallet(ctx, "0xBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBB")
	require.NoError(t, err)
	assert.Equal(t, record.ID(), id)

	id, err = repo.FindIDByIP(ctx, "9.9.9.9")
	require.NoError(t, err)
	assert.Empty(t, id)

	loaded, err := repo.GetByID(ctx, record.ID())
	require.NoError(t, err)
	assert.Equal(t, record.ReferredUserDisplay(), loaded.ReferredUserDisplay())
	assert.Equal(t, record.RegistrationDate(), loaded.RegistrationDate())
	assert.Equal(t, "newsletter", loaded.Source())
	assert.Equal(t, 1, loaded.Version())
}

func TestReferralRepository_GetByID_NotFound(t *testing.T) {
	_, store := setupTestStore(t)
	repo := NewReferralRepository(store, logger.NewNop())

	_, err := repo.GetByID(context.Background(), "ref_missing")
	assert.ErrorIs(t, err, referral.ErrRecordNotFound)

	_, err = repo.Update(context.Background(), "ref_missing", func(*referral.ReferralRecord) error { return nil })
	assert.ErrorIs(t, err, referral.ErrRecordNotFound)
}

func TestReferralRepository_UpdatePersistsGiftsAndReindexes(t *testing.T) {
	mr, store := setupTestStore(t)
	repo := NewReferralRepository(store, logger.NewNop())
	ctx := context.Background()

	record := newRecord(t, "ref_000000000002", referral.VisitorSignals{IP: "1.2.3.4"}, now)
	require.NoError(t, repo.Create(ctx, record))

	updated, err := repo.Update(ctx, record.ID(), func(r *referral.ReferralRecord) error {
		r.AttachWallet(walletB, now.Add(time.Minute))
		return r.RecordGift(testnetGift(t, "gift_000000000001"), now.Add(time.Minute))
	})
	require.NoError(t, err)
	assert.Equal(t, vo.ReferralStatusActivated, updated.Status())
	assert.Equal(t, record.ID(), mustGet(t, mr, "user_to_referral:"+walletB))

	loaded, err := repo.GetByID(ctx, record.ID())
	require.NoError(t, err)
	require.Len(t, loaded.Gifts(), 1)
	g := loaded.Gifts()[0]
	assert.Equal(t, "1.25", g.Commission().String())
	assert.Equal(t, vo.PaymentStatusPendingBlockchain, g.PaymentStatus())
	require.NotNil(t, g.EstimatedPaymentDate())
	assert.True(t, now.Add(3*time.Hour).Equal(*g.EstimatedPaymentDate()))
	assert.Equal(t, "0xdeadbeef", g.TxHash())
	assert.True(t, loaded.TotalEarnings().Equal(loaded.SumCommissions()))
	assert.True(t, loaded.UpgradedFromIP())
	assert.False(t, loaded.IsIPBased())
	assert.Equal(t, 3, loaded.Version())
}

func TestReferralRepository_UpdateAbortsOnMutatorError(t *testing.T) {
	_, store := setupTestStore(t)
	repo := NewReferralRepository(store, logger.NewNop())
	ctx := context.Background()

	record := newRecord(t, "ref_000000000003", referral.VisitorSignals{Wallet: walletB}, now)
	require.NoError(t, repo.Create(ctx, record))

	boom := errors.New("boom")
	_, err := repo.Update(ctx, record.ID(), func(r *referral.ReferralRecord) error {
		r.Touch(now.Add(time.Hour))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	loaded, err := repo.GetByID(ctx, record.ID())
	require.NoError(t, err)
	assert.Equal(t, now, loaded.LastActivity())
}

func TestReferralRepository_ListByReferrer(t *testing.T) {
	_, store := setupTestStore(t)
	repo := NewReferralRepository(store, logger.NewNop())
	ctx := context.Background()

	for i, ip := range []string{"10.0.0.3", "10.0.0.1", "10.0.0.2"} {
		r := newRecord(t, "ref_list"+ip, referral.VisitorSignals{IP: ip}, now.Add(time.Duration(i)*time.Minute))
		require.NoError(t, repo.Create(ctx, r))
	}
	// dangling id is tolerated
	require.NoError(t, repo.AddToReferrer(ctx, referrerA, "ref_gone"))

	records, err := repo.ListByReferrer(ctx, "0xAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA")
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "ref_list10.0.0.3", records[0].ID())
	assert.Equal(t, "ref_list10.0.0.2", records[2].ID())

	none, err := repo.ListByReferrer(ctx, walletB)
	require.NoError(t, err)
	assert.Empty(t, none)

	ids, err := repo.ListAllIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"ref_list10.0.0.1", "ref_list10.0.0.2", "ref_list10.0.0.3"}, ids)
}

func TestUserProfileRepository_Upsert(t *testing.T) {
	mr, store := setupTestStore(t)
	repo := NewUserProfileRepository(store, logger.NewNop())
	ctx := context.Background()

	_, err := repo.Get(ctx, referrerA)
	assert.ErrorIs(t, err, referral.ErrProfileNotFound)

	created, err := repo.Upsert(ctx, referrerA, func(p *referral.UserProfile) (*referral.UserProfile, error) {
		require.Nil(t, p)
		return referral.NewUserProfile(referrerA, now)
	})
	require.NoError(t, err)
	assert.Equal(t, referrerA, created.Address())

	stats := referral.ReferralStats{
		TotalReferrals:  2,
		ActiveReferrals: 1,
		TotalEarnings:   decimal.RequireFromString("2.5"),
		PendingRewards:  decimal.RequireFromString("1.25"),
		ConversionRate:  decimal.NewFromInt(50),
		LastUpdated:     now,
	}
	_, err = repo.Upsert(ctx, referrerA, func(p *referral.UserProfile) (*referral.UserProfile, error) {
		require.NotNil(t, p)
		p.CacheStats(stats, now.Add(time.Minute))
		p.RecordSession("sess-1", "1.2.3.4", now.Add(time.Minute))
		return p, nil
	})
	require.NoError(t, err)
	assert.Contains(t, mr.HGet("user_profile:"+referrerA, "referralStats"), `"totalEarnings":"2.5"`)

	loaded, err := repo.Get(ctx, referrerA)
	require.NoError(t, err)
	cached, ok := loaded.Stats()
	require.True(t, ok)
	assert.Equal(t, 2, cached.TotalReferrals)
	assert.True(t, cached.PendingRewards.Equal(stats.PendingRewards))
	assert.True(t, cached.LastUpdated.Equal(now))
	assert.Equal(t, now, loaded.RegistrationDate())
	require.Len(t, loaded.SessionHistory(), 1)
	assert.Equal(t, "sess-1", loaded.SessionHistory()[0].SessionID)
	require.Len(t, loaded.IPHistory(), 1)

	unchanged, err := repo.Upsert(ctx, referrerA, func(p *referral.UserProfile) (*referral.UserProfile, error) {
		return nil, nil
	})
	require.NoError(t, err)
	assert.Nil(t, unchanged)
	_, err = repo.Get(ctx, referrerA)
	assert.NoError(t, err)
}

func TestActivationFeed(t *testing.T) {
	mr, store := setupTestStore(t)
	feed := NewActivationFeed(store, logger.NewNop())
	ctx := context.Background()

	fresh := referral.ActivationEvent{ID: "e1", ReferrerAddress: referrerA, TokenID: "1", Commission: decimal.NewFromInt(1), Amount: decimal.NewFromInt(10), Timestamp: now}
	old := referral.ActivationEvent{ID: "e2", ReferrerAddress: referrerA, TokenID: "2", Commission: decimal.NewFromInt(1), Amount: decimal.NewFromInt(10), Timestamp: now.Add(-25 * time.Hour)}
	require.NoError(t, feed.Append(ctx, fresh))
	require.NoError(t, feed.Append(ctx, old))
	_, err := mr.SAdd(RecentActivationsKey, "not json")
	require.NoError(t, err)

	events, err := feed.List(ctx)
	require.NoError(t, err)
	assert.Len(t, events, 2)

	removed, err := feed.Purge(ctx, now.Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	events, err = feed.List(ctx)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "e1", events[0].ID)
	assert.Equal(t, "1", events[0].Commission.String())
	assert.True(t, events[0].Timestamp.Equal(now))
}

func TestRepositories_OnMemoryStore(t *testing.T) {
	store := kvstore.NewMemoryStore()
	repo := NewReferralRepository(store, logger.NewNop())
	ctx := context.Background()

	record := newRecord(t, "ref_000000000009", referral.VisitorSignals{Email: "dave@example.com"}, now)
	require.NoError(t, repo.Create(ctx, record))

	updated, err := repo.Update(ctx, record.ID(), func(r *referral.ReferralRecord) error {
		return r.RecordGift(testnetGift(t, "gift_000000000009"), now)
	})
	require.NoError(t, err)
	assert.Equal(t, "1.25", updated.TotalEarnings().String())

	records, err := repo.ListByReferrer(ctx, referrerA)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "dave...@example.com", records[0].ReferredUserDisplay())
}

func mustGet(t *testing.T, mr *miniredis.Miniredis, key string) string {
	t.Helper()
	v, err := mr.Get(key)
	require.NoError(t, err)
	return v
}
