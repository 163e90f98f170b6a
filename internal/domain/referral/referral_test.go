package referral

import (
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	vo "github.com/cryptogift/ledger/internal/domain/referral/valueobjects"
)

var testNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestRecord(t *testing.T, signals VisitorSignals) *ReferralRecord {
	t.Helper()
	r, err := NewReferralRecord("ref_test000001", "0xAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA", signals, "twitter", testNow)
	require.NoError(t, err)
	return r
}

func newTestGift(t *testing.T, n int, commission string, network vo.Network, at time.Time) GiftRecord {
	t.Helper()
	g, err := NewGiftRecord(
		fmt.Sprintf("gift_test%05d", n),
		GiftData{
			TokenID:    fmt.Sprintf("%d", 40+n),
			Amount:     decimal.NewFromInt(10),
			Commission: decimal.RequireFromString(commission),
		},
		TermsForNetwork(network, at, 2*time.Hour),
		at,
	)
	require.NoError(t, err)
	return g
}

func TestNewReferralRecord(t *testing.T) {
	t.Run("ip only click", func(t *testing.T) {
		r := newTestRecord(t, VisitorSignals{IP: "1.2.3.4", UserAgent: "Mozilla"})

		assert.Equal(t, testReferrer, r.ReferrerAddress())
		assert.Equal(t, vo.ReferralStatusRegistered, r.Status())
		assert.True(t, r.IsIPBased())
		assert.False(t, r.UpgradedFromIP())
		assert.Equal(t, "ip_3.4", r.ReferredUserDisplay())
		assert.True(t, r.TotalEarnings().IsZero())
		assert.Empty(t, r.Gifts())
		assert.Equal(t, testNow, r.RegistrationDate())
		assert.Equal(t, testNow, r.LastActivity())
		assert.Equal(t, 1, r.Version())
	})

	t.Run("email click is not ip based", func(t *testing.T) {
		r := newTestRecord(t, VisitorSignals{Email: "alice@example.com", IP: "1.2.3.4"})
		assert.False(t, r.IsIPBased())
		assert.Equal(t, "alic...@example.com", r.ReferredUserDisplay())
	})

	t.Run("empty referrer", func(t *testing.T) {
		_, err := NewReferralRecord("ref_x", "  ", VisitorSignals{}, "", testNow)
		assert.ErrorIs(t, err, ErrEmptyReferrer)
	})
}

func TestReferralRecord_AttachWallet(t *testing.T) {
	r := newTestRecord(t, VisitorSignals{IP: "1.2.3.4"})
	later := testNow.Add(time.Hour)

	require.True(t, r.AttachWallet("0xBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBABBBBB", later))

	assert.Equal(t, testWallet, r.ReferredAddress())
	assert.False(t, r.IsIPBased())
	assert.True(t, r.UpgradedFromIP())
	assert.Equal(t, "...abbbbb", r.ReferredUserDisplay())
	assert.Equal(t, later, r.LastActivity())

	assert.False(t, r.AttachWallet("0xcccccccccccccccccccccccccccccccccccccccc", later), "wallet is never replaced")
	assert.Equal(t, testWallet, r.ReferredAddress())
}

func TestReferralRecord_AttachEmail(t *testing.T) {
	r := newTestRecord(t, VisitorSignals{IP: "1.2.3.4"})

	require.True(t, r.AttachEmail("Bob@Example.com", testNow))
	assert.Equal(t, "bob@example.com", r.ReferredEmail())
	assert.Equal(t, "bob...@example.com", r.ReferredUserDisplay())
	assert.False(t, r.IsIPBased())
	assert.False(t, r.UpgradedFromIP())

	assert.False(t, r.AttachEmail("other@example.com", testNow))
}

func TestReferralRecord_RecordGift(t *testing.T) {
	r := newTestRecord(t, VisitorSignals{Wallet: testWallet})

	require.NoError(t, r.RecordGift(newTestGift(t, 1, "1.5", vo.NetworkTestnet, testNow), testNow))
	assert.Equal(t, vo.ReferralStatusActivated, r.Status())

	require.NoError(t, r.RecordGift(newTestGift(t, 2, "0.25", vo.NetworkMainnet, testNow), testNow))
	require.NoError(t, r.RecordGift(newTestGift(t, 3, "2", vo.NetworkTestnet, testNow), testNow))
	assert.Equal(t, vo.ReferralStatusActive, r.Status())

	assert.Equal(t, 3, r.GiftCount())
	assert.True(t, r.TotalEarnings().Equal(r.SumCommissions()))
	assert.Equal(t, "3.75", r.TotalEarnings().String())
	assert.Equal(t, "3.5", r.PendingCommission().String())
	assert.Equal(t, "0.25", r.PaidCommission().String())
	assert.True(t, r.PendingCommission().Add(r.PaidCommission()).Equal(r.TotalEarnings()))
}

func TestReferralRecord_StatusNeverRegresses(t *testing.T) {
	r, err := ReconstructReferralRecord(ReferralRecordState{
		ID:              "ref_active",
		ReferrerAddress: testReferrer,
		Status:          vo.ReferralStatusActive,
		TotalEarnings:   decimal.Zero,
	})
	require.NoError(t, err)

	// a gift recorded against a record without stored gifts still keeps it active
	require.NoError(t, r.RecordGift(newTestGift(t, 1, "1", vo.NetworkMainnet, testNow), testNow))
	assert.Equal(t, vo.ReferralStatusActive, r.Status())

	r.Touch(testNow)
	r.AttachEmail("x@example.com", testNow)
	assert.Equal(t, vo.ReferralStatusActive, r.Status())
}

func TestReferralRecord_RecordGift_Invalid(t *testing.T) {
	r := newTestRecord(t, VisitorSignals{Wallet: testWallet})
	bad := ReconstructGiftRecord(GiftRecordState{ID: "gift_bad", Commission: decimal.NewFromInt(-1)})

	err := r.RecordGift(bad, testNow)
	assert.ErrorIs(t, err, ErrInvalidGift)
	assert.Equal(t, vo.ReferralStatusRegistered, r.Status())
	assert.Zero(t, r.GiftCount())
}

func TestReferralRecord_MatchesIdentifier(t *testing.T) {
	r := newTestRecord(t, VisitorSignals{Wallet: testWallet})

	assert.True(t, r.MatchesIdentifier("...abbbbb"))
	assert.True(t, r.MatchesIdentifier(testWallet))
	assert.True(t, r.MatchesIdentifier("0xBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBABBBBB"))
	assert.False(t, r.MatchesIdentifier("abbbbb"))
	assert.False(t, r.MatchesIdentifier(""))

	ipOnly := newTestRecord(t, VisitorSignals{IP: "1.2.3.4"})
	assert.True(t, ipOnly.MatchesIdentifier("ip_3.4"))
	assert.False(t, ipOnly.MatchesIdentifier("1.2.3.4"))
}

func TestNewGiftRecord_PaymentTerms(t *testing.T) {
	testnet := newTestGift(t, 1, "1", vo.NetworkTestnet, testNow)
	assert.Equal(t, vo.GiftStatusCompleted, testnet.Status())
	assert.Equal(t, vo.PaymentStatusPendingBlockchain, testnet.PaymentStatus())
	assert.Equal(t, vo.PendingReasonBlockchainConfirmation, testnet.PendingReason())
	require.NotNil(t, testnet.EstimatedPaymentDate())
	assert.Equal(t, testNow.Add(2*time.Hour), *testnet.EstimatedPaymentDate())

	mainnet := newTestGift(t, 2, "1", vo.NetworkMainnet, testNow)
	assert.Equal(t, vo.PaymentStatusPaid, mainnet.PaymentStatus())
	assert.Nil(t, mainnet.EstimatedPaymentDate())
	assert.Empty(t, mainnet.PendingReason())
}

func TestGiftData_Validate(t *testing.T) {
	tests := []struct {
		name string
		data GiftData
		ok   bool
	}{
		{"valid", GiftData{TokenID: "42", Amount: decimal.NewFromInt(10), Commission: decimal.NewFromInt(1)}, true},
		{"zero commission", GiftData{TokenID: "42", Amount: decimal.Zero, Commission: decimal.Zero}, true},
		{"missing token", GiftData{Amount: decimal.NewFromInt(10), Commission: decimal.NewFromInt(1)}, false},
		{"negative amount", GiftData{TokenID: "42", Amount: decimal.NewFromInt(-1), Commission: decimal.Zero}, false},
		{"negative commission", GiftData{TokenID: "42", Amount: decimal.Zero, Commission: decimal.NewFromInt(-1)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.data.Validate()
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, ErrInvalidGift)
		})
	}
}

// TestWorkedExample walks one referral from an anonymous IP click through a
// wallet upgrade and two testnet activations.
func TestWorkedExample(t *testing.T) {
	r := newTestRecord(t, VisitorSignals{IP: "1.2.3.4"})
	assert.True(t, r.IsIPBased())
	assert.Equal(t, "ip_3.4", r.ReferredUserDisplay())
	id := r.ID()

	require.True(t, r.AttachWallet(testWallet, testNow.Add(time.Minute)))
	assert.False(t, r.IsIPBased())
	assert.Equal(t, "...abbbbb", r.ReferredUserDisplay())

	g1, err := NewGiftRecord("gift_first00001", GiftData{
		TokenID:    "42",
		Amount:     decimal.NewFromInt(10),
		Commission: decimal.NewFromInt(1),
	}, TermsForNetwork(vo.NetworkTestnet, testNow, time.Hour), testNow)
	require.NoError(t, err)
	require.NoError(t, r.RecordGift(g1, testNow))

	assert.Equal(t, vo.PaymentStatusPendingBlockchain, r.Gifts()[0].PaymentStatus())
	assert.Equal(t, vo.ReferralStatusActivated, r.Status())
	assert.Equal(t, "1", r.TotalEarnings().String())

	require.NoError(t, r.RecordGift(newTestGift(t, 2, "1", vo.NetworkTestnet, testNow), testNow))
	assert.Equal(t, vo.ReferralStatusActive, r.Status())
	assert.Equal(t, "2", r.TotalEarnings().String())
	assert.Equal(t, id, r.ID())

	stats := ComputeStats([]*ReferralRecord{r}, testNow)
	assert.Equal(t, 1, stats.TotalReferrals)
	assert.Equal(t, 1, stats.ActiveReferrals)
	assert.Equal(t, "100", stats.ConversionRate.String())
	assert.Equal(t, "2", stats.PendingRewards.String())
}
