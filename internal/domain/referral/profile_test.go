package referral

import (
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserProfile_CacheStats(t *testing.T) {
	p, err := NewUserProfile("0xAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA", testNow)
	require.NoError(t, err)
	assert.Equal(t, testReferrer, p.Address())

	_, ok := p.Stats()
	assert.False(t, ok)

	later := testNow.Add(time.Minute)
	p.CacheStats(ReferralStats{TotalReferrals: 2, TotalEarnings: decimal.NewFromInt(5)}, later)

	stats, ok := p.Stats()
	require.True(t, ok)
	assert.Equal(t, 2, stats.TotalReferrals)
	assert.Equal(t, later, p.LastActivity())
	assert.Equal(t, testNow, p.RegistrationDate())
}

func TestUserProfile_RecordSession(t *testing.T) {
	p, err := NewUserProfile(testReferrer, testNow)
	require.NoError(t, err)

	for i := 0; i < maxHistoryEntries+10; i++ {
		p.RecordSession(fmt.Sprintf("s-%d", i), fmt.Sprintf("10.0.0.%d", i), testNow.Add(time.Duration(i)*time.Second))
	}
	p.RecordSession("again", "10.0.0.59", testNow)

	sessions := p.SessionHistory()
	require.Len(t, sessions, maxHistoryEntries)
	assert.Equal(t, "again", sessions[len(sessions)-1].SessionID)
	assert.Equal(t, "s-11", sessions[0].SessionID)

	ips := p.IPHistory()
	require.Len(t, ips, maxHistoryEntries)
	assert.Equal(t, "10.0.0.10", ips[0].IP)
	assert.Equal(t, "10.0.0.59", ips[len(ips)-1].IP)
}

func TestNewUserProfile_EmptyAddress(t *testing.T) {
	_, err := NewUserProfile("", testNow)
	assert.ErrorIs(t, err, ErrEmptyReferrer)
}

func TestActivationEvent(t *testing.T) {
	r := newTestRecord(t, VisitorSignals{Wallet: testWallet})
	g := newTestGift(t, 1, "1", "testnet", testNow)

	e := NewActivationEvent(r, g, testNow)
	assert.NotEmpty(t, e.ID)
	assert.Equal(t, testReferrer, e.ReferrerAddress)
	assert.Equal(t, "...abbbbb", e.ReferredUserDisplay)
	assert.Equal(t, "41", e.TokenID)

	assert.False(t, e.ExpiredAt(testNow.Add(23*time.Hour), 24*time.Hour))
	assert.True(t, e.ExpiredAt(testNow.Add(25*time.Hour), 24*time.Hour))
}
