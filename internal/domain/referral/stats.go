package referral

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReferralStats is the per-referrer aggregate cached on the UserProfile.
type ReferralStats struct {
	TotalReferrals  int
	ActiveReferrals int
	TotalEarnings   decimal.Decimal
	PendingRewards  decimal.Decimal
	ConversionRate  decimal.Decimal
	LastUpdated     time.Time
}

// PaidEarnings is the part of TotalEarnings that is no longer pending.
func (s ReferralStats) PaidEarnings() decimal.Decimal {
	return s.TotalEarnings.Sub(s.PendingRewards)
}

var hundred = decimal.NewFromInt(100)

// ComputeStats derives the aggregate from scratch. It has no side effects
// and returns the same numbers for the same records.
func ComputeStats(records []*ReferralRecord, now time.Time) ReferralStats {
	stats := ReferralStats{
		TotalEarnings:  decimal.Zero,
		PendingRewards: decimal.Zero,
		ConversionRate: decimal.Zero,
		LastUpdated:    now,
	}

	for _, r := range records {
		if r == nil {
			continue
		}
		stats.TotalReferrals++
		if r.Status().IsConverted() {
			stats.ActiveReferrals++
		}
		stats.TotalEarnings = stats.TotalEarnings.Add(r.TotalEarnings())
		stats.PendingRewards = stats.PendingRewards.Add(r.PendingCommission())
	}

	if stats.TotalReferrals > 0 {
		stats.ConversionRate = decimal.NewFromInt(int64(stats.ActiveReferrals)).
			Mul(hundred).
			Div(decimal.NewFromInt(int64(stats.TotalReferrals))).
			Round(2)
	}

	return stats
}
